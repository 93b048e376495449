package seed

import (
	"context"
	"strconv"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/statusdesk/statusdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	existingUsers int

	users     []*domain.User
	services  []*domain.Service
	incidents map[string]*domain.Incident
	updates   []*domain.Update
	nextID    int
}

func newMockStore() *mockStore {
	return &mockStore{incidents: make(map[string]*domain.Incident)}
}

func (m *mockStore) id(prefix string) string {
	m.nextID++
	return prefix + "-" + strconv.Itoa(m.nextID)
}

func (m *mockStore) CountUsers(_ context.Context) (int, error) {
	return m.existingUsers + len(m.users), nil
}

func (m *mockStore) CreateUser(_ context.Context, user *domain.User) error {
	user.ID = m.id("user")
	copied := *user
	m.users = append(m.users, &copied)
	return nil
}

func (m *mockStore) CreateService(_ context.Context, service *domain.Service) error {
	service.ID = m.id("svc")
	copied := *service
	m.services = append(m.services, &copied)
	return nil
}

func (m *mockStore) CreateIncident(_ context.Context, incident *domain.Incident) error {
	incident.ID = m.id("inc")
	copied := *incident
	m.incidents[incident.ID] = &copied
	return nil
}

func (m *mockStore) UpdateIncident(_ context.Context, incident *domain.Incident) error {
	copied := *incident
	m.incidents[incident.ID] = &copied
	return nil
}

func (m *mockStore) CreateUpdate(_ context.Context, update *domain.Update) error {
	update.ID = m.id("upd")
	copied := *update
	m.updates = append(m.updates, &copied)
	return nil
}

func TestSeeder_Run_PopulatesEmptyDatabase(t *testing.T) {
	// Arrange
	store := newMockStore()
	seeder := New(store, store, store)

	// Act
	err := seeder.Run(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Len(t, store.users, 4)
	assert.Len(t, store.services, 7)
	assert.Len(t, store.incidents, 5)
	assert.Len(t, store.updates, 7)
}

func TestSeeder_Run_SkipsNonEmptyDatabase(t *testing.T) {
	// Arrange
	store := newMockStore()
	store.existingUsers = 1
	seeder := New(store, store, store)

	// Act
	err := seeder.Run(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Empty(t, store.users)
	assert.Empty(t, store.services)
	assert.Empty(t, store.incidents)
}

func TestSeeder_Run_AdminCredentialsUsable(t *testing.T) {
	// Arrange
	store := newMockStore()
	seeder := New(store, store, store)

	// Act
	err := seeder.Run(context.Background())

	// Assert
	require.NoError(t, err)
	var admin *domain.User
	for _, u := range store.users {
		if u.Role == domain.RoleAdmin {
			admin = u
		}
	}
	require.NotNil(t, admin)
	assert.Equal(t, "admin@statusdesk.local", admin.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("admin123")))
}

func TestSeeder_Run_ResolvedIncidentsCarryTimestamps(t *testing.T) {
	// Arrange
	store := newMockStore()
	seeder := New(store, store, store)

	// Act
	err := seeder.Run(context.Background())

	// Assert
	require.NoError(t, err)
	resolved := 0
	private := 0
	for _, inc := range store.incidents {
		if inc.Status == domain.IncidentStatusResolved {
			resolved++
			assert.NotNil(t, inc.ResolvedAt, "resolved incident %q has no resolution time", inc.Title)
		}
		if !inc.IsPublic {
			private++
		}
		require.NotNil(t, inc.ServiceID)
		require.NotNil(t, inc.CreatedBy)
	}
	assert.Equal(t, 2, resolved)
	assert.Equal(t, 1, private)
}
