package catalog

import (
	"context"
	"strconv"
	"testing"

	"github.com/statusdesk/statusdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository implements Repository for testing.
type mockRepository struct {
	services map[string]*domain.Service
	nextID   int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		services: make(map[string]*domain.Service),
	}
}

func (m *mockRepository) CreateService(_ context.Context, service *domain.Service) error {
	m.nextID++
	service.ID = "svc-" + strconv.Itoa(m.nextID)
	m.services[service.ID] = service
	return nil
}

func (m *mockRepository) GetServiceByID(_ context.Context, id string) (*domain.Service, error) {
	if s, ok := m.services[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, ErrServiceNotFound
}

func (m *mockRepository) ListServices(_ context.Context) ([]domain.Service, error) {
	services := make([]domain.Service, 0, len(m.services))
	for _, s := range m.services {
		services = append(services, *s)
	}
	return services, nil
}

func (m *mockRepository) UpdateService(_ context.Context, service *domain.Service) error {
	if _, ok := m.services[service.ID]; !ok {
		return ErrServiceNotFound
	}
	copied := *service
	m.services[service.ID] = &copied
	return nil
}

func (m *mockRepository) UpdateServiceStatus(_ context.Context, id string, status domain.ServiceStatus) (*domain.Service, error) {
	s, ok := m.services[id]
	if !ok {
		return nil, ErrServiceNotFound
	}
	s.Status = status
	copied := *s
	return &copied, nil
}

func (m *mockRepository) DeleteService(_ context.Context, id string) error {
	if _, ok := m.services[id]; !ok {
		return ErrServiceNotFound
	}
	delete(m.services, id)
	return nil
}

// mockAuditRecorder implements AuditRecorder for testing.
type mockAuditRecorder struct {
	actions []string
}

func (m *mockAuditRecorder) Record(_ context.Context, _, action, _, _ string, _ map[string]any) {
	m.actions = append(m.actions, action)
}

func newTestService() (*Service, *mockRepository, *mockAuditRecorder) {
	repo := newMockRepository()
	audit := &mockAuditRecorder{}
	return NewService(repo, audit), repo, audit
}

var testActor = domain.Actor{UserID: "admin-1", Email: "admin@example.com", Role: domain.RoleAdmin}

func TestService_CreateService_DefaultsToUp(t *testing.T) {
	// Arrange
	svc, _, audit := newTestService()

	// Act
	created, err := svc.CreateService(context.Background(), CreateServiceInput{
		Name:        "API Gateway",
		Description: "Edge traffic",
	}, testActor)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, domain.ServiceStatusUp, created.Status)
	assert.Contains(t, audit.actions, "SERVICE_CREATED")
}

func TestService_CreateService_EmptyName(t *testing.T) {
	// Arrange
	svc, _, _ := newTestService()

	// Act
	_, err := svc.CreateService(context.Background(), CreateServiceInput{Name: "   "}, testActor)

	// Assert
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestService_CreateService_InvalidStatus(t *testing.T) {
	// Arrange
	svc, _, _ := newTestService()

	// Act
	_, err := svc.CreateService(context.Background(), CreateServiceInput{
		Name:   "API Gateway",
		Status: "SORT_OF_UP",
	}, testActor)

	// Assert
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestService_UpdateService_Partial(t *testing.T) {
	// Arrange
	svc, _, audit := newTestService()
	created, err := svc.CreateService(context.Background(), CreateServiceInput{
		Name:        "API Gateway",
		Description: "Edge traffic",
	}, testActor)
	require.NoError(t, err)

	newDesc := "Edge traffic and routing"

	// Act - only description changes, name and status stay
	updated, err := svc.UpdateService(context.Background(), created.ID, UpdateServiceInput{
		Description: &newDesc,
	}, testActor)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "API Gateway", updated.Name)
	assert.Equal(t, newDesc, updated.Description)
	assert.Equal(t, domain.ServiceStatusUp, updated.Status)
	assert.Contains(t, audit.actions, "SERVICE_UPDATED")
}

func TestService_UpdateService_NotFound(t *testing.T) {
	// Arrange
	svc, _, _ := newTestService()
	name := "Renamed"

	// Act
	_, err := svc.UpdateService(context.Background(), "missing", UpdateServiceInput{Name: &name}, testActor)

	// Assert
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestService_UpdateServiceStatus(t *testing.T) {
	// Arrange
	svc, _, audit := newTestService()
	created, err := svc.CreateService(context.Background(), CreateServiceInput{Name: "DB"}, testActor)
	require.NoError(t, err)

	// Act
	updated, err := svc.UpdateServiceStatus(context.Background(), created.ID, domain.ServiceStatusDown, testActor)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, domain.ServiceStatusDown, updated.Status)
	assert.Contains(t, audit.actions, "SERVICE_STATUS_UPDATED")
}

func TestService_UpdateServiceStatus_Invalid(t *testing.T) {
	// Arrange
	svc, _, _ := newTestService()
	created, err := svc.CreateService(context.Background(), CreateServiceInput{Name: "DB"}, testActor)
	require.NoError(t, err)

	// Act
	_, err = svc.UpdateServiceStatus(context.Background(), created.ID, domain.ServiceStatus("FINE"), testActor)

	// Assert
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestService_DeleteService(t *testing.T) {
	// Arrange
	svc, repo, audit := newTestService()
	created, err := svc.CreateService(context.Background(), CreateServiceInput{Name: "DB"}, testActor)
	require.NoError(t, err)

	// Act
	err = svc.DeleteService(context.Background(), created.ID, testActor)

	// Assert
	require.NoError(t, err)
	assert.Empty(t, repo.services)
	assert.Contains(t, audit.actions, "SERVICE_DELETED")
}
