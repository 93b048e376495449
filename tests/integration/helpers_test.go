//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/statusdesk/statusdesk/internal/testutil"
	"github.com/stretchr/testify/require"
)

func decodeBody(resp *http.Response, v interface{}) error {
	return json.NewDecoder(resp.Body).Decode(v)
}

func loginAsAdmin(t *testing.T, client *testutil.Client) {
	t.Helper()
	client.LoginAs(t, adminEmail, seedPassword)
}

func loginAsEngineer(t *testing.T, client *testutil.Client) {
	t.Helper()
	client.LoginAs(t, engineerEmail, seedPassword)
}

func loginAsViewer(t *testing.T, client *testutil.Client) {
	t.Helper()
	client.LoginAs(t, viewerEmail, seedPassword)
}

type serviceResult struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type userResult struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type updateResult struct {
	ID         string      `json:"id"`
	Content    string      `json:"content"`
	IncidentID string      `json:"incident_id"`
	UserID     *string     `json:"user_id"`
	Author     *userResult `json:"author"`
	CreatedAt  string      `json:"created_at"`
}

type incidentResult struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Severity         string         `json:"severity"`
	Status           string         `json:"status"`
	IsPublic         bool           `json:"is_public"`
	RootCauseSummary *string        `json:"root_cause_summary"`
	ResolvedAt       *string        `json:"resolved_at"`
	ServiceID        *string        `json:"service_id"`
	CreatedBy        *string        `json:"created_by"`
	Updates          []updateResult `json:"updates"`
	Service          *serviceResult `json:"service"`
	Creator          *userResult    `json:"creator"`
}

type auditLogResult struct {
	ID         string                 `json:"id"`
	ActorID    string                 `json:"actor_id"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	Metadata   map[string]interface{} `json:"metadata"`
}

// createService creates a service as admin and returns it.
func createService(t *testing.T, client *testutil.Client, name string) serviceResult {
	t.Helper()

	resp, err := client.POST("/api/v1/services", map[string]string{
		"name":        name,
		"description": "created by test",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data serviceResult `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data
}

// createIncident opens an incident with the given visibility and
// returns it.
func createIncident(t *testing.T, client *testutil.Client, title string, public bool) incidentResult {
	t.Helper()

	resp, err := client.POST("/api/v1/incidents", map[string]interface{}{
		"title":       title,
		"description": "created by test",
		"is_public":   public,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data incidentResult `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data
}
