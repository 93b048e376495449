//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/statusdesk/statusdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listAuditLogs(t *testing.T, client *testutil.Client, query string) []auditLogResult {
	t.Helper()

	resp, err := client.GET("/api/v1/audit-logs" + query)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data []auditLogResult `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data
}

func TestAudit_MutationsRecorded(t *testing.T) {
	admin := newTestClient(t)
	loginAsAdmin(t, admin)

	service := createService(t, admin, "audited-service")

	engineer := newTestClient(t)
	loginAsEngineer(t, engineer)
	incident := createIncident(t, engineer, "audited incident", true)

	resp, err := engineer.PATCH("/api/v1/incidents/"+incident.ID+"/resolve", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	actions := make(map[string]bool)
	for _, entry := range listAuditLogs(t, admin, "?limit=200") {
		actions[entry.Action] = true
	}
	assert.True(t, actions["SERVICE_CREATED"])
	assert.True(t, actions["INCIDENT_CREATED"])
	assert.True(t, actions["INCIDENT_RESOLVED"])
	assert.True(t, actions["USER_LOGIN"])

	// Entity-scoped filtering returns only that entity's trail
	scoped := listAuditLogs(t, admin, "?entity_type=Service&entity_id="+service.ID)
	require.NotEmpty(t, scoped)
	for _, entry := range scoped {
		assert.Equal(t, "Service", entry.EntityType)
		assert.Equal(t, service.ID, entry.EntityID)
	}
}

func TestAudit_Limit(t *testing.T) {
	admin := newTestClient(t)
	loginAsAdmin(t, admin)

	// Generate a few entries so the limit has something to cut
	for i := 0; i < 3; i++ {
		createService(t, admin, fmt.Sprintf("limit-check-%d", i))
	}

	logs := listAuditLogs(t, admin, "?limit=2")
	assert.Len(t, logs, 2)
}

func TestAudit_InvalidLimit(t *testing.T) {
	admin := newTestClient(t)
	loginAsAdmin(t, admin)

	for _, limit := range []string{"0", "-5", "lots"} {
		resp, err := admin.GET("/api/v1/audit-logs?limit=" + limit)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "limit=%s", limit)
		resp.Body.Close()
	}
}

func TestAudit_AdminOnly(t *testing.T) {
	engineer := newTestClient(t)
	loginAsEngineer(t, engineer)

	resp, err := engineer.GET("/api/v1/audit-logs")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	anon := newTestClient(t)
	resp, err = anon.GET("/api/v1/audit-logs")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAudit_NewestFirst(t *testing.T) {
	admin := newTestClient(t)
	loginAsAdmin(t, admin)

	first := createService(t, admin, "ordering-first")
	second := createService(t, admin, "ordering-second")

	logs := listAuditLogs(t, admin, "?entity_type=Service&limit=50")

	posFirst, posSecond := -1, -1
	for i, entry := range logs {
		if entry.EntityID == first.ID && posFirst == -1 {
			posFirst = i
		}
		if entry.EntityID == second.ID && posSecond == -1 {
			posSecond = i
		}
	}
	require.NotEqual(t, -1, posFirst)
	require.NotEqual(t, -1, posSecond)
	assert.Less(t, posSecond, posFirst, "newer entries should come first")
}
