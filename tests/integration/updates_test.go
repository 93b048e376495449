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

func addUpdate(t *testing.T, client *testutil.Client, incidentID, content string) updateResult {
	t.Helper()

	resp, err := client.POST("/api/v1/incidents/"+incidentID+"/updates", map[string]string{
		"content": content,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data updateResult `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data
}

func TestUpdates_AddToIncident(t *testing.T) {
	client := newTestClient(t)
	loginAsEngineer(t, client)
	incident := createIncident(t, client, "update timeline check", true)

	update := addUpdate(t, client, incident.ID, "investigating elevated error rates")
	assert.Equal(t, incident.ID, update.IncidentID)
	require.NotNil(t, update.Author)
	assert.Equal(t, engineerEmail, update.Author.Email)

	// The incident embeds its timeline
	resp, err := client.GET("/api/v1/incidents/" + incident.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched struct {
		Data incidentResult `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &fetched)
	require.Len(t, fetched.Data.Updates, 1)
	assert.Equal(t, update.ID, fetched.Data.Updates[0].ID)
}

func TestUpdates_Standalone_Create(t *testing.T) {
	client := newTestClient(t)
	loginAsEngineer(t, client)
	incident := createIncident(t, client, "standalone update check", true)

	resp, err := client.POST("/api/v1/updates", map[string]string{
		"incident_id": incident.ID,
		"content":     "posted via the flat endpoint",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data updateResult `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, incident.ID, result.Data.IncidentID)
	assert.Equal(t, "posted via the flat endpoint", result.Data.Content)
}

func TestUpdates_Ordering(t *testing.T) {
	client := newTestClient(t)
	loginAsEngineer(t, client)
	incident := createIncident(t, client, "ordering check", true)

	var ids []string
	for i := 1; i <= 3; i++ {
		update := addUpdate(t, client, incident.ID, fmt.Sprintf("update number %d", i))
		ids = append(ids, update.ID)
	}

	// Incident-scoped listing is chronological
	resp, err := client.GET("/api/v1/incidents/" + incident.ID + "/updates")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var asc struct {
		Data []updateResult `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &asc)
	require.Len(t, asc.Data, 3)
	for i, update := range asc.Data {
		assert.Equal(t, ids[i], update.ID)
	}

	// The standalone listing is newest-first
	resp, err = client.GET("/api/v1/updates/incident/" + incident.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var desc struct {
		Data []updateResult `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &desc)
	require.Len(t, desc.Data, 3)
	for i, update := range desc.Data {
		assert.Equal(t, ids[len(ids)-1-i], update.ID)
	}
}

func TestUpdates_StandaloneListing_PrivilegedAccess(t *testing.T) {
	engineer := newTestClient(t)
	loginAsEngineer(t, engineer)
	incident := createIncident(t, engineer, "private standalone listing", false)
	update := addUpdate(t, engineer, incident.ID, "visible to staff only")

	// A bearer token on the standalone route widens visibility
	resp, err := engineer.GET("/api/v1/updates/incident/" + incident.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data []updateResult `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	require.Len(t, result.Data, 1)
	assert.Equal(t, update.ID, result.Data[0].ID)
}

func TestUpdates_PrivateIncident_Forbidden(t *testing.T) {
	engineer := newTestClient(t)
	loginAsEngineer(t, engineer)
	incident := createIncident(t, engineer, "private timeline check", false)
	addUpdate(t, engineer, incident.ID, "hidden from the public")

	anon := newTestClient(t)
	resp, err := anon.GET("/api/v1/updates/incident/" + incident.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	viewer := newTestClient(t)
	loginAsViewer(t, viewer)
	resp, err = viewer.GET("/api/v1/incidents/" + incident.ID + "/updates")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestUpdates_EmptyContent_Rejected(t *testing.T) {
	client := newTestClient(t)
	loginAsEngineer(t, client)
	incident := createIncident(t, client, "empty content check", true)

	resp, err := client.POST("/api/v1/incidents/"+incident.ID+"/updates", map[string]string{
		"content": "   ",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestUpdates_UnknownIncident(t *testing.T) {
	client := newTestClient(t)
	loginAsEngineer(t, client)

	resp, err := client.POST("/api/v1/incidents/11111111-2222-3333-4444-555555555555/updates", map[string]string{
		"content": "nowhere to attach",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestUpdates_Delete_Ownership(t *testing.T) {
	author := newTestClient(t)
	loginAsEngineer(t, author)
	incident := createIncident(t, author, "delete ownership check", true)
	mine := addUpdate(t, author, incident.ID, "posted by the author")
	theirs := addUpdate(t, author, incident.ID, "also posted by the author")

	// A different engineer cannot remove someone else's update
	other := newTestClient(t)
	otherEmail := testutil.RandomEmail("other-engineer")
	registerEngineer(t, other, otherEmail)

	resp, err := other.DELETE("/api/v1/updates/" + mine.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// The author can
	resp, err = author.DELETE("/api/v1/updates/" + mine.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// So can an admin
	admin := newTestClient(t)
	loginAsAdmin(t, admin)
	resp, err = admin.DELETE("/api/v1/updates/" + theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp, err = author.GET("/api/v1/incidents/" + incident.ID + "/updates")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var remaining struct {
		Data []updateResult `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &remaining)
	assert.Empty(t, remaining.Data)
}

func TestUpdates_Delete_DemotedAuthor(t *testing.T) {
	email := testutil.RandomEmail("demoted")
	author := newTestClient(t)
	registerEngineer(t, author, email)

	incident := createIncident(t, author, "demotion check", true)
	update := addUpdate(t, author, incident.ID, "written before the demotion")

	resp, err := author.GET("/api/v1/auth/me")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me struct {
		Data userResult `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &me)

	admin := newTestClient(t)
	loginAsAdmin(t, admin)
	resp, err = admin.PATCH("/api/v1/users/"+me.Data.ID+"/role", map[string]string{
		"role": "VIEWER",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Authorship still grants deletion after the role is gone
	author.LoginAs(t, email, seedPassword)
	resp, err = author.DELETE("/api/v1/updates/" + update.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
}

func TestUpdates_OnResolvedIncident_Allowed(t *testing.T) {
	client := newTestClient(t)
	loginAsEngineer(t, client)
	incident := createIncident(t, client, "post-resolution check", true)

	resp, err := client.PATCH("/api/v1/incidents/"+incident.ID+"/resolve", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	update := addUpdate(t, client, incident.ID, "postmortem published")
	assert.Equal(t, incident.ID, update.IncidentID)
}

// registerEngineer creates a fresh account and promotes it so the
// client holds an ENGINEER token.
func registerEngineer(t *testing.T, client *testutil.Client, email string) {
	t.Helper()

	resp, err := client.POST("/api/v1/auth/register", map[string]string{
		"email":    email,
		"password": seedPassword,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var registered struct {
		Data struct {
			User  userResult `json:"user"`
			Token string     `json:"token"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &registered)

	admin := newTestClient(t)
	loginAsAdmin(t, admin)
	resp, err = admin.PATCH("/api/v1/users/"+registered.Data.User.ID+"/role", map[string]string{
		"role": "ENGINEER",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Re-login so the token carries the new role
	client.LoginAs(t, email, seedPassword)
}
