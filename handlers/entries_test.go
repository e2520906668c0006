package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"todust/models"
	"todust/repository"
	"todust/repository/testutil"
	"todust/views"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gin-gonic/gin"
)

func newTestRouter() (*gin.Engine, *repository.Repository) {
	gin.SetMode(gin.TestMode)

	repo := repository.New(testutil.NewMemStore())

	r := gin.New()
	r.SetHTMLTemplate(views.Templates())

	r.GET("/health", HealthCheck)
	r.GET("/", IndexPage(repo))
	r.GET("/project/:project", ProjectPage(repo))
	r.GET("/entry/:uuid", EntryPage(repo))

	api := r.Group("/api/v1")
	api.GET("/list/:project", ListEntries(repo))
	api.GET("/entries/:uuid", GetEntry(repo))
	api.GET("/projects", ProjectSummary(repo))
	api.GET("/export/:project", ExportProject(repo))
	api.POST("/entries", AddEntry(repo))
	api.PUT("/entries/:uuid/text", EditText(repo))
	api.PUT("/entries/:uuid/project", MoveEntry(repo))
	api.PUT("/entries/:uuid/done", SetDone(repo))
	api.PUT("/entries/:uuid/due", SetDue(repo))
	api.POST("/projects/rename", RenameProject(repo))

	return r, repo
}

func performJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEntry(t *testing.T, w *httptest.ResponseRecorder) models.Entry {
	t.Helper()

	var entry models.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
	return entry
}

func TestHealthCheck(t *testing.T) {
	r, _ := newTestRouter()

	w := performJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAddEntryHandler(t *testing.T) {
	r, _ := newTestRouter()

	w := performJSON(t, r, http.MethodPost, "/api/v1/entries", models.AddEntryRequest{
		Project: "home",
		Text:    "Buy milk",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	entry := decodeEntry(t, w)
	assert.Equal(t, "home", entry.Project)
	assert.Equal(t, "Buy milk", entry.Text)
	assert.NotEqual(t, uuid.Nil, entry.UUID)
	assert.Nil(t, entry.Finished)
}

func TestAddEntryHandler_MissingText(t *testing.T) {
	r, _ := newTestRouter()

	w := performJSON(t, r, http.MethodPost, "/api/v1/entries", gin.H{"project": "home"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetEntryHandler(t *testing.T) {
	r, repo := newTestRouter()

	entry, err := repo.AddEntry(context.Background(), "home", "Buy milk")
	require.NoError(t, err)

	w := performJSON(t, r, http.MethodGet, "/api/v1/entries/"+entry.UUID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entry.UUID, decodeEntry(t, w).UUID)
}

func TestGetEntryHandler_InvalidUUID(t *testing.T) {
	r, _ := newTestRouter()

	w := performJSON(t, r, http.MethodGet, "/api/v1/entries/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetEntryHandler_NotFound(t *testing.T) {
	r, _ := newTestRouter()

	w := performJSON(t, r, http.MethodGet, "/api/v1/entries/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListEntriesHandler(t *testing.T) {
	r, repo := newTestRouter()
	ctx := context.Background()

	_, err := repo.AddEntry(ctx, "home", "active entry")
	require.NoError(t, err)
	done, err := repo.AddEntry(ctx, "home", "done entry")
	require.NoError(t, err)
	_, err = repo.SetDone(ctx, done.UUID, true)
	require.NoError(t, err)

	w := performJSON(t, r, http.MethodGet, "/api/v1/list/home", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "home", resp.Project)
	assert.Len(t, resp.Active, 1)
	assert.Empty(t, resp.Done)

	w = performJSON(t, r, http.MethodGet, "/api/v1/list/home?show_done=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Active, 1)
	assert.Len(t, resp.Done, 1)
}

func TestEditTextHandler(t *testing.T) {
	r, repo := newTestRouter()

	entry, err := repo.AddEntry(context.Background(), "home", "old")
	require.NoError(t, err)

	w := performJSON(t, r, http.MethodPut,
		fmt.Sprintf("/api/v1/entries/%s/text", entry.UUID),
		models.EditTextRequest{Text: "new", UpdateTime: false})
	require.Equal(t, http.StatusOK, w.Code)

	updated := decodeEntry(t, w)
	assert.Equal(t, "new", updated.Text)
	assert.True(t, updated.LastChange.Equal(entry.LastChange))
}

func TestMoveEntryHandler_EmptyProject(t *testing.T) {
	r, repo := newTestRouter()

	entry, err := repo.AddEntry(context.Background(), "home", "Buy milk")
	require.NoError(t, err)

	w := performJSON(t, r, http.MethodPut,
		fmt.Sprintf("/api/v1/entries/%s/project", entry.UUID),
		models.MoveEntryRequest{Project: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	got, err := repo.GetEntry(context.Background(), entry.UUID)
	require.NoError(t, err)
	assert.Equal(t, "home", got.Project)
}

func TestSetDoneHandler(t *testing.T) {
	r, repo := newTestRouter()

	entry, err := repo.AddEntry(context.Background(), "home", "Buy milk")
	require.NoError(t, err)

	w := performJSON(t, r, http.MethodPut,
		fmt.Sprintf("/api/v1/entries/%s/done", entry.UUID),
		models.SetDoneRequest{Done: true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, decodeEntry(t, w).Finished)
}

func TestSetDueHandler(t *testing.T) {
	r, repo := newTestRouter()

	entry, err := repo.AddEntry(context.Background(), "home", "Buy milk")
	require.NoError(t, err)

	w := performJSON(t, r, http.MethodPut,
		fmt.Sprintf("/api/v1/entries/%s/due", entry.UUID),
		models.SetDueRequest{Due: "2026-12-24"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, decodeEntry(t, w).Due)

	w = performJSON(t, r, http.MethodPut,
		fmt.Sprintf("/api/v1/entries/%s/due", entry.UUID),
		models.SetDueRequest{Due: "christmas"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRenameProjectHandler(t *testing.T) {
	r, repo := newTestRouter()
	ctx := context.Background()

	_, err := repo.AddEntry(ctx, "home", "one")
	require.NoError(t, err)
	_, err = repo.AddEntry(ctx, "home", "two")
	require.NoError(t, err)

	w := performJSON(t, r, http.MethodPost, "/api/v1/projects/rename",
		models.RenameProjectRequest{From: "home", To: "house"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp["moved"])
}

func TestProjectSummaryHandler(t *testing.T) {
	r, repo := newTestRouter()
	ctx := context.Background()

	_, err := repo.AddEntry(ctx, "home", "one")
	require.NoError(t, err)
	_, err = repo.AddEntry(ctx, "work", "two")
	require.NoError(t, err)

	w := performJSON(t, r, http.MethodGet, "/api/v1/projects", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ProjectsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Projects, 2)
	assert.Equal(t, "home", resp.Projects[0].Project)
	assert.Equal(t, "work", resp.Projects[1].Project)
}

func TestExportProjectHandler(t *testing.T) {
	r, repo := newTestRouter()

	_, err := repo.AddEntry(context.Background(), "home", "Buy milk")
	require.NoError(t, err)

	w := performJSON(t, r, http.MethodGet, "/api/v1/export/home", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/asciidoc")
	assert.Contains(t, w.Body.String(), "=== Buy milk")
}

func TestIndexPage(t *testing.T) {
	r, repo := newTestRouter()

	_, err := repo.AddEntry(context.Background(), "home", "Buy milk")
	require.NoError(t, err)

	w := performJSON(t, r, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "home")
}

func TestProjectPage(t *testing.T) {
	r, repo := newTestRouter()

	_, err := repo.AddEntry(context.Background(), "home", "Buy milk\nand eggs")
	require.NoError(t, err)

	w := performJSON(t, r, http.MethodGet, "/project/home", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Buy milk and eggs")
}

func TestEntryPage(t *testing.T) {
	r, repo := newTestRouter()

	entry, err := repo.AddEntry(context.Background(), "home", "Buy milk")
	require.NoError(t, err)

	w := performJSON(t, r, http.MethodGet, "/entry/"+entry.UUID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Buy milk")
}
