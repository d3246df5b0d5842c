package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secure-agent-api/internal/interfaces/http/dto"
)

func newDirectoryRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewDirectoryHandler()

	engine := gin.New()
	engine.GET("/v1/users", h.ListUsers)
	engine.GET("/v1/documents", h.ListDocuments)
	engine.GET("/v1/permissions/:actor_id", h.GetPermissions)
	return engine
}

func get(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestListUsers(t *testing.T) {
	w := get(newDirectoryRouter(), "/v1/users")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response[[]dto.UserInfo]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 4)
	assert.Equal(t, "user:seigen", resp.Data[0].ID)
	assert.Equal(t, []string{"engineering", "sales"}, resp.Data[0].Groups)
}

func TestListDocumentsOmitsBody(t *testing.T) {
	w := get(newDirectoryRouter(), "/v1/documents")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response[[]dto.DocumentInfo]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 7)

	// 目录接口不应泄露正文
	assert.NotContains(t, w.Body.String(), "Competitor X")
}

func TestGetPermissions(t *testing.T) {
	engine := newDirectoryRouter()

	w := get(engine, "/v1/permissions/user:tsuki")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response[dto.PermissionsResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "user:tsuki", resp.Data.ActorID)
	assert.Equal(t, []string{"engineering"}, resp.Data.Groups)
	assert.ElementsMatch(t, []string{"engineering", "general"}, resp.Data.Folders)

	var docIDs []string
	for _, d := range resp.Data.AccessibleDocuments {
		docIDs = append(docIDs, d.ID)
		assert.NotEmpty(t, d.Title)
		assert.NotEmpty(t, d.Folder)
	}
	assert.ElementsMatch(t, []string{"1", "3", "4", "6"}, docIDs)
}

func TestGetPermissionsUnknownUser(t *testing.T) {
	w := get(newDirectoryRouter(), "/v1/permissions/user:nobody")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPermissionsBadActor(t *testing.T) {
	w := get(newDirectoryRouter(), "/v1/permissions/nobody")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
