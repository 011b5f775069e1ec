package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"peerlink/internal/core/services"
	"peerlink/internal/infrastructure/repositories"
	"peerlink/internal/infrastructure/repositories/memory"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mailbox := repositories.NewFallbackMailbox(nil, memory.NewMemoryMailboxRepository(), nil, nil)
	relaySvc := services.NewRelayService(mailbox, nil, nil, 256*1024)
	roomSvc := services.NewRoomService(memory.NewMemoryRoomRepository(), nil)

	router := gin.New()
	api := router.Group("/api/v1")
	NewRelayHandler(relaySvc).SetupRoutes(api)
	NewRoomHandler(roomSvc).SetupRoutes(api)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed), "body: %s", w.Body.String())
	return w, parsed
}

func TestEnsureRoom_GeneratesID(t *testing.T) {
	router := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodPost, "/api/v1/rooms", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["ok"])

	room := body["room"].(map[string]interface{})
	assert.Len(t, room["id"].(string), 6)
}

func TestEnsureRoom_WithID(t *testing.T) {
	router := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodPost, "/api/v1/rooms", `{"room_id":"ABC123"}`)
	require.Equal(t, http.StatusOK, w.Code)
	room := body["room"].(map[string]interface{})
	assert.Equal(t, "ABC123", room["id"])
}

func TestGetRoom_Missing(t *testing.T) {
	router := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodGet, "/api/v1/rooms/ZZZZZZ", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, body["ok"])
}

func TestOffer_FullExchange(t *testing.T) {
	router := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodPost, "/api/v1/rooms/ABC123/offer",
		`{"host_id":"host-1","description":{"type":"offer","sdp":"v=0..."}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "volatile", body["mode"])

	// Viewer consumes the exact payload
	w, body = doJSON(t, router, http.MethodGet, "/api/v1/rooms/ABC123/offer", "")
	require.Equal(t, http.StatusOK, w.Code)
	offer := body["offer"].(map[string]interface{})
	desc := offer["description"].(map[string]interface{})
	assert.Equal(t, "v=0...", desc["sdp"])

	// Second consume: 200 with a null payload, not an error
	w, body = doJSON(t, router, http.MethodGet, "/api/v1/rooms/ABC123/offer", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["ok"])
	assert.Nil(t, body["offer"])
}

func TestOffer_MissingFieldsIs400(t *testing.T) {
	router := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodPost, "/api/v1/rooms/ABC123/offer",
		`{"host_id":"","description":{"type":"offer","sdp":"v=0"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["ok"])
	assert.NotEmpty(t, body["error"])
}

func TestAnswer_ExactlyOnce(t *testing.T) {
	router := newTestRouter(t)

	w, _ := doJSON(t, router, http.MethodPost, "/api/v1/rooms/ABC123/answer",
		`{"host_id":"host-1","description":{"type":"answer","sdp":"v=0..."}}`)
	require.Equal(t, http.StatusOK, w.Code)

	w, body := doJSON(t, router, http.MethodGet, "/api/v1/rooms/ABC123/answer?host_id=host-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, body["answer"])

	w, body = doJSON(t, router, http.MethodGet, "/api/v1/rooms/ABC123/answer?host_id=host-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, body["answer"])
}

func TestCandidates_RoleFilterAndOrder(t *testing.T) {
	router := newTestRouter(t)

	for _, c := range []string{"c1", "c2", "c3"} {
		w, _ := doJSON(t, router, http.MethodPost, "/api/v1/rooms/ABC123/candidates",
			`{"role":"host","candidate":{"candidate":"candidate:`+c+`","sdp_mid":"0","sdp_mline_index":0}}`)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w, body := doJSON(t, router, http.MethodGet, "/api/v1/rooms/ABC123/candidates?role=viewer", "")
	require.Equal(t, http.StatusOK, w.Code)
	cands := body["candidates"].([]interface{})
	require.Len(t, cands, 3)
	for i, c := range cands {
		assert.Equal(t, "candidate:c"+string(rune('1'+i)), c.(map[string]interface{})["candidate"])
	}

	// Drained: second fetch is empty
	w, body = doJSON(t, router, http.MethodGet, "/api/v1/rooms/ABC123/candidates?role=viewer", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["candidates"])

	// The posting role never sees its own entries
	w, body = doJSON(t, router, http.MethodGet, "/api/v1/rooms/ABC123/candidates?role=host", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["candidates"])
}

func TestCandidates_BadRoleIs400(t *testing.T) {
	router := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodGet, "/api/v1/rooms/ABC123/candidates?role=spectator", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["ok"])
}
