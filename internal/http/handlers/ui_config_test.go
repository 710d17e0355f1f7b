package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUIConfig(t *testing.T) {
	h := NewUIConfigHandler(60*time.Second, 5*time.Second, 300*time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/api/ui-config", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp UIConfigResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(60000), resp.PublicPollMs)
	assert.Equal(t, int64(5000), resp.AdminPollMs)
	assert.Equal(t, int64(300), resp.SearchDebounce)
}
