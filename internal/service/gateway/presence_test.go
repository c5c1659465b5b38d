package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeSessionLookup struct {
	nodes map[string]string
	err   error
}

func (f *fakeSessionLookup) GetUserGateway(ctx context.Context, userID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.nodes[userID], nil
}

func TestPresenceHandler(t *testing.T) {
	handler := PresenceHandler(&fakeSessionLookup{
		nodes: map[string]string{"owner-1": "wallet-push-gateway-ab12cd34"},
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/presence?owner_id=owner-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PresenceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Online)
	require.Equal(t, "wallet-push-gateway-ab12cd34", resp.NodeID)

	// 不在线的用户 node_id 为空
	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/presence?owner_id=owner-2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	resp = PresenceResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Online)
	require.Empty(t, resp.NodeID)
}

func TestPresenceHandlerErrors(t *testing.T) {
	handler := PresenceHandler(&fakeSessionLookup{})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/presence", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	handler = PresenceHandler(&fakeSessionLookup{err: errors.New("redis down")})
	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/presence?owner_id=owner-1", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
