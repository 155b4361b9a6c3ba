package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/fioprotocol/fio-provisioner/internal/api/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T, env *Env) {
	rr := doJSON(env.Router, http.MethodGet, "/health", nil, "")

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp dto.HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, dto.HealthResponse{Status: "ok", Database: "ok"}, resp)
}
