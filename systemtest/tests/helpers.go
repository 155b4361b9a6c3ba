package tests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"

	"github.com/fioprotocol/fio-provisioner/internal/chain/chaintest"
	"github.com/fioprotocol/fio-provisioner/internal/ledger"
	"github.com/gin-gonic/gin"
)

// Env is the running system under test.
type Env struct {
	Router *gin.Engine
	Chain  *chaintest.Chain
	Ledger *ledger.Store
	APIKey string
}

func doJSON(router *gin.Engine, method, path string, body any, apiKey string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}
