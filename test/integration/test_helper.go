package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vaultcontrol/internal/handlers"
	"vaultcontrol/internal/routes"
	"vaultcontrol/internal/token"
	"vaultcontrol/internal/vault"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const (
	governance = "governance"
	management = "management"
	guardian   = "guardian"
	rewards    = "rewards"
)

// testClock is advanced manually so fee proration and locked-profit decay
// are deterministic.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type testEnv struct {
	router *gin.Engine
	app    *handlers.App
	asset  *token.MemToken
	clock  *testClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := &testClock{now: time.Unix(1_700_000_000, 0)}
	asset := token.New("asset-usd")
	v, err := vault.New(vault.Config{
		Address:           "vault-main",
		Asset:             asset,
		Governance:        governance,
		Management:        management,
		Guardian:          guardian,
		FeeRecipient:      rewards,
		DepositLimit:      1_000_000_000,
		PerformanceFeeBps: 1000,
		ManagementFeeBps:  0,
		DispenseRateBps:   10000,
		Now:               clock.Now,
	})
	require.NoError(t, err)

	app := handlers.Init(v, asset, nil, nil)
	return &testEnv{
		router: routes.SetupRouter(nil),
		app:    app,
		asset:  asset,
		clock:  clock,
	}
}

// do issues a JSON request against the router and decodes the response.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			// List responses decode to nil here; tests that need them
			// decode the recorder body themselves.
			decoded = nil
		}
	}
	return rec.Code, decoded
}

func (e *testEnv) post(t *testing.T, path string, body interface{}) (int, map[string]interface{}) {
	return e.do(t, http.MethodPost, path, body)
}

func (e *testEnv) get(t *testing.T, path string) (int, map[string]interface{}) {
	return e.do(t, http.MethodGet, path, nil)
}

func num(body map[string]interface{}, key string) uint64 {
	v, ok := body[key].(float64)
	if !ok {
		return 0
	}
	return uint64(v)
}
