package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"royalgate-platform/internal/config"
	"royalgate-platform/pkg/health"
	"royalgate-platform/services/ledger"
	"royalgate-platform/services/media"
	"royalgate-platform/services/member"
	"royalgate-platform/services/mining"
	"royalgate-platform/services/quiz"
	"royalgate-platform/services/quota"
	"royalgate-platform/services/settings"
	"royalgate-platform/services/testutil"
	"royalgate-platform/services/withdrawal"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t,
		&member.Member{}, &member.Referral{},
		&ledger.Transaction{}, &ledger.Balance{},
		&media.PlaybackSession{}, &quiz.Question{},
		&settings.Settings{}, &settings.Song{}, &withdrawal.Request{},
	)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	ledgerSvc := ledger.NewService(ledger.ServiceParams{DB: db, Node: node})
	memberSvc := member.NewService(member.ServiceParams{DB: db, Node: node, Ledger: ledgerSvc})
	quotaSvc := quota.NewService(quota.ServiceParams{DB: db, Ledger: ledgerSvc})
	miningSvc := mining.NewService(mining.ServiceParams{DB: db, Ledger: ledgerSvc, Quota: quotaSvc})
	mediaSvc := media.NewService(media.ServiceParams{DB: db, Node: node, Quota: quotaSvc})
	quizSvc := quiz.NewService(quiz.ServiceParams{DB: db, Node: node, Ledger: ledgerSvc, Quota: quotaSvc})
	settingsSvc := settings.NewService(settings.ServiceParams{DB: db, Node: node})
	withdrawalSvc := withdrawal.NewService(withdrawal.ServiceParams{
		DB: db, Node: node, Ledger: ledgerSvc, Members: memberSvc, Settings: settingsSvc,
	})

	handler := NewHandler(HandlerParams{
		Members:     memberSvc,
		Quota:       quotaSvc,
		Mining:      miningSvc,
		Media:       mediaSvc,
		Quiz:        quizSvc,
		Settings:    settingsSvc,
		Withdrawals: withdrawalSvc,
		Ledger:      ledgerSvc,
	})

	return NewRouter(RouterParams{
		Config:  &config.Config{AppEnv: "test"},
		Handler: handler,
		Health:  health.ProvideHealth(health.HealthParams{DB: db}),
	})
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerMember(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()

	w := do(t, r, http.MethodPost, "/v1/members", gin.H{
		"full_name": "Test " + username,
		"username":  username,
		"email":     username + "@example.com",
		"password":  "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var m struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	require.NotEmpty(t, m.ID)
	return m.ID
}

func TestHealthEndpoints(t *testing.T) {
	r := newTestRouter(t)

	require.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/healthz", nil).Code)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/readyz", nil).Code)
}

func TestRegisterActivateAndBalance(t *testing.T) {
	r := newTestRouter(t)
	id := registerMember(t, r, "ada")

	w := do(t, r, http.MethodPost, fmt.Sprintf("/v1/members/%s/activate", id), gin.H{"tier": "LEGACY"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/v1/members/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Balance int64 `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, int64(500), resp.Balance)
}

func TestPolicyErrorsRenderAsJSON(t *testing.T) {
	r := newTestRouter(t)
	id := registerMember(t, r, "ada")

	// Free tier cannot start mining.
	w := do(t, r, http.MethodPost, fmt.Sprintf("/v1/members/%s/mine/start", id), nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "FORBIDDEN", resp.Error.Code)
	require.NotEmpty(t, resp.Error.Message)
}

func TestWithdrawalFlowOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	id := registerMember(t, r, "ada")

	w := do(t, r, http.MethodPost, fmt.Sprintf("/v1/members/%s/activate", id), gin.H{"tier": "EMPEROR"})
	require.Equal(t, http.StatusOK, w.Code)

	// EMPEROR signup bonus is 5,000; withdraw 2,000 of it.
	w = do(t, r, http.MethodPost, fmt.Sprintf("/v1/members/%s/withdrawals", id), gin.H{
		"amount":         2000,
		"bank_name":      "First Bank",
		"account_number": "0123456789",
		"account_name":   "Test Ada",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var req struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &req))

	w = do(t, r, http.MethodPost, "/v1/admin/withdrawals/"+req.ID+"/approve", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/v1/admin/withdrawals/"+req.ID+"/reject", nil)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestValidationErrors(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/v1/members", gin.H{"username": "no-email"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	id := registerMember(t, r, "ada")
	w = do(t, r, http.MethodPost, fmt.Sprintf("/v1/members/%s/activate", id), gin.H{"tier": "DUKE"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
