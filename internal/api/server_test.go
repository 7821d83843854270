package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/abdotaker608/golden-pens-api/internal/auth"
	"github.com/abdotaker608/golden-pens-api/internal/config"
	"github.com/abdotaker608/golden-pens-api/internal/mail"
	"github.com/abdotaker608/golden-pens-api/internal/service"
	"github.com/abdotaker608/golden-pens-api/internal/store"
	"github.com/abdotaker608/golden-pens-api/internal/store/sqlite"
	"github.com/abdotaker608/golden-pens-api/internal/validation"
)

// captureMailer records outbound messages instead of sending them.
type captureMailer struct {
	messages []*mail.Message
}

func (m *captureMailer) Send(_ context.Context, msg *mail.Message) error {
	m.messages = append(m.messages, msg)
	return nil
}

// testServer wraps the API server for handler testing.
type testServer struct {
	*Server
	api    humatest.TestAPI
	store  store.Store
	mailer *captureMailer
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	key := bytes.Repeat([]byte{0x42}, 32)
	tokens, err := auth.NewTokenService(key, time.Hour, 24*time.Hour)
	require.NoError(t, err)

	cfg := &config.Config{
		Server: config.ServerConfig{
			FrontendURL:    "http://frontend.test",
			AllowedOrigins: []string{"http://frontend.test"},
		},
		Search: config.SearchConfig{
			SimilarityThreshold: 0.1,
			TrendingWindow:      7 * 24 * time.Hour,
			PageSize:            9,
			RepliesPageSize:     6,
			AuthorsPageSize:     20,
			FeedLimit:           10,
		},
		Throttle: config.ThrottleConfig{RequestsPerSecond: 1000, Burst: 1000},
	}

	mailer := &captureMailer{}
	validator := validation.New()

	services := &Services{
		Auth:       service.NewAuthService(st, tokens, mailer, validator, logger, cfg.Server.FrontendURL),
		Profiles:   service.NewProfileService(st, validator, logger, cfg.Search),
		Stories:    service.NewStoryService(st, validator, logger, cfg.Search),
		Search:     service.NewSearchService(st, cfg.Search, logger),
		Authorizer: service.NewAuthorizer(st),
	}

	server := NewServer(cfg, services, logger)
	t.Cleanup(server.Close)

	return &testServer{
		Server: server,
		api:    humatest.Wrap(t, server.api),
		store:  st,
		mailer: mailer,
	}
}

// registerAndVerify walks a user through the signup flow and returns the
// account payload with its canonical access token.
func (ts *testServer) registerAndVerify(t *testing.T, email string) AccountResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":      email,
		"password":   "secret-password",
		"first_name": "Amina",
		"last_name":  "Writer",
	})
	require.Equal(t, http.StatusOK, resp.Code, "register failed: %s", resp.Body.String())

	require.NotEmpty(t, ts.mailer.messages)
	link := ts.mailer.messages[len(ts.mailer.messages)-1].HTML
	idx := strings.Index(link, "/verify/")
	require.NotEqual(t, -1, idx)
	token := link[idx+len("/verify/"):]
	token = token[:strings.IndexAny(token, `"<`)]

	resp = ts.api.Post("/api/v1/auth/verify-email", map[string]any{"token": token})
	require.Equal(t, http.StatusOK, resp.Code, "verify failed: %s", resp.Body.String())

	var account AccountResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &account))
	require.NotEmpty(t, account.AccessToken)
	return account
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func bearer(account AccountResponse) string {
	return "Authorization: Bearer " + account.AccessToken
}
