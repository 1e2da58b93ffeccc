package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/folio-social/folio-api/internal/auth"
	"github.com/folio-social/folio-api/internal/config"
	"github.com/folio-social/folio-api/internal/middleware"
	"github.com/folio-social/folio-api/internal/model"
	"github.com/folio-social/folio-api/internal/repository"
)

var testCfg = config.Config{
	JWTSecret:    "handler-secret",
	AccessTTLMin: 60,
	BcryptCost:   4, // minimum cost keeps the test fast
	AdminEmail:   "admin@folio.com",
}

// fakeUsers is an in-memory UserStore.
type fakeUsers struct {
	byEmail map[string]model.User
	nextID  uint64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]model.User{}, nextID: 1}
}

func (f *fakeUsers) Create(_ context.Context, nome, email, senha string, cost int) (uint64, error) {
	if _, ok := f.byEmail[email]; ok {
		return 0, repository.ErrEmailExists
	}
	hash, err := auth.HashPassword(senha, cost)
	if err != nil {
		return 0, err
	}
	id := f.nextID
	f.nextID++
	f.byEmail[email] = model.User{ID: id, Nome: nome, Email: email, PasswordHash: hash, Role: "USER"}
	return id, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

// fakeRevoker records revoked tokens and reports duplicates the way
// the MySQL-backed ledger does.
type fakeRevoker struct {
	revoked map[string]time.Time
}

func newFakeRevoker() *fakeRevoker { return &fakeRevoker{revoked: map[string]time.Time{}} }

func (f *fakeRevoker) Revoke(_ context.Context, token string, exp time.Time) error {
	if _, ok := f.revoked[token]; ok {
		return repository.ErrAlreadyRevoked
	}
	f.revoked[token] = exp
	return nil
}

// newCtx builds an Echo context with the validator installed and an
// optional JSON body.
func newCtx(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return m
}

func TestRegisterSuccess(t *testing.T) {
	h := NewAuthHandler(testCfg, newFakeUsers(), newFakeRevoker())
	c, rec := newCtx(t, http.MethodPost, "/api/auth/register",
		`{"nome":"Ana","email":"a@b.com","senha":"abcdef"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["usuariosId"] != float64(1) {
		t.Fatalf("expected usuariosId 1, got %v", body["usuariosId"])
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newFakeUsers()
	h := NewAuthHandler(testCfg, users, newFakeRevoker())

	c, _ := newCtx(t, http.MethodPost, "/api/auth/register",
		`{"nome":"Ana","email":"a@b.com","senha":"abcdef"}`)
	_ = h.Register(c)

	c, rec := newCtx(t, http.MethodPost, "/api/auth/register",
		`{"nome":"Outra","email":"a@b.com","senha":"ghijkl"}`)
	_ = h.Register(c)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", rec.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	h := NewAuthHandler(testCfg, newFakeUsers(), newFakeRevoker())
	cases := []string{
		`{"nome":"Ana","email":"not-an-email","senha":"abcdef"}`,
		`{"nome":"Ana","email":"a@b.com","senha":"abc"}`, // senha too short
		`{"email":"a@b.com","senha":"abcdef"}`,           // nome missing
	}
	for _, body := range cases {
		c, rec := newCtx(t, http.MethodPost, "/api/auth/register", body)
		_ = h.Register(c)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	users := newFakeUsers()
	h := NewAuthHandler(testCfg, users, newFakeRevoker())

	c, _ := newCtx(t, http.MethodPost, "/api/auth/register",
		`{"nome":"Ana","email":"a@b.com","senha":"abcdef"}`)
	_ = h.Register(c)

	c, rec := newCtx(t, http.MethodPost, "/api/auth/login",
		`{"email":"a@b.com","senha":"abcdef"}`)
	_ = h.Login(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("expected token in response")
	}
	claims, err := auth.Verify(testCfg.JWTSecret, token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.Email != "a@b.com" || claims.Nome != "Ana" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	usuarios, _ := body["usuarios"].(map[string]interface{})
	if usuarios == nil || usuarios["email"] != "a@b.com" {
		t.Fatalf("expected usuarios part in response, got %v", body["usuarios"])
	}
}

func TestLoginBadCredentials(t *testing.T) {
	users := newFakeUsers()
	h := NewAuthHandler(testCfg, users, newFakeRevoker())

	c, _ := newCtx(t, http.MethodPost, "/api/auth/register",
		`{"nome":"Ana","email":"a@b.com","senha":"abcdef"}`)
	_ = h.Register(c)

	// wrong password and unknown user both map to the same 401
	for _, body := range []string{
		`{"email":"a@b.com","senha":"wrongpw"}`,
		`{"email":"nobody@b.com","senha":"abcdef"}`,
	} {
		c, rec := newCtx(t, http.MethodPost, "/api/auth/login", body)
		_ = h.Login(c)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("body %s: expected 401, got %d", body, rec.Code)
		}
	}
}

func TestLogoutIdempotent(t *testing.T) {
	revoker := newFakeRevoker()
	h := NewAuthHandler(testCfg, newFakeUsers(), revoker)

	sess, err := auth.Issue(testCfg.JWTSecret, model.User{ID: 1, Email: "a@b.com"}, 60)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := auth.Verify(testCfg.JWTSecret, sess.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	logout := func() int {
		c, rec := newCtx(t, http.MethodPost, "/api/auth/logout", "")
		c.Request().Header.Set("Authorization", "Bearer "+sess.Token)
		c.Set(middleware.ClaimsKey, claims)
		_ = h.Logout(c)
		return rec.Code
	}

	if code := logout(); code != http.StatusOK {
		t.Fatalf("first logout: expected 200, got %d", code)
	}
	// Second logout of the same token is still a success, never a 409.
	if code := logout(); code != http.StatusOK {
		t.Fatalf("second logout: expected 200, got %d", code)
	}
	if len(revoker.revoked) != 1 {
		t.Fatalf("expected exactly one ledger entry, got %d", len(revoker.revoked))
	}
	if exp := revoker.revoked[sess.Token]; !exp.Equal(claims.ExpiresAt.Time) {
		t.Fatalf("ledger entry must carry the token's natural expiry")
	}
}

// TestLogoutIdempotentThroughRoute drives two logouts through the
// mounted route, gate included, the way a client would. The gate must
// not consult the ledger here, or the second call dies with 401 before
// the handler runs.
func TestLogoutIdempotentThroughRoute(t *testing.T) {
	revoker := newFakeRevoker()
	h := NewAuthHandler(testCfg, newFakeUsers(), revoker)

	e := echo.New()
	e.POST("/api/auth/logout", h.Logout, middleware.RequireSignedToken(testCfg.JWTSecret))

	sess, err := auth.Issue(testCfg.JWTSecret, model.User{ID: 1, Email: "a@b.com"}, 60)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	logout := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		req.Header.Set("Authorization", "Bearer "+sess.Token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := logout(); code != http.StatusOK {
		t.Fatalf("first logout: expected 200, got %d", code)
	}
	if code := logout(); code != http.StatusOK {
		t.Fatalf("second logout: expected 200, got %d", code)
	}
	if len(revoker.revoked) != 1 {
		t.Fatalf("expected exactly one ledger entry, got %d", len(revoker.revoked))
	}
}
