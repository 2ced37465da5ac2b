package account

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/janisto/huma-dashboard/internal/platform/auth"
	appmiddleware "github.com/janisto/huma-dashboard/internal/platform/middleware"
	"github.com/janisto/huma-dashboard/internal/platform/respond"
	accountsvc "github.com/janisto/huma-dashboard/internal/service/account"
	"github.com/janisto/huma-dashboard/internal/service/feedback"
	"github.com/janisto/huma-dashboard/internal/service/profile"
	"github.com/janisto/huma-dashboard/internal/service/storage"
	"github.com/janisto/huma-dashboard/internal/settings"
)

type fixture struct {
	accounts *accountsvc.MockService
	profiles *profile.MockProfileService
	sessions *settings.Sessions
	router   chi.Router
}

func newFixture() *fixture {
	f := &fixture{
		accounts: accountsvc.NewMockService(),
		profiles: profile.NewMockProfileService(),
	}
	f.sessions = settings.NewSessions(settings.Deps{
		Profiles: f.profiles,
		Feedback: feedback.NewMockFeedbackService(),
		Accounts: f.accounts,
		Storage:  storage.NewMockStore("https://cdn.example.com"),
	})
	router := chi.NewRouter()
	router.Use(appmiddleware.RequestID(), respond.Recoverer())
	api := humachi.New(router, huma.DefaultConfig("AccountTest", "test"))
	api.UseMiddleware(auth.NewAuthMiddleware(api, &auth.MockVerifier{User: auth.TestUser()}))
	Register(api, f.accounts, f.sessions)
	f.router = router
	return f
}

func (f *fixture) post(path, body string, token bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token {
		req.Header.Set("Authorization", "Bearer valid-token")
	}
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)
	return resp
}

func TestSignUpAndSignIn(t *testing.T) {
	f := newFixture()

	resp := f.post("/auth/signup",
		`{"email":"Jane@Example.com","password":"Secret123","firstName":"Jane","lastName":"Doe"}`, false)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var s Session
	if err := json.Unmarshal(resp.Body.Bytes(), &s); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if s.IDToken == "" || s.User.Email != "jane@example.com" {
		t.Errorf("unexpected session: %+v", s)
	}

	resp = f.post("/auth/signin", `{"email":"jane@example.com","password":"Secret123"}`, false)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = f.post("/auth/signup",
		`{"email":"jane@example.com","password":"Secret123","firstName":"Jane","lastName":"Doe"}`, false)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for taken email, got %d", resp.Code)
	}
}

func TestSignUpWeakPassword(t *testing.T) {
	f := newFixture()

	resp := f.post("/auth/signup",
		`{"email":"jane@example.com","password":"alllowercase","firstName":"Jane","lastName":"Doe"}`, false)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", resp.Code, resp.Body.String())
	}
	var model huma.ErrorModel
	if err := json.Unmarshal(resp.Body.Bytes(), &model); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if len(model.Errors) != 1 || model.Errors[0].Location != "body.password" {
		t.Errorf("unexpected details: %+v", model.Errors)
	}
}

func TestSignUpValidatesEveryField(t *testing.T) {
	f := newFixture()

	resp := f.post("/auth/signup",
		`{"email":"jane-at-example","password":"Secret123","firstName":" ","lastName":"Doe","username":"jane doe"}`, false)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", resp.Code, resp.Body.String())
	}
	var model huma.ErrorModel
	if err := json.Unmarshal(resp.Body.Bytes(), &model); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	want := []string{"body.email", "body.firstName", "body.username"}
	if len(model.Errors) != len(want) {
		t.Fatalf("expected %d details, got %+v", len(want), model.Errors)
	}
	for i, loc := range want {
		if model.Errors[i].Location != loc {
			t.Errorf("detail %d: expected %s, got %s", i, loc, model.Errors[i].Location)
		}
	}
	if model.Errors[0].Message != settings.MsgEmailInvalid {
		t.Errorf("unexpected email message: %s", model.Errors[0].Message)
	}
}

func TestSignInRequiresPassword(t *testing.T) {
	f := newFixture()

	resp := f.post("/auth/signin", `{"email":"jane@example.com","password":""}`, false)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), settings.MsgPasswordRequired) {
		t.Errorf("expected password message, got %s", resp.Body.String())
	}
}

func TestSignInInvalidCredentials(t *testing.T) {
	f := newFixture()

	resp := f.post("/auth/signin", `{"email":"nobody@example.com","password":"Secret123"}`, false)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "invalid email or password") {
		t.Errorf("expected generic message, got %s", resp.Body.String())
	}
}

func TestRecoveryEmails(t *testing.T) {
	f := newFixture()

	if resp := f.post("/auth/magic-link", `{"email":"jane@example.com"}`, false); resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", resp.Code, resp.Body.String())
	}
	if resp := f.post("/auth/password-reset", `{"email":"jane@example.com"}`, false); resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", resp.Code, resp.Body.String())
	}
	emails := f.accounts.Emails()
	if len(emails) != 2 || emails[0] != "magic_link:jane@example.com" || emails[1] != "password_reset:jane@example.com" {
		t.Errorf("unexpected emails: %v", emails)
	}

	if resp := f.post("/auth/magic-link", `{"email":"not-an-email"}`, false); resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for malformed email, got %d", resp.Code)
	}
	if len(f.accounts.Emails()) != 2 {
		t.Fatal("a rejected address must not reach the provider")
	}
}

func TestRecoveryEmailProviderFailure(t *testing.T) {
	f := newFixture()
	f.accounts.Err = errors.New("provider down")

	if resp := f.post("/auth/password-reset", `{"email":"jane@example.com"}`, false); resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestSignOutEndsSession(t *testing.T) {
	f := newFixture()
	uid := auth.TestUser().UID
	if _, err := f.profiles.Create(context.Background(), uid, profile.CreateParams{
		Email: "jane@example.com", Firstname: "Jane", Lastname: "Doe",
	}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	form, err := f.sessions.Profile(context.Background(), uid)
	if err != nil {
		t.Fatalf("open form: %v", err)
	}

	resp := f.post("/auth/signout", ``, true)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", resp.Code, resp.Body.String())
	}
	if !form.Disposed() {
		t.Error("expected open form disposed")
	}
	if got := f.accounts.SignOuts(); len(got) != 1 || got[0] != uid {
		t.Errorf("expected sign-out of %s, got %v", uid, got)
	}
	if _, _, ok := f.sessions.Deps().Cache.Peek(uid); ok {
		t.Error("expected cached profile cleared")
	}
}

func TestSignOutRequiresToken(t *testing.T) {
	f := newFixture()

	resp := f.post("/auth/signout", ``, false)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestCurrentUser(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var u User
	if err := json.Unmarshal(resp.Body.Bytes(), &u); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if u.ID != auth.TestUser().UID || u.Email != auth.TestUser().Email {
		t.Errorf("unexpected user: %+v", u)
	}
}
