package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/userdesk/user-portal/internal/api/middleware"
	"github.com/userdesk/user-portal/internal/core/domain"
	"github.com/userdesk/user-portal/internal/core/ports"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

type stubAuthService struct {
	registerFn func(ctx context.Context, input ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (string, *domain.User, error)
	logoutFn   func(ctx context.Context, token string) error
}

func (s *stubAuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, input)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Logout(ctx context.Context, token string) error {
	if s.logoutFn != nil {
		return s.logoutFn(ctx, token)
	}
	return nil
}

type stubSessions struct {
	states    map[string]*domain.SessionState
	flashes   map[string]*domain.Flash
	nextToken int
}

func newStubSessions() *stubSessions {
	return &stubSessions{
		states:  make(map[string]*domain.SessionState),
		flashes: make(map[string]*domain.Flash),
	}
}

func (s *stubSessions) Create(_ context.Context, identity *domain.Identity) (string, error) {
	s.nextToken++
	token := fmt.Sprintf("token-%d", s.nextToken)
	state := &domain.SessionState{}
	if identity != nil {
		state = &domain.SessionState{Authenticated: true, Email: identity.Email, Name: identity.Name, IsAdmin: identity.IsAdmin}
	}
	s.states[token] = state
	return token, nil
}

func (s *stubSessions) Resolve(_ context.Context, token string) (*domain.SessionState, error) {
	state, ok := s.states[token]
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return state, nil
}

func (s *stubSessions) Destroy(_ context.Context, token string) error {
	delete(s.states, token)
	return nil
}

func (s *stubSessions) SetFlash(_ context.Context, token string, flash domain.Flash) error {
	s.flashes[token] = &flash
	return nil
}

func (s *stubSessions) PopFlash(_ context.Context, token string) (*domain.Flash, error) {
	flash := s.flashes[token]
	delete(s.flashes, token)
	return flash, nil
}

// multipartForm builds a multipart body with text fields and an optional
// image part.
func multipartForm(t *testing.T, fields map[string]string, image []byte, imageName string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if image != nil {
		part, err := w.CreateFormFile("image", imageName)
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := part.Write(image); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, w.FormDataContentType()
}

// newFormContext builds an echo context carrying a pre-seeded anonymous
// session, the way WithSession would leave it.
func newFormContext(t *testing.T, method, path string, body io.Reader, contentType, token string, state *domain.SessionState) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.ContextToken, token)
	c.Set(middleware.ContextSession, state)
	return c, rec
}

func validSignupFields() map[string]string {
	return map[string]string{
		"name":     "Ann Lee",
		"email":    "ann@x.com",
		"phone":    "5551234567",
		"password": "secret1",
	}
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	sessions := newStubSessions()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, input ports.RegisterInput) (*domain.User, error) {
			if input.Name != "Ann Lee" || input.Email != "ann@x.com" {
				t.Fatalf("unexpected input: %+v", input)
			}
			if len(input.Image) == 0 || input.ImageName != "valid.png" {
				t.Fatalf("image not forwarded: %q (%d bytes)", input.ImageName, len(input.Image))
			}
			return &domain.User{ID: "id-1", Email: input.Email}, nil
		},
	}
	h := NewAuthHandler(stub, sessions, 3600)

	body, contentType := multipartForm(t, validSignupFields(), pngBytes, "valid.png")
	c, rec := newFormContext(t, http.MethodPost, "/signup", body, contentType, "anon-token", &domain.SessionState{})

	if err := h.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("expected 303 to /, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	flash := sessions.flashes["anon-token"]
	if flash == nil || flash.Type != domain.FlashSuccess || flash.Message != "Registered successfully" {
		t.Fatalf("unexpected flash: %+v", flash)
	}
}

func TestAuthHandler_Signup_ValidationErrorPropagates(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, _ ports.RegisterInput) (*domain.User, error) {
			return nil, &domain.ValidationError{Fields: map[string]string{"email": "Enter a valid email"}}
		},
	}
	h := NewAuthHandler(stub, newStubSessions(), 3600)

	body, contentType := multipartForm(t, validSignupFields(), nil, "")
	c, _ := newFormContext(t, http.MethodPost, "/signup", body, contentType, "anon-token", &domain.SessionState{})

	err := h.Signup(c)
	if !isValidationError(err) {
		t.Fatalf("expected ValidationError to reach the error handler, got %v", err)
	}
}

func TestAuthHandler_Signup_Conflict(t *testing.T) {
	sessions := newStubSessions()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, _ ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrEmailTaken
		},
	}
	h := NewAuthHandler(stub, sessions, 3600)

	body, contentType := multipartForm(t, validSignupFields(), pngBytes, "valid.png")
	c, rec := newFormContext(t, http.MethodPost, "/signup", body, contentType, "anon-token", &domain.SessionState{})

	if err := h.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Header().Get("Location") != "/signup" {
		t.Fatalf("conflict must redirect back to signup, got %q", rec.Header().Get("Location"))
	}
	if flash := sessions.flashes["anon-token"]; flash == nil || flash.Type != domain.FlashDanger {
		t.Fatalf("expected danger flash, got %+v", flash)
	}
}

func TestAuthHandler_Login_Success_AdminLanding(t *testing.T) {
	sessions := newStubSessions()
	stub := &stubAuthService{
		loginFn: func(_ context.Context, email, password string) (string, *domain.User, error) {
			if email != "ann@x.com" || password != "secret1" {
				t.Fatalf("unexpected credentials %q %q", email, password)
			}
			return "fresh-token", &domain.User{Email: email, IsAdmin: true}, nil
		},
	}
	h := NewAuthHandler(stub, sessions, 3600)

	body, contentType := multipartForm(t, map[string]string{"email": "ann@x.com", "password": "secret1"}, nil, "")
	c, rec := newFormContext(t, http.MethodPost, "/login", body, contentType, "anon-token", &domain.SessionState{})

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Header().Get("Location") != "/admin" {
		t.Fatalf("admin must land on /admin, got %q", rec.Header().Get("Location"))
	}

	var sessionCookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.CookieName {
			sessionCookie = ck
		}
	}
	if sessionCookie == nil || sessionCookie.Value != "fresh-token" {
		t.Fatalf("expected rotated session cookie, got %+v", sessionCookie)
	}
	if flash := sessions.flashes["fresh-token"]; flash == nil || flash.Message != "Logged in successfully" {
		t.Fatalf("expected login flash on the new session, got %+v", flash)
	}
}

func TestAuthHandler_Login_UserLanding(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, email, _ string) (string, *domain.User, error) {
			return "fresh-token", &domain.User{Email: email}, nil
		},
	}
	h := NewAuthHandler(stub, newStubSessions(), 3600)

	body, contentType := multipartForm(t, map[string]string{"email": "ann@x.com", "password": "secret1"}, nil, "")
	c, rec := newFormContext(t, http.MethodPost, "/login", body, contentType, "anon-token", &domain.SessionState{})

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Header().Get("Location") != "/user" {
		t.Fatalf("regular user must land on /user, got %q", rec.Header().Get("Location"))
	}
}

func TestAuthHandler_Login_UnknownEmail(t *testing.T) {
	sessions := newStubSessions()
	stub := &stubAuthService{
		loginFn: func(_ context.Context, _, _ string) (string, *domain.User, error) {
			return "", nil, domain.ErrUserNotFound
		},
	}
	h := NewAuthHandler(stub, sessions, 3600)

	body, contentType := multipartForm(t, map[string]string{"email": "ghost@x.com", "password": "x"}, nil, "")
	c, rec := newFormContext(t, http.MethodPost, "/login", body, contentType, "anon-token", &domain.SessionState{})

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect to /, got %q", rec.Header().Get("Location"))
	}
	flash := sessions.flashes["anon-token"]
	if flash == nil || flash.Message != "Email ID not found. Please register or try again." {
		t.Fatalf("unexpected flash: %+v", flash)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("failed login must not set a session cookie")
	}
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	sessions := newStubSessions()
	stub := &stubAuthService{
		loginFn: func(_ context.Context, _, _ string) (string, *domain.User, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub, sessions, 3600)

	body, contentType := multipartForm(t, map[string]string{"email": "ann@x.com", "password": "bad"}, nil, "")
	c, _ := newFormContext(t, http.MethodPost, "/login", body, contentType, "anon-token", &domain.SessionState{})

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if flash := sessions.flashes["anon-token"]; flash == nil || flash.Message != "Invalid email or password" {
		t.Fatalf("unexpected flash: %+v", flash)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	sessions := newStubSessions()
	token, _ := sessions.Create(context.Background(), &domain.Identity{Email: "ann@x.com"})

	destroyed := ""
	stub := &stubAuthService{
		logoutFn: func(_ context.Context, tok string) error {
			destroyed = tok
			return nil
		},
	}
	h := NewAuthHandler(stub, sessions, 3600)

	c, rec := newFormContext(t, http.MethodGet, "/logout", nil, "", token, &domain.SessionState{Authenticated: true, Email: "ann@x.com"})

	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if destroyed != token {
		t.Fatalf("expected session %q destroyed, got %q", token, destroyed)
	}
	if rec.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect to /, got %q", rec.Header().Get("Location"))
	}

	// fresh anonymous session carries the logged-out flash
	var fresh string
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.CookieName {
			fresh = ck.Value
		}
	}
	if fresh == "" || fresh == token {
		t.Fatalf("expected a fresh session cookie, got %q", fresh)
	}
	if flash := sessions.flashes[fresh]; flash == nil || flash.Type != domain.FlashInfo {
		t.Fatalf("expected info flash on the new session, got %+v", flash)
	}
}

func TestAuthHandler_Whoami_PopsFlashOnce(t *testing.T) {
	sessions := newStubSessions()
	token, _ := sessions.Create(context.Background(), &domain.Identity{Email: "ann@x.com", Name: "Ann Lee"})
	_ = sessions.SetFlash(context.Background(), token, domain.Flash{Type: domain.FlashSuccess, Message: "Logged in successfully"})

	h := NewAuthHandler(&stubAuthService{}, sessions, 3600)
	state := &domain.SessionState{Authenticated: true, Email: "ann@x.com", Name: "Ann Lee"}

	c, rec := newFormContext(t, http.MethodGet, "/session", nil, "", token, state)
	if err := h.Whoami(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["authenticated"] != true || resp["email"] != "ann@x.com" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if resp["flash"] == nil {
		t.Fatalf("expected flash on first read")
	}

	// second read: flash already consumed
	c2, rec2 := newFormContext(t, http.MethodGet, "/session", nil, "", token, state)
	if err := h.Whoami(c2); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp2 map[string]any
	if err := json.Unmarshal(rec2.Body.Bytes(), &resp2); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp2["flash"] != nil {
		t.Fatalf("flash must be delivered exactly once, got %+v", resp2["flash"])
	}
}
