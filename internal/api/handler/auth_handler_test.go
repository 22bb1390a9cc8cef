package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/storefront/ecommerce-api/internal/core/domain"
	"github.com/storefront/ecommerce-api/internal/core/ports"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.LoginResult, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) EnsureAdmin(context.Context, string, string, string) error { return nil }

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

type formFile struct {
	name    string
	content []byte
}

func multipartRequest(t *testing.T, target string, fields map[string]string, file *formFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if file != nil {
		part, err := w.CreateFormFile("image", file.name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		_, _ = part.Write(file.content)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	var got ports.RegisterInput
	var gotImage []byte
	svc := &stubAuthService{registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
		got = in
		if in.Image != nil {
			gotImage, _ = io.ReadAll(in.Image.Body)
		}
		return &domain.User{ID: "u1", Name: in.Name, Email: in.Email, Image: "uploads/image-1.png"}, nil
	}}
	h := NewAuthHandler(svc, 1<<20)

	req := multipartRequest(t, "/register", map[string]string{
		"name":        "Alice",
		"email":       "a@x.com",
		"password":    "pw123",
		"phoneNumber": "555",
	}, &formFile{name: "me.txt", content: pngHeader})
	rec := httptest.NewRecorder()

	if err := h.Register(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if got.Name != "Alice" || got.Email != "a@x.com" || got.Password != "pw123" || got.PhoneNumber != "555" {
		t.Fatalf("unexpected input: %+v", got)
	}
	if got.Image == nil || got.Image.ContentType != "image/png" || got.Image.Extension != ".png" {
		t.Fatalf("image not sniffed as png: %+v", got.Image)
	}
	if !bytes.Equal(gotImage, pngHeader) {
		t.Fatal("image body must be rewound to the first byte")
	}

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["message"] != "Registration Successful" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatal("response must not contain the password")
	}
}

func TestAuthHandler_Register_WithoutImage(t *testing.T) {
	e := newEcho()
	svc := &stubAuthService{registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
		if in.Image != nil {
			t.Fatal("expected no image")
		}
		return &domain.User{ID: "u1"}, nil
	}}

	req := multipartRequest(t, "/register", map[string]string{"name": "A", "email": "a@x.com", "password": "pw123"}, nil)
	rec := httptest.NewRecorder()
	if err := NewAuthHandler(svc, 0).Register(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestAuthHandler_Register_RejectsNonImage(t *testing.T) {
	e := newEcho()
	svc := &stubAuthService{registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}}

	req := multipartRequest(t, "/register",
		map[string]string{"name": "A", "email": "a@x.com", "password": "pw123"},
		&formFile{name: "avatar.png", content: []byte("just some text pretending to be a png")})
	err := NewAuthHandler(svc, 1<<20).Register(e.NewContext(req, httptest.NewRecorder()))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAuthHandler_Register_RejectsOversizedImage(t *testing.T) {
	e := newEcho()
	svc := &stubAuthService{}

	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 2048)...)
	req := multipartRequest(t, "/register",
		map[string]string{"name": "A", "email": "a@x.com", "password": "pw123"},
		&formFile{name: "big.png", content: big})
	err := NewAuthHandler(svc, 1024).Register(e.NewContext(req, httptest.NewRecorder()))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	e := newEcho()
	svc := &stubAuthService{}

	cases := map[string]map[string]string{
		"missing email": {"name": "A", "password": "pw123"},
		"bad email":     {"name": "A", "email": "nope", "password": "pw123"},
		"missing name":  {"email": "a@x.com", "password": "pw123"},
	}
	for name, fields := range cases {
		req := multipartRequest(t, "/register", fields, nil)
		err := NewAuthHandler(svc, 0).Register(e.NewContext(req, httptest.NewRecorder()))
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", name, err)
		}
	}
}

func TestAuthHandler_Register_ServiceError(t *testing.T) {
	e := newEcho()
	svc := &stubAuthService{registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
		return nil, domain.ErrUserExists
	}}

	req := multipartRequest(t, "/register", map[string]string{"name": "A", "email": "a@x.com", "password": "pw123"}, nil)
	err := NewAuthHandler(svc, 0).Register(e.NewContext(req, httptest.NewRecorder()))
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newEcho()
	expires := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	svc := &stubAuthService{loginFn: func(_ context.Context, email, password string) (*ports.LoginResult, error) {
		if email != "a@x.com" || password != "pw123" {
			t.Fatalf("unexpected credentials %q/%q", email, password)
		}
		return &ports.LoginResult{
			Token:     "tok",
			ExpiresAt: expires,
			User:      &domain.User{ID: "u1", Name: "Alice", Email: email, PasswordHash: "$2a$10$secret", Role: domain.RoleElevated},
		}, nil
	}}

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@x.com","password":"pw123"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := NewAuthHandler(svc, 0).Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Message string `json:"message"`
		Data    struct {
			ID      string `json:"id"`
			Email   string `json:"email"`
			IsAdmin bool   `json:"isAdmin"`
			Token   string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "welcome back Alice" {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.Data.ID != "u1" || resp.Data.Token != "tok" || !resp.Data.IsAdmin {
		t.Errorf("unexpected data: %+v", resp.Data)
	}
	if strings.Contains(rec.Body.String(), "$2a$") {
		t.Fatal("password digest leaked")
	}
}

func TestAuthHandler_Login_Errors(t *testing.T) {
	e := newEcho()
	svc := &stubAuthService{loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
		return nil, domain.ErrInvalidCredentials
	}}
	h := NewAuthHandler(svc, 0)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@x.com","password":"bad"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if err := h.Login(e.NewContext(req, httptest.NewRecorder())); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if err := h.Login(e.NewContext(req, httptest.NewRecorder())); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for bad JSON, got %v", err)
	}
}
