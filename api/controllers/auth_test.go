package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/sajikita/foodcourt-backend/internal/users"
	pkgerrors "github.com/sajikita/foodcourt-backend/pkg/errors"
)

type stubUsersService struct {
	resp     *users.LoginResponse
	loginErr error

	profile *users.UserDTO
	meErr   error
}

func (s *stubUsersService) Login(_ context.Context, _ users.LoginRequest) (*users.LoginResponse, error) {
	return s.resp, s.loginErr
}

func (s *stubUsersService) Me(_ context.Context, _ uuid.UUID) (*users.UserDTO, error) {
	return s.profile, s.meErr
}

func TestLoginSuccess(t *testing.T) {
	svc := &stubUsersService{resp: &users.LoginResponse{AccessToken: "signed.jwt.here", TokenType: "Bearer"}}
	handler := Login(svc, nil)

	payload := []byte(`{"username": "kasir1", "password": "rahasia-kasir"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data users.LoginResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AccessToken != "signed.jwt.here" {
		t.Fatalf("unexpected response: %+v", envelope.Data)
	}
}

func TestLoginRejectsShortPassword(t *testing.T) {
	handler := Login(&stubUsersService{}, nil)

	payload := []byte(`{"username": "kasir1", "password": "abc"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestLoginMapsUnauthorized(t *testing.T) {
	svc := &stubUsersService{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	handler := Login(svc, nil)

	payload := []byte(`{"username": "kasir1", "password": "wrong-password"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestMeRequiresContext(t *testing.T) {
	handler := Me(&stubUsersService{profile: &users.UserDTO{}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}
