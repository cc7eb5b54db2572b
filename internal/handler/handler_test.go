package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v3"

	"github.com/vortex07x/steamsurf/internal/middleware"
	"github.com/vortex07x/steamsurf/internal/model"
	"github.com/vortex07x/steamsurf/internal/service"
)

const (
	testVideoID = "3f2b8c1e-7a4d-4e6b-9c0a-1d2e3f4a5b6c"
	adminID     = "a0000000-0000-4000-8000-000000000001"
	memberID    = "b0000000-0000-4000-8000-000000000002"
)

// tokenAuth resolves the bearer token "admin" or "member".
type tokenAuth struct{}

func (tokenAuth) Authenticate(_ context.Context, token string) (*model.User, error) {
	switch token {
	case "admin":
		return &model.User{ID: adminID, Username: "root", Role: model.RoleAdmin, IsActive: true}, nil
	case "member":
		return &model.User{ID: memberID, Username: "member", Role: model.RoleUser, IsActive: true}, nil
	}
	return nil, &service.Error{Kind: service.ErrUnauthorized, Msg: "Not authorized"}
}

var requireAuth = middleware.RequireAuth(tokenAuth{})

type apiResponse struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination *model.Pagination `json:"pagination"`
	Error      *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func send(t *testing.T, app *fiber.App, req *http.Request, token string) (int, apiResponse) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	var out apiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode %q: %v", body, err)
	}
	return resp.StatusCode, out
}
