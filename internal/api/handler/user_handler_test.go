package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/primeshop/account-service/internal/core/domain"
	"github.com/primeshop/account-service/internal/core/ports"
)

type stubUserService struct {
	lockUserFn       func(ctx context.Context, id string, enabled bool) error
	changePasswordFn func(ctx context.Context, id, current, next string) error
	listUsersFn      func(ctx context.Context, page, pageSize int) ([]domain.User, error)
	getUserFn        func(ctx context.Context, id string) (*domain.User, error)
	searchUsersFn    func(ctx context.Context, query string) ([]domain.User, error)
	updateUserFn     func(ctx context.Context, id string, upd ports.UserUpdate) (*domain.User, error)
}

func (s *stubUserService) LockUser(ctx context.Context, id string, enabled bool) error {
	return s.lockUserFn(ctx, id, enabled)
}

func (s *stubUserService) ChangePassword(ctx context.Context, id, current, next string) error {
	return s.changePasswordFn(ctx, id, current, next)
}

func (s *stubUserService) ListUsers(ctx context.Context, page, pageSize int) ([]domain.User, error) {
	return s.listUsersFn(ctx, page, pageSize)
}

func (s *stubUserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.getUserFn(ctx, id)
}

func (s *stubUserService) SearchUsers(ctx context.Context, query string) ([]domain.User, error) {
	return s.searchUsersFn(ctx, query)
}

func (s *stubUserService) UpdateUser(ctx context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
	return s.updateUserFn(ctx, id, upd)
}

func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, userID string, roles ...string) echo.Context {
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	c.Set("username", "tester")
	c.Set("roles", roles)
	return c
}

func TestUserHandler_List(t *testing.T) {
	svc := &stubUserService{
		listUsersFn: func(ctx context.Context, page, pageSize int) ([]domain.User, error) {
			if page != 2 || pageSize != 10 {
				t.Fatalf("unexpected paging: page=%d size=%d", page, pageSize)
			}
			return []domain.User{{ID: "a"}, {ID: "b"}}, nil
		},
	}

	e := newEcho()
	req := httptest.NewRequest(http.MethodGet, "/v1/users?page=2&page_size=10", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := NewUserHandler(svc).List(c); err != nil {
		t.Fatalf("List: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp listUsersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Page != 2 || len(resp.Users) != 2 {
		t.Fatalf("unexpected page payload: %+v", resp)
	}
}

func TestUserHandler_List_EmptyPageIsNotNull(t *testing.T) {
	svc := &stubUserService{
		listUsersFn: func(ctx context.Context, page, pageSize int) ([]domain.User, error) {
			return nil, nil
		},
	}

	e := newEcho()
	req := httptest.NewRequest(http.MethodGet, "/v1/users?page=99", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := NewUserHandler(svc).List(c); err != nil {
		t.Fatalf("List: %v", err)
	}

	var resp listUsersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Users == nil {
		t.Fatalf("users must serialize as an empty array, not null")
	}
}

func TestUserHandler_Search(t *testing.T) {
	svc := &stubUserService{
		searchUsersFn: func(ctx context.Context, query string) ([]domain.User, error) {
			if query != "ali" {
				t.Fatalf("unexpected query %q", query)
			}
			return []domain.User{{ID: "a", Username: "alice"}}, nil
		},
	}

	e := newEcho()
	req := httptest.NewRequest(http.MethodGet, "/v1/users/search?q=ali", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := NewUserHandler(svc).Search(c); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_Search_EmptyQuery(t *testing.T) {
	svc := &stubUserService{
		searchUsersFn: func(ctx context.Context, query string) ([]domain.User, error) {
			return nil, domain.ErrValidation
		},
	}

	e := newEcho()
	req := httptest.NewRequest(http.MethodGet, "/v1/users/search", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := NewUserHandler(svc).Search(c)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	svc := &stubUserService{
		getUserFn: func(ctx context.Context, id string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}

	e := newEcho()
	req := httptest.NewRequest(http.MethodGet, "/v1/users/ghost", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("ghost")

	err := NewUserHandler(svc).Get(c)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserHandler_Me(t *testing.T) {
	svc := &stubUserService{
		getUserFn: func(ctx context.Context, id string) (*domain.User, error) {
			if id != "user-1" {
				t.Fatalf("expected caller's own id, got %q", id)
			}
			return &domain.User{ID: id, Username: "alice"}, nil
		},
	}

	e := newEcho()
	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "user-1", domain.RoleUser)

	if err := NewUserHandler(svc).Me(c); err != nil {
		t.Fatalf("Me: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_Lock(t *testing.T) {
	var gotID string
	var gotEnabled bool
	svc := &stubUserService{
		lockUserFn: func(ctx context.Context, id string, enabled bool) error {
			gotID, gotEnabled = id, enabled
			return nil
		},
	}

	e := newEcho()
	req := jsonRequest(http.MethodPut, "/v1/users/user-1/lock", `{"enabled":false}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("user-1")

	if err := NewUserHandler(svc).Lock(c); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if gotID != "user-1" || gotEnabled != false {
		t.Fatalf("unexpected call: id=%q enabled=%v", gotID, gotEnabled)
	}
}

func TestUserHandler_Lock_MissingFlag(t *testing.T) {
	svc := &stubUserService{
		lockUserFn: func(ctx context.Context, id string, enabled bool) error {
			t.Fatalf("service should not be called")
			return nil
		},
	}

	e := newEcho()
	req := jsonRequest(http.MethodPut, "/v1/users/user-1/lock", `{}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("user-1")

	err := NewUserHandler(svc).Lock(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestUserHandler_ChangePassword(t *testing.T) {
	svc := &stubUserService{
		changePasswordFn: func(ctx context.Context, id, current, next string) error {
			if id != "user-1" || current != "P@ss1" || next != "N3wPass" {
				t.Fatalf("unexpected call: %s/%s/%s", id, current, next)
			}
			return nil
		},
	}

	e := newEcho()
	req := jsonRequest(http.MethodPut, "/v1/users/me/password", `{"current_password":"P@ss1","new_password":"N3wPass"}`)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "user-1", domain.RoleUser)

	if err := NewUserHandler(svc).ChangePassword(c); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestUserHandler_ChangePassword_WrongCurrent(t *testing.T) {
	svc := &stubUserService{
		changePasswordFn: func(ctx context.Context, id, current, next string) error {
			return domain.ErrInvalidCredentials
		},
	}

	e := newEcho()
	req := jsonRequest(http.MethodPut, "/v1/users/me/password", `{"current_password":"wrong","new_password":"N3wPass"}`)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "user-1", domain.RoleUser)

	err := NewUserHandler(svc).ChangePassword(c)
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUserHandler_Update_Self(t *testing.T) {
	svc := &stubUserService{
		updateUserFn: func(ctx context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
			if id != "user-1" {
				t.Fatalf("unexpected id %q", id)
			}
			if upd.FullName == nil || *upd.FullName != "Alice A." {
				t.Fatalf("full name not carried: %+v", upd)
			}
			if upd.Email != nil {
				t.Fatalf("email should stay unset")
			}
			return &domain.User{ID: id, FullName: *upd.FullName}, nil
		},
	}

	e := newEcho()
	req := jsonRequest(http.MethodPut, "/v1/users/user-1", `{"full_name":"Alice A."}`)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "user-1", domain.RoleUser)
	c.SetParamNames("id")
	c.SetParamValues("user-1")

	if err := NewUserHandler(svc).Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_Update_OtherUserForbidden(t *testing.T) {
	svc := &stubUserService{
		updateUserFn: func(ctx context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
			t.Fatalf("service should not be called")
			return nil, nil
		},
	}

	e := newEcho()
	req := jsonRequest(http.MethodPut, "/v1/users/user-2", `{"full_name":"Mallory"}`)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "user-1", domain.RoleUser)
	c.SetParamNames("id")
	c.SetParamValues("user-2")

	err := NewUserHandler(svc).Update(c)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUserHandler_Update_AdminMayUpdateAnyone(t *testing.T) {
	svc := &stubUserService{
		updateUserFn: func(ctx context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
			return &domain.User{ID: id}, nil
		},
	}

	e := newEcho()
	req := jsonRequest(http.MethodPut, "/v1/users/user-2", `{"phone":"555-0100"}`)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "admin-1", domain.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues("user-2")

	if err := NewUserHandler(svc).Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
