package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kopinusa/storefront/internal/core/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL + "/"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for empty base URL")
	}
}

func TestClient_GetDecodesAndAttachesToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/user-management/users" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Fatalf("unexpected authorization %q", got)
		}
		_, _ = w.Write([]byte(`[{"id":"1","email":"a@x.com","role":"ADMIN"}]`))
	})

	var users []domain.User
	if err := c.WithToken("tok-1").Get(context.Background(), "/admin/user-management/users", &users); err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(users) != 1 || users[0].Email != "a@x.com" || users[0].Role != domain.RoleAdmin {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestClient_WithTokenDoesNotMutateParent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Fatalf("anonymous client sent %q", got)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	_ = c.WithToken("secret")
	if err := c.Delete(context.Background(), "/x"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestClient_PostSendsJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			t.Fatalf("unexpected request %s %s", r.Method, r.Header.Get("Content-Type"))
		}
		body, _ := io.ReadAll(r.Body)
		var got map[string]string
		if err := json.Unmarshal(body, &got); err != nil || got["name"] != "Latte" {
			t.Fatalf("unexpected body %s", body)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"m1","name":"Latte"}`))
	})

	var item domain.MenuItem
	if err := c.Post(context.Background(), "/menu", map[string]string{"name": "Latte"}, &item); err != nil {
		t.Fatalf("post: %v", err)
	}
	if item.ID != "m1" {
		t.Fatalf("unexpected item %+v", item)
	}
}

func TestClient_SurfacesDetail(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"string detail", http.StatusConflict, `{"detail":"Email already registered"}`, "Email already registered"},
		{"validation list", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","email"],"msg":"value is not a valid email"}]}`, "value is not a valid email"},
		{"message key", http.StatusBadRequest, `{"message":"bad things"}`, "bad things"},
		{"no body", http.StatusServiceUnavailable, ``, "Service Unavailable"},
		{"html body", http.StatusBadGateway, `<html>oops</html>`, "Bad Gateway"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			err := c.Put(context.Background(), "/admin/user-management/users/1", map[string]string{}, nil)
			var re *domain.RemoteError
			if !errors.As(err, &re) {
				t.Fatalf("expected RemoteError, got %v", err)
			}
			if re.Status != tc.status || re.Detail != tc.want {
				t.Fatalf("got %d %q, want %d %q", re.Status, re.Detail, tc.status, tc.want)
			}
			if !domain.IsRemoteStatus(err, tc.status) {
				t.Fatalf("IsRemoteStatus mismatch")
			}
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	c, err := New(Config{BaseURL: "http://127.0.0.1:1"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	err = c.Get(context.Background(), "/menu", nil)
	var re *domain.RemoteError
	if err == nil || errors.As(err, &re) {
		t.Fatalf("expected transport error, got %v", err)
	}
}
