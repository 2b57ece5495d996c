//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"
)

func TestAPIKey_Missing(t *testing.T) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, baseURL+"/api/products", nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	if errResp.Code != 401 {
		t.Errorf("error code: got %d, want 401", errResp.Code)
	}
}

func TestAPIKey_Invalid(t *testing.T) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, baseURL+"/api/products", nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("X-API-Key", "definitely-not-a-real-key")

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestLogin(t *testing.T) {
	resp := doPost(t, "/api/auth/login", map[string]any{
		"email":    "admin@example.com",
		"password": "integration-admin-pw",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	u := decodeJSON[userResponse](t, resp)
	if u.Email != "admin@example.com" {
		t.Errorf("email: got %q, want admin@example.com", u.Email)
	}
	if u.Status != "ACTIVE" {
		t.Errorf("status: got %q, want ACTIVE", u.Status)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	resp := doPost(t, "/api/auth/login", map[string]any{
		"email":    "admin@example.com",
		"password": "wrong-password",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestLogin_LockoutAfterRepeatedFailures(t *testing.T) {
	// A throwaway account so the lockout does not poison other tests.
	created := doPost(t, "/api/admin/users", map[string]any{
		"email":    "lockout@example.com",
		"name":     "Lockout Test",
		"password": "correct-horse",
		"roleId":   shopperRoleID(t),
	})
	if created.StatusCode != http.StatusCreated {
		t.Fatalf("create user: expected 201, got %d", created.StatusCode)
	}
	created.Body.Close()

	for i := 0; i < 5; i++ {
		resp := doPost(t, "/api/auth/login", map[string]any{
			"email":    "lockout@example.com",
			"password": "wrong",
		})
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, resp.StatusCode)
		}
	}

	// Even the correct password is rejected while the lock is held.
	resp := doPost(t, "/api/auth/login", map[string]any{
		"email":    "lockout@example.com",
		"password": "correct-horse",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("locked login: expected 403, got %d", resp.StatusCode)
	}
}

func shopperRoleID(t *testing.T) int64 {
	t.Helper()

	resp := doGet(t, "/api/admin/users")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list users: expected 200, got %d", resp.StatusCode)
	}

	users := decodeJSON[[]userResponse](t, resp)
	for _, u := range users {
		if u.Email == "admin@example.com" {
			// Roles are seeded admin-first; the shopper role follows it.
			return u.RoleID + 1
		}
	}
	t.Fatal("seeded admin user not found")
	return 0
}
