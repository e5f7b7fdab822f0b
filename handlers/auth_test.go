package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"tipjar-backend/models"
)

func TestRegister_Success(t *testing.T) {
	db := freshDB()
	r := setupAuthRouter(db)

	w := httptest.NewRecorder()
	req := jsonRequest("POST", "/api/auth/register", map[string]string{
		"email":    "owner@example.com",
		"password": "password123",
		"name":     "Asha",
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	if resp["token"] == nil || resp["refreshToken"] == nil {
		t.Error("expected token and refreshToken in response")
	}
	user, ok := resp["user"].(map[string]interface{})
	if !ok {
		t.Fatal("expected user object in response")
	}
	if user["role"] != "owner" {
		t.Errorf("expected new accounts to default to owner role, got %v", user["role"])
	}
	if user["password"] != nil {
		t.Error("password must never appear in responses")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db := freshDB()
	seedTestUser(db, "taken@example.com", "owner")
	r := setupAuthRouter(db)

	w := httptest.NewRecorder()
	req := jsonRequest("POST", "/api/auth/register", map[string]string{
		"email":    "taken@example.com",
		"password": "password123",
		"name":     "Dup",
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if parseResponse(w)["code"] != "EMAIL_TAKEN" {
		t.Errorf("expected EMAIL_TAKEN, got %v", parseResponse(w)["code"])
	}
}

func TestLogin_Success(t *testing.T) {
	db := freshDB()
	seedTestUser(db, "login@example.com", "owner")
	r := setupAuthRouter(db)

	w := httptest.NewRecorder()
	req := jsonRequest("POST", "/api/auth/login", map[string]string{
		"email":    "login@example.com",
		"password": "password123",
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if parseResponse(w)["token"] == nil {
		t.Error("expected token in login response")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	db := freshDB()
	seedTestUser(db, "login2@example.com", "owner")
	r := setupAuthRouter(db)

	w := httptest.NewRecorder()
	req := jsonRequest("POST", "/api/auth/login", map[string]string{
		"email":    "login2@example.com",
		"password": "wrong-password",
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if parseResponse(w)["code"] != "INVALID_CREDENTIALS" {
		t.Errorf("expected INVALID_CREDENTIALS, got %v", parseResponse(w)["code"])
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	db := freshDB()
	r := setupAuthRouter(db)

	w := httptest.NewRecorder()
	req := jsonRequest("POST", "/api/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "password123",
	})
	r.ServeHTTP(w, req)

	// Unknown email and wrong password are indistinguishable to the caller.
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestGetProfile_RequiresAuth(t *testing.T) {
	db := freshDB()
	r := setupAuthRouter(db)

	w := httptest.NewRecorder()
	req := jsonRequest("GET", "/api/auth/profile", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestGetProfile_Success(t *testing.T) {
	db := freshDB()
	user, token := seedTestUser(db, "profile@example.com", "worker")
	r := setupAuthRouter(db)

	w := httptest.NewRecorder()
	req := authRequest("GET", "/api/auth/profile", nil, token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["email"] != user.Email {
		t.Errorf("expected email %s, got %v", user.Email, resp["email"])
	}
	if resp["role"] != "worker" {
		t.Errorf("expected role worker, got %v", resp["role"])
	}
}

func TestGetProfile_InvalidToken(t *testing.T) {
	db := freshDB()
	r := setupAuthRouter(db)

	w := httptest.NewRecorder()
	req := authRequest("GET", "/api/auth/profile", nil, "not-a-token")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if parseResponse(w)["code"] != "AUTH_REQUIRED" {
		t.Errorf("expected AUTH_REQUIRED, got %v", parseResponse(w)["code"])
	}
}

func TestRefreshToken_RotatesToken(t *testing.T) {
	db := freshDB()
	seedTestUser(db, "refresh@example.com", "owner")
	r := setupAuthRouter(db)

	// Login to get a refresh token.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", map[string]string{
		"email":    "refresh@example.com",
		"password": "password123",
	}))
	refreshToken, _ := parseResponse(w)["refreshToken"].(string)
	if refreshToken == "" {
		t.Fatal("expected refreshToken from login")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/api/auth/refresh", map[string]string{
		"refreshToken": refreshToken,
	}))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	next, _ := parseResponse(w)["refreshToken"].(string)
	if next == "" || next == refreshToken {
		t.Error("expected a rotated refresh token")
	}

	// The old token is revoked and cannot be replayed.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/api/auth/refresh", map[string]string{
		"refreshToken": refreshToken,
	}))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 replaying a used refresh token, got %d", w.Code)
	}
}

func TestUpdateMyRole_OwnerToWorker(t *testing.T) {
	db := freshDB()
	_, token := seedTestUser(db, "switch@example.com", "owner")
	r := setupAuthRouter(db)

	w := httptest.NewRecorder()
	req := authRequest("PATCH", "/api/me/role", map[string]string{"role": "worker"}, token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	user, _ := resp["user"].(map[string]interface{})
	if user["role"] != "worker" {
		t.Errorf("expected worker role, got %v", user["role"])
	}
	// Role lives in the JWT, so the switch issues a fresh token.
	if resp["token"] == nil {
		t.Error("expected a fresh token after role change")
	}
}

func TestUpdateMyRole_OwnerWithRestaurantsBlocked(t *testing.T) {
	db := freshDB()
	owner, token := seedTestUser(db, "busy-owner@example.com", "owner")
	seedRestaurant(db, "Tandoori Nights", owner.ID)
	r := setupAuthRouter(db)

	w := httptest.NewRecorder()
	req := authRequest("PATCH", "/api/me/role", map[string]string{"role": "worker"}, token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	if parseResponse(w)["code"] != "OWNER_HAS_RESTAURANTS" {
		t.Errorf("expected OWNER_HAS_RESTAURANTS, got %v", parseResponse(w)["code"])
	}

	var fresh models.User
	db.First(&fresh, "id = ?", owner.ID)
	if fresh.Role != "owner" {
		t.Errorf("role must be unchanged after a blocked switch, got %s", fresh.Role)
	}
}

func TestUpdateMyRole_AdminForbidden(t *testing.T) {
	db := freshDB()
	_, token := seedTestUser(db, "self-admin@example.com", "worker")
	r := setupAuthRouter(db)

	w := httptest.NewRecorder()
	req := authRequest("PATCH", "/api/me/role", map[string]string{"role": "admin"}, token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if parseResponse(w)["code"] != "ADMIN_ROLE_FORBIDDEN" {
		t.Errorf("expected ADMIN_ROLE_FORBIDDEN, got %v", parseResponse(w)["code"])
	}
}

func TestUpdateMyRole_InvalidRole(t *testing.T) {
	db := freshDB()
	_, token := seedTestUser(db, "bad-role@example.com", "worker")
	r := setupAuthRouter(db)

	w := httptest.NewRecorder()
	req := authRequest("PATCH", "/api/me/role", map[string]string{"role": "superuser"}, token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
