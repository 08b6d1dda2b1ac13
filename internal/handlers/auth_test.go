package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"healthcare-ai-server/internal/config"
	"healthcare-ai-server/internal/models"
)

func testAuthConfig() *config.Config {
	return &config.Config{
		JWTSecret:                 "test-secret",
		JWTRefreshSecret:          "test-refresh-secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 24,
	}
}

func TestRegisterCreatesUserAndProfile(t *testing.T) {
	db := newTestDB(t)
	h := NewAuthHandler(db, testAuthConfig())

	body := `{"email":"alice@example.com","password":"Health123!","firstName":"Alice","lastName":"Nguyen","dateOfBirth":"1990-05-12"}`
	w := perform(t, h.Register, "POST", "/", body, nil, "", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var user models.User
	if err := db.Where("email = ?", "alice@example.com").First(&user).Error; err != nil {
		t.Fatalf("loading user: %v", err)
	}
	if user.Role != models.RolePatient || !user.IsActive {
		t.Errorf("unexpected user: role=%s active=%v", user.Role, user.IsActive)
	}
	if user.Password == "Health123!" {
		t.Error("password stored in plaintext")
	}

	var patient models.Patient
	if err := db.Where("user_id = ?", user.ID).First(&patient).Error; err != nil {
		t.Fatalf("loading patient profile: %v", err)
	}
	if patient.FirstName != "Alice" || patient.DateOfBirth.Year() != 1990 {
		t.Errorf("unexpected profile: %+v", patient)
	}

	// Re-registering the same email is rejected.
	w = perform(t, h.Register, "POST", "/", body, nil, "", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for a duplicate email", w.Code)
	}
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	h := NewAuthHandler(db, testAuthConfig())
	user := createUser(t, db, "alice@example.com", models.RolePatient)

	w := perform(t, h.Login, "POST", "/",
		`{"email":"alice@example.com","password":"wrong-password"}`, nil, "", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for a wrong password", w.Code)
	}

	w = perform(t, h.Login, "POST", "/",
		`{"email":"alice@example.com","password":"Health123!"}`, nil, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data LoginResponse `json:"data"`
	}
	decodeBody(t, w, &resp)
	if resp.Data.AccessToken == "" || resp.Data.RefreshToken == "" {
		t.Error("login response missing tokens")
	}

	var count int64
	db.Model(&models.RefreshToken{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Errorf("stored refresh tokens = %d, want 1", count)
	}

	// Disabled accounts cannot log in even with valid credentials.
	if err := db.Model(&user).Update("is_active", false).Error; err != nil {
		t.Fatalf("disabling user: %v", err)
	}
	w = perform(t, h.Login, "POST", "/",
		`{"email":"alice@example.com","password":"Health123!"}`, nil, "", "")
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for a disabled account", w.Code)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	db := newTestDB(t)
	h := NewAuthHandler(db, testAuthConfig())
	createUser(t, db, "alice@example.com", models.RolePatient)

	w := perform(t, h.Login, "POST", "/",
		`{"email":"alice@example.com","password":"Health123!"}`, nil, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d", w.Code)
	}
	var loginResp struct {
		Data LoginResponse `json:"data"`
	}
	decodeBody(t, w, &loginResp)
	firstToken := loginResp.Data.RefreshToken

	body := fmt.Sprintf(`{"refreshToken":%q}`, firstToken)
	w = perform(t, h.RefreshToken, "POST", "/", body, nil, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, body %s", w.Code, w.Body.String())
	}
	var refreshResp struct {
		Data RefreshTokenResponse `json:"data"`
	}
	decodeBody(t, w, &refreshResp)
	if refreshResp.Data.RefreshToken == firstToken {
		t.Error("refresh token was not rotated")
	}

	// The presented token is revoked; replaying it fails.
	w = perform(t, h.RefreshToken, "POST", "/", body, nil, "", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for a replayed refresh token", w.Code)
	}
}

func TestUpdateMe(t *testing.T) {
	db := newTestDB(t)
	h := NewAuthHandler(db, testAuthConfig())
	user := createUser(t, db, "alice@example.com", models.RolePatient)

	w := perform(t, h.UpdateMe, "PATCH", "/",
		`{"phone":"555-0142","password":"NewHealth456!"}`, nil, user.ID, models.RolePatient)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var updated models.User
	if err := db.First(&updated, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("reloading user: %v", err)
	}
	if updated.Phone != "555-0142" {
		t.Errorf("phone = %q", updated.Phone)
	}
	if !updated.CheckPassword("NewHealth456!") {
		t.Error("new password not applied")
	}
	if updated.CheckPassword("Health123!") {
		t.Error("old password still accepted")
	}

	// A too-short password fails validation without touching the row.
	w = perform(t, h.UpdateMe, "PATCH", "/", `{"password":"short"}`, nil, user.ID, models.RolePatient)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for a short password", w.Code)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	db := newTestDB(t)
	h := NewAuthHandler(db, testAuthConfig())
	user := createUser(t, db, "alice@example.com", models.RolePatient)

	w := perform(t, h.Login, "POST", "/",
		`{"email":"alice@example.com","password":"Health123!"}`, nil, "", "")
	var loginResp struct {
		Data LoginResponse `json:"data"`
	}
	decodeBody(t, w, &loginResp)

	body := fmt.Sprintf(`{"refreshToken":%q}`, loginResp.Data.RefreshToken)
	w = perform(t, h.Logout, "POST", "/", body, nil, user.ID, models.RolePatient)
	if w.Code != http.StatusOK {
		t.Fatalf("logout status = %d, body %s", w.Code, w.Body.String())
	}

	var stored models.RefreshToken
	if err := db.Where("user_id = ?", user.ID).First(&stored).Error; err != nil {
		t.Fatalf("loading refresh token: %v", err)
	}
	if !stored.IsRevoked {
		t.Error("refresh token not revoked by logout")
	}

	// Logging out an unknown token is still a success.
	w = perform(t, h.Logout, "POST", "/", `{"refreshToken":"unknown"}`, nil, user.ID, models.RolePatient)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for an unknown token", w.Code)
	}
}
