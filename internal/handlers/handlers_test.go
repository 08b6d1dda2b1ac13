package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"healthcare-ai-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return db
}

// perform invokes a handler directly with a synthetic request and the auth
// context values the middleware would have set.
func perform(t *testing.T, handler gin.HandlerFunc, method, target, body string,
	params gin.Params, userID string, role models.Role) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = params
	if userID != "" {
		c.Set("userID", userID)
		c.Set("userRole", role)
	}
	handler(c)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dest); err != nil {
		t.Fatalf("decoding response %s: %v", w.Body.String(), err)
	}
}

func createUser(t *testing.T, db *gorm.DB, email string, role models.Role) models.User {
	t.Helper()
	user := models.User{Email: email, Role: role, IsActive: true}
	if err := user.SetPassword("Health123!"); err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("creating user %s: %v", email, err)
	}
	return user
}

func createPatient(t *testing.T, db *gorm.DB, user models.User, first, last string) models.Patient {
	t.Helper()
	patient := models.Patient{
		UserID:      user.ID,
		FirstName:   first,
		LastName:    last,
		DateOfBirth: time.Date(1988, time.March, 2, 0, 0, 0, 0, time.UTC),
	}
	if err := db.Create(&patient).Error; err != nil {
		t.Fatalf("creating patient: %v", err)
	}
	return patient
}

func createDoctor(t *testing.T, db *gorm.DB, user models.User, first, last string) models.Doctor {
	t.Helper()
	doctor := models.Doctor{
		UserID:         user.ID,
		FirstName:      first,
		LastName:       last,
		Specialization: "General Practice",
		IsAvailable:    true,
	}
	if err := db.Create(&doctor).Error; err != nil {
		t.Fatalf("creating doctor: %v", err)
	}
	return doctor
}

func createAppointment(t *testing.T, db *gorm.DB, patient models.Patient, doctor models.Doctor, status models.AppointmentStatus) models.Appointment {
	t.Helper()
	appointment := models.Appointment{
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		AppointmentDate: time.Now().AddDate(0, 0, 7),
		Status:          status,
	}
	if err := db.Create(&appointment).Error; err != nil {
		t.Fatalf("creating appointment: %v", err)
	}
	return appointment
}
