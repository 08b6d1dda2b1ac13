package facade

import (
	"context"
	"strings"
	"testing"
	"time"

	"healthcare-ai-server/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

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
		DateOfBirth: time.Date(1990, time.May, 12, 0, 0, 0, 0, time.UTC),
	}
	if err := db.Create(&patient).Error; err != nil {
		t.Fatalf("creating patient %s %s: %v", first, last, err)
	}
	return patient
}

func createDoctor(t *testing.T, db *gorm.DB, user models.User, first, last, specialization string) models.Doctor {
	t.Helper()
	doctor := models.Doctor{
		UserID:          user.ID,
		FirstName:       first,
		LastName:        last,
		Specialization:  specialization,
		ConsultationFee: 150,
		IsAvailable:     true,
	}
	if err := db.Create(&doctor).Error; err != nil {
		t.Fatalf("creating doctor %s %s: %v", first, last, err)
	}
	return doctor
}

func TestPatientProfileSelfScoped(t *testing.T) {
	db := newTestDB(t)
	f := New(db)
	ctx := context.Background()

	u1 := createUser(t, db, "alice@example.com", models.RolePatient)
	p1 := createPatient(t, db, u1, "Alice", "Nguyen")
	u2 := createUser(t, db, "bob@example.com", models.RolePatient)
	p2 := createPatient(t, db, u2, "Bob", "Ortiz")

	// Non-privileged caller gets their own profile even when naming another id.
	r := f.PatientProfile(ctx, NewCapability(u1.ID, models.RolePatient), p2.ID)
	if !r.IsFound() {
		t.Fatalf("expected profile, got %q", r.Message())
	}
	profile := r.Data().(ProfileRecord)
	if profile.ID != p1.ID {
		t.Errorf("profile id = %s, want caller's own %s", profile.ID, p1.ID)
	}
	if profile.Email != "alice@example.com" {
		t.Errorf("profile email = %s", profile.Email)
	}

	// Elevated caller with an explicit target gets that target.
	admin := createUser(t, db, "admin@example.com", models.RoleAdmin)
	r = f.PatientProfile(ctx, NewCapability(admin.ID, models.RoleAdmin), p2.ID)
	if !r.IsFound() {
		t.Fatalf("expected profile, got %q", r.Message())
	}
	if got := r.Data().(ProfileRecord).ID; got != p2.ID {
		t.Errorf("profile id = %s, want %s", got, p2.ID)
	}

	// Elevated caller without a target: single-profile lookup has no all form.
	r = f.PatientProfile(ctx, NewCapability(admin.ID, models.RoleAdmin), "")
	if r.IsFound() || r.IsFailed() {
		t.Errorf("expected not-found, got found=%v failed=%v", r.IsFound(), r.IsFailed())
	}
}

func TestPatientProfileMissing(t *testing.T) {
	db := newTestDB(t)
	f := New(db)

	// A caller with no linked patient profile gets the soft not-found text.
	orphan := createUser(t, db, "orphan@example.com", models.RolePatient)
	r := f.PatientProfile(context.Background(), NewCapability(orphan.ID, models.RolePatient), "")
	if r.IsFound() || r.IsFailed() {
		t.Fatalf("expected not-found, got found=%v failed=%v", r.IsFound(), r.IsFailed())
	}
	if r.Message() != "Patient profile not found." {
		t.Errorf("message = %q", r.Message())
	}
}

func TestAppointmentsScoping(t *testing.T) {
	db := newTestDB(t)
	f := New(db)
	ctx := context.Background()

	u1 := createUser(t, db, "alice@example.com", models.RolePatient)
	p1 := createPatient(t, db, u1, "Alice", "Nguyen")
	u2 := createUser(t, db, "bob@example.com", models.RolePatient)
	p2 := createPatient(t, db, u2, "Bob", "Ortiz")
	du := createUser(t, db, "dr.lee@example.com", models.RoleDoctor)
	doc := createDoctor(t, db, du, "Sarah", "Lee", "Cardiology")

	mk := func(p models.Patient, status models.AppointmentStatus, daysAhead int) {
		appointment := models.Appointment{
			PatientID:       p.ID,
			DoctorID:        doc.ID,
			AppointmentDate: time.Now().AddDate(0, 0, daysAhead),
			Status:          status,
		}
		if err := db.Create(&appointment).Error; err != nil {
			t.Fatalf("creating appointment: %v", err)
		}
	}
	mk(p1, models.StatusPending, 1)
	mk(p1, models.StatusCompleted, -7)
	mk(p2, models.StatusCompleted, -3)
	mk(p2, models.StatusCancelled, -1)

	// A patient only ever sees their own rows.
	r := f.Appointments(ctx, NewCapability(u1.ID, models.RolePatient), AppointmentsQuery{})
	if !r.IsFound() {
		t.Fatalf("expected appointments, got %q", r.Message())
	}
	for _, rec := range r.Data().([]AppointmentRecord) {
		if rec.Patient != "Alice Nguyen" {
			t.Errorf("leaked appointment for %s to Alice", rec.Patient)
		}
	}

	// Admin targeting P2 with a status filter sees only P2's completed rows.
	admin := createUser(t, db, "admin@example.com", models.RoleAdmin)
	r = f.Appointments(ctx, NewCapability(admin.ID, models.RoleAdmin), AppointmentsQuery{
		Status:    "completed",
		PatientID: p2.ID,
	})
	if !r.IsFound() {
		t.Fatalf("expected appointments, got %q", r.Message())
	}
	records := r.Data().([]AppointmentRecord)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Patient != "Bob Ortiz" || records[0].Status != "completed" {
		t.Errorf("unexpected record %+v", records[0])
	}

	// Admin with no target lists across patients.
	r = f.Appointments(ctx, NewCapability(admin.ID, models.RoleAdmin), AppointmentsQuery{})
	if !r.IsFound() {
		t.Fatalf("expected appointments, got %q", r.Message())
	}
	if got := len(r.Data().([]AppointmentRecord)); got != 4 {
		t.Errorf("got %d records, want 4", got)
	}

	// Empty result is a narrated not-found, not an error.
	r = f.Appointments(ctx, NewCapability(u1.ID, models.RolePatient), AppointmentsQuery{Status: "no_show"})
	if r.IsFound() || r.IsFailed() {
		t.Fatalf("expected not-found, got found=%v failed=%v", r.IsFound(), r.IsFailed())
	}
	if r.Message() != "No appointments found." {
		t.Errorf("message = %q", r.Message())
	}
}

func TestBookAppointment(t *testing.T) {
	db := newTestDB(t)
	f := New(db)
	ctx := context.Background()

	u1 := createUser(t, db, "alice@example.com", models.RolePatient)
	p1 := createPatient(t, db, u1, "Alice", "Nguyen")
	du := createUser(t, db, "dr.lee@example.com", models.RoleDoctor)
	doc := createDoctor(t, db, du, "Sarah", "Lee", "Cardiology")

	countAppointments := func() int64 {
		var n int64
		if err := db.Model(&models.Appointment{}).Count(&n).Error; err != nil {
			t.Fatalf("counting appointments: %v", err)
		}
		return n
	}

	date := time.Now().AddDate(0, 0, 3).Truncate(time.Second)

	// Unknown doctor: not-found, nothing persisted.
	r := f.BookAppointment(ctx, NewCapability(u1.ID, models.RolePatient), BookingRequest{
		DoctorID: "no-such-doctor",
		Date:     date,
	})
	if r.IsFound() || r.Message() != "Doctor not found." {
		t.Errorf("expected doctor not-found, got found=%v %q", r.IsFound(), r.Message())
	}
	if countAppointments() != 0 {
		t.Error("appointment created despite unknown doctor")
	}

	// Caller without a patient profile: not-found, nothing persisted.
	orphan := createUser(t, db, "orphan@example.com", models.RolePatient)
	r = f.BookAppointment(ctx, NewCapability(orphan.ID, models.RolePatient), BookingRequest{
		DoctorID: doc.ID,
		Date:     date,
	})
	if r.IsFound() || r.Message() != "Could not find your patient record." {
		t.Errorf("expected patient not-found, got found=%v %q", r.IsFound(), r.Message())
	}
	if countAppointments() != 0 {
		t.Error("appointment created despite missing patient profile")
	}

	// Valid booking persists a pending appointment and narrates a confirmation.
	r = f.BookAppointment(ctx, NewCapability(u1.ID, models.RolePatient), BookingRequest{
		DoctorID: doc.ID,
		Date:     date,
		Reason:   "Chest pain",
	})
	if !r.IsFound() {
		t.Fatalf("expected confirmation, got %q", r.Message())
	}
	confirmation := r.Data().(string)
	if !strings.HasPrefix(confirmation, "Appointment request sent for ") {
		t.Errorf("confirmation = %q", confirmation)
	}

	var appointment models.Appointment
	if err := db.First(&appointment).Error; err != nil {
		t.Fatalf("loading appointment: %v", err)
	}
	if appointment.PatientID != p1.ID {
		t.Errorf("patient id = %s, want %s", appointment.PatientID, p1.ID)
	}
	if appointment.Status != models.StatusPending {
		t.Errorf("status = %s, want pending", appointment.Status)
	}
	if appointment.DurationMinutes != 30 {
		t.Errorf("duration = %d, want 30", appointment.DurationMinutes)
	}
	if !strings.Contains(confirmation, appointment.ID) {
		t.Errorf("confirmation %q does not embed id %s", confirmation, appointment.ID)
	}
}

func TestBillingInfoOrderingAndScope(t *testing.T) {
	db := newTestDB(t)
	f := New(db)
	ctx := context.Background()

	u1 := createUser(t, db, "alice@example.com", models.RolePatient)
	p1 := createPatient(t, db, u1, "Alice", "Nguyen")
	u2 := createUser(t, db, "bob@example.com", models.RolePatient)
	p2 := createPatient(t, db, u2, "Bob", "Ortiz")

	mk := func(p models.Patient, amount float64, status models.BillingStatus, issuedDaysAgo int) {
		billing := models.Billing{
			PatientID: p.ID,
			Amount:    amount,
			Currency:  "USD",
			Status:    status,
			IssuedAt:  time.Now().AddDate(0, 0, -issuedDaysAgo),
		}
		if err := db.Create(&billing).Error; err != nil {
			t.Fatalf("creating billing: %v", err)
		}
	}
	mk(p1, 100, models.BillingPending, 10)
	mk(p1, 250, models.BillingPending, 2)
	mk(p1, 75, models.BillingPaid, 5)
	mk(p2, 999, models.BillingPending, 1)

	r := f.BillingInfo(ctx, NewCapability(u1.ID, models.RolePatient), BillingQuery{Status: "pending"})
	if !r.IsFound() {
		t.Fatalf("expected billing records, got %q", r.Message())
	}
	records := r.Data().([]BillingRecord)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	// Newest issued first; P2's row and the paid row never appear.
	if records[0].Amount != "$250.00 USD" || records[1].Amount != "$100.00 USD" {
		t.Errorf("unexpected order: %s then %s", records[0].Amount, records[1].Amount)
	}
	for _, rec := range records {
		if rec.Status != "pending" {
			t.Errorf("record status = %s", rec.Status)
		}
		if rec.PaidAt != "Not yet paid" {
			t.Errorf("pending record has paidAt %q", rec.PaidAt)
		}
	}
}

func TestPrescriptionsActiveOnly(t *testing.T) {
	db := newTestDB(t)
	f := New(db)
	ctx := context.Background()

	u1 := createUser(t, db, "alice@example.com", models.RolePatient)
	p1 := createPatient(t, db, u1, "Alice", "Nguyen")
	du := createUser(t, db, "dr.lee@example.com", models.RoleDoctor)
	doc := createDoctor(t, db, du, "Sarah", "Lee", "Cardiology")

	mk := func(medication string, expiresAt *time.Time) {
		prescription := models.Prescription{
			PatientID:  p1.ID,
			DoctorID:   doc.ID,
			Medication: medication,
			IssuedAt:   time.Now().AddDate(0, -1, 0),
			ExpiresAt:  expiresAt,
		}
		if err := db.Create(&prescription).Error; err != nil {
			t.Fatalf("creating prescription: %v", err)
		}
	}
	future := time.Now().AddDate(0, 1, 0)
	past := time.Now().AddDate(0, 0, -1)
	mk("Atorvastatin", &future)
	mk("Amoxicillin", &past)
	mk("Lisinopril", nil) // no expiry, always active

	cap := NewCapability(u1.ID, models.RolePatient)

	r := f.Prescriptions(ctx, cap, PrescriptionsQuery{ActiveOnly: true})
	if !r.IsFound() {
		t.Fatalf("expected prescriptions, got %q", r.Message())
	}
	names := map[string]bool{}
	for _, rec := range r.Data().([]PrescriptionRecord) {
		names[rec.Medication] = true
	}
	if len(names) != 2 || !names["Atorvastatin"] || !names["Lisinopril"] {
		t.Errorf("active set = %v, want Atorvastatin and Lisinopril", names)
	}

	r = f.Prescriptions(ctx, cap, PrescriptionsQuery{ActiveOnly: false})
	if !r.IsFound() {
		t.Fatalf("expected prescriptions, got %q", r.Message())
	}
	if got := len(r.Data().([]PrescriptionRecord)); got != 3 {
		t.Errorf("got %d records without the active filter, want 3", got)
	}
}

func TestSearchDoctors(t *testing.T) {
	db := newTestDB(t)
	f := New(db)
	ctx := context.Background()

	u1 := createUser(t, db, "dr.lee@example.com", models.RoleDoctor)
	createDoctor(t, db, u1, "Sarah", "Lee", "Cardiology")
	u2 := createUser(t, db, "dr.cardoso@example.com", models.RoleDoctor)
	createDoctor(t, db, u2, "Miguel", "Cardoso", "Dermatology")
	u3 := createUser(t, db, "dr.smith@example.com", models.RoleDoctor)
	createDoctor(t, db, u3, "James", "Smith", "Internal Medicine")

	// Specialization match, case-insensitive.
	r := f.SearchDoctors(ctx, "CARDio")
	if !r.IsFound() {
		t.Fatalf("expected results, got %q", r.Message())
	}
	records := r.Data().([]DoctorSearchRecord)
	if len(records) != 1 || records[0].Specialization != "Cardiology" {
		t.Fatalf("unexpected specialization match: %+v", records)
	}

	// Surname match, case-insensitive.
	r = f.SearchDoctors(ctx, "cardOSO")
	if !r.IsFound() {
		t.Fatalf("expected results, got %q", r.Message())
	}
	records = r.Data().([]DoctorSearchRecord)
	if len(records) != 1 || records[0].Name != "Dr. Miguel Cardoso" {
		t.Fatalf("unexpected surname match: %+v", records)
	}

	// No match still returns an empty record list, mirroring the listing shape.
	r = f.SearchDoctors(ctx, "neuro")
	if !r.IsFound() {
		t.Fatalf("expected empty result set, got %q", r.Message())
	}
	if got := len(r.Data().([]DoctorSearchRecord)); got != 0 {
		t.Errorf("got %d doctors, want 0", got)
	}
}

func TestListDoctorsAvailability(t *testing.T) {
	db := newTestDB(t)
	f := New(db)
	ctx := context.Background()

	u1 := createUser(t, db, "dr.lee@example.com", models.RoleDoctor)
	createDoctor(t, db, u1, "Sarah", "Lee", "Cardiology")
	u2 := createUser(t, db, "dr.smith@example.com", models.RoleDoctor)
	away := createDoctor(t, db, u2, "James", "Smith", "Internal Medicine")
	if err := db.Model(&away).Update("is_available", false).Error; err != nil {
		t.Fatalf("marking doctor unavailable: %v", err)
	}

	r := f.ListDoctors(ctx, DoctorsQuery{AvailableOnly: true})
	if !r.IsFound() {
		t.Fatalf("expected doctors, got %q", r.Message())
	}
	records := r.Data().([]DoctorRecord)
	if len(records) != 1 || records[0].Name != "Dr. Sarah Lee" {
		t.Fatalf("unexpected availability filter result: %+v", records)
	}

	r = f.ListDoctors(ctx, DoctorsQuery{})
	if got := len(r.Data().([]DoctorRecord)); got != 2 {
		t.Errorf("got %d doctors without the availability filter, want 2", got)
	}

	r = f.ListDoctors(ctx, DoctorsQuery{Specialization: "podiatry", AvailableOnly: true})
	if r.IsFound() || r.Message() != "No doctors found matching your criteria." {
		t.Errorf("expected not-found narration, got found=%v %q", r.IsFound(), r.Message())
	}
}

func TestElevatedOnlyOperations(t *testing.T) {
	db := newTestDB(t)
	f := New(db)
	ctx := context.Background()

	u1 := createUser(t, db, "alice@example.com", models.RolePatient)
	p1 := createPatient(t, db, u1, "Alice", "Nguyen")
	staff := createUser(t, db, "staff@example.com", models.RoleStaff)

	// Non-elevated callers are refused even if they reach the operation.
	r := f.AllPatients(ctx, NewCapability(u1.ID, models.RolePatient), "")
	if !r.IsFailed() {
		t.Fatalf("expected refusal, got found=%v", r.IsFound())
	}
	r = f.PatientDetails(ctx, NewCapability(u1.ID, models.RolePatient), p1.ID)
	if !r.IsFailed() {
		t.Fatalf("expected refusal, got found=%v", r.IsFound())
	}

	// Staff counts as elevated.
	cap := NewCapability(staff.ID, models.RoleStaff)
	r = f.AllPatients(ctx, cap, "nguyen")
	if !r.IsFound() {
		t.Fatalf("expected patients, got %q", r.Message())
	}
	records := r.Data().([]PatientSummaryRecord)
	if len(records) != 1 || records[0].Name != "Alice Nguyen" {
		t.Fatalf("unexpected search result: %+v", records)
	}

	// Email search reaches across into the users table.
	r = f.AllPatients(ctx, cap, "alice@EXAMPLE")
	if !r.IsFound() || len(r.Data().([]PatientSummaryRecord)) != 1 {
		t.Errorf("email search failed: found=%v", r.IsFound())
	}

	r = f.PatientDetails(ctx, cap, p1.ID)
	if !r.IsFound() {
		t.Fatalf("expected detail, got %q", r.Message())
	}
	detail := r.Data().(PatientDetailRecord)
	if detail.Status != "Active" || detail.Name != "Alice Nguyen" {
		t.Errorf("unexpected detail: %+v", detail)
	}

	r = f.PatientDetails(ctx, cap, "missing-id")
	if r.IsFound() || r.Message() != "Patient not found." {
		t.Errorf("expected not-found, got found=%v %q", r.IsFound(), r.Message())
	}
}

func TestPatientDetailCounts(t *testing.T) {
	db := newTestDB(t)
	f := New(db)
	ctx := context.Background()

	u1 := createUser(t, db, "alice@example.com", models.RolePatient)
	p1 := createPatient(t, db, u1, "Alice", "Nguyen")
	du := createUser(t, db, "dr.lee@example.com", models.RoleDoctor)
	doc := createDoctor(t, db, du, "Sarah", "Lee", "Cardiology")
	admin := createUser(t, db, "admin@example.com", models.RoleAdmin)

	past := time.Now().AddDate(0, 0, -14)
	future := time.Now().AddDate(0, 0, 14)
	db.Create(&models.Appointment{PatientID: p1.ID, DoctorID: doc.ID, AppointmentDate: past, Status: models.StatusCompleted})
	db.Create(&models.Appointment{PatientID: p1.ID, DoctorID: doc.ID, AppointmentDate: future, Status: models.StatusScheduled})
	db.Create(&models.Billing{PatientID: p1.ID, Amount: 100, Currency: "USD", Status: models.BillingPending, IssuedAt: past})
	db.Create(&models.Billing{PatientID: p1.ID, Amount: 80, Currency: "USD", Status: models.BillingPaid, IssuedAt: past})
	expired := time.Now().AddDate(0, 0, -1)
	db.Create(&models.Prescription{PatientID: p1.ID, DoctorID: doc.ID, Medication: "Old", IssuedAt: past, ExpiresAt: &expired})
	db.Create(&models.Prescription{PatientID: p1.ID, DoctorID: doc.ID, Medication: "Current", IssuedAt: past})

	r := f.PatientDetails(ctx, NewCapability(admin.ID, models.RoleAdmin), p1.ID)
	if !r.IsFound() {
		t.Fatalf("expected detail, got %q", r.Message())
	}
	detail := r.Data().(PatientDetailRecord)
	if detail.TotalAppointments != 2 {
		t.Errorf("total appointments = %d, want 2", detail.TotalAppointments)
	}
	if detail.UpcomingAppointments != 1 {
		t.Errorf("upcoming appointments = %d, want 1", detail.UpcomingAppointments)
	}
	if detail.PendingBillings != 1 {
		t.Errorf("pending billings = %d, want 1", detail.PendingBillings)
	}
	if detail.ActivePrescriptions != 1 {
		t.Errorf("active prescriptions = %d, want 1", detail.ActivePrescriptions)
	}
}

func TestLabResultsFilter(t *testing.T) {
	db := newTestDB(t)
	f := New(db)
	ctx := context.Background()

	u1 := createUser(t, db, "alice@example.com", models.RolePatient)
	p1 := createPatient(t, db, u1, "Alice", "Nguyen")
	du := createUser(t, db, "dr.lee@example.com", models.RoleDoctor)
	doc := createDoctor(t, db, du, "Sarah", "Lee", "Cardiology")

	mk := func(testType string, daysAgo int) {
		result := models.LabResult{
			PatientID:  p1.ID,
			DoctorID:   doc.ID,
			TestType:   testType,
			Result:     "normal",
			ReportedAt: time.Now().AddDate(0, 0, -daysAgo),
		}
		if err := db.Create(&result).Error; err != nil {
			t.Fatalf("creating lab result: %v", err)
		}
	}
	mk("Blood Panel", 3)
	mk("Urine Analysis", 1)

	cap := NewCapability(u1.ID, models.RolePatient)
	r := f.LabResults(ctx, cap, LabResultsQuery{TestType: "blood"})
	if !r.IsFound() {
		t.Fatalf("expected lab results, got %q", r.Message())
	}
	records := r.Data().([]LabResultRecord)
	if len(records) != 1 || records[0].TestType != "Blood Panel" {
		t.Fatalf("unexpected filter result: %+v", records)
	}
	if records[0].OrderedBy != "Dr. Sarah Lee" {
		t.Errorf("orderedBy = %q", records[0].OrderedBy)
	}

	r = f.LabResults(ctx, cap, LabResultsQuery{})
	records = r.Data().([]LabResultRecord)
	if len(records) != 2 || records[0].TestType != "Urine Analysis" {
		t.Errorf("expected newest-first ordering, got %+v", records)
	}
}
