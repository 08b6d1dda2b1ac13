package facade

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"healthcare-ai-server/internal/models"

	"gorm.io/gorm"
)

// Facade exposes the fixed set of named, role-scoped operations over the data
// store. Every operation resolves an effective target record (the caller's own
// for non-elevated roles, an arbitrary one for elevated roles), performs one
// read or write, and shapes the outcome into plain records or narration text.
type Facade struct {
	db *gorm.DB
}

// New creates a Facade over the given database handle.
func New(db *gorm.DB) *Facade {
	return &Facade{db: db}
}

// fail logs the underlying error server-side and converts it to a generic
// user-safe message so a conversational caller never sees a raw stack trace.
func (f *Facade) fail(op string, err error, message string) Result {
	log.Printf("facade: %s: %v", op, err)
	return Failed(message)
}

// resolvePatientID maps the caller plus an optional explicit id to the patient
// the operation will act on. Non-elevated callers always act on the profile
// owned by their own user id; the explicit id is ignored for them. For elevated
// callers the explicit id is used as-is, and an empty id means "all patients"
// for listing operations. The extra Result return is non-nil when resolution
// already decided the outcome.
func (f *Facade) resolvePatientID(ctx context.Context, cap Capability, explicitID, notFoundText, failText string) (string, *Result) {
	if cap.Elevated {
		return explicitID, nil
	}

	var patient models.Patient
	err := f.db.WithContext(ctx).Where("user_id = ?", cap.UserID).First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r := NotFound(notFoundText)
			return "", &r
		}
		r := f.fail("resolve patient", err, failText)
		return "", &r
	}
	return patient.ID, nil
}

// ProfileRecord is the shaped patient profile returned by PatientProfile.
type ProfileRecord struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	DateOfBirth           string `json:"dateOfBirth"`
	Gender                string `json:"gender,omitempty"`
	BloodType             string `json:"bloodType,omitempty"`
	Address               string `json:"address,omitempty"`
	Email                 string `json:"email"`
	Phone                 string `json:"phone,omitempty"`
	InsuranceProvider     string `json:"insuranceProvider,omitempty"`
	InsurancePolicyNumber string `json:"insurancePolicyNumber,omitempty"`
}

// PatientProfile returns the profile of the caller's own patient record, or of
// an arbitrary patient when an elevated caller supplies an explicit id.
func (f *Facade) PatientProfile(ctx context.Context, cap Capability, patientID string) Result {
	const failText = "Unable to fetch patient profile at this time."

	targetID, res := f.resolvePatientID(ctx, cap, patientID, "Patient profile not found.", failText)
	if res != nil {
		return *res
	}
	if targetID == "" {
		// Elevated caller without a target; a single-profile lookup has no
		// "all records" form.
		return NotFound("Patient profile not found.")
	}

	var patient models.Patient
	err := f.db.WithContext(ctx).Preload("User").First(&patient, "id = ?", targetID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("Patient profile not found.")
		}
		return f.fail("patient profile", err, failText)
	}

	return Found(ProfileRecord{
		ID:                    patient.ID,
		Name:                  patient.FullName(),
		DateOfBirth:           patient.DateOfBirth.Format("2006-01-02"),
		Gender:                patient.Gender,
		BloodType:             patient.BloodType,
		Address:               patient.Address,
		Email:                 patient.User.Email,
		Phone:                 patient.User.Phone,
		InsuranceProvider:     patient.InsuranceProvider,
		InsurancePolicyNumber: patient.InsurancePolicyNumber,
	})
}

// AppointmentsQuery filters an appointment listing.
type AppointmentsQuery struct {
	Status    string
	PatientID string // elevated callers only; empty means all patients
}

// AppointmentRecord is the shaped appointment row returned by listings.
type AppointmentRecord struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Patient string `json:"patient"`
	Doctor  string `json:"doctor"`
	Status  string `json:"status"`
	Reason  string `json:"reason"`
}

// Appointments lists appointments for the resolved target patient, or for all
// patients when an elevated caller supplies no target (capped at 100 rows).
func (f *Facade) Appointments(ctx context.Context, cap Capability, q AppointmentsQuery) Result {
	const failText = "Unable to fetch appointments at this time."

	targetID, res := f.resolvePatientID(ctx, cap, q.PatientID, "Patient record not found.", failText)
	if res != nil {
		return *res
	}

	query := f.db.WithContext(ctx).Preload("Patient").Preload("Doctor").
		Order("appointment_date asc")
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if targetID != "" {
		query = query.Where("patient_id = ?", targetID)
	} else {
		query = query.Limit(100)
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		return f.fail("appointments", err, failText)
	}
	if len(appointments) == 0 {
		return NotFound("No appointments found.")
	}

	records := make([]AppointmentRecord, len(appointments))
	for i, a := range appointments {
		reason := a.Reason
		if reason == "" {
			reason = "No reason provided"
		}
		records[i] = AppointmentRecord{
			ID:      a.ID,
			Date:    a.AppointmentDate.Format(time.RFC3339),
			Patient: a.Patient.FullName(),
			Doctor:  "Dr. " + a.Doctor.LastName,
			Status:  string(a.Status),
			Reason:  reason,
		}
	}
	return Found(records)
}

// BookingRequest carries the inputs for creating a new appointment.
type BookingRequest struct {
	DoctorID  string
	Date      time.Time
	Reason    string
	PatientID string // elevated callers only
}

// BookAppointment validates the referenced doctor, resolves the effective
// patient, and persists a new pending appointment. On success it returns a
// confirmation string embedding the new record's id and timestamp.
//
// Two concurrent bookings for the same doctor and slot can both succeed; no
// overlap check is performed.
func (f *Facade) BookAppointment(ctx context.Context, cap Capability, req BookingRequest) Result {
	const failText = "Unable to book appointment at this time."

	var doctor models.Doctor
	err := f.db.WithContext(ctx).First(&doctor, "id = ?", req.DoctorID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("Doctor not found.")
		}
		return f.fail("book appointment", err, failText)
	}

	targetID, res := f.resolvePatientID(ctx, cap, req.PatientID, "Could not find your patient record.", failText)
	if res != nil {
		return *res
	}
	if targetID == "" {
		return NotFound("Could not find your patient record.")
	}

	appointment := models.Appointment{
		PatientID:       targetID,
		DoctorID:        doctor.ID,
		AppointmentDate: req.Date,
		DurationMinutes: 30,
		Reason:          req.Reason,
		Status:          models.StatusPending,
	}
	if err := f.db.WithContext(ctx).Create(&appointment).Error; err != nil {
		return f.fail("book appointment", err, failText)
	}

	return Found(fmt.Sprintf("Appointment request sent for %s. ID: %s",
		appointment.AppointmentDate.Format(time.RFC3339), appointment.ID))
}

// likePattern builds a case-insensitive substring pattern for LOWER(col) LIKE.
func likePattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}
