package facade

import (
	"context"
	"errors"
	"time"

	"healthcare-ai-server/internal/models"

	"gorm.io/gorm"
)

// notAuthorizedText is the narration for an elevated-only operation invoked
// without elevated privilege. Such operations are not advertised to
// non-elevated callers in the first place; this is the defense-in-depth check
// behind the structural gate.
const notAuthorizedText = "Not authorized to perform this operation."

// PatientSummaryRecord is the shaped patient row returned by AllPatients.
type PatientSummaryRecord struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	BloodType        string `json:"bloodType"`
	AppointmentCount int64  `json:"appointmentCount"`
}

// AllPatients lists up to 50 patients ordered by last name, optionally filtered
// by a case-insensitive search over name and email. Elevated callers only.
func (f *Facade) AllPatients(ctx context.Context, cap Capability, search string) Result {
	if !cap.Elevated {
		return Failed(notAuthorizedText)
	}
	const failText = "Unable to fetch patient list."

	query := f.db.WithContext(ctx).Preload("User").Order("last_name asc").Limit(50)
	if search != "" {
		pattern := likePattern(search)
		query = query.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR user_id IN (?)",
			pattern, pattern,
			f.db.Model(&models.User{}).Select("id").Where("LOWER(email) LIKE ?", pattern),
		)
	}

	var patients []models.Patient
	if err := query.Find(&patients).Error; err != nil {
		return f.fail("all patients", err, failText)
	}
	if len(patients) == 0 {
		return NotFound("No patients found.")
	}

	records := make([]PatientSummaryRecord, len(patients))
	for i, p := range patients {
		var appointmentCount int64
		if err := f.db.WithContext(ctx).Model(&models.Appointment{}).
			Where("patient_id = ?", p.ID).Count(&appointmentCount).Error; err != nil {
			return f.fail("all patients", err, failText)
		}
		records[i] = PatientSummaryRecord{
			ID:               p.ID,
			Name:             p.FullName(),
			Email:            orDefault(p.User.Email, "Not provided"),
			Phone:            orDefault(p.User.Phone, "Not provided"),
			BloodType:        orDefault(p.BloodType, "Not provided"),
			AppointmentCount: appointmentCount,
		}
	}
	return Found(records)
}

// PatientDetailRecord is the shaped response of PatientDetails.
type PatientDetailRecord struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	BloodType            string `json:"bloodType"`
	Status               string `json:"status"`
	UpcomingAppointments int64  `json:"upcomingAppointments"`
	TotalAppointments    int64  `json:"totalAppointments"`
	PendingBillings      int64  `json:"pendingBillings"`
	ActivePrescriptions  int64  `json:"activePrescriptions"`
}

// PatientDetails returns detailed information about a specific patient by
// explicit id. Elevated callers only.
func (f *Facade) PatientDetails(ctx context.Context, cap Capability, patientID string) Result {
	if !cap.Elevated {
		return Failed(notAuthorizedText)
	}
	const failText = "Unable to fetch patient details."

	var patient models.Patient
	err := f.db.WithContext(ctx).Preload("User").First(&patient, "id = ?", patientID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("Patient not found.")
		}
		return f.fail("patient details", err, failText)
	}

	now := time.Now()
	record := PatientDetailRecord{
		ID:        patient.ID,
		Name:      patient.FullName(),
		Email:     patient.User.Email,
		Phone:     patient.User.Phone,
		BloodType: patient.BloodType,
		Status:    "Inactive",
	}
	if patient.User.IsActive {
		record.Status = "Active"
	}

	if err := f.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("patient_id = ?", patient.ID).
		Count(&record.TotalAppointments).Error; err != nil {
		return f.fail("patient details", err, failText)
	}
	if err := f.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("patient_id = ? AND appointment_date > ?", patient.ID, now).
		Count(&record.UpcomingAppointments).Error; err != nil {
		return f.fail("patient details", err, failText)
	}
	if err := f.db.WithContext(ctx).Model(&models.Billing{}).
		Where("patient_id = ? AND status = ?", patient.ID, models.BillingPending).
		Count(&record.PendingBillings).Error; err != nil {
		return f.fail("patient details", err, failText)
	}
	if err := f.db.WithContext(ctx).Model(&models.Prescription{}).
		Where("patient_id = ? AND (expires_at IS NULL OR expires_at > ?)", patient.ID, now).
		Count(&record.ActivePrescriptions).Error; err != nil {
		return f.fail("patient details", err, failText)
	}

	return Found(record)
}
