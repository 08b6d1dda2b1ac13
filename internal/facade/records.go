package facade

import (
	"context"
	"fmt"
	"time"

	"healthcare-ai-server/internal/models"
)

// BillingQuery filters a billing listing.
type BillingQuery struct {
	Status    string
	PatientID string // elevated callers only
}

// BillingRecord is the shaped invoice row returned by BillingInfo.
type BillingRecord struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Status      string `json:"status"`
	Description string `json:"description"`
	IssuedAt    string `json:"issuedAt"`
	PaidAt      string `json:"paidAt"`
}

// BillingInfo lists the target patient's invoices, newest issued first.
func (f *Facade) BillingInfo(ctx context.Context, cap Capability, q BillingQuery) Result {
	const failText = "Unable to fetch billing information at this time."

	targetID, res := f.resolvePatientID(ctx, cap, q.PatientID, "Patient record not found.", failText)
	if res != nil {
		return *res
	}

	query := f.db.WithContext(ctx).Order("issued_at desc")
	if targetID != "" {
		query = query.Where("patient_id = ?", targetID)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}

	var billings []models.Billing
	if err := query.Find(&billings).Error; err != nil {
		return f.fail("billing info", err, failText)
	}
	if len(billings) == 0 {
		return NotFound("No billing records found.")
	}

	records := make([]BillingRecord, len(billings))
	for i, b := range billings {
		description := b.Description
		if description == "" {
			description = "Invoice"
		}
		paidAt := "Not yet paid"
		if b.PaidAt != nil {
			paidAt = b.PaidAt.Format("2006-01-02")
		}
		records[i] = BillingRecord{
			ID:          b.ID,
			Amount:      fmt.Sprintf("$%.2f %s", b.Amount, b.Currency),
			Status:      string(b.Status),
			Description: description,
			IssuedAt:    b.IssuedAt.Format("2006-01-02"),
			PaidAt:      paidAt,
		}
	}
	return Found(records)
}

// LabResultsQuery filters a lab result listing.
type LabResultsQuery struct {
	TestType  string
	PatientID string // elevated callers only
}

// LabResultRecord is the shaped lab result row returned by LabResults.
type LabResultRecord struct {
	ID             string `json:"id"`
	TestType       string `json:"testType"`
	Result         string `json:"result"`
	Units          string `json:"units"`
	ReferenceRange string `json:"referenceRange"`
	CollectedAt    string `json:"collectedAt"`
	ReportedAt     string `json:"reportedAt"`
	OrderedBy      string `json:"orderedBy"`
	Notes          string `json:"notes"`
}

// LabResults lists the target patient's lab results, newest reported first. The
// optional test-type filter is a case-insensitive substring match.
func (f *Facade) LabResults(ctx context.Context, cap Capability, q LabResultsQuery) Result {
	const failText = "Unable to fetch lab results at this time."

	targetID, res := f.resolvePatientID(ctx, cap, q.PatientID, "Patient record not found.", failText)
	if res != nil {
		return *res
	}

	query := f.db.WithContext(ctx).Preload("Doctor").Order("reported_at desc")
	if targetID != "" {
		query = query.Where("patient_id = ?", targetID)
	}
	if q.TestType != "" {
		query = query.Where("LOWER(test_type) LIKE ?", likePattern(q.TestType))
	}

	var results []models.LabResult
	if err := query.Find(&results).Error; err != nil {
		return f.fail("lab results", err, failText)
	}
	if len(results) == 0 {
		return NotFound("No lab results found.")
	}

	records := make([]LabResultRecord, len(results))
	for i, r := range results {
		records[i] = LabResultRecord{
			ID:             r.ID,
			TestType:       r.TestType,
			Result:         r.Result,
			Units:          orDefault(r.Units, "N/A"),
			ReferenceRange: orDefault(r.ReferenceRange, "N/A"),
			CollectedAt:    formatOptionalDate(r.CollectedAt, "N/A"),
			ReportedAt:     r.ReportedAt.Format("2006-01-02"),
			OrderedBy:      doctorNameOr(&r.Doctor, "N/A"),
			Notes:          orDefault(r.LabNotes, "No additional notes"),
		}
	}
	return Found(records)
}

// PrescriptionsQuery filters a prescription listing.
type PrescriptionsQuery struct {
	ActiveOnly bool
	PatientID  string // elevated callers only
}

// PrescriptionRecord is the shaped prescription row returned by Prescriptions.
type PrescriptionRecord struct {
	ID           string `json:"id"`
	Medication   string `json:"medication"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Instructions string `json:"instructions"`
	IssuedAt     string `json:"issuedAt"`
	ExpiresAt    string `json:"expiresAt"`
	PrescribedBy string `json:"prescribedBy"`
}

// Prescriptions lists the target patient's prescriptions, newest issued first.
// With ActiveOnly set, rows whose expiry is in the past are excluded; a row
// with no expiry is always included.
func (f *Facade) Prescriptions(ctx context.Context, cap Capability, q PrescriptionsQuery) Result {
	const failText = "Unable to fetch prescriptions at this time."

	targetID, res := f.resolvePatientID(ctx, cap, q.PatientID, "Patient record not found.", failText)
	if res != nil {
		return *res
	}

	query := f.db.WithContext(ctx).Preload("Doctor").Order("issued_at desc")
	if targetID != "" {
		query = query.Where("patient_id = ?", targetID)
	}
	if q.ActiveOnly {
		query = query.Where("expires_at IS NULL OR expires_at > ?", time.Now())
	}

	var prescriptions []models.Prescription
	if err := query.Find(&prescriptions).Error; err != nil {
		return f.fail("prescriptions", err, failText)
	}
	if len(prescriptions) == 0 {
		return NotFound("No prescriptions found.")
	}

	records := make([]PrescriptionRecord, len(prescriptions))
	for i, p := range prescriptions {
		records[i] = PrescriptionRecord{
			ID:           p.ID,
			Medication:   p.Medication,
			Dosage:       orDefault(p.Dosage, "As prescribed"),
			Frequency:    orDefault(p.Frequency, "As needed"),
			Instructions: orDefault(p.Instructions, "No special instructions"),
			IssuedAt:     p.IssuedAt.Format("2006-01-02"),
			ExpiresAt:    formatOptionalDate(p.ExpiresAt, "No expiration"),
			PrescribedBy: doctorNameOr(&p.Doctor, "N/A"),
		}
	}
	return Found(records)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func formatOptionalDate(t *time.Time, fallback string) string {
	if t == nil {
		return fallback
	}
	return t.Format("2006-01-02")
}

func doctorNameOr(d *models.Doctor, fallback string) string {
	if d == nil || d.ID == "" {
		return fallback
	}
	return d.DisplayName()
}
