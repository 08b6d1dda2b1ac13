package facade

import (
	"context"
	"fmt"

	"healthcare-ai-server/internal/models"
)

// DoctorSearchRecord is the shaped doctor row returned by SearchDoctors.
type DoctorSearchRecord struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Specialization string  `json:"specialization"`
	Fee            float64 `json:"fee"`
}

// SearchDoctors searches doctors by a case-insensitive substring match over
// name and specialization. The search is unscoped by caller identity.
func (f *Facade) SearchDoctors(ctx context.Context, query string) Result {
	pattern := likePattern(query)

	var doctors []models.Doctor
	err := f.db.WithContext(ctx).
		Where("LOWER(specialization) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(first_name) LIKE ?",
			pattern, pattern, pattern).
		Limit(50).
		Find(&doctors).Error
	if err != nil {
		return f.fail("search doctors", err, "Unable to search doctors at this time.")
	}

	records := make([]DoctorSearchRecord, len(doctors))
	for i, d := range doctors {
		records[i] = DoctorSearchRecord{
			ID:             d.ID,
			Name:           d.DisplayName(),
			Specialization: d.Specialization,
			Fee:            d.ConsultationFee,
		}
	}
	return Found(records)
}

// DoctorsQuery filters a doctor listing.
type DoctorsQuery struct {
	Specialization string
	AvailableOnly  bool
}

// DoctorRecord is the shaped doctor row returned by ListDoctors.
type DoctorRecord struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Department     string `json:"department"`
	Fee            string `json:"fee"`
	Bio            string `json:"bio"`
	Verified       string `json:"verified"`
	Available      string `json:"available"`
}

// ListDoctors lists doctors ordered by last name, by default restricted to the
// ones currently accepting appointments.
func (f *Facade) ListDoctors(ctx context.Context, q DoctorsQuery) Result {
	query := f.db.WithContext(ctx).Order("last_name asc")
	if q.AvailableOnly {
		query = query.Where("is_available = ?", true)
	}
	if q.Specialization != "" {
		query = query.Where("LOWER(specialization) LIKE ?", likePattern(q.Specialization))
	}

	var doctors []models.Doctor
	if err := query.Find(&doctors).Error; err != nil {
		return f.fail("list doctors", err, "Unable to fetch doctor list at this time.")
	}
	if len(doctors) == 0 {
		return NotFound("No doctors found matching your criteria.")
	}

	records := make([]DoctorRecord, len(doctors))
	for i, d := range doctors {
		fee := "$TBD"
		if d.ConsultationFee > 0 {
			fee = fmt.Sprintf("$%.2f", d.ConsultationFee)
		}
		verified := "Unverified"
		if d.Verified {
			verified = "Verified"
		}
		available := "Not Available"
		if d.IsAvailable {
			available = "Available"
		}
		records[i] = DoctorRecord{
			ID:             d.ID,
			Name:           d.DisplayName(),
			Specialization: d.Specialization,
			Department:     d.Department,
			Fee:            fee,
			Bio:            d.Bio,
			Verified:       verified,
			Available:      available,
		}
	}
	return Found(records)
}
