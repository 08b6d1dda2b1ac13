package handlers

import (
	"errors"
	"healthcare-ai-server/internal/facade"
	"healthcare-ai-server/internal/models"
	"healthcare-ai-server/internal/utils"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdminHandler handles elevated operations: patient administration, billing
// administration, user lifecycle, and dashboard statistics.
type AdminHandler struct {
	DB     *gorm.DB
	Facade *facade.Facade
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(db *gorm.DB, f *facade.Facade) *AdminHandler {
	return &AdminHandler{DB: db, Facade: f}
}

// ListPatients lists patients via the façade's elevated listing, optionally
// filtered by ?search=.
func (h *AdminHandler) ListPatients(c *gin.Context) {
	cap, ok := capabilityFrom(c)
	if !ok {
		return
	}
	r := h.Facade.AllPatients(c.Request.Context(), cap, c.Query("search"))
	respond(c, "Patients fetched successfully", r)
}

// GetPatient returns the façade's detailed view of one patient.
func (h *AdminHandler) GetPatient(c *gin.Context) {
	cap, ok := capabilityFrom(c)
	if !ok {
		return
	}
	r := h.Facade.PatientDetails(c.Request.Context(), cap, c.Param("id"))
	respond(c, "Patient fetched successfully", r)
}

// UpdatePatientRequest represents the request body for an admin patient update.
// Profile fields land on the Patient row, contact fields on the owning User row.
type UpdatePatientRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"` // YYYY-MM-DD
	Gender      string `json:"gender"`
	BloodType   string `json:"bloodType"`
	Address     string `json:"address"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	IsActive    *bool  `json:"isActive"`
}

// UpdatePatient updates a patient profile and its owning user atomically: the
// two-row write either fully applies or not at all.
func (h *AdminHandler) UpdatePatient(c *gin.Context) {
	var req UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.FirstName != "" {
		patient.FirstName = req.FirstName
	}
	if req.LastName != "" {
		patient.LastName = req.LastName
	}
	if req.DateOfBirth != "" {
		parsed, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			utils.BadRequest(c, "Invalid dateOfBirth, expected YYYY-MM-DD")
			return
		}
		patient.DateOfBirth = parsed
	}
	if req.Gender != "" {
		patient.Gender = req.Gender
	}
	if req.BloodType != "" {
		patient.BloodType = req.BloodType
	}
	if req.Address != "" {
		patient.Address = req.Address
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&patient).Error; err != nil {
			return err
		}

		var user models.User
		if err := tx.First(&user, "id = ?", patient.UserID).Error; err != nil {
			return err
		}
		if req.Email != "" {
			user.Email = req.Email
		}
		if req.Phone != "" {
			user.Phone = req.Phone
		}
		if req.IsActive != nil {
			user.IsActive = *req.IsActive
		}
		return tx.Save(&user).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to update patient: "+err.Error())
		return
	}

	utils.Success(c, "Patient updated successfully", patient)
}

// ListBillings lists all billing records, optionally filtered by ?status=.
func (h *AdminHandler) ListBillings(c *gin.Context) {
	query := h.DB.Preload("Patient").Order("issued_at desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var billings []models.Billing
	if err := query.Find(&billings).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch billing records: "+err.Error())
		return
	}
	utils.Success(c, "Billing records fetched successfully", billings)
}

// UpdateBillingStatusRequest represents the request body for a billing status
// update.
type UpdateBillingStatusRequest struct {
	Status models.BillingStatus `json:"status" binding:"required,oneof=pending paid refunded cancelled"`
}

// UpdateBillingStatus writes a billing status. Marking a record paid sets its
// paid timestamp in the same operation; any other status leaves it unchanged.
func (h *AdminHandler) UpdateBillingStatus(c *gin.Context) {
	var req UpdateBillingStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var billing models.Billing
	if err := h.DB.First(&billing, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Billing record not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	billing.Status = req.Status
	if req.Status == models.BillingPaid {
		now := time.Now()
		billing.PaidAt = &now
	}

	if err := h.DB.Save(&billing).Error; err != nil {
		utils.InternalServerError(c, "Failed to update billing record: "+err.Error())
		return
	}

	utils.Success(c, "Billing record updated successfully", billing)
}

// ListUsers lists all identity records.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := h.DB.Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch users: "+err.Error())
		return
	}

	sanitized := make([]models.UserSanitized, len(users))
	for i, u := range users {
		sanitized[i] = u.Sanitize()
	}
	utils.Success(c, "Users fetched successfully", sanitized)
}

// UpdateUserStatusRequest represents the request body for toggling a user's
// active flag.
type UpdateUserStatusRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// UpdateUserStatus soft-disables or re-enables a user via the active flag.
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	var req UpdateUserStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	user.IsActive = *req.IsActive
	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update user: "+err.Error())
		return
	}

	utils.Success(c, "User updated successfully", user.Sanitize())
}

// DeleteUser hard-deletes a user and cascades to their role-specific profile.
// Both deletions happen in one transaction.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	var user models.User
	if err := h.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		switch user.Role {
		case models.RolePatient:
			if err := tx.Where("user_id = ?", user.ID).Delete(&models.Patient{}).Error; err != nil {
				return err
			}
		case models.RoleDoctor:
			if err := tx.Where("user_id = ?", user.ID).Delete(&models.Doctor{}).Error; err != nil {
				return err
			}
		case models.RoleStaff:
			if err := tx.Where("user_id = ?", user.ID).Delete(&models.Staff{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to delete user: "+err.Error())
		return
	}

	utils.Success(c, "User deleted successfully", nil)
}

// StatsOverview is the dashboard counters payload.
type StatsOverview struct {
	TotalPatients         int64   `json:"totalPatients"`
	TotalDoctors          int64   `json:"totalDoctors"`
	TotalStaff            int64   `json:"totalStaff"`
	TotalAppointments     int64   `json:"totalAppointments"`
	PendingAppointments   int64   `json:"pendingAppointments"`
	CompletedAppointments int64   `json:"completedAppointments"`
	TotalBillings         int64   `json:"totalBillings"`
	PaidBillings          int64   `json:"paidBillings"`
	PendingBillings       int64   `json:"pendingBillings"`
	TotalRevenue          float64 `json:"totalRevenue"`
	PaidRevenue           float64 `json:"paidRevenue"`
	TotalPrescriptions    int64   `json:"totalPrescriptions"`
	TotalLabResults       int64   `json:"totalLabResults"`
}

// GetStats returns the dashboard counters.
func (h *AdminHandler) GetStats(c *gin.Context) {
	var stats StatsOverview

	counts := []struct {
		dest  *int64
		model interface{}
		where []interface{}
	}{
		{&stats.TotalPatients, &models.Patient{}, nil},
		{&stats.TotalDoctors, &models.Doctor{}, nil},
		{&stats.TotalStaff, &models.Staff{}, nil},
		{&stats.TotalAppointments, &models.Appointment{}, nil},
		{&stats.PendingAppointments, &models.Appointment{}, []interface{}{"status = ?", models.StatusPending}},
		{&stats.CompletedAppointments, &models.Appointment{}, []interface{}{"status = ?", models.StatusCompleted}},
		{&stats.TotalBillings, &models.Billing{}, nil},
		{&stats.PaidBillings, &models.Billing{}, []interface{}{"status = ?", models.BillingPaid}},
		{&stats.PendingBillings, &models.Billing{}, []interface{}{"status = ?", models.BillingPending}},
		{&stats.TotalPrescriptions, &models.Prescription{}, nil},
		{&stats.TotalLabResults, &models.LabResult{}, nil},
	}
	for _, count := range counts {
		query := h.DB.Model(count.model)
		if count.where != nil {
			query = query.Where(count.where[0], count.where[1:]...)
		}
		if err := query.Count(count.dest).Error; err != nil {
			utils.InternalServerError(c, "Failed to compute statistics: "+err.Error())
			return
		}
	}

	type revenueRow struct {
		Status models.BillingStatus
		Total  float64
	}
	var revenue []revenueRow
	err := h.DB.Model(&models.Billing{}).
		Select("status, COALESCE(SUM(amount), 0) as total").
		Group("status").
		Scan(&revenue).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to compute revenue: "+err.Error())
		return
	}
	for _, row := range revenue {
		stats.TotalRevenue += row.Total
		if row.Status == models.BillingPaid {
			stats.PaidRevenue = row.Total
		}
	}

	utils.Success(c, "Statistics fetched successfully", stats)
}
