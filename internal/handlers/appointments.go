package handlers

import (
	"errors"
	"healthcare-ai-server/internal/middleware"
	"healthcare-ai-server/internal/models"
	"healthcare-ai-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentHandler handles appointment mutations that go beyond booking:
// fetching a single appointment and writing status transitions.
type AppointmentHandler struct {
	DB *gorm.DB
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB) *AppointmentHandler {
	return &AppointmentHandler{DB: db}
}

// ownsProfile reports whether the user owns the patient or doctor profile
// linked to the appointment.
func (h *AppointmentHandler) ownsProfile(userID string, role models.Role, appointment *models.Appointment) bool {
	switch role {
	case models.RolePatient:
		var patient models.Patient
		if err := h.DB.Where("user_id = ?", userID).First(&patient).Error; err != nil {
			return false
		}
		return patient.ID == appointment.PatientID
	case models.RoleDoctor:
		var doctor models.Doctor
		if err := h.DB.Where("user_id = ?", userID).First(&doctor).Error; err != nil {
			return false
		}
		return doctor.ID == appointment.DoctorID
	default:
		return false
	}
}

// GetAppointmentByID fetches a single appointment. Accessible by the involved
// patient, the involved doctor, or an elevated caller.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid Appointment ID format")
		return
	}

	var appointment models.Appointment
	if err := h.DB.Preload("Patient").Preload("Doctor").First(&appointment, "id = ?", appointmentID.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	if !role.Elevated() && !h.ownsProfile(userID, role, &appointment) {
		utils.Forbidden(c, "You are not authorized to view this appointment")
		return
	}

	utils.Success(c, "Appointment fetched successfully", appointment)
}

// UpdateAppointmentStatusRequest represents the request body for updating an
// appointment's status.
type UpdateAppointmentStatusRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required,oneof=pending scheduled confirmed completed cancelled no_show"`
	Notes  string                   `json:"notes"` // Optional notes for status change (e.g., cancellation reason)
}

// UpdateAppointmentStatus writes a status transition. Legality of the
// transition itself is not checked; any status may be written by an authorized
// caller. Patients may only cancel their own pending/scheduled/confirmed
// appointments; doctors may update their own; elevated callers may update any.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid Appointment ID format")
		return
	}

	var req UpdateAppointmentStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", appointmentID.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	canUpdate := false
	switch {
	case role.Elevated():
		canUpdate = true
	case role == models.RoleDoctor:
		canUpdate = h.ownsProfile(userID, role, &appointment)
	case role == models.RolePatient && h.ownsProfile(userID, role, &appointment):
		if req.Status != models.StatusCancelled {
			utils.Forbidden(c, "Patients can only cancel appointments.")
			return
		}
		canUpdate = appointment.Status == models.StatusPending ||
			appointment.Status == models.StatusScheduled ||
			appointment.Status == models.StatusConfirmed
	}

	if !canUpdate {
		utils.Forbidden(c, "You are not authorized to update this appointment's status.")
		return
	}

	appointment.Status = req.Status
	if req.Notes != "" {
		appointment.Notes = req.Notes
	}

	if err := h.DB.Save(&appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to update appointment status: "+err.Error())
		return
	}

	utils.Success(c, "Appointment status updated successfully", appointment)
}
