package handlers

import (
	"healthcare-ai-server/internal/facade"
	"healthcare-ai-server/internal/middleware"
	"healthcare-ai-server/internal/utils"
	"time"

	"github.com/gin-gonic/gin"
)

// QueryHandler translates façade results into JSON HTTP responses. Each
// endpoint is a thin wrapper: build the caller's capability, invoke one façade
// operation, render the outcome.
type QueryHandler struct {
	Facade *facade.Facade
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(f *facade.Facade) *QueryHandler {
	return &QueryHandler{Facade: f}
}

// capabilityFrom builds the caller's capability from the auth context.
func capabilityFrom(c *gin.Context) (facade.Capability, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return facade.Capability{}, false
	}
	role, ok := middleware.GetUserRoleFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User role missing from context")
		return facade.Capability{}, false
	}
	return facade.NewCapability(userID, role), true
}

// respond renders a façade result into the standard response envelope.
func respond(c *gin.Context, message string, r facade.Result) {
	switch {
	case r.IsFailed():
		utils.InternalServerError(c, r.Message())
	case !r.IsFound():
		utils.NotFound(c, r.Message())
	default:
		utils.Success(c, message, r.Data())
	}
}

// GetProfile returns the caller's patient profile, or an arbitrary patient's
// for elevated callers supplying ?patientId=.
func (h *QueryHandler) GetProfile(c *gin.Context) {
	cap, ok := capabilityFrom(c)
	if !ok {
		return
	}
	r := h.Facade.PatientProfile(c.Request.Context(), cap, c.Query("patientId"))
	respond(c, "Profile fetched successfully", r)
}

// GetAppointments lists appointments, optionally filtered by ?status=.
func (h *QueryHandler) GetAppointments(c *gin.Context) {
	cap, ok := capabilityFrom(c)
	if !ok {
		return
	}
	r := h.Facade.Appointments(c.Request.Context(), cap, facade.AppointmentsQuery{
		Status:    c.Query("status"),
		PatientID: c.Query("patientId"),
	})
	respond(c, "Appointments fetched successfully", r)
}

// GetBilling lists billing records, optionally filtered by ?status=.
func (h *QueryHandler) GetBilling(c *gin.Context) {
	cap, ok := capabilityFrom(c)
	if !ok {
		return
	}
	r := h.Facade.BillingInfo(c.Request.Context(), cap, facade.BillingQuery{
		Status:    c.Query("status"),
		PatientID: c.Query("patientId"),
	})
	respond(c, "Billing records fetched successfully", r)
}

// GetLabResults lists lab results, optionally filtered by ?type=.
func (h *QueryHandler) GetLabResults(c *gin.Context) {
	cap, ok := capabilityFrom(c)
	if !ok {
		return
	}
	r := h.Facade.LabResults(c.Request.Context(), cap, facade.LabResultsQuery{
		TestType:  c.Query("type"),
		PatientID: c.Query("patientId"),
	})
	respond(c, "Lab results fetched successfully", r)
}

// GetPrescriptions lists prescriptions; ?active=false includes expired ones.
func (h *QueryHandler) GetPrescriptions(c *gin.Context) {
	cap, ok := capabilityFrom(c)
	if !ok {
		return
	}
	r := h.Facade.Prescriptions(c.Request.Context(), cap, facade.PrescriptionsQuery{
		ActiveOnly: c.DefaultQuery("active", "true") != "false",
		PatientID:  c.Query("patientId"),
	})
	respond(c, "Prescriptions fetched successfully", r)
}

// SearchDoctors searches doctors by ?q= over name and specialization.
func (h *QueryHandler) SearchDoctors(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		utils.BadRequest(c, "Query parameter 'q' is required")
		return
	}
	r := h.Facade.SearchDoctors(c.Request.Context(), query)
	respond(c, "Doctors fetched successfully", r)
}

// ListDoctors lists doctors, by default only the available ones.
func (h *QueryHandler) ListDoctors(c *gin.Context) {
	r := h.Facade.ListDoctors(c.Request.Context(), facade.DoctorsQuery{
		Specialization: c.Query("specialization"),
		AvailableOnly:  c.DefaultQuery("available", "true") != "false",
	})
	respond(c, "Doctors fetched successfully", r)
}

// BookAppointmentRequest represents the request body for booking an appointment.
type BookAppointmentRequest struct {
	DoctorID  string `json:"doctorId" binding:"required,uuid"`
	Date      string `json:"date" binding:"required"`
	Reason    string `json:"reason"`
	PatientID string `json:"patientId"` // elevated callers only
}

// BookAppointment creates a new pending appointment for the resolved patient.
func (h *QueryHandler) BookAppointment(c *gin.Context) {
	cap, ok := capabilityFrom(c)
	if !ok {
		return
	}

	var req BookAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		utils.BadRequest(c, "Invalid date, expected an ISO 8601 timestamp")
		return
	}

	r := h.Facade.BookAppointment(c.Request.Context(), cap, facade.BookingRequest{
		DoctorID:  req.DoctorID,
		Date:      date,
		Reason:    req.Reason,
		PatientID: req.PatientID,
	})
	if r.IsFound() {
		utils.Created(c, "Appointment request created", r.Data())
		return
	}
	respond(c, "", r)
}
