package facade

import (
	"context"
	"encoding/json"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// Tool couples a function definition advertised to the model with the executor
// that runs it. Run returns either shaped records or narration text; the
// assistant serializes the returned value back into the model's context as the
// tool result.
type Tool struct {
	Definition openai.Tool
	Run        func(ctx context.Context, args json.RawMessage) interface{}
}

const invalidArgsText = "Invalid tool arguments."

// Tools returns the operation surface advertised to the given caller. The set
// itself differs by role: elevated-only tools are absent for non-elevated
// callers, not merely refused, and the patientId parameter is only described
// to callers that may use it.
func (f *Facade) Tools(cap Capability) []Tool {
	tools := []Tool{
		f.patientProfileTool(cap),
		f.appointmentsTool(cap),
		f.searchDoctorsTool(),
		f.bookAppointmentTool(cap),
		f.billingInfoTool(cap),
		f.labResultsTool(cap),
		f.prescriptionsTool(cap),
		f.listDoctorsTool(),
	}
	if cap.Elevated {
		tools = append(tools, f.allPatientsTool(cap), f.patientDetailsTool(cap))
	}
	return tools
}

func pick(cap Capability, elevated, plain string) string {
	if cap.Elevated {
		return elevated
	}
	return plain
}

// patientIDProperty adds the optional explicit-target parameter for elevated
// callers. Non-elevated callers never see it; their target is always derived
// from their own user id.
func patientIDProperty(cap Capability, props map[string]jsonschema.Definition) {
	if cap.Elevated {
		props["patientId"] = jsonschema.Definition{
			Type:        jsonschema.String,
			Description: "Patient ID to target; omit to use the default scope",
		}
	}
}

func functionTool(name, description string, props map[string]jsonschema.Definition, required []string) openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters: jsonschema.Definition{
				Type:       jsonschema.Object,
				Properties: props,
				Required:   required,
			},
		},
	}
}

func (f *Facade) patientProfileTool(cap Capability) Tool {
	props := map[string]jsonschema.Definition{}
	patientIDProperty(cap, props)
	return Tool{
		Definition: functionTool("getPatientProfile",
			pick(cap,
				"Get patient profile information (any patient may be targeted)",
				"Get the profile details of the current logged-in patient, including name and insurance."),
			props, nil),
		Run: func(ctx context.Context, args json.RawMessage) interface{} {
			var in struct {
				PatientID string `json:"patientId"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return invalidArgsText
			}
			return f.PatientProfile(ctx, cap, in.PatientID).Narrate()
		},
	}
}

func (f *Facade) appointmentsTool(cap Capability) Tool {
	props := map[string]jsonschema.Definition{
		"status": {
			Type:        jsonschema.String,
			Enum:        []string{"pending", "scheduled", "confirmed", "completed", "cancelled", "no_show"},
			Description: "Filter by appointment status",
		},
	}
	patientIDProperty(cap, props)
	return Tool{
		Definition: functionTool("getAppointments",
			pick(cap,
				"Get a list of appointments for all patients or a specific patient.",
				"Get a list of upcoming or past appointments for the current patient."),
			props, nil),
		Run: func(ctx context.Context, args json.RawMessage) interface{} {
			var in struct {
				Status    string `json:"status"`
				PatientID string `json:"patientId"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return invalidArgsText
			}
			return f.Appointments(ctx, cap, AppointmentsQuery{
				Status:    in.Status,
				PatientID: in.PatientID,
			}).Narrate()
		},
	}
}

func (f *Facade) searchDoctorsTool() Tool {
	return Tool{
		Definition: functionTool("searchDoctors",
			"Search for doctors by specialization or name.",
			map[string]jsonschema.Definition{
				"query": {
					Type:        jsonschema.String,
					Description: "Specialization (e.g. Cardiologist) or name",
				},
			}, []string{"query"}),
		Run: func(ctx context.Context, args json.RawMessage) interface{} {
			var in struct {
				Query string `json:"query"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return invalidArgsText
			}
			return f.SearchDoctors(ctx, in.Query).Narrate()
		},
	}
}

func (f *Facade) bookAppointmentTool(cap Capability) Tool {
	props := map[string]jsonschema.Definition{
		"doctorId": {Type: jsonschema.String},
		"date": {
			Type:        jsonschema.String,
			Description: "ISO date string for the appointment",
		},
		"reason": {Type: jsonschema.String},
	}
	patientIDProperty(cap, props)
	return Tool{
		Definition: functionTool("bookAppointment",
			pick(cap,
				"Book a new appointment with a doctor for any patient",
				"Book a new appointment with a specific doctor."),
			props, []string{"doctorId", "date"}),
		Run: func(ctx context.Context, args json.RawMessage) interface{} {
			var in struct {
				DoctorID  string `json:"doctorId"`
				Date      string `json:"date"`
				Reason    string `json:"reason"`
				PatientID string `json:"patientId"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return invalidArgsText
			}
			date, err := parseToolDate(in.Date)
			if err != nil {
				return "Invalid appointment date. Provide an ISO 8601 timestamp."
			}
			return f.BookAppointment(ctx, cap, BookingRequest{
				DoctorID:  in.DoctorID,
				Date:      date,
				Reason:    in.Reason,
				PatientID: in.PatientID,
			}).Narrate()
		},
	}
}

func (f *Facade) billingInfoTool(cap Capability) Tool {
	props := map[string]jsonschema.Definition{
		"status": {
			Type:        jsonschema.String,
			Enum:        []string{"pending", "paid", "refunded", "cancelled"},
			Description: "Filter by billing status",
		},
	}
	patientIDProperty(cap, props)
	return Tool{
		Definition: functionTool("getBillingInfo",
			pick(cap,
				"Get patient billing information, invoices, and payment status (any patient may be targeted)",
				"Get billing information, invoices, and payment status for the current patient."),
			props, nil),
		Run: func(ctx context.Context, args json.RawMessage) interface{} {
			var in struct {
				Status    string `json:"status"`
				PatientID string `json:"patientId"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return invalidArgsText
			}
			return f.BillingInfo(ctx, cap, BillingQuery{
				Status:    in.Status,
				PatientID: in.PatientID,
			}).Narrate()
		},
	}
}

func (f *Facade) labResultsTool(cap Capability) Tool {
	props := map[string]jsonschema.Definition{
		"testType": {
			Type:        jsonschema.String,
			Description: "Filter by lab test type (e.g., Blood, Urine)",
		},
	}
	patientIDProperty(cap, props)
	return Tool{
		Definition: functionTool("getLabResults",
			pick(cap,
				"Get patient lab test results and medical test reports (any patient may be targeted)",
				"Get personal lab test results and medical test reports."),
			props, nil),
		Run: func(ctx context.Context, args json.RawMessage) interface{} {
			var in struct {
				TestType  string `json:"testType"`
				PatientID string `json:"patientId"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return invalidArgsText
			}
			return f.LabResults(ctx, cap, LabResultsQuery{
				TestType:  in.TestType,
				PatientID: in.PatientID,
			}).Narrate()
		},
	}
}

func (f *Facade) prescriptionsTool(cap Capability) Tool {
	props := map[string]jsonschema.Definition{
		"active": {
			Type:        jsonschema.Boolean,
			Description: "Show only active prescriptions (default true)",
		},
	}
	patientIDProperty(cap, props)
	return Tool{
		Definition: functionTool("getPrescriptions",
			pick(cap,
				"Get patient prescriptions and medication information (any patient may be targeted)",
				"Get personal prescriptions and medication information."),
			props, nil),
		Run: func(ctx context.Context, args json.RawMessage) interface{} {
			var in struct {
				Active    *bool  `json:"active"`
				PatientID string `json:"patientId"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return invalidArgsText
			}
			activeOnly := in.Active == nil || *in.Active
			return f.Prescriptions(ctx, cap, PrescriptionsQuery{
				ActiveOnly: activeOnly,
				PatientID:  in.PatientID,
			}).Narrate()
		},
	}
}

func (f *Facade) listDoctorsTool() Tool {
	return Tool{
		Definition: functionTool("listAvailableDoctors",
			"Get a comprehensive list of all available doctors with their specializations and fees.",
			map[string]jsonschema.Definition{
				"specialization": {
					Type:        jsonschema.String,
					Description: "Filter by medical specialization (e.g., Cardiology)",
				},
				"available": {
					Type:        jsonschema.Boolean,
					Description: "Show only available doctors (default true)",
				},
			}, nil),
		Run: func(ctx context.Context, args json.RawMessage) interface{} {
			var in struct {
				Specialization string `json:"specialization"`
				Available      *bool  `json:"available"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return invalidArgsText
			}
			availableOnly := in.Available == nil || *in.Available
			return f.ListDoctors(ctx, DoctorsQuery{
				Specialization: in.Specialization,
				AvailableOnly:  availableOnly,
			}).Narrate()
		},
	}
}

func (f *Facade) allPatientsTool(cap Capability) Tool {
	return Tool{
		Definition: functionTool("getAllPatients",
			"Get a list of all patients in the system with their information.",
			map[string]jsonschema.Definition{
				"search": {
					Type:        jsonschema.String,
					Description: "Search by name or email",
				},
			}, nil),
		Run: func(ctx context.Context, args json.RawMessage) interface{} {
			var in struct {
				Search string `json:"search"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return invalidArgsText
			}
			return f.AllPatients(ctx, cap, in.Search).Narrate()
		},
	}
}

func (f *Facade) patientDetailsTool(cap Capability) Tool {
	return Tool{
		Definition: functionTool("getPatientDetails",
			"Get detailed information about a specific patient.",
			map[string]jsonschema.Definition{
				"patientId": {
					Type:        jsonschema.String,
					Description: "The patient ID",
				},
			}, []string{"patientId"}),
		Run: func(ctx context.Context, args json.RawMessage) interface{} {
			var in struct {
				PatientID string `json:"patientId"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return invalidArgsText
			}
			return f.PatientDetails(ctx, cap, in.PatientID).Narrate()
		},
	}
}

func parseToolDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
