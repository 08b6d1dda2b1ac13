package models

// Doctor is the role-specific profile owned by a user with the doctor role.
type Doctor struct {
	BaseModel
	UserID          string  `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	FirstName       string  `gorm:"size:100;not null" json:"firstName"`
	LastName        string  `gorm:"size:100;not null" json:"lastName"`
	Specialization  string  `gorm:"size:100;not null" json:"specialization"`
	LicenseNumber   string  `gorm:"size:50" json:"licenseNumber"`
	Department      string  `gorm:"size:100" json:"department,omitempty"`
	ConsultationFee float64 `json:"consultationFee,omitempty"`
	Bio             string  `gorm:"type:text" json:"bio,omitempty"`
	Verified        bool    `gorm:"default:false" json:"verified"`
	IsAvailable     bool    `gorm:"default:true" json:"isAvailable"`

	// Relations
	User          User           `gorm:"foreignKey:UserID" json:"-"`
	Appointments  []Appointment  `gorm:"foreignKey:DoctorID" json:"-"`
	Prescriptions []Prescription `gorm:"foreignKey:DoctorID" json:"-"`
	LabResults    []LabResult    `gorm:"foreignKey:DoctorID" json:"-"`
}

// DisplayName returns the doctor's name with the customary title.
func (d *Doctor) DisplayName() string {
	return "Dr. " + d.FirstName + " " + d.LastName
}
