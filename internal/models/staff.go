package models

// Staff is the role-specific profile owned by a user with the staff role.
type Staff struct {
	BaseModel
	UserID     string `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	FirstName  string `gorm:"size:100;not null" json:"firstName"`
	LastName   string `gorm:"size:100;not null" json:"lastName"`
	Position   string `gorm:"size:100" json:"position,omitempty"`
	Department string `gorm:"size:100" json:"department,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
