package models

import "time"

const PersonTable = "av_persons"

type PersonRole string

const (
	RoleStudent PersonRole = "student"
	RoleFaculty PersonRole = "faculty"
	RoleStaff   PersonRole = "staff"
)

func (r PersonRole) Valid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleStaff:
		return true
	}
	return false
}

// Person 借用人（不是系统用户）
type Person struct {
	ID             string     `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName      string     `gorm:"size:100;not null" json:"firstName"`
	LastName       string     `gorm:"size:100;not null" json:"lastName"`
	Identification string     `gorm:"size:20;uniqueIndex;not null" json:"identification"`
	Email          *string    `gorm:"size:100;uniqueIndex" json:"email,omitempty"`
	Phone          *string    `gorm:"size:20" json:"phone,omitempty"`
	Role           PersonRole `gorm:"size:20;not null" json:"role"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (Person) TableName() string { return PersonTable }

func (p Person) FullName() string { return p.FirstName + " " + p.LastName }
