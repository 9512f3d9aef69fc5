package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID               int64     `json:"id" db:"id" example:"1"`
	Name             string    `json:"name" db:"name" example:"Ada Lovelace"`
	Email            string    `json:"email" db:"email" example:"ada@college.edu"`
	Password         string    `json:"-" db:"password"`
	Role             RoleType  `json:"role" db:"role" example:"STUDENT"`
	RollNumber       *string   `json:"rollNumber,omitempty" db:"roll_number" example:"21CS042"`
	Department       *string   `json:"department,omitempty" db:"department" example:"CSE"`
	Year             *int      `json:"year,omitempty" db:"year" example:"3"`
	IsTemporaryAdmin bool      `json:"isTemporaryAdmin" db:"is_temporary_admin"`
	TempAdminTabs    *string   `json:"tempAdminTabs,omitempty" db:"temp_admin_tabs" example:"[\"students\",\"teams\"]"` // JSON array of tab ids
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}

// DepartmentOrEmpty returns the department or "" when unset
func (u *User) DepartmentOrEmpty() string {
	if u == nil || u.Department == nil {
		return ""
	}
	return *u.Department
}

// RollNumberOrEmpty returns the roll number or "" when unset
func (u *User) RollNumberOrEmpty() string {
	if u == nil || u.RollNumber == nil {
		return ""
	}
	return *u.RollNumber
}
