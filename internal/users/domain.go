package users

import (
	"fmt"
	"time"
)

// Role is the single profile a user holds at any moment.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	RoleClient  Role = "client"
)

// Valid reports whether the role is one of the four enumerated values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent, RoleClient:
		return true
	}
	return false
}

// ParseRole converts external input into a Role.
func ParseRole(raw string) (Role, error) {
	role := Role(raw)
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", raw)
	}
	return role, nil
}

// StudentDetail carries the student-specific attributes.
type StudentDetail struct {
	EnrollmentNo int64 `json:"enrollment_no"`
	Active       bool  `json:"active"`
}

// TeacherDetail carries the teacher-specific attributes.
type TeacherDetail struct {
	Specialty string `json:"specialty"`
}

// RoleDetail is the tagged variant selected by the role discriminator.
// Admin and client roles carry no extra attributes.
type RoleDetail struct {
	Role    Role           `json:"role"`
	Student *StudentDetail `json:"student,omitempty"`
	Teacher *TeacherDetail `json:"teacher,omitempty"`
}

// User is an account with exactly one active role.
type User struct {
	ID           int64
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         Role
	BirthDate    time.Time
	Student      *StudentDetail
	Teacher      *TeacherDetail
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Detail returns the detail variant matching the current role.
func (u User) Detail() RoleDetail {
	detail := RoleDetail{Role: u.Role}
	switch u.Role {
	case RoleStudent:
		detail.Student = u.Student
	case RoleTeacher:
		detail.Teacher = u.Teacher
	}
	return detail
}

// IsAdmin reports whether the user currently holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
