package models

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of user roles. The role is fixed at registration.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

// ParseRole maps a stored role string to the Role enum, case-insensitively.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleTeacher:
		return RoleTeacher, nil
	case RoleStudent:
		return RoleStudent, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// User is the base identity record joined from the users and profiles tables.
// The ID is assigned once at creation and never changes.
type User struct {
	ID               int64     `db:"user_id" json:"id"`
	Username         string    `db:"username" json:"username"`
	PasswordHash     string    `db:"password_hash" json:"-"`
	Role             Role      `db:"role" json:"role"`
	FirstName        string    `db:"first_name" json:"first_name"`
	LastName         string    `db:"last_name" json:"last_name"`
	RegistrationDate time.Time `db:"registration_date" json:"registration_date"`
}

// DisplayName returns the profile name used in teacher-facing grade views.
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// StudentRecord is the student role view: base identity plus grades.
type StudentRecord struct {
	User
	Grades []Grade `json:"grades"`
}

// AverageGrade returns the arithmetic mean over all grade values, 0.0 for an
// empty record. Enrollment sentinel rows (value 0) are included, which skews
// the result downward; that matches the recorded behavior of the system.
func (s *StudentRecord) AverageGrade() float64 {
	if len(s.Grades) == 0 {
		return 0.0
	}
	var sum float64
	for _, grade := range s.Grades {
		sum += grade.Value
	}
	return sum / float64(len(s.Grades))
}

// TeacherRecord is the teacher role view: base identity plus owned subjects.
type TeacherRecord struct {
	User
	SubjectsTaught []Subject `json:"subjects_taught"`
}
