package model

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of account roles. Unknown values coming off the
// wire or out of the store fail ParseRole instead of passing through.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
)

func ParseRole(value string) (Role, error) {
	switch Role(strings.TrimSpace(strings.ToLower(value))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleTeacher:
		return RoleTeacher, nil
	case RoleStudent:
		return RoleStudent, nil
	case RoleParent:
		return RoleParent, nil
	default:
		return "", fmt.Errorf("invalid role %q", value)
	}
}

func (r Role) String() string { return string(r) }

type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
	Phone        *string
	Address      *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type StudentStatus string

const (
	StudentActive    StudentStatus = "active"
	StudentInactive  StudentStatus = "inactive"
	StudentGraduated StudentStatus = "graduated"
)

func ParseStudentStatus(value string) (StudentStatus, error) {
	switch StudentStatus(strings.TrimSpace(strings.ToLower(value))) {
	case StudentActive:
		return StudentActive, nil
	case StudentInactive:
		return StudentInactive, nil
	case StudentGraduated:
		return StudentGraduated, nil
	default:
		return "", fmt.Errorf("invalid student status %q", value)
	}
}

type Student struct {
	ID                 string
	UserID             string
	RegistrationNumber string
	ClassID            string
	DateOfBirth        *time.Time
	EnrollmentDate     time.Time
	Status             StudentStatus
	Phone              *string
	Address            *string
	CreatedBy          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type Class struct {
	ID             string
	Name           string
	Section        *string
	Grade          string
	ClassTeacherID *string
	AcademicYear   *string
	Capacity       *int
	CreatedBy      *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

func ParseAttendanceStatus(value string) (AttendanceStatus, error) {
	switch AttendanceStatus(strings.TrimSpace(strings.ToLower(value))) {
	case AttendancePresent:
		return AttendancePresent, nil
	case AttendanceAbsent:
		return AttendanceAbsent, nil
	case AttendanceLate:
		return AttendanceLate, nil
	case AttendanceExcused:
		return AttendanceExcused, nil
	default:
		return "", fmt.Errorf("invalid attendance status %q", value)
	}
}

// Attendance is one record per student per calendar day, enforced by a
// unique index on (student_id, attendance_date).
type Attendance struct {
	ID             string
	StudentID      string
	AttendanceDate time.Time
	Status         AttendanceStatus
	Remarks        *string
	RecordedBy     *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type FeeStatus string

const (
	FeePending FeeStatus = "pending"
	FeePartial FeeStatus = "partial"
	FeePaid    FeeStatus = "paid"
)

func ParseFeeStatus(value string) (FeeStatus, error) {
	switch FeeStatus(strings.TrimSpace(strings.ToLower(value))) {
	case FeePending:
		return FeePending, nil
	case FeePartial:
		return FeePartial, nil
	case FeePaid:
		return FeePaid, nil
	default:
		return "", fmt.Errorf("invalid fee status %q", value)
	}
}

type FeeTransaction struct {
	ID           string
	StudentID    string
	AcademicYear string
	FeeType      string
	Amount       float64
	Status       FeeStatus
	DueDate      *time.Time
	PaidDate     *time.Time
	Remarks      *string
	CreatedBy    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
