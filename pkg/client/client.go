// Package client is a typed Go client for the school management API. It
// owns the auth lifecycle: logging in stores the issued token in a Session,
// every later call carries it, and a server-side rejection drops it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIError carries the server's status code and message body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.StatusCode)
}

type Client struct {
	baseURL string
	http    *http.Client
	session *Session
}

// New builds a client around session. The session may be freshly created or
// restored from disk; either way it is the only auth state the client reads.
func New(baseURL string, session *Session) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
		http: &http.Client{
			Timeout:   30 * time.Second,
			Transport: newBearerTransport(session, nil),
		},
	}
}

func (c *Client) Session() *Session { return c.session }

// AuthResponse is the body of login and register.
type AuthResponse struct {
	Message string   `json:"message"`
	Token   string   `json:"token"`
	User    UserInfo `json:"user"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, input LoginInput) (AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", input, &out); err != nil {
		return AuthResponse{}, err
	}
	if err := c.session.Set(out.Token, out.User); err != nil {
		return AuthResponse{}, fmt.Errorf("persist session: %w", err)
	}
	return out, nil
}

type RegisterInput struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Role      string  `json:"role,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
}

func (c *Client) Register(ctx context.Context, input RegisterInput) (AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", input, &out); err != nil {
		return AuthResponse{}, err
	}
	if err := c.session.Set(out.Token, out.User); err != nil {
		return AuthResponse{}, fmt.Errorf("persist session: %w", err)
	}
	return out, nil
}

// Logout clears the session locally. Tokens are stateless on the server, so
// there is nothing to revoke remotely.
func (c *Client) Logout() error {
	return c.session.Clear()
}

func (c *Client) Me(ctx context.Context) (UserInfo, error) {
	var out dataEnvelope[UserInfo]
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return UserInfo{}, err
	}
	return out.Data, nil
}

// Student mirrors the server's student representation.
type Student struct {
	ID                 string `json:"id"`
	RegistrationNumber string `json:"registrationNumber"`
	User               struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
	} `json:"user"`
	Class struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Grade string `json:"grade"`
	} `json:"class"`
	DateOfBirth    *string `json:"dateOfBirth,omitempty"`
	EnrollmentDate string  `json:"enrollmentDate"`
	Status         string  `json:"status"`
	Phone          *string `json:"phone,omitempty"`
	Address        *string `json:"address,omitempty"`
}

type StudentFilter struct {
	Status  string
	ClassID string
}

func (c *Client) ListStudents(ctx context.Context, filter StudentFilter) ([]Student, error) {
	query := url.Values{}
	if filter.Status != "" {
		query.Set("status", filter.Status)
	}
	if filter.ClassID != "" {
		query.Set("classId", filter.ClassID)
	}
	path := "/api/students/"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	var out dataEnvelope[[]Student]
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) GetStudent(ctx context.Context, studentID string) (Student, error) {
	var out dataEnvelope[Student]
	if err := c.do(ctx, http.MethodGet, "/api/students/"+url.PathEscape(studentID), nil, &out); err != nil {
		return Student{}, err
	}
	return out.Data, nil
}

type CreateStudentInput struct {
	UserID             string  `json:"userId"`
	RegistrationNumber string  `json:"registrationNumber"`
	ClassID            string  `json:"classId"`
	DateOfBirth        *string `json:"dateOfBirth,omitempty"`
	Status             string  `json:"status,omitempty"`
	Phone              *string `json:"phone,omitempty"`
	Address            *string `json:"address,omitempty"`
}

func (c *Client) CreateStudent(ctx context.Context, input CreateStudentInput) (Student, error) {
	var out dataEnvelope[Student]
	if err := c.do(ctx, http.MethodPost, "/api/students/", input, &out); err != nil {
		return Student{}, err
	}
	return out.Data, nil
}

type UpdateStudentInput struct {
	ClassID     *string `json:"classId,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
	Status      *string `json:"status,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Address     *string `json:"address,omitempty"`
}

func (c *Client) UpdateStudent(ctx context.Context, studentID string, input UpdateStudentInput) (Student, error) {
	var out dataEnvelope[Student]
	if err := c.do(ctx, http.MethodPatch, "/api/students/"+url.PathEscape(studentID), input, &out); err != nil {
		return Student{}, err
	}
	return out.Data, nil
}

func (c *Client) DeleteStudent(ctx context.Context, studentID string) error {
	return c.do(ctx, http.MethodDelete, "/api/students/"+url.PathEscape(studentID), nil, nil)
}

type Class struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Section *string `json:"section,omitempty"`
	Grade   string  `json:"grade"`
	Teacher *struct {
		ID        string `json:"id"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
	} `json:"classTeacher,omitempty"`
	AcademicYear *string `json:"academicYear,omitempty"`
	Capacity     *int    `json:"capacity,omitempty"`
}

func (c *Client) ListClasses(ctx context.Context) ([]Class, error) {
	var out dataEnvelope[[]Class]
	if err := c.do(ctx, http.MethodGet, "/api/classes/", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) GetClass(ctx context.Context, classID string) (Class, error) {
	var out dataEnvelope[Class]
	if err := c.do(ctx, http.MethodGet, "/api/classes/"+url.PathEscape(classID), nil, &out); err != nil {
		return Class{}, err
	}
	return out.Data, nil
}

type CreateClassInput struct {
	Name           string  `json:"name"`
	Grade          string  `json:"grade"`
	Section        *string `json:"section,omitempty"`
	ClassTeacherID *string `json:"classTeacherId,omitempty"`
	AcademicYear   *string `json:"academicYear,omitempty"`
	Capacity       *int    `json:"capacity,omitempty"`
}

func (c *Client) CreateClass(ctx context.Context, input CreateClassInput) (Class, error) {
	var out dataEnvelope[Class]
	if err := c.do(ctx, http.MethodPost, "/api/classes/", input, &out); err != nil {
		return Class{}, err
	}
	return out.Data, nil
}

type Attendance struct {
	ID             string  `json:"id"`
	StudentID      string  `json:"studentId"`
	AttendanceDate string  `json:"attendanceDate"`
	Status         string  `json:"status"`
	Remarks        *string `json:"remarks,omitempty"`
	RecordedBy     *string `json:"recordedBy,omitempty"`
}

type CreateAttendanceInput struct {
	StudentID      string  `json:"studentId"`
	AttendanceDate string  `json:"attendanceDate"`
	Status         string  `json:"status"`
	Remarks        *string `json:"remarks,omitempty"`
}

func (c *Client) RecordAttendance(ctx context.Context, input CreateAttendanceInput) (Attendance, error) {
	var out dataEnvelope[Attendance]
	if err := c.do(ctx, http.MethodPost, "/api/attendance/", input, &out); err != nil {
		return Attendance{}, err
	}
	return out.Data, nil
}

func (c *Client) ListAttendance(ctx context.Context, studentID string) ([]Attendance, error) {
	var out dataEnvelope[[]Attendance]
	if err := c.do(ctx, http.MethodGet, "/api/attendance/student/"+url.PathEscape(studentID), nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

type Fee struct {
	ID           string  `json:"id"`
	StudentID    string  `json:"studentId"`
	AcademicYear string  `json:"academicYear"`
	FeeType      string  `json:"feeType"`
	Amount       float64 `json:"amount"`
	Status       string  `json:"status"`
	DueDate      *string `json:"dueDate,omitempty"`
	PaidDate     *string `json:"paidDate,omitempty"`
	Remarks      *string `json:"remarks,omitempty"`
}

type CreateFeeInput struct {
	StudentID    string  `json:"studentId"`
	AcademicYear string  `json:"academicYear"`
	FeeType      string  `json:"feeType"`
	Amount       float64 `json:"amount"`
	DueDate      *string `json:"dueDate,omitempty"`
	Remarks      *string `json:"remarks,omitempty"`
}

func (c *Client) CreateFee(ctx context.Context, input CreateFeeInput) (Fee, error) {
	var out dataEnvelope[Fee]
	if err := c.do(ctx, http.MethodPost, "/api/fees/", input, &out); err != nil {
		return Fee{}, err
	}
	return out.Data, nil
}

func (c *Client) ListFees(ctx context.Context, studentID string) ([]Fee, error) {
	var out dataEnvelope[[]Fee]
	if err := c.do(ctx, http.MethodGet, "/api/fees/student/"+url.PathEscape(studentID), nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

type dataEnvelope[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Message string `json:"message"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		if json.Unmarshal(raw, &apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Message}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
