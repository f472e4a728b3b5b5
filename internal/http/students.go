package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/theswapneil/school-management-system/internal/model"
	"github.com/theswapneil/school-management-system/internal/repository"
)

type studentUserRef struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type studentClassRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Grade string `json:"grade"`
}

type studentResponse struct {
	ID                 string          `json:"id"`
	RegistrationNumber string          `json:"registrationNumber"`
	User               studentUserRef  `json:"user"`
	Class              studentClassRef `json:"class"`
	DateOfBirth        *string         `json:"dateOfBirth,omitempty"`
	EnrollmentDate     string          `json:"enrollmentDate"`
	Status             string          `json:"status"`
	Phone              *string         `json:"phone,omitempty"`
	Address            *string         `json:"address,omitempty"`
}

func toStudentResponse(detail repository.StudentDetail) studentResponse {
	resp := studentResponse{
		ID:                 detail.ID,
		RegistrationNumber: detail.RegistrationNumber,
		User: studentUserRef{
			FirstName: detail.FirstName,
			LastName:  detail.LastName,
			Email:     detail.Email,
		},
		Class: studentClassRef{
			ID:    detail.ClassID,
			Name:  detail.ClassName,
			Grade: detail.ClassGrade,
		},
		EnrollmentDate: detail.EnrollmentDate.UTC().Format(time.RFC3339),
		Status:         string(detail.Status),
		Phone:          detail.Phone,
		Address:        detail.Address,
	}
	if detail.DateOfBirth != nil {
		dob := detail.DateOfBirth.Format(dateLayout)
		resp.DateOfBirth = &dob
	}
	return resp
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	filter := repository.StudentFilter{}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := model.ParseStudentStatus(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
		filter.Status = &status
	}
	if raw := r.URL.Query().Get("classId"); raw != "" {
		// Rejected here; the store casts the value to uuid and a bad one
		// would otherwise surface as a 500.
		if _, err := uuid.Parse(raw); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid classId filter")
			return
		}
		filter.ClassID = &raw
	}

	students, err := s.store.ListStudents(r.Context(), filter)
	if err != nil {
		s.logger.Error("list students failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error fetching students")
		return
	}

	resp := make([]studentResponse, 0, len(students))
	for _, detail := range students {
		resp = append(resp, toStudentResponse(detail))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Students retrieved successfully",
		"data":    resp,
	})
}

func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")

	detail, err := s.store.GetStudent(r.Context(), studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Student not found")
			return
		}
		s.logger.Error("get student failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error fetching student")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Student retrieved successfully",
		"data":    toStudentResponse(detail),
	})
}

type createStudentRequest struct {
	UserID             string  `json:"userId"`
	RegistrationNumber string  `json:"registrationNumber"`
	ClassID            string  `json:"classId"`
	DateOfBirth        *string `json:"dateOfBirth,omitempty"`
	Status             string  `json:"status,omitempty"`
	Phone              *string `json:"phone,omitempty"`
	Address            *string `json:"address,omitempty"`
}

func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	var req createStudentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" || req.RegistrationNumber == "" || req.ClassID == "" {
		writeError(w, http.StatusBadRequest, "userId, registrationNumber and classId are required")
		return
	}

	status := model.StudentActive
	if req.Status != "" {
		parsed, err := model.ParseStudentStatus(req.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid student status")
			return
		}
		status = parsed
	}

	var dateOfBirth *time.Time
	if req.DateOfBirth != nil {
		parsed, err := parseDate(*req.DateOfBirth)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid dateOfBirth, expected YYYY-MM-DD")
			return
		}
		dateOfBirth = &parsed
	}

	now := time.Now().UTC()
	student := model.Student{
		ID:                 uuid.NewString(),
		UserID:             req.UserID,
		RegistrationNumber: req.RegistrationNumber,
		ClassID:            req.ClassID,
		DateOfBirth:        dateOfBirth,
		EnrollmentDate:     now,
		Status:             status,
		Phone:              req.Phone,
		Address:            req.Address,
		CreatedBy:          claims.UserID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.store.CreateStudent(r.Context(), student); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Registration number already in use")
			return
		}
		s.logger.Error("create student failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error creating student")
		return
	}

	detail, err := s.store.GetStudent(r.Context(), student.ID)
	if err != nil {
		s.logger.Error("fetch created student failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error fetching student")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Student created successfully",
		"data":    toStudentResponse(detail),
	})
}

type updateStudentRequest struct {
	ClassID     *string `json:"classId,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
	Status      *string `json:"status,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Address     *string `json:"address,omitempty"`
}

func (s *Server) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")

	var req updateStudentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	update := repository.StudentUpdate{
		ClassID: req.ClassID,
		Phone:   req.Phone,
		Address: req.Address,
	}
	if req.Status != nil {
		status, err := model.ParseStudentStatus(*req.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid student status")
			return
		}
		update.Status = &status
	}
	if req.DateOfBirth != nil {
		parsed, err := parseDate(*req.DateOfBirth)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid dateOfBirth, expected YYYY-MM-DD")
			return
		}
		update.DateOfBirth = &parsed
	}

	if err := s.store.UpdateStudent(r.Context(), studentID, update); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Student not found")
			return
		}
		s.logger.Error("update student failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error updating student")
		return
	}

	detail, err := s.store.GetStudent(r.Context(), studentID)
	if err != nil {
		s.logger.Error("fetch updated student failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error fetching student")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Student updated successfully",
		"data":    toStudentResponse(detail),
	})
}

func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")

	deleted, err := s.store.DeleteStudent(r.Context(), studentID)
	if err != nil {
		s.logger.Error("delete student failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error deleting student")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Student not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Student deleted successfully"})
}
