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

type classTeacherRef struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type classResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Section      *string          `json:"section,omitempty"`
	Grade        string           `json:"grade"`
	Teacher      *classTeacherRef `json:"classTeacher,omitempty"`
	AcademicYear *string          `json:"academicYear,omitempty"`
	Capacity     *int             `json:"capacity,omitempty"`
}

func toClassResponse(detail repository.ClassDetail) classResponse {
	resp := classResponse{
		ID:           detail.ID,
		Name:         detail.Name,
		Section:      detail.Section,
		Grade:        detail.Grade,
		AcademicYear: detail.AcademicYear,
		Capacity:     detail.Capacity,
	}
	if detail.ClassTeacherID != nil && detail.TeacherFirstName != nil {
		resp.Teacher = &classTeacherRef{
			ID:        *detail.ClassTeacherID,
			FirstName: *detail.TeacherFirstName,
			LastName:  *detail.TeacherLastName,
			Email:     *detail.TeacherEmail,
		}
	}
	return resp
}

func (s *Server) handleListClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := s.store.ListClasses(r.Context())
	if err != nil {
		s.logger.Error("list classes failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error fetching classes")
		return
	}

	resp := make([]classResponse, 0, len(classes))
	for _, detail := range classes {
		resp = append(resp, toClassResponse(detail))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Classes retrieved successfully",
		"data":    resp,
	})
}

func (s *Server) handleGetClass(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")

	detail, err := s.store.GetClass(r.Context(), classID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Class not found")
			return
		}
		s.logger.Error("get class failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error fetching class")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Class retrieved successfully",
		"data":    toClassResponse(detail),
	})
}

type createClassRequest struct {
	Name           string  `json:"name"`
	Section        *string `json:"section,omitempty"`
	Grade          string  `json:"grade"`
	ClassTeacherID *string `json:"classTeacherId,omitempty"`
	AcademicYear   *string `json:"academicYear,omitempty"`
	Capacity       *int    `json:"capacity,omitempty"`
}

func (s *Server) handleCreateClass(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	var req createClassRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.Grade == "" {
		writeError(w, http.StatusBadRequest, "Name and grade are required")
		return
	}

	now := time.Now().UTC()
	class := model.Class{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Section:        req.Section,
		Grade:          req.Grade,
		ClassTeacherID: req.ClassTeacherID,
		AcademicYear:   req.AcademicYear,
		Capacity:       req.Capacity,
		CreatedBy:      &claims.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.CreateClass(r.Context(), class); err != nil {
		s.logger.Error("create class failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error creating class")
		return
	}

	detail, err := s.store.GetClass(r.Context(), class.ID)
	if err != nil {
		s.logger.Error("fetch created class failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error fetching class")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Class created successfully",
		"data":    toClassResponse(detail),
	})
}

type updateClassRequest struct {
	Name           *string `json:"name,omitempty"`
	Section        *string `json:"section,omitempty"`
	Grade          *string `json:"grade,omitempty"`
	ClassTeacherID *string `json:"classTeacherId,omitempty"`
	AcademicYear   *string `json:"academicYear,omitempty"`
	Capacity       *int    `json:"capacity,omitempty"`
}

func (s *Server) handleUpdateClass(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")

	var req updateClassRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	update := repository.ClassUpdate{
		Name:           req.Name,
		Section:        req.Section,
		Grade:          req.Grade,
		ClassTeacherID: req.ClassTeacherID,
		AcademicYear:   req.AcademicYear,
		Capacity:       req.Capacity,
	}

	if err := s.store.UpdateClass(r.Context(), classID, update); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Class not found")
			return
		}
		s.logger.Error("update class failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error updating class")
		return
	}

	detail, err := s.store.GetClass(r.Context(), classID)
	if err != nil {
		s.logger.Error("fetch updated class failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error fetching class")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Class updated successfully",
		"data":    toClassResponse(detail),
	})
}

func (s *Server) handleDeleteClass(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")

	deleted, err := s.store.DeleteClass(r.Context(), classID)
	if err != nil {
		s.logger.Error("delete class failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error deleting class")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Class not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Class deleted successfully"})
}
