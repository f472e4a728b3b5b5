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

type attendanceResponse struct {
	ID             string  `json:"id"`
	StudentID      string  `json:"studentId"`
	AttendanceDate string  `json:"attendanceDate"`
	Status         string  `json:"status"`
	Remarks        *string `json:"remarks,omitempty"`
	RecordedBy     *string `json:"recordedBy,omitempty"`
}

func toAttendanceResponse(record model.Attendance) attendanceResponse {
	return attendanceResponse{
		ID:             record.ID,
		StudentID:      record.StudentID,
		AttendanceDate: record.AttendanceDate.Format(dateLayout),
		Status:         string(record.Status),
		Remarks:        record.Remarks,
		RecordedBy:     record.RecordedBy,
	}
}

type createAttendanceRequest struct {
	StudentID      string  `json:"studentId"`
	AttendanceDate string  `json:"attendanceDate"`
	Status         string  `json:"status"`
	Remarks        *string `json:"remarks,omitempty"`
}

func (s *Server) handleCreateAttendance(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	var req createAttendanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.StudentID == "" || req.AttendanceDate == "" || req.Status == "" {
		writeError(w, http.StatusBadRequest, "studentId, attendanceDate and status are required")
		return
	}

	status, err := model.ParseAttendanceStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid attendance status")
		return
	}
	date, err := parseDate(req.AttendanceDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid attendanceDate, expected YYYY-MM-DD")
		return
	}

	now := time.Now().UTC()
	record := model.Attendance{
		ID:             uuid.NewString(),
		StudentID:      req.StudentID,
		AttendanceDate: date,
		Status:         status,
		Remarks:        req.Remarks,
		RecordedBy:     &claims.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.CreateAttendance(r.Context(), record); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Attendance already recorded for this student and date")
			return
		}
		s.logger.Error("create attendance failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error recording attendance")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Attendance recorded successfully",
		"data":    toAttendanceResponse(record),
	})
}

func (s *Server) handleListAttendance(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")

	records, err := s.store.ListAttendanceByStudent(r.Context(), studentID)
	if err != nil {
		s.logger.Error("list attendance failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error fetching attendance")
		return
	}

	resp := make([]attendanceResponse, 0, len(records))
	for _, record := range records {
		resp = append(resp, toAttendanceResponse(record))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Attendance retrieved successfully",
		"data":    resp,
	})
}

type updateAttendanceRequest struct {
	Status  *string `json:"status,omitempty"`
	Remarks *string `json:"remarks,omitempty"`
}

func (s *Server) handleUpdateAttendance(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "recordID")

	var req updateAttendanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	update := repository.AttendanceUpdate{Remarks: req.Remarks}
	if req.Status != nil {
		status, err := model.ParseAttendanceStatus(*req.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid attendance status")
			return
		}
		update.Status = &status
	}

	if err := s.store.UpdateAttendance(r.Context(), recordID, update); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Attendance record not found")
			return
		}
		s.logger.Error("update attendance failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error updating attendance")
		return
	}

	record, err := s.store.GetAttendance(r.Context(), recordID)
	if err != nil {
		s.logger.Error("fetch updated attendance failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error fetching attendance")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Attendance updated successfully",
		"data":    toAttendanceResponse(record),
	})
}
