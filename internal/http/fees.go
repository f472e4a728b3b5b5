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

type feeResponse struct {
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

func toFeeResponse(fee model.FeeTransaction) feeResponse {
	resp := feeResponse{
		ID:           fee.ID,
		StudentID:    fee.StudentID,
		AcademicYear: fee.AcademicYear,
		FeeType:      fee.FeeType,
		Amount:       fee.Amount,
		Status:       string(fee.Status),
		Remarks:      fee.Remarks,
	}
	if fee.DueDate != nil {
		due := fee.DueDate.Format(dateLayout)
		resp.DueDate = &due
	}
	if fee.PaidDate != nil {
		paid := fee.PaidDate.Format(dateLayout)
		resp.PaidDate = &paid
	}
	return resp
}

type createFeeRequest struct {
	StudentID    string  `json:"studentId"`
	AcademicYear string  `json:"academicYear"`
	FeeType      string  `json:"feeType"`
	Amount       float64 `json:"amount"`
	DueDate      *string `json:"dueDate,omitempty"`
	Remarks      *string `json:"remarks,omitempty"`
}

func (s *Server) handleCreateFee(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	var req createFeeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.StudentID == "" || req.AcademicYear == "" || req.FeeType == "" || req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "studentId, academicYear, feeType and a positive amount are required")
		return
	}

	var dueDate *time.Time
	if req.DueDate != nil {
		parsed, err := parseDate(*req.DueDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid dueDate, expected YYYY-MM-DD")
			return
		}
		dueDate = &parsed
	}

	now := time.Now().UTC()
	fee := model.FeeTransaction{
		ID:           uuid.NewString(),
		StudentID:    req.StudentID,
		AcademicYear: req.AcademicYear,
		FeeType:      req.FeeType,
		Amount:       req.Amount,
		Status:       model.FeePending,
		DueDate:      dueDate,
		Remarks:      req.Remarks,
		CreatedBy:    &claims.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateFee(r.Context(), fee); err != nil {
		s.logger.Error("create fee failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error creating fee transaction")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Fee transaction created successfully",
		"data":    toFeeResponse(fee),
	})
}

func (s *Server) handleListFees(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")

	fees, err := s.store.ListFeesByStudent(r.Context(), studentID)
	if err != nil {
		s.logger.Error("list fees failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error fetching fee transactions")
		return
	}

	resp := make([]feeResponse, 0, len(fees))
	for _, fee := range fees {
		resp = append(resp, toFeeResponse(fee))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Fee transactions retrieved successfully",
		"data":    resp,
	})
}

type updateFeeRequest struct {
	Status   *string `json:"status,omitempty"`
	PaidDate *string `json:"paidDate,omitempty"`
	Remarks  *string `json:"remarks,omitempty"`
}

func (s *Server) handleUpdateFee(w http.ResponseWriter, r *http.Request) {
	feeID := chi.URLParam(r, "feeID")

	var req updateFeeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	update := repository.FeeUpdate{Remarks: req.Remarks}
	if req.Status != nil {
		status, err := model.ParseFeeStatus(*req.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid fee status")
			return
		}
		update.Status = &status
	}
	if req.PaidDate != nil {
		parsed, err := parseDate(*req.PaidDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid paidDate, expected YYYY-MM-DD")
			return
		}
		update.PaidDate = &parsed
	}

	if err := s.store.UpdateFee(r.Context(), feeID, update); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Fee transaction not found")
			return
		}
		s.logger.Error("update fee failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error updating fee transaction")
		return
	}

	fee, err := s.store.GetFee(r.Context(), feeID)
	if err != nil {
		s.logger.Error("fetch updated fee failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error fetching fee transaction")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Fee transaction updated successfully",
		"data":    toFeeResponse(fee),
	})
}
