package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/theswapneil/school-management-system/internal/model"
)

const feeColumns = `id, student_id, academic_year, fee_type, amount, status, due_date, paid_date, remarks, created_by, created_at, updated_at`

func scanFee(row pgx.Row) (model.FeeTransaction, error) {
	var fee model.FeeTransaction
	var status string
	err := row.Scan(
		&fee.ID,
		&fee.StudentID,
		&fee.AcademicYear,
		&fee.FeeType,
		&fee.Amount,
		&status,
		&fee.DueDate,
		&fee.PaidDate,
		&fee.Remarks,
		&fee.CreatedBy,
		&fee.CreatedAt,
		&fee.UpdatedAt,
	)
	if err != nil {
		return model.FeeTransaction{}, wrapErr(err)
	}
	parsed, err := model.ParseFeeStatus(status)
	if err != nil {
		return model.FeeTransaction{}, err
	}
	fee.Status = parsed
	return fee, nil
}

func (s *Store) CreateFee(ctx context.Context, fee model.FeeTransaction) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO fee_transactions (`+feeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, fee.ID, fee.StudentID, fee.AcademicYear, fee.FeeType, fee.Amount, string(fee.Status),
		fee.DueDate, fee.PaidDate, fee.Remarks, fee.CreatedBy, fee.CreatedAt, fee.UpdatedAt)
	return wrapErr(err)
}

func (s *Store) GetFee(ctx context.Context, feeID string) (model.FeeTransaction, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+feeColumns+`
		FROM fee_transactions
		WHERE id = $1
	`, feeID)
	return scanFee(row)
}

func (s *Store) ListFeesByStudent(ctx context.Context, studentID string) ([]model.FeeTransaction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+feeColumns+`
		FROM fee_transactions
		WHERE student_id = $1
		ORDER BY created_at DESC
	`, studentID)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	fees := make([]model.FeeTransaction, 0)
	for rows.Next() {
		fee, err := scanFee(rows)
		if err != nil {
			return nil, err
		}
		fees = append(fees, fee)
	}
	return fees, wrapErr(rows.Err())
}

type FeeUpdate struct {
	Status   *model.FeeStatus
	PaidDate *time.Time
	Remarks  *string
}

func (s *Store) UpdateFee(ctx context.Context, feeID string, update FeeUpdate) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE fee_transactions
		SET status = COALESCE($2, status),
		    paid_date = COALESCE($3, paid_date),
		    remarks = COALESCE($4, remarks),
		    updated_at = $5
		WHERE id = $1
	`, feeID, update.Status, update.PaidDate, update.Remarks, time.Now().UTC())
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
