package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/theswapneil/school-management-system/internal/model"
)

const attendanceColumns = `id, student_id, attendance_date, status, remarks, recorded_by, created_at, updated_at`

func scanAttendance(row pgx.Row) (model.Attendance, error) {
	var record model.Attendance
	var status string
	err := row.Scan(
		&record.ID,
		&record.StudentID,
		&record.AttendanceDate,
		&status,
		&record.Remarks,
		&record.RecordedBy,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return model.Attendance{}, wrapErr(err)
	}
	parsed, err := model.ParseAttendanceStatus(status)
	if err != nil {
		return model.Attendance{}, err
	}
	record.Status = parsed
	return record, nil
}

// CreateAttendance returns ErrDuplicate when the student already has a
// record for that date.
func (s *Store) CreateAttendance(ctx context.Context, record model.Attendance) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO attendance (`+attendanceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, record.ID, record.StudentID, record.AttendanceDate, string(record.Status),
		record.Remarks, record.RecordedBy, record.CreatedAt, record.UpdatedAt)
	return wrapErr(err)
}

func (s *Store) GetAttendance(ctx context.Context, recordID string) (model.Attendance, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance
		WHERE id = $1
	`, recordID)
	return scanAttendance(row)
}

func (s *Store) ListAttendanceByStudent(ctx context.Context, studentID string) ([]model.Attendance, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance
		WHERE student_id = $1
		ORDER BY attendance_date DESC
	`, studentID)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	records := make([]model.Attendance, 0)
	for rows.Next() {
		record, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, wrapErr(rows.Err())
}

type AttendanceUpdate struct {
	Status  *model.AttendanceStatus
	Remarks *string
}

func (s *Store) UpdateAttendance(ctx context.Context, recordID string, update AttendanceUpdate) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE attendance
		SET status = COALESCE($2, status),
		    remarks = COALESCE($3, remarks),
		    updated_at = $4
		WHERE id = $1
	`, recordID, update.Status, update.Remarks, time.Now().UTC())
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
