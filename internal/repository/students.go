package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/theswapneil/school-management-system/internal/model"
)

// StudentDetail carries the joined user and class columns the list and get
// endpoints render alongside the enrollment record.
type StudentDetail struct {
	model.Student
	FirstName  string
	LastName   string
	Email      string
	ClassName  string
	ClassGrade string
}

type StudentFilter struct {
	Status  *model.StudentStatus
	ClassID *string
}

const studentColumns = `s.id, s.user_id, s.registration_number, s.class_id, s.date_of_birth,
	s.enrollment_date, s.status, s.phone, s.address, s.created_by, s.created_at, s.updated_at,
	u.first_name, u.last_name, u.email, c.name, c.grade`

const studentJoin = `
	FROM students s
	JOIN users u ON u.id = s.user_id
	JOIN classes c ON c.id = s.class_id`

func scanStudent(row pgx.Row) (StudentDetail, error) {
	var detail StudentDetail
	var status string
	err := row.Scan(
		&detail.ID,
		&detail.UserID,
		&detail.RegistrationNumber,
		&detail.ClassID,
		&detail.DateOfBirth,
		&detail.EnrollmentDate,
		&status,
		&detail.Phone,
		&detail.Address,
		&detail.CreatedBy,
		&detail.CreatedAt,
		&detail.UpdatedAt,
		&detail.FirstName,
		&detail.LastName,
		&detail.Email,
		&detail.ClassName,
		&detail.ClassGrade,
	)
	if err != nil {
		return StudentDetail{}, wrapErr(err)
	}
	parsed, err := model.ParseStudentStatus(status)
	if err != nil {
		return StudentDetail{}, err
	}
	detail.Status = parsed
	return detail, nil
}

func (s *Store) CreateStudent(ctx context.Context, student model.Student) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO students (id, user_id, registration_number, class_id, date_of_birth,
			enrollment_date, status, phone, address, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, student.ID, student.UserID, student.RegistrationNumber, student.ClassID, student.DateOfBirth,
		student.EnrollmentDate, string(student.Status), student.Phone, student.Address,
		student.CreatedBy, student.CreatedAt, student.UpdatedAt)
	return wrapErr(err)
}

func (s *Store) GetStudent(ctx context.Context, studentID string) (StudentDetail, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+studentColumns+studentJoin+`
		WHERE s.id = $1
	`, studentID)
	return scanStudent(row)
}

func (s *Store) ListStudents(ctx context.Context, filter StudentFilter) ([]StudentDetail, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+studentColumns+studentJoin+`
		WHERE ($1::text IS NULL OR s.status = $1)
		  AND ($2::uuid IS NULL OR s.class_id = $2)
		ORDER BY s.created_at DESC
	`, filter.Status, filter.ClassID)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	students := make([]StudentDetail, 0)
	for rows.Next() {
		detail, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, detail)
	}
	return students, wrapErr(rows.Err())
}

type StudentUpdate struct {
	ClassID     *string
	DateOfBirth *time.Time
	Status      *model.StudentStatus
	Phone       *string
	Address     *string
}

func (s *Store) UpdateStudent(ctx context.Context, studentID string, update StudentUpdate) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE students
		SET class_id = COALESCE($2, class_id),
		    date_of_birth = COALESCE($3, date_of_birth),
		    status = COALESCE($4, status),
		    phone = COALESCE($5, phone),
		    address = COALESCE($6, address),
		    updated_at = $7
		WHERE id = $1
	`, studentID, update.ClassID, update.DateOfBirth, update.Status,
		update.Phone, update.Address, time.Now().UTC())
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteStudent(ctx context.Context, studentID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, studentID)
	if err != nil {
		return false, wrapErr(err)
	}
	return tag.RowsAffected() > 0, nil
}
