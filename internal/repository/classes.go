package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/theswapneil/school-management-system/internal/model"
)

// ClassDetail includes the class teacher's public fields when one is
// assigned.
type ClassDetail struct {
	model.Class
	TeacherFirstName *string
	TeacherLastName  *string
	TeacherEmail     *string
}

const classColumns = `c.id, c.name, c.section, c.grade, c.class_teacher_id, c.academic_year,
	c.capacity, c.created_by, c.created_at, c.updated_at,
	u.first_name, u.last_name, u.email`

const classJoin = `
	FROM classes c
	LEFT JOIN users u ON u.id = c.class_teacher_id`

func scanClass(row pgx.Row) (ClassDetail, error) {
	var detail ClassDetail
	err := row.Scan(
		&detail.ID,
		&detail.Name,
		&detail.Section,
		&detail.Grade,
		&detail.ClassTeacherID,
		&detail.AcademicYear,
		&detail.Capacity,
		&detail.CreatedBy,
		&detail.CreatedAt,
		&detail.UpdatedAt,
		&detail.TeacherFirstName,
		&detail.TeacherLastName,
		&detail.TeacherEmail,
	)
	if err != nil {
		return ClassDetail{}, wrapErr(err)
	}
	return detail, nil
}

func (s *Store) CreateClass(ctx context.Context, class model.Class) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO classes (id, name, section, grade, class_teacher_id, academic_year,
			capacity, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, class.ID, class.Name, class.Section, class.Grade, class.ClassTeacherID,
		class.AcademicYear, class.Capacity, class.CreatedBy, class.CreatedAt, class.UpdatedAt)
	return wrapErr(err)
}

func (s *Store) GetClass(ctx context.Context, classID string) (ClassDetail, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+classColumns+classJoin+`
		WHERE c.id = $1
	`, classID)
	return scanClass(row)
}

func (s *Store) ListClasses(ctx context.Context) ([]ClassDetail, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+classColumns+classJoin+`
		ORDER BY c.grade, c.name
	`)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	classes := make([]ClassDetail, 0)
	for rows.Next() {
		detail, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		classes = append(classes, detail)
	}
	return classes, wrapErr(rows.Err())
}

type ClassUpdate struct {
	Name           *string
	Section        *string
	Grade          *string
	ClassTeacherID *string
	AcademicYear   *string
	Capacity       *int
}

func (s *Store) UpdateClass(ctx context.Context, classID string, update ClassUpdate) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE classes
		SET name = COALESCE($2, name),
		    section = COALESCE($3, section),
		    grade = COALESCE($4, grade),
		    class_teacher_id = COALESCE($5, class_teacher_id),
		    academic_year = COALESCE($6, academic_year),
		    capacity = COALESCE($7, capacity),
		    updated_at = $8
		WHERE id = $1
	`, classID, update.Name, update.Section, update.Grade, update.ClassTeacherID,
		update.AcademicYear, update.Capacity, time.Now().UTC())
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteClass(ctx context.Context, classID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM classes WHERE id = $1`, classID)
	if err != nil {
		return false, wrapErr(err)
	}
	return tag.RowsAffected() > 0, nil
}
