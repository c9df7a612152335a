package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"smartstudy/internal/model"
	"smartstudy/internal/repository"
)

// SubjectPostgres is a PostgreSQL implementation of repository.SubjectRepository.
type SubjectPostgres struct {
	db *sqlx.DB
}

func NewSubjectPostgres(db *sqlx.DB) *SubjectPostgres {
	return &SubjectPostgres{db: db}
}

var _ repository.SubjectRepository = (*SubjectPostgres)(nil)

type subjectRow struct {
	ID                string         `db:"id"`
	Name              string         `db:"name"`
	Description       string         `db:"description"`
	DepartmentID      string         `db:"department_id"`
	CreatedBy         sql.NullString `db:"created_by"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
	DepartmentName    sql.NullString `db:"department_name"`
	CreatedByUsername sql.NullString `db:"created_by_username"`
	CreatedByEmail    sql.NullString `db:"created_by_email"`
}

func (r subjectRow) toModel() model.Subject {
	s := model.Subject{
		ID:           r.ID,
		Name:         r.Name,
		Description:  r.Description,
		DepartmentID: r.DepartmentID,
		CreatedByID:  r.CreatedBy.String,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.DepartmentName.Valid {
		s.Department = &model.DepartmentRef{ID: r.DepartmentID, Name: r.DepartmentName.String}
	}
	if r.CreatedBy.Valid && r.CreatedByUsername.Valid {
		s.CreatedBy = &model.UserRef{ID: r.CreatedBy.String, Username: r.CreatedByUsername.String, Email: r.CreatedByEmail.String}
	}
	return s
}

const subjectSelect = `
	SELECT s.id, s.name, s.description, s.department_id, s.created_by, s.created_at, s.updated_at,
	       d.name AS department_name, u.username AS created_by_username, u.email AS created_by_email
	FROM subjects s
	LEFT JOIN departments d ON d.id = s.department_id
	LEFT JOIN users u ON u.id = s.created_by`

func (r *SubjectPostgres) Create(ctx context.Context, s *model.Subject) (*model.Subject, error) {
	const q = `
		INSERT INTO subjects (id, name, description, department_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, name, description, department_id, created_by, created_at, updated_at
	`
	var row subjectRow
	if err := r.db.GetContext(ctx, &row, q,
		s.ID, s.Name, s.Description, s.DepartmentID, nullString(s.CreatedByID), s.CreatedAt, s.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	out := row.toModel()
	return &out, nil
}

func (r *SubjectPostgres) FindByID(ctx context.Context, id string) (*model.Subject, error) {
	var row subjectRow
	if err := r.db.GetContext(ctx, &row, subjectSelect+` WHERE s.id = $1`, id); err != nil {
		return nil, mapError(err)
	}
	s := row.toModel()
	return &s, nil
}

func (r *SubjectPostgres) List(ctx context.Context, f repository.SubjectFilter) ([]model.Subject, error) {
	q := subjectSelect
	var args []any
	if f.DepartmentID != "" {
		q += ` WHERE s.department_id = $1`
		args = append(args, f.DepartmentID)
	}
	q += ` ORDER BY s.name, s.id`

	var rows []subjectRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, mapError(err)
	}
	out := make([]model.Subject, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

func (r *SubjectPostgres) IDsByDepartment(ctx context.Context, departmentID string) ([]string, error) {
	ids := make([]string, 0)
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM subjects WHERE department_id = $1`, departmentID); err != nil {
		return nil, mapError(err)
	}
	return ids, nil
}

func (r *SubjectPostgres) Update(ctx context.Context, s *model.Subject) error {
	const q = `UPDATE subjects SET name = $2, description = $3, department_id = $4, updated_at = $5 WHERE id = $1`
	return expectOneRow(r.db.ExecContext(ctx, q, s.ID, s.Name, s.Description, s.DepartmentID, s.UpdatedAt))
}

func (r *SubjectPostgres) Delete(ctx context.Context, id string) error {
	return expectOneRow(r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id))
}

func (r *SubjectPostgres) DeleteByDepartment(ctx context.Context, departmentID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE department_id = $1`, departmentID)
	if err != nil {
		return 0, mapError(err)
	}
	return res.RowsAffected()
}
