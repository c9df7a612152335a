package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"smartstudy/internal/model"
	"smartstudy/internal/repository"
)

// MaterialPostgres is a PostgreSQL implementation of repository.MaterialRepository.
// Notes, PYQs and syllabus documents share the materials table, split by kind.
type MaterialPostgres struct {
	db *sqlx.DB
}

func NewMaterialPostgres(db *sqlx.DB) *MaterialPostgres {
	return &MaterialPostgres{db: db}
}

var _ repository.MaterialRepository = (*MaterialPostgres)(nil)

type materialRow struct {
	ID                    string         `db:"id"`
	Kind                  string         `db:"kind"`
	Title                 string         `db:"title"`
	Description           string         `db:"description"`
	Year                  sql.NullInt64  `db:"year"`
	SubjectID             string         `db:"subject_id"`
	DepartmentID          sql.NullString `db:"department_id"`
	FilePath              string         `db:"file_path"`
	CreatedAt             time.Time      `db:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at"`
	SubjectName           sql.NullString `db:"subject_name"`
	SubjectDepartmentID   sql.NullString `db:"subject_department_id"`
	SubjectDepartmentName sql.NullString `db:"subject_department_name"`
	DepartmentName        sql.NullString `db:"department_name"`
}

func (r materialRow) toModel() model.Material {
	m := model.Material{
		ID:           r.ID,
		Kind:         model.MaterialKind(r.Kind),
		Title:        r.Title,
		Description:  r.Description,
		Year:         int(r.Year.Int64),
		SubjectID:    r.SubjectID,
		DepartmentID: r.DepartmentID.String,
		FilePath:     r.FilePath,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.SubjectName.Valid {
		m.Subject = &model.SubjectRef{ID: r.SubjectID, Name: r.SubjectName.String}
		if r.SubjectDepartmentName.Valid {
			m.Subject.Department = &model.DepartmentRef{ID: r.SubjectDepartmentID.String, Name: r.SubjectDepartmentName.String}
		}
	}
	if r.DepartmentID.Valid && r.DepartmentName.Valid {
		m.Department = &model.DepartmentRef{ID: r.DepartmentID.String, Name: r.DepartmentName.String}
	}
	return m
}

const materialColumns = `id, kind, title, description, year, subject_id, department_id, file_path, created_at, updated_at`

const materialSelect = `
	SELECT m.id, m.kind, m.title, m.description, m.year, m.subject_id, m.department_id, m.file_path,
	       m.created_at, m.updated_at,
	       s.name AS subject_name, s.department_id AS subject_department_id, sd.name AS subject_department_name,
	       d.name AS department_name
	FROM materials m
	LEFT JOIN subjects s ON s.id = m.subject_id
	LEFT JOIN departments sd ON sd.id = s.department_id
	LEFT JOIN departments d ON d.id = m.department_id`

func (r *MaterialPostgres) Create(ctx context.Context, m *model.Material) (*model.Material, error) {
	const q = `
		INSERT INTO materials (id, kind, title, description, year, subject_id, department_id, file_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + materialColumns
	var row materialRow
	if err := r.db.GetContext(ctx, &row, q,
		m.ID, string(m.Kind), m.Title, m.Description, nullInt(m.Year), m.SubjectID,
		nullString(m.DepartmentID), m.FilePath, m.CreatedAt, m.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	out := row.toModel()
	return &out, nil
}

func (r *MaterialPostgres) FindByID(ctx context.Context, kind model.MaterialKind, id string) (*model.Material, error) {
	var row materialRow
	if err := r.db.GetContext(ctx, &row, materialSelect+` WHERE m.kind = $1 AND m.id = $2`, string(kind), id); err != nil {
		return nil, mapError(err)
	}
	m := row.toModel()
	return &m, nil
}

// List applies the filter with sqlx.In so the subject id set expands into an IN list.
func (r *MaterialPostgres) List(ctx context.Context, f repository.MaterialFilter) ([]model.Material, error) {
	if f.SubjectIDs != nil && len(f.SubjectIDs) == 0 {
		return []model.Material{}, nil
	}

	q := materialSelect + ` WHERE m.kind = ?`
	args := []any{string(f.Kind)}
	if f.SubjectIDs != nil {
		q += ` AND m.subject_id IN (?)`
		args = append(args, f.SubjectIDs)
	}
	if f.DepartmentID != "" {
		q += ` AND m.department_id = ?`
		args = append(args, f.DepartmentID)
	}
	q += ` ORDER BY m.created_at DESC, m.id DESC`

	q, args, err := sqlx.In(q, args...)
	if err != nil {
		return nil, err
	}
	q = r.db.Rebind(q)

	var rows []materialRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, mapError(err)
	}
	out := make([]model.Material, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

func (r *MaterialPostgres) Update(ctx context.Context, m *model.Material) error {
	const q = `
		UPDATE materials
		SET title = $3, description = $4, year = $5, subject_id = $6, department_id = $7, file_path = $8, updated_at = $9
		WHERE kind = $1 AND id = $2
	`
	return expectOneRow(r.db.ExecContext(ctx, q,
		string(m.Kind), m.ID, m.Title, m.Description, nullInt(m.Year), m.SubjectID,
		nullString(m.DepartmentID), m.FilePath, m.UpdatedAt,
	))
}

func (r *MaterialPostgres) Delete(ctx context.Context, kind model.MaterialKind, id string) error {
	return expectOneRow(r.db.ExecContext(ctx, `DELETE FROM materials WHERE kind = $1 AND id = $2`, string(kind), id))
}

func (r *MaterialPostgres) CountBySubjects(ctx context.Context, subjectIDs []string) (int, error) {
	if len(subjectIDs) == 0 {
		return 0, nil
	}
	q, args, err := sqlx.In(`SELECT COUNT(*) FROM materials WHERE subject_id IN (?)`, subjectIDs)
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(q), args...); err != nil {
		return 0, mapError(err)
	}
	return n, nil
}

func (r *MaterialPostgres) DeleteBySubjects(ctx context.Context, subjectIDs []string) ([]string, error) {
	paths := make([]string, 0)
	if len(subjectIDs) == 0 {
		return paths, nil
	}
	q, args, err := sqlx.In(`DELETE FROM materials WHERE subject_id IN (?) RETURNING file_path`, subjectIDs)
	if err != nil {
		return nil, err
	}
	if err := r.db.SelectContext(ctx, &paths, r.db.Rebind(q), args...); err != nil {
		return nil, mapError(err)
	}
	return paths, nil
}

func (r *MaterialPostgres) ReassignDepartment(ctx context.Context, subjectID, departmentID string) (int64, error) {
	const q = `UPDATE materials SET department_id = $2 WHERE subject_id = $1 AND kind = 'pyq'`
	res, err := r.db.ExecContext(ctx, q, subjectID, departmentID)
	if err != nil {
		return 0, mapError(err)
	}
	return res.RowsAffected()
}
