package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"smartstudy/internal/model"
	"smartstudy/internal/repository"
)

// DepartmentPostgres is a PostgreSQL implementation of repository.DepartmentRepository.
type DepartmentPostgres struct {
	db *sqlx.DB
}

func NewDepartmentPostgres(db *sqlx.DB) *DepartmentPostgres {
	return &DepartmentPostgres{db: db}
}

var _ repository.DepartmentRepository = (*DepartmentPostgres)(nil)

type departmentRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r departmentRow) toModel() model.Department {
	return model.Department(r)
}

const departmentColumns = `id, name, description, created_at, updated_at`

func (r *DepartmentPostgres) Create(ctx context.Context, d *model.Department) (*model.Department, error) {
	const q = `
		INSERT INTO departments (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + departmentColumns
	var row departmentRow
	if err := r.db.GetContext(ctx, &row, q, d.ID, d.Name, d.Description, d.CreatedAt, d.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	out := row.toModel()
	return &out, nil
}

func (r *DepartmentPostgres) FindByID(ctx context.Context, id string) (*model.Department, error) {
	var row departmentRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+departmentColumns+` FROM departments WHERE id = $1`, id); err != nil {
		return nil, mapError(err)
	}
	d := row.toModel()
	return &d, nil
}

func (r *DepartmentPostgres) List(ctx context.Context) ([]model.Department, error) {
	var rows []departmentRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+departmentColumns+` FROM departments ORDER BY name`); err != nil {
		return nil, mapError(err)
	}
	out := make([]model.Department, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

func (r *DepartmentPostgres) Update(ctx context.Context, d *model.Department) error {
	const q = `UPDATE departments SET name = $2, description = $3, updated_at = $4 WHERE id = $1`
	return expectOneRow(r.db.ExecContext(ctx, q, d.ID, d.Name, d.Description, d.UpdatedAt))
}

func (r *DepartmentPostgres) Delete(ctx context.Context, id string) error {
	return expectOneRow(r.db.ExecContext(ctx, `DELETE FROM departments WHERE id = $1`, id))
}
