package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"smartstudy/internal/model"
	"smartstudy/internal/repository"
)

// SubscriberPostgres is a PostgreSQL implementation of repository.SubscriberRepository.
type SubscriberPostgres struct {
	db *sqlx.DB
}

func NewSubscriberPostgres(db *sqlx.DB) *SubscriberPostgres {
	return &SubscriberPostgres{db: db}
}

var _ repository.SubscriberRepository = (*SubscriberPostgres)(nil)

func (r *SubscriberPostgres) Create(ctx context.Context, s *model.Subscriber) (*model.Subscriber, error) {
	const q = `
		INSERT INTO subscribers (id, email, created_at)
		VALUES ($1, $2, $3)
		RETURNING id, email, created_at
	`
	var row struct {
		ID        string    `db:"id"`
		Email     string    `db:"email"`
		CreatedAt time.Time `db:"created_at"`
	}
	if err := r.db.GetContext(ctx, &row, q, s.ID, s.Email, s.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	return &model.Subscriber{ID: row.ID, Email: row.Email, CreatedAt: row.CreatedAt}, nil
}

// StatsPostgres is a PostgreSQL implementation of repository.StatsRepository.
type StatsPostgres struct {
	db *sqlx.DB
}

func NewStatsPostgres(db *sqlx.DB) *StatsPostgres {
	return &StatsPostgres{db: db}
}

var _ repository.StatsRepository = (*StatsPostgres)(nil)

func (r *StatsPostgres) Counts(ctx context.Context) (*model.Stats, error) {
	const q = `
		SELECT
			(SELECT COUNT(*) FROM users)                                AS users,
			(SELECT COUNT(*) FROM departments)                          AS departments,
			(SELECT COUNT(*) FROM subjects)                             AS subjects,
			(SELECT COUNT(*) FROM materials WHERE kind = 'notes')       AS notes,
			(SELECT COUNT(*) FROM materials WHERE kind = 'pyq')         AS pyqs,
			(SELECT COUNT(*) FROM materials WHERE kind = 'syllabus')    AS syllabus
	`
	var row struct {
		Users       int `db:"users"`
		Departments int `db:"departments"`
		Subjects    int `db:"subjects"`
		Notes       int `db:"notes"`
		PYQs        int `db:"pyqs"`
		Syllabus    int `db:"syllabus"`
	}
	if err := r.db.GetContext(ctx, &row, q); err != nil {
		return nil, mapError(err)
	}
	return &model.Stats{
		Users:       row.Users,
		Notes:       row.Notes,
		Departments: row.Departments,
		Subjects:    row.Subjects,
		PYQs:        row.PYQs,
		Syllabus:    row.Syllabus,
	}, nil
}
