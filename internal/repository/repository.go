// Package repository declares the persistence contracts for every collection.
// Implementations live in subpackages (postgres) and contain no business rules.
package repository

import (
	"context"
	"errors"

	"smartstudy/internal/model"
)

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is matched by DuplicateError for unique constraint violations.
	ErrDuplicate = errors.New("duplicate record")
	// ErrReferenced is returned on a foreign key violation: a delete of a row other rows still
	// point at, or an insert or update pointing at a row that does not exist.
	ErrReferenced = errors.New("record is still referenced")
)

// DuplicateError reports which unique field collided.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	if e.Field == "" {
		return ErrDuplicate.Error()
	}
	return ErrDuplicate.Error() + ": " + e.Field
}

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// List returns all users, newest first.
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id string) error
}

// DepartmentRepository persists departments.
type DepartmentRepository interface {
	Create(ctx context.Context, d *model.Department) (*model.Department, error)
	FindByID(ctx context.Context, id string) (*model.Department, error)
	List(ctx context.Context) ([]model.Department, error)
	Update(ctx context.Context, d *model.Department) error
	Delete(ctx context.Context, id string) error
}

// SubjectFilter narrows subject listings. Empty fields do not filter.
type SubjectFilter struct {
	DepartmentID string
}

// SubjectRepository persists subjects. Reads populate Department and CreatedBy.
type SubjectRepository interface {
	Create(ctx context.Context, s *model.Subject) (*model.Subject, error)
	FindByID(ctx context.Context, id string) (*model.Subject, error)
	List(ctx context.Context, f SubjectFilter) ([]model.Subject, error)
	// IDsByDepartment resolves a department into the ids of its subjects.
	IDsByDepartment(ctx context.Context, departmentID string) ([]string, error)
	Update(ctx context.Context, s *model.Subject) error
	Delete(ctx context.Context, id string) error
	DeleteByDepartment(ctx context.Context, departmentID string) (int64, error)
}

// MaterialFilter narrows material listings.
// A nil SubjectIDs does not filter; a non-nil empty slice matches nothing.
type MaterialFilter struct {
	Kind         model.MaterialKind
	SubjectIDs   []string
	DepartmentID string
}

// MaterialRepository persists notes, PYQs and syllabus documents. Reads populate Subject and Department.
type MaterialRepository interface {
	Create(ctx context.Context, m *model.Material) (*model.Material, error)
	FindByID(ctx context.Context, kind model.MaterialKind, id string) (*model.Material, error)
	List(ctx context.Context, f MaterialFilter) ([]model.Material, error)
	Update(ctx context.Context, m *model.Material) error
	Delete(ctx context.Context, kind model.MaterialKind, id string) error
	// CountBySubjects counts materials of every kind attached to the given subjects.
	CountBySubjects(ctx context.Context, subjectIDs []string) (int, error)
	// DeleteBySubjects removes materials of every kind attached to the given subjects
	// and returns the file paths they owned.
	DeleteBySubjects(ctx context.Context, subjectIDs []string) ([]string, error)
	// ReassignDepartment rewrites the department of PYQs attached to a subject that moved department.
	ReassignDepartment(ctx context.Context, subjectID, departmentID string) (int64, error)
}

// SettingsRepository persists the settings singleton.
type SettingsRepository interface {
	// GetOrCreate inserts defaults when the singleton is missing and returns the stored row.
	GetOrCreate(ctx context.Context, defaults model.Settings) (*model.Settings, error)
	Save(ctx context.Context, s *model.Settings) error
}

// SubscriberRepository persists newsletter signups.
type SubscriberRepository interface {
	Create(ctx context.Context, s *model.Subscriber) (*model.Subscriber, error)
}

// StatsRepository aggregates counts across collections.
type StatsRepository interface {
	Counts(ctx context.Context) (*model.Stats, error)
}
