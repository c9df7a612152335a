package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"smartstudy/internal/apperror"
	"smartstudy/internal/model"
	"smartstudy/internal/repository"
	"smartstudy/internal/storage"
	"smartstudy/internal/validation"
)

type DepartmentInput struct {
	Name        string `json:"name" validate:"required,notblank,max=120"`
	Description string `json:"description" validate:"max=2000"`
}

type DepartmentPatch struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=120"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// DepartmentService defines the department use cases.
type DepartmentService interface {
	Create(ctx context.Context, in DepartmentInput) (*model.Department, error)
	List(ctx context.Context) ([]model.Department, error)
	Get(ctx context.Context, id string) (*model.Department, error)
	Update(ctx context.Context, id string, p DepartmentPatch) (*model.Department, error)
	// Delete removes a department according to the configured DeletePolicy.
	Delete(ctx context.Context, id string) error
}

type departmentService struct {
	departments repository.DepartmentRepository
	subjects    repository.SubjectRepository
	materials   repository.MaterialRepository
	store       storage.Storage
	policy      DeletePolicy
	validate    *validation.Validator
	log         zerolog.Logger
}

func NewDepartmentService(
	departments repository.DepartmentRepository,
	subjects repository.SubjectRepository,
	materials repository.MaterialRepository,
	store storage.Storage,
	policy DeletePolicy,
	v *validation.Validator,
	log zerolog.Logger,
) DepartmentService {
	return &departmentService{
		departments: departments,
		subjects:    subjects,
		materials:   materials,
		store:       store,
		policy:      policy,
		validate:    v,
		log:         log,
	}
}

func (s *departmentService) Create(ctx context.Context, in DepartmentInput) (*model.Department, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	ts := now()
	d, err := s.departments.Create(ctx, &model.Department{
		ID:          newID(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   ts,
		UpdatedAt:   ts,
	})
	if err != nil {
		return nil, translate(err, "department")
	}
	return d, nil
}

func (s *departmentService) List(ctx context.Context) ([]model.Department, error) {
	out, err := s.departments.List(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return out, nil
}

func (s *departmentService) Get(ctx context.Context, id string) (*model.Department, error) {
	if err := parseID(id, "department"); err != nil {
		return nil, err
	}
	d, err := s.departments.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "department")
	}
	return d, nil
}

func (s *departmentService) Update(ctx context.Context, id string, p DepartmentPatch) (*model.Department, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate.Struct(p); err != nil {
		return nil, err
	}
	if v, ok := trimmed(p.Name); ok {
		d.Name = v
	}
	if p.Description != nil {
		d.Description = strings.TrimSpace(*p.Description)
	}
	d.UpdatedAt = now()

	if err := s.departments.Update(ctx, d); err != nil {
		return nil, translate(err, "department")
	}
	return d, nil
}

func (s *departmentService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	subjectIDs, err := s.subjects.IDsByDepartment(ctx, id)
	if err != nil {
		return apperror.Internal(err)
	}

	if len(subjectIDs) > 0 {
		if s.policy != DeleteCascade {
			return apperror.Conflict(fmt.Sprintf("department still has %d subject(s); delete them first", len(subjectIDs)))
		}
		paths, err := s.materials.DeleteBySubjects(ctx, subjectIDs)
		if err != nil {
			return apperror.Internal(err)
		}
		if _, err := s.subjects.DeleteByDepartment(ctx, id); err != nil {
			return translate(err, "department")
		}
		removeObjects(ctx, s.store, s.log, paths...)
		s.log.Info().
			Str("department_id", id).
			Int("subjects", len(subjectIDs)).
			Int("materials", len(paths)).
			Msg("department_cascade_delete")
	}

	return translate(s.departments.Delete(ctx, id), "department")
}
