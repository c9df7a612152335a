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

type SubjectInput struct {
	Name        string `json:"name" validate:"required,notblank,max=120"`
	Description string `json:"description" validate:"max=2000"`
	Department  string `json:"department" validate:"required"`
}

type SubjectPatch struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=120"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Department  *string `json:"department"`
}

// SubjectService defines the subject use cases. Reads are populated with department and creator.
type SubjectService interface {
	Create(ctx context.Context, creatorID string, in SubjectInput) (*model.Subject, error)
	// List returns all subjects, or those of one department when departmentID is set.
	List(ctx context.Context, departmentID string) ([]model.Subject, error)
	Get(ctx context.Context, id string) (*model.Subject, error)
	Update(ctx context.Context, id string, p SubjectPatch) (*model.Subject, error)
	Delete(ctx context.Context, id string) error
}

type subjectService struct {
	subjects    repository.SubjectRepository
	departments repository.DepartmentRepository
	materials   repository.MaterialRepository
	store       storage.Storage
	policy      DeletePolicy
	validate    *validation.Validator
	log         zerolog.Logger
}

func NewSubjectService(
	subjects repository.SubjectRepository,
	departments repository.DepartmentRepository,
	materials repository.MaterialRepository,
	store storage.Storage,
	policy DeletePolicy,
	v *validation.Validator,
	log zerolog.Logger,
) SubjectService {
	return &subjectService{
		subjects:    subjects,
		departments: departments,
		materials:   materials,
		store:       store,
		policy:      policy,
		validate:    v,
		log:         log,
	}
}

// requireDepartment checks that the referenced department exists.
func (s *subjectService) requireDepartment(ctx context.Context, id string) error {
	if err := parseID(id, "department"); err != nil {
		return err
	}
	if _, err := s.departments.FindByID(ctx, id); err != nil {
		return translate(err, "department")
	}
	return nil
}

func (s *subjectService) Create(ctx context.Context, creatorID string, in SubjectInput) (*model.Subject, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	deptID := strings.TrimSpace(in.Department)
	if err := s.requireDepartment(ctx, deptID); err != nil {
		return nil, err
	}

	ts := now()
	created, err := s.subjects.Create(ctx, &model.Subject{
		ID:           newID(),
		Name:         strings.TrimSpace(in.Name),
		Description:  strings.TrimSpace(in.Description),
		DepartmentID: deptID,
		CreatedByID:  creatorID,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	})
	if err != nil {
		return nil, translateWrite(err, "subject", "department")
	}
	return s.Get(ctx, created.ID)
}

func (s *subjectService) List(ctx context.Context, departmentID string) ([]model.Subject, error) {
	if departmentID != "" {
		if err := parseID(departmentID, "department"); err != nil {
			return nil, err
		}
	}
	out, err := s.subjects.List(ctx, repository.SubjectFilter{DepartmentID: departmentID})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return out, nil
}

func (s *subjectService) Get(ctx context.Context, id string) (*model.Subject, error) {
	if err := parseID(id, "subject"); err != nil {
		return nil, err
	}
	subj, err := s.subjects.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "subject")
	}
	return subj, nil
}

func (s *subjectService) Update(ctx context.Context, id string, p SubjectPatch) (*model.Subject, error) {
	subj, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate.Struct(p); err != nil {
		return nil, err
	}

	if v, ok := trimmed(p.Name); ok {
		subj.Name = v
	}
	if p.Description != nil {
		subj.Description = strings.TrimSpace(*p.Description)
	}
	moved := false
	if v, ok := trimmed(p.Department); ok && v != subj.DepartmentID {
		if err := s.requireDepartment(ctx, v); err != nil {
			return nil, err
		}
		subj.DepartmentID = v
		moved = true
	}
	subj.UpdatedAt = now()

	if err := s.subjects.Update(ctx, subj); err != nil {
		return nil, translateWrite(err, "subject", "department")
	}
	if moved {
		// PYQs carry their subject's department; keep them consistent.
		if _, err := s.materials.ReassignDepartment(ctx, subj.ID, subj.DepartmentID); err != nil {
			return nil, apperror.Internal(err)
		}
	}
	return s.Get(ctx, id)
}

func (s *subjectService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	ids := []string{id}
	var paths []string
	if s.policy == DeleteCascade {
		var err error
		if paths, err = s.materials.DeleteBySubjects(ctx, ids); err != nil {
			return apperror.Internal(err)
		}
	} else {
		n, err := s.materials.CountBySubjects(ctx, ids)
		if err != nil {
			return apperror.Internal(err)
		}
		if n > 0 {
			return apperror.Conflict(fmt.Sprintf("subject still has %d document(s); delete them first", n))
		}
	}

	if err := s.subjects.Delete(ctx, id); err != nil {
		return translate(err, "subject")
	}
	removeObjects(ctx, s.store, s.log, paths...)
	return nil
}
