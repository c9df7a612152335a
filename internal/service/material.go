package service

import (
	"context"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"smartstudy/internal/apperror"
	"smartstudy/internal/model"
	"smartstudy/internal/repository"
	"smartstudy/internal/storage"
	"smartstudy/internal/validation"
)

// Upload is a single file received with a create or update request.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// MaterialInput creates a document. Either an Upload or FilePath must be supplied.
// Year is required for PYQs and syllabus; Department is only read for PYQs.
type MaterialInput struct {
	Title       string `json:"title" validate:"required,notblank,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Subject     string `json:"subject" validate:"required"`
	Department  string `json:"department"`
	Year        int    `json:"year" validate:"omitempty,min=1900,max=2100"`
	FilePath    string `json:"filePath"`
}

// MaterialPatch is a partial update. Nil fields are left unchanged.
type MaterialPatch struct {
	Title       *string `json:"title" validate:"omitempty,notblank,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Subject     *string `json:"subject"`
	Department  *string `json:"department"`
	Year        *int    `json:"year" validate:"omitempty,min=1900,max=2100"`
	FilePath    *string `json:"filePath"`
}

// MaterialQuery filters listings. Subject takes precedence over Department.
type MaterialQuery struct {
	Subject    string
	Department string
}

// MaterialService serves one document collection (notes, PYQs or syllabus).
type MaterialService interface {
	Kind() model.MaterialKind
	Create(ctx context.Context, in MaterialInput, file *Upload) (*model.Material, error)
	List(ctx context.Context, q MaterialQuery) ([]model.Material, error)
	Get(ctx context.Context, id string) (*model.Material, error)
	Update(ctx context.Context, id string, p MaterialPatch, file *Upload) (*model.Material, error)
	// Delete removes the record and then its stored file.
	Delete(ctx context.Context, id string) error
}

type materialService struct {
	kind      model.MaterialKind
	materials repository.MaterialRepository
	subjects  repository.SubjectRepository
	store     storage.Storage
	validate  *validation.Validator
	log       zerolog.Logger
}

func NewMaterialService(
	kind model.MaterialKind,
	materials repository.MaterialRepository,
	subjects repository.SubjectRepository,
	store storage.Storage,
	v *validation.Validator,
	log zerolog.Logger,
) MaterialService {
	return &materialService{
		kind:      kind,
		materials: materials,
		subjects:  subjects,
		store:     store,
		validate:  v,
		log:       log.With().Str("collection", string(kind)).Logger(),
	}
}

func (s *materialService) Kind() model.MaterialKind { return s.kind }

func fieldError(field, msg string) error {
	return apperror.Validation(msg, map[string]string{field: msg})
}

func (s *materialService) subject(ctx context.Context, id string) (*model.Subject, error) {
	if err := parseID(id, "subject"); err != nil {
		return nil, err
	}
	subj, err := s.subjects.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "subject")
	}
	return subj, nil
}

// resolveDepartment returns the department a PYQ must carry for subj.
// An explicit department that disagrees with the subject is rejected.
func resolveDepartment(subj *model.Subject, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" || requested == subj.DepartmentID {
		return subj.DepartmentID, nil
	}
	if err := parseID(requested, "department"); err != nil {
		return "", err
	}
	return "", fieldError("department", "department must match the subject's department")
}

// put uploads file under a fresh key and returns the key used as file path.
func (s *materialService) put(ctx context.Context, file *Upload) (string, error) {
	key := storage.ObjectKey(string(s.kind), file.Filename)
	size := file.Size
	if size <= 0 {
		size = -1
	}
	if _, err := s.store.Put(ctx, key, file.Body, storage.PutObjectOptions{
		Size:        size,
		ContentType: file.ContentType,
		Metadata:    map[string]string{"original-name": file.Filename},
	}); err != nil {
		return "", apperror.Internal(err)
	}
	return key, nil
}

// linkedPath accepts a client-supplied file path. Paths inside the upload area are refused:
// stored objects belong to the material that uploaded them and are removed with it.
func linkedPath(p string) (string, error) {
	p = storage.NormalizePath(p)
	if storage.KeyFromPath(p) != "" {
		return "", fieldError("filePath", "filePath cannot point at stored uploads; send the file instead")
	}
	return p, nil
}

func populate(m *model.Material, subj *model.Subject) {
	m.Subject = &model.SubjectRef{ID: subj.ID, Name: subj.Name, Department: subj.Department}
	if m.Kind.HasDepartment() {
		m.Department = subj.Department
	}
}

func (s *materialService) Create(ctx context.Context, in MaterialInput, file *Upload) (*model.Material, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if s.kind.RequiresYear() && in.Year == 0 {
		return nil, fieldError("year", "year is required")
	}
	filePath := ""
	if file == nil {
		var err error
		if filePath, err = linkedPath(in.FilePath); err != nil {
			return nil, err
		}
		if filePath == "" {
			return nil, fieldError("file", "file is required")
		}
	}

	subj, err := s.subject(ctx, strings.TrimSpace(in.Subject))
	if err != nil {
		return nil, err
	}

	m := &model.Material{
		ID:          newID(),
		Kind:        s.kind,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		SubjectID:   subj.ID,
	}
	if s.kind.RequiresYear() {
		m.Year = in.Year
	}
	if s.kind.HasDepartment() {
		if m.DepartmentID, err = resolveDepartment(subj, in.Department); err != nil {
			return nil, err
		}
	}

	uploaded := ""
	if file != nil {
		if filePath, err = s.put(ctx, file); err != nil {
			return nil, err
		}
		uploaded = filePath
	}
	m.FilePath = filePath
	m.CreatedAt = now()
	m.UpdatedAt = m.CreatedAt

	created, err := s.materials.Create(ctx, m)
	if err != nil {
		removeObjects(ctx, s.store, s.log, uploaded)
		return nil, translateWrite(err, s.kind.Label(), "subject")
	}
	populate(created, subj)
	s.log.Info().Str("id", created.ID).Str("file_path", created.FilePath).Msg("material_created")
	return created, nil
}

func (s *materialService) List(ctx context.Context, q MaterialQuery) ([]model.Material, error) {
	f := repository.MaterialFilter{Kind: s.kind}

	switch subject, dept := strings.TrimSpace(q.Subject), strings.TrimSpace(q.Department); {
	case subject != "":
		if err := parseID(subject, "subject"); err != nil {
			return nil, err
		}
		f.SubjectIDs = []string{subject}
	case dept != "":
		if err := parseID(dept, "department"); err != nil {
			return nil, err
		}
		if s.kind.HasDepartment() {
			f.DepartmentID = dept
			break
		}
		ids, err := s.subjects.IDsByDepartment(ctx, dept)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if len(ids) == 0 {
			return []model.Material{}, nil
		}
		f.SubjectIDs = ids
	}

	out, err := s.materials.List(ctx, f)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if out == nil {
		out = []model.Material{}
	}
	return out, nil
}

func (s *materialService) Get(ctx context.Context, id string) (*model.Material, error) {
	if err := parseID(id, s.kind.Label()); err != nil {
		return nil, err
	}
	m, err := s.materials.FindByID(ctx, s.kind, id)
	if err != nil {
		return nil, translate(err, s.kind.Label())
	}
	return m, nil
}

func (s *materialService) Update(ctx context.Context, id string, p MaterialPatch, file *Upload) (*model.Material, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate.Struct(p); err != nil {
		return nil, err
	}

	if v, ok := trimmed(p.Title); ok {
		m.Title = v
	}
	if p.Description != nil {
		m.Description = strings.TrimSpace(*p.Description)
	}
	if p.Year != nil && s.kind.RequiresYear() {
		m.Year = *p.Year
	}

	newSubject, subjectChanged := trimmed(p.Subject)
	subjectChanged = subjectChanged && newSubject != m.SubjectID
	_, deptGiven := trimmed(p.Department)
	if subjectChanged || (deptGiven && s.kind.HasDepartment()) {
		target := m.SubjectID
		if subjectChanged {
			target = newSubject
		}
		subj, err := s.subject(ctx, target)
		if err != nil {
			return nil, err
		}
		m.SubjectID = subj.ID
		if s.kind.HasDepartment() {
			requested := ""
			if p.Department != nil {
				requested = *p.Department
			}
			if m.DepartmentID, err = resolveDepartment(subj, requested); err != nil {
				return nil, err
			}
		}
	}

	oldPath := m.FilePath
	uploaded := ""
	switch {
	case file != nil:
		if uploaded, err = s.put(ctx, file); err != nil {
			return nil, err
		}
		m.FilePath = uploaded
	case p.FilePath != nil && storage.NormalizePath(*p.FilePath) != "" && storage.NormalizePath(*p.FilePath) != oldPath:
		if m.FilePath, err = linkedPath(*p.FilePath); err != nil {
			return nil, err
		}
	}
	m.UpdatedAt = now()

	if err := s.materials.Update(ctx, m); err != nil {
		removeObjects(ctx, s.store, s.log, uploaded)
		return nil, translateWrite(err, s.kind.Label(), "subject")
	}
	if oldPath != m.FilePath {
		removeObjects(ctx, s.store, s.log, oldPath)
	}
	return s.Get(ctx, id)
}

func (s *materialService) Delete(ctx context.Context, id string) error {
	m, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.materials.Delete(ctx, s.kind, id); err != nil {
		return translate(err, s.kind.Label())
	}
	removeObjects(ctx, s.store, s.log, m.FilePath)
	return nil
}
