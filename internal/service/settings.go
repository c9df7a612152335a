package service

import (
	"context"

	"smartstudy/internal/apperror"
	"smartstudy/internal/model"
	"smartstudy/internal/repository"
	"smartstudy/internal/validation"
)

// SettingsService reads and updates the site settings singleton.
type SettingsService interface {
	// Get returns the singleton, creating it with defaults on first use.
	Get(ctx context.Context) (*model.Settings, error)
	Update(ctx context.Context, p model.SettingsPatch) (*model.Settings, error)
}

type settingsService struct {
	repo     repository.SettingsRepository
	validate *validation.Validator
}

func NewSettingsService(repo repository.SettingsRepository, v *validation.Validator) SettingsService {
	return &settingsService{repo: repo, validate: v}
}

func (s *settingsService) Get(ctx context.Context) (*model.Settings, error) {
	st, err := s.repo.GetOrCreate(ctx, model.DefaultSettings())
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return st, nil
}

func (s *settingsService) Update(ctx context.Context, p model.SettingsPatch) (*model.Settings, error) {
	if err := s.validate.Struct(p); err != nil {
		return nil, err
	}
	st, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	st.Apply(p)
	st.UpdatedAt = now()
	if err := s.repo.Save(ctx, st); err != nil {
		return nil, translate(err, "settings")
	}
	return st, nil
}
