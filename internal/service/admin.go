package service

import (
	"context"

	"smartstudy/internal/apperror"
	"smartstudy/internal/model"
	"smartstudy/internal/repository"
)

// AdminService serves dashboard aggregates.
type AdminService interface {
	Stats(ctx context.Context) (*model.Stats, error)
}

type adminService struct {
	stats repository.StatsRepository
}

func NewAdminService(stats repository.StatsRepository) AdminService {
	return &adminService{stats: stats}
}

func (s *adminService) Stats(ctx context.Context) (*model.Stats, error) {
	st, err := s.stats.Counts(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return st, nil
}
