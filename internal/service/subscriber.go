package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"smartstudy/internal/apperror"
	"smartstudy/internal/mail"
	"smartstudy/internal/model"
	"smartstudy/internal/repository"
	"smartstudy/internal/validation"
)

type SubscribeInput struct {
	Email string `json:"email" validate:"required,email"`
}

// SubscriberService handles newsletter signups.
type SubscriberService interface {
	Subscribe(ctx context.Context, in SubscribeInput) (*model.Subscriber, error)
}

type subscriberService struct {
	repo     repository.SubscriberRepository
	mailer   mail.Mailer
	siteName string
	validate *validation.Validator
	log      zerolog.Logger

	// sendTimeout bounds the background welcome mail.
	sendTimeout time.Duration
	// async runs the welcome mail; tests replace it to run inline.
	async func(func())
}

func NewSubscriberService(
	repo repository.SubscriberRepository,
	mailer mail.Mailer,
	siteName string,
	v *validation.Validator,
	log zerolog.Logger,
) SubscriberService {
	return &subscriberService{
		repo:        repo,
		mailer:      mailer,
		siteName:    siteName,
		validate:    v,
		log:         log,
		sendTimeout: 30 * time.Second,
		async:       func(fn func()) { go fn() },
	}
}

func (s *subscriberService) Subscribe(ctx context.Context, in SubscribeInput) (*model.Subscriber, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	sub, err := s.repo.Create(ctx, &model.Subscriber{
		ID:        newID(),
		Email:     normalizeEmail(in.Email),
		CreatedAt: now(),
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperror.Conflict("email is already subscribed")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	msg := mail.Welcome(s.siteName, sub.Email)
	s.async(func() {
		// The request context ends with the response; the mail outlives it.
		ctx, cancel := context.WithTimeout(context.Background(), s.sendTimeout)
		defer cancel()
		if err := s.mailer.Send(ctx, msg); err != nil {
			s.log.Error().Err(err).Str("email", msg.To).Msg("welcome_mail_failed")
		}
	})
	return sub, nil
}
