package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"smartstudy/internal/apperror"
	"smartstudy/internal/mail"
	"smartstudy/internal/model"
	"smartstudy/internal/repository"
	repoMocks "smartstudy/internal/repository/mocks"
)

type recordingMailer struct {
	sent []mail.Message
	err  error
}

func (r *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	r.sent = append(r.sent, msg)
	return r.err
}

func newInlineSubscriberService(repo *repoMocks.MockSubscriberRepository, mailer mail.Mailer) SubscriberService {
	svc := NewSubscriberService(repo, mailer, "SmartStudy", testValidator, zerolog.Nop()).(*subscriberService)
	svc.async = func(fn func()) { fn() }
	return svc
}

func TestSubscriberService_Subscribe(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		email      string
		mailErr    error
		setupMocks func(m *repoMocks.MockSubscriberRepository)
		wantKind   apperror.Kind
		wantSent   int
	}{
		{
			name:  "happy path sends welcome",
			email: " Reader@Example.com",
			setupMocks: func(m *repoMocks.MockSubscriberRepository) {
				m.On("Create", ctx, mock.MatchedBy(func(s *model.Subscriber) bool {
					return s.Email == "reader@example.com"
				})).Return(&model.Subscriber{ID: userID, Email: "reader@example.com"}, nil)
			},
			wantSent: 1,
		},
		{
			name:    "mail failure is not the caller's problem",
			email:   "reader@example.com",
			mailErr: errors.New("sendgrid 401"),
			setupMocks: func(m *repoMocks.MockSubscriberRepository) {
				m.On("Create", ctx, mock.Anything).Return(&model.Subscriber{ID: userID, Email: "reader@example.com"}, nil)
			},
			wantSent: 1,
		},
		{
			name:  "duplicate",
			email: "reader@example.com",
			setupMocks: func(m *repoMocks.MockSubscriberRepository) {
				m.On("Create", ctx, mock.Anything).Return(nil, &repository.DuplicateError{Field: "email"})
			},
			wantKind: apperror.KindConflict,
		},
		{
			name:       "bad email",
			email:      "reader",
			setupMocks: func(m *repoMocks.MockSubscriberRepository) {},
			wantKind:   apperror.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockSubscriberRepository)
			tt.setupMocks(mRepo)
			mailer := &recordingMailer{err: tt.mailErr}

			got, err := newInlineSubscriberService(mRepo, mailer).Subscribe(ctx, SubscribeInput{Email: tt.email})
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, apperror.KindOf(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, "reader@example.com", got.Email)
			}
			require.Len(t, mailer.sent, tt.wantSent)
			if tt.wantSent > 0 {
				assert.Equal(t, "reader@example.com", mailer.sent[0].To)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestSubscriberService_Subscribe_DuplicateMessage(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockSubscriberRepository)
	mRepo.On("Create", ctx, mock.Anything).Return(nil, &repository.DuplicateError{Field: "email"})

	_, err := newInlineSubscriberService(mRepo, &recordingMailer{}).Subscribe(ctx, SubscribeInput{Email: "a@b.co"})

	assert.EqualError(t, err, "email is already subscribed")
}
