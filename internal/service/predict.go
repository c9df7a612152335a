package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"smartstudy/internal/apperror"
	"smartstudy/internal/predictor"
	"smartstudy/internal/validation"
)

// ParseFailurePlaceholder is returned as the question list when the program output is not JSON.
const ParseFailurePlaceholder = "Error parsing model output."

type PredictInput struct {
	Query string `json:"query" validate:"required,notblank"`
}

// Prediction is the outcome of one run. Raw is set only when Questions is the parse failure placeholder.
type Prediction struct {
	Questions json.RawMessage `json:"questions"`
	Raw       *string         `json:"raw,omitempty"`
}

// PredictService forwards queries to the external prediction program.
type PredictService interface {
	Predict(ctx context.Context, in PredictInput) (*Prediction, error)
}

type predictService struct {
	runner   predictor.Runner
	timeout  time.Duration
	validate *validation.Validator
	log      zerolog.Logger
}

func NewPredictService(runner predictor.Runner, timeout time.Duration, v *validation.Validator, log zerolog.Logger) PredictService {
	return &predictService{runner: runner, timeout: timeout, validate: v, log: log}
}

var placeholderQuestions = json.RawMessage(`["` + ParseFailurePlaceholder + `"]`)

func (s *predictService) Predict(ctx context.Context, in PredictInput) (*Prediction, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := s.runner.Run(ctx, in.Query)
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, apperror.Upstream("prediction timed out", "", err)
	}
	if err != nil {
		return nil, apperror.Upstream("Error processing prediction", "prediction program could not be started", err)
	}

	if res.ExitCode != 0 {
		detail := strings.TrimSpace(string(res.Stderr))
		if detail == "" {
			detail = "Unknown error occurred in prediction program"
		}
		s.log.Error().Int("exit_code", res.ExitCode).Str("stderr", detail).Msg("prediction_failed")
		return nil, apperror.Upstream("Error processing prediction", detail, nil)
	}

	out := strings.TrimSpace(string(res.Stdout))
	if !json.Valid([]byte(out)) {
		raw := string(res.Stdout)
		s.log.Warn().Str("raw", raw).Msg("prediction_output_not_json")
		return &Prediction{Questions: placeholderQuestions, Raw: &raw}, nil
	}
	return &Prediction{Questions: json.RawMessage(out)}, nil
}
