// Package service holds the use cases of the study portal. Services validate input,
// enforce cross-entity rules and translate repository failures into apperror kinds.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"smartstudy/internal/apperror"
	"smartstudy/internal/model"
	"smartstudy/internal/repository"
	"smartstudy/internal/storage"
)

// DeletePolicy decides what happens to children when their parent is deleted.
type DeletePolicy string

const (
	// DeleteRestrict refuses to delete a parent that still has children.
	DeleteRestrict DeletePolicy = "restrict"
	// DeleteCascade deletes children (and their stored files) together with the parent.
	DeleteCascade DeletePolicy = "cascade"
)

// SettingsReader is the read side of SettingsService used by other services.
type SettingsReader interface {
	Get(ctx context.Context) (*model.Settings, error)
}

var now = func() time.Time { return time.Now().UTC() }

func newID() string { return uuid.NewString() }

// parseID rejects ids that are not UUIDs before they reach the store.
func parseID(id, what string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.InvalidIdentifier(fmt.Sprintf("invalid %s id", what))
	}
	return nil
}

// translate maps repository sentinels to caller-facing errors. what names the entity in messages.
func translate(err error, what string) error {
	var dup *repository.DuplicateError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound(what + " not found")
	case errors.As(err, &dup):
		if dup.Field == "" {
			return apperror.Conflict(what + " already exists")
		}
		return apperror.Conflict(fmt.Sprintf("%s with this %s already exists", what, dup.Field))
	case errors.Is(err, repository.ErrReferenced):
		return apperror.Conflict(what + " is still referenced by other records")
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Internal(err)
}

// translateWrite is translate for inserts and updates. A foreign key failure there means the
// parent vanished after its existence check, so it reads as the parent being missing.
func translateWrite(err error, what, parent string) error {
	if errors.Is(err, repository.ErrReferenced) {
		return apperror.NotFound(parent + " not found")
	}
	return translate(err, what)
}

// removeObjects deletes stored files best-effort. Paths not managed by storage are skipped.
func removeObjects(ctx context.Context, store storage.Storage, log zerolog.Logger, paths ...string) {
	for _, p := range paths {
		key := storage.KeyFromPath(p)
		if key == "" {
			continue
		}
		if err := store.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("stored_file_not_removed")
		}
	}
}

// trimmed reports the trimmed value of an optional field and whether it was supplied non-blank.
func trimmed(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	s := strings.TrimSpace(*p)
	return s, s != ""
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
