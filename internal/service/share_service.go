package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/fieldorder/internal/metrics"
	"github.com/xxxsen/fieldorder/internal/model"
	appErr "github.com/xxxsen/fieldorder/internal/pkg/errors"
	"github.com/xxxsen/fieldorder/internal/pkg/timeutil"
)

const issueMaxAttempts = 3

type shareTokenStore interface {
	Create(ctx context.Context, token *model.ShareToken) error
	GetByToken(ctx context.Context, token string) (*model.ShareToken, error)
	GetByID(ctx context.Context, id string) (*model.ShareToken, error)
	Revoke(ctx context.Context, id string, revokedAt int64) (bool, error)
	ListActiveByResource(ctx context.Context, kind model.ResourceKind, resourceID string, now int64) ([]model.ShareToken, error)
}

// ShareService mints, revokes and validates share tokens. Callers are
// expected to have authorized the principal over the resource already.
type ShareService struct {
	tokens          shareTokenStore
	maxLifetimeDays int
	now             func() time.Time
	newToken        func() (string, error)
}

type ShareOption func(*ShareService)

func WithShareClock(now func() time.Time) ShareOption {
	return func(s *ShareService) {
		if now != nil {
			s.now = now
		}
	}
}

func WithTokenGenerator(gen func() (string, error)) ShareOption {
	return func(s *ShareService) {
		if gen != nil {
			s.newToken = gen
		}
	}
}

func NewShareService(tokens shareTokenStore, maxLifetimeDays int, opts ...ShareOption) *ShareService {
	s := &ShareService{
		tokens:          tokens,
		maxLifetimeDays: maxLifetimeDays,
		now:             time.Now,
		newToken:        newShareToken,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type IssueInput struct {
	Kind         model.ResourceKind
	ResourceID   string
	LifetimeDays int
	IssuedBy     string
}

// ValidationResult is the outcome of a token check. ResourceKind and
// ResourceID are only set when Valid is true.
type ValidationResult struct {
	Valid        bool
	ResourceKind model.ResourceKind
	ResourceID   string
	TokenID      string
	ExpiresAt    int64
}

func (s *ShareService) Issue(ctx context.Context, input IssueInput) (*model.ShareToken, error) {
	if !input.Kind.Valid() || input.ResourceID == "" || input.IssuedBy == "" {
		return nil, appErr.ErrInvalid
	}
	if input.LifetimeDays <= 0 || (s.maxLifetimeDays > 0 && input.LifetimeDays > s.maxLifetimeDays) {
		return nil, appErr.ErrInvalid
	}
	for attempt := 1; ; attempt++ {
		value, err := s.newToken()
		if err != nil {
			return nil, err
		}
		now := s.now().Unix()
		token := &model.ShareToken{
			ID:           newID(),
			Token:        value,
			ResourceKind: input.Kind,
			ResourceID:   input.ResourceID,
			CreatedBy:    input.IssuedBy,
			CreatedAt:    now,
			ExpiresAt:    timeutil.AddDays(now, input.LifetimeDays),
		}
		err = s.tokens.Create(ctx, token)
		if err == nil {
			metrics.SharesIssued.WithLabelValues(string(input.Kind)).Inc()
			logutil.GetLogger(ctx).Info("share token issued",
				zap.String("token_id", token.ID),
				zap.String("kind", string(token.ResourceKind)),
				zap.String("resource_id", token.ResourceID),
				zap.String("issued_by", token.CreatedBy),
				zap.Int64("expires_at", token.ExpiresAt),
			)
			return token, nil
		}
		if !appErr.IsConflict(err) || attempt >= issueMaxAttempts {
			return nil, fmt.Errorf("create share token: %w", err)
		}
		logutil.GetLogger(ctx).Warn("share token collision, regenerating", zap.Int("attempt", attempt))
	}
}

// Revoke stamps revoked_at on the token. Revoking twice is a silent success.
func (s *ShareService) Revoke(ctx context.Context, tokenID string) error {
	changed, err := s.tokens.Revoke(ctx, tokenID, s.now().Unix())
	if err != nil {
		return err
	}
	if changed {
		metrics.SharesRevoked.Inc()
		logutil.GetLogger(ctx).Info("share token revoked", zap.String("token_id", tokenID))
		return nil
	}
	if _, err := s.tokens.GetByID(ctx, tokenID); err != nil {
		return err
	}
	return nil
}

func (s *ShareService) Get(ctx context.Context, tokenID string) (*model.ShareToken, error) {
	return s.tokens.GetByID(ctx, tokenID)
}

// Validate looks the token up and checks revocation and expiry against the
// clock read after the lookup. Only storage failures produce an error.
func (s *ShareService) Validate(ctx context.Context, value string) (ValidationResult, error) {
	logger := logutil.GetLogger(ctx)
	if !wellFormedShareToken(value) {
		metrics.ShareValidations.WithLabelValues(metrics.OutcomeInvalid).Inc()
		logger.Debug("share token rejected", zap.String("reason", "malformed"))
		return ValidationResult{}, nil
	}
	token, err := s.tokens.GetByToken(ctx, value)
	if errors.Is(err, appErr.ErrNotFound) {
		metrics.ShareValidations.WithLabelValues(metrics.OutcomeInvalid).Inc()
		logger.Debug("share token rejected", zap.String("reason", "not_found"))
		return ValidationResult{}, nil
	}
	if err != nil {
		return ValidationResult{}, fmt.Errorf("lookup share token: %w", err)
	}
	now := s.now().Unix()
	if !token.ValidAt(now) {
		metrics.ShareValidations.WithLabelValues(metrics.OutcomeInvalid).Inc()
		logger.Debug("share token rejected", zap.String("token_id", token.ID), zap.String("reason", token.StateAt(now)))
		return ValidationResult{TokenID: token.ID}, nil
	}
	metrics.ShareValidations.WithLabelValues(metrics.OutcomeValid).Inc()
	return ValidationResult{
		Valid:        true,
		ResourceKind: token.ResourceKind,
		ResourceID:   token.ResourceID,
		TokenID:      token.ID,
		ExpiresAt:    token.ExpiresAt,
	}, nil
}

// ListActive returns live tokens for the resource, newest first.
func (s *ShareService) ListActive(ctx context.Context, kind model.ResourceKind, resourceID string) ([]model.ShareToken, error) {
	if !kind.Valid() || resourceID == "" {
		return nil, appErr.ErrInvalid
	}
	return s.tokens.ListActiveByResource(ctx, kind, resourceID, s.now().Unix())
}
