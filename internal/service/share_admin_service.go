package service

import (
	"context"
	"strings"

	"github.com/xxxsen/fieldorder/internal/model"
)

// ShareAdminService is the authenticated management surface over ShareService.
type ShareAdminService struct {
	shares  *ShareService
	auth    *Authorizer
	baseURL string
}

func NewShareAdminService(shares *ShareService, auth *Authorizer, baseURL string) *ShareAdminService {
	return &ShareAdminService{shares: shares, auth: auth, baseURL: strings.TrimRight(baseURL, "/")}
}

// IssuedShare is returned to the issuer only; URL embeds the bearer token.
type IssuedShare struct {
	Token *model.ShareToken `json:"token"`
	URL   string            `json:"url"`
}

// ShareSummary is a list entry for the management UI. The token value is
// withheld; only the issuer sees it once at creation.
type ShareSummary struct {
	ID           string             `json:"id"`
	ResourceKind model.ResourceKind `json:"resource_kind"`
	ResourceID   string             `json:"resource_id"`
	CreatedBy    string             `json:"created_by"`
	CreatedAt    int64              `json:"created_at"`
	ExpiresAt    int64              `json:"expires_at"`
}

func (s *ShareAdminService) Issue(ctx context.Context, p Principal, kind model.ResourceKind, resourceID string, lifetimeDays int) (*IssuedShare, error) {
	if err := s.auth.CanManage(ctx, p, kind, resourceID); err != nil {
		return nil, err
	}
	token, err := s.shares.Issue(ctx, IssueInput{
		Kind:         kind,
		ResourceID:   resourceID,
		LifetimeDays: lifetimeDays,
		IssuedBy:     p.UserID,
	})
	if err != nil {
		return nil, err
	}
	return &IssuedShare{Token: token, URL: s.ShareURL(token.Token)}, nil
}

func (s *ShareAdminService) Revoke(ctx context.Context, p Principal, tokenID string) error {
	token, err := s.shares.Get(ctx, tokenID)
	if err != nil {
		return err
	}
	if err := s.auth.CanRevoke(ctx, p, token); err != nil {
		return err
	}
	return s.shares.Revoke(ctx, tokenID)
}

func (s *ShareAdminService) ListActive(ctx context.Context, p Principal, kind model.ResourceKind, resourceID string) ([]ShareSummary, error) {
	if err := s.auth.CanManage(ctx, p, kind, resourceID); err != nil {
		return nil, err
	}
	tokens, err := s.shares.ListActive(ctx, kind, resourceID)
	if err != nil {
		return nil, err
	}
	items := make([]ShareSummary, 0, len(tokens))
	for _, token := range tokens {
		items = append(items, ShareSummary{
			ID:           token.ID,
			ResourceKind: token.ResourceKind,
			ResourceID:   token.ResourceID,
			CreatedBy:    token.CreatedBy,
			CreatedAt:    token.CreatedAt,
			ExpiresAt:    token.ExpiresAt,
		})
	}
	return items, nil
}

// ShareURL renders the page address a visitor opens.
func (s *ShareAdminService) ShareURL(token string) string {
	return s.baseURL + "/share/" + token
}
