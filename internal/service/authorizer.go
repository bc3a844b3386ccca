package service

import (
	"context"

	"github.com/xxxsen/fieldorder/internal/model"
	appErr "github.com/xxxsen/fieldorder/internal/pkg/errors"
)

type orderGetter interface {
	GetLive(ctx context.Context, orderID string) (*model.Order, error)
}

type collectionGetter interface {
	GetByID(ctx context.Context, id string) (*model.FileCollection, error)
}

// Authorizer decides whether a principal holds owner or admin rights over a
// shareable resource.
type Authorizer struct {
	orders      orderGetter
	collections collectionGetter
}

func NewAuthorizer(orders orderGetter, collections collectionGetter) *Authorizer {
	return &Authorizer{orders: orders, collections: collections}
}

// ResourceOwner returns created_by of a live resource.
func (a *Authorizer) ResourceOwner(ctx context.Context, kind model.ResourceKind, resourceID string) (string, error) {
	switch kind {
	case model.ResourceKindOrder:
		order, err := a.orders.GetLive(ctx, resourceID)
		if err != nil {
			return "", err
		}
		return order.CreatedBy, nil
	case model.ResourceKindFileCollection:
		collection, err := a.collections.GetByID(ctx, resourceID)
		if err != nil {
			return "", err
		}
		if collection.PurgedAt != nil {
			return "", appErr.ErrNotFound
		}
		return collection.CreatedBy, nil
	default:
		return "", appErr.ErrInvalid
	}
}

// CanManage checks rights to issue or list tokens for the resource.
func (a *Authorizer) CanManage(ctx context.Context, p Principal, kind model.ResourceKind, resourceID string) error {
	if p.UserID == "" {
		return appErr.ErrUnauthorized
	}
	owner, err := a.ResourceOwner(ctx, kind, resourceID)
	if err != nil {
		return err
	}
	if p.IsAdmin() || owner == p.UserID {
		return nil
	}
	return appErr.ErrForbidden
}

// CanRevoke allows the issuer, an admin, or the owner of the resource. A
// resource that no longer exists leaves the issuer and admins.
func (a *Authorizer) CanRevoke(ctx context.Context, p Principal, token *model.ShareToken) error {
	if p.UserID == "" {
		return appErr.ErrUnauthorized
	}
	if p.IsAdmin() || token.CreatedBy == p.UserID {
		return nil
	}
	owner, err := a.ResourceOwner(ctx, token.ResourceKind, token.ResourceID)
	if err != nil {
		if appErr.IsNotFound(err) {
			return appErr.ErrForbidden
		}
		return err
	}
	if owner == p.UserID {
		return nil
	}
	return appErr.ErrForbidden
}
