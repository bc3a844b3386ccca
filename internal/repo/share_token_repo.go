package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/fieldorder/internal/model"
	"github.com/xxxsen/fieldorder/internal/pkg/dbutil"
	appErr "github.com/xxxsen/fieldorder/internal/pkg/errors"
)

var shareTokenColumns = []string{"id", "token", "resource_kind", "resource_id", "created_by", "created_at", "expires_at", "revoked_at"}

type ShareTokenRepo struct {
	db *sql.DB
}

func NewShareTokenRepo(db *sql.DB) *ShareTokenRepo {
	return &ShareTokenRepo{db: db}
}

func (r *ShareTokenRepo) Create(ctx context.Context, token *model.ShareToken) error {
	data := map[string]interface{}{
		"id":            token.ID,
		"token":         token.Token,
		"resource_kind": string(token.ResourceKind),
		"resource_id":   token.ResourceID,
		"created_by":    token.CreatedBy,
		"created_at":    token.CreatedAt,
		"expires_at":    token.ExpiresAt,
		"revoked_at":    int64PtrValue(token.RevokedAt),
	}
	sqlStr, args, err := builder.BuildInsert("share_tokens", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *ShareTokenRepo) GetByToken(ctx context.Context, token string) (*model.ShareToken, error) {
	return r.getOne(ctx, map[string]interface{}{"token": token})
}

func (r *ShareTokenRepo) GetByID(ctx context.Context, id string) (*model.ShareToken, error) {
	return r.getOne(ctx, map[string]interface{}{"id": id})
}

// Revoke stamps revoked_at once. It reports false when the token was already revoked.
func (r *ShareTokenRepo) Revoke(ctx context.Context, id string, revokedAt int64) (bool, error) {
	sqlStr, args := dbutil.Finalize(
		"UPDATE share_tokens SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL",
		[]interface{}{revokedAt, id},
	)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *ShareTokenRepo) ListActiveByResource(ctx context.Context, kind model.ResourceKind, resourceID string, now int64) ([]model.ShareToken, error) {
	where := map[string]interface{}{
		"resource_kind":  string(kind),
		"resource_id":    resourceID,
		"expires_at >":   now,
		"_custom_active": builder.Custom("revoked_at IS NULL"),
		"_orderby":       "created_at desc, id desc",
	}
	sqlStr, args, err := builder.BuildSelect("share_tokens", where, shareTokenColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := make([]model.ShareToken, 0)
	for rows.Next() {
		item, err := scanShareToken(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *ShareTokenRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.ShareToken, error) {
	sqlStr, args, err := builder.BuildSelect("share_tokens", where, shareTokenColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, appErr.ErrNotFound
	}
	return scanShareToken(rows)
}

func scanShareToken(rows *sql.Rows) (*model.ShareToken, error) {
	var (
		item      model.ShareToken
		kind      string
		revokedAt sql.NullInt64
	)
	if err := rows.Scan(&item.ID, &item.Token, &kind, &item.ResourceID, &item.CreatedBy, &item.CreatedAt, &item.ExpiresAt, &revokedAt); err != nil {
		return nil, err
	}
	item.ResourceKind = model.ResourceKind(kind)
	item.RevokedAt = nullInt64Ptr(revokedAt)
	return &item, nil
}
