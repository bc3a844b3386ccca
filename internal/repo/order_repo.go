package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/fieldorder/internal/model"
	"github.com/xxxsen/fieldorder/internal/pkg/dbutil"
	appErr "github.com/xxxsen/fieldorder/internal/pkg/errors"
)

var orderColumns = []string{"id", "title", "description", "summary", "status", "priority", "customer_name", "customer_ref", "location", "due_date", "created_by", "deleted_at", "deleted_by", "ctime", "mtime"}

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

func (r *OrderRepo) Create(ctx context.Context, order *model.Order) error {
	data := map[string]interface{}{
		"id":            order.ID,
		"title":         order.Title,
		"description":   order.Description,
		"summary":       order.Summary,
		"status":        order.Status,
		"priority":      order.Priority,
		"customer_name": order.CustomerName,
		"customer_ref":  order.CustomerRef,
		"location":      order.Location,
		"due_date":      order.DueDate,
		"created_by":    order.CreatedBy,
		"ctime":         order.Ctime,
		"mtime":         order.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("orders", []map[string]interface{}{data})
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

// GetLive returns the order unless it is missing or soft-deleted.
func (r *OrderRepo) GetLive(ctx context.Context, orderID string) (*model.Order, error) {
	where := map[string]interface{}{
		"id":           orderID,
		"_custom_live": builder.Custom("deleted_at IS NULL"),
	}
	sqlStr, args, err := builder.BuildSelect("orders", where, orderColumns)
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
	var (
		order     model.Order
		deletedAt sql.NullInt64
		deletedBy sql.NullString
	)
	if err := rows.Scan(&order.ID, &order.Title, &order.Description, &order.Summary, &order.Status, &order.Priority,
		&order.CustomerName, &order.CustomerRef, &order.Location, &order.DueDate, &order.CreatedBy,
		&deletedAt, &deletedBy, &order.Ctime, &order.Mtime); err != nil {
		return nil, err
	}
	order.DeletedAt = nullInt64Ptr(deletedAt)
	order.DeletedBy = deletedBy.String
	return &order, nil
}

func (r *OrderRepo) SoftDelete(ctx context.Context, orderID, deletedBy string, now int64) error {
	sqlStr, args := dbutil.Finalize(
		"UPDATE orders SET deleted_at = ?, deleted_by = ?, mtime = ? WHERE id = ? AND deleted_at IS NULL",
		[]interface{}{now, nullStringValue(deletedBy), now, orderID},
	)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}
