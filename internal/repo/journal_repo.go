package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/fieldorder/internal/model"
	"github.com/xxxsen/fieldorder/internal/pkg/dbutil"
)

// JournalRepo reads journal and summary entries; both share one layout.
type JournalRepo struct {
	db *sql.DB
}

func NewJournalRepo(db *sql.DB) *JournalRepo {
	return &JournalRepo{db: db}
}

func (r *JournalRepo) CreateJournalEntry(ctx context.Context, entry *model.JournalEntry) error {
	return r.insert(ctx, "journal_entries", entry.ID, entry.OrderID, entry.UserID, entry.Content, entry.Ctime)
}

func (r *JournalRepo) CreateSummaryEntry(ctx context.Context, entry *model.SummaryEntry) error {
	return r.insert(ctx, "summary_entries", entry.ID, entry.OrderID, entry.UserID, entry.Content, entry.Ctime)
}

func (r *JournalRepo) ListJournalByOrder(ctx context.Context, orderID string) ([]model.JournalEntry, error) {
	rows, err := r.listByOrder(ctx, "journal_entries", orderID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := make([]model.JournalEntry, 0)
	for rows.Next() {
		var item model.JournalEntry
		if err := rows.Scan(&item.ID, &item.OrderID, &item.UserID, &item.Content, &item.Ctime); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *JournalRepo) ListSummaryByOrder(ctx context.Context, orderID string) ([]model.SummaryEntry, error) {
	rows, err := r.listByOrder(ctx, "summary_entries", orderID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := make([]model.SummaryEntry, 0)
	for rows.Next() {
		var item model.SummaryEntry
		if err := rows.Scan(&item.ID, &item.OrderID, &item.UserID, &item.Content, &item.Ctime); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *JournalRepo) insert(ctx context.Context, table, id, orderID, userID, content string, ctime int64) error {
	data := map[string]interface{}{
		"id":       id,
		"order_id": orderID,
		"user_id":  userID,
		"content":  content,
		"ctime":    ctime,
	}
	sqlStr, args, err := builder.BuildInsert(table, []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *JournalRepo) listByOrder(ctx context.Context, table, orderID string) (*sql.Rows, error) {
	where := map[string]interface{}{
		"order_id":     orderID,
		"_custom_live": builder.Custom("deleted_at IS NULL"),
		"_orderby":     "ctime asc, id asc",
	}
	sqlStr, args, err := builder.BuildSelect(table, where, []string{"id", "order_id", "user_id", "content", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	return r.db.QueryContext(ctx, sqlStr, args...)
}
