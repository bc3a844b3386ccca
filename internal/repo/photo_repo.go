package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/fieldorder/internal/model"
	"github.com/xxxsen/fieldorder/internal/pkg/dbutil"
	appErr "github.com/xxxsen/fieldorder/internal/pkg/errors"
)

// photos hanging off a soft-deleted journal entry are gone with it
const livePhotoEntry = "(journal_entry_id IS NULL OR journal_entry_id IN (SELECT id FROM journal_entries WHERE deleted_at IS NULL))"

var photoColumns = []string{"id", "order_id", "journal_entry_id", "file_key", "caption", "content_type", "size", "uploaded_by", "ctime"}

type PhotoRepo struct {
	db *sql.DB
}

func NewPhotoRepo(db *sql.DB) *PhotoRepo {
	return &PhotoRepo{db: db}
}

func (r *PhotoRepo) Create(ctx context.Context, photo *model.Photo) error {
	data := map[string]interface{}{
		"id":               photo.ID,
		"order_id":         photo.OrderID,
		"journal_entry_id": nullStringValue(photo.JournalEntryID),
		"file_key":         photo.FileKey,
		"caption":          photo.Caption,
		"content_type":     photo.ContentType,
		"size":             photo.Size,
		"uploaded_by":      photo.UploadedBy,
		"ctime":            photo.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("photos", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// ListByOrder returns photos attached to the order directly and to its journal entries.
func (r *PhotoRepo) ListByOrder(ctx context.Context, orderID string) ([]model.Photo, error) {
	where := map[string]interface{}{
		"order_id":      orderID,
		"_custom_live":  builder.Custom("deleted_at IS NULL"),
		"_custom_entry": builder.Custom(livePhotoEntry),
		"_orderby":      "ctime asc, id asc",
	}
	sqlStr, args, err := builder.BuildSelect("photos", where, photoColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := make([]model.Photo, 0)
	for rows.Next() {
		item, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *PhotoRepo) GetByFileKey(ctx context.Context, orderID, fileKey string) (*model.Photo, error) {
	where := map[string]interface{}{
		"order_id":      orderID,
		"file_key":      fileKey,
		"_custom_live":  builder.Custom("deleted_at IS NULL"),
		"_custom_entry": builder.Custom(livePhotoEntry),
		"_limit":        []uint{0, 1},
	}
	sqlStr, args, err := builder.BuildSelect("photos", where, photoColumns)
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
	return scanPhoto(rows)
}

func scanPhoto(rows *sql.Rows) (*model.Photo, error) {
	var (
		item           model.Photo
		journalEntryID sql.NullString
	)
	if err := rows.Scan(&item.ID, &item.OrderID, &journalEntryID, &item.FileKey, &item.Caption, &item.ContentType, &item.Size, &item.UploadedBy, &item.Ctime); err != nil {
		return nil, err
	}
	item.JournalEntryID = journalEntryID.String
	return &item, nil
}
