package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/fieldorder/internal/model"
	"github.com/xxxsen/fieldorder/internal/pkg/dbutil"
	appErr "github.com/xxxsen/fieldorder/internal/pkg/errors"
)

var (
	collectionColumns     = []string{"id", "name", "description", "created_by", "expires_at", "purged_at", "ctime"}
	collectionFileColumns = []string{"id", "collection_id", "file_key", "name", "size", "content_type", "uploaded_by", "ctime"}
)

type FileCollectionRepo struct {
	db *sql.DB
}

func NewFileCollectionRepo(db *sql.DB) *FileCollectionRepo {
	return &FileCollectionRepo{db: db}
}

func (r *FileCollectionRepo) Create(ctx context.Context, collection *model.FileCollection) error {
	data := map[string]interface{}{
		"id":          collection.ID,
		"name":        collection.Name,
		"description": collection.Description,
		"created_by":  collection.CreatedBy,
		"expires_at":  collection.ExpiresAt,
		"ctime":       collection.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("file_collections", []map[string]interface{}{data})
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

func (r *FileCollectionRepo) AddFile(ctx context.Context, file *model.CollectionFile) error {
	data := map[string]interface{}{
		"id":            file.ID,
		"collection_id": file.CollectionID,
		"file_key":      file.FileKey,
		"name":          file.Name,
		"size":          file.Size,
		"content_type":  file.ContentType,
		"uploaded_by":   file.UploadedBy,
		"ctime":         file.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("collection_files", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// GetByID returns the collection regardless of expiry; callers decide liveness.
func (r *FileCollectionRepo) GetByID(ctx context.Context, id string) (*model.FileCollection, error) {
	sqlStr, args, err := builder.BuildSelect("file_collections", map[string]interface{}{"id": id}, collectionColumns)
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
	return scanCollection(rows)
}

func (r *FileCollectionRepo) ListFiles(ctx context.Context, collectionID string) ([]model.CollectionFile, error) {
	where := map[string]interface{}{
		"collection_id": collectionID,
		"_orderby":      "ctime asc, id asc",
	}
	sqlStr, args, err := builder.BuildSelect("collection_files", where, collectionFileColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := make([]model.CollectionFile, 0)
	for rows.Next() {
		var item model.CollectionFile
		if err := rows.Scan(&item.ID, &item.CollectionID, &item.FileKey, &item.Name, &item.Size, &item.ContentType, &item.UploadedBy, &item.Ctime); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *FileCollectionRepo) GetFileByKey(ctx context.Context, collectionID, fileKey string) (*model.CollectionFile, error) {
	where := map[string]interface{}{
		"collection_id": collectionID,
		"file_key":      fileKey,
		"_limit":        []uint{0, 1},
	}
	sqlStr, args, err := builder.BuildSelect("collection_files", where, collectionFileColumns)
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
	var item model.CollectionFile
	if err := rows.Scan(&item.ID, &item.CollectionID, &item.FileKey, &item.Name, &item.Size, &item.ContentType, &item.UploadedBy, &item.Ctime); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListPurgeable returns collections that expired before cutoff and still hold stored files.
func (r *FileCollectionRepo) ListPurgeable(ctx context.Context, cutoff int64, limit uint) ([]model.FileCollection, error) {
	where := map[string]interface{}{
		"expires_at <":   cutoff,
		"_custom_purged": builder.Custom("purged_at IS NULL"),
		"_orderby":       "expires_at asc",
		"_limit":         []uint{0, limit},
	}
	sqlStr, args, err := builder.BuildSelect("file_collections", where, collectionColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := make([]model.FileCollection, 0)
	for rows.Next() {
		item, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *FileCollectionRepo) MarkPurged(ctx context.Context, id string, now int64) error {
	sqlStr, args := dbutil.Finalize(
		"UPDATE file_collections SET purged_at = ? WHERE id = ? AND purged_at IS NULL",
		[]interface{}{now, id},
	)
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func scanCollection(rows *sql.Rows) (*model.FileCollection, error) {
	var (
		item     model.FileCollection
		purgedAt sql.NullInt64
	)
	if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.CreatedBy, &item.ExpiresAt, &purgedAt, &item.Ctime); err != nil {
		return nil, err
	}
	item.PurgedAt = nullInt64Ptr(purgedAt)
	return &item, nil
}
