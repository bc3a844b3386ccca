package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/fieldorder/internal/model"
	"github.com/xxxsen/fieldorder/internal/pkg/dbutil"
)

type TimeEntryRepo struct {
	db *sql.DB
}

func NewTimeEntryRepo(db *sql.DB) *TimeEntryRepo {
	return &TimeEntryRepo{db: db}
}

func (r *TimeEntryRepo) Create(ctx context.Context, entry *model.TimeEntry) error {
	data := map[string]interface{}{
		"id":        entry.ID,
		"order_id":  entry.OrderID,
		"stage_id":  nullStringValue(entry.StageID),
		"user_id":   entry.UserID,
		"work_date": entry.WorkDate,
		"hours":     entry.Hours,
		"notes":     entry.Notes,
		"ctime":     entry.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("time_entries", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *TimeEntryRepo) CreateStage(ctx context.Context, stage *model.OrderStage) error {
	data := map[string]interface{}{
		"id":       stage.ID,
		"order_id": stage.OrderID,
		"name":     stage.Name,
		"sort":     stage.Sort,
	}
	sqlStr, args, err := builder.BuildInsert("order_stages", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *TimeEntryRepo) ListByOrder(ctx context.Context, orderID string) ([]model.TimeEntry, error) {
	where := map[string]interface{}{
		"order_id":     orderID,
		"_custom_live": builder.Custom("deleted_at IS NULL"),
		"_orderby":     "work_date asc, ctime asc",
	}
	sqlStr, args, err := builder.BuildSelect("time_entries", where, []string{"id", "order_id", "stage_id", "user_id", "work_date", "hours", "notes", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := make([]model.TimeEntry, 0)
	for rows.Next() {
		var (
			item    model.TimeEntry
			stageID sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.OrderID, &stageID, &item.UserID, &item.WorkDate, &item.Hours, &item.Notes, &item.Ctime); err != nil {
			return nil, err
		}
		item.StageID = stageID.String
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *TimeEntryRepo) ListStagesByOrder(ctx context.Context, orderID string) ([]model.OrderStage, error) {
	where := map[string]interface{}{
		"order_id": orderID,
		"_orderby": "sort asc, name asc",
	}
	sqlStr, args, err := builder.BuildSelect("order_stages", where, []string{"id", "order_id", "name", "sort"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := make([]model.OrderStage, 0)
	for rows.Next() {
		var item model.OrderStage
		if err := rows.Scan(&item.ID, &item.OrderID, &item.Name, &item.Sort); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
