package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/fieldorder/internal/model"
	"github.com/xxxsen/fieldorder/internal/pkg/dbutil"
)

type SettingsRepo struct {
	db *sql.DB
}

func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

func (r *SettingsRepo) Load(ctx context.Context) (*model.Settings, error) {
	sqlStr, args, err := builder.BuildSelect("settings", nil, []string{"key", "value"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	settings := &model.Settings{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		switch key {
		case model.SettingCompanyName:
			settings.CompanyName = value
		case model.SettingLogoURL:
			settings.LogoURL = value
		case model.SettingDateFormat:
			settings.DateFormat = value
		}
	}
	return settings, rows.Err()
}

func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	sqlStr, args := dbutil.Finalize(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value",
		[]interface{}{key, value},
	)
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}
