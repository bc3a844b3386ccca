package repo

import "database/sql"

func nullInt64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	value := v.Int64
	return &value
}

func int64PtrValue(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullStringValue(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}
