package service

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/fieldorder/internal/model"
)

const unknownTechnician = "Technician"

type userLister interface {
	ListByIDs(ctx context.Context, ids []string) ([]model.User, error)
}

// DisplayNames resolves user ids to display names for projections, caching
// recent lookups.
type DisplayNames struct {
	users userLister
	cache *expirable.LRU[string, string]
}

func NewDisplayNames(users userLister, size int, ttl time.Duration) *DisplayNames {
	d := &DisplayNames{users: users}
	if size > 0 && ttl > 0 {
		d.cache = expirable.NewLRU[string, string](size, nil, ttl)
	}
	return d
}

// Resolve returns a name for every requested id. Users that cannot be found
// fall back to a generic label, never to the id.
func (d *DisplayNames) Resolve(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	missing := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if d.cache != nil {
			if name, ok := d.cache.Get(id); ok {
				names[id] = name
				continue
			}
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return names, nil
	}
	users, err := d.users.ListByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		name := user.DisplayName
		if name == "" {
			name = unknownTechnician
		}
		names[user.ID] = name
		if d.cache != nil {
			d.cache.Add(user.ID, name)
		}
	}
	unresolved := 0
	for _, id := range missing {
		if _, ok := names[id]; !ok {
			names[id] = unknownTechnician
			unresolved++
		}
	}
	if unresolved > 0 {
		logutil.GetLogger(ctx).Debug("display names not found, using fallback", zap.Int("count", unresolved))
	}
	return names, nil
}
