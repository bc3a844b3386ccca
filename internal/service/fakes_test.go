package service

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/xxxsen/fieldorder/internal/filestore"
	"github.com/xxxsen/fieldorder/internal/model"
	appErr "github.com/xxxsen/fieldorder/internal/pkg/errors"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeTokenStore struct {
	mu      sync.Mutex
	byID    map[string]*model.ShareToken
	byValue map[string]string
	err     error
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{byID: map[string]*model.ShareToken{}, byValue: map[string]string{}}
}

func (s *fakeTokenStore) Create(_ context.Context, token *model.ShareToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.byValue[token.Token]; ok {
		return appErr.ErrConflict
	}
	clone := *token
	s.byID[token.ID] = &clone
	s.byValue[token.Token] = token.ID
	return nil
}

func (s *fakeTokenStore) GetByToken(_ context.Context, value string) (*model.ShareToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	id, ok := s.byValue[value]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	clone := *s.byID[id]
	return &clone, nil
}

func (s *fakeTokenStore) GetByID(_ context.Context, id string) (*model.ShareToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	token, ok := s.byID[id]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	clone := *token
	return &clone, nil
}

func (s *fakeTokenStore) Revoke(_ context.Context, id string, revokedAt int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	token, ok := s.byID[id]
	if !ok || token.RevokedAt != nil {
		return false, nil
	}
	token.RevokedAt = &revokedAt
	return true, nil
}

func (s *fakeTokenStore) ListActiveByResource(_ context.Context, kind model.ResourceKind, resourceID string, now int64) ([]model.ShareToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	items := make([]model.ShareToken, 0)
	for _, token := range s.byID {
		if token.ResourceKind == kind && token.ResourceID == resourceID && token.ValidAt(now) {
			items = append(items, *token)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt != items[j].CreatedAt {
			return items[i].CreatedAt > items[j].CreatedAt
		}
		return items[i].ID > items[j].ID
	})
	return items, nil
}

type fakeOrders struct {
	orders map[string]*model.Order
	err    error
}

func (f *fakeOrders) GetLive(_ context.Context, orderID string) (*model.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	order, ok := f.orders[orderID]
	if !ok || order.DeletedAt != nil {
		return nil, appErr.ErrNotFound
	}
	clone := *order
	return &clone, nil
}

func (f *fakeOrders) softDelete(orderID, by string, at int64) {
	order := f.orders[orderID]
	order.DeletedAt = &at
	order.DeletedBy = by
}

type fakeJournal struct {
	journal   []model.JournalEntry
	summaries []model.SummaryEntry
	deleted   map[string]bool
	err       error
}

func (f *fakeJournal) softDelete(id string) {
	if f.deleted == nil {
		f.deleted = make(map[string]bool)
	}
	f.deleted[id] = true
}

func (f *fakeJournal) live(id string) bool {
	return id == "" || !f.deleted[id]
}

func (f *fakeJournal) ListJournalByOrder(_ context.Context, orderID string) ([]model.JournalEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	items := make([]model.JournalEntry, 0)
	for _, item := range f.journal {
		if item.OrderID == orderID && f.live(item.ID) {
			items = append(items, item)
		}
	}
	return items, nil
}

func (f *fakeJournal) ListSummaryByOrder(_ context.Context, orderID string) ([]model.SummaryEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	items := make([]model.SummaryEntry, 0)
	for _, item := range f.summaries {
		if item.OrderID == orderID {
			items = append(items, item)
		}
	}
	return items, nil
}

type fakePhotos struct {
	photos  []model.Photo
	journal *fakeJournal
}

func (f *fakePhotos) visible(item model.Photo) bool {
	return f.journal == nil || f.journal.live(item.JournalEntryID)
}

func (f *fakePhotos) ListByOrder(_ context.Context, orderID string) ([]model.Photo, error) {
	items := make([]model.Photo, 0)
	for _, item := range f.photos {
		if item.OrderID == orderID && f.visible(item) {
			items = append(items, item)
		}
	}
	return items, nil
}

func (f *fakePhotos) GetByFileKey(_ context.Context, orderID, fileKey string) (*model.Photo, error) {
	for _, item := range f.photos {
		if item.OrderID == orderID && item.FileKey == fileKey && f.visible(item) {
			clone := item
			return &clone, nil
		}
	}
	return nil, appErr.ErrNotFound
}

type fakeTimeEntries struct {
	entries []model.TimeEntry
	stages  []model.OrderStage
}

func (f *fakeTimeEntries) ListByOrder(_ context.Context, orderID string) ([]model.TimeEntry, error) {
	items := make([]model.TimeEntry, 0)
	for _, item := range f.entries {
		if item.OrderID == orderID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (f *fakeTimeEntries) ListStagesByOrder(_ context.Context, orderID string) ([]model.OrderStage, error) {
	items := make([]model.OrderStage, 0)
	for _, item := range f.stages {
		if item.OrderID == orderID {
			items = append(items, item)
		}
	}
	return items, nil
}

type fakeCollections struct {
	collections map[string]*model.FileCollection
	files       []model.CollectionFile
}

func (f *fakeCollections) GetByID(_ context.Context, id string) (*model.FileCollection, error) {
	collection, ok := f.collections[id]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	clone := *collection
	return &clone, nil
}

func (f *fakeCollections) ListFiles(_ context.Context, collectionID string) ([]model.CollectionFile, error) {
	items := make([]model.CollectionFile, 0)
	for _, item := range f.files {
		if item.CollectionID == collectionID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (f *fakeCollections) GetFileByKey(_ context.Context, collectionID, fileKey string) (*model.CollectionFile, error) {
	for _, item := range f.files {
		if item.CollectionID == collectionID && item.FileKey == fileKey {
			clone := item
			return &clone, nil
		}
	}
	return nil, appErr.ErrNotFound
}

type fakeUsers struct {
	mu      sync.Mutex
	users   map[string]*model.User
	lookups int
}

func newFakeUsers(users ...model.User) *fakeUsers {
	f := &fakeUsers{users: map[string]*model.User{}}
	for i := range users {
		user := users[i]
		f.users[user.ID] = &user
	}
	return f
}

func (f *fakeUsers) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	items := make([]model.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := f.users[id]; ok {
			items = append(items, *user)
		}
	}
	return items, nil
}

func (f *fakeUsers) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return appErr.ErrConflict
		}
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, appErr.ErrNotFound
}

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryStore(objects map[string]string) *memoryStore {
	s := &memoryStore{objects: map[string][]byte{}}
	for key, value := range objects {
		s.objects[key] = []byte(value)
	}
	return s
}

func (s *memoryStore) Type() string { return "memory" }

func (s *memoryStore) Save(_ context.Context, key string, r filestore.ReadSeekCloser, _ int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, filestore.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

type presigningStore struct {
	*memoryStore
}

func (s presigningStore) PresignGet(_ context.Context, key, filename string, ttl time.Duration) (string, error) {
	return "https://objects.example.com/" + key + "?ttl=" + ttl.String() + "&name=" + filename, nil
}

const (
	ownerID      = "u-owner"
	otherTechID  = "u-other"
	adminID      = "u-admin"
	orderID      = "O1"
	secondOrder  = "O2"
	collectionID = "C1"
)

type testEnv struct {
	clock       *fakeClock
	tokens      *fakeTokenStore
	orders      *fakeOrders
	journal     *fakeJournal
	photos      *fakePhotos
	timeEntries *fakeTimeEntries
	collections *fakeCollections
	users       *fakeUsers
	store       *memoryStore
	shares      *ShareService
	projector   *Projector
	auth        *Authorizer
	admin       *ShareAdminService
	public      *PublicShareService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		clock:  newFakeClock(),
		tokens: newFakeTokenStore(),
		users: newFakeUsers(
			model.User{ID: ownerID, DisplayName: "Ana Field", Role: model.RoleTechnician},
			model.User{ID: otherTechID, DisplayName: "Bo Other", Role: model.RoleTechnician},
			model.User{ID: adminID, DisplayName: "", Role: model.RoleAdmin},
		),
		store: newMemoryStore(map[string]string{
			"photo-site":  "site-bytes",
			"photo-entry": "entry-bytes",
			"photo-o2":    "other-order-bytes",
			"file-a":      "alpha",
			"file-b":      "bravo",
		}),
	}
	now := env.clock.Now().Unix()
	env.orders = &fakeOrders{orders: map[string]*model.Order{
		orderID: {
			ID: orderID, Title: "Boiler service", Description: "Annual check", Summary: "All good",
			Status: "done", Priority: "high", CustomerName: "ACME", CustomerRef: "PO-7",
			Location: "Main st 1", DueDate: "2025-03-10", CreatedBy: ownerID, Ctime: now - 100, Mtime: now,
		},
		secondOrder: {ID: secondOrder, Title: "Other", CreatedBy: otherTechID, Ctime: now, Mtime: now},
	}}
	env.journal = &fakeJournal{
		journal: []model.JournalEntry{
			{ID: "j1", OrderID: orderID, UserID: ownerID, Content: "Replaced **valve**", Ctime: now - 50},
		},
		summaries: []model.SummaryEntry{
			{ID: "s1", OrderID: orderID, UserID: ownerID, Content: "Job complete", Ctime: now - 10},
		},
	}
	env.photos = &fakePhotos{journal: env.journal, photos: []model.Photo{
		{ID: "p1", OrderID: orderID, FileKey: "photo-site", Caption: "site.jpg", ContentType: "image/jpeg", Size: 10, UploadedBy: ownerID, Ctime: now - 60},
		{ID: "p2", OrderID: orderID, JournalEntryID: "j1", FileKey: "photo-entry", Caption: "valve.jpg", ContentType: "image/jpeg", Size: 11, UploadedBy: ownerID, Ctime: now - 40},
		{ID: "p3", OrderID: secondOrder, FileKey: "photo-o2", Caption: "o2.jpg", ContentType: "image/jpeg", Size: 17, UploadedBy: otherTechID, Ctime: now},
	}}
	env.timeEntries = &fakeTimeEntries{
		stages: []model.OrderStage{{ID: "st1", OrderID: orderID, Name: "Inspection"}},
		entries: []model.TimeEntry{
			{ID: "t1", OrderID: orderID, StageID: "st1", UserID: ownerID, WorkDate: "2025-03-01", Hours: 2.5, Notes: "checked"},
			{ID: "t2", OrderID: orderID, UserID: adminID, WorkDate: "2025-03-02", Hours: 1.25},
			{ID: "t3", OrderID: orderID, UserID: "u-gone", WorkDate: "2025-03-02", Hours: 0.1},
		},
	}
	env.collections = &fakeCollections{
		collections: map[string]*model.FileCollection{
			collectionID: {ID: collectionID, Name: "Handover docs", Description: "Manuals", CreatedBy: ownerID, ExpiresAt: now + 60*86400, Ctime: now},
		},
		files: []model.CollectionFile{
			{ID: "f1", CollectionID: collectionID, FileKey: "file-a", Name: "manual.pdf", Size: 5, ContentType: "application/pdf", UploadedBy: ownerID, Ctime: now},
			{ID: "f2", CollectionID: collectionID, FileKey: "file-b", Name: "manual.pdf", Size: 5, ContentType: "application/pdf", UploadedBy: ownerID, Ctime: now},
		},
	}
	env.shares = NewShareService(env.tokens, 3650, WithShareClock(env.clock.Now))
	env.projector = NewProjector(ProjectorDeps{
		Orders:      env.orders,
		Journal:     env.journal,
		Photos:      env.photos,
		TimeEntries: env.timeEntries,
		Collections: env.collections,
		Names:       NewDisplayNames(env.users, 16, time.Minute),
	}, env.clock.Now)
	env.auth = NewAuthorizer(env.orders, env.collections)
	env.admin = NewShareAdminService(env.shares, env.auth, "https://orders.example.com/")
	env.public = env.newPublic(env.store)
	return env
}

func (env *testEnv) newPublic(store filestore.Store) *PublicShareService {
	return NewPublicShareService(PublicShareDeps{
		Shares:          env.shares,
		Projector:       env.projector,
		Photos:          env.photos,
		CollectionFiles: env.collections,
		Store:           store,
		Settings:        &model.Settings{CompanyName: "Field Co", LogoURL: "https://cdn.example.com/logo.png", DateFormat: "DD.MM.YYYY"},
		BaseURL:         "https://orders.example.com",
		LinkTTL:         15 * time.Minute,
	})
}

func (env *testEnv) issue(t *testing.T, kind model.ResourceKind, resourceID string, days int) *model.ShareToken {
	t.Helper()
	token, err := env.shares.Issue(context.Background(), IssueInput{
		Kind:         kind,
		ResourceID:   resourceID,
		LifetimeDays: days,
		IssuedBy:     ownerID,
	})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}
