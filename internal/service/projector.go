package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xxxsen/fieldorder/internal/model"
	appErr "github.com/xxxsen/fieldorder/internal/pkg/errors"
)

type journalLister interface {
	ListJournalByOrder(ctx context.Context, orderID string) ([]model.JournalEntry, error)
	ListSummaryByOrder(ctx context.Context, orderID string) ([]model.SummaryEntry, error)
}

type photoLister interface {
	ListByOrder(ctx context.Context, orderID string) ([]model.Photo, error)
}

type timeEntryLister interface {
	ListByOrder(ctx context.Context, orderID string) ([]model.TimeEntry, error)
	ListStagesByOrder(ctx context.Context, orderID string) ([]model.OrderStage, error)
}

type collectionReader interface {
	GetByID(ctx context.Context, id string) (*model.FileCollection, error)
	ListFiles(ctx context.Context, collectionID string) ([]model.CollectionFile, error)
}

type nameResolver interface {
	Resolve(ctx context.Context, ids []string) (map[string]string, error)
}

// LinkFunc builds a retrieval reference for a stored file. A nil LinkFunc
// leaves URLs empty.
type LinkFunc func(ctx context.Context, fileKey, filename string) (string, error)

type ProjectorDeps struct {
	Orders      orderGetter
	Journal     journalLister
	Photos      photoLister
	TimeEntries timeEntryLister
	Collections collectionReader
	Names       nameResolver
}

// Projector assembles the read-only views of a resource. It performs no
// token checks of its own; callers pass an already validated resource id.
type Projector struct {
	deps     ProjectorDeps
	markdown *journalRenderer
	now      func() time.Time
}

func NewProjector(deps ProjectorDeps, now func() time.Time) *Projector {
	if now == nil {
		now = time.Now
	}
	return &Projector{deps: deps, markdown: newJournalRenderer(), now: now}
}

// ProjectOrder returns ErrNotFound when the order is missing or soft-deleted.
func (p *Projector) ProjectOrder(ctx context.Context, orderID string, link LinkFunc) (*OrderView, error) {
	order, err := p.LiveOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	var (
		journal   []model.JournalEntry
		summaries []model.SummaryEntry
		photos    []model.Photo
		entries   []model.TimeEntry
		stages    []model.OrderStage
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		journal, err = p.deps.Journal.ListJournalByOrder(gctx, orderID)
		return err
	})
	g.Go(func() error {
		var err error
		summaries, err = p.deps.Journal.ListSummaryByOrder(gctx, orderID)
		return err
	})
	g.Go(func() error {
		var err error
		photos, err = p.deps.Photos.ListByOrder(gctx, orderID)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = p.deps.TimeEntries.ListByOrder(gctx, orderID)
		return err
	})
	g.Go(func() error {
		var err error
		stages, err = p.deps.TimeEntries.ListStagesByOrder(gctx, orderID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load order children: %w", err)
	}

	view := &OrderView{
		Title:        order.Title,
		Description:  order.Description,
		Summary:      order.Summary,
		Status:       order.Status,
		Priority:     order.Priority,
		CustomerName: order.CustomerName,
		CustomerRef:  order.CustomerRef,
		Location:     order.Location,
		DueDate:      order.DueDate,
		CreatedAt:    order.Ctime,
		Journal:      make([]JournalView, 0, len(journal)),
		Summaries:    make([]SummaryView, 0, len(summaries)),
		Photos:       make([]PhotoView, 0),
		TimeEntries:  make([]TimeEntryView, 0, len(entries)),
	}

	byEntry := make(map[string][]PhotoView)
	for _, photo := range photos {
		item, err := p.photoView(ctx, photo, link)
		if err != nil {
			return nil, err
		}
		if photo.JournalEntryID == "" {
			view.Photos = append(view.Photos, item)
			continue
		}
		byEntry[photo.JournalEntryID] = append(byEntry[photo.JournalEntryID], item)
	}
	for _, entry := range journal {
		html, err := p.markdown.Render(entry.Content)
		if err != nil {
			return nil, fmt.Errorf("render journal entry: %w", err)
		}
		attached := byEntry[entry.ID]
		if attached == nil {
			attached = make([]PhotoView, 0)
		}
		view.Journal = append(view.Journal, JournalView{
			Content:     entry.Content,
			ContentHTML: html,
			CreatedAt:   entry.Ctime,
			Photos:      attached,
		})
	}
	for _, entry := range summaries {
		view.Summaries = append(view.Summaries, SummaryView{Content: entry.Content, CreatedAt: entry.Ctime})
	}

	userIDs := make([]string, 0, len(entries))
	for _, entry := range entries {
		userIDs = append(userIDs, entry.UserID)
	}
	names, err := p.deps.Names.Resolve(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve technicians: %w", err)
	}
	stageNames := make(map[string]string, len(stages))
	for _, stage := range stages {
		stageNames[stage.ID] = stage.Name
	}
	var total float64
	for _, entry := range entries {
		view.TimeEntries = append(view.TimeEntries, TimeEntryView{
			Technician: names[entry.UserID],
			Stage:      stageNames[entry.StageID],
			WorkDate:   entry.WorkDate,
			Hours:      entry.Hours,
			Notes:      entry.Notes,
		})
		total += entry.Hours
	}
	view.TotalHours = math.Round(total*100) / 100
	return view, nil
}

// ProjectFileCollection returns ErrNotFound unless the collection itself is
// live, independent of any token expiry.
func (p *Projector) ProjectFileCollection(ctx context.Context, collectionID string, link LinkFunc) (*CollectionView, error) {
	collection, files, err := p.LiveCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	view := &CollectionView{
		Name:        collection.Name,
		Description: collection.Description,
		ExpiresAt:   collection.ExpiresAt,
		Files:       make([]FileView, 0, len(files)),
	}
	for _, file := range files {
		url, err := resolveLink(ctx, link, file.FileKey, file.Name)
		if err != nil {
			return nil, err
		}
		view.Files = append(view.Files, FileView{
			Name:        file.Name,
			Size:        file.Size,
			ContentType: file.ContentType,
			URL:         url,
		})
	}
	return view, nil
}

// LiveOrder returns the order unless it is missing or soft-deleted.
func (p *Projector) LiveOrder(ctx context.Context, orderID string) (*model.Order, error) {
	return p.deps.Orders.GetLive(ctx, orderID)
}

// LiveCollection loads a collection and its file list, failing with
// ErrNotFound when it has expired or been purged.
func (p *Projector) LiveCollection(ctx context.Context, collectionID string) (*model.FileCollection, []model.CollectionFile, error) {
	collection, err := p.deps.Collections.GetByID(ctx, collectionID)
	if err != nil {
		return nil, nil, err
	}
	if !collection.LiveAt(p.now().Unix()) {
		return nil, nil, appErr.ErrNotFound
	}
	files, err := p.deps.Collections.ListFiles(ctx, collectionID)
	if err != nil {
		return nil, nil, fmt.Errorf("list collection files: %w", err)
	}
	return collection, files, nil
}

func (p *Projector) photoView(ctx context.Context, photo model.Photo, link LinkFunc) (PhotoView, error) {
	url, err := resolveLink(ctx, link, photo.FileKey, photoFilename(photo))
	if err != nil {
		return PhotoView{}, err
	}
	return PhotoView{
		Caption:     photo.Caption,
		ContentType: photo.ContentType,
		Size:        photo.Size,
		URL:         url,
		CreatedAt:   photo.Ctime,
	}, nil
}

func resolveLink(ctx context.Context, link LinkFunc, fileKey, filename string) (string, error) {
	if link == nil {
		return "", nil
	}
	url, err := link(ctx, fileKey, filename)
	if err != nil {
		return "", fmt.Errorf("build file link: %w", err)
	}
	return url, nil
}

func photoFilename(photo model.Photo) string {
	if photo.Caption != "" {
		return photo.Caption
	}
	return photo.FileKey
}
