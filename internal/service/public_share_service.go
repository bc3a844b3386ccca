package service

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/fieldorder/internal/filestore"
	"github.com/xxxsen/fieldorder/internal/model"
	appErr "github.com/xxxsen/fieldorder/internal/pkg/errors"
)

const publicSharePath = "/api/v1/public/share/"

type photoFinder interface {
	GetByFileKey(ctx context.Context, orderID, fileKey string) (*model.Photo, error)
}

type collectionFileFinder interface {
	GetFileByKey(ctx context.Context, collectionID, fileKey string) (*model.CollectionFile, error)
}

type PublicShareDeps struct {
	Shares          *ShareService
	Projector       *Projector
	Photos          photoFinder
	CollectionFiles collectionFileFinder
	Store           filestore.Store
	Settings        *model.Settings
	BaseURL         string
	LinkTTL         time.Duration
}

// PublicShareService is the anonymous boundary: validate, then project.
// Every failure other than a storage error becomes ErrShareUnavailable.
type PublicShareService struct {
	deps     PublicShareDeps
	branding Branding
	baseURL  string
}

func NewPublicShareService(deps PublicShareDeps) *PublicShareService {
	return &PublicShareService{
		deps:     deps,
		branding: brandingFrom(deps.Settings),
		baseURL:  strings.TrimRight(deps.BaseURL, "/"),
	}
}

// Branding is the company presentation attached to every share page.
func (s *PublicShareService) Branding() Branding {
	return s.branding
}

// SharedFile is an open stored file; the caller closes Body.
type SharedFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

func (s *PublicShareService) Open(ctx context.Context, token string) (*PublicShareView, error) {
	result, err := s.validate(ctx, token)
	if err != nil {
		return nil, err
	}
	view := &PublicShareView{Kind: result.ResourceKind, ExpiresAt: result.ExpiresAt, Branding: s.branding}
	switch result.ResourceKind {
	case model.ResourceKindOrder:
		order, err := s.deps.Projector.ProjectOrder(ctx, result.ResourceID, s.linkFunc(token))
		if err != nil {
			return nil, s.unavailable(ctx, result.TokenID, "resource_gone", err)
		}
		view.Order = order
	case model.ResourceKindFileCollection:
		collection, err := s.projectCollection(ctx, token, result)
		if err != nil {
			return nil, err
		}
		view.Collection = collection
	default:
		return nil, s.unavailable(ctx, result.TokenID, "kind_mismatch", nil)
	}
	return view, nil
}

// OpenFile streams one stored file belonging to the token's resource.
func (s *PublicShareService) OpenFile(ctx context.Context, token, fileKey string) (*SharedFile, error) {
	result, err := s.validate(ctx, token)
	if err != nil {
		return nil, err
	}
	var file SharedFile
	switch result.ResourceKind {
	case model.ResourceKindOrder:
		if _, err := s.deps.Projector.LiveOrder(ctx, result.ResourceID); err != nil {
			return nil, s.unavailable(ctx, result.TokenID, "resource_gone", err)
		}
		photo, err := s.deps.Photos.GetByFileKey(ctx, result.ResourceID, fileKey)
		if err != nil {
			return nil, s.unavailable(ctx, result.TokenID, "file_not_in_resource", err)
		}
		file = SharedFile{Name: photoFilename(*photo), ContentType: photo.ContentType, Size: photo.Size}
	case model.ResourceKindFileCollection:
		if _, _, err := s.deps.Projector.LiveCollection(ctx, result.ResourceID); err != nil {
			return nil, s.unavailable(ctx, result.TokenID, "resource_gone", err)
		}
		item, err := s.deps.CollectionFiles.GetFileByKey(ctx, result.ResourceID, fileKey)
		if err != nil {
			return nil, s.unavailable(ctx, result.TokenID, "file_not_in_resource", err)
		}
		file = SharedFile{Name: item.Name, ContentType: item.ContentType, Size: item.Size}
	default:
		return nil, s.unavailable(ctx, result.TokenID, "kind_mismatch", nil)
	}
	body, err := s.deps.Store.Open(ctx, fileKey)
	if err != nil {
		if errors.Is(err, filestore.ErrNotExist) {
			return nil, s.unavailable(ctx, result.TokenID, "object_missing", nil)
		}
		return nil, fmt.Errorf("open stored file: %w", err)
	}
	file.Body = body
	return &file, nil
}

// ShareArchive is a validated file collection ready to be zipped.
type ShareArchive struct {
	Name    string
	tokenID string
	files   []model.CollectionFile
	store   filestore.Store
}

// PrepareArchive validates once and snapshots the file list; Write then
// streams without re-checking.
func (s *PublicShareService) PrepareArchive(ctx context.Context, token string) (*ShareArchive, error) {
	result, err := s.validateKind(ctx, token, model.ResourceKindFileCollection)
	if err != nil {
		return nil, err
	}
	collection, files, err := s.deps.Projector.LiveCollection(ctx, result.ResourceID)
	if err != nil {
		return nil, s.unavailable(ctx, result.TokenID, "resource_gone", err)
	}
	return &ShareArchive{
		Name:    archiveName(collection.Name),
		tokenID: result.TokenID,
		files:   files,
		store:   s.deps.Store,
	}, nil
}

func (a *ShareArchive) Write(ctx context.Context, w io.Writer) error {
	zw := zip.NewWriter(w)
	used := make(map[string]int, len(a.files))
	for _, file := range a.files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.writeEntry(ctx, zw, file, uniqueEntryName(used, file.Name)); err != nil {
			return err
		}
	}
	return zw.Close()
}

func (a *ShareArchive) writeEntry(ctx context.Context, zw *zip.Writer, file model.CollectionFile, name string) error {
	body, err := a.store.Open(ctx, file.FileKey)
	if err != nil {
		if errors.Is(err, filestore.ErrNotExist) {
			logutil.GetLogger(ctx).Warn("archive skips missing object",
				zap.String("token_id", a.tokenID),
				zap.String("file_key", file.FileKey),
			)
			return nil
		}
		return fmt.Errorf("open stored file: %w", err)
	}
	defer func() { _ = body.Close() }()
	header := &zip.FileHeader{Name: name, Method: zip.Deflate}
	if file.Ctime > 0 {
		header.Modified = time.Unix(file.Ctime, 0)
	}
	entry, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(entry, body); err != nil {
		return fmt.Errorf("write archive entry: %w", err)
	}
	return nil
}

func (s *PublicShareService) projectCollection(ctx context.Context, token string, result ValidationResult) (*CollectionView, error) {
	view, err := s.deps.Projector.ProjectFileCollection(ctx, result.ResourceID, s.linkFunc(token))
	if err != nil {
		return nil, s.unavailable(ctx, result.TokenID, "resource_gone", err)
	}
	view.ArchiveURL = s.gatedURL(token, "archive")
	return view, nil
}

func (s *PublicShareService) validate(ctx context.Context, token string) (ValidationResult, error) {
	result, err := s.deps.Shares.Validate(ctx, token)
	if err != nil {
		logutil.GetLogger(ctx).Error("validate share token failed", zap.Error(err))
		return ValidationResult{}, err
	}
	if !result.Valid {
		return ValidationResult{}, appErr.ErrShareUnavailable
	}
	return result, nil
}

func (s *PublicShareService) validateKind(ctx context.Context, token string, kind model.ResourceKind) (ValidationResult, error) {
	result, err := s.validate(ctx, token)
	if err != nil {
		return ValidationResult{}, err
	}
	if result.ResourceKind != kind {
		return ValidationResult{}, s.unavailable(ctx, result.TokenID, "kind_mismatch", nil)
	}
	return result, nil
}

// unavailable collapses not-found style causes into ErrShareUnavailable and
// passes storage failures through. The cause is logged, never returned.
func (s *PublicShareService) unavailable(ctx context.Context, tokenID, reason string, cause error) error {
	logger := logutil.GetLogger(ctx).With(zap.String("token_id", tokenID))
	if cause != nil && !appErr.IsNotFound(cause) {
		logger.Error("share read failed", zap.String("stage", reason), zap.Error(cause))
		return cause
	}
	logger.Info("share unavailable", zap.String("reason", reason))
	return appErr.ErrShareUnavailable
}

func (s *PublicShareService) linkFunc(token string) LinkFunc {
	presigner, ok := s.deps.Store.(filestore.Presigner)
	if ok && s.deps.LinkTTL > 0 {
		return func(ctx context.Context, fileKey, filename string) (string, error) {
			return presigner.PresignGet(ctx, fileKey, filename, s.deps.LinkTTL)
		}
	}
	return func(_ context.Context, fileKey, _ string) (string, error) {
		return s.gatedURL(token, "files/"+url.PathEscape(fileKey)), nil
	}
}

func (s *PublicShareService) gatedURL(token, suffix string) string {
	return s.baseURL + publicSharePath + url.PathEscape(token) + "/" + suffix
}

func archiveName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "files"
	}
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', ':', '*', '?', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
	return name + ".zip"
}

func uniqueEntryName(used map[string]int, name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	name = strings.TrimLeft(name, "/")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	if name == "" || name == "." || name == ".." {
		name = "file"
	}
	count := used[name]
	used[name] = count + 1
	if count == 0 {
		return name
	}
	ext := ""
	base := name
	if idx := strings.LastIndex(name, "."); idx > 0 {
		base, ext = name[:idx], name[idx:]
	}
	return base + " (" + strconv.Itoa(count) + ")" + ext
}
