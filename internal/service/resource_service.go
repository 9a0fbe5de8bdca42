package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/url"
	"strings"
	"sync"
	"time"

	"team-dashboard/backend/internal/models"
	"team-dashboard/backend/internal/repository"
	"team-dashboard/backend/pkg/events"
	"team-dashboard/backend/pkg/logger"
	"team-dashboard/backend/shared/observability"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ResourceServiceConfig defines limits for uploads
type ResourceServiceConfig struct {
	MaxFileSize int64
	// Concurrency bounds how many files are read at once
	Concurrency int
}

// DefaultResourceServiceConfig returns default configuration
func DefaultResourceServiceConfig() ResourceServiceConfig {
	return ResourceServiceConfig{
		MaxFileSize: 32 << 20,
		Concurrency: 4,
	}
}

// ResourceService owns the scene_resources and character_resources keys
type ResourceService struct {
	repo       repository.ResourceRepository
	storageBus events.Bus
	config     ResourceServiceConfig
	metrics    *observability.Metrics
	log        *logger.Logger
	locks      *keyedMutex

	now   func() time.Time
	newID func() string
}

// NewResourceService creates a new resource service
func NewResourceService(
	repo repository.ResourceRepository,
	storageBus events.Bus,
	config ResourceServiceConfig,
	metrics *observability.Metrics,
	log *logger.Logger,
) *ResourceService {
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	if metrics == nil {
		metrics = observability.NoopMetrics()
	}
	if log == nil {
		log = logger.Discard()
	}
	return &ResourceService{
		repo:       repo,
		storageBus: storageBus,
		config:     config,
		metrics:    metrics,
		log:        log,
		locks:      newKeyedMutex(),
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

func (s *ResourceService) lock(profileID string, c models.Collection) func() {
	return s.locks.Lock(profileID + ":" + c.StorageKey())
}

// IsMedia reports whether a MIME type is stored by the galleries
func IsMedia(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") || strings.HasPrefix(contentType, "video/")
}

// Upload reads the files concurrently and appends each media file to the
// collection as soon as it has been read. Files of other types are skipped.
// The returned resources are in completion order. A failing file does not
// stop the others; the first failure is returned alongside what was stored.
func (s *ResourceService) Upload(
	ctx context.Context,
	scope models.Scope,
	c models.Collection,
	uploader string,
	files []models.Upload,
) ([]models.Resource, error) {
	ctx, span := observability.Tracer().Start(ctx, "ResourceService.Upload")
	defer span.End()

	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	var (
		mu      sync.Mutex
		results = make([]models.Resource, 0, len(files))
		g       errgroup.Group
	)
	g.SetLimit(s.config.Concurrency)

	for _, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			r, ok, err := s.read(f, uploader)
			if err != nil {
				s.log.Warn("Failed to read upload", "file", f.Name, "error", err.Error())
				return err
			}
			if !ok {
				s.metrics.ResourceSkipped(ctx, string(c))
				s.log.Debug("Skipping non-media upload", "file", f.Name, "type", r.Type)
				return nil
			}

			stored, err := s.appendOne(ctx, scope, c, r)
			if err != nil {
				return err
			}

			kind := "image"
			if stored.IsVideo() {
				kind = "video"
			}
			s.metrics.ResourceUploaded(ctx, string(c), kind)

			mu.Lock()
			results = append(results, stored)
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	return results, err
}

// read turns one upload into an unsaved resource. ok is false for files that
// are not images or videos.
func (s *ResourceService) read(f models.Upload, uploader string) (r models.Resource, ok bool, err error) {
	r = models.Resource{
		Name:       f.Name,
		Type:       declaredType(f.Type),
		UploadedBy: uploader,
	}
	if r.Type != "" && !IsMedia(r.Type) {
		return r, false, nil
	}
	if s.config.MaxFileSize > 0 && f.Size > s.config.MaxFileSize {
		return r, false, fmt.Errorf("%w: %s", ErrFileTooLarge, f.Name)
	}

	rc, err := f.Open()
	if err != nil {
		return r, false, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	var src io.Reader = rc
	if s.config.MaxFileSize > 0 {
		src = io.LimitReader(rc, s.config.MaxFileSize+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return r, false, fmt.Errorf("read %s: %w", f.Name, err)
	}
	if s.config.MaxFileSize > 0 && int64(len(data)) > s.config.MaxFileSize {
		return r, false, fmt.Errorf("%w: %s", ErrFileTooLarge, f.Name)
	}

	if r.Type == "" {
		r.Type, _, _ = strings.Cut(mimetype.Detect(data).String(), ";")
		if !IsMedia(r.Type) {
			return r, false, nil
		}
	}

	r.Data = EncodeDataURI(r.Type, data)
	return r, true, nil
}

// declaredType strips parameters from a client content type. The generic
// binary type counts as undeclared so the payload gets sniffed.
func declaredType(contentType string) string {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	if contentType == "application/octet-stream" {
		return ""
	}
	return contentType
}

func (s *ResourceService) appendOne(ctx context.Context, scope models.Scope, c models.Collection, r models.Resource) (models.Resource, error) {
	unlock := s.lock(scope.ProfileID, c)
	resources, err := s.repo.List(ctx, scope.ProfileID, c)
	if err != nil {
		unlock()
		return r, err
	}

	taken := make(map[string]struct{}, len(resources))
	for _, existing := range resources {
		taken[existing.ID] = struct{}{}
	}
	r.ID = s.newID()
	for {
		if _, dup := taken[r.ID]; !dup {
			break
		}
		r.ID = s.newID()
	}
	r.UploadDate = s.now().UTC().Format(time.RFC3339)

	err = s.repo.Replace(ctx, scope.ProfileID, c, append(resources, r))
	unlock()
	if err != nil {
		return r, err
	}

	s.notify(ctx, scope, c)
	return r, nil
}

// Remove deletes id from the collection. Removing an absent id is a no-op
// and reports false.
func (s *ResourceService) Remove(ctx context.Context, scope models.Scope, c models.Collection, id string) (bool, error) {
	unlock := s.lock(scope.ProfileID, c)
	resources, err := s.repo.List(ctx, scope.ProfileID, c)
	if err != nil {
		unlock()
		return false, err
	}

	kept := make([]models.Resource, 0, len(resources))
	for _, r := range resources {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(resources) {
		unlock()
		return false, nil
	}

	err = s.repo.Replace(ctx, scope.ProfileID, c, kept)
	unlock()
	if err != nil {
		return false, err
	}

	s.metrics.ResourceRemoved(ctx, string(c))
	s.notify(ctx, scope, c)
	return true, nil
}

// LoadAll returns the collection in stored order
func (s *ResourceService) LoadAll(ctx context.Context, profileID string, c models.Collection) ([]models.Resource, error) {
	return s.repo.List(ctx, profileID, c)
}

// Get returns one resource of the collection
func (s *ResourceService) Get(ctx context.Context, profileID string, c models.Collection, id string) (*models.Resource, error) {
	resources, err := s.repo.List(ctx, profileID, c)
	if err != nil {
		return nil, err
	}
	for i := range resources {
		if resources[i].ID == id {
			return &resources[i], nil
		}
	}
	return nil, ErrResourceNotFound
}

// Preview builds a new overlay for r; every call gets its own overlay id
func (s *ResourceService) Preview(r models.Resource) models.Preview {
	return models.Preview{
		OverlayID: "preview-" + s.newID(),
		Resource:  r,
		Video:     r.IsVideo(),
		Autoplay:  r.IsVideo(),
	}
}

// Download decodes the embedded payload of r
func (s *ResourceService) Download(r models.Resource) (*models.Download, error) {
	contentType, body, err := DecodeDataURI(r.Data)
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = r.Type
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &models.Download{Name: r.Name, ContentType: contentType, Body: body}, nil
}

func (s *ResourceService) notify(ctx context.Context, scope models.Scope, c models.Collection) {
	err := s.storageBus.Publish(ctx, events.Event{
		Topic:   events.TopicStorage,
		Profile: scope.ProfileID,
		Page:    scope.PageID,
		Key:     c.StorageKey(),
		At:      s.now(),
	})
	if err != nil {
		s.log.Warn("Failed to publish storage change", "key", c.StorageKey(), "error", err.Error())
	}
}

// EncodeDataURI embeds data as a base64 data URI
func EncodeDataURI(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI returns the media type and payload of a data URI. Both base64
// and percent-encoded payloads are accepted.
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}

	isBase64 := false
	if m, found := strings.CutSuffix(meta, ";base64"); found {
		meta = m
		isBase64 = true
	}
	contentType, _, _ := strings.Cut(meta, ";")

	if isBase64 {
		body, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
		}
		return contentType, body, nil
	}

	text, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return contentType, []byte(text), nil
}
