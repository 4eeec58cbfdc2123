package stories

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrPayloadTooLarge  = errors.New("payload too large")
	ErrInvalidMediaType = errors.New("invalid media type")
	ErrUpload           = errors.New("upload failed")
	ErrStoreUnavailable = errors.New("story store unavailable")
	ErrStoryNotFound    = errors.New("story not found")
)

const (
	DefaultTTL           = 24 * time.Hour
	DefaultMaxUploadSize = 50 << 20
	objectPrefix         = "stories/"
)

// Story is one ephemeral post. ObjectKey is the authoritative pointer to the
// stored blob; MediaURL is a presigned read URL issued at creation with the
// same expiry as the record, so it stays valid for the whole active window.
type Story struct {
	ID          int64
	Title       string
	ObjectKey   string
	MediaURL    string
	IsVideo     bool
	AuthorImage string
	CreatedAtMS int64
	ExpiresAtMS int64
}

type StoryInput struct {
	Title       string
	ObjectKey   string
	MediaURL    string
	IsVideo     bool
	AuthorImage string
	CreatedAtMS int64
	ExpiresAtMS int64
}

type Store interface {
	Create(ctx context.Context, in StoryInput) (Story, error)
	ListActive(ctx context.Context, nowMS int64) ([]Story, error)
	ListExpired(ctx context.Context, nowMS int64) ([]Story, error)
	GetByID(ctx context.Context, id int64) (Story, error)
	DeleteByID(ctx context.Context, id int64) error
}

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type Config struct {
	TTL           time.Duration
	MaxUploadSize int64
	AuthorImage   string
}

type Service struct {
	store   Store
	storage ObjectStorage
	cfg     Config
	logger  *zap.Logger
	now     func() time.Time
}

type CreateInput struct {
	Title       string
	FileName    string
	ContentType string
	Body        io.Reader
	Size        int64
}

func NewService(store Store, storage ObjectStorage, cfg Config, logger *zap.Logger) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = DefaultMaxUploadSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:   store,
		storage: storage,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Create streams the payload to object storage first and persists the record
// only after the write completed. A failed record insert triggers a
// compensating blob delete so no orphaned object outlives the call.
func (s *Service) Create(ctx context.Context, in CreateInput) (Story, error) {
	if strings.TrimSpace(in.Title) == "" || in.Body == nil || in.Size <= 0 {
		return Story{}, ErrValidation
	}
	if in.Size > s.cfg.MaxUploadSize {
		return Story{}, ErrPayloadTooLarge
	}
	if strings.TrimSpace(in.ContentType) == "" {
		return Story{}, ErrInvalidMediaType
	}
	if s.store == nil || s.storage == nil {
		return Story{}, fmt.Errorf("story dependencies are not configured")
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return Story{}, fmt.Errorf("ensure bucket: %w", err)
	}

	objectKey := buildObjectKey(in.FileName)

	if err := s.storage.Put(ctx, objectKey, in.Body, in.Size, in.ContentType); err != nil {
		_ = s.storage.Delete(ctx, objectKey)
		return Story{}, fmt.Errorf("%w: %v", ErrUpload, err)
	}

	mediaURL, err := s.storage.PresignGet(ctx, objectKey, s.cfg.TTL)
	if err != nil {
		_ = s.storage.Delete(ctx, objectKey)
		return Story{}, fmt.Errorf("%w: presign media url: %v", ErrUpload, err)
	}

	now := s.now().UTC()
	record, err := s.store.Create(ctx, StoryInput{
		Title:       strings.TrimSpace(in.Title),
		ObjectKey:   objectKey,
		MediaURL:    mediaURL,
		IsVideo:     strings.HasPrefix(in.ContentType, "video/"),
		AuthorImage: s.cfg.AuthorImage,
		CreatedAtMS: now.UnixMilli(),
		ExpiresAtMS: now.Add(s.cfg.TTL).UnixMilli(),
	})
	if err != nil {
		_ = s.storage.Delete(ctx, objectKey)
		return Story{}, fmt.Errorf("create story record: %w", err)
	}

	return record, nil
}

func (s *Service) ListActive(ctx context.Context) ([]Story, error) {
	if s.store == nil {
		return nil, fmt.Errorf("story store is not configured")
	}

	records, err := s.store.ListActive(ctx, s.now().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("list active stories: %w", err)
	}
	return records, nil
}

// Delete removes the blob best-effort and the record authoritatively. A
// failed blob delete is logged and does not fail the call: an orphaned blob
// is harmless next to a record the user cannot remove. Deleting an id that
// no longer exists is not an error.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrValidation
	}
	if s.store == nil {
		return fmt.Errorf("story store is not configured")
	}

	record, err := s.store.GetByID(ctx, id)
	switch {
	case err == nil:
		key := ResolveObjectKey(record)
		if key == "" {
			s.logger.Warn("story media url does not map to an object key, skipping blob delete",
				zap.Int64("story_id", id))
		} else if s.storage != nil {
			if err := s.storage.Delete(ctx, key); err != nil {
				s.logger.Warn("failed to delete story blob",
					zap.Error(err), zap.Int64("story_id", id), zap.String("object_key", key))
			}
		}
	case errors.Is(err, ErrStoryNotFound):
		// Already gone; record delete below stays a no-op.
	default:
		return fmt.Errorf("get story: %w", err)
	}

	if err := s.store.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete story record: %w", err)
	}
	return nil
}

// ResolveObjectKey prefers the stored object key and falls back to extracting
// it from the media URL path for records created before the key was persisted.
// An empty result means the blob is unresolvable and must be skipped.
func ResolveObjectKey(record Story) string {
	if strings.TrimSpace(record.ObjectKey) != "" {
		return record.ObjectKey
	}
	return objectKeyFromURL(record.MediaURL)
}

func objectKeyFromURL(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	p := strings.TrimPrefix(u.Path, "/")
	idx := strings.Index(p, objectPrefix)
	if idx < 0 {
		return ""
	}
	key := p[idx:]
	if key == objectPrefix {
		return ""
	}
	return key
}

func buildObjectKey(fileName string) string {
	name := path.Base(strings.TrimSpace(fileName))
	if name == "" || name == "." || name == "/" {
		name = "upload.bin"
	}
	return objectPrefix + uuid.NewString() + "_" + name
}
