package builders

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrValidation = errors.New("validation error")

const (
	objectPrefix    = "profiles/"
	maxImageSize    = 10 << 20
	imagePresignTTL = 7 * 24 * time.Hour
)

// Profile carries the merge-style update for a builder document: nil fields
// keep their stored value.
type Profile struct {
	CompanyName        *string
	Email              *string
	Phone              *string
	Address            *string
	RegistrationNumber *string
	About              *string
	Website            *string
	TotalRevenue       *string
	YearsOfExperience  *int
	CompletedProjects  *int
	ActiveProjects     *int
	TeamSize           *int
	Specialties        []string
	Certifications     []string
	Awards             []string
}

type Upload struct {
	FileName    string
	ContentType string
	Body        io.Reader
	Size        int64
}

type Store interface {
	Upsert(ctx context.Context, uid string, profile Profile, profileImageURL *string) error
}

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type Service struct {
	store   Store
	storage ObjectStorage
}

func NewService(store Store, storage ObjectStorage) *Service {
	return &Service{store: store, storage: storage}
}

// UpdateProfile merges the given fields into the builder's profile document.
// When an image is supplied it is stored first and its URL joins the update;
// the returned URL is empty when no image was uploaded.
func (s *Service) UpdateProfile(ctx context.Context, uid string, profile Profile, image *Upload) (string, error) {
	if strings.TrimSpace(uid) == "" {
		return "", ErrValidation
	}
	if s.store == nil {
		return "", fmt.Errorf("builder store is not configured")
	}

	var imageURL *string
	if image != nil {
		if s.storage == nil {
			return "", fmt.Errorf("builder storage is not configured")
		}
		if image.Body == nil || image.Size <= 0 || image.Size > maxImageSize {
			return "", ErrValidation
		}

		contentType := strings.TrimSpace(image.ContentType)
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		if err := s.storage.EnsureBucket(ctx); err != nil {
			return "", fmt.Errorf("ensure bucket: %w", err)
		}

		key := buildImageKey(image.FileName)
		if err := s.storage.Put(ctx, key, image.Body, image.Size, contentType); err != nil {
			_ = s.storage.Delete(ctx, key)
			return "", fmt.Errorf("put profile image: %w", err)
		}

		url, err := s.storage.PresignGet(ctx, key, imagePresignTTL)
		if err != nil {
			_ = s.storage.Delete(ctx, key)
			return "", fmt.Errorf("presign profile image url: %w", err)
		}
		imageURL = &url
	}

	if err := s.store.Upsert(ctx, uid, profile, imageURL); err != nil {
		return "", fmt.Errorf("upsert builder profile: %w", err)
	}

	if imageURL == nil {
		return "", nil
	}
	return *imageURL, nil
}

func buildImageKey(fileName string) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
	if ext == "" {
		ext = ".bin"
	}
	return objectPrefix + uuid.NewString() + ext
}
