package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	storysvc "github.com/vjzest/PropCIDBack/internal/services/stories"
)

type memStoryStore struct {
	nextID  int64
	stories map[int64]storysvc.Story
}

func newMemStoryStore() *memStoryStore {
	return &memStoryStore{nextID: 1, stories: map[int64]storysvc.Story{}}
}

func (s *memStoryStore) Create(ctx context.Context, in storysvc.StoryInput) (storysvc.Story, error) {
	record := storysvc.Story{
		ID:          s.nextID,
		Title:       in.Title,
		ObjectKey:   in.ObjectKey,
		MediaURL:    in.MediaURL,
		IsVideo:     in.IsVideo,
		AuthorImage: in.AuthorImage,
		CreatedAtMS: in.CreatedAtMS,
		ExpiresAtMS: in.ExpiresAtMS,
	}
	s.stories[record.ID] = record
	s.nextID++
	return record, nil
}

func (s *memStoryStore) ListActive(ctx context.Context, nowMS int64) ([]storysvc.Story, error) {
	var out []storysvc.Story
	for _, record := range s.stories {
		if record.ExpiresAtMS > nowMS {
			out = append(out, record)
		}
	}
	return out, nil
}

func (s *memStoryStore) ListExpired(ctx context.Context, nowMS int64) ([]storysvc.Story, error) {
	var out []storysvc.Story
	for _, record := range s.stories {
		if record.ExpiresAtMS <= nowMS {
			out = append(out, record)
		}
	}
	return out, nil
}

func (s *memStoryStore) GetByID(ctx context.Context, id int64) (storysvc.Story, error) {
	record, ok := s.stories[id]
	if !ok {
		return storysvc.Story{}, storysvc.ErrStoryNotFound
	}
	return record, nil
}

func (s *memStoryStore) DeleteByID(ctx context.Context, id int64) error {
	delete(s.stories, id)
	return nil
}

type memObjectStorage struct {
	objects map[string][]byte
	putErr  error
}

func newMemObjectStorage() *memObjectStorage {
	return &memObjectStorage{objects: map[string][]byte{}}
}

func (s *memObjectStorage) EnsureBucket(ctx context.Context) error { return nil }

func (s *memObjectStorage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if s.putErr != nil {
		return s.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *memObjectStorage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://storage.test/bucket/" + key + "?sig=abc", nil
}

func (s *memObjectStorage) Delete(ctx context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func newStoryHandlerForTest(t *testing.T) (*StoryHandler, *memStoryStore, *memObjectStorage) {
	t.Helper()

	store := newMemStoryStore()
	storage := newMemObjectStorage()
	svc := storysvc.NewService(store, storage, storysvc.Config{
		TTL:         24 * time.Hour,
		AuthorImage: "https://randomuser.me/api/portraits/lego/1.jpg",
	}, nil)
	return NewStoryHandler(svc, 0), store, storage
}

func performStoryUpload(t *testing.T, h *StoryHandler, title, fileName, contentType, payload string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if title != "" {
		if err := writer.WriteField("Title", title); err != nil {
			t.Fatalf("write title field: %v", err)
		}
	}
	if fileName != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := io.Copy(part, strings.NewReader(payload)); err != nil {
			t.Fatalf("write file payload: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/story/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Upload(rec, req)
	return rec
}

func TestStoryUploadReturnsRecordWithExpiry(t *testing.T) {
	h, store, storage := newStoryHandlerForTest(t)

	rec := performStoryUpload(t, h, "Open house", "tour.mp4", "video/mp4", "fake-video-bytes")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d, body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var payload struct {
		ID           int64  `json:"id"`
		Title        string `json:"Title"`
		ProfileImage string `json:"profileImage"`
		MediaURL     string `json:"mediaUrl"`
		IsVideo      bool   `json:"isVideo"`
		CreatedAt    int64  `json:"createdAt"`
		ExpiresAt    int64  `json:"expiresAt"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if payload.ID == 0 {
		t.Fatalf("expected a story id, got 0")
	}
	if payload.Title != "Open house" {
		t.Fatalf("unexpected title: got %q", payload.Title)
	}
	if !payload.IsVideo {
		t.Fatalf("expected isVideo=true for video/mp4")
	}
	if payload.ExpiresAt != payload.CreatedAt+int64(24*time.Hour/time.Millisecond) {
		t.Fatalf("expiry is not 24h after creation: created %d expires %d", payload.CreatedAt, payload.ExpiresAt)
	}
	if !strings.Contains(payload.MediaURL, "stories/") {
		t.Fatalf("media url does not reference the stories prefix: %q", payload.MediaURL)
	}
	if len(store.stories) != 1 {
		t.Fatalf("expected 1 stored record, got %d", len(store.stories))
	}
	if len(storage.objects) != 1 {
		t.Fatalf("expected 1 stored blob, got %d", len(storage.objects))
	}
}

func TestStoryUploadRejectsMissingFile(t *testing.T) {
	h, store, _ := newStoryHandlerForTest(t)

	rec := performStoryUpload(t, h, "No file", "", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusBadRequest)
	}
	if len(store.stories) != 0 {
		t.Fatalf("expected no stored records, got %d", len(store.stories))
	}
}

func TestStoryUploadRejectsMissingTitle(t *testing.T) {
	h, _, storage := newStoryHandlerForTest(t)

	rec := performStoryUpload(t, h, "", "pic.jpg", "image/jpeg", "jpeg-bytes")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusBadRequest)
	}

	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error code: got %q want %q", payload.Code, "VALIDATION_ERROR")
	}
	if len(storage.objects) != 0 {
		t.Fatalf("expected no stored blobs, got %d", len(storage.objects))
	}
}

func TestStoryUploadReportsUploadFailure(t *testing.T) {
	h, store, storage := newStoryHandlerForTest(t)
	storage.putErr = fmt.Errorf("connection refused")

	rec := performStoryUpload(t, h, "Broken", "pic.jpg", "image/jpeg", "jpeg-bytes")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusInternalServerError)
	}

	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "UPLOAD_FAILED" {
		t.Fatalf("unexpected error code: got %q want %q", payload.Code, "UPLOAD_FAILED")
	}
	if len(store.stories) != 0 {
		t.Fatalf("expected no stored records after failed upload, got %d", len(store.stories))
	}
}

func TestStoryListReturnsOnlyActive(t *testing.T) {
	h, store, _ := newStoryHandlerForTest(t)

	nowMS := time.Now().UnixMilli()
	if _, err := store.Create(context.Background(), storysvc.StoryInput{
		Title: "Fresh", ObjectKey: "stories/a_fresh.jpg", MediaURL: "https://storage.test/b/stories/a_fresh.jpg",
		CreatedAtMS: nowMS, ExpiresAtMS: nowMS + 3_600_000,
	}); err != nil {
		t.Fatalf("seed fresh story: %v", err)
	}
	if _, err := store.Create(context.Background(), storysvc.StoryInput{
		Title: "Stale", ObjectKey: "stories/b_stale.jpg", MediaURL: "https://storage.test/b/stories/b_stale.jpg",
		CreatedAtMS: nowMS - 90_000_000, ExpiresAtMS: nowMS - 3_600_000,
	}); err != nil {
		t.Fatalf("seed stale story: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/story", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusOK)
	}

	var items []struct {
		Title string `json:"Title"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Fresh" {
		t.Fatalf("expected only the fresh story, got %+v", items)
	}
}

func TestStoryDeleteRemovesRecordAndBlob(t *testing.T) {
	h, store, storage := newStoryHandlerForTest(t)

	rec := performStoryUpload(t, h, "Short lived", "pic.jpg", "image/jpeg", "jpeg-bytes")
	if rec.Code != http.StatusOK {
		t.Fatalf("seed upload failed: %d %s", rec.Code, rec.Body.String())
	}

	router := chi.NewRouter()
	router.Delete("/story/{storyId}", h.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/story/1", nil)
	delRec := httptest.NewRecorder()
	router.ServeHTTP(delRec, req)

	if delRec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d, body %s", delRec.Code, http.StatusOK, delRec.Body.String())
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(delRec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Message != "Story deleted successfully" {
		t.Fatalf("unexpected message: %q", payload.Message)
	}
	if len(store.stories) != 0 {
		t.Fatalf("expected record removed, got %d left", len(store.stories))
	}
	if len(storage.objects) != 0 {
		t.Fatalf("expected blob removed, got %d left", len(storage.objects))
	}
}

func TestStoryDeleteRejectsBadID(t *testing.T) {
	h, _, _ := newStoryHandlerForTest(t)

	router := chi.NewRouter()
	router.Delete("/story/{storyId}", h.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/story/not-a-number", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusBadRequest)
	}
}
