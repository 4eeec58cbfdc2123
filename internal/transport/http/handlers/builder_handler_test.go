package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	authsvc "github.com/vjzest/PropCIDBack/internal/services/auth"
	buildersvc "github.com/vjzest/PropCIDBack/internal/services/builders"
)

type memBuilderStore struct {
	upserts  int
	lastUID  string
	lastProf buildersvc.Profile
	lastURL  *string
}

func (s *memBuilderStore) Upsert(ctx context.Context, uid string, profile buildersvc.Profile, profileImageURL *string) error {
	s.upserts++
	s.lastUID = uid
	s.lastProf = profile
	s.lastURL = profileImageURL
	return nil
}

func performProfileUpdate(t *testing.T, h *BuilderHandler, fields map[string]string, withIdentity bool) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/builder/profile", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if withIdentity {
		req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
			UID:      "builder-7",
			SID:      "sid-7",
			UserType: authsvc.TypeBuilder,
		}))
	}
	rec := httptest.NewRecorder()
	h.UpdateProfile(rec, req)
	return rec
}

func TestBuilderProfileUpdateMergesFields(t *testing.T) {
	store := &memBuilderStore{}
	h := NewBuilderHandler(buildersvc.NewService(store, newMemObjectStorage()))

	rec := performProfileUpdate(t, h, map[string]string{
		"companyName":       "Skyline Estates",
		"teamSize":          "42",
		"yearsOfExperience": "12",
	}, true)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d, body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if store.upserts != 1 {
		t.Fatalf("expected one upsert, got %d", store.upserts)
	}
	if store.lastUID != "builder-7" {
		t.Fatalf("unexpected uid: %q", store.lastUID)
	}
	if store.lastProf.CompanyName == nil || *store.lastProf.CompanyName != "Skyline Estates" {
		t.Fatalf("company name not carried: %+v", store.lastProf.CompanyName)
	}
	if store.lastProf.TeamSize == nil || *store.lastProf.TeamSize != 42 {
		t.Fatalf("team size not carried: %+v", store.lastProf.TeamSize)
	}
	if store.lastProf.Phone != nil {
		t.Fatalf("absent field must stay nil, got %q", *store.lastProf.Phone)
	}
	if store.lastURL != nil {
		t.Fatalf("no image uploaded, expected nil image url")
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Message != "Builder profile updated successfully" {
		t.Fatalf("unexpected message: %q", payload.Message)
	}
}

func TestBuilderProfileUpdateRequiresIdentity(t *testing.T) {
	store := &memBuilderStore{}
	h := NewBuilderHandler(buildersvc.NewService(store, newMemObjectStorage()))

	rec := performProfileUpdate(t, h, map[string]string{"companyName": "Ghost Co"}, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusUnauthorized)
	}
	if store.upserts != 0 {
		t.Fatalf("expected no upsert without identity, got %d", store.upserts)
	}
}

func TestBuilderProfileUpdateRejectsBadNumber(t *testing.T) {
	store := &memBuilderStore{}
	h := NewBuilderHandler(buildersvc.NewService(store, newMemObjectStorage()))

	rec := performProfileUpdate(t, h, map[string]string{"teamSize": "lots"}, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusBadRequest)
	}
	if store.upserts != 0 {
		t.Fatalf("expected no upsert on invalid input, got %d", store.upserts)
	}
}
