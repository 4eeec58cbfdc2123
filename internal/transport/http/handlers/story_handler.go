package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	storysvc "github.com/vjzest/PropCIDBack/internal/services/stories"
	"github.com/vjzest/PropCIDBack/internal/transport/http/dto"
	httperrors "github.com/vjzest/PropCIDBack/internal/transport/http/errors"
)

type StoryHandler struct {
	service       *storysvc.Service
	maxUploadSize int64
}

func NewStoryHandler(service *storysvc.Service, maxUploadSize int64) *StoryHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = storysvc.DefaultMaxUploadSize
	}
	return &StoryHandler{service: service, maxUploadSize: maxUploadSize}
}

func (h *StoryHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "STORY_SERVICE_UNAVAILABLE", "story service is unavailable")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "file is required")
		return
	}
	defer file.Close()

	if header == nil || header.Size <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "file is empty")
		return
	}

	story, err := h.service.Create(r.Context(), storysvc.CreateInput{
		Title:       r.FormValue("Title"),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
		Size:        header.Size,
	})
	if err != nil {
		handleStoryError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, storyResponse(story))
}

func (h *StoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "STORY_SERVICE_UNAVAILABLE", "story service is unavailable")
		return
	}

	records, err := h.service.ListActive(r.Context())
	if err != nil {
		handleStoryError(w, err)
		return
	}

	items := make([]dto.StoryResponse, 0, len(records))
	for _, record := range records {
		items = append(items, storyResponse(record))
	}

	httperrors.Write(w, http.StatusOK, items)
}

func (h *StoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "STORY_SERVICE_UNAVAILABLE", "story service is unavailable")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "storyId"), 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid story id")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleStoryError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MessageResponse{Message: "Story deleted successfully"})
}

func handleStoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storysvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "file and Title are required")
	case errors.Is(err, storysvc.ErrInvalidMediaType):
		writeBadRequest(w, "INVALID_MEDIA_TYPE", "a media content type is required")
	case errors.Is(err, storysvc.ErrPayloadTooLarge):
		httperrors.Write(w, http.StatusRequestEntityTooLarge, httperrors.APIError{
			Code:    "PAYLOAD_TOO_LARGE",
			Message: "uploaded file exceeds the allowed size",
		})
	case errors.Is(err, storysvc.ErrUpload):
		writeInternal(w, "UPLOAD_FAILED", "failed to store the uploaded file")
	case errors.Is(err, storysvc.ErrStoreUnavailable):
		writeInternal(w, "STORE_UNAVAILABLE", "story store is unavailable")
	default:
		writeInternal(w, "INTERNAL_ERROR", "story operation failed")
	}
}

func storyResponse(record storysvc.Story) dto.StoryResponse {
	return dto.StoryResponse{
		ID:           record.ID,
		Title:        record.Title,
		ProfileImage: record.AuthorImage,
		MediaURL:     record.MediaURL,
		IsVideo:      record.IsVideo,
		CreatedAt:    record.CreatedAtMS,
		ExpiresAt:    record.ExpiresAtMS,
	}
}
