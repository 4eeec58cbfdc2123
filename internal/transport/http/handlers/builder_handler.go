package handlers

import (
	"errors"
	"net/http"
	"strconv"

	authsvc "github.com/vjzest/PropCIDBack/internal/services/auth"
	buildersvc "github.com/vjzest/PropCIDBack/internal/services/builders"
	"github.com/vjzest/PropCIDBack/internal/transport/http/dto"
	httperrors "github.com/vjzest/PropCIDBack/internal/transport/http/errors"
)

const maxProfileFormSize = 12 << 20

type BuilderHandler struct {
	service *buildersvc.Service
}

func NewBuilderHandler(service *buildersvc.Service) *BuilderHandler {
	return &BuilderHandler{service: service}
}

func (h *BuilderHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "BUILDER_SERVICE_UNAVAILABLE", "builder service is unavailable")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxProfileFormSize)
	if err := r.ParseMultipartForm(maxProfileFormSize); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid multipart form")
		return
	}

	profile := buildersvc.Profile{
		CompanyName:        formString(r, "companyName"),
		Email:              formString(r, "email"),
		Phone:              formString(r, "phone"),
		Address:            formString(r, "address"),
		RegistrationNumber: formString(r, "registrationNumber"),
		About:              formString(r, "about"),
		Website:            formString(r, "website"),
		TotalRevenue:       formString(r, "totalRevenue"),
		Specialties:        formValues(r, "specialties"),
		Certifications:     formValues(r, "certifications"),
		Awards:             formValues(r, "awards"),
	}

	for key, target := range map[string]**int{
		"yearsOfExperience": &profile.YearsOfExperience,
		"completedProjects": &profile.CompletedProjects,
		"activeProjects":    &profile.ActiveProjects,
		"teamSize":          &profile.TeamSize,
	} {
		n, present, err := formInt(r, key)
		if err != nil {
			writeBadRequest(w, "VALIDATION_ERROR", key+" must be a number")
			return
		}
		if present {
			*target = &n
		}
	}

	var upload *buildersvc.Upload
	if file, header, err := r.FormFile("profileImage"); err == nil {
		defer file.Close()
		upload = &buildersvc.Upload{
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Body:        file,
			Size:        header.Size,
		}
	}

	imageURL, err := h.service.UpdateProfile(r.Context(), identity.UID, profile, upload)
	if err != nil {
		if errors.Is(err, buildersvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid profile update")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to update builder profile")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.BuilderProfileResponse{
		Message:      "Builder profile updated successfully",
		ProfileImage: imageURL,
	})
}

func formString(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

func formValues(r *http.Request, key string) []string {
	if r.MultipartForm == nil {
		return nil
	}
	return r.MultipartForm.Value[key]
}

func formInt(r *http.Request, key string) (int, bool, error) {
	raw := formString(r, key)
	if raw == nil {
		return 0, false, nil
	}
	n, err := strconv.Atoi(*raw)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}
