package dto

type BuilderProfileResponse struct {
	Message      string `json:"message"`
	ProfileImage string `json:"profileImage,omitempty"`
}
