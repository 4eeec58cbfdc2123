package dto

// StoryResponse keeps the wire field names the mobile clients already
// consume: timestamps are epoch milliseconds, Title keeps its historical
// capitalized key.
type StoryResponse struct {
	ID           int64  `json:"id"`
	Title        string `json:"Title"`
	ProfileImage string `json:"profileImage"`
	MediaURL     string `json:"mediaUrl"`
	IsVideo      bool   `json:"isVideo"`
	CreatedAt    int64  `json:"createdAt"`
	ExpiresAt    int64  `json:"expiresAt"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
