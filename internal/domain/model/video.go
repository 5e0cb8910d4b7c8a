package model

import "time"

// SolutionVideo is the editorial video attached to a problem. The file itself
// lives on the media host; only identifiers and URLs are stored here.
type SolutionVideo struct {
	ID           string    `json:"id"`
	ProblemID    string    `json:"problemId"`
	UserID       string    `json:"userId"`
	PublicID     string    `json:"cloudinaryPublicId"`
	SecureURL    string    `json:"secureUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Duration     float64   `json:"duration"`
	CreatedAt    time.Time `json:"created_at"`
}
