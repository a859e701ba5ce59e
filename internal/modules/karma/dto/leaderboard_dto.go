package dto

import "github.com/google/uuid"

// LeaderboardEntry is one ranked row; rank is 1-based and the client renders
// the sequence as already ordered.
type LeaderboardEntry struct {
	ID       uuid.UUID `json:"id"`
	Rank     int       `json:"rank"`
	Username string    `json:"username"`
	Karma24h int64     `json:"karma_24h"`
}
