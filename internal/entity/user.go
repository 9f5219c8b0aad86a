package entity

import "time"

// User is the account record. CurrentRefreshToken is the single slot that
// makes refresh tokens revocable: at most one refresh token per user is
// honored at a time, and issuing a new one invalidates the previous one.
// This is a deliberate simplification over per-device session sets.
type User struct {
	ID                  string    `json:"id"`
	Username            string    `json:"username"`
	Email               string    `json:"email"`
	FullName            string    `json:"full_name"`
	AvatarURL           string    `json:"avatar_url"`
	CoverImageURL       string    `json:"cover_image_url,omitempty"`
	PasswordHash        string    `json:"-"`
	CurrentRefreshToken string    `json:"-"`
	WatchHistory        []string  `json:"watch_history"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
