package models

import "time"

// Profile is the internal account a caller identity is mapped to.
type Profile struct {
	ID         string
	ExternalID string
	Email      string
	Name       string
	PictureURL string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
