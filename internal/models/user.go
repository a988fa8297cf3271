// Package models contains data structures for the application's domain models.
package models

import "time"

// User is a member of the social graph. ExternalID is the stable subject
// issued by the identity provider; ID is the internal key everything else
// references.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ExternalID string    `gorm:"uniqueIndex;not null" json:"external_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Username   string    `gorm:"uniqueIndex;not null" json:"username"`
	Bio        string    `json:"bio"`
	Location   string    `json:"location"`
	Website    string    `json:"website"`
	Image      string    `json:"image"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UserCounts are the derived graph counters shown on a profile.
type UserCounts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
	Posts     int64 `json:"posts"`
}

// Profile is a user together with its counters.
type Profile struct {
	User
	Counts UserCounts `json:"counts"`
}

// UserSummary is the compact author/actor projection embedded in feeds and
// notifications.
type UserSummary struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Image    string `json:"image"`
}

// Summary projects u to a UserSummary.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Username: u.Username, Image: u.Image}
}

// Suggestion is a user the caller might follow.
type Suggestion struct {
	UserSummary
	Followers int64 `json:"followers"`
}
