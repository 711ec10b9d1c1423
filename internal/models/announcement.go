package models

import "time"

// Audience selects who can read an announcement.
type Audience string

const (
	AudienceAll     Audience = "all"
	AudienceUser    Audience = "user"
	AudienceTeacher Audience = "teacher"
)

// Valid reports whether the audience is known.
func (a Audience) Valid() bool {
	switch a {
	case AudienceAll, AudienceUser, AudienceTeacher:
		return true
	}
	return false
}

// VisibleTo reports whether a reader with role can see announcements for this audience.
// Admins see everything.
func (a Audience) VisibleTo(role UserRole) bool {
	return role == RoleAdmin || a == AudienceAll || string(a) == string(role)
}

// Announcement is a message published to an audience.
type Announcement struct {
	ID             int64     `db:"id" json:"id"`
	Title          string    `db:"title" json:"title"`
	Content        string    `db:"content" json:"content"`
	AuthorID       int64     `db:"author_id" json:"authorId"`
	TargetAudience Audience  `db:"target_audience" json:"targetAudience"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	AuthorName     string    `db:"author_name" json:"authorName"`
}

// AnnouncementRequest creates or replaces an announcement.
type AnnouncementRequest struct {
	Title          string   `json:"title" validate:"required,max=200"`
	Content        string   `json:"content" validate:"required"`
	TargetAudience Audience `json:"targetAudience" validate:"omitempty,oneof=all user teacher"`
}
