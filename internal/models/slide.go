package models

import "time"

// DefaultSlidePath marks the seeded slide whose image is a generated placeholder, not a stored file.
const DefaultSlidePath = "default"

// Slide is a homepage carousel entry.
type Slide struct {
	ID          int64     `db:"id" json:"id"`
	Title       *string   `db:"title" json:"title"`
	Description *string   `db:"description" json:"description"`
	ImageURL    string    `db:"image_url" json:"imageUrl"`
	ImagePath   *string   `db:"image_path" json:"imagePath"`
	OrderIndex  int       `db:"order_index" json:"orderIndex"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	IsDefault   bool      `db:"is_default" json:"isDefault"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// HasStoredImage reports whether the slide's image lives in upload storage.
func (s Slide) HasStoredImage() bool {
	return s.ImagePath != nil && *s.ImagePath != "" && *s.ImagePath != DefaultSlidePath
}

// SlideRequest carries slide metadata from a multipart form.
type SlideRequest struct {
	Title       *string `form:"title" validate:"omitempty,max=200"`
	Description *string `form:"description"`
	OrderIndex  *int    `form:"orderIndex"`
	IsActive    *bool   `form:"isActive"`
}
