package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentage(t *testing.T) {
	assert.Equal(t, 85.0, Percentage(17, 20))
	assert.Equal(t, 33.33, Percentage(1, 3))
	assert.Equal(t, 0.0, Percentage(5, 0))
}

func TestLetterGrade(t *testing.T) {
	cases := map[float64]string{95: "A", 90: "A", 89.99: "B", 80: "B", 75: "C", 60: "D", 59.9: "F", 0: "F"}
	for pct, want := range cases {
		assert.Equal(t, want, LetterGrade(pct), "percentage %v", pct)
	}
}

func TestAudienceVisibleTo(t *testing.T) {
	assert.True(t, AudienceAll.VisibleTo(RoleUser))
	assert.True(t, AudienceTeacher.VisibleTo(RoleTeacher))
	assert.False(t, AudienceTeacher.VisibleTo(RoleUser))
	assert.False(t, AudienceUser.VisibleTo(RoleTeacher))
	assert.True(t, AudienceUser.VisibleTo(RoleAdmin))
}

func TestSlideHasStoredImage(t *testing.T) {
	def := DefaultSlidePath
	stored := "uploads/slides/slide-1.png"
	assert.False(t, Slide{ImagePath: &def}.HasStoredImage())
	assert.False(t, Slide{}.HasStoredImage())
	assert.True(t, Slide{ImagePath: &stored}.HasStoredImage())
}

func TestUserFullName(t *testing.T) {
	assert.Equal(t, "Jane Doe", User{FirstName: "Jane", LastName: "Doe"}.FullName())
	assert.Equal(t, "Jane", User{FirstName: "Jane"}.FullName())
}
