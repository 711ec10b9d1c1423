package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	role, err := ParseRole("")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, role)

	role, err = ParseRole("teacher")
	require.NoError(t, err)
	assert.Equal(t, RoleTeacher, role)

	_, err = ParseRole("ADMIN")
	assert.Error(t, err)
	_, err = ParseRole("superuser")
	assert.Error(t, err)
}

func TestRoleSatisfies(t *testing.T) {
	assert.True(t, RoleAdmin.Satisfies(RoleUser))
	assert.True(t, RoleAdmin.Satisfies(RoleTeacher))
	assert.True(t, RoleAdmin.Satisfies())
	assert.True(t, RoleTeacher.Satisfies(RoleUser, RoleTeacher))
	assert.False(t, RoleTeacher.Satisfies(RoleUser))
	assert.False(t, RoleUser.Satisfies(RoleTeacher))
	assert.False(t, RoleUser.Satisfies(RoleAdmin))
	assert.False(t, RoleUser.Satisfies())
}
