package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusToggled(t *testing.T) {
	assert.Equal(t, StatusCompleted, StatusPending.Toggled())
	assert.Equal(t, StatusPending, StatusCompleted.Toggled())
}

func TestParseEnums(t *testing.T) {
	s, err := ParseStatus("completed")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, s)

	_, err = ParseStatus("done")
	assert.Error(t, err)

	p, err := ParsePriority("high")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Weight())

	_, err = ParsePriority("HIGH")
	assert.Error(t, err)
}

func TestTodoPatchApply(t *testing.T) {
	desc := "keep"
	todo := Todo{Title: "old", Description: &desc, Priority: PriorityLow}

	assert.False(t, TodoPatch{}.Apply(&todo))
	assert.Equal(t, "old", todo.Title)

	changed := TodoPatch{
		Title:       Set("new"),
		Description: Set[*string](nil),
	}.Apply(&todo)
	assert.True(t, changed)
	assert.Equal(t, "new", todo.Title)
	assert.Nil(t, todo.Description)
	assert.Equal(t, PriorityLow, todo.Priority)
}

func TestCategoryPatchApply(t *testing.T) {
	c := Category{Name: "Work", Color: DefaultCategoryColor}
	assert.True(t, CategoryPatch{Color: Set("#000000")}.Apply(&c))
	assert.Equal(t, "Work", c.Name)
	assert.Equal(t, "#000000", c.Color)

	v, ok := CategoryPatch{}.Name.Get()
	assert.False(t, ok)
	assert.Empty(t, v)
}
