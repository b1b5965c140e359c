package common

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
	assert.Equal(t, 800, Coalesce(0, 800))
}

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"ice": 1, "default": 2, "fire": 3}
	assert.Equal(t, []string{"default", "fire", "ice"}, SortedKeys(m))
	assert.Empty(t, SortedKeys(map[string]int{}))
}

func TestWrapIndex(t *testing.T) {
	assert.Equal(t, 0, WrapIndex(3, 3))
	assert.Equal(t, 2, WrapIndex(-1, 3))
	assert.Equal(t, 1, WrapIndex(1, 3))
	assert.Equal(t, 0, WrapIndex(5, 0))
}

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	assert.False(t, Logger().Enabled(t.Context(), slog.LevelError))

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	Logger().Info("hello", "k", 1)
	assert.Contains(t, buf.String(), "hello")

	SetLogger(nil)
	assert.False(t, Logger().Enabled(t.Context(), slog.LevelError))
}
