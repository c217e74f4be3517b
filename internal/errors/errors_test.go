package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder(t *testing.T) {
	t.Parallel()

	base := NewStd("sheet unreachable")
	err := New(base).
		Component("sheetstore").
		Category(CategoryStore).
		Context("spreadsheet_id", "abc").
		Build()

	var ee *EnhancedError
	require.True(t, As(err, &ee))
	assert.Equal(t, "sheetstore", ee.Component)
	assert.Equal(t, CategoryStore, ee.Category)
	assert.Equal(t, "abc", ee.GetContext()["spreadsheet_id"])
	assert.Equal(t, "sheet unreachable", err.Error())
	assert.True(t, Is(err, base), "wrapped error must stay matchable")
}

func TestErrorBuilder_Defaults(t *testing.T) {
	t.Parallel()

	err := Newf("page %d failed", 3).Build()

	var ee *EnhancedError
	require.True(t, As(err, &ee))
	assert.Equal(t, ComponentUnknown, ee.Component)
	assert.Equal(t, CategoryGeneric, ee.Category)
	assert.Nil(t, ee.GetContext())
}

func TestHasCategory(t *testing.T) {
	t.Parallel()

	err := New(NewStd("boom")).Category(CategoryNetwork).Build()
	wrapped := fmt.Errorf("fetch page: %w", err)

	assert.True(t, HasCategory(wrapped, CategoryNetwork))
	assert.False(t, HasCategory(wrapped, CategoryStore))
	assert.False(t, HasCategory(NewStd("plain"), CategoryNetwork))
}
