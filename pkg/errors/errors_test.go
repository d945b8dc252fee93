package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodegenError(t *testing.T) {
	cause := fs.ErrNotExist
	err := Wrap(cause, CategoryIO, "load_spec_file", "cannot read spec")

	require.Error(t, err)
	assert.Equal(t, "[io] load_spec_file: cannot read spec: file does not exist", err.Error())
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.True(t, IsCategory(err, CategoryIO))
	assert.False(t, IsUserError(err))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CategoryIO, "noop", "nothing"))
}

func TestCategoryThroughFmtWrapping(t *testing.T) {
	base := New(CategoryReference, "resolve_ref", "unknown schema").WithContext("ref", "#/definitions/Missing")
	wrapped := fmt.Errorf("build requests: %w", base)

	category, ok := CategoryOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, CategoryReference, category)
	assert.True(t, IsUserError(wrapped))
	assert.Equal(t, "#/definitions/Missing", base.Context["ref"])

	_, ok = CategoryOf(errors.New("plain"))
	assert.False(t, ok)
}
