package panicerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafe(t *testing.T) {
	assert.NoError(t, Safe(func() error { return nil })())

	want := errors.New("boom")
	assert.ErrorIs(t, Safe(func() error { return want })(), want)

	err := Safe(func() error { panic("nil map") })()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil map")
}
