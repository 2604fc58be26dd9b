package camera

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwnerHandsOver(t *testing.T) {
	src := NewPattern(10, 10)
	o := NewOwner(src)

	captureRevoked := 0
	s, err := o.Acquire(context.Background(), "capture", func() { captureRevoked++ })
	require.NoError(t, err)
	assert.Same(t, src, s)
	assert.True(t, src.Active())
	assert.Equal(t, "capture", o.Holder())

	_, err = o.Acquire(context.Background(), "admin", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, captureRevoked)
	assert.Equal(t, "admin", o.Holder())

	// A stale release from the previous holder does not stop the camera.
	o.Release("capture")
	assert.True(t, src.Active())

	o.Release("admin")
	assert.False(t, src.Active())
	assert.Equal(t, "", o.Holder())
}

func TestOwnerReplace(t *testing.T) {
	old := NewPattern(10, 10)
	o := NewOwner(old)

	revoked := false
	_, err := o.Acquire(context.Background(), "capture", func() { revoked = true })
	require.NoError(t, err)

	next := NewPattern(20, 20)
	o.Replace(next)
	assert.True(t, revoked)
	assert.False(t, old.Active())
	assert.Same(t, next, o.Source())
	assert.Equal(t, "", o.Holder())
}
