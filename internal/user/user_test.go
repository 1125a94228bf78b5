package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	d := NewDirectory(map[string]string{"peter": "t0k3n", "julia": ""})
	assert.False(t, d.Empty())

	u, err := d.Authenticate("t0k3n")
	require.NoError(t, err)
	assert.Equal(t, "peter", u.Name)

	_, err = d.Authenticate("")
	assert.ErrorIs(t, err, ErrUnknownToken)
	_, err = d.Authenticate("other")
	assert.ErrorIs(t, err, ErrUnknownToken)

	assert.True(t, NewDirectory(nil).Empty())
}

func TestContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "system", Name(ctx))

	ctx = WithUser(ctx, &User{ID: 1, Name: "julia"})
	assert.Equal(t, "julia", Name(ctx))
}
