package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceSuccessStoresData(t *testing.T) {
	r := NewResource(func(ctx context.Context) ([]string, error) {
		return []string{"a", "b"}, nil
	})

	data, err := r.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, data)

	stored, loaded, loading, stateErr := r.State()
	assert.Equal(t, []string{"a", "b"}, stored)
	assert.True(t, loaded)
	assert.False(t, loading)
	assert.NoError(t, stateErr)
}

func TestResourceFailureKeepsPreviousData(t *testing.T) {
	fail := false
	boom := errors.New("boom")
	r := NewResource(func(ctx context.Context) (string, error) {
		if fail {
			return "", boom
		}
		return "first", nil
	})

	_, err := r.Execute(context.Background())
	require.NoError(t, err)

	// A failed refetch stores the error and re-returns it, but does not
	// clear the previously loaded data.
	fail = true
	data, err := r.Execute(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "first", data)

	stored, loaded, loading, stateErr := r.State()
	assert.Equal(t, "first", stored)
	assert.True(t, loaded)
	assert.False(t, loading)
	assert.ErrorIs(t, stateErr, boom)
}

func TestResourceExecuteClearsPreviousError(t *testing.T) {
	fail := true
	r := NewResource(func(ctx context.Context) (int, error) {
		if fail {
			return 0, errors.New("transient")
		}
		return 42, nil
	})

	_, err := r.Execute(context.Background())
	require.Error(t, err)

	fail = false
	data, err := r.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, data)

	_, _, _, stateErr := r.State()
	assert.NoError(t, stateErr)
}

func TestMutationMutateAndReset(t *testing.T) {
	m := NewMutation(func(ctx context.Context, in int) (int, error) {
		return in * 2, nil
	})

	out, err := m.Mutate(context.Background(), 21)
	require.NoError(t, err)
	assert.Equal(t, 42, out)

	data, loaded, _, _ := m.State()
	assert.True(t, loaded)
	assert.Equal(t, 42, data)

	m.Reset()
	data, loaded, loading, stateErr := m.State()
	assert.False(t, loaded)
	assert.False(t, loading)
	assert.NoError(t, stateErr)
	assert.Zero(t, data)
}

func TestMutationFailure(t *testing.T) {
	boom := errors.New("rejected")
	m := NewMutation(func(ctx context.Context, in string) (string, error) {
		return "", boom
	})

	_, err := m.Mutate(context.Background(), "x")
	assert.ErrorIs(t, err, boom)

	_, loaded, loading, stateErr := m.State()
	assert.False(t, loaded)
	assert.False(t, loading)
	assert.ErrorIs(t, stateErr, boom)
}
