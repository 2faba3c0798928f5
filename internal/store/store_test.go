// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModel = `
a -> b
b -| a
$a: !b
$b: a
`

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestSaveAndLoadModel(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	saved, err := s.SaveModel(ctx, "toggle", testModel)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "toggle", saved.Name)
	assert.Equal(t, "toggle", saved.Slug)
	assert.Equal(t, 2, saved.Variables)
	assert.Equal(t, 2, saved.Regulations)
	assert.Equal(t, 0, saved.Parameters)
	assert.False(t, saved.CreatedAt.IsZero())

	loaded, err := s.Model(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)

	byName, err := s.ModelByName(ctx, "toggle")
	require.NoError(t, err)
	assert.Equal(t, saved, byName)

	network, err := loaded.Network()
	require.NoError(t, err)
	assert.Equal(t, 2, network.Graph().NumVars())
}

func TestSaveModelCountsParameters(t *testing.T) {
	s := openTest(t)

	saved, err := s.SaveModel(context.Background(), "parametrised", "a -> b\n$b: p(a)\n")
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Parameters)

	// An unknown name in an update function is an implicit zero-arity
	// parameter, not an error.
	saved, err = s.SaveModel(context.Background(), "implicit", "a -> b\n$b: c\n")
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Parameters)
}

func TestSaveModelRejectsInvalidSource(t *testing.T) {
	s := openTest(t)

	// b does not regulate a, so the update of a must be rejected.
	_, err := s.SaveModel(context.Background(), "broken", "a -> b\n$a: b\n")
	require.ErrorIs(t, err, ErrInvalidModel)

	_, err = s.SaveModel(context.Background(), "broken", "a -> b\n$b: a &\n")
	require.ErrorIs(t, err, ErrInvalidModel)

	_, err = s.SaveModel(context.Background(), "", testModel)
	require.ErrorIs(t, err, ErrInvalidModel)
}

func TestSaveModelUpsertKeepsIdentity(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	first, err := s.SaveModel(ctx, "toggle", testModel)
	require.NoError(t, err)

	second, err := s.SaveModel(ctx, "toggle", "a -> b\n$b: a\n")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, 1, second.Regulations)

	models, err := s.ListModels(ctx)
	require.NoError(t, err)
	assert.Len(t, models, 1)
}

func TestListModelsOrdered(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	_, err := s.SaveModel(ctx, "zebra", testModel)
	require.NoError(t, err)
	_, err = s.SaveModel(ctx, "aardvark", testModel)
	require.NoError(t, err)

	models, err := s.ListModels(ctx)
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "aardvark", models[0].Name)
	assert.Equal(t, "zebra", models[1].Name)
}

func TestDeleteModel(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	saved, err := s.SaveModel(ctx, "toggle", testModel)
	require.NoError(t, err)

	require.NoError(t, s.DeleteModel(ctx, saved.ID))
	_, err = s.Model(ctx, saved.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteModel(ctx, saved.ID), ErrNotFound)
}

func TestNotFound(t *testing.T) {
	s := openTest(t)

	_, err := s.Model(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.ModelByName(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir)
	require.NoError(t, err)
	saved, err := s.SaveModel(ctx, "toggle", testModel)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopening runs migrations again, which must be a no-op.
	s, err = Open(dir)
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	loaded, err := s.Model(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Source, loaded.Source)
}
