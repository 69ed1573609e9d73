package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitSchemaFanOutReturnsFirstError(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterSchema(NamespaceApp, rgbSchema()))

	errK := errors.New("instance 2 failed")
	errLater := errors.New("instance 4 failed")
	recorders := make([]*commitRecorder, 6)
	for i := range recorders {
		recorders[i] = &commitRecorder{}
		switch i {
		case 2:
			recorders[i].err = errK
		case 4:
			recorders[i].err = errLater
		}
		_, err := r.RegisterInstance(NamespaceApp, rgbSchemaID, &Instance{Data: &rgbLED{}, Committer: recorders[i]})
		require.NoError(t, err)
	}

	err := r.Commit(context.Background(), SchemaPath(NamespaceApp, rgbSchemaID))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCommit)
	assert.ErrorIs(t, err, errK)
	assert.NotErrorIs(t, err, errLater)

	for i, rec := range recorders {
		assert.Len(t, rec.calls, 1, "instance %d must be committed", i)
	}
}

func TestCommitInstance(t *testing.T) {
	r, _ := newRGBRegistry(t)
	rec := &commitRecorder{}
	inst := &Instance{Data: &rgbLED{}, Committer: rec, CommitContext: "ctx"}
	id, err := r.RegisterInstance(NamespaceApp, rgbSchemaID, inst)
	require.NoError(t, err)

	require.NoError(t, r.Commit(context.Background(), ItemPath(NamespaceApp, rgbSchemaID, id, itemRed)))
	require.Len(t, rec.calls, 1)
	assert.Equal(t, "1/0/1/0", rec.calls[0].String())

	// Instance 0 has no committer.
	err = r.Commit(context.Background(), InstancePath(NamespaceApp, rgbSchemaID, 0))
	assert.ErrorIs(t, err, ErrCommit)
}

func TestCommitSkipsInstancesWithoutCommitter(t *testing.T) {
	r, _ := newRGBRegistry(t)
	rec := &commitRecorder{}
	_, err := r.RegisterInstance(NamespaceApp, rgbSchemaID, &Instance{Data: &rgbLED{}, Committer: rec})
	require.NoError(t, err)

	require.NoError(t, r.Commit(context.Background(), SchemaPath(NamespaceApp, rgbSchemaID)))
	assert.Len(t, rec.calls, 1)
}

func TestCommitRootVisitsSysThenApp(t *testing.T) {
	r := New()
	var order []NamespaceID
	record := CommitFunc(func(_ context.Context, _ *Instance, p Path) error {
		order = append(order, p.Namespace())
		return nil
	})

	for _, ns := range []NamespaceID{NamespaceApp, NamespaceSys} {
		require.NoError(t, r.RegisterSchema(ns, rgbSchema()))
		_, err := r.RegisterInstance(ns, rgbSchemaID, &Instance{Data: &rgbLED{}, Committer: record})
		require.NoError(t, err)
	}

	require.NoError(t, r.Commit(context.Background(), RootPath()))
	assert.Equal(t, []NamespaceID{NamespaceSys, NamespaceApp}, order)

	order = nil
	require.NoError(t, r.Commit(context.Background(), NamespacePath(NamespaceApp)))
	assert.Equal(t, []NamespaceID{NamespaceApp}, order)
}

func TestCommitUnresolved(t *testing.T) {
	r, _ := newRGBRegistry(t)
	err := r.Commit(context.Background(), InstancePath(NamespaceApp, rgbSchemaID, 3))
	assert.ErrorIs(t, err, ErrResolution)
}
