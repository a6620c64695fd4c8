package ecs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRestoreRecomputesMask(t *testing.T) {
	src := testWorld()
	e := src.Create(&position{X: 3, Y: 4, Sector: 9}, &budget{Money: 100})
	e.AddTag("station")
	e.Cooldowns().Use("spawn", 5)

	snap, err := src.Snapshot(e)
	require.NoError(t, err)

	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "mask")

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(raw, &decoded))

	dst := testWorld()
	restored, err := dst.Restore(decoded)
	require.NoError(t, err)
	assert.Equal(t, e.ID(), restored.ID())
	assert.True(t, restored.Mask().Equal(e.Mask()))
	assert.Equal(t, []string{"station"}, restored.Tags())
	assert.Equal(t, 5.0, restored.Cooldowns().Remaining("spawn"))
	assert.Equal(t, 9, int(MustGet[*position](restored).Sector))

	next := dst.Create()
	assert.Greater(t, next.ID(), restored.ID(), "ids are never reused after restore")

	_, err = dst.Restore(decoded)
	assert.ErrorIs(t, err, ErrEntityExists)
}

func TestRestoreRejectsUnknownAndRuntimeKinds(t *testing.T) {
	w := testWorld()
	_, err := w.Restore(Snapshot{ID: 5, Components: map[Kind]json.RawMessage{"warp": json.RawMessage(`{}`)}})
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = w.Restore(Snapshot{ID: 6, Components: map[Kind]json.RawMessage{kindRuntime: json.RawMessage(`{}`)}})
	assert.ErrorIs(t, err, ErrNotRestorable)
	assert.Zero(t, w.Len())
}

func TestSnapshotStripsRuntimeHandles(t *testing.T) {
	w := testWorld()
	e := w.Create(&runtime{Handle: func() {}})
	snap, err := w.Snapshot(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(snap.Components[kindRuntime]))
}
