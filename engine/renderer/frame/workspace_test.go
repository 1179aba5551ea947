package frame

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/stratus/engine/core"
	"github.com/spaghettifunk/stratus/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkspacePool(t *testing.T) {
	dev := &fakeDevice{}
	pool, err := NewWorkspacePool(dev, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, pool.Len())
	assert.Len(t, dev.recorders, 2)

	for i := 0; i < 2; i++ {
		ws := pool.Acquire(i)
		assert.Equal(t, i, ws.Index)
		assert.Equal(t, GrowCapacity(metadata.CameraUniformSize), ws.Camera.Capacity())
		assert.Equal(t, GrowCapacity(metadata.WorldUniformSize), ws.World.Capacity())
		assert.Zero(t, ws.LinesVertices.Capacity())
		assert.Zero(t, ws.Transforms.Capacity())
		assert.Nil(t, ws.LinesVertices.DescriptorSet())
		assert.NotNil(t, ws.Transforms.DescriptorSet())
	}
	assert.NotSame(t, pool.Acquire(0).Camera.Buffer(), pool.Acquire(1).Camera.Buffer())

	_, err = NewWorkspacePool(dev, 0)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestWorkspacePoolAcquireOutOfRangePanics(t *testing.T) {
	pool, err := NewWorkspacePool(&fakeDevice{}, 2)
	require.NoError(t, err)
	assert.Panics(t, func() { pool.Acquire(2) })
	assert.Panics(t, func() { pool.Acquire(-1) })
}

func TestWorkspacePoolDestroyOrder(t *testing.T) {
	dev := &fakeDevice{}
	pool, err := NewWorkspacePool(dev, 2)
	require.NoError(t, err)
	dev.log = nil

	pool.Destroy()

	require.NotEmpty(t, dev.log)
	assert.Equal(t, "wait idle", dev.log[0])
	lastDestroy, firstFree := -1, len(dev.log)
	for i, entry := range dev.log {
		if entry == "free recorder" && i < firstFree {
			firstFree = i
		}
		if len(entry) > 7 && entry[:7] == "destroy" {
			lastDestroy = i
		}
	}
	assert.Less(t, lastDestroy, firstFree, "buffers are released before command buffers")
	for _, b := range dev.buffers {
		assert.Equal(t, 1, b.destroyed)
	}
	for _, r := range dev.recorders {
		assert.True(t, r.freed)
	}
}

func TestWorkspacePoolDestroyContinuesAfterWaitFailure(t *testing.T) {
	dev := &fakeDevice{}
	pool, err := NewWorkspacePool(dev, 1)
	require.NoError(t, err)
	dev.waitErr = errors.New("VK_ERROR_DEVICE_LOST")

	assert.NotPanics(t, pool.Destroy)
	for _, b := range dev.buffers {
		assert.Equal(t, 1, b.destroyed)
	}
	assert.True(t, dev.recorders[0].freed)
}
