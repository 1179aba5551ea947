package frame

import (
	"bytes"
	"testing"

	"github.com/spaghettifunk/stratus/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrowCapacity(t *testing.T) {
	cases := map[uint64]uint64{
		0:     4096,
		1:     4096,
		4095:  4096,
		4096:  8192,
		8192:  12288,
		10000: 12288,
		13000: 16384,
	}
	for required, want := range cases {
		assert.Equal(t, want, GrowCapacity(required), "required %d", required)
	}
	for r := uint64(0); r < 3*ChunkSize; r += 97 {
		c := GrowCapacity(r)
		assert.Zero(t, c%ChunkSize)
		assert.Greater(t, c, r)
		assert.LessOrEqual(t, c-r, ChunkSize)
	}
}

func TestStreamGrowthScenario(t *testing.T) {
	dev := &fakeDevice{}
	rec := &fakeRecorder{device: dev}
	s, err := NewStream(dev, "transforms", metadata.RENDERBUFFER_TYPE_STORAGE, true, SetLayoutTransforms)
	require.NoError(t, err)
	assert.Zero(t, s.Capacity())

	require.NoError(t, s.Upload(rec, make([]byte, 10000)))
	assert.Equal(t, uint64(12288), s.Capacity())
	assert.Equal(t, 1, s.Reallocations())
	first := s.Buffer()

	require.NoError(t, s.Upload(rec, make([]byte, 11000)))
	assert.Same(t, first, s.Buffer())
	assert.Equal(t, 1, s.Reallocations())

	require.NoError(t, s.Upload(rec, make([]byte, 13000)))
	assert.Equal(t, uint64(16384), s.Capacity())
	assert.Equal(t, 2, s.Reallocations())
	assert.Equal(t, 1, first.(*fakeBuffer).destroyed)

	// staging and device buffers always match
	assert.Equal(t, s.Capacity(), s.staging.Size())
}

func TestStreamEnsureIsIdempotentWithoutGrowth(t *testing.T) {
	dev := &fakeDevice{}
	s, err := NewStream(dev, "camera", metadata.RENDERBUFFER_TYPE_UNIFORM, false, 0)
	require.NoError(t, err)

	grown, err := s.Ensure(100)
	require.NoError(t, err)
	assert.True(t, grown)
	created := len(dev.buffers)

	for _, n := range []uint64{0, 1, 100, 4096} {
		grown, err = s.Ensure(n)
		require.NoError(t, err)
		assert.False(t, grown)
	}
	assert.Len(t, dev.buffers, created)
	for _, b := range dev.buffers {
		assert.Zero(t, b.destroyed)
	}
}

func TestStreamRewritesDescriptorOnReallocation(t *testing.T) {
	dev := &fakeDevice{}
	s, err := NewStream(dev, "transforms", metadata.RENDERBUFFER_TYPE_STORAGE, true, SetLayoutTransforms)
	require.NoError(t, err)
	set := s.DescriptorSet().(*fakeSet)

	_, err = s.Ensure(10)
	require.NoError(t, err)
	assert.Same(t, s.Buffer(), set.buffer)

	_, err = s.Ensure(5000)
	require.NoError(t, err)
	assert.Same(t, s.Buffer(), set.buffer)
	assert.Equal(t, 2, set.writes)
	assert.Equal(t, metadata.RENDERBUFFER_TYPE_STORAGE, s.Buffer().(*fakeBuffer).role)
}

func TestStreamUploadSkipsEmptyData(t *testing.T) {
	dev := &fakeDevice{}
	rec := &fakeRecorder{device: dev}
	s, err := NewStream(dev, "lines", metadata.RENDERBUFFER_TYPE_VERTEX, false, 0)
	require.NoError(t, err)

	require.NoError(t, s.Upload(rec, nil))
	assert.Empty(t, dev.buffers)
	assert.Empty(t, rec.commands)
}

func TestStreamUploadCopiesData(t *testing.T) {
	dev := &fakeDevice{}
	rec := &fakeRecorder{device: dev}
	s, err := NewStream(dev, "lines", metadata.RENDERBUFFER_TYPE_VERTEX, false, 0)
	require.NoError(t, err)

	data := bytes.Repeat([]byte{1, 2, 3}, 10)
	require.NoError(t, s.Upload(rec, data))
	require.Len(t, rec.copies, 1)
	assert.Equal(t, data, rec.copies[0])
	assert.Equal(t, []string{"copy 0->1 30"}, rec.commands)
}

func TestStreamDeviceFailureReleasesStaging(t *testing.T) {
	dev := &fakeDevice{failDevice: true}
	s, err := NewStream(dev, "world", metadata.RENDERBUFFER_TYPE_UNIFORM, false, 0)
	require.NoError(t, err)

	_, err = s.Ensure(80)
	assert.ErrorContains(t, err, "VK_ERROR_OUT_OF_DEVICE_MEMORY")
	require.Len(t, dev.buffers, 1)
	assert.Equal(t, 1, dev.buffers[0].destroyed)
	assert.Zero(t, s.Capacity())
}
