package frame

import (
	"strconv"
	"testing"

	"github.com/spaghettifunk/stratus/engine/math"
	"github.com/spaghettifunk/stratus/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordFixture struct {
	dev    *fakeDevice
	pool   *WorkspacePool
	res    *DrawResources
	params *RenderParams
}

func newRecordFixture(t *testing.T) *recordFixture {
	dev := &fakeDevice{}
	pool, err := NewWorkspacePool(dev, 2)
	require.NoError(t, err)
	vertices := dev.newBuffer(4096, metadata.RENDERBUFFER_TYPE_VERTEX, false)
	return &recordFixture{
		dev:  dev,
		pool: pool,
		res: &DrawResources{
			ObjectVertices: vertices,
			TextureSets:    []DescriptorSet{&fakeSet{}, &fakeSet{}},
			RenderPass:     metadata.DefaultRenderPassConfig(),
		},
		params: &RenderParams{
			WorkspaceIndex:     1,
			ImageIndex:         2,
			Extent:             Extent{Width: 800, Height: 600},
			ImageAvailable:     "acquired",
			ImageDone:          "done",
			WorkspaceAvailable: "fence1",
		},
	}
}

func twoInstanceState() *State {
	return &State{
		Time: 1.5,
		Camera: metadata.CameraUniform{
			ClipFromWorld: math.NewMat4Identity(),
		},
		Instances: []Instance{
			{Mesh: MeshRange{First: 0, Count: 36}, Texture: 1},
			{Mesh: MeshRange{First: 36, Count: 6}, Texture: 0},
		},
		Transforms: make([]metadata.Transform, 2),
		Lines:      make([]metadata.PosColVertex, 4),
	}
}

func TestRecordCommandOrder(t *testing.T) {
	f := newRecordFixture(t)
	ws := f.pool.Acquire(f.params.WorkspaceIndex)
	require.NoError(t, Record(ws, f.params, twoInstanceState(), f.res))

	rec := ws.Recorder.(*fakeRecorder)
	lines := ws.LinesVertices
	linesBuf := lines.Buffer().(*fakeBuffer).id
	expected := []string{
		"reset",
		"begin",
		// lines, camera, world, transforms
		"copy " + strconv.Itoa(lines.staging.(*fakeBuffer).id) + "->" + strconv.Itoa(linesBuf) + " 64",
		"copy " + strconv.Itoa(ws.Camera.staging.(*fakeBuffer).id) + "->" + strconv.Itoa(ws.Camera.Buffer().(*fakeBuffer).id) + " 64",
		"copy " + strconv.Itoa(ws.World.staging.(*fakeBuffer).id) + "->" + strconv.Itoa(ws.World.Buffer().(*fakeBuffer).id) + " 80",
		"copy " + strconv.Itoa(ws.Transforms.staging.(*fakeBuffer).id) + "->" + strconv.Itoa(ws.Transforms.Buffer().(*fakeBuffer).id) + " 384",
		"barrier",
		"begin pass image=2 800x600",
		"viewport 800x600",
		"pipeline background",
		"push background 4",
		"draw 3 1 0 0",
		"pipeline lines",
		"vertices " + strconv.Itoa(linesBuf),
		"sets lines first=0 count=1",
		"draw 4 1 0 0",
		"pipeline objects",
		"vertices " + strconv.Itoa(f.res.ObjectVertices.(*fakeBuffer).id),
		"sets objects first=0 count=2",
		"sets objects first=2 count=1",
		"draw 36 1 0 0",
		"sets objects first=2 count=1",
		"draw 6 1 36 1",
		"end pass",
		"end",
		"submit wait=acquired signal=done fence=fence1",
	}
	assert.Equal(t, expected, rec.commands)
}

func TestRecordSkipsEmptyLinesAndObjects(t *testing.T) {
	f := newRecordFixture(t)
	ws := f.pool.Acquire(0)
	st := &State{Time: 3}
	require.NoError(t, Record(ws, f.params, st, f.res))

	rec := ws.Recorder.(*fakeRecorder)
	copies := 0
	for _, c := range rec.commands {
		assert.NotEqual(t, "pipeline lines", c)
		assert.NotEqual(t, "pipeline objects", c)
		if len(c) > 4 && c[:4] == "copy" {
			copies++
		}
	}
	assert.Equal(t, 2, copies, "only camera and world uniforms are uploaded")
	assert.Zero(t, ws.LinesVertices.Capacity())
	assert.Zero(t, ws.Transforms.Capacity())
	assert.Equal(t, "submit wait=acquired signal=done fence=fence1", rec.commands[len(rec.commands)-1])
}

func TestRecordSkipsObjectsWithoutVertexBuffer(t *testing.T) {
	f := newRecordFixture(t)
	f.res.ObjectVertices = nil
	ws := f.pool.Acquire(0)
	st := twoInstanceState()
	st.Instances[0].Mesh = MeshRange{}
	st.Instances[1].Mesh = MeshRange{}
	st.Lines = nil
	require.NoError(t, Record(ws, f.params, st, f.res))

	rec := ws.Recorder.(*fakeRecorder)
	draws := 0
	for _, c := range rec.commands {
		assert.NotEqual(t, "pipeline objects", c)
		if len(c) > 4 && c[:4] == "draw" {
			draws++
		}
	}
	assert.Equal(t, 1, draws, "only the background is drawn")
	assert.Contains(t, rec.commands, "end pass")
	assert.Equal(t, "submit wait=acquired signal=done fence=fence1", rec.commands[len(rec.commands)-1])
}

func TestRecordUploadsTransformsAndRebindsDescriptor(t *testing.T) {
	f := newRecordFixture(t)
	ws := f.pool.Acquire(0)
	st := twoInstanceState()
	st.Transforms[1].WorldFromLocal = math.NewMat4Identity()
	require.NoError(t, Record(ws, f.params, st, f.res))

	set := ws.Transforms.DescriptorSet().(*fakeSet)
	assert.Same(t, ws.Transforms.Buffer(), set.buffer)

	rec := ws.Recorder.(*fakeRecorder)
	require.Len(t, rec.copies, 4)
	assert.Equal(t, metadata.AsBytes(st.Transforms), rec.copies[3])

	// A larger instance list grows the storage buffer and rewrites its set.
	big := make([]Instance, 30)
	st.Instances = big
	st.Transforms = make([]metadata.Transform, len(big))
	require.NoError(t, Record(ws, f.params, st, f.res))
	assert.Equal(t, GrowCapacity(30*metadata.TransformSize), ws.Transforms.Capacity())
	assert.Same(t, ws.Transforms.Buffer(), set.buffer)
	assert.Equal(t, 2, set.writes)
}

func TestRecordRejectsUnknownTextureSlot(t *testing.T) {
	f := newRecordFixture(t)
	st := twoInstanceState()
	st.Instances[0].Texture = 9
	assert.Error(t, Record(f.pool.Acquire(0), f.params, st, f.res))
}
