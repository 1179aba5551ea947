package frame

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/stratus/engine/renderer/metadata"
)

// fakeBuffer is a host buffer; staging buffers expose their bytes.
type fakeBuffer struct {
	id        int
	size      uint64
	role      metadata.RenderBufferType
	data      []byte
	destroyed int
	log       *[]string
}

func (b *fakeBuffer) Size() uint64 { return b.size }

func (b *fakeBuffer) Mapped() []byte { return b.data }

func (b *fakeBuffer) Destroy() {
	b.destroyed++
	*b.log = append(*b.log, fmt.Sprintf("destroy buffer %d", b.id))
}

type fakeSet struct {
	layout SetLayout
	buffer Buffer
	writes int
}

type fakeDevice struct {
	log        []string
	buffers    []*fakeBuffer
	sets       []*fakeSet
	recorders  []*fakeRecorder
	waitErr    error
	failDevice bool
}

func (d *fakeDevice) newBuffer(size uint64, role metadata.RenderBufferType, mapped bool) *fakeBuffer {
	b := &fakeBuffer{id: len(d.buffers), size: size, role: role, log: &d.log}
	if mapped {
		b.data = make([]byte, size)
	}
	d.buffers = append(d.buffers, b)
	return b
}

func (d *fakeDevice) CreateStagingBuffer(size uint64) (Buffer, error) {
	b := d.newBuffer(size, metadata.RENDERBUFFER_TYPE_STAGING, true)
	d.log = append(d.log, fmt.Sprintf("create staging %d", size))
	return b, nil
}

func (d *fakeDevice) CreateDeviceBuffer(size uint64, role metadata.RenderBufferType) (Buffer, error) {
	if d.failDevice {
		return nil, errors.New("vkAllocateMemory failed with VK_ERROR_OUT_OF_DEVICE_MEMORY")
	}
	b := d.newBuffer(size, role, false)
	d.log = append(d.log, fmt.Sprintf("create %s %d", role, size))
	return b, nil
}

func (d *fakeDevice) AllocateDescriptorSet(layout SetLayout) (DescriptorSet, error) {
	s := &fakeSet{layout: layout}
	d.sets = append(d.sets, s)
	return s, nil
}

func (d *fakeDevice) WriteBufferDescriptor(set DescriptorSet, role metadata.RenderBufferType, buffer Buffer) {
	s := set.(*fakeSet)
	s.buffer = buffer
	s.writes++
	d.log = append(d.log, fmt.Sprintf("write %s set -> buffer %d", s.layout, buffer.(*fakeBuffer).id))
}

func (d *fakeDevice) AllocateRecorder() (Recorder, error) {
	r := &fakeRecorder{device: d}
	d.recorders = append(d.recorders, r)
	return r, nil
}

func (d *fakeDevice) WaitIdle() error {
	d.log = append(d.log, "wait idle")
	return d.waitErr
}

// fakeRecorder keeps one line per recorded command.
type fakeRecorder struct {
	device   *fakeDevice
	commands []string
	copies   [][]byte
	freed    bool
}

func (r *fakeRecorder) add(format string, args ...interface{}) {
	r.commands = append(r.commands, fmt.Sprintf(format, args...))
}

func (r *fakeRecorder) Reset() error {
	r.commands = nil
	r.copies = nil
	r.add("reset")
	return nil
}

func (r *fakeRecorder) Begin() error {
	r.add("begin")
	return nil
}

func (r *fakeRecorder) CopyBuffer(src, dst Buffer, size uint64) {
	r.copies = append(r.copies, append([]byte(nil), src.Mapped()[:size]...))
	r.add("copy %d->%d %d", src.(*fakeBuffer).id, dst.(*fakeBuffer).id, size)
}

func (r *fakeRecorder) TransferBarrier() { r.add("barrier") }

func (r *fakeRecorder) BeginRenderPass(imageIndex uint32, extent Extent, config *metadata.RenderPassConfig) {
	r.add("begin pass image=%d %dx%d", imageIndex, extent.Width, extent.Height)
}

func (r *fakeRecorder) SetViewportScissor(extent Extent) {
	r.add("viewport %dx%d", extent.Width, extent.Height)
}

func (r *fakeRecorder) BindPipeline(id PipelineID) { r.add("pipeline %s", id) }

func (r *fakeRecorder) PushConstants(id PipelineID, data []byte) {
	r.add("push %s %d", id, len(data))
}

func (r *fakeRecorder) BindVertexBuffer(buffer Buffer) {
	r.add("vertices %d", buffer.(*fakeBuffer).id)
}

func (r *fakeRecorder) BindDescriptorSets(id PipelineID, firstSet uint32, sets ...DescriptorSet) {
	r.add("sets %s first=%d count=%d", id, firstSet, len(sets))
}

func (r *fakeRecorder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	r.add("draw %d %d %d %d", vertexCount, instanceCount, firstVertex, firstInstance)
}

func (r *fakeRecorder) EndRenderPass() { r.add("end pass") }

func (r *fakeRecorder) End() error {
	r.add("end")
	return nil
}

func (r *fakeRecorder) Submit(wait, signal Semaphore, fence Fence) error {
	r.add("submit wait=%v signal=%v fence=%v", wait, signal, fence)
	return nil
}

func (r *fakeRecorder) Free() {
	r.freed = true
	r.device.log = append(r.device.log, "free recorder")
}
