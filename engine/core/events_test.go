package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBusFireStopsAtFirstHandler(t *testing.T) {
	bus := NewEventBus()
	var calls []string

	first := func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
		calls = append(calls, "first")
		return true
	}
	second := func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
		calls = append(calls, "second")
		return false
	}

	assert.True(t, bus.Register(EVENT_CODE_RESIZED, "a", first))
	assert.True(t, bus.Register(EVENT_CODE_RESIZED, "b", second))

	assert.True(t, bus.Fire(EVENT_CODE_RESIZED, nil, EventContext{Width: 10, Height: 20}))
	assert.Equal(t, []string{"first"}, calls)
}

func TestEventBusRejectsDuplicates(t *testing.T) {
	bus := NewEventBus()
	cb := func(code SystemEventCode, sender, listener interface{}, data EventContext) bool { return false }

	assert.True(t, bus.Register(EVENT_CODE_APPLICATION_QUIT, "x", cb))
	assert.False(t, bus.Register(EVENT_CODE_APPLICATION_QUIT, "x", cb))
	assert.True(t, bus.Unregister(EVENT_CODE_APPLICATION_QUIT, "x", cb))
	assert.False(t, bus.Unregister(EVENT_CODE_APPLICATION_QUIT, "x", cb))
	assert.False(t, bus.Fire(EVENT_CODE_APPLICATION_QUIT, nil, EventContext{}))
}

func TestEventBusPassesContext(t *testing.T) {
	bus := NewEventBus()
	var got EventContext
	bus.Register(EVENT_CODE_SCENE_CHANGED, nil, func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
		got = data
		return true
	})
	bus.Fire(EVENT_CODE_SCENE_CHANGED, nil, EventContext{Path: "scene.toml"})
	assert.Equal(t, "scene.toml", got.Path)
}

func TestFrameMetricsReportsFPSOncePerSecond(t *testing.T) {
	m := NewFrameMetrics()
	reported := 0
	for i := 0; i < 100; i++ {
		if m.Update(1.0 / 60.0) {
			reported++
		}
	}
	assert.Equal(t, 1, reported)
	assert.InDelta(t, 60, m.FPS(), 1)
	assert.InDelta(t, 1000.0/60.0, m.FrameTime(), 0.01)
}

func TestClockTickBeforeStart(t *testing.T) {
	c := NewClock()
	assert.Zero(t, c.Tick())
	c.Start()
	assert.GreaterOrEqual(t, c.Tick(), float32(0))
	c.Stop()
	assert.Zero(t, c.Elapsed())
}

func TestSetLogLevel(t *testing.T) {
	assert.NoError(t, SetLogLevel("debug"))
	assert.Error(t, SetLogLevel("loud"))
	assert.NoError(t, SetLogLevel("info"))
}
