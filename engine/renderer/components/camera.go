package components

import (
	"github.com/chewxy/math32"
	"github.com/spaghettifunk/stratus/engine/core"
	"github.com/spaghettifunk/stratus/engine/math"
)

const (
	// Radians of rotation per window height of pointer travel.
	orbitSensitivity float32 = 3.0
	// Radius change per wheel notch.
	zoomStep float32 = 0.5
	// Smallest radius used to scale panning.
	minPanRadius float32 = 0.5

	cameraFovY float32 = 60.0
	cameraNear float32 = 0.1
	cameraFar  float32 = 1000.0
)

/**
 * @brief A camera orbiting a target point. Dragging rotates around the target,
 * dragging with left shift held pans the target and the wheel zooms.
 * Azimuth and elevation are always kept in [0, 2π).
 */
type OrbitCamera struct {
	Radius    float32
	Azimuth   float32
	Elevation float32
	Target    math.Vec3

	shiftDown  bool
	upsideDown bool
	// Previous pointer position; dragging is ignored until one is recorded.
	previousX float32
	previousY float32
	tracking  bool

	/** @brief Internal flag used to determine when the eye position must be rebuilt. */
	isDirty bool
	eye     math.Vec3
	// Unit vector from the target towards the eye.
	offset math.Vec3
}

func NewOrbitCamera() *OrbitCamera {
	camera := &OrbitCamera{}
	camera.Reset()
	return camera
}

func (c *OrbitCamera) Reset() {
	c.Radius = 10.0
	c.Azimuth = 0.0
	c.Elevation = math.Pi / 4.0
	c.Target = math.NewVec3(0, 0, 0.5)
	c.shiftDown = false
	c.tracking = false
	c.isDirty = true
}

// SetOrbit places the camera; angles are in radians and get wrapped.
func (c *OrbitCamera) SetOrbit(radius, azimuth, elevation float32, target math.Vec3) {
	c.Radius = math32.Max(radius, 0)
	c.Azimuth = math.WrapAngle(azimuth)
	c.Elevation = math.WrapAngle(elevation)
	c.Target = target
	c.isDirty = true
}

// OnInput applies one input event and reports whether the camera moved.
func (c *OrbitCamera) OnInput(event core.InputEvent) bool {
	switch event.Type {
	case core.INPUT_MOUSE_MOTION:
		if event.Buttons == 0 {
			return false
		}
		moved := false
		if c.tracking {
			dx := event.X - c.previousX
			dy := event.Y - c.previousY
			if c.shiftDown {
				c.pan(dx, dy)
			} else {
				c.orbit(dx, dy)
			}
			moved = true
		}
		c.previousX, c.previousY = event.X, event.Y
		c.tracking = true
		return moved
	case core.INPUT_MOUSE_BUTTON_UP:
		c.tracking = false
	case core.INPUT_KEY_DOWN:
		if event.Key == core.KEY_LSHIFT {
			c.shiftDown = true
		}
	case core.INPUT_KEY_UP:
		if event.Key == core.KEY_LSHIFT {
			c.shiftDown = false
		}
	case core.INPUT_MOUSE_WHEEL:
		c.Radius = math32.Max(c.Radius-event.WheelY*zoomStep, 0)
		c.isDirty = true
		return true
	}
	return false
}

func (c *OrbitCamera) orbit(dx, dy float32) {
	if c.UpsideDown() {
		c.Azimuth += dx * orbitSensitivity
	} else {
		c.Azimuth -= dx * orbitSensitivity
	}
	c.Elevation += dy * orbitSensitivity
	c.Azimuth = math.WrapAngle(c.Azimuth)
	c.Elevation = math.WrapAngle(c.Elevation)
	c.isDirty = true
}

func (c *OrbitCamera) pan(dx, dy float32) {
	// Axes come from the angles so a zero radius or a pole still pans.
	ce, se := math32.Cos(c.Elevation), math32.Sin(c.Elevation)
	ca, sa := math32.Cos(c.Azimuth), math32.Sin(c.Azimuth)
	forward := math.NewVec3(-ce*ca, -ce*sa, -se)
	right := math.NewVec3(-sa, ca, 0)
	if ce < 0 {
		right = right.Mul(-1)
	}
	up := right.Cross(forward)

	sensitivity := 2.0 * math32.Max(c.Radius, minPanRadius)
	c.Target = c.Target.Sub(right.Mul(dx * sensitivity))
	c.Target = c.Target.Add(up.Mul(dy * sensitivity))
	c.isDirty = true
}

// UpsideDown reports whether the elevation has carried the eye over a pole,
// in which case the up axis is flipped.
func (c *OrbitCamera) UpsideDown() bool {
	return int((math32.Abs(c.Elevation)+math.Pi/2)/math.Pi)%2 == 1
}

func (c *OrbitCamera) GetEye() math.Vec3 {
	if c.isDirty {
		ce, se := math32.Cos(c.Elevation), math32.Sin(c.Elevation)
		ca, sa := math32.Cos(c.Azimuth), math32.Sin(c.Azimuth)
		c.offset = math.NewVec3(ce*ca, ce*sa, se)
		c.eye = c.Target.Add(c.offset.Mul(c.Radius))
		c.upsideDown = c.UpsideDown()
		c.isDirty = false
	}
	return c.eye
}

func (c *OrbitCamera) GetUp() math.Vec3 {
	c.GetEye()
	if c.upsideDown {
		return math.NewVec3(0, 0, -1)
	}
	return math.NewVec3(0, 0, 1)
}

// GetView looks along the orbit direction rather than at Target, which the
// eye coincides with at radius 0.
func (c *OrbitCamera) GetView() math.Mat4 {
	eye := c.GetEye()
	return math.LookAt(eye, eye.Sub(c.offset), c.GetUp())
}

// ClipFromWorld is the view-projection matrix for a viewport of the given aspect ratio.
func (c *OrbitCamera) ClipFromWorld(aspect float32) math.Mat4 {
	projection := math.Perspective(math.DegToRad(cameraFovY), aspect, cameraNear, cameraFar)
	return projection.Mul4(c.GetView())
}
