package core

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// KeyCode values follow the Windows virtual-key table; letters match ASCII.
type KeyCode uint16

const (
	KEY_BACKSPACE KeyCode = 0x08
	KEY_TAB       KeyCode = 0x09
	KEY_ENTER     KeyCode = 0x0D
	KEY_ESCAPE    KeyCode = 0x1B
	KEY_SPACE     KeyCode = 0x20
	KEY_LEFT      KeyCode = 0x25
	KEY_UP        KeyCode = 0x26
	KEY_RIGHT     KeyCode = 0x27
	KEY_DOWN      KeyCode = 0x28
	KEY_A         KeyCode = 0x41
	KEY_B         KeyCode = 0x42
	KEY_C         KeyCode = 0x43
	KEY_D         KeyCode = 0x44
	KEY_E         KeyCode = 0x45
	KEY_F         KeyCode = 0x46
	KEY_G         KeyCode = 0x47
	KEY_H         KeyCode = 0x48
	KEY_I         KeyCode = 0x49
	KEY_J         KeyCode = 0x4A
	KEY_K         KeyCode = 0x4B
	KEY_L         KeyCode = 0x4C
	KEY_M         KeyCode = 0x4D
	KEY_N         KeyCode = 0x4E
	KEY_O         KeyCode = 0x4F
	KEY_P         KeyCode = 0x50
	KEY_Q         KeyCode = 0x51
	KEY_R         KeyCode = 0x52
	KEY_S         KeyCode = 0x53
	KEY_T         KeyCode = 0x54
	KEY_U         KeyCode = 0x55
	KEY_V         KeyCode = 0x56
	KEY_W         KeyCode = 0x57
	KEY_X         KeyCode = 0x58
	KEY_Y         KeyCode = 0x59
	KEY_Z         KeyCode = 0x5A
	KEY_F1        KeyCode = 0x70
	KEY_F2        KeyCode = 0x71
	KEY_F3        KeyCode = 0x72
	KEY_LSHIFT    KeyCode = 0xA0
	KEY_RSHIFT    KeyCode = 0xA1
	KEY_LCONTROL  KeyCode = 0xA2
	KEY_RCONTROL  KeyCode = 0xA3
)

// InputEventType tags the payload carried by an InputEvent.
type InputEventType uint8

const (
	INPUT_MOUSE_MOTION InputEventType = iota
	INPUT_MOUSE_BUTTON_DOWN
	INPUT_MOUSE_BUTTON_UP
	INPUT_MOUSE_WHEEL
	INPUT_KEY_DOWN
	INPUT_KEY_UP
)

// InputEvent is one window input notification, queued by the platform and
// drained once per frame.
type InputEvent struct {
	Type InputEventType
	// Pointer position in window-height units, valid for motion and button events.
	X, Y float32
	// Buttons held during a motion event, one bit per Button.
	Buttons uint8
	Button  Button
	Key     KeyCode
	WheelX  float32
	WheelY  float32
}

func (t InputEventType) String() string {
	switch t {
	case INPUT_MOUSE_MOTION:
		return "mouse-motion"
	case INPUT_MOUSE_BUTTON_DOWN:
		return "mouse-button-down"
	case INPUT_MOUSE_BUTTON_UP:
		return "mouse-button-up"
	case INPUT_MOUSE_WHEEL:
		return "mouse-wheel"
	case INPUT_KEY_DOWN:
		return "key-down"
	case INPUT_KEY_UP:
		return "key-up"
	default:
		return "unknown"
	}
}
