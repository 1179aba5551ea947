package core

import (
	"errors"
)

var (
	ErrSwapchainBooting = errors.New("swapchain resized or recreated, booting")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrInvalidScene     = errors.New("invalid scene")
	ErrTopologyChanged  = errors.New("scene topology changed, restart required")
	ErrUnknown          = errors.New("unknown")
)
