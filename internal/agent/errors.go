package agent

import "errors"

var (
	ErrUnknownCapability       = errors.New("unknown capability")
	ErrCapabilityNotRegistered = errors.New("capability not registered")
	ErrUnsafePath              = errors.New("unsafe path")
	ErrWorkspaceNotReady       = errors.New("workspace not ready")
)
