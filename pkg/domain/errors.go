package domain

import "errors"

// ErrNotReady is returned when a session operation is invoked before Boot has completed.
var ErrNotReady = errors.New("session not ready")

// ErrAlreadyBooted is returned when Boot is called on a session that is booting or booted.
var ErrAlreadyBooted = errors.New("session already booted")

// ErrSessionClosed is returned when a request is sent to a closed session.
var ErrSessionClosed = errors.New("session closed")

// ErrUnknownConfigOption is returned when a config key has no descriptor.
var ErrUnknownConfigOption = errors.New("unknown config option")

// ErrInvalidConfigValue is returned when a config value has no matching payload field.
var ErrInvalidConfigValue = errors.New("invalid config value")

// ErrDecode is returned when an encoded build string cannot be decoded.
var ErrDecode = errors.New("failed to decode build")

// ErrParse is returned when decoded build text cannot be parsed.
var ErrParse = errors.New("failed to parse build")

// ErrTreeNotFound is returned when the engine has no tree data for a version.
var ErrTreeNotFound = errors.New("tree not found")
