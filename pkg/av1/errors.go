package av1

import "errors"

// Session errors. Engine failures wrap a *ports.StatusError carrying the
// native status code and message.
var (
	// ErrConfigDefault means the engine could not produce a baseline configuration.
	ErrConfigDefault = errors.New("av1: no default encoder configuration")
	// ErrEngineInit means the engine rejected the configuration.
	ErrEngineInit = errors.New("av1: engine initialization failed")
	// ErrEngineEncode means the engine rejected a pushed frame.
	ErrEngineEncode = errors.New("av1: encode failed")
	// ErrEngineDecode means the engine rejected compressed input.
	ErrEngineDecode = errors.New("av1: decode failed")
	// ErrEngineReconfig means the engine rejected an in-place configuration update.
	ErrEngineReconfig = errors.New("av1: reconfiguration failed")
	// ErrInsufficientData means a pushed buffer is smaller than one 4:2:0 frame.
	// No engine call is made.
	ErrInsufficientData = errors.New("av1: insufficient frame data")
	// ErrNoOutput means a push produced no frames. It is not a hard failure.
	ErrNoOutput = errors.New("av1: no output")
	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("av1: session closed")
)
