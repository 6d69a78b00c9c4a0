package events

// Event type constants for kelindar/event.
const (
	TypeStreamConnected uint32 = iota + 1
	TypeStreamDisconnected
	TypeStreamAuthFailed
	TypeFormatCommitted
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// StreamConnectedEvent fires when a camera stream has authenticated and is
// live.
type StreamConnectedEvent struct {
	Camera string
	Role   string
}

// Type returns the event type identifier for StreamConnectedEvent.
func (e StreamConnectedEvent) Type() uint32 { return TypeStreamConnected }

// StreamDisconnectedEvent fires when a stream attempt fails or a live
// stream breaks; Backoff carries the delay before the next attempt.
type StreamDisconnectedEvent struct {
	Camera  string
	Role    string
	Error   string
	Backoff string
}

// Type returns the event type identifier for StreamDisconnectedEvent.
func (e StreamDisconnectedEvent) Type() uint32 { return TypeStreamDisconnected }

// StreamAuthFailedEvent fires when a camera permanently rejects the
// configured credentials and its supervisor gives up.
type StreamAuthFailedEvent struct {
	Camera string
	Role   string
}

// Type returns the event type identifier for StreamAuthFailedEvent.
func (e StreamAuthFailedEvent) Type() uint32 { return TypeStreamAuthFailed }

// FormatCommittedEvent fires when a pipeline declares or re-declares its
// output device format.
type FormatCommittedEvent struct {
	Camera string
	Role   string
	Width  uint32
	Height uint32
	FPS    uint8
	Codec  string
}

// Type returns the event type identifier for FormatCommittedEvent.
func (e FormatCommittedEvent) Type() uint32 { return TypeFormatCommitted }
