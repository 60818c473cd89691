package store

// Wire messages for the websocket sync endpoint. Clients send operations,
// the server answers with snapshots, push keys and errors.

const (
	OpSet          = "set"
	OpUpdate       = "update"
	OpPush         = "push"
	OpRemove       = "remove"
	OpOnDisconnect = "ondisconnect"
)

const (
	FrameSnapshot = "snapshot"
	FramePushed   = "pushed"
	FrameError    = "error"
)

type OpMessage struct {
	Op    string         `json:"op"`
	Path  string         `json:"path"`
	Value any            `json:"value,omitempty"`
	Field map[string]any `json:"fields,omitempty"`
}

type Frame struct {
	Type  string         `json:"type"`
	Room  string         `json:"room,omitempty"`
	Doc   map[string]any `json:"doc"`
	Key   string         `json:"key,omitempty"`
	Error string         `json:"error,omitempty"`
}
