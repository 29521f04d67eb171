package chat

// Event types carried on a room's broadcast channel. These are the wire
// values; clients switch on the "type" field directly.
const (
	EventJoin            = "join"
	EventLeave           = "leave"
	EventMessage         = "message"
	EventError           = "error"
	EventUpdateRoomsList = "update-rooms-list"
)

// Event is a single broadcast frame. Value and Username are omitted from the
// JSON encoding when empty.
type Event struct {
	Type     string `json:"type"`
	Value    string `json:"value,omitempty"`
	Username string `json:"username,omitempty"`
}
