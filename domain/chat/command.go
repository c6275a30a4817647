// Package chat defines the inbound commands a client may send over its
// connection. Payloads are validated at the transport boundary before they
// reach the services.
package chat

// JoinCommand announces the display name for a connection.
type JoinCommand struct {
	Username string `json:"username" validate:"required,max=64"`
}

// PostMessageCommand broadcasts a text message to the room.
type PostMessageCommand struct {
	Content string `json:"content" validate:"required,max=4096"`
}

// DeleteMessageCommand retracts one of the requester's own messages.
type DeleteMessageCommand struct {
	MessageID int64 `json:"messageId" validate:"required,gt=0"`
}
