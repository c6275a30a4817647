// Package domain contains core concepts of the chat system.
// This file defines Message entries and related rules.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// Message represents one entry of the durable chat log.
//
// ID is assigned by the store, strictly increasing in insertion order.
// Author and CreatedAt never change after creation. Content is nil once
// the author has retracted the message; the transition is one-way.
type Message struct {
	ID        int64
	Author    string
	Content   *string
	CreatedAt time.Time
}

// Deleted reports whether the message has been tombstoned.
func (m Message) Deleted() bool {
	return m.Content == nil
}
