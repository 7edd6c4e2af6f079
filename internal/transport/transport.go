// Package transport defines the boundary with the messaging layer.
// The core only needs three outbound primitives and a normalized inbound
// event; keyboards, menus, and delivery mechanics belong to the adapter
// that implements Sender.
package transport

import (
	"context"
	"sync"
)

// Event is one normalized inbound user action.
type Event struct {
	UserID int64
	// Text is the message body, if any. Commands arrive as "/name args".
	Text string
	// Photo holds image bytes when the action carries an attachment.
	Photo []byte
	// Keyword is set by adapters whose protocol identifies commands
	// natively; when empty the dispatcher parses Text instead.
	Keyword string
}

// Sender delivers replies to a user.
type Sender interface {
	SendText(ctx context.Context, userID int64, text string) error
	SendPhoto(ctx context.Context, userID int64, image []byte, caption string) error
	SendDocument(ctx context.Context, userID int64, data []byte, filename string) error
}

// Message is one recorded outbound message.
type Message struct {
	UserID   int64
	Text     string
	Photo    []byte
	Caption  string
	Document []byte
	Filename string
}

// Recorder is an in-memory Sender for tests. It records every outbound
// message in order.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) SendText(_ context.Context, userID int64, text string) error {
	r.record(Message{UserID: userID, Text: text})
	return nil
}

func (r *Recorder) SendPhoto(_ context.Context, userID int64, image []byte, caption string) error {
	r.record(Message{UserID: userID, Photo: image, Caption: caption})
	return nil
}

func (r *Recorder) SendDocument(_ context.Context, userID int64, data []byte, filename string) error {
	r.record(Message{UserID: userID, Document: data, Filename: filename})
	return nil
}

func (r *Recorder) record(m Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, m)
}

// Messages returns a copy of everything sent so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Last returns the most recent message, or a zero Message when nothing
// was sent.
func (r *Recorder) Last() Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return Message{}
	}
	return r.messages[len(r.messages)-1]
}

// Reset clears the recorded messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}
