package domain

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Screen paths.
const (
	PathLogin = "/login"
	PathUsers = "/users"
	PathEdit  = "/edit/"
)

// NavigationMessage is the state carried alongside a screen transition.
// User is the record context handed from the list to the edit screen;
// UpdatedUser and SuccessMessage travel back from edit to list.
type NavigationMessage struct {
	User           *UserRecord
	UpdatedUser    *UserPatch
	SuccessMessage string
	Timestamp      time.Time
}

// Envelope wraps a NavigationMessage so it can be read exactly once.
type Envelope struct {
	ID   string
	Path string

	mu  sync.Mutex
	msg *NavigationMessage
}

// NewEnvelope seals msg for delivery to the screen at path.
func NewEnvelope(path string, msg NavigationMessage) *Envelope {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	return &Envelope{ID: uuid.NewString(), Path: path, msg: &msg}
}

// Take returns the message and empties the envelope. Later calls, and calls
// on a nil envelope, return nil.
func (e *Envelope) Take() *NavigationMessage {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	msg := e.msg
	e.msg = nil
	return msg
}

