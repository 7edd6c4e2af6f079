// Package wizard implements a generic finite-state conversation engine.
// A conversation advances through named states, one step handler per
// state; the engine knows nothing about books or any other domain.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bookdenapp/bookden-bot/internal/id"
)

// State names one node in a conversation's state graph.
type State string

// StateDone is the shared terminal state. Every conversation type ends
// here, whether by finishing, cancelling, or failing.
const StateDone State = "done"

// Input is one user-supplied action within a conversation: a text
// message, a photo attachment, or both.
type Input struct {
	Text  string
	Photo []byte
}

// StepFunc handles one input while the conversation sits in one state.
// It returns the state to transition to; returning the current state
// re-prompts without advancing. Returning an error (or panicking)
// terminates the conversation.
type StepFunc func(ctx context.Context, input Input) (State, error)

// Conversation describes a single wizard: how it starts, its step
// handlers, and its terminal hooks. Each wizard owns its own
// cancellation and failure acknowledgments so a status wizard never
// ends with the add wizard's message.
type Conversation struct {
	Name string
	// Start emits the first prompt and returns the entry state, or
	// StateDone when the conversation has nothing to do (e.g. an empty
	// library for a selection wizard).
	Start func(ctx context.Context) (State, error)
	// Steps maps each non-terminal state to its handler.
	Steps map[State]StepFunc
	// OnCancel acknowledges an explicit cancellation.
	OnCancel func(ctx context.Context)
	// OnError reports an unexpected internal failure to the user.
	OnError func(ctx context.Context)
}

// session is one active conversation for one user. The draft being
// accumulated lives inside the conversation's closures and dies with
// the session.
type session struct {
	mu        sync.Mutex
	id        string
	conv      *Conversation
	state     State
	startedAt time.Time
	lastSeen  time.Time
}

// ErrNoSession is returned by Step when the user has no active conversation.
var ErrNoSession = errors.New("no active conversation")

// Engine drives wizard sessions, at most one per user. Starting a new
// conversation replaces any existing one, discarding its draft.
type Engine struct {
	logger *slog.Logger
	ttl    time.Duration

	mu       sync.RWMutex
	sessions map[int64]*session
}

// NewEngine creates an engine. ttl bounds how long an idle session
// survives; zero disables expiry.
func NewEngine(logger *slog.Logger, ttl time.Duration) *Engine {
	return &Engine{
		logger:   logger,
		ttl:      ttl,
		sessions: make(map[int64]*session),
	}
}

// Start begins a conversation for the user. Any previous session is
// discarded first: a user who starts a new wizard mid-flow abandons the
// old draft rather than corrupting it.
func (e *Engine) Start(ctx context.Context, userID int64, conv *Conversation) error {
	if conv.Start == nil {
		return fmt.Errorf("conversation %q has no start", conv.Name)
	}

	state, err := e.runStart(ctx, conv)
	if err != nil {
		return fmt.Errorf("start %s: %w", conv.Name, err)
	}
	if state == StateDone {
		return nil
	}
	if _, ok := conv.Steps[state]; !ok {
		return fmt.Errorf("conversation %q entry state %q has no handler", conv.Name, state)
	}

	now := time.Now()
	sess := &session{
		id:        id.MustGenerate("conv"),
		conv:      conv,
		state:     state,
		startedAt: now,
		lastSeen:  now,
	}

	e.mu.Lock()
	if old, ok := e.sessions[userID]; ok {
		e.logger.Debug("replacing active conversation",
			"user_id", userID, "old", old.conv.Name, "new", conv.Name)
	}
	e.sessions[userID] = sess
	e.mu.Unlock()

	e.logger.Info("conversation started",
		"user_id", userID, "conversation", conv.Name, "session", sess.id)
	return nil
}

func (e *Engine) runStart(ctx context.Context, conv *Conversation) (state State, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in start: %v", r)
		}
	}()
	return conv.Start(ctx)
}

// Active reports whether the user has a live conversation. Expired
// sessions are reaped here, on the user's next inbound action.
func (e *Engine) Active(userID int64) bool {
	e.mu.RLock()
	sess, ok := e.sessions[userID]
	e.mu.RUnlock()
	if !ok {
		return false
	}

	if e.ttl > 0 && time.Since(sess.lastSeen) > e.ttl {
		e.remove(userID, sess)
		e.logger.Info("conversation expired",
			"user_id", userID, "conversation", sess.conv.Name, "session", sess.id)
		return false
	}
	return true
}

// Step routes one input to the user's active conversation. A handler
// error or panic terminates the conversation: the user gets the
// conversation's failure message and the draft is discarded, never a
// silently stuck session.
func (e *Engine) Step(ctx context.Context, userID int64, input Input) error {
	e.mu.RLock()
	sess, ok := e.sessions[userID]
	e.mu.RUnlock()
	if !ok {
		return ErrNoSession
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastSeen = time.Now()

	step, ok := sess.conv.Steps[sess.state]
	if !ok {
		// A state without a handler is a programming error; fail closed.
		e.remove(userID, sess)
		e.notifyError(ctx, sess)
		return fmt.Errorf("state %q of %s has no handler", sess.state, sess.conv.Name)
	}

	next, err := e.runStep(ctx, step, input)
	if err != nil {
		e.remove(userID, sess)
		e.notifyError(ctx, sess)
		e.logger.Error("conversation step failed",
			"user_id", userID, "conversation", sess.conv.Name,
			"state", sess.state, "error", err)
		return nil
	}

	if next == StateDone {
		e.remove(userID, sess)
		e.logger.Info("conversation finished",
			"user_id", userID, "conversation", sess.conv.Name, "session", sess.id)
		return nil
	}

	sess.state = next
	return nil
}

func (e *Engine) runStep(ctx context.Context, step StepFunc, input Input) (next State, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in step: %v", r)
		}
	}()
	return step(ctx, input)
}

// Cancel aborts the user's conversation, if any, discarding its draft
// and emitting the conversation's own cancellation acknowledgment.
// It reports whether a conversation was active.
func (e *Engine) Cancel(ctx context.Context, userID int64) bool {
	e.mu.RLock()
	sess, ok := e.sessions[userID]
	e.mu.RUnlock()
	if !ok {
		return false
	}

	e.remove(userID, sess)
	if sess.conv.OnCancel != nil {
		sess.conv.OnCancel(ctx)
	}
	e.logger.Info("conversation cancelled",
		"user_id", userID, "conversation", sess.conv.Name, "session", sess.id)
	return true
}

func (e *Engine) notifyError(ctx context.Context, sess *session) {
	if sess.conv.OnError != nil {
		sess.conv.OnError(ctx)
	}
}

// remove deletes the session only if it is still the user's current one;
// a concurrent Start may already have replaced it.
func (e *Engine) remove(userID int64, sess *session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cur, ok := e.sessions[userID]; ok && cur == sess {
		delete(e.sessions, userID)
	}
}
