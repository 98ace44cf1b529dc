package bot

import (
	"errors"
	"sync"
)

// State is the phase of an in-progress goal creation dialog. A chat with no
// session is either unlinked or idle; the store only holds active dialogs.
type State string

const (
	StateAwaitingCategory State = "awaiting_category"
	StateAwaitingTitle    State = "awaiting_title"
)

var (
	// ErrAlreadyInProgress is returned by Begin when the chat already has an
	// active dialog. Callers treat it as benign.
	ErrAlreadyInProgress = errors.New("goal creation already in progress")

	// ErrNoSession is returned by mutations that require an active dialog.
	ErrNoSession = errors.New("no active session for chat")

	// ErrNoCategory is returned by Complete when no category was selected.
	ErrNoCategory = errors.New("session has no selected category")
)

// CategoryOption is one entry of the listing shown to the user at the start
// of a dialog. Ordinal is the 1-based number printed next to the title; the
// user may answer with either the ordinal or the exact title.
type CategoryOption struct {
	Ordinal int
	ID      int64
	Title   string
}

// Session is the per-chat dialog state. Categories snapshot the listing the
// user was shown, so a later selection is resolved against exactly what they
// saw even if boards change underneath.
type Session struct {
	ChatID        int64
	UserID        int64
	Categories    []CategoryOption
	CategoryID    int64
	CategoryTitle string
}

// State derives the dialog phase from what has been filled in so far.
func (s *Session) State() State {
	if s.CategoryID == 0 {
		return StateAwaitingCategory
	}
	return StateAwaitingTitle
}

// Completed carries everything needed to persist a goal once the final
// title arrives.
type Completed struct {
	UserID        int64
	CategoryID    int64
	CategoryTitle string
	Title         string
}

// SessionStore keeps active dialogs keyed by chat id. All methods are safe
// for concurrent use, though the poll loop processes updates one at a time.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]*Session)}
}

// Get returns a copy of the chat's session, if any.
func (s *SessionStore) Get(chatID int64) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[chatID]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// Begin opens a dialog for the chat with the category listing the user was
// just shown. Returns ErrAlreadyInProgress if a dialog is already open.
func (s *SessionStore) Begin(chatID, userID int64, categories []CategoryOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[chatID]; ok {
		return ErrAlreadyInProgress
	}
	s.sessions[chatID] = &Session{
		ChatID:     chatID,
		UserID:     userID,
		Categories: categories,
	}
	return nil
}

// SetCategory records the selected category and moves the dialog to the
// title phase.
func (s *SessionStore) SetCategory(chatID int64, choice CategoryOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[chatID]
	if !ok {
		return ErrNoSession
	}
	sess.CategoryID = choice.ID
	sess.CategoryTitle = choice.Title
	return nil
}

// Complete closes the dialog and returns the data needed to persist the
// goal. The session must have a selected category; callers persist the goal
// before calling Complete so a storage failure leaves the dialog open for a
// retry.
func (s *SessionStore) Complete(chatID int64, title string) (Completed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[chatID]
	if !ok {
		return Completed{}, ErrNoSession
	}
	if sess.CategoryID == 0 {
		return Completed{}, ErrNoCategory
	}
	delete(s.sessions, chatID)
	return Completed{
		UserID:        sess.UserID,
		CategoryID:    sess.CategoryID,
		CategoryTitle: sess.CategoryTitle,
		Title:         title,
	}, nil
}

// Cancel drops the chat's dialog. Cancelling a chat with no dialog is a
// no-op.
func (s *SessionStore) Cancel(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}

// Len reports the number of open dialogs.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
