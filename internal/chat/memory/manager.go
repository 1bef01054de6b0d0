package memory

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/emyai/server/internal/chat/model"
	"github.com/emyai/server/internal/chat/store"
	errx "github.com/emyai/server/internal/core/error"
	logx "github.com/emyai/server/pkg/logger"
)

// persistRetryKeep is how many of the most recent turns survive the
// truncate-and-retry pass when the store rejects a write for capacity.
const persistRetryKeep = 20

// Manager owns the bounded, time-decayed conversation history and moves it
// between memory and the persistent store.
type Manager struct {
	store       store.Store
	maxMessages int
	maxAge      time.Duration
	now         func() time.Time
}

// NewManager builds a manager over the given store with the configured
// bounds.
func NewManager(s store.Store, cfg model.HistoryConfig) *Manager {
	return &Manager{
		store:       s,
		maxMessages: cfg.MaxMessages,
		maxAge:      cfg.MaxAge,
		// UTC, so persisted timestamps round-trip exactly through JSON.
		now: func() time.Time { return time.Now().UTC() },
	}
}

func historyKey(sessionID string) string {
	return sessionID + ":history"
}

// NewConversation returns an empty conversation under a fresh session id.
func (m *Manager) NewConversation() *Conversation {
	return m.conversation(newSessionID())
}

func (m *Manager) conversation(sessionID string) *Conversation {
	return &Conversation{
		sessionID:   sessionID,
		maxMessages: m.maxMessages,
		now:         m.now,
	}
}

// Load reads the session's history from the store. It never fails the
// caller: store and parse failures are logged and recovered as an empty
// history. Turns older than the configured max age are filtered out against
// the wall clock at load time, and the filtered result is persisted back
// immediately when anything was dropped.
func (m *Manager) Load(ctx context.Context, sessionID string) *Conversation {
	conv := m.conversation(sessionID)

	raw, ok, err := m.store.Get(ctx, historyKey(sessionID))
	if err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to load conversation history")
		return conv
	}
	if !ok {
		return conv
	}

	var turns []model.Turn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		logx.Warn().Err(err).Str("session_id", sessionID).Msg("conversation history is corrupt, starting empty")
		return conv
	}

	cutoff := m.now().Add(-m.maxAge)
	kept := make([]model.Turn, 0, len(turns))
	for _, t := range turns {
		if t.Timestamp.After(cutoff) {
			kept = append(kept, t)
		}
	}

	conv.turns = kept
	conv.truncateTo(m.maxMessages)

	if len(conv.turns) < len(turns) {
		// Self-healing compaction: write the filtered history back so the
		// next load starts clean.
		if err := m.Persist(ctx, conv); err != nil {
			logx.Warn().Err(err).Str("session_id", sessionID).Msg("failed to compact conversation history")
		}
	}

	return conv
}

// Persist serialises the conversation and writes it to the store. On a
// capacity rejection it truncates to the most recent turns and retries
// once; a second failure is logged and persistence is abandoned for this
// call, leaving the conversation memory-only for the rest of the session.
func (m *Manager) Persist(ctx context.Context, conv *Conversation) error {
	err := m.write(ctx, conv)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrCapacityExceeded) {
		logx.Error().Err(err).Str("session_id", conv.sessionID).Msg("failed to persist conversation history")
		return errx.WrapStore(err)
	}

	logx.Warn().
		Str("session_id", conv.sessionID).
		Int("kept", persistRetryKeep).
		Msg("store is full, truncating conversation history and retrying")

	conv.truncateTo(persistRetryKeep)
	if err := m.write(ctx, conv); err != nil {
		logx.Error().Err(err).Str("session_id", conv.sessionID).Msg("failed to persist even truncated conversation history")
		return errx.WrapStore(err)
	}
	return nil
}

func (m *Manager) write(ctx context.Context, conv *Conversation) error {
	b, err := json.Marshal(conv.turns)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, historyKey(conv.sessionID), string(b))
}

// Clear empties the session's history, removes the persisted record, and
// returns a fresh conversation under a new session id.
func (m *Manager) Clear(ctx context.Context, sessionID string) (*Conversation, error) {
	if err := m.store.Delete(ctx, historyKey(sessionID)); err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to delete conversation history")
		return nil, errx.WrapStore(err)
	}
	return m.NewConversation(), nil
}
