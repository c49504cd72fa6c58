// Package audit implements a hash-chained, tamper-evident log of
// kernel decisions. This strengthens the "tamper-evident... recorded"
// language of the kernel's purpose beyond the bare monotonic counter:
// each entry links to the hash of its predecessor, so any retroactive
// edit to the log is detectable by replaying VerifyChain.
package audit

import (
	"fmt"
	"time"

	"github.com/Mindburn-Labs/fck/pkg/canonicalize"
)

// Clock abstracts time.Now so tests can pin timestamps.
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// Entry is one tamper-evident log record: one per governance decision,
// attestation outcome, or state mutation the kernel wants recorded.
type Entry struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	AgentID      string    `json:"agent_id"`
	Action       string    `json:"action"`
	Target       string    `json:"target"`
	Details      string    `json:"details,omitempty"`
	PreviousHash string    `json:"previous_hash"`
	Hash         string    `json:"hash"`
}

// Log manages a sequence of audit entries, chained by hash.
type Log struct {
	Entries []Entry
	clock   Clock
}

// NewLog creates an empty audit log. If clock is nil, the default
// wall-clock is used.
func NewLog(clock Clock) *Log {
	if clock == nil {
		clock = wallClock{}
	}
	return &Log{Entries: make([]Entry, 0), clock: clock}
}

// Append adds a new entry, linking it to the hash of the preceding
// entry (or the empty string for the first entry in the log).
func (l *Log) Append(agentID, action, target, details string) (*Entry, error) {
	prevHash := ""
	if len(l.Entries) > 0 {
		prevHash = l.Entries[len(l.Entries)-1].Hash
	}

	now := l.clock.Now()
	entry := Entry{
		ID:           fmt.Sprintf("evt_%d", now.UnixNano()),
		Timestamp:    now.UTC(),
		AgentID:      agentID,
		Action:       action,
		Target:       target,
		Details:      details,
		PreviousHash: prevHash,
	}

	hash, err := computeEntryHash(&entry)
	if err != nil {
		return nil, err
	}
	entry.Hash = hash

	l.Entries = append(l.Entries, entry)
	return &entry, nil
}

// VerifyChain checks that every entry's PreviousHash matches its actual
// predecessor's Hash, and that every entry's stored Hash matches a
// fresh recomputation from its own fields.
func (l *Log) VerifyChain() (bool, error) {
	if len(l.Entries) == 0 {
		return true, nil
	}

	for i, entry := range l.Entries {
		if i > 0 {
			if entry.PreviousHash != l.Entries[i-1].Hash {
				return false, fmt.Errorf("audit: chain broken at index %d: previous hash mismatch", i)
			}
		} else if entry.PreviousHash != "" {
			return false, fmt.Errorf("audit: genesis entry has non-empty previous hash")
		}

		computed, err := computeEntryHash(&entry)
		if err != nil {
			return false, fmt.Errorf("audit: recomputing hash at index %d: %w", i, err)
		}
		if computed != entry.Hash {
			return false, fmt.Errorf("audit: integrity failure at index %d: computed %s, stored %s", i, computed, entry.Hash)
		}
	}

	return true, nil
}

func computeEntryHash(e *Entry) (string, error) {
	data := map[string]interface{}{
		"id":            e.ID,
		"timestamp":     e.Timestamp.Format(time.RFC3339Nano),
		"agent_id":      e.AgentID,
		"action":        e.Action,
		"target":        e.Target,
		"details":       e.Details,
		"previous_hash": e.PreviousHash,
	}
	return canonicalize.CanonicalHash(data)
}
