package assistance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Mindburn-Labs/fck/pkg/contracts"
)

// EscalationStatus is the lifecycle state of a human-escalation intent.
type EscalationStatus string

const (
	EscalationPending  EscalationStatus = "PENDING"
	EscalationApproved EscalationStatus = "APPROVED"
	EscalationDenied   EscalationStatus = "DENIED"
	EscalationTimedOut EscalationStatus = "TIMED_OUT"
)

// EscalationIntent is a pending human-escalation request created by
// HumanEscalationHandler.Handle. It is resolved out-of-band by a call
// to Approve or Deny from whatever surface presents it to an operator.
type EscalationIntent struct {
	IntentID      string
	AgentID       string
	Query         string
	RiskTier      contracts.RiskTier
	ApproverRoles []string
	Quorum        int
	CreatedAt     time.Time
	ExpiresAt     time.Time
	Status        EscalationStatus
	approvals     map[string]bool
}

// Clock abstracts time.Now for deterministic tests.
type Clock func() time.Time

// HumanEscalationHandler implements RouteHandler for
// AssistanceRouteHumanEscalation. A request immediately creates a
// pending intent; Handle blocks only long enough to register it —
// resolution happens asynchronously via Approve/Deny, so an unresolved
// intent is reported back as {ok:false} rather than hanging the kernel.
type HumanEscalationHandler struct {
	mu            sync.Mutex
	intents       map[string]*EscalationIntent
	clock         Clock
	approverRoles []string
	quorum        int
	timeout       time.Duration
}

// NewHumanEscalationHandler builds a handler requiring quorum approvals
// within timeout of creation. approverRoles is recorded on each intent;
// Approve counts every distinct approverID and does not check it
// against those roles.
func NewHumanEscalationHandler(approverRoles []string, quorum int, timeout time.Duration) *HumanEscalationHandler {
	return &HumanEscalationHandler{
		intents:       make(map[string]*EscalationIntent),
		clock:         time.Now,
		approverRoles: approverRoles,
		quorum:        quorum,
		timeout:       timeout,
	}
}

func (h *HumanEscalationHandler) WithClock(clock Clock) *HumanEscalationHandler {
	h.clock = clock
	return h
}

func (h *HumanEscalationHandler) Handle(ctx context.Context, req contracts.AssistanceRequest) (contracts.AssistanceResponse, error) {
	now := h.clock()
	intent := &EscalationIntent{
		IntentID:      uuid.New().String(),
		AgentID:       req.AgentID,
		Query:         req.Query,
		RiskTier:      req.RiskTier,
		ApproverRoles: h.approverRoles,
		Quorum:        h.quorum,
		CreatedAt:     now,
		ExpiresAt:     now.Add(h.timeout),
		Status:        EscalationPending,
		approvals:     make(map[string]bool),
	}

	h.mu.Lock()
	h.intents[intent.IntentID] = intent
	h.mu.Unlock()

	// A freshly created intent has not yet been resolved by a human;
	// the kernel's bounded assistance helper treats this as a failed
	// attempt at this route, same as any other unresolved collaborator
	// call. Callers that want to poll for resolution use Status.
	return contracts.AssistanceResponse{
		OK:    false,
		Error: "ESCALATION_PENDING:" + intent.IntentID,
	}, nil
}

// Approve records an approval from approverID. Once quorum is reached
// the intent's status becomes APPROVED.
func (h *HumanEscalationHandler) Approve(intentID, approverID string) (*EscalationIntent, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	intent, ok := h.intents[intentID]
	if !ok {
		return nil, fmt.Errorf("assistance: escalation intent %q not found", intentID)
	}
	if intent.Status != EscalationPending {
		return intent, fmt.Errorf("assistance: escalation intent %q is not pending (status=%s)", intentID, intent.Status)
	}
	if h.clock().After(intent.ExpiresAt) {
		intent.Status = EscalationTimedOut
		return intent, nil
	}

	intent.approvals[approverID] = true
	if len(intent.approvals) >= intent.Quorum {
		intent.Status = EscalationApproved
	}
	return intent, nil
}

// Deny marks an intent denied regardless of current approval count.
func (h *HumanEscalationHandler) Deny(intentID, denierID string) (*EscalationIntent, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	intent, ok := h.intents[intentID]
	if !ok {
		return nil, fmt.Errorf("assistance: escalation intent %q not found", intentID)
	}
	if intent.Status != EscalationPending {
		return intent, fmt.Errorf("assistance: escalation intent %q is not pending (status=%s)", intentID, intent.Status)
	}
	intent.Status = EscalationDenied
	return intent, nil
}
