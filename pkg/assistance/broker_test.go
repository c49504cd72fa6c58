package assistance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mindburn-Labs/fck/pkg/contracts"
)

type fakeRouteHandler struct {
	resp contracts.AssistanceResponse
	err  error
}

func (f *fakeRouteHandler) Handle(ctx context.Context, req contracts.AssistanceRequest) (contracts.AssistanceResponse, error) {
	return f.resp, f.err
}

func TestRouter_ReturnsFirstSuccessfulRoute(t *testing.T) {
	router := NewRouter().
		Register(contracts.AssistanceRouteFederation, &fakeRouteHandler{resp: contracts.AssistanceResponse{OK: false, Error: "DOWN"}}).
		Register(contracts.AssistanceRouteHumanEscalation, &fakeRouteHandler{resp: contracts.AssistanceResponse{OK: true, Response: "approved"}})

	resp, err := router.RequestAssistance(context.Background(), contracts.AssistanceRequest{})
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, contracts.AssistanceRouteHumanEscalation, resp.RouteUsed)
}

func TestRouter_AllRoutesFail(t *testing.T) {
	router := NewRouter().
		Register(contracts.AssistanceRouteFederation, &fakeRouteHandler{resp: contracts.AssistanceResponse{OK: false, Error: "DOWN"}})

	resp, err := router.RequestAssistance(context.Background(), contracts.AssistanceRequest{})
	require.NoError(t, err)
	assert.False(t, resp.OK)
	assert.Equal(t, "DOWN", resp.Error)
}

func TestHumanEscalationHandler_ApprovalReachesQuorum(t *testing.T) {
	now := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	h := NewHumanEscalationHandler([]string{"operator"}, 2, time.Hour).WithClock(func() time.Time { return now })

	resp, err := h.Handle(context.Background(), contracts.AssistanceRequest{AgentID: "agent_1", Query: "need help"})
	require.NoError(t, err)
	assert.False(t, resp.OK)

	var intentID string
	for id := range h.intents {
		intentID = id
	}
	require.NotEmpty(t, intentID)

	intent, err := h.Approve(intentID, "alice")
	require.NoError(t, err)
	assert.Equal(t, EscalationPending, intent.Status)

	intent, err = h.Approve(intentID, "bob")
	require.NoError(t, err)
	assert.Equal(t, EscalationApproved, intent.Status)
}

func TestHumanEscalationHandler_ExpiredApprovalTimesOut(t *testing.T) {
	now := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	current := now
	h := NewHumanEscalationHandler([]string{"operator"}, 1, time.Minute).WithClock(func() time.Time { return current })

	_, err := h.Handle(context.Background(), contracts.AssistanceRequest{AgentID: "agent_1"})
	require.NoError(t, err)

	var intentID string
	for id := range h.intents {
		intentID = id
	}

	current = now.Add(2 * time.Minute)
	intent, err := h.Approve(intentID, "alice")
	require.NoError(t, err)
	assert.Equal(t, EscalationTimedOut, intent.Status)
}
