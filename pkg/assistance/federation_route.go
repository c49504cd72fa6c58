package assistance

import (
	"context"

	"github.com/Mindburn-Labs/fck/pkg/contracts"
	"github.com/Mindburn-Labs/fck/pkg/federation"
)

// FederationRouteHandler delegates an assistance request to a
// federation client, treating the query as the operation's payload.
// This is how AssistanceRouteFederation is served: the broker doesn't
// talk to the network itself, it hands off to the same collaborator
// contract the kernel uses for governed_federation_call.
type FederationRouteHandler struct {
	client    federation.Client
	operation string
}

func NewFederationRouteHandler(client federation.Client, operation string) *FederationRouteHandler {
	return &FederationRouteHandler{client: client, operation: operation}
}

func (h *FederationRouteHandler) Handle(ctx context.Context, req contracts.AssistanceRequest) (contracts.AssistanceResponse, error) {
	resp, err := h.client.Request(ctx, contracts.FederationRequest{
		TraceID:   req.TraceID,
		AgentID:   req.AgentID,
		Operation: h.operation,
		Payload:   map[string]interface{}{"query": req.Query},
		RiskTier:  req.RiskTier,
	})
	if err != nil {
		return contracts.AssistanceResponse{}, err
	}
	return contracts.AssistanceResponse{
		OK:       resp.OK,
		Response: resp.Result,
		Error:    resp.Error,
	}, nil
}
