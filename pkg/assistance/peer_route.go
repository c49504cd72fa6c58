package assistance

import (
	"context"

	"github.com/Mindburn-Labs/fck/pkg/contracts"
)

// PeerClient is the narrow contract a peer-agent transport must satisfy
// to back AssistanceRoutePeerAgent. It is intentionally separate from
// federation.Client: a peer call is agent-to-agent, not agent-to-center,
// and carries no source attribution.
type PeerClient interface {
	Ask(ctx context.Context, peerAgentID, query string, context_ map[string]interface{}) (ok bool, response interface{}, err error)
}

// PeerRouteHandler serves AssistanceRoutePeerAgent by asking a fixed
// peer agent.
type PeerRouteHandler struct {
	client      PeerClient
	peerAgentID string
}

func NewPeerRouteHandler(client PeerClient, peerAgentID string) *PeerRouteHandler {
	return &PeerRouteHandler{client: client, peerAgentID: peerAgentID}
}

func (h *PeerRouteHandler) Handle(ctx context.Context, req contracts.AssistanceRequest) (contracts.AssistanceResponse, error) {
	ok, response, err := h.client.Ask(ctx, h.peerAgentID, req.Query, req.Context)
	if err != nil {
		return contracts.AssistanceResponse{}, err
	}
	return contracts.AssistanceResponse{OK: ok, Response: response}, nil
}
