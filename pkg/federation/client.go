// Package federation implements the federation-client collaborator
// contract: dispatch a cleared remote operation and report its outcome.
// It is transport-agnostic by contract; the kernel guarantees the
// caller's risk tier matches the frame's before this is ever called.
package federation

import (
	"context"

	"github.com/Mindburn-Labs/fck/pkg/contracts"
)

// Client is the federation collaborator contract.
type Client interface {
	Request(ctx context.Context, req contracts.FederationRequest) (contracts.FederationResponse, error)
}
