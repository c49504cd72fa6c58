// Package governance implements the policy-gate collaborator contract:
// given a canonical action frame, return ALLOW or DENY with a reason.
package governance

import (
	"context"

	"github.com/Mindburn-Labs/fck/pkg/contracts"
)

// Gate is the governance collaborator contract. An implementation must
// be a pure function of the frame plus its own pinned policy state; it
// must never mutate kernel state, and reasons it returns are opaque to
// the kernel — they are folded verbatim into error tags.
type Gate interface {
	Evaluate(ctx context.Context, frame *contracts.CanonicalActionFrame, requiredInvariants []string) (contracts.GovernanceDecision, error)
}
