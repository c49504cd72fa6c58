// Package signing implements update-package signature verification.
// The kernel never implements a signature algorithm itself — §4.5
// requires the verifier be injected because the choice of algorithm is
// policy, not kernel concern — this package supplies one concrete
// implementation of that injected contract.
package signing

import (
	"context"

	"github.com/Mindburn-Labs/fck/pkg/contracts"
)

// Verifier is the injected signature-verification callback the kernel
// calls from ApplyUpdatePackage. It must be pure with respect to kernel
// state.
type Verifier func(ctx context.Context, pkg *contracts.UpdatePackage, trustedSigners []string) (bool, error)
