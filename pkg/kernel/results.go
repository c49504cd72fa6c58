package kernel

import "github.com/Mindburn-Labs/fck/pkg/contracts"

// CallResult is the structured outcome of GovernedFederationCall. Once
// the kernel has booted, every failure path sets Error to one of the
// stable tags in errors.go (with an optional subreason and assistance
// suffix); before Boot, Error is "kernel has not booted". No error is
// returned, but a panic raised by the governance, attestation or
// federation collaborator is not recovered.
type CallResult struct {
	OK             bool
	Result         interface{}
	Error          string
	InputFrameHash string
	UVAHash        string
	Source         string
}

// AssistResult is the structured outcome of RequestAssistance.
type AssistResult struct {
	OK             bool
	Response       interface{}
	Error          string
	InputFrameHash string
	UVAHash        string
	RouteUsed      contracts.AssistanceRoute
}

// UpdateResult is the structured outcome of ApplyUpdatePackage.
type UpdateResult struct {
	OK               bool
	Error            string
	InputFrameHash   string
	UVAHash          string
	LastManifestHash string
}
