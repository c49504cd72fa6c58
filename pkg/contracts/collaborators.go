package contracts

// GovernanceVerdict is the outcome of a GovernanceGate evaluation.
type GovernanceVerdict string

const (
	GovernanceAllow GovernanceVerdict = "ALLOW"
	GovernanceDeny  GovernanceVerdict = "DENY"
)

// GovernanceDecision is returned by GovernanceGate.Evaluate. It must be
// a pure function of the frame plus the evaluator's pinned policy
// state; it must never mutate kernel state.
type GovernanceDecision struct {
	Verdict    GovernanceVerdict
	Reason     string
	PolicyHash string
}

// AttestationVerdict is the outcome of an AttestationClient call.
type AttestationVerdict string

const (
	AttestationAttested AttestationVerdict = "ATTESTED"
	AttestationRefused  AttestationVerdict = "REFUSED"
)

// AttestationResult is returned by AttestationClient.Attest. It may
// only be invoked after a governance ALLOW.
type AttestationResult struct {
	Verdict AttestationVerdict
	UVAHash string
	Reason  string
}

// FederationRequest is the argument to FederationClient.Request.
type FederationRequest struct {
	TraceID   string
	AgentID   string
	Operation string
	Payload   map[string]any
	RiskTier  RiskTier
}

// FederationResponse is the result of FederationClient.Request.
type FederationResponse struct {
	OK     bool
	Result any
	Error  string
	Source string
}

// AssistanceRequest is the argument to AssistanceBroker.RequestAssistance.
type AssistanceRequest struct {
	TraceID  string
	AgentID  string
	Query    string
	Context  map[string]any
	RiskTier RiskTier
}

// AssistanceResponse is the result of AssistanceBroker.RequestAssistance.
type AssistanceResponse struct {
	OK        bool
	Response  any
	RouteUsed AssistanceRoute
	Error     string
}
