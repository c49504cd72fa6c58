package contracts

import "fmt"

// RiskTier is an ordered tag, but deliberately never compared
// numerically — callers must test membership in a set, not magnitude.
type RiskTier string

const (
	RiskTierLow        RiskTier = "T0_LOW"
	RiskTierStandard   RiskTier = "T1_STANDARD"
	RiskTierHighStakes RiskTier = "T2_HIGH_STAKES"
	RiskTierRegulated  RiskTier = "T3_REGULATED"
)

func (t RiskTier) Valid() bool {
	switch t {
	case RiskTierLow, RiskTierStandard, RiskTierHighStakes, RiskTierRegulated:
		return true
	default:
		return false
	}
}

// In reports whether t is a member of tiers. This is the only sanctioned
// way to test a RiskTier against a policy-declared set.
func (t RiskTier) In(tiers []RiskTier) bool {
	for _, candidate := range tiers {
		if t == candidate {
			return true
		}
	}
	return false
}

func ParseRiskTier(s string) (RiskTier, error) {
	t := RiskTier(s)
	if !t.Valid() {
		return "", fmt.Errorf("contracts: unrecognized risk tier %q", s)
	}
	return t, nil
}
