package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validManifestDoc() map[string]interface{} {
	var doc map[string]interface{}
	_ = json.Unmarshal([]byte(`{
		"schema_version": "1.0.0",
		"agent_id": "agent_1",
		"federation": {"enabled": true, "sources": ["us"], "allowed_operations": ["ASK_FEDERATION"]},
		"assistance": {"enabled": true, "routes": ["HUMAN_ESCALATION"], "max_attempts": 3},
		"updates": {"enabled": true, "allowed_channels": ["CONFIG_BUNDLE"], "require_signature": true, "require_governance_approval": true, "require_dvap_for_risk_tiers": ["T3_REGULATED"], "trusted_signers": ["signer-1"]},
		"governance": {"sdc_version": "sdc-1", "invariant_keys_required": ["A"], "dvap_required_for_risk_tiers": ["T2_HIGH_STAKES"]}
	}`), &doc)
	return doc
}

func TestManifestValidator_AcceptsValidDocument(t *testing.T) {
	v, err := NewManifestValidator()
	require.NoError(t, err)
	assert.NoError(t, v.Validate(validManifestDoc()))
}

func TestManifestValidator_RejectsUnknownField(t *testing.T) {
	v, err := NewManifestValidator()
	require.NoError(t, err)

	doc := validManifestDoc()
	doc["unexpected_field"] = "oops"
	assert.Error(t, v.Validate(doc))
}

func TestManifestValidator_RejectsBadSchemaVersion(t *testing.T) {
	v, err := NewManifestValidator()
	require.NoError(t, err)

	doc := validManifestDoc()
	doc["schema_version"] = "2.0.0"
	assert.Error(t, v.Validate(doc))
}

func TestManifestValidator_RejectsUnknownRoute(t *testing.T) {
	v, err := NewManifestValidator()
	require.NoError(t, err)

	doc := validManifestDoc()
	doc["assistance"].(map[string]interface{})["routes"] = []interface{}{"CARRIER_PIGEON"}
	assert.Error(t, v.Validate(doc))
}
