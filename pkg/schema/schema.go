// Package schema enforces strict JSON-schema validation over the
// capability manifest, operationalizing §9's note that implementations
// should reject unknown fields at load time to prevent silent
// capability drift.
package schema

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ManifestSchema is the JSON Schema for contracts.CapabilityManifest.
// additionalProperties: false at every object level is what turns a
// typo'd or added field into a load-time rejection instead of a field
// the kernel silently ignores.
const ManifestSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "required": ["schema_version", "agent_id", "federation", "assistance", "updates", "governance"],
  "properties": {
    "schema_version": {"type": "string", "const": "1.0.0"},
    "agent_id": {"type": "string", "minLength": 1},
    "federation": {
      "type": "object",
      "additionalProperties": false,
      "required": ["enabled", "sources", "allowed_operations"],
      "properties": {
        "enabled": {"type": "boolean"},
        "sources": {"type": "array", "items": {"type": "string"}},
        "allowed_operations": {"type": "array", "items": {"type": "string"}}
      }
    },
    "assistance": {
      "type": "object",
      "additionalProperties": false,
      "required": ["enabled", "routes", "max_attempts"],
      "properties": {
        "enabled": {"type": "boolean"},
        "routes": {
          "type": "array",
          "items": {"type": "string", "enum": ["FEDERATION", "HUMAN_ESCALATION", "PEER_AGENT"]}
        },
        "max_attempts": {"type": "integer", "minimum": 1}
      }
    },
    "updates": {
      "type": "object",
      "additionalProperties": false,
      "required": ["enabled", "allowed_channels", "require_signature", "require_governance_approval", "require_dvap_for_risk_tiers", "trusted_signers"],
      "properties": {
        "enabled": {"type": "boolean"},
        "allowed_channels": {
          "type": "array",
          "items": {"type": "string", "enum": ["SKILL_CAPSULE", "CONFIG_BUNDLE"]}
        },
        "require_signature": {"type": "boolean"},
        "require_governance_approval": {"type": "boolean"},
        "require_dvap_for_risk_tiers": {
          "type": "array",
          "items": {"type": "string", "enum": ["T0_LOW", "T1_STANDARD", "T2_HIGH_STAKES", "T3_REGULATED"]}
        },
        "trusted_signers": {"type": "array", "items": {"type": "string"}}
      }
    },
    "governance": {
      "type": "object",
      "additionalProperties": false,
      "required": ["sdc_version", "invariant_keys_required", "dvap_required_for_risk_tiers"],
      "properties": {
        "sdc_version": {"type": "string"},
        "invariant_keys_required": {"type": "array", "items": {"type": "string"}},
        "dvap_required_for_risk_tiers": {
          "type": "array",
          "items": {"type": "string", "enum": ["T0_LOW", "T1_STANDARD", "T2_HIGH_STAKES", "T3_REGULATED"]}
        }
      }
    }
  }
}`

const manifestSchemaURL = "https://fck.schemas.local/manifest.schema.json"

// ManifestValidator validates a decoded manifest document against
// ManifestSchema before the kernel ever unmarshals it into a typed
// contracts.CapabilityManifest.
type ManifestValidator struct {
	compiled *jsonschema.Schema
}

// NewManifestValidator compiles ManifestSchema once; validation calls
// against the compiled schema are cheap and safe for concurrent use.
func NewManifestValidator() (*ManifestValidator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(manifestSchemaURL, strings.NewReader(ManifestSchema)); err != nil {
		return nil, fmt.Errorf("schema: loading manifest schema: %w", err)
	}
	compiled, err := c.Compile(manifestSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("schema: compiling manifest schema: %w", err)
	}
	return &ManifestValidator{compiled: compiled}, nil
}

// Validate checks a decoded manifest document (map[string]interface{},
// as produced by encoding/json with UseNumber or plain Unmarshal) for
// unknown fields and type mismatches.
func (v *ManifestValidator) Validate(doc interface{}) error {
	if err := v.compiled.Validate(doc); err != nil {
		return fmt.Errorf("schema: manifest failed strict validation: %w", err)
	}
	return nil
}
