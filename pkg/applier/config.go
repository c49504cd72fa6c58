package applier

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Mindburn-Labs/fck/pkg/contracts"
	"github.com/Mindburn-Labs/fck/pkg/schema"
)

// ManifestStore holds the manifest document ConfigApplier patches: read
// the current document, and replace it once the patch has passed strict
// schema validation. It is separate from the kernel's persisted state.
type ManifestStore interface {
	CurrentManifestDoc() (map[string]interface{}, error)
	ReplaceManifestDoc(doc map[string]interface{}) error
}

// ConfigApplier applies CONFIG_BUNDLE update packages: the payload is a
// JSON merge patch over the current manifest document, re-validated
// through pkg/schema before being accepted so an update can't smuggle
// in an unknown field the strict load-time check would otherwise catch.
type ConfigApplier struct {
	store     ManifestStore
	validator *schema.ManifestValidator
	mu        sync.Mutex
}

func NewConfigApplier(store ManifestStore, validator *schema.ManifestValidator) *ConfigApplier {
	return &ConfigApplier{store: store, validator: validator}
}

// Apply satisfies BundleApplier for contracts.UpdateChannelConfigBundle.
func (a *ConfigApplier) Apply(ctx context.Context, pkg *contracts.UpdatePackage) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	patchBytes, err := base64.StdEncoding.DecodeString(pkg.PayloadB64)
	if err != nil {
		return fmt.Errorf("applier: decoding config bundle %s: %w", pkg.PackageID, err)
	}

	var patch map[string]interface{}
	if err := json.Unmarshal(patchBytes, &patch); err != nil {
		return fmt.Errorf("applier: config bundle %s is not a JSON object: %w", pkg.PackageID, err)
	}

	current, err := a.store.CurrentManifestDoc()
	if err != nil {
		return fmt.Errorf("applier: loading current manifest: %w", err)
	}

	merged := mergeJSON(current, patch)

	if err := a.validator.Validate(merged); err != nil {
		return fmt.Errorf("applier: config bundle %s failed manifest validation: %w", pkg.PackageID, err)
	}

	if err := a.store.ReplaceManifestDoc(merged); err != nil {
		return fmt.Errorf("applier: persisting patched manifest: %w", err)
	}
	return nil
}

// mergeJSON implements RFC 7396 JSON Merge Patch semantics: a null
// value at a key deletes it, an object value merges recursively,
// anything else replaces wholesale.
func mergeJSON(target, patch map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(target))
	for k, v := range target {
		out[k] = v
	}
	for k, v := range patch {
		if v == nil {
			delete(out, k)
			continue
		}
		patchObj, patchIsObj := v.(map[string]interface{})
		targetObj, targetIsObj := out[k].(map[string]interface{})
		if patchIsObj && targetIsObj {
			out[k] = mergeJSON(targetObj, patchObj)
		} else {
			out[k] = v
		}
	}
	return out
}
