//go:build property
// +build property

package canonicalize

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestCanonicalHash_OrderIndependent verifies that insertion order of a
// map's keys never affects its canonical hash.
func TestCanonicalHash_OrderIndependent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("canonical hash is independent of map build order", prop.ForAll(
		func(keys []string, values []int64) bool {
			n := len(keys)
			if len(values) < n {
				n = len(values)
			}
			forward := make(map[string]interface{}, n)
			backward := make(map[string]interface{}, n)
			for i := 0; i < n; i++ {
				if keys[i] == "" {
					continue
				}
				forward[keys[i]] = values[i]
			}
			for i := n - 1; i >= 0; i-- {
				if keys[i] == "" {
					continue
				}
				backward[keys[i]] = forward[keys[i]]
			}

			h1, err1 := CanonicalHash(forward)
			h2, err2 := CanonicalHash(backward)
			if err1 != nil || err2 != nil {
				return err1 == nil && err2 == nil
			}
			return h1 == h2
		},
		gen.SliceOfN(8, gen.AlphaString()),
		gen.SliceOfN(8, gen.Int64Range(-1000, 1000)),
	))

	properties.TestingRun(t)
}

// TestCanonicalHash_Repeatable verifies byte-stability of the canonical
// serialization across repeated calls for the same input.
func TestCanonicalHash_Repeatable(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("canonical hash is stable across repeated runs", prop.ForAll(
		func(key string, value string) bool {
			v := map[string]interface{}{key: value}
			h1, err1 := CanonicalHash(v)
			h2, err2 := CanonicalHash(v)
			if err1 != nil || err2 != nil {
				return err1 != nil && err2 != nil
			}
			return h1 == h2
		},
		gen.AlphaString(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

// TestCanonicalHash_DivergesOnDifference verifies that changing any
// scalar value produces, with overwhelming probability, a different
// hash.
func TestCanonicalHash_DivergesOnDifference(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("distinct scalar values yield distinct hashes", prop.ForAll(
		func(key, a, b string) bool {
			if a == b {
				return true
			}
			h1, err1 := CanonicalHash(map[string]interface{}{key: a})
			h2, err2 := CanonicalHash(map[string]interface{}{key: b})
			if err1 != nil || err2 != nil {
				return false
			}
			return h1 != h2
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
