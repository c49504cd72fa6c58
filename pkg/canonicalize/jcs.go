// Package canonicalize implements RFC 8785 JSON Canonicalization Scheme
// (JCS) serialization for deterministic hashing of kernel artifacts:
// action frames, manifests, and persisted state.
package canonicalize

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// JCS returns the RFC 8785 canonical JSON representation of v.
//
// v is first marshaled through the standard encoder so struct tags are
// honored, then decoded into a generic tree with UseNumber so integers
// survive round-tripping exactly. The tree is written into a single
// growing buffer with map keys sorted and HTML escaping disabled.
// Floating-point values anywhere in the tree are rejected as the walk
// reaches them: §4.1 rule 4 permits frames and manifests to carry only
// strings, integers, and booleans, and a json.Number only reveals
// whether it's integral once you try to parse it as one.
func JCS(v interface{}) ([]byte, error) {
	intermediate, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonicalize: pre-marshal failed: %w", err)
	}

	var generic interface{}
	decoder := json.NewDecoder(bytes.NewReader(intermediate))
	decoder.UseNumber()
	if err := decoder.Decode(&generic); err != nil {
		return nil, fmt.Errorf("canonicalize: intermediate decode failed: %w", err)
	}

	var out bytes.Buffer
	if err := writeCanonical(&out, generic); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// CanonicalHash returns the lowercase hex SHA-256 digest of the
// canonical JSON representation of v.
func CanonicalHash(v interface{}) (string, error) {
	b, err := JCS(v)
	if err != nil {
		return "", err
	}
	return HashBytes(b), nil
}

// HashBytes computes the SHA-256 hash of raw bytes and returns it as a
// lowercase hex string.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// JCSString returns the JCS canonical form as a string.
func JCSString(v interface{}) (string, error) {
	data, err := JCS(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// NoFloatsGuard walks a decoded generic value (as produced by a decoder
// with UseNumber) and fails if any json.Number represents a
// floating-point value. It's exported separately from JCS/writeCanonical
// so callers building a FrameExtensions or manifest field by hand (e.g.
// schema validation, before anything is ever serialized) can reject a
// stray float at the point of construction rather than waiting for a
// hash call to surface it.
func NoFloatsGuard(v interface{}) error {
	switch t := v.(type) {
	case json.Number:
		return requireIntegral(t)
	case []interface{}:
		for _, elem := range t {
			if err := NoFloatsGuard(elem); err != nil {
				return err
			}
		}
		return nil
	case map[string]interface{}:
		for _, elem := range t {
			if err := NoFloatsGuard(elem); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

func requireIntegral(n json.Number) error {
	if _, err := n.Int64(); err != nil {
		return fmt.Errorf("canonicalize: non-integer numeric value %q is not permitted", n.String())
	}
	return nil
}

// writeCanonical appends v's RFC 8785 encoding directly onto buf rather
// than building and concatenating a byte slice per recursive call, and
// enforces the integers-only rule inline at the json.Number leaf rather
// than in a separate pre-pass over the tree.
func writeCanonical(buf *bytes.Buffer, v interface{}) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
		return nil
	case bool:
		if t {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case json.Number:
		if err := requireIntegral(t); err != nil {
			return err
		}
		buf.WriteString(t.String())
		return nil
	case string:
		return writeCanonicalString(buf, t)
	case []interface{}:
		return writeCanonicalArray(buf, t)
	case map[string]interface{}:
		return writeCanonicalObject(buf, t)
	default:
		// Reached only for types the UseNumber decoder never produces
		// (e.g. a caller-supplied generic value outside the decode
		// path). Delegate to the standard encoder and accept its
		// default formatting for that one value.
		enc := json.NewEncoder(buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return err
		}
		trimTrailingNewline(buf)
		return nil
	}
}

func writeCanonicalString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	trimTrailingNewline(buf)
	return nil
}

func writeCanonicalArray(buf *bytes.Buffer, elems []interface{}) error {
	buf.WriteByte('[')
	for i, elem := range elems {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonical(buf, elem); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

func writeCanonicalObject(buf *bytes.Buffer, obj map[string]interface{}) error {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonicalString(buf, k); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := writeCanonical(buf, obj[k]); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// trimTrailingNewline removes the newline json.Encoder always appends,
// which writeCanonicalString and the default case in writeCanonical
// both need after delegating to it mid-buffer.
func trimTrailingNewline(buf *bytes.Buffer) {
	b := buf.Bytes()
	if n := len(b); n > 0 && b[n-1] == '\n' {
		buf.Truncate(n - 1)
	}
}
