// Package fingerprint derives deterministic cache keys from an operation
// name plus a structured input.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// keyLength is the number of hex characters kept from the SHA-256 digest.
const keyLength = 24

// Key serialises obj with its top-level keys sorted lexicographically,
// prefixes the result with "prefix:", hashes it with SHA-256, and returns
// the first 24 hex characters of the digest. Determinism and top-level
// order-insensitivity are the contract: Key(p, {a:1,z:2}) == Key(p, {z:2,a:1}).
func Key(prefix string, obj any) string {
	canonical := canonicalize(obj)
	payload, _ := json.Marshal(canonical)

	h := sha256.New()
	h.Write([]byte(prefix))
	h.Write([]byte(":"))
	h.Write(payload)

	digest := hex.EncodeToString(h.Sum(nil))
	return digest[:keyLength]
}

// canonicalize converts obj to a map with sorted keys when it is (or
// marshals to) a JSON object; everything else passes through unchanged.
// Only top-level ordering is normalised, matching the contract in spec §4.4.
func canonicalize(obj any) any {
	raw, err := json.Marshal(obj)
	if err != nil {
		return obj
	}

	var asMap map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asMap); err != nil {
		// Not a JSON object (array, scalar) — nothing to sort.
		var generic any
		_ = json.Unmarshal(raw, &generic)
		return generic
	}

	keys := make([]string, 0, len(asMap))
	for k := range asMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make([]byte, 0, len(raw))
	ordered = append(ordered, '{')
	for i, k := range keys {
		if i > 0 {
			ordered = append(ordered, ',')
		}
		kb, _ := json.Marshal(k)
		ordered = append(ordered, kb...)
		ordered = append(ordered, ':')
		ordered = append(ordered, asMap[k]...)
	}
	ordered = append(ordered, '}')

	var out json.RawMessage = ordered
	return out
}
