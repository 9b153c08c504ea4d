// Package hashing implements the engine's canonical digest functions: a
// plain byte hash, a canonical-JSON hash, and a deterministic (non-RDF-
// canonical) graph hash. All three share one digest function, SHA-256, so a
// hash produced by one path is comparable byte-for-byte with a hash
// produced by another.
//
// The canonical JSON and N-Quads-style graph serialization have no
// off-the-shelf library in the example corpus that produces exactly this
// shape (sorted keys at every level, fixed number formatting, sorted
// lexical triple lines) — encoding/json's Marshal does not sort map keys
// recursively inside nested structures consistently across all value
// shapes used here, so the serializer below walks the decoded value tree
// itself rather than relying on struct-tag-ordered marshaling.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// HashBytes returns the hex-encoded SHA-256 digest of b.
func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// ContentID returns the first 16 hex characters of HashBytes(b), used as a
// short content-address suffix.
func ContentID(b []byte) string {
	return HashBytes(b)[:16]
}

// HashJSON returns HashBytes(CanonicalJSON(v)).
func HashJSON(v any) (string, error) {
	b, err := CanonicalJSON(v)
	if err != nil {
		return "", err
	}
	return HashBytes(b), nil
}

// CanonicalJSON serializes v into a deterministic JSON encoding: UTF-8,
// object keys sorted lexicographically at every nesting level, no
// insignificant whitespace, numbers without exponents or trailing ".0",
// lowercase booleans/null, and JSON-escaped strings. v may be any value
// encoding/json can unmarshal into (typically produced by round-tripping
// through json.Marshal/Unmarshal first, or a map[string]any/[]any tree).
func CanonicalJSON(v any) ([]byte, error) {
	// Round-trip through encoding/json first so struct values, json.Number,
	// and arbitrary nested types normalize into the plain
	// map[string]any / []any / primitive tree the canonicalizer walks.
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("hashing: marshal value: %w", err)
	}

	var generic any
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("hashing: decode value: %w", err)
	}

	var buf strings.Builder
	if err := writeCanonical(&buf, generic); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

func writeCanonical(buf *strings.Builder, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case json.Number:
		return writeCanonicalNumber(buf, val)
	case string:
		enc, err := json.Marshal(val)
		if err != nil {
			return err
		}
		buf.Write(enc)
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyEnc, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(keyEnc)
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("hashing: unsupported value type %T", v)
	}
	return nil
}

// writeCanonicalNumber renders a json.Number without an exponent and
// without a trailing ".0" for integral floats.
func writeCanonicalNumber(buf *strings.Builder, n json.Number) error {
	if i, err := n.Int64(); err == nil {
		buf.WriteString(strconv.FormatInt(i, 10))
		return nil
	}

	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("hashing: invalid number %q: %w", n, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("hashing: non-finite number %q", n)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		buf.WriteString(strconv.FormatFloat(f, 'f', 0, 64))
		return nil
	}
	buf.WriteString(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// GraphLine is a single canonical N-Quads-style line: subject, predicate,
// object and graph each already rendered in their lexical form.
type GraphLine struct {
	Subject   string
	Predicate string
	Object    string
	Graph     string
}

// String renders the line as "subject predicate object graph", with an
// empty graph term omitted (default/unnamed graph).
func (l GraphLine) String() string {
	if l.Graph == "" {
		return l.Subject + " " + l.Predicate + " " + l.Object
	}
	return l.Subject + " " + l.Predicate + " " + l.Object + " " + l.Graph
}

// HashGraph hashes the sorted sequence of lines produced from quads, one
// line per triple joined by "\n". This is a deterministic lexical
// serialization, not full RDF canonicalization (URDNA2015); blank-node
// labels are used verbatim, so callers should flag blank-node-heavy graphs
// separately (see the rdf package's BlankNodeRatio).
func HashGraph(quads []GraphLine) string {
	lines := make([]string, len(quads))
	for i, q := range quads {
		lines[i] = q.String()
	}
	sort.Strings(lines)
	return HashBytes([]byte(strings.Join(lines, "\n")))
}
