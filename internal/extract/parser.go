package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"noiflow/internal/domain"
)

// ParsedRecord is the outcome of decoding one model response.
type ParsedRecord struct {
	Record     *domain.FinancialRecord
	Provenance domain.ProvenanceMap
	// Outcome names the decode path that succeeded, for the audit trail.
	Outcome string
}

// ParseResponse decodes a model response into a record. It degrades
// gracefully: strict JSON first, then the first balanced JSON object embedded
// in surrounding prose or code fences, then a field-by-field scrape of
// "field": value pairs. Whatever path succeeds, the result is checked against
// the record schema.
func ParseResponse(raw string) (*ParsedRecord, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty response", domain.ErrSchemaMismatch)
	}

	if decoded, err := decodeObject(raw); err == nil {
		return buildRecord(decoded, "strict_json")
	}

	if obj := firstBalancedObject(raw); obj != "" {
		if decoded, err := decodeObject(obj); err == nil {
			return buildRecord(decoded, "embedded_json")
		}
	}

	if decoded := scrapeFieldPairs(raw); len(decoded) > 0 {
		return buildRecord(decoded, "field_scrape")
	}

	return nil, fmt.Errorf("%w: no decodable JSON in response", domain.ErrSchemaMismatch)
}

func decodeObject(s string) (map[string]interface{}, error) {
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

// buildRecord filters the decoded map down to known fields, validates it, and
// materializes the record. Fields the model returned as null (or omitted) get
// missing provenance; numeric fields get model provenance.
func buildRecord(decoded map[string]interface{}, outcome string) (*ParsedRecord, error) {
	known := make(map[string]interface{}, len(domain.AllFields))
	for _, f := range domain.AllFields {
		v, ok := decoded[f]
		if !ok {
			v = nil
		}
		known[f] = v
	}
	if err := validateAgainstSchema(known); err != nil {
		return nil, err
	}

	record := &domain.FinancialRecord{}
	provenance := make(domain.ProvenanceMap, len(domain.AllFields))
	for _, f := range domain.AllFields {
		num, ok := known[f].(float64)
		if !ok {
			provenance[f] = domain.ProvenanceMissing
			continue
		}
		record.SetValue(f, num)
		provenance[f] = domain.ProvenanceModel
	}
	return &ParsedRecord{Record: record, Provenance: provenance, Outcome: outcome}, nil
}

// firstBalancedObject returns the first top-level {...} substring with
// balanced braces, honoring JSON string escapes.
func firstBalancedObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

var fieldPairRe = regexp.MustCompile(`"?([a-z_]+)"?\s*:\s*(-?[0-9][0-9,]*\.?[0-9]*|null)`)

// scrapeFieldPairs pulls "field": value pairs out of malformed output. Only
// known schema fields are kept.
func scrapeFieldPairs(raw string) map[string]interface{} {
	knownFields := make(map[string]bool, len(domain.AllFields))
	for _, f := range domain.AllFields {
		knownFields[f] = true
	}

	out := map[string]interface{}{}
	for _, m := range fieldPairRe.FindAllStringSubmatch(raw, -1) {
		field, val := m[1], m[2]
		if !knownFields[field] {
			continue
		}
		if _, seen := out[field]; seen {
			continue
		}
		if val == "null" {
			out[field] = nil
			continue
		}
		var num float64
		if err := json.Unmarshal([]byte(strings.ReplaceAll(val, ",", "")), &num); err == nil {
			out[field] = num
		}
	}
	return out
}
