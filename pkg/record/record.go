package record

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Subfield is one coded value inside a zone, e.g. code "700$3". Empty or
// whitespace-only values are treated as absent everywhere.
type Subfield struct {
	Code  string `json:"code"`
	Value string `json:"valeur"`
}

// Zone is one field occurrence of a record: a zone code such as "245" or "700"
// plus its ordered subfields.
type Zone struct {
	Code      string     `json:"code"`
	Subfields []Subfield `json:"sousZones"`
}

// Record is one bibliographic input unit. Identifier is unique within a batch;
// Ark is the optional persistent external identifier. Records are immutable
// once handed to the builder.
type Record struct {
	Identifier string `json:"id"`
	Type       string `json:"type"`
	TypeNorm   string `json:"typeNorm"`
	Ark        string `json:"ark,omitempty"`
	Zones      []Zone `json:"zones"`
}

// NormalizeType folds a raw entity type tag into its canonical lowercase form:
// compatibility decomposition, combining marks stripped, ligature œ expanded.
func NormalizeType(value string) string {
	if value == "" {
		return ""
	}
	folder := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(folder, value)
	if err != nil {
		folded = value
	}
	folded = strings.ReplaceAll(folded, "œ", "oe")
	folded = strings.ReplaceAll(folded, "Œ", "oe")
	return strings.TrimSpace(strings.ToLower(folded))
}

// FindZones returns every zone of the record carrying the given code, in
// record order.
func FindZones(rec Record, code string) []Zone {
	var zones []Zone
	for _, zone := range rec.Zones {
		if zone.Code == code {
			zones = append(zones, zone)
		}
	}
	return zones
}

// ZoneText joins the non-empty subfield values of a zone with single spaces.
func ZoneText(zone Zone) string {
	parts := make([]string, 0, len(zone.Subfields))
	for _, sub := range zone.Subfields {
		value := strings.TrimSpace(sub.Value)
		if value != "" {
			parts = append(parts, value)
		}
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// SubfieldSuffix extracts the zone-relative subcode of a subfield code:
// "700$3" yields "3". Codes without a "$" separator have no suffix.
func SubfieldSuffix(code string) string {
	idx := strings.IndexByte(code, '$')
	if idx == -1 || idx+1 >= len(code) {
		return ""
	}
	return strings.ToLower(code[idx+1:])
}

// SplitSubfieldCode splits a subfield code into its zone and subcode parts.
func SplitSubfieldCode(code string) (zone string, sub string) {
	if code == "" {
		return "", ""
	}
	idx := strings.IndexByte(code, '$')
	if idx == -1 {
		return code, ""
	}
	return code[:idx], code[idx+1:]
}

func zoneSubfieldValues(rec Record, zoneCode string, subfieldCode string) []string {
	var values []string
	for _, zone := range FindZones(rec, zoneCode) {
		for _, sub := range zone.Subfields {
			if sub.Code != subfieldCode {
				continue
			}
			value := strings.TrimSpace(sub.Value)
			if value != "" {
				values = append(values, value)
			}
		}
	}
	return values
}
