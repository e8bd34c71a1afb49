package record

import "strings"

// Zone codes with a fixed meaning in the record format.
const (
	zoneArk                = "001"
	zoneAuthorityTitle     = "150"
	zoneManifestationTitle = "245"
	zoneExpressionLinks    = "740"
	zoneWorkLinks          = "750"
	zoneWorkLinksFallback  = "140"
)

// ArkOf reads the record's persistent identifier from its control zone
// (001$a). Records submitted with an explicit Ark field keep that value.
func ArkOf(rec Record) string {
	if rec.Ark != "" {
		return rec.Ark
	}
	values := zoneSubfieldValues(rec, zoneArk, zoneArk+"$a")
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// ExpressionArks yields the expression references of a manifestation record,
// read from zone 740 subfield $3, in record order.
func ExpressionArks(rec Record) []string {
	return zoneSubfieldValues(rec, zoneExpressionLinks, zoneExpressionLinks+"$3")
}

// WorkArks yields the work references of an expression record: zone 750
// subfield $3, falling back to zone 140 subfield $3 only when 750 yields
// nothing. The two zones are never combined.
func WorkArks(rec Record) []string {
	values := zoneSubfieldValues(rec, zoneWorkLinks, zoneWorkLinks+"$3")
	if len(values) > 0 {
		return values
	}
	return zoneSubfieldValues(rec, zoneWorkLinksFallback, zoneWorkLinksFallback+"$3")
}

// generalRelationshipCodes lists, per normalized record type, the zone codes
// whose $3 subfield carries a general relationship target.
var generalRelationshipCodes = map[string][]string{
	"oeuvre": {
		"500", "501", "506", "509", "50N", "54T",
		"550", "551", "552", "553", "554", "555", "556", "557", "559",
		"55A", "55B", "55C", "55E", "55F", "55M", "55P", "55R", "55S", "55Z",
	},
	"expression": {
		"501", "506", "509", "50N",
		"540", "541", "542", "543", "544", "547",
		"54C", "54P", "54T",
	},
	"manifestation": {
		"501", "506", "509", "50N",
		"530", "531", "532", "533", "534", "535", "536", "537", "538", "53M",
	},
}

// RelationshipTarget is one general relationship occurrence: the zone it was
// read from and the raw external identifier it points at.
type RelationshipTarget struct {
	Zone string
	Ark  string
}

// RelationshipTargets scans the record's type-specific relationship zones and
// returns every (zone, ark) pair found, deduplicated by the pair itself in
// first-seen order. Types without a relationship table yield nothing.
func RelationshipTargets(rec Record) []RelationshipTarget {
	codes := generalRelationshipCodes[strings.ToLower(strings.TrimSpace(rec.TypeNorm))]
	if len(codes) == 0 {
		return nil
	}

	var targets []RelationshipTarget
	seen := make(map[RelationshipTarget]struct{})

	for _, code := range codes {
		targetCode := code + "$3"
		for _, zone := range FindZones(rec, code) {
			for _, sub := range zone.Subfields {
				if sub.Code != targetCode {
					continue
				}
				value := strings.TrimSpace(sub.Value)
				if value == "" {
					continue
				}
				target := RelationshipTarget{Zone: code, Ark: value}
				if _, ok := seen[target]; ok {
					continue
				}
				seen[target] = struct{}{}
				targets = append(targets, target)
			}
		}
	}

	return targets
}

var agentZoneCodes = map[string]struct{}{
	"700": {}, "701": {}, "702": {},
	"710": {}, "711": {}, "712": {},
}

var agentReferenceSubcodes = map[string]struct{}{
	"0": {}, "3": {},
}

// AgentRelation is one agent reference found in an agent-bearing zone.
type AgentRelation struct {
	Ark      string
	Zone     string
	Subfield string
}

// AgentRelations scans the fixed set of agent-bearing zones; within each, every
// reference subfield ($0 or $3) with a non-empty value contributes one relation.
func AgentRelations(rec Record) []AgentRelation {
	var relations []AgentRelation
	for _, zone := range rec.Zones {
		if _, ok := agentZoneCodes[zone.Code]; !ok {
			continue
		}
		for _, sub := range zone.Subfields {
			suffix := SubfieldSuffix(sub.Code)
			if _, ok := agentReferenceSubcodes[suffix]; !ok {
				continue
			}
			value := strings.TrimSpace(sub.Value)
			if value == "" {
				continue
			}
			relations = append(relations, AgentRelation{
				Ark:      value,
				Zone:     zone.Code,
				Subfield: suffix,
			})
		}
	}
	return relations
}
