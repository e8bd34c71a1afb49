package record

import "strings"

// EntityClass is the closed set of entity kinds a record can map to.
type EntityClass int

const (
	ClassWork EntityClass = iota
	ClassExpression
	ClassManifestation
	ClassAgent
	ClassCollective
	ClassBrand
	ClassConcept
	ClassControlled
)

// String returns the class name used in node type IRIs.
func (c EntityClass) String() string {
	switch c {
	case ClassWork:
		return "Work"
	case ClassExpression:
		return "Expression"
	case ClassManifestation:
		return "Manifestation"
	case ClassAgent:
		return "Agent"
	case ClassCollective:
		return "Collective"
	case ClassBrand:
		return "Brand"
	case ClassConcept:
		return "Concept"
	default:
		return "Controlled"
	}
}

// Classify maps a record's normalized type tag to its entity class. The
// mapping is case-insensitive and total: unknown or missing types fall back to
// ClassControlled rather than failing.
func Classify(rec Record) EntityClass {
	switch strings.ToLower(strings.TrimSpace(rec.TypeNorm)) {
	case "oeuvre", "work":
		return ClassWork
	case "expression":
		return ClassExpression
	case "manifestation":
		return ClassManifestation
	case "identite publique de personne", "personne":
		return ClassAgent
	case "collectivite":
		return ClassCollective
	case "marque":
		return ClassBrand
	case "concept dewey":
		return ClassConcept
	case "valeur controlee":
		return ClassControlled
	default:
		return ClassControlled
	}
}

// LabelFor picks the display label for a record. Manifestations prefer their
// manifestation title zone and fall back to the authority title zone; every
// other type prefers the authority title and falls back to the manifestation
// title. The record identifier is the final fallback in both chains.
func LabelFor(rec Record) string {
	if isManifestation(rec) {
		if title := manifestationTitle(rec); title != "" {
			return title
		}
		if title := authorityTitle(rec); title != "" {
			return title
		}
		return rec.Identifier
	}

	if title := authorityTitle(rec); title != "" {
		return title
	}
	if title := manifestationTitle(rec); title != "" {
		return title
	}
	return rec.Identifier
}

func isManifestation(rec Record) bool {
	return strings.ToLower(strings.TrimSpace(rec.TypeNorm)) == "manifestation"
}

func isExpression(rec Record) bool {
	return strings.ToLower(strings.TrimSpace(rec.TypeNorm)) == "expression"
}

func authorityTitle(rec Record) string {
	zones := FindZones(rec, zoneAuthorityTitle)
	if len(zones) == 0 {
		return ""
	}
	return ZoneText(zones[0])
}

func manifestationTitle(rec Record) string {
	zones := FindZones(rec, zoneManifestationTitle)
	if len(zones) == 0 {
		return ""
	}
	return ZoneText(zones[0])
}
