package rdf

// Namespaces of the search graph. Entity node IRIs live under EntityNS; every
// other IRI of the vocabulary lives directly under NS.
const (
	NS       = "https://data.vendange/search#"
	EntityNS = NS + "entity/"

	RDFType   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	RDFSLabel = "http://www.w3.org/2000/01/rdf-schema#label"

	XSDInteger = "http://www.w3.org/2001/XMLSchema#integer"
	XSDString  = "http://www.w3.org/2001/XMLSchema#string"
)

// Node classes. Entity classes (Work, Expression, ...) are formed as
// NS + class name; the three below reify structural elements.
const (
	ClassField        = NS + "Field"
	ClassSubfield     = NS + "Subfield"
	ClassRelationship = NS + "Relationship"
)

// Predicates attached to entity, field, subfield and relationship nodes.
const (
	PredArk      = NS + "ark"
	PredTypeNorm = NS + "typeNorm"

	PredHasField      = NS + "hasField"
	PredZoneCode      = NS + "zoneCode"
	PredFieldIndex    = NS + "fieldIndex"
	PredHasSubfield   = NS + "hasSubfield"
	PredBelongsTo     = NS + "belongsTo"
	PredSubfieldCode  = NS + "subfieldCode"
	PredSubfieldIndex = NS + "subfieldIndex"

	PredValue           = NS + "value"
	PredValueNormalized = NS + "valueNormalized"
	PredValueArk        = NS + "valueArk"
	PredReferences      = NS + "references"

	// Flat per-subfield value predicates are formed as
	// FieldPredicatePrefix + zone + "/" + subcode, with NormalizedSuffix
	// appended for the folded variant.
	FieldPredicatePrefix = NS + "field/"
	NormalizedSuffix     = "/normalized"

	PredHasExpression    = NS + "hasExpression"
	PredHasExpressionArk = NS + "hasExpressionArk"
	PredHasManifestation = NS + "hasManifestation"
	PredHasWork          = NS + "hasWork"
	PredHasWorkArk       = NS + "hasWorkArk"

	PredHasRelationship    = NS + "hasRelationship"
	PredRelationshipZone   = NS + "relationshipZone"
	PredRelationshipTarget = NS + "relationshipTarget"
	PredRelatedTo          = NS + "relatedTo"
	PredRelatedToArk       = NS + "relatedToArk"

	PredHasAgent      = NS + "hasAgent"
	PredHasAgentArk   = NS + "hasAgentArk"
	PredAgentZone     = NS + "agentZone"
	PredAgentSubfield = NS + "agentSubfield"
)
