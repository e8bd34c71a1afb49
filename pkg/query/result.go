package query

import "github.com/vendange/backend/pkg/rdf"

// Result kinds as they appear on the wire.
const (
	KindBoolean   = "boolean"
	KindSelect    = "select"
	KindConstruct = "construct"
	KindEmpty     = "empty"
)

// Term is the wire form of a graph term inside a binding row.
type Term struct {
	Kind     string `json:"termType"`
	Value    string `json:"value"`
	Language string `json:"language,omitempty"`
	Datatype string `json:"datatype,omitempty"`
}

// Result is the normalized outcome of a query. Exactly one of the payload
// fields is meaningful, selected by Kind.
type Result struct {
	Kind      string           `json:"kind"`
	Value     *bool            `json:"value,omitempty"`
	Variables []string         `json:"variables,omitempty"`
	Rows      []map[string]Term `json:"rows,omitempty"`
	Quads     []string         `json:"quads,omitempty"`
}

// EmptyResult is the result of a blank query or an unrecognized engine shape.
func EmptyResult() Result {
	return Result{Kind: KindEmpty}
}

func termToWire(term rdf.Term) Term {
	wire := Term{
		Kind:  term.Kind.String(),
		Value: term.Value,
	}
	if term.Kind == rdf.TermLiteral {
		wire.Language = term.Language
		wire.Datatype = term.Datatype
	}
	return wire
}
