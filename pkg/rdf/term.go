package rdf

import "strings"

// TermKind discriminates the closed term variant.
type TermKind int

const (
	TermNamedNode TermKind = iota
	TermBlankNode
	TermLiteral
)

// String returns the wire name of the kind.
func (k TermKind) String() string {
	switch k {
	case TermNamedNode:
		return "NamedNode"
	case TermBlankNode:
		return "BlankNode"
	default:
		return "Literal"
	}
}

// Term is one graph term: a named node (IRI), a blank node (store-local
// label), or a literal with optional language tag and datatype. Terms are
// plain values and safe to compare and use as map keys.
type Term struct {
	Kind     TermKind
	Value    string
	Language string
	Datatype string
}

// NamedNode returns an IRI term.
func NamedNode(iri string) Term {
	return Term{Kind: TermNamedNode, Value: iri}
}

// Literal returns a plain string literal.
func Literal(value string) Term {
	return Term{Kind: TermLiteral, Value: value}
}

// TypedLiteral returns a literal carrying a datatype IRI.
func TypedLiteral(value string, datatype string) Term {
	return Term{Kind: TermLiteral, Value: value, Datatype: datatype}
}

// LangLiteral returns a literal carrying a language tag.
func LangLiteral(value string, language string) Term {
	return Term{Kind: TermLiteral, Value: value, Language: language}
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// String serializes the term in N-Triples form.
func (t Term) String() string {
	switch t.Kind {
	case TermNamedNode:
		return "<" + t.Value + ">"
	case TermBlankNode:
		return "_:" + t.Value
	default:
		serialized := `"` + literalEscaper.Replace(t.Value) + `"`
		if t.Language != "" {
			return serialized + "@" + t.Language
		}
		if t.Datatype != "" && t.Datatype != XSDString {
			return serialized + "^^<" + t.Datatype + ">"
		}
		return serialized
	}
}

// Quad is one statement of the graph.
type Quad struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// String serializes the statement in N-Triples form.
func (q Quad) String() string {
	return q.Subject.String() + " " + q.Predicate.String() + " " + q.Object.String() + " ."
}
