// Package pattern implements the built-in query engine. It evaluates basic
// graph patterns in a small SPARQL-shaped language:
//
//	ASK { ?e vendange:hasWork ?w }
//	SELECT ?label WHERE { ?s rdfs:label ?label . ?s a vendange:Work }
//	CONSTRUCT WHERE { ?s vendange:ark ?ark }
//
// Terms are IRIs in angle brackets, prefixed names, quoted literals with
// optional @lang or ^^datatype, variables, and the keyword a for rdf:type.
// PREFIX declarations are accepted; the vendange, entity, rdf, rdfs and xsd
// prefixes are predeclared.
package pattern

import (
	"fmt"

	"github.com/vendange/backend/pkg/query"
	"github.com/vendange/backend/pkg/rdf"
)

// Engine evaluates pattern queries by backtracking over the store indexes.
type Engine struct{}

// New returns the built-in pattern engine.
func New() *Engine {
	return &Engine{}
}

// Query parses and evaluates a pattern query. Parse and evaluation failures
// are returned as errors with the offending token in the message.
func (e *Engine) Query(store *rdf.Store, text string) (query.Raw, error) {
	parsed, err := parse(text)
	if err != nil {
		return nil, err
	}

	switch parsed.form {
	case formAsk:
		solutions := solve(store, parsed.patterns, 1)
		return query.BooleanRaw(len(solutions) > 0), nil

	case formSelect:
		solutions := solve(store, parsed.patterns, 0)
		variables := parsed.projection
		if parsed.selectAll {
			variables = parsed.variables
		}
		rows := make([]map[string]rdf.Term, 0, len(solutions))
		for _, solution := range solutions {
			row := make(map[string]rdf.Term, len(variables))
			for _, name := range variables {
				if term, ok := solution[name]; ok {
					row[name] = term
				}
			}
			rows = append(rows, row)
		}
		return query.SolutionsRaw{Variables: variables, Rows: rows}, nil

	case formConstruct:
		solutions := solve(store, parsed.patterns, 0)
		var quads []rdf.Quad
		emitted := make(map[rdf.Quad]struct{})
		for _, solution := range solutions {
			for _, p := range parsed.patterns {
				quad, ok := instantiate(p, solution)
				if !ok {
					continue
				}
				if _, dup := emitted[quad]; dup {
					continue
				}
				emitted[quad] = struct{}{}
				quads = append(quads, quad)
			}
		}
		return query.StatementsRaw{Quads: quads}, nil
	}

	return nil, fmt.Errorf("unsupported query form")
}

// solution maps variable names to the terms they are bound to.
type solution map[string]rdf.Term

// solve enumerates bindings satisfying every pattern. A limit of 0 collects
// all solutions; a positive limit stops once that many are found.
func solve(store *rdf.Store, patterns []triplePattern, limit int) []solution {
	var solutions []solution
	var recurse func(remaining []triplePattern, bound solution) bool

	recurse = func(remaining []triplePattern, bound solution) bool {
		if len(remaining) == 0 {
			copied := make(solution, len(bound))
			for name, term := range bound {
				copied[name] = term
			}
			solutions = append(solutions, copied)
			return limit > 0 && len(solutions) >= limit
		}

		p := remaining[0]
		subject := resolve(p.subject, bound)
		predicate := resolve(p.predicate, bound)
		object := resolve(p.object, bound)

		for _, quad := range store.Match(subject, predicate, object) {
			added := extend(bound, p, quad)
			if added == nil {
				continue
			}
			done := recurse(remaining[1:], bound)
			for _, name := range added {
				delete(bound, name)
			}
			if done {
				return true
			}
		}
		return false
	}

	recurse(patterns, make(solution))
	return solutions
}

// resolve turns a pattern position into a match argument: concrete terms and
// already-bound variables constrain the match, unbound variables are nil
// wildcards.
func resolve(t patternTerm, bound solution) *rdf.Term {
	if t.variable == "" {
		term := t.term
		return &term
	}
	if term, ok := bound[t.variable]; ok {
		return &term
	}
	return nil
}

// extend binds the pattern's unbound variables from the quad. It returns the
// names it added, or nil when a repeated variable binds inconsistently.
func extend(bound solution, p triplePattern, quad rdf.Quad) []string {
	var added []string
	bind := func(t patternTerm, value rdf.Term) bool {
		if t.variable == "" {
			return true
		}
		if existing, ok := bound[t.variable]; ok {
			return existing == value
		}
		bound[t.variable] = value
		added = append(added, t.variable)
		return true
	}

	if bind(p.subject, quad.Subject) && bind(p.predicate, quad.Predicate) && bind(p.object, quad.Object) {
		return added
	}
	for _, name := range added {
		delete(bound, name)
	}
	return nil
}

// instantiate substitutes bindings into a pattern. It reports false when a
// variable is unbound, which cannot happen for solutions produced by solve
// over the same patterns but keeps the construction total.
func instantiate(p triplePattern, bound solution) (rdf.Quad, bool) {
	subject, ok := concrete(p.subject, bound)
	if !ok {
		return rdf.Quad{}, false
	}
	predicate, ok := concrete(p.predicate, bound)
	if !ok {
		return rdf.Quad{}, false
	}
	object, ok := concrete(p.object, bound)
	if !ok {
		return rdf.Quad{}, false
	}
	return rdf.Quad{Subject: subject, Predicate: predicate, Object: object}, true
}

func concrete(t patternTerm, bound solution) (rdf.Term, bool) {
	if t.variable == "" {
		return t.term, true
	}
	term, ok := bound[t.variable]
	return term, ok
}
