package pattern

import (
	"fmt"
	"strings"

	"github.com/vendange/backend/pkg/rdf"
)

type queryForm int

const (
	formAsk queryForm = iota
	formSelect
	formConstruct
)

// patternTerm is one position of a triple pattern: either a variable name or
// a concrete term.
type patternTerm struct {
	variable string
	term     rdf.Term
}

type triplePattern struct {
	subject   patternTerm
	predicate patternTerm
	object    patternTerm
}

type parsedQuery struct {
	form       queryForm
	projection []string
	selectAll  bool
	patterns   []triplePattern
	variables  []string // every variable, in order of first appearance
}

var builtinPrefixes = map[string]string{
	"vendange": rdf.NS,
	"entity":   rdf.EntityNS,
	"rdf":      "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
	"rdfs":     "http://www.w3.org/2000/01/rdf-schema#",
	"xsd":      "http://www.w3.org/2001/XMLSchema#",
}

func parse(text string) (*parsedQuery, error) {
	tokens, err := lex(text)
	if err != nil {
		return nil, err
	}

	p := &parser{
		tokens:   tokens,
		prefixes: make(map[string]string, len(builtinPrefixes)),
	}
	for name, base := range builtinPrefixes {
		p.prefixes[name] = base
	}
	return p.parseQuery()
}

type parser struct {
	tokens   []token
	pos      int
	prefixes map[string]string

	variables []string
	seen      map[string]bool
}

func (p *parser) parseQuery() (*parsedQuery, error) {
	p.seen = make(map[string]bool)

	for p.peekWord("PREFIX") {
		p.pos++
		if err := p.parsePrefix(); err != nil {
			return nil, err
		}
	}

	parsed := &parsedQuery{}
	switch {
	case p.peekWord("ASK"):
		p.pos++
		parsed.form = formAsk

	case p.peekWord("SELECT"):
		p.pos++
		parsed.form = formSelect
		if err := p.parseProjection(parsed); err != nil {
			return nil, err
		}
		if !p.takeWord("WHERE") {
			return nil, p.errorAt("expected WHERE after SELECT clause")
		}

	case p.peekWord("CONSTRUCT"):
		p.pos++
		parsed.form = formConstruct
		if !p.takeWord("WHERE") {
			return nil, p.errorAt("expected WHERE after CONSTRUCT")
		}

	default:
		return nil, p.errorAt("expected ASK, SELECT or CONSTRUCT")
	}

	patterns, err := p.parseGroup()
	if err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("query has no patterns")
	}
	parsed.patterns = patterns
	parsed.variables = p.variables

	if p.pos != len(p.tokens) {
		return nil, p.errorAt("trailing input after query")
	}
	return parsed, nil
}

func (p *parser) parsePrefix() error {
	tok, ok := p.take(tokenWord)
	if !ok || !strings.HasSuffix(tok.text, ":") {
		return p.errorAt("expected prefix name ending in ':'")
	}
	iri, ok := p.take(tokenIRI)
	if !ok {
		return p.errorAt("expected IRI in PREFIX declaration")
	}
	p.prefixes[strings.TrimSuffix(tok.text, ":")] = iri.text
	return nil
}

func (p *parser) parseProjection(parsed *parsedQuery) error {
	if p.peekPunct("*") {
		p.pos++
		parsed.selectAll = true
		return nil
	}
	for {
		tok, ok := p.take(tokenVar)
		if !ok {
			break
		}
		parsed.projection = append(parsed.projection, tok.text)
	}
	if !parsed.selectAll && len(parsed.projection) == 0 {
		return p.errorAt("SELECT needs * or at least one variable")
	}
	return nil
}

func (p *parser) parseGroup() ([]triplePattern, error) {
	if !p.takePunct("{") {
		return nil, p.errorAt("expected '{'")
	}

	var patterns []triplePattern
	for !p.peekPunct("}") {
		pattern, err := p.parseTriple()
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, pattern)

		if p.takePunct(".") {
			continue
		}
		break
	}
	if !p.takePunct("}") {
		return nil, p.errorAt("expected '}' closing the pattern group")
	}
	return patterns, nil
}

func (p *parser) parseTriple() (triplePattern, error) {
	subject, err := p.parseTerm()
	if err != nil {
		return triplePattern{}, err
	}
	predicate, err := p.parseTerm()
	if err != nil {
		return triplePattern{}, err
	}
	object, err := p.parseTerm()
	if err != nil {
		return triplePattern{}, err
	}
	return triplePattern{subject: subject, predicate: predicate, object: object}, nil
}

func (p *parser) parseTerm() (patternTerm, error) {
	if p.pos >= len(p.tokens) {
		return patternTerm{}, p.errorAt("unexpected end of query")
	}
	tok := p.tokens[p.pos]
	p.pos++

	switch tok.kind {
	case tokenIRI:
		return patternTerm{term: rdf.NamedNode(tok.text)}, nil

	case tokenVar:
		if !p.seen[tok.text] {
			p.seen[tok.text] = true
			p.variables = append(p.variables, tok.text)
		}
		return patternTerm{variable: tok.text}, nil

	case tokenLiteral:
		term, err := p.literalTerm(tok)
		if err != nil {
			return patternTerm{}, err
		}
		return patternTerm{term: term}, nil

	case tokenWord:
		if tok.text == "a" {
			return patternTerm{term: rdf.NamedNode(rdf.RDFType)}, nil
		}
		iri, err := p.expandPrefixed(tok.text)
		if err != nil {
			return patternTerm{}, err
		}
		return patternTerm{term: rdf.NamedNode(iri)}, nil
	}

	return patternTerm{}, fmt.Errorf("unexpected token %q", tok.text)
}

func (p *parser) literalTerm(tok token) (rdf.Term, error) {
	switch {
	case tok.language != "":
		return rdf.LangLiteral(tok.text, tok.language), nil
	case tok.datatype != "":
		datatype := tok.datatype
		if !tok.datatypeIsIRI {
			expanded, err := p.expandPrefixed(datatype)
			if err != nil {
				return rdf.Term{}, err
			}
			datatype = expanded
		}
		return rdf.TypedLiteral(tok.text, datatype), nil
	default:
		return rdf.Literal(tok.text), nil
	}
}

func (p *parser) expandPrefixed(name string) (string, error) {
	prefix, local, ok := strings.Cut(name, ":")
	if !ok {
		return "", fmt.Errorf("unexpected token %q", name)
	}
	base, known := p.prefixes[prefix]
	if !known {
		return "", fmt.Errorf("unknown prefix %q", prefix)
	}
	return base + local, nil
}

func (p *parser) peekWord(keyword string) bool {
	return p.pos < len(p.tokens) &&
		p.tokens[p.pos].kind == tokenWord &&
		strings.EqualFold(p.tokens[p.pos].text, keyword)
}

func (p *parser) takeWord(keyword string) bool {
	if p.peekWord(keyword) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) peekPunct(text string) bool {
	return p.pos < len(p.tokens) &&
		p.tokens[p.pos].kind == tokenPunct &&
		p.tokens[p.pos].text == text
}

func (p *parser) takePunct(text string) bool {
	if p.peekPunct(text) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) take(kind tokenKind) (token, bool) {
	if p.pos < len(p.tokens) && p.tokens[p.pos].kind == kind {
		tok := p.tokens[p.pos]
		p.pos++
		return tok, true
	}
	return token{}, false
}

func (p *parser) errorAt(message string) error {
	if p.pos < len(p.tokens) {
		return fmt.Errorf("%s, got %q", message, p.tokens[p.pos].text)
	}
	return fmt.Errorf("%s, got end of query", message)
}
