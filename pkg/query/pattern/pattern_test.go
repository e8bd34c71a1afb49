package pattern

import (
	"strings"
	"testing"

	"github.com/vendange/backend/pkg/query"
	"github.com/vendange/backend/pkg/rdf"
)

func exampleStore() *rdf.Store {
	s := rdf.NewStore()
	w1 := rdf.NamedNode(rdf.EntityNS + "W1")
	e1 := rdf.NamedNode(rdf.EntityNS + "E1")
	rdfType := rdf.NamedNode(rdf.RDFType)
	label := rdf.NamedNode(rdf.RDFSLabel)

	s.Add(rdf.Quad{Subject: w1, Predicate: rdfType, Object: rdf.NamedNode(rdf.NS + "Work")})
	s.Add(rdf.Quad{Subject: w1, Predicate: label, Object: rdf.Literal("Les Misérables")})
	s.Add(rdf.Quad{Subject: e1, Predicate: rdfType, Object: rdf.NamedNode(rdf.NS + "Expression")})
	s.Add(rdf.Quad{Subject: e1, Predicate: label, Object: rdf.Literal("Les Misérables (texte)")})
	s.Add(rdf.Quad{Subject: e1, Predicate: rdf.NamedNode(rdf.PredHasWork), Object: w1})
	s.Add(rdf.Quad{Subject: w1, Predicate: rdf.NamedNode(rdf.PredHasExpression), Object: e1})
	return s
}

func TestAskQueries(t *testing.T) {
	store := exampleStore()
	engine := New()

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{
			"existing link",
			`ASK { <` + rdf.EntityNS + `E1> vendange:hasWork <` + rdf.EntityNS + `W1> }`,
			true,
		},
		{
			"work has some expression",
			`ASK { <` + rdf.EntityNS + `W1> vendange:hasExpression ?e }`,
			true,
		},
		{
			"absent link",
			`ASK { <` + rdf.EntityNS + `W1> vendange:hasWork <` + rdf.EntityNS + `E1> }`,
			false,
		},
		{
			"join across patterns",
			`ASK { ?e vendange:hasWork ?w . ?w a vendange:Work }`,
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := engine.Query(store, tt.query)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			boolean, ok := raw.(query.BooleanRaw)
			if !ok {
				t.Fatalf("Query() returned %T, want BooleanRaw", raw)
			}
			if bool(boolean) != tt.want {
				t.Fatalf("Query() = %v, want %v", boolean, tt.want)
			}
		})
	}
}

func TestSelectQuery(t *testing.T) {
	store := exampleStore()
	engine := New()

	raw, err := engine.Query(store, `SELECT ?label WHERE { ?s a vendange:Work . ?s rdfs:label ?label }`)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	solutions, ok := raw.(query.SolutionsRaw)
	if !ok {
		t.Fatalf("Query() returned %T, want SolutionsRaw", raw)
	}

	if len(solutions.Variables) != 1 || solutions.Variables[0] != "label" {
		t.Fatalf("variables = %v, want [label]", solutions.Variables)
	}
	if len(solutions.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(solutions.Rows))
	}
	if got := solutions.Rows[0]["label"]; got != rdf.Literal("Les Misérables") {
		t.Fatalf("label binding = %v", got)
	}
}

func TestSelectStarUsesAppearanceOrder(t *testing.T) {
	store := exampleStore()
	engine := New()

	raw, err := engine.Query(store, `SELECT * WHERE { ?e vendange:hasWork ?w }`)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	solutions := raw.(query.SolutionsRaw)

	if len(solutions.Variables) != 2 || solutions.Variables[0] != "e" || solutions.Variables[1] != "w" {
		t.Fatalf("variables = %v, want [e w]", solutions.Variables)
	}
	if len(solutions.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(solutions.Rows))
	}
	if solutions.Rows[0]["w"] != rdf.NamedNode(rdf.EntityNS+"W1") {
		t.Fatalf("w binding = %v", solutions.Rows[0]["w"])
	}
}

func TestSelectNoMatches(t *testing.T) {
	store := exampleStore()
	engine := New()

	raw, err := engine.Query(store, `SELECT ?x WHERE { ?x a vendange:Agent }`)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	solutions := raw.(query.SolutionsRaw)
	if len(solutions.Rows) != 0 {
		t.Fatalf("got %d rows, want 0", len(solutions.Rows))
	}
}

func TestConstructQuery(t *testing.T) {
	store := exampleStore()
	engine := New()

	raw, err := engine.Query(store, `CONSTRUCT WHERE { ?s rdfs:label ?label }`)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	statements, ok := raw.(query.StatementsRaw)
	if !ok {
		t.Fatalf("Query() returned %T, want StatementsRaw", raw)
	}
	if len(statements.Quads) != 2 {
		t.Fatalf("got %d statements, want 2", len(statements.Quads))
	}
	for _, q := range statements.Quads {
		if q.Predicate != rdf.NamedNode(rdf.RDFSLabel) {
			t.Fatalf("constructed statement with predicate %v", q.Predicate)
		}
	}
}

func TestPrefixDeclarationOverride(t *testing.T) {
	store := rdf.NewStore()
	store.Add(rdf.Quad{
		Subject:   rdf.NamedNode("https://example.org/s"),
		Predicate: rdf.NamedNode("https://example.org/p"),
		Object:    rdf.Literal("v"),
	})
	engine := New()

	raw, err := engine.Query(store, `PREFIX ex: <https://example.org/> ASK { ex:s ex:p "v" }`)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if boolean := raw.(query.BooleanRaw); !bool(boolean) {
		t.Fatalf("Query() = false with declared prefix")
	}
}

func TestTypedAndLanguageLiterals(t *testing.T) {
	store := rdf.NewStore()
	subject := rdf.NamedNode("https://example.org/s")
	store.Add(rdf.Quad{Subject: subject, Predicate: rdf.NamedNode("https://example.org/n"), Object: rdf.TypedLiteral("3", rdf.XSDInteger)})
	store.Add(rdf.Quad{Subject: subject, Predicate: rdf.NamedNode("https://example.org/t"), Object: rdf.LangLiteral("bonjour", "fr")})
	engine := New()

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"typed match", `ASK { ?s <https://example.org/n> "3"^^xsd:integer }`, true},
		{"typed mismatch", `ASK { ?s <https://example.org/n> "3" }`, false},
		{"language match", `ASK { ?s <https://example.org/t> "bonjour"@fr }`, true},
		{"language mismatch", `ASK { ?s <https://example.org/t> "bonjour" }`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := engine.Query(store, tt.query)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if got := bool(raw.(query.BooleanRaw)); got != tt.want {
				t.Fatalf("Query() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRepeatedVariableMustBindConsistently(t *testing.T) {
	store := rdf.NewStore()
	a := rdf.NamedNode("https://example.org/a")
	b := rdf.NamedNode("https://example.org/b")
	loves := rdf.NamedNode("https://example.org/loves")
	store.Add(rdf.Quad{Subject: a, Predicate: loves, Object: b})
	store.Add(rdf.Quad{Subject: b, Predicate: loves, Object: b})
	engine := New()

	raw, err := engine.Query(store, `SELECT ?x WHERE { ?x <https://example.org/loves> ?x }`)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	solutions := raw.(query.SolutionsRaw)
	if len(solutions.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(solutions.Rows))
	}
	if solutions.Rows[0]["x"] != b {
		t.Fatalf("x binding = %v, want %v", solutions.Rows[0]["x"], b)
	}
}

func TestParseErrors(t *testing.T) {
	store := exampleStore()
	engine := New()

	tests := []struct {
		name    string
		query   string
		wantErr string
	}{
		{"unsupported form", `DESCRIBE <x>`, "expected ASK, SELECT or CONSTRUCT"},
		{"unknown prefix", `ASK { foo:s ?p ?o }`, "unknown prefix"},
		{"missing brace", `ASK { ?s ?p ?o`, "expected '}'"},
		{"no patterns", `ASK { }`, "no patterns"},
		{"unterminated literal", `ASK { ?s ?p "open }`, "unterminated literal"},
		{"missing where", `SELECT ?s { ?s ?p ?o }`, "expected WHERE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Query(store, tt.query)
			if err == nil {
				t.Fatalf("Query() succeeded, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Query() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
