package rdf

import "testing"

func TestStoreAddDeduplicates(t *testing.T) {
	s := NewStore()
	q := Quad{
		Subject:   NamedNode(EntityNS + "W1"),
		Predicate: NamedNode(RDFSLabel),
		Object:    Literal("Les Misérables"),
	}

	s.Add(q)
	s.Add(q)

	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after duplicate insert", s.Len())
	}
}

func TestStoreMatch(t *testing.T) {
	s := NewStore()
	w1 := NamedNode(EntityNS + "W1")
	e1 := NamedNode(EntityNS + "E1")
	label := NamedNode(RDFSLabel)
	hasWork := NamedNode(PredHasWork)

	s.Add(Quad{Subject: w1, Predicate: label, Object: Literal("Work")})
	s.Add(Quad{Subject: e1, Predicate: label, Object: Literal("Expression")})
	s.Add(Quad{Subject: e1, Predicate: hasWork, Object: w1})

	tests := []struct {
		name      string
		subject   *Term
		predicate *Term
		object    *Term
		want      int
	}{
		{"all wildcards", nil, nil, nil, 3},
		{"by subject", &e1, nil, nil, 2},
		{"by predicate", nil, &label, nil, 2},
		{"by object", nil, nil, &w1, 1},
		{"exact", &e1, &hasWork, &w1, 1},
		{"no match", &w1, &hasWork, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Match(tt.subject, tt.predicate, tt.object)
			if len(got) != tt.want {
				t.Fatalf("Match() returned %d statements, want %d", len(got), tt.want)
			}
		})
	}

	if !s.Has(&e1, &hasWork, &w1) {
		t.Fatalf("Has() = false for present statement")
	}
	if s.Has(&w1, &hasWork, &e1) {
		t.Fatalf("Has() = true for absent statement")
	}
}

func TestStoreBlankNodesDistinct(t *testing.T) {
	s := NewStore()
	a := s.NewBlankNode()
	b := s.NewBlankNode()
	if a == b {
		t.Fatalf("NewBlankNode() returned identical terms %v", a)
	}
	if a.Kind != TermBlankNode || b.Kind != TermBlankNode {
		t.Fatalf("NewBlankNode() kind = %v/%v, want blank nodes", a.Kind, b.Kind)
	}
}

func TestTermSerialization(t *testing.T) {
	tests := []struct {
		name string
		term Term
		want string
	}{
		{"named node", NamedNode("https://example.org/a"), "<https://example.org/a>"},
		{"blank node", Term{Kind: TermBlankNode, Value: "b1"}, "_:b1"},
		{"plain literal", Literal("hello"), `"hello"`},
		{"escaped literal", Literal("say \"hi\"\n"), `"say \"hi\"\n"`},
		{"language literal", LangLiteral("bonjour", "fr"), `"bonjour"@fr`},
		{"typed literal", TypedLiteral("3", XSDInteger), `"3"^^<` + XSDInteger + `>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.term.String(); got != tt.want {
				t.Fatalf("String() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestQuadSerialization(t *testing.T) {
	q := Quad{
		Subject:   NamedNode(EntityNS + "W1"),
		Predicate: NamedNode(RDFSLabel),
		Object:    Literal("Work"),
	}
	want := "<" + EntityNS + "W1> <" + RDFSLabel + `> "Work" .`
	if got := q.String(); got != want {
		t.Fatalf("String() = %s, want %s", got, want)
	}
}
