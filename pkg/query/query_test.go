package query

import (
	"errors"
	"testing"
	"time"

	"github.com/vendange/backend/pkg/jobs"
	"github.com/vendange/backend/pkg/rdf"
	"github.com/vendange/backend/pkg/record"
)

// stubEngine returns a canned result and records whether it was called.
type stubEngine struct {
	raw    Raw
	err    error
	called bool
}

func (s *stubEngine) Query(_ *rdf.Store, _ string) (Raw, error) {
	s.called = true
	return s.raw, s.err
}

type unknownRaw struct{}

func (unknownRaw) rawResult() {}

func readyJob(t *testing.T, store *jobs.Store) string {
	t.Helper()
	id, err := store.Submit([]record.Record{{
		Identifier: "W1",
		Type:       "oeuvre",
		Zones: []record.Zone{
			{Code: "150", Subfields: []record.Subfield{{Code: "150$a", Value: "Titre"}}},
		},
	}})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snapshot, err := store.GetStatus(id)
		if err != nil {
			t.Fatalf("GetStatus() error = %v", err)
		}
		if snapshot.Status == jobs.StatusReady {
			return id
		}
		if snapshot.Status == jobs.StatusError {
			t.Fatalf("build failed: %s", snapshot.Error)
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("job %s never became ready", id)
	return ""
}

func TestExecuteUnknownJob(t *testing.T) {
	store := jobs.NewStore(jobs.NewStoreParams{Workers: 1})
	defer store.Close()
	executor := NewExecutor(NewExecutorParams{Jobs: store, Engine: &stubEngine{}})

	if _, err := executor.Execute("missing", "ASK { ?s ?p ?o }"); !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("Execute() error = %v, want jobs.ErrNotFound", err)
	}
}

func TestExecuteBlankQuerySkipsEngine(t *testing.T) {
	store := jobs.NewStore(jobs.NewStoreParams{Workers: 1})
	defer store.Close()
	id := readyJob(t, store)

	engine := &stubEngine{raw: BooleanRaw(true)}
	executor := NewExecutor(NewExecutorParams{Jobs: store, Engine: engine})

	result, err := executor.Execute(id, "   \n\t ")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Kind != KindEmpty {
		t.Fatalf("result kind = %s, want %s", result.Kind, KindEmpty)
	}
	if engine.called {
		t.Fatalf("engine was invoked for a blank query")
	}
}

func TestExecuteEngineErrorIsVerbatim(t *testing.T) {
	store := jobs.NewStore(jobs.NewStoreParams{Workers: 1})
	defer store.Close()
	id := readyJob(t, store)

	engine := &stubEngine{err: errors.New("unknown prefix \"foo\"")}
	executor := NewExecutor(NewExecutorParams{Jobs: store, Engine: engine})

	_, err := executor.Execute(id, "ASK { foo:s ?p ?o }")
	var engineErr *EngineError
	if !errors.As(err, &engineErr) {
		t.Fatalf("Execute() error = %T, want *EngineError", err)
	}
	if engineErr.Message != "unknown prefix \"foo\"" {
		t.Fatalf("message = %q, not carried verbatim", engineErr.Message)
	}
}

func TestExecuteNormalizesShapes(t *testing.T) {
	store := jobs.NewStore(jobs.NewStoreParams{Workers: 1})
	defer store.Close()
	id := readyJob(t, store)

	boolTrue := true
	tests := []struct {
		name string
		raw  Raw
		want Result
	}{
		{
			"boolean",
			BooleanRaw(true),
			Result{Kind: KindBoolean, Value: &boolTrue},
		},
		{
			"select",
			SolutionsRaw{
				Variables: []string{"s"},
				Rows: []map[string]rdf.Term{
					{"s": rdf.NamedNode(rdf.EntityNS + "W1")},
				},
			},
			Result{
				Kind:      KindSelect,
				Variables: []string{"s"},
				Rows: []map[string]Term{
					{"s": {Kind: "NamedNode", Value: rdf.EntityNS + "W1"}},
				},
			},
		},
		{
			"select empty keeps shape",
			SolutionsRaw{},
			Result{Kind: KindSelect, Variables: []string{}, Rows: []map[string]Term{}},
		},
		{
			"construct",
			StatementsRaw{Quads: []rdf.Quad{{
				Subject:   rdf.NamedNode(rdf.EntityNS + "W1"),
				Predicate: rdf.NamedNode(rdf.RDFSLabel),
				Object:    rdf.Literal("Titre"),
			}}},
			Result{Kind: KindConstruct, Quads: []string{
				"<" + rdf.EntityNS + "W1> <" + rdf.RDFSLabel + `> "Titre" .`,
			}},
		},
		{
			"unknown shape collapses to empty",
			unknownRaw{},
			Result{Kind: KindEmpty},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor := NewExecutor(NewExecutorParams{
				Jobs:   store,
				Engine: &stubEngine{raw: tt.raw},
			})
			got, err := executor.Execute(id, "SELECT * WHERE { ?s ?p ?o }")
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if got.Kind != tt.want.Kind {
				t.Fatalf("kind = %s, want %s", got.Kind, tt.want.Kind)
			}
			switch tt.want.Kind {
			case KindBoolean:
				if got.Value == nil || *got.Value != *tt.want.Value {
					t.Fatalf("value = %v, want %v", got.Value, tt.want.Value)
				}
			case KindSelect:
				if len(got.Variables) != len(tt.want.Variables) || len(got.Rows) != len(tt.want.Rows) {
					t.Fatalf("select shape = (%v, %d rows), want (%v, %d rows)",
						got.Variables, len(got.Rows), tt.want.Variables, len(tt.want.Rows))
				}
				for i, row := range tt.want.Rows {
					for name, term := range row {
						if got.Rows[i][name] != term {
							t.Fatalf("row %d binding %s = %+v, want %+v", i, name, got.Rows[i][name], term)
						}
					}
				}
			case KindConstruct:
				if len(got.Quads) != len(tt.want.Quads) {
					t.Fatalf("got %d quads, want %d", len(got.Quads), len(tt.want.Quads))
				}
				for i := range tt.want.Quads {
					if got.Quads[i] != tt.want.Quads[i] {
						t.Fatalf("quad %d = %s, want %s", i, got.Quads[i], tt.want.Quads[i])
					}
				}
			}
		})
	}
}

func TestLanguageLiteralWireForm(t *testing.T) {
	term := termToWire(rdf.LangLiteral("bonjour", "fr"))
	if term.Kind != "Literal" || term.Language != "fr" {
		t.Fatalf("termToWire() = %+v", term)
	}
	named := termToWire(rdf.NamedNode("https://example.org/a"))
	if named.Language != "" || named.Datatype != "" {
		t.Fatalf("named node wire form carries literal fields: %+v", named)
	}
}

func TestExecuteLatest(t *testing.T) {
	store := jobs.NewStore(jobs.NewStoreParams{Workers: 1})
	defer store.Close()
	executor := NewExecutor(NewExecutorParams{Jobs: store, Engine: &stubEngine{raw: BooleanRaw(true)}})

	if _, _, err := executor.ExecuteLatest("ASK { ?s ?p ?o }"); !errors.Is(err, jobs.ErrNotReady) {
		t.Fatalf("ExecuteLatest() error = %v, want jobs.ErrNotReady before any build", err)
	}

	id := readyJob(t, store)
	gotID, result, err := executor.ExecuteLatest("ASK { ?s ?p ?o }")
	if err != nil {
		t.Fatalf("ExecuteLatest() error = %v", err)
	}
	if gotID != id {
		t.Fatalf("ExecuteLatest() ran against %s, want %s", gotID, id)
	}
	if result.Kind != KindBoolean {
		t.Fatalf("result kind = %s, want %s", result.Kind, KindBoolean)
	}
}
