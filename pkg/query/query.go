package query

import (
	"strings"

	"github.com/vendange/backend/pkg/jobs"
	"github.com/vendange/backend/pkg/logger"
	"github.com/vendange/backend/pkg/rdf"
)

// Engine evaluates a query against a completed graph and returns one of the
// raw result shapes. Implementations must treat the store as read-only.
type Engine interface {
	Query(store *rdf.Store, query string) (Raw, error)
}

// Raw is the result an engine hands back before normalization. The three
// concrete shapes are BooleanRaw, SolutionsRaw and StatementsRaw; anything
// else normalizes to an empty result.
type Raw interface {
	rawResult()
}

// BooleanRaw is the outcome of an existence query.
type BooleanRaw bool

// SolutionsRaw is a table of variable bindings.
type SolutionsRaw struct {
	Variables []string
	Rows      []map[string]rdf.Term
}

// StatementsRaw is a set of statements produced by a construction query.
type StatementsRaw struct {
	Quads []rdf.Quad
}

func (BooleanRaw) rawResult()    {}
func (SolutionsRaw) rawResult()  {}
func (StatementsRaw) rawResult() {}

// EngineError wraps a failure reported by the engine. The message is carried
// verbatim so callers can surface it unchanged.
type EngineError struct {
	Message string
}

func (e *EngineError) Error() string {
	return e.Message
}

// Executor resolves a job's graph and runs queries against it.
type Executor struct {
	jobs   *jobs.Store
	engine Engine
}

// NewExecutorParams configures an executor.
type NewExecutorParams struct {
	Jobs   *jobs.Store
	Engine Engine
}

// NewExecutor creates a query executor over the given job store and engine.
func NewExecutor(params NewExecutorParams) *Executor {
	return &Executor{
		jobs:   params.Jobs,
		engine: params.Engine,
	}
}

// Execute runs a query against the graph of the given job. It fails with
// jobs.ErrNotFound for unknown jobs and jobs.ErrNotReady when the job has no
// completed graph. A blank query short-circuits to an empty result without
// touching the engine.
func (e *Executor) Execute(jobID string, queryText string) (Result, error) {
	store, err := e.jobs.GraphFor(jobID)
	if err != nil {
		return Result{}, err
	}

	if strings.TrimSpace(queryText) == "" {
		return EmptyResult(), nil
	}

	raw, err := e.engine.Query(store, queryText)
	if err != nil {
		logger.Debug("[Query] Engine rejected query", "job_id", jobID, "err", err)
		return Result{}, &EngineError{Message: err.Error()}
	}

	return normalize(raw), nil
}

// ExecuteLatest runs a query against the most recently completed graph. When
// no build has completed yet it fails with jobs.ErrNotReady.
func (e *Executor) ExecuteLatest(queryText string) (string, Result, error) {
	id, ok := e.jobs.LatestReady()
	if !ok {
		return "", Result{}, jobs.ErrNotReady
	}
	result, err := e.Execute(id, queryText)
	return id, result, err
}

// normalize flattens an engine result into the wire shape. Unknown raw shapes
// collapse to the empty result rather than failing.
func normalize(raw Raw) Result {
	switch r := raw.(type) {
	case BooleanRaw:
		value := bool(r)
		return Result{Kind: KindBoolean, Value: &value}
	case SolutionsRaw:
		rows := make([]map[string]Term, 0, len(r.Rows))
		for _, row := range r.Rows {
			converted := make(map[string]Term, len(row))
			for name, term := range row {
				converted[name] = termToWire(term)
			}
			rows = append(rows, converted)
		}
		variables := r.Variables
		if variables == nil {
			variables = []string{}
		}
		return Result{Kind: KindSelect, Variables: variables, Rows: rows}
	case StatementsRaw:
		quads := make([]string, 0, len(r.Quads))
		for _, q := range r.Quads {
			quads = append(quads, q.String())
		}
		return Result{Kind: KindConstruct, Quads: quads}
	default:
		return EmptyResult()
	}
}
