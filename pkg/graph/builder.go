package graph

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/vendange/backend/internal/util"
	"github.com/vendange/backend/pkg/logger"
	"github.com/vendange/backend/pkg/rdf"
	"github.com/vendange/backend/pkg/record"
)

const arkPrefix = "ark:/"

// ErrAborted is returned when the progress callback asks the build to stop.
// An aborted build carries no result and marks no terminal state.
var ErrAborted = errors.New("graph build aborted")

// ProgressPhase names the two sequential build phases.
type ProgressPhase string

const (
	PhaseIndexing ProgressPhase = "indexing"
	PhaseBuilding ProgressPhase = "building"
)

// Progress is one progress report. Current is strictly increasing within a
// phase and phases never regress from building to indexing.
type Progress struct {
	Phase   ProgressPhase `json:"phase"`
	Current int           `json:"current"`
	Total   int           `json:"total"`
}

// ProgressFunc receives build progress. Returning false aborts the build
// cooperatively; no further statements are written after that.
type ProgressFunc func(Progress) bool

// Metadata maps every record identifier, and every normalized external
// identifier, to the canonical IRI of its entity node.
type Metadata struct {
	RecordNodeByID  map[string]string `json:"recordNodeById"`
	RecordNodeByArk map[string]string `json:"recordNodeByArk"`
}

// Result is a completed build: the populated store and its metadata.
type Result struct {
	Store    *rdf.Store
	Metadata Metadata
}

// Build transforms an ordered record batch into a search graph. The build is
// deterministic: the same batch always yields the same statement set and
// attribute values; only blank node labels vary between runs.
//
// Cross-references resolve against the current batch only. A reference to an
// external identifier absent from the batch keeps its literal attribute but
// gets no edge.
func Build(records []record.Record, onProgress ProgressFunc) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("[Graph] Build panicked", "panic", r, "stack", string(debug.Stack()))
			result = nil
			err = fmt.Errorf("graph build failed: %v", r)
		}
	}()

	b := &builder{
		store:          rdf.NewStore(),
		nodeByID:       make(map[string]rdf.Term),
		nodeByArk:      make(map[string]rdf.Term),
		recordByArk:    make(map[string]record.Record),
		predicateCache: make(map[string]fieldPredicates),
	}

	total := len(records)
	logger.Info("[Graph] Build started", "records", total)

	if !report(onProgress, Progress{Phase: PhaseIndexing, Current: 0, Total: total}) {
		return nil, ErrAborted
	}
	for i, rec := range records {
		if ark := util.NormalizeExternalID(record.ArkOf(rec)); ark != "" {
			b.recordByArk[ark] = rec
		}
		if !report(onProgress, Progress{Phase: PhaseIndexing, Current: i + 1, Total: total}) {
			return nil, ErrAborted
		}
	}

	processed := make(map[string]struct{}, total)
	for i, rec := range records {
		node := b.nodeForRecord(rec)

		if _, repeat := processed[rec.Identifier]; repeat {
			// A repeated identifier keeps its entity node but still
			// contributes this occurrence's field data.
			b.attachFieldData(rec, node)
		} else {
			processed[rec.Identifier] = struct{}{}
			b.buildRecord(rec, node)
		}

		if !report(onProgress, Progress{Phase: PhaseBuilding, Current: i + 1, Total: total}) {
			return nil, ErrAborted
		}
	}

	metadata := Metadata{
		RecordNodeByID:  make(map[string]string, len(b.nodeByID)),
		RecordNodeByArk: make(map[string]string, len(b.nodeByArk)),
	}
	for id, node := range b.nodeByID {
		metadata.RecordNodeByID[id] = node.Value
	}
	for ark, node := range b.nodeByArk {
		metadata.RecordNodeByArk[ark] = node.Value
	}

	logger.Info("[Graph] Build completed", "records", total, "statements", b.store.Len())

	return &Result{Store: b.store, Metadata: metadata}, nil
}

func report(onProgress ProgressFunc, progress Progress) bool {
	if onProgress == nil {
		return true
	}
	return onProgress(progress)
}

type fieldPredicates struct {
	value      rdf.Term
	normalized rdf.Term
}

type builder struct {
	store          *rdf.Store
	nodeByID       map[string]rdf.Term
	nodeByArk      map[string]rdf.Term
	recordByArk    map[string]record.Record
	predicateCache map[string]fieldPredicates
}

// nodeForRecord returns the entity node for a record identifier, creating it
// and registering its external identifier mapping on first sight.
func (b *builder) nodeForRecord(rec record.Record) rdf.Term {
	if existing, ok := b.nodeByID[rec.Identifier]; ok {
		return existing
	}
	node := rdf.NamedNode(rdf.EntityNS + util.EncodeForNodeID(rec.Identifier))
	b.nodeByID[rec.Identifier] = node
	if ark := util.NormalizeExternalID(record.ArkOf(rec)); ark != "" {
		b.nodeByArk[ark] = node
	}
	return node
}

// targetForArk resolves an external identifier against the batch, creating the
// target's entity node on demand when the referenced record exists but has not
// been visited yet. References outside the batch resolve to nothing.
func (b *builder) targetForArk(ark string) (rdf.Term, bool) {
	normalized := util.NormalizeExternalID(ark)
	if normalized == "" {
		return rdf.Term{}, false
	}
	if existing, ok := b.nodeByArk[normalized]; ok {
		return existing, true
	}
	targetRecord, ok := b.recordByArk[normalized]
	if !ok {
		return rdf.Term{}, false
	}
	return b.nodeForRecord(targetRecord), true
}

func (b *builder) buildRecord(rec record.Record, node rdf.Term) {
	class := record.Classify(rec)
	b.store.Add(rdf.Quad{Subject: node, Predicate: rdf.NamedNode(rdf.RDFType), Object: rdf.NamedNode(rdf.NS + class.String())})
	b.addLiteral(node, rdf.RDFSLabel, record.LabelFor(rec))
	b.addLiteral(node, rdf.PredTypeNorm, rec.TypeNorm)
	b.addLiteral(node, rdf.PredArk, record.ArkOf(rec))

	b.attachFieldData(rec, node)

	if class == record.ClassManifestation {
		for _, ark := range record.ExpressionArks(rec) {
			b.addLiteral(node, rdf.PredHasExpressionArk, ark)
			if target, ok := b.targetForArk(ark); ok {
				b.store.Add(rdf.Quad{Subject: node, Predicate: rdf.NamedNode(rdf.PredHasExpression), Object: target})
				b.store.Add(rdf.Quad{Subject: target, Predicate: rdf.NamedNode(rdf.PredHasManifestation), Object: node})
			}
		}
	}

	if class == record.ClassExpression {
		for _, ark := range record.WorkArks(rec) {
			b.addLiteral(node, rdf.PredHasWorkArk, ark)
			if target, ok := b.targetForArk(ark); ok {
				b.store.Add(rdf.Quad{Subject: node, Predicate: rdf.NamedNode(rdf.PredHasWork), Object: target})
				b.store.Add(rdf.Quad{Subject: target, Predicate: rdf.NamedNode(rdf.PredHasExpression), Object: node})
			}
		}
	}

	for _, rel := range record.RelationshipTargets(rec) {
		relNode := b.store.NewBlankNode()
		b.store.Add(rdf.Quad{Subject: node, Predicate: rdf.NamedNode(rdf.PredHasRelationship), Object: relNode})
		b.store.Add(rdf.Quad{Subject: relNode, Predicate: rdf.NamedNode(rdf.RDFType), Object: rdf.NamedNode(rdf.ClassRelationship)})
		b.addLiteral(relNode, rdf.PredRelationshipZone, rel.Zone)
		b.addLiteral(relNode, rdf.PredRelatedToArk, rel.Ark)
		if target, ok := b.targetForArk(rel.Ark); ok {
			b.store.Add(rdf.Quad{Subject: relNode, Predicate: rdf.NamedNode(rdf.PredRelationshipTarget), Object: target})
			b.store.Add(rdf.Quad{Subject: node, Predicate: rdf.NamedNode(rdf.PredRelatedTo), Object: target})
		}
	}

	for _, agent := range record.AgentRelations(rec) {
		b.addLiteral(node, rdf.PredHasAgentArk, agent.Ark)
		b.addLiteral(node, rdf.PredAgentZone, agent.Zone)
		b.addLiteral(node, rdf.PredAgentSubfield, agent.Subfield)
		if target, ok := b.targetForArk(agent.Ark); ok {
			b.store.Add(rdf.Quad{Subject: node, Predicate: rdf.NamedNode(rdf.PredHasAgent), Object: target})
		}
	}
}

// attachFieldData reifies every zone occurrence as a Field node and every
// non-empty subfield as both a flat value predicate on the entity and a
// Subfield node carrying positional provenance.
func (b *builder) attachFieldData(rec record.Record, node rdf.Term) {
	for zoneIndex, zone := range rec.Zones {
		fieldNode := b.store.NewBlankNode()
		b.store.Add(rdf.Quad{Subject: node, Predicate: rdf.NamedNode(rdf.PredHasField), Object: fieldNode})
		b.store.Add(rdf.Quad{Subject: fieldNode, Predicate: rdf.NamedNode(rdf.RDFType), Object: rdf.NamedNode(rdf.ClassField)})
		b.addLiteral(fieldNode, rdf.PredZoneCode, zone.Code)
		b.store.Add(rdf.Quad{Subject: fieldNode, Predicate: rdf.NamedNode(rdf.PredFieldIndex), Object: rdf.TypedLiteral(strconv.Itoa(zoneIndex), rdf.XSDInteger)})
		b.store.Add(rdf.Quad{Subject: fieldNode, Predicate: rdf.NamedNode(rdf.PredBelongsTo), Object: node})

		for subIndex, sub := range zone.Subfields {
			raw := strings.TrimSpace(sub.Value)
			if raw == "" {
				continue
			}

			preds := b.fieldPredicatesFor(sub.Code)
			b.store.Add(rdf.Quad{Subject: node, Predicate: preds.value, Object: rdf.Literal(raw)})
			normalized := util.NormalizeForIndex(raw)
			if normalized != "" {
				b.store.Add(rdf.Quad{Subject: node, Predicate: preds.normalized, Object: rdf.Literal(normalized)})
			}

			subfieldNode := b.store.NewBlankNode()
			b.store.Add(rdf.Quad{Subject: fieldNode, Predicate: rdf.NamedNode(rdf.PredHasSubfield), Object: subfieldNode})
			b.store.Add(rdf.Quad{Subject: subfieldNode, Predicate: rdf.NamedNode(rdf.RDFType), Object: rdf.NamedNode(rdf.ClassSubfield)})
			b.store.Add(rdf.Quad{Subject: subfieldNode, Predicate: rdf.NamedNode(rdf.PredBelongsTo), Object: node})
			b.addLiteral(subfieldNode, rdf.PredSubfieldCode, sub.Code)
			b.store.Add(rdf.Quad{Subject: subfieldNode, Predicate: rdf.NamedNode(rdf.PredSubfieldIndex), Object: rdf.TypedLiteral(strconv.Itoa(subIndex), rdf.XSDInteger)})
			b.addLiteral(subfieldNode, rdf.PredValue, raw)
			if normalized != "" {
				b.addLiteral(subfieldNode, rdf.PredValueNormalized, normalized)
			}

			if strings.HasPrefix(raw, arkPrefix) {
				b.addLiteral(subfieldNode, rdf.PredValueArk, raw)
				if target, ok := b.targetForArk(raw); ok {
					b.store.Add(rdf.Quad{Subject: subfieldNode, Predicate: rdf.NamedNode(rdf.PredReferences), Object: target})
				}
			}
		}
	}
}

func (b *builder) addLiteral(subject rdf.Term, predicate string, value string) {
	if value == "" {
		return
	}
	b.store.Add(rdf.Quad{Subject: subject, Predicate: rdf.NamedNode(predicate), Object: rdf.Literal(value)})
}

// fieldPredicatesFor builds (and caches) the flat value predicates for a
// subfield code: field/<zone>/<sub> and its /normalized variant, with any
// non-alphanumeric characters replaced so the IRI stays well-formed.
func (b *builder) fieldPredicatesFor(code string) fieldPredicates {
	if existing, ok := b.predicateCache[code]; ok {
		return existing
	}
	zone, sub := record.SplitSubfieldCode(code)
	base := rdf.FieldPredicatePrefix + sanitizeSegment(zone) + "/" + sanitizeSegment(sub)
	preds := fieldPredicates{
		value:      rdf.NamedNode(base),
		normalized: rdf.NamedNode(base + rdf.NormalizedSuffix),
	}
	b.predicateCache[code] = preds
	return preds
}

func sanitizeSegment(segment string) string {
	if segment == "" {
		return "value"
	}
	var sb strings.Builder
	sb.Grow(len(segment))
	for _, r := range segment {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
