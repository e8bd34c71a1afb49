package rdf

import "strconv"

// Store is an append-only in-memory quad set with per-position indexes.
// Statements are deduplicated on insert, so repeated Add calls are idempotent.
//
// A Store is populated by a single goroutine during a build and must not be
// written after that; once writing stops it is safe for unsynchronized
// concurrent reads.
type Store struct {
	quads []Quad
	seen  map[Quad]struct{}

	bySubject   map[Term][]int
	byPredicate map[Term][]int
	byObject    map[Term][]int

	blankSeq int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		seen:        make(map[Quad]struct{}),
		bySubject:   make(map[Term][]int),
		byPredicate: make(map[Term][]int),
		byObject:    make(map[Term][]int),
	}
}

// NewBlankNode allocates a fresh blank node scoped to this store. Labels are
// dense and carry no meaning outside the store that issued them.
func (s *Store) NewBlankNode() Term {
	s.blankSeq++
	return Term{Kind: TermBlankNode, Value: "b" + strconv.Itoa(s.blankSeq)}
}

// Add inserts a statement. Duplicate statements are ignored.
func (s *Store) Add(q Quad) {
	if _, ok := s.seen[q]; ok {
		return
	}
	s.seen[q] = struct{}{}

	idx := len(s.quads)
	s.quads = append(s.quads, q)
	s.bySubject[q.Subject] = append(s.bySubject[q.Subject], idx)
	s.byPredicate[q.Predicate] = append(s.byPredicate[q.Predicate], idx)
	s.byObject[q.Object] = append(s.byObject[q.Object], idx)
}

// Len returns the number of distinct statements.
func (s *Store) Len() int {
	return len(s.quads)
}

// Quads iterates every statement in insertion order.
func (s *Store) Quads(yield func(Quad) bool) {
	for _, q := range s.quads {
		if !yield(q) {
			return
		}
	}
}

// Match returns the statements matching the given pattern in insertion order.
// A nil position is a wildcard.
func (s *Store) Match(subject *Term, predicate *Term, object *Term) []Quad {
	candidates := s.candidateIndexes(subject, predicate, object)

	var matched []Quad
	for _, idx := range candidates {
		q := s.quads[idx]
		if subject != nil && q.Subject != *subject {
			continue
		}
		if predicate != nil && q.Predicate != *predicate {
			continue
		}
		if object != nil && q.Object != *object {
			continue
		}
		matched = append(matched, q)
	}
	return matched
}

// Has reports whether at least one statement matches the pattern.
func (s *Store) Has(subject *Term, predicate *Term, object *Term) bool {
	if subject != nil && predicate != nil && object != nil {
		_, ok := s.seen[Quad{Subject: *subject, Predicate: *predicate, Object: *object}]
		return ok
	}
	return len(s.Match(subject, predicate, object)) > 0
}

// candidateIndexes picks the smallest index list available for the pattern.
func (s *Store) candidateIndexes(subject *Term, predicate *Term, object *Term) []int {
	var candidates []int
	selected := false

	consider := func(indexes []int, ok bool) {
		if !ok {
			candidates = nil
			selected = true
			return
		}
		if !selected || len(indexes) < len(candidates) {
			candidates = indexes
			selected = true
		}
	}

	if subject != nil {
		indexes, ok := s.bySubject[*subject]
		consider(indexes, ok)
		if len(candidates) == 0 {
			return nil
		}
	}
	if predicate != nil {
		indexes, ok := s.byPredicate[*predicate]
		consider(indexes, ok)
		if len(candidates) == 0 {
			return nil
		}
	}
	if object != nil {
		indexes, ok := s.byObject[*object]
		consider(indexes, ok)
		if len(candidates) == 0 {
			return nil
		}
	}

	if !selected {
		candidates = make([]int, len(s.quads))
		for i := range s.quads {
			candidates[i] = i
		}
	}
	return candidates
}
