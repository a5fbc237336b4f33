package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/studymesh/conceptgraph/internal/core/model"
)

// Store is the arena for concepts and relationships: flat maps keyed by ID,
// relationships holding IDs rather than pointers, so merges are ID rewrites.
// A single mutex serializes mutation; per-document version stamps give
// callers an optimistic-concurrency token (mutations against a stale token
// fail with StaleVersionError and no partial write).
type Store struct {
	mu        sync.Mutex
	docs      map[string]*document
	conflicts map[string]*model.ConceptConflict
}

type document struct {
	version       int64
	concepts      map[string]*model.Concept
	relationships map[string]*model.Relationship
	absorbed      map[string]string // duplicate ID -> surviving primary ID
	distinct      map[string]bool   // user-confirmed non-duplicate pairs
}

func New() *Store {
	return &Store{
		docs:      make(map[string]*document),
		conflicts: make(map[string]*model.ConceptConflict),
	}
}

func (s *Store) doc(documentID string) *document {
	d, ok := s.docs[documentID]
	if !ok {
		d = &document{
			concepts:      make(map[string]*model.Concept),
			relationships: make(map[string]*model.Relationship),
			absorbed:      make(map[string]string),
			distinct:      make(map[string]bool),
		}
		s.docs[documentID] = d
	}
	return d
}

// Version returns the current mutation stamp for a document. Unknown
// documents are at version 0.
func (s *Store) Version(documentID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.docs[documentID]; ok {
		return d.version
	}
	return 0
}

func (s *Store) checkVersion(d *document, documentID string, version int64) error {
	if version != d.version {
		return model.StaleVersionError(documentID, version, d.version)
	}
	return nil
}

// AddConcept inserts an unvalidated concept and returns it. Ingestion is an
// append-only arrival, not a caller-coordinated edit, so it advances the
// version without demanding a token.
func (s *Store) AddConcept(documentID string, c model.Concept) model.Concept {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.doc(documentID)
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.DocumentID = documentID
	if c.StructureType == "" {
		c.StructureType = model.StructureNone
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	d.concepts[c.ID] = &c
	d.version++
	return c
}

// AddRelationship inserts a relationship after checking both endpoints exist
// and are not absorbed.
func (s *Store) AddRelationship(documentID string, r model.Relationship) (model.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.doc(documentID)
	if strings.TrimSpace(r.RelationshipType) == "" {
		return model.Relationship{}, model.ValidationError("relationship type must not be empty")
	}
	if _, ok := d.concepts[r.SourceConceptID]; !ok {
		return model.Relationship{}, model.NotFoundError("concept", r.SourceConceptID)
	}
	if _, ok := d.concepts[r.TargetConceptID]; !ok {
		return model.Relationship{}, model.NotFoundError("concept", r.TargetConceptID)
	}
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.StructureCategory == "" {
		r.StructureCategory = model.StructureUnclassified
	}
	d.relationships[r.ID] = &r
	d.version++
	return r, nil
}

func (s *Store) GetConcept(documentID, conceptID string) (model.Concept, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.docs[documentID]
	if !ok {
		return model.Concept{}, model.NotFoundError("document", documentID)
	}
	c, ok := d.concepts[conceptID]
	if !ok {
		return model.Concept{}, model.NotFoundError("concept", conceptID)
	}
	return *c, nil
}

// ApproveConcept marks a concept validated.
func (s *Store) ApproveConcept(documentID string, version int64, conceptID string) (model.Concept, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.docs[documentID]
	if !ok {
		return model.Concept{}, 0, model.NotFoundError("document", documentID)
	}
	if err := s.checkVersion(d, documentID, version); err != nil {
		return model.Concept{}, 0, err
	}
	c, ok := d.concepts[conceptID]
	if !ok {
		return model.Concept{}, 0, model.NotFoundError("concept", conceptID)
	}
	c.Validated = true
	d.version++
	return *c, d.version, nil
}

// RejectConcept removes a concept and every relationship touching it.
// Explicit reject is one of the two sanctioned deletion paths (the other is
// merge absorption).
func (s *Store) RejectConcept(documentID string, version int64, conceptID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.docs[documentID]
	if !ok {
		return 0, model.NotFoundError("document", documentID)
	}
	if err := s.checkVersion(d, documentID, version); err != nil {
		return 0, err
	}
	if _, ok := d.concepts[conceptID]; !ok {
		return 0, model.NotFoundError("concept", conceptID)
	}
	delete(d.concepts, conceptID)
	for id, r := range d.relationships {
		if r.SourceConceptID == conceptID || r.TargetConceptID == conceptID {
			delete(d.relationships, id)
		}
	}
	d.version++
	return d.version, nil
}

// EditConcept replaces term and definition.
func (s *Store) EditConcept(documentID string, version int64, conceptID, term, definition string) (model.Concept, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.docs[documentID]
	if !ok {
		return model.Concept{}, 0, model.NotFoundError("document", documentID)
	}
	if err := s.checkVersion(d, documentID, version); err != nil {
		return model.Concept{}, 0, err
	}
	if strings.TrimSpace(term) == "" {
		return model.Concept{}, 0, model.ValidationError("term must not be empty")
	}
	c, ok := d.concepts[conceptID]
	if !ok {
		return model.Concept{}, 0, model.NotFoundError("concept", conceptID)
	}
	c.Term = term
	c.Definition = definition
	c.Validated = true
	d.version++
	return *c, d.version, nil
}

// MarkDistinct records a user decision that two concepts are not duplicates;
// later dedup scans skip the pair.
func (s *Store) MarkDistinct(documentID string, version int64, aID, bID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.docs[documentID]
	if !ok {
		return 0, model.NotFoundError("document", documentID)
	}
	if err := s.checkVersion(d, documentID, version); err != nil {
		return 0, err
	}
	if _, ok := d.concepts[aID]; !ok {
		return 0, model.NotFoundError("concept", aID)
	}
	if _, ok := d.concepts[bID]; !ok {
		return 0, model.NotFoundError("concept", bID)
	}
	d.distinct[pairKey(aID, bID)] = true
	d.version++
	return d.version, nil
}

// ApplyClassification writes structure categories and strengths computed by
// the classifier back onto relationships.
func (s *Store) ApplyClassification(documentID string, version int64, results map[string]model.Relationship) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.docs[documentID]
	if !ok {
		return 0, model.NotFoundError("document", documentID)
	}
	if err := s.checkVersion(d, documentID, version); err != nil {
		return 0, err
	}
	for id := range results {
		if _, ok := d.relationships[id]; !ok {
			return 0, model.NotFoundError("relationship", id)
		}
	}
	for id, res := range results {
		r := d.relationships[id]
		r.StructureCategory = res.StructureCategory
		r.Strength = res.Strength
	}
	d.version++
	return d.version, nil
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// Snapshot is an immutable copy of one document's graph. Layout and the
// read-only scans operate on snapshots, never on live store state.
type Snapshot struct {
	DocumentID    string
	Version       int64
	Concepts      []model.Concept
	Relationships []model.Relationship
	Distinct      map[string]bool
}

// IsDistinct reports whether the user already ruled the pair non-duplicate.
func (sn Snapshot) IsDistinct(aID, bID string) bool {
	return sn.Distinct[pairKey(aID, bID)]
}

func (s *Store) Snapshot(documentID string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.docs[documentID]
	if !ok {
		return Snapshot{}, model.NotFoundError("document", documentID)
	}
	return s.snapshotLocked(documentID, d), nil
}

// SnapshotAll returns snapshots for every known document, sorted by ID for
// deterministic cross-document scans.
func (s *Store) SnapshotAll() []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Snapshot, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.snapshotLocked(id, s.docs[id]))
	}
	return out
}

func (s *Store) snapshotLocked(documentID string, d *document) Snapshot {
	sn := Snapshot{
		DocumentID:    documentID,
		Version:       d.version,
		Concepts:      make([]model.Concept, 0, len(d.concepts)),
		Relationships: make([]model.Relationship, 0, len(d.relationships)),
		Distinct:      make(map[string]bool, len(d.distinct)),
	}
	for _, c := range d.concepts {
		cc := *c
		cc.SourceSentences = append([]string(nil), c.SourceSentences...)
		cc.SurroundingConcepts = append([]string(nil), c.SurroundingConcepts...)
		sn.Concepts = append(sn.Concepts, cc)
	}
	for _, r := range d.relationships {
		sn.Relationships = append(sn.Relationships, *r)
	}
	for k := range d.distinct {
		sn.Distinct[k] = true
	}
	sort.Slice(sn.Concepts, func(i, j int) bool { return sn.Concepts[i].ID < sn.Concepts[j].ID })
	sort.Slice(sn.Relationships, func(i, j int) bool { return sn.Relationships[i].ID < sn.Relationships[j].ID })
	return sn
}
