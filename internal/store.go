package internal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Store is a lessons-learned document held as a yaml.v3 node tree, so keys
// keep their insertion order and unknown keys and comments survive a rewrite.
type Store struct {
	doc *yaml.Node
}

// NewStore returns an empty store with freshly initialized metadata.
func NewStore(now time.Time) *Store {
	root := newMapping()
	setMappingValue(root, SectionLessons, newMapping())
	setMappingValue(root, SectionMetadata, defaultMetadata(now))
	return &Store{doc: &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}}
}

func defaultMetadata(now time.Time) *yaml.Node {
	meta := newMapping()
	stamp := FormatTimestamp(now)
	setMappingValue(meta, MetaCreatedDate, scalarNode(stamp))
	setMappingValue(meta, MetaLastUpdated, scalarNode(stamp))
	setMappingValue(meta, MetaSDKVersion, scalarNode(SDKVersion))
	setMappingValue(meta, MetaTotalSolutions, scalarNode(0))
	return meta
}

// LoadStore reads the store at path. A missing or empty file yields an empty
// store; missing sections are defaulted.
func LoadStore(path string, now time.Time) (*Store, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewStore(now), nil
	}
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return ParseStore(path, data, now)
}

// ParseStore decodes data; path is only used in diagnostics.
func ParseStore(path string, data []byte, now time.Time) (*Store, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 || isNull(doc.Content[0]) {
		return NewStore(now), nil
	}

	root := resolve(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, &StructureError{Path: path, Msg: "root not a mapping"}
	}

	s := &Store{doc: &doc}
	if err := s.normalize(path, now); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) normalize(path string, now time.Time) error {
	root := s.root()

	lessons := mappingValue(root, SectionLessons)
	switch {
	case lessons == nil || isNull(lessons):
		setMappingValue(root, SectionLessons, newMapping())
	case lessons.Kind != yaml.MappingNode:
		return &StructureError{Path: path, Msg: "lessons_learned not a mapping"}
	}

	meta := mappingValue(root, SectionMetadata)
	switch {
	case meta == nil || isNull(meta):
		setMappingValue(root, SectionMetadata, defaultMetadata(now))
	case meta.Kind != yaml.MappingNode:
		return &StructureError{Path: path, Msg: "metadata not a mapping"}
	}
	return nil
}

func (s *Store) root() *yaml.Node {
	return resolve(s.doc.Content[0])
}

func (s *Store) lessons() *yaml.Node {
	return mappingValue(s.root(), SectionLessons)
}

func (s *Store) metadata() *yaml.Node {
	return mappingValue(s.root(), SectionMetadata)
}

// Categories returns category names in document order.
func (s *Store) Categories() []string {
	return mappingKeys(s.lessons())
}

// Problems returns the problems of a category in document order, or nil when
// the category is absent or not a mapping.
func (s *Store) Problems(category string) []string {
	cat := mappingValue(s.lessons(), category)
	if cat == nil || cat.Kind != yaml.MappingNode {
		return nil
	}
	return mappingKeys(cat)
}

func (s *Store) HasCategory(category string) bool {
	return mappingValue(s.lessons(), category) != nil
}

// Record decodes a solution record. Missing or mistyped fields are left at
// their zero value; ok is false when the problem is absent or not a mapping.
func (s *Store) Record(category, problem string) (rec SolutionRecord, ok bool) {
	node := s.problemNode(category, problem)
	if node == nil {
		return SolutionRecord{}, false
	}

	rec.Solution = scalarValue(mappingValue(node, FieldSolution))
	rec.CreatedDate = scalarValue(mappingValue(node, FieldCreatedDate))
	if n := mappingValue(node, FieldUseCount); n != nil {
		var count int
		if err := n.Decode(&count); err == nil {
			rec.UseCount = count
		}
	}
	return rec, true
}

// HasField reports whether the record carries field at all.
func (s *Store) HasField(category, problem, field string) bool {
	node := s.problemNode(category, problem)
	return node != nil && mappingValue(node, field) != nil
}

func (s *Store) problemNode(category, problem string) *yaml.Node {
	cat := mappingValue(s.lessons(), category)
	if cat == nil || cat.Kind != yaml.MappingNode {
		return nil
	}
	node := mappingValue(cat, problem)
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	return node
}

// EnsureCategory creates an empty category if it does not exist yet.
func (s *Store) EnsureCategory(category string) {
	lessons := s.lessons()
	blockStyle(s.root())
	if cat := mappingValue(lessons, category); cat != nil && cat.Kind == yaml.MappingNode {
		blockStyle(lessons)
		return
	}
	setMappingValue(lessons, category, newMapping())
}

// PutRecord writes rec under category/problem. An existing record keeps its
// position and any extra keys; only the required fields are overwritten.
func (s *Store) PutRecord(category, problem string, rec SolutionRecord) {
	s.EnsureCategory(category)
	cat := mappingValue(s.lessons(), category)

	node := mappingValue(cat, problem)
	if node == nil || node.Kind != yaml.MappingNode {
		node = newMapping()
		setMappingValue(cat, problem, node)
	}
	setMappingValue(node, FieldSolution, scalarNode(rec.Solution))
	setMappingValue(node, FieldCreatedDate, scalarNode(rec.CreatedDate))
	setMappingValue(node, FieldUseCount, scalarNode(rec.UseCount))
}

func (s *Store) RemoveProblem(category, problem string) bool {
	cat := mappingValue(s.lessons(), category)
	if cat == nil || cat.Kind != yaml.MappingNode {
		return false
	}
	return deleteMappingKey(cat, problem)
}

// CountSolutions sums entry counts across all mapping-valued categories.
func (s *Store) CountSolutions() int {
	total := 0
	lessons := s.lessons()
	for i := 1; i < len(lessons.Content); i += 2 {
		cat := resolve(lessons.Content[i])
		if cat.Kind == yaml.MappingNode {
			total += len(cat.Content) / 2
		}
	}
	return total
}

func (s *Store) SetMeta(key string, value any) {
	blockStyle(s.root())
	setMappingValue(s.metadata(), key, scalarNode(value))
}

func (s *Store) Meta(key string) (string, bool) {
	n := mappingValue(s.metadata(), key)
	if n == nil {
		return "", false
	}
	return scalarValue(n), true
}

func (s *Store) TotalSolutions() int {
	n := mappingValue(s.metadata(), MetaTotalSolutions)
	if n == nil {
		return 0
	}
	var total int
	if err := n.Decode(&total); err != nil {
		return 0
	}
	return total
}

// Touch recomputes total_solutions and stamps last_updated.
func (s *Store) Touch(now time.Time) {
	s.SetMeta(MetaLastUpdated, FormatTimestamp(now))
	s.SetMeta(MetaTotalSolutions, s.CountSolutions())
}

func (s *Store) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s.doc); err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	return enc.Close()
}

func (s *Store) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveStore rewrites path atomically with the full document.
func SaveStore(path string, s *Store) error {
	if err := WriteFileAtomic(path, 0644, s.Encode); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// yaml.Node helpers

func newMapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func scalarNode(v any) *yaml.Node {
	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprint(v)}
	}
	return n
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	n = resolve(n)
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func scalarValue(n *yaml.Node) string {
	n = resolve(n)
	if n == nil || n.Kind != yaml.ScalarNode {
		return ""
	}
	return n.Value
}

func mappingKeys(m *yaml.Node) []string {
	m = resolve(m)
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]string, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		keys = append(keys, m.Content[i].Value)
	}
	return keys
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	m = resolve(m)
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return resolve(m.Content[i+1])
		}
	}
	return nil
}

// setMappingValue also drops flow style from m: a mapping parsed from `{}`
// would otherwise emit everything added under it on a single line.
func setMappingValue(m *yaml.Node, key string, val *yaml.Node) {
	blockStyle(m)
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = val
			return
		}
	}
	m.Content = append(m.Content, scalarNode(key), val)
}

func blockStyle(n *yaml.Node) {
	if n != nil {
		n.Style &^= yaml.FlowStyle
	}
}

func deleteMappingKey(m *yaml.Node, key string) bool {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content = append(m.Content[:i], m.Content[i+2:]...)
			return true
		}
	}
	return false
}
