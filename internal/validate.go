package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dlclark/regexp2"
	"gopkg.in/yaml.v3"
)

const SectionErrorCategories = "error_categories"

// Report collects the diagnostics of validating one file.
type Report struct {
	Path     string
	Errors   []error
	Warnings []string
}

func (r *Report) Valid() bool {
	return len(r.Errors) == 0
}

// Err joins all errors, or returns nil for a valid report.
func (r *Report) Err() error {
	return errors.Join(r.Errors...)
}

func (r *Report) fail(err error) *Report {
	r.Errors = append(r.Errors, err)
	return r
}

func (r *Report) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

type Validator struct {
	logger Logger
}

func NewValidator(logger Logger) *Validator {
	if logger == nil {
		logger = NopLogger()
	}
	return &Validator{logger: logger}
}

// ValidateStore checks a store file without modifying it and logs every
// diagnostic it finds.
func (v *Validator) ValidateStore(path string) *Report {
	r := &Report{Path: path}
	if doc := readDocument(r); doc != nil {
		validateStoreDocument(r, doc)
	}
	v.log(r, "Valid YAML structure")
	return r
}

// SkipMissing reports a file that does not exist as a warning instead of an
// error.
func (v *Validator) SkipMissing(path string) *Report {
	r := &Report{Path: path}
	r.warn("file not found, skipped")
	v.logger.Warn(r.Warnings[0], "file", path)
	return r
}

// ValidateErrorCategories checks that every category maps to compilable
// regular expressions.
func (v *Validator) ValidateErrorCategories(path string) *Report {
	r := &Report{Path: path}
	if doc := readDocument(r); doc != nil {
		validateErrorCategoriesDocument(r, doc)
	}
	v.log(r, "Valid error categories structure")
	return r
}

func (v *Validator) log(r *Report, okMsg string) {
	for _, w := range r.Warnings {
		v.logger.Warn(w, "file", r.Path)
	}
	for _, err := range r.Errors {
		v.logger.Error(err.Error(), "file", r.Path)
	}
	if r.Valid() {
		v.logger.Info(okMsg, "file", r.Path)
	}
}

func readDocument(r *Report) *yaml.Node {
	data, err := os.ReadFile(r.Path)
	if errors.Is(err, fs.ErrNotExist) {
		r.fail(&IOError{Op: "open", Path: r.Path, Err: err})
		return nil
	}
	if err != nil {
		r.fail(&IOError{Op: "read", Path: r.Path, Err: err})
		return nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		r.fail(&ParseError{Path: r.Path, Err: err})
		return nil
	}
	return &doc
}

// ValidateStoreDocument validates an already decoded document.
func ValidateStoreDocument(path string, doc *yaml.Node) *Report {
	r := &Report{Path: path}
	validateStoreDocument(r, doc)
	return r
}

func validateStoreDocument(r *Report, doc *yaml.Node) {
	root := documentRoot(doc)
	if root == nil || root.Kind != yaml.MappingNode {
		r.fail(&StructureError{Path: r.Path, Msg: "root not a mapping"})
		return
	}

	lessons := mappingValue(root, SectionLessons)
	if lessons == nil {
		r.fail(&StructureError{Path: r.Path, Msg: "missing", Field: SectionLessons})
		return
	}
	if mappingValue(root, SectionMetadata) == nil {
		r.warn("missing %s section", SectionMetadata)
	}
	if lessons.Kind != yaml.MappingNode {
		r.fail(&StructureError{Path: r.Path, Msg: "not a mapping", Field: SectionLessons})
		return
	}

	for i := 0; i+1 < len(lessons.Content); i += 2 {
		category := lessons.Content[i].Value
		if resolve(lessons.Content[i+1]).Kind != yaml.MappingNode {
			r.fail(&StructureError{Path: r.Path, Category: category, Msg: "should contain a mapping"})
		}
	}
	if !r.Valid() {
		return
	}

	for i := 0; i+1 < len(lessons.Content); i += 2 {
		category := lessons.Content[i].Value
		problems := resolve(lessons.Content[i+1])
		for j := 0; j+1 < len(problems.Content); j += 2 {
			validateProblem(r, category, problems.Content[j].Value, resolve(problems.Content[j+1]))
		}
	}
}

func validateProblem(r *Report, category, problem string, details *yaml.Node) {
	if details.Kind != yaml.MappingNode {
		r.fail(&StructureError{Path: r.Path, Category: category, Problem: problem, Msg: "details not a mapping"})
		return
	}

	for _, field := range RequiredFields {
		if mappingValue(details, field) == nil {
			r.fail(&StructureError{Path: r.Path, Category: category, Problem: problem, Msg: "missing field", Field: field})
		}
	}

	created := mappingValue(details, FieldCreatedDate)
	if created == nil {
		return
	}
	if created.Kind != yaml.ScalarNode {
		r.fail(&StructureError{Path: r.Path, Category: category, Problem: problem, Msg: "invalid date format"})
		return
	}
	if _, err := ParseTimestamp(created.Value); err != nil {
		r.fail(&StructureError{Path: r.Path, Category: category, Problem: problem, Msg: "invalid date format"})
	}
}

// ValidateErrorCategoriesDocument validates an already decoded document.
func ValidateErrorCategoriesDocument(path string, doc *yaml.Node) *Report {
	r := &Report{Path: path}
	validateErrorCategoriesDocument(r, doc)
	return r
}

func validateErrorCategoriesDocument(r *Report, doc *yaml.Node) {
	root := documentRoot(doc)
	if root == nil || root.Kind != yaml.MappingNode {
		r.fail(&StructureError{Path: r.Path, Msg: "root not a mapping"})
		return
	}

	categories := mappingValue(root, SectionErrorCategories)
	if categories == nil {
		r.fail(&StructureError{Path: r.Path, Msg: "missing", Field: SectionErrorCategories})
		return
	}
	if categories.Kind != yaml.MappingNode {
		r.fail(&StructureError{Path: r.Path, Msg: "not a mapping", Field: SectionErrorCategories})
		return
	}

	for i := 0; i+1 < len(categories.Content); i += 2 {
		category := categories.Content[i].Value
		patterns, ok := patternList(categories.Content[i+1])
		if !ok {
			r.fail(&StructureError{Path: r.Path, Category: category, Msg: "pattern must be a string or a list of strings"})
			return
		}
		for _, pattern := range patterns {
			if _, err := CompilePattern(pattern); err != nil {
				r.fail(&PatternError{Path: r.Path, Category: category, Pattern: pattern, Err: err})
				return
			}
		}
	}
}

// CompilePattern compiles an error-category pattern. Patterns use the
// Perl-style dialect, lookarounds and backreferences included.
func CompilePattern(pattern string) (*regexp2.Regexp, error) {
	return regexp2.Compile(pattern, regexp2.None)
}

func patternList(n *yaml.Node) ([]string, bool) {
	n = resolve(n)
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil, false
		}
		return []string{n.Value}, true
	case yaml.SequenceNode:
		patterns := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			item = resolve(item)
			if item.Kind != yaml.ScalarNode {
				return nil, false
			}
			patterns = append(patterns, item.Value)
		}
		return patterns, true
	default:
		return nil, false
	}
}

func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc == nil {
		return nil
	}
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return nil
		}
		return resolve(doc.Content[0])
	}
	return resolve(doc)
}
