package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
)

// Document is a candidate as decoded from YAML or JSON, before validation.
// Type is accepted as an alias for Domain.
type Document struct {
	ID          string         `json:"id" yaml:"id"`
	Description string         `json:"description" yaml:"description"`
	Equation    string         `json:"equation" yaml:"equation"`
	Parameters  map[string]any `json:"parameters" yaml:"parameters"`
	Domain      string         `json:"domain,omitempty" yaml:"domain,omitempty"`
	Type        string         `json:"type,omitempty" yaml:"type,omitempty"`
	Constraint  string         `json:"constraint,omitempty" yaml:"constraint,omitempty"`
}

// AttributeConstraint holds a document's free-text constraint.
const AttributeConstraint = "constraint"

// Ingest converts a document into a validated candidate. Numeric parameter
// values become Parameters; other scalar values become Attributes so that
// checks skip them. A placeholder such as "{emissivity}" is fatal.
func Ingest(doc Document) (domain.Candidate, error) {
	if doc.Parameters == nil {
		return domain.Candidate{}, validationError(domain.ErrInvalidCandidate,
			"candidate %q has no parameters field", doc.ID)
	}

	c := domain.Candidate{
		ID:          strings.TrimSpace(doc.ID),
		Description: doc.Description,
		Equation:    doc.Equation,
		Parameters:  make(map[string]float64, len(doc.Parameters)),
		Domain:      domain.NormalizeDomain(firstNonEmpty(doc.Domain, doc.Type)),
	}
	if doc.Constraint != "" {
		setAttribute(&c, AttributeConstraint, doc.Constraint)
	}

	for name, raw := range doc.Parameters {
		if v, ok := numeric(raw); ok {
			c.Parameters[name] = v
			continue
		}
		s := fmt.Sprint(raw)
		if strings.Contains(s, "{") {
			return domain.Candidate{}, validationError(domain.ErrUnresolvedPlaceholder,
				"candidate %q parameter %q is %q", c.ID, name, s)
		}
		setAttribute(&c, name, s)
	}

	if err := c.Validate(); err != nil {
		return domain.Candidate{}, validationError(err, "candidate %q rejected", c.ID)
	}
	return c, nil
}

// IngestAll ingests every document and checks the batch for duplicate IDs.
// All problems are reported together.
func IngestAll(docs []Document) ([]domain.Candidate, error) {
	out := make([]domain.Candidate, 0, len(docs))
	var errs []error
	for i, doc := range docs {
		c, err := Ingest(doc)
		if err != nil {
			errs = append(errs, fmt.Errorf("document %d: %w", i, err))
			continue
		}
		out = append(out, c)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := domain.ValidateBatch(out); err != nil {
		return nil, validationError(err, "candidate batch rejected")
	}
	return out, nil
}

// candidateFile is the top-level shape of a candidate file that wraps its
// list in a "candidates" key.
type candidateFile struct {
	Candidates []Document `yaml:"candidates"`
}

// Decode reads candidate documents from YAML or JSON. The input may be a
// bare list of documents or a mapping with a "candidates" list.
func Decode(r io.Reader) ([]Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read candidates: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, validationError(err, "malformed candidate document")
	}
	if len(root.Content) == 0 {
		return nil, validationError(domain.ErrInvalidCandidate, "candidate document is empty")
	}

	var docs []Document
	switch root.Content[0].Kind {
	case yaml.SequenceNode:
		err = root.Content[0].Decode(&docs)
	case yaml.MappingNode:
		var f candidateFile
		err = root.Content[0].Decode(&f)
		docs = f.Candidates
	default:
		err = errors.New("expected a list of candidates or a mapping with a candidates key")
	}
	if err != nil {
		return nil, validationError(err, "malformed candidate document")
	}
	return docs, nil
}

// LoadFile decodes and ingests a candidate file.
func LoadFile(path string) ([]domain.Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open candidates: %w", err)
	}
	defer f.Close()

	docs, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return IngestAll(docs)
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func setAttribute(c *domain.Candidate, key, value string) {
	if c.Attributes == nil {
		c.Attributes = make(map[string]string)
	}
	c.Attributes[key] = value
}
