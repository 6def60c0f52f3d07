package validate

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"unicode/utf8"

	"github.com/hugr-lab/filtertree/fields"
	"github.com/hugr-lab/filtertree/tree"
)

var (
	// ErrValidatorNotFound is returned for an unregistered validator id.
	ErrValidatorNotFound = errors.New("validator not found")
	// ErrDuplicateValidator is returned when an id is registered twice.
	ErrDuplicateValidator = errors.New("duplicate validator")
)

// Severity ranks a violation.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// Violation is one problem a validator found in a tree.
type Violation struct {
	// Type is the id of the validator that reported the violation.
	Type      string         `json:"type"`
	Severity  Severity       `json:"severity"`
	Message   string         `json:"message"`
	NodeID    string         `json:"nodeId,omitempty"`
	ExtraData map[string]any `json:"extraData,omitempty"`
}

// Validator inspects a whole tree. Implementations must be safe for
// concurrent use.
type Validator interface {
	ID() string
	Validate(root *tree.Group) []Violation
}

// Registry holds validators by id.
type Registry struct {
	mu         sync.RWMutex
	validators map[string]Validator
}

// NewRegistry creates a registry holding vs.
func NewRegistry(vs ...Validator) (*Registry, error) {
	r := &Registry{validators: make(map[string]Validator, len(vs))}
	for _, v := range vs {
		if err := r.Register(v); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultRegistry returns a registry with the built-in validators: "fields"
// checking leaves against lookup, and "wildcard".
func DefaultRegistry(lookup fields.Lookup) *Registry {
	return &Registry{validators: map[string]Validator{
		FieldsValidatorID:   &FieldsValidator{Lookup: lookup},
		WildcardValidatorID: WildcardValidator{},
	}}
}

// Register adds v. Ids must be unique.
func (r *Registry) Register(v Validator) error {
	if v == nil || v.ID() == "" {
		return errors.New("validator must have an id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.validators[v.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateValidator, v.ID())
	}
	r.validators[v.ID()] = v
	return nil
}

// Get returns the validator registered as id.
func (r *Registry) Get(id string) (Validator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.validators[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrValidatorNotFound, id)
	}
	return v, nil
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.validators))
	for id := range r.validators {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Validate runs the validator registered as id against root. Violations
// are stamped with the id as their Type.
func (r *Registry) Validate(id string, root *tree.Group) ([]Violation, error) {
	v, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	violations := v.Validate(root)
	for i := range violations {
		violations[i].Type = id
	}
	return violations, nil
}

// ValidateAll runs every registered validator in id order.
func (r *Registry) ValidateAll(root *tree.Group) []Violation {
	var out []Violation
	for _, id := range r.IDs() {
		vs, err := r.Validate(id, root)
		if err != nil {
			continue
		}
		out = append(out, vs...)
	}
	return out
}

const (
	FieldsValidatorID   = "fields"
	WildcardValidatorID = "wildcard"
)

// FieldsValidator reports an error for every leaf that fails Leaf.
type FieldsValidator struct {
	Lookup fields.Lookup
}

func (v *FieldsValidator) ID() string { return FieldsValidatorID }

func (v *FieldsValidator) Validate(root *tree.Group) []Violation {
	var out []Violation
	for _, l := range tree.Leaves(root) {
		err := Leaf(l, v.Lookup)
		var le *InvalidLeafValueError
		if !errors.As(err, &le) {
			continue
		}
		extra := map[string]any{"field": le.Field, "operator": string(le.Operator)}
		if le.Index >= 0 {
			extra["index"] = le.Index
		}
		out = append(out, Violation{
			Type:      FieldsValidatorID,
			Severity:  SeverityError,
			Message:   le.Reason,
			NodeID:    le.LeafID,
			ExtraData: extra,
		})
	}
	return out
}

// WildcardValidator warns about like patterns that start with a wildcard,
// which cannot use an index.
type WildcardValidator struct{}

func (WildcardValidator) ID() string { return WildcardValidatorID }

func (WildcardValidator) Validate(root *tree.Group) []Violation {
	var out []Violation
	for _, l := range tree.Leaves(root) {
		if l.Operator() != tree.Like || l.NumValues() != 1 {
			continue
		}
		pattern, ok := l.Value(0).AsString()
		if !ok || pattern == "" {
			continue
		}
		if first, _ := utf8.DecodeRuneInString(pattern); first != tree.WildcardAny && first != tree.WildcardSingle {
			continue
		}
		out = append(out, Violation{
			Type:      WildcardValidatorID,
			Severity:  SeverityWarning,
			Message:   fmt.Sprintf("pattern %q on %s starts with a wildcard", pattern, l.Field()),
			NodeID:    l.ID(),
			ExtraData: map[string]any{"field": l.Field(), "pattern": pattern},
		})
	}
	return out
}
