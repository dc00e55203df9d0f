package prefs

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/goliatone/go-prefs/pkg/format"
	"github.com/goliatone/go-prefs/pkg/rules"
)

// RuleValueKey and RuleFieldKey name the variables a field rule sees.
const (
	RuleValueKey = "value"
	RuleFieldKey = "field"
)

type fieldConfig struct {
	equal       any
	clone       any
	evaluator   rules.Evaluator
	rule        string
	validate    *validator.Validate
	validateTag string
}

// FieldOption configures a Field.
type FieldOption func(*fieldConfig)

// WithEqual replaces the comparison used by Changed. The baseline is then kept
// as a value instead of encoded bytes.
func WithEqual[T any](fn func(a, b T) bool) FieldOption {
	return func(cfg *fieldConfig) {
		if fn != nil {
			cfg.equal = fn
		}
	}
}

// WithClone copies values before they are kept as a baseline. Use it together
// with WithEqual for types holding slices, maps or pointers.
func WithClone[T any](fn func(T) T) FieldOption {
	return func(cfg *fieldConfig) {
		if fn != nil {
			cfg.clone = fn
		}
	}
}

// WithRule attaches a boolean expression that stored values must satisfy to
// be applied on load. The expression sees the decoded value as `value` and
// the field name as `field`.
func WithRule(evaluator rules.Evaluator, expr string) FieldOption {
	return func(cfg *fieldConfig) {
		cfg.evaluator = evaluator
		cfg.rule = expr
	}
}

// WithValidation checks decoded values with go-playground/validator before
// they are applied. tag validates scalar values (e.g. "gte=0,lte=1"); an empty
// tag validates a struct value through its `validate` struct tags.
func WithValidation(v *validator.Validate, tag string) FieldOption {
	return func(cfg *fieldConfig) {
		if v == nil {
			v = validator.New(validator.WithRequiredStructEnabled())
		}
		cfg.validate = v
		cfg.validateTag = tag
	}
}

// Field adapts a host-owned *T to the Adapter interface.
type Field[T any] struct {
	name  string
	slot  *T
	codec format.Format

	equal func(a, b T) bool
	clone func(T) T

	baseline      T
	baselineBytes []byte
	hasBaseline   bool

	evaluator rules.Evaluator
	ruleExpr  string
	rule      rules.CompiledRule

	validate    *validator.Validate
	validateTag string

	setupErr error
}

// errNullValue rejects a null fragment for a type that cannot hold one.
var errNullValue = errors.New("null value")

// NewField builds a Field whose Changed compares values with ==. For float
// kinds two NaN values compare equal, so a NaN does not re-mark the field on
// every tick. JSON cannot encode NaN or Inf; such values fail to serialize and
// stay pending until the host replaces them.
func NewField[T comparable](name string, slot *T, opts ...FieldOption) *Field[T] {
	f := newField(name, slot, opts)
	if f.equal == nil {
		if isFloat[T]() {
			f.equal = func(a, b T) bool { return a == b || (a != a && b != b) }
		} else {
			f.equal = func(a, b T) bool { return a == b }
		}
	}
	return f
}

// NewEncodedField builds a Field for any serializable type. Changed compares
// the encoded current value with the encoded baseline unless WithEqual is
// given.
func NewEncodedField[T any](name string, slot *T, opts ...FieldOption) *Field[T] {
	return newField(name, slot, opts)
}

func newField[T any](name string, slot *T, opts []FieldOption) *Field[T] {
	cfg := fieldConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	f := &Field[T]{
		name:        name,
		slot:        slot,
		evaluator:   cfg.evaluator,
		ruleExpr:    cfg.rule,
		validate:    cfg.validate,
		validateTag: cfg.validateTag,
	}
	if slot == nil {
		f.setupErr = fmt.Errorf("%w: %q", ErrNilSlot, name)
	}
	if cfg.equal != nil {
		fn, ok := cfg.equal.(func(a, b T) bool)
		if !ok {
			f.setupErr = fmt.Errorf("prefs: field %q: equal func %T does not match %T", name, cfg.equal, *new(T))
		}
		f.equal = fn
	}
	if cfg.clone != nil {
		fn, ok := cfg.clone.(func(T) T)
		if !ok {
			f.setupErr = fmt.Errorf("prefs: field %q: clone func %T does not match %T", name, cfg.clone, *new(T))
		}
		f.clone = fn
	}
	if cfg.rule != "" && cfg.evaluator == nil {
		f.setupErr = fmt.Errorf("prefs: field %q: rule %q has no evaluator", name, cfg.rule)
	}
	if cfg.validate != nil && cfg.validateTag == "" && !isStruct[T]() {
		f.setupErr = fmt.Errorf("prefs: field %q: validation of %T needs a tag", name, *new(T))
	}
	return f
}

func (f *Field[T]) Name() string {
	return f.name
}

// Value returns the current value of the bound slot.
func (f *Field[T]) Value() T {
	return *f.slot
}

// Bind stores the format, compiles the rule and checks that the current value
// can be encoded.
func (f *Field[T]) Bind(codec format.Format) error {
	if f.setupErr != nil {
		return f.setupErr
	}
	if codec == nil {
		codec = format.JSON{}
	}
	f.codec = codec
	if f.ruleExpr != "" {
		rule, err := f.evaluator.Compile(f.ruleExpr)
		if err != nil {
			return fmt.Errorf("prefs: field %q rule: %w", f.name, err)
		}
		f.rule = rule
	}
	if _, err := f.Extract(); err != nil {
		return fmt.Errorf("prefs: field %q is not serializable as %s: %w", f.name, codec.Name(), err)
	}
	return nil
}

func (f *Field[T]) Extract() (Fragment, error) {
	data, err := f.format().Marshal(*f.slot)
	if err != nil {
		return nil, err
	}
	return Fragment(data), nil
}

// Apply decodes frag and overwrites the slot only when decoding, validation and
// the rule all accept it. A null fragment is rejected unless T is nillable.
// Struct values are decoded over a copy of the current value, so keys missing
// from frag keep their current sub-field values.
func (f *Field[T]) Apply(frag Fragment) error {
	if isNullFragment(frag) && !isNillable[T]() {
		return &DecodeError{Field: f.name, Err: fmt.Errorf("%w for %T", errNullValue, *new(T))}
	}
	var value T
	if isStruct[T]() {
		if err := f.seed(&value); err != nil {
			var zero T
			value = zero
		}
	}
	if err := f.format().Unmarshal(frag, &value); err != nil {
		return &DecodeError{Field: f.name, Err: err}
	}
	if f.validate != nil {
		var err error
		if f.validateTag != "" {
			err = f.validate.Var(value, f.validateTag)
		} else {
			err = f.validate.Struct(value)
		}
		if err != nil {
			return &DecodeError{Field: f.name, Err: fmt.Errorf("%w: %w", ErrRuleRejected, err)}
		}
	}
	if f.rule != nil {
		var generic any
		if err := f.format().Unmarshal(frag, &generic); err != nil {
			return &DecodeError{Field: f.name, Err: err}
		}
		ok, err := rules.Check(f.rule, rules.Context{
			Snapshot: map[string]any{
				RuleValueKey: generic,
				RuleFieldKey: f.name,
			},
		})
		if err != nil {
			return &DecodeError{Field: f.name, Err: err}
		}
		if !ok {
			return &DecodeError{Field: f.name, Err: fmt.Errorf("%w: %s", ErrRuleRejected, f.ruleExpr)}
		}
	}
	*f.slot = value
	return nil
}

// Changed reports whether the slot differs from the baseline. It reports true
// until a baseline has been committed.
func (f *Field[T]) Changed() bool {
	if !f.hasBaseline {
		return true
	}
	if f.equal != nil {
		return !f.equal(*f.slot, f.baseline)
	}
	current, err := f.format().Marshal(*f.slot)
	if err != nil {
		return true
	}
	return !bytes.Equal(current, f.baselineBytes)
}

func (f *Field[T]) CommitBaseline() {
	if f.equal != nil {
		value := *f.slot
		if f.clone != nil {
			value = f.clone(value)
		}
		f.baseline = value
		f.hasBaseline = true
		return
	}
	data, err := f.format().Marshal(*f.slot)
	if err != nil {
		f.baselineBytes = nil
		f.hasBaseline = false
		return
	}
	f.baselineBytes = data
	f.hasBaseline = true
}

// seed deep-copies the current slot into value through the bound format.
func (f *Field[T]) seed(value *T) error {
	current, err := f.format().Marshal(*f.slot)
	if err != nil {
		return err
	}
	return f.format().Unmarshal(current, value)
}

func (f *Field[T]) format() format.Format {
	if f.codec == nil {
		return format.JSON{}
	}
	return f.codec
}

func isStruct[T any]() bool {
	t := reflect.TypeFor[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

func isFloat[T any]() bool {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isNillable[T any]() bool {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return true
	}
	return false
}

func isNullFragment(frag Fragment) bool {
	switch string(bytes.TrimSpace(frag)) {
	case "", "null", "~", "Null", "NULL":
		return true
	}
	return false
}
