package dataset

import (
	"fmt"

	"vizkit/domain/dataset"
	"vizkit/internal/errors"
)

// Condition decides whether a record's field value passes a filter
type Condition interface {
	Match(v any, present bool) bool
}

// Conditions maps a field name to the condition its value must meet;
// all conditions must hold
type Conditions map[string]Condition

type equals struct{ want any }

func (c equals) Match(v any, present bool) bool {
	return present && dataset.Equal(v, c.want)
}

func (c equals) String() string { return fmt.Sprintf("== %v", c.want) }

type oneOf struct{ set []any }

func (c oneOf) Match(v any, present bool) bool {
	if !present {
		return false
	}
	for _, want := range c.set {
		if dataset.Equal(v, want) {
			return true
		}
	}
	return false
}

func (c oneOf) String() string { return fmt.Sprintf("in %v", c.set) }

// valueRange is inclusive; a nil bound is open
type valueRange struct {
	min, max any
}

func (c valueRange) Match(v any, present bool) bool {
	if !present || v == nil {
		return false
	}
	if c.min != nil && (!dataset.SameKind(v, c.min) || dataset.Compare(v, c.min) < 0) {
		return false
	}
	if c.max != nil && (!dataset.SameKind(v, c.max) || dataset.Compare(v, c.max) > 0) {
		return false
	}
	return true
}

func (c valueRange) String() string { return fmt.Sprintf("in [%v, %v]", c.min, c.max) }

// Eq matches values equal to want
func Eq(want any) Condition { return equals{want: dataset.Normalize(want)} }

// In matches values equal to any of vs
func In(vs ...any) Condition {
	set := make([]any, len(vs))
	for i, v := range vs {
		set[i] = dataset.Normalize(v)
	}
	return oneOf{set: set}
}

// Between matches values within [min, max], both inclusive. Bounds may be
// numbers, strings or times; values of another kind never match.
func Between(min, max any) Condition {
	return valueRange{min: dataset.Normalize(min), max: dataset.Normalize(max)}
}

// AtLeast matches values >= min
func AtLeast(min any) Condition { return valueRange{min: dataset.Normalize(min)} }

// AtMost matches values <= max
func AtMost(max any) Condition { return valueRange{max: dataset.Normalize(max)} }

// ConditionsFromMap builds conditions from loosely typed input such as a
// decoded JSON or TOML table: a list means membership, a table with min
// and/or max means an inclusive range, anything else means equality
func ConditionsFromMap(m map[string]any) (Conditions, error) {
	conds := make(Conditions, len(m))
	for field, raw := range m {
		switch v := raw.(type) {
		case []any:
			conds[field] = In(v...)
		case []string:
			vs := make([]any, len(v))
			for i, s := range v {
				vs[i] = s
			}
			conds[field] = In(vs...)
		case map[string]any:
			lo, hasMin := v["min"]
			hi, hasMax := v["max"]
			if !hasMin && !hasMax {
				return nil, errors.InvalidInputf("condition on %q: range needs min or max", field)
			}
			conds[field] = valueRange{min: dataset.Normalize(lo), max: dataset.Normalize(hi)}
		default:
			conds[field] = Eq(v)
		}
	}
	return conds, nil
}

// Filter keeps the records meeting every condition. Nil entries never pass.
func (p *Processor) Filter(ds dataset.Dataset, conds Conditions) (dataset.Dataset, error) {
	if ds == nil {
		return nil, errors.NotADataset("filter")
	}

	out := make(dataset.Dataset, 0, len(ds))
	for _, rec := range ds {
		if rec == nil {
			continue
		}
		if matchAll(rec, conds) {
			out = append(out, rec.Clone())
		}
	}
	p.logger.Debug("[DatasetProcessor] filter kept %d of %d records", len(out), len(ds))
	return out, nil
}

func matchAll(rec *dataset.Record, conds Conditions) bool {
	for field, cond := range conds {
		if cond == nil {
			continue
		}
		v, present := rec.Get(field)
		if !cond.Match(v, present) {
			return false
		}
	}
	return true
}
