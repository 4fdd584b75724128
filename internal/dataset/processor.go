// Package dataset provides the multi-stage dataset transformation pipeline:
// cleaning, outlier flagging, normalization, grouping, filtering, sorting and
// per-field statistics.
//
// Every stage returns a new Dataset; the caller's records are deep-copied at
// entry and never modified. Derived fields are added next to the originals
// under a suffix (_isOutlier, _normalized, _movingAverage) and never replace
// them.
package dataset

import (
	"math"
	"sort"
	"strings"

	"vizkit/adapters/datareadiness/coercer"
	"vizkit/domain/dataset"
	domainStats "vizkit/domain/stats"
	"vizkit/internal"
	"vizkit/internal/analysis"
	"vizkit/internal/errors"
)

// Derived field suffixes
const (
	OutlierSuffix       = "_isOutlier"
	NormalizedSuffix    = "_normalized"
	MovingAverageSuffix = "_movingAverage"
)

// Events emitted on the publisher
const (
	EventProcessed = "data:processed"
	EventGrouped   = "data:grouped"
)

// Publisher receives notifications about processed data; the event bus
// satisfies it
type Publisher interface {
	Emit(event string, payload any)
}

// ProcessedEvent is the payload of EventProcessed
type ProcessedEvent struct {
	Records int
	Fields  []string
	Steps   []string
}

// Processor handles dataset transformation
type Processor struct {
	coercer   *coercer.TypeCoercer
	policy    analysis.OutlierPolicy
	bins      int
	publisher Publisher
	logger    *internal.Logger
}

// Option configures a Processor
type Option func(*Processor)

// WithOutlierPolicy sets the policy used when a call does not name one
func WithOutlierPolicy(policy analysis.OutlierPolicy) Option {
	return func(p *Processor) { p.policy = policy }
}

// WithBins sets the default histogram bin count
func WithBins(bins int) Option {
	return func(p *Processor) {
		if bins > 0 {
			p.bins = bins
		}
	}
}

// WithPublisher sends processing notifications to pub
func WithPublisher(pub Publisher) Option {
	return func(p *Processor) { p.publisher = pub }
}

// WithLogger overrides the default logger
func WithLogger(logger *internal.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProcessor creates a new dataset processor
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		coercer: coercer.NewTypeCoercer(coercer.DefaultCoercionConfig()),
		policy:  analysis.DefaultOutlierPolicy(),
		bins:    analysis.DefaultBins,
		logger:  internal.DefaultLogger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Policy returns the default outlier policy
func (p *Processor) Policy() analysis.OutlierPolicy {
	return p.policy
}

// IsDerived reports whether field was produced by a processing stage
func IsDerived(field string) bool {
	return strings.HasSuffix(field, OutlierSuffix) ||
		strings.HasSuffix(field, NormalizedSuffix) ||
		strings.HasSuffix(field, MovingAverageSuffix)
}

// ============================================================================
// CLEANING
// ============================================================================

// Clean drops nil entries and converts strings that fully parse as finite
// numbers into float64. Other values pass through unchanged.
func (p *Processor) Clean(ds dataset.Dataset) (dataset.Dataset, error) {
	if ds == nil {
		return nil, errors.NotADataset("clean")
	}

	out := make(dataset.Dataset, 0, len(ds))
	converted := 0
	for _, r := range ds {
		if r == nil {
			continue
		}
		rec := r.Clone()
		for _, f := range rec.Fields() {
			if s, ok := rec.Value(f).(string); ok {
				if v, ok := p.coercer.CoerceNumeric(s).(float64); ok {
					rec.Set(f, v)
					converted++
				}
			}
		}
		out = append(out, rec)
	}

	p.logger.Debug("[DatasetProcessor] clean: %d -> %d records, %d values converted", len(ds), len(out), converted)
	return out, nil
}

// ============================================================================
// OUTLIERS
// ============================================================================

// HandleOutliers flags outliers with method and threshold; a zero threshold
// uses the method default
func (p *Processor) HandleOutliers(ds dataset.Dataset, method domainStats.OutlierMethod, threshold float64) (dataset.Dataset, error) {
	policy := p.policy
	policy.Method = method
	return p.HandleOutliersWith(ds, policy.WithThreshold(threshold))
}

// HandleOutliersWith adds a <field>_isOutlier flag to every record for every
// field that is numeric in at least one record. Records whose value is
// missing or non-numeric are flagged false.
func (p *Processor) HandleOutliersWith(ds dataset.Dataset, policy analysis.OutlierPolicy) (dataset.Dataset, error) {
	if ds == nil {
		return nil, errors.NotADataset("handleOutliers")
	}
	policy, err := policy.Validate()
	if err != nil {
		return nil, err
	}

	out := ds.Clone()
	for _, field := range out.NumericFields() {
		if IsDerived(field) {
			continue
		}
		idx, bounds, err := analysis.DetectOutliersWith(out.Column(field), policy)
		if err != nil {
			return nil, err
		}
		flagged := make(map[int]bool, len(idx))
		for _, i := range idx {
			flagged[i] = true
		}
		for i, rec := range out {
			if rec != nil {
				rec.Set(field+OutlierSuffix, flagged[i])
			}
		}
		p.logger.Debug("[DatasetProcessor] %s: %d outliers outside [%g, %g] (%s)",
			field, len(idx), bounds.Lower, bounds.Upper, policy.Method)
	}
	return out, nil
}

// ============================================================================
// NORMALIZATION
// ============================================================================

// Normalize adds <field>_normalized in [0, 1] using the field's min and max.
// Fields with zero range and derived fields are left alone.
func (p *Processor) Normalize(ds dataset.Dataset) (dataset.Dataset, error) {
	if ds == nil {
		return nil, errors.NotADataset("normalize")
	}

	out := ds.Clone()
	for _, field := range out.NumericFields() {
		if IsDerived(field) {
			continue
		}
		values := out.Numbers(field)
		lo, hi := values[0], values[0]
		for _, v := range values {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
		span := hi - lo
		if span == 0 {
			p.logger.Debug("[DatasetProcessor] %s has zero range, not normalized", field)
			continue
		}
		for _, rec := range out {
			if v, ok := rec.Number(field); ok {
				rec.Set(field+NormalizedSuffix, (v-lo)/span)
			}
		}
	}
	return out, nil
}

// ============================================================================
// ORDERING
// ============================================================================

// Sort orders records by field with a stable sort. Numbers sort before
// strings, then booleans, times and finally missing values. Descending order
// reverses the comparison but keeps equal records in input order.
func (p *Processor) Sort(ds dataset.Dataset, field string, ascending bool) (dataset.Dataset, error) {
	if ds == nil {
		return nil, errors.NotADataset("sort")
	}

	out := ds.Clone()
	sort.SliceStable(out, func(i, j int) bool {
		c := dataset.Compare(out[i].Value(field), out[j].Value(field))
		if ascending {
			return c < 0
		}
		return c > 0
	})
	return out, nil
}

// ============================================================================
// STATISTICS
// ============================================================================

// CalculateStatistics summarizes the named fields, or every field holding at
// least one number when none are named
func (p *Processor) CalculateStatistics(ds dataset.Dataset, fields ...string) (map[string]domainStats.Summary, error) {
	if ds == nil {
		return nil, errors.NotADataset("calculateStatistics")
	}
	if len(fields) == 0 {
		fields = ds.NumericFields()
	}

	result := make(map[string]domainStats.Summary, len(fields))
	for _, f := range fields {
		result[f] = analysis.Summarize(ds.Numbers(f))
	}
	return result, nil
}

// FrequencyDistribution bins a numeric field or counts a categorical one. A
// field is numeric when every present value is a number. bins <= 0 uses the
// processor default.
func (p *Processor) FrequencyDistribution(ds dataset.Dataset, field string, bins int) (domainStats.Distribution, error) {
	if ds == nil {
		return domainStats.Distribution{}, errors.NotADataset("frequencyDistribution")
	}
	if bins <= 0 {
		bins = p.bins
	}

	values := ds.Values(field)
	numeric, seen := true, false
	for _, v := range values {
		if v == nil {
			continue
		}
		seen = true
		if !dataset.IsNumber(v) {
			numeric = false
			break
		}
	}
	return analysis.FrequencyDistribution(values, numeric && seen, bins), nil
}

// MovingAverage adds <field>_movingAverage, the trailing mean over window
// positions. Positions whose window holds no number get nil.
func (p *Processor) MovingAverage(ds dataset.Dataset, field string, window int) (dataset.Dataset, error) {
	if ds == nil {
		return nil, errors.NotADataset("movingAverage")
	}
	averages, err := analysis.MovingAverage(ds.Column(field), window)
	if err != nil {
		return nil, err
	}

	out := ds.Clone()
	for i, rec := range out {
		if rec == nil {
			continue
		}
		if math.IsNaN(averages[i]) {
			rec.Set(field+MovingAverageSuffix, nil)
			continue
		}
		rec.Set(field+MovingAverageSuffix, averages[i])
	}
	return out, nil
}

// ============================================================================
// PIPELINE
// ============================================================================

// ProcessOptions toggles the stages of Process
type ProcessOptions struct {
	Clean          bool
	HandleOutliers bool
	Normalize      bool
	// Outliers overrides the processor policy when set
	Outliers *analysis.OutlierPolicy
}

// DefaultProcessOptions enables every stage
func DefaultProcessOptions() ProcessOptions {
	return ProcessOptions{Clean: true, HandleOutliers: true, Normalize: true}
}

// Process runs clean, outlier flagging and normalization in that order. Flags
// are metadata, so normalization still sees the raw values.
func (p *Processor) Process(ds dataset.Dataset, opts ProcessOptions) (dataset.Dataset, error) {
	if ds == nil {
		return nil, errors.NotADataset("process")
	}

	var steps []string
	out := ds.Clone()
	var err error

	if opts.Clean {
		if out, err = p.Clean(out); err != nil {
			return nil, err
		}
		steps = append(steps, "clean")
	}
	if opts.HandleOutliers {
		policy := p.policy
		if opts.Outliers != nil {
			policy = *opts.Outliers
		}
		if out, err = p.HandleOutliersWith(out, policy); err != nil {
			return nil, errors.Wrap(err, "outlier handling failed")
		}
		steps = append(steps, "outliers")
	}
	if opts.Normalize {
		if out, err = p.Normalize(out); err != nil {
			return nil, err
		}
		steps = append(steps, "normalize")
	}

	p.logger.Info("[DatasetProcessor] processed %d records (%s)", len(out), strings.Join(steps, " -> "))
	p.publish(EventProcessed, ProcessedEvent{Records: len(out), Fields: out.Fields(), Steps: steps})
	return out, nil
}

func (p *Processor) publish(event string, payload any) {
	if p.publisher == nil {
		return
	}
	p.publisher.Emit(event, payload)
}
