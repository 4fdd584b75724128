package dataset

import (
	"math"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"vizkit/domain/dataset"
	"vizkit/internal/errors"
)

// AggregateFunc names an aggregation applied to each group
type AggregateFunc string

const (
	AggSum    AggregateFunc = "sum"
	AggAvg    AggregateFunc = "avg"
	AggMean   AggregateFunc = "mean"
	AggCount  AggregateFunc = "count"
	AggMin    AggregateFunc = "min"
	AggMax    AggregateFunc = "max"
	AggMedian AggregateFunc = "median"
)

// CountField is the field holding the number of records in a group
const CountField = "count"

// ParseAggregate maps a name onto an aggregation; unknown names are sum
func ParseAggregate(name string) AggregateFunc {
	switch fn := AggregateFunc(strings.ToLower(strings.TrimSpace(name))); fn {
	case AggSum, AggAvg, AggMean, AggCount, AggMin, AggMax, AggMedian:
		return fn
	default:
		return AggSum
	}
}

// ============================================================================
// GROUPING
// ============================================================================

type group struct {
	key     any
	records []*dataset.Record
}

// nanKey stands in for NaN, which never equals itself as a map key
type nanKey struct{}

type instantKey struct{ nanos int64 }

func groupKey(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) {
			return nanKey{}
		}
	case time.Time:
		return instantKey{x.UnixNano()}
	}
	return v
}

func partition(ds dataset.Dataset, field string) []*group {
	index := make(map[any]*group)
	var order []*group
	for _, rec := range ds {
		v := rec.Value(field)
		k := groupKey(v)
		g, ok := index[k]
		if !ok {
			g = &group{key: v}
			index[k] = g
			order = append(order, g)
		}
		g.records = append(g.records, rec)
	}
	return order
}

// GroupBy partitions records by exact equality of groupField and produces one
// row per group: {groupField: key, aggregateField: value, count: n}. Records
// without groupField, and nil entries, form the nil group. Unknown function
// names aggregate by sum. Row order is discovery order.
func (p *Processor) GroupBy(ds dataset.Dataset, groupField, aggregateField string, fn string) (dataset.Dataset, error) {
	if ds == nil {
		return nil, errors.NotADataset("groupBy")
	}

	agg := ParseAggregate(fn)
	groups := partition(ds, groupField)

	out := make(dataset.Dataset, 0, len(groups))
	for _, g := range groups {
		values := make([]float64, 0, len(g.records))
		for _, rec := range g.records {
			if v, ok := rec.Number(aggregateField); ok {
				values = append(values, v)
			}
		}
		row := dataset.NewRecord(groupField, g.key)
		row.Set(aggregateField, aggregate(agg, values, len(g.records)))
		row.Set(CountField, len(g.records))
		out = append(out, row)
	}

	p.logger.Debug("[DatasetProcessor] groupBy %s: %d groups (%s of %s)", groupField, len(out), agg, aggregateField)
	p.publish(EventGrouped, out.Clone())
	return out, nil
}

// aggregate reduces the numeric values of one group. Groups without numbers
// aggregate to 0 except count, which counts records.
func aggregate(fn AggregateFunc, values []float64, records int) float64 {
	if fn == AggCount {
		return float64(records)
	}
	if len(values) == 0 {
		return 0
	}

	var (
		v   float64
		err error
	)
	switch fn {
	case AggAvg, AggMean:
		v, err = stats.Mean(values)
	case AggMin:
		v, err = stats.Min(values)
	case AggMax:
		v, err = stats.Max(values)
	case AggMedian:
		v, err = stats.Median(values)
	default:
		v, err = stats.Sum(values)
	}
	if err != nil {
		return 0
	}
	return v
}
