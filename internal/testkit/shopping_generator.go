// Package testkit generates deterministic sample datasets for demos and
// tests.
package testkit

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"vizkit/domain/dataset"
)

// Fields of a generated order record
const (
	FieldOrderID   = "order_id"
	FieldOrderedAt = "ordered_at"
	FieldCountry   = "country"
	FieldLongitude = "longitude"
	FieldLatitude  = "latitude"
	FieldChannel   = "channel"
	FieldDevice    = "device"
	FieldItems     = "items_count"
	FieldDiscount  = "discount_pct"
	FieldTotal     = "order_total"
	FieldShipping  = "shipping_days"
	FieldReturned  = "was_returned"
	FieldRisk      = "risk_score"
)

// ShoppingGeneratorConfig configures the shopping data generator
type ShoppingGeneratorConfig struct {
	CustomerCount        int       `json:"customer_count" toml:"customer_count"`
	AvgOrdersPerCustomer float64   `json:"avg_orders_per_customer" toml:"avg_orders_per_customer"`
	ReturnRateBase       float64   `json:"return_rate_base" toml:"return_rate_base"`
	StartDate            time.Time `json:"start_date" toml:"start_date"`
	EndDate              time.Time `json:"end_date" toml:"end_date"`
	Seed                 uint64    `json:"seed" toml:"seed"`
}

// DefaultShoppingConfig returns sensible defaults for shopping data generation
func DefaultShoppingConfig() ShoppingGeneratorConfig {
	return ShoppingGeneratorConfig{
		CustomerCount:        100,
		AvgOrdersPerCustomer: 2.5,
		ReturnRateBase:       0.08,
		StartDate:            time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:              time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC),
		Seed:                 42,
	}
}

// country is a customer location; coordinates are rough centroids
type country struct {
	code     string
	lon, lat float64
}

var countries = []country{
	{"US", -98.6, 39.8},
	{"CA", -106.3, 56.1},
	{"GB", -3.4, 55.4},
	{"DE", 10.5, 51.2},
	{"FR", 2.2, 46.2},
	{"AU", 133.8, -25.3},
	{"JP", 138.3, 36.2},
}

var (
	channels = []string{"organic", "paid_search", "social", "email", "direct"}
	devices  = []string{"mobile", "desktop", "tablet"}
)

// ShoppingDataGenerator generates e-commerce orders. The same config always
// yields the same dataset.
type ShoppingDataGenerator struct {
	config ShoppingGeneratorConfig
	rng    *rand.Rand
}

// NewShoppingDataGenerator creates a new shopping data generator
func NewShoppingDataGenerator(config ShoppingGeneratorConfig) *ShoppingDataGenerator {
	return &ShoppingDataGenerator{
		config: config,
		rng:    rand.New(rand.NewPCG(config.Seed, config.Seed^0x9e3779b97f4a7c15)),
	}
}

// Generate returns one record per order, ordered by customer
func (g *ShoppingDataGenerator) Generate() dataset.Dataset {
	ds := dataset.Dataset{}
	for i := 0; i < g.config.CustomerCount; i++ {
		ds = append(ds, g.customerOrders(i+1)...)
	}
	return ds
}

// customerOrders generates the orders of one customer. Orders are spaced
// out over the configured window; every customer orders at least once when
// the average allows it.
func (g *ShoppingDataGenerator) customerOrders(customer int) dataset.Dataset {
	home := countries[g.rng.IntN(len(countries))]
	device := pick(g.rng, devices)
	// paid traffic converts with discounts and returns more often
	channel := pick(g.rng, channels)

	orderCount := int(math.Round(g.config.AvgOrdersPerCustomer + g.rng.NormFloat64()*0.5))
	if orderCount <= 0 && g.config.AvgOrdersPerCustomer > 0 {
		orderCount = 1
	}
	orderCount = min(orderCount, 10)

	var out dataset.Dataset
	current := g.randomTimeInRange(g.config.StartDate, g.config.EndDate.AddDate(0, 0, -30))
	for i := 0; i < orderCount; i++ {
		if i > 0 {
			current = current.AddDate(0, 0, 7+g.rng.IntN(31))
		}
		if current.After(g.config.EndDate) {
			break
		}
		out = append(out, g.order(customer, i+1, current, home, channel, device))
	}
	return out
}

func (g *ShoppingDataGenerator) order(customer, n int, at time.Time, home country, channel, device string) *dataset.Record {
	items := 1 + g.rng.IntN(5)
	discount := 0.0
	switch {
	case channel != "organic" && g.rng.Float64() < 0.7:
		discount = float64(5 + g.rng.IntN(26))
	case channel == "organic" && g.rng.Float64() < 0.1:
		discount = float64(5 + g.rng.IntN(11))
	}
	total := 0.0
	for j := 0; j < items; j++ {
		total += 10 + g.rng.ExpFloat64()*35
	}
	total = math.Round(total*(1-discount/100)*100) / 100

	shipping := 3 + g.rng.IntN(5)
	returnRate := g.config.ReturnRateBase + discount/400
	if shipping > 5 {
		returnRate += 0.05
	}

	rec := dataset.NewRecord(
		FieldOrderID, fmt.Sprintf("order_%04d_%02d", customer, n),
		FieldOrderedAt, at,
		FieldCountry, home.code,
		FieldLongitude, jitter(g.rng, home.lon, 2),
		FieldLatitude, jitter(g.rng, home.lat, 2),
		FieldChannel, channel,
		FieldDevice, device,
		FieldItems, items,
		FieldDiscount, discount,
		FieldTotal, total,
		FieldShipping, shipping,
		FieldReturned, g.rng.Float64() < returnRate,
	)
	// risk is missing for one order in five
	if g.rng.Float64() < 0.8 {
		rec.Set(FieldRisk, math.Round(g.rng.Float64()*50)/100)
	}
	return rec
}

func (g *ShoppingDataGenerator) randomTimeInRange(start, end time.Time) time.Time {
	if !end.After(start) {
		return start
	}
	return start.Add(time.Duration(g.rng.Int64N(int64(end.Sub(start)))))
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.IntN(len(options))]
}

func jitter(rng *rand.Rand, v, spread float64) float64 {
	return math.Round((v+(rng.Float64()*2-1)*spread)*100) / 100
}
