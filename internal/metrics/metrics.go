// Package metrics derives the displayed figures from raw product records:
// velocity scores, revenue estimates, the Walmart revenue proxy, the
// private-label flag and revenue-weighted group prices. Every function is
// pure and total over its defined domain; fields that cannot be computed
// stay absent instead of defaulting to zero.
package metrics

import (
	"math"
	"strings"

	"soda-dashboard/internal/models"
)

// velocityCoeff calibrates the logarithmic BSR curve so that
// rank 1 -> 100, rank 10 -> ~75, rank 100 -> ~50.
const velocityCoeff = 10.857

// Multipliers adjust estimated revenue for category-specific sell-through.
// Values are configuration, supplied at startup.
type Multipliers struct {
	Traditional float64
	Diet        float64
	Modern      float64
}

func (m Multipliers) For(t models.SodaType) float64 {
	switch t {
	case models.TypeTraditional:
		return m.Traditional
	case models.TypeDiet:
		return m.Diet
	case models.TypeModern:
		return m.Modern
	}
	return 1
}

// Policy carries the configurable knobs of the derivation layer.
type Policy struct {
	Multipliers        Multipliers
	VelocityClampFloor bool
	PrivateLabelTokens []string
}

// VelocityScore maps a best-sellers rank to a 0-100 popularity score with
// diminishing returns for large ranks. Ranks below 1 are invalid input and
// report ok=false; callers must treat that as "no score", never as zero.
// With clampFloor the raw formula is floored at 0 for very large ranks,
// otherwise the negative value is preserved.
func VelocityScore(rank int, clampFloor bool) (float64, bool) {
	if rank < 1 {
		return 0, false
	}
	score := 100 - math.Log(float64(rank))*velocityCoeff
	if clampFloor && score < 0 {
		score = 0
	}
	return score, true
}

// Revenue is a monthly revenue estimate. Known distinguishes a true $0 from
// a row whose units-sold figure is absent: unknown rows contribute 0 to
// sums but are counted separately for coverage reporting.
type Revenue struct {
	Amount float64 `json:"amount"`
	Known  bool    `json:"known"`
}

// EstimateRevenue computes units x price x type multiplier. Rows without an
// observed units-sold figure are not imputed; they come back unknown.
func EstimateRevenue(units *int, price float64, t models.SodaType, m Multipliers) Revenue {
	if units == nil {
		return Revenue{}
	}
	return Revenue{Amount: float64(*units) * price * m.For(t), Known: true}
}

// RevenueProxy is reviews x price: a relative popularity indicator for
// Walmart listings. It is not a revenue estimate and must only be ranked or
// compared against other Walmart rows.
func RevenueProxy(reviews int, price float64) float64 {
	return float64(reviews) * price
}

// IsPrivateLabel reports whether the brand name contains any of the known
// store-brand tokens, case-insensitively. Empty brand fails closed.
func IsPrivateLabel(brand string, tokens []string) bool {
	if brand == "" {
		return false
	}
	lower := strings.ToLower(brand)
	for _, token := range tokens {
		if token != "" && strings.Contains(lower, strings.ToLower(token)) {
			return true
		}
	}
	return false
}

// Coverage tracks how many rows of a group carried a known revenue figure.
type Coverage struct {
	Known int `json:"known"`
	Total int `json:"total"`
}

func (c Coverage) Ratio() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Known) / float64(c.Total)
}

// Enriched is a product record plus its derived fields. Amazon rows carry
// VelocityScore and Revenue; Walmart rows carry RevenueProxy. The two sets
// of metrics never cross platforms.
type Enriched struct {
	models.Product
	VelocityScore  *float64
	Revenue        Revenue
	RevenueProxy   *float64
	IsPrivateLabel bool
}

// Enrich derives the per-row metrics for one product.
func Enrich(p models.Product, policy Policy) Enriched {
	e := Enriched{
		Product:        p,
		IsPrivateLabel: IsPrivateLabel(p.Brand, policy.PrivateLabelTokens),
	}

	switch p.Platform {
	case models.PlatformAmazon:
		if p.Rank != nil {
			if score, ok := VelocityScore(*p.Rank, policy.VelocityClampFloor); ok {
				e.VelocityScore = &score
			}
		}
		e.Revenue = EstimateRevenue(p.UnitsSold, p.Price, p.SodaType, policy.Multipliers)
	case models.PlatformWalmart:
		proxy := RevenueProxy(p.ReviewCount, p.Price)
		e.RevenueProxy = &proxy
	}

	return e
}

// EnrichAll derives metrics for every row. A row that cannot carry one
// metric still carries the others.
func EnrichAll(products []models.Product, policy Policy) []Enriched {
	enriched := make([]Enriched, len(products))
	for i, p := range products {
		enriched[i] = Enrich(p, policy)
	}
	return enriched
}

// SumRevenue totals the known revenue of a group and reports coverage.
// Unknown rows add 0 to the sum but count toward Coverage.Total only.
func SumRevenue(rows []Enriched) (float64, Coverage) {
	var total float64
	cov := Coverage{Total: len(rows)}
	for _, r := range rows {
		if r.Revenue.Known {
			total += r.Revenue.Amount
			cov.Known++
		}
	}
	return total, cov
}

// WeightedPricePerOz is the revenue-weighted average price per ounce of a
// group. Rows missing either price-per-oz or revenue are excluded from both
// numerator and denominator. ok=false when nothing qualifies or the group's
// revenue sums to zero; callers must not render the value in that case.
func WeightedPricePerOz(rows []Enriched) (float64, bool) {
	var num, den float64
	for _, r := range rows {
		if r.PricePerOz == nil || !r.Revenue.Known {
			continue
		}
		num += *r.PricePerOz * r.Revenue.Amount
		den += r.Revenue.Amount
	}
	if den == 0 {
		return 0, false
	}
	return num / den, true
}

// MeanVelocity averages the defined velocity scores of a group. Rows
// without a score are excluded, not treated as zero.
func MeanVelocity(rows []Enriched) (float64, bool) {
	var sum float64
	var n int
	for _, r := range rows {
		if r.VelocityScore != nil {
			sum += *r.VelocityScore
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
