package services

import (
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"soda-dashboard/internal/config"
	"soda-dashboard/internal/metrics"
	"soda-dashboard/internal/models"
)

const (
	batchSize    = 1000
	maxWorkers   = 8
	cacheVersion = "v1"
	cacheDir     = ".cache"
)

// Views holds every precomputed dashboard dataset. The catalog is loaded
// once per process and the table never mutates afterwards, so each view is
// computed in a single pass at load time and served as-is.
type Views struct {
	Overview        models.Overview               `json:"overview"`
	BrandRevenue    []models.BrandRevenue         `json:"brand_revenue"`
	ParentShare     []models.ParentShare          `json:"parent_share"`
	TypePerformance []models.TypePerformance      `json:"type_performance"`
	TypeBrandSplits []models.TypeBrandSplit       `json:"type_brand_splits"`
	TopVelocity     []models.VelocityProduct      `json:"top_velocity"`
	WalmartOverview models.WalmartOverview        `json:"walmart_overview"`
	TypeCounts      []models.TypeCount            `json:"type_counts"`
	PackSizes       []models.PackSizeCount        `json:"pack_sizes"`
	TopProxy        []models.ProxyProduct         `json:"top_proxy"`
	PrivateLabel    models.PrivateLabelStats      `json:"private_label"`
	PriceComparison []models.BrandPriceComparison `json:"price_comparison"`
	LastModified    time.Time                     `json:"last_modified"`
	RecordCount     int64                         `json:"record_count"`
	SkippedRows     int64                         `json:"skipped_rows"`
}

type Catalog struct {
	mu               sync.RWMutex
	views            *Views
	enriched         []metrics.Enriched
	policy           metrics.Policy
	path             string
	recordsProcessed atomic.Int64
	skippedRows      atomic.Int64
	logger           *slog.Logger
}

func NewCatalog(cfg config.MetricsConfig) *Catalog {
	return &Catalog{
		views: &Views{},
		policy: metrics.Policy{
			Multipliers: metrics.Multipliers{
				Traditional: cfg.MultiplierTraditional,
				Diet:        cfg.MultiplierDiet,
				Modern:      cfg.MultiplierModern,
			},
			VelocityClampFloor: cfg.VelocityClampFloor,
			PrivateLabelTokens: cfg.PrivateLabelTokens,
		},
		logger: slog.Default(),
	}
}

// SetProducts replaces the table with the given rows and recomputes every
// view. Used by the file loaders and by tests.
func (c *Catalog) SetProducts(products []models.Product) {
	enriched := metrics.EnrichAll(products, c.policy)
	views := c.computeViews(enriched)
	views.SkippedRows = c.skippedRows.Load()

	c.mu.Lock()
	c.enriched = enriched
	c.views = views
	c.mu.Unlock()

	c.recordsProcessed.Store(int64(len(products)))
}

func (c *Catalog) computeViews(rows []metrics.Enriched) *Views {
	var amazon, walmart []metrics.Enriched
	for _, r := range rows {
		switch r.Platform {
		case models.PlatformAmazon:
			amazon = append(amazon, r)
		case models.PlatformWalmart:
			walmart = append(walmart, r)
		}
	}

	views := &Views{
		Overview:        c.computeOverview(rows, amazon, walmart),
		BrandRevenue:    c.computeBrandRevenue(amazon),
		ParentShare:     c.computeParentShare(amazon),
		TypePerformance: c.computeTypePerformance(amazon),
		TypeBrandSplits: c.computeTypeBrandSplits(amazon),
		TopVelocity:     c.computeTopVelocity(amazon),
		WalmartOverview: c.computeWalmartOverview(walmart),
		TypeCounts:      c.computeTypeCounts(walmart),
		PackSizes:       c.computePackSizes(walmart),
		TopProxy:        c.computeTopProxy(walmart),
		PrivateLabel:    c.computePrivateLabel(walmart),
		PriceComparison: c.computePriceComparison(amazon, walmart),
		LastModified:    time.Now(),
		RecordCount:     int64(len(rows)),
	}
	return views
}

func (c *Catalog) computeOverview(all, amazon, walmart []metrics.Enriched) models.Overview {
	revenue, cov := metrics.SumRevenue(amazon)

	modern := 0
	for _, r := range amazon {
		if r.SodaType == models.TypeModern {
			modern++
		}
	}
	modernShare := 0.0
	if len(amazon) > 0 {
		modernShare = float64(modern) / float64(len(amazon))
	}

	return models.Overview{
		TotalProducts:   len(all),
		AmazonProducts:  len(amazon),
		WalmartProducts: len(walmart),
		AmazonRevenue:   revenue,
		RevenueKnown:    cov.Known,
		RevenueCoverage: cov.Ratio(),
		ModernShare:     modernShare,
	}
}

func (c *Catalog) computeBrandRevenue(amazon []metrics.Enriched) []models.BrandRevenue {
	groups := metrics.GroupBy(amazon, func(r metrics.Enriched) string { return r.Brand })

	result := make([]models.BrandRevenue, 0, len(groups))
	for brand, rows := range groups {
		revenue, _ := metrics.SumRevenue(rows)
		result = append(result, models.BrandRevenue{Brand: brand, Revenue: revenue, SKUs: len(rows)})
	}
	sortByRevenueDesc(result, func(b models.BrandRevenue) float64 { return b.Revenue })
	return result
}

func (c *Catalog) computeParentShare(amazon []metrics.Enriched) []models.ParentShare {
	total, _ := metrics.SumRevenue(amazon)
	groups := metrics.GroupBy(amazon, func(r metrics.Enriched) string { return r.ParentBrand })

	result := make([]models.ParentShare, 0, len(groups))
	for parent, rows := range groups {
		revenue, _ := metrics.SumRevenue(rows)
		share := 0.0
		if total > 0 {
			share = revenue / total
		}
		result = append(result, models.ParentShare{Parent: parent, Revenue: revenue, Share: share})
	}
	sortByRevenueDesc(result, func(p models.ParentShare) float64 { return p.Revenue })
	return result
}

func (c *Catalog) computeTypePerformance(amazon []metrics.Enriched) []models.TypePerformance {
	groups := metrics.GroupBy(amazon, func(r metrics.Enriched) models.SodaType { return r.SodaType })

	result := make([]models.TypePerformance, 0, len(groups))
	for _, t := range []models.SodaType{models.TypeModern, models.TypeTraditional, models.TypeDiet} {
		rows, ok := groups[t]
		if !ok {
			continue
		}

		perf := models.TypePerformance{SodaType: t, SKUs: len(rows)}
		perf.Revenue, _ = metrics.SumRevenue(rows)

		// Undefined group metrics stay absent rather than rendering as 0.
		if mean, ok := metrics.MeanVelocity(rows); ok {
			perf.AvgVelocity = &mean
		}
		if weighted, ok := metrics.WeightedPricePerOz(rows); ok {
			perf.WeightedPricePerOz = &weighted
		}

		var packTotal int
		for _, r := range rows {
			packTotal += r.PackSize
		}
		perf.AvgPackSize = float64(packTotal) / float64(len(rows))

		result = append(result, perf)
	}
	return result
}

// Modern is a younger, more fragmented segment; it gets a shorter leader
// list and a correspondingly larger Others bucket.
func typeLeaderCount(t models.SodaType) int {
	if t == models.TypeModern {
		return 4
	}
	return 5
}

func (c *Catalog) computeTypeBrandSplits(amazon []metrics.Enriched) []models.TypeBrandSplit {
	groups := metrics.GroupBy(amazon, func(r metrics.Enriched) models.SodaType { return r.SodaType })

	result := make([]models.TypeBrandSplit, 0, len(groups))
	for _, t := range []models.SodaType{models.TypeModern, models.TypeTraditional, models.TypeDiet} {
		rows, ok := groups[t]
		if !ok {
			continue
		}

		split := models.TypeBrandSplit{SodaType: t}
		split.Revenue, _ = metrics.SumRevenue(rows)

		brands := c.computeBrandRevenue(rows)
		if leaders := typeLeaderCount(t); len(brands) > leaders {
			others := models.BrandRevenue{Brand: "Others"}
			for _, b := range brands[leaders:] {
				others.Revenue += b.Revenue
				others.SKUs += b.SKUs
			}
			brands = brands[:leaders:leaders]
			if others.Revenue > 0 {
				brands = append(brands, others)
			}
		}
		split.Brands = brands

		result = append(result, split)
	}
	return result
}

func (c *Catalog) computeTopVelocity(amazon []metrics.Enriched) []models.VelocityProduct {
	var scored []metrics.Enriched
	for _, r := range amazon {
		if r.VelocityScore != nil {
			scored = append(scored, r)
		}
	}
	slices.SortFunc(scored, func(a, b metrics.Enriched) int {
		if *a.VelocityScore > *b.VelocityScore {
			return -1
		}
		if *a.VelocityScore < *b.VelocityScore {
			return 1
		}
		return 0
	})

	result := make([]models.VelocityProduct, 0, len(scored))
	for _, r := range scored {
		result = append(result, models.VelocityProduct{
			Brand:         r.Brand,
			Title:         r.Title,
			SodaType:      r.SodaType,
			VelocityScore: *r.VelocityScore,
		})
	}
	return result
}

func (c *Catalog) computeWalmartOverview(walmart []metrics.Enriched) models.WalmartOverview {
	var totalProxy, totalPrice float64
	for _, r := range walmart {
		if r.RevenueProxy != nil {
			totalProxy += *r.RevenueProxy
		}
		totalPrice += r.Price
	}

	avgPrice := 0.0
	if len(walmart) > 0 {
		avgPrice = totalPrice / float64(len(walmart))
	}

	return models.WalmartOverview{
		Products:   len(walmart),
		TotalProxy: totalProxy,
		AvgPrice:   avgPrice,
	}
}

func (c *Catalog) computeTypeCounts(walmart []metrics.Enriched) []models.TypeCount {
	counts := metrics.CountBy(walmart, func(r metrics.Enriched) models.SodaType { return r.SodaType })

	result := make([]models.TypeCount, 0, len(counts))
	for t, n := range counts {
		result = append(result, models.TypeCount{SodaType: t, Count: n})
	}
	slices.SortFunc(result, func(a, b models.TypeCount) int { return b.Count - a.Count })
	return result
}

func (c *Catalog) computePackSizes(walmart []metrics.Enriched) []models.PackSizeCount {
	counts := metrics.CountBy(walmart, func(r metrics.Enriched) int { return r.PackSize })

	result := make([]models.PackSizeCount, 0, len(counts))
	for size, n := range counts {
		result = append(result, models.PackSizeCount{PackSize: size, Count: n})
	}
	slices.SortFunc(result, func(a, b models.PackSizeCount) int { return b.Count - a.Count })
	return result
}

func (c *Catalog) computeTopProxy(walmart []metrics.Enriched) []models.ProxyProduct {
	top := metrics.TopN(walmart, len(walmart), proxyValue)

	result := make([]models.ProxyProduct, 0, len(top))
	for _, r := range top {
		result = append(result, models.ProxyProduct{
			Brand:        r.Brand,
			Title:        r.Title,
			ReviewCount:  r.ReviewCount,
			Price:        r.Price,
			RevenueProxy: proxyValue(r),
		})
	}
	return result
}

func proxyValue(r metrics.Enriched) float64 {
	if r.RevenueProxy == nil {
		return 0
	}
	return *r.RevenueProxy
}

func (c *Catalog) computePrivateLabel(walmart []metrics.Enriched) models.PrivateLabelStats {
	var private, branded []metrics.Enriched
	for _, r := range walmart {
		if r.IsPrivateLabel {
			private = append(private, r)
		} else {
			branded = append(branded, r)
		}
	}

	stats := models.PrivateLabelStats{
		PrivateSKUs: len(private),
		TotalSKUs:   len(walmart),
	}
	if len(walmart) == 0 {
		return stats
	}
	stats.SKUShare = float64(len(private)) / float64(len(walmart))

	var privateProxy, totalProxy float64
	for _, r := range walmart {
		totalProxy += proxyValue(r)
	}
	for _, r := range private {
		privateProxy += proxyValue(r)
	}
	stats.PrivateProxy = privateProxy
	if totalProxy > 0 {
		stats.ProxyShare = privateProxy / totalProxy
	}

	if len(private) > 0 && len(branded) > 0 {
		stats.AvgPriceDiscount = 1 - meanPrice(private)/meanPrice(branded)
	}

	top := metrics.TopN(private, 5, proxyValue)
	for _, r := range top {
		stats.TopPrivate = append(stats.TopPrivate, models.ProxyProduct{
			Brand:        r.Brand,
			Title:        r.Title,
			ReviewCount:  r.ReviewCount,
			Price:        r.Price,
			RevenueProxy: proxyValue(r),
		})
	}
	return stats
}

func meanPrice(rows []metrics.Enriched) float64 {
	var total float64
	for _, r := range rows {
		total += r.Price
	}
	return total / float64(len(rows))
}

// computePriceComparison pairs brands present on both platforms and
// compares mean prices only. Revenue and proxy figures never cross
// platforms.
func (c *Catalog) computePriceComparison(amazon, walmart []metrics.Enriched) []models.BrandPriceComparison {
	amazonPrices := metrics.GroupBy(amazon, func(r metrics.Enriched) string { return r.Brand })
	walmartPrices := metrics.GroupBy(walmart, func(r metrics.Enriched) string { return r.Brand })

	var result []models.BrandPriceComparison
	for brand, aRows := range amazonPrices {
		wRows, ok := walmartPrices[brand]
		if !ok {
			continue
		}
		result = append(result, models.BrandPriceComparison{
			Brand:        brand,
			AmazonPrice:  meanPrice(aRows),
			WalmartPrice: meanPrice(wRows),
		})
	}
	sortByRevenueDesc(result, func(b models.BrandPriceComparison) float64 { return b.AmazonPrice })
	return result
}

func sortByRevenueDesc[T any](items []T, val func(T) float64) {
	slices.SortFunc(items, func(a, b T) int {
		if val(a) > val(b) {
			return -1
		}
		if val(a) < val(b) {
			return 1
		}
		return 0
	})
}

// Read accessors. All serve precomputed slices behind the read lock.

func (c *Catalog) Overview() models.Overview {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.views.Overview
}

func (c *Catalog) BrandRevenue(limit int) []models.BrandRevenue {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return head(c.views.BrandRevenue, limit)
}

func (c *Catalog) ParentShare(limit int) []models.ParentShare {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return head(c.views.ParentShare, limit)
}

func (c *Catalog) TypePerformance() []models.TypePerformance {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.views.TypePerformance
}

func (c *Catalog) TypeBrandSplits() []models.TypeBrandSplit {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.views.TypeBrandSplits
}

func (c *Catalog) TopVelocity(limit int) []models.VelocityProduct {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return head(c.views.TopVelocity, limit)
}

func (c *Catalog) WalmartOverview() models.WalmartOverview {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.views.WalmartOverview
}

func (c *Catalog) TypeCounts() []models.TypeCount {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.views.TypeCounts
}

func (c *Catalog) PackSizes(limit int) []models.PackSizeCount {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return head(c.views.PackSizes, limit)
}

func (c *Catalog) TopProxy(limit int) []models.ProxyProduct {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return head(c.views.TopProxy, limit)
}

func (c *Catalog) PrivateLabel() models.PrivateLabelStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.views.PrivateLabel
}

func (c *Catalog) PriceComparison(limit int) []models.BrandPriceComparison {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return head(c.views.PriceComparison, limit)
}

func head[T any](items []T, limit int) []T {
	if len(items) <= limit {
		return items
	}
	return items[:limit]
}

// Parents lists parent brands in revenue order.
func (c *Catalog) Parents(limit int) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	parents := make([]string, 0, limit)
	for _, p := range head(c.views.ParentShare, limit) {
		parents = append(parents, p.Parent)
	}
	return parents
}

// ParentDrilldown breaks one parent company down into sub-brands and top
// SKUs. Computed on demand from the enriched snapshot; the snapshot is
// immutable, so this is a pure read.
func (c *Catalog) ParentDrilldown(parent string) (models.ParentDrilldown, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var rows []metrics.Enriched
	for _, r := range c.enriched {
		if r.Platform == models.PlatformAmazon && r.ParentBrand == parent {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return models.ParentDrilldown{}, false
	}

	revenue, _ := metrics.SumRevenue(rows)
	drill := models.ParentDrilldown{
		Parent:  parent,
		SKUs:    len(rows),
		Revenue: revenue,
	}
	if total := c.views.Overview.AmazonRevenue; total > 0 {
		drill.Share = revenue / total
	}

	drill.SubBrands = head(c.computeBrandRevenue(rows), 5)

	top := metrics.TopN(rows, 5, func(r metrics.Enriched) float64 { return r.Revenue.Amount })
	for _, r := range top {
		drill.TopSKUs = append(drill.TopSKUs, models.SKURevenue{
			Brand:         r.Brand,
			Title:         r.Title,
			Revenue:       r.Revenue.Amount,
			VelocityScore: r.VelocityScore,
			PackSize:      r.PackSize,
		})
	}
	return drill, true
}

// Stats reports load metadata for the admin endpoint.
func (c *Catalog) Stats() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]any{
		"record_count":     c.views.RecordCount,
		"skipped_rows":     c.views.SkippedRows,
		"last_processed":   c.views.LastModified,
		"amazon_products":  c.views.Overview.AmazonProducts,
		"walmart_products": c.views.Overview.WalmartProducts,
		"brands":           len(c.views.BrandRevenue),
		"parents":          len(c.views.ParentShare),
	}
}
