package models

type Platform string

const (
	PlatformAmazon  Platform = "Amazon"
	PlatformWalmart Platform = "Walmart"
)

type SodaType string

const (
	TypeTraditional SodaType = "Traditional"
	TypeDiet        SodaType = "Diet"
	TypeModern      SodaType = "Modern"
)

// Product is one marketplace listing. Rank, UnitsSold and PricePerOz are
// legitimately absent for a share of the catalog and stay nil rather than
// being imputed as zero.
type Product struct {
	ID          string
	Platform    Platform
	Brand       string
	ParentBrand string
	SodaType    SodaType
	Title       string
	PackSize    int
	Price       float64
	PricePerOz  *float64
	Rank        *int // Amazon best sellers rank
	UnitsSold   *int // Amazon units sold last month
	ReviewCount int  // Walmart
}

func (p Platform) Valid() bool {
	return p == PlatformAmazon || p == PlatformWalmart
}

func (t SodaType) Valid() bool {
	return t == TypeTraditional || t == TypeDiet || t == TypeModern
}

type Overview struct {
	TotalProducts   int     `json:"total_products"`
	AmazonProducts  int     `json:"amazon_products"`
	WalmartProducts int     `json:"walmart_products"`
	AmazonRevenue   float64 `json:"amazon_revenue"`
	RevenueKnown    int     `json:"revenue_known"`
	RevenueCoverage float64 `json:"revenue_coverage"`
	ModernShare     float64 `json:"modern_share"`
}

type BrandRevenue struct {
	Brand   string  `json:"brand"`
	Revenue float64 `json:"revenue"`
	SKUs    int     `json:"skus"`
}

type ParentShare struct {
	Parent  string  `json:"parent"`
	Revenue float64 `json:"revenue"`
	Share   float64 `json:"share"`
}

type TypePerformance struct {
	SodaType           SodaType `json:"soda_type"`
	SKUs               int      `json:"skus"`
	Revenue            float64  `json:"revenue"`
	AvgVelocity        *float64 `json:"avg_velocity,omitempty"`
	WeightedPricePerOz *float64 `json:"weighted_price_per_oz,omitempty"`
	AvgPackSize        float64  `json:"avg_pack_size"`
}

// TypeBrandSplit is the brand-level revenue breakdown within one soda
// type: the leading brands plus an "Others" bucket for the tail.
type TypeBrandSplit struct {
	SodaType SodaType       `json:"soda_type"`
	Revenue  float64        `json:"revenue"`
	Brands   []BrandRevenue `json:"brands"`
}

type VelocityProduct struct {
	Brand         string   `json:"brand"`
	Title         string   `json:"title"`
	SodaType      SodaType `json:"soda_type"`
	VelocityScore float64  `json:"velocity_score"`
}

type SKURevenue struct {
	Brand         string   `json:"brand"`
	Title         string   `json:"title"`
	Revenue       float64  `json:"revenue"`
	VelocityScore *float64 `json:"velocity_score,omitempty"`
	PackSize      int      `json:"pack_size"`
}

type ParentDrilldown struct {
	Parent    string         `json:"parent"`
	SKUs      int            `json:"skus"`
	Revenue   float64        `json:"revenue"`
	Share     float64        `json:"share"`
	SubBrands []BrandRevenue `json:"sub_brands"`
	TopSKUs   []SKURevenue   `json:"top_skus"`
}

type WalmartOverview struct {
	Products   int     `json:"products"`
	TotalProxy float64 `json:"total_proxy"`
	AvgPrice   float64 `json:"avg_price"`
}

type TypeCount struct {
	SodaType SodaType `json:"soda_type"`
	Count    int      `json:"count"`
}

type PackSizeCount struct {
	PackSize int `json:"pack_size"`
	Count    int `json:"count"`
}

type ProxyProduct struct {
	Brand        string  `json:"brand"`
	Title        string  `json:"title"`
	ReviewCount  int     `json:"review_count"`
	Price        float64 `json:"price"`
	RevenueProxy float64 `json:"revenue_proxy"`
}

type PrivateLabelStats struct {
	PrivateSKUs      int            `json:"private_skus"`
	TotalSKUs        int            `json:"total_skus"`
	SKUShare         float64        `json:"sku_share"`
	PrivateProxy     float64        `json:"private_proxy"`
	ProxyShare       float64        `json:"proxy_share"`
	AvgPriceDiscount float64        `json:"avg_price_discount"`
	TopPrivate       []ProxyProduct `json:"top_private"`
}

type BrandPriceComparison struct {
	Brand        string  `json:"brand"`
	AmazonPrice  float64 `json:"amazon_price"`
	WalmartPrice float64 `json:"walmart_price"`
}
