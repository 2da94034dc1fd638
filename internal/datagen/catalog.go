// Package datagen generates demo product catalogs for local development.
package datagen

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"soda-dashboard/internal/models"
)

// Observed coverage in the real catalog: 87% of Amazon rows carry a BSR,
// 80% a units-sold figure. The gaps are deliberate so that the undefined
// paths of the metric layer get exercised by generated data too.
const (
	rankCoverage  = 0.87
	unitsCoverage = 0.80
)

type brandSpec struct {
	name   string
	parent string
	typ    models.SodaType
}

var brands = []brandSpec{
	{"Coca-Cola", "Coca-Cola Company", models.TypeTraditional},
	{"Sprite", "Coca-Cola Company", models.TypeTraditional},
	{"Fanta", "Coca-Cola Company", models.TypeTraditional},
	{"Pepsi", "PepsiCo", models.TypeTraditional},
	{"Mountain Dew", "PepsiCo", models.TypeTraditional},
	{"Dr Pepper", "Keurig Dr Pepper", models.TypeTraditional},
	{"7UP", "Keurig Dr Pepper", models.TypeTraditional},
	{"Canada Dry", "Keurig Dr Pepper", models.TypeTraditional},
	{"Diet Coke", "Coca-Cola Company", models.TypeDiet},
	{"Coca-Cola Zero", "Coca-Cola Company", models.TypeDiet},
	{"Pepsi Zero Sugar", "PepsiCo", models.TypeDiet},
	{"poppi", "PepsiCo", models.TypeModern},
	{"OLIPOP", "OLIPOP", models.TypeModern},
	{"Zevia", "Zevia", models.TypeModern},
	{"Culture Pop", "Culture Pop", models.TypeModern},
	{"Bloom Nutrition", "Bloom Nutrition", models.TypeModern},
}

// Store brands only appear on Walmart.
var privateLabelBrands = []brandSpec{
	{"Great Value", "Walmart", models.TypeTraditional},
	{"Sam's Choice", "Walmart", models.TypeTraditional},
}

var flavors = []string{
	"Classic", "Cherry", "Vanilla", "Strawberry Lemon", "Root Beer",
	"Orange Squeeze", "Ginger Lime", "Grape", "Doc Pop", "Vintage Cola",
}

var packSizes = []int{4, 6, 8, 10, 12, 15, 24, 35}

type Generator struct {
	faker *gofakeit.Faker
}

// NewGenerator creates a generator with a specific seed for
// reproducibility. Seed 0 picks a random one.
func NewGenerator(seed uint64) *Generator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Generator{faker: gofakeit.New(seed)}
}

// Products generates n listings, split roughly evenly between Amazon and
// Walmart.
func (g *Generator) Products(n int) []models.Product {
	products := make([]models.Product, 0, n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			products = append(products, g.amazonProduct())
		} else {
			products = append(products, g.walmartProduct())
		}
	}
	return products
}

func (g *Generator) amazonProduct() models.Product {
	spec := brands[g.faker.Number(0, len(brands)-1)]
	p := g.baseProduct(spec, models.PlatformAmazon)
	p.ID = "B0" + g.faker.LetterN(8)

	if g.faker.Float64Range(0, 1) < rankCoverage {
		rank := g.faker.Number(1, 5000)
		p.Rank = &rank
	}
	if g.faker.Float64Range(0, 1) < unitsCoverage {
		units := g.faker.Number(50, 20000)
		p.UnitsSold = &units
	}
	return p
}

func (g *Generator) walmartProduct() models.Product {
	specs := brands
	// About 6% of Walmart SKUs are store brands.
	if g.faker.Float64Range(0, 1) < 0.06 {
		specs = privateLabelBrands
	}
	spec := specs[g.faker.Number(0, len(specs)-1)]

	p := g.baseProduct(spec, models.PlatformWalmart)
	p.ID = strconv.Itoa(g.faker.Number(100000000, 999999999))
	p.ReviewCount = g.faker.Number(0, 15000)

	if spec.parent == "Walmart" {
		// Steep private-label discount.
		p.Price = g.faker.Price(2, 5)
	}
	return p
}

func (g *Generator) baseProduct(spec brandSpec, platform models.Platform) models.Product {
	pack := packSizes[g.faker.Number(0, len(packSizes)-1)]
	oz := 12
	if g.faker.Bool() {
		oz = 8
	}

	var price float64
	switch spec.typ {
	case models.TypeModern:
		price = g.faker.Price(18, 45)
	default:
		price = g.faker.Price(5, 20)
	}

	p := models.Product{
		Platform:    platform,
		Brand:       spec.name,
		ParentBrand: spec.parent,
		SodaType:    spec.typ,
		Title: fmt.Sprintf("%s %s Soda, %d fl oz Cans (Pack of %d)",
			spec.name, flavors[g.faker.Number(0, len(flavors)-1)], oz, pack),
		PackSize: pack,
		Price:    price,
	}

	if g.faker.Float64Range(0, 1) < 0.9 {
		ppo := price / float64(pack*oz)
		p.PricePerOz = &ppo
	}
	return p
}

var csvHeader = []string{
	"platform", "asin", "brand_clean", "parent_brand", "soda_type", "title",
	"pack_size", "price", "price_per_oz", "best_sellers_rank",
	"units_sold_last_month", "review_count",
}

// WriteCSV writes products in the catalog file layout the loader expects.
func WriteCSV(w io.Writer, products []models.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, p := range products {
		record := []string{
			string(p.Platform),
			p.ID,
			p.Brand,
			p.ParentBrand,
			string(p.SodaType),
			p.Title,
			strconv.Itoa(p.PackSize),
			strconv.FormatFloat(p.Price, 'f', 2, 64),
			formatFloatPtr(p.PricePerOz),
			formatIntPtr(p.Rank),
			formatIntPtr(p.UnitsSold),
			formatReviews(p),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatReviews(p models.Product) string {
	if p.Platform != models.PlatformWalmart {
		return ""
	}
	return strconv.Itoa(p.ReviewCount)
}
