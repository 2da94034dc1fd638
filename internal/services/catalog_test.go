package services

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"soda-dashboard/internal/config"
	"soda-dashboard/internal/models"
)

func testMetricsConfig() config.MetricsConfig {
	return config.MetricsConfig{
		MultiplierTraditional: 1.0,
		MultiplierDiet:        1.0,
		MultiplierModern:      1.2,
		VelocityClampFloor:    true,
		PrivateLabelTokens:    []string{"great value", "sam", "member"},
	}
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func testProducts() []models.Product {
	return []models.Product{
		{
			ID: "B001", Platform: models.PlatformAmazon, Brand: "poppi", ParentBrand: "PepsiCo",
			SodaType: models.TypeModern, Title: "poppi Strawberry Lemon 12pk", PackSize: 12,
			Price: 29.99, PricePerOz: floatPtr(1.34), Rank: intPtr(1), UnitsSold: intPtr(5000),
		},
		{
			ID: "B002", Platform: models.PlatformAmazon, Brand: "Coca-Cola", ParentBrand: "Coca-Cola Company",
			SodaType: models.TypeTraditional, Title: "Coca-Cola Classic 24pk", PackSize: 24,
			Price: 12.99, PricePerOz: floatPtr(0.57), Rank: intPtr(100), UnitsSold: intPtr(8000),
		},
		{
			ID: "B003", Platform: models.PlatformAmazon, Brand: "Diet Coke", ParentBrand: "Coca-Cola Company",
			SodaType: models.TypeDiet, Title: "Diet Coke 12pk", PackSize: 12,
			Price: 8.99, // no rank, no units sold: metrics stay undefined
		},
		{
			ID: "W001", Platform: models.PlatformWalmart, Brand: "Great Value", ParentBrand: "Walmart",
			SodaType: models.TypeTraditional, Title: "Great Value Dr Thunder 12pk", PackSize: 12,
			Price: 3.48, ReviewCount: 4000,
		},
		{
			ID: "W002", Platform: models.PlatformWalmart, Brand: "Coca-Cola", ParentBrand: "Coca-Cola Company",
			SodaType: models.TypeTraditional, Title: "Coca-Cola 12pk Cans", PackSize: 12,
			Price: 7.98, ReviewCount: 12000,
		},
	}
}

func TestNewCatalog(t *testing.T) {
	c := NewCatalog(testMetricsConfig())
	if c == nil {
		t.Fatal("NewCatalog() returned nil")
	}
	if c.views == nil {
		t.Error("views should be initialized")
	}
	if c.logger == nil {
		t.Error("logger should be initialized")
	}
}

func TestCatalog_Overview(t *testing.T) {
	c := NewCatalog(testMetricsConfig())
	c.SetProducts(testProducts())

	ov := c.Overview()
	if ov.TotalProducts != 5 || ov.AmazonProducts != 3 || ov.WalmartProducts != 2 {
		t.Errorf("product counts = %d/%d/%d, want 5/3/2",
			ov.TotalProducts, ov.AmazonProducts, ov.WalmartProducts)
	}

	// 5000*29.99*1.2 + 8000*12.99*1.0; the Diet Coke row contributes 0.
	want := 5000*29.99*1.2 + 8000*12.99
	if math.Abs(ov.AmazonRevenue-want) > 1e-6 {
		t.Errorf("amazon revenue = %f, want %f", ov.AmazonRevenue, want)
	}
	if ov.RevenueKnown != 2 {
		t.Errorf("revenue known = %d, want 2", ov.RevenueKnown)
	}
	if math.Abs(ov.RevenueCoverage-2.0/3.0) > 1e-12 {
		t.Errorf("revenue coverage = %f, want 2/3", ov.RevenueCoverage)
	}
	if math.Abs(ov.ModernShare-1.0/3.0) > 1e-12 {
		t.Errorf("modern share = %f, want 1/3", ov.ModernShare)
	}
}

func TestCatalog_BrandRevenue(t *testing.T) {
	c := NewCatalog(testMetricsConfig())
	c.SetProducts(testProducts())

	brands := c.BrandRevenue(10)
	if len(brands) != 3 {
		t.Fatalf("expected 3 Amazon brands, got %d", len(brands))
	}

	// Sorted by revenue descending: poppi (179,940) over Coca-Cola (103,920).
	if brands[0].Brand != "poppi" || brands[1].Brand != "Coca-Cola" {
		t.Errorf("brand order = [%s %s], want [poppi Coca-Cola]", brands[0].Brand, brands[1].Brand)
	}

	// Walmart rows never enter Amazon brand revenue.
	for _, b := range brands {
		if b.Brand == "Great Value" {
			t.Error("Walmart-only brand leaked into Amazon brand revenue")
		}
	}
}

func TestCatalog_ParentShare(t *testing.T) {
	c := NewCatalog(testMetricsConfig())
	c.SetProducts(testProducts())

	parents := c.ParentShare(5)
	var total float64
	for _, p := range parents {
		total += p.Share
	}
	if math.Abs(total-1.0) > 1e-9 {
		t.Errorf("parent shares sum to %f, want 1.0", total)
	}
}

func TestCatalog_TypePerformance(t *testing.T) {
	c := NewCatalog(testMetricsConfig())
	c.SetProducts(testProducts())

	perf := c.TypePerformance()
	byType := make(map[models.SodaType]models.TypePerformance)
	for _, p := range perf {
		byType[p.SodaType] = p
	}

	modern := byType[models.TypeModern]
	if modern.AvgVelocity == nil || *modern.AvgVelocity != 100 {
		t.Error("modern type should average the single rank-1 velocity of 100")
	}
	if modern.WeightedPricePerOz == nil || math.Abs(*modern.WeightedPricePerOz-1.34) > 1e-9 {
		t.Error("modern weighted price per oz should equal its single row's 1.34")
	}

	// The diet row has neither rank nor revenue: both group metrics are
	// absent, never zero.
	diet := byType[models.TypeDiet]
	if diet.AvgVelocity != nil {
		t.Errorf("diet avg velocity should be absent, got %f", *diet.AvgVelocity)
	}
	if diet.WeightedPricePerOz != nil {
		t.Errorf("diet weighted price should be absent, got %f", *diet.WeightedPricePerOz)
	}
}

func TestCatalog_TypeBrandSplits(t *testing.T) {
	c := NewCatalog(testMetricsConfig())
	c.SetProducts(testProducts())

	splits := c.TypeBrandSplits()
	if len(splits) != 3 {
		t.Fatalf("expected 3 type splits, got %d", len(splits))
	}

	// One brand per type in the fixture: no Others bucket anywhere.
	for _, s := range splits {
		if len(s.Brands) != 1 {
			t.Errorf("%s: expected 1 brand, got %d", s.SodaType, len(s.Brands))
		}
		for _, b := range s.Brands {
			if b.Brand == "Others" {
				t.Errorf("%s: unexpected Others bucket", s.SodaType)
			}
		}
	}

	if splits[0].SodaType != models.TypeModern {
		t.Errorf("first split = %s, want Modern", splits[0].SodaType)
	}
	want := 5000 * 29.99 * 1.2
	if math.Abs(splits[0].Revenue-want) > 1e-6 {
		t.Errorf("modern type revenue = %f, want %f", splits[0].Revenue, want)
	}
}

func TestCatalog_TypeBrandSplits_OthersBucket(t *testing.T) {
	c := NewCatalog(testMetricsConfig())

	// Seven traditional brands with distinct revenues, revenue = units * 10.
	products := make([]models.Product, 0, 7)
	for i, brand := range []string{"B1", "B2", "B3", "B4", "B5", "B6", "B7"} {
		units := (7 - i) * 100
		products = append(products, models.Product{
			ID: brand, Platform: models.PlatformAmazon, Brand: brand, ParentBrand: brand,
			SodaType: models.TypeTraditional, Title: brand + " Cola", PackSize: 12,
			Price: 10, UnitsSold: intPtr(units),
		})
	}
	c.SetProducts(products)

	splits := c.TypeBrandSplits()
	if len(splits) != 1 {
		t.Fatalf("expected 1 type split, got %d", len(splits))
	}
	s := splits[0]

	// Five leaders plus the Others tail.
	if len(s.Brands) != 6 {
		t.Fatalf("expected 6 brand rows, got %d", len(s.Brands))
	}
	last := s.Brands[5]
	if last.Brand != "Others" {
		t.Fatalf("last row = %q, want Others", last.Brand)
	}

	// Others holds B6 + B7: (200 + 100) * 10.
	if math.Abs(last.Revenue-3000) > 1e-9 {
		t.Errorf("Others revenue = %f, want 3000", last.Revenue)
	}
	if last.SKUs != 2 {
		t.Errorf("Others SKUs = %d, want 2", last.SKUs)
	}

	// Leaders plus Others reconstruct the type total.
	var sum float64
	for _, b := range s.Brands {
		sum += b.Revenue
	}
	if math.Abs(sum-s.Revenue) > 1e-9 {
		t.Errorf("brand rows sum to %f, type revenue is %f", sum, s.Revenue)
	}
}

func TestCatalog_TypeBrandSplits_ZeroRevenueTail(t *testing.T) {
	c := NewCatalog(testMetricsConfig())

	// Six brands where only the first has known revenue: the tail sums to 0
	// and the Others bucket is omitted.
	products := make([]models.Product, 0, 6)
	for i, brand := range []string{"M1", "M2", "M3", "M4", "M5", "M6"} {
		p := models.Product{
			ID: brand, Platform: models.PlatformAmazon, Brand: brand, ParentBrand: brand,
			SodaType: models.TypeModern, Title: brand + " Soda", PackSize: 12, Price: 25,
		}
		if i == 0 {
			p.UnitsSold = intPtr(1000)
		}
		products = append(products, p)
	}
	c.SetProducts(products)

	splits := c.TypeBrandSplits()
	if len(splits) != 1 {
		t.Fatalf("expected 1 type split, got %d", len(splits))
	}
	s := splits[0]

	// Modern keeps 4 leaders; the zero-revenue remainder drops.
	if len(s.Brands) != 4 {
		t.Fatalf("expected 4 brand rows, got %d", len(s.Brands))
	}
	for _, b := range s.Brands {
		if b.Brand == "Others" {
			t.Error("zero-revenue tail should not produce an Others bucket")
		}
	}
}

func TestCatalog_TopVelocity(t *testing.T) {
	c := NewCatalog(testMetricsConfig())
	c.SetProducts(testProducts())

	top := c.TopVelocity(10)
	// Only the two ranked rows qualify; the rankless diet row is excluded.
	if len(top) != 2 {
		t.Fatalf("expected 2 scored products, got %d", len(top))
	}
	if top[0].VelocityScore < top[1].VelocityScore {
		t.Error("top velocity should be sorted descending")
	}
	if top[0].VelocityScore != 100 {
		t.Errorf("best velocity = %f, want 100", top[0].VelocityScore)
	}
}

func TestCatalog_WalmartViews(t *testing.T) {
	c := NewCatalog(testMetricsConfig())
	c.SetProducts(testProducts())

	ov := c.WalmartOverview()
	if ov.Products != 2 {
		t.Errorf("walmart products = %d, want 2", ov.Products)
	}
	wantProxy := 4000*3.48 + 12000*7.98
	if math.Abs(ov.TotalProxy-wantProxy) > 1e-6 {
		t.Errorf("total proxy = %f, want %f", ov.TotalProxy, wantProxy)
	}

	top := c.TopProxy(10)
	if len(top) != 2 || top[0].Brand != "Coca-Cola" {
		t.Errorf("top proxy should lead with Coca-Cola, got %+v", top)
	}

	pl := c.PrivateLabel()
	if pl.PrivateSKUs != 1 || pl.TotalSKUs != 2 {
		t.Errorf("private label SKUs = %d/%d, want 1/2", pl.PrivateSKUs, pl.TotalSKUs)
	}
	if pl.AvgPriceDiscount <= 0 {
		t.Errorf("private label should be discounted, got %f", pl.AvgPriceDiscount)
	}
	if len(pl.TopPrivate) != 1 || pl.TopPrivate[0].Brand != "Great Value" {
		t.Errorf("top private = %+v, want the Great Value row", pl.TopPrivate)
	}
}

func TestCatalog_PriceComparison(t *testing.T) {
	c := NewCatalog(testMetricsConfig())
	c.SetProducts(testProducts())

	cmp := c.PriceComparison(8)
	// Only Coca-Cola is listed on both platforms.
	if len(cmp) != 1 || cmp[0].Brand != "Coca-Cola" {
		t.Fatalf("price comparison = %+v, want only Coca-Cola", cmp)
	}
	if cmp[0].AmazonPrice != 12.99 || cmp[0].WalmartPrice != 7.98 {
		t.Errorf("prices = %f/%f, want 12.99/7.98", cmp[0].AmazonPrice, cmp[0].WalmartPrice)
	}
}

func TestCatalog_ParentDrilldown(t *testing.T) {
	c := NewCatalog(testMetricsConfig())
	c.SetProducts(testProducts())

	drill, ok := c.ParentDrilldown("Coca-Cola Company")
	if !ok {
		t.Fatal("drilldown for known parent should succeed")
	}
	if drill.SKUs != 2 {
		t.Errorf("drilldown SKUs = %d, want 2 (Amazon only)", drill.SKUs)
	}
	if len(drill.SubBrands) != 2 {
		t.Errorf("sub brands = %d, want 2", len(drill.SubBrands))
	}
	if len(drill.TopSKUs) == 0 || drill.TopSKUs[0].Brand != "Coca-Cola" {
		t.Errorf("top SKU should be the revenue-carrying Coca-Cola row, got %+v", drill.TopSKUs)
	}

	if _, ok := c.ParentDrilldown("Nonexistent Holdings"); ok {
		t.Error("drilldown for unknown parent should fail")
	}
}

func TestCatalog_EmptyData(t *testing.T) {
	c := NewCatalog(testMetricsConfig())

	if len(c.BrandRevenue(10)) != 0 {
		t.Error("BrandRevenue() on empty catalog should return nothing")
	}
	if len(c.TopProxy(10)) != 0 {
		t.Error("TopProxy() on empty catalog should return nothing")
	}
	if ov := c.Overview(); ov.TotalProducts != 0 {
		t.Error("Overview() on empty catalog should be zero")
	}
}

func TestCatalog_ConcurrentAccess(t *testing.T) {
	c := NewCatalog(testMetricsConfig())
	c.SetProducts(testProducts())

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- true }()

			_ = c.Overview()
			_ = c.BrandRevenue(10)
			_ = c.TypePerformance()
			_ = c.TopProxy(10)
			_, _ = c.ParentDrilldown("PepsiCo")
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}

const csvHeader = "platform,asin,brand_clean,parent_brand,soda_type,title,pack_size,price,price_per_oz,best_sellers_rank,units_sold_last_month,review_count"

func createTempCSV(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "catalog*.csv")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
	return f.Name()
}

func TestCatalog_LoadFromFile_CSV(t *testing.T) {
	csvData := csvHeader + `
Amazon,B001,poppi,PepsiCo,Modern,"poppi Strawberry Lemon, 12 pack",12,29.99,1.34,1,5000,
Amazon,B002,Coca-Cola,Coca-Cola Company,Traditional,Coca-Cola Classic 24pk,24,12.99,0.57,100,8000,
Walmart,W001,Great Value,Walmart,Traditional,Great Value Dr Thunder,12,3.48,,,,4000`

	f := createTempCSV(t, csvData)

	c := NewCatalog(testMetricsConfig())
	if err := c.LoadFromFile(context.Background(), f); err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	ov := c.Overview()
	if ov.TotalProducts != 3 {
		t.Errorf("loaded %d products, want 3", ov.TotalProducts)
	}

	// Quoted title with a comma survives CSV parsing intact.
	top := c.TopVelocity(1)
	if len(top) != 1 || top[0].Title != "poppi Strawberry Lemon, 12 pack" {
		t.Errorf("title mangled by CSV parse: %+v", top)
	}
}

func TestCatalog_LoadFromFile_SkipsInvalidRows(t *testing.T) {
	csvData := csvHeader + `
Amazon,B001,poppi,PepsiCo,Modern,Good Row,12,29.99,1.34,1,5000,
Target,B002,Coke,Coca-Cola Company,Traditional,Bad Platform,24,12.99,,,,
Amazon,B003,Coke,Coca-Cola Company,Cola,Bad Type,24,12.99,,,,
Amazon,B004,Coke,Coca-Cola Company,Traditional,Bad Price,24,notanumber,,,,`

	f := createTempCSV(t, csvData)

	c := NewCatalog(testMetricsConfig())
	if err := c.LoadFromFile(context.Background(), f); err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if ov := c.Overview(); ov.TotalProducts != 1 {
		t.Errorf("loaded %d products, want 1 valid row", ov.TotalProducts)
	}
	if stats := c.Stats(); stats["skipped_rows"].(int64) != 3 {
		t.Errorf("skipped_rows = %v, want 3", stats["skipped_rows"])
	}
}

func TestCatalog_LoadFromFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"empty file", ""},
		{"header only", csvHeader},
		{"no valid rows", csvHeader + "\nTarget,x,x,x,Cola,x,1,bad,,,,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := createTempCSV(t, tt.csv)

			c := NewCatalog(testMetricsConfig())
			if err := c.LoadFromFile(context.Background(), f); err == nil {
				t.Error("LoadFromFile() should fail")
			}
		})
	}
}

func TestCatalog_LoadFromFile_Missing(t *testing.T) {
	c := NewCatalog(testMetricsConfig())
	if err := c.LoadFromFile(context.Background(), filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Error("LoadFromFile() on a missing file should fail")
	}
}

func TestCatalog_LoadFromFile_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")

	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	rows := [][]any{
		{"platform", "asin", "brand_clean", "parent_brand", "soda_type", "title", "pack_size", "price", "price_per_oz", "best_sellers_rank", "units_sold_last_month", "review_count"},
		{"Amazon", "B001", "OLIPOP", "OLIPOP", "Modern", "OLIPOP Vintage Cola", 12, 35.99, 1.5, 10, 3000, ""},
		{"Walmart", "W001", "Pepsi", "PepsiCo", "Traditional", "Pepsi 12pk", 12, 6.98, "", "", "", 9000},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := wb.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	c := NewCatalog(testMetricsConfig())
	if err := c.LoadFromFile(context.Background(), path); err != nil {
		t.Fatalf("LoadFromFile() xlsx error = %v", err)
	}

	ov := c.Overview()
	if ov.AmazonProducts != 1 || ov.WalmartProducts != 1 {
		t.Errorf("xlsx load = %d/%d amazon/walmart, want 1/1", ov.AmazonProducts, ov.WalmartProducts)
	}
	if math.Abs(ov.AmazonRevenue-3000*35.99*1.2) > 1e-6 {
		t.Errorf("xlsx amazon revenue = %f", ov.AmazonRevenue)
	}
}

func BenchmarkCatalog_BrandRevenue(b *testing.B) {
	c := NewCatalog(testMetricsConfig())
	products := make([]models.Product, 1000)
	for i := 0; i < 1000; i++ {
		units := i * 10
		products[i] = models.Product{
			Platform:  models.PlatformAmazon,
			Brand:     "Brand" + string(rune('A'+i%26)),
			SodaType:  models.TypeTraditional,
			Price:     float64(i%20) + 1,
			UnitsSold: &units,
		}
	}
	c.SetProducts(products)

	b.ResetTimer()
	for b.Loop() {
		_ = c.BrandRevenue(10)
	}
}
