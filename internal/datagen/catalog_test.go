package datagen

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"testing"

	"soda-dashboard/internal/models"
)

func TestGenerator_Products(t *testing.T) {
	products := NewGenerator(42).Products(200)

	if len(products) != 200 {
		t.Fatalf("expected 200 products, got %d", len(products))
	}

	var amazon, walmart, ranked, withUnits int
	for _, p := range products {
		if !p.Platform.Valid() {
			t.Errorf("invalid platform %q", p.Platform)
		}
		if !p.SodaType.Valid() {
			t.Errorf("invalid soda type %q", p.SodaType)
		}
		if p.ID == "" || p.Brand == "" || p.Title == "" {
			t.Errorf("product missing identity fields: %+v", p)
		}
		if p.Price <= 0 {
			t.Errorf("non-positive price %.2f for %s", p.Price, p.ID)
		}
		if p.PackSize <= 0 {
			t.Errorf("non-positive pack size %d for %s", p.PackSize, p.ID)
		}

		switch p.Platform {
		case models.PlatformAmazon:
			amazon++
			if p.Rank != nil {
				ranked++
				if *p.Rank < 1 {
					t.Errorf("rank below 1: %d", *p.Rank)
				}
			}
			if p.UnitsSold != nil {
				withUnits++
			}
			if p.ReviewCount != 0 {
				t.Errorf("amazon product %s has review count", p.ID)
			}
		case models.PlatformWalmart:
			walmart++
			if p.Rank != nil || p.UnitsSold != nil {
				t.Errorf("walmart product %s carries amazon-only fields", p.ID)
			}
		}
	}

	if amazon == 0 || walmart == 0 {
		t.Fatalf("expected products on both platforms, got amazon=%d walmart=%d", amazon, walmart)
	}

	// Coverage gaps should exist but stay in the neighbourhood of the
	// configured rates.
	if ranked == amazon {
		t.Error("expected some amazon products without a rank")
	}
	if withUnits == amazon {
		t.Error("expected some amazon products without units sold")
	}
	if float64(ranked)/float64(amazon) < 0.7 {
		t.Errorf("rank coverage too low: %d/%d", ranked, amazon)
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	a := NewGenerator(7).Products(50)
	b := NewGenerator(7).Products(50)

	for i := range a {
		if a[i].ID != b[i].ID || a[i].Title != b[i].Title || a[i].Price != b[i].Price {
			t.Fatalf("products diverge at index %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestGenerator_PrivateLabel(t *testing.T) {
	products := NewGenerator(3).Products(1000)

	var privateLabel int
	for _, p := range products {
		if p.ParentBrand != "Walmart" {
			continue
		}
		privateLabel++
		if p.Platform != models.PlatformWalmart {
			t.Errorf("store brand %s listed on %s", p.Brand, p.Platform)
		}
	}
	if privateLabel == 0 {
		t.Error("expected some private-label products in 1000 rows")
	}
}

func TestWriteCSV(t *testing.T) {
	products := NewGenerator(11).Products(40)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, products); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("generated CSV does not parse: %v", err)
	}
	if len(records) != len(products)+1 {
		t.Fatalf("expected %d records, got %d", len(products)+1, len(records))
	}
	if records[0][0] != "platform" || records[0][1] != "asin" {
		t.Errorf("unexpected header: %v", records[0])
	}

	for i, p := range products {
		row := records[i+1]
		if row[0] != string(p.Platform) {
			t.Errorf("row %d platform mismatch: %s", i, row[0])
		}
		if price, err := strconv.ParseFloat(row[7], 64); err != nil || price != p.Price {
			t.Errorf("row %d price mismatch: %s vs %.2f", i, row[7], p.Price)
		}
		if p.Rank == nil && row[9] != "" {
			t.Errorf("row %d has rank %q for rankless product", i, row[9])
		}
	}
}
