package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"soda-dashboard/internal/models"
)

// LoadFromFile loads the product table from a .csv or .xlsx file, computes
// every view and snapshots the parsed rows for fast restarts. The file is
// read exactly once per process; a missing or empty file is fatal to the
// caller.
func (c *Catalog) LoadFromFile(ctx context.Context, filename string) error {
	c.path = filename

	if cached, err := c.loadFromCache(filename); err == nil {
		fileInfo, err := os.Stat(filename)
		if err == nil && fileInfo.ModTime().Before(cached.LastModified) {
			c.SetProducts(cached.Products)
			c.logger.Info("loaded from cache", "records", cached.RecordCount)
			return nil
		}
	}

	start := time.Now()
	c.logger.Info("processing catalog file", "filename", filename)

	var products []models.Product
	var skipped int64
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		products, skipped, err = c.loadXLSX(ctx, filename)
	default:
		products, skipped, err = c.loadCSV(ctx, filename)
	}
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	if len(products) == 0 {
		return fmt.Errorf("no valid products found in %s", filename)
	}

	c.skippedRows.Store(skipped)
	c.SetProducts(products)

	if err := c.saveToCache(filename, products); err != nil {
		c.logger.Warn("failed to save cache", "error", err)
	}

	duration := time.Since(start)
	c.logger.Info("catalog processing complete",
		"records", len(products),
		"skipped", skipped,
		"duration", duration)

	return nil
}

func (c *Catalog) loadCSV(ctx context.Context, filename string) ([]models.Product, int64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, 0, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // tolerate ragged rows, parseProduct validates

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	idx := headerIndex(header)

	var products []models.Product
	var skipped int64

	batch := make([][]string, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		parsed, bad, err := parseBatch(ctx, batch, idx)
		if err != nil {
			return err
		}
		products = append(products, parsed...)
		skipped += bad
		batch = batch[:0]
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		default:
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed line, not a dead file: skip the row.
			skipped++
			continue
		}

		batch = append(batch, record)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return nil, 0, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, 0, err
	}

	return products, skipped, nil
}

// parseBatch parses one batch of records on a bounded worker pool and
// collects the results in input order.
func parseBatch(ctx context.Context, batch [][]string, idx map[string]int) ([]models.Product, int64, error) {
	type result struct {
		product models.Product
		valid   bool
	}

	results := make([]result, len(batch))

	var wg errgroup.Group
	wg.SetLimit(maxWorkers)

	for i, record := range batch {
		wg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			product, err := parseProduct(record, idx)
			if err != nil {
				return nil // skip invalid rows, keep the rest
			}
			results[i] = result{product: product, valid: true}
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		return nil, 0, err
	}

	products := make([]models.Product, 0, len(batch))
	var skipped int64
	for _, r := range results {
		if r.valid {
			products = append(products, r.product)
		} else {
			skipped++
		}
	}
	return products, skipped, nil
}

func (c *Catalog) loadXLSX(ctx context.Context, filename string) ([]models.Product, int64, error) {
	f, err := excelize.OpenFile(filename)
	if err != nil {
		return nil, 0, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, 0, fmt.Errorf("read sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("empty workbook")
	}

	idx := headerIndex(rows[0])

	var products []models.Product
	var skipped int64
	for _, row := range rows[1:] {
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		default:
		}

		product, err := parseProduct(row, idx)
		if err != nil {
			skipped++
			continue
		}
		products = append(products, product)
	}

	return products, skipped, nil
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return idx
}

// parseProduct maps one row onto a Product. Platform, soda type, title and
// price are required; the optional columns (rank, units sold, price per
// oz) stay nil when empty or unparseable so that downstream metrics report
// them as undefined rather than zero.
func parseProduct(record []string, idx map[string]int) (models.Product, error) {
	field := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	platform := models.Platform(field("platform"))
	if !platform.Valid() {
		return models.Product{}, fmt.Errorf("invalid platform %q", field("platform"))
	}

	sodaType := models.SodaType(field("soda_type"))
	if !sodaType.Valid() {
		return models.Product{}, fmt.Errorf("invalid soda type %q", field("soda_type"))
	}

	title := field("title")
	if title == "" {
		return models.Product{}, fmt.Errorf("missing title")
	}

	price, err := strconv.ParseFloat(field("price"), 64)
	if err != nil {
		return models.Product{}, fmt.Errorf("parse price: %w", err)
	}

	p := models.Product{
		ID:          field("asin"),
		Platform:    platform,
		Brand:       field("brand_clean"),
		ParentBrand: field("parent_brand"),
		SodaType:    sodaType,
		Title:       title,
		PackSize:    1,
		Price:       price,
	}

	if v := field("pack_size"); v != "" {
		if size, err := strconv.Atoi(v); err == nil && size > 0 {
			p.PackSize = size
		}
	}
	if v := field("price_per_oz"); v != "" {
		if ppo, err := strconv.ParseFloat(v, 64); err == nil {
			p.PricePerOz = &ppo
		}
	}
	if v := field("best_sellers_rank"); v != "" {
		if rank, err := strconv.Atoi(v); err == nil {
			p.Rank = &rank
		}
	}
	if v := field("units_sold_last_month"); v != "" {
		if units, err := strconv.Atoi(v); err == nil {
			p.UnitsSold = &units
		}
	}
	if v := field("review_count"); v != "" {
		if reviews, err := strconv.Atoi(v); err == nil {
			p.ReviewCount = reviews
		}
	}

	return p, nil
}

// Cache management. The snapshot stores parsed rows, not derived views, so
// a policy change via env vars takes effect on the next start without
// invalidating the cache.
type snapshot struct {
	Products     []models.Product `json:"products"`
	LastModified time.Time        `json:"last_modified"`
	RecordCount  int64            `json:"record_count"`
}

func (c *Catalog) getCacheFilename(path string) string {
	return fmt.Sprintf("%s/%s_%s.json", cacheDir, strings.ReplaceAll(path, "/", "_"), cacheVersion)
}

func (c *Catalog) saveToCache(path string, products []models.Product) error {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return err
	}

	file, err := os.Create(c.getCacheFilename(path))
	if err != nil {
		return err
	}
	defer file.Close()

	snap := snapshot{
		Products:     products,
		LastModified: time.Now(),
		RecordCount:  int64(len(products)),
	}
	return json.NewEncoder(file).Encode(snap)
}

func (c *Catalog) loadFromCache(path string) (*snapshot, error) {
	file, err := os.Open(c.getCacheFilename(path))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var snap snapshot
	if err := json.NewDecoder(file).Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
