package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"soda-dashboard/internal/services"
)

var velocityTableTemplate = template.Must(template.New("velocityTable").Parse(`
<div id="velocity-content">
<table class="modern-table">
<thead><tr><th>Brand</th><th>Product</th><th>Type</th><th>Velocity</th></tr></thead>
<tbody>
{{range .}}<tr>
<td>{{.Brand}}</td>
<td>{{.Title}}</td>
<td><span class="type-badge type-{{.SodaType}}">{{.SodaType}}</span></td>
<td><strong>{{printf "%.1f" .VelocityScore}}</strong></td>
</tr>{{end}}
</tbody>
</table>
</div>`))

var proxyTableTemplate = template.Must(template.New("proxyTable").Parse(`
<div id="proxy-content">
<table class="modern-table">
<thead><tr><th>Brand</th><th>Product</th><th>Reviews</th><th>Price</th><th>Proxy</th></tr></thead>
<tbody>
{{range .}}<tr>
<td>{{.Brand}}</td>
<td>{{.Title}}</td>
<td>{{.ReviewCount}}</td>
<td>${{printf "%.2f" .Price}}</td>
<td><strong>${{printf "%.0f" .RevenueProxy}}</strong></td>
</tr>{{end}}
</tbody>
</table>
</div>`))

type SSEHandlers struct {
	catalog *services.Catalog
	logger  *slog.Logger
}

func NewSSEHandlers(catalog *services.Catalog, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		catalog: catalog,
		logger:  logger,
	}
}

func renderTemplate(tmpl *template.Template, data any) (string, error) {
	var buf strings.Builder
	err := tmpl.Execute(&buf, data)
	return buf.String(), err
}

func (h *SSEHandlers) HandleOverview(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	jsonData, err := json.Marshal(map[string]any{
		"overview": h.catalog.Overview(),
	})
	if err != nil {
		h.logger.Error("marshal overview", "error", err)
		return
	}
	sse.PatchSignals(jsonData)
	sse.PatchElements(`<div id="overview-content">Overview loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleAmazon(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	html, err := renderTemplate(velocityTableTemplate, h.catalog.TopVelocity(maxVelocity))
	if err != nil {
		h.logger.Error("render velocity table", "error", err)
		return
	}
	sse.PatchElements(html)

	jsonData, err := json.Marshal(map[string]any{
		"brandRevenue":    h.catalog.BrandRevenue(maxBrands),
		"parentShare":     h.catalog.ParentShare(maxParents),
		"typePerformance": h.catalog.TypePerformance(),
		"typeBrands":      h.catalog.TypeBrandSplits(),
	})
	if err != nil {
		h.logger.Error("marshal amazon signals", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleWalmart(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	html, err := renderTemplate(proxyTableTemplate, h.catalog.TopProxy(maxProxy))
	if err != nil {
		h.logger.Error("render proxy table", "error", err)
		return
	}
	sse.PatchElements(html)

	jsonData, err := json.Marshal(map[string]any{
		"walmartOverview": h.catalog.WalmartOverview(),
		"typeCounts":      h.catalog.TypeCounts(),
		"packSizes":       h.catalog.PackSizes(maxPackSizes),
		"privateLabel":    h.catalog.PrivateLabel(),
	})
	if err != nil {
		h.logger.Error("marshal walmart signals", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleCompare(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	jsonData, err := json.Marshal(map[string]any{
		"priceComparison": h.catalog.PriceComparison(maxComparisons),
	})
	if err != nil {
		h.logger.Error("marshal comparison signals", "error", err)
		return
	}
	sse.PatchSignals(jsonData)
	sse.PatchElements(`<div id="compare-content">Price comparison loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	velocityHTML, err := renderTemplate(velocityTableTemplate, h.catalog.TopVelocity(maxVelocity))
	if err != nil {
		h.logger.Error("render velocity table", "error", err)
		return
	}
	sse.PatchElements(velocityHTML)

	proxyHTML, err := renderTemplate(proxyTableTemplate, h.catalog.TopProxy(maxProxy))
	if err != nil {
		h.logger.Error("render proxy table", "error", err)
		return
	}
	sse.PatchElements(proxyHTML)

	allSignals, err := json.Marshal(map[string]any{
		"overview":        h.catalog.Overview(),
		"brandRevenue":    h.catalog.BrandRevenue(maxBrands),
		"parentShare":     h.catalog.ParentShare(maxParents),
		"typePerformance": h.catalog.TypePerformance(),
		"typeBrands":      h.catalog.TypeBrandSplits(),
		"walmartOverview": h.catalog.WalmartOverview(),
		"typeCounts":      h.catalog.TypeCounts(),
		"packSizes":       h.catalog.PackSizes(maxPackSizes),
		"privateLabel":    h.catalog.PrivateLabel(),
		"priceComparison": h.catalog.PriceComparison(maxComparisons),
	})
	if err != nil {
		h.logger.Error("marshal refresh signals", "error", err)
		return
	}
	sse.PatchSignals(allSignals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
