// Package templates holds the dashboard page components.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1"/>
<title>Soda Category Intelligence</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 0; background: #f6f7f9; color: #1f2933; }
header { text-align: center; padding: 24px 16px 8px; }
header h1 { color: #1e3a8a; margin: 0; }
header p { color: #666; margin: 4px 0 0; }
.tabs { display: flex; gap: 8px; justify-content: center; margin: 16px 0; }
.tabs button { padding: 10px 20px; border: 0; border-radius: 10px 10px 0 0; background: #f0f2f6; font-weight: 600; cursor: pointer; }
.tabs button.active { background: #ff4b4b; color: white; }
.panel { max-width: 1100px; margin: 0 auto 32px; padding: 16px; background: white; border-radius: 10px; }
.modern-table { width: 100%; border-collapse: collapse; }
.modern-table th, .modern-table td { padding: 8px 12px; text-align: left; border-bottom: 1px solid #e4e7eb; }
.type-badge { padding: 2px 8px; border-radius: 4px; color: white; font-size: 12px; }
.type-Traditional { background: #e63946; }
.type-Diet { background: #06a8b5; }
.type-Modern { background: #06d6a0; }
</style>
</head>
<body data-signals="{tab: 'overview'}">
<header>
<h1>Soda Category Intelligence</h1>
<p>Amazon &amp; Walmart market analysis</p>
</header>
<nav class="tabs">
<button data-on-click="$tab = 'overview'" data-attr-class="$tab == 'overview' ? 'active' : ''">Overview</button>
<button data-on-click="$tab = 'amazon'" data-attr-class="$tab == 'amazon' ? 'active' : ''">Amazon</button>
<button data-on-click="$tab = 'walmart'" data-attr-class="$tab == 'walmart' ? 'active' : ''">Walmart</button>
<button data-on-click="$tab = 'compare'" data-attr-class="$tab == 'compare' ? 'active' : ''">Cross-Platform</button>
</nav>
<main>
<section class="panel" data-show="$tab == 'overview'" data-on-load="@get('/sse/overview')">
<div id="overview-content">Loading overview...</div>
</section>
<section class="panel" data-show="$tab == 'amazon'" data-on-load="@get('/sse/amazon')">
<h2>Top Velocity Products</h2>
<div id="velocity-content">Loading Amazon analysis...</div>
<canvas id="brand-revenue-chart"></canvas>
<h2>Brand Leaders by Soda Type</h2>
<canvas id="type-brands-chart"></canvas>
</section>
<section class="panel" data-show="$tab == 'walmart'" data-on-load="@get('/sse/walmart')">
<h2>Revenue Proxy Leaders</h2>
<div id="proxy-content">Loading Walmart analysis...</div>
</section>
<section class="panel" data-show="$tab == 'compare'" data-on-load="@get('/sse/compare')">
<h2>Price Comparison: Amazon vs Walmart</h2>
<div id="compare-content">Loading price comparison...</div>
<canvas id="price-comparison-chart"></canvas>
</section>
</main>
</body>
</html>`

// Dashboard renders the tabbed dashboard shell. Panel contents arrive via
// the datastar SSE endpoints once a tab loads.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, dashboardHTML)
		return err
	})
}
