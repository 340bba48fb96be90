package catalog

import "github.com/prometheus/client_golang/prometheus"

// Collector exposes catalog sizes per derived view. Values are read at scrape
// time, so they never lag behind mutations.
type Collector struct {
	store    *Store
	products *prometheus.Desc
}

func NewCollector(store *Store) *Collector {
	return &Collector{
		store: store,
		products: prometheus.NewDesc(
			"catalog_products",
			"Number of products in a catalog view",
			[]string{"view"}, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.products
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	views := []struct {
		name  string
		count int
	}{
		{"all", c.store.Len()},
		{"featured", len(c.store.Featured())},
		{"new", len(c.store.NewArrivals())},
	}
	for _, v := range views {
		ch <- prometheus.MustNewConstMetric(c.products, prometheus.GaugeValue, float64(v.count), v.name)
	}
}
