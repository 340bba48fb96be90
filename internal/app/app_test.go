package app_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"Storefront/internal/app"
	"Storefront/internal/auth"
	"Storefront/internal/catalog"
)

const (
	adminUser = "admin"
	adminPass = "sneakerparadise2025"
	orderURL  = "https://instagram.com/sneakerparadise"
)

type fixture struct {
	ts    *httptest.Server
	store *catalog.Store
}

func newStorefrontTS(t *testing.T, reg *prometheus.Registry, metricsToken string) fixture {
	t.Helper()

	store := catalog.NewStore()
	store.Seed(catalog.SampleProducts())

	gate, err := auth.NewGate(adminUser, adminPass)
	if err != nil {
		t.Fatalf("auth.NewGate: %v", err)
	}

	h := app.NewHandler(app.Deps{
		Store:      store,
		Gate:       gate,
		JWT:        auth.NewTokenMaker("test-secret"),
		SessionTTL: time.Hour,
		OrderURL:   orderURL,
	}, app.HTTPDeps{
		Log:            zap.NewNop(),
		Service:        "storefront",
		Registry:       reg,
		MetricsEnabled: reg != nil,
		MetricsToken:   metricsToken,
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return fixture{ts: ts, store: store}
}

func doJSON(t *testing.T, c *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func decodeProducts(t *testing.T, raw []byte) []string {
	t.Helper()

	var products []catalog.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		t.Fatalf("decode products: %v body=%s", err, string(raw))
	}
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}

func expectIDs(t *testing.T, got []string, want ...string) {
	t.Helper()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("ids=%v want=%v", got, want)
	}
}

func bearer(tok string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + tok}
}

func login(t *testing.T, c *http.Client, baseURL, user, pass string) (int, string) {
	t.Helper()

	resp, raw := doJSON(t, c, http.MethodPost, baseURL+"/admin/login", map[string]any{
		"username": user,
		"password": pass,
	}, nil)

	var lr struct {
		AccessToken string `json:"access_token"`
	}
	if resp.StatusCode == http.StatusOK {
		if err := json.Unmarshal(raw, &lr); err != nil {
			t.Fatalf("decode login: %v body=%s", err, string(raw))
		}
	}
	return resp.StatusCode, lr.AccessToken
}

func TestStorefront_ShopperBrowsing(t *testing.T) {
	f := newStorefrontTS(t, nil, "")
	c := &http.Client{}
	base := f.ts.URL

	cases := []struct {
		path string
		want []string
	}{
		{"/products", []string{"1", "2", "3", "4", "5", "6"}},
		{"/products?category=Running", []string{"1", "3", "6"}},
		{"/products?category=running", []string{}},
		{"/products?brand=WildPath", []string{"5"}},
		{"/products?min_price=150&max_price=180", []string{"3", "5"}},
		{"/products?q=LIGHTWEIGHT", []string{"2", "6"}},
		{"/products?collection=featured&category=Casual", []string{"2", "4"}},
		{"/products?collection=new&q=trail", []string{"5"}},
		{"/products/featured", []string{"1", "2", "4", "6"}},
		{"/products/new", []string{"2", "3", "5"}},
		{"/products/6/related", []string{"1", "3"}},
	}
	for _, tc := range cases {
		resp, raw := doJSON(t, c, http.MethodGet, base+tc.path, nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s status=%d body=%s", tc.path, resp.StatusCode, string(raw))
		}
		expectIDs(t, decodeProducts(t, raw), tc.want...)
	}

	for _, path := range []string{
		"/products?min_price=abc",
		"/products?max_price=-1",
		"/products?max_price=NaN",
		"/products?min_price=Inf",
		"/products?min_price=-Inf",
		"/products?collection=sale",
	} {
		resp, raw := doJSON(t, c, http.MethodGet, base+path, nil, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s status=%d body=%s", path, resp.StatusCode, string(raw))
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodGet, base+"/products/3", nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("get status=%d body=%s", resp.StatusCode, string(raw))
		}
		var p catalog.Product
		if err := json.Unmarshal(raw, &p); err != nil {
			t.Fatalf("decode product: %v", err)
		}
		if p.Name != "Horizon Boost" || !p.NewArrival || p.Featured {
			t.Fatalf("unexpected product: %+v", p)
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodGet, base+"/products/nope", nil, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("missing product status=%d body=%s", resp.StatusCode, string(raw))
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodGet, base+"/facets", nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("facets status=%d", resp.StatusCode)
		}
		var facets catalog.Facets
		if err := json.Unmarshal(raw, &facets); err != nil {
			t.Fatalf("decode facets: %v", err)
		}
		if strings.Join(facets.Categories, ",") != "Running,Casual,Hiking" || facets.PriceRange.Max != 300 {
			t.Fatalf("facets=%+v", facets)
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodGet, base+"/collections/running", nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("collection status=%d", resp.StatusCode)
		}
		var col catalog.Collection
		if err := json.Unmarshal(raw, &col); err != nil {
			t.Fatalf("decode collection: %v", err)
		}
		if col.Title != "Running Sneakers" || len(col.Products) != 3 {
			t.Fatalf("collection=%+v", col)
		}
	}
}

func TestStorefront_AdminRequiresSession(t *testing.T) {
	f := newStorefrontTS(t, nil, "")
	c := &http.Client{}
	base := f.ts.URL

	resp, _ := doJSON(t, c, http.MethodDelete, base+"/admin/products/1", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token status=%d", resp.StatusCode)
	}

	resp, _ = doJSON(t, c, http.MethodDelete, base+"/admin/products/1", nil, bearer("garbage"))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token status=%d", resp.StatusCode)
	}

	if code, _ := login(t, c, base, adminUser, "wrong"); code != http.StatusUnauthorized {
		t.Fatalf("wrong password status=%d", code)
	}

	resp, raw := doJSON(t, c, http.MethodGet, base+"/admin/session", nil, nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(raw), `"authenticated":false`) {
		t.Fatalf("session status=%d body=%s", resp.StatusCode, string(raw))
	}

	if f.store.Len() != 6 {
		t.Fatalf("catalog changed without a session: %d", f.store.Len())
	}
}

func TestStorefront_LogoutNeedsTheSessionToken(t *testing.T) {
	f := newStorefrontTS(t, nil, "")
	c := &http.Client{}
	base := f.ts.URL

	code, tok := login(t, c, base, adminUser, adminPass)
	if code != http.StatusOK {
		t.Fatalf("login status=%d", code)
	}

	for _, headers := range []map[string]string{nil, bearer("garbage")} {
		resp, _ := doJSON(t, c, http.MethodPost, base+"/admin/logout", nil, headers)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("logout with %v status=%d", headers, resp.StatusCode)
		}
	}

	resp, raw := doJSON(t, c, http.MethodGet, base+"/admin/session", nil, nil)
	if !strings.Contains(string(raw), `"authenticated":true`) {
		t.Fatalf("session closed by anonymous logout: %s", string(raw))
	}
	resp, _ = doJSON(t, c, http.MethodGet, base+"/admin/products", nil, bearer(tok))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("token revoked by anonymous logout: %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, c, http.MethodPost, base+"/admin/logout", nil, bearer(tok))
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout status=%d", resp.StatusCode)
	}
	resp, _ = doJSON(t, c, http.MethodPost, base+"/admin/logout", nil, bearer(tok))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("second logout status=%d", resp.StatusCode)
	}
}

func TestStorefront_AdminLifecycle(t *testing.T) {
	f := newStorefrontTS(t, nil, "")
	c := &http.Client{}
	base := f.ts.URL

	code, tok := login(t, c, base, adminUser, adminPass)
	if code != http.StatusOK || tok == "" {
		t.Fatalf("login status=%d token=%q", code, tok)
	}

	draft := map[string]any{
		"id":             "chosen-by-caller",
		"name":           "Street Glide",
		"brand":          "SkyWalk",
		"price":          119.5,
		"description":    "Everyday runner.",
		"images":         []string{"https://example.com/1.jpeg"},
		"category":       "Casual",
		"featured":       true,
		"newArrival":     false,
		"availableSizes": []float64{10, 8, 9},
		"colors":         []string{"Red"},
	}

	var created catalog.Product
	{
		resp, raw := doJSON(t, c, http.MethodPost, base+"/admin/products", draft, bearer(tok))
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create status=%d body=%s", resp.StatusCode, string(raw))
		}
		if err := json.Unmarshal(raw, &created); err != nil {
			t.Fatalf("decode created: %v", err)
		}
		if created.ID == "" || created.ID == "chosen-by-caller" {
			t.Fatalf("id=%q", created.ID)
		}
		if created.CreatedAt == "" {
			t.Fatalf("createdAt not stamped")
		}
		if len(created.AvailableSizes) != 3 || created.AvailableSizes[0] != 8 {
			t.Fatalf("sizes=%v", created.AvailableSizes)
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodGet, base+"/products/featured", nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("featured status=%d", resp.StatusCode)
		}
		expectIDs(t, decodeProducts(t, raw), "1", "2", "4", "6", created.ID)
	}

	{
		bad := map[string]any{"name": "", "price": 0, "images": []string{"nope"}}
		resp, raw := doJSON(t, c, http.MethodPost, base+"/admin/products", bad, bearer(tok))
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("invalid create status=%d body=%s", resp.StatusCode, string(raw))
		}
		if !strings.Contains(string(raw), `"image-0":"Invalid URL format"`) {
			t.Fatalf("validation details missing: %s", string(raw))
		}
		if f.store.Len() != 7 {
			t.Fatalf("invalid draft reached the store: %d", f.store.Len())
		}
	}

	{
		draft["price"] = 99.0
		draft["featured"] = false
		resp, raw := doJSON(t, c, http.MethodPut, base+"/admin/products/"+created.ID, draft, bearer(tok))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("update status=%d body=%s", resp.StatusCode, string(raw))
		}
		var updated catalog.Product
		if err := json.Unmarshal(raw, &updated); err != nil {
			t.Fatalf("decode updated: %v", err)
		}
		if updated.ID != created.ID || updated.Price != 99 || updated.CreatedAt != created.CreatedAt {
			t.Fatalf("updated=%+v", updated)
		}

		list := f.store.List()
		if list[len(list)-1].ID != created.ID {
			t.Fatalf("update moved the product")
		}
	}

	{
		resp, _ := doJSON(t, c, http.MethodPut, base+"/admin/products/missing", draft, bearer(tok))
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("update missing status=%d", resp.StatusCode)
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodGet, base+"/admin/products?q=hiking", nil, bearer(tok))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("admin list status=%d", resp.StatusCode)
		}
		expectIDs(t, decodeProducts(t, raw), "5")
	}

	{
		resp, _ := doJSON(t, c, http.MethodDelete, base+"/admin/products/3", nil, bearer(tok))
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("delete status=%d", resp.StatusCode)
		}
		resp, _ = doJSON(t, c, http.MethodDelete, base+"/admin/products/3", nil, bearer(tok))
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("second delete status=%d", resp.StatusCode)
		}
		resp, _ = doJSON(t, c, http.MethodGet, base+"/products/3", nil, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("deleted product still served: %d", resp.StatusCode)
		}
	}

	{
		resp, _ := doJSON(t, c, http.MethodPost, base+"/admin/logout", nil, bearer(tok))
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("logout status=%d", resp.StatusCode)
		}
		resp, _ = doJSON(t, c, http.MethodDelete, base+"/admin/products/1", nil, bearer(tok))
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("token survived logout: %d", resp.StatusCode)
		}
	}

	{
		code, fresh := login(t, c, base, adminUser, adminPass)
		if code != http.StatusOK {
			t.Fatalf("relogin status=%d", code)
		}
		resp, _ := doJSON(t, c, http.MethodDelete, base+"/admin/products/1", nil, bearer(tok))
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("old token accepted after relogin: %d", resp.StatusCode)
		}
		resp, _ = doJSON(t, c, http.MethodDelete, base+"/admin/products/1", nil, bearer(fresh))
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("fresh token delete status=%d", resp.StatusCode)
		}
	}
}

func TestStorefront_OrderRedirect(t *testing.T) {
	f := newStorefrontTS(t, nil, "")
	c := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
	base := f.ts.URL

	resp, _ := doJSON(t, c, http.MethodGet, base+"/products/1/order?size=9.5", nil, nil)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("order status=%d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != orderURL {
		t.Fatalf("location=%q", loc)
	}

	for path, want := range map[string]int{
		"/products/1/order":           http.StatusBadRequest,
		"/products/1/order?size=big":  http.StatusBadRequest,
		"/products/1/order?size=13":   http.StatusBadRequest,
		"/products/zzz/order?size=9":  http.StatusNotFound,
		"/products/5/order?size=11.5": http.StatusSeeOther,
	} {
		resp, raw := doJSON(t, c, http.MethodGet, base+path, nil, nil)
		if resp.StatusCode != want {
			t.Fatalf("%s status=%d want=%d body=%s", path, resp.StatusCode, want, string(raw))
		}
	}
}

func TestStorefront_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := newStorefrontTS(t, reg, "scrape-token")
	c := &http.Client{}
	base := f.ts.URL

	doJSON(t, c, http.MethodGet, base+"/products", nil, nil)
	login(t, c, base, adminUser, "wrong")
	doJSON(t, c, http.MethodGet, base+"/products/zzz/order?size=9", nil, nil)

	resp, _ := doJSON(t, c, http.MethodGet, base+"/metrics", nil, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("unauthenticated scrape status=%d", resp.StatusCode)
	}

	resp, raw := doJSON(t, c, http.MethodGet, base+"/metrics", nil, bearer("scrape-token"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("scrape status=%d", resp.StatusCode)
	}
	body := string(raw)
	for _, want := range []string{
		`catalog_products{view="all"} 6`,
		`catalog_products{view="featured"} 4`,
		`admin_login_attempts_total{result="rejected"} 1`,
		`order_requests_total{result="not_found"} 1`,
		`http_requests_total{method="GET",path="/products",service="storefront",status="200"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %q", want)
		}
	}
}

func TestStorefront_Probes(t *testing.T) {
	f := newStorefrontTS(t, nil, "")
	c := &http.Client{}

	resp, _ := doJSON(t, c, http.MethodGet, f.ts.URL+"/healthz", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status=%d", resp.StatusCode)
	}
	resp, _ = doJSON(t, c, http.MethodGet, f.ts.URL+"/readyz", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz status=%d", resp.StatusCode)
	}

	gate, err := auth.NewGate(adminUser, adminPass)
	if err != nil {
		t.Fatalf("auth.NewGate: %v", err)
	}
	unseeded := httptest.NewServer(app.NewHandler(app.Deps{
		Store: catalog.NewStore(),
		Gate:  gate,
		JWT:   auth.NewTokenMaker("test-secret"),
	}, app.HTTPDeps{Log: zap.NewNop(), Service: "storefront"}))
	t.Cleanup(unseeded.Close)

	resp, _ = doJSON(t, c, http.MethodGet, unseeded.URL+"/readyz", nil, nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("unseeded readyz status=%d", resp.StatusCode)
	}
}
