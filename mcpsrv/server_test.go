package mcpsrv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/qyinm/offtui/browse"
	"github.com/qyinm/offtui/config"
	"github.com/qyinm/offtui/offapi"
	"github.com/qyinm/offtui/types"
	"go.uber.org/zap"
)

type fakeSource struct {
	mu             sync.Mutex
	products       []types.Product
	categories     []types.Category
	categoryCalls  int
	searchCalls    []types.SearchQuery
	categoryLookup []string
	failCategories bool
	failList       bool
	failDetail     bool
}

func newFakeSource() *fakeSource {
	categories := []types.Category{
		types.NewCategory("en:beverages", "Beverages", 12000),
		types.NewCategory("en:plant-based-beverages", "Plant-based beverages", 4000),
		types.NewCategory("en:snacks", "Snacks", 9000),
	}
	for i := 0; i < 27; i++ {
		categories = append(categories, types.NewCategory(fmt.Sprintf("en:filler-%02d", i), fmt.Sprintf("Filler %02d", i), i))
	}
	return &fakeSource{
		products: []types.Product{
			types.NewProduct("2", "orange juice", "Beverages", "c", "", "", "Sunny", nil, types.Nutriments{}),
			types.NewProduct("1", "Apple juice", "Beverages", "b", "", "", "Orchard", nil, types.Nutriments{}),
		},
		categories: categories,
	}
}

func (f *fakeSource) Categories(context.Context) ([]types.Category, error) {
	f.mu.Lock()
	f.categoryCalls++
	f.mu.Unlock()
	if f.failCategories {
		return nil, errors.New("upstream categories error")
	}
	return f.categories, nil
}

func (f *fakeSource) SearchProducts(_ context.Context, q types.SearchQuery) (types.ProductPage, error) {
	f.mu.Lock()
	f.searchCalls = append(f.searchCalls, q)
	f.mu.Unlock()
	if f.failList {
		return types.ProductPage{}, errors.New("upstream search error")
	}
	return types.ProductPage{Products: f.products, Count: 45, Page: q.Page}, nil
}

func (f *fakeSource) CategoryProducts(_ context.Context, id string, page int) (types.ProductPage, error) {
	f.mu.Lock()
	f.categoryLookup = append(f.categoryLookup, id)
	f.mu.Unlock()
	if f.failList {
		return types.ProductPage{}, errors.New("upstream category error")
	}
	return types.ProductPage{Products: f.products, Count: len(f.products), Page: page}, nil
}

func (f *fakeSource) GetProduct(_ context.Context, barcode string) (types.Product, error) {
	if f.failDetail {
		return types.Product{}, errors.New("upstream detail error")
	}
	for _, p := range f.products {
		if p.Code() == barcode {
			return p, nil
		}
	}
	return types.Product{}, offapi.ErrProductNotFound
}

func newTestTools(source types.ProductSource) *toolSet {
	return &toolSet{
		source:     source,
		categories: &browse.Categories{},
		opts:       browse.DefaultOptions(),
		logger:     zap.NewNop(),
	}
}

func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	if tc, ok := r.Content[0].(*mcp.TextContent); ok {
		return tc.Text
	}
	return ""
}

func TestToolCategoryListPaging(t *testing.T) {
	src := newFakeSource()
	_, out, err := newTestTools(src).categoryList(context.Background(), nil, categoryListArgs{Offset: 0, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Total != len(src.categories) {
		t.Fatalf("unexpected total: got %d want %d", out.Total, len(src.categories))
	}
	if len(out.Items) != 10 {
		t.Fatalf("unexpected items len: %d", len(out.Items))
	}
	if out.NextOffset != 10 || !out.HasMore {
		t.Fatalf("unexpected next offset: %d", out.NextOffset)
	}

	_, last, _ := newTestTools(src).categoryList(context.Background(), nil, categoryListArgs{Offset: 25, Limit: 10})
	if len(last.Items) != 5 || last.HasMore || last.NextOffset != -1 {
		t.Fatalf("unexpected last page: items=%d has_more=%v next=%d", len(last.Items), last.HasMore, last.NextOffset)
	}
}

func TestToolCategoryListQuery(t *testing.T) {
	_, out, err := newTestTools(newFakeSource()).categoryList(context.Background(), nil, categoryListArgs{Query: "bever"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Total != 2 {
		t.Fatalf("expected 2 beverage categories, got %d", out.Total)
	}
	for _, c := range out.Items {
		if !strings.Contains(c.ID, "beverages") {
			t.Fatalf("unexpected match %q", c.ID)
		}
	}
}

func TestToolCategoryListLoadsOnce(t *testing.T) {
	src := newFakeSource()
	tools := newTestTools(src)
	for i := 0; i < 3; i++ {
		if r, _, _ := tools.categoryList(context.Background(), nil, categoryListArgs{}); r != nil && r.IsError {
			t.Fatalf("unexpected tool error")
		}
	}
	if src.categoryCalls != 1 {
		t.Fatalf("categories fetched %d times, want 1", src.categoryCalls)
	}
}

func TestToolCategoryListRetriesAfterFailure(t *testing.T) {
	src := newFakeSource()
	src.failCategories = true
	tools := newTestTools(src)

	if r, _, _ := tools.categoryList(context.Background(), nil, categoryListArgs{}); r == nil || !r.IsError {
		t.Fatalf("expected IsError while categories are down")
	}
	src.failCategories = false
	r, out, err := tools.categoryList(context.Background(), nil, categoryListArgs{})
	if err != nil || (r != nil && r.IsError) {
		t.Fatalf("unexpected failure after recovery: %v %v", r, err)
	}
	if out.Total != len(src.categories) {
		t.Fatalf("total = %d, want %d", out.Total, len(src.categories))
	}
	if src.categoryCalls != 2 {
		t.Fatalf("categories fetched %d times, want 2", src.categoryCalls)
	}
}

func TestToolProductSearchInvalidArgs(t *testing.T) {
	tools := newTestTools(newFakeSource())
	cases := []productSearchArgs{
		{Sort: "popularity"},
		{Sort: "name", Direction: "sideways"},
		{Page: -1},
	}
	for _, args := range cases {
		result, _, err := tools.productSearch(context.Background(), nil, args)
		if err != nil {
			t.Fatalf("unexpected handler error: %v", err)
		}
		if result == nil || !result.IsError {
			t.Fatalf("expected IsError for %+v", args)
		}
	}
}

func TestToolProductSearchSortsPage(t *testing.T) {
	src := newFakeSource()
	result, out, err := newTestTools(src).productSearch(context.Background(), nil, productSearchArgs{Term: " juice ", Sort: "name", Page: 2})
	if err != nil || result != nil {
		t.Fatalf("unexpected result: %v %v", result, err)
	}
	if len(src.searchCalls) != 1 || src.searchCalls[0].Term != "juice" || src.searchCalls[0].Page != 2 {
		t.Fatalf("unexpected search calls: %+v", src.searchCalls)
	}
	if out.ItemsCount != 2 || out.Items[0].Name != "Apple juice" {
		t.Fatalf("expected name-sorted items, got %+v", out.Items)
	}
	if out.Page.Total != 3 || out.Page.Current != 2 || !out.Page.HasPrev || !out.Page.HasNext {
		t.Fatalf("unexpected page: %+v", out.Page)
	}
	if out.Query.Sort != "name" || out.Query.Direction != "asc" {
		t.Fatalf("unexpected query echo: %+v", out.Query)
	}
}

func TestToolProductSearchPastLastPage(t *testing.T) {
	src := newFakeSource()
	result, out, err := newTestTools(src).productSearch(context.Background(), nil, productSearchArgs{Term: "juice", Page: 4})
	if err != nil || result != nil {
		t.Fatalf("unexpected result: %v %v", result, err)
	}
	if out.Page.Current != 3 || out.Page.Total != 3 || out.Page.HasNext || !out.Page.HasPrev {
		t.Fatalf("expected last page, got %+v", out.Page)
	}
	if len(src.searchCalls) != 2 || src.searchCalls[0].Page != 4 || src.searchCalls[1].Page != 3 {
		t.Fatalf("unexpected search calls: %+v", src.searchCalls)
	}
}

func TestToolProductSearchCategoryPrecedence(t *testing.T) {
	src := newFakeSource()
	_, out, _ := newTestTools(src).productSearch(context.Background(), nil, productSearchArgs{Term: "cola", Category: "en:beverages"})
	if len(src.searchCalls) != 0 {
		t.Fatalf("category must take precedence over the term, got searches %+v", src.searchCalls)
	}
	if len(src.categoryLookup) != 1 || src.categoryLookup[0] != "en:beverages" {
		t.Fatalf("unexpected category lookups: %v", src.categoryLookup)
	}
	if out.Query.Term != "cola" || out.Query.Category != "en:beverages" {
		t.Fatalf("query echo lost fields: %+v", out.Query)
	}
}

func TestToolProductGetDetail(t *testing.T) {
	tools := newTestTools(newFakeSource())

	result, out, err := tools.productGetDetail(context.Background(), nil, productGetDetailArgs{Barcode: "1"})
	if err != nil || result != nil {
		t.Fatalf("unexpected result: %v %v", result, err)
	}
	if out.Item.Name != "Apple juice" || out.Item.NutritionGrade != "B" {
		t.Fatalf("unexpected detail: %+v", out.Item)
	}

	result, _, _ = tools.productGetDetail(context.Background(), nil, productGetDetailArgs{Barcode: "  "})
	if result == nil || !result.IsError {
		t.Fatalf("expected IsError for empty barcode")
	}

	result, _, _ = tools.productGetDetail(context.Background(), nil, productGetDetailArgs{Barcode: "999"})
	if result == nil || !result.IsError || resultText(result) != browse.NotFoundMessage {
		t.Fatalf("expected not-found message, got %q", resultText(result))
	}
}

func TestToolUpstreamFailuresIsError(t *testing.T) {
	f1 := newFakeSource()
	f1.failCategories = true
	r1, _, _ := newTestTools(f1).categoryList(context.Background(), nil, categoryListArgs{})
	if r1 == nil || !r1.IsError {
		t.Fatalf("category failure must return IsError")
	}

	f2 := newFakeSource()
	f2.failList = true
	r2, _, _ := newTestTools(f2).productSearch(context.Background(), nil, productSearchArgs{Term: "juice"})
	if r2 == nil || !r2.IsError {
		t.Fatalf("search failure must return IsError")
	}

	f3 := newFakeSource()
	f3.failDetail = true
	r3, _, _ := newTestTools(f3).productGetDetail(context.Background(), nil, productGetDetailArgs{Barcode: "1"})
	if r3 == nil || !r3.IsError || resultText(r3) != "fetch product detail failed" {
		t.Fatalf("detail failure must return IsError")
	}
}

func TestAuthMiddleware(t *testing.T) {
	srv := startTestServer(newFakeSource(), Config{APIKey: "secret", RPS: 100, Burst: 100}, nil)
	defer srv.Close()

	resp, err := postInitialize(srv.URL+"/mcp", nil)
	if err != nil {
		t.Fatalf("initialize request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAuthMiddlewareSuccess(t *testing.T) {
	srv := startTestServer(newFakeSource(), Config{APIKey: "secret", RPS: 100, Burst: 100}, nil)
	defer srv.Close()

	headers := map[string]string{"Authorization": "Bearer secret"}
	resp, err := postInitialize(srv.URL+"/mcp", headers)
	if err != nil {
		t.Fatalf("initialize request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAuthMiddlewareXAPIKeySuccess(t *testing.T) {
	srv := startTestServer(newFakeSource(), Config{APIKey: "secret", RPS: 100, Burst: 100}, nil)
	defer srv.Close()

	headers := map[string]string{"X-API-Key": "secret"}
	resp, err := postInitialize(srv.URL+"/mcp", headers)
	if err != nil {
		t.Fatalf("initialize request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAuthMiddlewareMalformedBearer(t *testing.T) {
	srv := startTestServer(newFakeSource(), Config{APIKey: "secret", RPS: 100, Burst: 100}, nil)
	defer srv.Close()

	headers := map[string]string{"Authorization": "Bearer"}
	resp, err := postInitialize(srv.URL+"/mcp", headers)
	if err != nil {
		t.Fatalf("initialize request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestOriginAllowlistMiddleware(t *testing.T) {
	srv := startTestServer(newFakeSource(), Config{RPS: 100, Burst: 100}, nil)
	defer srv.Close()

	headers := map[string]string{"Origin": "https://evil.example"}
	resp, err := postInitialize(srv.URL+"/mcp", headers)
	if err != nil {
		t.Fatalf("initialize request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestOriginAllowlistMiddlewareAllowed(t *testing.T) {
	srv := startTestServer(newFakeSource(), Config{AllowedOrigins: []string{"https://app.example"}, RPS: 100, Burst: 100}, nil)
	defer srv.Close()

	headers := map[string]string{"Origin": "https://app.example"}
	resp, err := postInitialize(srv.URL+"/mcp", headers)
	if err != nil {
		t.Fatalf("initialize request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestOriginAllowlistPreflight(t *testing.T) {
	srv := startTestServer(newFakeSource(), Config{AllowedOrigins: []string{"https://app.example"}, RPS: 100, Burst: 100}, nil)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/mcp", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	srv := startTestServer(newFakeSource(), Config{RPS: 1, Burst: 1}, nil)
	defer srv.Close()

	resp1, err := postInitialize(srv.URL+"/mcp", nil)
	if err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	defer resp1.Body.Close()
	if resp1.StatusCode != http.StatusOK {
		t.Fatalf("expected first request 200, got %d", resp1.StatusCode)
	}

	resp2, err := postInitialize(srv.URL+"/mcp", nil)
	if err != nil {
		t.Fatalf("second request failed: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected second request 429, got %d", resp2.StatusCode)
	}
}

func TestRateLimitRefill(t *testing.T) {
	srv := startTestServer(newFakeSource(), Config{RPS: 20, Burst: 1}, nil)
	defer srv.Close()

	resp1, err := postInitialize(srv.URL+"/mcp", nil)
	if err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	resp1.Body.Close()

	resp2, err := postInitialize(srv.URL+"/mcp", nil)
	if err != nil {
		t.Fatalf("second request failed: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected second request 429, got %d", resp2.StatusCode)
	}

	time.Sleep(60 * time.Millisecond)
	resp3, err := postInitialize(srv.URL+"/mcp", nil)
	if err != nil {
		t.Fatalf("third request failed: %v", err)
	}
	defer resp3.Body.Close()
	if resp3.StatusCode != http.StatusOK {
		t.Fatalf("expected third request 200 after refill, got %d", resp3.StatusCode)
	}
}

func TestHealthzBypassesMiddleware(t *testing.T) {
	srv := startTestServer(newFakeSource(), Config{APIKey: "secret", RPS: 1, Burst: 1}, nil)
	defer srv.Close()

	for i := 0; i < 3; i++ {
		resp, err := http.Get(srv.URL + "/healthz")
		if err != nil {
			t.Fatalf("healthz request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
	}
}

func TestStatelessGetMethod(t *testing.T) {
	handler := NewHandler(NewServer(newFakeSource(), "dev", nil), StreamableOptions(Config{Stateless: true}))
	srv := httptest.NewServer(handler)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func TestMCPListTools(t *testing.T) {
	ctx := context.Background()
	srv := startTestServer(newFakeSource(), Config{}, nil)
	defer srv.Close()

	session := connectTestClient(t, ctx, srv.URL+"/mcp")
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	for _, name := range []string{"category_list", "product_search", "product_get_detail"} {
		if !containsTool(tools.Tools, name) {
			t.Fatalf("missing tool %q", name)
		}
	}
	if len(tools.Tools) != 3 {
		t.Fatalf("expected exactly 3 tools, got %d", len(tools.Tools))
	}
}

func TestMCPCoreTools(t *testing.T) {
	ctx := context.Background()
	srv := startTestServer(newFakeSource(), Config{}, nil)
	defer srv.Close()

	session := connectTestClient(t, ctx, srv.URL+"/mcp")
	defer session.Close()

	cases := []mcp.CallToolParams{
		{Name: "category_list", Arguments: map[string]any{"offset": 0, "limit": 5}},
		{Name: "product_search", Arguments: map[string]any{"term": "juice", "sort": "grade", "direction": "desc"}},
		{Name: "product_get_detail", Arguments: map[string]any{"barcode": "2"}},
	}

	for _, tc := range cases {
		result, err := session.CallTool(ctx, &tc)
		if err != nil {
			t.Fatalf("call tool %s failed: %v", tc.Name, err)
		}
		if result.IsError {
			t.Fatalf("tool %s returned IsError=true", tc.Name)
		}
	}
}

func TestMCPProductSearchStructuredOutput(t *testing.T) {
	ctx := context.Background()
	srv := startTestServer(newFakeSource(), Config{}, nil)
	defer srv.Close()

	session := connectTestClient(t, ctx, srv.URL+"/mcp")
	defer session.Close()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "product_search",
		Arguments: map[string]any{"term": "juice", "sort": "grade", "direction": "desc"},
	})
	if err != nil {
		t.Fatalf("call product_search: %v", err)
	}
	raw, err := json.Marshal(result.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	var out productSearchOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode structured content: %v", err)
	}
	if out.ItemsCount != 2 || out.Items[0].NutritionGrade != "C" {
		t.Fatalf("expected grade-desc order, got %+v", out.Items)
	}
}

func TestMCPProductGetDetailNotFound(t *testing.T) {
	ctx := context.Background()
	srv := startTestServer(newFakeSource(), Config{}, nil)
	defer srv.Close()

	session := connectTestClient(t, ctx, srv.URL+"/mcp")
	defer session.Close()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "product_get_detail", Arguments: map[string]any{"barcode": "0000"}})
	if err != nil {
		t.Fatalf("call product_get_detail: %v", err)
	}
	if !result.IsError || resultText(result) != browse.NotFoundMessage {
		t.Fatalf("expected not-found tool error, got %q", resultText(result))
	}
}

func TestFromConfigDefaults(t *testing.T) {
	cfg := FromConfig(config.MCPConfig{})
	if cfg.Port != "8081" || cfg.RPS != 2 || cfg.Burst != 5 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func startTestServer(source types.ProductSource, cfg Config, opts *ServerOptions) *httptest.Server {
	if cfg.RPS <= 0 {
		cfg.RPS = 100
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 100
	}
	server := NewServer(source, "test", opts)
	return httptest.NewServer(NewMux(server, cfg))
}

func connectTestClient(t *testing.T, ctx context.Context, endpoint string) *mcp.ClientSession {
	t.Helper()
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: endpoint}, nil)
	if err != nil {
		t.Fatalf("connect client: %v", err)
	}
	return session
}

func containsTool(tools []*mcp.Tool, name string) bool {
	for _, tool := range tools {
		if tool != nil && tool.Name == name {
			return true
		}
	}
	return false
}

func postInitialize(url string, headers map[string]string) (*http.Response, error) {
	payload := map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": "2025-06-18",
			"capabilities":    map[string]any{},
			"clientInfo": map[string]any{
				"name":    "test",
				"version": "1",
			},
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(string(b)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return http.DefaultClient.Do(req)
}
