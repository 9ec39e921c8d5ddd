package mcpsrv

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/qyinm/offtui/browse"
	"github.com/qyinm/offtui/mcpsrv/dto"
	"github.com/qyinm/offtui/types"
	"go.uber.org/zap"
)

type categoryListArgs struct {
	Query  string `json:"query,omitempty" jsonschema:"Optional fuzzy filter on category name or id"`
	Offset int    `json:"offset,omitempty" jsonschema:"Optional pagination offset"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Optional page size limit (max 100)"`
}

type productSearchArgs struct {
	Term      string `json:"term,omitempty" jsonschema:"Optional search term; empty lists everything"`
	Category  string `json:"category,omitempty" jsonschema:"Optional category id such as en:beverages"`
	Sort      string `json:"sort,omitempty" jsonschema:"Client-side sort of the page: none, name or grade"`
	Direction string `json:"direction,omitempty" jsonschema:"Sort direction: asc or desc"`
	Page      int    `json:"page,omitempty" jsonschema:"Page number starting at 1"`
}

type productGetDetailArgs struct {
	Barcode string `json:"barcode" jsonschema:"Product barcode"`
}

type categoryListOutput struct {
	Query      string         `json:"query"`
	Offset     int            `json:"offset"`
	Limit      int            `json:"limit"`
	NextOffset int            `json:"next_offset"`
	HasMore    bool           `json:"has_more"`
	Total      int            `json:"total"`
	Items      []dto.Category `json:"items"`
}

type productSearchOutput struct {
	Query      dto.Query     `json:"query"`
	Page       dto.Page      `json:"page"`
	ItemsCount int           `json:"items_count"`
	Items      []dto.Product `json:"items"`
}

type productGetDetailOutput struct {
	Item dto.ProductDetail `json:"item"`
}

type ServerOptions struct {
	Browse browse.Options
	Logger *zap.Logger
}

type toolSet struct {
	source     types.ProductSource
	categories *browse.Categories
	opts       browse.Options
	logger     *zap.Logger
}

func NewServer(source types.ProductSource, version string, opts *ServerOptions) *mcp.Server {
	if strings.TrimSpace(version) == "" {
		version = "dev"
	}
	if opts == nil {
		opts = &ServerOptions{Browse: browse.DefaultOptions()}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tools := &toolSet{
		source:     source,
		categories: &browse.Categories{},
		opts:       opts.Browse,
		logger:     logger.Named("mcp"),
	}

	server := mcp.NewServer(&mcp.Implementation{Name: "offtui", Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "category_list",
		Description: "List Open Food Facts categories, optionally fuzzy-filtered.",
	}, tools.categoryList)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "product_search",
		Description: "Search products by term or category. Returns one page of 20 products.",
	}, tools.productSearch)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "product_get_detail",
		Description: "Get product details by barcode.",
	}, tools.productGetDetail)

	return server
}

func (t *toolSet) categoryList(ctx context.Context, _ *mcp.CallToolRequest, args categoryListArgs) (*mcp.CallToolResult, categoryListOutput, error) {
	all, err := t.categories.Load(ctx, t.source)
	if err != nil {
		t.logger.Warn("category list unavailable", zap.Error(err))
		return errorToolResult("fetch categories failed"), categoryListOutput{}, nil
	}
	filtered := browse.FilterCategories(all, args.Query)

	limit := args.Limit
	if limit <= 0 {
		limit = 25
	}
	if limit > 100 {
		limit = 100
	}
	offset := min(max(args.Offset, 0), len(filtered))
	end := min(offset+limit, len(filtered))

	nextOffset := end
	hasMore := end < len(filtered)
	if !hasMore {
		nextOffset = -1
	}

	return nil, categoryListOutput{
		Query:      args.Query,
		Offset:     offset,
		Limit:      limit,
		NextOffset: nextOffset,
		HasMore:    hasMore,
		Total:      len(filtered),
		Items:      dto.FromCategories(filtered[offset:end]),
	}, nil
}

func (t *toolSet) productSearch(ctx context.Context, _ *mcp.CallToolRequest, args productSearchArgs) (*mcp.CallToolResult, productSearchOutput, error) {
	sortKey, err := browse.ParseSortKey(args.Sort)
	if err != nil {
		return errorToolResult(err.Error()), productSearchOutput{}, nil
	}
	dir, err := browse.ParseDirection(args.Direction)
	if err != nil {
		return errorToolResult(err.Error()), productSearchOutput{}, nil
	}
	page := args.Page
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return errorToolResult("page must be at least 1"), productSearchOutput{}, nil
	}

	s := browse.NewState()
	s.Query = browse.Query{
		SearchTerm: strings.TrimSpace(args.Term),
		Category:   strings.TrimSpace(args.Category),
		Page:       page,
	}
	s.Sort = browse.SortSpec{Key: sortKey, Dir: dir}

	s = browse.LoadInRange(ctx, t.source, s, t.opts)
	if s.Err != nil {
		t.logger.Warn("product search failed",
			zap.String("term", s.Query.SearchTerm),
			zap.String("category", s.Query.Category),
			zap.Int("page", page),
			zap.Error(s.Err))
		return errorToolResult("product search failed"), productSearchOutput{}, nil
	}

	list := dto.FromView(s.View())
	return nil, productSearchOutput{
		Query:      list.Query,
		Page:       list.Page,
		ItemsCount: len(list.Items),
		Items:      list.Items,
	}, nil
}

func (t *toolSet) productGetDetail(ctx context.Context, _ *mcp.CallToolRequest, args productGetDetailArgs) (*mcp.CallToolResult, productGetDetailOutput, error) {
	barcode := strings.TrimSpace(args.Barcode)
	if barcode == "" {
		return errorToolResult("barcode is required"), productGetDetailOutput{}, nil
	}

	d := browse.LoadDetail(ctx, t.source, barcode)
	switch d.Status {
	case browse.DetailLoaded:
		return nil, productGetDetailOutput{Item: dto.FromProductDetail(d.Product)}, nil
	case browse.DetailFailed:
		t.logger.Warn("product lookup failed", zap.String("barcode", barcode), zap.Error(d.Err))
		return errorToolResult("fetch product detail failed"), productGetDetailOutput{}, nil
	default:
		return errorToolResult(browse.NotFoundMessage), productGetDetailOutput{}, nil
	}
}

func errorToolResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}
