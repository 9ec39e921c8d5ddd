package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/qyinm/offtui/browse"
	"github.com/qyinm/offtui/mcpsrv/dto"
	"github.com/qyinm/offtui/types"
	"go.uber.org/zap"
)

// Handler serves the browser pages and the JSON endpoints. It keeps no
// per-user state; every request rebuilds its snapshot from the URL.
type Handler struct {
	source     types.ProductSource
	categories *browse.Categories
	opts       browse.Options
	logger     *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(source types.ProductSource, opts browse.Options, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		source:     source,
		categories: &browse.Categories{},
		opts:       opts,
		logger:     logger.Named("web"),
	}
}

type sortLink struct {
	Label string
	Arrow string
	Href  string
}

type indexPage struct {
	View       browse.View
	Categories []types.Category
	Failed     bool
	SortLinks  []sortLink
	PrevHref   string
	NextHref   string
	ClearHref  string
}

type productPage struct {
	Barcode    string
	Found      bool
	Message    string
	Product    types.Product
	Categories []string
	Labels     []string
	Nutrients  []types.NutrientRow
}

// HealthCheck returns the health status of the web server
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "offtui-web",
	})
}

// Index renders one page of the product list. A page past the last one
// redirects to the last page.
func (h *Handler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	s := h.load(c, false)

	if s.Err == nil && s.Query.Page > s.TotalPages {
		last := s
		last.Query.Page = s.TotalPages
		c.Redirect(http.StatusFound, h.href(last))
		return
	}

	categories, err := h.categories.Load(ctx, h.source)
	if err != nil {
		h.logger.Warn("categories unavailable", zap.Error(err))
	}

	c.HTML(http.StatusOK, "index.html", indexPage{
		View:       s.View(),
		Categories: categories,
		Failed:     s.Err != nil,
		SortLinks: []sortLink{
			h.sortLink(s, "Name", browse.SortName),
			h.sortLink(s, "Grade", browse.SortGrade),
		},
		PrevHref:  h.link(s, browse.PreviousPage{}),
		NextHref:  h.link(s, browse.NextPage{}),
		ClearHref: "/",
	})
}

// Product renders the detail page for one barcode. Unknown barcodes
// answer 404 and upstream failures 502, both with the not-found text.
func (h *Handler) Product(c *gin.Context) {
	barcode := strings.TrimSpace(c.Param("barcode"))
	d := browse.LoadDetail(c.Request.Context(), h.source, barcode)

	page := productPage{Barcode: barcode, Message: browse.NotFoundMessage}
	status := http.StatusNotFound
	switch d.Status {
	case browse.DetailLoaded:
		status = http.StatusOK
		page.Found = true
		page.Product = d.Product
		page.Categories = d.Product.CategoryList()
		page.Labels = d.Product.DisplayLabels()
		page.Nutrients = d.Product.Nutriments().Rows()
	case browse.DetailFailed:
		h.logger.Warn("product lookup failed", zap.String("barcode", barcode), zap.Error(d.Err))
		status = http.StatusBadGateway
	}
	c.HTML(status, "product.html", page)
}

// ListProducts returns the same page as Index as JSON. A page past the
// last one answers with the last page.
func (h *Handler) ListProducts(c *gin.Context) {
	s := h.load(c, true)
	if s.Err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "product search failed"})
		return
	}
	c.JSON(http.StatusOK, dto.FromView(s.View()))
}

// ListCategories returns all categories, fuzzy-filtered by ?q=.
func (h *Handler) ListCategories(c *gin.Context) {
	all, err := h.categories.Load(c.Request.Context(), h.source)
	if err != nil {
		h.logger.Warn("categories unavailable", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "fetch categories failed"})
		return
	}
	filtered := browse.FilterCategories(all, c.Query("q"))
	c.JSON(http.StatusOK, gin.H{
		"total": len(filtered),
		"items": dto.FromCategories(filtered),
	})
}

// load runs the request encoded in the URL. With inRange set, a page
// past the last one is replaced by the last page.
func (h *Handler) load(c *gin.Context, inRange bool) browse.State {
	s := browse.StateFromValues(c.Request.URL.Query())
	if inRange {
		s = browse.LoadInRange(c.Request.Context(), h.source, s, h.opts)
	} else {
		s = browse.Load(c.Request.Context(), h.source, s, browse.Refresh{}, h.opts)
	}
	if s.Err != nil {
		h.logger.Warn("product list failed",
			zap.String("term", s.Query.SearchTerm),
			zap.String("category", s.Query.Category),
			zap.Int("page", s.Query.Page),
			zap.Error(s.Err))
	}
	return s
}

// link is the URL of the snapshot that in would produce, or "" when in
// changes nothing.
func (h *Handler) link(s browse.State, in browse.Intent) string {
	next, req := browse.Reduce(s, in, h.opts)
	if req == nil && next.Sort == s.Sort {
		return ""
	}
	return h.href(next)
}

func (h *Handler) sortLink(s browse.State, label string, key browse.SortKey) sortLink {
	return sortLink{
		Label: label,
		Arrow: s.Sort.Arrow(key),
		Href:  h.link(s, browse.ToggleSort{Key: key}),
	}
}

func (h *Handler) href(s browse.State) string {
	if q := s.Values().Encode(); q != "" {
		return "/?" + q
	}
	return "/"
}
