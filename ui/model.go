package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/qyinm/offtui/browse"
	"github.com/qyinm/offtui/types"
	"go.uber.org/zap"
)

// ViewState represents the current view mode
type ViewState int

const (
	ListView ViewState = iota
	CategoryView
	DetailView
)

const allCategoriesName = "All categories"

// Model is the main TUI model
type Model struct {
	ctx    context.Context
	source types.ProductSource
	opts   browse.Options
	logger *zap.Logger

	state   browse.State
	pending *browse.Request

	categories    *browse.Categories
	categoriesErr error

	detail   browse.Detail
	detailID int

	list      list.Model
	picker    list.Model
	search    textinput.Model
	searching bool
	viewport  viewport.Model
	spinner   spinner.Model
	help      help.Model
	renderer  *glamour.TermRenderer
	keys      keyMap
	view      ViewState
	width     int
	height    int
	statusMsg string
}

// NewModel creates a new Model browsing source. The first page is
// requested by Init.
func NewModel(ctx context.Context, source types.ProductSource, opts browse.Options, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	l := list.New([]list.Item{}, ProductDelegate{}, 0, 0)
	l.Title = "Open Food Facts"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = TitleStyle

	picker := list.New([]list.Item{categoryItem{types.NewCategory("", allCategoriesName, 0)}}, newCategoryDelegate(), 0, 0)
	picker.Title = "Categories"
	picker.SetShowHelp(false)
	picker.DisableQuitKeybindings()
	picker.Styles.Title = TitleStyle

	ti := textinput.New()
	ti.Placeholder = "Search products (enter to submit, esc to cancel)"
	ti.Prompt = "/ "
	ti.PromptStyle = SearchPromptStyle
	ti.CharLimit = 200

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(DraculaPink)

	state, req := browse.Reduce(browse.NewState(), browse.Refresh{}, opts)

	return Model{
		ctx:        ctx,
		source:     source,
		opts:       opts,
		logger:     logger.Named("ui"),
		state:      state,
		pending:    req,
		categories: &browse.Categories{},
		list:       l,
		picker:     picker,
		search:     ti,
		viewport:   viewport.New(0, 0),
		spinner:    s,
		help:       help.New(),
		renderer:   newRenderer(80),
		keys:       keys,
		view:       ListView,
		statusMsg:  "Loading…",
	}
}

// Init starts the first list request and the category load
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, loadCategories(m.ctx, m.categories, m.source)}
	if m.pending != nil {
		cmds = append(cmds, fetchPage(m.ctx, m.source, *m.pending))
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizePanes()
		return m, nil

	case spinner.TickMsg:
		if !m.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case listLoadedMsg:
		m.handleListLoaded(msg)
		return m, nil

	case categoriesMsg:
		cmd := m.handleCategories(msg)
		return m, cmd

	case detailMsg:
		m.handleDetail(msg)
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.view {
		case CategoryView:
			return m.handlePickerKey(msg)
		case DetailView:
			return m.handleDetailKey(msg)
		default:
			return m.handleListKey(msg)
		}
	}

	var cmd tea.Cmd
	switch m.view {
	case CategoryView:
		m.picker, cmd = m.picker.Update(msg)
	case DetailView:
		m.viewport, cmd = m.viewport.Update(msg)
	default:
		if m.searching {
			m.search, cmd = m.search.Update(msg)
		} else {
			m.list, cmd = m.list.Update(msg)
		}
	}
	return m, cmd
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.Type {
		case tea.KeyEnter:
			m.searching = false
			m.search.Blur()
			cmd := m.apply(browse.SetSearchTerm{Term: strings.TrimSpace(m.search.Value())})
			return m, cmd
		case tea.KeyEsc:
			m.searching = false
			m.search.Blur()
			m.search.SetValue(m.state.Query.SearchTerm)
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(m.state.Query.SearchTerm)
		m.search.CursorEnd()
		cmd = m.search.Focus()
	case key.Matches(msg, m.keys.Category):
		m.view = CategoryView
	case key.Matches(msg, m.keys.SortName):
		cmd = m.apply(browse.ToggleSort{Key: browse.SortName})
	case key.Matches(msg, m.keys.SortGrade):
		cmd = m.apply(browse.ToggleSort{Key: browse.SortGrade})
	case key.Matches(msg, m.keys.PrevPage):
		cmd = m.apply(browse.PreviousPage{})
	case key.Matches(msg, m.keys.NextPage):
		cmd = m.apply(browse.NextPage{})
	case key.Matches(msg, m.keys.Refresh):
		cmd = m.apply(browse.Refresh{})
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resizePanes()
	case key.Matches(msg, m.keys.Enter):
		if p, ok := m.list.SelectedItem().(types.Product); ok {
			cmd = m.openDetail(p.Code())
		}
	case key.Matches(msg, m.keys.Back):
	default:
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picker.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Back) && m.picker.FilterState() == list.Unfiltered:
			m.view = ListView
			return m, nil
		case msg.Type == tea.KeyEnter:
			item, ok := m.picker.SelectedItem().(categoryItem)
			if !ok {
				return m, nil
			}
			m.view = ListView
			m.picker.ResetFilter()
			cmd := m.apply(browse.SelectCategory{ID: item.ID()})
			return m, cmd
		case msg.String() == "q":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.view = ListView
		// Drop any lookup still in flight.
		m.detailID++
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		cmd := m.openDetail(m.detail.Barcode)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// apply reduces an intent into the list state and starts the request it
// issued, if any.
func (m *Model) apply(in browse.Intent) tea.Cmd {
	next, req := browse.Reduce(m.state, in, m.opts)
	m.state = next
	m.syncList()
	if req == nil {
		return nil
	}
	m.statusMsg = "Loading…"
	m.logger.Debug("list request",
		zap.Stringer("kind", req.Kind),
		zap.String("term", req.Term),
		zap.String("category", req.Category),
		zap.Int("page", req.Page),
		zap.Uint64("generation", req.Generation))
	return tea.Batch(m.spinner.Tick, fetchPage(m.ctx, m.source, *req))
}

func (m *Model) openDetail(barcode string) tea.Cmd {
	m.detailID++
	m.detail = browse.NewDetail(barcode)
	m.view = DetailView
	m.viewport.SetContent("")
	return tea.Batch(m.spinner.Tick, fetchDetail(m.ctx, m.source, barcode, m.detailID))
}

func (m *Model) handleListLoaded(msg listLoadedMsg) {
	next, applied := m.state.Resolve(msg.result, m.opts)
	if !applied {
		m.logger.Debug("dropped stale list result",
			zap.Uint64("generation", msg.result.Generation),
			zap.Uint64("current", m.state.Generation))
		return
	}
	m.state = next
	if next.Err != nil {
		m.logger.Warn("list request failed", zap.Error(next.Err))
		m.statusMsg = "Could not load products"
	} else {
		m.statusMsg = fmt.Sprintf("%d products on this page", len(next.Products))
		m.list.ResetSelected()
	}
	m.syncList()
}

func (m *Model) handleCategories(msg categoriesMsg) tea.Cmd {
	if msg.err != nil {
		m.categoriesErr = msg.err
		m.logger.Warn("category list unavailable", zap.Error(msg.err))
	}
	items := make([]list.Item, 0, len(msg.categories)+1)
	items = append(items, categoryItem{types.NewCategory("", allCategoriesName, 0)})
	for _, c := range msg.categories {
		items = append(items, categoryItem{c})
	}
	return m.picker.SetItems(items)
}

func (m *Model) handleDetail(msg detailMsg) {
	if msg.requestID != m.detailID || m.view != DetailView {
		m.logger.Debug("dropped stale detail result", zap.String("barcode", msg.detail.Barcode))
		return
	}
	m.detail = msg.detail
	if m.detail.Status == browse.DetailFailed {
		m.logger.Warn("product lookup failed", zap.String("barcode", m.detail.Barcode), zap.Error(m.detail.Err))
	}
	m.viewport.SetContent(renderDetail(m.renderer, m.detail))
	m.viewport.GotoTop()
}

// syncList puts the sorted current page into the list widget.
func (m *Model) syncList() {
	view := m.state.View()
	items := make([]list.Item, 0, len(view.Products))
	for _, p := range view.Products {
		items = append(items, p)
	}
	m.list.SetItems(items)
}

func (m Model) loading() bool {
	if m.view == DetailView {
		return !m.detail.Settled()
	}
	return m.state.Loading
}

// View renders the current view
func (m Model) View() string {
	var body string
	switch m.view {
	case CategoryView:
		body = m.picker.View()
	case DetailView:
		if !m.detail.Settled() {
			body = m.spinner.View() + " Loading " + m.detail.Barcode + "…"
		} else {
			body = m.viewport.View()
		}
	default:
		body = m.queryBar() + "\n" + m.list.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusBar(), m.help.View(m.keys))
}

// queryBar renders the search term, category, sort buttons and pager.
func (m Model) queryBar() string {
	view := m.state.View()

	var line1 string
	if m.searching {
		line1 = m.search.View()
	} else {
		term := view.Query.SearchTerm
		if term == "" {
			term = "(any)"
		}
		line1 = QueryLabelStyle.Render("Search: ") + QueryValueStyle.Render(term)
	}
	category := view.Query.Category
	if category == "" {
		category = allCategoriesName
	}
	line1 += QueryLabelStyle.Render("   Category: ") + QueryValueStyle.Render(category)

	sortButton := func(label string, key browse.SortKey) string {
		if view.Sort.Key == key {
			return SortActiveStyle.Render(label + " " + view.Sort.Arrow(key))
		}
		return SortInactiveStyle.Render(label)
	}
	prev, next := PagerArrowDimStyle.Render("‹"), PagerArrowDimStyle.Render("›")
	if view.HasPrev {
		prev = PagerArrowStyle.Render("‹")
	}
	if view.HasNext {
		next = PagerArrowStyle.Render("›")
	}
	line2 := QueryLabelStyle.Render("Sort: ") + sortButton("Name", browse.SortName) + "  " + sortButton("Grade", browse.SortGrade) +
		"   " + prev + PagerTextStyle.Render(fmt.Sprintf(" Page %d of %d ", view.Page.Current, view.Page.Total)) + next

	return line1 + "\n" + line2
}

func (m Model) statusBar() string {
	switch {
	case m.view == CategoryView && m.categoriesErr != nil:
		return ErrorStyle.Render("Categories unavailable")
	case m.view == ListView && m.state.Loading:
		return m.spinner.View() + StatusBarStyle.Render(" Loading…")
	case m.view == ListView && m.state.Err != nil:
		return ErrorStyle.Render(m.statusMsg)
	default:
		return StatusBarStyle.Render(m.statusMsg)
	}
}

// resizePanes adjusts the dimensions of list and viewport based on window size
func (m *Model) resizePanes() {
	statusHeight := 1
	headerHeight := 2
	m.help.Width = m.width
	helpHeight := lipgloss.Height(m.help.View(m.keys))
	availableHeight := max(m.height-statusHeight-helpHeight, 0)

	m.list.SetSize(m.width, max(availableHeight-headerHeight, 0))
	m.picker.SetSize(m.width, availableHeight)
	m.search.Width = max(m.width-40, 10)

	m.viewport.Width = m.width
	m.viewport.Height = availableHeight

	m.renderer = newRenderer(m.width - 4)
	if m.view == DetailView && m.detail.Settled() {
		m.viewport.SetContent(renderDetail(m.renderer, m.detail))
	}
}
