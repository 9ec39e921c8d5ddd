package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/qyinm/offtui/browse"
	"github.com/qyinm/offtui/types"
)

// Message types for async operations

// listLoadedMsg carries the result of one list request, tagged with the
// generation that issued it.
type listLoadedMsg struct {
	result browse.Result
}

type categoriesMsg struct {
	categories []types.Category
	err        error
}

type detailMsg struct {
	requestID int
	detail    browse.Detail
}

// fetchPage returns a tea.Cmd that runs a list request asynchronously
func fetchPage(ctx context.Context, source types.ProductSource, req browse.Request) tea.Cmd {
	return func() tea.Msg {
		return listLoadedMsg{result: browse.Fetch(ctx, source, req)}
	}
}

// loadCategories returns a tea.Cmd that loads the category list once
func loadCategories(ctx context.Context, categories *browse.Categories, source types.ProductSource) tea.Cmd {
	return func() tea.Msg {
		list, err := categories.Load(ctx, source)
		return categoriesMsg{categories: list, err: err}
	}
}

// fetchDetail returns a tea.Cmd that looks up one barcode asynchronously
func fetchDetail(ctx context.Context, source types.ProductSource, barcode string, requestID int) tea.Cmd {
	return func() tea.Msg {
		return detailMsg{requestID: requestID, detail: browse.LoadDetail(ctx, source, barcode)}
	}
}
