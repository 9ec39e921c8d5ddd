package ui

import "github.com/charmbracelet/lipgloss"

// 16-color ANSI Dracula palette
var (
	DraculaBackground = lipgloss.AdaptiveColor{Light: "0", Dark: "0"}
	DraculaForeground = lipgloss.AdaptiveColor{Light: "255", Dark: "255"}
	DraculaPurple     = lipgloss.AdaptiveColor{Light: "5", Dark: "5"}
	DraculaPink       = lipgloss.AdaptiveColor{Light: "13", Dark: "13"}
	DraculaCyan       = lipgloss.AdaptiveColor{Light: "14", Dark: "14"}
	DraculaGreen      = lipgloss.AdaptiveColor{Light: "10", Dark: "10"}
	DraculaComment    = lipgloss.AdaptiveColor{Light: "7", Dark: "7"}
	DraculaOrange     = lipgloss.AdaptiveColor{Light: "3", Dark: "3"}
	DraculaRed        = lipgloss.AdaptiveColor{Light: "1", Dark: "1"}
	DraculaYellow     = lipgloss.AdaptiveColor{Light: "11", Dark: "11"}

	// List styles
	TitleStyle = lipgloss.NewStyle().
			Foreground(DraculaPink).
			Bold(true).
			Padding(0, 1)

	// Query bar
	QueryLabelStyle = lipgloss.NewStyle().
			Foreground(DraculaComment)
	QueryValueStyle = lipgloss.NewStyle().
			Foreground(DraculaCyan)
	SortActiveStyle = lipgloss.NewStyle().
			Foreground(DraculaPink).
			Bold(true)
	SortInactiveStyle = lipgloss.NewStyle().
				Foreground(DraculaComment)

	// Pager
	PagerArrowStyle = lipgloss.NewStyle().
			Foreground(DraculaPink).
			Bold(true)
	PagerArrowDimStyle = lipgloss.NewStyle().
				Foreground(DraculaComment)
	PagerTextStyle = lipgloss.NewStyle().
			Foreground(DraculaCyan)

	// Detail view styles
	DetailTitleStyle = lipgloss.NewStyle().
				Foreground(DraculaPink).
				Bold(true)
	DetailMissingStyle = lipgloss.NewStyle().
				Foreground(DraculaComment).
				Italic(true)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(DraculaComment)
	ErrorStyle = lipgloss.NewStyle().
			Foreground(DraculaRed)

	// Help
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(DraculaPink).
			Bold(true)
	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DraculaForeground)

	SelectedItemStyle = lipgloss.NewStyle().
				BorderLeft(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(DraculaPink).
				PaddingLeft(1)

	SearchPromptStyle = lipgloss.NewStyle().
				Foreground(DraculaPink).
				Bold(true)
)

// gradeColors follows the Nutri-Score scale, green to red.
var gradeColors = map[string]lipgloss.AdaptiveColor{
	"A": DraculaGreen,
	"B": DraculaCyan,
	"C": DraculaYellow,
	"D": DraculaOrange,
	"E": DraculaRed,
}

// GradeStyle returns the badge style for an upper-case grade label.
func GradeStyle(label string) lipgloss.Style {
	color, ok := gradeColors[label]
	if !ok {
		color = DraculaComment
	}
	return lipgloss.NewStyle().Foreground(color).Bold(ok)
}
