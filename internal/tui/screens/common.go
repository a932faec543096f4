package screens

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/dealdesk/dealdesk/internal/api"
	"github.com/dealdesk/dealdesk/internal/cache"
	"github.com/dealdesk/dealdesk/internal/models"
	"github.com/dealdesk/dealdesk/internal/transition"
)

// Deps is everything a screen needs to talk to the world. One instance is
// built at startup and shared by all screens.
type Deps struct {
	API      *api.Client
	Store    *cache.Store
	Flow     *transition.Orchestrator
	Actor    models.User
	Log      *zap.Logger
	PageSize int

	// Warm, when set, receives each successfully fetched stage list so it can
	// be persisted for the next start.
	Warm func(stage models.Stage, leads []models.Lead)
}

// NavigateMsg is sent when navigation to another screen is requested
type NavigateMsg struct {
	Screen string
	Lead   *models.Lead
	Stage  models.Stage
}

func Navigate(screen string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Screen: screen}
	}
}

func NavigateToLead(screen string, lead models.Lead) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Screen: screen, Lead: &lead}
	}
}

func NavigateWithStage(screen string, stage models.Stage) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Screen: screen, Stage: stage}
	}
}

// RefreshMsg is sent when data should be refreshed
type RefreshMsg struct{}

func Refresh() tea.Cmd {
	return func() tea.Msg {
		return RefreshMsg{}
	}
}

// Theme is a named color palette. SetTheme swaps the shared styles in place
// so every screen picks the change up on its next render.
type Theme struct {
	Name      string
	Title     string
	Subtitle  string
	Selected  string
	Normal    string
	Dim       string
	Success   string
	Warning   string
	Error     string
	Border    string
	BadgeText string
}

var DarkTheme = Theme{
	Name:      "dark",
	Title:     "205",
	Subtitle:  "241",
	Selected:  "212",
	Normal:    "252",
	Dim:       "241",
	Success:   "42",
	Warning:   "214",
	Error:     "196",
	Border:    "62",
	BadgeText: "232",
}

var LightTheme = Theme{
	Name:      "light",
	Title:     "162",
	Subtitle:  "243",
	Selected:  "125",
	Normal:    "235",
	Dim:       "245",
	Success:   "28",
	Warning:   "130",
	Error:     "124",
	Border:    "61",
	BadgeText: "255",
}

// Styles
var (
	TitleStyle    lipgloss.Style
	SubtitleStyle lipgloss.Style
	HelpStyle     lipgloss.Style
	SelectedStyle lipgloss.Style
	NormalStyle   lipgloss.Style
	DimStyle      lipgloss.Style
	SuccessStyle  lipgloss.Style
	WarningStyle  lipgloss.Style
	ErrorStyle    lipgloss.Style
	BoxStyle      lipgloss.Style

	greenBadge lipgloss.Style
	amberBadge lipgloss.Style
	redBadge   lipgloss.Style

	activeTheme Theme
)

func init() {
	SetTheme(DarkTheme)
}

func SetTheme(t Theme) {
	activeTheme = t

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(t.Title)).
		MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Subtitle)).
		MarginBottom(1)

	HelpStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Dim)).
		MarginTop(1)

	SelectedStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(t.Selected))

	NormalStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Normal))

	DimStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Dim))

	SuccessStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Success))

	WarningStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Warning))

	ErrorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Error))

	BoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(t.Border)).
		Padding(1, 2)

	greenBadge = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.BadgeText)).
		Background(lipgloss.Color(t.Success)).
		Padding(0, 1)

	amberBadge = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.BadgeText)).
		Background(lipgloss.Color(t.Warning)).
		Padding(0, 1)

	redBadge = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.BadgeText)).
		Background(lipgloss.Color(t.Error)).
		Padding(0, 1)
}

func ActiveTheme() Theme { return activeTheme }

// PocBadge renders the completion traffic light for a contact or a lead.
func PocBadge(status models.PocStatus) string {
	switch status {
	case models.PocGreen:
		return greenBadge.Render("GREEN")
	case models.PocAmber:
		return amberBadge.Render("AMBER")
	default:
		return redBadge.Render("RED")
	}
}

// NewInput builds a text input the way every form on every screen does.
func NewInput(placeholder string, width int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	ti.Width = width
	return ti
}
