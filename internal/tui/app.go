package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/dealdesk/dealdesk/internal/localstore"
	"github.com/dealdesk/dealdesk/internal/tui/screens"
)

type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenLeads
	ScreenPocs
	ScreenInterventions
	ScreenScheduled
	ScreenOutreach
	ScreenUsers
	ScreenInvitations
	ScreenActivity
)

const themePreferenceKey = "theme"

type App struct {
	deps          screens.Deps
	currentScreen Screen
	width         int
	height        int

	// Screen models
	dashboard     *screens.Dashboard
	leads         *screens.Leads
	pocs          *screens.Pocs
	interventions *screens.Interventions
	outreach      *screens.Outreach
	users         *screens.Users
	invitations   *screens.Invitations
	activity      *screens.Activity
}

func NewApp(deps screens.Deps) *App {
	return &App{
		deps:          deps,
		currentScreen: ScreenDashboard,
	}
}

func (a *App) Init() tea.Cmd {
	if localstore.Preference(themePreferenceKey, screens.DarkTheme.Name) == screens.LightTheme.Name {
		screens.SetTheme(screens.LightTheme)
	}

	a.dashboard = screens.NewDashboard(a.deps)
	a.leads = screens.NewLeads(a.deps)
	a.pocs = screens.NewPocs(a.deps)
	a.interventions = screens.NewInterventions(a.deps)
	a.outreach = screens.NewOutreach(a.deps)
	a.users = screens.NewUsers(a.deps)
	a.invitations = screens.NewInvitations(a.deps)
	a.activity = screens.NewActivity(a.deps)

	return a.dashboard.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "ctrl+t":
			a.toggleTheme()
			return a, nil
		case "q":
			if a.currentScreen == ScreenDashboard {
				return a, tea.Quit
			}
			// Let individual screens handle 'q' for going back
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.dashboard.SetSize(msg.Width, msg.Height)
		a.leads.SetSize(msg.Width, msg.Height)
		a.pocs.SetSize(msg.Width, msg.Height)
		a.interventions.SetSize(msg.Width, msg.Height)
		a.outreach.SetSize(msg.Width, msg.Height)
		a.users.SetSize(msg.Width, msg.Height)
		a.invitations.SetSize(msg.Width, msg.Height)
		a.activity.SetSize(msg.Width, msg.Height)

	case screens.NavigateMsg:
		return a.handleNavigation(msg)
	}

	// Update current screen
	var cmd tea.Cmd
	switch a.currentScreen {
	case ScreenDashboard:
		cmd = a.dashboard.Update(msg)
	case ScreenLeads:
		cmd = a.leads.Update(msg)
	case ScreenPocs:
		cmd = a.pocs.Update(msg)
	case ScreenInterventions, ScreenScheduled:
		cmd = a.interventions.Update(msg)
	case ScreenOutreach:
		cmd = a.outreach.Update(msg)
	case ScreenUsers:
		cmd = a.users.Update(msg)
	case ScreenInvitations:
		cmd = a.invitations.Update(msg)
	case ScreenActivity:
		cmd = a.activity.Update(msg)
	}

	return a, cmd
}

func (a *App) handleNavigation(msg screens.NavigateMsg) (tea.Model, tea.Cmd) {
	switch msg.Screen {
	case "dashboard":
		a.currentScreen = ScreenDashboard
		return a, a.dashboard.Init()
	case "leads":
		a.currentScreen = ScreenLeads
		a.leads.SetStage(msg.Stage)
		return a, a.leads.Init()
	case "pocs":
		if msg.Lead != nil {
			a.currentScreen = ScreenPocs
			a.pocs.SetLead(*msg.Lead)
			return a, a.pocs.Init()
		}
	case "interventions":
		if msg.Lead != nil {
			a.currentScreen = ScreenInterventions
			a.interventions.SetLead(*msg.Lead)
			return a, a.interventions.Init()
		}
	case "scheduled":
		a.currentScreen = ScreenScheduled
		a.interventions.SetScheduled()
		return a, a.interventions.Init()
	case "outreach":
		if msg.Lead != nil {
			a.currentScreen = ScreenOutreach
			a.outreach.SetLead(*msg.Lead)
			return a, a.outreach.Init()
		}
	case "users":
		a.currentScreen = ScreenUsers
		return a, a.users.Init()
	case "invitations":
		a.currentScreen = ScreenInvitations
		return a, a.invitations.Init()
	case "activity":
		a.currentScreen = ScreenActivity
		return a, a.activity.Init()
	}
	return a, nil
}

func (a *App) toggleTheme() {
	next := screens.LightTheme
	if screens.ActiveTheme().Name == screens.LightTheme.Name {
		next = screens.DarkTheme
	}
	screens.SetTheme(next)
	if err := localstore.SetPreference(themePreferenceKey, next.Name); err != nil {
		a.deps.Log.Warn("could not persist theme preference", zap.Error(err))
	}
}

func (a *App) View() string {
	var content string

	switch a.currentScreen {
	case ScreenDashboard:
		content = a.dashboard.View()
	case ScreenLeads:
		content = a.leads.View()
	case ScreenPocs:
		content = a.pocs.View()
	case ScreenInterventions, ScreenScheduled:
		content = a.interventions.View()
	case ScreenOutreach:
		content = a.outreach.View()
	case ScreenUsers:
		content = a.users.View()
	case ScreenInvitations:
		content = a.invitations.View()
	case ScreenActivity:
		content = a.activity.View()
	}

	return lipgloss.NewStyle().
		Width(a.width).
		Height(a.height).
		Render(content)
}

func Run(deps screens.Deps) error {
	app := NewApp(deps)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
