package screens

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dealdesk/dealdesk/internal/cache"
	"github.com/dealdesk/dealdesk/internal/models"
)

// Activity is the paged organization-wide audit trail.
type Activity struct {
	deps   Deps
	width  int
	height int

	entries []models.ActivityLog
	page    int
	loading bool
	err     error
}

func NewActivity(deps Deps) *Activity {
	return &Activity{deps: deps, page: 1}
}

func (a *Activity) SetSize(width, height int) {
	a.width = width
	a.height = height
}

type activityDataMsg struct {
	entries []models.ActivityLog
	err     error
}

func (a *Activity) Init() tea.Cmd {
	a.loading = true
	return a.loadData
}

func (a *Activity) loadData() tea.Msg {
	ctx := context.Background()
	page := a.page
	entries, err := cache.Fetch(ctx, a.deps.Store, cache.ActivityLogKey(page), func(ctx context.Context) ([]models.ActivityLog, error) {
		return a.deps.API.ActivityLog(ctx, page, a.deps.PageSize)
	})
	return activityDataMsg{entries: entries, err: err}
}

func (a *Activity) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case activityDataMsg:
		a.loading = false
		a.err = msg.err
		a.entries = msg.entries
		return nil

	case RefreshMsg:
		a.deps.Store.InvalidateMatching(func(k cache.Key) bool {
			return strings.HasPrefix(string(k), "activity-log")
		})
		return a.Init()

	case tea.KeyMsg:
		switch msg.String() {
		case "n":
			// A short page means this is the last one.
			if len(a.entries) >= a.deps.PageSize {
				a.page++
				return a.Init()
			}
		case "p":
			if a.page > 1 {
				a.page--
				return a.Init()
			}
		case "r":
			return Refresh()
		case "q", "esc":
			return Navigate("dashboard")
		}
	}
	return nil
}

func (a *Activity) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("ACTIVITY LOG"))
	b.WriteString("\n\n")

	if a.loading {
		b.WriteString("Loading...\n")
		return b.String()
	}

	if a.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", a.err)))
		b.WriteString("\n")
		return b.String()
	}

	if len(a.entries) == 0 {
		b.WriteString(DimStyle.Render("No activity recorded."))
		b.WriteString("\n")
	} else {
		for _, e := range a.entries {
			when := ""
			if e.CreatedAt != nil {
				when = e.CreatedAt.Format("Jan 02 15:04")
			}
			desc := e.Description
			if desc == "" {
				desc = fmt.Sprintf("%s %s", e.Action, e.EntityType)
			}
			b.WriteString(DimStyle.Render(fmt.Sprintf("%-13s", when)))
			b.WriteString(NormalStyle.Render(desc))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	b.WriteString(DimStyle.Render(fmt.Sprintf("Page %d", a.page)))
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("[n] Next page  [p] Previous page  [r] Refresh  [q] Back"))
	return b.String()
}
