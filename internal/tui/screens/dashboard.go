package screens

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dealdesk/dealdesk/internal/cache"
	"github.com/dealdesk/dealdesk/internal/models"
)

type Dashboard struct {
	deps   Deps
	width  int
	height int

	metrics *models.DashboardMetrics
	loading bool
	err     error
}

func NewDashboard(deps Deps) *Dashboard {
	return &Dashboard{
		deps:    deps,
		loading: true,
	}
}

func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

type dashboardDataMsg struct {
	metrics *models.DashboardMetrics
	err     error
}

func (d *Dashboard) Init() tea.Cmd {
	d.loading = true
	return d.loadData
}

func (d *Dashboard) loadData() tea.Msg {
	ctx := context.Background()
	metrics, err := cache.Fetch(ctx, d.deps.Store, cache.MetricsKey(), func(ctx context.Context) (*models.DashboardMetrics, error) {
		return d.deps.API.DashboardMetrics(ctx)
	})
	return dashboardDataMsg{metrics: metrics, err: err}
}

func (d *Dashboard) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.loading = false
		d.err = msg.err
		d.metrics = msg.metrics
		return nil

	case RefreshMsg:
		d.deps.Store.Invalidate(cache.MetricsKey())
		return d.Init()

	case tea.KeyMsg:
		switch msg.String() {
		case "l":
			return NavigateWithStage("leads", models.StageUniverse)
		case "o":
			return Navigate("scheduled")
		case "u":
			if d.deps.Actor.Role == models.RoleAdmin || d.deps.Actor.Role == models.RolePartner {
				return Navigate("users")
			}
		case "i":
			if d.deps.Actor.Role == models.RoleAdmin || d.deps.Actor.Role == models.RolePartner {
				return Navigate("invitations")
			}
		case "g":
			return Navigate("activity")
		case "r":
			return Refresh()
		}
	}

	return nil
}

func (d *Dashboard) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("DEALDESK"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("Lead Pipeline - %s (%s)", d.deps.Actor.DisplayName(), d.deps.Actor.Role)))
	b.WriteString("\n\n")

	if d.loading {
		b.WriteString("Loading...\n")
		return b.String()
	}

	if d.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", d.err)))
		b.WriteString("\n")
		return b.String()
	}

	if d.metrics != nil {
		var stats strings.Builder
		stats.WriteString(fmt.Sprintf("Total leads: %d", d.metrics.TotalLeads))
		if d.metrics.IsPersonalized {
			stats.WriteString("  (your book)")
		}
		stats.WriteString("\n\n")
		for _, stage := range models.PipelineOrder {
			count := d.metrics.LeadsByStage[stage]
			stats.WriteString(fmt.Sprintf("%-12s %d\n", stage.Label(), count))
		}
		stats.WriteString(fmt.Sprintf("%-12s %d\n", models.StageLost.Label(), d.metrics.LeadsByStage[models.StageLost]))
		b.WriteString(BoxStyle.Render(strings.TrimRight(stats.String(), "\n")))
		b.WriteString("\n\n")

		if len(d.metrics.RecentActivity) > 0 {
			b.WriteString(SubtitleStyle.Render("Recent activity"))
			b.WriteString("\n")
			for i, entry := range d.metrics.RecentActivity {
				if i >= 5 {
					break
				}
				line := entry.Description
				if line == "" {
					line = fmt.Sprintf("%s %s", entry.Action, entry.EntityType)
				}
				b.WriteString(DimStyle.Render("  " + line))
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n")

	help := "[l] Leads  [o] Scheduled tasks  [g] Activity log  [r] Refresh  [q] Quit"
	if d.deps.Actor.Role == models.RoleAdmin || d.deps.Actor.Role == models.RolePartner {
		help = "[l] Leads  [o] Scheduled tasks  [u] Users  [i] Invitations  [g] Activity log  [r] Refresh  [q] Quit"
	}
	b.WriteString(HelpStyle.Render(help))

	return b.String()
}
