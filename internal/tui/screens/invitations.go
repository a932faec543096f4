package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dealdesk/dealdesk/internal/api"
	"github.com/dealdesk/dealdesk/internal/cache"
	"github.com/dealdesk/dealdesk/internal/forms"
	"github.com/dealdesk/dealdesk/internal/models"
)

type invitationsMode int

const (
	invitationsModeList invitationsMode = iota
	invitationsModeInvite
)

type Invitations struct {
	deps   Deps
	width  int
	height int

	items   []models.Invitation
	cursor  int
	mode    invitationsMode
	loading bool
	busy    bool
	err     error
	message string

	emailInput textinput.Model
	roleIdx    int
	analysts   []models.User
	analystIdx int // -1 = none selected
	formFocus  int
}

func NewInvitations(deps Deps) *Invitations {
	i := &Invitations{deps: deps, analystIdx: -1}
	i.emailInput = NewInput("invitee@firm.com", 40)
	return i
}

func (i *Invitations) SetSize(width, height int) {
	i.width = width
	i.height = height
}

type invitationsDataMsg struct {
	items    []models.Invitation
	analysts []models.User
	err      error
}

type invitationActionMsg struct {
	message string
	err     error
}

func (i *Invitations) Init() tea.Cmd {
	i.loading = true
	i.mode = invitationsModeList
	i.message = ""
	return i.loadData
}

func (i *Invitations) loadData() tea.Msg {
	ctx := context.Background()
	items, err := cache.Fetch(ctx, i.deps.Store, cache.InvitationsKey(), func(ctx context.Context) ([]models.Invitation, error) {
		return i.deps.API.ListInvitations(ctx)
	})
	if err != nil {
		return invitationsDataMsg{err: err}
	}

	// Intern invitations need an analyst to report to.
	users, err := cache.Fetch(ctx, i.deps.Store, cache.UsersKey(), func(ctx context.Context) ([]models.User, error) {
		return i.deps.API.ListUsers(ctx)
	})
	if err != nil {
		return invitationsDataMsg{err: err}
	}
	var analysts []models.User
	for _, u := range users {
		if u.Role == models.RoleAnalyst && !u.IsSuspended {
			analysts = append(analysts, u)
		}
	}
	return invitationsDataMsg{items: items, analysts: analysts}
}

func (i *Invitations) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case invitationsDataMsg:
		i.loading = false
		i.err = msg.err
		i.items = msg.items
		i.analysts = msg.analysts
		if i.cursor >= len(i.items) {
			i.cursor = max(0, len(i.items)-1)
		}
		return nil

	case invitationActionMsg:
		i.busy = false
		i.err = msg.err
		if msg.err == nil {
			i.message = msg.message
			i.mode = invitationsModeList
			return i.loadData
		}
		return nil

	case RefreshMsg:
		i.deps.Store.Invalidate(cache.InvitationsKey())
		return i.Init()

	case tea.KeyMsg:
		return i.handleKey(msg)
	}

	if i.mode == invitationsModeInvite && i.formFocus == 0 {
		var cmd tea.Cmd
		i.emailInput, cmd = i.emailInput.Update(msg)
		return cmd
	}
	return nil
}

func (i *Invitations) handleKey(msg tea.KeyMsg) tea.Cmd {
	if i.busy {
		return nil
	}

	if i.mode == invitationsModeList {
		switch msg.String() {
		case "up", "k":
			if i.cursor > 0 {
				i.cursor--
			}
		case "down", "j":
			if i.cursor < len(i.items)-1 {
				i.cursor++
			}
		case "a":
			i.mode = invitationsModeInvite
			i.formFocus = 0
			i.roleIdx = len(assignableRoles) - 2 // analyst
			i.analystIdx = -1
			i.emailInput.SetValue("")
			i.emailInput.Focus()
		case "t":
			return i.retry()
		case "r":
			return Refresh()
		case "q", "esc":
			return Navigate("dashboard")
		}
		return nil
	}

	// invite form
	switch msg.String() {
	case "esc":
		i.mode = invitationsModeList
		i.emailInput.Blur()
		return nil
	case "tab", "down":
		i.moveFocus(1)
		return nil
	case "shift+tab", "up":
		i.moveFocus(-1)
		return nil
	case "left", "right":
		dir := 1
		if msg.String() == "left" {
			dir = -1
		}
		switch i.formFocus {
		case 1:
			i.roleIdx = (i.roleIdx + dir + len(assignableRoles)) % len(assignableRoles)
			return nil
		case 2:
			if len(i.analysts) > 0 {
				// -1 cycles through "none" plus each analyst.
				i.analystIdx = ((i.analystIdx+1+dir)+(len(i.analysts)+1))%(len(i.analysts)+1) - 1
			}
			return nil
		}
	case "enter":
		if i.formFocus < i.formFields()-1 {
			i.moveFocus(1)
			return nil
		}
		return i.submitInvite()
	}

	if i.formFocus == 0 {
		var cmd tea.Cmd
		i.emailInput, cmd = i.emailInput.Update(msg)
		return cmd
	}
	return nil
}

func (i *Invitations) formFields() int {
	if assignableRoles[i.roleIdx] == models.RoleIntern {
		return 3
	}
	return 2
}

func (i *Invitations) moveFocus(dir int) {
	i.emailInput.Blur()
	i.formFocus = (i.formFocus + dir + i.formFields()) % i.formFields()
	if i.formFocus == 0 {
		i.emailInput.Focus()
	}
}

func (i *Invitations) submitInvite() tea.Cmd {
	role := assignableRoles[i.roleIdx]
	analystID := ""
	if role == models.RoleIntern && i.analystIdx >= 0 && i.analystIdx < len(i.analysts) {
		analystID = i.analysts[i.analystIdx].ID
	}

	form := forms.InvitationForm{
		Email:     strings.TrimSpace(i.emailInput.Value()),
		Role:      string(role),
		AnalystID: analystID,
	}
	if err := forms.Validate(form); err != nil {
		i.err = err
		return nil
	}
	i.err = nil
	i.emailInput.Blur()

	input := api.InvitationInput{Email: form.Email, Role: role, AnalystID: analystID}
	return i.runAction(fmt.Sprintf("Invitation sent to %s", input.Email), func(ctx context.Context) error {
		_, err := i.deps.API.CreateInvitation(ctx, input)
		return err
	})
}

func (i *Invitations) retry() tea.Cmd {
	if i.cursor >= len(i.items) {
		return nil
	}
	inv := i.items[i.cursor]
	if !inv.CanRetry() {
		i.message = fmt.Sprintf("Retry limit reached (%d)", models.MaxInvitationRetries)
		return nil
	}
	return i.runAction(fmt.Sprintf("Invitation email to %s re-sent", inv.Email), func(ctx context.Context) error {
		return i.deps.API.RetryInvitation(ctx, inv.ID)
	})
}

func (i *Invitations) runAction(success string, fn func(context.Context) error) tea.Cmd {
	i.busy = true
	return func() tea.Msg {
		if err := fn(context.Background()); err != nil {
			return invitationActionMsg{err: err}
		}
		i.deps.Store.Invalidate(cache.InvitationsKey())
		return invitationActionMsg{message: success}
	}
}

func (i *Invitations) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("INVITATIONS"))
	b.WriteString("\n\n")

	if i.loading {
		b.WriteString("Loading...\n")
		return b.String()
	}

	if i.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", i.err)))
		b.WriteString("\n\n")
	}
	if i.message != "" {
		b.WriteString(SuccessStyle.Render(i.message))
		b.WriteString("\n\n")
	}

	if i.mode == invitationsModeInvite {
		return b.String() + i.viewForm()
	}

	if len(i.items) == 0 {
		b.WriteString(DimStyle.Render("No invitations yet. Press 'a' to invite someone."))
		b.WriteString("\n")
	} else {
		for idx, inv := range i.items {
			cursor := "  "
			style := NormalStyle
			if idx == i.cursor {
				cursor = "> "
				style = SelectedStyle
			}

			status := string(inv.Status)
			if inv.Expired() && inv.Status == models.InvitationPending {
				status = "expired"
			}
			line := fmt.Sprintf("%s%-32s %-8s %-9s", cursor, inv.Email, inv.Role, status)
			b.WriteString(style.Render(line))

			if inv.EmailError != "" {
				retries := fmt.Sprintf(" delivery failed (%d/%d retries)", inv.RetryCount, models.MaxInvitationRetries)
				b.WriteString(ErrorStyle.Render(retries))
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	b.WriteString(HelpStyle.Render("[a] Invite  [t] Retry email  [r] Refresh  [q] Back"))
	return b.String()
}

func (i *Invitations) viewForm() string {
	var b strings.Builder
	b.WriteString(SubtitleStyle.Render("Invite a user"))
	b.WriteString("\n\n")

	b.WriteString(DimStyle.Render(fmt.Sprintf("%-10s", "Email")))
	b.WriteString(i.emailInput.View())
	b.WriteString("\n")

	roleStyle := NormalStyle
	if i.formFocus == 1 {
		roleStyle = SelectedStyle
	}
	b.WriteString(DimStyle.Render(fmt.Sprintf("%-10s", "Role")))
	b.WriteString(roleStyle.Render("< " + string(assignableRoles[i.roleIdx]) + " >"))
	b.WriteString("\n")

	if assignableRoles[i.roleIdx] == models.RoleIntern {
		analyst := "none"
		if i.analystIdx >= 0 && i.analystIdx < len(i.analysts) {
			analyst = i.analysts[i.analystIdx].DisplayName()
		}
		style := NormalStyle
		if i.formFocus == 2 {
			style = SelectedStyle
		}
		b.WriteString(DimStyle.Render(fmt.Sprintf("%-10s", "Analyst")))
		b.WriteString(style.Render("< " + analyst + " >"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("[tab] Next field  [left/right] Change selection  [enter] Submit on last field  [esc] Cancel"))
	return b.String()
}
