package screens

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dealdesk/dealdesk/internal/cache"
	"github.com/dealdesk/dealdesk/internal/models"
)

type usersMode int

const (
	usersModeList usersMode = iota
	usersModeRole
	usersModeSuspend
)

var assignableRoles = []models.Role{
	models.RoleAdmin,
	models.RolePartner,
	models.RoleAnalyst,
	models.RoleIntern,
}

// Users is the admin/partner user management screen.
type Users struct {
	deps   Deps
	width  int
	height int

	users   []models.User
	cursor  int
	mode    usersMode
	roleIdx int
	loading bool
	busy    bool
	err     error
	message string
}

func NewUsers(deps Deps) *Users {
	return &Users{deps: deps}
}

func (u *Users) SetSize(width, height int) {
	u.width = width
	u.height = height
}

type usersDataMsg struct {
	users []models.User
	err   error
}

type userActionMsg struct {
	message string
	err     error
}

func (u *Users) Init() tea.Cmd {
	u.loading = true
	u.mode = usersModeList
	u.message = ""
	return u.loadData
}

func (u *Users) loadData() tea.Msg {
	ctx := context.Background()
	users, err := cache.Fetch(ctx, u.deps.Store, cache.UsersKey(), func(ctx context.Context) ([]models.User, error) {
		return u.deps.API.ListUsers(ctx)
	})
	return usersDataMsg{users: users, err: err}
}

func (u *Users) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case usersDataMsg:
		u.loading = false
		u.err = msg.err
		u.users = msg.users
		if u.cursor >= len(u.users) {
			u.cursor = max(0, len(u.users)-1)
		}
		return nil

	case userActionMsg:
		u.busy = false
		u.err = msg.err
		if msg.err == nil {
			u.message = msg.message
			u.mode = usersModeList
			return u.loadData
		}
		return nil

	case RefreshMsg:
		u.deps.Store.Invalidate(cache.UsersKey())
		return u.Init()

	case tea.KeyMsg:
		return u.handleKey(msg)
	}
	return nil
}

func (u *Users) handleKey(msg tea.KeyMsg) tea.Cmd {
	if u.busy {
		return nil
	}

	switch u.mode {
	case usersModeList:
		switch msg.String() {
		case "up", "k":
			if u.cursor > 0 {
				u.cursor--
			}
		case "down", "j":
			if u.cursor < len(u.users)-1 {
				u.cursor++
			}
		case "o":
			if len(u.users) > 0 && !u.isSelf() {
				u.mode = usersModeRole
				u.roleIdx = 0
				for i, r := range assignableRoles {
					if r == u.users[u.cursor].Role {
						u.roleIdx = i
					}
				}
			}
		case "s":
			if len(u.users) > 0 && !u.isSelf() {
				u.mode = usersModeSuspend
			}
		case "r":
			return Refresh()
		case "q", "esc":
			return Navigate("dashboard")
		}

	case usersModeRole:
		switch msg.String() {
		case "left", "up":
			u.roleIdx = (u.roleIdx - 1 + len(assignableRoles)) % len(assignableRoles)
		case "right", "down":
			u.roleIdx = (u.roleIdx + 1) % len(assignableRoles)
		case "enter":
			target := u.users[u.cursor]
			role := assignableRoles[u.roleIdx]
			return u.runAction(fmt.Sprintf("%s is now %s", target.DisplayName(), role), func(ctx context.Context) error {
				return u.deps.API.UpdateUserRole(ctx, target.ID, role)
			})
		case "esc":
			u.mode = usersModeList
		}

	case usersModeSuspend:
		switch msg.String() {
		case "y", "Y":
			target := u.users[u.cursor]
			suspend := !target.IsSuspended
			verb := "suspended"
			if !suspend {
				verb = "reinstated"
			}
			return u.runAction(fmt.Sprintf("%s %s", target.DisplayName(), verb), func(ctx context.Context) error {
				return u.deps.API.SuspendUser(ctx, target.ID, suspend)
			})
		case "n", "N", "esc":
			u.mode = usersModeList
		}
	}
	return nil
}

func (u *Users) isSelf() bool {
	return u.cursor < len(u.users) && u.users[u.cursor].ID == u.deps.Actor.ID
}

func (u *Users) runAction(success string, fn func(context.Context) error) tea.Cmd {
	u.busy = true
	return func() tea.Msg {
		if err := fn(context.Background()); err != nil {
			return userActionMsg{err: err}
		}
		u.deps.Store.Invalidate(cache.UsersKey())
		return userActionMsg{message: success}
	}
}

func (u *Users) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("USERS"))
	b.WriteString("\n\n")

	if u.loading {
		b.WriteString("Loading...\n")
		return b.String()
	}

	if u.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", u.err)))
		b.WriteString("\n\n")
	}
	if u.message != "" {
		b.WriteString(SuccessStyle.Render(u.message))
		b.WriteString("\n\n")
	}

	if u.mode == usersModeRole && u.cursor < len(u.users) {
		b.WriteString(fmt.Sprintf("New role for %s:\n", u.users[u.cursor].DisplayName()))
		b.WriteString(SelectedStyle.Render("< " + string(assignableRoles[u.roleIdx]) + " >"))
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[left/right] Change  [enter] Save  [esc] Cancel"))
		return b.String()
	}

	if u.mode == usersModeSuspend && u.cursor < len(u.users) {
		target := u.users[u.cursor]
		verb := "Suspend"
		if target.IsSuspended {
			verb = "Reinstate"
		}
		b.WriteString(WarningStyle.Render(fmt.Sprintf("%s %s? (y/n)", verb, target.DisplayName())))
		b.WriteString("\n")
		return b.String()
	}

	if len(u.users) == 0 {
		b.WriteString(DimStyle.Render("No users."))
		b.WriteString("\n")
	} else {
		for i, usr := range u.users {
			cursor := "  "
			style := NormalStyle
			if i == u.cursor {
				cursor = "> "
				style = SelectedStyle
			}

			status := ""
			if usr.IsSuspended {
				status = WarningStyle.Render(" [suspended]")
			}
			self := ""
			if usr.ID == u.deps.Actor.ID {
				self = DimStyle.Render(" (you)")
			}
			line := fmt.Sprintf("%s%-30s %-10s", cursor, usr.DisplayName(), usr.Role)
			b.WriteString(style.Render(line))
			b.WriteString(status)
			b.WriteString(self)
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	b.WriteString(HelpStyle.Render("[o] Change role  [s] Suspend/reinstate  [r] Refresh  [q] Back"))
	return b.String()
}
