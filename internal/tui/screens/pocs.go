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
	"github.com/dealdesk/dealdesk/internal/gates"
	"github.com/dealdesk/dealdesk/internal/models"
)

// maxPocs is the per-company contact ceiling.
const maxPocs = 3

type pocsMode int

const (
	pocsModeList pocsMode = iota
	pocsModeAdd
	pocsModeEdit
	pocsModeDelete
	pocsModeDrive
)

type Pocs struct {
	deps   Deps
	width  int
	height int

	lead     models.Lead
	contacts []models.Contact
	cursor   int
	mode     pocsMode
	loading  bool
	busy     bool
	err      error
	message  string

	form      []textinput.Model
	formFocus int
	primary   bool

	driveInput textinput.Model
}

func NewPocs(deps Deps) *Pocs {
	p := &Pocs{deps: deps}
	p.driveInput = NewInput("https://drive.google.com/...", 60)
	return p
}

func (p *Pocs) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetLead points the screen at a lead before Init.
func (p *Pocs) SetLead(lead models.Lead) {
	p.lead = lead
	p.cursor = 0
}

type pocsDataMsg struct {
	contacts []models.Contact
	err      error
}

type pocActionMsg struct {
	message string
	err     error
}

func (p *Pocs) Init() tea.Cmd {
	p.loading = true
	p.mode = pocsModeList
	p.message = ""
	return p.loadData
}

func (p *Pocs) loadData() tea.Msg {
	ctx := context.Background()
	contacts, err := cache.Fetch(ctx, p.deps.Store, cache.ContactsKey(p.lead.CompanyID), func(ctx context.Context) ([]models.Contact, error) {
		return p.deps.API.ListContacts(ctx, p.lead.CompanyID)
	})
	return pocsDataMsg{contacts: contacts, err: err}
}

func (p *Pocs) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case pocsDataMsg:
		p.loading = false
		p.err = msg.err
		p.contacts = msg.contacts
		if p.cursor >= len(p.contacts) {
			p.cursor = max(0, len(p.contacts)-1)
		}
		return nil

	case pocActionMsg:
		p.busy = false
		p.err = msg.err
		if msg.err == nil {
			p.message = msg.message
			p.mode = pocsModeList
			return p.loadData
		}
		return nil

	case RefreshMsg:
		p.deps.Store.Invalidate(cache.ContactsKey(p.lead.CompanyID))
		return p.Init()

	case tea.KeyMsg:
		return p.handleKey(msg)
	}

	switch p.mode {
	case pocsModeAdd, pocsModeEdit:
		if p.formFocus < len(p.form) {
			var cmd tea.Cmd
			p.form[p.formFocus], cmd = p.form[p.formFocus].Update(msg)
			return cmd
		}
	case pocsModeDrive:
		var cmd tea.Cmd
		p.driveInput, cmd = p.driveInput.Update(msg)
		return cmd
	}
	return nil
}

func (p *Pocs) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch p.mode {
	case pocsModeList:
		return p.handleListKey(msg)
	case pocsModeAdd, pocsModeEdit:
		return p.handleFormKey(msg)
	case pocsModeDelete:
		return p.handleDeleteKey(msg)
	case pocsModeDrive:
		return p.handleDriveKey(msg)
	}
	return nil
}

func (p *Pocs) handleListKey(msg tea.KeyMsg) tea.Cmd {
	if p.busy {
		return nil
	}

	switch msg.String() {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.contacts)-1 {
			p.cursor++
		}
	case "a":
		if len(p.contacts) >= maxPocs {
			p.message = fmt.Sprintf("A company tracks at most %d POCs", maxPocs)
			return nil
		}
		p.openForm(nil)
	case "e":
		if len(p.contacts) > 0 {
			c := p.contacts[p.cursor]
			p.openForm(&c)
		}
	case "d":
		if len(p.contacts) > 0 {
			p.mode = pocsModeDelete
		}
	case "g":
		p.mode = pocsModeDrive
		if p.lead.Company != nil {
			p.driveInput.SetValue(p.lead.Company.DriveLink)
		}
		p.driveInput.Focus()
	case "r":
		return Refresh()
	case "q", "esc":
		return NavigateWithStage("leads", p.lead.Stage)
	}
	return nil
}

func (p *Pocs) openForm(existing *models.Contact) {
	p.form = []textinput.Model{
		NewInput("Name", 30),
		NewInput("Designation", 30),
		NewInput("LinkedIn profile URL", 50),
		NewInput("Email (optional)", 40),
		NewInput("Phone (optional)", 20),
	}
	p.formFocus = 0
	p.primary = false
	if existing != nil {
		p.mode = pocsModeEdit
		p.form[0].SetValue(existing.Name)
		p.form[1].SetValue(existing.Designation)
		p.form[2].SetValue(existing.LinkedinProfile)
		p.form[3].SetValue(existing.Email)
		p.form[4].SetValue(existing.Phone)
		p.primary = existing.IsPrimary
	} else {
		p.mode = pocsModeAdd
		p.primary = len(p.contacts) == 0
	}
	p.form[0].Focus()
}

func (p *Pocs) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		p.mode = pocsModeList
		return nil
	case "tab", "down":
		p.moveFocus(1)
		return nil
	case "shift+tab", "up":
		p.moveFocus(-1)
		return nil
	case "ctrl+p":
		p.primary = !p.primary
		return nil
	case "enter":
		if p.formFocus < len(p.form)-1 {
			p.moveFocus(1)
			return nil
		}
		return p.submitForm()
	}
	var cmd tea.Cmd
	p.form[p.formFocus], cmd = p.form[p.formFocus].Update(msg)
	return cmd
}

func (p *Pocs) moveFocus(dir int) {
	p.form[p.formFocus].Blur()
	p.formFocus = (p.formFocus + dir + len(p.form)) % len(p.form)
	p.form[p.formFocus].Focus()
}

func (p *Pocs) submitForm() tea.Cmd {
	value := func(i int) string { return strings.TrimSpace(p.form[i].Value()) }

	form := forms.ContactForm{
		CompanyID:       p.lead.CompanyID,
		Name:            value(0),
		Designation:     value(1),
		LinkedinProfile: value(2),
		Email:           value(3),
		Phone:           value(4),
		IsPrimary:       p.primary,
	}
	if err := forms.Validate(form); err != nil {
		p.err = err
		return nil
	}
	p.err = nil

	input := api.ContactInput{
		CompanyID:       form.CompanyID,
		Name:            form.Name,
		Designation:     form.Designation,
		Email:           form.Email,
		Phone:           form.Phone,
		LinkedinProfile: form.LinkedinProfile,
		IsPrimary:       form.IsPrimary,
	}

	editing := p.mode == pocsModeEdit
	var contactID int64
	if editing && p.cursor < len(p.contacts) {
		contactID = p.contacts[p.cursor].ID
	}

	return p.runAction(fmt.Sprintf("Saved POC %s", input.Name), func(ctx context.Context) error {
		var err error
		if editing {
			_, err = p.deps.API.UpdateContact(ctx, contactID, input)
		} else {
			_, err = p.deps.API.CreateContact(ctx, input)
		}
		return err
	})
}

func (p *Pocs) handleDeleteKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		if p.cursor >= len(p.contacts) {
			p.mode = pocsModeList
			return nil
		}
		c := p.contacts[p.cursor]
		return p.runAction(fmt.Sprintf("Deleted POC %s", c.Name), func(ctx context.Context) error {
			return p.deps.API.DeleteContact(ctx, c.ID)
		})
	case "n", "N", "esc":
		p.mode = pocsModeList
	}
	return nil
}

func (p *Pocs) handleDriveKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		link := strings.TrimSpace(p.driveInput.Value())
		p.driveInput.Blur()
		return p.runAction("Drive link updated", func(ctx context.Context) error {
			return p.deps.API.UpdateCompanyDriveLink(ctx, p.lead.CompanyID, link)
		})
	case "esc":
		p.mode = pocsModeList
		p.driveInput.Blur()
	default:
		var cmd tea.Cmd
		p.driveInput, cmd = p.driveInput.Update(msg)
		return cmd
	}
	return nil
}

// runAction performs a contact mutation and invalidates everything the POC
// traffic light feeds into.
func (p *Pocs) runAction(success string, fn func(context.Context) error) tea.Cmd {
	p.busy = true
	return func() tea.Msg {
		if err := fn(context.Background()); err != nil {
			return pocActionMsg{err: err}
		}
		p.deps.Store.Invalidate(cache.ContactsKey(p.lead.CompanyID))
		p.deps.Store.Invalidate(cache.LeadsKey(p.lead.Stage))
		p.deps.Store.Invalidate(cache.LeadsKey(cache.StageAll))
		return pocActionMsg{message: success}
	}
}

func (p *Pocs) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("POINTS OF CONTACT"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(p.lead.CompanyName()))
	b.WriteString("\n\n")

	if p.loading {
		b.WriteString("Loading...\n")
		return b.String()
	}

	if p.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", p.err)))
		b.WriteString("\n\n")
	}
	if p.message != "" {
		b.WriteString(SuccessStyle.Render(p.message))
		b.WriteString("\n\n")
	}

	switch p.mode {
	case pocsModeAdd, pocsModeEdit:
		return b.String() + p.viewForm()
	case pocsModeDelete:
		if p.cursor < len(p.contacts) {
			b.WriteString(WarningStyle.Render(fmt.Sprintf("Delete POC '%s'? (y/n)", p.contacts[p.cursor].Name)))
			b.WriteString("\n")
		}
		return b.String()
	case pocsModeDrive:
		b.WriteString("Google Drive folder link:\n")
		b.WriteString(p.driveInput.View())
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[enter] Save  [esc] Cancel"))
		return b.String()
	}

	b.WriteString("Company completeness: ")
	b.WriteString(PocBadge(gates.CompletionStatus(p.contacts)))
	b.WriteString("\n\n")

	if len(p.contacts) == 0 {
		b.WriteString(DimStyle.Render("No POCs yet. Press 'a' to add one."))
		b.WriteString("\n")
	} else {
		for i, c := range p.contacts {
			cursor := "  "
			style := NormalStyle
			if i == p.cursor {
				cursor = "> "
				style = SelectedStyle
			}

			primary := ""
			if c.IsPrimary {
				primary = " (primary)"
			}
			line := fmt.Sprintf("%s%-24s %-20s%s", cursor, c.Name, c.Designation, primary)
			b.WriteString(style.Render(line))
			b.WriteString(" ")
			b.WriteString(PocBadge(gates.ContactCompletion(c)))
			b.WriteString("\n")

			detail := fmt.Sprintf("    %s  %s  %s", orDash(c.Email), orDash(c.Phone), orDash(c.LinkedinProfile))
			b.WriteString(DimStyle.Render(detail))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	help := "[a] Add  [e] Edit  [d] Delete  [g] Drive link  [r] Refresh  [q] Back"
	b.WriteString(HelpStyle.Render(help))
	return b.String()
}

func (p *Pocs) viewForm() string {
	var b strings.Builder
	if p.mode == pocsModeAdd {
		b.WriteString(SubtitleStyle.Render("New POC"))
	} else {
		b.WriteString(SubtitleStyle.Render("Edit POC"))
	}
	b.WriteString("\n\n")

	labels := []string{"Name", "Designation", "LinkedIn", "Email", "Phone"}
	for i, in := range p.form {
		b.WriteString(DimStyle.Render(fmt.Sprintf("%-14s", labels[i])))
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	primary := "no"
	if p.primary {
		primary = "yes"
	}
	b.WriteString(DimStyle.Render(fmt.Sprintf("%-14s%s", "Primary", primary)))
	b.WriteString("\n\n")
	b.WriteString(HelpStyle.Render("[tab] Next field  [ctrl+p] Toggle primary  [enter] Submit on last field  [esc] Cancel"))
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
