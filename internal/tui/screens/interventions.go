package screens

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dealdesk/dealdesk/internal/api"
	"github.com/dealdesk/dealdesk/internal/cache"
	"github.com/dealdesk/dealdesk/internal/forms"
	"github.com/dealdesk/dealdesk/internal/models"
)

type interventionsMode int

const (
	interventionsModeList interventionsMode = iota
	interventionsModeAdd
	interventionsModeEdit
	interventionsModeDelete
)

var interventionTypes = []models.InterventionType{
	models.InterventionLinkedinMessage,
	models.InterventionCall,
	models.InterventionWhatsapp,
	models.InterventionEmail,
	models.InterventionMeeting,
	models.InterventionDocument,
}

type Interventions struct {
	deps   Deps
	width  int
	height int

	lead      models.Lead
	items     []models.Intervention
	scheduled bool // scheduled-tasks view across leads
	cursor    int
	mode      interventionsMode
	loading   bool
	busy      bool
	err       error
	message   string

	typeIdx   int
	dateInput textinput.Model
	noteInput textinput.Model
	docInput  textinput.Model
	formFocus int
}

func NewInterventions(deps Deps) *Interventions {
	i := &Interventions{deps: deps}
	i.dateInput = NewInput(dateTimeLayout, 20)
	i.noteInput = NewInput("Notes", 60)
	i.docInput = NewInput("Document name (PDM, MTS, ...)", 30)
	return i
}

func (i *Interventions) SetSize(width, height int) {
	i.width = width
	i.height = height
}

// SetLead scopes the screen to one lead's interventions.
func (i *Interventions) SetLead(lead models.Lead) {
	i.lead = lead
	i.scheduled = false
	i.cursor = 0
}

// SetScheduled switches to the cross-lead scheduled tasks view.
func (i *Interventions) SetScheduled() {
	i.scheduled = true
	i.cursor = 0
}

type interventionsDataMsg struct {
	items []models.Intervention
	err   error
}

type interventionActionMsg struct {
	message string
	err     error
}

func (i *Interventions) Init() tea.Cmd {
	i.loading = true
	i.mode = interventionsModeList
	i.message = ""
	return i.loadData
}

func (i *Interventions) loadData() tea.Msg {
	ctx := context.Background()
	if i.scheduled {
		items, err := cache.Fetch(ctx, i.deps.Store, cache.ScheduledInterventionsKey(), func(ctx context.Context) ([]models.Intervention, error) {
			return i.deps.API.ListScheduledInterventions(ctx)
		})
		return interventionsDataMsg{items: items, err: err}
	}
	items, err := cache.Fetch(ctx, i.deps.Store, cache.InterventionsKey(i.lead.ID), func(ctx context.Context) ([]models.Intervention, error) {
		return i.deps.API.ListInterventions(ctx, i.lead.ID)
	})
	return interventionsDataMsg{items: items, err: err}
}

func (i *Interventions) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case interventionsDataMsg:
		i.loading = false
		i.err = msg.err
		i.items = msg.items
		if i.cursor >= len(i.items) {
			i.cursor = max(0, len(i.items)-1)
		}
		return nil

	case interventionActionMsg:
		i.busy = false
		i.err = msg.err
		if msg.err == nil {
			i.message = msg.message
			i.mode = interventionsModeList
			return i.loadData
		}
		return nil

	case RefreshMsg:
		if i.scheduled {
			i.deps.Store.Invalidate(cache.ScheduledInterventionsKey())
		} else {
			i.deps.Store.Invalidate(cache.InterventionsKey(i.lead.ID))
		}
		return i.Init()

	case tea.KeyMsg:
		return i.handleKey(msg)
	}

	if i.mode == interventionsModeAdd || i.mode == interventionsModeEdit {
		return i.updateFormInput(msg)
	}
	return nil
}

func (i *Interventions) updateFormInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch i.formFocus {
	case 1:
		i.dateInput, cmd = i.dateInput.Update(msg)
	case 2:
		i.noteInput, cmd = i.noteInput.Update(msg)
	case 3:
		i.docInput, cmd = i.docInput.Update(msg)
	}
	return cmd
}

func (i *Interventions) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch i.mode {
	case interventionsModeList:
		return i.handleListKey(msg)
	case interventionsModeAdd, interventionsModeEdit:
		return i.handleFormKey(msg)
	case interventionsModeDelete:
		return i.handleDeleteKey(msg)
	}
	return nil
}

func (i *Interventions) handleListKey(msg tea.KeyMsg) tea.Cmd {
	if i.busy {
		return nil
	}

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
		if !i.scheduled {
			i.openForm(nil)
		}
	case "e":
		if !i.scheduled && len(i.items) > 0 {
			iv := i.items[i.cursor]
			i.openForm(&iv)
		}
	case "d":
		if !i.scheduled && len(i.items) > 0 {
			i.mode = interventionsModeDelete
		}
	case "r":
		return Refresh()
	case "q", "esc":
		if i.scheduled {
			return Navigate("dashboard")
		}
		return NavigateWithStage("leads", i.lead.Stage)
	}
	return nil
}

func (i *Interventions) openForm(existing *models.Intervention) {
	i.formFocus = 0
	i.typeIdx = 0
	i.dateInput.SetValue(time.Now().Format(dateTimeLayout))
	i.noteInput.SetValue("")
	i.docInput.SetValue("")

	if existing != nil {
		i.mode = interventionsModeEdit
		for idx, t := range interventionTypes {
			if t == existing.Type {
				i.typeIdx = idx
			}
		}
		i.dateInput.SetValue(existing.ScheduledAt.Format(dateTimeLayout))
		i.noteInput.SetValue(existing.Notes)
		i.docInput.SetValue(existing.DocumentName)
	} else {
		i.mode = interventionsModeAdd
	}
}

func (i *Interventions) formFields() int {
	if interventionTypes[i.typeIdx] == models.InterventionDocument {
		return 4
	}
	return 3
}

func (i *Interventions) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		i.mode = interventionsModeList
		i.blurForm()
		return nil
	case "tab", "down":
		i.moveFocus(1)
		return nil
	case "shift+tab", "up":
		i.moveFocus(-1)
		return nil
	case "left", "right":
		if i.formFocus == 0 {
			dir := 1
			if msg.String() == "left" {
				dir = -1
			}
			i.typeIdx = (i.typeIdx + dir + len(interventionTypes)) % len(interventionTypes)
			return nil
		}
	case "enter":
		if i.formFocus < i.formFields()-1 {
			i.moveFocus(1)
			return nil
		}
		return i.submitForm()
	}
	return i.updateFormInput(msg)
}

func (i *Interventions) moveFocus(dir int) {
	i.blurForm()
	i.formFocus = (i.formFocus + dir + i.formFields()) % i.formFields()
	switch i.formFocus {
	case 1:
		i.dateInput.Focus()
	case 2:
		i.noteInput.Focus()
	case 3:
		i.docInput.Focus()
	}
}

func (i *Interventions) blurForm() {
	i.dateInput.Blur()
	i.noteInput.Blur()
	i.docInput.Blur()
}

func (i *Interventions) submitForm() tea.Cmd {
	typ := interventionTypes[i.typeIdx]
	at, err := time.Parse(dateTimeLayout, strings.TrimSpace(i.dateInput.Value()))
	if err != nil {
		i.err = fmt.Errorf("scheduled time must look like %s", dateTimeLayout)
		return nil
	}

	form := forms.InterventionForm{
		LeadID:       i.lead.ID,
		Type:         string(typ),
		ScheduledAt:  i.dateInput.Value(),
		Notes:        i.noteInput.Value(),
		DocumentName: strings.TrimSpace(i.docInput.Value()),
	}
	if err := forms.Validate(form); err != nil {
		i.err = err
		return nil
	}
	i.err = nil

	input := api.InterventionInput{
		LeadID:       i.lead.ID,
		Type:         typ,
		ScheduledAt:  at,
		Notes:        form.Notes,
		DocumentName: form.DocumentName,
	}

	editing := i.mode == interventionsModeEdit
	var id int64
	if editing && i.cursor < len(i.items) {
		id = i.items[i.cursor].ID
	}
	i.blurForm()

	return i.runAction("Intervention saved", func(ctx context.Context) error {
		var err error
		if editing {
			_, err = i.deps.API.UpdateIntervention(ctx, id, input)
		} else {
			_, err = i.deps.API.CreateIntervention(ctx, input)
		}
		return err
	})
}

func (i *Interventions) handleDeleteKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		if i.cursor >= len(i.items) {
			i.mode = interventionsModeList
			return nil
		}
		id := i.items[i.cursor].ID
		return i.runAction("Intervention deleted", func(ctx context.Context) error {
			return i.deps.API.DeleteIntervention(ctx, id)
		})
	case "n", "N", "esc":
		i.mode = interventionsModeList
	}
	return nil
}

func (i *Interventions) runAction(success string, fn func(context.Context) error) tea.Cmd {
	i.busy = true
	return func() tea.Msg {
		if err := fn(context.Background()); err != nil {
			return interventionActionMsg{err: err}
		}
		i.deps.Store.Invalidate(cache.InterventionsKey(i.lead.ID))
		i.deps.Store.Invalidate(cache.ScheduledInterventionsKey())
		return interventionActionMsg{message: success}
	}
}

func (i *Interventions) View() string {
	var b strings.Builder

	if i.scheduled {
		b.WriteString(TitleStyle.Render("SCHEDULED TASKS"))
		b.WriteString("\n\n")
	} else {
		b.WriteString(TitleStyle.Render("INTERVENTIONS"))
		b.WriteString("\n")
		b.WriteString(SubtitleStyle.Render(i.lead.CompanyName()))
		b.WriteString("\n\n")
	}

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

	switch i.mode {
	case interventionsModeAdd, interventionsModeEdit:
		return b.String() + i.viewForm()
	case interventionsModeDelete:
		if i.cursor < len(i.items) {
			b.WriteString(WarningStyle.Render("Delete this intervention? (y/n)"))
			b.WriteString("\n")
		}
		return b.String()
	}

	if len(i.items) == 0 {
		b.WriteString(DimStyle.Render("Nothing logged yet."))
		b.WriteString("\n")
	} else {
		for idx, iv := range i.items {
			cursor := "  "
			style := NormalStyle
			if idx == i.cursor {
				cursor = "> "
				style = SelectedStyle
			}

			label := string(iv.Type)
			if iv.Type == models.InterventionDocument && iv.DocumentName != "" {
				label = "document: " + iv.DocumentName
			}
			line := fmt.Sprintf("%s%-28s %s", cursor, label, iv.ScheduledAt.Format(dateTimeLayout))
			b.WriteString(style.Render(line))
			b.WriteString("\n")
			if iv.Notes != "" {
				b.WriteString(DimStyle.Render("    " + truncate(iv.Notes, 80)))
				b.WriteString("\n")
			}
		}
	}
	b.WriteString("\n")

	help := "[a] Add  [e] Edit  [d] Delete  [r] Refresh  [q] Back"
	if i.scheduled {
		help = "[r] Refresh  [q] Back"
	}
	b.WriteString(HelpStyle.Render(help))
	return b.String()
}

func (i *Interventions) viewForm() string {
	var b strings.Builder
	if i.mode == interventionsModeAdd {
		b.WriteString(SubtitleStyle.Render("New intervention"))
	} else {
		b.WriteString(SubtitleStyle.Render("Edit intervention"))
	}
	b.WriteString("\n\n")

	typeStyle := NormalStyle
	if i.formFocus == 0 {
		typeStyle = SelectedStyle
	}
	b.WriteString(DimStyle.Render(fmt.Sprintf("%-14s", "Type")))
	b.WriteString(typeStyle.Render("< " + string(interventionTypes[i.typeIdx]) + " >"))
	b.WriteString("\n")

	b.WriteString(DimStyle.Render(fmt.Sprintf("%-14s", "Scheduled at")))
	b.WriteString(i.dateInput.View())
	b.WriteString("\n")

	b.WriteString(DimStyle.Render(fmt.Sprintf("%-14s", "Notes")))
	b.WriteString(i.noteInput.View())
	b.WriteString("\n")

	if interventionTypes[i.typeIdx] == models.InterventionDocument {
		b.WriteString(DimStyle.Render(fmt.Sprintf("%-14s", "Document")))
		b.WriteString(i.docInput.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("[tab] Next field  [left/right] Change type  [enter] Submit on last field  [esc] Cancel"))
	return b.String()
}
