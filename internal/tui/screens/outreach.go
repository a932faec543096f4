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
	"github.com/dealdesk/dealdesk/internal/models"
)

type outreachMode int

const (
	outreachModeList outreachMode = iota
	outreachModeAdd
	outreachModeEdit
)

var outreachTypes = []models.OutreachActivityType{
	models.OutreachLinkedinRequestSelf,
	models.OutreachLinkedinRequestKvs,
	models.OutreachLinkedinRequestDinesh,
	models.OutreachEmailD0Analyst,
	models.OutreachEmailD3Analyst,
	models.OutreachEmailD7Kvs,
}

var outreachStatuses = []models.OutreachStatus{
	models.OutreachPending,
	models.OutreachSent,
	models.OutreachReceived,
	models.OutreachFollowUp,
	models.OutreachInvalid,
	models.OutreachCompleted,
	models.OutreachScheduled,
}

type Outreach struct {
	deps   Deps
	width  int
	height int

	lead    models.Lead
	items   []models.OutreachActivity
	cursor  int
	mode    outreachMode
	loading bool
	busy    bool
	err     error
	message string

	typeIdx     int
	statusIdx   int
	contactDate textinput.Model
	followUp    textinput.Model
	notes       textinput.Model
	formFocus   int
}

func NewOutreach(deps Deps) *Outreach {
	o := &Outreach{deps: deps}
	o.contactDate = NewInput("Contact date 2006-01-02 (optional)", 26)
	o.followUp = NewInput("Follow-up date 2006-01-02 (optional)", 26)
	o.notes = NewInput("Notes", 60)
	return o
}

func (o *Outreach) SetSize(width, height int) {
	o.width = width
	o.height = height
}

func (o *Outreach) SetLead(lead models.Lead) {
	o.lead = lead
	o.cursor = 0
}

type outreachDataMsg struct {
	items []models.OutreachActivity
	err   error
}

type outreachActionMsg struct {
	message string
	err     error
}

func (o *Outreach) Init() tea.Cmd {
	o.loading = true
	o.mode = outreachModeList
	o.message = ""
	return o.loadData
}

func (o *Outreach) loadData() tea.Msg {
	ctx := context.Background()
	items, err := cache.Fetch(ctx, o.deps.Store, cache.OutreachKey(o.lead.ID), func(ctx context.Context) ([]models.OutreachActivity, error) {
		return o.deps.API.ListOutreach(ctx, o.lead.ID)
	})
	return outreachDataMsg{items: items, err: err}
}

func (o *Outreach) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case outreachDataMsg:
		o.loading = false
		o.err = msg.err
		o.items = msg.items
		if o.cursor >= len(o.items) {
			o.cursor = max(0, len(o.items)-1)
		}
		return nil

	case outreachActionMsg:
		o.busy = false
		o.err = msg.err
		if msg.err == nil {
			o.message = msg.message
			o.mode = outreachModeList
			return o.loadData
		}
		return nil

	case RefreshMsg:
		o.deps.Store.Invalidate(cache.OutreachKey(o.lead.ID))
		return o.Init()

	case tea.KeyMsg:
		return o.handleKey(msg)
	}

	if o.mode != outreachModeList {
		return o.updateFormInput(msg)
	}
	return nil
}

func (o *Outreach) updateFormInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch o.formFocus {
	case 2:
		o.contactDate, cmd = o.contactDate.Update(msg)
	case 3:
		o.followUp, cmd = o.followUp.Update(msg)
	case 4:
		o.notes, cmd = o.notes.Update(msg)
	}
	return cmd
}

func (o *Outreach) handleKey(msg tea.KeyMsg) tea.Cmd {
	if o.mode == outreachModeList {
		return o.handleListKey(msg)
	}
	return o.handleFormKey(msg)
}

func (o *Outreach) handleListKey(msg tea.KeyMsg) tea.Cmd {
	if o.busy {
		return nil
	}

	switch msg.String() {
	case "up", "k":
		if o.cursor > 0 {
			o.cursor--
		}
	case "down", "j":
		if o.cursor < len(o.items)-1 {
			o.cursor++
		}
	case "a":
		o.openForm(nil)
	case "e":
		if len(o.items) > 0 {
			item := o.items[o.cursor]
			o.openForm(&item)
		}
	case "v":
		return Navigate("scheduled")
	case "r":
		return Refresh()
	case "q", "esc":
		return NavigateWithStage("leads", o.lead.Stage)
	}
	return nil
}

func (o *Outreach) openForm(existing *models.OutreachActivity) {
	o.formFocus = 0
	o.typeIdx = 0
	o.statusIdx = 0
	o.contactDate.SetValue("")
	o.followUp.SetValue("")
	o.notes.SetValue("")

	if existing != nil {
		o.mode = outreachModeEdit
		for i, t := range outreachTypes {
			if t == existing.ActivityType {
				o.typeIdx = i
			}
		}
		for i, s := range outreachStatuses {
			if s == existing.Status {
				o.statusIdx = i
			}
		}
		if existing.ContactDate != nil {
			o.contactDate.SetValue(existing.ContactDate.Format("2006-01-02"))
		}
		if existing.FollowUpDate != nil {
			o.followUp.SetValue(existing.FollowUpDate.Format("2006-01-02"))
		}
		o.notes.SetValue(existing.Notes)
	} else {
		o.mode = outreachModeAdd
	}
}

const outreachFormFields = 5

func (o *Outreach) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		o.mode = outreachModeList
		o.blurForm()
		return nil
	case "tab", "down":
		o.moveFocus(1)
		return nil
	case "shift+tab", "up":
		o.moveFocus(-1)
		return nil
	case "left", "right":
		dir := 1
		if msg.String() == "left" {
			dir = -1
		}
		switch o.formFocus {
		case 0:
			o.typeIdx = (o.typeIdx + dir + len(outreachTypes)) % len(outreachTypes)
			return nil
		case 1:
			o.statusIdx = (o.statusIdx + dir + len(outreachStatuses)) % len(outreachStatuses)
			return nil
		}
	case "enter":
		if o.formFocus < outreachFormFields-1 {
			o.moveFocus(1)
			return nil
		}
		return o.submitForm()
	}
	return o.updateFormInput(msg)
}

func (o *Outreach) moveFocus(dir int) {
	o.blurForm()
	o.formFocus = (o.formFocus + dir + outreachFormFields) % outreachFormFields
	switch o.formFocus {
	case 2:
		o.contactDate.Focus()
	case 3:
		o.followUp.Focus()
	case 4:
		o.notes.Focus()
	}
}

func (o *Outreach) blurForm() {
	o.contactDate.Blur()
	o.followUp.Blur()
	o.notes.Blur()
}

func parseOptionalDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("%q must look like 2006-01-02", s)
	}
	return &t, nil
}

func (o *Outreach) submitForm() tea.Cmd {
	contactDate, err := parseOptionalDate(o.contactDate.Value())
	if err != nil {
		o.err = err
		return nil
	}
	followUp, err := parseOptionalDate(o.followUp.Value())
	if err != nil {
		o.err = err
		return nil
	}
	o.err = nil

	input := api.OutreachInput{
		LeadID:       o.lead.ID,
		ActivityType: outreachTypes[o.typeIdx],
		Status:       outreachStatuses[o.statusIdx],
		ContactDate:  contactDate,
		FollowUpDate: followUp,
		Notes:        o.notes.Value(),
	}

	editing := o.mode == outreachModeEdit
	var id int64
	if editing && o.cursor < len(o.items) {
		id = o.items[o.cursor].ID
	}
	o.blurForm()

	return o.runAction("Outreach activity saved", func(ctx context.Context) error {
		var err error
		if editing {
			_, err = o.deps.API.UpdateOutreach(ctx, id, input)
		} else {
			_, err = o.deps.API.CreateOutreach(ctx, input)
		}
		return err
	})
}

func (o *Outreach) runAction(success string, fn func(context.Context) error) tea.Cmd {
	o.busy = true
	return func() tea.Msg {
		if err := fn(context.Background()); err != nil {
			return outreachActionMsg{err: err}
		}
		o.deps.Store.Invalidate(cache.OutreachKey(o.lead.ID))
		// A follow-up date schedules a task, so that view is stale too.
		o.deps.Store.Invalidate(cache.ScheduledInterventionsKey())
		return outreachActionMsg{message: success}
	}
}

func (o *Outreach) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("OUTREACH"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(o.lead.CompanyName()))
	b.WriteString("\n\n")

	if o.loading {
		b.WriteString("Loading...\n")
		return b.String()
	}

	if o.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", o.err)))
		b.WriteString("\n\n")
	}
	if o.message != "" {
		b.WriteString(SuccessStyle.Render(o.message))
		b.WriteString("\n\n")
	}

	if o.mode != outreachModeList {
		return b.String() + o.viewForm()
	}

	if len(o.items) == 0 {
		b.WriteString(DimStyle.Render("No outreach activity yet."))
		b.WriteString("\n")
	} else {
		for idx, item := range o.items {
			cursor := "  "
			style := NormalStyle
			if idx == o.cursor {
				cursor = "> "
				style = SelectedStyle
			}

			line := fmt.Sprintf("%s%-26s %-10s", cursor, item.ActivityType, item.Status)
			if item.FollowUpDate != nil {
				line += "  follow-up " + item.FollowUpDate.Format("2006-01-02")
			}
			b.WriteString(style.Render(line))
			b.WriteString("\n")
			if item.Notes != "" {
				b.WriteString(DimStyle.Render("    " + truncate(item.Notes, 80)))
				b.WriteString("\n")
			}
		}
	}
	b.WriteString("\n")

	b.WriteString(HelpStyle.Render("[a] Add  [e] Edit  [v] Scheduled tasks  [r] Refresh  [q] Back"))
	return b.String()
}

func (o *Outreach) viewForm() string {
	var b strings.Builder
	if o.mode == outreachModeAdd {
		b.WriteString(SubtitleStyle.Render("New outreach activity"))
	} else {
		b.WriteString(SubtitleStyle.Render("Edit outreach activity"))
	}
	b.WriteString("\n\n")

	selector := func(focus int, label, value string) {
		style := NormalStyle
		if o.formFocus == focus {
			style = SelectedStyle
		}
		b.WriteString(DimStyle.Render(fmt.Sprintf("%-14s", label)))
		b.WriteString(style.Render("< " + value + " >"))
		b.WriteString("\n")
	}
	selector(0, "Activity", string(outreachTypes[o.typeIdx]))
	selector(1, "Status", string(outreachStatuses[o.statusIdx]))

	b.WriteString(DimStyle.Render(fmt.Sprintf("%-14s", "Contacted")))
	b.WriteString(o.contactDate.View())
	b.WriteString("\n")
	b.WriteString(DimStyle.Render(fmt.Sprintf("%-14s", "Follow-up")))
	b.WriteString(o.followUp.View())
	b.WriteString("\n")
	b.WriteString(DimStyle.Render(fmt.Sprintf("%-14s", "Notes")))
	b.WriteString(o.notes.View())
	b.WriteString("\n\n")

	b.WriteString(HelpStyle.Render("[tab] Next field  [left/right] Change selection  [enter] Submit on last field  [esc] Cancel"))
	return b.String()
}
