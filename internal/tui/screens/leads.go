package screens

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dealdesk/dealdesk/internal/api"
	"github.com/dealdesk/dealdesk/internal/assign"
	"github.com/dealdesk/dealdesk/internal/cache"
	"github.com/dealdesk/dealdesk/internal/forms"
	"github.com/dealdesk/dealdesk/internal/gates"
	"github.com/dealdesk/dealdesk/internal/leadview"
	"github.com/dealdesk/dealdesk/internal/models"
	"github.com/dealdesk/dealdesk/internal/transition"
)

type leadsMode int

const (
	leadsModeList leadsMode = iota
	leadsModeSearch
	leadsModeReject
	leadsModeEngagement
	leadsModeMandate
	leadsModeDocument
	leadsModeAssign
	leadsModeBulkAssign
	leadsModeNewLead
)

const dateTimeLayout = "2006-01-02 15:04"

// stageTabs is the tab order across the top of the screen.
var stageTabs = append([]models.Stage{cache.StageAll}, models.AllStages...)

type Leads struct {
	deps   Deps
	width  int
	height int

	stage    models.Stage
	query    leadview.Query
	raw      []models.Lead
	result   leadview.Result
	cursor   int
	selected map[int64]bool
	sectors  []string
	sector   int // index into sectors, -1 = no filter

	mode    leadsMode
	loading bool
	busy    bool
	err     error
	message string

	searchInput textinput.Model
	rejectInput textinput.Model

	// engagement wizard
	engStep     int
	engDate     textinput.Model
	engNotes    textinput.Model
	engContacts []models.Contact
	engCursor   int
	engArtifact transition.EngagementArtifact

	// document dialog
	docCursor int
	docStep   int
	docDate   textinput.Model
	docNotes  textinput.Model

	// assignment modal
	widget       *assign.Widget
	candidates   []models.User
	assignCursor int
	internSel    map[string]bool

	// new lead form
	form      []textinput.Model
	formFocus int
}

var docChoices = []string{
	models.DocumentPDM,
	models.DocumentMTS,
	models.DocumentLoE,
	models.DocumentContract,
}

func NewLeads(deps Deps) *Leads {
	l := &Leads{
		deps:     deps,
		stage:    models.StageUniverse,
		selected: make(map[int64]bool),
		sector:   -1,
	}
	l.query.PageSize = deps.PageSize
	l.query.Page = 1

	l.searchInput = NewInput("Search company, sector, location...", 40)
	l.rejectInput = NewInput("Reason for rejection", 60)
	l.engDate = NewInput(dateTimeLayout, 20)
	l.engNotes = NewInput("Meeting notes", 60)
	l.docDate = NewInput("2006-01-02", 14)
	l.docNotes = NewInput("Notes", 60)
	return l
}

func (l *Leads) SetSize(width, height int) {
	l.width = width
	l.height = height
}

// SetStage points the screen at a stage tab before Init.
func (l *Leads) SetStage(stage models.Stage) {
	if stage != "" {
		l.stage = stage
	}
}

type leadsDataMsg struct {
	leads []models.Lead
	err   error
}

type leadActionMsg struct {
	message string
	err     error
}

type contactsLoadedMsg struct {
	contacts []models.Contact
	err      error
}

type assignReadyMsg struct {
	candidates []models.User
	err        error
}

func (l *Leads) Init() tea.Cmd {
	l.loading = true
	l.mode = leadsModeList
	l.message = ""
	return l.loadData
}

func (l *Leads) loadData() tea.Msg {
	ctx := context.Background()
	leads, err := cache.Fetch(ctx, l.deps.Store, cache.LeadsKey(l.stage), func(ctx context.Context) ([]models.Lead, error) {
		if l.stage == cache.StageAll {
			return l.deps.API.ListLeads(ctx)
		}
		return l.deps.API.ListLeadsByStage(ctx, l.stage)
	})
	if err != nil {
		// Fall back to a warm-start snapshot so the list still paints.
		if v, ok := l.deps.Store.Peek(cache.LeadsKey(l.stage)); ok {
			if cached, ok := v.([]models.Lead); ok {
				return leadsDataMsg{leads: cached, err: fmt.Errorf("showing saved data: %w", err)}
			}
		}
		return leadsDataMsg{err: err}
	}
	if l.deps.Warm != nil {
		l.deps.Warm(l.stage, leads)
	}
	return leadsDataMsg{leads: leads, err: err}
}

func (l *Leads) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case leadsDataMsg:
		l.loading = false
		l.err = msg.err
		l.raw = msg.leads
		l.sectors = leadview.Sectors(l.raw)
		l.refreshView()
		return nil

	case leadActionMsg:
		l.busy = false
		l.err = msg.err
		if msg.err == nil {
			l.message = msg.message
			l.mode = leadsModeList
			return l.loadData
		}
		return nil

	case contactsLoadedMsg:
		l.busy = false
		if msg.err != nil {
			l.err = msg.err
			l.mode = leadsModeList
			return nil
		}
		// An empty contact list means the gate can never pass; close the
		// wizard with the blocking message instead of an empty POC picker.
		if len(msg.contacts) == 0 {
			if l.mode == leadsModeEngagement {
				l.err = gates.ErrNoContacts
				l.mode = leadsModeList
			}
			return nil
		}
		l.engContacts = msg.contacts
		return nil

	case assignReadyMsg:
		l.busy = false
		if msg.err != nil {
			l.err = msg.err
			l.mode = leadsModeList
			return nil
		}
		l.candidates = msg.candidates
		return nil

	case RefreshMsg:
		l.deps.Store.Invalidate(cache.LeadsKey(l.stage))
		return l.Init()

	case tea.KeyMsg:
		return l.handleKey(msg)
	}

	// Route remaining messages (blink ticks etc) into the focused input.
	return l.updateInputs(msg)
}

func (l *Leads) updateInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch l.mode {
	case leadsModeSearch:
		l.searchInput, cmd = l.searchInput.Update(msg)
	case leadsModeReject:
		l.rejectInput, cmd = l.rejectInput.Update(msg)
	case leadsModeEngagement:
		switch l.engStep {
		case 0:
			l.engDate, cmd = l.engDate.Update(msg)
		case 1:
			l.engNotes, cmd = l.engNotes.Update(msg)
		}
	case leadsModeDocument:
		switch l.docStep {
		case 1:
			l.docDate, cmd = l.docDate.Update(msg)
		case 2:
			l.docNotes, cmd = l.docNotes.Update(msg)
		}
	case leadsModeNewLead:
		if l.formFocus < len(l.form) {
			l.form[l.formFocus], cmd = l.form[l.formFocus].Update(msg)
		}
	}
	return cmd
}

func (l *Leads) refreshView() {
	l.query.Sector = ""
	if l.sector >= 0 && l.sector < len(l.sectors) {
		l.query.Sector = l.sectors[l.sector]
	}
	l.result = leadview.Apply(l.raw, l.query)
	if l.cursor >= len(l.result.Leads) {
		l.cursor = max(0, len(l.result.Leads)-1)
	}
}

func (l *Leads) currentLead() (models.Lead, bool) {
	if l.cursor < 0 || l.cursor >= len(l.result.Leads) {
		return models.Lead{}, false
	}
	return l.result.Leads[l.cursor], true
}

func (l *Leads) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch l.mode {
	case leadsModeList:
		return l.handleListKey(msg)
	case leadsModeSearch:
		return l.handleSearchKey(msg)
	case leadsModeReject:
		return l.handleRejectKey(msg)
	case leadsModeEngagement:
		return l.handleEngagementKey(msg)
	case leadsModeMandate:
		return l.handleMandateKey(msg)
	case leadsModeDocument:
		return l.handleDocumentKey(msg)
	case leadsModeAssign, leadsModeBulkAssign:
		return l.handleAssignKey(msg)
	case leadsModeNewLead:
		return l.handleNewLeadKey(msg)
	}
	return nil
}

func (l *Leads) handleListKey(msg tea.KeyMsg) tea.Cmd {
	if l.busy {
		return nil
	}

	switch msg.String() {
	case "up", "k":
		if l.cursor > 0 {
			l.cursor--
		}
	case "down", "j":
		if l.cursor < len(l.result.Leads)-1 {
			l.cursor++
		}
	case "tab":
		return l.switchStage(1)
	case "shift+tab":
		return l.switchStage(-1)
	case "n":
		if l.query.Page < l.result.Pages {
			l.query.Page++
			l.refreshView()
		}
	case "p":
		if l.query.Page > 1 {
			l.query.Page--
			l.refreshView()
		}
	case "/":
		l.mode = leadsModeSearch
		l.searchInput.SetValue(l.query.Search)
		l.searchInput.Focus()
	case "f":
		l.sector++
		if l.sector >= len(l.sectors) {
			l.sector = -1
		}
		l.query.Page = 1
		l.refreshView()
	case "s":
		l.query.Sort = nextSort(l.query.Sort)
		l.refreshView()
	case " ":
		if lead, ok := l.currentLead(); ok && l.deps.Actor.Role.CanAssign() {
			l.selected[lead.ID] = !l.selected[lead.ID]
			if !l.selected[lead.ID] {
				delete(l.selected, lead.ID)
			}
		}
	case "m":
		return l.startAdvance()
	case "x":
		if lead, ok := l.currentLead(); ok && lead.Stage.CanReject() {
			l.mode = leadsModeReject
			l.rejectInput.SetValue("")
			l.rejectInput.Focus()
		}
	case "a":
		return l.startAssign()
	case "b":
		return l.startBulkAssign()
	case "U":
		return l.unassignAll()
	case "N":
		if l.deps.Actor.Role != models.RoleIntern {
			l.openNewLeadForm()
		}
	case "enter":
		if lead, ok := l.currentLead(); ok {
			return NavigateToLead("pocs", lead)
		}
	case "i":
		if lead, ok := l.currentLead(); ok {
			return NavigateToLead("interventions", lead)
		}
	case "t":
		if lead, ok := l.currentLead(); ok {
			return NavigateToLead("outreach", lead)
		}
	case "r":
		return Refresh()
	case "q", "esc":
		return Navigate("dashboard")
	}
	return nil
}

func (l *Leads) switchStage(dir int) tea.Cmd {
	idx := 0
	for i, s := range stageTabs {
		if s == l.stage {
			idx = i
			break
		}
	}
	idx = (idx + dir + len(stageTabs)) % len(stageTabs)
	l.stage = stageTabs[idx]
	l.cursor = 0
	l.query.Page = 1
	l.selected = make(map[int64]bool)
	return l.Init()
}

func nextSort(s leadview.SortKey) leadview.SortKey {
	switch s {
	case leadview.SortStageUpdated, "":
		return leadview.SortCompany
	case leadview.SortCompany:
		return leadview.SortCreated
	case leadview.SortCreated:
		return leadview.SortPocStatus
	default:
		return leadview.SortStageUpdated
	}
}

func (l *Leads) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		l.query.Search = l.searchInput.Value()
		l.query.Page = 1
		l.mode = leadsModeList
		l.searchInput.Blur()
		l.refreshView()
	case "esc":
		l.mode = leadsModeList
		l.searchInput.Blur()
	default:
		var cmd tea.Cmd
		l.searchInput, cmd = l.searchInput.Update(msg)
		return cmd
	}
	return nil
}

// startAdvance opens whatever the current lead's next move needs: nothing,
// a wizard, or a confirmation.
func (l *Leads) startAdvance() tea.Cmd {
	lead, ok := l.currentLead()
	if !ok {
		return nil
	}

	switch lead.Stage {
	case models.StageUniverse:
		return l.runAction(fmt.Sprintf("%s qualified", lead.CompanyName()), func(ctx context.Context) error {
			return l.deps.Flow.Qualify(ctx, l.stage, lead)
		})
	case models.StageQualified:
		return l.runAction(fmt.Sprintf("%s moved to Outreach", lead.CompanyName()), func(ctx context.Context) error {
			return l.deps.Flow.MoveToOutreach(ctx, l.stage, lead)
		})
	case models.StageOutreach:
		l.mode = leadsModeEngagement
		l.engStep = 0
		l.engArtifact = transition.EngagementArtifact{}
		l.engContacts = nil
		l.engCursor = 0
		l.engDate.SetValue(time.Now().Format(dateTimeLayout))
		l.engNotes.SetValue("")
		l.engDate.Focus()
		l.busy = true
		return l.loadContacts(lead)
	case models.StagePitching:
		l.mode = leadsModeMandate
	case models.StageMandates:
		l.mode = leadsModeDocument
		l.docStep = 0
		l.docCursor = len(docChoices) - 1
		l.docDate.SetValue(time.Now().Format("2006-01-02"))
		l.docNotes.SetValue("")
	default:
		l.message = fmt.Sprintf("%s is terminal", lead.Stage.Label())
	}
	return nil
}

func (l *Leads) loadContacts(lead models.Lead) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		contacts, err := cache.Fetch(ctx, l.deps.Store, cache.ContactsKey(lead.CompanyID), func(ctx context.Context) ([]models.Contact, error) {
			return l.deps.API.ListContacts(ctx, lead.CompanyID)
		})
		return contactsLoadedMsg{contacts: contacts, err: err}
	}
}

func (l *Leads) handleRejectKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		lead, ok := l.currentLead()
		if !ok {
			l.mode = leadsModeList
			return nil
		}
		reason := strings.TrimSpace(l.rejectInput.Value())
		l.rejectInput.Blur()
		return l.runAction(fmt.Sprintf("%s rejected", lead.CompanyName()), func(ctx context.Context) error {
			return l.deps.Flow.Reject(ctx, l.stage, lead, reason)
		})
	case "esc":
		l.mode = leadsModeList
		l.rejectInput.Blur()
	default:
		var cmd tea.Cmd
		l.rejectInput, cmd = l.rejectInput.Update(msg)
		return cmd
	}
	return nil
}

func (l *Leads) handleEngagementKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "esc" {
		l.mode = leadsModeList
		l.engDate.Blur()
		l.engNotes.Blur()
		return nil
	}

	switch l.engStep {
	case 0: // meeting date
		if msg.String() == "enter" {
			at, err := time.Parse(dateTimeLayout, strings.TrimSpace(l.engDate.Value()))
			if err != nil {
				l.err = fmt.Errorf("meeting time must look like %s", dateTimeLayout)
				return nil
			}
			l.err = nil
			l.engArtifact.MeetingAt = at
			l.engStep = 1
			l.engDate.Blur()
			l.engNotes.Focus()
			return nil
		}
		var cmd tea.Cmd
		l.engDate, cmd = l.engDate.Update(msg)
		return cmd

	case 1: // notes
		if msg.String() == "enter" {
			if strings.TrimSpace(l.engNotes.Value()) == "" {
				l.err = fmt.Errorf("meeting notes are required")
				return nil
			}
			l.err = nil
			l.engArtifact.Notes = l.engNotes.Value()
			l.engStep = 2
			l.engNotes.Blur()
			return nil
		}
		var cmd tea.Cmd
		l.engNotes, cmd = l.engNotes.Update(msg)
		return cmd

	case 2: // default POC
		switch msg.String() {
		case "up", "k":
			if l.engCursor > 0 {
				l.engCursor--
			}
		case "down", "j":
			if l.engCursor < len(l.engContacts)-1 {
				l.engCursor++
			}
		case "enter":
			if l.engCursor < len(l.engContacts) {
				l.engArtifact.DefaultPocID = l.engContacts[l.engCursor].ID
				l.engStep = 3
				l.engCursor = 0
			}
		}

	case 3: // optional backup POC
		switch msg.String() {
		case "up", "k":
			if l.engCursor > 0 {
				l.engCursor--
			}
		case "down", "j":
			if l.engCursor < len(l.engContacts)-1 {
				l.engCursor++
			}
		case "n":
			return l.submitEngagement()
		case "enter":
			if l.engCursor < len(l.engContacts) {
				id := l.engContacts[l.engCursor].ID
				if id != l.engArtifact.DefaultPocID {
					l.engArtifact.BackupPocID = &id
				}
			}
			return l.submitEngagement()
		}
	}
	return nil
}

func (l *Leads) submitEngagement() tea.Cmd {
	lead, ok := l.currentLead()
	if !ok {
		l.mode = leadsModeList
		return nil
	}

	form := forms.EngagementForm{
		MeetingAt:    strings.TrimSpace(l.engDate.Value()),
		Notes:        strings.TrimSpace(l.engNotes.Value()),
		DefaultPocID: l.engArtifact.DefaultPocID,
	}
	if l.engArtifact.BackupPocID != nil {
		form.BackupPocID = *l.engArtifact.BackupPocID
	}
	if err := forms.Validate(form); err != nil {
		l.err = err
		return nil
	}
	l.err = nil

	artifact := l.engArtifact
	return l.runAction(fmt.Sprintf("%s moved to Pitching", lead.CompanyName()), func(ctx context.Context) error {
		return l.deps.Flow.CompleteEngagement(ctx, l.stage, lead, artifact)
	})
}

func (l *Leads) handleMandateKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		lead, ok := l.currentLead()
		if !ok {
			l.mode = leadsModeList
			return nil
		}
		return l.runAction(fmt.Sprintf("%s moved to Mandates", lead.CompanyName()), func(ctx context.Context) error {
			return l.deps.Flow.ConfirmMandate(ctx, l.stage, lead)
		})
	case "n", "N", "esc":
		l.mode = leadsModeList
	}
	return nil
}

func (l *Leads) handleDocumentKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "esc" {
		l.mode = leadsModeList
		l.docDate.Blur()
		l.docNotes.Blur()
		return nil
	}

	switch l.docStep {
	case 0: // pick the document
		switch msg.String() {
		case "up", "k":
			if l.docCursor > 0 {
				l.docCursor--
			}
		case "down", "j":
			if l.docCursor < len(docChoices)-1 {
				l.docCursor++
			}
		case "enter":
			l.docStep = 1
			l.docDate.Focus()
		}

	case 1: // upload date
		if msg.String() == "enter" {
			if _, err := time.Parse("2006-01-02", strings.TrimSpace(l.docDate.Value())); err != nil {
				l.err = fmt.Errorf("upload date must look like 2006-01-02")
				return nil
			}
			l.err = nil
			l.docStep = 2
			l.docDate.Blur()
			l.docNotes.Focus()
			return nil
		}
		var cmd tea.Cmd
		l.docDate, cmd = l.docDate.Update(msg)
		return cmd

	case 2: // notes then submit
		if msg.String() == "enter" {
			form := forms.DocumentGateForm{
				DocumentName: docChoices[l.docCursor],
				UploadDate:   strings.TrimSpace(l.docDate.Value()),
				Notes:        strings.TrimSpace(l.docNotes.Value()),
			}
			if err := forms.Validate(form); err != nil {
				l.err = err
				return nil
			}
			l.err = nil
			lead, ok := l.currentLead()
			if !ok {
				l.mode = leadsModeList
				return nil
			}
			date, _ := time.Parse("2006-01-02", form.UploadDate)
			artifact := transition.DocumentArtifact{
				DocumentName: form.DocumentName,
				UploadDate:   date,
				Notes:        form.Notes,
			}
			l.docNotes.Blur()
			return l.runAction(fmt.Sprintf("%s moved to Won", lead.CompanyName()), func(ctx context.Context) error {
				return l.deps.Flow.ProgressWithDocument(ctx, l.stage, lead, models.StageWon, artifact)
			})
		}
		var cmd tea.Cmd
		l.docNotes, cmd = l.docNotes.Update(msg)
		return cmd
	}
	return nil
}

func (l *Leads) startAssign() tea.Cmd {
	lead, ok := l.currentLead()
	if !ok || !l.deps.Actor.Role.CanAssign() {
		return nil
	}

	widget, err := assign.NewWidget(l.deps.API, l.deps.Store, l.deps.Actor, l.deps.Log)
	if err != nil {
		l.err = err
		return nil
	}
	l.widget = widget
	l.mode = leadsModeAssign
	l.assignCursor = 0
	l.internSel = make(map[string]bool)
	l.busy = true

	return func() tea.Msg {
		ctx := context.Background()
		// Reassignments need the challenge token before the list is usable.
		if err := widget.Begin(ctx, lead); err != nil {
			return assignReadyMsg{err: err}
		}
		users, err := cache.Fetch(ctx, l.deps.Store, cache.UsersKey(), func(ctx context.Context) ([]models.User, error) {
			return l.deps.API.ListUsers(ctx)
		})
		if err != nil {
			return assignReadyMsg{err: err}
		}
		return assignReadyMsg{candidates: widget.Policy().Candidates(l.deps.Actor, users)}
	}
}

func (l *Leads) startBulkAssign() tea.Cmd {
	if len(l.selected) == 0 {
		l.message = "Select leads with [space] first"
		return nil
	}
	if l.deps.Actor.Role != models.RolePartner && l.deps.Actor.Role != models.RoleAdmin {
		l.message = "Bulk assignment is a partner/admin action"
		return nil
	}

	l.mode = leadsModeBulkAssign
	l.assignCursor = 0
	l.busy = true
	return func() tea.Msg {
		ctx := context.Background()
		users, err := cache.Fetch(ctx, l.deps.Store, cache.UsersKey(), func(ctx context.Context) ([]models.User, error) {
			return l.deps.API.ListUsers(ctx)
		})
		if err != nil {
			return assignReadyMsg{err: err}
		}
		return assignReadyMsg{candidates: assign.SingleAssigneePolicy{}.Candidates(l.deps.Actor, users)}
	}
}

func (l *Leads) unassignAll() tea.Cmd {
	lead, ok := l.currentLead()
	if !ok || !lead.Assigned() || !l.deps.Actor.Role.CanAssign() {
		return nil
	}
	widget, err := assign.NewWidget(l.deps.API, l.deps.Store, l.deps.Actor, l.deps.Log)
	if err != nil {
		l.err = err
		return nil
	}
	return l.runAction(fmt.Sprintf("%s unassigned", lead.CompanyName()), func(ctx context.Context) error {
		return widget.UnassignAll(ctx, l.stage, lead)
	})
}

func (l *Leads) handleAssignKey(msg tea.KeyMsg) tea.Cmd {
	if l.busy {
		return nil
	}

	switch msg.String() {
	case "up", "k":
		if l.assignCursor > 0 {
			l.assignCursor--
		}
	case "down", "j":
		if l.assignCursor < len(l.candidates)-1 {
			l.assignCursor++
		}
	case " ":
		if l.mode == leadsModeAssign && l.widget != nil && l.widget.Policy().MultiSelect() {
			if l.assignCursor < len(l.candidates) {
				id := l.candidates[l.assignCursor].ID
				l.internSel[id] = !l.internSel[id]
				if !l.internSel[id] {
					delete(l.internSel, id)
				}
			}
		}
	case "enter":
		return l.submitAssign()
	case "esc":
		l.mode = leadsModeList
		l.widget = nil
	}
	return nil
}

func (l *Leads) submitAssign() tea.Cmd {
	if l.assignCursor >= len(l.candidates) {
		return nil
	}

	if l.mode == leadsModeBulkAssign {
		assigneeID := l.candidates[l.assignCursor].ID
		ids := make([]int64, 0, len(l.selected))
		for id := range l.selected {
			ids = append(ids, id)
		}
		l.busy = true
		return func() tea.Msg {
			res, err := assign.BulkAssign(context.Background(), l.deps.API, l.deps.Store, l.deps.Actor, l.stage, ids, assigneeID)
			if err != nil {
				return leadActionMsg{err: err}
			}
			return leadActionMsg{message: res.Summary()}
		}
	}

	lead, ok := l.currentLead()
	if !ok || l.widget == nil {
		l.mode = leadsModeList
		return nil
	}
	widget := l.widget

	if widget.Policy().MultiSelect() {
		ids := make([]string, 0, len(l.internSel))
		for id := range l.internSel {
			ids = append(ids, id)
		}
		return l.runAction(fmt.Sprintf("%d intern(s) assigned to %s", len(ids), lead.CompanyName()), func(ctx context.Context) error {
			return widget.AssignInterns(ctx, l.stage, lead, ids)
		})
	}

	assignee := l.candidates[l.assignCursor]
	return l.runAction(fmt.Sprintf("%s assigned to %s", lead.CompanyName(), assignee.DisplayName()), func(ctx context.Context) error {
		return widget.Assign(ctx, l.stage, lead, assignee.ID)
	})
}

func (l *Leads) openNewLeadForm() {
	l.mode = leadsModeNewLead
	l.formFocus = 0
	l.form = []textinput.Model{
		NewInput("Company name", 40),
		NewInput("Sector", 30),
		NewInput("Location", 30),
		NewInput("Website (https://...)", 40),
		NewInput("Revenue INR Cr", 14),
		NewInput("EBITDA INR Cr", 14),
		NewInput("PAT INR Cr", 14),
		NewInput("Business description", 60),
	}
	l.form[0].Focus()
}

func (l *Leads) handleNewLeadKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		l.mode = leadsModeList
		return nil
	case "tab", "down":
		l.moveFormFocus(1)
		return nil
	case "shift+tab", "up":
		l.moveFormFocus(-1)
		return nil
	case "enter":
		if l.formFocus < len(l.form)-1 {
			l.moveFormFocus(1)
			return nil
		}
		return l.submitNewLead()
	}
	var cmd tea.Cmd
	l.form[l.formFocus], cmd = l.form[l.formFocus].Update(msg)
	return cmd
}

func (l *Leads) moveFormFocus(dir int) {
	l.form[l.formFocus].Blur()
	l.formFocus = (l.formFocus + dir + len(l.form)) % len(l.form)
	l.form[l.formFocus].Focus()
}

func (l *Leads) submitNewLead() tea.Cmd {
	value := func(i int) string { return strings.TrimSpace(l.form[i].Value()) }

	parse := func(i int) (*float64, error) {
		v := value(i)
		if v == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", v)
		}
		return &f, nil
	}

	revenue, err := parse(4)
	if err != nil {
		l.err = err
		return nil
	}
	ebitda, err := parse(5)
	if err != nil {
		l.err = err
		return nil
	}
	pat, err := parse(6)
	if err != nil {
		l.err = err
		return nil
	}

	form := forms.LeadForm{
		CompanyName:         value(0),
		Sector:              value(1),
		Location:            value(2),
		Website:             value(3),
		BusinessDescription: value(7),
		RevenueInrCr:        revenue,
	}
	if err := forms.Validate(form); err != nil {
		l.err = err
		return nil
	}
	l.err = nil

	req := api.NewLead{
		CompanyName:         form.CompanyName,
		Sector:              form.Sector,
		Location:            form.Location,
		Website:             form.Website,
		BusinessDescription: form.BusinessDescription,
		RevenueInrCr:        revenue,
		EbitdaInrCr:         ebitda,
		PatInrCr:            pat,
	}
	return l.runAction(fmt.Sprintf("Created lead for %s", req.CompanyName), func(ctx context.Context) error {
		_, err := l.deps.API.CreateLead(ctx, req)
		if err != nil {
			return err
		}
		l.deps.Store.Invalidate(cache.LeadsKey(models.StageUniverse))
		l.deps.Store.Invalidate(cache.LeadsKey(cache.StageAll))
		l.deps.Store.Invalidate(cache.MetricsKey())
		return nil
	})
}

// runAction executes one mutation off the UI goroutine and reports back.
func (l *Leads) runAction(success string, fn func(context.Context) error) tea.Cmd {
	l.busy = true
	return func() tea.Msg {
		if err := fn(context.Background()); err != nil {
			return leadActionMsg{err: err}
		}
		return leadActionMsg{message: success}
	}
}

func (l *Leads) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("LEADS"))
	b.WriteString("\n")
	b.WriteString(l.renderTabs())
	b.WriteString("\n\n")

	if l.loading {
		b.WriteString("Loading...\n")
		return b.String()
	}

	if l.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", l.err)))
		b.WriteString("\n\n")
	}
	if l.message != "" {
		b.WriteString(SuccessStyle.Render(l.message))
		b.WriteString("\n\n")
	}

	switch l.mode {
	case leadsModeSearch:
		b.WriteString("Search:\n")
		b.WriteString(l.searchInput.View())
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[enter] Apply  [esc] Cancel"))
		return b.String()

	case leadsModeReject:
		lead, _ := l.currentLead()
		b.WriteString(WarningStyle.Render(fmt.Sprintf("Reject %s - a reason is required:", lead.CompanyName())))
		b.WriteString("\n")
		b.WriteString(l.rejectInput.View())
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[enter] Reject  [esc] Cancel"))
		return b.String()

	case leadsModeEngagement:
		return b.String() + l.viewEngagement()

	case leadsModeMandate:
		lead, _ := l.currentLead()
		box := fmt.Sprintf("Move %s to Mandates?\n\nConfirm that:\n  - the Letter of Engagement is signed\n  - the client has formally committed\n  - commercial terms are agreed\n\n(y/n)", lead.CompanyName())
		b.WriteString(BoxStyle.Render(box))
		return b.String()

	case leadsModeDocument:
		return b.String() + l.viewDocument()

	case leadsModeAssign, leadsModeBulkAssign:
		return b.String() + l.viewAssign()

	case leadsModeNewLead:
		return b.String() + l.viewNewLead()
	}

	return b.String() + l.viewList()
}

func (l *Leads) renderTabs() string {
	var parts []string
	for _, s := range stageTabs {
		label := s.Label()
		if s == cache.StageAll {
			label = "All"
		}
		if s == l.stage {
			parts = append(parts, SelectedStyle.Render("["+label+"]"))
		} else {
			parts = append(parts, DimStyle.Render(label))
		}
	}
	return strings.Join(parts, "  ")
}

func (l *Leads) viewList() string {
	var b strings.Builder

	filters := []string{}
	if l.query.Search != "" {
		filters = append(filters, fmt.Sprintf("search=%q", l.query.Search))
	}
	if l.query.Sector != "" {
		filters = append(filters, "sector="+l.query.Sector)
	}
	if l.query.Sort != "" {
		filters = append(filters, "sort="+string(l.query.Sort))
	}
	if len(filters) > 0 {
		b.WriteString(DimStyle.Render(strings.Join(filters, "  ")))
		b.WriteString("\n\n")
	}

	if len(l.result.Leads) == 0 {
		b.WriteString(DimStyle.Render("No leads in this view."))
		b.WriteString("\n")
	} else {
		for i, lead := range l.result.Leads {
			cursor := "  "
			style := NormalStyle
			if i == l.cursor {
				cursor = "> "
				style = SelectedStyle
			}

			check := " "
			if l.selected[lead.ID] {
				check = "*"
			}

			assignee := "unassigned"
			if lead.AssignedUser != nil {
				assignee = lead.AssignedUser.DisplayName()
			} else if lead.AssignedTo != "" {
				assignee = lead.AssignedTo
			} else if n := len(lead.AssignedInterns); n > 0 {
				assignee = fmt.Sprintf("%d intern(s)", n)
			}

			line := fmt.Sprintf("%s[%s] %-30s %-12s %s",
				cursor, check, truncate(lead.CompanyName(), 30), lead.Stage.Label(), assignee)
			b.WriteString(style.Render(line))
			b.WriteString(" ")
			b.WriteString(PocBadge(lead.PocCompletionStatus))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(DimStyle.Render(fmt.Sprintf("Page %d/%d - %d lead(s)", l.result.Page, l.result.Pages, l.result.Total)))
	b.WriteString("\n")

	help := "[tab] Stage  [/] Search  [f] Sector  [s] Sort  [n/p] Page  [m] Advance  [x] Reject  [a] Assign  [space+b] Bulk  [U] Unassign  [N] New  [enter] POCs  [i] Interventions  [t] Outreach  [q] Back"
	b.WriteString(HelpStyle.Render(help))
	return b.String()
}

func (l *Leads) viewEngagement() string {
	var b strings.Builder
	lead, _ := l.currentLead()
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("Engagement gate - %s", lead.CompanyName())))
	b.WriteString("\n\n")

	switch l.engStep {
	case 0:
		b.WriteString("Meeting date and time:\n")
		b.WriteString(l.engDate.View())
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[enter] Next  [esc] Cancel"))
	case 1:
		b.WriteString("Meeting notes:\n")
		b.WriteString(l.engNotes.View())
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[enter] Next  [esc] Cancel"))
	case 2, 3:
		if l.engStep == 2 {
			b.WriteString("Select the default POC:\n")
		} else {
			b.WriteString("Select a backup POC (optional):\n")
		}
		if l.busy {
			b.WriteString("Loading contacts...\n")
			break
		}
		for i, c := range l.engContacts {
			cursor := "  "
			style := NormalStyle
			if i == l.engCursor {
				cursor = "> "
				style = SelectedStyle
			}
			marker := ""
			if c.ID == l.engArtifact.DefaultPocID {
				marker = " (default)"
			}
			b.WriteString(style.Render(fmt.Sprintf("%s%s - %s%s", cursor, c.Name, c.Designation, marker)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		if l.engStep == 2 {
			b.WriteString(HelpStyle.Render("[enter] Choose  [esc] Cancel"))
		} else {
			b.WriteString(HelpStyle.Render("[enter] Choose and submit  [n] No backup  [esc] Cancel"))
		}
	}
	return b.String()
}

func (l *Leads) viewDocument() string {
	var b strings.Builder
	lead, _ := l.currentLead()
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("Document gate - %s", lead.CompanyName())))
	b.WriteString("\n\n")

	switch l.docStep {
	case 0:
		b.WriteString("Which document is on file?\n")
		for i, name := range docChoices {
			cursor := "  "
			style := NormalStyle
			if i == l.docCursor {
				cursor = "> "
				style = SelectedStyle
			}
			b.WriteString(style.Render(cursor + name))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render("[enter] Next  [esc] Cancel"))
	case 1:
		b.WriteString("Upload date:\n")
		b.WriteString(l.docDate.View())
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[enter] Next  [esc] Cancel"))
	case 2:
		b.WriteString("Notes:\n")
		b.WriteString(l.docNotes.View())
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[enter] Submit  [esc] Cancel"))
	}
	return b.String()
}

func (l *Leads) viewAssign() string {
	var b strings.Builder

	if l.mode == leadsModeBulkAssign {
		b.WriteString(SubtitleStyle.Render(fmt.Sprintf("Bulk assign %d lead(s)", len(l.selected))))
	} else {
		lead, _ := l.currentLead()
		title := fmt.Sprintf("Assign %s", lead.CompanyName())
		if l.widget != nil && l.widget.Policy().IsReassignment(lead) {
			title += " (reassignment)"
		}
		b.WriteString(SubtitleStyle.Render(title))
	}
	b.WriteString("\n\n")

	if l.busy {
		b.WriteString("Preparing...\n")
		return b.String()
	}

	if l.widget != nil && l.widget.State() == assign.StateTokenReady {
		b.WriteString(SuccessStyle.Render("Challenge token ready"))
		b.WriteString("\n\n")
	}

	if len(l.candidates) == 0 {
		b.WriteString(DimStyle.Render("No eligible assignees."))
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[esc] Close"))
		return b.String()
	}

	multi := l.mode == leadsModeAssign && l.widget != nil && l.widget.Policy().MultiSelect()
	for i, u := range l.candidates {
		cursor := "  "
		style := NormalStyle
		if i == l.assignCursor {
			cursor = "> "
			style = SelectedStyle
		}
		line := cursor
		if multi {
			check := " "
			if l.internSel[u.ID] {
				check = "*"
			}
			line += "[" + check + "] "
		}
		line += fmt.Sprintf("%s (%s)", u.DisplayName(), u.Role)
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if multi {
		b.WriteString(HelpStyle.Render("[space] Toggle  [enter] Assign selected  [esc] Cancel"))
	} else {
		b.WriteString(HelpStyle.Render("[enter] Assign  [esc] Cancel"))
	}
	return b.String()
}

func (l *Leads) viewNewLead() string {
	var b strings.Builder
	b.WriteString(SubtitleStyle.Render("New individual lead"))
	b.WriteString("\n\n")

	labels := []string{"Company", "Sector", "Location", "Website", "Revenue (INR Cr)", "EBITDA (INR Cr)", "PAT (INR Cr)", "Description"}
	for i, in := range l.form {
		b.WriteString(DimStyle.Render(fmt.Sprintf("%-18s", labels[i])))
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("[tab] Next field  [enter] Submit on last field  [esc] Cancel"))
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
