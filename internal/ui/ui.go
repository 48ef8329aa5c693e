package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/internal/api"
	"taskdeck/internal/config"
	"taskdeck/internal/task"
)

type screen int

const (
	screenLogin screen = iota
	screenTasks
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeSearch
	modeRange
)

type noticeKind int

const (
	noticeInfo noticeKind = iota
	noticeSuccess
	noticeError
)

type notice struct {
	text string
	kind noticeKind
}

type loginState struct {
	username string
	password string
	index    int
}

type addState struct {
	title       string
	description string
	due         string
	index       int
}

type rangeState struct {
	start string
	end   string
	index int
}

// Model owns the canonical task collection for the lifetime of the program.
// The rendered list is always derived from it through task.Visible.
type Model struct {
	gw      Gateway
	store   TokenStore
	cfg     config.Config
	timeout time.Duration

	screen screen
	mode   mode

	tasks  []task.Task
	query  task.Query
	cursor int

	input      textinput.Model
	spin       spinner.Model
	loading    bool
	loggingIn  bool
	searchPrev string

	login *loginState
	add   *addState
	rng   *rangeState

	confirmDel bool
	pendingDel *task.Task

	note notice
}

func NewModel(gw Gateway, store TokenStore, cfg config.Config, token string) Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		gw:      gw,
		store:   store,
		cfg:     cfg,
		timeout: defaultTimeout(cfg.TimeoutSeconds),
		input:   ti,
		spin:    sp,
		query: task.Query{
			Filter: parseFilter(cfg.DefaultFilter),
			Sort:   parseSort(cfg.DefaultSort),
		},
	}

	if token == "" {
		m.screen = screenLogin
		m.login = &loginState{}
		m.setLoginField()
		m.notify("Sign in to your task server", noticeInfo)
	} else {
		gw.SetToken(token)
		m.screen = screenTasks
		m.loading = true
	}
	return m
}

func Run(gw Gateway, store TokenStore, cfg config.Config, token string) error {
	program := tea.NewProgram(NewModel(gw, store, cfg, token), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	if m.screen == screenTasks {
		return tea.Batch(m.spin.Tick, m.loadTasksCmd())
	}
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
		return m, nil
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case loginFinishedMsg:
		return m.handleLoginFinished(msg)
	case tasksLoadedMsg:
		return m.handleTasksLoaded(msg)
	case taskToggledMsg:
		return m.handleTaskToggled(msg)
	case taskDeletedMsg:
		return m.handleTaskDeleted(msg)
	case taskCreatedMsg:
		return m.handleTaskCreated(msg)
	case tea.KeyMsg:
		if m.screen == screenLogin {
			return m.updateLogin(msg)
		}
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		switch m.mode {
		case modeAdd:
			return m.updateAddMode(msg.String(), msg)
		case modeSearch:
			return m.updateSearchMode(msg.String(), msg)
		case modeRange:
			return m.updateRangeMode(msg.String(), msg)
		}
		return m.updateListMode(msg.String())
	}
	return m, nil
}

// visible derives the display list from the canonical collection.
func (m Model) visible() []task.Task {
	return task.Visible(m.tasks, m.query)
}

func (m *Model) notify(text string, kind noticeKind) {
	m.note = notice{text: text, kind: kind}
}

func (m *Model) clampToVisible() {
	m.cursor = clampCursor(m.cursor, len(m.visible()))
}

// --- gateway result handling -----------------------------------------------

func (m Model) handleLoginFinished(msg loginFinishedMsg) (tea.Model, tea.Cmd) {
	m.loggingIn = false
	if msg.err != nil {
		m.notify("Login failed: "+failureText(msg.err), noticeError)
		return m, nil
	}
	if err := m.store.SaveToken(msg.token); err != nil {
		m.notify("Signed in, but the token could not be saved", noticeInfo)
	} else {
		m.notify("Signed in", noticeSuccess)
	}
	m.screen = screenTasks
	m.login = nil
	m.input.Reset()
	m.input.Blur()
	m.loading = true
	return m, tea.Batch(m.spin.Tick, m.loadTasksCmd())
}

func (m Model) handleTasksLoaded(msg tasksLoadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		// A failed refresh keeps whatever was on screen.
		m.notify("Failed to load tasks: "+failureText(msg.err), noticeError)
		return m, nil
	}
	m.tasks = msg.tasks
	m.clampToVisible()
	m.notify(fmt.Sprintf("Loaded %d tasks", len(m.tasks)), noticeInfo)
	return m, nil
}

func (m Model) handleTaskToggled(msg taskToggledMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// Restore the exact pre-optimistic value. If the task vanished in
		// the meantime (deleted, replaced by a refresh) this is a no-op.
		task.SetCompleted(m.tasks, msg.id, msg.prev)
		m.clampToVisible()
		m.notify("Toggle failed: "+failureText(msg.err), noticeError)
		return m, nil
	}
	task.ApplyServer(m.tasks, msg.task)
	m.clampToVisible()
	return m, nil
}

func (m Model) handleTaskDeleted(msg taskDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.notify("Delete failed: "+failureText(msg.err), noticeError)
		return m, nil
	}
	m.tasks = task.Remove(m.tasks, msg.id)
	m.clampToVisible()
	m.notify(fmt.Sprintf("Deleted %q", msg.title), noticeSuccess)
	return m, nil
}

func (m Model) handleTaskCreated(msg taskCreatedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// Inputs stay as typed; only a success clears the form.
		m.notify("Failed to add task: "+failureText(msg.err), noticeError)
		return m, nil
	}
	m.tasks = task.Prepend(m.tasks, msg.task)
	m.add = nil
	m.mode = modeList
	m.input.Reset()
	m.input.Blur()
	m.clampToVisible()
	m.notify(fmt.Sprintf("Added %q", msg.task.Title), noticeSuccess)
	return m, nil
}

// --- login screen ----------------------------------------------------------

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case m.cfg.Keys.Cancel, "esc":
		m.login = &loginState{}
		m.setLoginField()
		m.notify("Cleared", noticeInfo)
		return m, nil
	case "tab", "down":
		m.saveLoginField()
		m.login.index = wrapIndex(m.login.index+1, 2)
		m.setLoginField()
		return m, nil
	case "shift+tab", "up":
		m.saveLoginField()
		m.login.index = wrapIndex(m.login.index-1, 2)
		m.setLoginField()
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.saveLoginField()
		if m.login.index == 0 {
			m.login.index = 1
			m.setLoginField()
			return m, nil
		}
		username := strings.TrimSpace(m.login.username)
		password := strings.TrimSpace(m.login.password)
		if username == "" || password == "" {
			m.notify("Enter both username and password", noticeError)
			return m, nil
		}
		if m.loggingIn {
			return m, nil
		}
		m.loggingIn = true
		m.notify("Signing in…", noticeInfo)
		return m, m.loginCmd(username, password)
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) saveLoginField() {
	if m.login.index == 0 {
		m.login.username = m.input.Value()
	} else {
		m.login.password = m.input.Value()
	}
}

func (m *Model) setLoginField() {
	if m.login.index == 0 {
		m.input.Placeholder = "Username"
		m.input.EchoMode = textinput.EchoNormal
		m.input.SetValue(m.login.username)
	} else {
		m.input.Placeholder = "Password"
		m.input.EchoMode = textinput.EchoPassword
		m.input.SetValue(m.login.password)
	}
	m.input.CursorEnd()
	m.input.Focus()
}

// --- task list -------------------------------------------------------------

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		m.cursor = clampCursor(m.cursor+1, len(m.visible()))
	case m.cfg.Keys.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.visible()))
		}
	case m.cfg.Keys.Add:
		m.mode = modeAdd
		m.add = &addState{}
		m.setAddField()
		m.notify("Add task: enter to advance, esc to cancel", noticeInfo)
	case m.cfg.Keys.Toggle:
		vis := m.visible()
		if len(vis) == 0 {
			return m, nil
		}
		m.cursor = clampCursor(m.cursor, len(vis))
		t := vis[m.cursor]
		prev := t.Completed
		// Optimistic flip; the server response either confirms it or the
		// failure handler puts prev back. The flip can shrink the visible
		// list under a completion filter, so re-clamp.
		task.SetCompleted(m.tasks, t.ID, !prev)
		m.clampToVisible()
		return m, m.toggleCmd(t.ID, prev)
	case m.cfg.Keys.Delete:
		vis := m.visible()
		if len(vis) == 0 {
			return m, nil
		}
		m.cursor = clampCursor(m.cursor, len(vis))
		t := vis[m.cursor]
		m.confirmDel = true
		m.pendingDel = &t
		m.notify(fmt.Sprintf("Delete %q? y/n", t.Title), noticeInfo)
	case m.cfg.Keys.Refresh:
		m.notify("Refreshing…", noticeInfo)
		return m, m.loadTasksCmd()
	case m.cfg.Keys.Search:
		m.mode = modeSearch
		m.searchPrev = m.query.Search
		m.input.Placeholder = "Search title or description"
		m.input.EchoMode = textinput.EchoNormal
		m.input.SetValue(m.query.Search)
		m.input.CursorEnd()
		m.input.Focus()
	case m.cfg.Keys.Filter:
		m.query.Filter = nextFilter(m.query.Filter)
		m.clampToVisible()
		m.notify("Filter: "+m.query.Filter.String(), noticeInfo)
		if m.query.Filter == task.FilterDateRange && m.query.RangeStart == "" && m.query.RangeEnd == "" {
			return m.startRangeEdit()
		}
	case m.cfg.Keys.Sort:
		m.query.Sort = nextSort(m.query.Sort)
		m.clampToVisible()
		m.notify("Sort: "+m.query.Sort.String(), noticeInfo)
	case m.cfg.Keys.DateRange:
		return m.startRangeEdit()
	case m.cfg.Keys.Logout:
		if err := m.store.ClearToken(); err != nil {
			m.notify("Could not clear the stored token", noticeError)
			return m, nil
		}
		m.gw.SetToken("")
		m.screen = screenLogin
		m.mode = modeList
		m.tasks = nil
		m.cursor = 0
		m.login = &loginState{}
		m.setLoginField()
		m.notify("Signed out", noticeInfo)
	}
	return m, nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", "esc":
		m.notify("Delete cancelled", noticeInfo)
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		if m.pendingDel == nil {
			m.notify("Nothing to delete", noticeInfo)
			m.confirmDel = false
			return m, nil
		}
		t := *m.pendingDel
		m.confirmDel = false
		m.pendingDel = nil
		m.notify(fmt.Sprintf("Deleting %q…", t.Title), noticeInfo)
		// The collection is untouched until the server confirms.
		return m, m.deleteCmd(t.ID, t.Title)
	default:
		return m, nil
	}
}

// --- add form --------------------------------------------------------------

func addFields() []string {
	return []string{"title", "description", "due date (YYYY-MM-DD)"}
}

func (as addState) value(i int) string {
	switch i {
	case 0:
		return as.title
	case 1:
		return as.description
	case 2:
		return as.due
	default:
		return ""
	}
}

func (as *addState) setValue(i int, v string) {
	switch i {
	case 0:
		as.title = v
	case 1:
		as.description = v
	case 2:
		as.due = v
	}
}

func (m *Model) setAddField() {
	m.input.Placeholder = addFields()[m.add.index]
	m.input.EchoMode = textinput.EchoNormal
	m.input.SetValue(m.add.value(m.add.index))
	m.input.CursorEnd()
	m.input.Focus()
}

func (m Model) updateAddMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.add = nil
		m.mode = modeList
		m.input.Reset()
		m.input.Blur()
		m.notify("Cancelled", noticeInfo)
		return m, nil
	case "tab", "down":
		m.add.setValue(m.add.index, m.input.Value())
		m.add.index = wrapIndex(m.add.index+1, len(addFields()))
		m.setAddField()
		return m, nil
	case "shift+tab", "up":
		m.add.setValue(m.add.index, m.input.Value())
		m.add.index = wrapIndex(m.add.index-1, len(addFields()))
		m.setAddField()
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.add.setValue(m.add.index, m.input.Value())
		if m.add.index < len(addFields())-1 {
			m.add.index++
			m.setAddField()
			return m, nil
		}
		return m.submitAdd()
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) submitAdd() (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(m.add.title)
	if title == "" {
		// Rejected locally, no network call.
		m.notify("Title cannot be empty", noticeError)
		m.add.index = 0
		m.setAddField()
		return m, nil
	}
	due := strings.TrimSpace(m.add.due)
	if due != "" && !task.ValidDate(due) {
		m.notify("Due date must be a valid YYYY-MM-DD date", noticeError)
		return m, nil
	}
	draft := task.Draft{
		Title:       title,
		Description: strings.TrimSpace(m.add.description),
		DueDate:     due,
	}
	m.notify("Saving…", noticeInfo)
	return m, m.createCmd(draft)
}

// --- search ----------------------------------------------------------------

func (m Model) updateSearchMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.query.Search = m.searchPrev
		m.mode = modeList
		m.input.Reset()
		m.input.Blur()
		m.clampToVisible()
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.mode = modeList
		m.input.Blur()
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.query.Search = m.input.Value()
		m.clampToVisible()
		return m, cmd
	}
}

// --- date-range editor -----------------------------------------------------

func rangeFields() []string {
	return []string{"start date (YYYY-MM-DD)", "end date (YYYY-MM-DD)"}
}

func (m Model) startRangeEdit() (tea.Model, tea.Cmd) {
	m.mode = modeRange
	m.rng = &rangeState{start: m.query.RangeStart, end: m.query.RangeEnd}
	m.setRangeField()
	m.notify("Date range: enter to advance, esc to cancel", noticeInfo)
	return m, nil
}

func (m *Model) setRangeField() {
	m.input.Placeholder = rangeFields()[m.rng.index]
	m.input.EchoMode = textinput.EchoNormal
	if m.rng.index == 0 {
		m.input.SetValue(m.rng.start)
	} else {
		m.input.SetValue(m.rng.end)
	}
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *Model) saveRangeField() {
	if m.rng.index == 0 {
		m.rng.start = m.input.Value()
	} else {
		m.rng.end = m.input.Value()
	}
}

func (m Model) updateRangeMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.rng = nil
		m.mode = modeList
		m.input.Reset()
		m.input.Blur()
		m.notify("Cancelled", noticeInfo)
		return m, nil
	case "tab", "shift+tab", "down", "up":
		m.saveRangeField()
		m.rng.index = wrapIndex(m.rng.index+1, 2)
		m.setRangeField()
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.saveRangeField()
		if m.rng.index == 0 {
			m.rng.index = 1
			m.setRangeField()
			return m, nil
		}
		return m.submitRange()
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) submitRange() (tea.Model, tea.Cmd) {
	start := strings.TrimSpace(m.rng.start)
	end := strings.TrimSpace(m.rng.end)
	if (start == "") != (end == "") {
		m.notify("Enter both start and end dates, or leave both empty", noticeError)
		return m, nil
	}
	if start != "" && (!task.ValidDate(start) || !task.ValidDate(end)) {
		m.notify("Dates must be valid YYYY-MM-DD dates", noticeError)
		return m, nil
	}
	m.query.RangeStart = start
	m.query.RangeEnd = end
	m.query.Filter = task.FilterDateRange
	m.rng = nil
	m.mode = modeList
	m.input.Reset()
	m.input.Blur()
	m.clampToVisible()
	if start == "" {
		m.notify("Date range cleared", noticeInfo)
	} else {
		m.notify(fmt.Sprintf("Showing tasks due %s to %s", start, end), noticeInfo)
	}
	return m, nil
}

// --- helpers ---------------------------------------------------------------

func failureText(err error) string {
	switch api.KindOf(err) {
	case api.KindNetwork:
		return "network error, check your connection"
	case api.KindAuth:
		return "authentication rejected, sign in again"
	case api.KindNotFound:
		return "the task no longer exists"
	default:
		return "the server reported an error"
	}
}

func nextFilter(f task.Filter) task.Filter {
	switch f {
	case task.FilterAll:
		return task.FilterCompleted
	case task.FilterCompleted:
		return task.FilterIncomplete
	case task.FilterIncomplete:
		return task.FilterDateRange
	default:
		return task.FilterAll
	}
}

func nextSort(s task.Sort) task.Sort {
	switch s {
	case task.SortNewest:
		return task.SortOldest
	case task.SortOldest:
		return task.SortDueAsc
	case task.SortDueAsc:
		return task.SortDueDesc
	default:
		return task.SortNewest
	}
}

func parseFilter(v string) task.Filter {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "completed":
		return task.FilterCompleted
	case "incomplete":
		return task.FilterIncomplete
	case "date-range":
		return task.FilterDateRange
	default:
		return task.FilterAll
	}
}

func parseSort(v string) task.Sort {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "oldest":
		return task.SortOldest
	case "due-asc":
		return task.SortDueAsc
	case "due-desc":
		return task.SortDueDesc
	default:
		return task.SortNewest
	}
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
