package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/theakshaypant/dayplan/internal/core"
	appLog "github.com/theakshaypant/dayplan/internal/log"
	"github.com/theakshaypant/dayplan/internal/planner"
	"github.com/theakshaypant/dayplan/internal/timegrid"
)

const (
	// DefaultRowsPerHour gives one terminal row per 10 minutes, the snap step.
	DefaultRowsPerHour = 6

	fetchTimeout = 2 * time.Minute

	// Screen position of the first timeline row and column: app padding,
	// header with its margin, panel border, panel title / panel padding.
	timelineTop  = 5
	timelineLeft = 4

	// Below this width only one panel is shown at a time.
	compactWidth = 80
	gutterWidth  = 7
)

const (
	successMessage = "I've generated an itinerary based on your preferences. You can see it in the timeline on the left."
	errorMessage   = "Sorry, I encountered an error while generating your itinerary. Please try again."
	emptyMessage   = "I couldn't find anything to schedule. Try describing your trip differently, or press a to add an event yourself."
)

// KeyMap defines the keybindings for the TUI.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	NudgeUp    key.Binding
	NudgeDown  key.Binding
	PrevDay    key.Binding
	NextDay    key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Add        key.Binding
	Prompt     key.Binding
	Refresh    key.Binding
	Tab        key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "select previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "select next"),
		),
		NudgeUp: key.NewBinding(
			key.WithKeys("shift+up", "K"),
			key.WithHelp("K", "earlier 10m"),
		),
		NudgeDown: key.NewBinding(
			key.WithKeys("shift+down", "J"),
			key.WithHelp("J", "later 10m"),
		),
		PrevDay: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous day"),
		),
		NextDay: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next day"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("ctrl+u", "pgup"),
			key.WithHelp("ctrl+u", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("ctrl+d", "pgdown"),
			key.WithHelp("ctrl+d", "scroll down"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add event"),
		),
		Prompt: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "preferences"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch panel"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

type mode int

const (
	modeTimeline mode = iota
	modeAdd
	modePrompt
)

// Fields of the add form, in tab order.
const (
	fieldActivity = iota
	fieldTime
	fieldDuration
	fieldCount
)

type chatMessage struct {
	fromUser bool
	text     string
}

// itineraryLoadedMsg is sent when a source fetch finishes.
type itineraryLoadedMsg struct {
	lines []string
	err   error
}

// Options configure a Model.
type Options struct {
	Source  core.Source
	Request core.ItineraryRequest
	// Terminal rows per hour of the timeline. Must divide 60; anything
	// else falls back to DefaultRowsPerHour.
	RowsPerHour int
}

// Model is the Bubble Tea model for the day planner.
type Model struct {
	session *planner.Session
	drag    *planner.Drag
	source  core.Source
	request core.ItineraryRequest

	rowsPerHour int
	selectedID  string
	// rowOwner maps each timeline row to the event drawn on it
	rowOwner []string

	// Layout
	width         int
	height        int
	timelineWidth int
	detailWidth   int
	contentHeight int
	compact       bool
	showDetail    bool

	// Components
	keys          KeyMap
	spinner       spinner.Model
	timeline      viewport.Model
	detail        viewport.Model
	viewportReady bool

	// State
	mode     mode
	loading  bool
	showHelp bool
	status   string
	statusOK bool
	messages []chatMessage

	prompt      textinput.Model
	addActivity textinput.Model
	addTime     textinput.Model
	addDuration int
	addFocus    int
	formErr     string
}

// NewModel creates a planner model. The itinerary is fetched from the
// source on Init, unless the source needs preferences first, in which case
// the prompt is opened.
func NewModel(opts Options) Model {
	rph := opts.RowsPerHour
	if rph < 1 || rph > 60 || 60%rph != 0 {
		rph = DefaultRowsPerHour
	}

	session := planner.NewSession()

	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	prompt := textinput.New()
	prompt.Placeholder = "museums, street food, no early mornings"
	prompt.Prompt = "› "
	prompt.CharLimit = 500

	activity := textinput.New()
	activity.Placeholder = "Lunch at the market"
	activity.CharLimit = 120

	at := textinput.New()
	at.Placeholder = "13:00"
	at.CharLimit = 5

	m := Model{
		session:     session,
		drag:        planner.NewDrag(session, float64(rph)/timegrid.UnitsPerHour),
		source:      opts.Source,
		request:     opts.Request,
		rowsPerHour: rph,
		keys:        DefaultKeyMap(),
		spinner:     s,
		prompt:      prompt,
		addActivity: activity,
		addTime:     at,
		addDuration: defaultDurationIndex(),
	}

	switch {
	case m.source == nil:
	case m.needsPreferences():
		m.say(false, greeting(opts.Request))
		m.openPrompt()
	default:
		m.loading = true
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.mode == modePrompt {
		return textinput.Blink
	}
	if m.loading {
		return tea.Batch(m.spinner.Tick, m.fetch())
	}
	return nil
}

func (m Model) prompted() bool {
	ps, ok := m.source.(core.PromptedSource)
	return ok && ps.RequiresPreferences()
}

func (m Model) needsPreferences() bool {
	return m.prompted() && strings.TrimSpace(m.request.Preferences) == ""
}

func greeting(req core.ItineraryRequest) string {
	city := req.City
	if city == "" {
		city = "your destination"
	}
	days := max(req.Days, 1)
	return fmt.Sprintf("Hi! I'll help you plan your %d-day trip to %s. What kind of activities are you interested in?", days, city)
}

// fetch returns a command that runs the source off the update loop.
func (m Model) fetch() tea.Cmd {
	src, req := m.source, m.request
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		lines, err := src.FetchItinerary(ctx, req)
		return itineraryLoadedMsg{lines: lines, err: err}
	}
}

func (m *Model) startFetch() tea.Cmd {
	if m.source == nil {
		return nil
	}
	m.loading = true
	m.setStatus("", true)
	return tea.Batch(m.spinner.Tick, m.fetch())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.calculateLayout()

		if !m.viewportReady {
			m.timeline = viewport.New(m.timelineContentWidth(), m.timelineViewportHeight())
			m.detail = viewport.New(m.detailContentWidth(), m.detailViewportHeight())
			m.viewportReady = true
		} else {
			m.timeline.Width = m.timelineContentWidth()
			m.timeline.Height = m.timelineViewportHeight()
			m.detail.Width = m.detailContentWidth()
			m.detail.Height = m.detailViewportHeight()
		}
		m.prompt.Width = max(m.detailContentWidth()-4, 10)
		m.addActivity.Width = max(m.detailContentWidth()-12, 10)
		m.refresh()
		m.scrollToSelection()

	case itineraryLoadedMsg:
		m.loading = false
		m.handleLoaded(msg)

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	default:
		// Cursor blink and friends go to whichever input is focused.
		var cmd tea.Cmd
		switch m.mode {
		case modePrompt:
			m.prompt, cmd = m.prompt.Update(msg)
		case modeAdd:
			cmd = m.updateFocusedField(msg)
		}
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleLoaded(msg itineraryLoadedMsg) {
	if msg.err != nil {
		// The previous schedule stays on screen.
		appLog.Error("tui: fetch failed", msg.err, "source", m.source.ID())
		m.say(false, errorMessage)
		m.setStatus("Could not load the itinerary", false)
		m.refresh()
		return
	}

	// The dragged event belongs to the schedule being replaced.
	m.drag.Abandon()
	res := m.session.Load(msg.lines)
	m.selectFirst()

	switch {
	case res.Empty():
		m.say(false, emptyMessage)
		m.setStatus("Nothing to schedule", false)
	default:
		if m.prompted() {
			m.say(false, successMessage)
		}
		status := fmt.Sprintf("Loaded %d %s from %s", len(res.Days), plural(len(res.Days), "day"), m.source.Name())
		if n := len(res.Skipped); n > 0 {
			status += fmt.Sprintf(" (%d %s skipped)", n, plural(n, "line"))
		}
		m.setStatus(status, true)
	}
	m.refresh()
	m.scrollToSelection()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeAdd:
		return m.handleAddKey(msg)
	case modePrompt:
		return m.handlePromptKey(msg)
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)

	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)

	case key.Matches(msg, m.keys.NudgeUp):
		m.nudge(-timegrid.SnapMinutes)

	case key.Matches(msg, m.keys.NudgeDown):
		m.nudge(timegrid.SnapMinutes)

	case key.Matches(msg, m.keys.PrevDay):
		if m.drag.Active() {
			break
		}
		if m.session.PrevDay() {
			m.selectFirst()
			m.refresh()
			m.scrollToSelection()
		}

	case key.Matches(msg, m.keys.NextDay):
		if m.drag.Active() {
			break
		}
		if m.session.NextDay() {
			m.selectFirst()
			m.refresh()
			m.scrollToSelection()
		}

	case key.Matches(msg, m.keys.ScrollUp):
		if m.viewportReady {
			m.timeline.HalfPageUp()
		}

	case key.Matches(msg, m.keys.ScrollDown):
		if m.viewportReady {
			m.timeline.HalfPageDown()
		}

	case key.Matches(msg, m.keys.Tab):
		if m.compact {
			m.showDetail = !m.showDetail
		}

	case key.Matches(msg, m.keys.Add):
		return m, m.openAddForm()

	case key.Matches(msg, m.keys.Prompt):
		return m, m.openPrompt()

	case key.Matches(msg, m.keys.Refresh):
		if !m.loading {
			return m, m.startFetch()
		}
	}

	return m, nil
}

// handleMouse turns pointer events into drags of timeline blocks. Once a
// drag has started it receives every motion and the release, wherever the
// pointer is.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.viewportReady || m.mode != modeTimeline || m.showHelp {
		return m, nil
	}

	if m.drag.Active() {
		y := float64(m.dragRow(msg.Y))
		switch msg.Action {
		case tea.MouseActionMotion:
			m.drag.Move(y)
			m.updateTimelineContent()
		case tea.MouseActionRelease:
			id := m.drag.EventID()
			res, err := m.drag.Release(y)
			m.reportMove(id, res, err)
		}
		return m, nil
	}

	if msg.Action != tea.MouseActionPress {
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.timeline.ScrollUp(3)
		return m, nil
	case tea.MouseButtonWheelDown:
		m.timeline.ScrollDown(3)
		return m, nil
	}

	row, ok := m.timelineRow(msg.X, msg.Y)
	if !ok {
		return m, nil
	}
	id := m.ownerAt(row)
	if id == "" {
		return m, nil
	}

	m.selectedID = id
	if err := m.drag.Press(msg.Button == tea.MouseButtonLeft, id, float64(row)); err != nil {
		m.setStatus(err.Error(), false)
	}
	m.refresh()
	return m, nil
}

// timelineRow maps a screen cell to a timeline row. ok is false outside
// the visible timeline.
func (m Model) timelineRow(x, y int) (int, bool) {
	if m.compact && m.showDetail {
		return 0, false
	}
	line := y - timelineTop
	if line < 0 || line >= m.timeline.Height {
		return 0, false
	}
	if x < timelineLeft || x >= timelineLeft+m.timeline.Width {
		return 0, false
	}
	return line + m.timeline.YOffset, true
}

// dragRow maps a screen row to a timeline row without bounds checks, so a
// drag keeps tracking the pointer past the panel edges.
func (m Model) dragRow(y int) int {
	return y - timelineTop + m.timeline.YOffset
}

func (m Model) ownerAt(row int) string {
	if row < 0 || row >= len(m.rowOwner) {
		return ""
	}
	return m.rowOwner[row]
}

func (m *Model) nudge(delta int) {
	if m.selectedID == "" || m.drag.Active() {
		return
	}
	id := m.selectedID
	res, err := m.session.Nudge(id, delta)
	m.reportMove(id, res, err)
}

func (m *Model) reportMove(id string, res planner.MoveResult, err error) {
	defer func() {
		m.refresh()
		m.scrollToSelection()
	}()

	if err != nil {
		m.setStatus(err.Error(), false)
		return
	}
	m.selectedID = id

	var status string
	if res.Swapped {
		status = fmt.Sprintf("Swapped %s with %s", m.activity(id), m.activity(res.BlockerID))
	} else {
		status = fmt.Sprintf("Moved %s to %s", m.activity(id), res.Time)
	}
	if n := len(res.Shifted); n > 0 {
		status += fmt.Sprintf(" (%d %s rescheduled)", n, plural(n, "event"))
	}
	m.setStatus(status, true)
}

// activity returns the label of an event of the current day.
func (m Model) activity(id string) string {
	view, err := m.session.View()
	if err != nil {
		return id
	}
	for _, ev := range view.Events {
		if ev.ID == id {
			return ev.Activity
		}
	}
	return id
}

func (m *Model) selectFirst() {
	m.selectedID = ""
	if view, err := m.session.View(); err == nil && len(view.Events) > 0 {
		m.selectedID = view.Events[0].ID
	}
}

func (m *Model) moveSelection(delta int) {
	if m.drag.Active() {
		return
	}
	view, err := m.session.View()
	if err != nil || len(view.Events) == 0 {
		return
	}
	idx := 0
	for i, ev := range view.Events {
		if ev.ID == m.selectedID {
			idx = i + delta
			break
		}
	}
	idx = min(max(idx, 0), len(view.Events)-1)
	m.selectedID = view.Events[idx].ID
	m.refresh()
	m.scrollToSelection()
}

func (m *Model) setStatus(text string, ok bool) {
	m.status = text
	m.statusOK = ok
}

func (m *Model) say(fromUser bool, text string) {
	m.messages = append(m.messages, chatMessage{fromUser: fromUser, text: text})
}

// Prompt

func (m *Model) openPrompt() tea.Cmd {
	if m.source == nil || m.drag.Active() {
		return nil
	}
	m.mode = modePrompt
	m.showDetail = true
	m.prompt.SetValue(m.request.Preferences)
	m.prompt.CursorEnd()
	cmd := m.prompt.Focus()
	m.refresh()
	return cmd
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.prompt.Blur()
		m.mode = modeTimeline
		m.showDetail = false
		m.refresh()
		return m, nil

	case "enter":
		text := strings.TrimSpace(m.prompt.Value())
		if text == "" || m.loading {
			return m, nil
		}
		m.prompt.Blur()
		m.prompt.Reset()
		m.mode = modeTimeline
		m.showDetail = false
		m.request.Preferences = text
		m.say(true, text)
		appLog.Info("tui: preferences submitted", "source", m.source.ID())
		cmd := m.startFetch()
		m.refresh()
		return m, cmd
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	m.refresh()
	return m, cmd
}

// Add form

func defaultDurationIndex() int {
	for i, d := range planner.DurationChoices {
		if d == 60 {
			return i
		}
	}
	return 0
}

func (m *Model) openAddForm() tea.Cmd {
	if m.drag.Active() {
		return nil
	}
	m.mode = modeAdd
	m.showDetail = true
	m.formErr = ""
	m.addActivity.Reset()
	m.addTime.Reset()
	m.addDuration = defaultDurationIndex()
	m.addFocus = fieldActivity
	m.addTime.Blur()
	cmd := m.addActivity.Focus()
	m.refresh()
	return cmd
}

func (m *Model) closeAddForm() {
	m.addActivity.Blur()
	m.addTime.Blur()
	m.mode = modeTimeline
	m.showDetail = false
	m.formErr = ""
}

func (m *Model) focusField(f int) tea.Cmd {
	m.addFocus = (f + fieldCount) % fieldCount
	m.addActivity.Blur()
	m.addTime.Blur()
	switch m.addFocus {
	case fieldActivity:
		return m.addActivity.Focus()
	case fieldTime:
		return m.addTime.Focus()
	}
	return nil
}

func (m *Model) updateFocusedField(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.addFocus {
	case fieldActivity:
		m.addActivity, cmd = m.addActivity.Update(msg)
	case fieldTime:
		m.addTime, cmd = m.addTime.Update(msg)
	}
	return cmd
}

func (m Model) handleAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.closeAddForm()

	case "tab", "down":
		cmd = m.focusField(m.addFocus + 1)

	case "shift+tab", "up":
		cmd = m.focusField(m.addFocus - 1)

	case "left", "right":
		if m.addFocus != fieldDuration {
			cmd = m.updateFocusedField(msg)
			break
		}
		n := len(planner.DurationChoices)
		if msg.String() == "left" {
			m.addDuration = (m.addDuration + n - 1) % n
		} else {
			m.addDuration = (m.addDuration + 1) % n
		}

	case "enter":
		m.submitAdd()

	default:
		cmd = m.updateFocusedField(msg)
	}

	m.refresh()
	return m, cmd
}

func (m *Model) submitAdd() {
	req := planner.AddRequest{
		Activity:        strings.TrimSpace(m.addActivity.Value()),
		Time:            strings.TrimSpace(m.addTime.Value()),
		DurationMinutes: planner.DurationChoices[m.addDuration],
	}

	ev, err := m.session.Add(req)
	switch {
	case errors.Is(err, core.ErrConflict):
		m.formErr = "That time overlaps another event. Pick a different slot."
		return
	case errors.Is(err, core.ErrValidation), errors.Is(err, core.ErrInvalidTime):
		m.formErr = err.Error()
		return
	case err != nil:
		m.formErr = err.Error()
		return
	}

	m.closeAddForm()
	m.selectedID = ev.ID
	m.setStatus(fmt.Sprintf("Added %s at %s", ev.Activity, ev.Time), true)
	m.scrollToSelection()
}

// Layout

func (m *Model) calculateLayout() {
	// app padding (2) + header (2) + help bar with margin (2) + panel borders (2)
	m.contentHeight = max(m.height-8, 5)
	m.compact = m.width < compactWidth

	available := m.width - 4
	if m.compact {
		m.timelineWidth = available
		m.detailWidth = available
		return
	}
	m.timelineWidth = available * 55 / 100
	m.detailWidth = available - m.timelineWidth - 1
}

func (m Model) timelineContentWidth() int { return max(m.timelineWidth-4, 10) }
func (m Model) timelineViewportHeight() int { return max(m.contentHeight-1, 1) }
func (m Model) detailContentWidth() int { return max(m.detailWidth-6, 10) }
func (m Model) detailViewportHeight() int { return max(m.contentHeight-2, 1) }

func (m *Model) refresh() {
	m.updateTimelineContent()
	m.updateDetailContent()
}

func (m *Model) scrollToSelection() {
	if !m.viewportReady || m.selectedID == "" {
		return
	}
	view, err := m.session.View()
	if err != nil {
		return
	}
	for _, ev := range view.Events {
		if ev.ID != m.selectedID {
			continue
		}
		top := m.rowOf(ev.Offset)
		bottom := top + m.rowsFor(ev.Height)
		if top < m.timeline.YOffset || bottom > m.timeline.YOffset+m.timeline.Height {
			m.timeline.SetYOffset(max(top-2, 0))
		}
		return
	}
}

func (m Model) rowOf(offset float64) int {
	return int(math.Floor(offset * float64(m.rowsPerHour) / timegrid.UnitsPerHour))
}

func (m Model) rowsFor(height float64) int {
	return max(1, int(math.Round(height*float64(m.rowsPerHour)/timegrid.UnitsPerHour)))
}

// Timeline

type block struct {
	ev       planner.EventView
	start    int
	rows     int
	time     string
	alt      bool
	dragging bool
}

func (m *Model) updateTimelineContent() {
	if !m.viewportReady {
		return
	}

	view, err := m.session.View()
	if err != nil {
		m.rowOwner = nil
		m.timeline.SetContent(m.renderPlaceholder())
		return
	}

	total := 24 * m.rowsPerHour
	owners := make([]string, total)
	painted := make([]*block, total)

	var blocks []*block
	var dragged *block
	for i, ev := range view.Events {
		b := &block{ev: ev, start: m.rowOf(ev.Offset), rows: m.rowsFor(ev.Height), time: ev.Time, alt: i%2 == 1}
		if m.drag.Active() && m.drag.EventID() == ev.ID {
			p := m.drag.Last()
			b.start, b.time, b.dragging = m.rowOf(p.Offset), p.Time, true
			dragged = b
			continue
		}
		blocks = append(blocks, b)
	}
	if dragged != nil {
		blocks = append(blocks, dragged)
	}

	for _, b := range blocks {
		for r := b.start; r < b.start+b.rows && r < total; r++ {
			owners[r] = b.ev.ID
			painted[r] = b
		}
	}

	width := m.timelineContentWidth() - gutterWidth
	var lines []string
	for r := 0; r < total; r++ {
		lines = append(lines, m.renderGutter(r)+m.renderBlockRow(painted[r], r, width))
	}

	m.rowOwner = owners
	m.timeline.SetContent(strings.Join(lines, "\n"))
}

func (m Model) renderGutter(row int) string {
	mins := row * 60 / m.rowsPerHour
	if mins%60 == 0 {
		return HourStyle.Render(fmt.Sprintf("%02d:00 ", mins/60)) + GutterStyle.Render("│")
	}
	return GutterStyle.Render("      │")
}

func (m Model) renderBlockRow(b *block, row, width int) string {
	if b == nil {
		return ""
	}

	var text string
	switch row - b.start {
	case 0:
		text = fmt.Sprintf(" %s %s", b.time, b.ev.Activity)
	case 1:
		text = " " + formatDuration(b.ev.Minutes)
	}
	text = ansi.Truncate(text, width, "…")

	style := BlockStyle
	switch {
	case b.dragging:
		style = DragBlockStyle
	case b.ev.ID == m.selectedID:
		style = SelectedBlockStyle
	case b.alt:
		style = BlockAltStyle
	}
	return style.Width(width).Render(text)
}

func (m Model) renderPlaceholder() string {
	if m.loading {
		return fmt.Sprintf("\n  %s Planning...", m.spinner.View())
	}
	return PlaceholderStyle.Render("\n  No itinerary yet.\n\n  Press p to describe your trip,\n  or a to add an event.")
}

// Detail panel

func (m *Model) updateDetailContent() {
	if !m.viewportReady {
		return
	}

	var b strings.Builder
	switch m.mode {
	case modeAdd:
		b.WriteString(m.renderAddForm())
	case modePrompt:
		b.WriteString(m.renderPrompt())
	default:
		b.WriteString(m.renderSelection())
	}
	b.WriteString(m.renderConversation())

	m.detail.SetContent(b.String())
	if m.mode == modePrompt {
		m.detail.GotoBottom()
	}
}

func (m Model) renderSelection() string {
	view, err := m.session.View()
	if err != nil {
		return ""
	}

	var b strings.Builder
	for _, ev := range view.Events {
		if ev.ID != m.selectedID {
			continue
		}
		contentWidth := m.detailContentWidth()
		b.WriteString(TitleStyle.Render(ansi.Wordwrap(ev.Activity, contentWidth, " ")))
		b.WriteString("\n")
		b.WriteString(renderField("🕐 When", fmt.Sprintf("%s - %s", ev.Time, ev.End)))
		b.WriteString(renderField("⏱️  Duration", formatDuration(ev.Minutes)))
		b.WriteString(renderField("🔖 ID", ev.ID))
		b.WriteString("\n")
		break
	}
	return b.String()
}

func (m Model) renderConversation() string {
	if len(m.messages) == 0 && !m.loading {
		return ""
	}
	width := m.detailContentWidth()

	var b strings.Builder
	b.WriteString(LabelStyle.Render("💬 Chat"))
	b.WriteString("\n")
	for _, msg := range m.messages {
		if msg.fromUser {
			b.WriteString(UserMsgStyle.Render(ansi.Wordwrap("you: "+msg.text, width, " ")))
		} else {
			b.WriteString(BotMsgStyle.Render(ansi.Wordwrap(msg.text, width, " ")))
		}
		b.WriteString("\n\n")
	}
	if m.loading {
		b.WriteString(fmt.Sprintf("%s Thinking...\n", m.spinner.View()))
	}
	return b.String()
}

func (m Model) renderPrompt() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("What would you like to do?"))
	b.WriteString("\n")
	b.WriteString(m.prompt.View())
	b.WriteString("\n")
	b.WriteString(GutterStyle.Render("enter send • esc cancel"))
	b.WriteString("\n\n")
	return b.String()
}

func (m Model) renderAddForm() string {
	label := func(f int, text string) string {
		if m.addFocus == f {
			return FocusedLabelStyle.Render(text)
		}
		return FieldLabelStyle.Render(text)
	}

	duration := formatDuration(planner.DurationChoices[m.addDuration])
	if m.addFocus == fieldDuration {
		duration = "‹ " + duration + " ›"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("Add event to Day %d", m.session.Day()+1)))
	b.WriteString("\n")
	b.WriteString(label(fieldActivity, "Activity") + m.addActivity.View() + "\n")
	b.WriteString(label(fieldTime, "Time") + m.addTime.View() + "\n")
	b.WriteString(label(fieldDuration, "Duration") + ValueStyle.Render(duration) + "\n\n")
	if m.formErr != "" {
		b.WriteString(FormErrorStyle.Render(ansi.Wordwrap(m.formErr, m.detailContentWidth(), " ")))
		b.WriteString("\n\n")
	}
	b.WriteString(GutterStyle.Render("tab next field • ←/→ duration • enter add • esc cancel"))
	b.WriteString("\n\n")
	return b.String()
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.viewportReady {
		return "\n  Initializing..."
	}

	header := m.renderHeader()

	var content string
	switch {
	case m.compact && (m.showDetail || m.showHelp):
		content = m.renderRightPanel()
	case m.compact:
		content = m.renderTimelinePanel()
	default:
		content = lipgloss.JoinHorizontal(lipgloss.Top, m.renderTimelinePanel(), " ", m.renderRightPanel())
	}

	help := m.renderHelp()

	return AppStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, content, help))
}

func (m Model) renderHeader() string {
	title := HeaderStyle.Render("🗓  dayplan")

	info := ""
	if !m.session.Empty() {
		info = fmt.Sprintf("  Day %d of %d", m.session.Day()+1, m.session.DayCount())
		if m.request.City != "" {
			info += " · " + m.request.City
		}
	}
	info = GutterStyle.Render(info)

	status := ""
	if m.status != "" {
		style := StatusStyle
		if !m.statusOK {
			style = StatusErrorStyle
		}
		status = "  " + style.Render(m.status)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, title, info, status)
}

func (m Model) renderTimelinePanel() string {
	title := GutterStyle.Render("Timeline")
	if m.drag.Active() {
		title = DragBlockStyle.Render(" " + m.drag.Last().Time + " ")
	}
	return TimelinePanelStyle.
		Width(m.timelineWidth - 2).
		Height(m.contentHeight).
		Render(title + "\n" + m.timeline.View())
}

func (m Model) renderRightPanel() string {
	body := m.detail.View()
	if m.showHelp {
		body = m.renderHelpPanel()
	}
	return DetailPanelStyle.
		Width(m.detailWidth - 2).
		Height(m.contentHeight).
		Render(body)
}

func (m Model) renderHelp() string {
	if m.width < 60 {
		return HelpStyle.Render("? help")
	}

	var keys []key.Binding
	switch m.mode {
	case modeTimeline:
		keys = []key.Binding{m.keys.Up, m.keys.NudgeUp, m.keys.NextDay, m.keys.Add, m.keys.Prompt, m.keys.Help, m.keys.Quit}
	default:
		return HelpStyle.Render("esc cancel")
	}

	var parts []string
	for _, k := range keys {
		h := k.Help()
		parts = append(parts, fmt.Sprintf("%s %s", HelpKeyStyle.Render(h.Key), h.Desc))
	}
	return HelpStyle.Render(strings.Join(parts, " • "))
}

func (m Model) renderHelpPanel() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Keyboard & Mouse"))
	b.WriteString("\n")

	bindings := []key.Binding{
		m.keys.Up, m.keys.Down, m.keys.NudgeUp, m.keys.NudgeDown,
		m.keys.PrevDay, m.keys.NextDay, m.keys.ScrollUp, m.keys.ScrollDown,
		m.keys.Add, m.keys.Prompt, m.keys.Refresh,
	}
	if m.compact {
		bindings = append(bindings, m.keys.Tab)
	}
	bindings = append(bindings, m.keys.Help, m.keys.Quit)

	for _, k := range bindings {
		h := k.Help()
		b.WriteString(fmt.Sprintf("%s  %s\n", HelpKeyStyle.Width(10).Render(h.Key), h.Desc))
	}
	b.WriteString("\n")
	b.WriteString(ValueStyle.Render("Drag a block with the left mouse button to move it. Dropping onto another event swaps the two."))
	b.WriteString("\n\n")
	b.WriteString(GutterStyle.Render("Press any key to close"))
	return b.String()
}

func renderField(label, value string) string {
	return fmt.Sprintf("%s %s\n", LabelStyle.Render(label), ValueStyle.Render(value))
}

func formatDuration(mins int) string {
	h, m := mins/60, mins%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
