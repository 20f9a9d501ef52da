// Package tui renders the todo list as a bubbletea program.
//
// The model never mutates list state directly: key presses dispatch actions
// through the root view-model, its row view-models and bindings, and the
// screen follows the store. Store work runs inside Update through Executor.
package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/roach88/projector/internal/action"
	"github.com/roach88/projector/internal/binding"
	"github.com/roach88/projector/internal/controls"
	"github.com/roach88/projector/internal/navigation"
	"github.com/roach88/projector/internal/producer"
	"github.com/roach88/projector/internal/rows"
	"github.com/roach88/projector/internal/todo"
	"github.com/roach88/projector/internal/viewmodel"
)

type mode int

const (
	modeList  mode = iota // navigating rows
	modeDraft             // typing into the draft field
	modeRename            // typing a new text for the cursor row
)

// Model is the bubbletea model. It is used by pointer; tasks drained from the
// executor mutate it in place.
type Model struct {
	exec   *Executor
	vm     *todo.ViewModel
	header *viewmodel.ViewModel[todo.Action, todo.Header]
	rows   []*todo.RowViewModel

	draft        textinput.Model
	draftBinding *binding.Binding[string]
	rename       textinput.Model
	add          func()
	detail       producer.Producer[todo.Detail, string]

	mode   mode
	cursor int
	width  int
	height int

	// rowEmissions counts row notifications, shown in the footer.
	rowEmissions int
	rebuilds     int
	cancel       func()
}

// New builds the model over vm. exec must be the executor vm's store runs on.
func New(vm *todo.ViewModel, exec *Executor) *Model {
	draft := textinput.New()
	draft.Placeholder = "new item"
	draft.Prompt = "+ "
	draft.CharLimit = 200

	rename := textinput.New()
	rename.Prompt = "> "
	rename.CharLimit = 200

	m := &Model{
		exec:         exec,
		vm:           vm,
		header:       todo.HeaderView(vm),
		draft:        draft,
		draftBinding: todo.DraftBinding(vm, action.Here("draft field")),
		rename:       rename,
		add:          controls.Trigger[todo.Action](vm, func() todo.Action { return todo.Add("") }, action.Here("enter in draft")),
		detail:       producer.New(renderDetail),
	}
	m.draft.SetValue(m.draftBinding.Read())
	m.rebuildRows()
	m.cancel = vm.Subscribe(func(todo.State) { m.onState() })
	return m
}

// Close detaches the model from the store.
func (m *Model) Close() {
	if m.cancel != nil {
		m.cancel()
	}
	for _, r := range m.rows {
		r.Close()
	}
	m.header.Close()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case drainMsg:
		m.exec.Drain()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = max(msg.Width, 0)
		m.height = max(msg.Height, 0)
		m.draft.Width = max(m.width-4, 10)
		m.rename.Width = max(m.width-4, 10)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	switch m.mode {
	case modeDraft:
		return m.handleDraftKey(msg)
	case modeRename:
		return m.handleRenameKey(msg)
	}

	if p, ok := m.detailLink(); ok {
		switch msg.String() {
		case "esc", "backspace", "h", "left":
			p.Binding.Write(nil)
			return m, nil
		}
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "K":
		m.moveItem(-1)
	case "J":
		m.moveItem(1)
	case " ", "x":
		m.dispatchRow(todo.RowAction{Kind: todo.RowToggle}, action.Here("toggle key"))
	case "d", "delete":
		m.dispatchRow(todo.RowAction{Kind: todo.RowRemove}, action.Here("delete key"))
	case "enter", "l", "right":
		if r := m.cursorRow(); r != nil {
			id := r.State().ID
			todo.Selection(m.vm, id, action.Here("open detail")).Write(&id)
		}
	case "e":
		if r := m.cursorRow(); r != nil {
			m.mode = modeRename
			m.rename.SetValue(r.State().Text)
			m.rename.CursorEnd()
			return m, m.rename.Focus()
		}
	case "a", "i":
		m.mode = modeDraft
		return m, m.draft.Focus()
	}
	return m, nil
}

func (m *Model) handleDraftKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeList
		m.draft.Blur()
		return m, nil
	case tea.KeyEnter:
		m.add()
		return m, nil
	}

	var cmd tea.Cmd
	m.draft, cmd = m.draft.Update(msg)
	if m.draft.Value() != m.draftBinding.Read() {
		m.draftBinding.Write(m.draft.Value())
	}
	return m, cmd
}

func (m *Model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeList
		m.rename.Blur()
		return m, nil
	case tea.KeyEnter:
		m.dispatchRow(todo.RowAction{Kind: todo.RowRename, Text: m.rename.Value()}, action.Here("rename field"))
		m.mode = modeList
		m.rename.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.rename, cmd = m.rename.Update(msg)
	return m, cmd
}

func (m *Model) cursorRow() *todo.RowViewModel {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor]
}

func (m *Model) dispatchRow(ra todo.RowAction, prov action.Provenance) {
	if r := m.cursorRow(); r != nil {
		r.Dispatch(ra, prov)
	}
}

func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		m.cursor = 0
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.rows)-1)
}

func (m *Model) moveItem(delta int) {
	r := m.cursorRow()
	if r == nil {
		return
	}
	to := m.cursor + delta
	if to < 0 || to >= len(m.rows) {
		return
	}
	m.vm.Dispatch(todo.Move(r.State().ID, to), action.Here("reorder key"))
	m.cursor = to
}

// onState runs on the executor after rows have seen the new state.
func (m *Model) onState() {
	visible := m.vm.State().Visible()
	want := make([]string, len(visible))
	for i, it := range visible {
		want[i] = it.ID
	}
	if !slices.Equal(want, m.rowIDs()) {
		m.rebuildRows()
	}
	if v := m.draftBinding.Read(); m.mode != modeDraft && m.draft.Value() != v {
		m.draft.SetValue(v)
	}
	if m.mode == modeDraft && m.draftBinding.Read() == "" && m.draft.Value() != "" {
		// The store cleared the draft (item added).
		m.draft.SetValue("")
	}
}

func (m *Model) rowIDs() []string {
	return rows.IDs(m.rows, todo.Item.RowID)
}

func (m *Model) rebuildRows() {
	for _, r := range m.rows {
		r.Close()
	}
	m.rows = todo.Rows(m.vm)
	for _, r := range m.rows {
		r.Subscribe(func(todo.Item) { m.rowEmissions++ })
	}
	m.rebuilds++
	m.moveCursor(0)
}

func (m *Model) detailLink() (navigation.Presentation[todo.Detail, string], bool) {
	return todo.DetailLink(m.vm, m.detail, action.Here("detail pane"))
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	h := m.header.State()
	b.WriteString(titleStyle.Render(h.Title))
	b.WriteString(countStyle.Render(fmt.Sprintf(" %d/%d left", h.Remaining, h.Total)))
	if h.Filter != "" {
		b.WriteString(countStyle.Render(fmt.Sprintf("  filter: %q", h.Filter)))
	}
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(emptyStyle.Render("  nothing to do"))
		b.WriteString("\n")
	}
	for i, r := range m.rows {
		b.WriteString(m.renderRow(i, r.State()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.mode {
	case modeDraft:
		b.WriteString(m.draft.View())
		b.WriteString("\n")
	case modeRename:
		b.WriteString(m.rename.View())
		b.WriteString("\n")
	}

	if p, ok := m.detailLink(); ok {
		b.WriteString(p.Content)
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(m.help()))
	return b.String()
}

func (m *Model) renderRow(i int, it todo.Item) string {
	prefix := "  "
	if i == m.cursor && m.mode == modeList {
		prefix = cursorStyle.Render("> ")
	}
	box := "[ ]"
	text := itemStyle.Render(it.Text)
	if it.Done {
		box = "[x]"
		text = doneStyle.Render(it.Text)
	}
	return prefix + box + " " + text
}

func (m *Model) help() string {
	switch m.mode {
	case modeDraft:
		return "enter add • esc back"
	case modeRename:
		return "enter save • esc cancel"
	}
	return fmt.Sprintf("j/k move • space toggle • e edit • d delete • a add • enter open • q quit   (rows %d, redraws %d)",
		len(m.rows), m.rowEmissions)
}

func renderDetail(d todo.Detail) string {
	status := "open"
	if d.Item.Done {
		status = "done"
	}
	return detailStyle.Render(fmt.Sprintf("%s\n%s · %s\nesc to close", d.Item.Text, d.Item.ID, status))
}
