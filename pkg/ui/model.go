package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/dfmea/pkg/analysis"
	"github.com/vanderheijden86/dfmea/pkg/config"
	"github.com/vanderheijden86/dfmea/pkg/debug"
	"github.com/vanderheijden86/dfmea/pkg/export"
	"github.com/vanderheijden86/dfmea/pkg/metrics"
	"github.com/vanderheijden86/dfmea/pkg/model"
	"github.com/vanderheijden86/dfmea/pkg/watcher"
)

// focusArea says which pane receives navigation keys.
type focusArea int

const (
	focusTree focusArea = iota
	focusDetail
)

// Model is the main Bubble Tea model for the DFMEA editor.
type Model struct {
	forest   *model.Forest
	cfg      config.Config
	theme    Theme
	exporter *export.Exporter
	// clipboard receives the "y" copy; swapped in tests.
	clipboard export.Deliverer
	watcher   *watcher.Watcher
	// override re-applies command-line settings to reloaded configs.
	override func(config.Config) config.Config

	view       model.ViewMode
	projection model.Projection
	coverage   analysis.CoverageReport
	stats      analysis.StructureStats
	treeRows   []model.Row
	tree       TreeModel
	revision   uint64

	focused    focusArea
	itemCursor int
	rowCursor  int
	colCursor  int

	showEdit    bool
	edit        EditModal
	showPicker  bool
	picker      ExportPicker
	showPreview bool
	preview     viewport.Model
	showHelp    bool

	// Status message (for temporary feedback)
	statusMsg     string
	statusIsError bool

	width  int
	height int
	ready  bool
}

// NewModel creates the editor over forest.
func NewModel(forest *model.Forest, cfg config.Config) Model {
	theme := DefaultTheme(lipgloss.DefaultRenderer())

	view, err := cfg.ViewMode()
	if err != nil {
		debug.Log("ui: %v, using structure view", err)
		view = model.ViewStructure
	}

	m := Model{
		forest:    forest,
		cfg:       cfg,
		theme:     theme,
		exporter:  export.NewExporter(cfg.ExportDir(), cfg.ExportOptions()),
		clipboard: export.NewClipboardDeliverer(),
		view:      view,
		tree:      NewTreeModel(theme),
		preview:   viewport.New(0, 0),
	}
	m.refresh()
	return m
}

// WithConfigWatcher makes the model reload its configuration whenever w
// reports a change.
func (m Model) WithConfigWatcher(w *watcher.Watcher) Model {
	m.watcher = w
	return m
}

// WithConfigOverride applies fn to every reloaded configuration before it
// takes effect.
func (m Model) WithConfigOverride(fn func(config.Config) config.Config) Model {
	m.override = fn
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return WatchConfigCmd(m.watcher)
	}
	return nil
}

// refresh re-derives everything the views read from the forest.
func (m *Model) refresh() {
	m.treeRows = model.FlattenForest(m.forest.Roots())
	m.tree.SetRows(m.treeRows, m.forest.Selected())
	m.stats = analysis.Structure(m.forest.Roots())
	m.projection = model.Project(m.forest.Selected(), m.view)
	if m.projection.IsMatrix() {
		m.coverage = analysis.Coverage(m.projection)
	} else {
		m.coverage = analysis.CoverageReport{}
	}
	m.revision = m.forest.Revision()

	m.itemCursor = clampIndex(m.itemCursor, len(structureItems(m.projection)))
	m.rowCursor = clampIndex(m.rowCursor, len(m.projection.Rows))
	m.colCursor = clampIndex(m.colCursor, len(m.projection.Columns))
}

func clampIndex(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusIsError = isErr
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.forest.Revision() != m.revision {
		m.refresh()
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case ExportDoneMsg:
		m.setStatus(exportStatus(msg))
		if msg.Err != nil {
			debug.Log("ui: export failed: %v", msg.Err)
		}
		return m, nil

	case ConfigReloadedMsg:
		var cmd tea.Cmd
		if m.watcher != nil {
			cmd = WatchConfigCmd(m.watcher)
		}
		if msg.Err != nil {
			m.setStatus(fmt.Sprintf("Config reload failed: %v", msg.Err), true)
			return m, cmd
		}
		m.applyConfig(msg.Config)
		m.setStatus("Config reloaded", false)
		return m, cmd
	}

	// The huh form needs every message type, not just keys.
	if m.showPicker {
		return m.updatePicker(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.showEdit {
			var cmd tea.Cmd
			m.edit, cmd = m.edit.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch {
	case m.showHelp:
		m.showHelp = false
		return m, nil
	case m.showEdit:
		return m.updateEdit(keyMsg)
	case m.showPreview:
		return m.updatePreview(keyMsg)
	}

	m.statusMsg = ""
	m.statusIsError = false

	if m.focused == focusDetail {
		if m.handleDetailKey(keyMsg) {
			return m, nil
		}
	} else if m.updateTree(keyMsg) {
		return m, nil
	}
	return m.handleGlobalKey(keyMsg)
}

func (m *Model) applyConfig(cfg config.Config) {
	if m.override != nil {
		cfg = m.override(cfg)
	}
	m.cfg = cfg
	// Running export commands hold the previous exporter; never mutate it.
	m.exporter = export.NewExporter(cfg.ExportDir(), cfg.ExportOptions())
	if view, err := cfg.ViewMode(); err == nil && m.forest.Len() == 0 {
		m.view = view
	}
	m.refresh()
	m.layout()
}

// layout pushes the window size into the sub-views.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	bodyH := m.bodyHeight()
	m.tree.SetSize(m.treeWidth()-panelFrame, bodyH-panelFrame)
	m.edit.SetSize(m.width, bodyH)
	m.picker.SetSize(m.width, bodyH)
	m.preview.Width = m.width
	m.preview.Height = bodyH
}

// bodyHeight is the space between the header and the footer.
func (m Model) bodyHeight() int {
	h := m.height - 2
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) treeWidth() int {
	w := m.cfg.UI.TreeWidth
	if w < config.MinTreeWidth {
		w = config.MinTreeWidth
	}
	if limit := m.width / 2; w > limit {
		w = limit
	}
	if w < panelFrame+1 {
		w = panelFrame + 1
	}
	return w
}

// moveTree moves the tree cursor and selects the node under it.
func (m *Model) moveTree(move func(*TreeModel)) {
	move(&m.tree)
	if node := m.tree.Current(); node != nil {
		m.forest.Select(node)
	}
	m.refresh()
}

func (m *Model) updateTree(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "j", "down":
		m.moveTree(func(t *TreeModel) { t.MoveBy(1) })
	case "k", "up":
		m.moveTree(func(t *TreeModel) { t.MoveBy(-1) })
	case "g", "home":
		m.moveTree(func(t *TreeModel) { t.MoveTo(0) })
	case "G", "end":
		m.moveTree(func(t *TreeModel) { t.MoveTo(-1) })
	case "enter", "right":
		if m.tree.Current() == nil {
			return true
		}
		m.forest.Select(m.tree.Current())
		m.focused = focusDetail
		m.refresh()
	default:
		return false
	}
	return true
}

func (m *Model) handleDetailKey(msg tea.KeyMsg) bool {
	if msg.String() == "esc" || (msg.String() == "left" && !m.projection.IsMatrix()) {
		m.focused = focusTree
		return true
	}
	if m.projection.IsMatrix() {
		return m.updateMatrix(msg)
	}
	return m.updateStructure(msg)
}

func (m *Model) updateStructure(msg tea.KeyMsg) bool {
	items := structureItems(m.projection)
	switch msg.String() {
	case "j", "down":
		m.itemCursor = clampIndex(m.itemCursor+1, len(items))
	case "k", "up":
		m.itemCursor = clampIndex(m.itemCursor-1, len(items))
	case "e", "enter":
		if len(items) == 0 {
			m.setStatus("Nothing to edit", true)
			return true
		}
		it := items[m.itemCursor]
		m.openEdit(NewListItemModal(m.projection.Selected, it.Kind, it.Index, m.theme))
	case "d", "delete":
		if len(items) == 0 {
			m.setStatus("Nothing to delete", true)
			return true
		}
		it := items[m.itemCursor]
		if err := m.forest.RemoveListItem(m.projection.Selected, it.Kind, it.Index); err != nil {
			m.setStatus(err.Error(), true)
			return true
		}
		m.refresh()
		m.setStatus(fmt.Sprintf("Deleted %s %d", singularKind(it.Kind), it.Index+1), false)
	default:
		return false
	}
	return true
}

func (m *Model) updateMatrix(msg tea.KeyMsg) bool {
	p := m.projection
	switch msg.String() {
	case "j", "down":
		m.rowCursor = clampIndex(m.rowCursor+1, len(p.Rows))
	case "k", "up":
		m.rowCursor = clampIndex(m.rowCursor-1, len(p.Rows))
	case "l", "right":
		m.colCursor = clampIndex(m.colCursor+1, len(p.Columns))
	case "h", "left":
		if m.colCursor == 0 {
			m.focused = focusTree
			return true
		}
		m.colCursor--
	case " ", "space", "enter":
		if len(p.Rows) == 0 || len(p.Columns) == 0 {
			return true
		}
		row := p.Rows[m.rowCursor]
		col := p.Columns[m.colCursor]
		on, err := m.forest.ToggleMatrixCell(row.Node, col.ID)
		if err != nil {
			m.setStatus(err.Error(), true)
			return true
		}
		m.refresh()
		verb := "Unlinked"
		if on {
			verb = "Linked"
		}
		m.setStatus(fmt.Sprintf("%s %s ↔ %s", verb, row.Node.Name, displayLabel(col.Label)), false)
	default:
		return false
	}
	return true
}

func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "?":
		m.showHelp = true
	case "1", "2", "3":
		m.setView(model.AllViewModes[int(msg.String()[0]-'1')])
	case "tab":
		m.setView(m.view.Next())
	case "a":
		m.openEdit(NewAddRootModal(m.theme))
	case "c":
		sel := m.forest.Selected()
		if sel == nil {
			m.setStatus("Select a component first", true)
			return m, nil
		}
		m.openEdit(NewAddChildModal(sel, m.theme))
	case "f":
		m.appendItem(model.ListFunctions)
	case "m":
		m.appendItem(model.ListFailureModes)
	case "x":
		m.picker = NewExportPicker()
		m.picker.SetSize(m.width, m.bodyHeight())
		m.showPicker = true
		return m, m.picker.Init()
	case "X":
		formats, err := m.cfg.ExportFormats()
		if err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Exporting %d formats...", len(formats)), false)
		return m, exportAllCmd(*m.exporter, export.Snapshot(m.forest.Roots()), formats)
	case "y":
		clip := export.Exporter{Deliverer: m.clipboard, Options: m.exporter.Options}
		return m, exportCmd(clip, export.Snapshot(m.forest.Roots()), export.FormatDelimitedText)
	case "p":
		m.openPreview()
	}
	return m, nil
}

func (m *Model) setView(v model.ViewMode) {
	if v == m.view {
		return
	}
	m.view = v
	m.rowCursor, m.colCursor, m.itemCursor = 0, 0, 0
	m.refresh()
}

// appendItem adds an empty entry to the selected node and opens it for
// editing. A cancelled edit leaves the placeholder in place.
func (m *Model) appendItem(kind model.ListKind) {
	sel := m.forest.Selected()
	if sel == nil {
		m.setStatus("Select a component first", true)
		return
	}
	if _, err := m.forest.AppendListItem(sel, kind); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.view = model.ViewStructure
	m.focused = focusDetail
	m.refresh()

	index := len(sel.List(kind)) - 1
	for i, it := range structureItems(m.projection) {
		if it.Kind == kind && it.Index == index {
			m.itemCursor = i
		}
	}
	m.openEdit(NewListItemModal(sel, kind, index, m.theme))
}

func (m *Model) openEdit(e EditModal) {
	e.SetSize(m.width, m.bodyHeight())
	m.edit = e
	m.showEdit = true
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.edit, cmd = m.edit.Update(msg)
	if m.edit.IsCancelRequested() {
		m.showEdit = false
		return m, cmd
	}
	if !m.edit.IsSubmitRequested() {
		return m, cmd
	}

	if m.edit.Purpose != EditAddRoot && !m.forest.Contains(m.edit.Target) {
		m.showEdit = false
		m.setStatus("Component no longer exists", true)
		m.refresh()
		return m, cmd
	}

	value := m.edit.Value()
	switch m.edit.Purpose {
	case EditAddRoot:
		node := m.forest.AddRoot(value)
		if node == nil {
			m.edit.Reopen()
			m.setStatus("Name cannot be empty", true)
			return m, cmd
		}
		m.focused = focusTree
		m.setStatus(fmt.Sprintf("Added root %s", node.Name), false)
	case EditAddChild:
		node := m.forest.AddChild(m.edit.Target, value)
		if node == nil {
			m.edit.Reopen()
			m.setStatus("Name cannot be empty", true)
			return m, cmd
		}
		m.setStatus(fmt.Sprintf("Added %s under %s", node.Name, m.edit.Target.Name), false)
	case EditListItem:
		if err := m.forest.SetListItem(m.edit.Target, m.edit.Kind, m.edit.Index, value); err != nil {
			m.setStatus(err.Error(), true)
		} else {
			m.setStatus(fmt.Sprintf("Saved %s %d", singularKind(m.edit.Kind), m.edit.Index+1), false)
		}
	}
	m.showEdit = false
	m.refresh()
	return m, cmd
}

func (m Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	switch {
	case m.picker.Aborted():
		m.showPicker = false
		return m, nil
	case m.picker.Done():
		m.showPicker = false
		return m, m.startExport(m.picker.Choice())
	}
	return m, cmd
}

// startExport snapshots the forest on the UI goroutine and hands the
// records to a background command.
func (m *Model) startExport(format export.Format) tea.Cmd {
	debug.Log("ui: export %s", format)
	m.setStatus(fmt.Sprintf("Exporting %s...", format.Label()), false)
	return exportCmd(*m.exporter, export.Snapshot(m.forest.Roots()), format)
}

func (m *Model) openPreview() {
	md := export.GenerateMarkdown(export.Snapshot(m.forest.Roots()), m.exporter.Options.Title, time.Now())
	content := md
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(m.cfg.UI.PreviewWrap),
	)
	if err == nil {
		if out, rerr := r.Render(md); rerr == nil {
			content = out
		} else {
			debug.Log("ui: markdown render: %v", rerr)
		}
	}
	m.preview = viewport.New(m.width, m.bodyHeight())
	m.preview.SetContent(content)
	m.showPreview = true
}

func (m Model) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "p":
		m.showPreview = false
		return m, nil
	}
	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)
	return m, cmd
}

func singularKind(k model.ListKind) string {
	if k == model.ListFailureModes {
		return "failure mode"
	}
	return "function"
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	defer metrics.Timer(metrics.UIRender)()

	var body string
	bodyH := m.bodyHeight()
	switch {
	case m.showHelp:
		body = m.renderHelpOverlay(bodyH)
	case m.showPicker:
		body = m.picker.View()
	case m.showEdit:
		body = m.edit.View()
	case m.showPreview:
		body = m.preview.View()
	default:
		body = m.renderPanels(bodyH)
	}
	body = lipgloss.NewStyle().Height(bodyH).MaxHeight(bodyH).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())
}

func (m Model) renderPanels(height int) string {
	treeW := m.treeWidth()
	detailW := m.width - treeW
	if detailW < panelFrame+1 {
		detailW = panelFrame + 1
	}
	inner := height - panelFrame

	treePanel := panelStyle(m.focused == focusTree).
		Width(treeW - panelFrame).
		Height(inner).
		Render(m.tree.View(m.focused == focusTree))
	detailPanel := panelStyle(m.focused == focusDetail).
		Width(detailW - panelFrame).
		Height(inner).
		Render(m.renderDetail(detailW-panelFrame, inner))
	return lipgloss.JoinHorizontal(lipgloss.Top, treePanel, detailPanel)
}

func (m Model) renderHeader() string {
	t := m.theme
	parts := []string{t.PrimaryBold.Render(" DFMEA ")}
	for i, v := range model.AllViewModes {
		label := fmt.Sprintf(" %d %s ", i+1, v)
		if v == m.view {
			parts = append(parts, t.TabActive.Render(label))
		} else {
			parts = append(parts, t.TabInactive.Render(label))
		}
	}
	left := strings.Join(parts, " ")
	right := t.MutedText.Render(fmt.Sprintf("%d components · depth %d · %d bare ",
		m.stats.Components, m.stats.MaxDepth, m.stats.Bare))
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return truncate(left, m.width)
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderFooter() string {
	t := m.theme
	if m.statusMsg != "" {
		style := t.Base.Foreground(t.Related)
		if m.statusIsError {
			style = t.Base.Foreground(t.Danger)
		}
		return style.Render(truncate(" "+m.statusMsg, m.width))
	}

	var hints string
	switch {
	case m.showPreview:
		hints = "j/k scroll · esc close"
	case m.showEdit:
		hints = "enter save · esc cancel"
	case m.showPicker:
		hints = "enter export · esc cancel"
	case m.focused == focusDetail && m.projection.IsMatrix():
		hints = "h/j/k/l move · space toggle · tab view · esc tree · ? help"
		if m.coverage.Mode == m.view && len(m.coverage.Columns) > 0 {
			hints = m.coverage.Summary() + " · " + hints
		}
	case m.focused == focusDetail:
		hints = "j/k move · e edit · d delete · f/m add · esc tree · ? help"
	default:
		hints = "j/k move · enter open · a root · c child · x export · p preview · ? help · q quit"
	}
	return t.MutedText.Render(truncate(" "+hints, m.width))
}

var helpSections = []struct {
	title string
	keys  [][2]string
}{
	{"Navigation", [][2]string{
		{"j / k", "move down / up"},
		{"h / l", "move matrix column"},
		{"enter", "open the selected component"},
		{"esc", "back to the tree"},
		{"1 2 3 / tab", "structure, function, failure mode view"},
	}},
	{"Editing", [][2]string{
		{"a", "add root component"},
		{"c", "add subcomponent"},
		{"f / m", "add function / failure mode"},
		{"e / d", "edit / delete focused entry"},
		{"space", "toggle matrix cell"},
	}},
	{"Output", [][2]string{
		{"x", "export as..."},
		{"X", "export all configured formats"},
		{"y", "copy CSV to clipboard"},
		{"p", "preview report"},
		{"q", "quit"},
	}},
}

func (m Model) renderHelpOverlay(height int) string {
	t := m.theme
	var b strings.Builder
	b.WriteString(t.PrimaryBold.Render("Keyboard shortcuts"))
	for _, s := range helpSections {
		b.WriteString("\n\n")
		b.WriteString(t.SecondaryText.Render(s.title))
		for _, k := range s.keys {
			b.WriteString("\n  ")
			b.WriteString(t.PrimaryBold.Render(padRight(k[0], 12)))
			b.WriteString(t.Base.Render(k[1]))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(t.MutedText.Render("Press any key to close"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2).
		Render(b.String())
	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, box)
}
