package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/clustermap/pkg/cluster"
	"github.com/matzehuels/clustermap/pkg/hierarchy"
	"github.com/matzehuels/clustermap/pkg/view"
)

// Pane styles
var (
	paneStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted)
	paneFocusedStyle = paneStyle.BorderForeground(colorAccent)

	rowSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorOK)
	rowHoveredStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	listDimStyle     = lipgloss.NewStyle().Foreground(colorMuted)
)

const (
	headerLines = 2
	footerLines = 4
	minPane     = 5
)

type pane int

const (
	paneTree pane = iota
	paneMap
)

// payloadMsg delivers a (re)loaded payload tagged with its request generation.
type payloadMsg struct {
	gen     uint64
	payload cluster.Analytics
	err     error
}

// loadFunc produces the payload shown by the browser.
type loadFunc func(ctx context.Context) (cluster.Analytics, error)

// BrowseModel is the bubbletea model of the browse command: a collapsible
// tree of clusters next to a point map of one level, sharing hover and
// selection.
type BrowseModel struct {
	ex    *view.Explorer
	label string
	ctx   context.Context
	load  loadFunc

	gen     uint64 // generation of the newest load request
	focus   pane
	treeRow int // keyboard position in the tree rows
	mapIdx  int // keyboard position in the current level's points

	width, height int
	err           error
}

// NewBrowseModel creates a browser that calls load on start and on reload.
func NewBrowseModel(ctx context.Context, label string, padding float64, load loadFunc) BrowseModel {
	return BrowseModel{
		ex:     view.NewExplorer(view.Options{ListHeight: 20, PaddingFactor: padding}),
		label:  label,
		ctx:    ctx,
		load:   load,
		gen:    1,
		width:  100,
		height: 30,
	}
}

func (m BrowseModel) Init() tea.Cmd {
	return m.loadCmd(m.gen)
}

// reload starts a load tagged with the next generation.
func (m *BrowseModel) reload() tea.Cmd {
	m.gen++
	return m.loadCmd(m.gen)
}

func (m BrowseModel) loadCmd(gen uint64) tea.Cmd {
	load, ctx := m.load, m.ctx
	return func() tea.Msg {
		p, err := load(ctx)
		return payloadMsg{gen: gen, payload: p, err: err}
	}
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case payloadMsg:
		if msg.err != nil {
			if msg.gen == m.gen {
				m.err = msg.err
			}
			return m, nil
		}
		payload := msg.payload
		if m.ex.Load(msg.gen, &payload) {
			m.err = nil
			m.treeRow, m.mapIdx = 0, 0
			m.ex.SetListHeight(m.listHeight())
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ex.SetListHeight(m.listHeight())
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	return m, nil
}

func (m BrowseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		if m.focus == paneTree {
			m.focus = paneMap
		} else {
			m.focus = paneTree
		}
		return m, nil
	case "r":
		cmd := m.reload()
		return m, cmd
	case "esc":
		m.leave()
		return m, nil
	}

	if m.focus == paneTree {
		m.treeKey(msg.String())
	} else {
		m.mapKey(msg.String())
	}
	return m, nil
}

func (m *BrowseModel) treeKey(key string) {
	rows := m.ex.Tree().Rows()
	if len(rows) == 0 {
		return
	}
	m.treeRow = min(max(m.treeRow, 0), len(rows)-1)
	id := rows[m.treeRow].Cluster.ID

	switch key {
	case "up", "k":
		m.moveTree(-1)
	case "down", "j":
		m.moveTree(1)
	case "pgup":
		m.moveTree(-m.ex.List().Height)
	case "pgdown":
		m.moveTree(m.ex.List().Height)
	case "enter", " ", "right", "l", "left", "h":
		if rows[m.treeRow].HasChildren {
			expanded := m.ex.Tree().IsExpanded(id)
			if (key == "right" || key == "l") && expanded || (key == "left" || key == "h") && !expanded {
				return
			}
			m.ex.Dispatch(view.Intent{Kind: view.ToggleTree, ID: id})
		}
	case "s":
		m.ex.Dispatch(view.Intent{Kind: view.SelectTree, ID: id})
		m.syncMap(id)
	case "e":
		m.ex.Tree().ExpandAll()
		m.ex.List().Clamp(len(m.ex.Tree().Rows()))
	case "c":
		m.ex.Tree().CollapseAll()
		m.treeRow = 0
		m.ex.List().Offset = 0
	}
}

func (m *BrowseModel) moveTree(delta int) {
	rows := m.ex.Tree().Rows()
	m.treeRow = min(max(m.treeRow+delta, 0), len(rows)-1)
	m.ex.Dispatch(view.Intent{Kind: view.HoverTree, ID: rows[m.treeRow].Cluster.ID})
}

func (m *BrowseModel) mapKey(key string) {
	pm := m.ex.PointMap()
	switch key {
	case "[", "u":
		pm.Up()
		m.mapIdx = 0
		return
	case "]", "d":
		pm.Down()
		m.mapIdx = 0
		return
	}

	pts := pm.Points()
	if len(pts) == 0 {
		return
	}
	m.mapIdx = min(max(m.mapIdx, 0), len(pts)-1)
	switch key {
	case "left", "h", "up", "k":
		m.mapIdx = (m.mapIdx - 1 + len(pts)) % len(pts)
		m.hoverMap(pts[m.mapIdx].ID)
	case "right", "l", "down", "j":
		m.mapIdx = (m.mapIdx + 1) % len(pts)
		m.hoverMap(pts[m.mapIdx].ID)
	case "enter", "s":
		m.selectMap(pts[m.mapIdx].ID)
	}
}

func (m *BrowseModel) hoverMap(id string) {
	if i := m.ex.Tree().RowIndex(id); i >= 0 {
		m.treeRow = i
	}
	m.ex.Dispatch(view.Intent{Kind: view.HoverMap, ID: id})
}

// selectMap selects id and reveals it in the tree.
func (m *BrowseModel) selectMap(id string) {
	m.ex.Tree().Reveal(id)
	m.ex.Dispatch(view.Intent{Kind: view.SelectMap, ID: id})
	if i := m.ex.Tree().RowIndex(id); i >= 0 {
		m.treeRow = i
		m.ex.List().ScrollIntoView(i, len(m.ex.Tree().Rows()))
	}
}

// syncMap moves the point map to the level of id.
func (m *BrowseModel) syncMap(id string) {
	lm := m.ex.LevelMap()
	if lm == nil {
		return
	}
	if d, ok := lm.DepthOf(id); ok {
		m.ex.PointMap().SetLevel(d)
		for i, p := range m.ex.PointMap().Points() {
			if p.ID == id {
				m.mapIdx = i
			}
		}
	}
}

// hit is the cluster under the pointer.
type hit struct {
	id   string
	pane pane
	row  int // tree row index
}

// hitTest locates the tree row or map point at screen cell (x, y).
func (m BrowseModel) hitTest(x, y int) (hit, bool) {
	if x >= 1 && x <= m.treeWidth() {
		// Tree rows start below the header and the pane border.
		vp := m.ex.List()
		rows := m.ex.Tree().Rows()
		k := y - headerLines - 1
		if k < 0 || k >= vp.Height || vp.Offset+k >= len(rows) {
			return hit{}, false
		}
		i := vp.Offset + k
		return hit{id: rows[i].Cluster.ID, pane: paneTree, row: i}, true
	}

	// The map grid sits below the pane border and the level caption.
	mw, mh := m.mapSize()
	mh--
	col := x - m.treeWidth() - 3
	row := y - headerLines - 2
	if col < 0 || col >= mw || row < 0 || row >= mh {
		return hit{}, false
	}
	pt, ok := m.ex.PointMap().At(col, row, mw, mh)
	if !ok {
		return hit{}, false
	}
	return hit{id: pt.ID, pane: paneMap}, true
}

func (m *BrowseModel) handleMouse(msg tea.MouseMsg) {
	h, ok := m.hitTest(msg.X, msg.Y)
	switch {
	case msg.Action == tea.MouseActionMotion:
		if !ok {
			m.leave()
			return
		}
		if h.pane == paneTree {
			m.treeRow = h.row
			m.ex.Dispatch(view.Intent{Kind: view.HoverTree, ID: h.id})
			return
		}
		m.hoverMap(h.id)
	case ok && msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.focus = h.pane
		if h.pane == paneTree {
			m.treeRow = h.row
			m.ex.Dispatch(view.Intent{Kind: view.SelectTree, ID: h.id})
			m.syncMap(h.id)
			return
		}
		m.selectMap(h.id)
	}
}

// leave clears the hover when the pointer is over empty space.
func (m *BrowseModel) leave() {
	if id, ok := m.ex.Cursor().Hovered(); ok {
		m.ex.Dispatch(view.Intent{Kind: view.Leave, ID: id})
	}
}

// =============================================================================
// Layout
// =============================================================================

func (m BrowseModel) paneHeight() int {
	return max(m.height-headerLines-footerLines-2, minPane)
}

func (m BrowseModel) listHeight() int { return m.paneHeight() }

func (m BrowseModel) treeWidth() int {
	return max(m.width*2/5, 24)
}

func (m BrowseModel) mapSize() (int, int) {
	return max(m.width-m.treeWidth()-4, minPane*2), m.paneHeight()
}

// =============================================================================
// View
// =============================================================================

func (m BrowseModel) View() string {
	var b strings.Builder

	lm := m.ex.LevelMap()
	title := StyleTitle.Render("clustermap") + " " + StyleValue.Render(m.label)
	if lm != nil && lm.Depth() > 0 {
		title += StyleDim.Render(fmt.Sprintf("  %d clusters · %d levels", lm.Len(), lm.Depth()))
		if n := lm.ExcludedCount(); n > 0 {
			title += " " + statusWarn.style.Render(fmt.Sprintf("%d excluded", n))
		}
	}
	b.WriteString(title + "\n\n")

	if m.err != nil {
		b.WriteString(statusFail.style.Render(statusFail.icon) + " " + m.err.Error() + "\n")
		b.WriteString(listDimStyle.Render("r reload  q quit"))
		return b.String()
	}
	if lm == nil {
		b.WriteString(StyleDim.Render("Loading…"))
		return b.String()
	}

	tree, treeStyle := m.viewTree(), paneStyle
	pmap, mapStyle := m.viewMap(), paneStyle
	if m.focus == paneTree {
		treeStyle = paneFocusedStyle
	} else {
		mapStyle = paneFocusedStyle
	}
	mw, _ := m.mapSize()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		treeStyle.Width(m.treeWidth()).Render(tree),
		mapStyle.Width(mw).Render(pmap)))
	b.WriteString("\n")
	b.WriteString(m.viewDetail())
	b.WriteString("\n")
	if m.focus == paneTree {
		b.WriteString(listDimStyle.Render("↑/↓ move  ⏎ expand  s select  e/c expand/collapse all  tab map  r reload  q quit"))
	} else {
		b.WriteString(listDimStyle.Render("←/→ cycle  ⏎ select  [/] level  tab tree  esc leave  q quit"))
	}
	return b.String()
}

func (m BrowseModel) viewTree() string {
	rows := m.ex.Tree().Rows()
	vp := m.ex.List()
	selected, _ := m.ex.Cursor().Selected()
	hovered, _ := m.ex.Cursor().Hovered()
	width := m.treeWidth() - 2

	lines := make([]string, 0, vp.Height)
	for i := vp.Offset; i < min(vp.Offset+vp.Height, len(rows)); i++ {
		r := rows[i]
		marker := " "
		if r.HasChildren {
			marker = "▸"
			if r.Expanded {
				marker = "▾"
			}
		}
		pointer := "  "
		if i == m.treeRow && m.focus == paneTree {
			pointer = "› "
		}
		share := fmt.Sprintf(" %5.1f%%", r.Share)
		name := truncate(r.Cluster.DisplayName(), max(width-len(share)-2*r.Depth-4, 4))
		line := pointer + strings.Repeat("  ", r.Depth) + levelStyle(r.Depth).Render(marker) + " "

		style := StyleValue
		switch r.Cluster.ID {
		case selected:
			style = rowSelectedStyle
		case hovered:
			style = rowHoveredStyle
		}
		lines = append(lines, line+style.Render(name)+StyleDim.Render(share))
	}
	for len(lines) < vp.Height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m BrowseModel) viewMap() string {
	pm := m.ex.PointMap()
	pts := pm.Points()
	mw, mh := m.mapSize()
	grid := pm.Raster(mw, mh-1)

	selected, _ := m.ex.Cursor().Selected()
	active := m.ex.Cursor().Active()
	lm := m.ex.LevelMap()

	var b strings.Builder
	b.WriteString(levelStyle(pm.Level()).Render(levelCaption(pm.Level(), lm.Depth())))
	b.WriteString(StyleDim.Render(fmt.Sprintf(" · %d points", len(pts))))
	for _, row := range grid {
		b.WriteString("\n")
		for _, idx := range row {
			if idx < 0 {
				b.WriteString(" ")
				continue
			}
			p := pts[idx]
			switch {
			case p.ID == selected:
				b.WriteString(rowSelectedStyle.Render("◆"))
			case p.ID == active:
				b.WriteString(rowHoveredStyle.Render("◉"))
			case inSubtree(lm, active, p.ID):
				b.WriteString(StyleHighlight.Render("●"))
			case lm.HasChildren(p.ID):
				b.WriteString(levelStyle(pm.Level()).Render("●"))
			default:
				b.WriteString(StyleDim.Render("·"))
			}
		}
	}
	return b.String()
}

func levelCaption(level, depth int) string {
	if depth == 0 {
		return "no levels"
	}
	return fmt.Sprintf("level %d/%d", level, depth-1)
}

// inSubtree reports whether id descends from ancestor.
func inSubtree(lm *hierarchy.LevelMap, ancestor, id string) bool {
	if ancestor == "" {
		return false
	}
	for _, a := range lm.Ancestors(id) {
		if a == ancestor {
			return true
		}
	}
	return false
}

func (m BrowseModel) viewDetail() string {
	id := m.ex.Cursor().Active()
	lm := m.ex.LevelMap()
	c, ok := lm.Cluster(id)
	if !ok {
		return StyleDim.Render("Hover or select a cluster to see its details.") + "\n"
	}
	share, _ := hierarchy.ShareOf(lm, id)
	depth, _ := lm.DepthOf(id)
	head := fmt.Sprintf("%s %s",
		levelStyle(depth).Bold(true).Render(c.DisplayName()),
		StyleDim.Render(fmt.Sprintf("level %d · %d conversations · %.1f%% of level · %d children",
			depth, c.Count, share, len(lm.Children(id)))))
	desc := truncate(strings.ReplaceAll(c.Description, "\n", " "), max(m.width-2, 10))
	return head + "\n" + StyleDim.Render(desc)
}

// runBrowse starts the browser in the alternate screen.
func runBrowse(ctx context.Context, m BrowseModel) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
