package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/cellsolver/internal/analysis"
	"github.com/san-kum/cellsolver/internal/sim"
	"github.com/san-kum/cellsolver/internal/viz"
)

const (
	listWidth = 34
	minWindow = 8
)

// Viewer browses the channels of a series: one channel is selected and
// plotted, optionally together with the channels sharing its extent, over
// a window of samples that can be zoomed and panned.
type Viewer struct {
	series  *sim.Series
	stats   []analysis.ChannelStats
	groupOf []int
	groups  [][]int

	cursor  int
	grouped bool
	window  int
	offset  int

	width, height int
}

func NewViewer(series *sim.Series) *Viewer {
	v := &Viewer{
		series: series,
		stats:  analysis.Describe(series),
		groups: analysis.GroupByExtent(series.Y),
		window: series.Len(),
		width:  100,
		height: 30,
	}
	v.groupOf = make([]int, len(series.Channels))
	for g, members := range v.groups {
		for _, i := range members {
			v.groupOf[i] = g
		}
	}
	return v
}

// Run shows the viewer until the user quits.
func Run(series *sim.Series) error {
	_, err := tea.NewProgram(NewViewer(series), tea.WithAltScreen()).Run()
	return err
}

func (v *Viewer) Init() tea.Cmd { return nil }

func (v *Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width, v.height = msg.Width, msg.Height
	case tea.KeyMsg:
		return v, v.handleKey(msg)
	}
	return v, nil
}

func (v *Viewer) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return tea.Quit
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.series.Channels)-1 {
			v.cursor++
		}
	case "g":
		v.grouped = !v.grouped
	case "+", "=":
		v.window = max(v.window/2, min(minWindow, v.series.Len()))
		v.clampOffset()
	case "-", "_":
		v.window = min(v.window*2, v.series.Len())
		v.clampOffset()
	case "left", "h":
		v.offset -= max(v.window/4, 1)
		v.clampOffset()
	case "right", "l":
		v.offset += max(v.window/4, 1)
		v.clampOffset()
	case "0":
		v.window, v.offset = v.series.Len(), 0
	}
	return nil
}

func (v *Viewer) clampOffset() {
	v.offset = max(0, min(v.offset, v.series.Len()-v.window))
}

// Selected returns the index of the highlighted channel.
func (v *Viewer) Selected() int { return v.cursor }

// Visible returns the sample range [from, to) currently plotted.
func (v *Viewer) Visible() (from, to int) {
	return v.offset, v.offset + v.window
}

// Plotted returns the channel indices drawn on the chart.
func (v *Viewer) Plotted() []int {
	if len(v.series.Channels) == 0 {
		return nil
	}
	if v.grouped {
		return v.groups[v.groupOf[v.cursor]]
	}
	return []int{v.cursor}
}

func (v *Viewer) View() string {
	header := viz.HeaderStyle.Render(fmt.Sprintf("%s  %d samples  %d channels",
		v.series.Title, v.series.Len(), len(v.series.Channels)))
	if len(v.series.Channels) == 0 || v.series.Len() == 0 {
		return header + "\n\n" + viz.Subtle.Render("no data") + "\n"
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, v.channelList(), "  ", v.chart())
	help := viz.KeyHint.Render("↑/↓ channel  g group  +/- zoom  ←/→ pan  0 reset  q quit")
	return header + "\n\n" + body + "\n\n" + help + "\n"
}

func (v *Viewer) channelList() string {
	rows := max(v.height-8, 4)
	start := max(0, min(v.cursor-rows/2, len(v.series.Channels)-rows))

	var sb strings.Builder
	for i := start; i < len(v.series.Channels) && i < start+rows; i++ {
		id := v.series.Channels[i].ID()
		if len(id) > listWidth-12 {
			id = id[:listWidth-13] + "…"
		}
		line := fmt.Sprintf("%-*s %s", listWidth-11, id, viz.Sparkline(v.series.Y[i], 8))
		if i == v.cursor {
			sb.WriteString(viz.Selected.Render("▸ " + line))
		} else {
			sb.WriteString("  " + line)
		}
		sb.WriteRune('\n')
	}
	return viz.Panel.Render(strings.TrimRight(sb.String(), "\n"))
}

func (v *Viewer) chart() string {
	from, to := v.Visible()
	x := v.series.X[from:to]
	plotted := v.Plotted()

	data := make([][]float64, len(plotted))
	for j, i := range plotted {
		data[j] = v.series.Y[i][from:to]
	}

	width := max(v.width-listWidth-16, 20)
	height := max(v.height-14, 5)
	graph := asciigraph.PlotMany(data,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption(fmt.Sprintf("%s [%g, %g]", v.series.XInfo.Name, x[0], x[len(x)-1])),
	)

	s := v.stats[v.cursor]
	c := s.Channel
	metrics := strings.Join([]string{
		viz.Metric("min", fmt.Sprintf("%.6g", s.Min)),
		viz.Metric("max", fmt.Sprintf("%.6g", s.Max)),
		viz.Metric("mean", fmt.Sprintf("%.6g", s.Mean)),
		viz.Metric("final", fmt.Sprintf("%.6g", s.Final)),
	}, "  ")
	title := viz.Title.Render(c.ID())
	if c.Units != "" {
		title += viz.Subtle.Render(" (" + c.Units + ")")
	}
	if len(plotted) > 1 {
		title += viz.Subtle.Render(fmt.Sprintf("  +%d sharing its extent", len(plotted)-1))
	}
	return title + "\n" + graph + "\n" + metrics
}
