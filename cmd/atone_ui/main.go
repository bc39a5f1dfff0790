package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/cbegin/atone-go"
	"github.com/cbegin/atone-go/internal/automaton"
	"github.com/cbegin/atone-go/internal/sequencer"
)

// columns per bar in the note grid
const columns = 16

// bars of history kept on screen
const history = 4

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle  = lipgloss.NewStyle().Width(11).Foreground(lipgloss.Color("245"))
	onStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	holdStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("30"))
	offStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

var voiceOrder = []sequencer.Voice{
	sequencer.VoiceMelody, sequencer.VoiceLead, sequencer.VoiceChords,
	sequencer.VoiceBass, sequencer.VoicePercussion,
}

type model struct {
	composer *atone.Composer
	player   *atone.Player
	events   <-chan atone.PlaybackEvent

	bars   []atone.Bar
	clock  atone.Tick
	paused bool
	ended  bool
	status string
	err    error
}

type playbackMsg atone.PlaybackEvent

type tickMsg struct{}

func waitForEvent(ch <-chan atone.PlaybackEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return playbackMsg{Kind: atone.EventPlaybackEnded}
		}
		return playbackMsg(ev)
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), tickCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.clock = m.player.PlaybackPosition()
		return m, tickCmd()

	case playbackMsg:
		switch msg.Kind {
		case atone.EventBar:
			m.bars = append(m.bars, msg.Bar)
			if len(m.bars) > history {
				m.bars = m.bars[len(m.bars)-history:]
			}
			if msg.Err != nil {
				m.status = "melody finished, percussion continues"
			}
		case atone.EventError:
			m.err = msg.Err
			m.ended = true
			return m, nil
		case atone.EventPlaybackEnded:
			m.ended = true
			return m, nil
		}
		return m, waitForEvent(m.events)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.player.Stop()
			return m, tea.Quit
		case " ":
			if m.paused {
				m.player.Resume()
				m.status = ""
			} else {
				m.player.Pause()
				m.status = "paused"
			}
			m.paused = !m.paused
		}
	}
	return m, nil
}

func (m model) View() string {
	var sb strings.Builder
	c := m.composer
	sb.WriteString(titleStyle.Render(fmt.Sprintf("atone  %s  %s  %d bpm", c.Algorithm(), c.Scale(), c.BPM())))
	sb.WriteString("\n\n")

	grid := m.renderGrid()
	if ca := m.renderCells(); ca != "" {
		grid = lipgloss.JoinHorizontal(lipgloss.Top, grid, "  ", ca)
	}
	sb.WriteString(boxStyle.Render(grid))
	sb.WriteString("\n")

	bar := 0
	if len(m.bars) > 0 {
		bar = m.bars[len(m.bars)-1].Index + 1
	}
	status := fmt.Sprintf("bar %d  %.1fs", bar, float64(m.clock)/1000)
	if m.status != "" {
		status += "  " + m.status
	}
	if m.ended {
		status += "  ended"
	}
	sb.WriteString(statusStyle.Render(status))
	if m.err != nil {
		sb.WriteString("\n" + errStyle.Render(m.err.Error()))
	}
	sb.WriteString("\n" + statusStyle.Render("space pause  q quit"))
	return sb.String()
}

// renderGrid draws one row per voice with the recent bars side by side.
func (m model) renderGrid() string {
	barLen := m.composer.BarDuration()
	rows := make([]string, 0, len(voiceOrder))
	for _, v := range voiceOrder {
		var sb strings.Builder
		sb.WriteString(labelStyle.Render(v.String()))
		for _, b := range m.bars {
			cells := make([]int, columns)
			for _, n := range b.Notes {
				if n.Voice != v {
					continue
				}
				first := int((n.Start - b.Start) * columns / barLen)
				last := int((n.Start + n.Duration - 1 - b.Start) * columns / barLen)
				for i := first; i <= last && i < columns; i++ {
					if i == first {
						cells[i] = 2
					} else if cells[i] == 0 {
						cells[i] = 1
					}
				}
			}
			for _, cell := range cells {
				switch cell {
				case 2:
					sb.WriteString(onStyle.Render("█"))
				case 1:
					sb.WriteString(holdStyle.Render("▒"))
				default:
					sb.WriteString(offStyle.Render("·"))
				}
			}
			sb.WriteString(" ")
		}
		rows = append(rows, sb.String())
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderCells draws the automaton windows of the latest bar, one row per
// slot.
func (m model) renderCells() string {
	if len(m.bars) == 0 || m.bars[len(m.bars)-1].Automaton == nil {
		return ""
	}
	h := m.composer.Config().Height
	rows := make([]string, 0, automaton.Slots)
	for _, w := range m.bars[len(m.bars)-1].Slots {
		var sb strings.Builder
		for i := h - 1; i >= 0; i-- {
			if w>>uint(i)&1 == 1 {
				sb.WriteString(onStyle.Render("■"))
			} else {
				sb.WriteString(offStyle.Render("·"))
			}
		}
		rows = append(rows, sb.String())
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func main() {
	var (
		configPath = flag.String("config", "", "path to a JSON config file")
		algorithm  = flag.String("algorithm", "", "generator: riff|lsystem|automaton")
		seed       = flag.Uint64("seed", 0, "random seed")
		port       = flag.String("port", "", "MIDI output port name substring")
		bars       = flag.Int("bars", 0, "stop after N bars (0 = forever)")
	)
	flag.Parse()

	cfg := atone.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = atone.LoadConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "algorithm":
			cfg.Algorithm = *algorithm
		case "seed":
			cfg.Seed = *seed
		}
	})

	// The terminal belongs to the UI; diagnostics go to a file when requested.
	logger := log.New(os.Stderr)
	logger.SetLevel(log.ErrorLevel)
	if path := os.Getenv("ATONE_LOG"); path != "" {
		f, err := tea.LogToFile(path, "atone")
		if err == nil {
			defer f.Close()
			logger = atone.NewLogger(f)
			logger.SetLevel(log.DebugLevel)
		}
	}

	c, err := atone.NewComposer(cfg, atone.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	pl, err := atone.NewPlayer(c, atone.WithPort(*port), atone.WithBars(*bars))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	m := model{composer: c, player: pl, events: pl.Watch()}
	if err := pl.Play(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		pl.Stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
