// Package monitor provides an interactive terminal front end for a
// machine: registers, a disassembly window around PC, the recent trace
// and captured logs, with single-step and per-frame execution control.
package monitor

import (
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"

	"github.com/dotmatrix-emu/go-dmg/dmg"
	"github.com/dotmatrix-emu/go-dmg/dmg/disasm"
	"github.com/dotmatrix-emu/go-dmg/dmg/timing"
	"github.com/dotmatrix-emu/go-dmg/dmg/trace"
)

const (
	minWidth  = 80
	minHeight = 24

	registerLines = 11
	disasmBefore  = 4
	disasmAfter   = 8
)

var (
	styleDefault  = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	styleTitle    = styleDefault.Bold(true)
	styleBorder   = styleDefault.Foreground(tcell.ColorGray)
	styleRegister = styleDefault.Foreground(tcell.ColorBlue)
	styleDisasm   = styleDefault.Foreground(tcell.ColorGreen)
	styleCurrent  = styleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleTrace    = styleDefault
	styleHelp     = styleDefault.Foreground(tcell.ColorGray)

	logStyles = map[slog.Level]tcell.Style{
		slog.LevelDebug: styleDefault.Foreground(tcell.ColorGray),
		slog.LevelInfo:  styleDefault.Foreground(tcell.ColorBlue),
		slog.LevelWarn:  styleDefault.Foreground(tcell.ColorYellow),
		slog.LevelError: styleDefault.Foreground(tcell.ColorRed).Bold(true),
	}
)

// Monitor owns the run loop of the machine it inspects. It starts
// paused so the first frame can be stepped through from the reset
// state.
type Monitor struct {
	machine *dmg.Machine
	ring    *trace.Ring
	logs    *Buffer
	screen  tcell.Screen

	level   slog.Level
	paused  bool
	running bool
}

// New wires a monitor to a machine. The ring should be the same one
// installed as the machine's tracer; it may be nil, which blanks the
// trace pane.
func New(machine *dmg.Machine, ring *trace.Ring) *Monitor {
	return &Monitor{
		machine: machine,
		ring:    ring,
		logs:    NewBuffer(256),
		level:   slog.LevelInfo,
		paused:  true,
	}
}

// Run takes over the terminal and the default slog output until the
// quit key is pressed. The previous slog default is restored on exit.
func (mon *Monitor) Run() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("monitor: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("monitor: %w", err)
	}
	mon.screen = screen
	defer screen.Fini()

	screen.SetStyle(styleDefault)
	screen.Clear()

	previous := slog.Default()
	slog.SetDefault(slog.New(NewHandler(mon.logs, slog.LevelDebug)))
	defer slog.SetDefault(previous)

	slog.Info("monitor attached", "title", mon.machine.Title())

	limiter := timing.NewAdaptive()
	mon.running = true
	for mon.running {
		if mon.paused {
			mon.draw()
			mon.screen.Show()
			mon.handleEvent(mon.screen.PollEvent())
			continue
		}

		if err := mon.machine.RunFrame(); err != nil {
			slog.Error("machine faulted", "err", err)
			mon.paused = true
		}
		for mon.screen.HasPendingEvent() {
			mon.handleEvent(mon.screen.PollEvent())
		}
		mon.draw()
		mon.screen.Show()
		limiter.Wait()
	}
	return nil
}

func (mon *Monitor) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		mon.screen.Sync()
	case *tcell.EventKey:
		mon.handleKey(ev)
	}
}

func (mon *Monitor) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		mon.running = false
		return
	case tcell.KeyRune:
	default:
		return
	}

	switch ev.Rune() {
	case 'q', 'Q':
		mon.running = false
	case ' ':
		mon.paused = !mon.paused
	case 's', 'S':
		if mon.paused {
			mon.stepOnce()
		}
	case 'f', 'F':
		if mon.paused {
			mon.frameOnce()
		}
	case '+', '=':
		mon.changeLevel(-1)
	case '-', '_':
		mon.changeLevel(1)
	}
}

func (mon *Monitor) stepOnce() {
	if _, err := mon.machine.Step(); err != nil {
		slog.Error("machine faulted", "err", err)
	}
}

func (mon *Monitor) frameOnce() {
	if err := mon.machine.RunFrame(); err != nil {
		slog.Error("machine faulted", "err", err)
	}
}

// changeLevel moves the log pane filter; negative direction shows
// more, positive shows less.
func (mon *Monitor) changeLevel(direction int) {
	levels := []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}
	for i, l := range levels {
		if l != mon.level {
			continue
		}
		if next := i + direction; next >= 0 && next < len(levels) {
			mon.level = levels[next]
		}
		return
	}
}

func (mon *Monitor) draw() {
	mon.screen.Clear()
	width, height := mon.screen.Size()
	if width < minWidth || height < minHeight {
		warning := fmt.Sprintf("terminal too small: %dx%d (need at least %dx%d)", width, height, minWidth, minHeight)
		mon.drawText(1, 1, styleCurrent, warning, width)
		return
	}

	split := width / 2
	mon.drawFrame(width, height, split)

	snap := mon.machine.Snapshot()
	mon.drawRegisters(1, 1, split, snap)
	mon.drawDisasm(1, registerLines+2, height-1, split, snap.PC)
	mon.drawTrace(split+2, 1, (height-1)/2, width)
	mon.drawLogs(split+2, (height-1)/2+1, height-1, width)
	mon.drawHelp(height - 1)
}

func (mon *Monitor) drawFrame(width, height, split int) {
	title := fmt.Sprintf(" dmg monitor | %s ", mon.machine.Title())
	state := " RUNNING "
	if mon.paused {
		state = " PAUSED "
	}
	mon.drawText(1, 0, styleTitle, title, split)
	mon.drawText(width-len(state)-1, 0, styleTitle, state, width)

	for y := 1; y < height-1; y++ {
		mon.screen.SetContent(split, y, '│', nil, styleBorder)
	}
	for x := 1; x < split; x++ {
		mon.screen.SetContent(x, registerLines+1, '─', nil, styleBorder)
	}
	for x := split + 1; x < width-1; x++ {
		mon.screen.SetContent(x, (height-1)/2, '─', nil, styleBorder)
	}
}

func (mon *Monitor) drawRegisters(x, y, clipX int, snap dmg.Snapshot) {
	lines := []string{
		fmt.Sprintf("State: %s", snap.State),
		"",
		fmt.Sprintf("A: 0x%02X   F: 0x%02X  [%s]", snap.A, snap.F, snap.FlagString()),
		fmt.Sprintf("B: 0x%02X   C: 0x%02X", snap.B, snap.C),
		fmt.Sprintf("D: 0x%02X   E: 0x%02X", snap.D, snap.E),
		fmt.Sprintf("H: 0x%02X   L: 0x%02X", snap.H, snap.L),
		"",
		fmt.Sprintf("SP: 0x%04X  PC: 0x%04X", snap.SP, snap.PC),
		"",
		fmt.Sprintf("IME: %-3s  IE: 0x%02X  IF: 0x%02X", onOff(snap.IME), snap.IE, snap.IF),
		fmt.Sprintf("DIV: 0x%02X  Cycles: %d", uint8(snap.Divider>>8), snap.Cycles),
	}
	for i, line := range lines {
		mon.drawText(x, y+i, styleRegister, line, clipX)
	}
}

func (mon *Monitor) drawDisasm(x, y, maxY, clipX int, pc uint16) {
	lines := disasm.Window(mon.machine.ReadByte, pc, disasmBefore, disasmAfter)
	for i, line := range lines {
		if y+i >= maxY {
			break
		}
		style := styleDisasm
		marker := "  "
		if line.Addr == pc {
			style = styleCurrent
			marker = "→ "
		}
		mon.drawText(x, y+i, style, marker+line.String(), clipX)
	}
}

func (mon *Monitor) drawTrace(x, y, maxY, clipX int) {
	if mon.ring == nil {
		mon.drawText(x, y, styleHelp, "tracer not installed", clipX)
		return
	}
	records := mon.ring.Records()
	avail := maxY - y
	if len(records) > avail {
		records = records[len(records)-avail:]
	}
	for i, rec := range records {
		mon.drawText(x, y+i, styleTrace, traceLine(rec), clipX)
	}
}

func (mon *Monitor) drawLogs(x, y, maxY, clipX int) {
	entries := mon.logs.Recent(0)
	row := y
	for _, e := range entries {
		if e.Level < mon.level {
			continue
		}
		if row >= maxY {
			break
		}
		style, ok := logStyles[e.Level]
		if !ok {
			style = styleDefault
		}
		mon.drawText(x, row, style, formatEntry(e), clipX)
		row++
	}
}

func (mon *Monitor) drawHelp(y int) {
	help := fmt.Sprintf(" SPACE run/pause  S step  F frame  +/- log filter (%s)  Q quit ", levelName(mon.level))
	mon.drawText(1, y, styleHelp, help, len(help)+2)
}

func (mon *Monitor) drawText(x, y int, style tcell.Style, text string, clipX int) {
	width, height := mon.screen.Size()
	if clipX > width {
		clipX = width
	}
	if y < 0 || y >= height {
		return
	}
	col := x
	for _, r := range text {
		if col >= clipX {
			break
		}
		mon.screen.SetContent(col, y, r, nil, style)
		col++
	}
}

func traceLine(r trace.Record) string {
	return fmt.Sprintf("%-5s PC:%04X OP:%02X AF:%02X%02X SP:%04X CYC:%d",
		r.Event, r.PC, r.Opcode, r.A, r.F, r.SP, r.Cycle)
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}

func levelName(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "debug"
	case slog.LevelWarn:
		return "warn"
	case slog.LevelError:
		return "error"
	default:
		return "info"
	}
}
