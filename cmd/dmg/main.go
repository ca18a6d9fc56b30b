package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli"

	"github.com/dotmatrix-emu/go-dmg/dmg"
	"github.com/dotmatrix-emu/go-dmg/dmg/monitor"
	"github.com/dotmatrix-emu/go-dmg/dmg/romfile"
	"github.com/dotmatrix-emu/go-dmg/dmg/serial"
	"github.com/dotmatrix-emu/go-dmg/dmg/timing"
	"github.com/dotmatrix-emu/go-dmg/dmg/trace"
)

const traceRingSize = 256

func main() {
	app := cli.NewApp()
	app.Name = "dmg"
	app.Description = "A Game Boy CPU core with tracing and an interactive monitor"
	app.Usage = "dmg [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM image (.gb/.gbc/.bin, or .zip/.7z/.gz archive)",
		},
		cli.StringFlag{
			Name:  "boot",
			Usage: "Path to a 256-byte boot ROM image to execute before the cartridge",
		},
		cli.BoolFlag{
			Name:  "monitor",
			Usage: "Open the interactive terminal monitor instead of running headless",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run headless",
			Value: 0,
		},
		cli.Int64Flag{
			Name:  "max-cycles",
			Usage: "Number of T-cycles to run headless (alternative to --frames)",
			Value: 0,
		},
		cli.StringFlag{
			Name:  "trace",
			Usage: "Write an execution trace to the given file ('-' for stdout)",
		},
		cli.BoolFlag{
			Name:  "fingerprint",
			Usage: "Print the xxhash fingerprint of the execution trace on exit",
		},
		cli.BoolFlag{
			Name:  "serial",
			Usage: "Capture serial output and print the transcript on exit",
		},
		cli.BoolFlag{
			Name:  "realtime",
			Usage: "Pace headless execution to hardware speed",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("dmg exited with error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	level := slog.LevelInfo
	if c.Bool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	data, err := romfile.Load(romPath)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}

	opts := []dmg.Option{
		dmg.WithCartridge(data),
		dmg.WithLogger(slog.Default()),
	}

	if bootPath := c.String("boot"); bootPath != "" {
		image, err := romfile.Load(bootPath)
		if err != nil {
			return fmt.Errorf("loading boot ROM: %w", err)
		}
		opts = append(opts, dmg.WithBootROM(image))
	}

	var transcript *serial.BufferSink
	if c.Bool("serial") {
		transcript = &serial.BufferSink{}
		opts = append(opts, dmg.WithSerialSink(transcript))
	}

	var (
		sinks  []trace.Sink
		ring   *trace.Ring
		fp     *trace.Fingerprint
		writer *trace.Writer
	)
	if c.Bool("monitor") {
		ring = trace.NewRing(traceRingSize)
		sinks = append(sinks, ring)
	}
	if tracePath := c.String("trace"); tracePath != "" {
		out := os.Stdout
		if tracePath != "-" {
			f, err := os.Create(tracePath)
			if err != nil {
				return fmt.Errorf("opening trace file: %w", err)
			}
			defer f.Close()
			out = f
		}
		writer = trace.NewWriter(out)
		sinks = append(sinks, writer)
	}
	if c.Bool("fingerprint") {
		fp = trace.NewFingerprint()
		sinks = append(sinks, fp)
	}
	switch len(sinks) {
	case 0:
	case 1:
		opts = append(opts, dmg.WithTracer(sinks[0]))
	default:
		opts = append(opts, dmg.WithTracer(trace.Tee(sinks...)))
	}

	machine, err := dmg.New(opts...)
	if err != nil {
		return err
	}

	var runErr error
	if c.Bool("monitor") {
		runErr = monitor.New(machine, ring).Run()
	} else {
		runErr = runHeadless(c, machine)
	}

	printSummary(machine)
	if fp != nil {
		fmt.Printf("fingerprint: %016x\n", fp.Sum64())
	}
	if transcript != nil {
		printTranscript(transcript)
	}
	if writer != nil && writer.Err() != nil {
		slog.Warn("trace output incomplete", "error", writer.Err())
	}
	return runErr
}

func runHeadless(c *cli.Context, machine *dmg.Machine) error {
	frames := c.Int("frames")
	maxCycles := c.Int64("max-cycles")
	if frames <= 0 && maxCycles <= 0 {
		return errors.New("headless mode requires --frames or --max-cycles with a positive value")
	}

	var limiter timing.Limiter = timing.NewNoOp()
	if c.Bool("realtime") {
		ticker := timing.NewTicker()
		defer ticker.Stop()
		limiter = ticker
	}

	if frames > 0 {
		slog.Info("running headless", "rom", machine.Title(), "frames", frames)
		for i := 0; i < frames; i++ {
			if err := machine.RunFrame(); err != nil {
				return err
			}
			limiter.Wait()
		}
		return nil
	}

	slog.Info("running headless", "rom", machine.Title(), "max_cycles", maxCycles)
	elapsed, err := machine.Run(maxCycles)
	if err != nil {
		return err
	}
	slog.Debug("headless run complete", "cycles", elapsed)
	return nil
}

func printSummary(machine *dmg.Machine) {
	s := machine.Snapshot()
	ime := 0
	if s.IME {
		ime = 1
	}
	fmt.Printf("A:%02X F:%02X B:%02X C:%02X D:%02X E:%02X H:%02X L:%02X SP:%04X PC:%04X IME:%d IE:%02X IF:%02X DIV:%02X %s CYC:%d\n",
		s.A, s.F, s.B, s.C, s.D, s.E, s.H, s.L,
		s.SP, s.PC, ime, s.IE, s.IF, uint8(s.Divider>>8), s.State, s.Cycles)
}

func printTranscript(transcript *serial.BufferSink) {
	out := transcript.String()
	if out == "" {
		return
	}
	fmt.Print(out)
	if !strings.HasSuffix(out, "\n") {
		fmt.Println()
	}
}
