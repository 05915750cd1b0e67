// Package interactive provides the operator console of sensorsim run.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/chzyer/readline"

	"github.com/uns-lab/sensorsim/pkg/simulation"
)

// StatusSource reports the state of every running loop.
// Implemented by *simulation.Fleet.
type StatusSource interface {
	Status() []simulation.LoopStatus
}

// Console handles interactive mode for sensorsim run.
type Console struct {
	fleet StatusSource
	rl    *readline.Instance
	out   io.Writer
	start time.Time
}

// New creates a console reading from the terminal.
func New(fleet StatusSource) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "sensorsim> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Console{fleet: fleet, rl: rl, out: rl.Stdout(), start: time.Now()}, nil
}

// Stdout returns a writer that coordinates with the readline prompt.
// Use this for log output to avoid interfering with the command line.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Close releases the terminal. It is safe to call more than once and
// whether or not Run was started.
func (c *Console) Close() error {
	if c.rl == nil {
		return nil
	}
	return c.rl.Close()
}

// Run reads commands until quit, EOF or ctx is done. Quitting calls cancel
// to stop the whole process.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) error {
	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()
	defer c.Close()

	c.printHelp()

	for {
		line, err := c.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil || ctx.Err() != nil {
			if ctx.Err() == nil {
				fmt.Fprintln(c.out, "Exiting...")
				cancel()
			}
			return nil
		}

		if quit := c.Execute(line); quit {
			cancel()
			return nil
		}
	}
}

// Execute runs one command line and reports whether the console should
// exit.
func (c *Console) Execute(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}

	switch cmd := strings.ToLower(parts[0]); cmd {
	case "help", "?":
		c.printHelp()
	case "status", "s":
		c.cmdStatus(parts[1:])
	case "uptime":
		fmt.Fprintf(c.out, "Uptime: %s\n", time.Since(c.start).Round(time.Second))
	case "quit", "exit", "q":
		fmt.Fprintln(c.out, "Exiting...")
		return true
	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
Sensor Simulator Commands:
    status [asset]     - Show loop and connection status
    uptime             - Show how long the simulator has been running
    help               - Show this help
    quit               - Stop all loops and exit`)
}

func (c *Console) cmdStatus(args []string) {
	statuses := c.fleet.Status()
	if len(statuses) == 0 {
		fmt.Fprintln(c.out, "No loops running yet.")
		return
	}

	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ASSET\tAREA\tCONNECTION\tTICKS\tPUBLISHED\tFAILED\tSKIPPED\tLAST TICK")
	found := false
	for _, s := range statuses {
		if len(args) > 0 && s.Asset != args[0] {
			continue
		}
		found = true
		last := "-"
		if !s.LastTick.IsZero() {
			last = s.LastTick.Format(time.TimeOnly)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			s.Asset, s.Area, s.State, s.Ticks, s.Published, s.Failed, s.Skipped, last)
	}
	tw.Flush()

	if !found {
		fmt.Fprintf(c.out, "Unknown asset: %s\n", args[0])
	}
}
