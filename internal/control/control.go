// Package control implements the text command interface used to drive an
// equalizer from a terminal while audio is playing.
package control

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-eq/dsp/eq"
	"github.com/cwbudde/algo-eq/dsp/eq/preset"
)

var (
	ErrUnknownCommand = errors.New("control: unknown command")
	ErrUsage          = errors.New("control: bad arguments")
)

// Kind identifies a command.
type Kind int

const (
	Band Kind = iota
	On
	Off
	Reset
	Preset
	Save
	Show
	Quit
)

// Command is one parsed input line.
type Command struct {
	Kind Kind
	Band int
	Gain float64
	Name string
}

// Parse turns a line such as "band 3 -4.5" into a Command.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty line", ErrUsage)
	}

	args := fields[1:]

	switch strings.ToLower(fields[0]) {
	case "band", "b":
		if len(args) != 2 {
			return Command{}, fmt.Errorf("%w: band <0-%d> <dB>", ErrUsage, eq.NumBands-1)
		}

		band, err := strconv.Atoi(args[0])
		if err != nil {
			return Command{}, fmt.Errorf("%w: band index %q", ErrUsage, args[0])
		}

		gain, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return Command{}, fmt.Errorf("%w: gain %q", ErrUsage, args[1])
		}

		return Command{Kind: Band, Band: band, Gain: gain}, nil
	case "on":
		return noArgs(On, args)
	case "off":
		return noArgs(Off, args)
	case "reset":
		return noArgs(Reset, args)
	case "save":
		return noArgs(Save, args)
	case "show", "status":
		return noArgs(Show, args)
	case "quit", "exit", "q":
		return noArgs(Quit, args)
	case "preset", "p":
		if len(args) != 1 {
			return Command{}, fmt.Errorf("%w: preset <%s>", ErrUsage, strings.Join(preset.Names(), "|"))
		}

		return Command{Kind: Preset, Name: args[0]}, nil
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
	}
}

func noArgs(k Kind, args []string) (Command, error) {
	if len(args) != 0 {
		return Command{}, fmt.Errorf("%w: unexpected arguments %v", ErrUsage, args)
	}

	return Command{Kind: k}, nil
}

// SaveFunc persists the equalizer record.
type SaveFunc func(preset.Settings) error

// Controller applies commands to an equalizer. Every change is persisted
// through the save function.
type Controller struct {
	eq   *eq.Equalizer
	save SaveFunc
	out  io.Writer
	log  logrus.FieldLogger

	quitOnce sync.Once
	quit     chan struct{}
}

// New returns a Controller. save may be nil to disable persistence.
func New(e *eq.Equalizer, save SaveFunc, out io.Writer, log logrus.FieldLogger) *Controller {
	if out == nil {
		out = io.Discard
	}

	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Controller{eq: e, save: save, out: out, log: log, quit: make(chan struct{})}
}

// Done is closed once a quit command has been executed.
func (c *Controller) Done() <-chan struct{} {
	return c.quit
}

// Execute applies cmd. It reports whether the session should end.
func (c *Controller) Execute(cmd Command) (quit bool, err error) {
	switch cmd.Kind {
	case Band:
		if cmd.Band < 0 || cmd.Band >= eq.NumBands {
			return false, fmt.Errorf("%w: band %d out of range", ErrUsage, cmd.Band)
		}

		c.eq.SetBandGain(cmd.Band, cmd.Gain)
	case On:
		c.eq.SetEnabled(true)
	case Off:
		c.eq.SetEnabled(false)
	case Reset:
		c.eq.Reset()
	case Preset:
		g, ok := preset.Lookup(cmd.Name)
		if !ok {
			return false, fmt.Errorf("%w: unknown preset %q", ErrUsage, cmd.Name)
		}

		c.eq.SetGains(g)
	case Save:
	case Show:
		return false, c.show()
	case Quit:
		c.quitOnce.Do(func() { close(c.quit) })

		return true, nil
	default:
		return false, fmt.Errorf("%w: kind %d", ErrUnknownCommand, cmd.Kind)
	}

	return false, c.persist()
}

func (c *Controller) persist() error {
	if c.save == nil {
		return nil
	}

	if err := c.save(preset.Capture(c.eq)); err != nil {
		return fmt.Errorf("control: save: %w", err)
	}

	return nil
}

func (c *Controller) show() error {
	state := "off"
	if c.eq.Enabled() {
		state = "on"
	}

	fmt.Fprintf(c.out, "equalizer %s\n", state)

	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "band\tlabel\ttype\tgain")

	for _, b := range eq.Bands() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%+.1f dB\n", b.Index, b.Label, b.Topology, c.eq.BandGain(b.Index))
	}

	return tw.Flush()
}

// Run reads commands from r until quit, EOF or ctx is done. Errors from
// single commands are reported to out and do not end the session.
func (c *Controller) Run(ctx context.Context, r io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)

		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}

		scanErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("control: read: %w", err)
					}
				default:
				}

				return nil
			}

			if strings.TrimSpace(line) == "" {
				continue
			}

			cmd, err := Parse(line)
			if err != nil {
				fmt.Fprintln(c.out, err)
				continue
			}

			quit, err := c.Execute(cmd)
			if err != nil {
				c.log.WithError(err).Warn("command failed")
				fmt.Fprintln(c.out, err)
			}

			if quit {
				return nil
			}
		}
	}
}
