package clipboard

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	sysclipboard "github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
	"golang.org/x/term"
)

// Config selects the strategies and the terminal they talk to.
type Config struct {
	Native        bool
	StagedCommand bool
	OSC52         bool
	Prompt        bool

	Stdin  io.Reader
	Stdout io.Writer
}

// Strategies returns the enabled strategies in their fixed order.
func Strategies(cfg Config) []Strategy {
	var out []Strategy

	if cfg.Native {
		out = append(out, Native())
	}

	if cfg.StagedCommand {
		out = append(out, StagedCommand(CommandConfig{}))
	}

	if cfg.OSC52 {
		out = append(out, OSC52(TerminalConfig{Out: cfg.Stdout}))
	}

	if cfg.Prompt {
		out = append(out, Prompt(PromptConfig{In: cfg.Stdin, Out: cfg.Stdout}))
	}

	return out
}

// Native writes through the platform clipboard library.
func Native() Strategy {
	return Strategy{
		Name:      "native",
		Available: func() bool { return !sysclipboard.Unsupported },
		Copy: func(_ context.Context, text string) error {
			return sysclipboard.WriteAll(text)
		},
	}
}

// Runner executes name with args, feeding stdin.
type Runner func(ctx context.Context, name string, args []string, stdin io.Reader) error

// CommandConfig parameterises StagedCommand. Zero fields use the host's values.
type CommandConfig struct {
	GOOS     string
	Getenv   func(string) string
	LookPath func(string) (string, error)
	Run      Runner
	TempDir  string
}

type copyCommand struct {
	name string
	args []string
}

// StagedCommand writes the text to a hidden temporary file and feeds that file
// to the platform copy command. The file is removed before Copy returns.
func StagedCommand(cfg CommandConfig) Strategy {
	cfg = cfg.withDefaults()

	return Strategy{
		Name: "staged-command",
		Available: func() bool {
			_, ok := cfg.command()

			return ok
		},
		Copy: func(ctx context.Context, text string) error {
			cmd, ok := cfg.command()
			if !ok {
				return errUnavailable
			}

			return cfg.stageAndRun(ctx, cmd, text)
		},
	}
}

func (c CommandConfig) withDefaults() CommandConfig {
	if c.GOOS == "" {
		c.GOOS = runtime.GOOS
	}

	if c.Getenv == nil {
		c.Getenv = os.Getenv
	}

	if c.LookPath == nil {
		c.LookPath = exec.LookPath
	}

	if c.Run == nil {
		c.Run = runCommand
	}

	return c
}

// command picks the first installed copy command for the platform.
func (c CommandConfig) command() (copyCommand, bool) {
	for _, candidate := range c.candidates() {
		if _, err := c.LookPath(candidate.name); err == nil {
			return candidate, true
		}
	}

	return copyCommand{}, false
}

func (c CommandConfig) candidates() []copyCommand {
	if c.isTermux() {
		return []copyCommand{{name: "termux-clipboard-set"}}
	}

	switch c.GOOS {
	case "darwin":
		return []copyCommand{{name: "pbcopy"}}
	case "windows":
		return []copyCommand{{name: "clip"}}
	}

	var out []copyCommand
	if c.Getenv("WAYLAND_DISPLAY") != "" {
		out = append(out, copyCommand{name: "wl-copy"})
	}

	return append(out,
		copyCommand{name: "xclip", args: []string{"-selection", "clipboard"}},
		copyCommand{name: "xsel", args: []string{"--clipboard", "--input"}},
	)
}

func (c CommandConfig) isTermux() bool {
	return c.GOOS == "android" ||
		c.Getenv("TERMUX_VERSION") != "" ||
		strings.Contains(c.Getenv("PREFIX"), "com.termux")
}

func (c CommandConfig) stageAndRun(ctx context.Context, cmd copyCommand, text string) error {
	f, err := os.CreateTemp(c.TempDir, ".linkclean-clip-*")
	if err != nil {
		return fmt.Errorf("stage clipboard text: %w", err)
	}

	path := f.Name()
	defer func() { _ = os.Remove(path) }()

	if _, err := f.WriteString(text); err != nil {
		_ = f.Close()

		return fmt.Errorf("stage clipboard text: %w", err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()

		return fmt.Errorf("rewind staged text: %w", err)
	}

	defer func() { _ = f.Close() }()

	if err := c.Run(ctx, cmd.name, cmd.args, f); err != nil {
		return fmt.Errorf("run %s: %w", cmd.name, err)
	}

	return nil
}

func runCommand(ctx context.Context, name string, args []string, stdin io.Reader) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin

	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}

	return nil
}

// TerminalConfig parameterises OSC52.
type TerminalConfig struct {
	Out        io.Writer
	IsTerminal func() bool
	Getenv     func(string) string
}

// OSC52 asks the terminal emulator to set the clipboard with an OSC 52 escape
// sequence. It works over SSH as long as the terminal supports it.
func OSC52(cfg TerminalConfig) Strategy {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}

	if cfg.Getenv == nil {
		cfg.Getenv = os.Getenv
	}

	if cfg.IsTerminal == nil {
		cfg.IsTerminal = func() bool {
			f, ok := cfg.Out.(*os.File)

			return ok && term.IsTerminal(int(f.Fd()))
		}
	}

	return Strategy{
		Name:      "osc52",
		Available: cfg.IsTerminal,
		Copy: func(_ context.Context, text string) error {
			seq := osc52.New(text)

			switch {
			case cfg.Getenv("TMUX") != "":
				seq = seq.Tmux()
			case strings.HasPrefix(cfg.Getenv("TERM"), "screen"):
				seq = seq.Screen()
			}

			_, err := seq.WriteTo(cfg.Out)

			return err
		},
	}
}

var errPromptCanceled = errors.New("prompt canceled")

// PromptConfig parameterises Prompt.
type PromptConfig struct {
	In   io.Reader
	Out  io.Writer
	GOOS string
}

// Prompt shows the text with the copy shortcut and waits for confirmation.
// An answer of "n", "no" or end of input counts as a cancel.
func Prompt(cfg PromptConfig) Strategy {
	if cfg.In == nil {
		cfg.In = os.Stdin
	}

	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}

	if cfg.GOOS == "" {
		cfg.GOOS = runtime.GOOS
	}

	shortcut := "Ctrl+Shift+C"
	if cfg.GOOS == "darwin" {
		shortcut = "Cmd+C"
	}

	reader := bufio.NewReader(cfg.In)

	return Strategy{
		Name:      "prompt",
		Available: func() bool { return true },
		Copy: func(_ context.Context, text string) error {
			_, _ = fmt.Fprintf(cfg.Out, "Copy this link with %s:\n\n  %s\n\nPress Enter when done (n to cancel): ", shortcut, text)

			answer, err := reader.ReadString('\n')
			if err != nil && answer == "" {
				return errPromptCanceled
			}

			switch strings.ToLower(strings.TrimSpace(answer)) {
			case "n", "no":
				return errPromptCanceled
			}

			return nil
		},
	}
}
