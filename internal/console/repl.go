package console

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/mattn/go-isatty"
)

// DefaultPrompt is shown before each interactive command.
const DefaultPrompt = "etable> "

// Run feeds commands from in to m until a command returns StatusExit, in is
// exhausted, or ctx is cancelled. When in is a terminal the session uses an
// interactive prompt with completion and history; otherwise lines are read
// as they come.
func Run(ctx context.Context, m *Manager, in io.Reader, promptPrefix string) error {
	if promptPrefix == "" {
		promptPrefix = DefaultPrompt
	}
	m.Intro()

	if f, ok := in.(*os.File); ok && isTerminal(f) {
		runPrompt(ctx, m, promptPrefix)
		return nil
	}
	return runLines(ctx, m, in)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// runLines executes one command per line of in.
func runLines(ctx context.Context, m *Manager, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	errs := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errs <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errs:
					return err
				default:
					return nil
				}
			}
			if m.Execute(line) == StatusExit {
				return nil
			}
		}
	}
}

// runPrompt drives m with go-prompt on the controlling terminal.
func runPrompt(ctx context.Context, m *Manager, promptPrefix string) {
	exited := false

	executor := func(line string) {
		if m.Execute(line) == StatusExit {
			exited = true
		}
	}
	exitChecker := func(_ string, breakline bool) bool {
		return breakline && (exited || ctx.Err() != nil)
	}

	p := prompt.New(
		executor,
		completer,
		prompt.OptionTitle("etable"),
		prompt.OptionPrefix(promptPrefix),
		prompt.OptionSetExitCheckerOnInput(exitChecker),
	)
	p.Run()
}

// completer suggests command names for the first word of the line.
func completer(d prompt.Document) []prompt.Suggest {
	if strings.Contains(d.TextBeforeCursor(), " ") {
		return nil
	}
	suggestions := make([]prompt.Suggest, 0, len(commands))
	for _, c := range commands {
		suggestions = append(suggestions, prompt.Suggest{Text: c.name, Description: c.description})
	}
	return prompt.FilterHasPrefix(suggestions, d.GetWordBeforeCursor(), true)
}
