package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"

	"codeberg.org/eventnotify/server/internal/config"
	"codeberg.org/eventnotify/server/internal/i18n"
	"codeberg.org/eventnotify/server/internal/logger"
	"codeberg.org/eventnotify/server/internal/notifier"
	"codeberg.org/eventnotify/server/internal/resolver"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// one line of -json output
type resolved struct {
	Input          string `json:"input"`
	Message        string `json:"message"`
	SuggestRefresh bool   `json:"suggest_refresh"`
	Display        string `json:"display"`
}

// resolves each message argument, or each stdin line when there are none,
// and prints what a user would be shown
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags, err := config.ParseResolveFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}

		return 2
	}

	res, err := loadResolver(flags)
	if err != nil {
		fmt.Fprintln(stderr, err) //nolint:errcheck
		return 1
	}

	var (
		sink     notifier.Sink
		recorder *notifier.Recorder
		encoder  *json.Encoder
	)

	if flags.JSON {
		recorder = &notifier.Recorder{}
		encoder = json.NewEncoder(stdout)
		sink = recorder
	} else {
		sink = notifier.NewTerminalSink(stdout, flags.Plain || !isTerminal(stdout))
	}

	reporter := notifier.NewReporter(res, sink)

	report := func(raw string) error {
		// terminal and recorder sinks never fail
		result, _ := reporter.ReportError(raw)

		if encoder == nil {
			return nil
		}

		entries := recorder.Entries()

		return encoder.Encode(resolved{
			Input:          raw,
			Message:        result.Message,
			SuggestRefresh: result.SuggestRefresh,
			Display:        entries[len(entries)-1].Message,
		})
	}

	if len(flags.Messages) > 0 {
		for _, msg := range flags.Messages {
			if err := report(msg); err != nil {
				logger.ErrorErr(err, "failed to write output")
				return 1
			}
		}

		return 0
	}

	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		if err := report(strings.TrimRight(scanner.Text(), "\r")); err != nil {
			logger.ErrorErr(err, "failed to write output")
			return 1
		}
	}

	if err := scanner.Err(); err != nil {
		logger.ErrorErr(err, "failed to read stdin")
		return 1
	}

	return 0
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

func loadResolver(flags config.ResolveFlags) (*resolver.Resolver, error) {
	catalog, err := i18n.LoadEmbedded()
	if err != nil {
		return nil, fmt.Errorf("failed to load locales: %w", err)
	}

	var rulesDoc []byte
	if flags.RulesFile != "" {
		rulesDoc, err = os.ReadFile(flags.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read rules file: %w", err)
		}
	}

	registry, err := resolver.NewRegistry(catalog, flags.Locale, rulesDoc)
	if err != nil {
		return nil, err
	}

	return registry.Default(), nil
}
