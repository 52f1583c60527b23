package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"

	"codeberg.org/eventnotify/server/internal/config"
	"codeberg.org/eventnotify/server/internal/tui"
)

func main() {
	flags, err := config.ParseWatchFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}

		os.Exit(2)
	}

	if !term.IsTerminal(os.Stdin.Fd()) || !term.IsTerminal(os.Stdout.Fd()) {
		fmt.Fprintln(os.Stderr, "watch needs an interactive terminal") //nolint:errcheck
		os.Exit(1)
	}

	app, err := tui.NewApp(tui.Options{
		Endpoint: flags.Endpoint,
		Token:    flags.Token,
		Channel:  flags.Channel,
		Locale:   flags.Locale,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error starting watch: %v\n", err) //nolint:errcheck
		os.Exit(1)
	}

	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("error running watch: %v\n", err)
		os.Exit(1)
	}
}
