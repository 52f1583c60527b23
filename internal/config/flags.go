package config

import (
	"flag"
	"io"
	"os"
)

// parses CLI flags for the resolve command
func ParseResolveFlags(args []string, output io.Writer) (ResolveFlags, error) {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	fs.SetOutput(output)

	locale := fs.String("locale", envOr("DEFAULT_LOCALE", defaultLocale), "locale used for messages")
	rulesFile := fs.String("rules", os.Getenv("RULES_FILE"), "YAML rule file replacing the built-in table")
	plain := fs.Bool("plain", false, "print without colors")
	jsonOut := fs.Bool("json", false, "print one JSON object per message instead of styled lines")

	if err := fs.Parse(args); err != nil {
		return ResolveFlags{}, err
	}

	return ResolveFlags{
		Locale:    *locale,
		RulesFile: *rulesFile,
		Plain:     *plain,
		JSON:      *jsonOut,
		Messages:  fs.Args(),
	}, nil
}

// parses CLI flags for the watch command
func ParseWatchFlags(args []string, output io.Writer) (WatchFlags, error) {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(output)

	endpoint := fs.String("server", envOr("EVENTNOTIFY_API_ENDPOINT", defaultEndpoint), "server base url")
	token := fs.String("token", os.Getenv("EVENTNOTIFY_TOKEN"), "JWT; without one only broadcasts are received")
	channel := fs.String("channel", "", "channel to watch (defaults to the token subject)")
	locale := fs.String("locale", os.Getenv("DEFAULT_LOCALE"), "locale used when resolving errors")

	if err := fs.Parse(args); err != nil {
		return WatchFlags{}, err
	}

	return WatchFlags{
		Endpoint: *endpoint,
		Token:    *token,
		Channel:  *channel,
		Locale:   *locale,
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
