package config

type Config struct {
	Port           string
	Environment    string
	LogLevel       string
	DefaultLocale  string
	JWTSecret      string
	RedisURL       string
	RedisChannel   string
	AllowedOrigins []string
	RateLimit      string
	RulesFile      string
}

// reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// flags for the resolve CLI
type ResolveFlags struct {
	Locale    string
	RulesFile string
	Plain     bool
	JSON      bool
	Messages  []string
}

// flags for the watch TUI
type WatchFlags struct {
	Endpoint string
	Token    string
	Channel  string
	Locale   string
}
