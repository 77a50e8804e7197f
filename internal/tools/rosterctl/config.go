package rosterctl

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/kittclouds/roster/internal/store"
)

// Config holds rosterctl configuration.
type Config struct {
	DBPath string `env:"ROSTER_DB_PATH"  envDefault:"data/roster.db"`
	Key    string `env:"ROSTER_SLOT_KEY"`
	JSON   bool
	Watch  bool
	Limit  int

	Command string
	Args    []string
}

// Commands lists the accepted subcommands.
var Commands = []string{"list", "show", "move", "export", "import", "similar", "search"}

// ParseConfig reads the environment, then flags, then the subcommand.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{Key: store.DefaultKey}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the sqlite slot file (default: ROSTER_DB_PATH or data/roster.db)")
	fs.StringVar(&cfg.Key, "key", cfg.Key, "slot key holding the roster")
	fs.BoolVar(&cfg.JSON, "json", false, "output JSON")
	fs.BoolVar(&cfg.Watch, "watch", false, "with list: re-print whenever the slot file changes")
	fs.IntVar(&cfg.Limit, "limit", 3, "with similar: number of characters to show")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return Config{}, fmt.Errorf("command is required (%s)", strings.Join(Commands, ", "))
	}
	cfg.Command, cfg.Args = rest[0], rest[1:]
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	want := map[string]int{"show": 1, "move": 2, "import": 1, "similar": 1}
	switch cfg.Command {
	case "list", "export", "search":
	case "show", "move", "import", "similar":
		if len(cfg.Args) != want[cfg.Command] {
			return fmt.Errorf("%s takes %d argument(s), got %d", cfg.Command, want[cfg.Command], len(cfg.Args))
		}
	default:
		return fmt.Errorf("unknown command %q", cfg.Command)
	}
	if cfg.Watch && cfg.Command != "list" {
		return errors.New("-watch only applies to list")
	}
	if cfg.Limit <= 0 {
		return errors.New("-limit must be > 0")
	}
	if cfg.DBPath == "" {
		return errors.New("db path is required")
	}
	return nil
}
