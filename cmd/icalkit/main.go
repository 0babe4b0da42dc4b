package main

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"icalkit/internal/config"
	appLog "icalkit/internal/log"
)

const version = "0.1.0"

// runState is what the Before hook resolves for every command.
type runState struct {
	id   string
	conf *config.Config
}

func main() {
	// .env is optional.
	_ = godotenv.Load()

	app := newApp()
	if err := app.Run(os.Args); err != nil {
		appLog.Error("icalkit failed", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	state := &runState{}
	return &cli.App{
		Name:    "icalkit",
		Usage:   "Validate, format and expand iCalendar files.",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to the YAML config file (created on first run)",
				Value:   defaultConfigPath(),
				EnvVars: []string{"ICALKIT_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error (overrides config)",
				EnvVars: []string{"ICALKIT_LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			return state.setup(c)
		},
		After: func(c *cli.Context) error {
			if state.id != "" {
				appLog.Debug("icalkit exiting", "run_id", state.id)
			}
			return nil
		},
		Commands: []*cli.Command{
			validateCommand(state),
			fmtCommand(state),
			expandCommand(state),
			importCommand(state),
			convertCommand(state),
		},
	}
}

// setup loads the config and applies the effective log level.
func (s *runState) setup(c *cli.Context) error {
	s.id = uuid.NewString()

	conf, err := config.Load(c.String("config"))
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", c.String("config"))
		return err
	}
	s.conf = conf

	levelName := conf.LogLevel
	if c.IsSet("log-level") {
		levelName = c.String("log-level")
	}
	level, err := appLog.ParseLevel(levelName)
	if err != nil {
		return err
	}
	appLog.SetLevel(level)

	appLog.Debug("effective config",
		"run_id", s.id,
		"config_path", c.String("config"),
		"timezone", conf.Timezone,
		"max_instances", conf.Expand.MaxInstances,
		"window_days", conf.Expand.WindowDays,
		"engine", conf.Expand.Engine,
		"output", conf.Output,
	)
	return nil
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "icalkit.yaml"
	}
	return filepath.Join(dir, "icalkit", "config.yaml")
}
