package main

import (
	"os"
	"path/filepath"

	"github.com/MrEthical07/swclient"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries state shared by every subcommand of one invocation.
type app struct {
	configPath string
	apiURL     string
	store      string
	sessionDir string
	redisAddr  string
	logLevel   string

	cfg    swclient.Config
	logger *zap.Logger
	client *swclient.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "swctl",
		Short: "Command-line client for the SmartWork 360 API",
		Long: `swctl talks to a SmartWork 360 backend through the same client library
the web frontend uses. The session survives between invocations in the
file store (default) or in Redis.

Examples:
  swctl login --email manager@smartwork.io --password password123
  swctl tasks list
  swctl overview`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file")
	flags.StringVar(&a.apiURL, "api-url", "", "backend base URL (overrides config and SMARTWORK_API_URL)")
	flags.StringVar(&a.store, "store", "", "session store: memory, file or redis")
	flags.StringVar(&a.sessionDir, "session-dir", "", "directory for the file session store")
	flags.StringVar(&a.redisAddr, "redis-addr", "", "Redis address for the redis session store")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.pingCmd(),
		a.tasksCmd(),
		a.notificationsCmd(),
		a.overviewCmd(),
		a.metricsCmd(),
		a.mockServerCmd(),
	)
	return root
}

// setup resolves configuration in order: defaults, YAML, environment, flags.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := swclient.LoadConfig(a.configPath)
	if err != nil {
		return err
	}

	if a.apiURL != "" {
		cfg.BaseURL = a.apiURL
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.redisAddr != "" {
		cfg.Session.RedisAddr = a.redisAddr
		if a.store == "" {
			a.store = swclient.BackendRedis
		}
	}
	if a.sessionDir != "" {
		cfg.Session.Dir = a.sessionDir
		if a.store == "" {
			a.store = swclient.BackendFile
		}
	}
	if a.store != "" {
		cfg.Session.Backend = a.store
	}

	// An in-memory session would be lost when the process exits.
	if !cmd.Flags().Changed("store") && cfg.Session.Backend == swclient.BackendMemory {
		cfg.Session.Backend = swclient.BackendFile
	}
	if cfg.Session.Backend == swclient.BackendFile && cfg.Session.Dir == "" {
		dir, err := defaultSessionDir()
		if err != nil {
			return err
		}
		cfg.Session.Dir = dir
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := swclient.NewLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// api builds the client on first use so commands that never reach the
// backend do not open a session store.
func (a *app) api() (*swclient.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	c, err := swclient.New().
		WithConfig(a.cfg).
		WithLogger(a.logger).
		Build()
	if err != nil {
		return nil, err
	}
	a.client = c
	return c, nil
}

func (a *app) close() error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.client == nil {
		return nil
	}
	err := a.client.Close()
	a.client = nil
	return err
}

func defaultSessionDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "swctl"), nil
}
