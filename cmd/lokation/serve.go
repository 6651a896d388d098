package main

import (
	stderrors "errors"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/lokation/internal/config"
	"github.com/vango-dev/lokation/internal/errors"
	"github.com/vango-dev/lokation/pkg/location"
	"github.com/vango-dev/lokation/pkg/remote"
	"github.com/vango-dev/lokation/pkg/server"
)

type serveOptions struct {
	configPath    string
	addr          string
	forceFragment bool
	dev           bool
}

func serveCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the location bridge server",
		Long: `Start the HTTP server that serves the thin client and bridges each
browser tab's location over a WebSocket.

Configuration is read from --config, or from the nearest lokation.json,
lokation.toml or lokation.yaml. Without a file the defaults are used.

Examples:
  lokation serve
  lokation serve --addr=:3000 --force-fragment
  lokation serve --config=deploy/lokation.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := newServer(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			printBanner(cmd.OutOrStdout())
			info(cmd.OutOrStdout(), "listening on %s", srv.Config().Address)
			return srv.Run()
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to a configuration file")
	cmd.Flags().StringVarP(&opts.addr, "addr", "a", "", "Address to listen on (default from config)")
	cmd.Flags().BoolVar(&opts.forceFragment, "force-fragment", false, "Use fragment mode for every session")
	cmd.Flags().BoolVar(&opts.dev, "dev", false, "Disable thin client caching")

	return cmd
}

// loadConfig reads the configuration named by opts and applies flag
// overrides.
func loadConfig(opts serveOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = loadNearest()
	}
	if err != nil {
		return nil, err
	}

	if opts.addr != "" {
		cfg.Server.Address = opts.addr
	}
	if opts.forceFragment {
		cfg.Server.ForceFragment = true
	}
	if opts.dev {
		cfg.Server.DevMode = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadNearest() (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := config.FindProjectRoot(wd)
	if err != nil {
		if stderrors.Is(err, errors.New("E123")) {
			return config.New(), nil
		}
		return nil, err
	}
	return config.Load(root)
}

// newServer builds a Server whose sessions log every location change.
func newServer(opts serveOptions, logOut io.Writer) (*server.Server, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	sc, err := cfg.ServerConfig()
	if err != nil {
		return nil, err
	}
	handler, err := cfg.Log.Handler(logOut)
	if err != nil {
		return nil, err
	}
	logger := slog.New(handler)

	srv := server.New(sc)
	srv.SetLogger(logger)
	srv.OnSession(func(s *remote.Session, loc *location.Adapter) {
		logger.Info("location adapter attached", "session_id", s.ID, "mode", loc.Mode())
		loc.OnChange(func(path string) {
			logger.Info("location changed", "session_id", s.ID, "path", path)
		})
		loc.Listen()
	})
	return srv, nil
}
