package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pddkit/pddserve/internal/clog"
	"github.com/pddkit/pddserve/internal/config"
	"github.com/pddkit/pddserve/internal/server"
	"github.com/pddkit/pddserve/internal/term"
	"github.com/pddkit/pddserve/internal/version"
)

// shutdownTimeout bounds how long in-flight requests get after a signal.
const shutdownTimeout = 30 * time.Second

var (
	serveHost string
	servePort int
	serveRoot string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the pddserve HTTP server in the foreground.

The server listens on the configured host and port (HOST/PORT or
--host/--port) and runs pdd with the server root as working directory.
It stops gracefully on SIGINT or SIGTERM, giving in-flight requests up to
30 seconds to finish.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "address to bind (overrides config and HOST)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (overrides config and PORT)")
	serveCmd.Flags().StringVar(&serveRoot, "root", "", "server root directory")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(config.Overrides{Host: serveHost, Port: servePort, Root: serveRoot}, true)
	if err != nil {
		return err
	}
	defer clog.Close()

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	clog.Info("PDD Backend API starting up (version %s)", version.Version)
	clog.Info("server root: %s", cfg.Server.Root)
	clog.Info("pdd executable: %s (timeout %ds)", a.runner.Executable(), a.runner.TimeoutSeconds())
	if name, ok := a.runner.ProviderKey(); ok {
		clog.Info("LLM provider key: %s", name)
	} else {
		clog.Warn("no LLM provider key in environment; pdd commands that call a model will fail")
	}

	srv := server.NewServer(cfg.Server, a.service, a.files)
	if err := srv.Start(); err != nil {
		return err
	}
	term.Printf("pddserve listening on http://%s\n", srv.ListenAddr())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Wait)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	clog.Info("PDD Backend API shut down")
	return nil
}
