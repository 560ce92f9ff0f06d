package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/worldmonitor/gatewayd/pkg/config"
	"github.com/worldmonitor/gatewayd/pkg/dispatch"
	"github.com/worldmonitor/gatewayd/pkg/gateway"
	"github.com/worldmonitor/gatewayd/pkg/logging"
	"github.com/worldmonitor/gatewayd/pkg/proxy"
	"github.com/worldmonitor/gatewayd/pkg/registry"
)

// shutdownTimeout is the maximum time to wait for graceful shutdown.
const shutdownTimeout = 10 * time.Second

var serveFlags struct {
	port         int
	remoteOrigin string
	resourceDir  string
	mode         string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway (foreground)",
	Long: `Start the loopback gateway and serve until interrupted.

Requests under /api/ are answered by local handler modules from
<resourceDir>/api when present, and passed through to the remote origin
otherwise. Local handler failures fall back to the remote origin.`,
	Example: `  # Start with defaults (port 46123)
  gatewayd serve

  # Custom port and resource directory
  gatewayd serve --port 3000 --resource-dir /opt/wm/resources

  # Point the pass-through at a staging origin
  gatewayd serve --remote-origin https://staging.worldmonitor.app`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&serveFlags.port, "port", "p", 0, "Loopback port to listen on")
	serveCmd.Flags().StringVar(&serveFlags.remoteOrigin, "remote-origin", "", "Cloud origin for pass-through and fallback")
	serveCmd.Flags().StringVar(&serveFlags.resourceDir, "resource-dir", "", "Directory containing the api/ handler folder")
	serveCmd.Flags().StringVar(&serveFlags.mode, "mode", "", "Operating mode label (desktop or dev)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.ParseFormat(cfg.LogFormat),
	})

	reg := registry.New(cfg.ResourceDir, registry.WithLogger(log.With("component", "registry")))
	cloud := proxy.New(cfg.RemoteOrigin, proxy.WithLogger(log.With("component", "proxy")))
	d := dispatch.New(cfg, reg, cloud, dispatch.WithLogger(log.With("component", "dispatch")))
	srv := gateway.NewServer(cfg, d, gateway.WithLogger(log.With("component", "gateway")))

	if err := srv.Start(); err != nil {
		return err
	}
	fmt.Printf("gatewayd listening on http://%s (mode: %s, remote: %s)\n",
		srv.Addr(), cfg.Mode, cfg.RemoteOrigin)

	// Block until shutdown signal.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Stop(ctx)
}

// loadConfig assembles the effective config, applying any set serve flags
// on top of env/file/defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("port") {
		cfg.Port = serveFlags.port
		cfg.Sources["port"] = config.SourceFlag
	}
	if cmd.Flags().Changed("remote-origin") {
		cfg.RemoteOrigin = serveFlags.remoteOrigin
		cfg.Sources["remoteOrigin"] = config.SourceFlag
	}
	if cmd.Flags().Changed("resource-dir") {
		cfg.ResourceDir = serveFlags.resourceDir
		cfg.Sources["resourceDir"] = config.SourceFlag
	}
	if cmd.Flags().Changed("mode") {
		cfg.Mode = serveFlags.mode
		cfg.Sources["mode"] = config.SourceFlag
	}

	if result := config.Validate(cfg); !result.IsValid() {
		return nil, fmt.Errorf("invalid configuration:\n%s", result.Error())
	}
	return cfg, nil
}
