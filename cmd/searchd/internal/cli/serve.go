package cli

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/searchbox/linesearchd/cmd/searchd/internal/api"
	"github.com/searchbox/linesearchd/cmd/searchd/internal/auth"
	"github.com/searchbox/linesearchd/cmd/searchd/internal/config"
	"github.com/searchbox/linesearchd/cmd/searchd/internal/core"
	"github.com/searchbox/linesearchd/cmd/searchd/internal/logger"
	"github.com/searchbox/linesearchd/cmd/searchd/internal/protocol"
	"github.com/searchbox/linesearchd/cmd/searchd/internal/search"
	"github.com/searchbox/linesearchd/cmd/searchd/internal/tlsprovider"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the search server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("file", "", "reference file to search")
	serveCmd.Flags().String("host", "0.0.0.0", "address to bind")
	serveCmd.Flags().Int("port", 44445, "port to bind")
	serveCmd.Flags().Bool("reread-on-query", false, "re-read the file from disk for every query")
	serveCmd.Flags().Bool("watch-file", false, "reload the in-memory cache when the file changes")
	serveCmd.Flags().Int("max-connections", 0, "cap on concurrent connections (0 = unbounded)")
	serveCmd.Flags().Int("health-port", 0, "HTTP port for /health, /ready and /stats (0 = disabled)")

	viper.BindPFlag("file.path", serveCmd.Flags().Lookup("file"))
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("search.reread_on_query", serveCmd.Flags().Lookup("reread-on-query"))
	viper.BindPFlag("search.watch_file", serveCmd.Flags().Lookup("watch-file"))
	viper.BindPFlag("server.max_connections", serveCmd.Flags().Lookup("max-connections"))
	viper.BindPFlag("server.health_port", serveCmd.Flags().Lookup("health-port"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger.Init(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting searchd",
		"file", cfg.File.Path,
		"psk_auth", cfg.Auth.PSKEnabled,
		"reread_on_query", cfg.Search.RereadOnQuery,
		"tls", cfg.TLS.Enabled)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	searcher, cached, err := search.New(cfg)
	if err != nil {
		logger.Fatal("Failed to load reference file", "path", cfg.File.Path, "error", err)
	}

	if cached != nil && cfg.Search.WatchFile {
		if err := search.Watch(ctx, cached); err != nil {
			logger.Fatal("Failed to watch reference file", "error", err)
		}
	}

	stats := &core.Stats{}

	var health *api.HealthServer
	if cfg.Server.HealthPort > 0 {
		health = api.NewHealthServer(fmt.Sprintf(":%d", cfg.Server.HealthPort), stats)
		health.Start()
	}

	gate := auth.NewGate(cfg.Auth.PSKEnabled, cfg.Auth.PSK)
	handler := protocol.NewHandler(searcher, gate, cfg.Server.ReadTimeout, stats)

	listener, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		logger.Fatal("Failed to bind", "addr", cfg.Addr(), "error", err)
	}

	if cfg.TLS.Enabled {
		factory := tlsprovider.NewFactory(cfg)
		provider := factory.Create()
		if err := factory.EnsureCertificate(ctx, provider); err != nil {
			logger.Fatal("Failed to ensure certificate", "error", err)
		}
		tlsConfig, err := factory.ServerConfig(ctx, provider)
		if err != nil {
			logger.Fatal("Failed to build TLS config", "error", err)
		}
		listener = tls.NewListener(listener, tlsConfig)
		logger.Info("TLS enabled")
	} else {
		logger.Warn("TLS is disabled - connections will not be encrypted")
	}

	server := &core.Server{
		Listener:          listener,
		ConnectionHandler: handler,
		MaxConnections:    cfg.Server.MaxConnections,
	}

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down...")
		server.Close()
		if health != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			health.Stop(shutdownCtx)
		}
	}()

	if health != nil {
		health.SetReady(true)
	}
	logger.Info("Server listening", "host", cfg.Server.Host, "port", cfg.Server.Port)

	if err := server.Serve(); err != nil {
		logger.Fatal("Server error", "error", err)
	}
	return nil
}
