package main

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mypihq/webtools/internal/config"
	"github.com/mypihq/webtools/internal/logger"
	"github.com/mypihq/webtools/internal/mcp"
	"github.com/mypihq/webtools/internal/searxng"
	"github.com/mypihq/webtools/internal/server"
	"github.com/mypihq/webtools/internal/tools/web"
	"github.com/mypihq/webtools/internal/webfetch"
)

// httpListenAddr resolves the HTTP listen address from the [server] config
// section, falling back to the default when the section is blank.
func httpListenAddr(cfg config.Config) string {
	if addr := strings.TrimSpace(cfg.Server.Addr); addr != "" {
		return addr
	}
	return config.DefaultHTTPAddr
}

func newServeCommand() *cobra.Command {
	var configPath string
	var useHTTP bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tools over MCP (stdio by default, HTTP with --http)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(configPath)
			logger.Init(cfg.Log.Level, cfg.Log.Format)
			log := logger.L

			var search *searxng.Client
			if cfg.SearXNG.Configured() {
				search = searxng.NewClient(log, cfg.SearXNG)
			} else {
				log.Info("searxng not configured, web_search tool disabled")
			}

			pipeline := webfetch.NewPipeline(log, webfetch.NewFetcher(log))
			executor := web.NewExecutor(log, search, pipeline)
			gateway := mcp.NewToolGateway(log, executor)
			srv := server.New(log, gateway)

			if useHTTP {
				return srv.RunHTTP(httpListenAddr(cfg))
			}
			log.Info("serving MCP on stdio", slog.String("server", "mypi-webtools"))
			return srv.RunStdio(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file path (default: $PI_CODING_AGENT_DIR/mypi.toml or ~/.pi/agent/mypi.toml)")
	cmd.Flags().BoolVar(&useHTTP, "http", false, "serve MCP over HTTP on [server] addr instead of stdio")
	return cmd
}
