package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/kong/mcp-konnect/config"
	"github.com/kong/mcp-konnect/internal/analytics"
	"github.com/kong/mcp-konnect/internal/inventory"
	"github.com/kong/mcp-konnect/internal/konnect"
	"github.com/kong/mcp-konnect/internal/metrics"
	"github.com/kong/mcp-konnect/internal/server"
)

var (
	// Set by LDFLAGS
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	defaultListenAddr  = "0.0.0.0:8010"
	defaultMetricsAddr = ""

	transportStdio = "stdio"
	transportHTTP  = "http"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	verboseFlag := flag.Bool("verbose", false, "enable verbose (debug) logging")
	transportFlag := flag.String("transport", transportStdio, "MCP transport (stdio, http)")
	listenAddrFlag := flag.String("listen-addr", defaultListenAddr, "HTTP server listen address (http transport only)")
	metricsAddrFlag := flag.String("metrics-addr", defaultMetricsAddr, "Address to listen on for prometheus metrics (disabled when empty)")
	regionFlag := flag.String("region", "", "Konnect region (us, eu, au, me, in) (or set KONNECT_REGION env var)")
	baseURLFlag := flag.String("base-url", "", "Konnect API base URL, overrides the region (or set KONNECT_BASE_URL env var)")
	timeoutFlag := flag.Duration("request-timeout", 30*time.Second, "Timeout of a single Konnect API request")
	flag.Parse()

	// A missing .env file is fine, the environment may already be set.
	_ = godotenv.Load()

	log := newLogger(*verboseFlag)

	metrics.BuildInfo.WithLabelValues(version, commit, date).Set(1)

	region := *regionFlag
	if region == "" {
		region = os.Getenv("KONNECT_REGION")
	}
	regionConfig, err := config.RegionConfigForRegion(region)
	if err != nil {
		return fmt.Errorf("failed to resolve region: %w", err)
	}
	baseURL := regionConfig.BaseURL
	if *baseURLFlag != "" {
		baseURL = *baseURLFlag
	}

	var allowedTokens []string
	if tokensEnv := os.Getenv("MCP_ALLOWED_TOKENS"); tokensEnv != "" {
		for token := range strings.SplitSeq(tokensEnv, ",") {
			token = strings.TrimSpace(token)
			if token != "" {
				allowedTokens = append(allowedTokens, token)
			}
		}
	}

	clock := clockwork.NewRealClock()

	client, err := konnect.NewClient(konnect.ClientConfig{
		Logger:     log,
		BaseURL:    baseURL,
		APIKey:     os.Getenv("KONNECT_ACCESS_TOKEN"),
		UserAgent:  "mcp-konnect/" + version,
		HTTPClient: &http.Client{Timeout: *timeoutFlag},
		Clock:      clock,
	})
	if err != nil {
		return fmt.Errorf("failed to create konnect client: %w", err)
	}

	engine, err := analytics.NewEngine(analytics.EngineConfig{
		Logger:   log,
		Executor: client,
	})
	if err != nil {
		return fmt.Errorf("failed to create analytics engine: %w", err)
	}

	inv, err := inventory.New(inventory.Config{
		Logger: log,
		Lister: client,
	})
	if err != nil {
		return fmt.Errorf("failed to create inventory: %w", err)
	}

	srv, err := server.New(server.Config{
		Logger:        log,
		Clock:         clock,
		Analytics:     engine,
		Inventory:     inv,
		Version:       version,
		ListenAddr:    *listenAddrFlag,
		AllowedTokens: allowedTokens,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	log.Info("server: starting",
		"version", version,
		"transport", *transportFlag,
		"region", regionConfig.Region,
		"baseURL", baseURL,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	if *metricsAddrFlag != "" {
		listener, err := net.Listen("tcp", *metricsAddrFlag)
		if err != nil {
			return fmt.Errorf("failed to start prometheus metrics server listener: %w", err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		log.Info("prometheus metrics server listening", "address", listener.Addr().String())

		g.Go(func() error {
			if err := metricsServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			return metricsServer.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		// Returning ends the process, including when the stdio client disconnects.
		defer cancel()
		switch *transportFlag {
		case transportStdio:
			return srv.RunStdio(ctx)
		case transportHTTP:
			return srv.RunHTTP(ctx)
		default:
			return fmt.Errorf("unsupported transport %q (expected %s or %s)", *transportFlag, transportStdio, transportHTTP)
		}
	})

	return g.Wait()
}

// newLogger writes to stderr since stdout carries the stdio transport.
func newLogger(verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: logLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(formatRFC3339Millis(a.Value.Time()))
			}
			if s, ok := a.Value.Any().(string); ok && s == "" {
				return slog.Attr{}
			}
			return a
		},
	}))
}

func formatRFC3339Millis(t time.Time) string {
	t = t.UTC()
	base := t.Format("2006-01-02T15:04:05")
	ms := t.Nanosecond() / 1_000_000
	return fmt.Sprintf("%s.%03dZ", base, ms)
}
