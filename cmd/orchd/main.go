package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"orchd/internal/config"
	"orchd/internal/httpapi"
	"orchd/internal/ollama"
	"orchd/internal/orch"
	"orchd/internal/runtime"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	// Flags with environment variable defaults
	addr := flag.String("addr", envOr("ORCHD_ADDR", ":9090"), "HTTP listen address, e.g. :9090")
	configPath := flag.String("config", envOr("ORCHD_CONFIG", "orchd.yaml"), "Path to the service catalog file (yaml/json/toml)")
	dockerHost := flag.String("docker-host", envOr("ORCHD_DOCKER_HOST", ""), "Docker engine endpoint (empty = environment/default socket)")
	ollamaURL := flag.String("ollama-url", envOr("ORCHD_OLLAMA_URL", ""), "Ollama base URL for model lease reclamation (empty = disabled)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		lg := zerolog.New(os.Stderr)
		lg.Fatal().Err(err).Str("path", *configPath).Msg("failed to load config")
	}
	// Flags take precedence over the file
	if *dockerHost != "" {
		cfg.DockerHost = *dockerHost
	}
	if *ollamaURL != "" {
		cfg.OllamaURL = *ollamaURL
	}
	if cfg.Addr != "" && *addr == ":9090" && os.Getenv("ORCHD_ADDR") == "" {
		*addr = cfg.Addr
	}

	log := newLogger(cfg.LogLevel, cfg.LogFormat)

	rt, err := runtime.NewDockerRuntime(cfg.DockerHost, 30*time.Second)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to container engine")
	}
	defer rt.Close()

	var unloader orch.ModelUnloader
	if cfg.OllamaURL != "" {
		unloader = ollama.New(cfg.OllamaURL, 30*time.Second, 5*time.Second)
	}

	o := orch.NewWithConfig(orch.Config{
		Services:      toOrchSpecs(cfg.Services),
		Precedence:    cfg.Precedence,
		PinnedOn:      cfg.PinnedOn,
		AutoLifecycle: cfg.AutoLifecycle == nil || *cfg.AutoLifecycle,
		IdleTimeout:   time.Duration(cfg.IdleTimeoutSeconds) * time.Second,
		IdleInterval:  time.Duration(cfg.IdleCheckSeconds) * time.Second,
		WaitTimeout:   time.Duration(cfg.WaitTimeoutSeconds) * time.Second,
		PollInterval:  time.Duration(cfg.PollIntervalSeconds) * time.Second,
		Runtime:       rt,
		Unloader:      unloader,
		Logger:        log,
	})

	// Root context canceled on shutdown; stops the idle monitor and any
	// in-flight ensure work.
	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()
	go o.RunMonitor(rootCtx)

	httpapi.SetLogger(log)
	httpapi.SetCORS(cfg.CORSEnabled, cfg.CORSAllowedOrigins)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetBaseContext(rootCtx)
	mux := httpapi.NewMux(o)
	srv := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		log.Info().Str("addr", *addr).Int("services", len(cfg.Services)).Msg("orchd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancelRoot()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
}

// toOrchSpecs converts file specs to catalog specs, applying the
// idle-eligible-by-default rule.
func toOrchSpecs(specs []config.ServiceSpec) []orch.ServiceSpec {
	out := make([]orch.ServiceSpec, 0, len(specs))
	for _, s := range specs {
		out = append(out, orch.ServiceSpec{
			Name:         s.Name,
			DependsOn:    s.DependsOn,
			IdleEligible: s.IdleEligible == nil || *s.IdleEligible,
			ProbeURL:     s.ProbeURL,
			ProbeTimeout: time.Duration(s.ProbeTimeoutSeconds) * time.Second,
		})
	}
	return out
}

func newLogger(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	var w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	if format == "json" {
		return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
