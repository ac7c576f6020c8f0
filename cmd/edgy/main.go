package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/edgy/edgy/config"
	"github.com/edgy/edgy/pkg/api"
	"github.com/edgy/edgy/pkg/api/handlers"
	"github.com/edgy/edgy/pkg/engine"
	"github.com/edgy/edgy/pkg/logger"
	"github.com/edgy/edgy/pkg/loop"
	"github.com/edgy/edgy/pkg/mesh/memory"
	"github.com/edgy/edgy/pkg/metrics"
	"github.com/edgy/edgy/pkg/storage"
	"github.com/edgy/edgy/pkg/storage/badger"
	memstore "github.com/edgy/edgy/pkg/storage/memory"
	"github.com/edgy/edgy/pkg/storage/redis"
	"github.com/edgy/edgy/pkg/telemetry/tracing"
	"github.com/edgy/edgy/pkg/version"
)

var (
	configPath  = flag.String("config", "", "Path to configuration file")
	versionFlag = flag.Bool("version", false, "Print version information")
	helpFlag    = flag.Bool("help", false, "Print help information")
	analyzePath = flag.String("analyze", "", "Print the pure edge loops of a mesh file and exit")

	// CLI overrides
	appName    = flag.String("app-name", "", "Override app name")
	serverPort = flag.Int("port", 0, "Override server port")
	logLevel   = flag.String("log-level", "", "Override log level")
	debugMode  = flag.Bool("debug", false, "Enable debug mode")
)

func main() {
	flag.Parse()

	if *helpFlag {
		printHelp()
		os.Exit(0)
	}

	if *versionFlag {
		printVersion()
		os.Exit(0)
	}

	if *analyzePath != "" {
		if err := analyze(*analyzePath, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to analyze %s: %v\n", *analyzePath, err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	overrides := buildOverrides()

	cfg, err := config.Load(*configPath, overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration:\n%s\n", err)
		os.Exit(1)
	}

	if err := run(cfg, overrides); err != nil {
		fmt.Fprintf(os.Stderr, "edgy: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, overrides map[string]interface{}) error {
	logCfg := &logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	if cfg.App.Debug {
		logCfg.Level = logger.DebugLevel
	}
	log := logger.New(logCfg)
	logger.SetGlobal(log)
	defer log.Close()

	log.Info("Starting edgy",
		"build", version.Info(),
		"app", cfg.App.Name,
		"environment", cfg.App.Environment,
	)
	log.Debug("Configuration loaded", "config", cfg.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, tracing.Service{
		Name:        cfg.App.Name,
		Version:     version.Version,
		Environment: cfg.App.Environment,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		tctx, tcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer tcancel()
		if err := shutdownTracing(tctx); err != nil {
			log.Error("Error shutting down tracing", "error", err)
		}
	}()

	store, deps, err := openStorage(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing storage", "error", err)
		}
	}()

	metricsCfg := metrics.DefaultConfig()
	metricsCfg.Enabled = cfg.Metrics.Enabled
	metricsCfg.Port = cfg.Metrics.Port
	metricsCfg.Path = cfg.Metrics.Path
	metricsManager := metrics.NewManager(metricsCfg)

	if metricsManager.Enabled() {
		go func() {
			log.Info("Starting metrics server", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
			if err := metricsManager.StartServer(ctx, cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
				log.Error("Metrics server error", "error", err)
			}
		}()
	}

	eng, err := engine.New(cfg, store,
		engine.WithLogger(log),
		engine.WithMetrics(metricsManager),
		engine.WithStorageBackend(cfg.Storage.Type),
	)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	if err := eng.Start(ctx); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}

	if *configPath != "" {
		watchConfig(ctx, *configPath, overrides, cfg, eng, log)
	}

	httpServer := api.NewHTTPServer(cfg, log, &api.Handlers{
		Mesh:    handlers.NewMeshHandler(eng, log),
		Health:  handlers.NewHealthHandler(eng, deps),
		Metrics: metricsManager,
	})

	serverErrChan := make(chan error, 1)
	go func() {
		if err := httpServer.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	log.Info("edgy is running",
		"http_port", cfg.Server.Port,
		"metrics_port", cfg.Metrics.Port,
		"storage", cfg.Storage.Type,
	)

	var runErr error
	select {
	case sig := <-sigChan:
		log.Info("Received shutdown signal", "signal", sig)
	case runErr = <-serverErrChan:
		log.Error("HTTP server error", "error", runErr)
	}
	cancel()

	timeout := cfg.Server.HTTP.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down HTTP server", "error", err)
	}

	log.Info("Stopping engine")
	if err := eng.Stop(shutdownCtx); err != nil {
		log.Error("Error during engine shutdown", "error", err)
	}

	log.Info("edgy stopped gracefully")
	return runErr
}

// openStorage opens the configured backend. Backends that can be lost at
// runtime are returned as readiness dependencies.
func openStorage(ctx context.Context, cfg config.StorageConfig, log logger.Logger) (storage.Storage, map[string]handlers.Pinger, error) {
	switch cfg.Type {
	case "badger":
		store, err := badger.NewBadgerStorage(&badger.Config{
			Path:              cfg.Badger.Path,
			InMemory:          cfg.Badger.InMemory,
			SyncWrites:        cfg.Badger.SyncWrites,
			ValueLogFileSize:  cfg.Badger.ValueLogFileSize,
			NumVersionsToKeep: cfg.Badger.NumVersionsToKeep,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open badger storage: %w", err)
		}
		log.Info("Initialized Badger storage", "path", cfg.Badger.Path, "in_memory", cfg.Badger.InMemory)
		return store, nil, nil
	case "redis":
		redisCfg := redis.DefaultConfig()
		if cfg.Redis.Address != "" {
			redisCfg.Addr = cfg.Redis.Address
		}
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		if cfg.Redis.KeyPrefix != "" {
			redisCfg.KeyPrefix = cfg.Redis.KeyPrefix
		}
		if cfg.Redis.DialTimeout > 0 {
			redisCfg.DialTimeout = cfg.Redis.DialTimeout
		}
		store, err := redis.Open(ctx, redisCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("open redis storage: %w", err)
		}
		log.Info("Initialized Redis storage", "address", redisCfg.Addr, "prefix", redisCfg.KeyPrefix)
		return store, map[string]handlers.Pinger{"redis": store}, nil
	case "memory", "":
		log.Info("Initialized memory storage")
		return memstore.NewMemoryStorage(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

// watchConfig applies hot-reloadable settings whenever the config file
// changes.
func watchConfig(ctx context.Context, path string, overrides map[string]interface{}, cfg *config.Config, eng *engine.Engine, log logger.Logger) {
	watcher, err := config.NewWatcher(path, config.WithOverrides(overrides))
	if err != nil {
		log.Warn("Config hot reload disabled", "error", err)
		return
	}

	var mu sync.Mutex
	current := config.ExtractHotReloadable(cfg)
	watcher.OnChange(func(next *config.Config) {
		mu.Lock()
		defer mu.Unlock()

		hot := config.ExtractHotReloadable(next)
		if !hot.Changed(current) {
			return
		}
		if hot.LogLevel != current.LogLevel {
			log.SetLevel(logger.ParseLevel(hot.LogLevel))
			log.Info("Log level changed", "level", hot.LogLevel)
		}
		eng.ApplyHotReload(hot)
		current = hot
	})

	go func() {
		defer watcher.Stop()
		if err := watcher.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("Config watcher stopped", "error", err)
		}
	}()
}

type analysis struct {
	Mesh  string            `json:"mesh,omitempty"`
	Verts int               `json:"verts"`
	Edges int               `json:"edges"`
	Faces int               `json:"faces"`
	Loops []engine.LoopInfo `json:"loops"`
}

// analyze writes the pure edge loops of the mesh file at path as JSON.
func analyze(path string, w io.Writer) error {
	doc, err := memory.LoadDocument(path)
	if err != nil {
		return err
	}
	m, err := memory.New(doc)
	if err != nil {
		return err
	}

	loops := loop.PureEdgeLoops(m)
	out := analysis{
		Mesh:  doc.Name,
		Verts: m.NumVerts(),
		Edges: m.NumEdges(),
		Faces: m.NumFaces(),
		Loops: make([]engine.LoopInfo, len(loops)),
	}
	for i, l := range loops {
		out.Loops[i] = engine.LoopInfo{Verts: l.Vertices(), Edges: l.Edges(), Closed: l.IsClosed()}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func buildOverrides() map[string]interface{} {
	overrides := make(map[string]interface{})

	if *appName != "" {
		overrides["app.name"] = *appName
	}
	if *serverPort != 0 {
		overrides["server.port"] = *serverPort
	}
	if *logLevel != "" {
		overrides["log.level"] = *logLevel
	}
	if *debugMode {
		overrides["app.debug"] = true
	}

	return overrides
}

func printVersion() {
	fmt.Printf("edgy %s - edge loop analysis for polygon meshes\n", version.String())
	fmt.Printf("Version:    %s\n", version.Version)
	fmt.Printf("Build Time: %s\n", version.BuildTime)
	fmt.Printf("Git Commit: %s\n", version.GitCommit)
	fmt.Printf("Go Version: %s\n", version.GoVersion)
}

func printHelp() {
	fmt.Printf("edgy - edge loop analysis for polygon meshes\n\n")
	fmt.Printf("Usage: edgy [options]\n\n")
	fmt.Printf("Options:\n")
	flag.PrintDefaults()
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  edgy                                      # Run with default config\n")
	fmt.Printf("  edgy -config config.yaml                  # Use specific config file\n")
	fmt.Printf("  edgy -port 9090 -log-level debug          # Override specific options\n")
	fmt.Printf("  edgy -analyze grid.yaml                   # Print the pure loops of a mesh\n")
	fmt.Printf("  edgy -version                             # Print version info\n")
}
