package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

// daemonConfig is the mudra.yaml daemon configuration. Everything has a
// sensible default; the file is optional.
type daemonConfig struct {
	Addr        string `yaml:"addr"`
	DBPath      string `yaml:"db_path"`
	LogFile     string `yaml:"log_file"`
	StaticDir   string `yaml:"static_dir"`
	Development bool   `yaml:"development"`
}

func main() {
	// A .env next to the binary may carry MUDRA_* overrides; absence is fine.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to mudra.yaml")
	addr := flag.String("addr", "", "listen address (overrides config)")
	withTray := flag.Bool("tray", false, "run with the system tray")
	flag.Parse()

	cfg, err := loadDaemonConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	logger := logging.New(cfg.Development, cfg.LogFile)
	defer logger.Sync()

	dbPath := cfg.DBPath
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			logger.Fatal("failed to get home directory", zap.Error(err))
		}
		dataDir := filepath.Join(homeDir, ".mudra")
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			logger.Fatal("failed to create data directory", zap.Error(err))
		}
		dbPath = filepath.Join(dataDir, "mudra.db")
	}

	st, err := store.New(dbPath)
	if err != nil {
		logger.Fatal("failed to initialize store", zap.Error(err))
	}
	defer st.Close()

	a := app.New(app.Config{Store: st, Logger: logger})
	if err := a.Start(); err != nil {
		logger.Fatal("failed to start gesture engine", zap.Error(err))
	}
	defer a.Stop()

	srv := server.New(server.Config{
		StaticDir: cfg.StaticDir,
		Store:     st,
		Engine:    a,
		Touch:     a.TouchHandler(),
		Gestures:  a.GestureStream(),
		Logger:    logger,
	})

	if *withTray {
		runWithTray(a, srv, cfg.Addr, logger)
		return
	}

	if err := srv.ListenAndServe(cfg.Addr); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

// runWithTray serves HTTP in the background and blocks on the system tray.
func runWithTray(a *app.App, srv *server.Server, addr string, logger *zap.Logger) {
	t := tray.New()
	t.OnToggle(a.SetEnabled)
	t.OnQuit(func() {
		a.Stop()
	})

	// The callback fires from the frame path and gesture timer goroutines.
	var count atomic.Int64
	a.OnGesture(func(e gesture.Event) {
		t.SetLastGesture(string(e.Kind))
		t.SetGestureCount(int(count.Add(1)))
	})

	go func() {
		if err := srv.ListenAndServe(addr); err != nil {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	t.Run()
}

// loadDaemonConfig reads mudra.yaml from the given path, falling back to
// ./mudra.yaml, then to defaults with environment overrides applied.
func loadDaemonConfig(path string) (daemonConfig, error) {
	cfg := daemonConfig{
		Addr: ":8080",
	}

	if path == "" {
		if _, err := os.Stat("mudra.yaml"); err == nil {
			path = "mudra.yaml"
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("invalid yaml in %s: %w", path, err)
		}
	}

	if v := os.Getenv("MUDRA_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("MUDRA_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("MUDRA_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if os.Getenv("MUDRA_DEV") == "1" {
		cfg.Development = true
	}

	return cfg, nil
}
