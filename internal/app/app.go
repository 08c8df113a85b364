// Package app wires the Mudra gesture engine together: persisted
// configuration, touch capture, classification, haptics, telemetry and the
// WebSocket surfaces.
package app

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/haptic"
	"github.com/ayusman/mudra/internal/metrics"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/touch"
)

// Config holds configuration options for the application.
type Config struct {
	Store  *store.Store
	Logger *zap.Logger
}

// App is the main application that hosts the gesture engine for the
// surrounding business application.
type App struct {
	config     Config
	logger     *zap.Logger
	tracker    *metrics.Tracker
	haptics    *haptic.Controller
	classifier *gesture.Classifier
	binder     *touch.Binder
	touchWS    *server.TouchHandler
	gestureWS  *server.GestureStreamHandler

	mu        sync.RWMutex
	cfg       gesture.Config
	enabled   bool
	unbind    func()
	onGesture func(gesture.Event)
}

// New creates a new App instance with the given configuration.
//
// The persisted engine configuration is loaded from the store
// (load-on-init); if none was ever saved, the factory defaults apply.
func New(config Config) *App {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg := gesture.Default()
	if config.Store != nil {
		saved, err := config.Store.Settings().LoadConfig()
		switch {
		case err == nil:
			cfg = saved
			logger.Info("loaded saved engine configuration")
		case errors.Is(err, store.ErrNotFound):
			logger.Info("no saved configuration, using defaults")
		default:
			logger.Warn("failed to load saved configuration, using defaults", zap.Error(err))
		}
	}

	a := &App{
		config:  config,
		logger:  logger,
		tracker: metrics.NewTracker(),
		cfg:     cfg,
		enabled: true,
	}

	a.touchWS = server.NewTouchHandler(logger.Named("touch"))
	a.gestureWS = server.NewGestureStreamHandler(logger.Named("gestures"))

	// The touch surface doubles as the primary haptic driver: vibrate
	// commands travel back down the same WebSocket the frames came up.
	a.haptics = haptic.NewController(
		[]haptic.Driver{a.touchWS},
		a.tracker,
		logger.Named("haptic"),
	)

	a.classifier = gesture.NewClassifier(cfg, a.haptics, a.tracker, logger.Named("classifier"))
	a.classifier.OnGesture(a.handleGesture)

	a.binder = touch.NewBinder(
		a.classifier,
		time.Duration(cfg.ThrottleIntervalMs)*time.Millisecond,
		a.tracker,
		logger.Named("binder"),
	)

	a.applyConfig(cfg)
	return a
}

// Start binds the WebSocket touch surface to the classifier.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.unbind != nil {
		return nil
	}
	a.unbind = a.binder.Bind(a.touchWS)
	a.logger.Info("gesture engine started")
	return nil
}

// Stop releases the surface binding. The release is idempotent; all pending
// gesture timers are cancelled before Stop returns.
func (a *App) Stop() {
	a.mu.Lock()
	unbind := a.unbind
	a.unbind = nil
	a.mu.Unlock()

	if unbind != nil {
		unbind()
		a.logger.Info("gesture engine stopped")
	}
}

// SetEnabled enables or disables gesture classification.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	a.enabled = enabled
	a.mu.Unlock()
	a.classifier.SetEnabled(enabled)
}

// IsEnabled returns whether gesture classification is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// OnGesture sets a callback invoked for every classified gesture, after the
// event has been broadcast and logged. Used by the tray.
func (a *App) OnGesture(fn func(gesture.Event)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onGesture = fn
}

// handleGesture fans one classified gesture out to the WebSocket stream, the
// event log and the tray callback.
func (a *App) handleGesture(e gesture.Event) {
	a.gestureWS.Broadcast(e)

	if a.config.Store != nil && isDiscrete(e.Kind) {
		err := a.config.Store.Events().Insert(&store.GestureEvent{
			Kind:       e.Kind,
			DurationMs: e.State.DurationMs,
			Distance:   e.State.Distance,
			Direction:  string(e.State.Direction),
			Scale:      e.State.Scale,
			Rotation:   e.State.Rotation,
			Touches:    e.State.Touches,
		})
		if err != nil {
			a.logger.Warn("failed to log gesture event", zap.Error(err))
		}
	}

	a.mu.RLock()
	fn := a.onGesture
	a.mu.RUnlock()
	if fn != nil {
		fn(e)
	}
}

// isDiscrete reports whether a gesture kind is logged to the store.
// Continuous move events would flood the log, so only terminal
// classifications and *End events are persisted.
func isDiscrete(k gesture.Kind) bool {
	switch k {
	case gesture.KindPanStart, gesture.KindPanMove,
		gesture.KindPinchStart, gesture.KindPinchMove,
		gesture.KindRotateStart, gesture.KindRotateMove:
		return false
	}
	return true
}

// ConfigSnapshot returns the current engine configuration.
func (a *App) ConfigSnapshot() gesture.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// UpdateConfig merges a partial configuration into the current one, clamps
// it, persists it (save-on-change) and propagates it to every engine
// component. Sessions already in flight keep their start-time snapshot.
func (a *App) UpdateConfig(patch gesture.Patch) (gesture.Config, error) {
	a.mu.Lock()
	cfg := patch.Apply(a.cfg)
	a.cfg = cfg
	a.mu.Unlock()

	a.applyConfig(cfg)

	if a.config.Store != nil {
		if err := a.config.Store.Settings().SaveConfig(cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// ApplyPreset resolves a named preset and applies it through UpdateConfig.
func (a *App) ApplyPreset(name string) (gesture.Config, error) {
	patch, err := gesture.PresetPatch(name)
	if err != nil {
		return gesture.Config{}, err
	}
	a.logger.Info("applying preset", zap.String("preset", name))
	return a.UpdateConfig(patch)
}

// applyConfig pushes a configuration to the engine components.
func (a *App) applyConfig(cfg gesture.Config) {
	a.classifier.SetConfig(cfg)
	a.binder.SetThrottleInterval(time.Duration(cfg.ThrottleIntervalMs) * time.Millisecond)
	a.haptics.SetEnabled(cfg.EnableHaptics)
	a.haptics.SetDefaultIntensity(haptic.Intensity(cfg.HapticIntensity))
	a.tracker.SetEnabled(cfg.MetricsEnabled)
}

// Metrics returns a snapshot of the engine telemetry.
func (a *App) Metrics() metrics.Snapshot {
	return a.tracker.Snapshot()
}

// ResetMetrics clears the engine telemetry.
func (a *App) ResetMetrics() {
	a.tracker.Reset()
}

// Capabilities reports what the haptic driver chain can deliver.
func (a *App) Capabilities() haptic.Capabilities {
	return a.haptics.Capabilities()
}

// TouchHandler returns the WebSocket touch surface handler.
func (a *App) TouchHandler() *server.TouchHandler {
	return a.touchWS
}

// GestureStream returns the WebSocket gesture broadcast handler.
func (a *App) GestureStream() *server.GestureStreamHandler {
	return a.gestureWS
}

// Classifier returns the gesture classifier.
func (a *App) Classifier() *gesture.Classifier {
	return a.classifier
}

// Haptics returns the haptic controller.
func (a *App) Haptics() *haptic.Controller {
	return a.haptics
}
