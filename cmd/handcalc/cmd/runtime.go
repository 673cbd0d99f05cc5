package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sourcegraph/conc"

	"github.com/ayusman/handcalc/internal/app"
	"github.com/ayusman/handcalc/internal/config"
	"github.com/ayusman/handcalc/internal/display"
	"github.com/ayusman/handcalc/internal/event"
	"github.com/ayusman/handcalc/internal/plugin"
	"github.com/ayusman/handcalc/internal/store"
	"github.com/ayusman/handcalc/internal/tracker"
	"github.com/ayusman/handcalc/internal/voice"
)

// runtime wires the calculator: store, app, queue and consumer.
type runtime struct {
	cfg      config.Config
	store    *store.Store
	queue    *event.Queue
	app      *app.App
	consumer *display.Consumer
	log      *slog.Logger
	wg       *conc.WaitGroup
	cancel   context.CancelFunc
}

// newRuntime opens the settings store, applies stored overrides to cfg and
// builds the app.
func newRuntime(cfg config.Config, logger *slog.Logger) (*runtime, error) {
	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("opening settings store: %w", err)
	}

	overrides, err := st.Settings().All()
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	if err := cfg.ApplySettings(overrides); err != nil {
		logger.Warn("ignoring stored settings", "error", err)
	}

	queue := event.NewQueue(cfg.MaxPendingFrames)

	opts := []app.Option{
		app.WithLogger(logger),
		app.WithRecognizer(newRecognizer(cfg, logger)),
	}
	trk, err := tracker.NewMediaPipeTracker(cfg.Tracker(), logger)
	if err != nil {
		logger.Warn("hand tracking disabled", "error", err)
	} else {
		opts = append(opts, app.WithTracker(trk))
	}

	return &runtime{
		cfg:      cfg,
		store:    st,
		queue:    queue,
		app:      app.New(cfg.App(), queue, opts...),
		consumer: display.NewConsumer(queue, cfg.PollInterval(), logger),
		log:      logger,
		wg:       conc.NewWaitGroup(),
	}, nil
}

// newRecognizer returns the plugin-backed speech recognizer.
func newRecognizer(cfg config.Config, logger *slog.Logger) *voice.PluginRecognizer {
	manager := plugin.NewManager(cfg.PluginDir, logger)
	if err := manager.Discover(); err != nil {
		logger.Warn("plugin discovery failed", "dir", cfg.PluginDir, "error", err)
	}
	for _, p := range manager.List() {
		logger.Debug("plugin found", "name", p.Manifest.Name, "version", p.Manifest.Version)
	}

	return voice.NewPluginRecognizer(manager, plugin.NewExecutor(cfg.VoiceTimeoutMs),
		voice.WithPluginName(cfg.VoicePlugin),
		voice.WithParams(plugin.TranscribeParams{Language: "en"}),
		voice.WithLogger(logger),
	)
}

// start runs the app and the consumer. A missing camera is logged, not
// returned: the other surfaces keep working without gestures.
func (r *runtime) start(ctx context.Context) error {
	if err := r.app.Start(); err != nil {
		if !errors.Is(err, app.ErrCameraUnavailable) {
			return err
		}
		r.log.Warn("gestures disabled", "error", err)
	}

	ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Go(func() {
		r.consumer.Run(ctx)
	})
	return nil
}

// close stops the app, lets the consumer drain and closes the store.
func (r *runtime) close() {
	r.app.Stop()
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
	r.queue.Close()
	if err := r.store.Close(); err != nil {
		r.log.Warn("close store", "error", err)
	}
}
