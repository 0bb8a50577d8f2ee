package config

import (
	"go.uber.org/zap"

	"github.com/dshills/richdoc/internal/config/watcher"
)

// Watcher reloads the configuration when one of its files changes.
type Watcher struct {
	w      *watcher.Watcher
	opts   []LoadOption
	logger *zap.Logger
}

// Watch starts watching the files named in opts. fn receives every
// successfully reloaded configuration; failed reloads are logged and keep
// the previous configuration.
func Watch(fn func(*Config), logger *zap.Logger, opts ...LoadOption) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w, err := watcher.New(watcher.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	cw := &Watcher{w: w, opts: opts, logger: logger}

	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}
	for _, path := range o.files {
		if err := w.Watch(path); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	w.OnChange(func(ev watcher.Event) {
		cfg, err := Load(cw.opts...)
		if err != nil {
			cw.logger.Warn("config reload failed", zap.String("path", ev.Path), zap.Error(err))
			return
		}
		cw.logger.Info("config reloaded", zap.String("path", ev.Path), zap.Stringer("op", ev.Op))
		fn(cfg)
	})
	return cw, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.w.Close()
}
