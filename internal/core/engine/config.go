package engine

import "time"

// Config holds engine startup parameters, mirroring the teacher's
// WorldConfig. Its yaml struct tags let a scene's config.yaml be decoded
// into it with gopkg.in/yaml.v3; this package does not load such a file.
// New stores the Config on Engine.Config, and the engine reads none of
// its fields.
type Config struct {
	TickInterval      time.Duration `yaml:"tick_interval"`       // target duration of one OnUpdate tick
	MaxGSetElements   int           `yaml:"max_gset_elements"`   // per-entity GSet cap; NewGSet takes its own maxElements instead
	EnableMetrics     bool          `yaml:"enable_metrics"`      // metrics switch; collectors are only exposed via Collectors()
	RendererTransport bool          `yaml:"renderer_transport"`  // renderer-transport switch; the engine registers no transport itself
	LogLevel          int           `yaml:"log_level"`           // 0=error .. 3=debug; engine logging is not filtered by it
}

// DefaultConfig returns the configuration a scene runs with absent an
// explicit config.yaml, matching the teacher's DefaultWorldConfig
// pattern of shipping sane production defaults.
func DefaultConfig() Config {
	return Config{
		TickInterval:      16 * time.Millisecond,
		MaxGSetElements:   256,
		EnableMetrics:     true,
		RendererTransport: true,
		LogLevel:          2,
	}
}
