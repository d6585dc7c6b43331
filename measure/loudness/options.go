package loudness

// MeterConfig defines optional configuration for a loudness meter.
type MeterConfig struct {
	// MaxWindowMs is the longest window Window can query. Zero selects the
	// mode default (3000 ms with ModeS, 400 ms otherwise).
	MaxWindowMs int
	// MaxHistoryMs bounds exact block histories. Zero keeps them unbounded.
	// Histogram histories are always bounded.
	MaxHistoryMs int
	// ChannelMap overrides the default role of the first len(ChannelMap)
	// channels.
	ChannelMap []Channel
}

// MeterOption mutates a MeterConfig.
type MeterOption func(*MeterConfig)

// DefaultMeterConfig returns the defaults: mode-dependent max window,
// unbounded history, default channel map.
func DefaultMeterConfig() MeterConfig {
	return MeterConfig{}
}

// WithMaxWindow sets the max window in milliseconds. Values below the mode
// minimum are raised to it.
func WithMaxWindow(ms int) MeterOption {
	return func(cfg *MeterConfig) {
		if ms > 0 {
			cfg.MaxWindowMs = ms
		}
	}
}

// WithMaxHistory bounds exact block histories to ms milliseconds of audio.
// Values below the mode minimum are raised to it.
func WithMaxHistory(ms int) MeterOption {
	return func(cfg *MeterConfig) {
		if ms > 0 {
			cfg.MaxHistoryMs = ms
		}
	}
}

// WithChannelMap assigns roles to the first len(roles) channels.
func WithChannelMap(roles ...Channel) MeterOption {
	return func(cfg *MeterConfig) {
		cfg.ChannelMap = append([]Channel(nil), roles...)
	}
}

// ApplyMeterOptions applies zero or more options to the default config.
func ApplyMeterOptions(opts ...MeterOption) MeterConfig {
	cfg := DefaultMeterConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
