package config

import "time"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "edgy",
			Version:     "dev",
			Environment: "development",
			Debug:       false,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			HTTP: HTTPConfig{
				ReadTimeout:     30 * time.Second,
				WriteTimeout:    30 * time.Second,
				IdleTimeout:     120 * time.Second,
				ShutdownTimeout: 15 * time.Second,
				RequestTimeout:  10 * time.Second,
				MaxHeaderBytes:  1 << 20, // 1MB
				MaxBodyBytes:    32 << 20,
			},
			CORS: CORSConfig{
				Enabled:        false,
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
				ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
				MaxAge:         300,
			},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerSecond: 50,
				Burst:             100,
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Search: SearchConfig{
			MaxLoops:        10,
			DisableFaceBias: false,
		},
		Storage: StorageConfig{
			Type: "memory",
			Badger: BadgerConfig{
				Path:              "./data/badger",
				SyncWrites:        true,
				ValueLogFileSize:  1 << 28, // 256MB
				NumVersionsToKeep: 1,
			},
			Redis: RedisConfig{
				Address:     "localhost:6379",
				Password:    "",
				DB:          0,
				KeyPrefix:   "edgy:",
				DialTimeout: 5 * time.Second,
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
			Port:    9091,
		},
		Tracing: TracingConfig{
			Enabled:    false,
			Exporter:   "otlp",
			Endpoint:   "localhost:4317",
			Timeout:    5 * time.Second,
			Sampler:    "ratio",
			SampleRate: 0.1,
		},
	}
}
