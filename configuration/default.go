package configuration

func Default() *Configuration {
	return &Configuration{
		HttpAddr:          "127.0.0.1:8080",
		ShowBanner:        true,
		ShowConfig:        false,
		EnableCompression: true,
		EnableMetrics:     true,

		LogLevel:    "info",
		LogEncoding: "json",

		DefaultMaxSize:         0,
		DefaultReserve:         0,
		MaxReserve:             100_000,
		DefaultShrinkThreshold: 1024,
		DefaultDefragMode:      "deferred",
	}
}
