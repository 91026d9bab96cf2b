package configuration

type Configuration struct {
	HttpAddr          string `usage:"HTTP address"`
	Version           bool   `usage:"show version and exit"`
	ShowBanner        bool   `usage:"show big banner"`
	ShowConfig        bool   `usage:"print config"`
	EnableCompression bool   `usage:"gzip responses when the client accepts it"`
	EnableMetrics     bool   `usage:"serve prometheus metrics on /metrics"`
	ApiKey            string `usage:"required X-Api-Key header, empty disables authentication"`
	ApiSecret         string `usage:"required X-Api-Secret header"`

	LogLevel    string `usage:"log level [debug|info|warn|error]"`
	LogEncoding string `usage:"log encoding [json|console]"`

	Preload string `usage:"comma separated pools to create on start"`

	DefaultMaxSize         int    `usage:"max live objects for new pools, 0 is unbounded"`
	DefaultReserve         int    `usage:"slots reserved when a pool is created"`
	MaxReserve             int    `usage:"largest reserve a pool may ask for, 0 is the pool package limit"`
	DefaultShrinkThreshold int    `usage:"unused tail slots tolerated before trimming after a defrag"`
	DefaultDefragMode      string `usage:"defrag mode for new pools [immediate|deferred|manual]"`
	DefaultOrderedIndex    bool   `usage:"keep the id table of new pools in a b-tree"`
}
