package config

// Data defaults.
const (
	DefaultDataSource     = "loc.csv"
	DefaultDetectLanguage = true
	DefaultCacheEnabled   = true
	DefaultCacheDir       = ".commitviz-cache"
	DefaultHTTPTimeout    = "30s"
)

// Chart defaults. They match the scatter plot's standard layout.
const (
	DefaultChartWidth     = 1000
	DefaultChartHeight    = 600
	DefaultChartMinRadius = 2
	DefaultChartMaxRadius = 30
)

// Site defaults.
const (
	DefaultSiteTitle    = "Meta"
	DefaultSiteTheme    = "light"
	DefaultSiteOutDir   = "dist"
	DefaultSiteDataFile = "loc.csv"
	DefaultSiteTopFiles = 10
	DefaultSiteOverview = true
)

// Logging defaults.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Observability defaults.
const (
	DefaultServiceName     = "commitviz"
	DefaultShutdownTimeout = "5s"
)
