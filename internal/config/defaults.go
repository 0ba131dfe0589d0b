package config

const (
	defaultDataDir             = "~/.local/share/gleaner"
	defaultLogDir              = "~/.local/share/gleaner/logs"
	defaultAPIBind             = "127.0.0.1:7519"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLookbackDays        = 30
	defaultFetchTimeoutSeconds = 25
	defaultAutoApprove         = 0.9
	defaultHighConfidence      = 0.8
	defaultNotifyTimeout       = 10
	defaultScheduleCron        = "0 6 * * *"
)

var defaultFeedURLs = []string{
	"https://www.grants.gov/rss/GG_NewOpp.xml",
	"https://www.grants.gov/rss/GG_OppModByCategory.xml",
}

var defaultKeywords = []string{
	"housing", "homeowner", "home repair", "home improvement",
	"rehabilitation", "weatherization", "energy efficiency",
	"accessibility", "lead", "roof", "heating", "plumbing",
	"home ownership", "affordable housing", "community development",
	"neighborhood", "residential", "dwelling",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Discovery: Discovery{
			FeedURLs:                append([]string{}, defaultFeedURLs...),
			Keywords:                append([]string{}, defaultKeywords...),
			LookbackDays:            defaultLookbackDays,
			FetchTimeoutSeconds:     defaultFetchTimeoutSeconds,
			AutoApproveThreshold:    defaultAutoApprove,
			HighConfidenceThreshold: defaultHighConfidence,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Schedule: Schedule{
			Enabled: false,
			Cron:    defaultScheduleCron,
			Notify:  true,
		},
		LogLevel:  defaultLogLevel,
		LogFormat: defaultLogFormat,
	}
}
