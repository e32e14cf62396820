package internal

import "time"

type Config struct {
	Host string `env:"HOST,default=0.0.0.0"`
	Port int    `env:"PORT,default=8080"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,default=info"`

	CommentTTL       time.Duration `env:"COMMENT_TTL,default=168h"`
	ContactTTL       time.Duration `env:"CONTACT_TTL,default=720h"`
	RateLimitWindow  time.Duration `env:"RATE_LIMIT_WINDOW,default=5m"`
	RateLimitEntries int           `env:"RATE_LIMIT_MAX_ENTRIES,default=10000"`

	ClassifierWeightsPath   string        `env:"CLASSIFIER_WEIGHTS_PATH"`
	ClassifierTimeout       time.Duration `env:"CLASSIFIER_TIMEOUT,default=15s"`
	ClassifierWarmupTimeout time.Duration `env:"CLASSIFIER_WARMUP_TIMEOUT,default=60s"`

	ContactBufferSize    int           `env:"CONTACT_BUFFER_SIZE,default=16"`
	ContactBufferTimeout time.Duration `env:"CONTACT_BUFFER_TIMEOUT,default=5s"`

	InspectEnabled bool `env:"INSPECT_ENABLED,default=false"`
	InspectPort    int  `env:"INSPECT_PORT,default=8081"`
}
