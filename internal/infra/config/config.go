package config

import (
	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPPort int    `env:"HTTP_PORT" envDefault:"8000"`
	DataDir  string `env:"DATA_DIR"  envDefault:"/tmp/dance-analysis"`

	AllowedFormats []string `env:"ALLOWED_FORMATS" envSeparator:"," envDefault:".mp4,.avi,.mov"`

	WorkerCount   int `env:"WORKER_COUNT"    envDefault:"2"`
	QueueSize     int `env:"QUEUE_SIZE"      envDefault:"32"`
	FrameSkip     int `env:"FRAME_SKIP"      envDefault:"1"`
	JobTimeoutMin int `env:"JOB_TIMEOUT_MIN" envDefault:"30"`

	PoseServiceURL string `env:"POSE_SERVICE_URL" envDefault:"http://localhost:9090"`

	RetentionHours     int `env:"RETENTION_HOURS"      envDefault:"24"`
	CleanupIntervalMin int `env:"CLEANUP_INTERVAL_MIN" envDefault:"60"`

	// Empty RABBITMQ_URL disables status events.
	RabbitMQURL      string `env:"RABBITMQ_URL"`
	RabbitMQExchange string `env:"RABBITMQ_EXCHANGE" envDefault:"danceanalysis.jobs"`

	// Empty MINIO_ENDPOINT disables artifact archiving.
	MinIOEndpoint      string `env:"MINIO_ENDPOINT"`
	MinIOAccessKey     string `env:"MINIO_ACCESS_KEY"     envDefault:"minioadmin"`
	MinIOSecretKey     string `env:"MINIO_SECRET_KEY"     envDefault:"minioadmin"`
	MinIOUseSSL        bool   `env:"MINIO_USE_SSL"        envDefault:"false"`
	MinIOArchiveBucket string `env:"MINIO_ARCHIVE_BUCKET" envDefault:"analysis-artifacts"`

	MetricsPort  int    `env:"METRICS_PORT"  envDefault:"8083"`
	OTLPEndpoint string `env:"OTLP_ENDPOINT"`
	LogLevel     string `env:"LOG_LEVEL"     envDefault:"info"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
