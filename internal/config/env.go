package config

import (
	"fmt"
	"log/slog"

	"github.com/kelseyhightower/envconfig"

	"github.com/kazz187/agentregistry/pkg/clog"
)

type BaseEnv struct {
	Env      string `envconfig:"ENV" default:"local"`
	HTTPHost string `envconfig:"HTTP_HOST" default:""`
	HTTPPort string `envconfig:"HTTP_PORT" default:"3100"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"debug"`
}

const (
	StorageTypeLocal = "local"
	StorageTypeS3    = "s3"
)

type StorageEnv struct {
	Type    string `envconfig:"STORAGE_TYPE" default:"local"`
	BaseDir string `envconfig:"STORAGE_BASE_DIR" default:"/tmp"`
	// S3 settings (used when Type == "s3")
	S3Bucket   string `envconfig:"S3_BUCKET_NAME" default:"agent-permissions-data"`
	S3Prefix   string `envconfig:"S3_PREFIX" default:""`
	S3Region   string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Endpoint string `envconfig:"S3_ENDPOINT"`
}

// DocumentEnv names the object holding each registry's document.
type DocumentEnv struct {
	PermissionsKey string `envconfig:"S3_FILE_KEY" default:"permissions.json"`
	ProfilesKey    string `envconfig:"S3_PROFILES_FILE_KEY" default:"user_profiles.json"`
}

type Env struct {
	BaseEnv
	StorageEnv
	DocumentEnv
}

const namespace = "REGISTRY"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	if err := env.validate(); err != nil {
		return nil, err
	}
	return &env, nil
}

func (e *Env) validate() error {
	switch e.StorageEnv.Type {
	case StorageTypeLocal, StorageTypeS3:
	default:
		return fmt.Errorf("unknown storage type %q", e.StorageEnv.Type)
	}
	if e.StorageEnv.Type == StorageTypeS3 && e.S3Bucket == "" {
		return fmt.Errorf("S3_BUCKET_NAME is required for s3 storage")
	}
	return nil
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelDebug
	}
	return clog.ParseLevel(e.LogLevel)
}
