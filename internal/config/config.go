// Package config loads process configuration from flags, an optional .env
// file, and the environment, in that order of declaration with environment
// values winning over flag defaults.
package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	Env      string
	WorkDir  string
	Roster   string
	LLM      LLMConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Artifact ArtifactConfig
}

type LLMConfig struct {
	APIKey string
	Model  string
}

type DatabaseConfig struct {
	// DSN is a postgres connection string. Empty means the in-memory
	// ledger is used.
	DSN string
}

type RedisConfig struct {
	// URL is a redis:// connection URL. Empty means the in-memory pattern
	// store is used.
	URL string
}

type ArtifactConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// LocalRoot is the fallback filesystem root when no object store is
	// configured.
	LocalRoot string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8080", "server port")
	roster := flag.String("roster", "", "path to the agent roster YAML (optional)")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	workDir := strings.TrimSpace(os.Getenv("MISSION_WORKDIR"))
	if workDir == "" {
		workDir, _ = os.Getwd()
	}

	rosterPath := *roster
	if envRoster := strings.TrimSpace(os.Getenv("AGENT_ROSTER")); envRoster != "" {
		rosterPath = envRoster
	}

	return &Config{
		Port:     *port,
		Env:      env,
		WorkDir:  workDir,
		Roster:   rosterPath,
		LLM:      loadLLMConfig(),
		Database: DatabaseConfig{DSN: strings.TrimSpace(os.Getenv("DATABASE_URL"))},
		Redis:    loadRedisConfig(),
		Artifact: loadArtifactConfig(env, workDir),
	}, nil
}

func loadLLMConfig() LLMConfig {
	return LLMConfig{
		APIKey: firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_API_KEY")), strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))),
		Model:  firstNonEmpty(strings.TrimSpace(os.Getenv("LLM_MODEL")), "gemini-2.0-flash"),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{URL: strings.TrimSpace(os.Getenv("REDIS_URL"))}
}

func loadArtifactConfig(env, workDir string) ArtifactConfig {
	endpoint := resolveArtifactEndpoint(env)
	return ArtifactConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_BUCKET")), "missionforge-artifacts"),
		UseSSL:    resolveArtifactUseSSL(env),
		LocalRoot: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_LOCAL_ROOT")), workDir),
	}
}

func resolveArtifactEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return strings.TrimSpace(os.Getenv("ARTIFACT_MINIO_ENDPOINT"))
	}
	return strings.TrimSpace(os.Getenv("ARTIFACT_S3_ENDPOINT"))
}

func resolveArtifactUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("ARTIFACT_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
