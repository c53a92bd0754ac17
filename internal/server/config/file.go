package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/matchkeeper/internal/flagx"
	"github.com/dmitrijs2005/matchkeeper/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the configuration. Durations accept
// both "10m" strings and integer nanoseconds. Missing keys keep the value
// already in Config.
type FileConfig struct {
	EndpointAddrHTTP  string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	DatabaseDSN       string         `json:"database_dsn" yaml:"database_dsn"`
	DBKey             string         `json:"db_key" yaml:"db_key"`
	SharedSecret      string         `json:"shared_secret" yaml:"shared_secret"`
	LogLevel          string         `json:"log_level" yaml:"log_level"`
	SteamAPIKey       string         `json:"steam_api_key" yaml:"steam_api_key"`
	SteamAPIBaseURL   string         `json:"steam_api_base_url" yaml:"steam_api_base_url"`
	IdentityTimeout   timex.Duration `json:"identity_timeout" yaml:"identity_timeout"`
	IdentityCacheTTL  timex.Duration `json:"identity_cache_ttl" yaml:"identity_cache_ttl"`
	IdentityCacheSize int            `json:"identity_cache_size" yaml:"identity_cache_size"`
	S3RootUser        string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword    string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket          string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region          string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint    string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	LogoURLValidity   timex.Duration `json:"logo_url_validity" yaml:"logo_url_validity"`
}

// parseFile overlays values from the file named by -c/-config. Files ending
// in .yaml or .yml are decoded as YAML, everything else as JSON.
// An unreadable or invalid file panics: the server must not start half
// configured.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	fc, err := readFile(path)
	if err != nil {
		panic(err)
	}
	fc.apply(config)
}

func readFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return nil, err
	}
	return fc, nil
}

func (fc *FileConfig) apply(c *Config) {
	setString(&c.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	setString(&c.DatabaseDSN, fc.DatabaseDSN)
	setString(&c.DBKey, fc.DBKey)
	setString(&c.SharedSecret, fc.SharedSecret)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.SteamAPIKey, fc.SteamAPIKey)
	setString(&c.SteamAPIBaseURL, fc.SteamAPIBaseURL)
	setString(&c.S3RootUser, fc.S3RootUser)
	setString(&c.S3RootPassword, fc.S3RootPassword)
	setString(&c.S3Bucket, fc.S3Bucket)
	setString(&c.S3Region, fc.S3Region)
	setString(&c.S3BaseEndpoint, fc.S3BaseEndpoint)

	if fc.IdentityTimeout.Duration > 0 {
		c.IdentityTimeout = fc.IdentityTimeout.Duration
	}
	if fc.IdentityCacheTTL.Duration > 0 {
		c.IdentityCacheTTL = fc.IdentityCacheTTL.Duration
	}
	if fc.IdentityCacheSize > 0 {
		c.IdentityCacheSize = fc.IdentityCacheSize
	}
	if fc.LogoURLValidity.Duration > 0 {
		c.LogoURLValidity = fc.LogoURLValidity.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
