package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvHTTPAddr          = "MATCHKEEPER_HTTP_ADDR"
	EnvDatabaseDSN       = "MATCHKEEPER_DATABASE_DSN"
	EnvDBKey             = "MATCHKEEPER_DB_KEY"
	EnvSharedSecret      = "MATCHKEEPER_SHARED_SECRET"
	EnvLogLevel          = "MATCHKEEPER_LOG_LEVEL"
	EnvSteamAPIKey       = "MATCHKEEPER_STEAM_API_KEY"
	EnvSteamAPIBaseURL   = "MATCHKEEPER_STEAM_API_BASE_URL"
	EnvIdentityTimeout   = "MATCHKEEPER_IDENTITY_TIMEOUT"
	EnvIdentityCacheTTL  = "MATCHKEEPER_IDENTITY_CACHE_TTL"
	EnvIdentityCacheSize = "MATCHKEEPER_IDENTITY_CACHE_SIZE"
	EnvS3RootUser        = "MATCHKEEPER_S3_ROOT_USER"
	EnvS3RootPassword    = "MATCHKEEPER_S3_ROOT_PASSWORD"
	EnvS3Bucket          = "MATCHKEEPER_S3_BUCKET"
	EnvS3Region          = "MATCHKEEPER_S3_REGION"
	EnvS3BaseEndpoint    = "MATCHKEEPER_S3_BASE_ENDPOINT"
	EnvLogoURLValidity   = "MATCHKEEPER_LOGO_URL_VALIDITY"
)

// dotEnvFile is loaded, if present, before the environment is read.
// Variables already set in the process environment win.
var dotEnvFile = ".env"

func parseEnv(config *Config) {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}
	if err := applyEnv(config, os.LookupEnv); err != nil {
		panic(err)
	}
}

func applyEnv(c *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) error {
		v, ok := lookup(name)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.New(name + ": " + err.Error())
		}
		*dst = d
		return nil
	}

	str(EnvHTTPAddr, &c.EndpointAddrHTTP)
	str(EnvDatabaseDSN, &c.DatabaseDSN)
	str(EnvDBKey, &c.DBKey)
	str(EnvSharedSecret, &c.SharedSecret)
	str(EnvLogLevel, &c.LogLevel)
	str(EnvSteamAPIKey, &c.SteamAPIKey)
	str(EnvSteamAPIBaseURL, &c.SteamAPIBaseURL)
	str(EnvS3RootUser, &c.S3RootUser)
	str(EnvS3RootPassword, &c.S3RootPassword)
	str(EnvS3Bucket, &c.S3Bucket)
	str(EnvS3Region, &c.S3Region)
	str(EnvS3BaseEndpoint, &c.S3BaseEndpoint)

	for name, dst := range map[string]*time.Duration{
		EnvIdentityTimeout:  &c.IdentityTimeout,
		EnvIdentityCacheTTL: &c.IdentityCacheTTL,
		EnvLogoURLValidity:  &c.LogoURLValidity,
	} {
		if err := dur(name, dst); err != nil {
			return err
		}
	}

	if v, ok := lookup(EnvIdentityCacheSize); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.New(EnvIdentityCacheSize + ": " + err.Error())
		}
		c.IdentityCacheSize = n
	}
	return nil
}
