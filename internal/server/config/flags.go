package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/matchkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":3301")
//	-d string   PostgreSQL DSN
//	-k string   key for stored RCON passwords
//	-s string   shared secret for principal tokens
//	-m string   Steam Web API key
//	-l string   log level (debug, info, warn, error)
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-i duration identity provider request timeout
//	-t duration presigned logo URL validity
func parseFlags(config *Config) {
	parseFlagArgs(config, os.Args[1:])
}

func parseFlagArgs(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-k", "-s", "-m", "-l", "-u", "-p", "-b", "-g", "-e", "-i", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.DBKey, "k", config.DBKey, "key for stored RCON passwords")
	fs.StringVar(&config.SharedSecret, "s", config.SharedSecret, "shared secret for principal tokens")
	fs.StringVar(&config.SteamAPIKey, "m", config.SteamAPIKey, "Steam Web API key")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.DurationVar(&config.IdentityTimeout, "i", config.IdentityTimeout, "identity provider request timeout")
	fs.DurationVar(&config.LogoURLValidity, "t", config.LogoURLValidity, "presigned logo URL validity")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
