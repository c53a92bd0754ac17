// Package secretctl implements the operator CLI for stored RCON passwords
// and principal tokens.
package secretctl

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/matchkeeper/internal/common"
	"github.com/dmitrijs2005/matchkeeper/internal/cryptox"
	"github.com/dmitrijs2005/matchkeeper/internal/dbx"
	"github.com/dmitrijs2005/matchkeeper/internal/logging"
	"github.com/dmitrijs2005/matchkeeper/internal/server/auth"
	"github.com/dmitrijs2005/matchkeeper/internal/server/config"
	"github.com/dmitrijs2005/matchkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/matchkeeper/internal/server/services"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Test seams.
var (
	loadConfig   = config.LoadConfigFile
	readPassword = term.ReadPassword
	openStore    = repomanager.Open
	stdinFd      = func() int { return int(os.Stdin.Fd()) }
)

// options holds the persistent flags.
type options struct {
	configFile string
	dsn        string
	key        string
	secret     string
	level      string
}

// load reads the config file and environment, then applies the flags the
// user set on cmd.
func (o *options) load(cmd *cobra.Command) (*config.Config, error) {
	c, err := loadConfig(o.configFile)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	fs := cmd.Flags()
	if fs.Changed("dsn") {
		c.DatabaseDSN = o.dsn
	}
	if fs.Changed("key") {
		c.DBKey = o.key
	}
	if fs.Changed("secret") {
		c.SharedSecret = o.secret
	}
	if fs.Changed("log-level") {
		c.LogLevel = o.level
	}
	return c, nil
}

// NewRootCommand creates the secretctl command tree. Settings come from the
// same file and environment as the server; flags win over both.
func NewRootCommand() *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:           "secretctl",
		Short:         "Manage matchkeeper secrets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := cmd.PersistentFlags()
	pf.StringVarP(&o.configFile, "config", "c", "", "config file (json or yaml)")
	pf.StringVarP(&o.dsn, "dsn", "d", "", "PostgreSQL DSN")
	pf.StringVarP(&o.key, "key", "k", "", "current key for stored RCON passwords")
	pf.StringVarP(&o.secret, "secret", "s", "", "shared secret for principal tokens")
	pf.StringVarP(&o.level, "log-level", "l", "", "log level")

	cmd.AddCommand(newEncryptCommand(o))
	cmd.AddCommand(newDecryptCommand(o))
	cmd.AddCommand(newRotateCommand(o))
	cmd.AddCommand(newTokenCommand(o))
	return cmd
}

func (o *options) cipher(cmd *cobra.Command) (*cryptox.Cipher, error) {
	c, err := o.load(cmd)
	if err != nil {
		return nil, err
	}
	return cipherFromConfig(c)
}

func cipherFromConfig(c *config.Config) (*cryptox.Cipher, error) {
	cipher, err := cryptox.FromSecret(c.DBKey)
	if err != nil {
		return nil, fmt.Errorf("db key: %w", err)
	}
	return cipher, nil
}

// prompt reads a secret from the terminal without echo.
func prompt(w io.Writer, label string) (string, error) {
	if _, err := fmt.Fprint(w, label); err != nil {
		return "", err
	}
	b, err := readPassword(stdinFd())
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(b)
	return strings.TrimSpace(string(b)), nil
}

func newEncryptCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt [plaintext]",
		Short: "Encrypt a value with the configured key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cipher, err := o.cipher(cmd)
			if err != nil {
				return err
			}

			var plain string
			if len(args) == 1 {
				plain = args[0]
			} else if plain, err = prompt(cmd.ErrOrStderr(), "Value: "); err != nil {
				return err
			}

			blob, err := cipher.Encrypt(plain)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), blob)
			return err
		},
	}
}

func newDecryptCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "decrypt <blob>",
		Short: "Decrypt a stored value with the configured key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cipher, err := o.cipher(cmd)
			if err != nil {
				return err
			}
			plain, err := cipher.Decrypt(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), plain)
			return err
		},
	}
}

func newRotateCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rotate",
		Short: "Re-encrypt every stored RCON password under a new key",
		Long: `Reads the new key from the terminal and re-encrypts all stored RCON
passwords in one transaction. If any password cannot be decrypted with the
current key, nothing is changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.load(cmd)
			if err != nil {
				return err
			}
			current, err := cipherFromConfig(c)
			if err != nil {
				return err
			}

			key, err := prompt(cmd.ErrOrStderr(), "New key: ")
			if err != nil {
				return err
			}
			again, err := prompt(cmd.ErrOrStderr(), "Repeat new key: ")
			if err != nil {
				return err
			}
			if key != again {
				return fmt.Errorf("keys do not match")
			}
			next, err := cryptox.FromSecret(key)
			if err != nil {
				return fmt.Errorf("new key: %w", err)
			}

			n, err := rotate(cmd.Context(), c, current, next)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "re-encrypted %d password(s); update the configured db key now\n", n)
			return err
		},
	}
}

func rotate(ctx context.Context, c *config.Config, current, next *cryptox.Cipher) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	db, err := openStore(ctx, c.DatabaseDSN)
	if err != nil {
		return 0, err
	}
	defer func(db *sql.DB) { _ = db.Close() }(db)

	logger := logging.NewJSONLogger(os.Stderr, c.LogLevel)
	coord := dbx.NewCoordinator(db, logger)
	svc := services.NewServerService(db, coord, repomanager.NewPostgresRepositoryManager(), current, logger, nil)
	return svc.RotateKey(ctx, next)
}

func newTokenCommand(o *options) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue an access token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("bad user id %q", args[0])
			}
			c, err := o.load(cmd)
			if err != nil {
				return err
			}
			tok, err := auth.GenerateToken(id, []byte(c.SharedSecret), ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token validity")
	return cmd
}
