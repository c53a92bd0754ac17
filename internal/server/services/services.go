// Package services contains server-side business logic. Every mutation runs
// in one unit of work: the owned record is read and locked, the principal is
// authorized, and only then are rows written.
package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/matchkeeper/internal/common"
	"github.com/dmitrijs2005/matchkeeper/internal/cryptox"
	"github.com/dmitrijs2005/matchkeeper/internal/logging"
	"github.com/dmitrijs2005/matchkeeper/internal/server/metrics"
)

// secretKind labels a decryption failure without revealing anything about
// the stored value.
func secretKind(err error) string {
	switch {
	case errors.Is(err, common.ErrMalformedSecret):
		return "malformed"
	case errors.Is(err, common.ErrDecryptionFailed):
		return "decrypt"
	default:
		return "other"
	}
}

// openSecret decrypts a stored secret for a read path. A blob that cannot be
// decrypted is logged, counted and reported as absent.
func openSecret(ctx context.Context, c *cryptox.Cipher, log logging.Logger, m *metrics.Metrics, recordID int64, blob *string) *string {
	if blob == nil {
		return nil
	}
	plain, err := c.Decrypt(*blob)
	if err != nil {
		kind := secretKind(err)
		log.Warn(ctx, "stored secret unreadable", "record_id", recordID, "kind", kind)
		m.SecretFailure(kind)
		return nil
	}
	return &plain
}
