package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/matchkeeper/internal/common"
	"github.com/dmitrijs2005/matchkeeper/internal/cryptox"
	"github.com/dmitrijs2005/matchkeeper/internal/dbx"
	"github.com/dmitrijs2005/matchkeeper/internal/logging"
	"github.com/dmitrijs2005/matchkeeper/internal/server/guard"
	"github.com/dmitrijs2005/matchkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/matchkeeper/internal/server/models"
	"github.com/dmitrijs2005/matchkeeper/internal/server/repositories/repomanager"
)

// ServerView is a game server as returned to clients. RCONPassword is the
// decrypted value and is only filled for principals that may manage the
// server.
type ServerView struct {
	*models.Server
	RCONPassword *string `json:"rcon_password,omitempty"`
}

// CreateServerInput carries a new server; RCONPassword is plaintext.
type CreateServerInput struct {
	IPString     string
	Port         int
	DisplayName  string
	RCONPassword *string
	PublicServer bool
}

type ServerService struct {
	db          *sql.DB
	coord       *dbx.Coordinator
	repomanager repomanager.RepositoryManager
	cipher      *cryptox.Cipher
	logger      logging.Logger
	metrics     *metrics.Metrics
}

func NewServerService(db *sql.DB, coord *dbx.Coordinator, m repomanager.RepositoryManager,
	cipher *cryptox.Cipher, logger logging.Logger, mx *metrics.Metrics) *ServerService {
	return &ServerService{db: db, coord: coord, repomanager: m, cipher: cipher, logger: logger, metrics: mx}
}

func (s *ServerService) view(ctx context.Context, p guard.Principal, srv *models.Server) ServerView {
	v := ServerView{Server: srv}
	if guard.Authorize(p, srv) == nil {
		v.RCONPassword = openSecret(ctx, s.cipher, s.logger, s.metrics, srv.ID, srv.RCONPassword)
	}
	return v
}

// List returns every server to an elevated principal, and public plus own
// servers to everyone else.
func (s *ServerService) List(ctx context.Context, p guard.Principal) ([]ServerView, error) {
	repo := s.repomanager.Servers(s.db)

	var (
		list []*models.Server
		err  error
	)
	if p.Elevated() {
		list, err = repo.List(ctx)
	} else {
		list, err = repo.ListVisible(ctx, p.UserID)
	}
	if err != nil {
		return nil, err
	}

	views := make([]ServerView, 0, len(list))
	for _, srv := range list {
		views = append(views, s.view(ctx, p, srv))
	}
	return views, nil
}

// Get returns one server. A private server is visible to its owner and to
// elevated principals only.
func (s *ServerService) Get(ctx context.Context, p guard.Principal, id int64) (ServerView, error) {
	srv, err := s.repomanager.Servers(s.db).GetByID(ctx, id)
	if err != nil {
		return ServerView{}, err
	}
	if !srv.PublicServer {
		if err := guard.Authorize(p, srv); err != nil {
			return ServerView{}, err
		}
	}
	return s.view(ctx, p, srv), nil
}

func validateEndpoint(ip string, port int) error {
	if strings.TrimSpace(ip) == "" {
		return fmt.Errorf("%w: ip_string is required", common.ErrorValidation)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("%w: port out of range", common.ErrorValidation)
	}
	return nil
}

func (s *ServerService) Create(ctx context.Context, p guard.Principal, in CreateServerInput) (int64, error) {
	if err := validateEndpoint(in.IPString, in.Port); err != nil {
		return 0, err
	}

	blob, err := s.cipher.EncryptOptional(in.RCONPassword)
	if err != nil {
		return 0, err
	}

	srv := &models.Server{
		UserID:       p.UserID,
		IPString:     in.IPString,
		Port:         in.Port,
		DisplayName:  in.DisplayName,
		RCONPassword: blob,
		PublicServer: in.PublicServer,
	}

	err = s.coord.WithTx(ctx, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := s.repomanager.Servers(tx).Create(ctx, srv)
		return err
	})
	if err != nil {
		return 0, err
	}
	return srv.ID, nil
}

// Update changes a server the principal may manage. upd.RCONPassword is
// plaintext and is re-encrypted with a fresh nonce; upd.ClearRCONPassword
// removes the stored password.
func (s *ServerService) Update(ctx context.Context, p guard.Principal, id int64, upd models.ServerUpdate) error {
	if upd.IPString != nil && strings.TrimSpace(*upd.IPString) == "" {
		return fmt.Errorf("%w: ip_string is required", common.ErrorValidation)
	}
	if upd.Port != nil && (*upd.Port < 1 || *upd.Port > 65535) {
		return fmt.Errorf("%w: port out of range", common.ErrorValidation)
	}
	if upd.ClearRCONPassword && upd.RCONPassword != nil {
		return fmt.Errorf("%w: rcon_password and clear_rcon_password are exclusive", common.ErrorValidation)
	}

	return s.coord.WithTx(ctx, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Servers(tx)

		srv, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := guard.AuthorizeOwnerChange(p, srv, upd.UserID); err != nil {
			return err
		}
		if upd.Empty() {
			return common.ErrNoUpdateData
		}

		if upd.RCONPassword != nil {
			blob, err := s.cipher.Encrypt(*upd.RCONPassword)
			if err != nil {
				return err
			}
			upd.RCONPassword = &blob
		}
		return repo.Update(ctx, id, upd)
	})
}

func (s *ServerService) Delete(ctx context.Context, p guard.Principal, id int64) error {
	return s.coord.WithTx(ctx, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Servers(tx)

		srv, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := guard.Authorize(p, srv); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
}

// RotateKey re-encrypts every stored password under next in a single unit
// of work and returns how many were rewritten. A password that does not
// decrypt under the current key aborts the rotation; nothing is written.
func (s *ServerService) RotateKey(ctx context.Context, next *cryptox.Cipher) (int, error) {
	var n int
	err := s.coord.WithTx(ctx, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Servers(tx)

		refs, err := repo.ListSecretsForUpdate(ctx)
		if err != nil {
			return err
		}
		for _, ref := range refs {
			plain, err := s.cipher.Decrypt(ref.Blob)
			if err != nil {
				return fmt.Errorf("server %d: %w", ref.ID, err)
			}
			blob, err := next.Encrypt(plain)
			if err != nil {
				return err
			}
			if err := repo.SetSecret(ctx, ref.ID, blob); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info(ctx, "rcon passwords re-encrypted", "count", n)
	return n, nil
}
