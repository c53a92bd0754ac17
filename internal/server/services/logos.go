package services

import (
	"context"
	"database/sql"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/matchkeeper/internal/common"
	"github.com/dmitrijs2005/matchkeeper/internal/dbx"
	"github.com/dmitrijs2005/matchkeeper/internal/logging"
	sc "github.com/dmitrijs2005/matchkeeper/internal/server/config"
	"github.com/dmitrijs2005/matchkeeper/internal/server/guard"
	"github.com/dmitrijs2005/matchkeeper/internal/server/models"
	"github.com/dmitrijs2005/matchkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

var (
	loadDefaultAWSConfig  = awsconfig.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
	newS3PresignClient    = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

var logoExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".svg":  true,
	".webp": true,
}

// LogoStorageKey returns a fresh object key for a logo of the named team.
// Only image extensions are accepted.
func LogoStorageKey(teamName, filename string) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	if !logoExtensions[ext] {
		return "", fmt.Errorf("%w: unsupported logo type %q", common.ErrorValidation, ext)
	}
	s := slug.Make(teamName)
	if s == "" {
		s = "team"
	}
	return fmt.Sprintf("teams/%s/%v%s", s, uuid.New(), ext), nil
}

// Presigner issues time-limited URLs for object storage.
type Presigner interface {
	PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// S3Presigner presigns against an S3-compatible store (MinIO in
// development).
type S3Presigner struct {
	config *sc.Config
}

func NewS3Presigner(config *sc.Config) *S3Presigner {
	return &S3Presigner{config: config}
}

func (p *S3Presigner) client(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(p.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			p.config.S3RootUser,
			p.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(p.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

func (p *S3Presigner) PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error) {
	pc, err := p.client(ctx)
	if err != nil {
		return "", err
	}
	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.config.S3Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign put: %w", err)
	}
	return req.URL, nil
}

func (p *S3Presigner) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	pc, err := p.client(ctx)
	if err != nil {
		return "", err
	}
	req, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.config.S3Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}

// LogoService hands out upload and download URLs for team logos.
type LogoService struct {
	db          *sql.DB
	coord       *dbx.Coordinator
	repomanager repomanager.RepositoryManager
	presigner   Presigner
	ttl         time.Duration
	logger      logging.Logger
}

func NewLogoService(db *sql.DB, coord *dbx.Coordinator, m repomanager.RepositoryManager,
	presigner Presigner, ttl time.Duration, logger logging.Logger) *LogoService {
	return &LogoService{db: db, coord: coord, repomanager: m, presigner: presigner, ttl: ttl, logger: logger}
}

// UploadURL records a new logo key on the team and returns it with a
// presigned PUT URL. The team row stays locked until the key is stored.
func (s *LogoService) UploadURL(ctx context.Context, p guard.Principal, teamID int64, filename string) (string, string, error) {
	var key, url string
	err := s.coord.WithTx(ctx, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Teams(tx)

		t, err := repo.GetForUpdate(ctx, teamID)
		if err != nil {
			return err
		}
		if err := guard.Authorize(p, t); err != nil {
			return err
		}

		key, err = LogoStorageKey(t.Name, filename)
		if err != nil {
			return err
		}
		url, err = s.presigner.PresignPut(ctx, key, s.ttl)
		if err != nil {
			return err
		}
		return repo.Update(ctx, teamID, models.TeamUpdate{Logo: &key})
	})
	if err != nil {
		return "", "", err
	}

	s.logger.Info(ctx, "logo upload issued", "team_id", teamID, "key", key)
	return key, url, nil
}

// DownloadURL returns a presigned GET URL for the team logo. A team without
// a logo is common.ErrorNotFound.
func (s *LogoService) DownloadURL(ctx context.Context, teamID int64) (string, error) {
	t, err := s.repomanager.Teams(s.db).GetByID(ctx, teamID)
	if err != nil {
		return "", err
	}
	if t.Logo == "" {
		return "", common.ErrorNotFound
	}
	return s.presigner.PresignGet(ctx, t.Logo, s.ttl)
}
