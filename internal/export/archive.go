// Package export uploads plain-text copies of journal entries to an
// S3-compatible bucket (AWS, MinIO).
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/rooznegar/internal/common"
	"github.com/dmitrijs2005/rooznegar/internal/journal"
	"github.com/dmitrijs2005/rooznegar/internal/logging"
)

var ErrArchiveDisabled = errors.New("archive bucket is not configured")

var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
)

type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // empty for AWS, e.g. http://127.0.0.1:9000 for MinIO
	AccessKey string
	SecretKey string
}

func (c Config) Enabled() bool {
	return c.Bucket != ""
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archiver writes FormatText renderings of entries to the bucket under
// "<email>/<id>.txt". The S3 client is created on first use.
type Archiver struct {
	cfg    Config
	loc    *time.Location
	logger logging.Logger

	mu     sync.Mutex
	client objectPutter
}

func NewArchiver(cfg Config, loc *time.Location, l logging.Logger) *Archiver {
	return &Archiver{
		cfg:    cfg,
		loc:    loc,
		logger: l.With("module", "archive"),
	}
}

func (a *Archiver) Enabled() bool {
	return a != nil && a.cfg.Enabled()
}

// Key returns the object key of an entry.
func Key(email, id string) string {
	return strings.ToLower(strings.TrimSpace(email)) + "/" + id + ".txt"
}

// Archive uploads e and returns the object key.
func (a *Archiver) Archive(ctx context.Context, email string, e journal.Entry) (string, error) {
	if !a.Enabled() {
		return "", ErrArchiveDisabled
	}

	client, err := a.getClient(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrService, err)
	}

	key := Key(email, e.ID)
	body := journal.FormatText(e, a.loc)

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.cfg.Bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(body),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		a.logger.Error(ctx, "failed to upload entry", "id", e.ID, "error", err)
		return "", fmt.Errorf("%w: %w", common.ErrService, err)
	}

	a.logger.Info(ctx, "entry archived", "id", e.ID, "key", key)
	return key, nil
}

func (a *Archiver) getClient(ctx context.Context) (objectPutter, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(a.cfg.Region),
	}
	if a.cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			a.cfg.AccessKey,
			a.cfg.SecretKey,
			"",
		)))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	a.client = newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if a.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(a.cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return a.client, nil
}
