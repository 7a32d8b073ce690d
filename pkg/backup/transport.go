package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/handybase/handy/pkg/email"
	"github.com/handybase/handy/pkg/mailqueue"
	"github.com/handybase/handy/pkg/taskqueue"
)

// Transport delivers one finished dump. The name carries the timestamped
// filename; the reader streams the gzipped dump.
type Transport interface {
	Store(ctx context.Context, name string, r io.Reader) error
}

// FileTransport copies dumps into a local directory.
type FileTransport struct {
	dir string
}

// NewFileTransport creates a transport writing under dir, creating it on
// first use.
func NewFileTransport(dir string) *FileTransport {
	return &FileTransport{dir: dir}
}

// Store implements Transport.
func (t *FileTransport) Store(ctx context.Context, name string, r io.Reader) error {
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(t.dir, name))
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// S3Config carries bucket settings from the environment. Credentials and
// region resolve through the standard AWS chain.
type S3Config struct {
	Bucket string `env:"BACKUP_S3_BUCKET,required"`
	Prefix string `env:"BACKUP_S3_PREFIX" envDefault:"backups/"`
}

// S3Transport uploads dumps to an S3 bucket.
type S3Transport struct {
	client *s3.Client
	cfg    S3Config
}

// NewS3Transport creates a transport over an existing S3 client.
func NewS3Transport(client *s3.Client, cfg S3Config) *S3Transport {
	return &S3Transport{client: client, cfg: cfg}
}

// NewS3Client builds an S3 client from the ambient AWS configuration.
func NewS3Client(ctx context.Context) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg), nil
}

// Store implements Transport.
func (t *S3Transport) Store(ctx context.Context, name string, r io.Reader) error {
	_, err := t.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(t.cfg.Bucket),
		Key:         aws.String(t.cfg.Prefix + name),
		Body:        r,
		ContentType: aws.String("application/gzip"),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("s3 upload rejected (%s): %w", apiErr.ErrorCode(), err)
		}
		return err
	}
	return nil
}

// MailTransport queues dumps as email attachments for the operators.
type MailTransport struct {
	queue taskqueue.Store
	to    string
}

// NewMailTransport creates a transport that enqueues each dump to the given
// recipient via the mail queue.
func NewMailTransport(queue taskqueue.Store, to string) *MailTransport {
	return &MailTransport{queue: queue, to: to}
}

// Store implements Transport. The dump is read fully into memory; this path
// suits small databases only.
func (t *MailTransport) Store(ctx context.Context, name string, r io.Reader) error {
	content, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	return mailqueue.Enqueue(ctx, t.queue, email.Message{
		To:       t.to,
		Subject:  "Database backup " + name,
		TextBody: "Attached is the scheduled database backup.",
		Tag:      "backup",
		Attachments: []email.Attachment{{
			Name:        name,
			ContentType: "application/gzip",
			Content:     content,
		}},
	})
}
