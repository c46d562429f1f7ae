package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"petcare-client/internal/ports/media"
)

var ErrNotConfigured = errors.New("s3 upload not configured")

const DefaultMaxSize = 20 << 20

type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // opcional, para servicios S3-compatibles
	AccessKey string
	SecretKey string
	// PublicURL es la base pública de los objetos; vacío => https://<bucket>.s3.<region>.amazonaws.com
	PublicURL string
	Prefix    string
	MaxSize   int64
}

// Uploader sube objetos públicos a un bucket S3 (o compatible).
type Uploader struct {
	api       s3iface.S3API
	bucket    string
	publicURL string
	prefix    string
	maxSize   int64
}

func NewUploader(cfg Config) (*Uploader, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, ErrNotConfigured
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	awsCfg := &aws.Config{Region: aws.String(region)}
	if ep := strings.TrimSpace(cfg.Endpoint); ep != "" {
		awsCfg.Endpoint = aws.String(ep)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("s3 session: %w", err)
	}
	return NewWithAPI(awss3.New(sess), cfg), nil
}

// NewWithAPI permite inyectar el cliente (tests).
func NewWithAPI(api s3iface.S3API, cfg Config) *Uploader {
	bucket := strings.TrimSpace(cfg.Bucket)
	public := strings.TrimRight(strings.TrimSpace(cfg.PublicURL), "/")
	if public == "" {
		region := strings.TrimSpace(cfg.Region)
		if region == "" {
			region = "us-east-1"
		}
		public = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Uploader{
		api:       api,
		bucket:    bucket,
		publicURL: public,
		prefix:    strings.Trim(strings.TrimSpace(cfg.Prefix), "/"),
		maxSize:   maxSize,
	}
}

var _ media.Uploader = (*Uploader)(nil)

func (u *Uploader) Upload(ctx context.Context, name string, r io.Reader) (media.Upload, error) {
	if u == nil || u.api == nil {
		return media.Upload{}, ErrNotConfigured
	}

	data, err := io.ReadAll(io.LimitReader(r, u.maxSize+1))
	if err != nil {
		return media.Upload{}, fmt.Errorf("read file: %w", err)
	}
	if int64(len(data)) > u.maxSize {
		return media.Upload{}, errors.New("file too large")
	}

	mt := mimetype.Detect(data)
	ct := mt.String()
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}

	key := u.key(name, mt.Extension())
	_, err = u.api.PutObjectWithContext(ctx, &awss3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(ct),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return media.Upload{}, fmt.Errorf("unable to upload file to S3: %w", err)
	}

	return media.Upload{
		URL:         u.publicURL + "/" + key,
		ContentType: ct,
		Kind:        media.KindFromContentType(ct),
		Size:        int64(len(data)),
	}, nil
}

// key: <prefix>/<uuid><ext>. La extensión del nombre manda; si no hay, la detectada.
func (u *Uploader) key(name, detectedExt string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
	if ext == "" {
		ext = detectedExt
	}
	k := uuid.NewString() + ext
	if u.prefix != "" {
		k = path.Join(u.prefix, k)
	}
	return k
}
