package artifact

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jhoicas/albaranes-api/internal/application/ports"
	"github.com/jhoicas/albaranes-api/pkg/logger"
)

var _ ports.ArtifactStore = (*S3Store)(nil)

// S3Options configuración del almacén S3 (o compatible: MinIO, RustFS).
type S3Options struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// S3Store guarda cada binario con clave <sha256><ext>, de modo que la URL
// depende solo del contenido.
type S3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
	log     *logger.Logger
}

// NewS3Store crea el cliente S3. Sin credenciales usa la cadena por defecto del SDK.
func NewS3Store(ctx context.Context, o S3Options, log *logger.Logger) (*S3Store, error) {
	if o.Bucket == "" {
		return nil, errors.New("s3: bucket requerido")
	}
	if log == nil {
		log = logger.Nop()
	}
	region := o.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if o.AccessKey != "" && o.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: cargar configuración AWS: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(opts *s3.Options) {
		if o.Endpoint != "" {
			opts.BaseEndpoint = aws.String(o.Endpoint)
			opts.UsePathStyle = true
		}
	})

	baseURL := strings.TrimRight(o.PublicBaseURL, "/")
	if baseURL == "" {
		if o.Endpoint != "" {
			baseURL = strings.TrimRight(o.Endpoint, "/") + "/" + o.Bucket
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", o.Bucket, region)
		}
	}
	return &S3Store{client: client, bucket: o.Bucket, baseURL: baseURL, log: log.Named("s3")}, nil
}

// Upload PutObject con clave direccionada por contenido.
func (s *S3Store) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	key := objectKey(data, filename)
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(data),
		ContentLength:      aws.Int64(int64(len(data))),
		ContentType:        aws.String(contentType),
		ContentDisposition: aws.String(fmt.Sprintf("inline; filename=%q", filename)),
	})
	if err != nil {
		s.log.Error().Err(err).Str("bucket", s.bucket).Str("key", key).Msg("fallo al subir a S3")
		return "", fmt.Errorf("s3 put %s: %w", filename, err)
	}
	s.log.Debug().Str("key", key).Int("size", len(data)).Msg("objeto subido a S3")
	return key, nil
}

// URL <base>/<key>.
func (s *S3Store) URL(key string) string {
	return s.baseURL + "/" + key
}

func objectKey(data []byte, filename string) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]) + strings.ToLower(filepath.Ext(filename))
}
