package aws

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/diillson/pep-fetcher-go/internal/domain/entity"
	"github.com/diillson/pep-fetcher-go/internal/domain/repository"
	"github.com/diillson/pep-fetcher-go/internal/shared/types"
)

// S3API is the subset of *s3.Client used by the mirror.
type S3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// MirrorRepositoryImpl copia o zip baixado para um bucket S3.
type MirrorRepositoryImpl struct {
	client S3API
	bucket string
	prefix string
}

// NewMirrorRepository carrega a configuração AWS (perfil/região opcionais) e
// cria o cliente S3. A custom endpoint switches to path-style addressing for
// MinIO or LocalStack.
func NewMirrorRepository(ctx context.Context, cfg types.MirrorConfig) (repository.MirrorRepository, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewMirrorRepositoryWithClient(client, cfg.Bucket, cfg.Prefix), nil
}

// NewMirrorRepositoryWithClient wires an existing S3 client.
func NewMirrorRepositoryWithClient(client S3API, bucket, prefix string) *MirrorRepositoryImpl {
	return &MirrorRepositoryImpl{client: client, bucket: bucket, prefix: prefix}
}

// Mirror uploads the archive under prefix/<identifier>. An object with the same
// key and size is left untouched.
func (r *MirrorRepositoryImpl) Mirror(ctx context.Context, archivePath string, id entity.ArchiveIdentifier) (entity.MirrorResult, error) {
	key := r.objectKey(id)
	location := fmt.Sprintf("s3://%s/%s", r.bucket, key)

	info, err := os.Stat(archivePath)
	if err != nil {
		return entity.MirrorResult{Location: location}, fmt.Errorf("stat archive: %w", err)
	}

	head, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err == nil && aws.ToInt64(head.ContentLength) == info.Size() {
		return entity.MirrorResult{Location: location, Skipped: true}, nil
	}

	file, err := os.Open(archivePath)
	if err != nil {
		return entity.MirrorResult{Location: location}, fmt.Errorf("open archive: %w", err)
	}
	defer file.Close()

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String("application/zip"),
	})
	if err != nil {
		return entity.MirrorResult{Location: location}, fmt.Errorf("s3 put failed for %s: %w", location, err)
	}

	return entity.MirrorResult{Location: location}, nil
}

func (r *MirrorRepositoryImpl) objectKey(id entity.ArchiveIdentifier) string {
	prefix := strings.Trim(r.prefix, "/")
	if prefix == "" {
		return id.FileName()
	}
	return path.Join(prefix, id.FileName())
}
