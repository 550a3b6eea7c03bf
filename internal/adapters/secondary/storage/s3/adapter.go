// Package s3 implements port.StorageAdapter over AWS S3 and S3-compatible
// services (MinIO, LocalStack), the production backend (spec §4.4).
package s3

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/elnvault/eln-core/internal/core/entity"
	"github.com/elnvault/eln-core/internal/core/port"
)

// Config holds the S3 adapter configuration.
type Config struct {
	Bucket   string
	Region   string
	Endpoint string // for S3-compatible services (MinIO, LocalStack)
}

// Adapter implements port.StorageAdapter for AWS S3 and compatible
// services. Every key the core constructs is already tenant-prefixed, so
// the bucket+key pair alone cannot alias across tenants.
type Adapter struct {
	client *s3.Client
	bucket string
}

// New creates a new S3 storage adapter.
func New(ctx context.Context, cfg Config) (*Adapter, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("s3: loading aws config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return &Adapter{client: s3.NewFromConfig(awsCfg, clientOpts...), bucket: cfg.Bucket}, nil
}

// Put uploads data at key. mustNotExist maps to S3's conditional-write
// header (If-None-Match: *), so the Submission Engine's conditional
// create (spec §4.8 step 5) is a single round trip, not a check-then-act.
func (a *Adapter) Put(ctx context.Context, key string, data io.Reader, size int64, contentType string, mustNotExist bool) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        data,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if mustNotExist {
		input.IfNoneMatch = aws.String("*")
	}

	_, err := a.client.PutObject(ctx, input)
	if err != nil {
		if mustNotExist && isPreconditionFailed(err) {
			return entity.NewError(entity.KindConflict, "object already exists")
		}
		return entity.Wrap(entity.KindIO, "uploading object", err)
	}
	return nil
}

func (a *Adapter) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(a.bucket), Key: aws.String(key)})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, entity.NewError(entity.KindNotFound, "object not found")
		}
		return nil, entity.Wrap(entity.KindIO, "getting object", err)
	}
	return out.Body, nil
}

func (a *Adapter) List(ctx context.Context, prefix string) ([]port.ObjectInfo, error) {
	var out []port.ObjectInfo
	paginator := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, entity.Wrap(entity.KindIO, "listing objects", err)
		}
		for _, obj := range page.Contents {
			info := port.ObjectInfo{Key: aws.ToString(obj.Key)}
			if obj.Size != nil {
				info.SizeBytes = *obj.Size
			}
			if obj.LastModified != nil {
				info.LastModified = obj.LastModified.Unix()
			}
			out = append(out, info)
		}
	}
	return out, nil
}

func (a *Adapter) Delete(ctx context.Context, key string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(a.bucket), Key: aws.String(key)})
	if err != nil {
		return entity.Wrap(entity.KindIO, "deleting object", err)
	}
	return nil
}

// Move copies srcKey to dstKey then deletes srcKey, since S3 has no native
// rename. The copy is conditional on dstKey's absence when mustNotExist is
// set; if the destination already exists its content hash is compared
// against the source before deciding idempotent-success vs. Conflict
// (mirrors the filesystem adapter's decision, SPEC_FULL.md §9).
func (a *Adapter) Move(ctx context.Context, srcKey, dstKey string, mustNotExist bool) error {
	if mustNotExist {
		if same, handled, err := a.resolveExistingDestination(ctx, srcKey, dstKey); err != nil {
			return err
		} else if handled {
			if same {
				_ = a.Delete(ctx, srcKey)
				return nil
			}
			return entity.NewError(entity.KindConflict, "move destination exists with different content")
		}
	}

	copyInput := &s3.CopyObjectInput{
		Bucket:     aws.String(a.bucket),
		CopySource: aws.String(a.bucket + "/" + srcKey),
		Key:        aws.String(dstKey),
	}
	if mustNotExist {
		copyInput.CopySourceIfNoneMatch = aws.String("*")
	}

	_, err := a.client.CopyObject(ctx, copyInput)
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return entity.NewError(entity.KindNotFound, "move source not found")
		}
		if mustNotExist && isPreconditionFailed(err) {
			return entity.NewError(entity.KindConflict, "move destination appeared concurrently")
		}
		return entity.Wrap(entity.KindIO, "copying object", err)
	}

	// Best-effort: per spec §4.4 the delete half of copy-then-delete may
	// fail independently and is retried in the background (§7); the copy
	// having succeeded is what makes the move durable either way.
	if err := a.Delete(ctx, srcKey); err != nil {
		return entity.Wrap(entity.KindPartialFailure, "copy succeeded but delete of source failed", err)
	}
	return nil
}

func (a *Adapter) resolveExistingDestination(ctx context.Context, srcKey, dstKey string) (same bool, handled bool, err error) {
	exists, err := a.Exists(ctx, dstKey)
	if err != nil {
		return false, false, err
	}
	if !exists {
		return false, false, nil
	}

	dstSum, err := a.hashObject(ctx, dstKey)
	if err != nil {
		return false, false, err
	}
	srcSum, err := a.hashObject(ctx, srcKey)
	if err != nil {
		if entity.KindOf(err) == entity.KindNotFound {
			// source already gone, destination present: already moved.
			return true, true, nil
		}
		return false, false, err
	}
	return dstSum == srcSum, true, nil
}

func (a *Adapter) hashObject(ctx context.Context, key string) (string, error) {
	rc, err := a.Get(ctx, key)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	h := sha256.New()
	if _, err := io.Copy(h, rc); err != nil {
		return "", entity.Wrap(entity.KindIO, "hashing object for move comparison", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (a *Adapter) Exists(ctx context.Context, key string) (bool, error) {
	_, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(a.bucket), Key: aws.String(key)})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, entity.Wrap(entity.KindIO, "checking object existence", err)
	}
	return true, nil
}

func isPreconditionFailed(err error) bool {
	var apiErr interface{ ErrorCode() string }
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "PreconditionFailed" || code == "412"
	}
	return false
}

var _ port.StorageAdapter = (*Adapter)(nil)
