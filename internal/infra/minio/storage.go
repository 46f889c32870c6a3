package minio

import (
	"context"
	"fmt"
	"os"
	"path"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/motionlab/dance-analysis-service/internal/domain/entity"
)

// Archiver copies completed job artifacts into an object storage bucket,
// keyed by job id. The local workspace copies remain authoritative.
type Archiver struct {
	client *miniogo.Client
	bucket string
}

type ArchiverConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

func NewArchiver(cfg ArchiverConfig) (*Archiver, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &Archiver{client: client, bucket: cfg.Bucket}, nil
}

func (a *Archiver) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", a.bucket, err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, miniogo.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", a.bucket, err)
		}
	}
	return nil
}

func (a *Archiver) ArchiveJob(ctx context.Context, job *entity.Job) error {
	objects := []struct {
		localPath   string
		name        string
		contentType string
	}{
		{job.OverlayPath, "overlay.mp4", "video/mp4"},
		{job.SkeletonPath, "skeleton.mp4", "video/mp4"},
		{job.ResultsPath, "results.json", "application/json"},
	}

	for _, obj := range objects {
		if obj.localPath == "" {
			continue
		}
		if _, err := os.Stat(obj.localPath); err != nil {
			continue
		}
		key := path.Join(job.ID.String(), obj.name)
		_, err := a.client.FPutObject(ctx, a.bucket, key, obj.localPath, miniogo.PutObjectOptions{
			ContentType: obj.contentType,
		})
		if err != nil {
			return fmt.Errorf("archive %s: %w", key, err)
		}
	}
	return nil
}
