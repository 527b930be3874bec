package objstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"surfgen/internal/core"
)

// Store persists one JSON record object per identity in a bucket, mirroring
// the FileStore layout:
//
//	{prefix}/{kind}/{key[0:2]}/{key}.json
//
// Writes stage the payload under a hidden staging key and publish it with a
// server-side copy, so a writer that dies mid-upload leaves an orphaned
// staging object but never a visible partial record.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// New connects a Store to the configured bucket.
func New(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to object store: %w", err)
	}
	return &Store{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (s *Store) objectKey(id core.Identity) string {
	key := id.Key()
	if len(key) < 2 {
		return path.Join(s.prefix, id.Kind(), key+".json")
	}
	return path.Join(s.prefix, id.Kind(), key[:2], key+".json")
}

// Location returns the committed object URL for an identity.
func (s *Store) Location(id core.Identity) string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.objectKey(id))
}

// Exists reports whether a committed record object is present for id.
func (s *Store) Exists(ctx context.Context, id core.Identity) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, s.objectKey(id), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("checking record %s: %w", id, err)
	}
	return true, nil
}

// Write commits rec for id. An already-committed record is left untouched:
// the first committer wins.
func (s *Store) Write(ctx context.Context, id core.Identity, rec *core.Record) error {
	if rec == nil {
		return fmt.Errorf("record is nil")
	}

	if exists, err := s.Exists(ctx, id); err != nil {
		return err
	} else if exists {
		return nil
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling record %s: %w", id, err)
	}

	staging := path.Join(s.prefix, ".staging", id.Key()+"-"+uuid.NewString()+".json")
	_, err = s.client.PutObject(ctx, s.bucket, staging,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("staging record %s: %w", id, err)
	}
	defer func() {
		_ = s.client.RemoveObject(ctx, s.bucket, staging, minio.RemoveObjectOptions{})
	}()

	// Equal identity means equal payload, so a concurrent committer racing
	// the copy still yields a valid record.
	_, err = s.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: s.bucket, Object: s.objectKey(id)},
		minio.CopySrcOptions{Bucket: s.bucket, Object: staging})
	if err != nil {
		return fmt.Errorf("committing record %s: %w", id, err)
	}
	return nil
}

// Read loads the committed record for id.
func (s *Store) Read(ctx context.Context, id core.Identity) (*core.Record, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.objectKey(id), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("reading record %s: %w", id, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, core.NotFoundError(id)
		}
		return nil, fmt.Errorf("reading record %s: %w", id, err)
	}

	var rec core.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing record %s: %w", id, err)
	}
	if rec.Version != core.DocumentVersion {
		return nil, fmt.Errorf("record %s has unsupported version %d", id, rec.Version)
	}
	return &rec, nil
}
