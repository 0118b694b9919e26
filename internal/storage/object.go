package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hooplens/hooplens/internal/dataset"
)

var (
	_ Store = (*LocalStore)(nil)
	_ Store = (*ObjectStore)(nil)
)

// ObjectStoreConfig configures the object-storage backend.
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Secure    bool
	Bucket    string
}

// ObjectStore persists snapshots in an S3-compatible bucket under keys
// {prefix}/{table}_{timestamp}.{csv,json}.
type ObjectStore struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewObjectStore connects to the object-storage endpoint and ensures the
// bucket exists.
func NewObjectStore(ctx context.Context, cfg ObjectStoreConfig, logger *slog.Logger) (*ObjectStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("object storage endpoint and bucket are required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("create object storage client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("Created bucket", "bucket", cfg.Bucket)
	}

	return &ObjectStore{client: client, bucket: cfg.Bucket, logger: logger}, nil
}

// Save uploads CSV and JSON snapshots for every non-empty table, all
// sharing one timestamp.
func (s *ObjectStore) Save(ctx context.Context, ds dataset.Dataset, prefix string) error {
	timestamp := time.Now().Format(timestampLayout)

	for _, name := range ds.TableNames() {
		table := ds[name]
		if table.Empty() {
			continue
		}

		var buf bytes.Buffer
		if err := table.WriteCSV(&buf); err != nil {
			return fmt.Errorf("encode table %s: %w", name, err)
		}
		csvKey := prefix + "/" + name + "_" + timestamp + csvExt
		if err := s.put(ctx, csvKey, buf.Bytes(), "text/csv"); err != nil {
			return err
		}

		records, err := table.MarshalRecords()
		if err != nil {
			return fmt.Errorf("encode table %s records: %w", name, err)
		}
		jsonKey := prefix + "/" + name + "_" + timestamp + jsonExt
		if err := s.put(ctx, jsonKey, records, "application/json"); err != nil {
			return err
		}

		s.logger.Info("Saved table snapshot", "table", name, "csv", csvKey, "json", jsonKey)
	}
	return nil
}

func (s *ObjectStore) put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// Load reads one CSV snapshot per table group under prefix.
func (s *ObjectStore) Load(ctx context.Context, prefix string, latestOnly bool) (dataset.Dataset, error) {
	ds := dataset.Dataset{}

	groups, err := s.groupedSnapshots(ctx, prefix)
	if err != nil {
		return ds, err
	}
	if len(groups) == 0 {
		s.logger.Warn("No snapshots found", "bucket", s.bucket, "prefix", prefix)
		return ds, nil
	}

	for name, snaps := range groups {
		chosen := latestOf(snaps, latestOnly)
		obj, err := s.client.GetObject(ctx, s.bucket, chosen.Location, minio.GetObjectOptions{})
		if err != nil {
			return ds, fmt.Errorf("get object %s: %w", chosen.Location, err)
		}
		data, err := io.ReadAll(obj)
		obj.Close()
		if err != nil {
			return ds, fmt.Errorf("read object %s: %w", chosen.Location, err)
		}
		table, err := dataset.ReadCSV(bytes.NewReader(data))
		if err != nil {
			return ds, fmt.Errorf("parse snapshot %s: %w", chosen.Location, err)
		}
		ds[name] = table
		s.logger.Info("Loaded table snapshot", "table", name, "key", chosen.Location)
	}
	return ds, nil
}

// Snapshots lists all CSV artifacts under prefix.
func (s *ObjectStore) Snapshots(ctx context.Context, prefix string) ([]Snapshot, error) {
	groups, err := s.groupedSnapshots(ctx, prefix)
	if err != nil {
		return nil, err
	}
	var all []Snapshot
	for _, snaps := range groups {
		all = append(all, snaps...)
	}
	return all, nil
}

// groupedSnapshots lists objects under prefix and groups CSV artifacts by
// inferred table name.
func (s *ObjectStore) groupedSnapshots(ctx context.Context, prefix string) (map[string][]Snapshot, error) {
	groups := make(map[string][]Snapshot)

	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix + "/",
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects %s/%s: %w", s.bucket, prefix, obj.Err)
		}
		if !strings.HasSuffix(obj.Key, csvExt) {
			continue
		}
		filename := obj.Key[strings.LastIndex(obj.Key, "/")+1:]
		name := tableNameOf(filename)
		groups[name] = append(groups[name], Snapshot{
			Table:    name,
			Location: obj.Key,
			Modified: obj.LastModified,
		})
	}
	return groups, nil
}
