package envelope

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cosmos-isolation/core/storage"

	"github.com/minio/minio-go/v7"
)

const s3Scheme = "s3://"

// ErrNoStorage is returned when an s3:// location is used without a storage client.
var ErrNoStorage = errors.New("object storage is not configured")

// Location is where an envelope is read from or written to: a local path, or
// a bucket and key for s3:// locations.
type Location struct {
	Path   string
	Bucket string
	Key    string
}

// ParseLocation parses a local path or an s3://bucket/key reference.
func ParseLocation(s string) (Location, error) {
	if s == "" {
		return Location{}, fmt.Errorf("empty envelope location")
	}
	if !strings.HasPrefix(s, s3Scheme) {
		return Location{Path: s}, nil
	}

	bucket, key, ok := strings.Cut(strings.TrimPrefix(s, s3Scheme), "/")
	if !ok || bucket == "" || key == "" {
		return Location{}, fmt.Errorf("invalid object location %q, expected s3://bucket/key", s)
	}
	return Location{Bucket: bucket, Key: key}, nil
}

// Remote reports whether the location lives in object storage.
func (l Location) Remote() bool {
	return l.Bucket != ""
}

func (l Location) String() string {
	if l.Remote() {
		return s3Scheme + l.Bucket + "/" + l.Key
	}
	return l.Path
}

// Read loads and parses the envelope at loc. client may be nil for local paths.
func Read(ctx context.Context, loc Location, client storage.Client) (*Envelope, Shape, error) {
	if !loc.Remote() {
		f, err := os.Open(loc.Path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, "", fmt.Errorf("input file %q not found: %w", loc.Path, err)
			}
			return nil, "", fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		return Decode(f)
	}

	if client == nil {
		return nil, "", ErrNoStorage
	}
	obj, err := client.GetObject(ctx, loc.Bucket, loc.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get %s: %w", loc, err)
	}
	defer obj.Close()
	return Decode(obj)
}

// Write encodes env and stores it at loc in one step. Local files are written
// to a temporary sibling and renamed, so a failed write never leaves a
// truncated envelope behind. Missing parent directories and buckets are created.
func Write(ctx context.Context, loc Location, client storage.Client, env *Envelope, pretty bool) error {
	var buf bytes.Buffer
	if err := Encode(&buf, env, pretty); err != nil {
		return err
	}

	if !loc.Remote() {
		return writeLocal(loc.Path, buf.Bytes())
	}

	if client == nil {
		return ErrNoStorage
	}
	exists, err := client.BucketExists(ctx, loc.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", loc.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, loc.Bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", loc.Bucket, err)
		}
	}

	size := int64(buf.Len())
	_, err = client.PutObject(ctx, loc.Bucket, loc.Key, &buf, size, minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to put %s: %w", loc, err)
	}
	return nil
}

func writeLocal(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
