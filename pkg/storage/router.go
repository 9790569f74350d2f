package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "github.com/mppkit/mppconvert/pkg/config"
)

// Router dispatches paths and s3:// URLs to the matching store. S3
// clients are created on first use and shared per bucket.
type Router struct {
	local *LocalStore
	cfg   appconfig.StorageConfig

	mu      sync.Mutex
	awsCfg  *aws.Config
	buckets map[string]BlobStore
}

func NewRouter(cfg appconfig.StorageConfig) *Router {
	return &Router{
		local:   NewLocalStore(""),
		cfg:     cfg,
		buckets: make(map[string]BlobStore),
	}
}

// WithBucket registers a store for bucket, replacing the default S3
// client. Used to point a router at a test endpoint.
func (r *Router) WithBucket(bucket string, store BlobStore) *Router {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buckets[bucket] = store
	return r
}

func (r *Router) resolve(ctx context.Context, raw string) (BlobStore, Location, error) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return nil, Location{}, err
	}
	if !loc.IsRemote() {
		return r.local, loc, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.buckets[loc.Bucket]; ok {
		return s, loc, nil
	}
	if r.awsCfg == nil {
		var opts []func(*awsconfig.LoadOptions) error
		if r.cfg.Region != "" {
			opts = append(opts, awsconfig.WithRegion(r.cfg.Region))
		}
		if r.cfg.Profile != "" {
			opts = append(opts, awsconfig.WithSharedConfigProfile(r.cfg.Profile))
		}
		c, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, Location{}, fmt.Errorf("failed to load AWS config: %w", err)
		}
		r.awsCfg = &c
	}
	s := NewS3Store(*r.awsCfg, loc.Bucket, func(o *s3.Options) {
		if r.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(r.cfg.Endpoint)
		}
		o.UsePathStyle = r.cfg.UsePathStyle
	})
	r.buckets[loc.Bucket] = s
	return s, loc, nil
}

// Open implements reference.Opener.
func (r *Router) Open(ctx context.Context, raw string) (io.ReadCloser, error) {
	s, loc, err := r.resolve(ctx, raw)
	if err != nil {
		return nil, err
	}
	return s.Open(ctx, loc.Key)
}

// ReadAll fetches the whole object at raw.
func (r *Router) ReadAll(ctx context.Context, raw string) ([]byte, error) {
	rc, err := r.Open(ctx, raw)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Write stores data at raw.
func (r *Router) Write(ctx context.Context, raw string, data []byte) error {
	s, loc, err := r.resolve(ctx, raw)
	if err != nil {
		return err
	}
	return s.Put(ctx, loc.Key, data)
}

// WriteFrom drains w into the object at raw.
func (r *Router) WriteFrom(ctx context.Context, raw string, w io.WriterTo) error {
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return err
	}
	return r.Write(ctx, raw, buf.Bytes())
}

func hasExt(key, ext string) bool {
	return strings.EqualFold(filepath.Ext(key), ext)
}
