// Package blob serves resources from a gocloud.dev bucket. Objects are laid
// out as <basePath>/<culture>/<key>, with invariant resources stored directly
// under <basePath>.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// buckets
	_ "gocloud.dev/blob/memblob"  // mem:// buckets
	"gocloud.dev/gcerrors"

	"github.com/pitabwire/lingua/culture"
	"github.com/pitabwire/lingua/provider"
)

// Provider reads resources from a bucket.
type Provider struct {
	bucket *blob.Bucket
	owned  bool
}

// New wraps an already opened bucket; the caller keeps ownership of it.
func New(bucket *blob.Bucket) *Provider {
	return &Provider{bucket: bucket}
}

// Open opens the bucket at url, e.g. file:///srv/resources or mem://.
// The returned provider closes the bucket on Close.
func Open(ctx context.Context, url string) (*Provider, error) {
	bucket, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("open resource bucket: %w", err)
	}
	return &Provider{bucket: bucket, owned: true}, nil
}

// objectKey maps the triple to an object name. Keys are opaque names inside
// the culture directory; one that is absolute or would leave that directory
// once cleaned has no object.
func objectKey(basePath string, tag culture.Tag, key string) (string, bool) {
	if key == "" || strings.HasPrefix(key, "/") {
		return "", false
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return "", false
		}
	}

	name := strings.TrimPrefix(provider.ObjectPath(basePath, tag, key), "/")
	if prefix := listPrefix(basePath, tag); !strings.HasPrefix(name, prefix) {
		return "", false
	}
	return name, true
}

func listPrefix(basePath string, tag culture.Tag) string {
	dir := strings.TrimPrefix(provider.CultureDir(basePath, tag), "/")
	if dir == "." || dir == "" {
		return ""
	}
	return dir + "/"
}

// Open reads the object for the triple.
func (p *Provider) Open(ctx context.Context, basePath string, tag culture.Tag, key string) ([]byte, error) {
	name, ok := objectKey(basePath, tag, key)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a resource name", provider.ErrNotFound, key)
	}

	data, err := p.bucket.ReadAll(ctx, name)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%w: %s", provider.ErrNotFound, name)
		}
		return nil, err
	}
	return data, nil
}

// Exists reports whether at least one object is stored for the culture.
// Culture subdirectories do not count towards the invariant culture.
func (p *Provider) Exists(ctx context.Context, basePath string, tag culture.Tag) (bool, error) {
	iter := p.bucket.List(&blob.ListOptions{
		Prefix:    listPrefix(basePath, tag),
		Delimiter: "/",
	})

	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if !obj.IsDir {
			return true, nil
		}
		if !tag.IsInvariant() {
			return true, nil
		}
		if _, parseErr := culture.Parse(path.Base(strings.TrimSuffix(obj.Key, "/"))); parseErr != nil {
			// a plain folder of invariant resources
			return true, nil
		}
	}
}

// Close releases the bucket when it was opened by this provider.
func (p *Provider) Close() error {
	if !p.owned {
		return nil
	}
	return p.bucket.Close()
}
