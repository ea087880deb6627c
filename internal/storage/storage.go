package storage

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

// Resolver resolves opaque file keys to retrievable URLs. The portal stores
// keys only; upload and storage mechanics live with the provider.
type Resolver interface {
	URL(key string) string
}

// NewKey assigns a fresh opaque storage key for an upload, keeping the
// original extension so providers can infer content type.
func NewKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return uuid.NewString() + ext
}

// PublicResolver resolves keys against a public base URL (a CDN or the
// storage provider's public bucket endpoint).
type PublicResolver struct {
	BaseURL string
}

func NewPublicResolver(baseURL string) *PublicResolver {
	return &PublicResolver{BaseURL: strings.TrimSuffix(baseURL, "/")}
}

func (r *PublicResolver) URL(key string) string {
	if key == "" {
		return ""
	}
	return r.BaseURL + "/" + strings.TrimPrefix(key, "/")
}
