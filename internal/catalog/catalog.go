// Package catalog provides access to the upstream song catalog: keyword
// search, media-URL resolution and the TTL-bound hot-songs cache.
package catalog

import (
	"context"

	"github.com/nbmusic/remote/internal/models"
)

// MediaURLs is the result of resolving a catalog identifier to playable
// streams: a primary URL, one fallback, and the auxiliary stream identifier
// the player needs alongside the audio.
type MediaURLs struct {
	Primary     string
	Fallback    string
	AuxStreamID string
}

// Source resolves search keywords and identifiers against the upstream
// catalog. Implementations must apply their own bounded timeouts and treat
// timeout identically to failure.
type Source interface {
	Search(ctx context.Context, keyword string, page int) ([]models.CatalogEntry, error)
	ResolveMediaURLs(ctx context.Context, id string) (MediaURLs, error)
}
