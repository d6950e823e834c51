package projections

import (
	"context"
	"net/url"

	"centerdir/internal/domain/directory"
	"centerdir/internal/domain/locale"
)

// Tile is one landing-page link to a center.
type Tile struct {
	CenterID string
	Code     string
	Name     string
	Image    string
	Href     string
}

// GetLandingTilesDeps holds dependencies for QueryGetLandingTiles.
type GetLandingTilesDeps struct {
	CenterStore CenterStore
}

// QueryGetLandingTiles returns one tile per center in name order.
// PRE: none
// POST: Returns tiles or DataUnavailable
func QueryGetLandingTiles(ctx context.Context, lang locale.Lang, deps GetLandingTilesDeps) ([]Tile, error) {
	centers, err := deps.CenterStore.List(ctx)
	if err != nil {
		return nil, directory.Unavailable("list centers", err)
	}

	sorted := newNameSorter(lang).centers(centers)
	tiles := make([]Tile, 0, len(sorted))
	for _, c := range sorted {
		tiles = append(tiles, Tile{
			CenterID: c.ID,
			Code:     c.DisplayCode(),
			Name:     c.Name(lang),
			Image:    c.TileImage(),
			Href:     "/center?id=" + url.QueryEscape(c.ID),
		})
	}
	return tiles, nil
}
