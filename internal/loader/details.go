package loader

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"

	"mediadownloader/web/internal/domain"
	"mediadownloader/web/internal/playlist"
	"mediadownloader/web/internal/selection"
)

type DetailsProps struct {
	Metadata  domain.MediaMetadata
	Playlist  domain.MediaPlaylist
	Entries   []playlist.Entry
	Selection selection.Selection
	Summary   playlist.Summary
}

// Details loads metadata and playlist concurrently. The selection comes from
// the start and end query parameters.
func (l *Loader) Details(ctx context.Context, channel, id string, query url.Values) Result[DetailsProps] {
	current, err := selection.Parse(query)
	if err != nil {
		return Err[DetailsProps](err)
	}

	var (
		metadata domain.MediaMetadata
		items    domain.MediaPlaylist
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		metadata, err = l.api.GetMetadata(gctx, channel, id)
		if err != nil {
			return fmt.Errorf("metadata %s/%s: %w", channel, id, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		items, err = l.api.GetPlaylist(gctx, channel, id)
		if err != nil {
			return fmt.Errorf("playlist %s/%s: %w", channel, id, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Err[DetailsProps](err)
	}

	return Ok(DetailsProps{
		Metadata:  metadata,
		Playlist:  items,
		Entries:   playlist.Build(items.Items, current, l.rule),
		Selection: current,
		Summary:   playlist.Summarize(current),
	})
}
