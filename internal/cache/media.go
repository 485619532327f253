package cache

import (
	"context"
	"strings"

	"mediadownloader/web/internal/domain"
)

// MediaReader is the read side of the media API.
type MediaReader interface {
	Search(ctx context.Context, request domain.SearchRequest) (domain.SearchResponse, error)
	GetMetadata(ctx context.Context, channel, id string) (domain.MediaMetadata, error)
	GetPlaylist(ctx context.Context, channel, id string) (domain.MediaPlaylist, error)
	GetChannels(ctx context.Context) (domain.ChannelList, error)
}

type cachedReader struct {
	next  MediaReader
	cache *Cache
}

// WrapReader returns next unchanged when the cache is disabled.
func WrapReader(next MediaReader, c *Cache) MediaReader {
	if !c.Enabled() {
		return next
	}
	return &cachedReader{next: next, cache: c}
}

// Search sends the normalised keyword upstream so that the cached entry
// always answers exactly the request that produced it.
func (r *cachedReader) Search(ctx context.Context, request domain.SearchRequest) (domain.SearchResponse, error) {
	request.Keyword = NormalizeKeyword(request.Keyword)
	request.Channel = strings.TrimSpace(request.Channel)
	return GetOrLoad(ctx, r.cache, SearchKey(request), func(ctx context.Context) (domain.SearchResponse, error) {
		return r.next.Search(ctx, request)
	})
}

func (r *cachedReader) GetMetadata(ctx context.Context, channel, id string) (domain.MediaMetadata, error) {
	return GetOrLoad(ctx, r.cache, MetadataKey(channel, id), func(ctx context.Context) (domain.MediaMetadata, error) {
		return r.next.GetMetadata(ctx, channel, id)
	})
}

func (r *cachedReader) GetPlaylist(ctx context.Context, channel, id string) (domain.MediaPlaylist, error) {
	return GetOrLoad(ctx, r.cache, PlaylistKey(channel, id), func(ctx context.Context) (domain.MediaPlaylist, error) {
		return r.next.GetPlaylist(ctx, channel, id)
	})
}

func (r *cachedReader) GetChannels(ctx context.Context) (domain.ChannelList, error) {
	return GetOrLoad(ctx, r.cache, ChannelsKey(), func(ctx context.Context) (domain.ChannelList, error) {
		return r.next.GetChannels(ctx)
	})
}
