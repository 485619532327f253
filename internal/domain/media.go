package domain

import (
	"time"

	"github.com/samber/lo"
)

type MediaMetadata struct {
	Channel     string `json:"channel"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	PosterURL   string `json:"poster_url"`
	ReleaseYear int    `json:"release_year"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
}

// PlaylistItem is one downloadable entry of a media title. Number is the
// caller-defined ordering key and is not necessarily contiguous.
type PlaylistItem struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
	URL    string `json:"url"`
}

type MediaPlaylist struct {
	Channel string         `json:"channel"`
	MediaID string         `json:"media_id"`
	Items   []PlaylistItem `json:"items"`
}

type ListResponse[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

type SearchResponse = ListResponse[MediaMetadata]

type SearchRequest struct {
	Keyword string
	Channel string
	Page    int
}

type Channel struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Default bool   `json:"default,omitempty"`
}

type ChannelList struct {
	Channels []Channel `json:"channels"`
}

// DefaultChannel returns the channel flagged as default, if any.
func (l ChannelList) DefaultChannel() (Channel, bool) {
	return lo.Find(l.Channels, func(channel Channel) bool {
		return channel.Default
	})
}

type BatchDownloadRequest struct {
	Channel     string `json:"channel"`
	MediaID     string `json:"media_id"`
	StartNumber int    `json:"start_number"`
	Count       int    `json:"count"`
}

// DownloadRecord is a batch download request that was accepted by the API.
type DownloadRecord struct {
	ID          string    `json:"id"`
	Channel     string    `json:"channel"`
	MediaID     string    `json:"mediaId"`
	StartNumber int       `json:"startNumber"`
	Count       int       `json:"count"`
	RequestedAt time.Time `json:"requestedAt"`
}
