// Package loader fetches the data each page needs and returns it as a
// Result, so that the HTTP layer renders either the page or the error page.
package loader

import (
	"context"
	"log/slog"

	"mediadownloader/web/internal/domain"
	"mediadownloader/web/internal/selection"
)

type MediaReader interface {
	Search(ctx context.Context, request domain.SearchRequest) (domain.SearchResponse, error)
	GetMetadata(ctx context.Context, channel, id string) (domain.MediaMetadata, error)
	GetPlaylist(ctx context.Context, channel, id string) (domain.MediaPlaylist, error)
	GetChannels(ctx context.Context) (domain.ChannelList, error)
}

type HistoryLister interface {
	ListRecent(ctx context.Context, limit int) ([]domain.DownloadRecord, error)
}

type Loader struct {
	api     MediaReader
	history HistoryLister
	rule    selection.Rule
	logger  *slog.Logger
}

type Option func(*Loader)

func WithHistory(history HistoryLister) Option {
	return func(l *Loader) {
		l.history = history
	}
}

// WithRule sets how pending selections are completed on the details page.
func WithRule(rule selection.Rule) Option {
	return func(l *Loader) {
		l.rule = rule
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func New(api MediaReader, options ...Option) *Loader {
	l := &Loader{
		api:    api,
		rule:   selection.RuleTruthy,
		logger: slog.Default(),
	}
	for _, option := range options {
		if option != nil {
			option(l)
		}
	}
	return l
}

func (l *Loader) HistoryEnabled() bool {
	return l.history != nil
}

// ChannelOptions is the channel selector shown on the home and search pages.
type ChannelOptions struct {
	Channels []domain.Channel
	Selected string
}

type HomeProps struct {
	Channels ChannelOptions
}

func (l *Loader) Home(ctx context.Context) Result[HomeProps] {
	return Ok(HomeProps{Channels: l.channels(ctx, "")})
}

// channels loads the selector options. Failure leaves the selector empty.
func (l *Loader) channels(ctx context.Context, selected string) ChannelOptions {
	list, err := l.api.GetChannels(ctx)
	if err != nil {
		l.logger.Warn("channel list unavailable", slog.String("error", err.Error()))
		return ChannelOptions{Selected: selected}
	}
	if selected == "" {
		if channel, ok := list.DefaultChannel(); ok {
			selected = channel.ID
		}
	}
	return ChannelOptions{Channels: list.Channels, Selected: selected}
}
