package loader

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"mediadownloader/web/internal/domain"
)

type Pagination struct {
	Page       int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
}

type SearchProps struct {
	Keyword  string
	Channel  string
	Results  domain.SearchResponse
	Channels ChannelOptions
	Pages    Pagination
}

// Search requires a non-blank q and fails before any request is made when it
// is missing. page defaults to 1; channel is optional. Results and the
// channel selector are fetched concurrently.
func (l *Loader) Search(ctx context.Context, query url.Values) Result[SearchProps] {
	keyword := strings.TrimSpace(query.Get("q"))
	if keyword == "" {
		return Err[SearchProps](domain.ErrKeywordRequired)
	}
	request := domain.SearchRequest{
		Keyword: keyword,
		Channel: strings.TrimSpace(query.Get("channel")),
		Page:    parsePage(query.Get("page")),
	}

	var (
		results  domain.SearchResponse
		channels ChannelOptions
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		results, err = l.api.Search(gctx, request)
		if err != nil {
			return fmt.Errorf("search %q: %w", keyword, err)
		}
		return nil
	})
	g.Go(func() error {
		channels = l.channels(gctx, request.Channel)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Err[SearchProps](err)
	}
	if results.Page <= 0 {
		results.Page = request.Page
	}

	return Ok(SearchProps{
		Keyword:  keyword,
		Channel:  request.Channel,
		Results:  results,
		Channels: channels,
		Pages:    Paginate(results.Page, results.PageSize, results.Total, len(results.Items)),
	})
}

func parsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Paginate derives previous/next links. Without a page size the next link is
// offered only when the current page came back non-empty and short of total.
func Paginate(page, pageSize, total, itemCount int) Pagination {
	if page < 1 {
		page = 1
	}
	p := Pagination{Page: page, PrevPage: page - 1, NextPage: page + 1}
	p.HasPrev = page > 1

	if pageSize > 0 {
		p.TotalPages = (total + pageSize - 1) / pageSize
		p.HasNext = page < p.TotalPages
		return p
	}
	p.HasNext = itemCount > 0 && itemCount < total
	return p
}
