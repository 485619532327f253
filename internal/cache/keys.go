package cache

import (
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"mediadownloader/web/internal/domain"
)

// NormalizeKeyword applies NFKC and collapses whitespace. Case is kept: the
// upstream search decides whether case matters.
func NormalizeKeyword(keyword string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(keyword)), " ")
}

// key joins escaped parts so that no part can contain the separator.
func key(kind string, parts ...string) string {
	escaped := make([]string, 0, len(parts)+1)
	escaped = append(escaped, kind)
	for _, part := range parts {
		escaped = append(escaped, url.QueryEscape(part))
	}
	return strings.Join(escaped, ":")
}

// SearchKey expects a request whose keyword already went through
// NormalizeKeyword.
func SearchKey(request domain.SearchRequest) string {
	page := request.Page
	if page <= 0 {
		page = 1
	}
	return key("search", strings.TrimSpace(request.Channel), strconv.Itoa(page), request.Keyword)
}

func MetadataKey(channel, id string) string {
	return key("metadata", channel, id)
}

func PlaylistKey(channel, id string) string {
	return key("playlist", channel, id)
}

func ChannelsKey() string {
	return "channels"
}
