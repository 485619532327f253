package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"mediadownloader/web/internal/domain"
)

type fakeReader struct {
	searchCalls   int
	metadataCalls int
	keywords      []string
	err           error
}

func (f *fakeReader) Search(_ context.Context, request domain.SearchRequest) (domain.SearchResponse, error) {
	f.searchCalls++
	f.keywords = append(f.keywords, request.Keyword)
	if f.err != nil {
		return domain.SearchResponse{}, f.err
	}
	return domain.SearchResponse{
		Items: []domain.MediaMetadata{{Channel: "c1", ID: "m1", Name: request.Keyword}},
		Total: 1,
		Page:  request.Page,
	}, nil
}

func (f *fakeReader) GetMetadata(_ context.Context, channel, id string) (domain.MediaMetadata, error) {
	f.metadataCalls++
	return domain.MediaMetadata{Channel: channel, ID: id, Name: "Show"}, nil
}

func (f *fakeReader) GetPlaylist(_ context.Context, channel, id string) (domain.MediaPlaylist, error) {
	return domain.MediaPlaylist{Channel: channel, MediaID: id}, nil
}

func (f *fakeReader) GetChannels(context.Context) (domain.ChannelList, error) {
	return domain.ChannelList{}, nil
}

type failingBackend struct{}

func (failingBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("backend down")
}

func (failingBackend) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("backend down")
}

func TestWrappedReaderServesRepeatedSearchFromCache(t *testing.T) {
	next := &fakeReader{}
	reader := WrapReader(next, New(NewMemoryBackend(10)))

	for i := 0; i < 3; i++ {
		resp, err := reader.Search(context.Background(), domain.SearchRequest{Keyword: "Naruto", Page: 1})
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(resp.Items) != 1 || resp.Items[0].Name != "Naruto" {
			t.Fatalf("unexpected response: %+v", resp)
		}
	}
	if next.searchCalls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", next.searchCalls)
	}

	// Surrounding whitespace does not create a new entry.
	if _, err := reader.Search(context.Background(), domain.SearchRequest{Keyword: "  Naruto ", Page: 1}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if next.searchCalls != 1 {
		t.Fatalf("expected trimmed keyword to hit cache, got %d calls", next.searchCalls)
	}
}

func TestWrappedReaderKeepsPathPartsApart(t *testing.T) {
	reader := WrapReader(&fakeReader{}, New(NewMemoryBackend(0)))
	ctx := context.Background()

	if _, err := reader.GetMetadata(ctx, "a:b", "c"); err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	got, err := reader.GetMetadata(ctx, "a", "b:c")
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if got.Channel != "a" || got.ID != "b:c" {
		t.Fatalf("expected metadata for a/b:c, got %+v", got)
	}

	if _, err := reader.GetPlaylist(ctx, "a:b", "c"); err != nil {
		t.Fatalf("GetPlaylist: %v", err)
	}
	playlist, err := reader.GetPlaylist(ctx, "a", "b:c")
	if err != nil {
		t.Fatalf("GetPlaylist: %v", err)
	}
	if playlist.Channel != "a" || playlist.MediaID != "b:c" {
		t.Fatalf("expected playlist for a/b:c, got %+v", playlist)
	}
}

func TestWrappedReaderAsksUpstreamForEveryDistinctKeyword(t *testing.T) {
	next := &fakeReader{}
	reader := WrapReader(next, New(NewMemoryBackend(0)))
	ctx := context.Background()

	if _, err := reader.Search(ctx, domain.SearchRequest{Keyword: "Straße"}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	resp, err := reader.Search(ctx, domain.SearchRequest{Keyword: "STRASSE"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Items[0].Name != "STRASSE" {
		t.Fatalf("expected result for STRASSE, got %q", resp.Items[0].Name)
	}
	if len(next.keywords) != 2 || next.keywords[0] != "Straße" || next.keywords[1] != "STRASSE" {
		t.Fatalf("unexpected upstream keywords: %q", next.keywords)
	}
}

func TestWrappedReaderSendsNormalizedKeyword(t *testing.T) {
	next := &fakeReader{}
	reader := WrapReader(next, New(NewMemoryBackend(0)))

	if _, err := reader.Search(context.Background(), domain.SearchRequest{Keyword: "Ｆｏｏ  Bar"}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if _, err := reader.Search(context.Background(), domain.SearchRequest{Keyword: "Foo Bar"}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(next.keywords) != 1 || next.keywords[0] != "Foo Bar" {
		t.Fatalf("expected one upstream call with the normalized keyword, got %q", next.keywords)
	}
}

func TestWrappedReaderDoesNotCacheErrors(t *testing.T) {
	next := &fakeReader{err: errors.New("boom")}
	reader := WrapReader(next, New(NewMemoryBackend(10)))

	for i := 0; i < 2; i++ {
		if _, err := reader.Search(context.Background(), domain.SearchRequest{Keyword: "x"}); err == nil {
			t.Fatalf("expected error")
		}
	}
	if next.searchCalls != 2 {
		t.Fatalf("expected errors to bypass cache, got %d calls", next.searchCalls)
	}
}

func TestWrapReaderWithoutBackendReturnsNext(t *testing.T) {
	next := &fakeReader{}
	if got := WrapReader(next, New(nil)); got != MediaReader(next) {
		t.Fatalf("expected disabled cache to return the wrapped reader")
	}
}

func TestGetOrLoadFallsBackWhenBackendFails(t *testing.T) {
	next := &fakeReader{}
	reader := WrapReader(next, New(failingBackend{}))

	for i := 0; i < 2; i++ {
		if _, err := reader.GetMetadata(context.Background(), "c1", "m1"); err != nil {
			t.Fatalf("GetMetadata: %v", err)
		}
	}
	if next.metadataCalls != 2 {
		t.Fatalf("expected every call to reach upstream, got %d", next.metadataCalls)
	}
}

func TestMemoryBackendExpiresEntries(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	backend := NewMemoryBackend(10)
	backend.now = func() time.Time { return now }

	if err := backend.Set(context.Background(), "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, _ := backend.Get(context.Background(), "k"); !ok {
		t.Fatalf("expected entry before expiry")
	}
	now = now.Add(time.Minute)
	if _, ok, _ := backend.Get(context.Background(), "k"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestMemoryBackendEvictsSoonestToExpire(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	backend := NewMemoryBackend(2)
	backend.now = func() time.Time { return now }
	ctx := context.Background()

	_ = backend.Set(ctx, "short", []byte("1"), time.Second)
	_ = backend.Set(ctx, "long", []byte("2"), time.Hour)
	_ = backend.Set(ctx, "mid", []byte("3"), time.Minute)

	if backend.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", backend.Len())
	}
	if _, ok, _ := backend.Get(ctx, "short"); ok {
		t.Fatalf("expected short-lived entry to be evicted")
	}
}

func TestSearchKey(t *testing.T) {
	a := SearchKey(domain.SearchRequest{Keyword: "foo bar", Channel: "c1"})
	b := SearchKey(domain.SearchRequest{Keyword: "foo bar", Channel: "c1", Page: 1})
	if a != b {
		t.Fatalf("expected default page to share key, got %q and %q", a, b)
	}
	if a == SearchKey(domain.SearchRequest{Keyword: "foo bar", Channel: "c2"}) {
		t.Fatalf("expected channel to be part of the key")
	}
	if SearchKey(domain.SearchRequest{Keyword: "x", Channel: "c:1"}) == SearchKey(domain.SearchRequest{Keyword: "1:x", Channel: "c"}) {
		t.Fatalf("expected separators inside parts to be escaped")
	}
}

func TestNormalizeKeyword(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "  Naruto ", want: "Naruto"},
		{in: "Ｆｏｏ  Bar", want: "Foo Bar"},
		{in: "Straße", want: "Straße"},
		{in: "one\ttwo", want: "one two"},
	}
	for _, tc := range tests {
		if got := NormalizeKeyword(tc.in); got != tc.want {
			t.Errorf("NormalizeKeyword(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
