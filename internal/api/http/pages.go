package apihttp

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"mediadownloader/web/internal/domain"
	"mediadownloader/web/internal/download"
	"mediadownloader/web/internal/loader"
	"mediadownloader/web/internal/mediaapi"
	"mediadownloader/web/internal/notify"
	"mediadownloader/web/internal/playlist"
	"mediadownloader/web/internal/selection"
)

type pageData struct {
	Title         string
	APIBaseURL    string
	Notifications []notify.Notification
	Page          any
}

type searchView struct {
	loader.SearchProps
	PrevURL string
	NextURL string
}

type entryView struct {
	playlist.Entry
	Href string
}

type detailsView struct {
	loader.DetailsProps
	Entries     []entryView
	ClearURL    string
	DownloadURL string
	Start       string
	End         string
}

type errorView struct {
	Status  int
	Message string
	Trace   string
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	result := s.pages.Home(r.Context())
	if !result.IsOk() {
		s.renderFailure(w, r, result.Failure())
		return
	}
	s.renderPage(w, r, http.StatusOK, "home", "Media Downloader", result.Props())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	result := s.pages.Search(r.Context(), r.URL.Query())
	if !result.IsOk() {
		s.renderFailure(w, r, result.Failure())
		return
	}
	props := result.Props()
	view := searchView{SearchProps: props}
	if props.Pages.HasPrev {
		view.PrevURL = searchURL(props.Keyword, props.Channel, props.Pages.PrevPage)
	}
	if props.Pages.HasNext {
		view.NextURL = searchURL(props.Keyword, props.Channel, props.Pages.NextPage)
	}
	s.renderPage(w, r, http.StatusOK, "search", "Search: "+props.Keyword, view)
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	channel, id := r.PathValue("channel"), r.PathValue("id")
	result := s.pages.Details(r.Context(), channel, id, r.URL.Query())
	if !result.IsOk() {
		s.renderFailure(w, r, result.Failure())
		return
	}

	props := result.Props()
	view := detailsView{
		DetailsProps: props,
		Entries:      make([]entryView, 0, len(props.Entries)),
		ClearURL:     detailsURL(channel, id, selection.Selection{}),
		DownloadURL:  mediaPath(channel, id) + "/download",
	}
	if start := props.Selection.Start(); start.Valid {
		view.Start = strconv.Itoa(start.Value)
	}
	if end := props.Selection.End(); end.Valid {
		view.End = strconv.Itoa(end.Value)
	}
	for _, entry := range props.Entries {
		view.Entries = append(view.Entries, entryView{Entry: entry, Href: detailsURL(channel, id, entry.Next)})
	}

	title := props.Metadata.Name
	if title == "" {
		title = id
	}
	s.renderPage(w, r, http.StatusOK, "details", title, view)
}

// handleDownload submits the posted selection and redirects back to the
// details page carrying whatever selection remains.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	channel, id := r.PathValue("channel"), r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		s.renderFailure(w, r, loader.Err[struct{}](fmt.Errorf("%w: %v", domain.ErrInvalidSelection, err)).Failure())
		return
	}
	current, err := selection.Parse(r.PostForm)
	if err != nil {
		s.renderFailure(w, r, loader.Err[struct{}](err).Failure())
		return
	}

	session := ensureSession(w, r)
	outcome := s.downloads.Submit(r.Context(),
		download.Target{Channel: channel, MediaID: id},
		current,
		notify.SessionSink(s.flash, session, s.logger),
	)
	http.Redirect(w, r, detailsURL(channel, id, outcome.Selection), http.StatusSeeOther)
}

func (s *Server) handleDownloads(w http.ResponseWriter, r *http.Request) {
	if !s.pages.HistoryEnabled() {
		s.handleNotFound(w, r)
		return
	}
	result := s.pages.Downloads(r.Context())
	if !result.IsOk() {
		s.renderFailure(w, r, result.Failure())
		return
	}
	s.renderPage(w, r, http.StatusOK, "downloads", "Recent downloads", result.Props())
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusNotFound, "notfound", "Not found", nil)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, name, title string, page any) {
	data := pageData{
		Title:         title,
		APIBaseURL:    s.publicAPIURL,
		Notifications: s.popNotifications(r),
		Page:          page,
	}
	if err := s.views.render(w, status, name, data); err != nil {
		s.logger.Error("render page failed",
			slog.String("page", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) popNotifications(r *http.Request) []notify.Notification {
	session, ok := readSession(r)
	if !ok {
		return nil
	}
	items, err := s.flash.Pop(r.Context(), session)
	if err != nil {
		s.logger.Warn("flash pop failed", slog.String("error", err.Error()))
		return nil
	}
	return items
}

func (s *Server) renderFailure(w http.ResponseWriter, r *http.Request, failure *loader.Failure) {
	status := statusFor(failure.Err)
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.LogAttrs(r.Context(), level, "page load failed",
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.String("error", failure.Message),
	)
	s.renderPage(w, r, status, "error", "Error", errorView{
		Status:  status,
		Message: failure.Message,
		Trace:   failure.Trace,
	})
}

func (s *Server) renderPanic(w http.ResponseWriter, r *http.Request, recovered any, stack []byte) {
	s.renderPage(w, r, http.StatusInternalServerError, "error", "Error", errorView{
		Status:  http.StatusInternalServerError,
		Message: fmt.Sprint(recovered),
		Trace:   string(stack),
	})
}

func statusFor(err error) int {
	switch {
	case domain.IsInputError(err):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound), mediaapi.StatusCode(err) == http.StatusNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func mediaPath(channel, id string) string {
	return "/channels/" + url.PathEscape(channel) + "/media/" + url.PathEscape(id)
}

func detailsURL(channel, id string, sel selection.Selection) string {
	path := mediaPath(channel, id)
	if query := sel.Encode(); query != "" {
		return path + "?" + query
	}
	return path
}

func searchURL(keyword, channel string, page int) string {
	values := url.Values{"q": {keyword}}
	if channel != "" {
		values.Set("channel", channel)
	}
	if page > 1 {
		values.Set("page", strconv.Itoa(page))
	}
	return "/search?" + values.Encode()
}
