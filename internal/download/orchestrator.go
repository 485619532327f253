// Package download turns the current playlist selection into one batch
// download submission.
package download

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mediadownloader/web/internal/domain"
	"mediadownloader/web/internal/metrics"
	"mediadownloader/web/internal/notify"
	"mediadownloader/web/internal/selection"
)

const (
	messageFailed = "Failed to start download"
	tracerName    = "mediadownloader/web/internal/download"
)

type BatchDownloader interface {
	BatchDownload(ctx context.Context, request domain.BatchDownloadRequest) (string, error)
}

// Recorder persists accepted submissions.
type Recorder interface {
	Record(ctx context.Context, record domain.DownloadRecord) error
}

// Target identifies the media title whose playlist is being downloaded.
type Target struct {
	Channel string
	MediaID string
}

// Outcome reports what Submit did.
type Outcome struct {
	Submitted bool
	Request   domain.BatchDownloadRequest
	Selection selection.Selection
	Err       error
}

type Orchestrator struct {
	api      BatchDownloader
	recorder Recorder
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

type Option func(*Orchestrator)

func WithRecorder(recorder Recorder) Option {
	return func(o *Orchestrator) {
		o.recorder = recorder
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func NewOrchestrator(api BatchDownloader, options ...Option) *Orchestrator {
	o := &Orchestrator{
		api:    api,
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
	}
	for _, option := range options {
		if option != nil {
			option(o)
		}
	}
	return o
}

// BuildRequest derives the batch request for sel. ok is false when nothing
// is selected.
func BuildRequest(target Target, sel selection.Selection) (domain.BatchDownloadRequest, bool) {
	start, end := sel.Start(), sel.End()
	if !start.Valid && !end.Valid {
		return domain.BatchDownloadRequest{}, false
	}

	startNumber := start.Value
	if !start.Valid {
		startNumber = end.Value
	}
	count := 1
	if start.Valid && end.Valid {
		count = end.Value - start.Value + 1
	}

	return domain.BatchDownloadRequest{
		Channel:     target.Channel,
		MediaID:     target.MediaID,
		StartNumber: startNumber,
		Count:       count,
	}, true
}

// SuccessMessage is the notification text for an accepted request of count
// entries.
func SuccessMessage(count int) string {
	if count > 1 {
		return fmt.Sprintf("%d episodes download started", count)
	}
	return "Download started"
}

// Submit sends one batch request for sel and reports the result to sink.
// On success the returned selection is cleared; on failure it is sel
// unchanged. An empty selection is a no-op.
func (o *Orchestrator) Submit(ctx context.Context, target Target, sel selection.Selection, sink notify.Sink) Outcome {
	if sink == nil {
		sink = notify.Discard
	}

	request, ok := BuildRequest(target, sel)
	if !ok {
		return Outcome{Selection: sel}
	}

	ctx, span := o.tracer.Start(ctx, "download.Submit", trace.WithAttributes(
		attribute.String("media.channel", request.Channel),
		attribute.String("media.id", request.MediaID),
		attribute.Int("download.start_number", request.StartNumber),
		attribute.Int("download.count", request.Count),
	))
	defer span.End()

	if _, err := o.api.BatchDownload(ctx, request); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch download failed")
		metrics.BatchDownloadsTotal.WithLabelValues("failed").Inc()
		o.logger.Error("batch download failed",
			slog.String("channel", request.Channel),
			slog.String("mediaId", request.MediaID),
			slog.Int("startNumber", request.StartNumber),
			slog.Int("count", request.Count),
			slog.String("error", err.Error()),
		)
		sink.Notify(ctx, notify.Error(messageFailed))
		return Outcome{Request: request, Selection: sel, Err: err}
	}

	metrics.BatchDownloadsTotal.WithLabelValues("accepted").Inc()
	metrics.BatchDownloadEpisodes.Add(float64(request.Count))
	o.logger.Info("batch download started",
		slog.String("channel", request.Channel),
		slog.String("mediaId", request.MediaID),
		slog.Int("startNumber", request.StartNumber),
		slog.Int("count", request.Count),
	)
	o.record(ctx, request)
	sink.Notify(ctx, notify.Success(SuccessMessage(request.Count)))

	return Outcome{Submitted: true, Request: request, Selection: sel.Clear()}
}

func (o *Orchestrator) record(ctx context.Context, request domain.BatchDownloadRequest) {
	if o.recorder == nil {
		return
	}
	err := o.recorder.Record(ctx, domain.DownloadRecord{
		Channel:     request.Channel,
		MediaID:     request.MediaID,
		StartNumber: request.StartNumber,
		Count:       request.Count,
		RequestedAt: o.now().UTC(),
	})
	if err != nil {
		o.logger.Warn("download history write failed", slog.String("error", err.Error()))
	}
}
