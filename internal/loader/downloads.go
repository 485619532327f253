package loader

import (
	"context"
	"fmt"

	"mediadownloader/web/internal/domain"
)

const recentDownloadsLimit = 50

type DownloadsProps struct {
	Records []domain.DownloadRecord
}

func (l *Loader) Downloads(ctx context.Context) Result[DownloadsProps] {
	if l.history == nil {
		return Err[DownloadsProps](fmt.Errorf("download history: %w", domain.ErrNotFound))
	}
	records, err := l.history.ListRecent(ctx, recentDownloadsLimit)
	if err != nil {
		return Err[DownloadsProps](fmt.Errorf("download history: %w", err))
	}
	return Ok(DownloadsProps{Records: records})
}
