package announce

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"github.com/hitoshi/evno/internal/model"
	"github.com/hitoshi/evno/internal/repository"
)

// Sanitizer は取り込んだお知らせの無害化インターフェース。
type Sanitizer interface {
	Sanitize(rawHTML string) string
	SanitizeText(raw string) string
}

// MetricsRecorder はフェッチ処理のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordFetchSuccess(vendorID string)
	RecordFetchFailure(vendorID string, reason string)
	RecordParseFailure(vendorID string)
	RecordHTTPStatus(statusCode int)
	RecordFetchLatency(duration time.Duration)
	RecordAnnouncementsUpserted(count int)
}

// Fetcher は個別の告知フィードのHTTPフェッチとパースを行う。
// ETag/Last-Modifiedを使用した条件付きGET、SSRF検証、
// gofeedによるパース、お知らせのUPSERTを実行する。
type Fetcher struct {
	feedRepo    repository.VendorFeedRepository
	annRepo     repository.AnnouncementRepository
	sanitizer   Sanitizer
	ssrfGuard   SSRFValidator
	metrics     MetricsRecorder
	logger      *slog.Logger
	timeout     time.Duration
	maxBodySize int64
	interval    time.Duration
}

// NewFetcher はFetcherの新しいインスタンスを生成する。
// intervalは成功時の次回フェッチまでの間隔。metricsはnil可。
func NewFetcher(
	feedRepo repository.VendorFeedRepository,
	annRepo repository.AnnouncementRepository,
	sanitizer Sanitizer,
	ssrfGuard SSRFValidator,
	metrics MetricsRecorder,
	logger *slog.Logger,
	timeout time.Duration,
	maxBodySize int64,
	interval time.Duration,
) *Fetcher {
	return &Fetcher{
		feedRepo:    feedRepo,
		annRepo:     annRepo,
		sanitizer:   sanitizer,
		ssrfGuard:   ssrfGuard,
		metrics:     metrics,
		logger:      logger,
		timeout:     timeout,
		maxBodySize: maxBodySize,
		interval:    interval,
	}
}

// Fetch は告知フィードをフェッチし、結果に応じてフィード状態を更新する。
// AnnouncementFetcherServiceインターフェースを実装する。
func (f *Fetcher) Fetch(ctx context.Context, feed *model.VendorFeed) error {
	start := time.Now()

	// SSRF検証
	if err := f.ssrfGuard.ValidateURL(feed.FeedURL); err != nil {
		f.logger.Error("SSRF検証に失敗しました",
			slog.String("vendor_id", feed.VendorID),
			slog.String("feed_url", feed.FeedURL),
			slog.String("error", err.Error()),
		)
		ApplyStopFeed(feed, fmt.Sprintf("SSRF検証失敗: %s", err.Error()))
		if updateErr := f.feedRepo.UpdateFetchState(ctx, feed); updateErr != nil {
			f.logger.Error("フィード状態の更新に失敗しました",
				slog.String("vendor_id", feed.VendorID),
				slog.String("error", updateErr.Error()),
			)
		}
		if f.metrics != nil {
			f.metrics.RecordFetchFailure(feed.VendorID, "ssrf_blocked")
		}
		return fmt.Errorf("SSRF検証に失敗: %w", err)
	}

	// HTTPリクエスト構築
	client := f.ssrfGuard.NewSafeClient(f.timeout, f.maxBodySize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.FeedURL, nil)
	if err != nil {
		return fmt.Errorf("リクエスト作成に失敗: %w", err)
	}

	req.Header.Set("User-Agent", "Evno/1.0 Announcement Reader")
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml, */*")

	// 条件付きGET: ETag
	if feed.ETag != "" {
		req.Header.Set("If-None-Match", feed.ETag)
	}
	// 条件付きGET: Last-Modified
	if feed.LastModified != "" {
		req.Header.Set("If-Modified-Since", feed.LastModified)
	}

	// HTTPリクエスト実行
	resp, err := client.Do(req)
	if err != nil {
		f.logger.Error("HTTPリクエストに失敗しました",
			slog.String("vendor_id", feed.VendorID),
			slog.String("feed_url", feed.FeedURL),
			slog.String("error", err.Error()),
		)
		ApplyBackoff(feed, fmt.Sprintf("HTTPリクエスト失敗: %s", err.Error()))
		if updateErr := f.feedRepo.UpdateFetchState(ctx, feed); updateErr != nil {
			f.logger.Error("フィード状態の更新に失敗しました",
				slog.String("vendor_id", feed.VendorID),
				slog.String("error", updateErr.Error()),
			)
		}
		if f.metrics != nil {
			f.metrics.RecordFetchFailure(feed.VendorID, "request_error")
		}
		return fmt.Errorf("HTTPリクエスト失敗: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start)

	if f.metrics != nil {
		f.metrics.RecordHTTPStatus(resp.StatusCode)
		f.metrics.RecordFetchLatency(duration)
	}

	// HTTPステータスに基づく処理分岐
	result := ClassifyHTTPStatus(resp.StatusCode)

	switch result {
	case FetchResultNotModified:
		// 304: コンテンツ未変更 - next_fetch_atのみ更新
		f.logger.Info("告知フィードは未変更です（304）",
			slog.String("vendor_id", feed.VendorID),
			slog.String("feed_url", feed.FeedURL),
			slog.Int("http_status", resp.StatusCode),
			slog.Float64("duration_ms", float64(duration.Milliseconds())),
		)
		ApplySuccess(feed, f.interval)
		if f.metrics != nil {
			f.metrics.RecordFetchSuccess(feed.VendorID)
		}
		return f.feedRepo.UpdateFetchState(ctx, feed)

	case FetchResultStop:
		// 404/410/401/403: フェッチ停止
		reason := fmt.Sprintf("HTTPステータス %d によりフェッチを停止しました", resp.StatusCode)
		f.logger.Warn("告知フィードのフェッチを停止します",
			slog.String("vendor_id", feed.VendorID),
			slog.String("feed_url", feed.FeedURL),
			slog.Int("http_status", resp.StatusCode),
			slog.String("reason", reason),
		)
		ApplyStopFeed(feed, reason)
		if f.metrics != nil {
			f.metrics.RecordFetchFailure(feed.VendorID, "http_stop")
		}
		return f.feedRepo.UpdateFetchState(ctx, feed)

	case FetchResultBackoff:
		// 429/5xx: バックオフ
		reason := fmt.Sprintf("HTTPステータス %d によりバックオフを適用しました", resp.StatusCode)
		f.logger.Warn("告知フィードのフェッチにバックオフを適用します",
			slog.String("vendor_id", feed.VendorID),
			slog.String("feed_url", feed.FeedURL),
			slog.Int("http_status", resp.StatusCode),
			slog.Int("consecutive_errors", feed.ConsecutiveErrors+1),
		)
		ApplyBackoff(feed, reason)
		if f.metrics != nil {
			f.metrics.RecordFetchFailure(feed.VendorID, "http_backoff")
		}
		return f.feedRepo.UpdateFetchState(ctx, feed)

	case FetchResultOK:
		// 200: 正常フェッチ - 以下で処理を続行
	default:
		// その他のステータスコード
		f.logger.Warn("予期しないHTTPステータスコード",
			slog.String("vendor_id", feed.VendorID),
			slog.Int("http_status", resp.StatusCode),
		)
		ApplyBackoff(feed, fmt.Sprintf("予期しないHTTPステータス: %d", resp.StatusCode))
		return f.feedRepo.UpdateFetchState(ctx, feed)
	}

	// レスポンスボディを読み込み（最大サイズ制限付き）
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		f.logger.Error("レスポンスボディの読み取りに失敗しました",
			slog.String("vendor_id", feed.VendorID),
			slog.String("error", err.Error()),
		)
		ApplyBackoff(feed, fmt.Sprintf("レスポンス読み取り失敗: %s", err.Error()))
		return f.feedRepo.UpdateFetchState(ctx, feed)
	}

	// ETag/Last-Modifiedを保存
	if etag := resp.Header.Get("ETag"); etag != "" {
		feed.ETag = etag
	}
	if lastMod := resp.Header.Get("Last-Modified"); lastMod != "" {
		feed.LastModified = lastMod
	}

	// gofeedでフィードをパース
	parser := gofeed.NewParser()
	parsedFeed, err := parser.ParseString(string(body))
	if err != nil {
		f.logger.Error("告知フィードのパースに失敗しました",
			slog.String("vendor_id", feed.VendorID),
			slog.String("feed_url", feed.FeedURL),
			slog.String("error", err.Error()),
		)
		ApplyParseFailure(feed, err.Error())
		if f.metrics != nil {
			f.metrics.RecordParseFailure(feed.VendorID)
		}
		if updateErr := f.feedRepo.UpdateFetchState(ctx, feed); updateErr != nil {
			f.logger.Error("フィード状態の更新に失敗しました",
				slog.String("vendor_id", feed.VendorID),
				slog.String("error", updateErr.Error()),
			)
		}
		return nil // パース失敗はフェッチエラーとしない（カウントして継続）
	}

	// お知らせをUPSERT
	inserted, updated, err := f.upsertAnnouncements(ctx, feed.VendorID, parsedFeed.Items)
	if err != nil {
		f.logger.Error("お知らせのUPSERTに失敗しました",
			slog.String("vendor_id", feed.VendorID),
			slog.String("error", err.Error()),
		)
		ApplyParseFailure(feed, fmt.Sprintf("お知らせUPSERT失敗: %s", err.Error()))
		if updateErr := f.feedRepo.UpdateFetchState(ctx, feed); updateErr != nil {
			f.logger.Error("フィード状態の更新に失敗しました",
				slog.String("vendor_id", feed.VendorID),
				slog.String("error", updateErr.Error()),
			)
		}
		return nil
	}

	ApplySuccess(feed, f.interval)

	if f.metrics != nil {
		f.metrics.RecordFetchSuccess(feed.VendorID)
		f.metrics.RecordAnnouncementsUpserted(inserted + updated)
	}

	// フィード状態を更新
	if updateErr := f.feedRepo.UpdateFetchState(ctx, feed); updateErr != nil {
		f.logger.Error("フィード状態の更新に失敗しました",
			slog.String("vendor_id", feed.VendorID),
			slog.String("error", updateErr.Error()),
		)
		return updateErr
	}

	f.logger.Info("告知フィードのフェッチが完了しました",
		slog.String("vendor_id", feed.VendorID),
		slog.String("feed_url", feed.FeedURL),
		slog.Int("http_status", resp.StatusCode),
		slog.Int("announcements_inserted", inserted),
		slog.Int("announcements_updated", updated),
		slog.Int("items_total", len(parsedFeed.Items)),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// upsertAnnouncements はgofeedの記事をお知らせとして保存する。
// vendor_idとlinkの組で同一性を判定し、既存のお知らせは上書き更新する。
// 戻り値は（新規件数, 更新件数, エラー）。
func (f *Fetcher) upsertAnnouncements(ctx context.Context, vendorID string, items []*gofeed.Item) (int, int, error) {
	inserted := 0
	updated := 0

	for _, item := range items {
		if item == nil {
			continue
		}

		link := resolveItemLink(item)
		if link == "" {
			// link無しの記事は同一性判定不能のためスキップ
			continue
		}

		title := f.sanitizer.SanitizeText(item.Title)
		if title == "" {
			title = "(無題)"
		}
		summary := f.sanitizer.Sanitize(item.Description)

		publishedAt := resolvePublishedAt(item)

		existing, err := f.annRepo.FindByVendorAndLink(ctx, vendorID, link)
		if err != nil {
			return inserted, updated, fmt.Errorf("お知らせの検索に失敗しました: %w", err)
		}

		if existing == nil {
			announcement := &model.Announcement{
				ID:          uuid.New().String(),
				VendorID:    vendorID,
				Title:       title,
				Link:        link,
				Summary:     summary,
				PublishedAt: publishedAt,
				CreatedAt:   time.Now(),
			}
			if err := f.annRepo.Create(ctx, announcement); err != nil {
				return inserted, updated, fmt.Errorf("お知らせの作成に失敗しました: %w", err)
			}
			inserted++
			continue
		}

		// 変更がない場合は書き込みを省略
		if existing.Title == title && existing.Summary == summary && existing.PublishedAt.Equal(publishedAt) {
			continue
		}

		existing.Title = title
		existing.Summary = summary
		existing.PublishedAt = publishedAt
		if err := f.annRepo.Update(ctx, existing); err != nil {
			return inserted, updated, fmt.Errorf("お知らせの更新に失敗しました: %w", err)
		}
		updated++
	}

	return inserted, updated, nil
}

// resolveItemLink は記事のリンクを決定する。
// Linkが空でGUIDがURL形式の場合はGUIDをリンクとして使用する。
func resolveItemLink(item *gofeed.Item) string {
	if item.Link != "" {
		return item.Link
	}
	if strings.HasPrefix(item.GUID, "http://") || strings.HasPrefix(item.GUID, "https://") {
		return item.GUID
	}
	return ""
}

// resolvePublishedAt は記事の公開日時を決定する。
// 公開日時が取得できない場合は現在時刻を使用する。
func resolvePublishedAt(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Now()
}
