package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"github.com/lingvoclub/placement-backend/internal/config"
	"github.com/lingvoclub/placement-backend/internal/model"
	"github.com/lingvoclub/placement-backend/internal/repository"
	"github.com/lingvoclub/placement-backend/internal/service"
)

const (
	ExportPollTimeout = 1 * time.Second

	exportSheetTitle = "Результаты прохождения теста"
)

// ExportWorker consumes export jobs from Redis and renders all finished
// results into an xlsx file under the export directory. Jobs are
// idempotent full exports, so losing or coalescing duplicates is harmless.
type ExportWorker struct {
	results *repository.ResultRepository
	rdb     *redis.Client
	cfg     *config.Config
	log     zerolog.Logger
}

// NewExportWorker creates a new ExportWorker.
func NewExportWorker(results *repository.ResultRepository, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *ExportWorker {
	return &ExportWorker{
		results: results,
		rdb:     rdb,
		cfg:     cfg,
		log:     log.With().Str("component", "export_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop
// ----------------------------------------------------------------

func (w *ExportWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ExportWorker started")

	for {
		select {
		case <-ctx.Done():
			w.drain()
			return

		default:
			item, err := w.rdb.BLPop(ctx, ExportPollTimeout, config.WorkerKey.ExportResultsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var job service.ExportJob
			if err := json.Unmarshal([]byte(item[1]), &job); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			w.runExport(ctx)
		}
	}
}

// drain runs one final export if any jobs were still queued at shutdown.
// A full export covers every pending job, so one pass is enough.
func (w *ExportWorker) drain() {
	pending, err := w.rdb.Del(context.Background(), config.WorkerKey.ExportResultsQueue).Result()
	if err != nil {
		w.log.Error().Err(err).Msg("Failed to drain export queue")
		return
	}
	if pending > 0 {
		w.log.Info().Msg("Shutdown requested. Running final export...")
		w.runExport(context.Background())
	}
}

func (w *ExportWorker) runExport(ctx context.Context) {
	started := time.Now()
	path, count, err := w.exportToFile(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("Results export failed")
		return
	}
	w.log.Info().
		Str("path", path).
		Int("results", count).
		Dur("elapsed", time.Since(started)).
		Msg("Results export written")
}

// ----------------------------------------------------------------
// xlsx rendering
// ----------------------------------------------------------------

func (w *ExportWorker) exportToFile(ctx context.Context) (string, int, error) {
	finished, err := w.results.ListFinished(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("list finished results: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", exportSheetTitle); err != nil {
		return "", 0, err
	}

	headers := []string{
		"Id",
		"Полное имя",
		"Электронная почта",
		"Текущий уровень",
		"Рекомендуемая группа",
		"Подробные результаты",
	}

	widths := make([]int, len(headers))
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(exportSheetTitle, cell, header); err != nil {
			return "", 0, err
		}
		widths[col] = len([]rune(header))
	}

	for i, fr := range finished {
		link := fmt.Sprintf("%s/%s", w.cfg.ResultsBaseURL, fr.ResultID)
		values := []string{
			fr.ResultID.String(),
			fr.FullName,
			fr.Email,
			levelOrDash(fr.DetectedLevel),
			recommendedGroupOrDash(fr.DetectedLevel),
			link,
		}
		row := i + 2
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(exportSheetTitle, cell, value); err != nil {
				return "", 0, err
			}
			if n := len([]rune(value)); n > widths[col] {
				widths[col] = n
			}
		}

		linkCell, _ := excelize.CoordinatesToCellName(len(values), row)
		if err := f.SetCellHyperLink(exportSheetTitle, linkCell, link, "External"); err != nil {
			return "", 0, err
		}
	}

	for col, width := range widths {
		name, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(exportSheetTitle, name, name, float64(width)*1.23); err != nil {
			return "", 0, err
		}
	}

	if err := os.MkdirAll(w.cfg.ExportDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create export dir: %w", err)
	}
	filename := fmt.Sprintf("Экспорт результатов %s.xlsx", time.Now().Format("2006-01-02 15-04-05"))
	path := filepath.Join(w.cfg.ExportDir, filename)
	if err := f.SaveAs(path); err != nil {
		return "", 0, fmt.Errorf("save workbook: %w", err)
	}
	return path, len(finished), nil
}

// A0 means the test-taker failed the lowest level batch; there is no real
// detected level to print.
func levelOrDash(detected model.LanguageLevel) string {
	if detected == model.LevelA0 {
		return "-"
	}
	return detected.DisplayName()
}

// The top of the scale has no higher group to recommend.
func recommendedGroupOrDash(detected model.LanguageLevel) string {
	if detected == model.MaxLevel {
		return "-"
	}
	return detected.Next().DisplayName()
}
