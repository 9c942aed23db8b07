package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/lingvoclub/placement-backend/internal/config"
)

// ExportJob is the payload pushed onto the export queue. The worker renders
// the xlsx file; the HTTP request only enqueues.
type ExportJob struct {
	RequestedAt time.Time `json:"requested_at"`
}

// ExportService enqueues result export jobs for the export worker.
type ExportService struct {
	rdb *redis.Client
}

// NewExportService creates a new ExportService.
func NewExportService(rdb *redis.Client) *ExportService {
	return &ExportService{rdb: rdb}
}

// Enqueue schedules an export of all finished results.
func (s *ExportService) Enqueue(ctx context.Context) error {
	raw, err := json.Marshal(ExportJob{RequestedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("marshal export job: %w", err)
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.ExportResultsQueue, raw).Err(); err != nil {
		return fmt.Errorf("enqueue export job: %w", err)
	}
	return nil
}
