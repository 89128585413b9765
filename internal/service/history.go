package service

import (
	"context"
	"fmt"

	"cnc_dashboard/internal/backend"
	"cnc_dashboard/internal/logger"
	"cnc_dashboard/internal/models"
)

// HistoryService lists, clears and exports finished jobs.
type HistoryService struct {
	backend HistoryBackend
	log     *logger.Logger
}

func NewHistoryService(b HistoryBackend, log *logger.Logger) *HistoryService {
	return &HistoryService{backend: b, log: log.For("history")}
}

func (s *HistoryService) List(ctx context.Context) ([]models.HistoryEntry, error) {
	entries, err := s.backend.HistoryData(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	return entries, nil
}

// Clear deletes all history. A rejection is returned as Success=false.
func (s *HistoryService) Clear(ctx context.Context) (models.ActionResult, error) {
	res, err := s.backend.ClearHistory(ctx)
	if err != nil {
		return res, fmt.Errorf("clear history: %w", err)
	}
	if res.Success {
		s.log.Infow("history_cleared")
	}
	return res, nil
}

// Export streams the spreadsheet for kind; the caller closes the body.
func (s *HistoryService) Export(ctx context.Context, kind string) (*backend.Export, error) {
	exp, err := s.backend.ExportExcel(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", kind, err)
	}
	return exp, nil
}
