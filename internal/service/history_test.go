package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"cnc_dashboard/internal/backend"
	"cnc_dashboard/internal/logger"
	"cnc_dashboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryService_List(t *testing.T) {
	b := &fakeBackend{history: []models.HistoryEntry{{ID: 1, Machine: "CNC1"}}}
	s := NewHistoryService(b, logger.Nop())

	got, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)

	b.history = nil
	got, err = s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestHistoryService_ListError(t *testing.T) {
	b := &fakeBackend{historyErr: backend.ErrTransport}
	s := NewHistoryService(b, logger.Nop())

	_, err := s.List(context.Background())
	assert.ErrorIs(t, err, backend.ErrTransport)
}

func TestHistoryService_Clear(t *testing.T) {
	b := &fakeBackend{clearRes: models.ActionResult{Success: true, Message: "History cleared successfully"}}
	s := NewHistoryService(b, logger.Nop())

	res, err := s.Clear(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestHistoryService_Export(t *testing.T) {
	b := &fakeBackend{export: &backend.Export{
		Body:        io.NopCloser(strings.NewReader("xls")),
		ContentType: "application/vnd.ms-excel",
	}}
	s := NewHistoryService(b, logger.Nop())

	exp, err := s.Export(context.Background(), backend.ExportJobs)
	require.NoError(t, err)
	defer exp.Body.Close()
	body, _ := io.ReadAll(exp.Body)
	assert.Equal(t, "xls", string(body))

	b.exportErr = errors.New("boom")
	_, err = s.Export(context.Background(), backend.ExportHistory)
	assert.Error(t, err)
}
