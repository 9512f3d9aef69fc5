package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yigit/projecthub/internal/app/stats"
	"github.com/yigit/projecthub/internal/pkg/apperrors"
	"github.com/yigit/projecthub/internal/pkg/listing"
)

type stubSource struct {
	rows []stats.StudentSummary
	err  error
	view listing.ViewState
}

func (s *stubSource) FilteredStudents(_ context.Context, view listing.ViewState) ([]stats.StudentSummary, error) {
	s.view = view
	return s.rows, s.err
}

func TestExportFilename(t *testing.T) {
	svc := NewExportService(&stubSource{}, ExportConfig{}, zerolog.Nop())
	at := time.Date(2026, 10, 19, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "student_report_2026-10-19.xlsx", svc.Filename(at))

	svc = NewExportService(&stubSource{}, ExportConfig{FilenamePrefix: "batch_2026"}, zerolog.Nop())
	assert.Equal(t, "batch_2026_2026-10-19.xlsx", svc.Filename(at))
}

func TestExportStudentsWritesWorkbook(t *testing.T) {
	source := &stubSource{rows: stats.Summarize(statsStudents(), reviewedTeams())}
	svc := NewExportService(source, ExportConfig{SheetName: "Report"}, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC) }

	view := listing.NewViewState(2)
	view.GoTo(2)
	file, err := svc.ExportStudents(context.Background(), view)
	require.NoError(t, err)
	assert.Equal(t, "student_report_2026-04-02.xlsx", file.Filename)
	assert.Equal(t, 3, file.Rows)
	assert.Equal(t, 2, source.view.Page)

	wb, err := excelize.OpenReader(bytes.NewReader(file.Content))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Report")
	require.NoError(t, err)
	require.Len(t, rows, 4, "header plus every filtered student regardless of page")

	assert.Equal(t, []string{
		"Roll Number", "Name", "Email", "Department", "Year", "Team", "Project",
		"Phase 1", "Phase 2", "Reviews", "Overall",
	}, rows[0])

	alice := rows[1]
	assert.Equal(t, "21CS001", alice[0])
	assert.Equal(t, "alice", alice[1])
	assert.Equal(t, "10", alice[5])
	assert.Equal(t, "Compiler", alice[6])
	assert.Equal(t, "80", alice[7])
	assert.Equal(t, "60", alice[8])
	assert.Equal(t, "2", alice[9])
	assert.Equal(t, "70.00", alice[10])

	bob := rows[2]
	assert.Equal(t, "-", bob[8], "absent phase has no score")
	assert.Equal(t, "90.00", bob[10])

	carol := rows[3]
	assert.Equal(t, "-", carol[5])
	assert.Equal(t, "-", carol[7])
	assert.Equal(t, "-", carol[10])
}

func TestExportStudentsEmpty(t *testing.T) {
	svc := NewExportService(&stubSource{}, ExportConfig{}, zerolog.Nop())
	file, err := svc.ExportStudents(context.Background(), listing.NewViewState(10))
	require.NoError(t, err)
	assert.Zero(t, file.Rows)

	wb, err := excelize.OpenReader(bytes.NewReader(file.Content))
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows("Students")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Contains(t, rows[0], "Phase 1")
}

func TestExportStudentsSourceError(t *testing.T) {
	boom := errors.New("db down")
	svc := NewExportService(&stubSource{err: boom}, ExportConfig{}, zerolog.Nop())
	_, err := svc.ExportStudents(context.Background(), listing.NewViewState(10))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, apperrors.ErrExportFailed)
}

func TestReportPhases(t *testing.T) {
	assert.Equal(t, []int{1}, reportPhases(nil))
	assert.Equal(t, []int{1, 2, 4}, reportPhases([]stats.StudentSummary{
		{Phases: []int{4}},
		{Phases: []int{2, 1}},
	}))
}
