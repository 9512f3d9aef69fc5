package services

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/yigit/projecthub/internal/app/stats"
	"github.com/yigit/projecthub/internal/pkg/apperrors"
	"github.com/yigit/projecthub/internal/pkg/listing"
)

// XLSXContentType is the media type of exported workbooks
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportConfig names the generated workbook
type ExportConfig struct {
	SheetName      string
	FilenamePrefix string
}

// ExportFile is a generated report ready to download
type ExportFile struct {
	Filename string
	Rows     int
	Content  []byte
}

// IExportService produces spreadsheet reports
type IExportService interface {
	ExportStudents(ctx context.Context, view listing.ViewState) (*ExportFile, error)
}

// StudentSource yields the filtered student summaries to export
type StudentSource interface {
	FilteredStudents(ctx context.Context, view listing.ViewState) ([]stats.StudentSummary, error)
}

// ExportService renders the individual statistics tab to xlsx
type ExportService struct {
	source StudentSource
	config ExportConfig
	logger zerolog.Logger
	now    func() time.Time
}

// NewExportService creates a new ExportService
func NewExportService(source StudentSource, config ExportConfig, logger zerolog.Logger) *ExportService {
	if config.SheetName == "" {
		config.SheetName = "Students"
	}
	if config.FilenamePrefix == "" {
		config.FilenamePrefix = "student_report"
	}
	return &ExportService{source: source, config: config, logger: logger, now: time.Now}
}

// Filename returns the download name for a report generated at t
func (s *ExportService) Filename(t time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", s.config.FilenamePrefix, t.Format("2006-01-02"))
}

// ExportStudents writes every student passing the view's filters, in its sort order,
// ignoring pagination
func (s *ExportService) ExportStudents(ctx context.Context, view listing.ViewState) (*ExportFile, error) {
	rows, err := s.source.FilteredStudents(ctx, view)
	if err != nil {
		return nil, err
	}

	content, err := s.render(rows)
	if err != nil {
		s.logger.Warn().Err(err).Int("rows", len(rows)).Msg("Student report generation failed")
		return nil, fmt.Errorf("%w: %v", apperrors.ErrExportFailed, err)
	}

	file := &ExportFile{Filename: s.Filename(s.now()), Rows: len(rows), Content: content}
	s.logger.Info().Str("filename", file.Filename).Int("rows", file.Rows).Msg("Student report generated")
	return file, nil
}

// reportPhases lists every phase appearing in rows, ascending; at least phase 1
func reportPhases(rows []stats.StudentSummary) []int {
	seen := map[int]bool{1: true}
	for _, r := range rows {
		for _, p := range r.Phases {
			seen[p] = true
		}
	}
	phases := make([]int, 0, len(seen))
	for p := range seen {
		phases = append(phases, p)
	}
	sort.Ints(phases)
	return phases
}

func (s *ExportService) render(rows []stats.StudentSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := s.config.SheetName
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}

	phases := reportPhases(rows)
	header := []interface{}{"Roll Number", "Name", "Email", "Department", "Year", "Team", "Project"}
	for _, p := range phases {
		header = append(header, "Phase "+strconv.Itoa(p))
	}
	header = append(header, "Reviews", "Overall")

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, r := range rows {
		record := []interface{}{
			r.RollNumber,
			r.Name,
			r.Email,
			r.Department,
			intCell(r.Year),
			idCell(r.TeamID),
			r.ProjectTitle,
		}
		for _, p := range phases {
			if score, ok := r.PhaseScores[p]; ok {
				record = append(record, score)
			} else {
				record = append(record, stats.NotAvailable)
			}
		}
		record = append(record, r.ReviewCount, r.Overall)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &record); err != nil {
			return nil, err
		}
	}

	if err := s.decorate(f, sheet, len(header), len(rows)); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ExportService) decorate(f *excelize.File, sheet string, columns, rows int) error {
	lastCol, err := excelize.ColumnNumberToName(columns)
	if err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DCE6F1"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", style); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
		return err
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	if rows > 0 {
		if err := f.AutoFilter(sheet, fmt.Sprintf("A1:%s%d", lastCol, rows+1), nil); err != nil {
			return err
		}
	}
	return nil
}

func intCell(n *int) interface{} {
	if n == nil {
		return stats.NotAvailable
	}
	return *n
}

func idCell(id *int64) interface{} {
	if id == nil {
		return stats.NotAvailable
	}
	return *id
}
