package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/strawhatacademy/academy-api/internal/models"
	appErrors "github.com/strawhatacademy/academy-api/pkg/errors"
	"github.com/strawhatacademy/academy-api/pkg/export"
)

// Report formats supported by the exporter.
const (
	ReportFormatCSV = "csv"
	ReportFormatPDF = "pdf"
)

var reportHeaders = []string{"Subject", "Type", "Value", "Date"}

type reportStudentSource interface {
	StudentRecord(ctx context.Context, studentID int64) (*models.StudentRecord, error)
}

// ReportService renders a student's report card as CSV or PDF.
type ReportService struct {
	students reportStudentSource
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewReportService constructs the report service.
func NewReportService(students reportStudentSource, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		students: students,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

// Export renders the report card for a student in the requested format and
// returns the payload with its content type.
func (s *ReportService) Export(ctx context.Context, studentID int64, format string) ([]byte, string, error) {
	record, err := s.students.StudentRecord(ctx, studentID)
	if err != nil {
		return nil, "", err
	}

	dataset := buildReportDataset(record)
	title := fmt.Sprintf("Report Card - %s", record.DisplayName())

	switch strings.ToLower(format) {
	case ReportFormatCSV, "":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return payload, "text/csv", nil
	case ReportFormatPDF:
		payload, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

// buildReportDataset lays out one row per grade, sentinel enrollment rows
// included, followed by the average over the full sequence.
func buildReportDataset(record *models.StudentRecord) export.Dataset {
	rows := make([]map[string]string, 0, len(record.Grades)+1)
	for _, grade := range record.Grades {
		rows = append(rows, map[string]string{
			"Subject": grade.SubjectName,
			"Type":    string(grade.Type),
			"Value":   strconv.FormatFloat(grade.Value, 'f', 2, 64),
			"Date":    grade.DateRecorded.Format(gradeDateLayout),
		})
	}
	rows = append(rows, map[string]string{
		"Subject": "Average",
		"Type":    "",
		"Value":   strconv.FormatFloat(record.AverageGrade(), 'f', 2, 64),
		"Date":    "",
	})
	return export.Dataset{Headers: reportHeaders, Rows: rows}
}
