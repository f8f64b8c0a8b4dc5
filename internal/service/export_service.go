package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/satlab/sat-prep-api/internal/models"
	appErrors "github.com/satlab/sat-prep-api/pkg/errors"
	"github.com/satlab/sat-prep-api/pkg/export"
)

// ExportFormat selects the rendered document type.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportDocument is a rendered progress report ready to stream.
type ExportDocument struct {
	Filename    string
	ContentType string
	Content     []byte
}

type exportTopicReader interface {
	GetTopic(ctx context.Context, id string) (*models.Topic, error)
}

// ExportService renders a user's progress into downloadable reports.
type ExportService struct {
	activity ActivityRepository
	stats    *StatsService
	topics   exportTopicReader
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService constructs an export service.
func NewExportService(activity ActivityRepository, stats *StatsService, topics exportTopicReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		activity: activity,
		stats:    stats,
		topics:   topics,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
		now:      time.Now,
	}
}

// ProgressReport refreshes the user's snapshot and renders their per-topic
// progress plus the aggregate line in the requested format.
func (s *ExportService) ProgressReport(ctx context.Context, userID string, format ExportFormat) (*ExportDocument, error) {
	if format != FormatCSV && format != FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}

	entry, err := s.stats.RefreshUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	progress, err := s.activity.TopicProgressForUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "read topic progress")
	}
	examCount, err := s.activity.ExamAttemptCount(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "count exam attempts")
	}

	dataset := export.Dataset{
		Headers: []string{"Topic", "Section", "Questions", "Correct", "Accuracy %"},
	}
	for _, record := range progress {
		name, section := record.TopicID, ""
		if topic, err := s.topics.GetTopic(ctx, record.TopicID); err == nil {
			name, section = topic.Name, string(topic.Section)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Topic":      name,
			"Section":    section,
			"Questions":  strconv.Itoa(record.TotalQuestions),
			"Correct":    strconv.Itoa(record.CorrectTotal),
			"Accuracy %": strconv.Itoa(roundPercent(record.CorrectTotal, record.TotalQuestions)),
		})
	}
	dataset.Rows = append(dataset.Rows, map[string]string{
		"Topic":      "Exam questions",
		"Section":    "",
		"Questions":  strconv.Itoa(examCount),
		"Correct":    "",
		"Accuracy %": "",
	})
	dataset.Rows = append(dataset.Rows, map[string]string{
		"Topic":      "Overall",
		"Section":    "",
		"Questions":  strconv.Itoa(entry.TotalQuestions),
		"Correct":    "",
		"Accuracy %": strconv.Itoa(entry.Accuracy),
	})

	stamp := s.now().UTC().Format("2006-01-02")
	switch format {
	case FormatPDF:
		content, err := s.pdf.Render(dataset, "Progress Report")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportDocument{
			Filename:    fmt.Sprintf("progress-%s.pdf", stamp),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportDocument{
			Filename:    fmt.Sprintf("progress-%s.csv", stamp),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	}
}
