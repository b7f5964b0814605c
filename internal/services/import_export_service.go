package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/SAP-F-2025/form-service/internal/repositories"
	"github.com/SAP-F-2025/form-service/internal/validator"
)

const exportSheetName = "Submissions"

var exportBaseHeaders = []string{
	"Submission ID", "Submitted By", "Name", "Email", "Phone", "Guest", "Submitted At",
}

type importExportService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewImportExportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) ImportExportService {
	return &importExportService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// exportColumn is one answer column: a question of the form, or an answer
// key the current form no longer has
type exportColumn struct {
	QuestionID string
	Header     string
}

type exportAnswer struct {
	QuestionID string `json:"question_id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
}

type exportRecord struct {
	ID             uint           `json:"id"`
	SubmittedBy    string         `json:"submitted_by"`
	SubmitterName  *string        `json:"submitter_name,omitempty"`
	SubmitterEmail *string        `json:"submitter_email,omitempty"`
	SubmitterPhone *string        `json:"submitter_phone,omitempty"`
	IsGuest        bool           `json:"is_guest"`
	SubmittedAt    time.Time      `json:"submitted_at"`
	Answers        []exportAnswer `json:"answers"`
}

// ExportSubmissions renders every submission of a form, oldest first
func (s *importExportService) ExportSubmissions(ctx context.Context, formID uint, userID string, format ExportFormat) (*ExportResult, error) {
	format = ExportFormat(strings.ToLower(strings.TrimSpace(string(format))))
	if format == "" {
		format = ExportCSV
	}
	if format != ExportCSV && format != ExportJSON && format != ExportXLSX {
		return nil, ErrUnsupportedFormat
	}

	form, err := getFormByID(ctx, s.repo, s.db, formID)
	if err != nil {
		return nil, err
	}
	if err := checkFormOwnership(ctx, s.repo, form, userID, "export_submissions"); err != nil {
		return nil, err
	}

	submissions, _, err := s.repo.Submission().ListByForm(ctx, s.db, formID, repositories.SubmissionFilters{SortOrder: "asc"})
	if err != nil {
		return nil, fmt.Errorf("failed to load submissions: %w", err)
	}

	columns := exportColumns(form, submissions)

	var result *ExportResult
	switch format {
	case ExportJSON:
		result, err = s.exportJSON(columns, submissions)
	case ExportXLSX:
		result, err = s.exportXLSX(columns, submissions)
	default:
		result, err = s.exportCSV(columns, submissions)
	}
	if err != nil {
		return nil, err
	}

	result.Filename = fmt.Sprintf("%s-submissions.%s", exportSlug(form), format)
	s.logger.Info("Submissions exported", "form_id", formID, "format", format, "rows", len(submissions), "bytes", len(result.Data))
	return result, nil
}

func (s *importExportService) exportCSV(columns []exportColumn, submissions []*models.Submission) (*ExportResult, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvSafeRow(exportHeaders(columns))); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, submission := range submissions {
		if err := w.Write(csvSafeRow(exportRow(columns, submission))); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return &ExportResult{ContentType: "text/csv; charset=utf-8", Data: buf.Bytes()}, nil
}

func (s *importExportService) exportJSON(columns []exportColumn, submissions []*models.Submission) (*ExportResult, error) {
	records := make([]exportRecord, 0, len(submissions))
	for _, submission := range submissions {
		answers := submission.Answers()
		record := exportRecord{
			ID:             submission.ID,
			SubmittedBy:    submission.SubmittedBy,
			SubmitterName:  submission.SubmitterName,
			SubmitterEmail: submission.SubmitterEmail,
			SubmitterPhone: submission.SubmitterPhone,
			IsGuest:        submission.IsGuest,
			SubmittedAt:    submission.CreatedAt.UTC(),
			Answers:        make([]exportAnswer, 0, len(answers)),
		}
		for _, column := range columns {
			if value, ok := answers[column.QuestionID]; ok {
				record.Answers = append(record.Answers, exportAnswer{
					QuestionID: column.QuestionID,
					Question:   column.Header,
					Answer:     value,
				})
			}
		}
		records = append(records, record)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode json export: %w", err)
	}

	return &ExportResult{ContentType: "application/json", Data: data}, nil
}

func (s *importExportService) exportXLSX(columns []exportColumn, submissions []*models.Submission) (*ExportResult, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headers := exportHeaders(columns)
	if err := f.SetSheetRow(exportSheetName, "A1", toCells(headers)); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(exportSheetName, 1, 1, bold); err != nil {
		return nil, fmt.Errorf("failed to style header row: %w", err)
	}

	for i, submission := range submissions {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(exportSheetName, cell, toCells(exportRow(columns, submission))); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	return &ExportResult{
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        buf.Bytes(),
	}, nil
}

// exportColumns lists the form's questions in display order, then answer
// keys that are no longer part of the form, sorted
func exportColumns(form *models.Form, submissions []*models.Submission) []exportColumn {
	var columns []exportColumn
	known := make(map[string]bool)

	for _, q := range orderedQuestions(form) {
		if known[q.ID] {
			continue
		}
		known[q.ID] = true

		header := strings.TrimSpace(q.Prompt)
		if header == "" {
			header = q.ID
		}
		columns = append(columns, exportColumn{QuestionID: q.ID, Header: header})
	}

	var extra []string
	for _, submission := range submissions {
		for id := range submission.Answers() {
			if !known[id] {
				known[id] = true
				extra = append(extra, id)
			}
		}
	}
	sort.Strings(extra)
	for _, id := range extra {
		columns = append(columns, exportColumn{QuestionID: id, Header: id})
	}

	return columns
}

func exportHeaders(columns []exportColumn) []string {
	headers := make([]string, 0, len(exportBaseHeaders)+len(columns))
	headers = append(headers, exportBaseHeaders...)
	for _, column := range columns {
		headers = append(headers, column.Header)
	}
	return headers
}

func exportRow(columns []exportColumn, submission *models.Submission) []string {
	guest := "No"
	if submission.IsGuest {
		guest = "Yes"
	}

	row := make([]string, 0, len(exportBaseHeaders)+len(columns))
	row = append(row,
		strconv.FormatUint(uint64(submission.ID), 10),
		submission.SubmittedBy,
		derefString(submission.SubmitterName),
		derefString(submission.SubmitterEmail),
		derefString(submission.SubmitterPhone),
		guest,
		submission.CreatedAt.UTC().Format(time.RFC3339),
	)

	answers := submission.Answers()
	for _, column := range columns {
		row = append(row, answers[column.QuestionID])
	}
	return row
}

// csvSafe prefixes values that spreadsheet applications would evaluate as a
// formula. Guests control most cells of an export.
func csvSafe(value string) string {
	if value == "" {
		return value
	}
	switch value[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + value
	}
	return value
}

func csvSafeRow(values []string) []string {
	for i, v := range values {
		values[i] = csvSafe(v)
	}
	return values
}

func toCells(values []string) *[]interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return &cells
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// exportSlug turns the form title into a file name fragment
func exportSlug(form *models.Form) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(form.Title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return fmt.Sprintf("form-%d", form.ID)
	}
	return slug
}
