// Package report renders the processing history as an XLSX workbook.
package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/paperbridge/internal/processing"
)

const (
	SheetSummary   = "Summary"
	SheetDocuments = "Documents"
	SheetErrors    = "Errors"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	documentHeader = []any{"Document ID", "Title", "Status", "Target ID", "Amount", "Currency", "Vendor", "Category", "Retries", "Processed At", "Error"}
	errorHeader    = []any{"Error ID", "Document ID", "Kind", "Message", "Occurred At", "Retries", "Resolved", "Resolved At"}
)

// Source is the read side of the processing service.
type Source interface {
	ListDocuments(ctx context.Context, filter processing.ListFilter) ([]*processing.ProcessedDocument, error)
	ListErrors(ctx context.Context, filter processing.ErrorFilter) ([]*processing.ProcessingError, error)
	Statistics(ctx context.Context) processing.Statistics
}

type Service struct {
	source Source
	now    func() time.Time
}

func NewService(source Source) *Service {
	return &Service{source: source, now: time.Now}
}

// Filename is the suggested name of a report generated now.
func (s *Service) Filename() string {
	return fmt.Sprintf("paperbridge_%s.xlsx", s.now().UTC().Format("20060102_150405"))
}

// Write renders documents matching filter, all errors and the statistics to w.
func (s *Service) Write(ctx context.Context, w io.Writer, filter processing.ListFilter) error {
	docs, err := s.source.ListDocuments(ctx, filter)
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	errs, err := s.source.ListErrors(ctx, processing.ErrorFilter{})
	if err != nil {
		return fmt.Errorf("listing errors: %w", err)
	}

	stats := s.source.Statistics(ctx)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("naming summary sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	if err := s.writeSummary(f, stats, bold); err != nil {
		return err
	}

	rows := make([][]any, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, documentRow(d))
	}

	if err := writeTable(f, SheetDocuments, documentHeader, rows, bold); err != nil {
		return err
	}

	rows = make([][]any, 0, len(errs))
	for _, e := range errs {
		rows = append(rows, errorRow(e))
	}

	if err := writeTable(f, SheetErrors, errorHeader, rows, bold); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}

func (s *Service) writeSummary(f *excelize.File, stats processing.Statistics, style int) error {
	rows := [][]any{
		{"Generated At", s.now().UTC().Format(time.RFC3339)},
		{"Total", stats.Total},
		{"Pending", stats.Pending},
		{"Processing", stats.Processing},
		{"Completed", stats.Completed},
		{"Failed", stats.Failed},
		{"Skipped", stats.Skipped},
		{"Unresolved Errors", stats.UnresolvedErrors},
		{"Success Rate (%)", stats.SuccessRate},
	}

	if stats.Error != "" {
		rows = append(rows, []any{"Statistics Error", stats.Error})
	}

	for i, row := range rows {
		if err := setRow(f, SheetSummary, i+1, row); err != nil {
			return err
		}
	}

	if err := f.SetColStyle(SheetSummary, "A", style); err != nil {
		return fmt.Errorf("styling summary: %w", err)
	}

	return nil
}

func writeTable(f *excelize.File, sheet string, header []any, rows [][]any, style int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %s: %w", sheet, err)
	}

	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}

	if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
		return fmt.Errorf("styling %s header: %w", sheet, err)
	}

	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}

	return nil
}

func documentRow(d *processing.ProcessedDocument) []any {
	return []any{
		d.SourceID,
		d.Title(),
		string(d.Status),
		deref(d.TargetID),
		amount(d.Metadata[processing.MetaAmount]),
		text(d.Metadata[processing.MetaCurrency]),
		text(d.Metadata[processing.MetaVendor]),
		text(d.Metadata[processing.MetaCategory]),
		d.RetryCount,
		timestamp(d.ProcessedAt),
		deref(d.ErrorMessage),
	}
}

func errorRow(e *processing.ProcessingError) []any {
	return []any{
		e.ID.String(),
		e.SourceID,
		string(e.Kind),
		e.Message,
		e.OccurredAt.UTC().Format(time.RFC3339),
		e.RetryCount,
		e.Resolved,
		timestamp(e.ResolvedAt),
	}
}

// amount renders the stored amount as a number so spreadsheets can sum it.
func amount(v any) any {
	s := text(v)
	if s == "" {
		return ""
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}

	return d.InexactFloat64()
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		return strings.Join(t, ", ")
	}

	return fmt.Sprint(v)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

func timestamp(t *time.Time) string {
	if t == nil {
		return ""
	}

	return t.UTC().Format(time.RFC3339)
}
