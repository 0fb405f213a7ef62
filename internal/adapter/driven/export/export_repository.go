package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/diillson/pep-fetcher-go/internal/domain/entity"
	"github.com/diillson/pep-fetcher-go/internal/domain/repository"
)

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct{}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{}
}

// reportRow is one "field, value" line shared by the CSV and PDF layouts.
type reportRow struct {
	field string
	value string
}

func reportRows(report entity.RunReport) []reportRow {
	rows := []reportRow{
		{"Run ID", report.RunID},
		{"Started At", report.StartedAt.Format(time.RFC3339)},
		{"Finished At", report.FinishedAt.Format(time.RFC3339)},
		{"Status", string(report.Status)},
		{"Period", periodValue(report.Resolution.Period)},
		{"Period Source", string(report.Resolution.Source)},
		{"Probes", strconv.Itoa(report.Resolution.Probes)},
		{"Archive", report.Archive.FileName()},
	}

	if d := report.Download; d != nil {
		rows = append(rows,
			reportRow{"Download URL", d.URL},
			reportRow{"Download Outcome", string(d.Kind)},
			reportRow{"Attempts", strconv.Itoa(d.Attempts)},
			reportRow{"Bytes", strconv.FormatInt(d.Bytes, 10)},
		)
		if d.StatusCode != 0 {
			rows = append(rows, reportRow{"HTTP Status", strconv.Itoa(d.StatusCode)})
		}
		if d.Reason != "" {
			rows = append(rows, reportRow{"Download Reason", d.Reason})
		}
	}

	if e := report.Extraction; e != nil {
		rows = append(rows,
			reportRow{"Extraction", string(e.Kind)},
			reportRow{"Extraction Dir", e.Dir},
			reportRow{"Entries", strings.Join(e.Entries, "\n")},
		)
		if e.Reason != "" {
			rows = append(rows, reportRow{"Extraction Reason", e.Reason})
		}
	}

	if m := report.Mirror; m != nil {
		value := m.Location
		if m.Skipped {
			value += " (already present)"
		}
		if m.Error != "" {
			value += " (error: " + m.Error + ")"
		}
		rows = append(rows, reportRow{"Mirror", value})
	}

	return rows
}

func periodValue(p entity.ReportingPeriod) string {
	if p.IsZero() {
		return "-"
	}
	return p.String()
}

func (r *ExportRepositoryImpl) ExportRunReportToCSV(report entity.RunReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"Field", "Value"}); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}
	for _, row := range reportRows(report) {
		if err := writer.Write([]string{row.field, row.value}); err != nil {
			return "", fmt.Errorf("error writing CSV row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("error flushing CSV file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportRunReportToJSON(report entity.RunReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportRunReportToPDF(report entity.RunReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	pdf.AddPage()

	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	title := "  PEP Download Report"
	if !report.Resolution.Period.IsZero() {
		title += " - " + report.Resolution.Period.Label()
	}
	pdf.CellFormat(0, 12, tr(title), "", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Status: %s", report.Status)), "", 1, "L", true, 0, "")
	pdf.Ln(8)

	pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
	labelWidth := 50.0
	for _, row := range reportRows(report) {
		if row.value == "" {
			continue
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(labelWidth, 6, tr(row.field), "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(190-labelWidth, 6, tr(row.value), "", "L", false)
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(1)
	}

	pdf.SetY(-15)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	footerText := fmt.Sprintf("Generated by pep-fetcher | %s", time.Now().Format("2006-01-02"))
	pdf.CellFormat(0, 10, tr(footerText), "", 0, "L", false, 0, "")

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// --- Funções Auxiliares ---

// generateFilename cria um nome de arquivo único com timestamp e garante que o diretório exista.
func generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}
