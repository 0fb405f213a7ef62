package repository

import (
	"github.com/diillson/pep-fetcher-go/internal/domain/entity"
)

type ExportRepository interface {
	ExportRunReportToCSV(report entity.RunReport, filename, outputDir string) (string, error)
	ExportRunReportToJSON(report entity.RunReport, filename, outputDir string) (string, error)
	ExportRunReportToPDF(report entity.RunReport, filename, outputDir string) (string, error)
}
