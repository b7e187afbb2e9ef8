package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/zombor/docscan/internal/extraction"
	"github.com/zombor/docscan/internal/record"
	"github.com/zombor/docscan/internal/scanning"
)

// fileReport is printed for each file argument
type fileReport struct {
	File      string                  `json:"file"`
	RequestID string                  `json:"request_id,omitempty"`
	Claim     *extraction.ClaimResult `json:"claim,omitempty"`
	Menu      *extraction.MenuResult  `json:"menu,omitempty"`
	Errors    record.ValidationErrors `json:"errors,omitempty"`
	Error     string                  `json:"error,omitempty"`
}

// scanFiles extracts target from each file and writes one JSON report per
// line. failed is true when any file produced no valid record. Only an
// output failure stops the loop early.
func scanFiles(ctx context.Context, service *extraction.Service, target scanning.Target, files []string, out io.Writer) (failed bool, err error) {
	enc := json.NewEncoder(out)
	for _, file := range files {
		report := scanFile(ctx, service, target, file)
		if report.Error != "" || len(report.Errors) > 0 {
			failed = true
		}
		if err := enc.Encode(report); err != nil {
			return failed, fmt.Errorf("writing report: %w", err)
		}
	}
	return failed, nil
}

func scanFile(ctx context.Context, service *extraction.Service, target scanning.Target, file string) fileReport {
	report := fileReport{File: file}

	data, err := os.ReadFile(file)
	if err != nil {
		report.Error = fmt.Sprintf("reading file: %v", err)
		return report
	}
	contentType := fileContentType(file, data)

	switch target {
	case scanning.TargetMenu:
		result, err := service.ExtractMenu(ctx, data, contentType, "")
		if err != nil {
			report.RequestID = result.RequestID
			setError(&report, err)
			break
		}
		report.Menu = result
	default:
		result, err := service.ExtractClaim(ctx, data, contentType, "")
		if err != nil {
			report.RequestID = result.RequestID
			setError(&report, err)
			break
		}
		report.Claim = result
	}
	if report.Error != "" {
		slog.Warn("Scan failed", "file", file, "error", report.Error)
	}
	return report
}

func setError(report *fileReport, err error) {
	if err == nil {
		return
	}
	var verrs record.ValidationErrors
	if errors.As(err, &verrs) {
		report.Errors = verrs
		return
	}
	report.Error = err.Error()
}

// fileContentType prefers the extension and falls back to sniffing
func fileContentType(file string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(file)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}
