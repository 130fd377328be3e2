package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/MegaGrindStone/doc-web-ui/internal/services"
)

const maxUploadBytes = 10 << 20

// HandleExtract converts an uploaded spreadsheet or CSV file into a Markdown table. The client
// attaches the result to its next chat message under the extractedTable metadata key; the server
// keeps nothing.
func (m Main) HandleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		m.logger.Error("Method not allowed", slog.String("method", r.Method))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		m.logger.Error("Failed to parse upload", slog.String(errLoggerKey, err.Error()))
		http.Error(w, "Invalid upload", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		m.logger.Error("File is required", slog.String(errLoggerKey, err.Error()))
		http.Error(w, "File is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		m.logger.Error("Failed to read upload", slog.String(errLoggerKey, err.Error()))
		http.Error(w, "Failed to read upload", http.StatusInternalServerError)
		return
	}

	var table string
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv":
		table, err = services.ExtractCSV(data)
	case ".xlsx", ".xlsm", ".xls":
		table, err = services.ExtractXLSX(data)
	default:
		http.Error(w, "Unsupported file type", http.StatusUnsupportedMediaType)
		return
	}
	if err != nil {
		m.logger.Error("Extraction failed",
			slog.String("filename", header.Filename),
			slog.String(errLoggerKey, err.Error()))
		http.Error(w, "Extraction failed", http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"table": table}); err != nil {
		m.logger.Error("Failed to write response", slog.String(errLoggerKey, err.Error()))
	}
}
