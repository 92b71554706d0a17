package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"

	"videobelajar/internal/domain"
)

// Catalog CSV layout. Keep header order EXACT.
var courseHeader = []string{
	"ID",
	"TITLE",
	"CATEGORY",
	"LEVEL",
	"DURATION",
	"PRICE",
	"PRICE_LABEL",
	"THUMBNAIL_URL",
	"DESCRIPTION",
}

// Options controls WriteCourseFile.
type Options struct {
	// Brotli compresses the file and appends ".br" to the path.
	Brotli bool
	// Quality is the brotli level (0-11); 0 uses brotli.DefaultCompression.
	Quality int
}

// WriteCourseCSV writes courses in catalog order.
func WriteCourseCSV(w io.Writer, courses []domain.Course) error {
	cw := csv.NewWriter(w)
	// match typical spreadsheet imports
	cw.UseCRLF = true

	if err := cw.Write(courseHeader); err != nil {
		return err
	}
	for _, c := range courses {
		if err := cw.Write(toRow(c)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCourseFile writes the CSV to outPath, creating parent directories.
// It returns the path actually written.
func WriteCourseFile(outPath string, courses []domain.Course, opts Options) (string, error) {
	if opts.Brotli && !strings.HasSuffix(outPath, ".br") {
		outPath += ".br"
	}
	if dir := filepath.Dir(outPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("export: mkdir %s: %w", dir, err)
		}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("export: create %s: %w", outPath, err)
	}
	defer f.Close()

	var w io.Writer = f
	var bw *brotli.Writer
	if opts.Brotli {
		q := opts.Quality
		if q <= 0 || q > brotli.BestCompression {
			q = brotli.DefaultCompression
		}
		bw = brotli.NewWriterLevel(f, q)
		w = bw
	}

	if err := WriteCourseCSV(w, courses); err != nil {
		return "", fmt.Errorf("export: write csv: %w", err)
	}
	if bw != nil {
		if err := bw.Close(); err != nil {
			return "", fmt.Errorf("export: brotli close: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("export: close %s: %w", outPath, err)
	}
	return outPath, nil
}

func toRow(c domain.Course) []string {
	return []string{
		c.ID.String(),
		clean(c.Title),
		clean(c.Category),
		clean(c.Level),
		clean(c.Duration),
		strconv.FormatFloat(c.Price, 'f', -1, 64),
		domain.FormatPrice(c.Price),
		c.ThumbnailURL(),
		clean(c.Description),
	}
}

// clean trims and flattens newlines so each course stays on one CSV line.
func clean(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}
