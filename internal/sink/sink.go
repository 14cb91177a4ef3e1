// Package sink writes a finished upgrade matrix to its destinations.
package sink

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/omarshaarawi/upgradebot/internal/models"
)

type Sink interface {
	Write(ctx context.Context, matrix models.UpgradeMatrix) error
}

// CSVFile replaces the file at Path with the matrix table.
type CSVFile struct {
	Path string
}

func NewCSVFile(path string) *CSVFile {
	return &CSVFile{Path: path}
}

func (c *CSVFile) Write(_ context.Context, matrix models.UpgradeMatrix) error {
	if dir := filepath.Dir(c.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(c.Path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, matrix); err != nil {
		return err
	}
	return f.Close()
}

// WriteCSV encodes the matrix table to w.
func WriteCSV(w io.Writer, matrix models.UpgradeMatrix) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(matrix.Table()); err != nil {
		return fmt.Errorf("failed to write matrix: %w", err)
	}
	return nil
}

// Multi writes to every sink, continuing past failures.
type Multi []Sink

func (m Multi) Write(ctx context.Context, matrix models.UpgradeMatrix) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, matrix); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
