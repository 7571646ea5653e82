// Package codec serializes the permission table of a run.
package codec

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"shareaudit/internal/domain"
)

// Columns is the fixed column set of the permission table
var Columns = []string{
	"path",
	"principal",
	"rights",
	"access_type",
	"inheritance_flags",
	"propagation_flags",
	"is_inherited",
	"host",
	"share",
}

// Exporter interface for exporting permission records to various formats
type Exporter interface {
	Export(records []domain.PermissionRecord, w io.Writer) error
	Format() string
}

// ForFormat returns the exporter registered for format
func ForFormat(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "", "csv":
		return NewCSVCodec(), nil
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	case "table":
		return NewTableCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteFile exports records to path, or to stdout when path is "-"
func WriteFile(e Exporter, records []domain.PermissionRecord, path string) error {
	if path == "-" {
		return e.Export(records, os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := e.Export(records, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// row returns a record's fields in Columns order
func row(r domain.PermissionRecord) []string {
	return []string{
		r.Path,
		r.Principal,
		r.Rights,
		r.AccessType,
		r.InheritanceFlags,
		r.PropagationFlags,
		strconv.FormatBool(r.IsInherited),
		r.Host,
		r.Share,
	}
}
