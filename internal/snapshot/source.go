// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package snapshot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Format identifies a snapshot file format.
type Format string

const (
	FormatParquet Format = "parquet"
	FormatCSV     Format = "csv"
	FormatXLSX    Format = "xlsx"
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
	FormatArrow   Format = "arrow"
)

// Compression identifies a whole-file compression wrapper.
type Compression string

const (
	CompressionNone Compression = ""
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// Errors returned by the snapshot loaders.
var (
	ErrUnsupportedFormat = errors.New("unsupported snapshot format")
	ErrTooManyRows       = errors.New("snapshot exceeds row limit")
	ErrEmptySnapshot     = errors.New("snapshot has no header")
)

var extensions = map[string]Format{
	".parquet": FormatParquet,
	".pq":      FormatParquet,
	".csv":     FormatCSV,
	".tsv":     FormatCSV,
	".xlsx":    FormatXLSX,
	".xlsm":    FormatXLSX,
	".json":    FormatJSON,
	".msgpack": FormatMsgpack,
	".mpk":     FormatMsgpack,
	".arrow":   FormatArrow,
	".feather": FormatArrow,
	".ipc":     FormatArrow,
}

// Source describes one snapshot file.
type Source struct {
	// Name becomes the table name.
	Name string
	Path string
	// Format overrides extension-based detection.
	Format Format
	// Sheet selects an Excel worksheet. Defaults to the first sheet.
	Sheet string
	// Columns fixes the column order of record-oriented JSON and
	// MessagePack files, whose keys are otherwise sorted.
	Columns []string
}

// Detect returns the format and compression implied by a file name.
func Detect(path string) (Format, Compression, error) {
	name := strings.ToLower(filepath.Base(path))

	comp := CompressionNone
	switch {
	case strings.HasSuffix(name, ".gz"):
		comp = CompressionGzip
		name = strings.TrimSuffix(name, ".gz")
	case strings.HasSuffix(name, ".zst"):
		comp = CompressionZstd
		name = strings.TrimSuffix(name, ".zst")
	case strings.HasSuffix(name, ".zstd"):
		comp = CompressionZstd
		name = strings.TrimSuffix(name, ".zstd")
	}

	format, ok := extensions[filepath.Ext(name)]
	if !ok {
		return "", comp, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if format == FormatParquet && comp != CompressionNone {
		return "", comp, fmt.Errorf("%w: parquet files carry their own compression: %s", ErrUnsupportedFormat, path)
	}
	return format, comp, nil
}

// ModTime returns the modification time of the snapshot file.
func ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// openFile opens path and transparently decompresses it.
func openFile(path string, comp Compression) (io.ReadCloser, error) {
	//nolint:gosec // snapshot paths come from operator configuration
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	switch comp {
	case CompressionGzip:
		zr, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("gzip %s: %w", path, err)
		}
		return &stackedCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("zstd %s: %w", path, err)
		}
		return &stackedCloser{Reader: zr, closers: []io.Closer{zr.IOReadCloser(), f}}, nil
	default:
		return f, nil
	}
}

type stackedCloser struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedCloser) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
