// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package snapshot

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/xuri/excelize/v2"

	"github.com/tomtom215/recdash/internal/table"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func newRegistry(t *testing.T, opts Options) *Registry {
	t.Helper()
	r, err := NewRegistry(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func cells(t *testing.T, tbl *table.Table, column string) []any {
	t.Helper()
	idx, ok := tbl.ColumnIndex(column)
	require.True(t, ok, "column %s missing", column)
	out := make([]any, tbl.Len())
	for i := range out {
		out[i] = tbl.Row(i)[idx]
	}
	return out
}

func TestDetect(t *testing.T) {
	tests := []struct {
		path   string
		format Format
		comp   Compression
		ok     bool
	}{
		{"data/product_recs.parquet", FormatParquet, CompressionNone, true},
		{"data/users.CSV", FormatCSV, CompressionNone, true},
		{"data/users.csv.gz", FormatCSV, CompressionGzip, true},
		{"Sample_Mapped_Product_Data.xlsx", FormatXLSX, CompressionNone, true},
		{"top_10.json.zst", FormatJSON, CompressionZstd, true},
		{"top_10.msgpack", FormatMsgpack, CompressionNone, true},
		{"frame.feather", FormatArrow, CompressionNone, true},
		{"frame.parquet.gz", "", CompressionGzip, false},
		{"top_10_products.pkl", "", CompressionNone, false},
	}
	for _, tt := range tests {
		format, comp, err := Detect(tt.path)
		if !tt.ok {
			assert.ErrorIs(t, err, ErrUnsupportedFormat, tt.path)
			continue
		}
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.format, format, tt.path)
		assert.Equal(t, tt.comp, comp, tt.path)
	}
}

func TestJSONLoader_Split(t *testing.T) {
	path := writeFile(t, "top.json", []byte(`{
		"columns": ["title", "numberReviews", "price_t"],
		"data": [["Nook GlowLight", 512, 119.99], ["Tripod", 87, null]]
	}`))

	tbl, err := newRegistry(t, Options{}).Load(context.Background(), Source{Name: "top-10-products", Path: path})
	require.NoError(t, err)

	assert.Equal(t, "top-10-products", tbl.Name())
	assert.Equal(t, []string{"title", "numberReviews", "price_t"}, tbl.ColumnNames())
	assert.Equal(t, []any{512.0, 87.0}, cells(t, tbl, "numberReviews"))
	assert.Equal(t, []any{119.99, nil}, cells(t, tbl, "price_t"))
}

func TestJSONLoader_RecordsGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(`[{"b": 1, "a": "x"}, {"a": "y", "c": true}]`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	path := writeFile(t, "recs.json.gz", buf.Bytes())

	reg := newRegistry(t, Options{})

	tbl, err := reg.Load(context.Background(), Source{Name: "r", Path: path})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, tbl.ColumnNames())
	assert.Equal(t, []any{nil, "true"}, cells(t, tbl, "c"))

	ordered, err := reg.Load(context.Background(), Source{Name: "r", Path: path, Columns: []string{"c", "a"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, ordered.ColumnNames())
}

func TestMsgpackLoader_SplitZstd(t *testing.T) {
	payload, err := msgpack.Marshal(map[string]any{
		"columns": []string{"Product Code", "Mapped Product"},
		"data":    [][]any{{"328", "1024"}, {"77", nil}},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = zw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	path := writeFile(t, "recs.msgpack.zst", buf.Bytes())

	tbl, err := newRegistry(t, Options{}).Load(context.Background(), Source{Name: "product-recommendations", Path: path})
	require.NoError(t, err)
	assert.Equal(t, []any{"328", "77"}, cells(t, tbl, "Product Code"))
	assert.Equal(t, []any{"1024", nil}, cells(t, tbl, "Mapped Product"))
}

func TestMsgpackLoader_Records(t *testing.T) {
	payload, err := msgpack.Marshal([]map[string]any{{"user": "A1", "score": 4}, {"user": "B2", "score": 5}})
	require.NoError(t, err)
	path := writeFile(t, "users.mpk", payload)

	tbl, err := newRegistry(t, Options{}).Load(context.Background(), Source{Name: "u", Path: path})
	require.NoError(t, err)
	assert.Equal(t, []string{"score", "user"}, tbl.ColumnNames())
	assert.Equal(t, []any{4.0, 5.0}, cells(t, tbl, "score"))
}

func TestXLSXLoader(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Product Code", "Product Name", "Price"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{328, "Nook GlowLight", 119.99}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{1024, "Canon EOS Rebel"}))
	path := filepath.Join(t.TempDir(), "Sample_Mapped_Product_Data.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := newRegistry(t, Options{}).Load(context.Background(), Source{Name: "products", Path: path})
	require.NoError(t, err)

	assert.Equal(t, []string{"Product Code", "Product Name", "Price"}, tbl.ColumnNames())
	assert.Equal(t, []any{328.0, 1024.0}, cells(t, tbl, "Product Code"))
	assert.Equal(t, []any{119.99, nil}, cells(t, tbl, "Price"))
	col, err := tbl.Column("Product Name")
	require.NoError(t, err)
	assert.Equal(t, table.TypeText, col.Type)

	_, err = newRegistry(t, Options{}).Load(context.Background(), Source{Name: "products", Path: path, Sheet: "Nope"})
	assert.Error(t, err)
}

func TestHeaderNames(t *testing.T) {
	got := headerNames([]string{"asin", " ", "price", "price", "price"})
	assert.Equal(t, []string{"asin", "Unnamed: 1", "price", "price.1", "price.2"}, got)
}

func TestArrowLoader_File(t *testing.T) {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "asin", Type: arrow.BinaryTypes.String},
		{Name: "numberReviews", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	}, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	b.Field(0).(*array.StringBuilder).AppendValues([]string{"B01", "B02"}, nil)
	b.Field(1).(*array.Int64Builder).AppendValues([]int64{12, 0}, []bool{true, false})
	rec := b.NewRecord()
	defer rec.Release()

	var buf bytes.Buffer
	w, err := ipc.NewFileWriter(&buf, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	require.NoError(t, err)
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())
	path := writeFile(t, "top.arrow", buf.Bytes())

	tbl, err := newRegistry(t, Options{}).Load(context.Background(), Source{Name: "top", Path: path})
	require.NoError(t, err)
	assert.Equal(t, []any{"B01", "B02"}, cells(t, tbl, "asin"))
	assert.Equal(t, []any{12.0, nil}, cells(t, tbl, "numberReviews"))
}

func TestArrowLoader_Stream(t *testing.T) {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{{Name: "score", Type: arrow.PrimitiveTypes.Float64}}, nil)
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	b.Field(0).(*array.Float64Builder).AppendValues([]float64{1.5, 2.5}, nil)
	rec := b.NewRecord()
	defer rec.Release()

	var buf bytes.Buffer
	w := ipc.NewWriter(&buf, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())
	path := writeFile(t, "scores.ipc", buf.Bytes())

	tbl, err := newRegistry(t, Options{}).Load(context.Background(), Source{Name: "scores", Path: path})
	require.NoError(t, err)
	assert.Equal(t, []any{1.5, 2.5}, cells(t, tbl, "score"))
}

func TestDuckDBLoader_CSV(t *testing.T) {
	path := writeFile(t, "user_recs.csv", []byte("User,Product Code,Score\nA1,328,4.5\nB2,77,3\n"))

	tbl, err := newRegistry(t, Options{}).Load(context.Background(), Source{Name: "user-recommendations", Path: path})
	require.NoError(t, err)
	assert.Equal(t, []string{"User", "Product Code", "Score"}, tbl.ColumnNames())
	assert.Equal(t, []any{"A1", "B2"}, cells(t, tbl, "User"))
	assert.Equal(t, []any{328.0, 77.0}, cells(t, tbl, "Product Code"))
	assert.Equal(t, []any{4.5, 3.0}, cells(t, tbl, "Score"))
}

func TestDuckDBLoader_Parquet(t *testing.T) {
	reg := newRegistry(t, Options{})
	path := filepath.Join(t.TempDir(), "product_recs.parquet")
	_, err := reg.duck.db.Exec("COPY (SELECT 'B0' || i::VARCHAR AS asin, i * 10 AS numberReviews FROM range(3) t(i)) TO " +
		quoteLiteral(path) + " (FORMAT PARQUET)")
	require.NoError(t, err)

	tbl, err := reg.Load(context.Background(), Source{Name: "p", Path: path})
	require.NoError(t, err)
	assert.Equal(t, []any{"B00", "B01", "B02"}, cells(t, tbl, "asin"))
	assert.Equal(t, []any{0.0, 10.0, 20.0}, cells(t, tbl, "numberReviews"))
}

func TestRowLimit(t *testing.T) {
	jsonPath := writeFile(t, "big.json", []byte(`{"columns":["a"],"data":[[1],[2],[3]]}`))
	csvPath := writeFile(t, "big.csv", []byte("a\n1\n2\n3\n"))

	reg := newRegistry(t, Options{MaxRows: 2})
	_, err := reg.Load(context.Background(), Source{Name: "j", Path: jsonPath})
	assert.ErrorIs(t, err, ErrTooManyRows)
	_, err = reg.Load(context.Background(), Source{Name: "c", Path: csvPath})
	assert.ErrorIs(t, err, ErrTooManyRows)
}

func TestLoad_Errors(t *testing.T) {
	reg := newRegistry(t, Options{})

	_, err := reg.Load(context.Background(), Source{Name: "x", Path: "recs.pkl"})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = reg.Load(context.Background(), Source{Name: "x", Path: filepath.Join(t.TempDir(), "missing.json")})
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := writeFile(t, "bad.json", []byte(`{"columns": []}`))
	_, err = reg.Load(context.Background(), Source{Name: "x", Path: bad})
	assert.ErrorIs(t, err, ErrEmptySnapshot)

	override := writeFile(t, "recs.data", []byte(`{"columns":["a"],"data":[["z"]]}`))
	tbl, err := reg.Load(context.Background(), Source{Name: "x", Path: override, Format: FormatJSON})
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())
}

func TestModTime(t *testing.T) {
	path := writeFile(t, "a.json", []byte(`{}`))
	mt, err := ModTime(path)
	require.NoError(t, err)
	assert.False(t, mt.IsZero())

	_, err = ModTime(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
