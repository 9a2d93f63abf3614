// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

// Package snapshot loads tables from the flat files produced by the offline
// batch scripts.
//
// Supported formats, chosen by file extension unless overridden:
//
//	.parquet .pq          DuckDB read_parquet
//	.csv .tsv             DuckDB read_csv_auto (also .csv.gz, .csv.zst)
//	.xlsx .xlsm           excelize, first row is the header
//	.json                 {"columns": [...], "data": [[...]]} or an array of records
//	.msgpack .mpk         same shapes as JSON, MessagePack encoded
//	.arrow .feather .ipc  Arrow IPC file or stream
//
// JSON, MessagePack, Excel and Arrow files may additionally be compressed
// with a .gz or .zst suffix.
//
// A Registry owns the DuckDB connection used for parquet and CSV and must be
// closed when no longer needed.
package snapshot
