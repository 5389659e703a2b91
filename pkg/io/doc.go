// Package io reads import batches and writes import reports.
//
// # Batch Files
//
// A batch is either a list of search requests or a list of raw supplier
// records.
//
// Requests are CSV with a header row. The recognized columns are
// search_term (required), supplier and quantity; other columns are ignored
// and the column order is free:
//
//	search_term,supplier,quantity
//	C1525,lcsc,100
//	CL05B104KO5NNNC,,10
//
// An empty supplier searches every configured supplier. Use [ReadRequests]
// for any io.Reader.
//
// Raw records are [part.Raw] values, either as one JSON array or as JSON
// lines. Use [ReadParts].
//
// [OpenBatch] picks the format from the file extension: .csv and .tsv are
// requests, .json and .jsonl are raw records.
//
// # Reports
//
// [WriteReport] encodes a [pipeline.Report] as indented JSON and
// [ExportReport] writes it to a file.
package io
