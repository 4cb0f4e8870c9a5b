// Package dataprocessing turns LinkedIn post-performance workbooks into
// normalized post records and computes analytics over them.
//
// # Architecture
//
// The package is organized into four components:
//
// 1. Workbook: format-sniffing reader covering .xlsx and legacy .xls files
// 2. Parser: locates the posts sheet, maps headers, normalizes rows
// 3. Filter: applies AND-composed criteria without mutating the dataset
// 4. Summarizer: headline metrics, daily trend, scatter and top-N series
//
// # Usage
//
// Basic parsing example:
//
//	parser := dataprocessing.NewParser(logger, dataprocessing.DefaultParseOptions())
//	dataset, err := parser.Parse(ctx, file, "posts.xlsx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Filtering and summarizing:
//
//	filtered := dataprocessing.ApplyFilter(dataset.Posts, criteria)
//	summary := dataprocessing.NewSummarizer(logger).Summarize(ctx, filtered)
//
// # Data Flow
//
// The typical flow through this package:
//
//	Workbook → Parser → Posts → Filter → Summarizer → Summary/Series
//
// # Error Handling
//
// Structural problems fail the parse with typed errors a caller can branch
// on: ErrUnsupportedFormat, *SheetNotFoundError (carrying the available
// sheets) and *MissingColumnsError (naming the absent columns). Cell-level
// problems never reject a row; fields fall back to zero values so one bad
// cell cannot sink an upload.
package dataprocessing
