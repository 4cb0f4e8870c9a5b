// Package exporter provides CSV export functionality for post analytics.
//
// This package contains two main components:
//
// CSVWriter: Core CSV writing over io.Writer and files, with UTF-8 BOM
// support for spreadsheet compatibility and a streaming variant for HTTP
// responses.
//
// PostExporter: Renders normalized posts, the daily trend series and top-N
// rankings. Rates are written with their shortest exact representation so an
// exported file re-parses to identical values.
//
// Example usage:
//
//	e := exporter.NewPostExporter(logger)
//
//	// Stream filtered posts into an HTTP response
//	rows, err := e.ExportPosts(w, filtered)
//
//	// Or write pipeline artifacts to disk
//	_, err = e.ExportPostsFile(filepath.Join(outDir, "posts.csv"), filtered)
//	err = e.ExportTrendFile(filepath.Join(outDir, "trend.csv"), trend)
package exporter
