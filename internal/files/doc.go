// Package files keeps copies of uploaded workbooks on disk.
//
// Session datasets live in memory and expire, so the Archive writes each
// successfully parsed upload under the data/uploads directory. An operator
// can re-upload an archived workbook to rebuild a dataset after its session
// is gone. Retention is count-capped: saving a new workbook prunes the
// oldest entries beyond the configured limit.
//
//	archive := files.NewArchive(paths, files.DefaultKeep, logger)
//	name, err := archive.Save(sessionID, "posts.xlsx", data)
//
// Saves go through a temp file and rename, so List never reports a partial
// workbook.
package files
