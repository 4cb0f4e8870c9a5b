package errors

import (
	"errors"
	"net/http"

	"postpulse/internal/dataprocessing"
)

// Analytics-specific errors (using errors package for sentinel errors)
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoFileUploaded  = errors.New("no file uploaded")
)

// MapAnalyticsError maps workbook and session errors to HTTP problem
// details. It returns nil when err does not belong to the analytics
// domain so the caller can fall through to the generic mapping.
func MapAnalyticsError(err error, instance string) *ProblemDetails {
	var sheetErr *dataprocessing.SheetNotFoundError
	var colErr *dataprocessing.MissingColumnsError

	switch {
	case errors.Is(err, dataprocessing.ErrUnsupportedFormat):
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeWorkbookUnsupported,
			"Unsupported Workbook Format",
			"The uploaded file is not a recognizable .xlsx or .xls workbook.",
			instance,
		).WithExtension("error_code", "UNSUPPORTED_FORMAT")

	case errors.As(err, &sheetErr):
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeSheetNotFound,
			"Posts Sheet Not Found",
			err.Error(),
			instance,
		).WithExtension("error_code", "SHEET_NOT_FOUND").
			WithExtension("sheet", sheetErr.Sheet).
			WithExtension("available_sheets", sheetErr.Available)

	case errors.As(err, &colErr):
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeColumnsMissing,
			"Required Columns Missing",
			err.Error(),
			instance,
		).WithExtension("error_code", "COLUMNS_MISSING").
			WithExtension("missing_columns", colErr.Columns)

	case errors.Is(err, ErrSessionNotFound):
		return NewProblemDetails(
			http.StatusNotFound,
			TypeSessionNotFound,
			"Session Not Found",
			"No dataset is loaded for this session. Upload a workbook first.",
			instance,
		).WithExtension("error_code", "SESSION_NOT_FOUND")

	case errors.Is(err, ErrNoFileUploaded):
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeValidation,
			"No File Uploaded",
			"The multipart form did not contain a workbook file.",
			instance,
		).WithExtension("error_code", "NO_FILE_UPLOADED")
	}

	return nil
}
