package feed

// # Error Codes Reference
//
// Pipeline failures are mapped to user-facing messages with a stable code,
// printed by the CLIs and returned by the HTTP API.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: Upload exceeds the configured size limit
//	FILE002 - Invalid CSV: Input could not be parsed as delimited text
//	FILE003 - Encoding error: Input is not UTF-8 text
//	FILE004 - No file: No file was provided
//	FILE005 - Empty file: Input has no header row
//	FILE006 - Not found: Input file does not exist
//	FILE007 - Permission denied: File cannot be read or written
//	FILE008 - Write failed: Output could not be written
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL004 - Missing column: A required column is missing from the input
//
// # Run Errors (RUN001-RUN099)
//
//	RUN002 - System busy: Too many pipeline runs in progress
//	RUN004 - Request cancelled
//	RUN005 - Request timeout
//
// # Default Error (ERR000)
//
// Patterns are matched case-insensitively with strings.Contains against the
// error text; the first match wins, so specific patterns come first.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "Required column is missing from the input",
			Action:  "Check that the file has a search_price column",
			Code:    "VAL004",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save the file as UTF-8",
			Code:    "FILE003",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The file is empty",
			Action:  "Provide a file with a header row",
			Code:    "FILE005",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was provided",
			Action:  "Attach the feed as the \"file\" form field",
			Code:    "FILE004",
		},
	},
	{
		pattern: "write failed",
		msg: UserMessage{
			Message: "Output could not be written",
			Action:  "Check that the output directory exists and is writable",
			Code:    "FILE008",
		},
	},
	{
		pattern: "no such file or directory",
		msg: UserMessage{
			Message: "File not found",
			Action:  "Check the file path",
			Code:    "FILE006",
		},
	},
	{
		pattern: "permission denied",
		msg: UserMessage{
			Message: "Permission denied",
			Action:  "Check file and directory permissions",
			Code:    "FILE007",
		},
	},
	{
		pattern: "parse error",
		msg: UserMessage{
			Message: "File is not valid delimited text",
			Action:  "Ensure the file is comma- or tab-separated with a header row",
			Code:    "FILE002",
		},
	},
	{
		pattern: "too many concurrent runs",
		msg: UserMessage{
			Message: "System is busy processing other files",
			Action:  "Please wait a moment and try again",
			Code:    "RUN002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "RUN004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "RUN005",
		},
	},
}

// defaultMessage is returned when no pattern matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the logs for details",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Returns the zero UserMessage for a nil error and ERR000 when nothing matches.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
