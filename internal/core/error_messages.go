package core

// error_messages.go maps technical errors to user-facing messages.
//
// # Error Codes Reference
//
// Users quote the code to support staff; the technical error is in the logs.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large         Patterns: "file too large"
//	FILE002 - Unreadable spreadsheet Patterns: "unreadable spreadsheet"
//	FILE003 - No file selected       Patterns: "no file provided"
//	FILE004 - No data rows           Patterns: "empty sheet"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Required field empty       Patterns: "required field"
//	VAL002 - Required columns unmapped  Patterns: "required columns not mapped"
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Session expired   Patterns: "session not found"
//	SES002 - Not ready         Patterns: "import not ready"
//	SES003 - Bad mapping index Patterns: "mapping index"
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - System busy       Patterns: "too many imports"
//	IMP002 - Import rejected   Patterns: "import rejected"
//	IMP003 - Request cancelled Patterns: "context canceled"
//	IMP004 - Request timeout   Patterns: "context deadline exceeded"
//
// # Schema Errors (SCH001-SCH099)
//
//	SCH001 - Unknown schema    Patterns: "unknown schema"
//	SCH002 - Bad parameters    Patterns: "invalid parameter"
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Connection refused Patterns: "connection refused"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the logs for the original error.
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// File errors
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the sheet into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "unreadable spreadsheet",
		msg: UserMessage{
			Message: "The file could not be read as a spreadsheet",
			Action:  "Upload an .xlsx workbook or a .csv file",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please choose a spreadsheet to import",
			Code:    "FILE003",
		},
	},
	{
		pattern: "empty sheet",
		msg: UserMessage{
			Message: "The spreadsheet has no data rows",
			Action:  "Fill in the template below the header row and upload it again",
			Code:    "FILE004",
		},
	},

	// Validation errors; "required columns" must precede "import not ready"
	{
		pattern: "required columns not mapped",
		msg: UserMessage{
			Message: "Some required fields are not mapped to a column",
			Action:  "Select a spreadsheet column for every field marked *",
			Code:    "VAL002",
		},
	},
	{
		pattern: "required field",
		msg: UserMessage{
			Message: "Required field is empty",
			Action:  "Ensure all required columns have values",
			Code:    "VAL001",
		},
	},

	// Session errors
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "Import session not found",
			Action:  "The session may have expired. Please start the import again",
			Code:    "SES001",
		},
	},
	{
		pattern: "import not ready",
		msg: UserMessage{
			Message: "The import is not ready to run",
			Action:  "Upload a file before importing",
			Code:    "SES002",
		},
	},
	{
		pattern: "mapping index",
		msg: UserMessage{
			Message: "That field does not exist in this template",
			Action:  "Reload the import dialog and try again",
			Code:    "SES003",
		},
	},

	// Import errors
	{
		pattern: "too many imports",
		msg: UserMessage{
			Message: "System is busy processing other imports",
			Action:  "Please wait a moment and try again",
			Code:    "IMP001",
		},
	},
	{
		pattern: "import rejected",
		msg: UserMessage{
			Message: "The records could not be saved",
			Action:  "No changes were made. Please try again",
			Code:    "IMP002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "IMP003",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "IMP004",
		},
	},

	// Schema errors
	{
		pattern: "unknown schema",
		msg: UserMessage{
			Message: "Unknown import type",
			Action:  "This screen does not support imports",
			Code:    "SCH001",
		},
	},
	{
		pattern: "invalid parameter",
		msg: UserMessage{
			Message: "The import options are invalid",
			Action:  "Check the selected date and class",
			Code:    "SCH002",
		},
	},

	// Database errors
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. Unknown
// errors map to ERR000; nil maps to the zero UserMessage.
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

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
