// Package catalog error translation.
//
// Row-level store failures reach operators (hotel staff, not DBAs) through
// the import summary, so technical errors are rewritten into plain language
// with a short code they can quote to support.
//
// Error codes:
//
//	DB001 - duplicate key                DB004 - connection refused
//	DB002 - unique constraint            DB005 - connection reset
//	DB003 - foreign key                  DB006 - timeout
//	VAL001 - invalid input syntax        SEC001 - permission denied
//	CAP001 - missing column or table     ERR000 - fallback
//
// Patterns are matched case-insensitively with strings.Contains; the first
// match wins, so specific patterns come before general ones.
package catalog

import "strings"

// UserMessage is the operator-facing form of a technical error.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A matching record already exists",
			Action:  "Check the file for rows that name the same item twice",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "This value must be unique but already exists",
			Action:  "Check the file for duplicate entries",
			Code:    "DB002",
		},
	},
	{
		pattern: "violates unique",
		msg: UserMessage{
			Message: "This value must be unique but already exists",
			Action:  "Check the file for duplicate entries",
			Code:    "DB002",
		},
	},
	{
		pattern: "foreign key",
		msg: UserMessage{
			Message: "A referenced record does not exist",
			Action:  "Re-run the import; the category may have failed earlier in the file",
			Code:    "DB003",
		},
	},
	{
		pattern: "permission denied",
		msg: UserMessage{
			Message: "The database rejected the operation",
			Action:  "Contact support with this code",
			Code:    "SEC001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to reach the database",
			Action:  "Try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "The database connection was interrupted",
			Action:  "Try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "The operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "invalid input",
		msg: UserMessage{
			Message: "A value could not be stored in its column",
			Action:  "Check the row for stray characters in numeric fields",
			Code:    "VAL001",
		},
	},
	{
		pattern: "does not exist",
		msg: UserMessage{
			Message: "The store is missing a column or table this import needs",
			Action:  "Run the pending menu migrations",
			Code:    "CAP001",
		},
	},
}

// MapError translates a technical error into a UserMessage.
// Unmatched errors fall back to a generic message with code ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{Message: "Unknown error", Code: "ERR000"}
	}

	msg := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(msg, p.pattern) {
			return p.msg
		}
	}

	return UserMessage{
		Message: "An unexpected error occurred",
		Action:  "Try again or contact support",
		Code:    "ERR000",
	}
}
