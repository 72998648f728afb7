package config

import "github.com/yaklabco/gorazor/pkg/diag"

// FormatCode formats a diagnostic code based on the given format.
func FormatCode(format CodeFormat, code diag.Code) string {
	title := code.Title()
	if title == string(code) {
		return string(code)
	}

	switch format {
	case CodeFormatName:
		return title
	case CodeFormatCombined:
		return string(code) + "/" + title
	case CodeFormatCode:
		return string(code)
	default:
		// Default to code format
		return string(code)
	}
}
