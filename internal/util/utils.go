package util

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

// GetLineAndColumn converts a byte offset into a 1-based line and column.
// Columns count bytes, matching token positions.
func GetLineAndColumn(src string, pos int) (line int, column int) {
	line = 1
	column = 1
	for i := 0; i < len(src) && i < pos; i++ {
		if src[i] == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return
}

// GetContextLines extracts and formats context lines around an error position
func GetContextLines(src string, errorLine, errorCol int) string {
	var result bytes.Buffer

	lines := bytes.Split([]byte(src), []byte("\n"))

	// Show 2 lines before the error line (if available)
	startLine := errorLine - 2
	if startLine < 1 {
		startLine = 1
	}

	for i := startLine; i <= errorLine && i <= len(lines); i++ {
		lineContent := string(lines[i-1])

		if i == errorLine {
			margin := fmt.Sprintf("  >  %3d | ", i)
			result.WriteString(fmt.Sprintf("%s%s\n", margin, lineContent))
			col := errorCol - 1
			if col > len(lineContent) {
				col = len(lineContent)
			}
			// the caret sits under the character holding the byte
			for col > 0 && col < len(lineContent) && !utf8.RuneStart(lineContent[col]) {
				col--
			}
			result.WriteString(fmt.Sprintf("%s^ unexpected here",
				replaceVisibleWithSpaces(margin+lineContent[:col])))
		} else {
			result.WriteString(fmt.Sprintf("     %3d | %s\n", i, lineContent))
		}
	}

	return result.String()
}

// replaceVisibleWithSpaces replaces all non-whitespace characters with spaces
// while preserving tabs for correct alignment.
func replaceVisibleWithSpaces(s string) string {
	var buf bytes.Buffer
	for _, c := range s {
		if c == '\t' {
			buf.WriteRune('\t')
		} else {
			buf.WriteRune(' ')
		}
	}
	return buf.String()
}
