package cookies

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Netscape cookie line layout: 7 tab-separated fields.
const netscapeFieldCount = 7

// HttpOnly marker prefix used by browser exporters.
const httpOnlyPrefix = "#HttpOnly_"

// ValidateNetscape checks that data is a non-empty Netscape-format cookie
// file. The check is syntactic only: at least one line must parse as a
// cookie record (7 tab-separated fields with a numeric expiry). Comment
// lines, blank lines, and individually malformed lines are tolerated, the
// same way yt-dlp's own reader skips them. Cookie values are never included
// in error messages.
func ValidateNetscape(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("cookie file is empty")
	}

	valid := 0
	lineNo := 0
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		if line == "" {
			continue
		}

		if strings.HasPrefix(line, httpOnlyPrefix) {
			line = line[len(httpOnlyPrefix):]
		} else if strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != netscapeFieldCount {
			continue
		}
		if _, err := strconv.ParseInt(fields[4], 10, 64); err != nil {
			continue
		}
		valid++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read cookie file: %w", err)
	}

	if valid == 0 {
		return fmt.Errorf("no Netscape-format cookie lines found (line count: %d)", lineNo)
	}
	return nil
}
