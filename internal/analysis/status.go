package analysis

import (
	"bufio"
	"strings"
)

// Status is the one-word classification a reply may carry.
type Status string

const (
	StatusUnknown  Status = ""
	StatusGood     Status = "Good"
	StatusWarning  Status = "Warning"
	StatusCritical Status = "Critical"
)

// ParseStatus finds the first "Status: <word>" line in an analysis and
// returns the classification. Replies are free text, so anything that
// doesn't match yields StatusUnknown. Only used for display.
func ParseStatus(text string) Status {
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		line = strings.TrimLeft(line, "*#-> ")

		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.ToLower(strings.Trim(line[:idx], "* "))
		if key != "status" && key != "overall status" {
			continue
		}

		value := strings.ToLower(strings.Trim(line[idx+1:], "*[]. "))
		switch {
		case strings.HasPrefix(value, "good"):
			return StatusGood
		case strings.HasPrefix(value, "warning"):
			return StatusWarning
		case strings.HasPrefix(value, "critical"):
			return StatusCritical
		}
		return StatusUnknown
	}
	return StatusUnknown
}
