package internal

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// LogLine is one function entry or exit marker from a solver trace, e.g.
//
//	mpc-1234 [002] 5678.123456: tracing_mark_write: CLIENT: @glp_simplex# - start
type LogLine struct {
	Function  string
	Timestamp decimal.Decimal
	Marker    string // text after '#'
}

// ParseLine extracts the timestamp and function name from a trace line. The delimiters
// ']', ':', '@' and '#' must appear in that order; each one is searched after the previous.
func ParseLine(line string) (LogLine, error) {
	line = strings.TrimSpace(line)

	tsStart, ok := indexAfter(line, ']', 0)
	if !ok {
		return LogLine{}, fmt.Errorf("%w: missing ']'", ErrMalformedLine)
	}
	tsEnd, ok := indexAfter(line, ':', tsStart+1)
	if !ok {
		return LogLine{}, fmt.Errorf("%w: missing ':' after ']'", ErrMalformedLine)
	}
	nameStart, ok := indexAfter(line, '@', tsEnd+1)
	if !ok {
		return LogLine{}, fmt.Errorf("%w: missing '@' after timestamp", ErrMalformedLine)
	}
	nameEnd, ok := indexAfter(line, '#', nameStart+1)
	if !ok {
		return LogLine{}, fmt.Errorf("%w: missing '#' after function name", ErrMalformedLine)
	}

	tsStr := strings.TrimSpace(line[tsStart+1 : tsEnd])
	ts, err := decimal.NewFromString(tsStr)
	if err != nil {
		return LogLine{}, fmt.Errorf("%w: invalid timestamp '%s'", ErrMalformedLine, tsStr)
	}

	name := line[nameStart+1 : nameEnd]
	if name == "" {
		return LogLine{}, fmt.Errorf("%w: empty function name", ErrMalformedLine)
	}

	return LogLine{
		Function:  name,
		Timestamp: ts,
		Marker:    line[nameEnd+1:],
	}, nil
}

// indexAfter returns the position of the first c in s at or after from.
func indexAfter(s string, c byte, from int) (int, bool) {
	if from > len(s) {
		return -1, false
	}
	idx := strings.IndexByte(s[from:], c)
	if idx < 0 {
		return -1, false
	}
	return from + idx, true
}
