package internal

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PairingMode selects how start and end lines are matched into calls.
type PairingMode string

const (
	// Line 2k starts the call that line 2k+1 ends, whatever functions they name
	PairByPosition PairingMode = "position"
	// Starts are kept on a stack per function name and popped by the matching end
	PairByName PairingMode = "name"
)

func ParsePairingMode(s string) (PairingMode, error) {
	switch PairingMode(strings.ToLower(s)) {
	case PairByPosition, "":
		return PairByPosition, nil
	case PairByName:
		return PairByName, nil
	}
	return "", fmt.Errorf("unknown pairing mode '%s', must be '%s' or '%s'", s, PairByPosition, PairByName)
}

// Call is one start/end pair.
type Call struct {
	Function string
	Start    decimal.Decimal
	End      decimal.Decimal
}

func (c Call) Elapsed() decimal.Decimal {
	return c.End.Sub(c.Start)
}

type pairer interface {
	// pair consumes a line and returns a completed call when the line closes one
	pair(line LogLine) (Call, bool, error)
	// pending is the number of starts still waiting for an end
	pending() int
}

func newPairer(format TraceFormat) pairer {
	if format.Pairing == PairByName {
		return &namePairer{
			startMarker: format.StartMarker,
			endMarker:   format.EndMarker,
			stacks:      make(map[string][]decimal.Decimal),
		}
	}
	return &positionPairer{}
}

type positionPairer struct {
	count int
	start decimal.Decimal
}

func (p *positionPairer) pair(line LogLine) (Call, bool, error) {
	p.count++
	if p.count%2 == 1 {
		p.start = line.Timestamp
		return Call{}, false, nil
	}
	return Call{Function: line.Function, Start: p.start, End: line.Timestamp}, true, nil
}

func (p *positionPairer) pending() int {
	return p.count % 2
}

type namePairer struct {
	startMarker string
	endMarker   string
	stacks      map[string][]decimal.Decimal
}

func (p *namePairer) pair(line LogLine) (Call, bool, error) {
	switch {
	case strings.Contains(line.Marker, p.endMarker):
		stack := p.stacks[line.Function]
		if len(stack) == 0 {
			return Call{}, false, fmt.Errorf("%w: %s", ErrUnmatchedEnd, line.Function)
		}
		start := stack[len(stack)-1]
		p.stacks[line.Function] = stack[:len(stack)-1]
		return Call{Function: line.Function, Start: start, End: line.Timestamp}, true, nil
	case strings.Contains(line.Marker, p.startMarker):
		p.stacks[line.Function] = append(p.stacks[line.Function], line.Timestamp)
		return Call{}, false, nil
	}
	return Call{}, false, fmt.Errorf("%w: '%s'", ErrUnknownMarker, strings.TrimSpace(line.Marker))
}

func (p *namePairer) pending() int {
	n := 0
	for _, stack := range p.stacks {
		n += len(stack)
	}
	return n
}
