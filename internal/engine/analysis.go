package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MateScore is the magnitude a forced mate maps to, minus the distance to mate.
const MateScore = 999

// stopGrace is how long a search may take to answer "stop".
const stopGrace = 5 * time.Second

var errTimeout = errors.New("engine read timeout")

// Score is an engine score from the side to move's point of view.
type Score struct {
	Mate  bool
	Value int
	// Bound is "lowerbound", "upperbound" or empty for an exact score.
	Bound string
}

// Centipawns maps the score to centipawns. A mate in n maps to
// mateScore-n, being mated in n to -mateScore+n, and an already mated side
// to -mateScore.
func (s Score) Centipawns(mateScore int) int {
	if !s.Mate {
		return s.Value
	}
	if s.Value > 0 {
		return mateScore - s.Value
	}
	return -mateScore - s.Value
}

func (s Score) String() string {
	kind := "cp"
	if s.Mate {
		kind = "mate"
	}
	out := kind + " " + strconv.Itoa(s.Value)
	if s.Bound != "" {
		out += " " + s.Bound
	}
	return out
}

// Info is one parsed "info" line.
type Info struct {
	Depth    int
	MultiPV  int
	Score    Score
	HasScore bool
	PV       string
}

// Analysis is the outcome of one depth-limited search.
type Analysis struct {
	Depth    int
	Score    Score
	HasScore bool
	PV       string
	BestMove string
	TimedOut bool
}

// Analyse searches fen to depth plies and returns the deepest exact
// principal score. Bound scores are used only when no exact score arrived.
// With a positive timeout the search is stopped once it elapses and whatever
// arrived so far is returned.
func (e *UCIEngine) Analyse(ctx context.Context, fen string, depth int, timeout time.Duration) (Analysis, error) {
	if err := e.IsReady(ctx); err != nil {
		return Analysis{}, err
	}
	if err := e.Send("position fen " + fen); err != nil {
		return Analysis{}, err
	}
	if err := e.Send(fmt.Sprintf("go depth %d", depth)); err != nil {
		return Analysis{}, err
	}

	var res Analysis
	var bounded Info
	var stopAt time.Time
	if timeout > 0 {
		stopAt = time.Now().Add(timeout)
	}
	stopped := false

	for {
		var wait time.Duration
		var err error
		var line string
		if !stopAt.IsZero() {
			wait = time.Until(stopAt)
			if wait <= 0 {
				err = errTimeout
			}
		}
		if err == nil {
			line, err = e.ReadLine(ctx, wait)
		}
		if errors.Is(err, errTimeout) {
			if stopped {
				return Analysis{}, fmt.Errorf("engine ignored stop after %s", stopGrace)
			}
			stopped = true
			res.TimedOut = true
			if err := e.Send("stop"); err != nil {
				return Analysis{}, err
			}
			stopAt = time.Now().Add(stopGrace)
			continue
		}
		if err != nil {
			return Analysis{}, err
		}

		if strings.HasPrefix(line, "bestmove") {
			parts := strings.Fields(line)
			if len(parts) >= 2 {
				res.BestMove = parts[1]
			}
			break
		}

		info, ok := parseInfoLine(line)
		if !ok || info.MultiPV > 1 {
			continue
		}
		if info.Score.Bound != "" {
			if info.Depth >= bounded.Depth {
				bounded = info
			}
			continue
		}
		if res.HasScore && info.Depth < res.Depth {
			continue
		}
		res.Depth = info.Depth
		res.Score = info.Score
		res.HasScore = true
		res.PV = info.PV
	}

	if !res.HasScore && bounded.HasScore {
		res.Depth = bounded.Depth
		res.Score = bounded.Score
		res.HasScore = true
		res.PV = bounded.PV
	}
	return res, nil
}

// WhiteCentipawns returns the analysis score from white's point of view.
// fen is the position the analysis was run on.
func (a Analysis) WhiteCentipawns(fen string) int {
	cp := a.Score.Centipawns(MateScore)
	parts := strings.Fields(fen)
	if len(parts) > 1 && parts[1] == "b" {
		return -cp
	}
	return cp
}

func parseInfoLine(line string) (Info, bool) {
	if !strings.HasPrefix(line, "info ") {
		return Info{}, false
	}
	parts := strings.Fields(line)
	var info Info
	for i := 1; i < len(parts); i++ {
		switch parts[i] {
		case "depth":
			if i+1 < len(parts) {
				if v, err := strconv.Atoi(parts[i+1]); err == nil {
					info.Depth = v
				}
				i++
			}
		case "multipv":
			if i+1 < len(parts) {
				if v, err := strconv.Atoi(parts[i+1]); err == nil {
					info.MultiPV = v
				}
				i++
			}
		case "score":
			if i+2 >= len(parts) {
				return Info{}, false
			}
			v, err := strconv.Atoi(parts[i+2])
			if err != nil {
				return Info{}, false
			}
			switch parts[i+1] {
			case "cp":
				info.Score = Score{Value: v}
			case "mate":
				info.Score = Score{Mate: true, Value: v}
			default:
				return Info{}, false
			}
			info.HasScore = true
			i += 2
			if i+1 < len(parts) && (parts[i+1] == "lowerbound" || parts[i+1] == "upperbound") {
				info.Score.Bound = parts[i+1]
				i++
			}
		case "pv":
			info.PV = strings.Join(parts[i+1:], " ")
			i = len(parts)
		case "string", "refutation", "currline":
			i = len(parts)
		default:
			// every other key carries a single value
			i++
		}
	}
	if !info.HasScore {
		return Info{}, false
	}
	return info, true
}
