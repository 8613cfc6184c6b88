package line

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

// ErrIllegalMove is returned when a SAN token does not describe a legal move
// in the position it is played from.
var ErrIllegalMove = errors.New("illegal move")

// Step is one position along a line. The first step of every line is the
// initial position and has no move.
type Step struct {
	Position *chess.Position
	Move     *chess.Move
	UCI      string
	Mover    chess.Color
}

// Line is an expanded move sequence.
type Line struct {
	Plies int
	Steps []Step
}

// Final returns the last position reached by the line.
func (l Line) Final() *chess.Position {
	if len(l.Steps) == 0 {
		return nil
	}
	return l.Steps[len(l.Steps)-1].Position
}

// Parse expands PGN movetext such as "1. e4 e5 2. Nf3" into the sequence of
// positions it reaches from the standard starting position.
func Parse(movetext string) (Line, error) {
	tokens, err := sanTokens(movetext)
	if err != nil {
		return Line{}, err
	}

	pos := chess.StartingPosition()
	steps := make([]Step, 0, len(tokens)+1)
	steps = append(steps, Step{Position: pos, Mover: chess.NoColor})

	notation := chess.UCINotation{}
	for i, tok := range tokens {
		mv, err := chess.AlgebraicNotation{}.Decode(pos, tok)
		if err != nil {
			return Line{}, fmt.Errorf("ply %d %q: %w", i+1, tok, ErrIllegalMove)
		}
		next := pos.Update(mv)
		steps = append(steps, Step{
			Position: next,
			Move:     mv,
			UCI:      notation.Encode(pos, mv),
			Mover:    pos.Turn(),
		})
		pos = next
	}

	return Line{Plies: len(tokens), Steps: steps}, nil
}

// sanTokens strips move numbers, comments, variations, NAGs and result
// markers from movetext and returns the bare SAN tokens.
func sanTokens(movetext string) ([]string, error) {
	var out []string
	depth := 0
	text := movetext
	for len(text) > 0 {
		c := text[0]
		switch {
		case c == '{':
			end := strings.IndexByte(text, '}')
			if end < 0 {
				return nil, fmt.Errorf("unterminated comment")
			}
			text = text[end+1:]
			continue
		case c == ';':
			end := strings.IndexByte(text, '\n')
			if end < 0 {
				text = ""
			} else {
				text = text[end+1:]
			}
			continue
		case c == '(':
			depth++
			text = text[1:]
			continue
		case c == ')':
			if depth == 0 {
				return nil, fmt.Errorf("unbalanced variation")
			}
			depth--
			text = text[1:]
			continue
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			text = text[1:]
			continue
		}

		end := strings.IndexAny(text, " \t\r\n{};()")
		if end < 0 {
			end = len(text)
		}
		word := text[:end]
		text = text[end:]
		if depth > 0 {
			continue
		}

		if isResult(word) {
			break
		}
		word = stripMoveNumber(word)
		if word == "" || strings.HasPrefix(word, "$") {
			continue
		}
		word = strings.TrimRight(word, "!?")
		if strings.HasPrefix(word, "0-0") {
			word = strings.ReplaceAll(word, "0", "O")
		}
		if word == "" {
			continue
		}
		out = append(out, word)
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced variation")
	}
	return out, nil
}

func isResult(word string) bool {
	switch word {
	case "1-0", "0-1", "1/2-1/2", "*":
		return true
	}
	return false
}

// stripMoveNumber removes a leading "12." or "12..." prefix.
func stripMoveNumber(word string) string {
	i := 0
	for i < len(word) && word[i] >= '0' && word[i] <= '9' {
		i++
	}
	if i == 0 || i == len(word) || word[i] != '.' {
		return word
	}
	return strings.TrimLeft(word[i:], ".")
}
