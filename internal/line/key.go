package line

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

// InitialKey is the canonical key of the standard starting position.
const InitialKey = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -"

// Key returns the canonical key of pos: its FEN without the halfmove and
// fullmove counters. The en-passant square is kept only when an en-passant
// capture is actually available, so a double pawn push that cannot be
// answered en passant does not split transpositions.
func Key(pos *chess.Position) string {
	parts := strings.Fields(pos.String())
	if len(parts) < 4 {
		return strings.Join(parts, " ")
	}
	if parts[3] != "-" && !hasEnPassantCapture(pos) {
		parts[3] = "-"
	}
	return strings.Join(parts[:4], " ")
}

// KeyFromFEN parses fen and returns its canonical key. Missing counters are
// accepted.
func KeyFromFEN(fen string) (string, error) {
	pos, err := PositionFromFEN(fen)
	if err != nil {
		return "", err
	}
	return Key(pos), nil
}

// PositionFromFEN parses a full or counter-less FEN.
func PositionFromFEN(fen string) (*chess.Position, error) {
	parts := strings.Fields(strings.TrimSpace(fen))
	if len(parts) < 4 {
		return nil, fmt.Errorf("invalid FEN %q", fen)
	}
	full := strings.Join(parts[:4], " ")
	if len(parts) >= 6 {
		full += " " + parts[4] + " " + parts[5]
	} else {
		full += " 0 1"
	}
	opt, err := chess.FEN(full)
	if err != nil {
		return nil, fmt.Errorf("invalid FEN %q: %w", fen, err)
	}
	return chess.NewGame(opt).Position(), nil
}

func hasEnPassantCapture(pos *chess.Position) bool {
	for _, mv := range pos.ValidMoves() {
		if mv.HasTag(chess.EnPassant) {
			return true
		}
	}
	return false
}
