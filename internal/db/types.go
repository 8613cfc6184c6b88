package db

type Eval struct {
	PositionKey string `db:"position_key"`
	FEN         string `db:"fen"`
	Score       int    `db:"score"`
	Scored      bool   `db:"scored"`
	Depth       int    `db:"depth"`
}

type EvalSummary struct {
	Total      int `db:"total"`
	Unscorable int `db:"unscorable"`
	MaxDepth   int `db:"max_depth"`
}
