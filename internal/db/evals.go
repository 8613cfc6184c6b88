package db

import "context"

// find an evaluation by its canonical position key
func (s *Store) EvalByKey(ctx context.Context, key string) (Eval, error) {
	var e Eval
	err := s.db.GetContext(ctx, &e, `
		SELECT position_key, fen, score, scored, depth
		FROM evals
		WHERE position_key = ?
	`, key)
	return e, err
}

// insert or update an evaluation
func (s *Store) UpsertEval(ctx context.Context, e Eval) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO evals (position_key, fen, score, scored, depth)
		VALUES (:position_key, :fen, :score, :scored, :depth)
		ON CONFLICT(position_key) DO UPDATE SET
			fen = excluded.fen,
			score = excluded.score,
			scored = excluded.scored,
			depth = excluded.depth
	`, e)
	return err
}

func (s *Store) CountEvals(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM evals`)
	return n, err
}

func (s *Store) SummarizeEvals(ctx context.Context) (EvalSummary, error) {
	var sum EvalSummary
	err := s.db.GetContext(ctx, &sum, `
		SELECT COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN scored = 0 THEN 1 ELSE 0 END), 0) AS unscorable,
			COALESCE(MAX(depth), 0) AS max_depth
		FROM evals
	`)
	return sum, err
}
