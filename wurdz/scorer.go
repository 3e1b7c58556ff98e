package wurdz

import "speedwurdz/tile"

type WordScore struct {
	Word        string
	Length      int
	TileScore   int
	LengthBonus int
	TotalScore  int
}

type ScoreResult struct {
	TotalScore     int
	TileScore      int
	LengthBonus    int
	ValidWordCount int
	WordScores     []WordScore
}

// ScoreBoard scores a board layout. Only words the dictionary accepts count.
// A cell contributes its tile value once, to the first valid word covering it
// in extraction order; crossing words still each earn their own length bonus.
// Words of 5+ letters earn (length-4)*5 bonus points.
func ScoreBoard(board []Placement, dict Dictionary) ScoreResult {
	var res ScoreResult
	if len(board) == 0 {
		return res
	}

	letterAt := make(map[Coord]byte, len(board))
	for _, p := range board {
		letterAt[Coord{Row: p.Row, Col: p.Col}] = p.Letter
	}

	counted := make(map[Coord]bool, len(board))
	for _, w := range ExtractWords(board) {
		if !dict.IsValidWord(w.Word) {
			continue
		}

		ws := WordScore{Word: w.Word, Length: len(w.Word)}
		for _, pos := range w.Positions {
			if counted[pos] {
				continue
			}
			counted[pos] = true
			ws.TileScore += tile.Value(letterAt[pos])
		}
		if ws.Length >= 5 {
			ws.LengthBonus = (ws.Length - 4) * 5
		}
		ws.TotalScore = ws.TileScore + ws.LengthBonus

		res.WordScores = append(res.WordScores, ws)
		res.TileScore += ws.TileScore
		res.LengthBonus += ws.LengthBonus
		res.ValidWordCount++
	}

	res.TotalScore = res.TileScore + res.LengthBonus
	return res
}
