package wurdz

import "strings"

// CheckConnected reports whether the submitted tiles form a single
// 4-adjacency connected group. Zero or one tile counts as connected.
// Only the submitted batch is examined; previously validated tiles on the
// board do not extend adjacency.
func CheckConnected(board []Placement) bool {
	if len(board) <= 1 {
		return true
	}

	occupied := make(map[Coord]bool, len(board))
	for _, p := range board {
		occupied[Coord{Row: p.Row, Col: p.Col}] = true
	}

	start := Coord{Row: board[0].Row, Col: board[0].Col}
	visited := map[Coord]bool{start: true}
	queue := []Coord{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range [4]Coord{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			next := Coord{Row: cur.Row + d.Row, Col: cur.Col + d.Col}
			if occupied[next] && !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	return len(visited) == len(occupied)
}

// ExtractWords scans the submitted tiles and returns every horizontal and
// vertical run of length >= 2, horizontal rows first. Words come back
// lowercase with the cells they cover.
func ExtractWords(board []Placement) []Word {
	if len(board) == 0 {
		return nil
	}

	grid := make(map[Coord]byte, len(board))
	minRow, maxRow := board[0].Row, board[0].Row
	minCol, maxCol := board[0].Col, board[0].Col
	for _, p := range board {
		grid[Coord{Row: p.Row, Col: p.Col}] = p.Letter
		if p.Row < minRow {
			minRow = p.Row
		}
		if p.Row > maxRow {
			maxRow = p.Row
		}
		if p.Col < minCol {
			minCol = p.Col
		}
		if p.Col > maxCol {
			maxCol = p.Col
		}
	}

	var words []Word

	flush := func(run []byte, cells []Coord, dir WordDirection) {
		if len(run) >= 2 {
			words = append(words, Word{
				Word:      strings.ToLower(string(run)),
				Positions: append([]Coord(nil), cells...),
				Direction: dir,
			})
		}
	}

	for row := minRow; row <= maxRow; row++ {
		var run []byte
		var cells []Coord
		// The extra column flushes a run ending at the bounding-box edge.
		for col := minCol; col <= maxCol+1; col++ {
			if letter, ok := grid[Coord{Row: row, Col: col}]; ok {
				run = append(run, letter)
				cells = append(cells, Coord{Row: row, Col: col})
				continue
			}
			flush(run, cells, Horizontal)
			run, cells = run[:0], cells[:0]
		}
	}

	for col := minCol; col <= maxCol; col++ {
		var run []byte
		var cells []Coord
		for row := minRow; row <= maxRow+1; row++ {
			if letter, ok := grid[Coord{Row: row, Col: col}]; ok {
				run = append(run, letter)
				cells = append(cells, Coord{Row: row, Col: col})
				continue
			}
			flush(run, cells, Vertical)
			run, cells = run[:0], cells[:0]
		}
	}

	return words
}
