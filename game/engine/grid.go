package engine

// Grid is a parsed, queryable ASCII map. The zero value behaves as an
// empty grid where every coordinate is a wall.
type Grid struct {
	rows  []string
	tiles [][]Tile
}

// ParseGrid converts layout rows into a Grid. Rows may have differing
// lengths; coordinates beyond a row's literal width read as walls.
func ParseGrid(rows []string) Grid {
	g := Grid{rows: rows, tiles: make([][]Tile, len(rows))}
	for y, row := range rows {
		g.tiles[y] = make([]Tile, len(row))
		for x := 0; x < len(row); x++ {
			g.tiles[y][x] = classifyTile(row[x])
		}
	}
	return g
}

func classifyTile(ch byte) Tile {
	switch ch {
	case 'W':
		return Tile{Kind: Wall}
	case 'S':
		return Tile{Kind: Start}
	case 'C':
		return Tile{Kind: Chest}
	}
	if ch >= '1' && ch <= '9' {
		return Tile{Kind: Door, DoorID: int(ch - '0')}
	}
	// '.' and anything unrecognized walks like a floor
	return Tile{Kind: Floor}
}

// TileAt returns the tile at (x, y). Any out-of-bounds coordinate,
// negative included, is a wall, so callers never bounds-check.
func (g Grid) TileAt(x, y int) Tile {
	if y < 0 || y >= len(g.tiles) {
		return Tile{Kind: Wall}
	}
	row := g.tiles[y]
	if x < 0 || x >= len(row) {
		return Tile{Kind: Wall}
	}
	return row[x]
}

// Width returns the width of the widest row.
func (g Grid) Width() int {
	w := 0
	for _, row := range g.rows {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// Height returns the number of rows.
func (g Grid) Height() int {
	return len(g.rows)
}

// Rows returns the original layout rows.
func (g Grid) Rows() []string {
	return g.rows
}

// FindTile returns the position of the first tile of the given kind in
// row-major order.
func (g Grid) FindTile(kind TileKind) (Position, bool) {
	for y, row := range g.tiles {
		for x, tile := range row {
			if tile.Kind == kind {
				return Position{X: x, Y: y}, true
			}
		}
	}
	return Position{}, false
}

// FindDoor returns the position of the door with the given id.
func (g Grid) FindDoor(id int) (Position, bool) {
	for y, row := range g.tiles {
		for x, tile := range row {
			if tile.Kind == Door && tile.DoorID == id {
				return Position{X: x, Y: y}, true
			}
		}
	}
	return Position{}, false
}

// FindStart returns the position of the start marker, falling back to
// (1, 1) when the layout has none.
func (g Grid) FindStart() Position {
	if pos, ok := g.FindTile(Start); ok {
		return pos
	}
	return Position{X: 1, Y: 1}
}

// CountTiles returns how many tiles of the given kind the grid holds.
func (g Grid) CountTiles(kind TileKind) int {
	n := 0
	for _, row := range g.tiles {
		for _, tile := range row {
			if tile.Kind == kind {
				n++
			}
		}
	}
	return n
}

// DoorIDs returns the distinct door ids present in the grid, in
// row-major discovery order.
func (g Grid) DoorIDs() []int {
	seen := make(map[int]bool)
	var ids []int
	for _, row := range g.tiles {
		for _, tile := range row {
			if tile.Kind == Door && !seen[tile.DoorID] {
				seen[tile.DoorID] = true
				ids = append(ids, tile.DoorID)
			}
		}
	}
	return ids
}
