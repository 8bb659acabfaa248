// Package spatial provides a cache-efficient uniform grid for broad-phase
// neighbor queries over the horizontal arena plane.
//
// Cells hold entity indices (not pointers) in preallocated slices to keep
// GC pressure low; the grid is rebuilt from scratch each tick.
package spatial

import "math"

// Grid partitions the X/Z plane (centered on the origin) into fixed cells.
// Queries return candidate entity indices; the caller does exact distance
// filtering.
type Grid struct {
	cellSize    float64
	invCellSize float64
	halfX       float64
	halfZ       float64
	cols, rows  int
	cells       [][]uint32 // row-major: cells[row*cols+col]
	scratch     []uint32
}

// NewGrid creates a grid covering [-halfX, halfX] x [-halfZ, halfZ].
// cellSize should roughly equal the largest query radius. maxEntities is
// used to preallocate cell capacity.
func NewGrid(halfX, halfZ, cellSize float64, maxEntities int) *Grid {
	cols := int(math.Ceil(2 * halfX / cellSize))
	rows := int(math.Ceil(2 * halfZ / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	cells := make([][]uint32, cols*rows)
	avgPerCell := maxEntities / len(cells)
	if avgPerCell < 4 {
		avgPerCell = 4
	}
	for i := range cells {
		cells[i] = make([]uint32, 0, avgPerCell)
	}

	return &Grid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		halfX:       halfX,
		halfZ:       halfZ,
		cols:        cols,
		rows:        rows,
		cells:       cells,
		scratch:     make([]uint32, 0, 64),
	}
}

// Clear resets all cells without deallocating underlying memory.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// cellIndex maps a world position to a clamped cell index.
func (g *Grid) cellIndex(x, z float64) int {
	col := int((x + g.halfX) * g.invCellSize)
	row := int((z + g.halfZ) * g.invCellSize)

	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return row*g.cols + col
}

// Insert adds an entity index at world position (x, z). O(1).
func (g *Grid) Insert(entityID uint32, x, z float64) {
	idx := g.cellIndex(x, z)
	g.cells[idx] = append(g.cells[idx], entityID)
}

// QueryRadius returns candidate entity indices within radius of (x, z).
// Candidates are everything in the covered cells; the caller filters by
// exact distance. The returned slice is reused across calls.
func (g *Grid) QueryRadius(x, z, radius float64) []uint32 {
	g.scratch = g.scratch[:0]

	minCol := int((x - radius + g.halfX) * g.invCellSize)
	maxCol := int((x + radius + g.halfX) * g.invCellSize)
	minRow := int((z - radius + g.halfZ) * g.invCellSize)
	maxRow := int((z + radius + g.halfZ) * g.invCellSize)

	if minCol < 0 {
		minCol = 0
	}
	if maxCol >= g.cols {
		maxCol = g.cols - 1
	}
	if minRow < 0 {
		minRow = 0
	}
	if maxRow >= g.rows {
		maxRow = g.rows - 1
	}

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			g.scratch = append(g.scratch, g.cells[row*g.cols+col]...)
		}
	}
	return g.scratch
}
