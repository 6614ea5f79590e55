package scene

import "fmt"

// GridCell places an actor in a row/column of a PlanarGrid.
type GridCell struct {
	Row     int
	Column  int
	Width   float64
	Height  float64
	ActorID string
}

// PlanarGrid lays actors out on the XY plane of an anchor actor. Columns grow
// along +X and rows along -Y; the whole grid is centred on the anchor and each
// actor is centred in its cell.
type PlanarGrid struct {
	anchorID string
	cells    []GridCell
}

// NewPlanarGrid creates an empty layout for the anchor.
func NewPlanarGrid(anchorID string) *PlanarGrid {
	return &PlanarGrid{anchorID: anchorID}
}

// AddCell registers a cell.
func (p *PlanarGrid) AddCell(c GridCell) {
	p.cells = append(p.cells, c)
}

// Cells returns the registered cells.
func (p *PlanarGrid) Cells() []GridCell {
	return append([]GridCell(nil), p.cells...)
}

// Positions computes the local position of every cell, in registration order.
func (p *PlanarGrid) Positions() []Vector3 {
	colWidths := map[int]float64{}
	rowHeights := map[int]float64{}
	maxRow, maxCol := -1, -1
	for _, c := range p.cells {
		if c.Width > colWidths[c.Column] {
			colWidths[c.Column] = c.Width
		}
		if c.Height > rowHeights[c.Row] {
			rowHeights[c.Row] = c.Height
		}
		maxRow = max(maxRow, c.Row)
		maxCol = max(maxCol, c.Column)
	}
	colStart := make([]float64, maxCol+2)
	for i := 0; i <= maxCol; i++ {
		colStart[i+1] = colStart[i] + colWidths[i]
	}
	rowStart := make([]float64, maxRow+2)
	for i := 0; i <= maxRow; i++ {
		rowStart[i+1] = rowStart[i] + rowHeights[i]
	}
	totalW, totalH := colStart[maxCol+1], rowStart[maxRow+1]

	out := make([]Vector3, len(p.cells))
	for i, c := range p.cells {
		out[i] = Vector3{
			X: colStart[c.Column] + colWidths[c.Column]/2 - totalW/2,
			Y: totalH/2 - (rowStart[c.Row] + rowHeights[c.Row]/2),
		}
	}
	return out
}

// Apply moves every cell actor to its computed position.
func (p *PlanarGrid) Apply(g *Graph) error {
	for i, pos := range p.Positions() {
		id := p.cells[i].ActorID
		a, ok := g.Actor(id)
		if !ok || a.ParentID != p.anchorID {
			return fmt.Errorf("scene: grid cell %d is not a child of the anchor", i)
		}
		if err := g.SetPosition(id, pos); err != nil {
			return err
		}
	}
	return nil
}
