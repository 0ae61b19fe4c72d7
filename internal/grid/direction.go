package grid

// Direction names one of the eight neighbors of a cell, or the cell itself.
type Direction uint8

const (
	Null Direction = iota
	Left
	Right
	Down
	Up
	DownLeft
	DownRight
	UpLeft
	UpRight
)

var vectorTable = [9]IVec2{
	{0, 0},
	{-1, 0},
	{1, 0},
	{0, -1},
	{0, 1},
	{-1, -1},
	{1, -1},
	{-1, 1},
	{1, 1},
}

var directionNames = [9]string{"null", "left", "right", "down", "up", "down-left", "down-right", "up-left", "up-right"}

// Orthogonal is the 4-neighborhood in evaluation order.
var Orthogonal = []Direction{Left, Right, Down, Up}

// Diagonal lists the corner neighbors.
var Diagonal = []Direction{DownLeft, DownRight, UpLeft, UpRight}

// All8 is the 8-neighborhood in evaluation order, orthogonal first.
var All8 = []Direction{Left, Right, Down, Up, DownLeft, DownRight, UpLeft, UpRight}

func (d Direction) Vector() IVec2  { return vectorTable[d] }
func (d Direction) Ortho() bool    { return d >= Left && d <= Up }
func (d Direction) Diag() bool     { return d >= DownLeft && d <= UpRight }
func (d Direction) String() string { return directionNames[d] }

func (d Direction) Reflect() Direction {
	switch d {
	case Left:
		return Right
	case Right:
		return Left
	case Down:
		return Up
	case Up:
		return Down
	case DownLeft:
		return UpRight
	case DownRight:
		return UpLeft
	case UpLeft:
		return DownRight
	case UpRight:
		return DownLeft
	}
	return Null
}
