package engine

// Cell is a bitmask of the objects occupying one grid square.
// It does not track Babas.
type Cell uint16

const (
	immovableMask     = Cell(1)<<Immovable | Cell(1)<<Door
	alwaysMovableMask = Cell(1)<<Key | Cell(1)<<RockText | Cell(1)<<IsText | Cell(1)<<PushText
)

// alwaysMovable lists the objects that can be pushed regardless of rules
var alwaysMovable = [...]GameObject{Key, RockText, IsText, PushText}

// Contains reports whether obj is present in the cell
func (c Cell) Contains(obj GameObject) bool {
	return c&(Cell(1)<<obj) != 0
}

// Add returns the cell with obj added
func (c Cell) Add(obj GameObject) Cell {
	return c | Cell(1)<<obj
}

// Remove returns the cell with obj removed
func (c Cell) Remove(obj GameObject) Cell {
	return c &^ (Cell(1) << obj)
}

func (c Cell) IsEmpty() bool {
	return c == 0
}

// HasImmovable reports whether the cell holds a wall or the door
func (c Cell) HasImmovable() bool {
	return c&immovableMask != 0
}

// HasMovable reports whether anything in the cell would be pushed.
// Rocks only count while "rock is push" is active.
func (c Cell) HasMovable(ruleActive bool) bool {
	if c&alwaysMovableMask != 0 {
		return true
	}
	return ruleActive && c.Contains(Rock)
}
