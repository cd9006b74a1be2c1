package engine

// ManhattanDistance calculates the Manhattan distance between two coordinates
func ManhattanDistance(from, to Coordinate) int {
	di := int(from.I) - int(to.I)
	if di < 0 {
		di = -di
	}
	dj := int(from.J) - int(to.J)
	if dj < 0 {
		dj = -dj
	}
	return di + dj
}

// CountObjects counts the cells holding obj
func CountObjects(grid *Grid, obj GameObject) int {
	count := 0
	for i := range grid {
		for j := range grid[i] {
			if grid[i][j].Contains(obj) {
				count++
			}
		}
	}
	return count
}

// FindObjects returns the coordinates of every cell holding obj, row by row
func FindObjects(grid *Grid, obj GameObject) []Coordinate {
	var found []Coordinate
	for i := range grid {
		for j := range grid[i] {
			if grid[i][j].Contains(obj) {
				found = append(found, Coordinate{I: int8(i), J: int8(j)})
			}
		}
	}
	return found
}
