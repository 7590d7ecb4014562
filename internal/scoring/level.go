package scoring

import "math"

// Level computes a user's level from total points:
//
//	level = floor(sqrt(points/10)) + 1
//
// Negative points are treated as 0, so Level is total and non-decreasing.
func Level(points int) int {
	if points < 0 {
		points = 0
	}
	return int(math.Sqrt(float64(points/10))) + 1
}
