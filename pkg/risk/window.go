package risk

import "strconv"

// defaultWindowHours is used when the time window is absent or unparseable.
const defaultWindowHours = 24

// windowHours parses a time window like "24h" or "7d" into hours.
// "Nh" means N hours, "Nd" means N*24 hours. Anything else, including a
// missing or malformed count, yields the 24-hour default.
func windowHours(timeWindow string) float64 {
	if len(timeWindow) < 2 {
		return defaultWindowHours
	}

	unit := timeWindow[len(timeWindow)-1]
	n, err := strconv.Atoi(timeWindow[:len(timeWindow)-1])
	if err != nil || n <= 0 {
		return defaultWindowHours
	}

	switch unit {
	case 'h':
		return float64(n)
	case 'd':
		return float64(n) * 24
	default:
		return defaultWindowHours
	}
}
