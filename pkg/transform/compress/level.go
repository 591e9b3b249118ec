package compress

import (
	"strconv"
	"strings"

	rwerrors "github.com/vnykmshr/rwflow/pkg/common/errors"
)

// Level selects a speed/ratio trade-off. Positive values are passed to the
// codec as its native level.
type Level int

const (
	// Default is the codec's default level.
	Default Level = 0
	// Fastest favors speed.
	Fastest Level = -1
	// Best favors ratio.
	Best Level = -2
)

// String returns the level's configuration name.
func (l Level) String() string {
	switch l {
	case Default:
		return "default"
	case Fastest:
		return "fastest"
	case Best:
		return "best"
	default:
		return strconv.Itoa(int(l))
	}
}

// ParseLevel parses "fastest", "default", "best" or a positive integer.
// The empty string is Default.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return Default, nil
	case "fastest", "fast", "speed":
		return Fastest, nil
	case "best", "smallest":
		return Best, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return Default, rwerrors.NewValidationError("compress", "level", s, "unknown level").
			WithHint("use fastest, default, best or a positive integer")
	}
	return Level(n), nil
}
