// Package sector provides the integer-grid sector service: sector ids,
// adjacency, center positions, and a deterministic difficulty field.
// Sector ids are "x,y" strings on a square grid of Size×Size world units.
package sector

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Size is the edge length of one sector in world units.
const Size = 1000.0

// Position is a point in world coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p+q.
func (p Position) Add(q Position) Position { return Position{p.X + q.X, p.Y + q.Y} }

// Sub returns p−q.
func (p Position) Sub(q Position) Position { return Position{p.X - q.X, p.Y - q.Y} }

// Scale returns p scaled by f.
func (p Position) Scale(f float64) Position { return Position{p.X * f, p.Y * f} }

// Len returns the vector length.
func (p Position) Len() float64 { return math.Hypot(p.X, p.Y) }

// DistanceTo returns the Euclidean distance between p and q.
func (p Position) DistanceTo(q Position) float64 { return p.Sub(q).Len() }

// Unit returns the unit vector of p, or the zero vector if p is near zero.
func (p Position) Unit() Position {
	l := p.Len()
	if l <= 1e-9 {
		return Position{}
	}
	return p.Scale(1 / l)
}

// Coord is a sector's integer grid coordinate.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ID returns the canonical "x,y" sector id.
func (c Coord) ID() string {
	return fmt.Sprintf("%d,%d", c.X, c.Y)
}

// ParseID parses an "x,y" sector id.
func ParseID(id string) (Coord, error) {
	parts := strings.SplitN(id, ",", 2)
	if len(parts) != 2 {
		return Coord{}, fmt.Errorf("malformed sector id %q", id)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Coord{}, fmt.Errorf("malformed sector id %q: %w", id, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Coord{}, fmt.Errorf("malformed sector id %q: %w", id, err)
	}
	return Coord{X: x, Y: y}, nil
}

// neighborDirections holds the eight surrounding grid offsets.
var neighborDirections = [8]Coord{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

// Service answers spatial queries about the sector grid. A Service is
// deterministic for a given seed; difficulty values never change at runtime.
type Service struct {
	noise opensimplex.Noise
}

// NewService creates a sector service with a seeded difficulty field.
func NewService(seed int64) *Service {
	return &Service{noise: opensimplex.NewNormalized(seed)}
}

// SectorOf returns the id of the sector containing a world position.
func (s *Service) SectorOf(p Position) string {
	return Coord{
		X: int(math.Floor(p.X / Size)),
		Y: int(math.Floor(p.Y / Size)),
	}.ID()
}

// Center returns the world-space center of a sector. Unknown ids resolve to
// the origin sector's center rather than failing: callers treat sector ids as
// trusted after a successful claim.
func (s *Service) Center(id string) Position {
	c, err := ParseID(id)
	if err != nil {
		c = Coord{}
	}
	return Position{
		X: float64(c.X)*Size + Size/2,
		Y: float64(c.Y)*Size + Size/2,
	}
}

// Adjacent returns the ids of the eight surrounding sectors.
func (s *Service) Adjacent(id string) []string {
	c, err := ParseID(id)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(neighborDirections))
	for _, d := range neighborDirections {
		out = append(out, Coord{X: c.X + d.X, Y: c.Y + d.Y}.ID())
	}
	return out
}

// AreAdjacent reports whether two sectors touch (including diagonals).
func (s *Service) AreAdjacent(a, b string) bool {
	ca, errA := ParseID(a)
	cb, errB := ParseID(b)
	if errA != nil || errB != nil {
		return false
	}
	dx := ca.X - cb.X
	dy := ca.Y - cb.Y
	if dx == 0 && dy == 0 {
		return false
	}
	return dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1
}

// Difficulty returns the sector's hazard difficulty in [0, 1].
// Sampled from a smooth noise field so neighboring sectors have correlated
// difficulty, the same way terrain fields are generated.
func (s *Service) Difficulty(id string) float64 {
	c, err := ParseID(id)
	if err != nil {
		return 1
	}
	return s.noise.Eval2(float64(c.X)*0.15, float64(c.Y)*0.15)
}
