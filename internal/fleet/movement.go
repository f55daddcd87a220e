package fleet

import (
	"math"
	"time"

	"github.com/kvern/starfall/internal/sector"
)

// arrivalRadius is the distance below which a fleet counts as having reached
// its destination and stops closing.
const arrivalRadius = 50.0

// Formation is the spatial arrangement of escort ships around the flagship.
type Formation uint8

const (
	FormationLine Formation = iota
	FormationWedge
	FormationCircle
	FormationScattered
)

// String returns the lowercase formation name.
func (f Formation) String() string {
	switch f {
	case FormationLine:
		return "line"
	case FormationWedge:
		return "wedge"
	case FormationCircle:
		return "circle"
	case FormationScattered:
		return "scattered"
	default:
		return "unknown"
	}
}

// formationSpacing is the base distance between formation slots.
const formationSpacing = 25.0

// Step advances the fleet toward its destination by one tick of dt and
// refreshes formation offsets. Movement is a straight line at
// missionSpeed × mean operational ship speed; there is no pathfinding.
// Returns true when the fleet moved this tick.
func (f *Fleet) Step(dt time.Duration) bool {
	if f.Status == StatusDestroyed || f.Status == StatusError {
		return false
	}

	delta := f.Destination.Sub(f.Position)
	dist := delta.Len()

	if dist <= arrivalRadius {
		if f.Status == StatusMoving {
			f.Transition(StatusIdle)
		}
		f.updateFormation()
		return false
	}

	if f.Status == StatusIdle {
		f.Transition(StatusMoving)
	}

	speed := f.Mission.Speed * f.MeanSpeed()
	if speed <= 0 {
		return false
	}
	step := speed * dt.Seconds()
	if step > dist {
		step = dist
	}
	f.Position = f.Position.Add(delta.Unit().Scale(step))

	// Moving burns fuel: a full tank covers two sim-hours under way.
	f.Fuel = math.Max(0, f.Fuel-dt.Seconds()/7200)

	f.updateFormation()
	return true
}

// SetDestination points the fleet at a new target position.
func (f *Fleet) SetDestination(p sector.Position) {
	f.Destination = p
}

// updateFormation recomputes escort offsets relative to the flagship. The
// flagship always sits at slot zero; escorts fill slots in roster order.
// Heading is taken from the current destination vector.
func (f *Fleet) updateFormation() {
	heading := f.Destination.Sub(f.Position).Unit()
	if heading.Len() == 0 {
		heading = sector.Position{X: 1}
	}
	// Perpendicular to heading, for lateral offsets.
	side := sector.Position{X: -heading.Y, Y: heading.X}

	slot := 0
	for _, s := range f.Ships {
		if s.Status == ShipDestroyed {
			s.Offset = sector.Position{}
			continue
		}
		s.Offset = f.formationOffset(slot, heading, side)
		slot++
	}
}

func (f *Fleet) formationOffset(slot int, heading, side sector.Position) sector.Position {
	if slot == 0 {
		return sector.Position{}
	}
	switch f.Formation {
	case FormationLine:
		// Alternating left/right abreast of the flagship.
		k := float64((slot + 1) / 2)
		if slot%2 == 0 {
			k = -k
		}
		return side.Scale(k * formationSpacing)
	case FormationWedge:
		// Trailing V behind the flagship.
		k := float64((slot + 1) / 2)
		lateral := k
		if slot%2 == 0 {
			lateral = -k
		}
		return heading.Scale(-k * formationSpacing).Add(side.Scale(lateral * formationSpacing))
	case FormationCircle:
		angle := 2 * math.Pi * float64(slot) / float64(maxInt(1, len(f.Ships)-1))
		return sector.Position{
			X: math.Cos(angle) * formationSpacing * 2,
			Y: math.Sin(angle) * formationSpacing * 2,
		}
	default: // FormationScattered
		if f.rng == nil {
			return sector.Position{}
		}
		return sector.Position{
			X: f.rng.Range(-formationSpacing*3, formationSpacing*3),
			Y: f.rng.Range(-formationSpacing*3, formationSpacing*3),
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
