package config

import (
	"math"

	"github.com/zeusync/robofield/internal/core/models"
	"github.com/zeusync/robofield/internal/core/physics"
	"github.com/zeusync/robofield/internal/core/world"
)

const (
	// cornerInset is the gap between a starting robot and the walls.
	cornerInset = 12
	// beaconSetback places the beacon behind the goal line.
	beaconSetback = 50
)

// Placement is where a robot starts and what its sensors aim at.
type Placement struct {
	Profile    models.Profile
	Pose       models.Pose
	References models.References
}

// Place puts a left-side robot in the top-left corner attacking the right
// goal and a right-side robot in the bottom-right corner attacking the left
// goal.
func (c *Config) Place(r RobotConfig) (Placement, error) {
	profile, err := c.Profile(r.Profile)
	if err != nil {
		return Placement{}, err
	}

	w, h := c.Field.Width, c.Field.Height
	cy := h / 2
	length, width := extents(profile.Footprint)

	if r.Side == world.SideRight {
		return Placement{
			Profile: profile,
			Pose: models.Pose{
				Center:  physics.NewVector2(w-cornerInset-length, h-cornerInset-width),
				Heading: -math.Pi / 2,
			},
			References: models.References{
				Beacon:    physics.NewVector2(-beaconSetback, cy),
				OwnBeacon: physics.NewVector2(w, cy),
				Goal:      physics.NewVector2(0, cy),
			},
		}, nil
	}

	return Placement{
		Profile: profile,
		Pose: models.Pose{
			Center:  physics.NewVector2(cornerInset+length, cornerInset+width),
			Heading: math.Pi / 2,
		},
		References: models.References{
			Beacon:    physics.NewVector2(w+beaconSetback, cy),
			OwnBeacon: physics.NewVector2(0, cy),
			Goal:      physics.NewVector2(w, cy),
		},
	}, nil
}

// extents is the half size of a footprint along and across its heading.
func extents(fp models.Footprint) (length, width float64) {
	if r, ok := fp.(models.Rectangle); ok {
		return r.HalfLength, r.HalfWidth
	}
	radius := fp.BoundingRadius()
	return radius, radius
}
