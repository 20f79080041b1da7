package models

import (
	"math"

	"github.com/zeusync/robofield/internal/core/physics"
	"github.com/zeusync/robofield/internal/core/random"
)

// Sighting is a camera detection in robot-local coordinates.
type Sighting struct {
	Forward float64
	Lateral float64
}

// BeaconReading carries both beacon report styles; the profile's
// BeaconMode decides which one goes on the wire.
type BeaconReading struct {
	Aligned   bool
	Beacon    physics.Vector2
	OwnBeacon physics.Vector2
}

// Camera returns the nearest ball by forward distance inside the view
// triangle, each coordinate scaled by noise in [0.9, 1.1).
func (r *Robot) Camera() (Sighting, bool) {
	f := r.frame()
	if f == nil {
		return Sighting{}, false
	}
	self, ok := f.Robot(r.id)
	if !ok {
		return Sighting{}, false
	}

	slope := r.profile.CameraHalfWidth / r.profile.CameraDepth
	best := physics.Vector2{}
	found := false
	for _, b := range f.Balls {
		local := b.Center.Sub(self.Center).Local(self.Forward, self.Left)
		if local.X <= 0 || local.X >= r.profile.CameraDepth {
			continue
		}
		if math.Abs(local.Y)/local.X >= slope {
			continue
		}
		if !found || local.X < best.X {
			best = local
			found = true
		}
	}
	if !found {
		return Sighting{}, false
	}
	return Sighting{
		Forward: best.X * random.Uniform(r.noise, 0.9, 1.1),
		Lateral: best.Y * random.Uniform(r.noise, 0.9, 1.1),
	}, true
}

// Beacon measures the bearing to the beacon points.
func (r *Robot) Beacon() BeaconReading {
	f := r.frame()
	if f == nil {
		return BeaconReading{Beacon: r.profile.BeaconSentinel, OwnBeacon: r.profile.BeaconSentinel}
	}
	self, ok := f.Robot(r.id)
	if !ok {
		return BeaconReading{Beacon: r.profile.BeaconSentinel, OwnBeacon: r.profile.BeaconSentinel}
	}

	toBeacon := r.refs.Beacon.Sub(self.Center)
	cos := toBeacon.Normalize().Dot(self.Forward)
	reading := BeaconReading{
		Aligned:   cos > r.profile.BeaconThreshold,
		Beacon:    r.gated(toBeacon, self),
		OwnBeacon: r.gated(r.refs.OwnBeacon.Sub(self.Center), self),
	}
	return reading
}

func (r *Robot) gated(offset physics.Vector2, self RobotState) physics.Vector2 {
	if offset.Normalize().Dot(self.Forward) < r.profile.BeaconGate {
		return r.profile.BeaconSentinel
	}
	return offset.Local(self.Forward, self.Left)
}

// Goal returns the goal center in robot-local coordinates, or zero when it
// is behind, too close or outside the camera cone.
func (r *Robot) Goal() physics.Vector2 {
	f := r.frame()
	if f == nil {
		return physics.Zero
	}
	self, ok := f.Robot(r.id)
	if !ok {
		return physics.Zero
	}

	local := r.refs.Goal.Sub(self.Center).Local(self.Forward, self.Left)
	if local.X < 1 {
		return physics.Zero
	}
	if math.Abs(local.Y/local.X) > r.profile.CameraHalfWidth/r.profile.CameraDepth {
		return physics.Zero
	}
	return local
}
