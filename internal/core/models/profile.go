package models

import (
	"errors"
	"fmt"
	"math"

	"github.com/zeusync/robofield/internal/core/physics"
)

// BeaconMode selects how the beacon sensor reports.
type BeaconMode uint8

const (
	// BeaconFlag reports only whether the robot faces the beacon.
	BeaconFlag BeaconMode = iota
	// BeaconOffsets reports local offsets to the beacon and own-side beacon.
	BeaconOffsets
)

func (m BeaconMode) String() string {
	if m == BeaconOffsets {
		return "offsets"
	}
	return "flag"
}

// Profile holds the per-variant physical and sensor parameters of a robot.
type Profile struct {
	Name      string
	Footprint Footprint

	// HalfTrack is half the distance between the wheels.
	HalfTrack float64
	// WheelScale converts protocol wheel units to distance per tick.
	WheelScale float64

	CameraDepth     float64
	CameraHalfWidth float64
	// CameraMiss is the reply sent when nothing is in view.
	CameraMiss string

	BeaconMode      BeaconMode
	BeaconThreshold float64
	BeaconGate      float64
	BeaconSentinel  physics.Vector2

	ShootSpeed       float64
	CaptureOnContact bool

	GrabReach         float64
	GrabLateralMargin float64
	SeatDepth         float64
	ReleaseOffset     float64
}

const (
	ProfileClassic    = "classic"
	ProfileSpirit     = "spirit"
	ProfileTelliskivi = "telliskivi"
)

var ErrUnknownProfile = errors.New("unknown robot profile")

func withGrabDefaults(p Profile) Profile {
	p.GrabReach = 3
	p.GrabLateralMargin = 2
	p.SeatDepth = 5
	p.ReleaseOffset = 10
	p.BeaconGate = 0.9
	p.BeaconSentinel = physics.NewVector2(5000, 500)
	return p
}

// ClassicProfile is the 35x45 box robot. Its half extents are truncated
// to whole pixels while the bounding radius keeps the exact half diagonal.
func ClassicProfile() Profile {
	return withGrabDefaults(Profile{
		Name:            ProfileClassic,
		Footprint:       Rectangle{HalfLength: 22, HalfWidth: 17, Radius: math.Hypot(35, 45) / 2},
		HalfTrack:       17,
		WheelScale:      0.001,
		CameraDepth:     120,
		CameraHalfWidth: 100,
		CameraMiss:      "0 0",
		BeaconMode:      BeaconFlag,
		BeaconThreshold: 0.99,
		ShootSpeed:      0.4,
	})
}

// SpiritProfile is the 40x40 box robot that captures balls on contact.
func SpiritProfile() Profile {
	return withGrabDefaults(Profile{
		Name:             ProfileSpirit,
		Footprint:        Rectangle{HalfLength: 20, HalfWidth: 20, Radius: 28},
		HalfTrack:        20,
		WheelScale:       0.002,
		CameraDepth:      800,
		CameraHalfWidth:  500,
		CameraMiss:       "0 0",
		BeaconMode:       BeaconFlag,
		BeaconThreshold:  0.994,
		ShootSpeed:       1,
		CaptureOnContact: true,
	})
}

// TelliskiviProfile is the round robot with a flat front edge.
func TelliskiviProfile() Profile {
	return withGrabDefaults(Profile{
		Name:            ProfileTelliskivi,
		Footprint:       CircleFront{Radius: 26, FrontOffset: 17, EdgeHalfWidth: 20},
		HalfTrack:       21,
		WheelScale:      0.002,
		CameraDepth:     1000,
		CameraHalfWidth: 340,
		CameraMiss:      "-1 -1",
		BeaconMode:      BeaconOffsets,
		BeaconThreshold: 0.99,
		ShootSpeed:      0.4,
	})
}

// BuiltinProfile looks a profile up by name.
func BuiltinProfile(name string) (Profile, error) {
	switch name {
	case ProfileClassic, "":
		return ClassicProfile(), nil
	case ProfileSpirit:
		return SpiritProfile(), nil
	case ProfileTelliskivi:
		return TelliskiviProfile(), nil
	default:
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
}

func (p Profile) Validate() error {
	switch {
	case p.Footprint == nil:
		return errors.New("profile: footprint is required")
	case p.HalfTrack <= 0:
		return errors.New("profile: half track must be positive")
	case p.WheelScale <= 0:
		return errors.New("profile: wheel scale must be positive")
	case p.CameraDepth <= 0 || p.CameraHalfWidth < 0:
		return errors.New("profile: camera depth must be positive")
	case p.ShootSpeed < 0:
		return errors.New("profile: shoot speed must not be negative")
	}
	return nil
}
