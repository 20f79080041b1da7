package models

import (
	"math"
	"sync/atomic"

	"github.com/zeusync/robofield/internal/core/physics"
	"github.com/zeusync/robofield/internal/core/random"
	"github.com/zeusync/robofield/internal/core/sync/vars"
)

var _ Entity = (*Robot)(nil)

// Wheels are the commanded wheel speeds in distance per tick.
type Wheels struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// capture is the grabber state. ball is nil when empty.
type capture struct {
	ball      *Ball
	forward   float64
	left      float64
	releasing bool
}

// Pose places a robot on the field. Heading rotates the default (0, 1)
// forward direction with physics.Vector2.Rotate.
type Pose struct {
	Center  physics.Vector2
	Heading float64
}

// References are the fixed field points the sensors measure against.
type References struct {
	Beacon    physics.Vector2
	OwnBeacon physics.Vector2
	Goal      physics.Vector2
}

// Robot is a differential-drive body. Pose fields belong to the simulation
// goroutine; wheels and capture are guarded cells shared with protocol
// handlers, and sensors read the published frame.
type Robot struct {
	id      EntityID
	name    string
	profile Profile
	refs    References

	center   physics.Vector2
	forward  physics.Vector2
	left     physics.Vector2
	velocity physics.Vector2

	wheels  *vars.Mutex[Wheels]
	capture *vars.Mutex[capture]

	frames atomic.Pointer[FrameSource]
	noise  random.Source
}

func NewRobot(name string, profile Profile, pose Pose, refs References, noise random.Source) *Robot {
	forward := physics.NewVector2(0, 1).Rotate(pose.Heading).Normalize()
	if noise == nil {
		noise = random.Fixed(0.5)
	}
	return &Robot{
		id:      NewEntityID(),
		name:    name,
		profile: profile,
		refs:    refs,
		center:  pose.Center,
		forward: forward,
		left:    forward.Perp(),
		wheels:  vars.NewMutex(Wheels{}),
		capture: vars.NewMutex(capture{}),
		noise:   noise,
	}
}

func (r *Robot) ID() EntityID             { return r.id }
func (r *Robot) Kind() Kind               { return KindRobot }
func (r *Robot) Name() string             { return r.name }
func (r *Robot) Profile() Profile         { return r.profile }
func (r *Robot) Center() physics.Vector2  { return r.center }
func (r *Robot) Forward() physics.Vector2 { return r.forward }
func (r *Robot) Left() physics.Vector2    { return r.left }
func (r *Robot) Radius() float64          { return r.profile.Footprint.BoundingRadius() }

// Attach points the sensors at a frame source, normally the world.
func (r *Robot) Attach(src FrameSource) {
	r.frames.Store(&src)
}

func (r *Robot) frame() *Frame {
	src := r.frames.Load()
	if src == nil || *src == nil {
		return nil
	}
	return (*src).Frame()
}

func (r *Robot) Step() {
	w := r.wheels.Get()
	speed := (w.Left + w.Right) / 2
	turn := (w.Left - w.Right) / (2 * r.profile.HalfTrack)

	r.velocity = r.forward.Scale(speed)
	r.center = r.center.Add(r.velocity)
	if turn != 0 {
		r.forward = r.forward.Add(r.left.Scale(turn)).Normalize()
		r.left = r.forward.Perp()
	}

	r.capture.Update(r.carry)
}

// carry moves a held ball along with the body or executes a pending shot.
func (r *Robot) carry(c *capture) bool {
	b := c.ball
	if b == nil {
		return false
	}
	if b.removed || (b.holder != nil && b.holder != r) {
		*c = capture{}
		return true
	}
	if c.releasing {
		b.center = r.center.Add(physics.NewVector2(c.forward+r.profile.ReleaseOffset, c.left).World(r.forward, r.left))
		b.velocity = r.forward.Scale(r.profile.ShootSpeed)
		b.holder = nil
		*c = capture{}
		return true
	}
	b.holder = r
	b.center = r.center.Add(physics.NewVector2(c.forward, c.left).World(r.forward, r.left))
	b.velocity = physics.Zero
	return false
}

func (r *Robot) CollideWall(w physics.Wall) {
	if m := r.profile.Footprint.Clearance(r.center, r.forward, r.left, w); m < 0 {
		r.center = r.center.Add(w.Normal().Scale(-m))
	}
}

func (r *Robot) Describe(f *Frame) {
	state := RobotState{
		ID:       r.id,
		Name:     r.name,
		Center:   r.center,
		Forward:  r.forward,
		Left:     r.left,
		Radius:   r.Radius(),
		Wheels:   r.wheels.Get(),
		Commands: r.wheels.Version() - 1,
	}
	r.capture.View(func(c *capture) {
		if c.ball != nil {
			state.Holding = c.ball.id
		}
	})
	f.Robots = append(f.Robots, state)
}

// Wheels sets both wheel speeds, given in protocol units.
func (r *Robot) Wheels(left, right float64) {
	r.wheels.Set(Wheels{
		Left:  left * r.profile.WheelScale,
		Right: right * r.profile.WheelScale,
	})
}

// Holding reports whether a ball sits in the grabber and no shot is pending.
func (r *Robot) Holding() bool {
	holding := false
	r.capture.View(func(c *capture) {
		holding = c.ball != nil && !c.releasing
	})
	return holding
}

// Grab takes the first free ball, in registration order, sitting against
// the front edge. It does nothing while a ball is already held.
func (r *Robot) Grab() {
	f := r.frame()
	if f == nil {
		return
	}
	self, ok := f.Robot(r.id)
	if !ok {
		return
	}

	fp := r.profile.Footprint
	lateral := fp.FrontHalfWidth() - r.profile.GrabLateralMargin
	for _, b := range f.Balls {
		if b.Held {
			continue
		}
		local := b.Center.Sub(self.Center).Local(self.Forward, self.Left)
		if local.X <= 0 || local.X >= fp.FrontReach()+b.Radius+r.profile.GrabReach {
			continue
		}
		if math.Abs(local.Y) >= lateral {
			continue
		}
		r.capture.Update(func(c *capture) bool {
			if c.ball != nil {
				return false
			}
			*c = capture{ball: b.ball, forward: local.X - r.profile.SeatDepth, left: local.Y}
			return true
		})
		return
	}
}

// Shoot releases the held ball on the next tick. Without a ball it does
// nothing.
func (r *Robot) Shoot() {
	r.capture.Update(func(c *capture) bool {
		if c.ball == nil || c.releasing {
			return false
		}
		c.releasing = true
		return true
	})
}

// captureOnContact seats a ball that touched the front edge. Simulation
// goroutine only.
func (r *Robot) captureOnContact(b *Ball, local physics.Vector2) bool {
	if b.holder != nil {
		return false
	}
	return r.capture.Update(func(c *capture) bool {
		if c.ball != nil {
			return false
		}
		*c = capture{ball: b, forward: local.X - r.profile.SeatDepth, left: local.Y}
		b.holder = r
		b.velocity = physics.Zero
		return true
	})
}

// collideRobots separates bounding circles. The coin decides whether other
// or self moves.
func collideRobots(self, other *Robot, coin random.Source) {
	dir := other.center.Sub(self.center)
	dist := dir.Norm()
	reach := self.Radius() + other.Radius()
	if dist == 0 || dist >= reach {
		return
	}
	n := dir.Scale(1 / dist)
	if random.Coin(coin) {
		other.center = other.center.Add(n.Scale(reach - dist))
	} else {
		self.center = self.center.Add(n.Scale(dist - reach))
	}
}

// collideRobotBall pushes a ball off the body and reflects its velocity
// relative to the robot's own motion.
func collideRobotBall(r *Robot, b *Ball) {
	if b.holder == r {
		return
	}
	local := b.center.Sub(r.center).Local(r.forward, r.left)
	c, ok := r.profile.Footprint.Contact(local, b.radius)
	if !ok {
		return
	}

	lateral := r.profile.Footprint.FrontHalfWidth() - r.profile.GrabLateralMargin
	if c.Front && r.profile.CaptureOnContact && math.Abs(local.Y) < lateral {
		if r.captureOnContact(b, local) {
			return
		}
	}

	n := c.Normal.World(r.forward, r.left)
	b.center = b.center.Add(n.Scale(c.Depth))
	rel := b.velocity.Sub(r.velocity)
	if vn := rel.Dot(n); vn < 0 {
		b.velocity = b.velocity.Sub(n.Scale(2 * vn))
	}
}
