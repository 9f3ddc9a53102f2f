package scene

import "github.com/charmbracelet/harmonica"

// Turntable produces a spring-eased rotation angle per animation frame. The
// target angle advances evenly every frame and the spring makes the
// rendered angle ease in behind it.
type Turntable struct {
	spring   harmonica.Spring
	step     float64
	target   float64
	angle    float64
	velocity float64
}

// NewTurntable creates a turntable that aims for turns full rotations over
// frames frames, sampled at fps.
func NewTurntable(frames, fps int, turns, frequency, damping float64) *Turntable {
	step := 0.0
	if frames > 0 {
		step = 360 * turns / float64(frames)
	}
	return &Turntable{
		spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping),
		step:   step,
	}
}

// Angle returns the current angle in degrees.
func (t *Turntable) Angle() float64 { return t.angle }

// Target returns the angle the spring is chasing.
func (t *Turntable) Target() float64 { return t.target }

// Next advances one frame and returns the new angle in degrees.
func (t *Turntable) Next() float64 {
	t.target += t.step
	t.angle, t.velocity = t.spring.Update(t.angle, t.velocity, t.target)
	return t.angle
}
