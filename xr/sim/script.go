package sim

import (
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"quarkxr/xr"
)

// Device names used in pose scripts.
const (
	DeviceLeft  = "left"
	DeviceRight = "right"
	DeviceHead  = "head"
)

// Script is a recorded or authored sequence of device poses.
type Script struct {
	Name      string     `yaml:"name" validate:"required"`
	Loop      bool       `yaml:"loop"`
	Keyframes []Keyframe `yaml:"keyframes" validate:"required,min=1,dive"`
}

// Keyframe holds device poses at time T. Devices listed in Drop are untracked from
// T until the next keyframe.
type Keyframe struct {
	T     time.Duration `yaml:"t" validate:"gte=0"`
	Left  *PoseSpec     `yaml:"left,omitempty"`
	Right *PoseSpec     `yaml:"right,omitempty"`
	Head  *PoseSpec     `yaml:"head,omitempty"`
	Drop  []string      `yaml:"drop,omitempty" validate:"dive,oneof=left right head"`
}

// PoseSpec is a pose in script form. Orientation is x, y, z, w; all zeros means
// identity.
type PoseSpec struct {
	Position    [3]float32 `yaml:"position,flow"`
	Orientation [4]float32 `yaml:"orientation,flow"`
}

func (p *PoseSpec) pose() (r3.Vec, quat.Number) {
	pos := r3.Vec{X: float64(p.Position[0]), Y: float64(p.Position[1]), Z: float64(p.Position[2])}
	o := p.Orientation
	if o == ([4]float32{}) {
		return pos, quat.Number{Real: 1}
	}
	return pos, quat.Number{Real: float64(o[3]), Imag: float64(o[0]), Jmag: float64(o[1]), Kmag: float64(o[2])}
}

// SpecFromPose converts a native pose to script form.
func SpecFromPose(p xr.Posef) *PoseSpec {
	return &PoseSpec{
		Position:    [3]float32{p.Position.X, p.Position.Y, p.Position.Z},
		Orientation: [4]float32{p.Orientation.X, p.Orientation.Y, p.Orientation.Z, p.Orientation.W},
	}
}

var validate = validator.New()

// ParseScript decodes and validates a YAML pose script. Keyframes are sorted by T.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse pose script: %w", err)
	}
	if err := validate.Struct(&s); err != nil {
		return nil, fmt.Errorf("validate pose script: %w", err)
	}
	sort.SliceStable(s.Keyframes, func(i, j int) bool { return s.Keyframes[i].T < s.Keyframes[j].T })
	return &s, nil
}

// LoadScript reads a pose script from path.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScript(data)
}

// Marshal encodes s as YAML.
func (s *Script) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// Duration returns the time of the last keyframe.
func (s *Script) Duration() time.Duration {
	if len(s.Keyframes) == 0 {
		return 0
	}
	return s.Keyframes[len(s.Keyframes)-1].T
}

func (k *Keyframe) device(name string) *PoseSpec {
	switch name {
	case DeviceLeft:
		return k.Left
	case DeviceRight:
		return k.Right
	case DeviceHead:
		return k.Head
	}
	return nil
}

func (k *Keyframe) drops(name string) bool {
	for _, d := range k.Drop {
		if d == name {
			return true
		}
	}
	return false
}

// Sample returns the pose of device at t, interpolating between the keyframes that
// define it. It reports false while the device is dropped or before it first appears.
func (s *Script) Sample(device string, t time.Duration) (r3.Vec, quat.Number, bool) {
	if len(s.Keyframes) == 0 || t < 0 {
		return r3.Vec{}, quat.Number{}, false
	}
	if d := s.Duration(); s.Loop && d > 0 {
		t %= d
	}

	// The active keyframe is the last one at or before t.
	cur := sort.Search(len(s.Keyframes), func(i int) bool { return s.Keyframes[i].T > t }) - 1
	if cur < 0 {
		return r3.Vec{}, quat.Number{}, false
	}
	if s.Keyframes[cur].drops(device) {
		return r3.Vec{}, quat.Number{}, false
	}

	prev := -1
	for i := cur; i >= 0; i-- {
		if s.Keyframes[i].device(device) != nil {
			prev = i
			break
		}
	}
	if prev < 0 {
		return r3.Vec{}, quat.Number{}, false
	}
	next := -1
	for i := cur + 1; i < len(s.Keyframes); i++ {
		if s.Keyframes[i].device(device) != nil {
			next = i
			break
		}
	}

	p0, q0 := s.Keyframes[prev].device(device).pose()
	if next < 0 {
		return p0, q0, true
	}
	p1, q1 := s.Keyframes[next].device(device).pose()
	t0, t1 := s.Keyframes[prev].T, s.Keyframes[next].T
	if t1 <= t0 {
		return p1, q1, true
	}
	u := float64(t-t0) / float64(t1-t0)
	return r3.Add(p0, r3.Scale(u, r3.Sub(p1, p0))), slerp(q0, q1, u), true
}

// slerp interpolates unit quaternions along the shorter arc.
func slerp(a, b quat.Number, u float64) quat.Number {
	dot := a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
	if dot < 0 {
		b = quat.Scale(-1, b)
		dot = -dot
	}
	if dot > 0.9995 {
		q := quat.Add(a, quat.Scale(u, quat.Sub(b, a)))
		return quat.Scale(1/quat.Abs(q), q)
	}
	theta := math.Acos(dot)
	sin := math.Sin(theta)
	wa := math.Sin((1-u)*theta) / sin
	wb := math.Sin(u*theta) / sin
	return quat.Add(quat.Scale(wa, a), quat.Scale(wb, b))
}
