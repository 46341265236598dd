package scene

import "fmt"

// Entity is a generational handle to a scene node.
//
// The zero Entity is never alive.
type Entity struct {
	ID  uint32
	Gen uint32
}

// IsZero reports whether e is the zero handle.
func (e Entity) IsZero() bool { return e.ID == 0 }

func (e Entity) String() string { return fmt.Sprintf("%dv%d", e.ID, e.Gen) }

// Capability is a set of marker bits attached to an entity.
type Capability uint32

const (
	// Trackable marks an entity whose parent is managed by the tracking hierarchy.
	Trackable Capability = 1 << iota
	// TrackingRoot marks the node all trackables are parented under.
	TrackingRoot
	// Controller marks a hand controller proxy.
	Controller
	// Visible marks an entity the viewer draws.
	Visible

	firstUser
)

// UserCapability returns the i-th application-defined capability bit.
func UserCapability(i uint) Capability {
	return firstUser << i
}

// Has reports whether c contains all bits of want.
func (c Capability) Has(want Capability) bool { return c&want == want }

// Role is the device a tracked entity stands for.
type Role uint8

const (
	RoleNone Role = iota
	RoleLeftController
	RoleRightController
	RoleHMD
	RoleLeftEye
	RoleRightEye

	roleCount
)

// Roles lists every device role in declaration order.
var Roles = [...]Role{
	RoleLeftController,
	RoleRightController,
	RoleHMD,
	RoleLeftEye,
	RoleRightEye,
}

// Valid reports whether r is a device role.
func (r Role) Valid() bool { return r > RoleNone && r < roleCount }

func (r Role) String() string {
	switch r {
	case RoleNone:
		return "none"
	case RoleLeftController:
		return "left_controller"
	case RoleRightController:
		return "right_controller"
	case RoleHMD:
		return "hmd"
	case RoleLeftEye:
		return "left_eye"
	case RoleRightEye:
		return "right_eye"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// ParseRole is the inverse of Role.String for device roles.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if r.String() == s {
			return r, nil
		}
	}
	return RoleNone, fmt.Errorf("unknown role %q", s)
}

// Bundle describes an entity to spawn.
type Bundle struct {
	Name      string
	Caps      Capability
	Role      Role
	Transform Transform
}
