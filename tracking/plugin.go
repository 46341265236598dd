package tracking

import (
	"quarkxr/schedule"
)

// Plugin registers tracking systems on a schedule.
type Plugin struct {
	Adopter      *Adopter
	Synchronizer *Synchronizer
}

// Install adds the adopter to PreUpdate and the synchronizer to PostUpdate, followed
// by transform propagation, so renderers in the Render stage see this frame's poses.
func (p Plugin) Install(s *schedule.Schedule) error {
	if p.Adopter != nil {
		if err := s.Add(schedule.PreUpdate, "tracking.adopt", p.Adopter); err != nil {
			return err
		}
	}
	if p.Synchronizer != nil {
		if err := s.Add(schedule.PostUpdate, "tracking.sync", p.Synchronizer); err != nil {
			return err
		}
	}
	return s.Add(schedule.PostUpdate, "scene.propagate", schedule.SystemFunc(func(c *schedule.Context) {
		c.World().PropagateTransforms()
	}))
}
