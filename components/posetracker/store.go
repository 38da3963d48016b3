package posetracker

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/jenourish/bodytrack/spatialmath"
	"github.com/jenourish/bodytrack/tracking"
)

// Store is a tracking.Sink that keeps the latest pose and confidence of every joint, named by the
// tracker's family.
type Store struct {
	frame  string
	family tracking.Family

	mu    sync.RWMutex
	poses BodyToPoseInFrame
}

var _ tracking.Sink = (*Store)(nil)

// NewStore returns an empty store whose poses are expressed in the named frame.
func NewStore(frame string, family tracking.Family) *Store {
	return &Store{frame: frame, family: family, poses: BodyToPoseInFrame{}}
}

// SendPose records a joint's latest pose.
func (s *Store) SendPose(joint int, pose spatialmath.Pose, ts time.Time) {
	name := s.family.JointName(joint)
	if name == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.entry(name)
	p.Pose = pose
	p.Time = ts
	if joint == s.family.ReferenceIndex {
		p.Confidence = 1
	}
}

// SendConfidence records a joint's latest confidence.
func (s *Store) SendConfidence(joint int, value float64, ts time.Time) {
	name := s.family.JointName(joint)
	if name == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry(name).Confidence = value
}

// SendGestures is a no-op; gestures are served by the gesture controller.
func (s *Store) SendGestures(tracking.Gestures, time.Time) {}

func (s *Store) entry(name string) *PoseInFrame {
	p, ok := s.poses[name]
	if !ok {
		p = &PoseInFrame{Parent: s.frame}
		s.poses[name] = p
	}
	return p
}

// Poses returns copies of the stored poses for the named joints, or all of them when names is
// empty.
func (s *Store) Poses(names []string) (BodyToPoseInFrame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, name := range names {
		if _, ok := s.family.JointIndex(name); !ok && name != tracking.ReferenceJointName {
			return nil, errors.Errorf("unknown body part %q", name)
		}
	}
	selected := s.poses
	if len(names) > 0 {
		selected = lo.PickByKeys(s.poses, names)
	}
	return lo.MapValues(selected, func(p *PoseInFrame, _ string) *PoseInFrame {
		c := *p
		return &c
	}), nil
}

// Reset forgets every stored pose.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.poses = BodyToPoseInFrame{}
}

// Len is how many body parts have been stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.poses)
}
