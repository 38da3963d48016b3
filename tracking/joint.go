package tracking

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// TrackingConfidence is the hardware's tri-state quality signal for one joint in one frame.
type TrackingConfidence int

// The numeric values match what depth sensors report.
const (
	NotTracked TrackingConfidence = iota
	Inferred
	Tracked
)

// Value maps the confidence onto the analog scale reported downstream.
func (c TrackingConfidence) Value() float64 {
	switch c {
	case Tracked:
		return 1
	case Inferred:
		return 0.5
	case NotTracked:
		return 0
	default:
		return 0
	}
}

func (c TrackingConfidence) String() string {
	switch c {
	case Tracked:
		return "tracked"
	case Inferred:
		return "inferred"
	case NotTracked:
		return "not_tracked"
	default:
		return "unknown"
	}
}

// JointSample is a single hardware-reported joint value.
type JointSample struct {
	Position    r3.Vector
	Orientation quat.Number
	Confidence  TrackingConfidence
}

// HandState is the hardware's hand gesture classification.
type HandState int

// Values match the Kinect v2 HandState enumeration.
const (
	HandUnknown HandState = iota
	HandNotTracked
	HandOpen
	HandClosed
	HandLasso
)

func (h HandState) String() string {
	switch h {
	case HandNotTracked:
		return "not_tracked"
	case HandOpen:
		return "open"
	case HandClosed:
		return "closed"
	case HandLasso:
		return "lasso"
	case HandUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// Gesture button indices within a Gestures batch.
const (
	RightHandOpen = iota
	RightHandClosed
	RightHandLasso
	LeftHandOpen
	LeftHandClosed
	LeftHandLasso
	GestureCount
)

// GestureNames names each gesture button, indexed like Gestures.
var GestureNames = [GestureCount]string{
	"right_hand_open", "right_hand_closed", "right_hand_lasso",
	"left_hand_open", "left_hand_closed", "left_hand_lasso",
}

// Gestures is one frame's batch of hand gesture buttons.
type Gestures [GestureCount]bool

// GesturesFromHands derives the button batch from both hand states.
func GesturesFromHands(left, right HandState) Gestures {
	return Gestures{
		RightHandOpen:   right == HandOpen,
		RightHandClosed: right == HandClosed,
		RightHandLasso:  right == HandLasso,
		LeftHandOpen:    left == HandOpen,
		LeftHandClosed:  left == HandClosed,
		LeftHandLasso:   left == HandLasso,
	}
}
