package types

import "time"

type MarkShape string

const (
	MarkShapeCircle   MarkShape = "circle"
	MarkShapeTriangle MarkShape = "triangle"
)

type MarkColor string

const (
	MarkColorRed   MarkColor = "red"
	MarkColorGreen MarkColor = "green"
	MarkColorGrey  MarkColor = "grey"
)

// MarkAction is what the simulator did with an observed transition.
type MarkAction string

const (
	MarkActionEntry      MarkAction = "entry"
	MarkActionExit       MarkAction = "exit"
	MarkActionForcedExit MarkAction = "forced_exit"
	MarkActionIgnored    MarkAction = "ignored"
)

// Mark annotates a bar where a buy or sell transition happened, for chart consumers.
type Mark struct {
	Time   time.Time
	Price  float64
	Signal SignalType
	Action MarkAction
	Color  MarkColor
	Shape  MarkShape
	Reason string
}

// NewMark picks the conventional shape and color for a transition.
func NewMark(t time.Time, price float64, signal SignalType, action MarkAction, reason string) Mark {
	color := MarkColorGreen
	if signal == SignalTypeSell {
		color = MarkColorRed
	}

	shape := MarkShapeTriangle

	if action == MarkActionIgnored {
		color = MarkColorGrey
		shape = MarkShapeCircle
	}

	return Mark{
		Time:   t,
		Price:  price,
		Signal: signal,
		Action: action,
		Color:  color,
		Shape:  shape,
		Reason: reason,
	}
}
