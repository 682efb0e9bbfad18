package datacenter

// EventType identifies the kind of a datacenter event.
type EventType string

const (
	EventTypeVMCreate EventType = "VMCreate"
	EventTypeStep     EventType = "Step"
)

// eventTypePriority orders events sharing a timestamp (lower first).
var eventTypePriority = map[EventType]int{
	EventTypeVMCreate: 0,
	EventTypeStep:     1,
}

// Event is a scheduled state change of the datacenter.
type Event interface {
	Timestamp() float64
	EventID() uint64
	Type() EventType
	Execute(dc *Datacenter)
}

type baseEvent struct {
	timestamp float64
	eventID   uint64
	eventType EventType
}

func (e *baseEvent) Timestamp() float64 {
	return e.timestamp
}

func (e *baseEvent) EventID() uint64 {
	return e.eventID
}

func (e *baseEvent) Type() EventType {
	return e.eventType
}

// VMCreateEvent provisions a VM once its startup delay has elapsed.
type VMCreateEvent struct {
	baseEvent
	vm *vmState
}

func (e *VMCreateEvent) Execute(dc *Datacenter) {
	dc.handleVMCreate(e)
}

// StepEvent advances cloudlet execution to its timestamp and notifies tick listeners.
type StepEvent struct {
	baseEvent
	index int64
}

func (e *StepEvent) Execute(dc *Datacenter) {
	dc.handleStep(e)
}
