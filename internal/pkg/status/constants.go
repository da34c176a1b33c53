package status

// Status represents a result lifecycle state
type Status int

const (
	// Pending - row created, work not picked up yet
	Pending Status = iota + 1
	// Processing - generation workflow in progress
	Processing
	// Completed - final state, reading persisted
	Completed
	// Error - final state, reading generation failed
	Error
)

var (
	statusName = map[Status]string{Pending: "PENDING", Processing: "PROCESSING",
		Completed: "COMPLETED", Error: "ERROR"}
	nameStatus = map[string]Status{"PENDING": Pending, "PROCESSING": Processing,
		"COMPLETED": Completed, "ERROR": Error}
)

func (st Status) String() string {
	return statusName[st]
}

// From returns status obj from string
func From(st string) Status {
	return nameStatus[st]
}

// IsTerminal returns true if no further transitions are allowed
func (st Status) IsTerminal() bool {
	return st == Completed || st == Error
}
