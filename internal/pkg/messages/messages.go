package messages

import (
	"time"

	amessages "github.com/airenas/async-api/pkg/messages"
)

const (
	st = "VIBRA/"
	// Work queue name
	Work = st + "Work"
	// StatusChange queue name
	StatusChange = st + "StatusChange"
	// GenerateType is the job type for the reading generation workflow
	GenerateType = "wrk-generate"
	// Generate routes the generation job through the work queue
	Generate = Work + ":" + GenerateType
)

// GenerateMessage triggers the reading generation workflow
type GenerateMessage struct {
	amessages.QueueMessage
	UserName        string    `json:"userName,omitempty"`
	BirthDate       time.Time `json:"birthDate"`
	VibrationNumber int       `json:"vibrationNumber"`
	PhotoPath       string    `json:"photoPath,omitempty"`
}

// FailureMessage routes an exhausted job to the failure handler
type FailureMessage struct {
	amessages.QueueMessage
	Error string `json:"error,omitempty"`
}
