package amqp

import (
	"encoding/json"
	"time"
)

// Message actions. Export asks the worker to mirror a calculator to the
// export backend; delete asks it to drop the mirrored rows.
const (
	ActionExport = "export"
	ActionDelete = "delete"
)

// CalculatorExportMessage is the lightweight queue payload: the worker
// fetches the full calculator from the database by id.
type CalculatorExportMessage struct {
	CalculatorID string    `json:"calculatorId"`
	OwnerID      string    `json:"ownerId"`
	Action       string    `json:"action"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewExportMessage creates a message asking for a calculator export.
func NewExportMessage(calculatorID, ownerID string) *CalculatorExportMessage {
	return &CalculatorExportMessage{
		CalculatorID: calculatorID,
		OwnerID:      ownerID,
		Action:       ActionExport,
		Timestamp:    time.Now(),
	}
}

// NewDeleteMessage creates a message asking for removal of exported rows.
func NewDeleteMessage(calculatorID, ownerID string) *CalculatorExportMessage {
	return &CalculatorExportMessage{
		CalculatorID: calculatorID,
		OwnerID:      ownerID,
		Action:       ActionDelete,
		Timestamp:    time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *CalculatorExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// CalculatorExportMessageFromJSON creates a message from JSON bytes
func CalculatorExportMessageFromJSON(data []byte) (*CalculatorExportMessage, error) {
	var msg CalculatorExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
