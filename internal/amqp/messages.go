package amqp

import (
	"encoding/json"
	"time"
)

// RecordAppendedMessage announces one appended ledger row. It carries only
// the table name and the row's position; the audit worker re-reads the
// row from the store.
type RecordAppendedMessage struct {
	Table     string    `json:"table"`
	Index     int       `json:"index"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordAppendedMessage(table string, index int) *RecordAppendedMessage {
	return &RecordAppendedMessage{
		Table:     table,
		Index:     index,
		Timestamp: time.Now(),
	}
}

func (m *RecordAppendedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordAppendedMessageFromJSON(data []byte) (*RecordAppendedMessage, error) {
	var msg RecordAppendedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
