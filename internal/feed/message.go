// Package feed streams live races to websocket clients.
package feed

import "time"

// MessageType identifies the payload carried by a Message
type MessageType string

const (
	MessageTypeRaceStart  MessageType = "race_start"
	MessageTypeTick       MessageType = "tick"
	MessageTypeRaceFinish MessageType = "race_finish"
	MessageTypeError      MessageType = "error"
)

// Message is the envelope sent to every feed client
type Message struct {
	Type      MessageType `json:"type"`
	RaceID    string      `json:"race_id,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// RaceStart announces a race before its first tick
type RaceStart struct {
	Distance float64            `json:"distance"`
	Track    float64            `json:"track"`
	Horses   []RunnerInfo       `json:"horses"`
	Odds     map[string]float64 `json:"odds,omitempty"`
}

// RunnerInfo is the per-horse card shown when a race starts
type RunnerInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Class string `json:"class"`
}
