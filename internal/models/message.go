package models

import "encoding/json"

// Message is one entry of the team discussion board.
// Time is a display string in the configured layout and is not sortable.
type Message struct {
	ID      string `json:"id,omitempty"`
	User    string `json:"user"`
	Content string `json:"content"`
	Time    string `json:"time"`
}

// EffectiveID is the id used for de-duplication. Messages without an id are
// identified by user and time.
func (m Message) EffectiveID() string {
	if m.ID != "" {
		return m.ID
	}
	return m.User + "-" + m.Time
}

// UnmarshalJSON accepts numeric ids written by older clients
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID      json.RawMessage `json:"id"`
		User    string          `json:"user"`
		Content string          `json:"content"`
		Time    string          `json:"time"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m = Message{User: raw.User, Content: raw.Content, Time: raw.Time}

	id, err := decodeID(raw.ID)
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

// SendMessageRequest is the body of POST /api/v1/messages
type SendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessageResponse carries the stored message and its rendered fragment
type SendMessageResponse struct {
	Message Message `json:"message"`
	HTML    string  `json:"html"`
}
