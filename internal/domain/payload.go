package domain

import "encoding/json"

// PollOption is one votable choice inside a poll, quiz or embedded
// poll-template element.
type PollOption struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Votes   int    `json:"votes"`
	Color   string `json:"color,omitempty"`
	Image   string `json:"image,omitempty"`
	Correct bool   `json:"correct,omitempty"`
}

// PollPayload is the decoded content of a poll-template or quiz-template
// element.
type PollPayload struct {
	Question   string       `json:"question"`
	Options    []PollOption `json:"options"`
	TotalVotes int          `json:"totalVotes"`
	// Multi allows selecting more than one option per ballot
	Multi     bool   `json:"multi,omitempty"`
	Layout    string `json:"layout,omitempty"`
	ChartType string `json:"chartType,omitempty"`
}

// QAPayload is the decoded content of a qa-template element.
type QAPayload struct {
	Question string   `json:"question"`
	Entries  []string `json:"entries"`
}

// DefaultPollPayload is the payload a freshly inserted poll or quiz
// template starts with: two empty options with zero votes.
func DefaultPollPayload() PollPayload {
	return PollPayload{
		Options: []PollOption{
			{ID: "1", Text: "Option 1"},
			{ID: "2", Text: "Option 2"},
		},
	}
}

// DecodePollPayload parses a widget content string. A malformed payload
// yields the default payload rather than an error.
func DecodePollPayload(content string) PollPayload {
	if content == "" {
		return DefaultPollPayload()
	}
	var payload PollPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return DefaultPollPayload()
	}
	if payload.Options == nil {
		payload.Options = []PollOption{}
	}
	return payload
}

// EncodePollPayload serializes a poll payload back into element content.
func EncodePollPayload(payload PollPayload) string {
	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return string(data)
}

// DecodeQAPayload parses a qa-template content string with the same
// degrade-to-default behavior as poll payloads.
func DecodeQAPayload(content string) QAPayload {
	if content == "" {
		return QAPayload{Entries: []string{}}
	}
	var payload QAPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return QAPayload{Entries: []string{}}
	}
	if payload.Entries == nil {
		payload.Entries = []string{}
	}
	return payload
}
