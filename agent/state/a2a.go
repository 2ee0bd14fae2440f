package state

// A2A (agent-to-agent) messaging over CallState.Messages.
//
// Agents coordinate by appending structured messages to the call state and
// querying them later. The log is append-only for the lifetime of one
// CallState: nothing is ever consumed or removed, so the same message can be
// read by multiple agents and re-reading is side-effect free. This also makes
// the log usable as an audit trail for post-hoc evaluation.

// ToAny addresses a message to every agent.
const ToAny = "any"

// Known message types. Unknown types are legal and carry a RawPayload.
const (
	MsgEntitySummary      = "entity_summary"
	MsgFrustrationSummary = "frustration_summary"
	MsgSentimentSignal    = "sentiment_signal"
)

// Message is immutable once appended.
type Message struct {
	From    string  `json:"from"`
	To      string  `json:"to"`
	Type    string  `json:"type"`
	Payload Payload `json:"payload"`
}

// Payload is a sealed set of message payload shapes. Message types without a
// dedicated shape use RawPayload.
type Payload interface {
	isPayload()
}

// EntitySummary is published by the entities agent for downstream consumers.
type EntitySummary struct {
	Product  string   `json:"product,omitempty"`
	Issue    string   `json:"issue,omitempty"`
	Priority string   `json:"priority,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// FrustrationSummary is published by the frustration loop agent.
type FrustrationSummary struct {
	OverallLevel   FrustrationLevel   `json:"overall_level"`
	HighSegments   []FrustrationPoint `json:"high_segments,omitempty"`
	TimelineLength int                `json:"timeline_length"`
}

// SentimentSignal is published by the sentiment agent.
type SentimentSignal struct {
	Sentiment string `json:"sentiment"`
}

// RawPayload carries message types the core does not model.
type RawPayload map[string]any

func (EntitySummary) isPayload()      {}
func (FrustrationSummary) isPayload() {}
func (SentimentSignal) isPayload()    {}
func (RawPayload) isPayload()         {}

// Send appends one message to the call state. The recipient is not validated
// against any registry: an unknown recipient simply means no one will query
// for it.
func (c *CallState) Send(from, to, msgType string, payload Payload) {
	c.Messages = append(c.Messages, Message{
		From:    from,
		To:      to,
		Type:    msgType,
		Payload: payload,
	})
}

// MessagesFor returns, in append order, the messages addressed to agentName
// or to the "any" wildcard. A non-empty msgType filters by exact type match.
// Callers wanting only the most relevant message take the last element.
func (c *CallState) MessagesFor(agentName, msgType string) []Message {
	var out []Message
	for _, m := range c.Messages {
		if m.To != agentName && m.To != ToAny {
			continue
		}
		if msgType != "" && m.Type != msgType {
			continue
		}
		out = append(out, m)
	}
	return out
}

// LastMessageFor returns the most recent matching message, if any.
func (c *CallState) LastMessageFor(agentName, msgType string) (Message, bool) {
	msgs := c.MessagesFor(agentName, msgType)
	if len(msgs) == 0 {
		return Message{}, false
	}
	return msgs[len(msgs)-1], true
}
