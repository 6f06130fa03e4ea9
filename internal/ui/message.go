package ui

import "time"

type MessageKind string

const (
	KindError   MessageKind = "error"
	KindSuccess MessageKind = "success"
)

// Message is a transient banner shown at the top of a page.
type Message struct {
	Kind MessageKind `json:"kind"`
	Text string      `json:"text"`
}

func ErrorMessage(text string) Message {
	return Message{Kind: KindError, Text: text}
}

func SuccessMessage(text string) Message {
	return Message{Kind: KindSuccess, Text: text}
}

// AutoHide is how long the banner stays visible.
func (m Message) AutoHide() time.Duration {
	if m.Kind == KindSuccess {
		return 3 * time.Second
	}
	return 5 * time.Second
}

// AutoHideMillis is AutoHide for use in templates.
func (m Message) AutoHideMillis() int64 {
	return m.AutoHide().Milliseconds()
}

func (m Message) Class() string {
	if m.Kind == KindSuccess {
		return "success-message slide-up"
	}
	return "error-message"
}
