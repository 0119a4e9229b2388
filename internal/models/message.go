package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Message is one turn of a session conversation. Assistant turns carry the
// processing state they finished in and, for tabular answers, the rendered
// result preview that was shown to the summarizer.
type Message struct {
	SessionID     primitive.ObjectID `bson:"session_id" json:"session_id"`
	Role          string             `bson:"role" json:"role"`
	Content       string             `bson:"content" json:"content"`
	ResultPreview *string            `bson:"result_preview,omitempty" json:"result_preview,omitempty"`
	State         string             `bson:"state" json:"state"`
	Base          `bson:",inline"`
}

func NewMessage(sessionID primitive.ObjectID, role, content, state string) *Message {
	return &Message{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		State:     state,
		Base:      NewBase(),
	}
}
