package dto

// UpdateKind classifies an inbound chat event.
type UpdateKind string

// Supported update kinds.
const (
	KindCommand  UpdateKind = "command"
	KindCallback UpdateKind = "callback"
	KindDocument UpdateKind = "document"
	KindText     UpdateKind = "text"
)

// Actor identifies the user behind an update and the chat it came from.
type Actor struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
	ChatID   int64  `json:"chatId"`
}

// Document is a file carried by a message. FileRef is only meaningful to the transport.
type Document struct {
	FileRef  string `json:"fileRef"`
	FileName string `json:"fileName"`
}

// Command is a slash command with its whitespace-delimited arguments.
type Command struct {
	Name    string   `json:"name"`
	Args    []string `json:"args"`
	RawArgs string   `json:"rawArgs"`
	// ReplyDocument is set when the command replies to a message carrying a file.
	ReplyDocument *Document `json:"replyDocument,omitempty"`
}

// Callback is a button press on a previously sent menu.
type Callback struct {
	ID        string `json:"id"`
	Data      string `json:"data"`
	MessageID int    `json:"messageId"`
}

// Update is a transport-neutral inbound event.
type Update struct {
	ID        int        `json:"id"`
	RequestID string     `json:"requestId"`
	Kind      UpdateKind `json:"kind"`
	Actor     Actor      `json:"actor"`
	Command   *Command   `json:"command,omitempty"`
	Callback  *Callback  `json:"callback,omitempty"`
	Document  *Document  `json:"document,omitempty"`
	Text      string     `json:"text,omitempty"`
}
