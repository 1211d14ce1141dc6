package models

// CallbackAction identifies an inline button action.
type CallbackAction string

const (
	CallbackMarkRead CallbackAction = "mr"
	CallbackDelete   CallbackAction = "del"
	CallbackShowCode CallbackAction = "sc"
)

// CallbackData is the payload encoded into inline button callbacks. Kept
// terse because Telegram limits callback data to 64 bytes.
type CallbackData struct {
	Action    CallbackAction `json:"a"`
	MessageID int64          `json:"m"`
}
