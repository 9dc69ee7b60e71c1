package dto

// FeedEvent is one WebSocket frame. Error is set when the update was
// produced while its source was failing; Data then holds what was
// available.
type FeedEvent struct {
	Type  string      `json:"type"`
	Feed  string      `json:"feed"`
	Data  interface{} `json:"data"`
	Error string      `json:"error,omitempty"`
}
