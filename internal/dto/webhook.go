package dto

// PostCallWebhook is the provider's post-call event. Only the event
// discriminator has a stable shape; the call object varies across payload
// versions and is probed field by field.
type PostCallWebhook struct {
	Event string         `json:"event"`
	Call  map[string]any `json:"call"`
}
