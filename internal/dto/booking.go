package dto

// BookingRequest is the tool-call payload posted by the voice agent. The
// agent's function-calling layer is loose about argument names, so Args is
// kept as a raw map and probed with per-field alias lists.
type BookingRequest struct {
	Args map[string]any `json:"args"`
}

// AvailabilityResponse lists the next bookable slot start times.
type AvailabilityResponse struct {
	AvailableSlots []string `json:"available_slots"`
	Message        string   `json:"message"`
}
