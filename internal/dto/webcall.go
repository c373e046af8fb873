package dto

// Lead is the contact payload submitted by the web widget.
type Lead struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	BusinessName string `json:"businessName"`
	Website      string `json:"website"`
}

// WebCallResponse is returned to the browser so the widget can join the
// live call.
type WebCallResponse struct {
	AccessToken string `json:"access_token"`
	CallID      string `json:"call_id,omitempty"`
}
