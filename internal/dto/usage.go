package dto

// UsageResponse represents the caller's generation quota for the current
// month
type UsageResponse struct {
	Plan      string `json:"plan"`
	Used      int64  `json:"used"`
	Limit     int64  `json:"limit"`
	Remaining int64  `json:"remaining"`
	Exhausted bool   `json:"exhausted"`
}
