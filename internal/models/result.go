package models

// DefaultRecipient is used when no proper name can be extracted from the reason
const DefaultRecipient = "Recipient"

// GenerationResult is the structured output of a single generation call.
// It is delivered to the caller and never persisted.
type GenerationResult struct {
	TextBody      string `json:"text_body"`
	FollowUpTip   string `json:"follow_up_tip"`
	RecipientName string `json:"recipient_name"`
}
