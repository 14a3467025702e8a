package ai

// GenerateMessageRequest asks for localized message content
type GenerateMessageRequest struct {
	MessageType string            `json:"message_type" binding:"required,oneof=otp order_confirmation payment_notification delivery_update price_alert weather_alert marketing welcome"`
	Language    string            `json:"language"`
	Variables   map[string]string `json:"variables"`
}

// GenerateMessageResponse carries the generated content and where it
// came from, "model" or "template" when the model was unavailable
type GenerateMessageResponse struct {
	Content string `json:"content"`
	Source  string `json:"source"`
}

// TranslateRequest asks for a translation of message text
type TranslateRequest struct {
	Text           string `json:"text" binding:"required,max=2000"`
	TargetLanguage string `json:"target_language" binding:"required"`
}

// TranslateResponse carries the translated text
type TranslateResponse struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"target_language"`
	Cached         bool   `json:"cached"`
}

// DetectIntentRequest asks what an inbound farmer message wants
type DetectIntentRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}

// IntentResponse is the classified intent of an inbound message
type IntentResponse struct {
	Intent string `json:"intent"`
}
