package models

type CreateEmojiRequest struct {
	Prompt string `json:"prompt" example:"a cat wearing sunglasses"`
	// Token is the anti-automation token issued to the form.
	Token string `json:"token"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
