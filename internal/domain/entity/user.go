package entity

import "time"

// User is an account known from a verified access token
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserSettings holds per-user preferences and optional service keys.
// Keys left empty fall back to the server configuration.
type UserSettings struct {
	UserID             string      `json:"user_id"`
	LLMAPIKey          string      `json:"llm_api_key,omitempty"`
	LLMBaseURL         string      `json:"llm_base_url,omitempty"`
	LLMModel           string      `json:"llm_model,omitempty"`
	MapAPIKey          string      `json:"map_api_key,omitempty"`
	Currency           string      `json:"currency"`
	DefaultTravelStyle TravelStyle `json:"default_travel_style"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// DefaultSettings returns the settings used before a user saves any
func DefaultSettings(userID string) *UserSettings {
	return &UserSettings{
		UserID:             userID,
		Currency:           DefaultCurrency,
		DefaultTravelStyle: StyleStandard,
	}
}

// Masked returns a copy safe to send to clients
func (s *UserSettings) Masked() *UserSettings {
	out := *s
	out.LLMAPIKey = maskKey(s.LLMAPIKey)
	out.MapAPIKey = maskKey(s.MapAPIKey)
	return &out
}

func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
