package types

// TranslateRequest is the payload accepted by POST /translate.
type TranslateRequest struct {
	// Required text to translate.
	// example: Привіт, світе!
	Text string `json:"text" example:"Привіт, світе!"`
	// Source language code. Optional when language detection is enabled;
	// the server then infers it from the text.
	// example: uk
	SourceLang string `json:"source_lang,omitempty" example:"uk"`
	// Required target language code.
	// example: en
	TargetLang string `json:"target_lang" example:"en"`
	// Maximum number of new tokens to generate. Zero means "up to the
	// context capacity".
	// example: 128
	MaxTokens int `json:"max_tokens,omitempty" example:"128"`
}

// TranslateResponse is returned by POST /translate on success.
type TranslateResponse struct {
	// Translated text.
	// example: Hello, world!
	TranslatedText string `json:"translated_text" example:"Hello, world!"`
	// Source language code actually used (after detection, if any).
	// example: uk
	SourceLang string `json:"source_lang" example:"uk"`
	// Target language code.
	// example: en
	TargetLang string `json:"target_lang" example:"en"`
	// True when generation hit the length limit before a natural stop.
	// example: false
	Truncated bool `json:"truncated"`
	// Number of tokens the model generated.
	// example: 5
	TokensGenerated int `json:"tokens_generated"`
	// Generation time in milliseconds.
	// example: 42
	DurationMS int64 `json:"duration_ms"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: unsupported direction: fr->en
	Error string `json:"error" example:"unsupported direction: fr->en"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// DirectionStatus summarizes one translation direction for /status.
type DirectionStatus struct {
	// Direction tag, e.g. "uk-en".
	Direction string `json:"direction" example:"uk-en"`
	// Whether the direction's model loaded and is serving requests.
	Available bool `json:"available"`
	// Model file path backing the direction.
	ModelPath string `json:"model_path,omitempty"`
	// Load error for the direction, when unavailable.
	Error string `json:"error,omitempty"`
	// Number of decoding contexts in the pool.
	PoolSize int `json:"pool_size"`
	// Contexts currently checked out to in-flight requests.
	InUse int `json:"in_use"`
	// Total requests served for this direction.
	Served uint64 `json:"served"`
	// Last time the direction served a request (unix seconds, 0 = never).
	LastUsed int64 `json:"last_used_unix,omitempty"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Per-direction availability and pool occupancy.
	Directions []DirectionStatus `json:"directions"`
	// Uptime of the server in seconds.
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
