// Package types defines the wire types for the embedding service API.
package types

// EmbedResponse is the native POST /embed response.
type EmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Model      string      `json:"model"`
	Dimensions int         `json:"dimensions"`
	Count      int         `json:"count"`
	ElapsedMS  float64     `json:"elapsed_ms"`
}

// OpenAIEmbedding is one entry in the OpenAI-compatible response data array.
type OpenAIEmbedding struct {
	Object    string    `json:"object"`
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

// OpenAIUsage mirrors the OpenAI usage block. The service does not meter
// tokens, so both counts are always zero.
type OpenAIUsage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// OpenAIEmbeddingsResponse is the POST /v1/embeddings response.
type OpenAIEmbeddingsResponse struct {
	Object string            `json:"object"`
	Data   []OpenAIEmbedding `json:"data"`
	Model  string            `json:"model"`
	Usage  OpenAIUsage       `json:"usage"`
}

// HealthResponse merges service status with the active backend's identity.
type HealthResponse struct {
	Status             string  `json:"status"`
	UptimeSeconds      float64 `json:"uptime_seconds"`
	PipelineDimensions int     `json:"pipeline_dimensions"`
	Instance           string  `json:"instance"`
	Backend            string  `json:"backend"`
	Model              string  `json:"model"`
	Device             string  `json:"device"`
	Dimensions         int     `json:"dimensions"`
}

// ErrorResponse is the wire shape for every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}
