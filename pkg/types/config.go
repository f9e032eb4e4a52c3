package types

import "time"

// HTTPConfig holds shared HTTP settings used by every outbound client.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pubmed-assistant/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// EntrezConfig holds settings for the NCBI E-utilities client.
type EntrezConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the E-utilities root (default https://eutils.ncbi.nlm.nih.gov/entrez/eutils).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey is an optional NCBI API key for higher request quotas.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Tool and Email identify the caller to NCBI; both are optional.
	Tool  string `json:"tool,omitempty" yaml:"tool,omitempty" mapstructure:"tool"`
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email"`

	// MaxResults is the default search page size (default 50).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// AIConfig holds settings for the OpenAI-compatible embedding and chat API.
type AIConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the API root (default https://api.openai.com/v1).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey is the bearer token for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// ChatModel is the chat completion model (default "gpt-4").
	ChatModel string `json:"chat_model" yaml:"chat_model" mapstructure:"chat_model"`

	// EmbeddingModel is the embedding model (default "text-embedding-ada-002").
	EmbeddingModel string `json:"embedding_model" yaml:"embedding_model" mapstructure:"embedding_model"`

	// Temperature is the sampling temperature for chat replies (default 0.7).
	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`

	// MaxTokens caps the length of chat replies (default 1000).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// EmbeddingBatchSize is the number of paper texts embedded per request.
	// Zero or one embeds each paper separately.
	EmbeddingBatchSize int `json:"embedding_batch_size" yaml:"embedding_batch_size" mapstructure:"embedding_batch_size"`
}

// ServerConfig holds settings for the HTTP service.
type ServerConfig struct {
	Host string `json:"host" yaml:"host" mapstructure:"host"`
	Port int    `json:"port" yaml:"port" mapstructure:"port"`

	// AllowedOrigins lists CORS origins; ["*"] permits every origin.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`

	// ShutdownTimeout bounds graceful shutdown (default 10s).
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// ServiceConfig groups the configuration for every component.
type ServiceConfig struct {
	Entrez EntrezConfig `json:"entrez" yaml:"entrez" mapstructure:"entrez"`
	AI     AIConfig     `json:"ai" yaml:"ai" mapstructure:"ai"`
	Server ServerConfig `json:"server" yaml:"server" mapstructure:"server"`
}

// Defaults used when a ServiceConfig field is left zero.
const (
	DefaultEntrezBaseURL   = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	DefaultAIBaseURL       = "https://api.openai.com/v1"
	DefaultChatModel       = "gpt-4"
	DefaultEmbeddingModel  = "text-embedding-ada-002"
	DefaultTemperature     = 0.7
	DefaultMaxTokens       = 1000
	DefaultMaxResults      = 50
	DefaultTimeout         = 60 * time.Second
	DefaultUserAgent       = "pubmed-assistant/0.1"
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8000
	DefaultShutdownTimeout = 10 * time.Second
)

// ApplyDefaults fills zero-valued fields with their defaults.
func (c *ServiceConfig) ApplyDefaults() {
	applyHTTPDefaults(&c.Entrez.HTTPConfig)
	applyHTTPDefaults(&c.AI.HTTPConfig)

	if c.Entrez.BaseURL == "" {
		c.Entrez.BaseURL = DefaultEntrezBaseURL
	}
	if c.Entrez.MaxResults <= 0 {
		c.Entrez.MaxResults = DefaultMaxResults
	}

	if c.AI.BaseURL == "" {
		c.AI.BaseURL = DefaultAIBaseURL
	}
	if c.AI.ChatModel == "" {
		c.AI.ChatModel = DefaultChatModel
	}
	if c.AI.EmbeddingModel == "" {
		c.AI.EmbeddingModel = DefaultEmbeddingModel
	}
	if c.AI.Temperature == 0 {
		c.AI.Temperature = DefaultTemperature
	}
	if c.AI.MaxTokens <= 0 {
		c.AI.MaxTokens = DefaultMaxTokens
	}

	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
}

func applyHTTPDefaults(h *HTTPConfig) {
	if h.Timeout <= 0 {
		h.Timeout = DefaultTimeout
	}
	if h.UserAgent == "" {
		h.UserAgent = DefaultUserAgent
	}
}
