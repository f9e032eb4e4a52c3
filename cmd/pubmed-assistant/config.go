// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/pubmed-assistant/internal/secrets"
	"github.com/pdiddy/pubmed-assistant/internal/service"
	"github.com/pdiddy/pubmed-assistant/pkg/types"
)

// setDefaults registers every config key so environment overrides resolve
// during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("entrez.base_url", types.DefaultEntrezBaseURL)
	v.SetDefault("entrez.api_key", "")
	v.SetDefault("entrez.tool", "pubmed-assistant")
	v.SetDefault("entrez.email", "")
	v.SetDefault("entrez.max_results", types.DefaultMaxResults)
	v.SetDefault("entrez.timeout", types.DefaultTimeout)
	v.SetDefault("entrez.user_agent", types.DefaultUserAgent)

	v.SetDefault("ai.base_url", types.DefaultAIBaseURL)
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.chat_model", types.DefaultChatModel)
	v.SetDefault("ai.embedding_model", types.DefaultEmbeddingModel)
	v.SetDefault("ai.temperature", types.DefaultTemperature)
	v.SetDefault("ai.max_tokens", types.DefaultMaxTokens)
	v.SetDefault("ai.embedding_batch_size", 0)
	v.SetDefault("ai.timeout", types.DefaultTimeout)
	v.SetDefault("ai.user_agent", types.DefaultUserAgent)

	v.SetDefault("server.host", types.DefaultHost)
	v.SetDefault("server.port", types.DefaultPort)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", types.DefaultShutdownTimeout)
}

// loadServiceConfig decodes v into a ServiceConfig and fills credentials
// from s when the config leaves them empty.
func loadServiceConfig(v *viper.Viper, s secrets.Store) (types.ServiceConfig, error) {
	var cfg types.ServiceConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}

	cfg.AI.APIKey = s.Resolve(secrets.OpenAIAPIKey, cfg.AI.APIKey)
	cfg.Entrez.APIKey = s.Resolve(secrets.NCBIAPIKey, cfg.Entrez.APIKey)
	cfg.Entrez.Email = s.Resolve(secrets.NCBIEmail, cfg.Entrez.Email)
	cfg.ApplyDefaults()
	return cfg, nil
}

// newService loads the current configuration and builds a Service.
func newService() (*service.Service, types.ServiceConfig, error) {
	cfg, err := loadServiceConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return nil, cfg, err
	}
	if cfg.AI.APIKey == "" {
		logger.Warn("no OpenAI API key configured; set OPENAI_API_KEY or .secrets/openai-api-key")
	}
	logger.Debug("configuration loaded",
		zap.String("entrez_base_url", cfg.Entrez.BaseURL),
		zap.String("ai_base_url", cfg.AI.BaseURL),
		zap.String("chat_model", cfg.AI.ChatModel),
		zap.String("embedding_model", cfg.AI.EmbeddingModel))
	return service.New(cfg, logger), cfg, nil
}
