package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/MegaGrindStone/doc-web-ui/internal/chat"
	"github.com/MegaGrindStone/doc-web-ui/internal/services"
	"gopkg.in/yaml.v3"
)

type llmConfig interface {
	completer(logger *slog.Logger) (chat.Completer, error)
}

// BaseLLMConfig contains the common fields for all LLM configurations.
type BaseLLMConfig struct {
	Provider string `yaml:"provider"`
}

type config struct {
	Port   string    `yaml:"port"`
	Stream bool      `yaml:"stream"`
	LLM    llmConfig `yaml:"llm"`
}

type horizonConfig struct {
	BaseLLMConfig  `yaml:",inline"`
	TokenURL       string `yaml:"tokenUrl"`
	ClientID       string `yaml:"clientId"`
	ClientSecret   string `yaml:"clientSecret"`
	ChatURL        string `yaml:"chatUrl"`
	QoS            string `yaml:"qos"`
	Preview        bool   `yaml:"preview"`
	Reasoning      bool   `yaml:"reasoning"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

type ollamaConfig struct {
	BaseLLMConfig `yaml:",inline"`
	Host          string `yaml:"host"`
	Model         string `yaml:"model"`
}

type openAIConfig struct {
	BaseLLMConfig `yaml:",inline"`
	APIKey        string `yaml:"apiKey"`
	Model         string `yaml:"model"`
}

func (c *config) UnmarshalYAML(value *yaml.Node) error {
	var rawConfig struct {
		Port   string         `yaml:"port"`
		Stream bool           `yaml:"stream"`
		LLM    map[string]any `yaml:"llm"`
	}

	if err := value.Decode(&rawConfig); err != nil {
		return err
	}

	c.Port = rawConfig.Port
	c.Stream = rawConfig.Stream

	llmProvider, ok := rawConfig.LLM["provider"].(string)
	if !ok {
		return fmt.Errorf("llm provider is required")
	}

	llmRawYAML, err := yaml.Marshal(rawConfig.LLM)
	if err != nil {
		return err
	}

	var llm llmConfig
	switch llmProvider {
	case "horizon":
		llm = &horizonConfig{}
	case "ollama":
		llm = &ollamaConfig{}
	case "openai":
		llm = &openAIConfig{}
	default:
		return fmt.Errorf("unknown llm provider: %s", llmProvider)
	}

	if err := yaml.Unmarshal(llmRawYAML, llm); err != nil {
		return err
	}

	c.LLM = llm

	return nil
}

func (h horizonConfig) completer(logger *slog.Logger) (chat.Completer, error) {
	if h.TokenURL == "" {
		return nil, fmt.Errorf("tokenUrl is required")
	}
	if h.ChatURL == "" {
		return nil, fmt.Errorf("chatUrl is required")
	}

	clientID := h.ClientID
	if clientID == "" {
		clientID = os.Getenv("HORIZON_CLIENT_ID")
	}
	clientSecret := h.ClientSecret
	if clientSecret == "" {
		clientSecret = os.Getenv("HORIZON_CLIENT_SECRET")
	}
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("client credentials are required")
	}

	tokens := services.NewTokenCache(h.TokenURL, clientID, clientSecret, logger)
	return services.NewHorizon(h.ChatURL, services.HorizonOptions{
		QoS:       h.QoS,
		Preview:   h.Preview,
		Reasoning: h.Reasoning,
		Timeout:   time.Duration(h.TimeoutSeconds) * time.Second,
	}, tokens, logger), nil
}

func (o ollamaConfig) completer(*slog.Logger) (chat.Completer, error) {
	if o.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	host := o.Host
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}
	return services.NewOllama(host, o.Model), nil
}

func (o openAIConfig) completer(logger *slog.Logger) (chat.Completer, error) {
	if o.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	apiKey := o.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	return services.NewOpenAI(apiKey, o.Model, logger), nil
}
