package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Weaviate     WeaviateStoreConfig `mapstructure:"weaviate"`
	Unstructured UnstructuredConfig  `mapstructure:"unstructured"`
	Vapi         VapiConfig          `mapstructure:"vapi"`
	Ingest       IngestConfig        `mapstructure:"ingest"`
	Server       ServerConfig        `mapstructure:"server"`
	Assistant    AssistantConfig     `mapstructure:"assistant"`
}

type WeaviateStoreConfig struct {
	Host    string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Class   string        `mapstructure:"class"`
	Timeout time.Duration `mapstructure:"timeout"`
	// SearchMode is "like" or "near_text".
	SearchMode string `mapstructure:"search_mode"`
	// Headers are forwarded on every request, e.g. vectorizer keys.
	Headers map[string]string `mapstructure:"headers"`
	// Vectorizer and ModuleConfig are only used when the class is created.
	Vectorizer   string       `mapstructure:"vectorizer"`
	ModuleConfig ModuleConfig `mapstructure:"module_config"`
}

type ModuleConfig map[string]interface{}

type UnstructuredConfig struct {
	URL              string        `mapstructure:"url"`
	APIKey           string        `mapstructure:"api_key"`
	Strategy         string        `mapstructure:"strategy"`
	ChunkingStrategy string        `mapstructure:"chunking_strategy"`
	MaxCharacters    int           `mapstructure:"max_characters"`
	NewAfterNChars   int           `mapstructure:"new_after_n_chars"`
	Overlap          int           `mapstructure:"overlap"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

type VapiConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type IngestConfig struct {
	File           string        `mapstructure:"file"`
	Limit          int           `mapstructure:"limit"`
	BatchSize      int           `mapstructure:"batch_size"`
	MinContentLen  int           `mapstructure:"min_content_length"`
	SkipExtensions []string      `mapstructure:"skip_extensions"`
	Delay          time.Duration `mapstructure:"delay"`
	TitlePrefix    string        `mapstructure:"title_prefix"`
	NamePrefix     string        `mapstructure:"name_prefix"`
	DocType        string        `mapstructure:"doc_type"`
	Source         string        `mapstructure:"source"`
	EnsureClass    bool          `mapstructure:"ensure_class"`
}

type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   string `mapstructure:"port"`
	Secret string `mapstructure:"secret"`
	// AllowedOrigins lists browser origins allowed to call the server. "*" allows any.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type AssistantConfig struct {
	Name          string `mapstructure:"name"`
	Provider      string `mapstructure:"provider"`
	Model         string `mapstructure:"model"`
	FirstMessage  string `mapstructure:"first_message"`
	PromptFile    string `mapstructure:"prompt_file"`
	ServerURL     string `mapstructure:"server_url"`
	ToolName      string `mapstructure:"tool_name"`
	WebhookURL    string `mapstructure:"webhook_url"`
	KnowledgeName string `mapstructure:"knowledge_name"`
}

var DefaultSkipExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".svg", ".webp", ".ico", ".pdf", ".css", ".js"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("weaviate.class", "VERBA_DOCUMENTS")
	v.SetDefault("weaviate.timeout", 30*time.Second)
	v.SetDefault("weaviate.search_mode", "like")

	v.SetDefault("unstructured.url", "https://api.unstructuredapp.io/general/v0/general")
	v.SetDefault("unstructured.strategy", "fast")
	v.SetDefault("unstructured.chunking_strategy", "by_title")
	v.SetDefault("unstructured.max_characters", 1000)
	v.SetDefault("unstructured.new_after_n_chars", 800)
	v.SetDefault("unstructured.timeout", 60*time.Second)

	v.SetDefault("vapi.base_url", "https://api.vapi.ai")
	v.SetDefault("vapi.timeout", 30*time.Second)

	v.SetDefault("ingest.batch_size", 10)
	v.SetDefault("ingest.min_content_length", 50)
	v.SetDefault("ingest.skip_extensions", DefaultSkipExtensions)
	v.SetDefault("ingest.delay", time.Second)
	v.SetDefault("ingest.doc_type", "webpage")
	v.SetDefault("ingest.name_prefix", "page")
	v.SetDefault("ingest.source", "Website")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "5003")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("assistant.name", "Alex")
	v.SetDefault("assistant.provider", "openai")
	v.SetDefault("assistant.model", "gpt-4")
	v.SetDefault("assistant.first_message", "Hey! What's on your mind?")
	v.SetDefault("assistant.tool_name", "search_knowledge_base")
	v.SetDefault("assistant.knowledge_name", "knowledge base")
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string][]string{
	"weaviate.url":          {"WEAVIATE_URL"},
	"weaviate.api_key":      {"WEAVIATE_API_KEY", "WEAVIATE_APIKEY"},
	"weaviate.class":        {"WEAVIATE_CLASS"},
	"unstructured.url":      {"UNSTRUCTURED_API_URL"},
	"unstructured.api_key":  {"UNSTRUCTURED_API_KEY"},
	"vapi.base_url":         {"VAPI_BASE_URL"},
	"vapi.api_key":          {"VAPI_API_KEY"},
	"server.port":           {"PORT"},
	"server.secret":         {"VAPI_SERVER_SECRET"},
	"assistant.webhook_url": {"VAPI_WEBHOOK_URL"},
}

// LoadConfig reads configPath (optional) and overlays environment variables.
// With an empty path it looks for config.yaml in the working directory and
// .vapi-kb.yaml in the home directory; a missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
			_, localErr := os.Stat("config.yaml")
			if _, err := os.Stat(filepath.Join(home, ".vapi-kb.yaml")); err == nil && localErr != nil {
				v.SetConfigFile(filepath.Join(home, ".vapi-kb.yaml"))
			}
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range envBindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("error binding env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.Weaviate.Host = strings.TrimRight(config.Weaviate.Host, "/")
	config.Vapi.BaseURL = strings.TrimRight(config.Vapi.BaseURL, "/")

	return &config, nil
}
