package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config 项目配置结构体
// 同时带 yaml 与 json tag：CLI 通过 yaml.v3 读取，网关通过 kratos config Scan（json）读取
type Config struct {
	Providers     []ProviderConfig  `yaml:"providers" json:"providers"`
	LoadBalancing bool              `yaml:"load_balancing" json:"load_balancing"`
	Expensive     ExpensiveConfig   `yaml:"expensive" json:"expensive"`
	Search        SearchConfig      `yaml:"search" json:"search"`
	Research      ResearchConfig    `yaml:"research" json:"research"`
	Scraper       ScraperConfig     `yaml:"scraper" json:"scraper"`
	Log           LogConfig         `yaml:"log" json:"log"`
	Concurrency   ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	DB            DBConfig          `yaml:"db" json:"db"`
	ClickBank     ClickBankConfig   `yaml:"clickbank" json:"clickbank"`
}

// ProviderConfig 低价档位中单个 LLM 提供商
type ProviderConfig struct {
	Name         string  `yaml:"name" json:"name"`
	Kind         string  `yaml:"kind" json:"kind"` // openai（兼容协议）或 anthropic
	BaseURL      string  `yaml:"base_url" json:"base_url"`
	APIKey       string  `yaml:"api_key" json:"api_key"`
	Model        string  `yaml:"model" json:"model"`
	Priority     int     `yaml:"priority" json:"priority"`
	CostPer1K    float64 `yaml:"cost_per_1k_tokens" json:"cost_per_1k_tokens"`
	QualityScore float64 `yaml:"quality_score" json:"quality_score"`
	Tier         string  `yaml:"tier" json:"tier"`
	SpeedRating  float64 `yaml:"speed_rating" json:"speed_rating"`
	Disabled     bool    `yaml:"disabled" json:"disabled"`
	Timeout      int     `yaml:"timeout" json:"timeout"` // 秒
}

// ExpensiveConfig 昂贵档位（仅在没有低价提供商时使用）
type ExpensiveConfig struct {
	OpenAI       LLMConfig `yaml:"openai" json:"openai"`
	ClaudeAPIKey string    `yaml:"claude_api_key" json:"claude_api_key"`
	CohereAPIKey string    `yaml:"cohere_api_key" json:"cohere_api_key"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	BaseURL string `yaml:"base_url" json:"base_url"`
	APIKey  string `yaml:"api_key" json:"api_key"`
	Model   string `yaml:"model" json:"model"`
}

// DBConfig 数据库相关配置
type DBConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	User     string `yaml:"user" json:"user"`
	Password string `yaml:"password" json:"password"`
	Name     string `yaml:"name" json:"name"`
}

// DSN 返回 lib/pq 连接串
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

// SearchConfig 搜索相关配置，用于研究增强分析
type SearchConfig struct {
	Provider string        `yaml:"provider" json:"provider"`
	Tavily   TavilyConfig  `yaml:"tavily" json:"tavily"`
	SearXNG  SearXNGConfig `yaml:"searxng" json:"searxng"`
}

// TavilyConfig Tavily 配置
type TavilyConfig struct {
	APIKey string `yaml:"api_key" json:"api_key"`
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url" json:"base_url"`
	Timeout int    `yaml:"timeout" json:"timeout"`
}

// ResearchConfig 研究文档检索配置
type ResearchConfig struct {
	Enabled   bool `yaml:"enabled" json:"enabled"`
	TopK      int  `yaml:"top_k" json:"top_k"`
	ChunkSize int  `yaml:"chunk_size" json:"chunk_size"`
}

// ScraperConfig 页面抓取配置
type ScraperConfig struct {
	Timeout   int    `yaml:"timeout" json:"timeout"` // 秒
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	QPS     int `yaml:"qps" json:"qps"`
	RPM     int `yaml:"rpm" json:"rpm"`
	Workers int `yaml:"workers" json:"workers"`
}

// ClickBankConfig ClickBank 接入配置
type ClickBankConfig struct {
	BaseURL string `yaml:"base_url" json:"base_url"`
	DevKey  string `yaml:"dev_key" json:"dev_key"`
}

// LoadConfig 从指定路径加载配置，支持 ${ENV} 形式引用环境变量
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults 填充缺省值
func (c *Config) ApplyDefaults() {
	if c.Scraper.Timeout <= 0 {
		c.Scraper.Timeout = 30
	}
	if c.Concurrency.RPM <= 0 {
		c.Concurrency.RPM = 60
	}
	if c.Concurrency.QPS <= 0 {
		c.Concurrency.QPS = 1
	}
	if c.Concurrency.Workers <= 0 {
		c.Concurrency.Workers = 4
	}
	if c.Research.TopK <= 0 {
		c.Research.TopK = 5
	}
	if c.Research.ChunkSize <= 0 {
		c.Research.ChunkSize = 800
	}
	if c.ClickBank.BaseURL == "" {
		c.ClickBank.BaseURL = "https://api.clickbank.com/rest/1.3"
	}
	if c.ClickBank.DevKey == "" {
		c.ClickBank.DevKey = os.Getenv("CLICKBANK_DEV_KEY")
	}
	if c.Expensive.OpenAI.Model == "" {
		c.Expensive.OpenAI.Model = "gpt-4"
	}
	for i := range c.Providers {
		p := &c.Providers[i]
		if p.Kind == "" {
			p.Kind = "openai"
		}
		if p.Tier == "" {
			p.Tier = "free"
		}
		if p.Timeout <= 0 {
			p.Timeout = 60
		}
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Providers))
	for _, p := range c.Providers {
		if p.Name == "" {
			return errors.New("config: provider name is required")
		}
		if seen[p.Name] {
			return fmt.Errorf("config: duplicate provider %q", p.Name)
		}
		seen[p.Name] = true
		switch p.Kind {
		case "openai", "anthropic":
		default:
			return fmt.Errorf("config: provider %q has unknown kind %q", p.Name, p.Kind)
		}
		switch p.Tier {
		case "free", "paid", "premium":
		default:
			return fmt.Errorf("config: provider %q has unknown tier %q", p.Name, p.Tier)
		}
		if p.CostPer1K < 0 {
			return fmt.Errorf("config: provider %q has negative cost", p.Name)
		}
	}
	return nil
}
