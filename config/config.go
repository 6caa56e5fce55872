package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

const (
	DefaultReviewTimeoutMs   = 30000
	DefaultReviewBatchLimit  = 25
	DefaultMaxPostsPerDay    = 2
	DefaultMaxPostWords      = 300
	DefaultMinPostChars      = 30
	DefaultAnthropicModel    = "claude-sonnet-4-20250514"
	DefaultGeminiModel       = "gemini-2.5-flash"
	DefaultAIMaxOutputTokens = 700
)

type AppConfig struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Server     ServerConfig     `yaml:"server"`
	Mongo      MongoConfig      `yaml:"mongo"`
	AI         AIConfig         `yaml:"ai"`
	Review     ReviewConfig     `yaml:"review"`
	Discussion DiscussionConfig `yaml:"discussion"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	EventBus   EventBusConfig   `yaml:"eventbus"`
	Auth       AuthConfig       `yaml:"-"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// AIConfig 는 리뷰용 LLM provider 설정이다. API 키는 환경변수에서만 읽는다.
type AIConfig struct {
	Provider  string `yaml:"provider"` // google | anthropic | "" (fallback only)
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
	APIKey    string `yaml:"-"`
}

// Configured 는 provider 와 credential 이 모두 있을 때만 true 다.
func (c AIConfig) Configured() bool {
	return c.Provider != "" && c.APIKey != ""
}

type ReviewConfig struct {
	// TimeoutMs 가 nil 이면 기본값(30000)을 사용한다. 0 은 즉시 타임아웃을 의미한다.
	TimeoutMs  *int `yaml:"timeout_ms"`
	BatchLimit int  `yaml:"batch_limit"`
}

// Timeout 은 AI 호출에 허용되는 wall-clock 시간을 반환한다.
func (c ReviewConfig) Timeout() time.Duration {
	if c.TimeoutMs == nil || *c.TimeoutMs < 0 {
		return DefaultReviewTimeoutMs * time.Millisecond
	}
	return time.Duration(*c.TimeoutMs) * time.Millisecond
}

type DiscussionConfig struct {
	MaxPostsPerDay int    `yaml:"max_posts_per_day"`
	MaxWords       int    `yaml:"max_words"`
	MinChars       int    `yaml:"min_chars"`
	Timezone       string `yaml:"timezone"`
}

// Location 은 일일 쿼터의 자정 기준이 되는 timezone 을 반환한다.
func (c DiscussionConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

type RateLimitConfig struct {
	Backend   string `yaml:"backend"` // mongo | redis
	RedisAddr string `yaml:"redis_addr"`
}

type EventBusConfig struct {
	Driver  string `yaml:"driver"` // kafka | memory
	Brokers string `yaml:"brokers"`
	GroupID string `yaml:"group_id"`
}

type AuthConfig struct {
	InternalAPIKey string
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	// load configuration file
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil && !os.IsNotExist(err) {
		panic(err)
	}

	c, err := Parse(data)
	if err != nil {
		panic(err)
	}
	config = &c
}

// Parse 는 yaml 을 읽고 환경변수 override 와 기본값을 적용한다.
func Parse(data []byte) (AppConfig, error) {
	var c AppConfig
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &c); err != nil {
			return AppConfig{}, fmt.Errorf("config.yaml 파싱 실패: %w", err)
		}
	}
	if err := applyEnvOverrides(&c); err != nil {
		return AppConfig{}, err
	}
	applyDefaults(&c)
	return c, nil
}

func applyEnvOverrides(c *AppConfig) error {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		c.Mongo.URI = v
	}
	if v := os.Getenv("AI_PROVIDER"); v != "" {
		c.AI.Provider = v
	}
	if v := os.Getenv("AI_MODEL"); v != "" {
		c.AI.Model = v
	}
	if v := os.Getenv("AI_REVIEW_TIMEOUT_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("AI_REVIEW_TIMEOUT_MS 값이 올바르지 않음 %q: %w", v, err)
		}
		c.Review.TimeoutMs = &ms
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.RateLimit.RedisAddr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.EventBus.Brokers = v
	}
	c.Auth.InternalAPIKey = os.Getenv("INTERNAL_API_KEY")

	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	switch c.AI.Provider {
	case "google", "gemini":
		c.AI.Provider = "google"
		c.AI.APIKey = os.Getenv("GEMINI_API_KEY")
	case "anthropic":
		c.AI.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	case "":
		// provider 가 명시되지 않으면 credential 이 있는 쪽을 사용한다.
		if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
			c.AI.Provider, c.AI.APIKey = "anthropic", k
		} else if k := os.Getenv("GEMINI_API_KEY"); k != "" {
			c.AI.Provider, c.AI.APIKey = "google", k
		}
	default:
		return fmt.Errorf("지원하지 않는 ai.provider: %s", c.AI.Provider)
	}
	return nil
}

func applyDefaults(c *AppConfig) {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Mongo.URI == "" {
		c.Mongo.URI = "mongodb://localhost:27017"
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "youthpress"
	}
	if c.AI.Model == "" {
		switch c.AI.Provider {
		case "anthropic":
			c.AI.Model = DefaultAnthropicModel
		case "google":
			c.AI.Model = DefaultGeminiModel
		}
	}
	if c.AI.MaxTokens <= 0 {
		c.AI.MaxTokens = DefaultAIMaxOutputTokens
	}
	if c.Review.BatchLimit <= 0 || c.Review.BatchLimit > DefaultReviewBatchLimit {
		c.Review.BatchLimit = DefaultReviewBatchLimit
	}
	if c.Discussion.MaxPostsPerDay <= 0 {
		c.Discussion.MaxPostsPerDay = DefaultMaxPostsPerDay
	}
	if c.Discussion.MaxWords <= 0 {
		c.Discussion.MaxWords = DefaultMaxPostWords
	}
	if c.Discussion.MinChars <= 0 {
		c.Discussion.MinChars = DefaultMinPostChars
	}
	if c.RateLimit.Backend == "" {
		c.RateLimit.Backend = "mongo"
	}
	if c.EventBus.Driver == "" {
		c.EventBus.Driver = "memory"
	}
	if c.EventBus.GroupID == "" {
		c.EventBus.GroupID = "youth-press"
	}
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
