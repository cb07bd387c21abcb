package config

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/palemoky/x-nimmt/internal/agent"
	"github.com/palemoky/x-nimmt/internal/apperrors"
	"github.com/palemoky/x-nimmt/internal/game"
	"github.com/palemoky/x-nimmt/internal/match"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "XNIMMT_"

// Config 模拟器配置
type Config struct {
	Game  GameConfig  `yaml:"game"`
	Agent AgentConfig `yaml:"agent"`
	Match MatchConfig `yaml:"match"`
	Redis RedisConfig `yaml:"redis"`
	Log   LogConfig   `yaml:"log"`
}

// GameConfig 牌局与比赛参数
type GameConfig struct {
	Players          []string `yaml:"players"` // 每个座位的智能体名称
	NumCardsInDeck   int      `yaml:"num_cards_in_deck"`
	MaxCardsInHand   int      `yaml:"max_cards_in_hand"`
	XthCardTakes     int      `yaml:"xth_card_takes"`
	NumRows          int      `yaml:"num_rows"`
	Games            int      `yaml:"games"`
	Verbose          int      `yaml:"verbose"` // 0 静默，1 每局摘要，2 每轮详情
	Seed             int64    `yaml:"seed"`    // 负数表示随机种子
	Tournament       bool     `yaml:"tournament"`
	AutoPlayLastCard *bool    `yaml:"auto_play_last_card"`
}

// AgentConfig 搜索智能体参数
type AgentConfig struct {
	MaxDepth int   `yaml:"max_depth"`
	Pruning  *bool `yaml:"pruning"`
}

// MatchConfig 运行方式
type MatchConfig struct {
	Workers int  `yaml:"workers"`
	TUI     bool `yaml:"tui"`
}

// RedisConfig Redis 配置，仅在启用排行榜时使用
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LogConfig 日志配置
type LogConfig struct {
	Dir   string `yaml:"dir"` // 为空时使用 ~/.x-nimmt
	Debug bool   `yaml:"debug"`
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Config{Game: GameConfig{Seed: 1}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.setDefaults()
	return &cfg, nil
}

// Default 返回默认配置，牌局参数与原版 settings 一致，输出级别为 0
func Default() *Config {
	cfg := &Config{Game: GameConfig{Seed: 1}}
	cfg.setDefaults()
	return cfg
}

// setDefaults 为未设置的字段填充默认值
func (c *Config) setDefaults() {
	if len(c.Game.Players) == 0 {
		c.Game.Players = []string{agent.ExpectimaxName, agent.RandomName}
	}
	if c.Game.NumCardsInDeck == 0 {
		c.Game.NumCardsInDeck = 17
	}
	if c.Game.MaxCardsInHand == 0 {
		c.Game.MaxCardsInHand = 5
	}
	if c.Game.XthCardTakes == 0 {
		c.Game.XthCardTakes = 4
	}
	if c.Game.NumRows == 0 {
		c.Game.NumRows = 3
	}
	if c.Game.Games == 0 {
		c.Game.Games = 100
	}
	if c.Game.AutoPlayLastCard == nil {
		c.Game.AutoPlayLastCard = boolPtr(true)
	}
	if c.Agent.MaxDepth == 0 {
		c.Agent.MaxDepth = agent.DefaultMaxDepth
	}
	if c.Agent.Pruning == nil {
		c.Agent.Pruning = boolPtr(true)
	}
	if c.Match.Workers == 0 {
		c.Match.Workers = 1
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
}

func boolPtr(b bool) *bool { return &b }

// LoadDotEnv 读取 .env 文件到进程环境，文件不存在时忽略
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv 用 XNIMMT_* 环境变量覆盖配置
func (c *Config) ApplyEnv() error {
	var errs []error
	intVar := func(key string, dst *int) {
		if v, ok := lookupEnv(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	boolVar := func(key string, dst *bool) {
		if v, ok := lookupEnv(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}

	if v, ok := lookupEnv("PLAYERS"); ok {
		c.Game.Players = splitList(v)
	}
	intVar("GAMES", &c.Game.Games)
	intVar("VERBOSE", &c.Game.Verbose)
	if v, ok := lookupEnv("SEED"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSEED: %w", EnvPrefix, err))
		} else {
			c.Game.Seed = n
		}
	}
	boolVar("TOURNAMENT", &c.Game.Tournament)
	intVar("MAX_DEPTH", &c.Agent.MaxDepth)
	intVar("WORKERS", &c.Match.Workers)
	boolVar("TUI", &c.Match.TUI)
	boolVar("REDIS_ENABLED", &c.Redis.Enabled)
	if v, ok := lookupEnv("REDIS_ADDR"); ok {
		c.Redis.Addr = v
	}
	if v, ok := lookupEnv("REDIS_PASSWORD"); ok {
		c.Redis.Password = v
	}
	intVar("REDIS_DB", &c.Redis.DB)
	if v, ok := lookupEnv("LOG_DIR"); ok {
		c.Log.Dir = v
	}
	boolVar("DEBUG", &c.Log.Debug)

	return errors.Join(errs...)
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// GameSettings converts the game section for game.NewGame.
func (c *Config) GameSettings() game.Settings {
	return game.Settings{
		NumPlayers:       len(c.Game.Players),
		NumRows:          c.Game.NumRows,
		NumCardsInDeck:   c.Game.NumCardsInDeck,
		MaxCardsInHand:   c.Game.MaxCardsInHand,
		XthCardTakes:     c.Game.XthCardTakes,
		AutoPlayLastCard: c.Game.AutoPlayLastCard == nil || *c.Game.AutoPlayLastCard,
	}
}

// ResolveSeed returns the configured seed, drawing a random one when it is
// negative.
func (c *Config) ResolveSeed() uint64 {
	if c.Game.Seed < 0 {
		return rand.Uint64()
	}
	return uint64(c.Game.Seed)
}

// MatchConfig converts the configuration for match.NewRunner.
func (c *Config) MatchConfig(seed uint64) match.Config {
	return match.Config{
		Game:       c.GameSettings(),
		Agents:     c.Game.Players,
		Games:      c.Game.Games,
		Seed:       seed,
		Tournament: c.Game.Tournament,
		MaxDepth:   c.Agent.MaxDepth,
		Pruning:    c.Agent.Pruning == nil || *c.Agent.Pruning,
	}
}

// Validate 检查配置，返回 apperrors 配置错误
func (c *Config) Validate() error {
	if err := c.GameSettings().Validate(); err != nil {
		return err
	}
	for _, name := range c.Game.Players {
		if _, err := agent.Lookup(name); err != nil {
			return err
		}
	}
	if c.Game.Games < 1 {
		return apperrors.Wrap(apperrors.ErrNoGames, nil, "got %d", c.Game.Games)
	}
	if c.Game.Verbose < 0 || c.Game.Verbose > 2 {
		return apperrors.Wrap(apperrors.ErrBadConfig, nil, "verbose must be 0, 1 or 2, got %d", c.Game.Verbose)
	}
	if c.Agent.MaxDepth < 1 {
		return apperrors.Wrap(apperrors.ErrBadConfig, nil, "max_depth must be at least 1, got %d", c.Agent.MaxDepth)
	}
	if c.Match.Workers < 1 {
		return apperrors.Wrap(apperrors.ErrBadConfig, nil, "workers must be at least 1, got %d", c.Match.Workers)
	}
	return nil
}
