package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
)

const (
	LedgerRedis  = "redis"
	LedgerSQLite = "sqlite"
	LedgerMemory = "memory"
)

var (
	ErrUnknownLedger = errors.New("unknown ledger driver")
	ErrEmptyName     = errors.New("player name is empty")
	ErrNameTooLong   = errors.New("player name is too long")
)

type Config struct {
	LogLevel         string        `yaml:"log-level" env:"TICTACTOE_LOG_LEVEL" env-default:"info"`
	PlayerName       string        `yaml:"player-name" env:"TICTACTOE_NAME"`
	TrustRemoteMoves bool          `yaml:"trust-remote-moves" env:"TICTACTOE_TRUST_REMOTE_MOVES" env-default:"false"`
	DialTimeout      time.Duration `yaml:"dial-timeout" env:"TICTACTOE_DIAL_TIMEOUT" env-default:"10s"`
	ClearScreen      bool          `yaml:"clear-screen" env:"TICTACTOE_CLEAR_SCREEN" env-default:"false"`
	Host             Host          `yaml:"host"`
	Ledger           Ledger        `yaml:"ledger"`
	Redis            Redis         `yaml:"redis"`
}

// Host - where the initiator listens and what it advertises.
type Host struct {
	Bind      string `yaml:"bind" env:"TICTACTOE_BIND" env-default:"0.0.0.0"`
	Port      string `yaml:"port" env:"TICTACTOE_PORT" env-default:"9090"`
	PublicURL string `yaml:"public-url" env:"TICTACTOE_PUBLIC_URL"`
}

type Ledger struct {
	Driver     string `yaml:"driver" env:"TICTACTOE_LEDGER_DRIVER" env-default:"sqlite"`
	SQLitePath string `yaml:"sqlite-path" env:"TICTACTOE_LEDGER_SQLITE_PATH" env-default:"tictactoe.db"`
}

type Redis struct {
	Host string `yaml:"host" env:"TICTACTOE_REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"TICTACTOE_REDIS_PORT" env-default:"6379"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

// Load - reads path when it exists, otherwise only the environment.
func Load(path string) (*Config, error) {
	config := &Config{}

	_, err := os.Stat(path)

	switch {
	case err == nil:
		err = cleanenv.ReadConfig(path, config)
	case errors.Is(err, fs.ErrNotExist):
		err = cleanenv.ReadEnv(config)
	}

	if err != nil {
		return nil, err
	}

	return config, nil
}

// Validate - checks what a game needs before any connection is made. The player name is
// trimmed in place, whichever source set it.
func (that *Config) Validate() error {
	that.PlayerName = strings.TrimSpace(that.PlayerName)

	if that.PlayerName == "" {
		return ErrEmptyName
	}

	if !entity.NameFits(that.PlayerName) {
		return fmt.Errorf("%w: more than %d characters", ErrNameTooLong, entity.MaxNameLength)
	}

	return that.Ledger.Validate()
}

func (that *Ledger) Validate() error {
	switch that.Driver {
	case LedgerRedis, LedgerSQLite, LedgerMemory:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLedger, that.Driver)
	}
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
