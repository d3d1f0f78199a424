package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"xetproxy/internal/infrastructure/broker"
	"xetproxy/internal/infrastructure/xetcli"
	"xetproxy/internal/presentation/router"
	"xetproxy/pkg/logger"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultBind            = "0.0.0.0"
	defaultPort            = 8080
	defaultBinPath         = "/usr/local/bin/xet-download"
	defaultTokenEnv        = "HF_TOKEN"
	defaultPlaceholderRepo = "jedisct1/MiMo-7B-RL-GGUF"
)

// Config represents the configs used by services on system.
type Config struct {
	Environment     string                 `yaml:"environment"`
	Server          router.Config          `yaml:"server"`
	Xet             xetcli.Config          `yaml:"xet"`
	ChunkSize       int                    `yaml:"chunk_size"`
	BrokerConfig    broker.Config          `yaml:"redis_broker_config"`
	PublisherConfig broker.PublisherConfig `yaml:"publisher_config"`
	Logger          logger.Config          `yaml:"logger"`
}

// Load reads the optional yaml file at path, then overlays the environment.
func Load(path string) (*Config, error) {
	config := defaults()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, Error{
				reason: err.Error(),
			}
		}
		defer file.Close()

		decoder := yaml.NewDecoder(file)

		if err := decoder.Decode(config); err != nil {
			return nil, Error{
				reason: err.Error(),
			}
		}
	}

	if config.Environment != "prod" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, Error{
				reason: err.Error(),
			}
		}
	}

	if err := config.loadEnv(); err != nil {
		return nil, Error{
			reason: err.Error(),
		}
	}

	if err := config.basicCheck(); err != nil {
		return nil, Error{
			reason: err.Error(),
		}
	}

	return config, nil
}

func defaults() *Config {
	return &Config{
		Server: router.Config{
			Bind: defaultBind,
			Port: defaultPort,
		},
		Xet: xetcli.Config{
			BinPath:         defaultBinPath,
			TokenEnv:        defaultTokenEnv,
			PlaceholderRepo: defaultPlaceholderRepo,
		},
	}
}

// loadEnv overlays the environment. The credential is read from
// Xet.TokenEnv, the same variable the tool receives it in.
func (c *Config) loadEnv() error {
	if c.Xet.TokenEnv == "" {
		c.Xet.TokenEnv = defaultTokenEnv
	}
	c.Xet.Token = os.Getenv(c.Xet.TokenEnv)
	c.BrokerConfig.URI = os.Getenv("BROKER_URI")

	if bin := os.Getenv("ZIG_BIN_PATH"); bin != "" {
		c.Xet.BinPath = bin
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.ParseUint(port, 10, 16)
		if err != nil {
			return errors.New("invalid PORT: " + port)
		}
		c.Server.Port = uint16(p)
	}

	return nil
}

// basicCheck validates the basic stuff in config.
func (c *Config) basicCheck() error {
	if c.Xet.Token == "" {
		return errors.New(c.Xet.TokenEnv + " environment variable is required")
	}

	if c.Xet.BinPath == "" {
		return errors.New("xet tool path is empty")
	}

	if c.Xet.PlaceholderRepo == "" {
		return errors.New("xet placeholder repository is empty")
	}

	return nil
}
