package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultPort = 8080
	DefaultRoot = "website"
)

var (
	ErrInvalidPort      = errors.New("port must be between 0 and 65535")
	ErrInvalidWorkers   = errors.New("workers must not be negative")
	ErrInvalidTimeout   = errors.New("timeouts must not be negative")
	ErrEmptyRoot        = errors.New("site root is empty")
	ErrInvalidLogFormat = errors.New("log format must be json or text")
)

// Config は起動時に一度だけ確定し、以後は変更しない
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Site     SiteConfig     `toml:"site"`
	Timeouts TimeoutsConfig `toml:"timeouts"`
	Log      LogConfig      `toml:"log"`
}

type ServerConfig struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Workers int    `toml:"workers"`
}

type SiteConfig struct {
	Root string `toml:"root"`
}

// TimeoutsConfig は秒単位。0 はタイムアウトなし
type TimeoutsConfig struct {
	ReadHeader int `toml:"readheader"`
	Read       int `toml:"read"`
	Write      int `toml:"write"`
	Idle       int `toml:"idle"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Port: DefaultPort,
		},
		Site: SiteConfig{
			Root: DefaultRoot,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load はデフォルト値の上に path の TOML を読み込む
// ファイルで指定した相対パスの root はファイルのあるディレクトリからの相対とする
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg := Default()
	cfg.Site.Root = ""

	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}

	switch {
	case cfg.Site.Root == "":
		cfg.Site.Root = DefaultRoot
	case !filepath.IsAbs(cfg.Site.Root):
		abs, err := filepath.Abs(path)
		if err != nil {
			return Config{}, fmt.Errorf("resolve config path: %w", err)
		}
		cfg.Site.Root = filepath.Join(filepath.Dir(abs), cfg.Site.Root)
	}

	return cfg, nil
}

// ResolveRoot は相対パスを実行ファイルのあるディレクトリからの相対として解決する
func ResolveRoot(root string) (string, error) {
	if root == "" {
		return "", ErrEmptyRoot
	}
	if filepath.IsAbs(root) {
		return filepath.Clean(root), nil
	}

	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	return filepath.Join(filepath.Dir(exe), root), nil
}

func (c Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Server.Port)
	}
	if c.Server.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Server.Workers)
	}
	if strings.TrimSpace(c.Site.Root) == "" {
		return ErrEmptyRoot
	}
	t := c.Timeouts
	if t.ReadHeader < 0 || t.Read < 0 || t.Write < 0 || t.Idle < 0 {
		return ErrInvalidTimeout
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Log.Format)
	}

	return nil
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

func (c LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}

	return level, nil
}

func (t TimeoutsConfig) ReadHeaderTimeout() time.Duration {
	return time.Duration(t.ReadHeader) * time.Second
}

func (t TimeoutsConfig) ReadTimeout() time.Duration {
	return time.Duration(t.Read) * time.Second
}

func (t TimeoutsConfig) WriteTimeout() time.Duration {
	return time.Duration(t.Write) * time.Second
}

func (t TimeoutsConfig) IdleTimeout() time.Duration {
	return time.Duration(t.Idle) * time.Second
}
