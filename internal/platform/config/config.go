package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DriverPostgres はリモートのドキュメントストアとして PostgreSQL を利用します。
	DriverPostgres = "postgres"
	// DriverLocal は端末内の SQLite キーバリューストアを利用します。
	DriverLocal = "local"
)

// DefaultLocalPath はローカルストアの既定のファイルパスです。
const DefaultLocalPath = "data/congregation.db"

// DefaultIsolationLevel は書き込みトランザクションの既定の分離レベルです。
const DefaultIsolationLevel = "read committed"

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	Territory TerritoryConfig `yaml:"territory"`
}

// ServerConfig は gRPC サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr  string `yaml:"listen_addr"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// LogConfig はログ出力に関する設定です。
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StorageConfig はレコードストアのバックエンド選択です。
type StorageConfig struct {
	Driver string             `yaml:"driver"`
	Local  LocalStorageConfig `yaml:"local"`
}

// LocalStorageConfig はローカルストアの設定です。
type LocalStorageConfig struct {
	Path    string `yaml:"path"`
	Seed    bool   `yaml:"-"`
	SeedRaw *bool  `yaml:"seed"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
	// IsolationLevel は書き込みトランザクションの分離レベルです (read committed | repeatable read | serializable)。
	IsolationLevel string `yaml:"isolation_level"`
}

// TerritoryConfig は区域台帳に関する設定です。
type TerritoryConfig struct {
	DueSoonWindow    time.Duration `yaml:"-"`
	DueSoonWindowRaw string        `yaml:"due_soon_window"`
}

// Load は指定されたパスから設定ファイルを読み込みます。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	cfg.applyEnvOverrides(os.Getenv)

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnvOverrides は環境変数で一部の設定を上書きします。
func (c *Config) applyEnvOverrides(getenv func(string) string) {
	if v := strings.TrimSpace(getenv("STORAGE_DRIVER")); v != "" {
		c.Storage.Driver = v
	}
	if v := strings.TrimSpace(getenv("LOCAL_STORE_PATH")); v != "" {
		c.Storage.Local.Path = v
	}
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}

	if err := c.Log.validateAndNormalize(); err != nil {
		return err
	}

	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case "":
		c.Storage.Driver = DriverPostgres
	case DriverPostgres, DriverLocal:
	default:
		return fmt.Errorf("config: storage.driver must be %q or %q, got %q", DriverPostgres, DriverLocal, c.Storage.Driver)
	}

	local := &c.Storage.Local
	if local.Path == "" {
		local.Path = DefaultLocalPath
	}
	local.Seed = local.SeedRaw == nil || *local.SeedRaw

	if c.Storage.Driver == DriverPostgres {
		db := &c.Database
		if err := db.validateAndNormalize(); err != nil {
			return err
		}
	}

	window, err := parseDurationAllowEmpty(c.Territory.DueSoonWindowRaw)
	if err != nil {
		return fmt.Errorf("config: territory.due_soon_window: %w", err)
	}
	if window < 0 {
		return fmt.Errorf("config: territory.due_soon_window must not be negative")
	}
	if window == 0 {
		window = 7 * 24 * time.Hour
	}
	c.Territory.DueSoonWindow = window

	return nil
}

func (l *LogConfig) validateAndNormalize() error {
	l.Level = strings.ToLower(strings.TrimSpace(l.Level))
	if l.Level == "" {
		l.Level = "info"
	}
	l.Format = strings.ToLower(strings.TrimSpace(l.Format))
	switch l.Format {
	case "":
		l.Format = "json"
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format must be json or console, got %q", l.Format)
	}
	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	d.IsolationLevel = strings.ToLower(strings.Join(strings.Fields(d.IsolationLevel), " "))
	switch d.IsolationLevel {
	case "":
		d.IsolationLevel = DefaultIsolationLevel
	case "read committed", "repeatable read", "serializable":
	default:
		return fmt.Errorf("config: database.isolation_level %q is not supported", d.IsolationLevel)
	}

	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。認証情報はエスケープされます。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}
