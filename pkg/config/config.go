package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config agrupa la configuración del BFF de envíos (Viper: env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	JWT       JWTConfig
	Upstream  UpstreamConfig
	Store     StoreConfig
	DB        DBConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Catalog   CatalogConfig
	Documents DocumentsConfig
}

// AppConfig configuración general.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// HTTPConfig servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
	// BodyLimit tamaño máximo de la petición en bytes (cargas multipart incluidas).
	BodyLimit int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// JWTConfig validación de los tokens del dashboard.
type JWTConfig struct {
	Secret string
	Issuer string
}

// UpstreamConfig servicio REST de envíos.
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Almacenes de borradores soportados.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// StoreConfig dónde viven los borradores entre peticiones.
type StoreConfig struct {
	Driver string
	TTL    time.Duration
}

// DBConfig PostgreSQL. Si DatabaseURL no está vacío se usa tal cual.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int32
}

// ConnectionString devuelve DATABASE_URL si está definido, si no el DSN construido.
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN connection string con la contraseña escapada.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

// RedisConfig Addr acepta host:puerto o una URL redis://.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// KafkaConfig sin brokers los eventos solo se registran en el log.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Enabled indica si hay brokers configurados.
func (c KafkaConfig) Enabled() bool { return len(c.Brokers) > 0 }

// CatalogConfig precios por defecto de los servicios y costo provisional del alta.
type CatalogConfig struct {
	LiftGatePrice           string
	AppointmentPrice        string
	PalletJackPrice         string
	PlaceholderShippingCost decimal.Decimal
}

// DocumentsConfig límites de PDFs por envío.
type DocumentsConfig struct {
	MaxCount int
	MaxBytes int64
}

// Load lee la configuración. Las variables de entorno tienen prioridad sobre .env / config.env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	placeholder, err := decimal.NewFromString(getString(v, "SHIPPING_COST_PLACEHOLDER", "0"))
	if err != nil {
		return nil, fmt.Errorf("config: SHIPPING_COST_PLACEHOLDER inválido: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "logistica-api"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Host:      getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:      getInt(v, "HTTP_PORT", 8080),
			BodyLimit: getInt(v, "HTTP_BODY_LIMIT_BYTES", 30<<20),
		},
		JWT: JWTConfig{
			Secret: getString(v, "JWT_SECRET", ""),
			Issuer: getString(v, "JWT_ISSUER", "logistica-dashboard"),
		},
		Upstream: UpstreamConfig{
			BaseURL: getString(v, "UPSTREAM_BASE_URL", "http://localhost:3000/api"),
			Timeout: time.Duration(getInt(v, "UPSTREAM_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getString(v, "DRAFT_STORE", StoreMemory)),
			TTL:    time.Duration(getInt(v, "DRAFT_TTL_MINUTES", 720)) * time.Minute,
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "logistica"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    int32(getInt(v, "DB_MAX_CONNS", 10)),
		},
		Redis: RedisConfig{
			Addr:      getString(v, "REDIS_ADDR", "localhost:6379"),
			Password:  getString(v, "REDIS_PASSWORD", ""),
			DB:        getInt(v, "REDIS_DB", 0),
			KeyPrefix: getString(v, "REDIS_KEY_PREFIX", "logistica:drafts"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getString(v, "KAFKA_BROKER", "")),
			Topic:   getString(v, "KAFKA_TOPIC", "shipments.events"),
		},
		Catalog: CatalogConfig{
			LiftGatePrice:           getString(v, "SERVICE_PRICE_LIFT_GATE", "0"),
			AppointmentPrice:        getString(v, "SERVICE_PRICE_APPOINTMENT", "0"),
			PalletJackPrice:         getString(v, "SERVICE_PRICE_PALLET_JACK", "0"),
			PlaceholderShippingCost: placeholder,
		},
		Documents: DocumentsConfig{
			MaxCount: getInt(v, "DOCUMENTS_MAX_COUNT", 5),
			MaxBytes: int64(getInt(v, "DOCUMENTS_MAX_BYTES", 5<<20)),
		},
	}

	switch cfg.Store.Driver {
	case StoreMemory, StorePostgres, StoreRedis:
	default:
		return nil, fmt.Errorf("config: DRAFT_STORE desconocido %q", cfg.Store.Driver)
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if !v.IsSet(key) {
		return def
	}
	switch v.Get(key).(type) {
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return def
		}
		return n
	default:
		return v.GetInt(key)
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
