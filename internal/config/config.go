package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App          App          `mapstructure:",squash"`
	Server       Server       `mapstructure:",squash"`
	Database     Database     `mapstructure:",squash"`
	GoogleAds    GoogleAds    `mapstructure:",squash"`
	Auth         Auth         `mapstructure:",squash"`
	Cors         Cors         `mapstructure:",squash"`
	Tracing      Tracing      `mapstructure:",squash"`
	SnapshotSync SnapshotSync `mapstructure:",squash"`
}

type App struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	Env       string `mapstructure:"app_env"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

// GoogleAds reúne as credenciais e parâmetros de acesso à API do Google Ads
type GoogleAds struct {
	DeveloperToken        string        `mapstructure:"google_ads_developer_token"`
	ClientID              string        `mapstructure:"google_ads_client_id"`
	ClientSecret          string        `mapstructure:"google_ads_client_secret"`
	RefreshToken          string        `mapstructure:"google_ads_refresh_token"`
	LoginCustomerID       string        `mapstructure:"google_ads_login_customer_id"`
	CustomerIDs           []string      `mapstructure:"google_ads_customer_ids"`
	APIURL                string        `mapstructure:"google_ads_api_url"`
	APIVersion            string        `mapstructure:"google_ads_api_version"`
	TokenURL              string        `mapstructure:"google_ads_token_url"`
	HTTPTimeout           time.Duration `mapstructure:"google_ads_http_timeout"`
	MaxConcurrentRequests int           `mapstructure:"google_ads_max_concurrent_requests"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

type Cors struct {
	AllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

type Tracing struct {
	Enabled     bool   `mapstructure:"tracing_enabled"`
	Endpoint    string `mapstructure:"tracing_endpoint"`
	ServiceName string `mapstructure:"tracing_service_name"`
}

type SnapshotSync struct {
	CronSchedule      string `mapstructure:"snapshot_sync_cron"`
	LookbackDays      int    `mapstructure:"snapshot_sync_lookback_days"`
	MaxConcurrentJobs int    `mapstructure:"snapshot_sync_max_concurrent_jobs"`
	Enabled           bool   `mapstructure:"snapshot_sync_enabled"`
}

// ConfigurationError indica credenciais obrigatórias ausentes no ambiente
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf(
		"missing required environment variables: %s. Please check your .env file",
		strings.Join(e.Missing, ", "),
	)
}

// Validate verifica se todas as credenciais obrigatórias do Google Ads estão presentes
func (g GoogleAds) Validate() error {
	missing := make([]string, 0, 4)

	if g.DeveloperToken == "" {
		missing = append(missing, "GOOGLE_ADS_DEVELOPER_TOKEN")
	}
	if g.ClientID == "" {
		missing = append(missing, "GOOGLE_ADS_CLIENT_ID")
	}
	if g.ClientSecret == "" {
		missing = append(missing, "GOOGLE_ADS_CLIENT_SECRET")
	}
	if g.RefreshToken == "" {
		missing = append(missing, "GOOGLE_ADS_REFRESH_TOKEN")
	}

	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}

	return nil
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("HOST", "localhost")
	v.SetDefault("PORT", 8000)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("APP_ENV", "development")

	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_URL", "localhost:5432/ads_metrics?sslmode=disable")
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "root")

	// Credenciais obrigatórias não têm valor padrão, mas precisam ser conhecidas pelo Viper
	v.SetDefault("GOOGLE_ADS_DEVELOPER_TOKEN", "")
	v.SetDefault("GOOGLE_ADS_CLIENT_ID", "")
	v.SetDefault("GOOGLE_ADS_CLIENT_SECRET", "")
	v.SetDefault("GOOGLE_ADS_REFRESH_TOKEN", "")
	v.SetDefault("GOOGLE_ADS_LOGIN_CUSTOMER_ID", "")
	v.SetDefault("GOOGLE_ADS_CUSTOMER_IDS", "")

	v.SetDefault("GOOGLE_ADS_API_URL", "https://googleads.googleapis.com")
	v.SetDefault("GOOGLE_ADS_API_VERSION", "v17")
	v.SetDefault("GOOGLE_ADS_TOKEN_URL", "https://oauth2.googleapis.com/token")
	v.SetDefault("GOOGLE_ADS_HTTP_TIMEOUT", "30s")
	v.SetDefault("GOOGLE_ADS_MAX_CONCURRENT_REQUESTS", 10)

	v.SetDefault("AUTH_SECRET", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_ENDPOINT", "http://localhost:14268/api/traces")
	v.SetDefault("TRACING_SERVICE_NAME", "ads-metrics-api")

	v.SetDefault("SNAPSHOT_SYNC_CRON", "0 3 * * *")      // Todos os dias às 3h da manhã
	v.SetDefault("SNAPSHOT_SYNC_LOOKBACK_DAYS", 1)       // Apenas o dia anterior
	v.SetDefault("SNAPSHOT_SYNC_MAX_CONCURRENT_JOBS", 3) // 3 contas em paralelo
	v.SetDefault("SNAPSHOT_SYNC_ENABLED", false)         // Desabilitado por padrão
}

func NewConfig() (*Config, error) {
	loadEnvFile() // ONLY LOCAL

	v := viper.New()
	SetDefaults(v)

	v.SetConfigType("env")
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		logrus.Debug("Usando apenas variáveis de ambiente (viper não conseguiu ler .env): ", err)
	}

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	config := &Config{}

	err := v.Unmarshal(config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	if err := config.GoogleAds.Validate(); err != nil {
		return nil, err
	}

	config.GoogleAds.CustomerIDs = compact(config.GoogleAds.CustomerIDs)
	config.Cors.AllowedOrigins = compact(config.Cors.AllowedOrigins)
	config.GoogleAds.APIURL = strings.TrimRight(config.GoogleAds.APIURL, "/")

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// compact remove espaços e itens vazios de listas separadas por vírgula
func compact(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(cwd, ".env.local"),
		filepath.Join(filepath.Dir(cwd), ".env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("Arquivo .env carregado de:", location)
			return
		}
	}

	logrus.Debug("Nenhum arquivo .env encontrado, usando apenas variáveis de ambiente")
}
