package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is built once at startup and handed to every client constructor.
type Config struct {
	Airtable struct {
		APIKey          string
		APIURL          string
		BaseID          string
		Table           string
		InstallersTable string
	}
	Sellsy struct {
		APIURL         string
		ConsumerToken  string
		ConsumerSecret string
		UserToken      string
		UserSecret     string
		TemplateID     string
		RetryDelay     time.Duration
	}
	GoCardless struct {
		AccessToken string
		Environment string
	}

	MandateLinkURL string
	CheckInterval  time.Duration
	HTTPTimeout    time.Duration
	LogDir         string
	RunOnce        bool
	MetricsAddr    string
}

// SetDefaults registra os valores padrão no viper.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("airtable_api_url", "https://api.airtable.com/v0")
	v.SetDefault("airtable_installers_table", "Installateurs")
	v.SetDefault("sellsy_api_url", "https://apifeed.sellsy.com/0/")
	v.SetDefault("sellsy_email_template_id", "74")
	v.SetDefault("sellsy_retry_delay", "1s")
	v.SetDefault("gocardless_environment", "live")
	v.SetDefault("check_interval", 300)
	v.SetDefault("http_timeout", "30s")
	v.SetDefault("log_dir", "logs")
	v.SetDefault("run_once", false)
}

// NewViper loads .env (if present) and reads every key from the environment.
func NewViper(envFiles ...string) *viper.Viper {
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load converte os valores do viper em Config. Values are trimmed, as .env
// files often carry stray spaces.
func Load(v *viper.Viper) (*Config, error) {
	c := &Config{}

	c.Airtable.APIKey = str(v, "airtable_api_key")
	c.Airtable.APIURL = str(v, "airtable_api_url")
	c.Airtable.BaseID = str(v, "airtable_base_id")
	c.Airtable.Table = str(v, "airtable_table_name")
	c.Airtable.InstallersTable = str(v, "airtable_installers_table")

	c.Sellsy.APIURL = str(v, "sellsy_api_url")
	c.Sellsy.ConsumerToken = str(v, "sellsy_consumer_token")
	c.Sellsy.ConsumerSecret = str(v, "sellsy_consumer_secret")
	c.Sellsy.UserToken = str(v, "sellsy_user_token")
	c.Sellsy.UserSecret = str(v, "sellsy_user_secret")
	c.Sellsy.TemplateID = str(v, "sellsy_email_template_id")

	c.GoCardless.AccessToken = str(v, "gocardless_access_token")
	c.GoCardless.Environment = strings.ToLower(str(v, "gocardless_environment"))

	c.MandateLinkURL = str(v, "mandate_link_url")
	c.LogDir = str(v, "log_dir")
	c.MetricsAddr = str(v, "metrics_addr")
	c.RunOnce = v.GetBool("run_once") || strings.EqualFold(str(v, "github_actions"), "true")

	var err error
	if c.Sellsy.RetryDelay, err = duration(v, "sellsy_retry_delay"); err != nil {
		return nil, err
	}
	if c.HTTPTimeout, err = duration(v, "http_timeout"); err != nil {
		return nil, err
	}
	if c.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("http_timeout must be positive")
	}

	seconds := v.GetInt("check_interval")
	if seconds <= 0 {
		return nil, fmt.Errorf("check_interval must be a positive number of seconds, got %q", v.GetString("check_interval"))
	}
	c.CheckInterval = time.Duration(seconds) * time.Second

	return c, nil
}

// Validate lists the missing settings. Missing settings are reported, not
// fatal: the loop still runs and whatever is configured keeps working.
func (c *Config) Validate() []string {
	var warnings []string

	if c.Airtable.APIKey == "" || c.Airtable.BaseID == "" || c.Airtable.Table == "" {
		warnings = append(warnings, "configuração Airtable incompleta (AIRTABLE_API_KEY, AIRTABLE_BASE_ID, AIRTABLE_TABLE_NAME)")
	}
	if c.Sellsy.ConsumerToken == "" || c.Sellsy.ConsumerSecret == "" || c.Sellsy.UserToken == "" || c.Sellsy.UserSecret == "" {
		warnings = append(warnings, "configuração Sellsy incompleta (SELLSY_CONSUMER_TOKEN, SELLSY_CONSUMER_SECRET, SELLSY_USER_TOKEN, SELLSY_USER_SECRET)")
	}
	if c.GoCardless.AccessToken == "" {
		warnings = append(warnings, "configuração GoCardless incompleta (GOCARDLESS_ACCESS_TOKEN)")
	}
	if c.GoCardless.Environment != "live" && c.GoCardless.Environment != "sandbox" {
		warnings = append(warnings, fmt.Sprintf("GOCARDLESS_ENVIRONMENT desconhecido %q, usando live", c.GoCardless.Environment))
	}
	if c.MandateLinkURL == "" {
		warnings = append(warnings, "MANDATE_LINK_URL vazio, o email será enviado sem link de mandato")
	}
	return warnings
}

// Presence reports which secrets are set, never their values.
func (c *Config) Presence() map[string]bool {
	return map[string]bool{
		"AIRTABLE_API_KEY":        c.Airtable.APIKey != "",
		"SELLSY_CONSUMER_TOKEN":   c.Sellsy.ConsumerToken != "",
		"SELLSY_USER_TOKEN":       c.Sellsy.UserToken != "",
		"GOCARDLESS_ACCESS_TOKEN": c.GoCardless.AccessToken != "",
	}
}

func str(v *viper.Viper, key string) string {
	return strings.TrimSpace(v.GetString(key))
}

// duration aceita "1s", "500ms" ou um número inteiro de segundos.
func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := str(v, key)
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	return 0, fmt.Errorf("invalid duration for %s: %q", key, raw)
}
