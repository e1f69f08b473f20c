package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	// EnvPrefix scopes every environment override, e.g. DEALERDIR_HTTP_PORT.
	EnvPrefix = "DEALERDIR_"
	// FileEnv names the optional YAML file loaded before the environment.
	FileEnv = "DEALERDIR_CONFIG"
)

type Config struct {
	Env string `json:"env" yaml:"env" validate:"oneof=development production test"`
	Log struct {
		Level string `json:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	} `json:"log" yaml:"log"`

	HTTP   HTTPConfig   `json:"http" yaml:"http"`
	DB     DBConfig     `json:"db" yaml:"db"`
	CORS   CORSConfig   `json:"cors" yaml:"cors"`
	Redis  RedisConfig  `json:"redis" yaml:"redis"`
	Import ImportConfig `json:"import" yaml:"import"`
	Sheets SheetsConfig `json:"sheets" yaml:"sheets"`
	Minio  MinioConfig  `json:"minio" yaml:"minio"`
}

type HTTPConfig struct {
	Port            int           `json:"port" yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `json:"readTimeout" yaml:"readTimeout" validate:"min=0"`
	WriteTimeout    time.Duration `json:"writeTimeout" yaml:"writeTimeout" validate:"min=0"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout" yaml:"shutdownTimeout" validate:"min=0"`
	// MaxUploadBytes caps the CSV accepted by POST /api/import.
	MaxUploadBytes int64 `json:"maxUploadBytes" yaml:"maxUploadBytes" validate:"min=1"`
}

type DBConfig struct {
	Host     string `json:"host" yaml:"host" validate:"required"`
	Port     int    `json:"port" yaml:"port" validate:"min=1,max=65535"`
	User     string `json:"user" yaml:"user" validate:"required"`
	Password string `json:"password" yaml:"password"`
	Name     string `json:"name" yaml:"name" validate:"required"`
	SSLMode  string `json:"sslMode" yaml:"sslMode" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	MaxConns int32  `json:"maxConns" yaml:"maxConns" validate:"min=1"`
}

// DSN renders the connection string handed to pgxpool.ParseConfig
func (c DBConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

type CORSConfig struct {
	AllowedOrigins []string `json:"allowedOrigins" yaml:"allowedOrigins" validate:"dive,origin"`
}

type RedisConfig struct {
	// Addr empty keeps the import lock in process.
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db" validate:"min=0"`
}

type ImportConfig struct {
	// Interval zero disables the scheduled import.
	Interval   time.Duration `json:"interval" yaml:"interval" validate:"min=0"`
	OnStart    bool          `json:"onStart" yaml:"onStart"`
	HeaderRows int           `json:"headerRows" yaml:"headerRows" validate:"min=0"`
	LockTTL    time.Duration `json:"lockTtl" yaml:"lockTtl" validate:"min=0"`
	// RequestsPerMinute throttles POST /api/import per client IP.
	RequestsPerMinute float64 `json:"requestsPerMinute" yaml:"requestsPerMinute" validate:"min=0"`
	Burst             int     `json:"burst" yaml:"burst" validate:"min=1"`
}

type SheetsConfig struct {
	SpreadsheetID   string `json:"spreadsheetId" yaml:"spreadsheetId"`
	Range           string `json:"range" yaml:"range" validate:"required_with=SpreadsheetID"`
	CredentialsFile string `json:"credentialsFile" yaml:"credentialsFile" validate:"required_with=SpreadsheetID"`
}

func (c SheetsConfig) Enabled() bool { return c.SpreadsheetID != "" }

type MinioConfig struct {
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	AccessKey string `json:"accessKey" yaml:"accessKey" validate:"required_with=Endpoint"`
	SecretKey string `json:"secretKey" yaml:"secretKey" validate:"required_with=Endpoint"`
	UseSSL    bool   `json:"useSsl" yaml:"useSsl"`
	Bucket    string `json:"bucket" yaml:"bucket" validate:"required_with=Endpoint"`
	// Object is the CSV export used as the default import source when no
	// sheet is configured.
	Object string `json:"object" yaml:"object"`
	// ArchiveUploads copies every uploaded CSV into Bucket.
	ArchiveUploads bool `json:"archiveUploads" yaml:"archiveUploads"`
}

func (c MinioConfig) Enabled() bool { return c.Endpoint != "" }

// Default returns the configuration used for every key that neither the
// file nor the environment sets.
func Default() *Config {
	cfg := &Config{Env: "development"}
	cfg.Log.Level = "info"
	cfg.HTTP = HTTPConfig{
		Port:            8080,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MaxUploadBytes:  10 << 20,
	}
	cfg.DB = DBConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Name:     "dealers",
		SSLMode:  "disable",
		MaxConns: 10,
	}
	cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	cfg.Import = ImportConfig{
		HeaderRows:        1,
		LockTTL:           10 * time.Minute,
		RequestsPerMinute: 6,
		Burst:             2,
	}
	cfg.Sheets.Range = "Sheet1!A:M"
	return cfg
}

// Load merges Default, the optional YAML file at path and DEALERDIR_*
// environment variables, in that order, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
	}

	known, err := keyTree(cfg, k.Raw())
	if err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			// DEALERDIR_CORS_ALLOWED_ORIGINS -> cors.allowedOrigins
			key = strings.TrimPrefix(key, EnvPrefix)
			if key == "CONFIG" {
				return "", nil
			}
			return canonicalizeEnvKey(key, known), value
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables")
	}

	// Slices are decoded element-wise into the existing value, so a configured
	// origin list must replace the default rather than overlay it.
	if k.Exists("cors.allowedOrigins") {
		cfg.CORS.AllowedOrigins = nil
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			TagName:          "json",
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				trimSliceHook,
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv loads the file named by DEALERDIR_CONFIG, if any, plus the environment
func LoadFromEnv() (*Config, error) {
	return Load(os.Getenv(FileEnv))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("origin", func(fl validator.FieldLevel) bool {
		return validOrigin(fl.Field().String())
	})
	return v
}

// Validate checks ranges and that every CORS origin is "*" or scheme://host[:port]
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return errors.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return errors.Wrap(err, "validate configuration")
	}
	return nil
}

func validOrigin(origin string) bool {
	if origin == "*" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != "" && (u.Path == "" || u.Path == "/") && u.RawQuery == "" && u.Fragment == "" && u.User == nil
}

var trimSliceHook mapstructure.DecodeHookFuncType = func(_, _ reflect.Type, data any) (any, error) {
	items, ok := data.([]string)
	if !ok {
		return data, nil
	}
	trimmed := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			trimmed = append(trimmed, item)
		}
	}
	return trimmed, nil
}

// keyTree returns the nested key map of the defaults merged with whatever the
// file provided, used to give env keys their camelCase spelling.
func keyTree(cfg *Config, fromFile map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "encode default config")
	}
	tree := map[string]any{}
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, errors.Wrap(err, "decode default config")
	}
	mergeKeys(tree, fromFile)
	return tree, nil
}

func mergeKeys(dst, src map[string]any) {
	for key, value := range src {
		child, ok := value.(map[string]any)
		if !ok {
			if _, exists := dst[key]; !exists {
				dst[key] = value
			}
			continue
		}
		existing, _ := dst[key].(map[string]any)
		if existing == nil {
			existing = map[string]any{}
			dst[key] = existing
		}
		mergeKeys(existing, child)
	}
}

// canonicalizeEnvKey maps HTTP_READ_TIMEOUT or HTTP_READTIMEOUT onto
// http.readTimeout by greedily joining underscore segments until they match a
// known key. Unknown segments are lower-cased and kept as is.
func canonicalizeEnvKey(rawKey string, known map[string]any) string {
	segments := make([]string, 0)
	for _, s := range strings.Split(strings.ToLower(rawKey), "_") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	canonical := make([]string, 0, len(segments))
	current := known
	for i := 0; i < len(segments); {
		matched, next, width := longestMatch(current, segments[i:])
		if width == 0 {
			canonical = append(canonical, segments[i])
			current = nil
			i++
			continue
		}
		canonical = append(canonical, matched)
		current = next
		i += width
	}
	return strings.Join(canonical, ".")
}

func longestMatch(current map[string]any, segments []string) (string, map[string]any, int) {
	if len(current) == 0 {
		return "", nil, 0
	}
	for width := len(segments); width > 0; width-- {
		needle := normalizeToken(strings.Join(segments[:width], ""))
		for key, value := range current {
			if normalizeToken(key) != needle {
				continue
			}
			child, _ := value.(map[string]any)
			return key, child, width
		}
	}
	return "", nil, 0
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}
	return normalized.String()
}
