package shared

import (
	"errors"
	"fmt"
	"net"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string `koanf:"app_env"`
	LogLevel    string `koanf:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogDir      string `koanf:"log_dir"`
	HTTPAddr    string `koanf:"http_addr"`
	MetricsAddr string `koanf:"metrics_addr"`
	CORSOrigins string `koanf:"cors_origins"` // comma separated
	RateLimit   int    `koanf:"rate_limit_per_min" validate:"min=0"`

	DBHost     string `koanf:"db_host" validate:"required"`
	DBPort     int    `koanf:"db_port" validate:"required,min=1,max=65535"`
	DBName     string `koanf:"db_name" validate:"required"`
	DBUser     string `koanf:"db_user" validate:"required"`
	DBPassword string `koanf:"db_password"`
	MySQLDSN   string `koanf:"mysql_dsn"` // overrides the DB_* fields when set

	RedisAddr string        `koanf:"redis_addr"`
	RedisPass string        `koanf:"redis_password"`
	RedisDB   int           `koanf:"redis_db"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`

	PlacesBaseURL string `koanf:"places_base_url" validate:"required,url"`
	PlacesAPIKey  string `koanf:"google_places_api_key" validate:"required"`
	PlacesRPS     int    `koanf:"places_rps"`

	ClipBaseURL string `koanf:"clip_base_url" validate:"required,url"`
	ClipAPIKey  string `koanf:"clip_api_key"`

	HotelsCSV  string `koanf:"hotels_csv" validate:"required"`
	ChainsCSV  string `koanf:"chains_csv" validate:"required"`
	ImagesCSV  string `koanf:"images_csv" validate:"required"`
	TagsCSV    string `koanf:"tags_csv"`
	ImageRoot  string `koanf:"image_root" validate:"required"`
	MaxPhotos  int    `koanf:"max_photos" validate:"min=1,max=999"`
	PhotoWidth int    `koanf:"photo_max_width" validate:"min=1"`
	SampleSize int    `koanf:"sample_size" validate:"min=1"`
	SampleSeed int64  `koanf:"sample_seed"`

	S3Region     string        `koanf:"aws_region" validate:"required"`
	S3Bucket     string        `koanf:"aws_s3_bucket" validate:"required"`
	S3AccessKey  string        `koanf:"aws_access_key_id"`
	S3SecretKey  string        `koanf:"aws_secret_access_key"`
	S3PresignTTL time.Duration `koanf:"s3_presign_ttl"`

	AvailabilityStart string `koanf:"availability_start" validate:"required,datetime=2006-01-02"`
	AvailabilityEnd   string `koanf:"availability_end" validate:"required,datetime=2006-01-02"`
	Currency          string `koanf:"currency" validate:"required,len=3"`
}

func defaults() Config {
	return Config{
		AppEnv:            "prod",
		LogLevel:          "info",
		LogDir:            "logs",
		HTTPAddr:          ":8080",
		CORSOrigins:       "*",
		RateLimit:         300,
		DBHost:            "localhost",
		DBPort:            3306,
		DBName:            "hotels",
		DBUser:            "root",
		RedisDB:           0,
		CacheTTL:          15 * time.Minute,
		PlacesBaseURL:     "https://maps.googleapis.com/maps/api/place",
		PlacesRPS:         5,
		ClipBaseURL:       "http://localhost:8000",
		HotelsCSV:         "./dataset/hotel_info.csv",
		ChainsCSV:         "./dataset/chain_info.csv",
		ImagesCSV:         "images_output.csv",
		TagsCSV:           "image_tags.csv",
		ImageRoot:         "images",
		MaxPhotos:         20,
		PhotoWidth:        1280,
		SampleSize:        200,
		SampleSeed:        42,
		S3Region:          "eu-central-1",
		S3PresignTTL:      time.Hour,
		AvailabilityStart: "2025-04-01",
		AvailabilityEnd:   "2025-04-30",
		Currency:          "EUR",
	}
}

// ConfigPathEnv points at an optional YAML file layered under the environment.
const ConfigPathEnv = "CONFIG_PATH"

// Load layers defaults, an optional YAML file and the environment (highest
// priority). A .env file in the working directory is read first if present.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg(".env present but unreadable")
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}
	if p := configFile(); p != "" {
		if err := k.Load(file.Provider(p), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", p, err)
		}
	}
	// DB_HOST -> db_host; the legacy CSV_PATH name feeds the tags input.
	if err := k.Load(env.Provider("", ".", func(s string) string {
		if s == "CSV_PATH" {
			return "tags_csv"
		}
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	var c Config
	if err := k.UnmarshalWithConf("", &c, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				secondsToDuration,
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.TextUnmarshallerHookFunc()),
			Result:           &c,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.PlacesAPIKey == "" {
		log.Warn().Msg("GOOGLE_PLACES_API_KEY is empty")
	}
	return c, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// secondsToDuration reads a bare integer such as CACHE_TTL=900 as seconds.
// Values with a unit ("15m") fall through to the duration parser.
func secondsToDuration(from, to reflect.Type, data any) (any, error) {
	if to != durationType || from == durationType {
		return data, nil
	}
	v := reflect.ValueOf(data)
	switch from.Kind() {
	case reflect.String:
		if n, err := strconv.ParseInt(strings.TrimSpace(v.String()), 10, 64); err == nil {
			return time.Duration(n) * time.Second, nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return time.Duration(v.Int()) * time.Second, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return time.Duration(v.Uint()) * time.Second, nil
	}
	return data, nil
}

func configFile() string {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		return p
	}
	for _, p := range []string{"config.yaml", "config.yml"} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var stageFields = map[string][]string{
	"schema":       {"DBHost", "DBPort", "DBName", "DBUser"},
	"extract":      {"HotelsCSV", "ChainsCSV", "SampleSize"},
	"acquire":      {"PlacesBaseURL", "PlacesAPIKey", "HotelsCSV", "ImageRoot", "ImagesCSV", "MaxPhotos", "PhotoWidth"},
	"audit":        {"ImageRoot"},
	"tag":          {"ClipBaseURL"},
	"load":         {"DBHost", "DBPort", "DBName", "DBUser"},
	"availability": {"DBHost", "DBPort", "DBName", "DBUser", "AvailabilityStart", "AvailabilityEnd", "Currency"},
	"s3-sync":      {"S3Region", "S3Bucket", "ImageRoot"},
	"api":          {"DBHost", "DBPort", "DBName", "DBUser", "LogLevel", "RateLimit"},
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// RequireFor checks only the settings the named stage depends on.
func (c Config) RequireFor(stage string) error {
	fields, ok := stageFields[stage]
	if !ok {
		return fmt.Errorf("unknown stage %q", stage)
	}
	if c.MySQLDSN != "" {
		fields = withoutDB(fields)
	}
	if len(fields) == 0 {
		return nil
	}
	if err := validate.StructPartial(c, fields...); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("config for %s: %s", stage, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config for %s: %w", stage, err)
	}
	return nil
}

func withoutDB(fields []string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if !strings.HasPrefix(f, "DB") {
			out = append(out, f)
		}
	}
	return out
}

// DSN returns the MySQL DSN, built from the DB_* settings unless MYSQL_DSN is set.
func (c Config) DSN() string {
	if c.MySQLDSN != "" {
		return c.MySQLDSN
	}
	mc := mysql.NewConfig()
	mc.User = c.DBUser
	mc.Passwd = c.DBPassword
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort))
	mc.DBName = c.DBName
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4,utf8"}
	return mc.FormatDSN()
}
