package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode      Mode
	HTTPAddr  string
	PublicURL string

	DBDriver string
	DBDSN    string

	BlobBasePath string
	SeedTypes    bool

	AuthHMACSecret  string
	TeacherUser     string
	TeacherPassHash string // bcrypt

	CORSOrigins []string

	// LLM gateway. Client credentials win over the static key when
	// GeneratorTokenURL is set.
	GeneratorURL          string
	GeneratorAPIKey       string
	GeneratorTokenURL     string
	GeneratorClientID     string
	GeneratorClientSecret string
	GeneratorTimeout      time.Duration
	GenerateMaxCount      int

	GradingMaxEdit int
	ImageMaxDim    int
	PlayTTL        time.Duration
}

// LoadDotEnv loads .env files into the process environment. Variables that
// are already set win. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
		log.Printf("config: loaded %s", f)
	}
	return nil
}

func FromEnv() Config {
	mode := Mode(envOr("MODE", string(ModeOffline)))
	pub := strings.TrimSuffix(envOr("PUBLIC_URL", "http://localhost:8080"), "/")
	defOrigins := "http://localhost:3000,http://localhost:4200"
	if mode == ModeOnline {
		defOrigins = pub
	}
	return Config{
		Mode:      mode,
		HTTPAddr:  envOr("HTTP_ADDR", ":8080"),
		PublicURL: pub,

		DBDriver:     envOr("DB_DRIVER", "sqlite"),
		DBDSN:        envOr("DB_DSN", ""),
		BlobBasePath: envOr("BLOB_BASE_PATH", "./data"),
		SeedTypes:    envBool("SEED_GAME_TYPES", true),

		AuthHMACSecret:  envOr("AUTH_HMAC_SECRET", "dev-secret-change-me"),
		TeacherUser:     envOr("TEACHER_USER", "teacher"),
		TeacherPassHash: envOr("TEACHER_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),
		CORSOrigins:     csvOr("CORS_ORIGINS", defOrigins),

		GeneratorURL:          os.Getenv("GENERATOR_URL"),
		GeneratorAPIKey:       os.Getenv("GENERATOR_API_KEY"),
		GeneratorTokenURL:     os.Getenv("GENERATOR_TOKEN_URL"),
		GeneratorClientID:     os.Getenv("GENERATOR_CLIENT_ID"),
		GeneratorClientSecret: os.Getenv("GENERATOR_CLIENT_SECRET"),
		GeneratorTimeout:      time.Duration(envInt("GENERATOR_TIMEOUT_SEC", 60)) * time.Second,
		GenerateMaxCount:      envInt("GENERATE_MAX_COUNT", 20),

		GradingMaxEdit: envInt("GRADING_MAX_EDIT", 0),
		ImageMaxDim:    envInt("IMAGE_MAX_DIM", 2048),
		PlayTTL:        time.Duration(envInt("PLAY_TTL_MIN", 60)) * time.Minute,
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k)))
	if err != nil || v < 0 {
		return def
	}
	return v
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
