package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StoreFirestore = "firestore"
	StoreMongo     = "mongo"
	StoreMemory    = "memory"

	AuthJWT      = "jwt"
	AuthFirebase = "firebase"
)

type Config struct {
	ServerPort  string `envconfig:"SERVER_PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	StoreBackend string `envconfig:"STORE_BACKEND" default:"firestore"`

	FirebaseProject            string `envconfig:"FIREBASE_PROJECT_ID"`
	FirebaseServiceAccountJSON string `envconfig:"FIREBASE_SERVICE_ACCOUNT_JSON"`
	FirebaseServiceAccountPath string `envconfig:"FIREBASE_SERVICE_ACCOUNT_PATH"`

	MongoURI      string `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	MongoDatabase string `envconfig:"MONGODB_DATABASE" default:"grievance"`

	AuthProvider string        `envconfig:"AUTH_PROVIDER" default:"jwt"`
	JWTSecret    string        `envconfig:"JWT_SECRET" default:"change-this-secret"`
	JWTExpiry    time.Duration `envconfig:"JWT_EXPIRY" default:"168h"`

	StorageBucket string `envconfig:"STORAGE_BUCKET"`
	UploadDir     string `envconfig:"UPLOAD_DIR" default:"./uploads"`
	MaxFileSize   int64  `envconfig:"MAX_FILE_SIZE" default:"10485760"`
	MaxFiles      int    `envconfig:"MAX_FILES" default:"5"`

	RedisURL string `envconfig:"REDIS_URL"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS"`

	ComplaintIDPrefix string `envconfig:"COMPLAINT_ID_PREFIX" default:"POL"`
	SLADays           int    `envconfig:"SLA_DAYS" default:"7"`

	RateLimitPerMinute     int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"60"`
	AuthRateLimitPerMinute int `envconfig:"AUTH_RATE_LIMIT_PER_MINUTE" default:"5"`

	SeedAdminEmail    string `envconfig:"SEED_ADMIN_EMAIL"`
	SeedAdminPassword string `envconfig:"SEED_ADMIN_PASSWORD"`
	SeedAdminName     string `envconfig:"SEED_ADMIN_NAME" default:"Administrator"`
}

func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
