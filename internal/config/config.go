package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	AppEnv      string
	FrontendURL string

	MongoURI string
	DBName   string

	JWTSecret      string
	JWTExpireHours int

	GoogleClientID             string
	FirebaseServiceAccountPath string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	// Vision collaborator (classification + cleanup comparison)
	VisionBaseURL     string
	VisionAPIKey      string
	VisionTimeout     time.Duration
	VisionMaxAttempts int
	VisionBackoff     time.Duration

	ClassifyWorkers       int
	ClassifyMinConfidence float64
	// An after-photo scoring at or above Clean is a confirmed cleanup,
	// at or below Dirty a confirmed miss. Anything between goes to review.
	VerifyCleanThreshold float64
	VerifyDirtyThreshold float64

	DispatchDistanceWeight   float64
	DispatchLoadWeight       float64
	DispatchReputationWeight float64
	OfferTTL                 time.Duration
	SchedulerTick            time.Duration
	DefaultWorkerCap         int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		AppEnv:      getEnv("APP_ENV", "development"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:   getEnv("MONGO_DB", "dharani"),

		JWTSecret:      getEnv("JWT_SECRET", "secret"),
		JWTExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),

		GoogleClientID:             getEnv("GOOGLE_CLIENT_ID", ""),
		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", "firebase-service-account.json"),

		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryFolder:    getEnv("CLOUDINARY_UPLOAD_FOLDER", "dharani"),

		VisionBaseURL:     getEnv("VISION_BASE_URL", "http://localhost:9090"),
		VisionAPIKey:      getEnv("VISION_API_KEY", ""),
		VisionTimeout:     getEnvDuration("VISION_TIMEOUT", 20*time.Second),
		VisionMaxAttempts: getEnvInt("VISION_MAX_ATTEMPTS", 3),
		VisionBackoff:     getEnvDuration("VISION_BACKOFF", 2*time.Second),

		ClassifyWorkers:       getEnvInt("CLASSIFY_WORKERS", 4),
		ClassifyMinConfidence: getEnvFloat("CLASSIFY_MIN_CONFIDENCE", 0.5),
		VerifyCleanThreshold:  getEnvFloat("VERIFY_CLEAN_THRESHOLD", 0.7),
		VerifyDirtyThreshold:  getEnvFloat("VERIFY_DIRTY_THRESHOLD", 0.3),

		DispatchDistanceWeight:   getEnvFloat("DISPATCH_DISTANCE_WEIGHT", 1.0),
		DispatchLoadWeight:       getEnvFloat("DISPATCH_LOAD_WEIGHT", 2.0),
		DispatchReputationWeight: getEnvFloat("DISPATCH_REPUTATION_WEIGHT", 1.5),
		OfferTTL:                 getEnvDuration("OFFER_TTL", 15*time.Minute),
		SchedulerTick:            getEnvDuration("SCHEDULER_TICK", 30*time.Second),
		DefaultWorkerCap:         getEnvInt("DEFAULT_WORKER_CAP", 3),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
