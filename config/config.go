package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTAccessSecret   string
	JWTAccessTTLHours int

	// ✅ Redis Config
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// ✅ Kafka Config
	KafkaBrokers      string
	KafkaBookingTopic string

	// ✅ Razorpay Keys
	RazorpayKey    string
	RazorpaySecret string

	// ✅ Activity status sweep
	SweepInterval time.Duration
}

// Load reads environment variables and returns a Config object
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using environment variables")
	}

	accessTTL, _ := strconv.Atoi(os.Getenv("JWT_ACCESS_TTL_HOURS"))
	if accessTTL == 0 {
		accessTTL = 24
	}
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	sweepMinutes, _ := strconv.Atoi(os.Getenv("SWEEP_INTERVAL_MINUTES"))
	if sweepMinutes <= 0 {
		sweepMinutes = 5
	}

	sslMode := os.Getenv("DB_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	bookingTopic := os.Getenv("KAFKA_BOOKING_TOPIC")
	if bookingTopic == "" {
		bookingTopic = "booking-events"
	}

	return &Config{
		Port: os.Getenv("PORT"),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  sslMode,

		JWTAccessSecret:   os.Getenv("JWT_ACCESS_SECRET"),
		JWTAccessTTLHours: accessTTL,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		KafkaBrokers:      os.Getenv("KAFKA_BROKERS"),
		KafkaBookingTopic: bookingTopic,

		RazorpayKey:    os.Getenv("RAZORPAY_KEY_ID"),
		RazorpaySecret: os.Getenv("RAZORPAY_KEY_SECRET"),

		SweepInterval: time.Duration(sweepMinutes) * time.Minute,
	}
}
