package config

import (
	"log"
	"os"
	"strconv"
	"strings"
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

	JWTAccessSecret string

	// ✅ Redis Config
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// ✅ Razorpay Keys
	RazorpayKey    string
	RazorpaySecret string

	// ✅ Kafka Config
	KafkaBrokers          []string
	KafkaApplicationTopic string

	// ✅ FCM Config
	FCMCredentialsPath string // Path to Firebase service account JSON
	FCMProjectID       string // Firebase Project ID (optional, can be in JSON)

	// ✅ Content store (IPFS pinning service)
	IPFSAPIURL     string
	IPFSGatewayURL string
	IPFSJWT        string

	// ✅ Ledgers
	LegacyLedgerRPCURL   string // Ledger A: legacy application/provider registry
	LegacyLedgerContract string
	VendorLedgerRPCURL   string // Ledger B: vendor/transaction registry
	VendorLedgerContract string
	LedgerExplorerURL    string
	LedgerTimeout        time.Duration
	VendorReplayCheck    string // off | ledger | redis

	SnowflakeNode           int64
	CertificateValidityDays int
}

// Load reads environment variables and returns a Config object
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using environment variables")
	}

	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	snowflakeNode, _ := strconv.ParseInt(os.Getenv("SNOWFLAKE_NODE"), 10, 64)

	ledgerTimeout := 30 * time.Second
	if secs, err := strconv.Atoi(os.Getenv("LEDGER_TIMEOUT_SECONDS")); err == nil && secs > 0 {
		ledgerTimeout = time.Duration(secs) * time.Second
	}

	validityDays := 365
	if days, err := strconv.Atoi(os.Getenv("CERTIFICATE_VALIDITY_DAYS")); err == nil && days > 0 {
		validityDays = days
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return &Config{
		Port: port,

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		JWTAccessSecret: os.Getenv("JWT_ACCESS_SECRET"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		RazorpayKey:    os.Getenv("RAZORPAY_KEY_ID"),
		RazorpaySecret: os.Getenv("RAZORPAY_KEY_SECRET"),

		KafkaBrokers:          splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaApplicationTopic: os.Getenv("KAFKA_APPLICATION_TOPIC"),

		FCMCredentialsPath: os.Getenv("FCM_CREDENTIALS_PATH"),
		FCMProjectID:       os.Getenv("FCM_PROJECT_ID"),

		IPFSAPIURL:     os.Getenv("IPFS_API_URL"),
		IPFSGatewayURL: os.Getenv("IPFS_GATEWAY_URL"),
		IPFSJWT:        os.Getenv("IPFS_JWT"),

		LegacyLedgerRPCURL:   os.Getenv("LEDGER_A_RPC_URL"),
		LegacyLedgerContract: os.Getenv("LEDGER_A_CONTRACT"),
		VendorLedgerRPCURL:   os.Getenv("LEDGER_B_RPC_URL"),
		VendorLedgerContract: os.Getenv("LEDGER_B_CONTRACT"),
		LedgerExplorerURL:    os.Getenv("LEDGER_EXPLORER_URL"),
		LedgerTimeout:        ledgerTimeout,
		VendorReplayCheck:    strings.ToLower(strings.TrimSpace(os.Getenv("LEDGER_B_REPLAY_CHECK"))),

		SnowflakeNode:           snowflakeNode,
		CertificateValidityDays: validityDays,
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
