package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type SFTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	RemoteDir string
}

type Config struct {
	DSN              string
	LogsDirectory    string
	ArchiveDirectory string

	// Schedule is the cron expression for the in-process scheduler.
	// Default fires at 16:01 UK time, one minute after the cut-off.
	Schedule string

	CutoffHour   int
	CutoffMinute int
	ReadyStatus  string

	AccountRef  string
	Courier     string
	ServiceCode string

	RetentionDays int

	SFTP *SFTPConfig

	KafkaBrokers []string
	KafkaTopic   string
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cutoffHour, cutoffMinute := parseCutoff(getEnv("EXPORT_CUTOFF_TIME", "16:00"))

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	return &Config{
		DSN:              os.Getenv("DATABASE_DSN"),
		LogsDirectory:    getEnv("LOGS_DIRECTORY", "logs"),
		ArchiveDirectory: getEnv("ARCHIVE_DIRECTORY", "archives"),
		Schedule:         getEnv("EXPORT_SCHEDULE", "1 16 * * *"),
		CutoffHour:       cutoffHour,
		CutoffMinute:     cutoffMinute,
		ReadyStatus:      getEnv("EXPORT_READY_STATUS", "processing"),
		AccountRef:       getEnv("EXPORT_ACCOUNT_REF", "KING01"),
		Courier:          getEnv("EXPORT_COURIER", "DPD"),
		ServiceCode:      getEnv("EXPORT_SERVICE_CODE", "1^12"),
		RetentionDays:    getEnvInt("ARCHIVE_RETENTION_DAYS", 30),
		SFTP: &SFTPConfig{
			Host:      os.Getenv("SFTP_HOST"),
			Port:      getEnvInt("SFTP_PORT", 22),
			Username:  os.Getenv("SFTP_USERNAME"),
			Password:  os.Getenv("SFTP_PASSWORD"),
			RemoteDir: getEnv("SFTP_REMOTE_DIR", "/"),
		},
		KafkaBrokers: brokers,
		KafkaTopic:   getEnv("KAFKA_TOPIC", "export-events"),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s, using default %d", key, defaultVal)
		return defaultVal
	}
	return parsed
}

// parseCutoff reads an "HH:MM" cut-off time. Malformed values fall
// back to 16:00 rather than silently shifting the despatch window.
func parseCutoff(value string) (hour, minute int) {
	parts := strings.SplitN(value, ":", 2)
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		log.Printf("Invalid cutoff time %q, using 16:00", value)
		return 16, 0
	}
	if len(parts) == 2 {
		minute, err = strconv.Atoi(parts[1])
		if err != nil || minute < 0 || minute > 59 {
			log.Printf("Invalid cutoff time %q, using %02d:00", value, hour)
			return hour, 0
		}
	}
	return hour, minute
}
