package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// fileValues holds the optional locker.yml overlay. Environment variables
// always win over file entries.
var fileValues map[string]string

func Load() (*Config, error) {
	fileValues = loadFile()

	botConfig, err := loadBotConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Camera:   loadCameraConfig(),
		Face:     loadFaceConfig(),
		Door:     loadDoorConfig(),
		Bot:      botConfig,
		Storage:  loadStorageConfig(),
		Evidence: loadEvidenceConfig(),
		Dispatch: loadDispatchConfig(),
	}, nil
}

func loadFile() map[string]string {
	path := os.Getenv("LOCKER_CONFIG")
	if path == "" {
		path = "locker.yml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil
	}

	return values
}

func lookup(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fileValues[key]
}

func lookupInt(key string, def int) int {
	if n, err := strconv.Atoi(lookup(key)); err == nil {
		return n
	}
	return def
}

func lookupFloat(key string, def float64) float64 {
	if f, err := strconv.ParseFloat(lookup(key), 64); err == nil && f > 0 {
		return f
	}
	return def
}

func lookupSeconds(key string, def time.Duration) time.Duration {
	if f, err := strconv.ParseFloat(lookup(key), 64); err == nil && f > 0 {
		return time.Duration(f * float64(time.Second))
	}
	return def
}

func loadCameraConfig() CameraConfig {
	return CameraConfig{
		ID:     lookupInt("CAMERA_ID", 0),
		Width:  lookupInt("CAMERA_WIDTH", 640),
		Height: lookupInt("CAMERA_HEIGHT", 480),
	}
}

func loadFaceConfig() FaceConfig {
	modelsPath := lookup("MODELS_PATH")
	if modelsPath == "" {
		modelsPath = "models"
	}

	databasePath := lookup("FACE_DATABASE_PATH")
	if databasePath == "" {
		databasePath = "database/face_database.json"
	}

	knownPath := lookup("KNOWN_FACES_PATH")
	if knownPath == "" {
		knownPath = "database/known_faces"
	}

	return FaceConfig{
		Threshold:      lookupFloat("FACE_THRESHOLD", 0.6),
		ModelsPath:     modelsPath,
		DatabasePath:   databasePath,
		KnownFacesPath: knownPath,
	}
}

func loadDoorConfig() DoorConfig {
	return DoorConfig{
		RelayPin:       lookupInt("RELAY_PIN", 17),
		UnlockDuration: lookupSeconds("UNLOCK_DURATION", 10*time.Second),
		Cooldown:       lookupSeconds("COOLDOWN_PERIOD", 2*time.Second),
	}
}

func loadBotConfig() (BotConfig, error) {
	provider := lookup("BOT_PROVIDER")
	if provider == "" {
		provider = "telegram"
	}

	var token string
	switch provider {
	case "telegram":
		token = lookup("TELEGRAM_TOKEN")
		if token == "" {
			return BotConfig{}, fmt.Errorf("TELEGRAM_TOKEN not set")
		}
	case "discord":
		token = lookup("DISCORD_TOKEN")
		if token == "" {
			return BotConfig{}, fmt.Errorf("DISCORD_TOKEN not set")
		}
	default:
		return BotConfig{}, fmt.Errorf("unknown BOT_PROVIDER: %s", provider)
	}

	var chatID int64
	if id, err := strconv.ParseInt(lookup("ADMIN_CHAT_ID"), 10, 64); err == nil {
		chatID = id
	}

	return BotConfig{
		Provider:    provider,
		Token:       token,
		AdminChatID: chatID,
	}, nil
}

func loadStorageConfig() StorageConfig {
	endpoint := lookup("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "minio:9000"
	}

	bucket := lookup("MINIO_BUCKET")
	if bucket == "" {
		bucket = "locker-evidence"
	}

	accessKey := lookup("MINIO_ACCESS_KEY")
	secretKey := lookup("MINIO_SECRET_KEY")

	return StorageConfig{
		Enabled:   accessKey != "" && secretKey != "",
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		UseSSL:    lookup("MINIO_USE_SSL") == "true",
		Bucket:    bucket,
	}
}

func loadEvidenceConfig() EvidenceConfig {
	path := lookup("UNKNOWN_FACES_PATH")
	if path == "" {
		path = "unknown_faces"
	}

	retention := 30 * 24 * time.Hour
	if days := lookupInt("EVIDENCE_RETENTION_DAYS", 0); days > 0 {
		retention = time.Duration(days) * 24 * time.Hour
	}

	schedule := lookup("EVIDENCE_SWEEP_SCHEDULE")
	if schedule == "" {
		schedule = "0 3 * * *"
	}

	return EvidenceConfig{
		UnknownFacesPath: path,
		Retention:        retention,
		SweepSchedule:    schedule,
	}
}

func loadDispatchConfig() DispatchConfig {
	return DispatchConfig{
		Workers:   lookupInt("DISPATCH_WORKERS", 4),
		QueueSize: lookupInt("DISPATCH_QUEUE", 16),
	}
}
