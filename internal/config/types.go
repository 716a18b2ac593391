package config

import "time"

type Config struct {
	Camera   CameraConfig
	Face     FaceConfig
	Door     DoorConfig
	Bot      BotConfig
	Storage  StorageConfig
	Evidence EvidenceConfig
	Dispatch DispatchConfig
}

type CameraConfig struct {
	ID     int
	Width  int
	Height int
}

type FaceConfig struct {
	Threshold      float64
	ModelsPath     string
	DatabasePath   string
	KnownFacesPath string
}

type DoorConfig struct {
	RelayPin       int
	UnlockDuration time.Duration
	Cooldown       time.Duration
}

type BotConfig struct {
	Provider    string
	Token       string
	AdminChatID int64
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type EvidenceConfig struct {
	UnknownFacesPath string
	Retention        time.Duration
	SweepSchedule    string
}

type DispatchConfig struct {
	Workers   int
	QueueSize int
}
