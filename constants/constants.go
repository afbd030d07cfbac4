package constants

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func getEnv(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func GetRelayPort() int {
	return getEnvInt("RELAY_PORT", DefaultRelayPort)
}

func GetBackendHost() string {
	return getEnv("BACKEND_HOST", "localhost")
}

// GetBackendPort is only the starting point, the backend may announce a
// different one through POST /python_port.
func GetBackendPort() int {
	return getEnvInt("BACKEND_PORT", DefaultBackendPort)
}

func GetRecordingPath() string {
	return getEnv("RECORDING_PATH", "midi/my_recording.mid")
}

func GetBackendRecordingPath() string {
	return getEnv("BACKEND_RECORDING_PATH",
		"../PopMusicTransformerPytorch/src/transformer/result/my_recording.mid")
}

// GetWritePause is the delay placed around artifact writes. Some filesystems
// served stale data when a file was rewritten right after being unlinked.
// WRITE_PAUSE_MS=0 turns it off.
func GetWritePause() time.Duration {
	ms := getEnvInt("WRITE_PAUSE_MS", 100)
	if ms < 0 {
		ms = 0
	}
	return time.Duration(ms) * time.Millisecond
}

func GetStaticDir() string {
	return getEnv("STATIC_DIR", ".")
}

func GetAllowedOrigins() []string {
	raw := getEnv("ALLOWED_ORIGINS", "http://localhost:5000")
	var res []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			res = append(res, o)
		}
	}
	return res
}

func GetLogLevel() string {
	return getEnv("LOG_LEVEL", "info")
}

// Mirror settings are optional. An empty bucket disables the S3 copy.
func GetMirrorBucket() string {
	return os.Getenv("MIRROR_BUCKET")
}

func GetMirrorKey() string {
	return getEnv("MIRROR_KEY", "my_recording.mid")
}

func GetMirrorRegion() string {
	return getEnv("MIRROR_REGION", "us-east-1")
}

func GetMirrorEndpoint() string {
	return os.Getenv("MIRROR_ENDPOINT")
}

const DefaultRelayPort = 5000

const DefaultBackendPort = 12000

// recordings are fixed at this tempo for now
const DefaultTempoBPM = 120

const DefaultBeatsPerBar = 4

const DefaultBeatUnit = 4

// General MIDI program 2 (zero based), announced as "Piano"
const DefaultInstrument = 2

const DefaultInstrumentName = "Piano"

// startTick = startMs / StartTickDivisor
const StartTickDivisor = 4.0

// 128 ticks per quarter note
const TicksPerQuarter = 128

const DefaultVelocity = 64

const (
	AckMidiReady = "POST request - midi ready in frontend!"
	AckNewPort   = "POST request - Got new port!"
)
