package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

const CONFIG_FILE = "WFA_CONFIG_FILE" //optional yaml file holding any of the keys below
const LOG_LEVEL = "WFA_LOG_LEVEL"

const DATABASE_TYPE = "WFA_DATABASE_TYPE"
const DATABASE_URL = "WFA_DATABASE_URL"
const DATABASE_SQLLITE_FILE_NAME = "WFA_DATABASE_SQLLITE_FILE_NAME"
const SERVER_WEB_PORT = "WFA_SERVER_WEB_PORT"

const ENGINE_WORKER_POOL_SIZE = "WFA_ENGINE_WORKER_POOL_SIZE" //number of executions that run in parallel
const ENGINE_QUEUE_SIZE = "WFA_ENGINE_QUEUE_SIZE"             //executions admitted but waiting for a worker
const ENGINE_ADMISSION_POLICY = "WFA_ENGINE_ADMISSION_POLICY" //QUEUE or REJECT once pool and queue are full
const ENGINE_VALIDATE_WORKFLOWS = "WFA_ENGINE_VALIDATE_WORKFLOWS"
const ENGINE_HTTP_TIMEOUT = "WFA_ENGINE_HTTP_TIMEOUT"
const ENGINE_SCRIPT_TIMEOUT = "WFA_ENGINE_SCRIPT_TIMEOUT"

const SMTP_HOST = "WFA_SMTP_HOST"
const SMTP_PORT = "WFA_SMTP_PORT"
const SMTP_FROM = "WFA_SMTP_FROM"
const SMTP_USERNAME = "WFA_SMTP_USERNAME"
const SMTP_PASSWORD = "WFA_SMTP_PASSWORD"

const ADMIN_USERNAME = "WFA_ADMIN_USERNAME"
const ADMIN_PASSWORD = "WFA_ADMIN_PASSWORD"
const ADMIN_API_KEY = "WFA_ADMIN_API_KEY"

const DATABASE_TYPE_POSTGRES = "POSTGRES"
const DATABASE_TYPE_MYSQL = "MYSQL"
const DATABASE_TYPE_SQLLITE = "SQLLITE"

const ADMISSION_POLICY_QUEUE = "QUEUE"
const ADMISSION_POLICY_REJECT = "REJECT"

var defaults = map[string]string{
	LOG_LEVEL:                  "INFO",
	DATABASE_SQLLITE_FILE_NAME: "./workflowautomation.db",
	SERVER_WEB_PORT:            "8080",
	ENGINE_WORKER_POOL_SIZE:    "5",
	ENGINE_QUEUE_SIZE:          "50",
	ENGINE_ADMISSION_POLICY:    ADMISSION_POLICY_QUEUE,
	ENGINE_VALIDATE_WORKFLOWS:  "true",
	ENGINE_HTTP_TIMEOUT:        "30s",
	ENGINE_SCRIPT_TIMEOUT:      "10s",
	SMTP_HOST:                  "localhost",
	SMTP_PORT:                  "25",
	SMTP_FROM:                  "noreply@workflowautomation.com",
	ADMIN_USERNAME:             "admin",
}

var (
	settingsOnce sync.Once
	settings     map[string]string
)

// loadSettings reads the optional yaml file once and fills every key it does not set from defaults.
func loadSettings() map[string]string {
	settingsOnce.Do(func() {
		fileSettings := map[string]string{}
		if path := os.Getenv(CONFIG_FILE); path != "" {
			loaded, err := readSettingsFile(path)
			if err != nil {
				slog.Error("Failed to read settings file, using defaults", "file", path, "error", err)
			} else {
				fileSettings = loaded
			}
		}
		if err := mergo.Merge(&fileSettings, defaults); err != nil {
			slog.Error("Failed to merge default settings", "error", err)
		}
		settings = fileSettings
	})
	return settings
}

func readSettingsFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		switch tv := v.(type) {
		case string:
			out[k] = tv
		case bool:
			out[k] = strconv.FormatBool(tv)
		case int:
			out[k] = strconv.Itoa(tv)
		case float64:
			out[k] = strconv.FormatFloat(tv, 'f', -1, 64)
		default:
			slog.Warn("Ignoring non scalar setting", "key", k)
		}
	}
	return out, nil
}

func GetSystemSettingInteger(settingKey string) int {
	val := GetSystemSettingString(settingKey)
	if val != "" {
		intValue, err := strconv.Atoi(val)
		if err != nil {
			slog.Warn("Setting is not an integer", "key", settingKey, "value", val)
			return 0
		}
		return intValue
	}
	return 0
}

func GetSystemSettingBool(settingKey string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(GetSystemSettingString(settingKey)))
	if err != nil {
		return false
	}
	return v
}

// GetSystemSettingDuration parses values like "30s" or "2m"; an invalid value yields 0.
func GetSystemSettingDuration(settingKey string) time.Duration {
	val := GetSystemSettingString(settingKey)
	if val == "" {
		return 0
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		slog.Warn("Setting is not a duration", "key", settingKey, "value", val)
		return 0
	}
	return d
}

// GetSystemSettingString resolves the environment first, then the settings file, then the default.
func GetSystemSettingString(settingKey string) string {
	val := os.Getenv(settingKey)
	if val != "" {
		return val
	}
	return loadSettings()[settingKey]
}
