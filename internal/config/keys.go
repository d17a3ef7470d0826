package config

import "os"

// EnvSheetURL overrides sheet.url. The deployment URL embeds the script ID,
// so it is treated as a secret.
const EnvSheetURL = EnvPrefix + "_SHEET_URL"

// SecretSource represents where a secret value comes from.
type SecretSource string

const (
	SourceEnv    SecretSource = "env"
	SourceConfig SecretSource = "config"
	SourceNone   SecretSource = "none"
)

// SecretStatus represents the status of a secret setting.
type SecretStatus struct {
	Name   string       `json:"name"`
	Source SecretSource `json:"source"`
	IsSet  bool         `json:"is_set"`
	Masked string       `json:"masked,omitempty"` // e.g., "htt...xec"
}

// CheckEndpoint reports whether the sheet endpoint is configured.
func CheckEndpoint(cfg *Config) SecretStatus {
	return checkSecret("Sheet URL", cfg.Sheet.URL, EnvSheetURL)
}

// checkSecret checks if a value is set and where it came from.
func checkSecret(name, value, envVar string) SecretStatus {
	status := SecretStatus{
		Name:  name,
		IsSet: value != "",
	}

	if value != "" {
		if os.Getenv(envVar) != "" {
			status.Source = SourceEnv
		} else {
			status.Source = SourceConfig
		}
		status.Masked = maskSecret(value)
	} else {
		status.Source = SourceNone
	}

	return status
}

// maskSecret masks a value for display, showing only first 3 and last 3 chars.
func maskSecret(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return s[:3] + "..." + s[len(s)-3:]
}
