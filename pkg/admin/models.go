package admin

import "time"

// Settings holds the Verify provider credentials managed at runtime.
type Settings struct {
	APIKey         string    `json:"api_key"`
	APISecret      string    `json:"api_secret"`
	Brand          string    `json:"brand"`
	LastModifiedAt time.Time `json:"last_modified_at"`
}

// Configured reports whether both credentials are present.
func (s Settings) Configured() bool {
	return s.APIKey != "" && s.APISecret != ""
}
