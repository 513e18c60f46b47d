// Package profile reads the user's selection preferences. The profile is
// advisory input to scoring; a missing or malformed file means an empty
// profile, never an error surfaced to selection.
package profile

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mentat-dev/mentat/internal/app"
)

// Profile holds user preferences consulted during team selection.
type Profile struct {
	PreferredRoles     []string `yaml:"preferred_roles" json:"preferred_roles,omitempty"`
	CommunicationStyle string   `yaml:"communication_style" json:"communication_style,omitempty"`
	Timezone           string   `yaml:"timezone" json:"timezone,omitempty"`
}

const fileName = "profile.yaml"

// Load reads the profile from the config directory. Missing or unreadable
// files yield an empty profile.
func Load() Profile {
	dir, err := app.ConfigDir()
	if err != nil {
		return Profile{}
	}
	data, err := os.ReadFile(filepath.Join(dir, fileName)) //nolint:gosec // G304: path rooted in the user config dir
	if err != nil {
		return Profile{}
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}
	}
	return p
}

// Save writes the profile back to the config directory.
func Save(p Profile) error {
	dir, err := app.ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, fileName), data, 0o644)
}
