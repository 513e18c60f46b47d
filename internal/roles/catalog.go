package roles

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/mentat-dev/mentat/internal/app"
)

// Role is one selectable agent role.
type Role struct {
	ID           string `yaml:"id" json:"id"`
	Name         string `yaml:"name" json:"name"`
	SystemPrompt string `yaml:"system_prompt" json:"system_prompt,omitempty"`
}

// Catalog maps role ids to definitions and intents to ordered baseline
// role lists.
type Catalog struct {
	Roles     map[string]Role     `yaml:"roles"`
	Baselines map[string][]string `yaml:"baselines"`
}

// DefaultTeam is the hard fallback used when nothing else can produce a
// team: a catalog miss, a scoring failure, or an unknown intent with no
// baseline.
var DefaultTeam = []string{"analyst", "researcher"}

var builtinRoles = []Role{
	{ID: "analyst", Name: "Analyst", SystemPrompt: "Break the problem apart, weigh evidence, and state conclusions with their confidence."},
	{ID: "researcher", Name: "Researcher", SystemPrompt: "Gather relevant material, compare sources, and surface what is actually known."},
	{ID: "engineer", Name: "Engineer", SystemPrompt: "Design and implement working solutions with attention to edge cases."},
	{ID: "reviewer", Name: "Reviewer", SystemPrompt: "Examine work critically for correctness, clarity, and omissions."},
	{ID: "writer", Name: "Writer", SystemPrompt: "Produce clear, well-structured prose for the intended audience."},
	{ID: "editor", Name: "Editor", SystemPrompt: "Tighten and polish drafts without changing their meaning."},
	{ID: "planner", Name: "Planner", SystemPrompt: "Decompose goals into ordered, achievable steps with dependencies."},
	{ID: "critic", Name: "Critic", SystemPrompt: "Challenge assumptions and find the weakest point of any proposal."},
}

var builtinBaselines = map[string][]string{
	"analysis":  {"analyst", "researcher"},
	"research":  {"researcher", "analyst"},
	"coding":    {"engineer", "reviewer"},
	"review":    {"reviewer", "critic"},
	"writing":   {"writer", "editor"},
	"planning":  {"planner", "analyst"},
	"debugging": {"engineer", "analyst"},
}

// Builtin returns the compiled-in catalog.
func Builtin() *Catalog {
	c := &Catalog{
		Roles:     make(map[string]Role, len(builtinRoles)),
		Baselines: make(map[string][]string, len(builtinBaselines)),
	}
	for _, r := range builtinRoles {
		c.Roles[r.ID] = r
	}
	for intent, team := range builtinBaselines {
		c.Baselines[intent] = append([]string{}, team...)
	}
	return c
}

// Load returns the builtin catalog merged with the user's roles.yaml
// override, if one exists. A missing file is not an error; a malformed file
// is ignored and the builtin catalog is returned alone.
func Load() *Catalog {
	c := Builtin()

	dir, err := app.ConfigDir()
	if err != nil {
		return c
	}
	data, err := os.ReadFile(filepath.Join(dir, "roles.yaml")) //nolint:gosec // G304: path rooted in the user config dir
	if err != nil {
		return c
	}

	var override Catalog
	if err := yaml.Unmarshal(data, &override); err != nil {
		return c
	}
	for id, r := range override.Roles {
		if r.ID == "" {
			r.ID = id
		}
		c.Roles[id] = r
	}
	for intent, team := range override.Baselines {
		if len(team) > 0 {
			c.Baselines[intent] = team
		}
	}
	return c
}

// Baseline returns the ordered baseline team for an intent. Unknown intents
// fall back to the default two-role team.
func (c *Catalog) Baseline(intentLabel string) []string {
	if team, ok := c.Baselines[intentLabel]; ok && len(team) > 0 {
		return append([]string{}, team...)
	}
	return append([]string{}, DefaultTeam...)
}

// KnownRoles returns all role ids in deterministic order.
func (c *Catalog) KnownRoles() []string {
	ids := make([]string, 0, len(c.Roles))
	for id := range c.Roles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Get looks up a role definition.
func (c *Catalog) Get(id string) (Role, error) {
	r, ok := c.Roles[id]
	if !ok {
		return Role{}, fmt.Errorf("unknown role %q", id)
	}
	return r, nil
}
