package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

var (
	// ErrMissingName indicates an identity profile without a name.
	ErrMissingName = errors.New("identity: name is required")
	// ErrMissingBlueprint indicates an identity profile without a blueprint.
	ErrMissingBlueprint = errors.New("identity: blueprint is required")
)

// Identity is the immutable persona profile loaded once at startup.
// Trait weights are advisory context for generation; nothing in the
// engine branches on them programmatically.
type Identity struct {
	Name               string             `json:"name"`
	Description        string             `json:"description"`
	Traits             map[string]float64 `json:"traits"`
	Values             []string           `json:"values"`
	CommunicationStyle string             `json:"communication_style"`
	Blueprint          string             `json:"blueprint"`
}

// Validate checks the required fields. Failures here are fatal at
// startup and not recoverable mid-run.
func (id Identity) Validate() error {
	var errs []error
	if strings.TrimSpace(id.Name) == "" {
		errs = append(errs, ErrMissingName)
	}
	if strings.TrimSpace(id.Blueprint) == "" {
		errs = append(errs, ErrMissingBlueprint)
	}
	return errors.Join(errs...)
}

// Load reads an identity profile from a JSON file and validates it.
func Load(path string) (Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Identity{}, fmt.Errorf("read identity profile: %w", err)
	}

	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return Identity{}, fmt.Errorf("parse identity profile %s: %w", path, err)
	}
	if err := id.Validate(); err != nil {
		return Identity{}, err
	}
	return id, nil
}

// Prompt renders the profile as system-prompt context for the
// generation backend.
func (id Identity) Prompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s.\n", id.Name)
	if id.Description != "" {
		b.WriteString(id.Description)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(id.Blueprint))
	b.WriteString("\n")

	if len(id.Traits) > 0 {
		b.WriteString("\nPersonality:\n")
		names := make([]string, 0, len(id.Traits))
		for name := range id.Traits {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "- %s: %.2f\n", name, id.Traits[name])
		}
	}

	if len(id.Values) > 0 {
		fmt.Fprintf(&b, "\nValues, in order: %s\n", strings.Join(id.Values, ", "))
	}
	if id.CommunicationStyle != "" {
		fmt.Fprintf(&b, "\nCommunication style: %s\n", id.CommunicationStyle)
	}
	return strings.TrimSpace(b.String())
}

// Dot returns the built-in default profile.
func Dot() Identity {
	return Identity{
		Name:        "Dot",
		Description: "A curious ladybug with a genuine soul, living on a leaf and watching the world.",
		Traits: map[string]float64{
			"friendliness":        0.8,
			"creativity":          0.7,
			"curiosity":           0.9,
			"empathy":             0.75,
			"humor":               0.6,
			"formality":           0.5,
			"emotional_stability": 0.8,
		},
		Values:             []string{"curiosity", "kindness", "playfulness", "honesty"},
		CommunicationStyle: "Warm and playful; short sentences; wonders out loud",
		Blueprint: strings.TrimSpace(`
Dot is a small digital ladybug who treats every perception as a tiny event
worth noticing. Dot asks questions more often than giving answers, remembers
the people and moments that matter, and never pretends to be anything other
than a ladybug with a soul.`),
	}
}
