package bundler

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// GroupKey names a bundle group: a category of notification types sharing
// one aggregated presentation template.
type GroupKey string

// DefaultGroupKey is the sentinel group for notification types no declared
// group owns.
const DefaultGroupKey GroupKey = "DEFAULT"

// GroupDefinition is the static configuration of one bundle group.
// Types must be disjoint across groups; when two groups erroneously share a
// type the earlier-declared group wins.
type GroupDefinition struct {
	Key     GroupKey `yaml:"key"`
	Types   []string `yaml:"types"`
	Title   string   `yaml:"title"`
	Subject string   `yaml:"subject"`
	GroupBy string   `yaml:"groupBy,omitempty"`
}

// defaultGroupDefinition presents unclassified notifications.
var defaultGroupDefinition = GroupDefinition{
	Key:     DefaultGroupKey,
	Title:   "Other updates",
	Subject: "You have updates",
}

// GroupTable resolves notification types to bundle groups. Built once at
// startup from static configuration. Declaration order matters only as the
// tie-breaker between misconfigured overlapping groups.
type GroupTable struct {
	groups []GroupDefinition
	byKey  map[GroupKey]GroupDefinition
}

// NewGroupTable builds a validated lookup table from ordered group
// definitions.
func NewGroupTable(groups []GroupDefinition) (*GroupTable, error) {
	if len(groups) == 0 {
		return nil, ErrNoGroups
	}

	byKey := make(map[GroupKey]GroupDefinition, len(groups)+1)
	seen := make(map[string]GroupKey)
	for _, g := range groups {
		if g.Key == "" {
			return nil, fmt.Errorf("%w: group key is required", ErrInvalidGroup)
		}
		if g.Key == DefaultGroupKey {
			return nil, fmt.Errorf("%w: %q is reserved", ErrInvalidGroup, DefaultGroupKey)
		}
		if g.Title == "" {
			return nil, fmt.Errorf("%w: group %q has no title", ErrInvalidGroup, g.Key)
		}
		if len(g.Types) == 0 {
			return nil, fmt.Errorf("%w: group %q owns no types", ErrInvalidGroup, g.Key)
		}
		if _, dup := byKey[g.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate group key %q", ErrInvalidGroup, g.Key)
		}
		for _, typ := range g.Types {
			if owner, dup := seen[typ]; dup {
				return nil, fmt.Errorf("%w: type %q owned by both %q and %q", ErrInvalidGroup, typ, owner, g.Key)
			}
			seen[typ] = g.Key
		}
		byKey[g.Key] = g
	}
	byKey[DefaultGroupKey] = defaultGroupDefinition

	return &GroupTable{groups: slices.Clone(groups), byKey: byKey}, nil
}

// Classify returns the key of the first group whose types contain the event
// type, or DefaultGroupKey when none match. Deterministic and pure.
func (t *GroupTable) Classify(eventType string) GroupKey {
	for _, g := range t.groups {
		if slices.Contains(g.Types, eventType) {
			return g.Key
		}
	}
	return DefaultGroupKey
}

// Definition returns the group definition for a key. Unknown keys resolve to
// the sentinel default group.
func (t *GroupTable) Definition(key GroupKey) GroupDefinition {
	if g, ok := t.byKey[key]; ok {
		return g
	}
	return defaultGroupDefinition
}

// groupsFile is the YAML shape of a bundle-group configuration file.
type groupsFile struct {
	Groups []GroupDefinition `yaml:"groups"`
}

// LoadGroups reads group definitions from a YAML file and builds the table.
func LoadGroups(path string) (*GroupTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read group config: %w", err)
	}
	return ParseGroups(raw)
}

// ParseGroups builds a table from YAML bytes.
func ParseGroups(raw []byte) (*GroupTable, error) {
	var f groupsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse group config: %w", err)
	}
	return NewGroupTable(f.Groups)
}

// DefaultGroups is the compiled-in bundle group table used when no YAML
// configuration is supplied.
func DefaultGroups() []GroupDefinition {
	return []GroupDefinition{
		{
			Key:     "discussions",
			Types:   []string{"notifications.topic.created", "notifications.post.created", "notifications.post.edited", TypePostMention},
			Title:   "New posts from <authorHandle>",
			Subject: "New discussion activity",
			GroupBy: "authorHandle",
		},
		{
			Key:     "updates",
			Types:   []string{"notifications.project.updated", "notifications.project.phase.transition", "notifications.project.status.changed"},
			Title:   "Updates in <projectName>",
			Subject: "Your project has updates",
		},
		{
			Key:     "files",
			Types:   []string{"notifications.file.uploaded"},
			Title:   "<fileName> uploaded",
			Subject: "New files in your project",
		},
		{
			Key:     "members",
			Types:   []string{"notifications.member.joined", "notifications.member.left", "notifications.member.invited"},
			Title:   "Team changes",
			Subject: "Your project team changed",
		},
	}
}
