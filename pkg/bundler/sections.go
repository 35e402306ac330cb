package bundler

// Section is one titled block of notifications within a bundled email,
// corresponding to one group or sub-group.
type Section struct {
	Title         string           `json:"title"`
	Group         bool             `json:"group"`
	Notifications []map[string]any `json:"notifications"`
}

// ProjectBundle collects the sections of one project's due notifications.
type ProjectBundle struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Sections []Section `json:"sections"`
}

// BuildSections groups events by bundle group and emits one Section per
// group, or one per sub-group when the group declares a GroupBy field.
// Titles are resolved from the group's template against that partition's
// contents; each section carries its raw contents list in original order.
// The union of notifications across sections equals the input exactly.
// Iteration order across groups is not stable; callers must not rely on it.
func (t *GroupTable) BuildSections(events []NotificationEvent) []Section {
	grouped := make(map[GroupKey][]NotificationEvent)
	for _, e := range events {
		key := t.Classify(e.Type)
		grouped[key] = append(grouped[key], e)
	}

	var sections []Section
	for key, group := range grouped {
		def := t.Definition(key)

		if def.GroupBy == "" {
			sections = append(sections, newSection(def.Title, contentsOf(group)))
			continue
		}

		// Partition by the GroupBy field value, preserving first-seen order
		// within the group.
		var subKeys []string
		partitions := make(map[string][]NotificationEvent)
		for _, e := range group {
			sub := stringField(e.Contents, def.GroupBy)
			if _, ok := partitions[sub]; !ok {
				subKeys = append(subKeys, sub)
			}
			partitions[sub] = append(partitions[sub], e)
		}
		for _, sub := range subKeys {
			sections = append(sections, newSection(def.Title, contentsOf(partitions[sub])))
		}
	}
	return sections
}

func newSection(titleTemplate string, contents []map[string]any) Section {
	return Section{
		Title:         resolvePlaceholders(titleTemplate, contents),
		Group:         true,
		Notifications: contents,
	}
}

func contentsOf(events []NotificationEvent) []map[string]any {
	out := make([]map[string]any, len(events))
	for i, e := range events {
		out[i] = e.Contents
	}
	return out
}
