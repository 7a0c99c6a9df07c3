package zai

import "strings"

// ModelDescriptor is the catalog entry handed to the host's model
// registry: the plugin-side identifier, its aliases, capability flags, and
// the default generation budget.
type ModelDescriptor struct {
	ID                string
	Aliases           []string
	SupportsVision    bool
	SupportsStreaming bool
	SupportsTools     bool
	DefaultMaxTokens  int
}

// Register returns the supported model catalog. The host invokes this once
// during startup; there is no import-time registration side effect.
func Register() []ModelDescriptor {
	return []ModelDescriptor{
		{
			ID:               "zai-glm-4.6",
			Aliases:          []string{"glm-4.6"},
			DefaultMaxTokens: 4096,
		},
		{
			ID:               "zai-glm-4.5v",
			Aliases:          []string{"glm-4.5v"},
			SupportsVision:   true,
			DefaultMaxTokens: 4096,
		},
		{
			ID:               "zai-glm-4.5",
			Aliases:          []string{"glm-4.5"},
			DefaultMaxTokens: 4096,
		},
		{
			ID:               "zai-glm-4.5-air",
			Aliases:          []string{"glm-4.5-air"},
			DefaultMaxTokens: 4096,
		},
		{
			ID:               "zai-glm-4-32b",
			Aliases:          []string{"glm-4-32b", "glm-4-32b-0414-128k"},
			DefaultMaxTokens: 8192,
		},
	}
}

// LookupModel resolves a model ID or alias against the catalog.
func LookupModel(idOrAlias string) (ModelDescriptor, bool) {
	for _, d := range Register() {
		if d.ID == idOrAlias {
			return d, true
		}
		for _, alias := range d.Aliases {
			if alias == idOrAlias {
				return d, true
			}
		}
	}
	return ModelDescriptor{}, false
}

// Transform maps a plugin-side model identifier to the provider's own
// model name.
type Transform func(modelID string) string

// TransformUpper is the mapping Z.ai's api.z.ai endpoints expect: the
// "zai-" prefix stripped, the rest upper-cased, with the "-AIR" suffix
// re-cased to "-Air". zai-glm-4.5-air becomes GLM-4.5-Air.
func TransformUpper(modelID string) string {
	name := strings.TrimPrefix(modelID, "zai-")
	name = strings.ToUpper(name)
	return strings.ReplaceAll(name, "-AIR", "-Air")
}

// TransformIdentity strips the "zai-" prefix and passes the lowercase name
// through, for bases such as open.bigmodel.cn that use lowercase model
// names.
func TransformIdentity(modelID string) string {
	return strings.TrimPrefix(modelID, "zai-")
}
