package catalog

// Default reward messages used when the catalog leaves one blank
const (
	DefaultLevelUpMessage     = "Level %d reached!"
	DefaultMilestoneMessage   = "Milestone complete: %s"
	DefaultDailyRewardMessage = "Streak day %d reward"
)

// schemaURL is the resource name the embedded schema is registered under
const schemaURL = "schema://critiquest/catalog.json"

// Supported catalog file extensions
const (
	ExtYAML = ".yaml"
	ExtYML  = ".yml"
	ExtJSON = ".json"
)
