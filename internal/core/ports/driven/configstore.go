package driven

// ConfigStore is the persisted key/value settings file. Keys are dotted paths
// into nested tables, e.g. "analysis.timeout".
//
// Typed getters return the zero value when the key is missing or holds a
// different type. GetFloat also accepts integers.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set updates key and writes the file.
	Set(key string, value any) error

	Save() error
	Load() error

	// Path is the file backing the store.
	Path() string
}
