package config

// DefaultFileName is the project-level config file looked up by default.
const DefaultFileName = "dirmirror.yaml"

// Config represents the dirmirror.yaml configuration file.
// Every field is optional; unset fields fall back to Defaults.
type Config struct {
	Version int `yaml:"version"`

	// LogFile is the run log path. Relative paths resolve against the
	// working directory.
	LogFile string `yaml:"log_file,omitempty"`

	SortEntries     *bool `yaml:"sort_entries,omitempty"`
	PreserveModTime *bool `yaml:"preserve_mod_time,omitempty"`

	// ArgEncoding names the charset of the positional arguments.
	// Empty means the arguments are already UTF-8.
	ArgEncoding string `yaml:"arg_encoding,omitempty"`

	// Exclude holds doublestar patterns relative to the source root.
	Exclude []string `yaml:"exclude,omitempty"`
}

// Defaults returns the configuration used when no file sets a value.
func Defaults() *Config {
	return &Config{
		Version:         1,
		LogFile:         "last.log",
		SortEntries:     boolPtr(false),
		PreserveModTime: boolPtr(true),
	}
}

// Sorted reports whether entries are visited in lexical order.
func (c *Config) Sorted() bool {
	return c.SortEntries != nil && *c.SortEntries
}

// PreservesModTime reports whether copies keep the source modification time.
// It defaults to true when unset.
func (c *Config) PreservesModTime() bool {
	return c.PreserveModTime == nil || *c.PreserveModTime
}

func boolPtr(b bool) *bool { return &b }
