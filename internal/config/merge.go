package config

import (
	"fmt"
	"slices"
)

// Merge combines two configs where overlay takes precedence over base.
//   - version: must agree if both declare it (non-zero); fatal error on mismatch
//   - log_file, arg_encoding: overlay wins when non-empty
//   - sort_entries, preserve_mod_time: overlay wins when set
//   - exclude: concatenate (base first, then overlay), duplicates dropped
func Merge(base, overlay *Config) (*Config, error) {
	if base == nil {
		return overlay, nil
	}
	if overlay == nil {
		return base, nil
	}

	result := &Config{}

	if err := mergeVersion(base.Version, overlay.Version, &result.Version); err != nil {
		return nil, err
	}

	result.LogFile = mergeString(base.LogFile, overlay.LogFile)
	result.ArgEncoding = mergeString(base.ArgEncoding, overlay.ArgEncoding)
	result.SortEntries = mergeBool(base.SortEntries, overlay.SortEntries)
	result.PreserveModTime = mergeBool(base.PreserveModTime, overlay.PreserveModTime)
	result.Exclude = mergeExclude(base.Exclude, overlay.Exclude)

	return result, nil
}

// MergeAll merges multiple configs in order (lowest precedence first).
// Returns an error if any version mismatch is found.
func MergeAll(configs []*Config) (*Config, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("no configs to merge")
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		var err error
		result, err = Merge(result, configs[i])
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func mergeVersion(base, overlay int, out *int) error {
	switch {
	case base == 0 && overlay == 0:
		*out = 0
	case base == 0:
		*out = overlay
	case overlay == 0:
		*out = base
	case base == overlay:
		*out = base
	default:
		return fmt.Errorf("config version mismatch: one layer declares version %d, another declares version %d; all config layers must agree on version", base, overlay)
	}
	return nil
}

func mergeString(base, overlay string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

func mergeBool(base, overlay *bool) *bool {
	if overlay != nil {
		return boolPtr(*overlay)
	}
	if base != nil {
		return boolPtr(*base)
	}
	return nil
}

func mergeExclude(base, overlay []string) []string {
	if len(base) == 0 && len(overlay) == 0 {
		return nil
	}

	result := make([]string, 0, len(base)+len(overlay))
	for _, p := range slices.Concat(base, overlay) {
		if !slices.Contains(result, p) {
			result = append(result, p)
		}
	}
	return result
}
