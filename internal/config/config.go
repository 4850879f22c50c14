package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/v2"
)

// Config is a loaded, read-only view of the layered configuration.
// Sections are decoded on demand by the packages that own them.
type Config struct {
	k    *koanf.Koanf
	file string
}

// File returns the configuration file that was loaded, or "" when only
// environment overrides were found.
func (c *Config) File() string {
	return c.file
}

// Has reports whether the dotted key path is present.
func (c *Config) Has(path string) bool {
	return c.k.Exists(path)
}

// Unmarshal decodes the section at path into out using koanf tags.
// When strict is set, keys that do not map onto a field are rejected.
func (c *Config) Unmarshal(path string, out interface{}, strict bool) error {
	err := c.k.UnmarshalWithConf(path, out, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.TextUnmarshallerHookFunc(),
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			ErrorUnused:      strict,
			WeaklyTypedInput: true,
			Result:           out,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to unmarshal %q: %w", path, err)
	}
	return nil
}

// Properties flattens the whole configuration into sorted "key = value"
// lines. Array elements are addressed as key[i].
func (c *Config) Properties() []string {
	props := make(map[string]string)
	flatten("", c.k.Raw(), props)

	lines := make([]string, 0, len(props))
	for k, v := range props {
		lines = append(lines, k+" = "+v)
	}
	sort.Strings(lines)
	return lines
}

func flatten(prefix string, value interface{}, props map[string]string) {
	switch v := value.(type) {
	case map[string]interface{}:
		for key, child := range v {
			flatten(joinKey(prefix, key), child, props)
		}
	case []interface{}:
		for i, child := range v {
			flatten(prefix+"["+strconv.Itoa(i)+"]", child, props)
		}
	case []map[string]interface{}:
		for i, child := range v {
			flatten(prefix+"["+strconv.Itoa(i)+"]", child, props)
		}
	case nil:
		props[prefix] = "Null"
	case float32, float64:
		props[prefix] = fmt.Sprintf("%.2f", v)
	default:
		props[prefix] = fmt.Sprint(v)
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return strings.Join([]string{prefix, key}, ".")
}
