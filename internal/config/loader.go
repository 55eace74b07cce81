package config

import (
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/leapstack-labs/trialrecon/internal/loader"
)

// LoadComparisonFile loads one comparison from a JSON or YAML file of the
// form {"left": {...}, "right": {...}}. Filters may be written either as
// [column, operator, value] arrays or as objects.
func LoadComparisonFile(path string) (*Comparison, error) {
	k := koanf.New(".")
	// YAML is a superset of JSON, so one parser reads both.
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("error reading comparison file %s: %w", path, err)
	}

	var c Comparison
	if err := Unmarshal(k, "", &c); err != nil {
		return nil, fmt.Errorf("unable to decode comparison file %s: %w", path, err)
	}
	ApplyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid comparison file %s: %w", path, err)
	}
	return &c, nil
}

// Unmarshal decodes the koanf tree at path into out using FilterRuleHook.
func Unmarshal(k *koanf.Koanf, path string, out any) error {
	return k.UnmarshalWithConf(path, out, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				FilterRuleHook(),
			),
			Result:           out,
			WeaklyTypedInput: true,
		},
	})
}

var filterRuleType = reflect.TypeOf(loader.FilterRule{})

// FilterRuleHook decodes a [column, operator, value] array into a
// loader.FilterRule.
func FilterRuleHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != filterRuleType {
			return data, nil
		}
		if from.Kind() != reflect.Slice && from.Kind() != reflect.Array {
			return data, nil
		}

		v := reflect.ValueOf(data)
		if v.Len() != 3 {
			return nil, fmt.Errorf("filter must have 3 elements [column, operator, value], got %d", v.Len())
		}
		parts := make([]string, 3)
		for i := range parts {
			parts[i] = fmt.Sprint(v.Index(i).Interface())
		}
		return loader.FilterRule{Column: parts[0], Operator: parts[1], Value: parts[2]}, nil
	}
}
