package domain

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// WeekHours decodes a past-week hours history written either as a list of
// numbers or as a delimited string ("8,7,6"). Decoded values are always
// normalized to WeekDays entries.
type WeekHours []float64

func (w *WeekHours) UnmarshalJSON(b []byte) error {
	var list []float64
	if err := json.Unmarshal(b, &list); err == nil {
		*w = NormalizeWeekHours(list)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("pastWeekHours must be a list of numbers or a delimited string")
	}
	*w = ParseWeekHours(s)
	return nil
}

func (w *WeekHours) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var list []float64
		if err := value.Decode(&list); err != nil {
			return fmt.Errorf("pastWeekHours: %w", err)
		}
		*w = NormalizeWeekHours(list)
	case yaml.ScalarNode:
		*w = ParseWeekHours(value.Value)
	default:
		return fmt.Errorf("pastWeekHours must be a list of numbers or a delimited string")
	}
	return nil
}
