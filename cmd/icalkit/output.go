package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"icalkit/internal/config"
	"icalkit/internal/model"
)

// listing is the document printed by the expand command.
type listing struct {
	From        string             `yaml:"from" json:"from"`
	To          string             `yaml:"to" json:"to"`
	Timezone    string             `yaml:"timezone" json:"timezone"`
	Truncated   []string           `yaml:"truncated,omitempty" json:"truncated,omitempty"`
	Occurrences []model.Occurrence `yaml:"occurrences" json:"occurrences"`
}

// sortOccurrences orders by start, then UID, then instance key.
func sortOccurrences(occs []model.Occurrence) {
	sort.SliceStable(occs, func(i, j int) bool {
		a, b := occs[i], occs[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if a.UID != b.UID {
			return a.UID < b.UID
		}
		return a.InstanceKey < b.InstanceKey
	})
}

func writeListing(w io.Writer, l listing, format string) error {
	switch format {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(l)
	case config.OutputYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(l); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
