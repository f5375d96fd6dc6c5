package host

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML or JSON host file into a map of host
// configurations keyed by host name. Empty entries become hosts with no
// explicit configuration.
func LoadFile(filePath string) (map[string]*Host, error) {
	file, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("could not read file %s: %w", filePath, err)
	}

	var hosts map[string]*Host
	if err := yaml.Unmarshal(file, &hosts); err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", filePath, err)
	}

	for name, h := range hosts {
		if h == nil {
			h = &Host{}
			hosts[name] = h
		}
		h.Name = name
	}
	return hosts, nil
}
