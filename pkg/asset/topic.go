package asset

import (
	"fmt"
	"strings"
)

// Topic joins the namespace root, area, asset id and sensor name.
func Topic(namespace, area, assetID, sensorName string) string {
	return strings.Join([]string{namespace, area, assetID, sensorName}, "/")
}

// ValidateNamespace checks a namespace root. Levels are separated by '/' and
// must be non-empty and free of wildcards.
func ValidateNamespace(ns string) error {
	if ns == "" {
		return fmt.Errorf("%w: namespace is empty", ErrInvalidDefinition)
	}
	for _, level := range strings.Split(ns, "/") {
		if level == "" {
			return fmt.Errorf("%w: namespace %q has an empty level", ErrInvalidDefinition, ns)
		}
		if strings.ContainsAny(level, "+#") {
			return fmt.Errorf("%w: namespace %q contains a wildcard", ErrInvalidDefinition, ns)
		}
	}
	return nil
}
