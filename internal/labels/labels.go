// Package labels turns raw model class labels into plant and disease names.
package labels

import "strings"

// Format splits a raw class label such as "Tomato__Target_Spot" into its plant
// component ("Tomato") and disease component ("Target Spot").
//
// Underscores are read as spaces and repeated whitespace collapses to a single
// space. Any input, including the empty string, yields a result.
func Format(raw string) (plant, disease string) {
	fields := strings.Fields(strings.ReplaceAll(raw, "_", " "))
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// CompositeKey joins plant and disease into the key used by locale tables.
func CompositeKey(plant, disease string) string {
	return strings.TrimSpace(plant + " " + disease)
}
