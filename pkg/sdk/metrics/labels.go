package metrics

import "strings"

// makeKey flattens variadic "k1, v1, k2, v2" label pairs into a storage
// key. Odd-length label lists are treated as unlabeled.
func makeKey(labels ...string) string {
	if len(labels) == 0 || len(labels)%2 != 0 {
		return ""
	}
	return strings.Join(labels, ",")
}

// keyToLabels converts a storage key back into a label map.
func keyToLabels(key string) map[string]string {
	if key == "" {
		return nil
	}

	parts := strings.Split(key, ",")
	labels := make(map[string]string, len(parts)/2)
	for i := 0; i < len(parts)-1; i += 2 {
		labels[parts[i]] = parts[i+1]
	}
	return labels
}
