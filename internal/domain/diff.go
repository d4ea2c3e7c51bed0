package domain

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// Diff returns the fields whose values differ between before and after.
// Values are compared by their JSON encoding so that int and int64, or
// []string and []any, holding the same data compare equal. A key missing
// on one side counts as null. Both maps are non-nil.
func Diff(before, after map[string]any) (prev, next map[string]any) {
	prev = make(map[string]any)
	next = make(map[string]any)

	keys := make(map[string]struct{}, len(before)+len(after))
	for k := range before {
		keys[k] = struct{}{}
	}
	for k := range after {
		keys[k] = struct{}{}
	}

	for k := range keys {
		a, b := before[k], after[k]
		if sameValue(a, b) {
			continue
		}
		prev[k] = a
		next[k] = b
	}
	return prev, next
}

func sameValue(a, b any) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return bytes.Equal(ja, jb)
}
