// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package store

import (
	"fmt"
	"sort"
	"time"
)

// ConfigDiff describes one committed change to the store (spec §4.1
// "ConfigDiff"). It is the payload the store's on_change handler hands to
// the Event Bus.
type ConfigDiff struct {
	ChangedKeys []string               `json:"changed_keys"`
	Old         map[string]interface{} `json:"old"`
	New         map[string]interface{} `json:"new"`
	Timestamp   time.Time              `json:"timestamp"`
}

// EventConfigChanged is the event name ConfigDiff payloads are emitted
// under.
const EventConfigChanged = "config.changed"

// diffChangedKeys returns the sorted set of dotted paths whose leaf value
// differs between old and new (flattening both trees first).
func diffChangedKeys(old, next map[string]interface{}) []string {
	oldFlat := map[string]interface{}{}
	newFlat := map[string]interface{}{}
	flatten("", old, oldFlat)
	flatten("", next, newFlat)

	changed := map[string]struct{}{}
	for k, v := range newFlat {
		if ov, ok := oldFlat[k]; !ok || !equalValue(ov, v) {
			changed[k] = struct{}{}
		}
	}
	for k := range oldFlat {
		if _, ok := newFlat[k]; !ok {
			changed[k] = struct{}{}
		}
	}

	out := make([]string, 0, len(changed))
	for k := range changed {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func flatten(prefix string, m map[string]interface{}, out map[string]interface{}) {
	for k, v := range m {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		if nested, ok := v.(map[string]interface{}); ok {
			flatten(path, nested, out)
			continue
		}
		out[path] = v
	}
}

func equalValue(a, b interface{}) bool {
	// Values coming out of encoding/json are always comparable primitives,
	// slices, or maps; a cheap formatted comparison is enough here and
	// avoids pulling in reflect.DeepEqual's edge cases for NaN et al.
	return toComparable(a) == toComparable(b)
}

func toComparable(v interface{}) interface{} {
	switch t := v.(type) {
	case []interface{}, map[string]interface{}:
		return fmt.Sprintf("%v", t)
	default:
		return v
	}
}
