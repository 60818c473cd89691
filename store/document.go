package store

import (
	"encoding/json"
	"strings"
)

// A room document is a plain JSON tree: map[string]any at every branch,
// json-compatible scalars at the leaves. All mutation helpers below assume
// they are called from the engine actor and never share references with
// callers.

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// normalize converts an arbitrary value into a pure JSON tree so that
// documents never carry caller-owned structs or pointers.
func normalize(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

func copyValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, child := range v {
			out[k] = copyValue(child)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = copyValue(child)
		}
		return out
	default:
		return v
	}
}

func getAtPath(doc map[string]any, segments []string) any {
	var current any = doc
	for _, seg := range segments {
		branch, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = branch[seg]
	}
	return current
}

// setAtPath writes value at the given path, creating intermediate branches.
// A nil value removes the subtree instead, matching the store's
// "set null deletes" contract. Returns the (possibly replaced) root.
func setAtPath(doc map[string]any, segments []string, value any) map[string]any {
	if len(segments) == 0 {
		if branch, ok := value.(map[string]any); ok {
			return branch
		}
		return map[string]any{}
	}
	if value == nil {
		removeAtPath(doc, segments)
		return doc
	}
	current := doc
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[seg] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
	return doc
}

// updateAtPath merges fields at path in one step. Field keys may themselves
// be slash-nested ("players/p1/score"), which is what lets a round-start
// update touch several subtrees atomically.
func updateAtPath(doc map[string]any, segments []string, fields map[string]any) map[string]any {
	for key, value := range fields {
		doc = setAtPath(doc, append(append([]string{}, segments...), splitPath(key)...), value)
	}
	return doc
}

// removeAtPath deletes the subtree at path and prunes branches left empty,
// so a room whose last player leaves collapses to an empty document.
func removeAtPath(doc map[string]any, segments []string) {
	if len(segments) == 0 {
		return
	}
	parents := make([]map[string]any, 0, len(segments))
	current := doc
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg].(map[string]any)
		if !ok {
			return
		}
		parents = append(parents, current)
		current = next
	}
	delete(current, segments[len(segments)-1])

	for i := len(parents) - 1; i >= 0; i-- {
		child, _ := parents[i][segments[i]].(map[string]any)
		if len(child) != 0 {
			break
		}
		delete(parents[i], segments[i])
	}
}
