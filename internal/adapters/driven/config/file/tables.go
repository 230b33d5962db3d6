package file

import (
	"cmp"
	"maps"
	"slices"
	"strings"
)

// flatten turns {"a": {"b": 1}} into {"a.b": 1}.
func flatten(tables map[string]any, prefix string) map[string]any {
	out := make(map[string]any)
	for k, v := range tables {
		if prefix != "" {
			k = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			maps.Copy(out, flatten(sub, k))
			continue
		}
		out[k] = v
	}
	return out
}

// nest is the inverse of flatten. Shorter keys are placed first, and a
// dotted key whose parent already holds a scalar stays a literal top-level
// key instead of overwriting it.
func nest(flat map[string]any) map[string]any {
	keys := slices.SortedFunc(maps.Keys(flat), func(a, b string) int {
		return cmp.Or(cmp.Compare(len(a), len(b)), strings.Compare(a, b))
	})

	root := make(map[string]any)
	for _, k := range keys {
		parts := strings.Split(k, ".")
		if table, ok := tableFor(root, parts[:len(parts)-1]); ok {
			table[parts[len(parts)-1]] = flat[k]
		} else {
			root[k] = flat[k]
		}
	}
	return root
}

// tableFor walks path from root, creating tables as needed. It fails when
// a step is already a scalar.
func tableFor(root map[string]any, path []string) (map[string]any, bool) {
	node := root
	for _, p := range path {
		child, ok := node[p]
		if !ok {
			next := make(map[string]any)
			node[p] = next
			node = next
			continue
		}
		table, ok := child.(map[string]any)
		if !ok {
			return nil, false
		}
		node = table
	}
	return node, true
}
