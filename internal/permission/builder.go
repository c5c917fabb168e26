package permission

import "sort"

// BuildAndroidSet collapses a normalized permission list into the canonical
// Android set, keyed by normalized name and sorted lexicographically.
//
// Collision policy: when two raw identifiers collapse to the same normalized
// name, the tightest SDK ceiling wins: any explicit maxSdkVersion beats
// unbounded, and the lowest explicit ceiling beats a higher one. The result
// is deterministic regardless of declaration order.
func BuildAndroidSet(perms []Normalized) []AndroidPermission {
	byName := make(map[string]*int, len(perms))
	for _, p := range perms {
		existing, seen := byName[p.Name]
		if !seen {
			byName[p.Name] = p.MaxSDKVersion
			continue
		}
		byName[p.Name] = tightestCeiling(existing, p.MaxSDKVersion)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	set := make([]AndroidPermission, 0, len(names))
	for _, name := range names {
		set = append(set, AndroidPermission{Name: name, MaxSDKVersion: byName[name]})
	}
	return set
}

func tightestCeiling(a, b *int) *int {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case *b < *a:
		return b
	default:
		return a
	}
}

// AndroidKeys extracts the sorted name key set from a persisted or built
// Android permission list.
func AndroidKeys(set []AndroidPermission) []string {
	keys := make([]string, 0, len(set))
	for _, p := range set {
		keys = append(keys, p.Name)
	}
	sort.Strings(keys)
	return keys
}

// IOSKeys extracts the sorted key set from an iOS permission mapping.
func IOSKeys(set map[string]string) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
