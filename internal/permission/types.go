// Package permission defines the canonical permission records and the
// per-platform comparison sets built from them.
package permission

// Record is a raw permission declaration as scraped from platform tooling,
// before normalization.
type Record struct {
	RawName       string // identifier exactly as declared by the artifact
	MaxSDKVersion *int   // Android only; nil means unbounded
	Description   string // iOS only; user-facing usage string
}

// Normalized is a permission identifier canonicalized against the owning
// package identity.
type Normalized struct {
	Raw           string `json:"raw"`
	Name          string `json:"name"`
	Dynamic       bool   `json:"dynamic"`
	MaxSDKVersion *int   `json:"maxSdkVersion,omitempty"`
}

// AndroidPermission is one entry of the canonical Android set. This is also
// the persisted baseline shape for the platform.
type AndroidPermission struct {
	Name          string `json:"name"`
	MaxSDKVersion *int   `json:"maxSdkVersion,omitempty"`
}

// Profile aggregates the current per-platform permission sets of a single
// run. HasAndroid/HasIOS record which platforms were actually extracted so
// the diff engine only judges platforms that were processed.
type Profile struct {
	Android    []AndroidPermission
	IOS        map[string]string
	HasAndroid bool
	HasIOS     bool
}

// MergeAndroid replaces the profile's Android set. Artifacts are processed
// sequentially, so a later Android artifact in the same run overwrites the
// platform entry.
func (p *Profile) MergeAndroid(set []AndroidPermission) {
	p.Android = set
	p.HasAndroid = true
}

// MergeIOS replaces the profile's iOS set.
func (p *Profile) MergeIOS(set map[string]string) {
	p.IOS = set
	p.HasIOS = true
}
