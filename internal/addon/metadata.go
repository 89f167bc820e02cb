package addon

// Metadata is the persisted per-addon state: remote staleness markers, the content signature of the
// bytes last written, and the naming map recorded per variant (archive entry name -> chosen filename).
type Metadata struct {
	Addon         string                        `json:"addon,omitempty"`
	ETag          string                        `json:"etag"`
	LastModified  string                        `json:"last_modified"`
	HashSignature string                        `json:"hash_signature"`
	Namings       map[Variant]map[string]string `json:"namings,omitempty"`
}

// Clone returns a deep copy of m.
func (m Metadata) Clone() Metadata {
	out := m
	if m.Namings != nil {
		out.Namings = make(map[Variant]map[string]string, len(m.Namings))
		for v, naming := range m.Namings {
			out.Namings[v] = cloneNaming(naming)
		}
	}
	return out
}

// Naming returns a copy of the naming map recorded for variant v (never nil).
func (m Metadata) Naming(v Variant) map[string]string {
	out := cloneNaming(m.Namings[v])
	if out == nil {
		out = map[string]string{}
	}
	return out
}

// SetNaming replaces the naming map recorded for variant v. Empty maps remove the entry.
func (m *Metadata) SetNaming(v Variant, naming map[string]string) {
	if len(naming) == 0 {
		delete(m.Namings, v)
		return
	}
	if m.Namings == nil {
		m.Namings = make(map[Variant]map[string]string)
	}
	m.Namings[v] = cloneNaming(naming)
}

// SetMarker copies the remote staleness markers from remote.
func (m *Metadata) SetMarker(remote Metadata) {
	m.ETag = remote.ETag
	m.LastModified = remote.LastModified
}

// SameMarker reports whether m and remote carry the same staleness marker.
// Last-Modified is preferred; ETag is only compared when either side lacks a timestamp.
// Unknown markers never match.
func (m Metadata) SameMarker(remote Metadata) bool {
	if m.LastModified != "" && remote.LastModified != "" {
		return m.LastModified == remote.LastModified
	}
	if m.ETag != "" && remote.ETag != "" {
		return m.ETag == remote.ETag
	}
	return false
}
