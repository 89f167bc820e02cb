package addon

// Snapshot is the resolved list of one run, kept so the next run can compare against it.
type Snapshot struct {
	Variant Variant    `json:"variant"`
	Addons  []Resolved `json:"addons"`
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{Variant: s.Variant, Addons: CloneAll(s.Addons)}
}
