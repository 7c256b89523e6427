package diagnosis

// Specialization is one row of the disease to doctor specialization table.
type Specialization struct {
	Disease string
	Name    string
}

type SpecializationIndex struct {
	byDisease map[string][]string
	rows      int
}

// NewSpecializationIndex groups rows by disease, keeping row order within
// each group.
func NewSpecializationIndex(rows []Specialization) *SpecializationIndex {
	idx := &SpecializationIndex{byDisease: make(map[string][]string)}
	for _, r := range rows {
		idx.byDisease[r.Disease] = append(idx.byDisease[r.Disease], r.Name)
		idx.rows++
	}
	return idx
}

// Lookup returns a fresh, never-nil slice; unknown diseases yield an empty one.
func (x *SpecializationIndex) Lookup(disease string) []string {
	names := x.byDisease[disease]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

func (x *SpecializationIndex) Diseases() int { return len(x.byDisease) }
func (x *SpecializationIndex) Rows() int     { return x.rows }
