package bookinglist

import "sort"

// CheckState is the derived state of a section's select-all control.
type CheckState string

const (
	CheckNone CheckState = "none"
	CheckSome CheckState = "some"
	CheckAll  CheckState = "all"
)

// BulkSelection tracks which bookings are checked per section. Keys are
// booking identity keys (see KeyOf). Not safe for concurrent use; the owning
// session serializes access.
type BulkSelection struct {
	checked map[Section]map[string]struct{}
}

func NewBulkSelection() *BulkSelection {
	return &BulkSelection{
		checked: make(map[Section]map[string]struct{}),
	}
}

func (s *BulkSelection) section(section Section) map[string]struct{} {
	m, ok := s.checked[section]
	if !ok {
		m = make(map[string]struct{})
		s.checked[section] = m
	}
	return m
}

// Toggle flips one checkbox.
func (s *BulkSelection) Toggle(section Section, key string) {
	m := s.section(section)
	if _, ok := m[key]; ok {
		delete(m, key)
	} else {
		m[key] = struct{}{}
	}
}

func (s *BulkSelection) IsChecked(section Section, key string) bool {
	_, ok := s.checked[section][key]
	return ok
}

// Checked returns the checked keys of a section in stable order.
func (s *BulkSelection) Checked(section Section) []string {
	keys := make([]string, 0, len(s.checked[section]))
	for k := range s.checked[section] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *BulkSelection) Count(section Section) int {
	return len(s.checked[section])
}

// Clear unchecks everything in a section.
func (s *BulkSelection) Clear(section Section) {
	delete(s.checked, section)
}

// SetAll checks or unchecks every given key at once, the select-all control.
func (s *BulkSelection) SetAll(section Section, keys []string, checked bool) {
	if !checked {
		s.Clear(section)
		return
	}
	m := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	s.checked[section] = m
}

// State derives the select-all control state from the section's current
// bookings. An empty section is always "none".
func (s *BulkSelection) State(section Section, keys []string) CheckState {
	if len(keys) == 0 {
		return CheckNone
	}
	count := 0
	for _, k := range keys {
		if s.IsChecked(section, k) {
			count++
		}
	}
	switch count {
	case 0:
		return CheckNone
	case len(keys):
		return CheckAll
	default:
		return CheckSome
	}
}

// Prune drops checked keys that no longer exist in the section, keeping the
// selection consistent after a reload or deletion.
func (s *BulkSelection) Prune(section Section, keys []string) {
	m, ok := s.checked[section]
	if !ok {
		return
	}
	existing := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		existing[k] = struct{}{}
	}
	for k := range m {
		if _, ok := existing[k]; !ok {
			delete(m, k)
		}
	}
}

// PruneAll prunes every deletable section against a snapshot.
func (s *BulkSelection) PruneAll(snap *Snapshot) {
	for _, section := range DeletableSections {
		s.Prune(section, SectionKeys(snap, section))
	}
}

// SectionKeys lists the identity keys of one snapshot section in display
// order.
func SectionKeys(snap *Snapshot, section Section) []string {
	bookings := snap.Section(section)
	keys := make([]string, len(bookings))
	for i, b := range bookings {
		keys[i] = KeyOf(b)
	}
	return keys
}
