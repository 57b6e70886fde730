package domain

import "strings"

// UserCollection is an ordered list of users, unique by ID, in the order the
// directory returned them.
type UserCollection []UserRecord

// Clone returns an independent copy of the collection.
func (c UserCollection) Clone() UserCollection {
	if c == nil {
		return UserCollection{}
	}
	out := make(UserCollection, len(c))
	copy(out, c)
	return out
}

// Find returns the record with the given ID.
func (c UserCollection) Find(id int64) (UserRecord, bool) {
	for _, u := range c {
		if u.ID == id {
			return u, true
		}
	}
	return UserRecord{}, false
}

// Merge returns a new collection where the record matching p.ID has the
// patch's present fields written over it. Order and length are preserved.
// If no record matches, the returned collection equals c and ok is false.
func (c UserCollection) Merge(p UserPatch) (merged UserCollection, ok bool) {
	merged = c.Clone()
	for i := range merged {
		if merged[i].ID == p.ID {
			merged[i] = p.Apply(merged[i])
			return merged, true
		}
	}
	return merged, false
}

// Remove returns a new collection without the record with the given ID.
func (c UserCollection) Remove(id int64) (remaining UserCollection, ok bool) {
	remaining = make(UserCollection, 0, len(c))
	for _, u := range c {
		if u.ID == id {
			ok = true
			continue
		}
		remaining = append(remaining, u)
	}
	return remaining, ok
}

// Filter returns, in order, the records whose "first last" name contains
// term, ignoring case. An empty term returns every record.
func (c UserCollection) Filter(term string) UserCollection {
	needle := strings.ToLower(term)
	out := make(UserCollection, 0, len(c))
	for _, u := range c {
		if strings.Contains(strings.ToLower(u.FirstName+" "+u.LastName), needle) {
			out = append(out, u)
		}
	}
	return out
}

// Equal reports whether both collections hold the same records in the same order.
func (c UserCollection) Equal(other UserCollection) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}
