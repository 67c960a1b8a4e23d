package domain

import "github.com/google/uuid"

// MatchRecord is one overlap between a requester's own entry and another
// user's entry. Spec and Keystone describe the other party's entry.
type MatchRecord struct {
	OwnEntryID    uuid.UUID `json:"ownEntryId"`
	OtherEntryID  uuid.UUID `json:"otherEntryId"`
	Username      string    `json:"username"`
	CharacterName string    `json:"character"`
	Weekday       Weekday   `json:"weekday"`
	OverlapStart  string    `json:"start"`
	OverlapEnd    string    `json:"end"`
	Spec          string    `json:"spec"`
	Keystone      string    `json:"keystone"`
}

// MatchKey groups entries that can possibly match each other.
type MatchKey struct {
	Weekday  Weekday
	Keystone string
}

func (e *Entry) MatchKey() MatchKey {
	return MatchKey{Weekday: e.Weekday, Keystone: e.Keystone}
}

// MatchKeys returns the distinct match keys of entries, in first-seen order.
func MatchKeys(entries []*Entry) []MatchKey {
	seen := make(map[MatchKey]bool, len(entries))
	keys := make([]MatchKey, 0, len(entries))
	for _, e := range entries {
		k := e.MatchKey()
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}

// FindMatches pairs every own entry with every candidate of another user that
// shares weekday and keystone and whose closed interval intersects it.
// A candidate overlapping several own entries is reported once per own entry.
//
// Candidates should carry their User and Character so the record can name the
// other party; missing relations leave the names empty.
func FindMatches(own, candidates []*Entry) []MatchRecord {
	index := make(map[MatchKey][]*Entry, len(candidates))
	for _, c := range candidates {
		k := c.MatchKey()
		index[k] = append(index[k], c)
	}

	matches := make([]MatchRecord, 0)
	for _, o := range own {
		ow := o.Window()
		for _, c := range index[o.MatchKey()] {
			if c.UserID == o.UserID {
				continue
			}
			cw := c.Window()
			if !ow.OverlapsClosed(cw) {
				continue
			}
			shared := ow.Intersect(cw)
			rec := MatchRecord{
				OwnEntryID:   o.ID,
				OtherEntryID: c.ID,
				Weekday:      o.Weekday,
				OverlapStart: shared.Start,
				OverlapEnd:   shared.End,
				Spec:         c.Spec,
				Keystone:     c.Keystone,
			}
			if c.User != nil {
				rec.Username = c.User.DisplayName
			}
			if c.Character != nil {
				rec.CharacterName = c.Character.Name
			}
			matches = append(matches, rec)
		}
	}
	return matches
}
