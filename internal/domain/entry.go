package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Entry is one availability window: a single weekday occurrence for one
// character and spec, tagged with the keystone it can be matched on.
type Entry struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID      uuid.UUID      `json:"userId" gorm:"type:uuid;not null;index:idx_entries_tuple,priority:1"`
	CharacterID uuid.UUID      `json:"characterId" gorm:"type:uuid;not null;index:idx_entries_tuple,priority:2"`
	Spec        string         `json:"spec" gorm:"type:varchar(32);not null;index:idx_entries_tuple,priority:3"`
	Weekday     Weekday        `json:"weekday" gorm:"type:varchar(9);not null;index:idx_entries_tuple,priority:4;index:idx_entries_weekday_keystone,priority:1"`
	Keystone    string         `json:"keystone" gorm:"type:varchar(32);not null;index:idx_entries_weekday_keystone,priority:2"`
	StartTime   string         `json:"startTime" gorm:"type:varchar(5);not null"`
	EndTime     string         `json:"endTime" gorm:"type:varchar(5);not null"`
	CreatedDate datatypes.Date `json:"createdDate" gorm:"not null"`

	User      *User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	Character *Character `json:"-" gorm:"foreignKey:CharacterID;constraint:OnDelete:RESTRICT"`
}

// TableName returns the table name for GORM
func (Entry) TableName() string {
	return "entries"
}

// TupleKey identifies the (user, character, spec, weekday) slot that the
// reconciler keeps free of overlapping windows.
func (e *Entry) TupleKey() string {
	return TupleKey(e.UserID, e.CharacterID, e.Spec, e.Weekday)
}

func TupleKey(userID, characterID uuid.UUID, spec string, weekday Weekday) string {
	return userID.String() + "/" + characterID.String() + "/" + spec + "/" + string(weekday)
}

// Window returns the entry's time range.
func (e *Entry) Window() Window {
	return Window{Start: e.StartTime, End: e.EndTime}
}

// Created returns the creation date as a calendar date.
func (e *Entry) Created() time.Time {
	return DateOf(time.Time(e.CreatedDate))
}

// ExpireDate returns the date of the concrete occurrence this entry stands for.
func (e *Entry) ExpireDate() time.Time {
	return ExpireDate(e.Created(), e.Weekday)
}

// IsExpired reports whether today is past the entry's occurrence.
func (e *Entry) IsExpired(today time.Time) bool {
	return DateOf(today).After(e.ExpireDate())
}

// SortEntries orders entries by weekday index, then start time.
func SortEntries(entries []*Entry) {
	slices.SortStableFunc(entries, func(a, b *Entry) int {
		if d := a.Weekday.Index() - b.Weekday.Index(); d != 0 {
			return d
		}
		return strings.Compare(a.StartTime, b.StartTime)
	})
}
