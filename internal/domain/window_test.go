package domain_test

import (
	"testing"
	"time"

	"github.com/dom/groupbuilder/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestValidateWindow(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		wantErr bool
	}{
		{name: "valid window", start: "18:00", end: "20:00"},
		{name: "one minute", start: "09:59", end: "10:00"},
		{name: "full day", start: "00:00", end: "23:59"},
		{name: "zero length", start: "10:00", end: "10:00", wantErr: true},
		{name: "inverted", start: "20:00", end: "18:00", wantErr: true},
		{name: "missing padding", start: "9:00", end: "10:00", wantErr: true},
		{name: "hour out of range", start: "10:00", end: "24:00", wantErr: true},
		{name: "minute out of range", start: "10:60", end: "11:00", wantErr: true},
		{name: "not a time", start: "ab:cd", end: "11:00", wantErr: true},
		{name: "empty", start: "", end: "", wantErr: true},
		{name: "with seconds", start: "10:00:00", end: "11:00:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.ValidateWindow(tt.start, tt.end)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidWindow)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestParseWeekday(t *testing.T) {
	for i, wd := range domain.AllWeekdays {
		got, err := domain.ParseWeekday(string(wd))
		require.NoError(t, err)
		assert.Equal(t, wd, got)
		assert.Equal(t, i, got.Index())
	}

	for _, bad := range []string{"monday", "Mon", "", "Montag"} {
		_, err := domain.ParseWeekday(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidWeekday, bad)
	}
}

func TestWeekdayOf(t *testing.T) {
	assert.Equal(t, domain.Monday, domain.WeekdayOf(date(t, "2024-01-01")))
	assert.Equal(t, domain.Wednesday, domain.WeekdayOf(date(t, "2024-01-03")))
	assert.Equal(t, domain.Sunday, domain.WeekdayOf(date(t, "2024-01-07")))
}

// Back-to-back windows are distinct for merging but still match across users.
func TestWindowOverlap_BoundaryAsymmetry(t *testing.T) {
	a := domain.Window{Start: "09:00", End: "10:00"}
	b := domain.Window{Start: "10:00", End: "11:00"}

	assert.False(t, a.OverlapsHalfOpen(b))
	assert.False(t, b.OverlapsHalfOpen(a))
	assert.True(t, a.OverlapsClosed(b))
	assert.True(t, b.OverlapsClosed(a))

	shared := a.Intersect(b)
	assert.Equal(t, "10:00", shared.Start)
	assert.Equal(t, "10:00", shared.End)
}

func TestWindowOverlap(t *testing.T) {
	tests := []struct {
		name     string
		a, b     domain.Window
		halfOpen bool
		closed   bool
	}{
		{
			name:     "partial overlap",
			a:        domain.Window{Start: "18:00", End: "20:00"},
			b:        domain.Window{Start: "19:00", End: "21:00"},
			halfOpen: true,
			closed:   true,
		},
		{
			name:     "contained",
			a:        domain.Window{Start: "18:00", End: "22:00"},
			b:        domain.Window{Start: "19:00", End: "20:00"},
			halfOpen: true,
			closed:   true,
		},
		{
			name:     "identical",
			a:        domain.Window{Start: "18:00", End: "20:00"},
			b:        domain.Window{Start: "18:00", End: "20:00"},
			halfOpen: true,
			closed:   true,
		},
		{
			name: "disjoint",
			a:    domain.Window{Start: "08:00", End: "09:00"},
			b:    domain.Window{Start: "10:00", End: "11:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.halfOpen, tt.a.OverlapsHalfOpen(tt.b))
			assert.Equal(t, tt.halfOpen, tt.b.OverlapsHalfOpen(tt.a))
			assert.Equal(t, tt.closed, tt.a.OverlapsClosed(tt.b))
			assert.Equal(t, tt.closed, tt.b.OverlapsClosed(tt.a))
		})
	}
}

func TestExpireDate(t *testing.T) {
	tests := []struct {
		name    string
		created string
		weekday domain.Weekday
		want    string
	}{
		{name: "same day", created: "2024-01-01", weekday: domain.Monday, want: "2024-01-01"},
		{name: "next week", created: "2024-01-03", weekday: domain.Monday, want: "2024-01-08"},
		{name: "later this week", created: "2024-01-03", weekday: domain.Friday, want: "2024-01-05"},
		{name: "sunday from monday", created: "2024-01-01", weekday: domain.Sunday, want: "2024-01-07"},
		{name: "across month end", created: "2024-01-31", weekday: domain.Monday, want: "2024-02-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.ExpireDate(date(t, tt.created), tt.weekday)
			assert.Equal(t, tt.want, got.Format(domain.DateLayout))
		})
	}
}

func TestEntry_IsExpired(t *testing.T) {
	entry := &domain.Entry{
		Weekday:     domain.Monday,
		CreatedDate: datatypes.Date(date(t, "2024-01-01")),
	}

	assert.False(t, entry.IsExpired(date(t, "2024-01-01")))
	assert.True(t, entry.IsExpired(date(t, "2024-01-02")))

	// Time of day on the evaluation date is ignored.
	lateMonday := time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)
	assert.False(t, entry.IsExpired(lateMonday))

	wednesday := &domain.Entry{
		Weekday:     domain.Monday,
		CreatedDate: datatypes.Date(date(t, "2024-01-03")),
	}
	assert.False(t, wednesday.IsExpired(date(t, "2024-01-08")))
	assert.True(t, wednesday.IsExpired(date(t, "2024-01-09")))
}
