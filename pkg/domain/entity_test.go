package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock always returns the same instant, so tests can assert exact
// timestamps.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func testStamper(now time.Time) Stamper {
	return NewStamper(fixedClock{now: now}, NewCounter(0))
}

func TestStamperNewBase(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stamp := testStamper(now)

	base := stamp.NewBase("abc")
	assert.Equal(t, "abc", base.ID)
	assert.Equal(t, int64(1), base.Cursor)
	assert.Equal(t, now, base.DateCreated)
	assert.Equal(t, now, base.DateModified)
	assert.Nil(t, base.DateDeleted)
	assert.True(t, base.IsDirty)
	assert.False(t, base.Deleted())
}

func TestStamperCursorStrictlyIncreasing(t *testing.T) {
	stamp := testStamper(time.Now().UTC())

	var last int64
	for i := 0; i < 100; i++ {
		base := stamp.NewBase("x")
		assert.Greater(t, base.Cursor, last)
		last = base.Cursor

		stamp.Touch(&base)
		assert.Greater(t, base.Cursor, last)
		last = base.Cursor
	}
}

func TestStamperSoftDelete(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stamp := testStamper(now)

	base := stamp.NewBase("abc")
	cursorBefore := base.Cursor

	stamp.SoftDelete(&base)
	require.NotNil(t, base.DateDeleted)
	assert.Equal(t, now, *base.DateDeleted)
	assert.True(t, base.Deleted())
	assert.Greater(t, base.Cursor, cursorBefore)
}

func TestOrganisationMembership(t *testing.T) {
	stamp := testStamper(time.Now().UTC())
	org := NewOrganisation(stamp, "org-1", "Acme")

	require.NoError(t, org.AddUser(stamp, "u-1"))
	assert.True(t, org.HasUser("u-1"))
	assert.Len(t, org.Users, 1)

	// Adding the same user twice is a conflict and leaves the collection
	// untouched.
	err := org.AddUser(stamp, "u-1")
	require.Error(t, err)
	assert.Len(t, org.Users, 1)

	require.NoError(t, org.RemoveUser(stamp, "u-1"))
	assert.False(t, org.HasUser("u-1"))
	assert.Empty(t, org.Users)

	// Removing a non-member fails and leaves the collection untouched.
	err = org.RemoveUser(stamp, "u-1")
	require.Error(t, err)
	assert.Empty(t, org.Users)
}

func TestGroupMembership(t *testing.T) {
	stamp := testStamper(time.Now().UTC())
	group := NewGroup(stamp, "g-1", "Engineering", "", "org-1")

	require.NoError(t, group.AddUser(stamp, "u-1"))
	require.Error(t, group.AddUser(stamp, "u-1"))
	assert.Len(t, group.Users, 1)
	assert.Equal(t, "g-1", group.Users[0].GroupID)

	require.NoError(t, group.RemoveUser(stamp, "u-1"))
	require.Error(t, group.RemoveUser(stamp, "u-1"))
}

func TestUserSynchroniseStampsTimestamp(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stamp := testStamper(now)

	user := NewUser(stamp, "u-1", "Alice", "alice@example.com")
	require.NotNil(t, user.DateLastSynchronised)
	assert.Equal(t, now, *user.DateLastSynchronised)

	user.Synchronise(stamp, "Alice Chen", "alice@example.com")
	assert.Equal(t, "Alice Chen", user.Name)
	require.NotNil(t, user.DateLastSynchronised)
}

func TestTimestampFilterMatches(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	before := base.Add(-time.Hour)
	after := base.Add(time.Hour)

	tests := []struct {
		name   string
		filter TimestampFilter
		want   bool
	}{
		{name: "empty filter matches", filter: TimestampFilter{}, want: true},
		{name: "after bound matches", filter: TimestampFilter{ModifiedAfter: &before}, want: true},
		{name: "after bound excludes", filter: TimestampFilter{ModifiedAfter: &after}, want: false},
		{name: "before bound matches", filter: TimestampFilter{ModifiedBefore: &after}, want: true},
		{name: "before bound excludes", filter: TimestampFilter{ModifiedBefore: &before}, want: false},
		{name: "window matches", filter: TimestampFilter{ModifiedAfter: &before, ModifiedBefore: &after}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(base))
		})
	}
}
