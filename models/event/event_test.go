package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStartAndEnd(t *testing.T) {
	ev := Event{
		Date:      time.Date(2026, 5, 10, 0, 0, 0, 0, time.Local),
		StartTime: "09:00",
		EndTime:   "12:30",
	}

	start, err := ev.SessionStart()
	require.NoError(t, err)
	assert.Equal(t, 9, start.Hour())
	assert.Equal(t, 0, start.Minute())
	assert.Equal(t, time.Date(2026, time.May, 10, 0, 0, 0, 0, time.Local).YearDay(), start.YearDay())

	end, err := ev.SessionEnd()
	require.NoError(t, err)
	assert.Equal(t, 12, end.Hour())
	assert.Equal(t, 30, end.Minute())
	assert.True(t, end.After(start))
}

func TestSessionStart_InvalidTime(t *testing.T) {
	ev := Event{
		Date:      time.Date(2026, 5, 10, 0, 0, 0, 0, time.Local),
		StartTime: "not a time",
	}

	_, err := ev.SessionStart()
	assert.Error(t, err)
}

func TestRoleAllowed(t *testing.T) {
	open := Event{}
	assert.True(t, open.RoleAllowed("student"), "an empty allow-list admits everyone")

	restricted := Event{AllowedRoles: RoleList{"educator", "admin"}}
	assert.True(t, restricted.RoleAllowed("educator"))
	assert.True(t, restricted.RoleAllowed("admin"))
	assert.False(t, restricted.RoleAllowed("student"))
}

func TestRoleList_ScanAndValue(t *testing.T) {
	rl := RoleList{"student", "educator"}

	value, err := rl.Value()
	require.NoError(t, err)

	var decoded RoleList
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, rl, decoded)

	var empty RoleList
	require.NoError(t, empty.Scan(nil))
	assert.Nil(t, empty)
}
