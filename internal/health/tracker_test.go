package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlocksAfterThreeConsecutiveFailures(t *testing.T) {
	tr := New([]string{"greenhouse"}, 3, 24*time.Hour)

	assert.False(t, tr.RecordFailure("greenhouse"))
	assert.False(t, tr.RecordFailure("greenhouse"))
	assert.True(t, tr.IsAvailable("greenhouse"))

	// third strike trips the breaker
	assert.True(t, tr.RecordFailure("greenhouse"))
	assert.False(t, tr.IsAvailable("greenhouse"))

	// a fourth failure doesn't re-report newly blocked
	assert.False(t, tr.RecordFailure("greenhouse"))
}

func TestSuccessResetsFailureCount(t *testing.T) {
	tr := New([]string{"lever"}, 3, 24*time.Hour)

	tr.RecordFailure("lever")
	tr.RecordFailure("lever")
	tr.RecordSuccess("lever")

	// counter went back to zero, so two more failures don't block
	assert.False(t, tr.RecordFailure("lever"))
	assert.False(t, tr.RecordFailure("lever"))
	assert.True(t, tr.IsAvailable("lever"))
}

func TestBlockExpiresLazilyAfterWindow(t *testing.T) {
	tr := New([]string{"remotive"}, 3, 24*time.Hour)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return base }

	for i := 0; i < 3; i++ {
		tr.RecordFailure("remotive")
	}
	require.False(t, tr.IsAvailable("remotive"))

	// 23h later: still blocked
	tr.now = func() time.Time { return base.Add(23 * time.Hour) }
	assert.False(t, tr.IsAvailable("remotive"))

	// 24h later: the availability probe itself clears the block
	tr.now = func() time.Time { return base.Add(24 * time.Hour) }
	assert.True(t, tr.IsAvailable("remotive"))

	st := tr.Statuses()
	require.Len(t, st, 1)
	assert.False(t, st[0].IsBlocked)
	assert.Zero(t, st[0].ConsecutiveFailures)
}

func TestStatusesAppliesExpiry(t *testing.T) {
	tr := New([]string{"greenhouse", "lever"}, 3, time.Hour)
	base := time.Now()
	tr.now = func() time.Time { return base }

	for i := 0; i < 3; i++ {
		tr.RecordFailure("lever")
	}

	tr.now = func() time.Time { return base.Add(2 * time.Hour) }
	st := tr.Statuses()
	require.Len(t, st, 2)
	assert.Equal(t, "greenhouse", st[0].Source)
	assert.Equal(t, "lever", st[1].Source)
	assert.False(t, st[1].IsBlocked)
}

func TestManualUnblock(t *testing.T) {
	tr := New([]string{"smartrecruiters"}, 3, 24*time.Hour)
	for i := 0; i < 3; i++ {
		tr.RecordFailure("smartrecruiters")
	}
	require.False(t, tr.IsAvailable("smartrecruiters"))

	require.NoError(t, tr.Unblock("smartrecruiters"))
	assert.True(t, tr.IsAvailable("smartrecruiters"))

	st := tr.Statuses()
	assert.Zero(t, st[0].ConsecutiveFailures)
}

func TestDisableOverridesEverything(t *testing.T) {
	tr := New([]string{"linkedinmail"}, 3, 24*time.Hour)

	require.NoError(t, tr.Disable("linkedinmail"))
	assert.False(t, tr.IsAvailable("linkedinmail"))

	require.NoError(t, tr.Enable("linkedinmail"))
	assert.True(t, tr.IsAvailable("linkedinmail"))
}

func TestUnknownSource(t *testing.T) {
	tr := New([]string{"greenhouse"}, 3, 24*time.Hour)

	assert.False(t, tr.IsAvailable("nope"))
	assert.Error(t, tr.Enable("nope"))
	assert.Error(t, tr.Disable("nope"))
	assert.Error(t, tr.Unblock("nope"))
	// recording against an unknown source is a no-op, not a panic
	assert.False(t, tr.RecordFailure("nope"))
	tr.RecordSuccess("nope")
}
