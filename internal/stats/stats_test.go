package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSnapshotAggregatesObservations(t *testing.T) {
	c := New(func() (int64, error) { return 3, nil })

	c.ObserveIngest(1)
	c.ObserveIngest(2)
	c.ObserveIngest(1)
	c.ObserveFetch()
	c.SetActiveSubscriptions(4)
	c.IncSubscriberOverflow()
	c.IncSubscriberOverflow()
	c.ObserveSweep(5, time.Now())

	snap := c.Snapshot()
	require.Equal(t, int64(3), snap.TotalNotes)
	require.Equal(t, int64(2), snap.UniqueTags)
	require.Equal(t, int64(4), snap.ActiveSubscriptions)
	require.Equal(t, int64(2), snap.OverflowCount)
	require.Equal(t, int64(3), snap.IngestRequests)
	require.Equal(t, int64(1), snap.FetchRequests)
	require.Equal(t, int64(5), snap.LastSweepCount)
	require.Greater(t, snap.LastSweepMs, int64(0))
}
