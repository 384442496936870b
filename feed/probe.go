package feed

import (
	"errors"
	"time"
)

// LatestAvailable walks backward from today looking for the most
// recent day the most-read endpoint has data for. The first success
// wins. Days that 404 are skipped; any other failure aborts the probe
// rather than being mistaken for "no data". If the whole lookback
// window is empty the probe returns ErrNoData.
func (c *Client) LatestAvailable(today time.Time, lookback int) (time.Time, error) {
	if lookback <= 0 {
		lookback = DefaultLookback
	}

	for delta := 0; delta < lookback; delta++ {
		day := today.AddDate(0, 0, -delta)
		_, err := c.MostRead(day)
		if err == nil {
			return day, nil
		}
		if errors.Is(err, ErrNotFound) {
			c.InfoLog.Printf("probe: no data for %s\n", day.Format("2006-01-02"))
			continue
		}
		return time.Time{}, err
	}

	return time.Time{}, ErrNoData
}
