package interp

import (
	"fmt"
	"time"

	"github.com/everruns/bashkit-sub001/scope"
)

func scopeScalar(s string) scope.Value { return scope.NewScalar(s) }

func itoa(n int) string { return fmt.Sprintf("%d", n) }

func timeNow() time.Time { return time.Now() }

func formatDuration(d time.Duration) string {
	m := int(d.Minutes())
	s := d.Seconds() - float64(m)*60
	return fmt.Sprintf("%dm%.3fs", m, s)
}
