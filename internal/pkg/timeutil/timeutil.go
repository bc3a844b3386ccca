package timeutil

import "time"

const Day = 24 * time.Hour

func NowUnix() int64 {
	return time.Now().Unix()
}

// AddDays returns ts shifted by n whole days, in unix seconds.
func AddDays(ts int64, n int) int64 {
	return ts + int64(n)*int64(Day/time.Second)
}
