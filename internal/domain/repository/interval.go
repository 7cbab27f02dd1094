package repository

// Interval represents bar resolution. The feature windows assume daily bars.
type Interval string

const (
	Interval1d  Interval = "1d"
	Interval1wk Interval = "1wk"
)
