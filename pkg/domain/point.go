package domain

import "time"

// Point is one recorded sample of a labelled output.
type Point struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Frame is the set of values read from every output in one sampling pass.
type Frame struct {
	Seq    int64     `json:"seq"`
	Time   time.Time `json:"time"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}
