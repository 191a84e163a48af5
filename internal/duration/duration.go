// Package duration converts YouTube's ISO-8601 durations into seconds.
package duration

import (
	"regexp"
	"strconv"
)

var pattern = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// ToSeconds parses a PT[n]H[n]M[n]S duration. Missing components count as
// zero and anything that does not match yields 0.
func ToSeconds(encoded string) int {
	matches := pattern.FindStringSubmatch(encoded)
	if matches == nil {
		return 0
	}

	return component(matches[1])*3600 + component(matches[2])*60 + component(matches[3])
}

func component(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
