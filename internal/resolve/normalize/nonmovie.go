package normalize

import "strings"

// nonMovieMarkers flag calendar entries that are cinema events rather than
// films. Checked only when no director or actor signal is present, so a
// real film whose title happens to contain a marker still resolves when it
// carries person hints.
var nonMovieMarkers = []string{
	"filmquiz",
	"pubquiz",
	"quiz",
	"masterclass",
	"festival",
	"marathon",
	"sing-along",
	"sing along",
	"singalong",
	"q&a",
	"q & a",
	"workshop",
	"college",
	"lezing",
	"talkshow",
	"voorpremiere + nagesprek",
}

// IsProbablyNonMovieEvent reports whether a lookup is for a cinema event
// that is not a film at all, so the resolver can skip the network entirely.
func IsProbablyNonMovieEvent(title string, directors, actors []string) bool {
	if len(directors) > 0 || len(actors) > 0 {
		return false
	}
	lowered := strings.ToLower(title)
	for _, marker := range nonMovieMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
