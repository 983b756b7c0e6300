// Package discount evaluates the chains' time-of-day "friendly food"
// discount windows. Pure lookup, keyed by store type.
package discount

import (
	"regexp"
	"strconv"
	"time"

	"github.com/Jeffrey0117/isnowfriend/internal/models"
)

// Window is a half-open [Start, End) span of minutes since midnight.
// Windows never wrap; an overnight span is two windows.
type Window struct {
	StartMinute int
	EndMinute   int
}

type Schedule struct {
	Windows []Window
	// Label is the chain's advertised rate, e.g. "6.5折" (pay 6.5/10).
	Label string
}

// Chain schedules: 7-ELEVEN discounts evening stock from 20:00 and
// through the early morning; FamilyMart's window opens at 17:00.
var schedules = map[models.StoreType]Schedule{
	models.StoreTypeSevenEleven: {
		Windows: []Window{{20 * 60, 24 * 60}, {0, 5 * 60}},
		Label:   "6.5折",
	},
	models.StoreTypeFamilyMart: {
		Windows: []Window{{17 * 60, 24 * 60}, {0, 9 * 60}},
		Label:   "7折",
	},
}

type Info struct {
	IsFriendly bool    `json:"is_friendly"`
	Label      string  `json:"label,omitempty"`
	Rate       float64 `json:"rate"`
}

var rateLabelRe = regexp.MustCompile(`(\d+(?:\.\d+)?)折`)

// Current reports whether now falls inside the chain's discount window
// and the resulting price multiplier. Outside a window (or for an unknown
// chain) the rate is 1.
func Current(now time.Time, t models.StoreType) Info {
	sched, ok := schedules[t]
	if !ok {
		return Info{Rate: 1}
	}

	minute := now.Hour()*60 + now.Minute()
	for _, w := range sched.Windows {
		if minute >= w.StartMinute && minute < w.EndMinute {
			return Info{
				IsFriendly: true,
				Label:      sched.Label,
				Rate:       ParseRate(sched.Label),
			}
		}
	}
	return Info{Rate: 1}
}

// ParseRate extracts the multiplier from a rate label: "6.5折" means the
// buyer pays 6.5 out of 10, so the multiplier is 0.65. Unparseable labels
// fall back to 1 (no discount).
func ParseRate(label string) float64 {
	m := rateLabelRe.FindStringSubmatch(label)
	if m == nil {
		return 1
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 1
	}
	return v / 10
}
