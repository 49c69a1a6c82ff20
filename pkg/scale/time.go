package scale

import (
	"math"
	"sort"
	"time"
)

// defaultTickCount is the tick density used by Nice.
const defaultTickCount = 10

// DefaultTimeDomain is the domain used when there are no instants to fit.
func DefaultTimeDomain() (start, end time.Time) {
	start = time.Unix(0, 0).UTC()

	return start, start.Add(24 * time.Hour)
}

// Time maps instants onto a numeric range. Calendar-aware operations (Nice,
// Ticks, TickFormat) work in the scale's location.
type Time struct {
	d0, d1 time.Time
	r0, r1 float64
	loc    *time.Location
}

// NewTime creates a time scale from [d0, d1] to [r0, r1] in UTC.
func NewTime(d0, d1 time.Time, r0, r1 float64) *Time {
	return &Time{d0: d0, d1: d1, r0: r0, r1: r1, loc: time.UTC}
}

// In sets the location used for calendar boundaries.
func (s *Time) In(loc *time.Location) *Time {
	if loc != nil {
		s.loc = loc
	}

	return s
}

// Location returns the calendar location.
func (s *Time) Location() *time.Location { return s.loc }

// Domain returns the input bounds.
func (s *Time) Domain() (d0, d1 time.Time) { return s.d0, s.d1 }

// Range returns the output bounds.
func (s *Time) Range() (r0, r1 float64) { return s.r0, s.r1 }

// SetDomain replaces the input bounds.
func (s *Time) SetDomain(d0, d1 time.Time) { s.d0, s.d1 = d0, d1 }

// SetRange replaces the output bounds.
func (s *Time) SetRange(r0, r1 float64) { s.r0, s.r1 = r0, r1 }

// Map projects t into the range. A zero-width domain maps to the middle of
// the range.
func (s *Time) Map(t time.Time) float64 {
	span := s.d1.Sub(s.d0)
	if span == 0 {
		return interpolate(s.r0, s.r1, 0.5)
	}

	return interpolate(s.r0, s.r1, float64(t.Sub(s.d0))/float64(span))
}

// Invert projects a range value back to an instant. The range endpoints map
// exactly onto the domain endpoints.
func (s *Time) Invert(v float64) time.Time {
	switch {
	case v == s.r0 || s.r0 == s.r1:
		return s.d0.In(s.loc)
	case v == s.r1:
		return s.d1.In(s.loc)
	}

	frac := (v - s.r0) / (s.r1 - s.r0)
	offset := time.Duration(math.Round(frac * float64(s.d1.Sub(s.d0))))

	return s.d0.Add(offset).In(s.loc)
}

// Nice widens the domain outward to boundaries of the interval that Ticks
// would pick for about ten ticks.
func (s *Time) Nice() *Time {
	start, stop := s.d0, s.d1

	reverse := stop.Before(start)
	if reverse {
		start, stop = stop, start
	}

	iv := pickInterval(start, stop, defaultTickCount)
	start = iv.floor(start.In(s.loc))
	stop = iv.ceil(stop.In(s.loc))

	if reverse {
		start, stop = stop, start
	}

	s.d0, s.d1 = start, stop

	return s
}

// Ticks returns calendar-aligned instants within the domain, about count of
// them.
func (s *Time) Ticks(count int) []time.Time {
	if count <= 0 {
		return nil
	}

	start, stop := s.d0.In(s.loc), s.d1.In(s.loc)

	reverse := stop.Before(start)
	if reverse {
		start, stop = stop, start
	}

	iv := pickInterval(start, stop, count)

	var out []time.Time

	for t := iv.ceil(start); !t.After(stop); t = iv.next(t) {
		out = append(out, t)
	}

	if reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}

	return out
}

// TickFormat labels t with the coarsest unit it is aligned to: year, month,
// week, day, hour, minute, second or millisecond.
func (s *Time) TickFormat(t time.Time) string {
	return MultiFormat(t.In(s.loc))
}

// MultiFormat labels t by the coarsest calendar boundary it sits on.
func MultiFormat(t time.Time) string {
	unitFloor := func(u unit) time.Time { return interval{unit: u, step: 1}.floor(t) }

	switch {
	case unitFloor(unitSecond).Before(t):
		return t.Format(".000")
	case unitFloor(unitMinute).Before(t):
		return t.Format(":05")
	case unitFloor(unitHour).Before(t):
		return t.Format("03:04")
	case unitFloor(unitDay).Before(t):
		return t.Format("03 PM")
	case unitFloor(unitMonth).Before(t):
		if unitFloor(unitWeek).Before(t) {
			return t.Format("Mon 02")
		}

		return t.Format("Jan 02")
	case unitFloor(unitYear).Before(t):
		return t.Format("January")
	default:
		return t.Format("2006")
	}
}

type unit int

const (
	unitMillisecond unit = iota
	unitSecond
	unitMinute
	unitHour
	unitDay
	unitWeek
	unitMonth
	unitYear
)

const (
	durationDay   = 24 * time.Hour
	durationWeek  = 7 * durationDay
	durationMonth = 30 * durationDay
	durationYear  = 365 * durationDay
)

// interval is a calendar unit taken step at a time. Aligned instants have
// the unit's field divisible by step.
type interval struct {
	unit unit
	step int
	span time.Duration
}

var tickIntervals = []interval{
	{unitSecond, 1, time.Second},
	{unitSecond, 5, 5 * time.Second},
	{unitSecond, 15, 15 * time.Second},
	{unitSecond, 30, 30 * time.Second},
	{unitMinute, 1, time.Minute},
	{unitMinute, 5, 5 * time.Minute},
	{unitMinute, 15, 15 * time.Minute},
	{unitMinute, 30, 30 * time.Minute},
	{unitHour, 1, time.Hour},
	{unitHour, 3, 3 * time.Hour},
	{unitHour, 6, 6 * time.Hour},
	{unitHour, 12, 12 * time.Hour},
	{unitDay, 1, durationDay},
	{unitDay, 2, 2 * durationDay},
	{unitWeek, 1, durationWeek},
	{unitMonth, 1, durationMonth},
	{unitMonth, 3, 3 * durationMonth},
	{unitYear, 1, durationYear},
}

// pickInterval chooses the interval whose span is closest to the ideal
// spacing for count ticks.
func pickInterval(start, stop time.Time, count int) interval {
	target := stop.Sub(start).Abs() / time.Duration(count)
	if target == 0 {
		return interval{unit: unitMillisecond, step: 1, span: time.Millisecond}
	}

	i := sort.Search(len(tickIntervals), func(i int) bool { return tickIntervals[i].span > target })

	switch i {
	case len(tickIntervals):
		years := TickStep(yearsOf(start), yearsOf(stop), count)

		return interval{unit: unitYear, step: max(1, int(math.Round(years))), span: durationYear}
	case 0:
		ms := TickStep(float64(start.UnixMilli()), float64(stop.UnixMilli()), count)

		return interval{unit: unitMillisecond, step: max(1, int(math.Round(ms))), span: time.Millisecond}
	}

	if float64(target)/float64(tickIntervals[i-1].span) < float64(tickIntervals[i].span)/float64(target) {
		return tickIntervals[i-1]
	}

	return tickIntervals[i]
}

func yearsOf(t time.Time) float64 {
	return float64(t.UnixMilli()) / float64(durationYear.Milliseconds())
}

func (iv interval) floor(t time.Time) time.Time {
	loc := t.Location()
	y, mo, d := t.Date()
	h, mi, sec := t.Clock()
	k := iv.step

	switch iv.unit {
	case unitMillisecond:
		ms := t.UnixMilli()
		ms -= mod(ms, int64(k))

		return time.UnixMilli(ms).In(loc)
	case unitSecond:
		return time.Date(y, mo, d, h, mi, sec-sec%k, 0, loc)
	case unitMinute:
		return time.Date(y, mo, d, h, mi-mi%k, 0, 0, loc)
	case unitHour:
		return time.Date(y, mo, d, h-h%k, 0, 0, 0, loc)
	case unitDay:
		return time.Date(y, mo, d-(d-1)%k, 0, 0, 0, 0, loc)
	case unitWeek:
		return time.Date(y, mo, d-int(t.Weekday()), 0, 0, 0, 0, loc)
	case unitMonth:
		m := int(mo)

		return time.Date(y, time.Month(m-(m-1)%k), 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(y-int(mod(int64(y), int64(k))), time.January, 1, 0, 0, 0, 0, loc)
	}
}

func (iv interval) ceil(t time.Time) time.Time {
	f := iv.floor(t)
	if f.Equal(t) {
		return f
	}

	return iv.next(f)
}

// next returns the first aligned instant after the aligned instant t.
func (iv interval) next(t time.Time) time.Time {
	k := iv.step

	var stepped time.Time

	switch iv.unit {
	case unitMillisecond:
		stepped = t.Add(time.Duration(k) * time.Millisecond)
	case unitSecond:
		stepped = t.Add(time.Duration(k) * time.Second)
	case unitMinute:
		stepped = t.Add(time.Duration(k) * time.Minute)
	case unitHour:
		stepped = t.Add(time.Duration(k) * time.Hour)
	case unitDay:
		stepped = t.AddDate(0, 0, k)
	case unitWeek:
		stepped = t.AddDate(0, 0, 7*k)
	case unitMonth:
		stepped = t.AddDate(0, k, 0)
	default:
		stepped = t.AddDate(k, 0, 0)
	}

	return iv.floor(stepped)
}

func mod(a, b int64) int64 {
	r := a % b
	if r < 0 {
		r += b
	}

	return r
}
