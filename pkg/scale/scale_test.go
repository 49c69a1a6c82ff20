package scale_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/commitviz/pkg/scale"
)

func TestLinear_MapInvert(t *testing.T) {
	t.Parallel()

	y := scale.NewLinear(0, 24, 600, 0)

	assert.InDelta(t, 600.0, y.Map(0), 1e-9)
	assert.InDelta(t, 0.0, y.Map(24), 1e-9)
	assert.InDelta(t, 300.0, y.Map(12), 1e-9)
	assert.InDelta(t, 12.0, y.Invert(300), 1e-9)
}

func TestLinear_DegenerateDomainMapsToMidpoint(t *testing.T) {
	t.Parallel()

	s := scale.NewLinear(5, 5, 0, 100)
	assert.InDelta(t, 50.0, s.Map(5), 1e-9)
	assert.InDelta(t, 50.0, s.Map(-3), 1e-9)
}

func TestTicks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		start, stop float64
		count       int
		want        []float64
	}{
		{"hours", 0, 24, 10, []float64{0, 2, 4, 6, 8, 10, 12, 14, 16, 18, 20, 22, 24}},
		{"fractional", 0, 1, 5, []float64{0, 0.2, 0.4, 0.6, 0.8, 1}},
		{"reversed", 10, 0, 2, []float64{10, 5, 0}},
		{"single", 3, 3, 10, []float64{3}},
		{"no count", 0, 1, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, scale.Ticks(tt.start, tt.stop, tt.count))
		})
	}
}

func TestTickStep(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 2.0, scale.TickStep(0, 24, 10), 1e-9)
	assert.InDelta(t, 0.2, scale.TickStep(0, 1, 5), 1e-9)
	assert.InDelta(t, -5.0, scale.TickStep(10, 0, 2), 1e-9)
}

func TestSqrt(t *testing.T) {
	t.Parallel()

	r := scale.NewSqrt(0, 100, 2, 30)
	assert.InDelta(t, 2.0, r.Map(0), 1e-9)
	assert.InDelta(t, 30.0, r.Map(100), 1e-9)
	assert.InDelta(t, 16.0, r.Map(25), 1e-9)

	flat := scale.NewSqrt(4, 4, 2, 30)
	assert.InDelta(t, 16.0, flat.Map(4), 1e-9)
}

func TestTime_MapInvert(t *testing.T) {
	t.Parallel()

	d0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	d1 := d0.AddDate(0, 0, 10)
	s := scale.NewTime(d0, d1, 0, 100)

	assert.InDelta(t, 50.0, s.Map(d0.AddDate(0, 0, 5)), 1e-9)
	assert.True(t, s.Invert(0).Equal(d0))
	assert.True(t, s.Invert(100).Equal(d1))
	assert.True(t, s.Invert(50).Equal(d0.AddDate(0, 0, 5)))
}

func TestTime_Degenerate(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := scale.NewTime(at, at, 0, 100)

	assert.InDelta(t, 50.0, s.Map(at), 1e-9)
	assert.True(t, s.Invert(30).Equal(at))

	ticks := s.Ticks(10)
	require.Len(t, ticks, 1)
	assert.True(t, ticks[0].Equal(at))
}

func TestTime_Nice(t *testing.T) {
	t.Parallel()

	s := scale.NewTime(
		time.Date(2025, 1, 1, 3, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 31, 20, 0, 0, 0, time.UTC),
		0, 1000,
	).Nice()

	d0, d1 := s.Domain()
	assert.True(t, d0.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)), d0)
	assert.True(t, d1.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)), d1)
}

func TestTime_Ticks(t *testing.T) {
	t.Parallel()

	d0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := scale.NewTime(d0, d0.Add(24*time.Hour), 0, 1000)

	ticks := s.Ticks(4)
	require.Len(t, ticks, 5)

	for i, tick := range ticks {
		assert.True(t, tick.Equal(d0.Add(time.Duration(6*i)*time.Hour)), tick)
	}
}

func TestTime_TicksInLocation(t *testing.T) {
	t.Parallel()

	zone := time.FixedZone("", 2*60*60)
	d0 := time.Date(2025, 1, 1, 0, 0, 0, 0, zone)
	s := scale.NewTime(d0, d0.Add(24*time.Hour), 0, 1000).In(zone)

	ticks := s.Ticks(4)
	require.NotEmpty(t, ticks)
	assert.Equal(t, 0, ticks[0].Hour())
	assert.Equal(t, zone, s.Location())
}

func TestMultiFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "2025"},
		{time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), "March"},
		{time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), "Mar 09"},
		{time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "Mon 10"},
		{time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC), "03 PM"},
		{time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC), "03:30"},
		{time.Date(2025, 3, 10, 15, 30, 20, 0, time.UTC), ":20"},
		{time.Date(2025, 3, 10, 15, 30, 20, 250*int(time.Millisecond), time.UTC), ".250"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, scale.MultiFormat(tt.at), tt.at)
	}
}

func TestDefaultTimeDomain(t *testing.T) {
	t.Parallel()

	start, end := scale.DefaultTimeDomain()
	assert.True(t, start.Equal(time.Unix(0, 0)))
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}
