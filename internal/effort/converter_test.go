package effort

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConversions(t *testing.T) {
	assert.Equal(t, 5.0, WeeksToDays(1))
	assert.Equal(t, 40.0, WeeksToHours(1))
	assert.Equal(t, 0.5, DaysToWeeks(2.5))
	assert.Equal(t, 16.0, DaysToHours(2))
	assert.Equal(t, 0.25, HoursToDays(2))
	assert.Equal(t, 0.05, HoursToWeeks(2))
}

func TestRoundTrip(t *testing.T) {
	for _, w := range []float64{0, 0.1, 1, 1.0 / 3, 2.75, 13.2, 1e6} {
		assert.InDelta(t, w, DaysToWeeks(WeeksToDays(w)), 1e-9, "days %v", w)
		assert.InDelta(t, w, HoursToWeeks(WeeksToHours(w)), 1e-9, "hours %v", w)
	}
}

func TestCustomDaysPerWeek(t *testing.T) {
	c := Converter{DaysPerWeek: 4}
	assert.Equal(t, 4.0, c.WeeksToDays(1))
	assert.Equal(t, 32.0, c.WeeksToHours(1))
	assert.InDelta(t, 0.7, c.HoursToWeeks(c.WeeksToHours(0.7)), 1e-9)
}

func TestZeroConverterUsesDefault(t *testing.T) {
	var c Converter
	assert.Equal(t, 5.0, c.WeeksToDays(1))
}

func TestConvert(t *testing.T) {
	got, err := Default.Convert(10, Days, Hours)
	require.NoError(t, err)
	assert.Equal(t, 80.0, got)

	_, err = Default.Convert(1, Unit("months"), Weeks)
	assert.Error(t, err)
}

func TestParseUnit(t *testing.T) {
	u, err := ParseUnit(" Hours ")
	require.NoError(t, err)
	assert.Equal(t, Hours, u)
	_, err = ParseUnit("fortnight")
	assert.Error(t, err)
}
