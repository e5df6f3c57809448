package weather

import (
	"testing"

	"ShiftBot/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultThresholds() Thresholds {
	return Thresholds{
		PrecipMin:   0.1,
		StrongRain:  2.0,
		DailyTotal:  5.0,
		ClearCloud:  50,
		BrokenCloud: 80,
	}
}

// flat builds a window of n hours with uniform cloud cover and no rain.
func flat(n int, temp, cloud float64) []Sample {
	samples := make([]Sample, n)
	for i := range samples {
		samples[i] = Sample{Hour: 9 + i, Temp: temp, CloudCover: cloud}
	}
	return samples
}

func TestClassify_NoSamples(t *testing.T) {
	assert.Nil(t, Classify(nil, defaultThresholds()))
	assert.Nil(t, Classify([]Sample{}, defaultThresholds()))
}

func TestClassify_SecondHighestTemperature(t *testing.T) {
	samples := flat(4, 20, 10)
	samples[0].Temp = 31.44 // spike hour, must be discarded
	samples[1].Temp = 27.26

	summary := Classify(samples, defaultThresholds())
	require.NotNil(t, summary)
	assert.Equal(t, 27.3, summary.Temp, "second-highest value, rounded to one decimal")
}

func TestClassify_SingleSampleUsesItsTemperature(t *testing.T) {
	summary := Classify([]Sample{{Hour: 12, Temp: 18.07, CloudCover: 20}}, defaultThresholds())
	require.NotNil(t, summary)
	assert.Equal(t, 18.1, summary.Temp)
	assert.Equal(t, entity.LabelClear, summary.Label)
}

func TestClassify_CloudBands(t *testing.T) {
	tests := []struct {
		name  string
		cloud float64
		want  string
	}{
		{"clear at band edge", 50, entity.LabelClear},
		{"partly cloudy", 65, entity.LabelPartlyCloudy},
		{"partly cloudy at band edge", 80, entity.LabelPartlyCloudy},
		{"overcast", 95, entity.LabelOvercast},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := Classify(flat(10, 15, tt.cloud), defaultThresholds())
			require.NotNil(t, summary)
			assert.Equal(t, tt.want, summary.Label)
		})
	}
}

func TestClassify_HeavyPrecipByStrongHours(t *testing.T) {
	samples := flat(10, 15, 90)
	samples[2].Precipitation = 2.0
	samples[3].Precipitation = 2.5

	summary := Classify(samples, defaultThresholds())
	require.NotNil(t, summary)
	assert.Equal(t, entity.LabelHeavyPrecip, summary.Label)
}

func TestClassify_HeavyPrecipByDailyTotal(t *testing.T) {
	// Steady drizzle: no single strong hour, but the day total crosses.
	samples := flat(10, 15, 90)
	for i := range samples {
		samples[i].Precipitation = 0.6
	}

	summary := Classify(samples, defaultThresholds())
	require.NotNil(t, summary)
	assert.Equal(t, entity.LabelHeavyPrecip, summary.Label)
}

func TestClassify_BriefRainOnMostlyClearDay(t *testing.T) {
	samples := flat(10, 22, 20)
	samples[4].Precipitation = 0.4

	summary := Classify(samples, defaultThresholds())
	require.NotNil(t, summary)
	assert.Equal(t, entity.LabelClearBriefRain, summary.Label)
}

func TestClassify_BriefPrecipOnCloudyDay(t *testing.T) {
	samples := flat(10, 22, 90)
	samples[4].Precipitation = 0.4

	summary := Classify(samples, defaultThresholds())
	require.NotNil(t, summary)
	assert.Equal(t, entity.LabelBriefPrecip, summary.Label)
}

func TestClassify_ClearMajorityIsStrict(t *testing.T) {
	// Exactly half the hours clear does not count as a clear majority.
	samples := flat(10, 22, 20)
	for i := 5; i < 10; i++ {
		samples[i].CloudCover = 90
	}
	samples[0].Precipitation = 0.4

	summary := Classify(samples, defaultThresholds())
	require.NotNil(t, summary)
	assert.Equal(t, entity.LabelBriefPrecip, summary.Label)
}

func TestClassify_StrongRainBelowThresholdsStaysBrief(t *testing.T) {
	// One strong hour is not enough for the heavy label.
	samples := flat(10, 15, 90)
	samples[2].Precipitation = 2.4

	summary := Classify(samples, defaultThresholds())
	require.NotNil(t, summary)
	assert.Equal(t, entity.LabelBriefPrecip, summary.Label)
}
