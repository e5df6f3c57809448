package weather

import (
	"math"
	"sort"

	"ShiftBot/entity"
)

// Sample is one hourly observation inside the work window.
type Sample struct {
	Hour          int
	Temp          float64
	CloudCover    float64
	Precipitation float64
}

// Thresholds tune the label classifier.
type Thresholds struct {
	PrecipMin   float64
	StrongRain  float64
	DailyTotal  float64
	ClearCloud  float64
	BrokenCloud float64
}

// Classify reduces the work-window samples to a shift summary. The reported
// temperature is the second-highest hourly value, which discards a single
// spike hour. Returns nil when there are no samples to classify.
func Classify(samples []Sample, th Thresholds) *entity.WeatherSummary {
	if len(samples) == 0 {
		return nil
	}

	temps := make([]float64, len(samples))
	for i, s := range samples {
		temps[i] = s.Temp
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(temps)))
	temp := temps[0]
	if len(temps) >= 2 {
		temp = temps[1]
	}
	temp = math.Round(temp*10) / 10

	hours := len(samples)
	var totalPrecip, cloudSum float64
	var rainyHours, strongHours, clearHours int
	for _, s := range samples {
		totalPrecip += s.Precipitation
		cloudSum += s.CloudCover
		if s.Precipitation >= th.PrecipMin {
			rainyHours++
		}
		if s.Precipitation >= th.StrongRain {
			strongHours++
		}
		if s.CloudCover <= th.ClearCloud {
			clearHours++
		}
	}
	avgCloud := cloudSum / float64(hours)

	var label string
	switch {
	case strongHours >= 2 || totalPrecip >= th.DailyTotal:
		label = entity.LabelHeavyPrecip
	case rainyHours >= 1:
		if clearHours > hours/2 {
			label = entity.LabelClearBriefRain
		} else {
			label = entity.LabelBriefPrecip
		}
	case avgCloud <= th.ClearCloud:
		label = entity.LabelClear
	case avgCloud <= th.BrokenCloud:
		label = entity.LabelPartlyCloudy
	default:
		label = entity.LabelOvercast
	}

	return &entity.WeatherSummary{Temp: temp, Label: label}
}
