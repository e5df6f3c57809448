package entity

// Weather labels shown in reports. The manual fallback keyboard and the
// classifier both resolve to this fixed set.
const (
	LabelClear          = "Ясно или малооблачно"
	LabelClearBriefRain = "Ясно или малооблачно (был кратковременный дождь)"
	LabelPartlyCloudy   = "Облачно с прояснениями"
	LabelOvercast       = "Пасмурно без осадков"
	LabelBriefPrecip    = "Пасмурно с кратковременными осадками"
	LabelHeavyPrecip    = "Пасмурно с сильными осадками"
)

// WeatherSummary is the single figure + label pair a shift report carries.
type WeatherSummary struct {
	Temp  float64 `json:"temp"`
	Label string  `json:"label"`
}
