package entity

// ReportRecord is one finalized shift report row in the system of record.
type ReportRecord struct {
	Date         string  `json:"date"`
	Author       string  `json:"author"`
	Wolt         float64 `json:"wolt"`
	Bolt         float64 `json:"bolt"`
	Yandex       float64 `json:"yandex"`
	Temp         float64 `json:"temp"`
	WeatherLabel string  `json:"weather_label"`
}
