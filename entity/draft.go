package entity

// ReportDraft is the in-progress shift report attached to a user. Numeric
// fields stay nil until the matching dialogue step writes them; Overwrite is
// only raised inside the date-collision branch.
type ReportDraft struct {
	Date         string   `json:"date" bson:"date"`
	Author       string   `json:"author" bson:"author"`
	Wolt         *float64 `json:"wolt" bson:"wolt"`
	Bolt         *float64 `json:"bolt" bson:"bolt"`
	Yandex       *float64 `json:"yandex" bson:"yandex"`
	Temp         *float64 `json:"temp" bson:"temp"`
	WeatherLabel string   `json:"weather_label" bson:"weather_label"`
	Overwrite    bool     `json:"overwrite" bson:"overwrite"`
}

// DraftPatch is a partial draft update; nil fields are left untouched.
type DraftPatch struct {
	Date         *string
	Author       *string
	Wolt         *float64
	Bolt         *float64
	Yandex       *float64
	Temp         *float64
	WeatherLabel *string
	Overwrite    *bool
}

// Apply merges the patch into the draft. Validation happens before the call,
// in the conversation engine.
func (d *ReportDraft) Apply(p DraftPatch) {
	if p.Date != nil {
		d.Date = *p.Date
	}
	if p.Author != nil {
		d.Author = *p.Author
	}
	if p.Wolt != nil {
		d.Wolt = p.Wolt
	}
	if p.Bolt != nil {
		d.Bolt = p.Bolt
	}
	if p.Yandex != nil {
		d.Yandex = p.Yandex
	}
	if p.Temp != nil {
		d.Temp = p.Temp
	}
	if p.WeatherLabel != nil {
		d.WeatherLabel = *p.WeatherLabel
	}
	if p.Overwrite != nil {
		d.Overwrite = *p.Overwrite
	}
}

// Reset restores the canonical empty draft.
func (d *ReportDraft) Reset() {
	*d = ReportDraft{}
}

// Record projects a completed draft into a report record. Unwritten numeric
// fields come out as zero; the dialogue flow guarantees they are set before
// submission is reachable.
func (d *ReportDraft) Record() ReportRecord {
	rec := ReportRecord{
		Date:         d.Date,
		Author:       d.Author,
		WeatherLabel: d.WeatherLabel,
	}
	if d.Wolt != nil {
		rec.Wolt = *d.Wolt
	}
	if d.Bolt != nil {
		rec.Bolt = *d.Bolt
	}
	if d.Yandex != nil {
		rec.Yandex = *d.Yandex
	}
	if d.Temp != nil {
		rec.Temp = *d.Temp
	}
	return rec
}
