package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftApplyMergesFieldByField(t *testing.T) {
	var d ReportDraft

	date, author := "01.05.2026", "Anna K.(42)"
	d.Apply(DraftPatch{Date: &date, Author: &author})

	wolt := 1200.5
	d.Apply(DraftPatch{Wolt: &wolt})

	assert.Equal(t, "01.05.2026", d.Date)
	assert.Equal(t, "Anna K.(42)", d.Author)
	require.NotNil(t, d.Wolt)
	assert.Equal(t, 1200.5, *d.Wolt)
	assert.Nil(t, d.Bolt, "untouched fields stay nil")
	assert.False(t, d.Overwrite)
}

func TestDraftApplyOverwritesPrevious(t *testing.T) {
	temp := 15.0
	d := ReportDraft{Temp: &temp, WeatherLabel: LabelClear}

	newTemp := 20.5
	label := LabelOvercast
	d.Apply(DraftPatch{Temp: &newTemp, WeatherLabel: &label})

	assert.Equal(t, 20.5, *d.Temp)
	assert.Equal(t, LabelOvercast, d.WeatherLabel)
}

func TestDraftReset(t *testing.T) {
	wolt := 1.0
	d := ReportDraft{Date: "01.05.2026", Wolt: &wolt, Overwrite: true}

	d.Reset()

	assert.Equal(t, ReportDraft{}, d)
}

func TestDraftRecordProjection(t *testing.T) {
	wolt, bolt, yandex, temp := 1.5, 2.5, 3.5, 24.0
	d := ReportDraft{
		Date: "01.05.2026", Author: "Anna K.(42)",
		Wolt: &wolt, Bolt: &bolt, Yandex: &yandex, Temp: &temp,
		WeatherLabel: LabelClear,
	}

	rec := d.Record()

	assert.Equal(t, ReportRecord{
		Date: "01.05.2026", Author: "Anna K.(42)",
		Wolt: 1.5, Bolt: 2.5, Yandex: 3.5, Temp: 24.0,
		WeatherLabel: LabelClear,
	}, rec)
}

func TestDraftRecordToleratesMissingNumbers(t *testing.T) {
	d := ReportDraft{Date: "01.05.2026"}

	rec := d.Record()

	assert.Zero(t, rec.Wolt)
	assert.Zero(t, rec.Temp)
}

func TestNewUserNameShortening(t *testing.T) {
	u := NewUser(42, "Анна", "Каренина")
	assert.Equal(t, "Анна К.", u.Name)
	assert.Equal(t, GuestRole, u.Role)
	assert.Equal(t, StateGuest, u.State)

	noLast := NewUser(43, "Anna", "")
	assert.Equal(t, "Anna", noLast.Name)

	assert.Equal(t, "Анна К.(42)", u.Label())
}
