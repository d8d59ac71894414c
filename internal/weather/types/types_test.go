package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocation_Query(t *testing.T) {
	assert.Equal(t, "London,GB", Location{City: "London", CountryCode: "GB"}.Query())
	assert.Equal(t, "Abuja", Location{City: "Abuja"}.Query())
	assert.Equal(t, "London, GB", Location{City: "London", CountryCode: "GB"}.String())
	assert.Equal(t, "Abuja", Location{City: "Abuja"}.String())
}

func TestCityInfo_NullState(t *testing.T) {
	blob, err := json.Marshal(CityInfo{Name: "Abuja", Latitude: 9.06, Longitude: 7.49, Country: "NG"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Abuja","latitude":9.06,"longitude":7.49,"country":"NG","state":null}`, string(blob))
}

func TestDecodeCurrent_PassThrough(t *testing.T) {
	body := []byte(`{"name":"London","main":{"temp":12.5,"temp_min":10,"temp_max":14.2,"humidity":80},"cod":200,"extra":{"a":[1,2]}}`)

	w, err := DecodeCurrent(body)
	require.NoError(t, err)
	assert.Equal(t, "London", w.Name)
	assert.Equal(t, 12.5, w.Main.Temp)
	assert.Equal(t, 10.0, w.Main.TempMin)
	assert.Equal(t, 14.2, w.Main.TempMax)

	out, err := json.Marshal(w)
	require.NoError(t, err)
	assert.JSONEq(t, string(body), string(out))
}

func TestDecodeCurrent_Invalid(t *testing.T) {
	_, err := DecodeCurrent([]byte(`{"name":`))
	assert.Error(t, err)
}

func TestDecodeForecast(t *testing.T) {
	body := []byte(`{"cod":"200","list":[{"dt":1,"dt_txt":"2026-10-18 12:00:00","main":{"temp":7.5}},{"dt_txt":"2026-10-18 15:00:00","main":{"temp":9}}],"city":{"name":"Abuja"}}`)

	f, err := DecodeForecast(body)
	require.NoError(t, err)
	require.Len(t, f.List, 2)
	assert.Equal(t, 7.5, f.List[0].Main.Temp)

	ts, err := f.List[1].Time()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC), ts)

	out, err := json.Marshal([]Forecast{f})
	require.NoError(t, err)
	assert.JSONEq(t, "["+string(body)+"]", string(out))
}

func TestForecastEntry_BadTime(t *testing.T) {
	_, err := ForecastEntry{DtTxt: "tomorrow"}.Time()
	assert.Error(t, err)
}
