package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Location is one entry typed by the user, e.g. "London,GB" or "Abuja".
type Location struct {
	City        string
	CountryCode string // optional, ISO 3166 alpha-2
}

// Query renders the geocoding "q" parameter.
func (l Location) Query() string {
	if l.CountryCode == "" {
		return l.City
	}
	return l.City + "," + l.CountryCode
}

func (l Location) String() string {
	if l.CountryCode == "" {
		return l.City
	}
	return l.City + ", " + l.CountryCode
}

// CityInfo is a geocoded city as written to city_coordinates.json.
type CityInfo struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country"`
	State     *string `json:"state"`
}

// Main mirrors the "main" block shared by weather and forecast responses.
type Main struct {
	Temp    float64 `json:"temp"`
	TempMin float64 `json:"temp_min"`
	TempMax float64 `json:"temp_max"`
}

// CurrentWeather is a /data/2.5/weather response.
// Only the fields the charts need are decoded; Raw keeps the body as received.
type CurrentWeather struct {
	Name string `json:"name"`
	Main Main   `json:"main"`

	Raw json.RawMessage `json:"-"`
}

// DecodeCurrent parses a current weather body and keeps a copy of it.
func DecodeCurrent(body []byte) (CurrentWeather, error) {
	var w CurrentWeather
	if err := json.Unmarshal(body, &w); err != nil {
		return CurrentWeather{}, err
	}
	w.Raw = append(json.RawMessage(nil), body...)
	return w, nil
}

// MarshalJSON writes the upstream body back unchanged.
func (w CurrentWeather) MarshalJSON() ([]byte, error) {
	if len(w.Raw) > 0 {
		return w.Raw, nil
	}
	type plain CurrentWeather
	return json.Marshal(plain(w))
}

// ForecastTimeLayout is the layout of the "dt_txt" field.
const ForecastTimeLayout = "2006-01-02 15:04:05"

// ForecastEntry is one 3-hour step of a forecast.
type ForecastEntry struct {
	DtTxt string `json:"dt_txt"`
	Main  Main   `json:"main"`
}

// Time parses DtTxt as UTC.
func (e ForecastEntry) Time() (time.Time, error) {
	t, err := time.Parse(ForecastTimeLayout, e.DtTxt)
	if err != nil {
		return time.Time{}, fmt.Errorf("dt_txt %q: %w", e.DtTxt, err)
	}
	return t, nil
}

// Forecast is a /data/2.5/forecast response.
type Forecast struct {
	List []ForecastEntry `json:"list"`

	Raw json.RawMessage `json:"-"`
}

// DecodeForecast parses a forecast body and keeps a copy of it.
func DecodeForecast(body []byte) (Forecast, error) {
	var f Forecast
	if err := json.Unmarshal(body, &f); err != nil {
		return Forecast{}, err
	}
	f.Raw = append(json.RawMessage(nil), body...)
	return f, nil
}

// MarshalJSON writes the upstream body back unchanged.
func (f Forecast) MarshalJSON() ([]byte, error) {
	if len(f.Raw) > 0 {
		return f.Raw, nil
	}
	type plain Forecast
	return json.Marshal(plain(f))
}
