package format

import "time"

// Settings carries the display configuration formatters read. Date formats
// use PHP date() letters (Y-m-d, H:i, d.m.Y H:i).
type Settings struct {
	DateFormat  string         `json:"dateFormat" toml:"date_format"`
	TimeFormat  string         `json:"timeFormat" toml:"time_format"`
	DatimFormat string         `json:"datimFormat" toml:"datim_format"`
	Location    *time.Location `json:"-" toml:"-"`
	Yes         string         `json:"yes" toml:"yes"`
	No          string         `json:"no" toml:"no"`
}

// DefaultSettings returns ISO-like formats in UTC.
func DefaultSettings() Settings {
	return Settings{
		DateFormat:  "Y-m-d",
		TimeFormat:  "H:i",
		DatimFormat: "Y-m-d H:i",
		Location:    time.UTC,
		Yes:         "yes",
		No:          "no",
	}
}

// WithDefaults fills empty fields from DefaultSettings.
func (s Settings) WithDefaults() Settings {
	def := DefaultSettings()
	if s.DateFormat == "" {
		s.DateFormat = def.DateFormat
	}
	if s.TimeFormat == "" {
		s.TimeFormat = def.TimeFormat
	}
	if s.DatimFormat == "" {
		s.DatimFormat = def.DatimFormat
	}
	if s.Location == nil {
		s.Location = def.Location
	}
	if s.Yes == "" {
		s.Yes = def.Yes
	}
	if s.No == "" {
		s.No = def.No
	}
	return s
}
