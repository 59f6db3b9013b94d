package config

import (
	"encoding/json"
	"os"
)

// Calibration is the persisted top-left corner of the control bar. Both
// regions are rebuilt from it using the fixed layout.
type Calibration struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Counter is the persisted number of completed catches.
type Counter struct {
	Catches int `json:"catches"`
}

// LoadCalibration reads a calibration record. A missing file is not an error;
// ok reports whether a record was found.
func LoadCalibration(path string) (cal Calibration, ok bool, err error) {
	ok, err = readJSON(path, &cal)
	return cal, ok, err
}

// Save writes the calibration record.
func (c Calibration) Save(path string) error { return writeJSON(path, c) }

// LoadCounter reads the catch counter. A missing file yields a zero counter.
func LoadCounter(path string) (Counter, error) {
	var c Counter
	_, err := readJSON(path, &c)
	if c.Catches < 0 {
		c.Catches = 0
	}
	return c, err
}

// Save writes the counter record.
func (c Counter) Save(path string) error { return writeJSON(path, c) }

func readJSON(path string, v any) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(v); err != nil {
		return false, err
	}
	return true, nil
}
