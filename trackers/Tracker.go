// Package trackers implements Trackers, which track and save data
// generated while running episodes
package trackers

import (
	"encoding/gob"
	"log"
	"os"

	ts "github.com/samuelfneumann/gopole/timestep"
)

// Interface Tracker keeps track of episode data and saves the data
// after the run has finished. Callers send each TimeStep to a Tracker
// using its Track() method; the Tracker determines which data from the
// TimeStep it caches. The Save() function then takes all cached data
// and saves it to disk.
type Tracker interface {
	Track(t ts.TimeStep)
	Save()
}

// LoadData loads and returns the data saved by a Tracker
func LoadData(filename string) []float64 {
	// Open file
	file, err := os.Open(filename)
	if err != nil {
		log.Fatalf("could not open data file: %v", err)
	}
	defer file.Close()

	// Create the decoder and the variable to store the data in
	dec := gob.NewDecoder(file)
	var data []float64

	// Decode the data
	err = dec.Decode(&data)
	if err != nil {
		log.Fatalf("could not decode data: %v", err)
	}

	return data
}
