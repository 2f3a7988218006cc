package trackers

import (
	"encoding/gob"
	"log"
	"os"

	ts "github.com/samuelfneumann/gopole/timestep"
)

// EpisodeLength tracks and saves the lengths of episodes in a run.
// Note that an episode must finish for this Tracker to save its data.
// If the last episode in a run does not finish, that episode's length
// will not be saved.
type EpisodeLength struct {
	episodeLengths []float64
	filename       string
}

// NewEpisodeLength returns a new EpisodeLength Tracker which will save
// its data at the specified location filename
func NewEpisodeLength(filename string) Tracker {
	var tracker EpisodeLength
	tracker.filename = filename
	return &tracker
}

// Track tracks the episode lengths in a run. When this function is
// called, it caches the episode length if the timestep passed to it is
// the last timestep in the episode. Otherwise, it waits to receive the
// last timestep in an episode before caching and storing the episode
// lengths, for saving later.
func (e *EpisodeLength) Track(step ts.TimeStep) {
	if step.Last() {
		e.episodeLengths = append(e.episodeLengths, float64(step.Number))
	}
}

// Save saves the data tracked by the EpisodeLength Tracker to disk.
func (e *EpisodeLength) Save() {
	// Open the file to save to
	file, err := os.Create(e.filename)
	if err != nil {
		log.Fatalf("could not open save file: %v", err)
	}
	defer file.Close()

	// Encode and save the file
	en := gob.NewEncoder(file)
	if err = en.Encode(e.episodeLengths); err != nil {
		log.Fatalf("could not encode episode length data: %v", err)
	}
}
