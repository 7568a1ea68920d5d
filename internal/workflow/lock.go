package workflow

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

var ErrLocked = errors.New("another workflow run holds the state lock")

// acquireLock takes an advisory lock beside the state file so two orchestrator
// runs cannot interleave step execution or state writes. Non-blocking: a held
// lock fails fast with ErrLocked.
func acquireLock(stateFile string) (*flock.Flock, error) {
	fl := flock.New(stateFile + ".lock")
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", fl.Path(), err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", fl.Path(), ErrLocked)
	}
	return fl, nil
}
