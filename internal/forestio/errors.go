package forestio

import (
	"errors"

	"github.com/distr1/pforest/internal/comm"
)

// broadcastErr is step 1 of the error reduction discipline (spec §5): root
// broadcasts whether its local I/O step failed (and why) so every rank
// commits to the same verdict before any of them returns.
func broadcastErr(c *comm.Communicator, root int, err error) error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	got := comm.BroadcastValue(c, root, msg)
	if got != "" {
		return errors.New(got)
	}
	return nil
}
