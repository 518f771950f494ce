// This file is part of Pepsim.
//
// Pepsim is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Pepsim is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Pepsim.  If not, see <https://www.gnu.org/licenses/>.

package performance

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pepsim/pepsim/hardware"
	"github.com/pepsim/pepsim/hardware/tick"
	"github.com/pepsim/pepsim/logger"
)

// the number of ticks between checks of the timer and context
const performanceBrake = 1000

// Check the performance of the simulator by running the supplied System for
// the specified duration.
//
// The System is reinitialised whenever it stops, for whatever reason, so the
// measurement always covers the entire duration. Results are written to
// output as ticks-per-second.
func Check(ctx context.Context, output io.Writer, profile Profile, sys *hardware.System, duration time.Duration) error {
	var numTicks int
	var numRestarts int
	var elapsed time.Duration

	runner := func() error {
		timer := time.NewTimer(duration)
		defer timer.Stop()

		start := time.Now()
		defer func() {
			elapsed = time.Since(start)
		}()

		brake := 0
		for {
			brake++
			if brake >= performanceBrake {
				brake = 0
				select {
				case <-timer.C:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
			}

			sys.CPU().UpdateStartingPC()
			_, res := sys.Tick(tick.Jump)
			if res.Error != tick.Success || sys.Halted() {
				sys.Init()
				numRestarts++
				continue
			}
			numTicks++
		}
	}

	if err := RunProfiler(profile, "performance", runner); err != nil {
		return err
	}

	logger.Logf(logger.Allow, "performance", "%d restarts during measurement", numRestarts)

	secs := elapsed.Seconds()
	_, err := fmt.Fprintf(output, "%.2f ticks/sec (%d ticks in %.2f seconds)\n", float64(numTicks)/secs, numTicks, secs)
	return err
}
