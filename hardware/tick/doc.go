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

// Package tick defines the cooperative step protocol that drives the
// simulation.
//
// A Recipient, usually the CPU, is advanced by one call to Clock(). Each
// call runs to completion and returns a Result describing whether execution
// should pause, how long until the recipient should be clocked again, and
// whether a fatal condition occurred.
//
// Recipients are ordered by a Scheduler. The SimpleScheduler keeps the
// recipients sorted by the tick they next run on. There is no scheduling
// goroutine: the driver asks the scheduler which recipients are due, clocks
// them and reschedules them.
package tick
