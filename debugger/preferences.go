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

package debugger

import (
	"os"
	"time"

	"github.com/pepsim/pepsim/curated"
	"github.com/pepsim/pepsim/hardware/cpu/isa"
	"github.com/pepsim/pepsim/logger"
	"github.com/pepsim/pepsim/paths"
	"github.com/pepsim/pepsim/prefs"
)

// Preferences defines and collates all the preference values used by the
// debugger and by the command line front end.
type Preferences struct {
	dsk *prefs.Disk

	// the architecture of machines created without an explicit architecture
	Architecture *prefs.Generic
	arch         isa.Architecture

	// the maximum number of ticks executed by a single RUN command. zero
	// means no limit
	RunLimit prefs.Int

	// whether the trace buffer is attached outside of the debugger. the
	// debugger always attaches a trace buffer
	Trace prefs.Bool

	// whether log entries are echoed to stderr as they are created
	Echo prefs.Bool

	// the length of a performance check in seconds, when no duration is
	// given on the command line
	CheckDuration prefs.Float
}

func (p *Preferences) String() string {
	return p.dsk.String()
}

// NewPreferences is the preferred method of initialisation for the
// Preferences type. Values are loaded from the preferences file in the
// resource directory.
func NewPreferences() (*Preferences, error) {
	pth, err := paths.ResourcePath("", prefs.DefaultPrefsFile)
	if err != nil {
		return nil, err
	}
	return newPreferences(pth)
}

func newPreferences(pth string) (*Preferences, error) {
	p := &Preferences{arch: isa.Pep10}

	p.Architecture = prefs.NewGeneric(
		func(s string) error {
			if s == "" {
				p.arch = isa.Pep10
				return nil
			}
			a, err := isa.ParseArchitecture(s)
			if err != nil {
				return err
			}
			p.arch = a
			return nil
		},
		func() string {
			return p.arch.String()
		},
	)

	// defaults
	p.RunLimit.Set(1000000)
	p.Trace.Set(false)
	p.Echo.Set(false)
	p.CheckDuration.Set(5.0)

	p.CheckDuration.SetHookPre(func(v prefs.Value) error {
		if v.(float64) <= 0 {
			return curated.Errorf(InvalidDuration, v)
		}
		return nil
	})

	p.Echo.SetHookPost(func(v prefs.Value) error {
		if v.(bool) {
			logger.SetEcho(os.Stderr, false)
		} else {
			logger.SetEcho(nil, false)
		}
		return nil
	})

	var err error
	p.dsk, err = prefs.NewDisk(pth)
	if err != nil {
		return nil, err
	}
	if err := p.dsk.Add("debugger.architecture", p.Architecture); err != nil {
		return nil, err
	}
	if err := p.dsk.Add("debugger.runlimit", &p.RunLimit); err != nil {
		return nil, err
	}
	if err := p.dsk.Add("debugger.trace", &p.Trace); err != nil {
		return nil, err
	}
	if err := p.dsk.Add("debugger.echo", &p.Echo); err != nil {
		return nil, err
	}
	if err := p.dsk.Add("performance.duration", &p.CheckDuration); err != nil {
		return nil, err
	}

	if err := p.dsk.Load(true); err != nil {
		return nil, err
	}

	return p, nil
}

// Arch returns the value of the Architecture preference.
func (p *Preferences) Arch() isa.Architecture {
	return p.arch
}

// Limit returns the value of the RunLimit preference.
func (p *Preferences) Limit() int {
	return p.RunLimit.Get().(int)
}

// Duration returns the value of the CheckDuration preference.
func (p *Preferences) Duration() time.Duration {
	return time.Duration(p.CheckDuration.Get().(float64) * float64(time.Second))
}

// Load preferences from disk.
func (p *Preferences) Load() error {
	return p.dsk.Load(false)
}

// Save current preferences to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}
