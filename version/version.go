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

// Package version reports the version of the program. The version number is
// set at link time by the makefile. When the number is not set the vcs
// information embedded by the Go toolchain is used instead.
package version

import (
	"fmt"
	"runtime/debug"
)

// The name to use when referring to the application
const ApplicationName = "Pepsim"

// if number is empty then the project was probably not built using the makefile
var number string

// the vcs revision. suffixed with "+dirty" if the source has uncommitted
// changes
var revision string

// "unreleased" if the project has been built without the makefile but with
// vcs information. "local" if there is neither
var version string

// Version returns the version string, the revision string and whether this is a
// numbered "release" version.
func Version() (string, string, bool) {
	return version, revision, number != "" && version == number
}

// String returns a one line summary of the version suitable for printing.
func String() string {
	v, r, release := Version()
	if release {
		return fmt.Sprintf("%s %s", ApplicationName, v)
	}
	return fmt.Sprintf("%s %s (%s)", ApplicationName, v, r)
}

func fromBuildInfo(info *debug.BuildInfo, ok bool) (vcs bool, rev string) {
	if !ok {
		return false, ""
	}

	var modified bool
	for _, v := range info.Settings {
		switch v.Key {
		case "vcs":
			vcs = true
		case "vcs.revision":
			rev = v.Value
		case "vcs.modified":
			modified = v.Value == "true"
		}
	}

	if rev != "" && modified {
		rev = fmt.Sprintf("%s+dirty", rev)
	}
	return vcs, rev
}

func init() {
	vcs, rev := fromBuildInfo(debug.ReadBuildInfo())

	revision = rev
	if revision == "" {
		revision = "no revision information"
	}

	switch {
	case number != "":
		version = number
	case vcs:
		version = "unreleased"
	default:
		version = "local"
	}
}
