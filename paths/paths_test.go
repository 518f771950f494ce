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

package paths_test

import (
	"strings"
	"testing"

	"github.com/pepsim/pepsim/paths"
	"github.com/pepsim/pepsim/test"
)

func TestPaths(t *testing.T) {
	pth, err := paths.ResourcePath("foo/bar", "baz")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pth, ".pepsim/foo/bar/baz")

	pth, err = paths.ResourcePath("foo/bar", "")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pth, ".pepsim/foo/bar")

	pth, err = paths.ResourcePath("", "baz")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pth, ".pepsim/baz")

	pth, err = paths.ResourcePath("", "")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pth, ".pepsim")
}

func TestUniqueFilename(t *testing.T) {
	fn := paths.UniqueFilename("trace", "hello")
	test.ExpectSuccess(t, strings.HasPrefix(fn, "trace_hello_"))

	fn = paths.UniqueFilename("trace", "  ")
	test.ExpectSuccess(t, strings.HasPrefix(fn, "trace_"))
	test.ExpectFailure(t, strings.HasPrefix(fn, "trace__"))
}
