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

package trace

// CurrentPath returns the path on the top of the path stack. Zero if the
// stack is empty or the buffer is nil.
func (b *Buffer) CurrentPath() uint16 {
	if b == nil || len(b.paths) == 0 {
		return 0
	}
	return b.paths[len(b.paths)-1]
}

// PathGuard is returned by PushPath(). Calling Pop() removes the path from
// the stack but only if it was pushed by the call to PushPath() and is still
// on top of the stack.
type PathGuard struct {
	buf    *Buffer
	path   uint16
	pushed bool
}

// PushPath pushes path onto the path stack unless it is already on top. All
// packets are tagged with the path on top of the stack. It is safe to call
// PushPath() on a nil Buffer.
//
//	g := tb.PushPath(path)
//	defer g.Pop()
func (b *Buffer) PushPath(path uint16) *PathGuard {
	g := &PathGuard{buf: b, path: path}
	if b == nil {
		return g
	}
	if len(b.paths) == 0 || b.paths[len(b.paths)-1] != path {
		b.paths = append(b.paths, path)
		g.pushed = true
	}
	return g
}

// Pop the path pushed by PushPath().
func (g *PathGuard) Pop() {
	if !g.pushed {
		return
	}
	g.pushed = false
	p := g.buf.paths
	if len(p) > 0 && p[len(p)-1] == g.path {
		g.buf.paths = p[:len(p)-1]
	}
}

// WithPath calls fn with path pushed onto the path stack.
func (b *Buffer) WithPath(path uint16, fn func()) {
	g := b.PushPath(path)
	defer g.Pop()
	fn()
}
