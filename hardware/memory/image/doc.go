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

// Package image describes the contents of a machine before it is built: the
// memory regions and their initial bytes, the memory-mapped devices and the
// data waiting behind the input ports.
//
// An Image is normally created with Default() and then added to:
//
//	img := image.Default(isa.Pep9)
//	code, err := image.ParseObjectCode(f)
//	img.Load(0x0000, code)
//
// Object code is the plain text format produced by the Pep assemblers: pairs
// of hexadecimal digits separated by white space and terminated by "zz".
package image
