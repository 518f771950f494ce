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

// Package bits contains helper functions for copying and converting
// multi-byte values between byte orders. All Pep memory and register values
// are big-endian and every conversion to and from a host integer should go
// through this package.
package bits
