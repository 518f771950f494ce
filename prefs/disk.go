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

package prefs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pepsim/pepsim/curated"
)

// DefaultPrefsFile is the default filename of the global preferences file.
const DefaultPrefsFile = "preferences"

// WarningBoilerPlate is the first line of every preferences file.
const WarningBoilerPlate = "*** do not edit this file by hand ***"

// Sentinel error patterns.
const (
	NoPrefsFile  = "prefs: no prefs file (%s)"
	InvalidKey   = "prefs: invalid key (%s)"
	DuplicateKey = "prefs: key already added (%s)"
	LoadError    = "prefs: load: %v"
	SaveError    = "prefs: save: %v"
)

// the separator between key and value in the prefs file.
const separator = " :: "

// Disk represents preference values as stored on disk. Preference values are
// added with the Add() function and then loaded/saved with the Load() and
// Save() functions.
//
// More than one Disk instance can point to the same file. Saving will not
// clobber the entries of other instances.
type Disk struct {
	path    string
	entries map[string]pref
}

// NewDisk is the preferred method of initialisation for the Disk type.
func NewDisk(path string) (*Disk, error) {
	dsk := &Disk{
		path:    path,
		entries: make(map[string]pref),
	}
	return dsk, nil
}

func (dsk *Disk) String() string {
	s := strings.Builder{}
	for _, k := range dsk.keys() {
		s.WriteString(fmt.Sprintf("%s%s%s\n", k, separator, dsk.entries[k].String()))
	}
	return s.String()
}

// returns sorted list of keys.
func (dsk *Disk) keys() []string {
	k := make([]string, 0, len(dsk.entries))
	for key := range dsk.entries {
		k = append(k, key)
	}
	sort.Strings(k)
	return k
}

// Add preference value to list of values to store/load from disk. The key must
// not contain whitespace or the key/value separator.
func (dsk *Disk) Add(key string, p pref) error {
	if key == "" || strings.ContainsAny(key, " \t\n") || strings.Contains(key, strings.TrimSpace(separator)) {
		return curated.Errorf(InvalidKey, key)
	}
	if _, ok := dsk.entries[key]; ok {
		return curated.Errorf(DuplicateKey, key)
	}
	dsk.entries[key] = p
	return nil
}

// Reset all preference values to their default (zero) value.
func (dsk *Disk) Reset() error {
	for _, k := range dsk.keys() {
		if err := dsk.entries[k].Reset(); err != nil {
			return err
		}
	}
	return nil
}

// Save current preference values to disk. Entries in the file that do not
// belong to this Disk instance are preserved.
func (dsk *Disk) Save() error {
	data, err := readPrefsFile(dsk.path)
	if err != nil && !curated.Is(err, NoPrefsFile) {
		return curated.Errorf(SaveError, err)
	}

	for k, p := range dsk.entries {
		data[k] = p.String()
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if d := filepath.Dir(dsk.path); d != "" {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return curated.Errorf(SaveError, err)
		}
	}

	f, err := os.Create(dsk.path)
	if err != nil {
		return curated.Errorf(SaveError, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "%s\n", WarningBoilerPlate)
	for _, k := range keys {
		fmt.Fprintf(w, "%s%s%s\n", k, separator, data[k])
	}

	if err := w.Flush(); err != nil {
		return curated.Errorf(SaveError, err)
	}

	return nil
}

// Load preference values from disk. If saveOnFirstUse is true and the file
// does not exist then the current values are saved to create it.
//
// Values in the current command line group (see PushCommandLineStack())
// override values loaded from disk.
func (dsk *Disk) Load(saveOnFirstUse bool) error {
	data, err := readPrefsFile(dsk.path)
	if err != nil {
		if curated.Is(err, NoPrefsFile) && saveOnFirstUse {
			if err := dsk.Save(); err != nil {
				return err
			}
		} else {
			return err
		}
	}

	for k, v := range data {
		if p, ok := dsk.entries[k]; ok {
			if err := p.Set(v); err != nil {
				return curated.Errorf(LoadError, err)
			}
		}
	}

	for k, p := range dsk.entries {
		if ok, v := GetCommandLinePref(k); ok {
			if err := p.Set(v); err != nil {
				return curated.Errorf(LoadError, err)
			}
		}
	}

	return nil
}

// readPrefsFile returns the key/value pairs in a prefs file. The returned map
// is never nil, even on error.
func readPrefsFile(path string) (map[string]string, error) {
	data := make(map[string]string)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return data, curated.Errorf(NoPrefsFile, path)
		}
		return data, curated.Errorf(LoadError, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		l := scanner.Text()
		if l == WarningBoilerPlate {
			continue
		}
		kv := strings.SplitN(l, separator, 2)
		if len(kv) != 2 {
			continue
		}
		data[strings.TrimSpace(kv[0])] = kv[1]
	}

	if err := scanner.Err(); err != nil {
		return data, curated.Errorf(LoadError, err)
	}

	return data, nil
}
