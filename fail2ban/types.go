// Copyright (C) 2025 Mono Technologies Inc.
//
// This program is free software; you can redistribute it and/or
// modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.

package fail2ban

// JailRecord is the state of one jail as reported by a single status query.
// Records are rebuilt on every refresh and never modified afterwards.
type JailRecord struct {
	Name              string   `json:"name"`
	BannedCount       int      `json:"banned_count"`
	BannedAddresses   []string `json:"banned_addresses"` // service order, duplicates kept
	FilterDescription string   `json:"filter_description"`
	CurrentlyFailed   int      `json:"currently_failed"`
	TotalFailed       int      `json:"total_failed"`
	TotalBanned       int      `json:"total_banned"`
}

// Snapshot is every jail known to the service at one point in time.
type Snapshot struct {
	Jails []JailRecord `json:"jails"`
	// Err joins the failures met while querying; the jails above are
	// whatever could still be parsed.
	Err error `json:"-"`
	// JailErrors holds the query failure of each jail that had one.
	JailErrors map[string]error `json:"-"`
}

// JailOK reports whether the named jail answered its status query cleanly.
func (s *Snapshot) JailOK(name string) bool {
	_, failed := s.JailErrors[name]
	return !failed
}

// TotalBanned sums BannedCount over all jails.
func (s *Snapshot) TotalBanned() int {
	total := 0
	for _, j := range s.Jails {
		total += j.BannedCount
	}
	return total
}

// Find returns the jail with the given name.
func (s *Snapshot) Find(name string) (JailRecord, bool) {
	for _, j := range s.Jails {
		if j.Name == name {
			return j, true
		}
	}
	return JailRecord{}, false
}
