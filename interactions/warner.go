/*
 * warner.go, part of gocontacts.
 *
 * Copyright 2024 Raul Mera <rauldotmeraatusachdotcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package interactions

import (
	"log"
	"sync"

	chem "github.com/rmera/gocontacts"
)

//Warner reports non-fatal problems once per distinct cause, so long trajectories
//don't flood the logs. It is safe for concurrent use.
type Warner struct {
	mu       sync.Mutex
	seen     map[string]bool
	warnings []*chem.MissingAttributeWarning
	logger   *log.Logger
}

//NewWarner returns a Warner that logs to logger, or to the standard logger if logger is nil.
func NewWarner(logger *log.Logger) *Warner {
	if logger == nil {
		logger = log.Default()
	}
	return &Warner{seen: make(map[string]bool), logger: logger}
}

//Warn logs w, unless a warning with the same cause was already reported. It returns
//true if w was logged.
func (W *Warner) Warn(w *chem.MissingAttributeWarning) bool {
	key := w.Attribute + "|" + w.Predicate + "|" + w.Error()
	W.mu.Lock()
	defer W.mu.Unlock()
	if W.seen[key] {
		return false
	}
	W.seen[key] = true
	W.warnings = append(W.warnings, w)
	W.logger.Printf("Warning: %s (atom %d and any other atom with the same problem will be skipped)", w.Error(), w.Atom)
	return true
}

//Warnings returns the warnings reported so far, one per cause.
func (W *Warner) Warnings() []*chem.MissingAttributeWarning {
	W.mu.Lock()
	defer W.mu.Unlock()
	ret := make([]*chem.MissingAttributeWarning, len(W.warnings))
	copy(ret, W.warnings)
	return ret
}
