/*
 * aggregator.go, part of gocontacts.
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

package output

import (
	"fmt"

	"github.com/rmera/gocontacts/interactions"
)

//FrameWriter is the sink for an Aggregator. TSV implements it.
type FrameWriter interface {
	WriteFrame(frame int, contacts []interactions.Contact) error
}

type result struct {
	frame    int
	contacts []interactions.Contact
}

//Aggregator receives the results of frames analyzed in any order, identified by their
//sequence number (0, 1, 2...) and sends them to a FrameWriter strictly in sequence order.
//Only the results that arrive before their turn are kept. An Aggregator is not safe for
//concurrent use.
type Aggregator struct {
	w       FrameWriter
	next    int
	pending map[int]result
}

//NewAggregator returns an Aggregator that writes to w.
func NewAggregator(w FrameWriter) *Aggregator {
	return &Aggregator{w: w, pending: make(map[int]result)}
}

//Add gives the Aggregator the contacts of the frame with sequence number seq and index
//frame in the trajectory. All the frames that are ready are written before returning.
func (A *Aggregator) Add(seq, frame int, contacts []interactions.Contact) error {
	if _, ok := A.pending[seq]; ok || seq < A.next {
		return fmt.Errorf("frame with sequence number %d given twice", seq)
	}
	A.pending[seq] = result{frame: frame, contacts: contacts}
	for {
		r, ok := A.pending[A.next]
		if !ok {
			return nil
		}
		delete(A.pending, A.next)
		if err := A.w.WriteFrame(r.frame, r.contacts); err != nil {
			return err
		}
		A.next++
	}
}

//Written returns the number of frames sent to the writer.
func (A *Aggregator) Written() int {
	return A.next
}

//Pending returns the number of frames waiting for an earlier one.
func (A *Aggregator) Pending() int {
	return len(A.pending)
}
