/*
 * snapshot.go, part of rsint.
 *
 * Copyright 2023 The rsint developers
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

//snapshot.go implements a compressed binary restart format for grid stacks.
//Collocated potentials are expensive to rebuild, so long-running
//calculations checkpoint the stack between self-consistency epochs.

package grid

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

//snapMagic identifies the format; bump the trailing digit on layout changes.
const snapMagic uint32 = 0x52534731 // "RSG1"

//WriteSnapshot writes the stack to w as a zstd-compressed binary snapshot.
//Only the owned data of each level is written; a distributed stack must be
//snapshot by every rank (or gathered first by the caller).
func WriteSnapshot(w io.Writer, s *Stack) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return Error{err.Error(), "", []string{"WriteSnapshot"}, true}
	}
	le := binary.LittleEndian
	write := func(data any) {
		if err == nil {
			err = binary.Write(zw, le, data)
		}
	}
	write(snapMagic)
	write(int64(len(s.Levels)))
	write(int64(len(s.Cutoffs)))
	write(s.Cutoffs)
	for _, l := range s.Levels {
		write(int64(l.Rung))
		write(l.H[:])
		write(l.Origin[:])
		for d := 0; d < 3; d++ {
			write(int64(l.Npts[d]))
		}
		for d := 0; d < 3; d++ {
			write(int64(l.Lo[d]))
		}
		for d := 0; d < 3; d++ {
			write(int64(l.Hi[d]))
		}
		write(l.Distributed)
		write(int64(len(l.Data)))
		write(l.Data)
	}
	if err != nil {
		zw.Close()
		return Error{err.Error(), "", []string{"WriteSnapshot"}, true}
	}
	if err := zw.Close(); err != nil {
		return Error{err.Error(), "", []string{"WriteSnapshot"}, true}
	}
	return nil
}

//ReadSnapshot reads a stack written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (*Stack, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, Error{err.Error(), "", []string{"ReadSnapshot"}, true}
	}
	defer zr.Close()
	le := binary.LittleEndian
	read := func(data any) {
		if err == nil {
			err = binary.Read(zr, le, data)
		}
	}
	var magic uint32
	read(&magic)
	if err == nil && magic != snapMagic {
		return nil, Error{fmt.Sprintf("bad snapshot magic %#x", magic), "", []string{"ReadSnapshot"}, true}
	}
	var nlev, ncut int64
	read(&nlev)
	read(&ncut)
	if err != nil {
		return nil, Error{err.Error(), "", []string{"ReadSnapshot"}, true}
	}
	s := &Stack{Cutoffs: make([]float64, ncut)}
	read(s.Cutoffs)
	for i := int64(0); i < nlev; i++ {
		l := new(Level)
		var rung int64
		read(&rung)
		read(l.H[:])
		read(l.Origin[:])
		var v int64
		for d := 0; d < 3; d++ {
			read(&v)
			l.Npts[d] = int(v)
		}
		for d := 0; d < 3; d++ {
			read(&v)
			l.Lo[d] = int(v)
		}
		for d := 0; d < 3; d++ {
			read(&v)
			l.Hi[d] = int(v)
		}
		read(&l.Distributed)
		var nd int64
		read(&nd)
		if err != nil {
			return nil, Error{err.Error(), "", []string{"ReadSnapshot"}, true}
		}
		l.Rung = int(rung)
		l.Data = make([]float64, nd)
		read(l.Data)
		s.Levels = append(s.Levels, l)
	}
	if err != nil {
		return nil, Error{err.Error(), "", []string{"ReadSnapshot"}, true}
	}
	return s, nil
}

//SaveSnapshot and LoadSnapshot are file-path conveniences over
//WriteSnapshot and ReadSnapshot.
func SaveSnapshot(fname string, s *Stack) error {
	f, err := os.Create(fname)
	if err != nil {
		return Error{err.Error(), fname, []string{"SaveSnapshot"}, true}
	}
	defer f.Close()
	if err := WriteSnapshot(f, s); err != nil {
		return errDecorate(err, "SaveSnapshot")
	}
	return nil
}

func LoadSnapshot(fname string) (*Stack, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, Error{err.Error(), fname, []string{"LoadSnapshot"}, true}
	}
	defer f.Close()
	s, err := ReadSnapshot(f)
	if err != nil {
		return nil, errDecorate(err, "LoadSnapshot")
	}
	return s, nil
}

func errDecorate(err error, caller string) error {
	err2, ok := err.(Error)
	if !ok {
		return Error{err.Error(), "", []string{caller}, true}
	}
	err2.Decorate(caller)
	return err2
}
