package vmap2

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// InvalidID is the sentinel id value that can never be assigned or
// stored: ids 0..99 are reserved for metadata (spec.md §3.1) and a
// fresh id is always max(last, 99)+1, so 0xFFFFFFFF never legitimately
// occurs and is rejected by put.
const InvalidID uint32 = 0xFFFFFFFF

// firstID is the first id handed out by a fresh store: ids <=99 are
// reserved for metadata, so object ids start at 100.
const firstID uint32 = 100

// StoreError reports a failed store operation: a delete of a missing
// id, or a put with an invalid id.
type StoreError struct {
	Op  string // "put" or "del"
	ID  uint32
	Msg string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("vmap2: store %s(%d): %s", e.Op, e.ID, e.Msg)
}

// store is the object-id-keyed backing storage for a Map, matching
// original_source/vmap2/vmap2.h's VMap2, which picks between a
// BerkeleyDB file and an in-memory map depending on whether a
// filename was given. BerkeleyDB has no maintained Go binding in this
// toolkit's dependency pack, so the file-backed variant here is an
// append-only record log replayed into an in-memory object map instead
// (rewritten compactly by compact, below).
type store interface {
	get(id uint32) (*Obj, bool)
	put(id uint32, o *Obj) error
	del(id uint32) error
	nextID() uint32
	all() map[uint32]*Obj
	close() error
}

// memStore keeps every object in memory; used when a Map is opened
// with no filename.
type memStore struct {
	objs map[uint32]*Obj
	next uint32
}

func newMemStore() *memStore {
	return &memStore{objs: map[uint32]*Obj{}, next: firstID}
}

func (s *memStore) get(id uint32) (*Obj, bool) { o, ok := s.objs[id]; return o, ok }
func (s *memStore) put(id uint32, o *Obj) error {
	if id == InvalidID {
		return &StoreError{Op: "put", ID: id, Msg: "invalid id"}
	}
	s.objs[id] = o
	if id >= s.next {
		s.next = id + 1
	}
	return nil
}
func (s *memStore) del(id uint32) error {
	if _, ok := s.objs[id]; !ok {
		return &StoreError{Op: "del", ID: id, Msg: "no such object"}
	}
	delete(s.objs, id)
	return nil
}
func (s *memStore) nextID() uint32        { id := s.next; s.next++; return id }
func (s *memStore) all() map[uint32]*Obj  { return s.objs }
func (s *memStore) close() error          { return nil }

// fileStore persists objects to an append-only record log: each
// record is a uint32 id, a uint8 tombstone flag, a uint32 length and
// the Pack-encoded payload (absent for tombstones). The full file is
// replayed into memory on open; deletes and updates are appended
// rather than rewritten in place, matching mapsoft2's preference for
// a simple sequential log over in-place BerkeleyDB edits for this
// port. compact rewrites the log to just the live records.
type fileStore struct {
	f    *os.File
	objs map[uint32]*Obj
	next uint32
}

func openFileStore(path string) (*fileStore, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("vmap2: open %s: %w", path, err)
	}
	s := &fileStore{f: f, objs: map[uint32]*Obj{}, next: firstID}
	if err := s.replay(); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

func (s *fileStore) replay() error {
	if _, err := s.f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	r := bufio.NewReader(s.f)
	for {
		var id uint32
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("vmap2: corrupt log (id): %w", err)
		}
		var tomb uint8
		if err := binary.Read(r, binary.LittleEndian, &tomb); err != nil {
			return fmt.Errorf("vmap2: corrupt log (tombstone flag): %w", err)
		}
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return fmt.Errorf("vmap2: corrupt log (length): %w", err)
		}
		payload := make([]byte, n)
		if _, err := io.ReadFull(r, payload); err != nil {
			return fmt.Errorf("vmap2: corrupt log (payload): %w", err)
		}
		if tomb != 0 {
			delete(s.objs, id)
		} else {
			o, err := Unpack(payload)
			if err != nil {
				return err
			}
			s.objs[id] = o
		}
		if id >= s.next {
			s.next = id + 1
		}
	}
	if _, err := s.f.Seek(0, io.SeekEnd); err != nil {
		return err
	}
	return nil
}

func (s *fileStore) appendRecord(id uint32, tomb uint8, payload []byte) error {
	var hdr [9]byte
	binary.LittleEndian.PutUint32(hdr[0:4], id)
	hdr[4] = tomb
	binary.LittleEndian.PutUint32(hdr[5:9], uint32(len(payload)))
	if _, err := s.f.Write(hdr[:]); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := s.f.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

func (s *fileStore) get(id uint32) (*Obj, bool) { o, ok := s.objs[id]; return o, ok }

func (s *fileStore) put(id uint32, o *Obj) error {
	if id == InvalidID {
		return &StoreError{Op: "put", ID: id, Msg: "invalid id"}
	}
	payload, err := Pack(o)
	if err != nil {
		return err
	}
	if err := s.appendRecord(id, 0, payload); err != nil {
		return err
	}
	s.objs[id] = o
	if id >= s.next {
		s.next = id + 1
	}
	return nil
}

func (s *fileStore) del(id uint32) error {
	if _, ok := s.objs[id]; !ok {
		return &StoreError{Op: "del", ID: id, Msg: "no such object"}
	}
	if err := s.appendRecord(id, 1, nil); err != nil {
		return err
	}
	delete(s.objs, id)
	return nil
}

func (s *fileStore) nextID() uint32 {
	id := s.next
	s.next++
	return id
}

func (s *fileStore) all() map[uint32]*Obj { return s.objs }

func (s *fileStore) close() error { return s.f.Close() }

// compact rewrites the log file to contain only the current live
// objects, discarding accumulated tombstones and superseded updates.
func (s *fileStore) compact() error {
	tmp := s.f.Name() + ".compact"
	nf, err := os.OpenFile(tmp, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	ns := &fileStore{f: nf, objs: map[uint32]*Obj{}, next: s.next}
	for id, o := range s.objs {
		if err := ns.put(id, o); err != nil {
			nf.Close()
			os.Remove(tmp)
			return err
		}
	}
	nf.Close()
	s.f.Close()
	if err := os.Rename(tmp, s.f.Name()); err != nil {
		return err
	}
	reopened, err := openFileStore(s.f.Name())
	if err != nil {
		return err
	}
	*s = *reopened
	return nil
}
