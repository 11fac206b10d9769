package tokens

import (
	"errors"
	"fmt"
	"iter"
	"strings"
)

var (
	ErrInvalidHandle = errors.New("invalid token handle")
	ErrRetired       = errors.New("token handle was retired")
	ErrOutOfRange    = errors.New("run extends past the end of the stream")
)

// Handle addresses a node of a Stream. Handles are never reused: once a node
// is deleted or replaced its handle stays retired.
type Handle int

const None Handle = -1

type node struct {
	tok     Token
	prev    Handle
	next    Handle
	retired bool
}

// Stream is an ordered, mutable sequence of tokens stored in an arena.
type Stream struct {
	nodes []node
	head  Handle
	tail  Handle
	live  int
}

func New(toks ...Token) *Stream {
	s := &Stream{head: None, tail: None}
	for _, t := range toks {
		s.Append(t)
	}
	return s
}

func (s *Stream) Append(t Token) Handle {
	h := Handle(len(s.nodes))
	s.nodes = append(s.nodes, node{tok: t, prev: s.tail, next: None})
	if s.tail != None {
		s.nodes[s.tail].next = h
	} else {
		s.head = h
	}
	s.tail = h
	s.live++
	return h
}

func (s *Stream) Head() Handle {
	return s.head
}

func (s *Stream) Len() int {
	return s.live
}

func (s *Stream) check(h Handle) error {
	if h < 0 || int(h) >= len(s.nodes) {
		return fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}
	if s.nodes[h].retired {
		return fmt.Errorf("%w: %d", ErrRetired, h)
	}
	return nil
}

// Valid reports whether h addresses a live node.
func (s *Stream) Valid(h Handle) bool {
	return s.check(h) == nil
}

// Next returns the successor of h, or None at the end of the stream or when h
// is not live.
func (s *Stream) Next(h Handle) Handle {
	if !s.Valid(h) {
		return None
	}
	return s.nodes[h].next
}

func (s *Stream) Prev(h Handle) Handle {
	if !s.Valid(h) {
		return None
	}
	return s.nodes[h].prev
}

func (s *Stream) At(h Handle) (Token, error) {
	if err := s.check(h); err != nil {
		return nil, err
	}
	return s.nodes[h].tok, nil
}

// Set overwrites the token stored at h without changing its identity.
func (s *Stream) Set(h Handle, t Token) error {
	if err := s.check(h); err != nil {
		return err
	}
	s.nodes[h].tok = t
	return nil
}

// DeleteRun removes the count nodes that follow anchor. The stream is left
// untouched when fewer than count nodes follow it.
func (s *Stream) DeleteRun(anchor Handle, count int) error {
	if err := s.check(anchor); err != nil {
		return err
	}
	if count <= 0 {
		return nil
	}
	return s.cut(s.nodes[anchor].next, count)
}

// Remove deletes first and the count-1 nodes after it.
func (s *Stream) Remove(first Handle, count int) error {
	if err := s.check(first); err != nil {
		return err
	}
	if count <= 0 {
		return nil
	}
	return s.cut(first, count)
}

func (s *Stream) cut(first Handle, count int) error {
	last := first
	for i := 1; i <= count; i++ {
		if last == None {
			return fmt.Errorf("%w: wanted %d nodes, found %d", ErrOutOfRange, count, i-1)
		}
		if i < count {
			last = s.nodes[last].next
		}
	}

	before := s.nodes[first].prev
	after := s.nodes[last].next

	for h := first; ; {
		next := s.nodes[h].next
		s.retire(h)
		if h == last {
			break
		}
		h = next
	}

	s.link(before, after)
	return nil
}

// Replace substitutes t for the node at anchor. The returned handle addresses
// the new node; anchor is retired.
func (s *Stream) Replace(anchor Handle, t Token) (Handle, error) {
	if err := s.check(anchor); err != nil {
		return None, err
	}
	old := s.nodes[anchor]
	h := Handle(len(s.nodes))
	s.nodes = append(s.nodes, node{tok: t, prev: old.prev, next: old.next})
	s.retire(anchor)
	s.live++
	s.link(old.prev, h)
	s.link(h, old.next)
	return h, nil
}

// FindNext scans forward starting at from, inclusive, and returns the first
// node whose token matches pred.
func (s *Stream) FindNext(from Handle, pred func(Token) bool) (Handle, bool) {
	if !s.Valid(from) {
		return None, false
	}
	for h := from; h != None; h = s.nodes[h].next {
		if pred(s.nodes[h].tok) {
			return h, true
		}
	}
	return None, false
}

// All iterates over the live nodes in order. The stream must not be mutated
// structurally during iteration; Set is fine.
func (s *Stream) All() iter.Seq2[Handle, Token] {
	return func(yield func(Handle, Token) bool) {
		for h := s.head; h != None; h = s.nodes[h].next {
			if !yield(h, s.nodes[h].tok) {
				return
			}
		}
	}
}

func (s *Stream) Tokens() []Token {
	result := make([]Token, 0, s.live)
	for _, t := range s.All() {
		result = append(result, t)
	}
	return result
}

func (s *Stream) String() string {
	var sb strings.Builder
	for h, t := range s.All() {
		fmt.Fprintf(&sb, "[%d] %s\n", h, t)
	}
	return sb.String()
}

func (s *Stream) retire(h Handle) {
	s.nodes[h].retired = true
	s.nodes[h].prev = None
	s.nodes[h].next = None
	s.live--
}

func (s *Stream) link(a, b Handle) {
	if a == None {
		s.head = b
	} else {
		s.nodes[a].next = b
	}
	if b == None {
		s.tail = a
	} else {
		s.nodes[b].prev = a
	}
}
