package tokens

import (
	"errors"
	"reflect"
	"testing"
)

func ints(values ...int64) []Token {
	var result []Token
	for _, v := range values {
		result = append(result, NewInt(v))
	}
	return result
}

func TestStream_Append(t *testing.T) {
	s := New(ints(1, 2, 3)...)
	if s.Len() != 3 {
		t.Fatalf("expected 3 nodes, got %d", s.Len())
	}
	if !reflect.DeepEqual(s.Tokens(), ints(1, 2, 3)) {
		t.Errorf("unexpected tokens: %v", s.Tokens())
	}
	if s.Prev(s.Head()) != None {
		t.Errorf("head must not have a predecessor")
	}
}

func TestStream_DeleteRun(t *testing.T) {
	testCases := []struct {
		name     string
		input    []Token
		anchor   int
		count    int
		expected []Token
		err      error
	}{
		{
			name:     "delete middle",
			input:    ints(1, 2, 3, 4),
			anchor:   0,
			count:    2,
			expected: ints(1, 4),
		},
		{
			name:     "delete to end",
			input:    ints(1, 2, 3),
			anchor:   0,
			count:    2,
			expected: ints(1),
		},
		{
			name:     "zero count",
			input:    ints(1, 2),
			anchor:   0,
			count:    0,
			expected: ints(1, 2),
		},
		{
			name:     "count exceeds remaining",
			input:    ints(1, 2, 3),
			anchor:   1,
			count:    2,
			expected: ints(1, 2, 3),
			err:      ErrOutOfRange,
		},
		{
			name:     "anchor is tail",
			input:    ints(1, 2),
			anchor:   1,
			count:    1,
			expected: ints(1, 2),
			err:      ErrOutOfRange,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := New(tc.input...)
			err := s.DeleteRun(Handle(tc.anchor), tc.count)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("expected error %v, got %v", tc.err, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(s.Tokens(), tc.expected) {
				t.Errorf("expected %v, got %v", tc.expected, s.Tokens())
			}
			if s.Len() != len(tc.expected) {
				t.Errorf("expected length %d, got %d", len(tc.expected), s.Len())
			}
		})
	}
}

func TestStream_DeletedHandlesAreRetired(t *testing.T) {
	s := New(ints(1, 2, 3)...)
	if err := s.DeleteRun(0, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.At(1); !errors.Is(err, ErrRetired) {
		t.Errorf("expected ErrRetired, got %v", err)
	}
	if s.Next(0) != 2 || s.Prev(2) != 0 {
		t.Errorf("neighbors were not relinked")
	}
	if s.Next(1) != None {
		t.Errorf("retired handle must not have a successor")
	}
}

func TestStream_Remove(t *testing.T) {
	s := New(ints(1, 2, 3, 4)...)
	if err := s.Remove(s.Head(), 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(s.Tokens(), ints(4)) {
		t.Errorf("unexpected tokens: %v", s.Tokens())
	}
	if s.Head() != 3 {
		t.Errorf("expected head 3, got %d", s.Head())
	}

	if err := s.Remove(s.Head(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 0 || s.Head() != None {
		t.Errorf("expected empty stream, got %v", s.Tokens())
	}
}

func TestStream_Replace(t *testing.T) {
	s := New(ints(1, 2, 3)...)
	h, err := s.Replace(1, Memory{Location: "_tmp0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h == 1 {
		t.Errorf("replacement must get a fresh handle")
	}
	expected := []Token{NewInt(1), Memory{Location: "_tmp0"}, NewInt(3)}
	if !reflect.DeepEqual(s.Tokens(), expected) {
		t.Errorf("expected %v, got %v", expected, s.Tokens())
	}
	if s.Valid(1) {
		t.Errorf("replaced handle must be retired")
	}
	if s.Next(0) != h || s.Prev(2) != h {
		t.Errorf("neighbors do not point at the replacement")
	}

	if _, err := s.Replace(1, NewInt(9)); !errors.Is(err, ErrRetired) {
		t.Errorf("expected ErrRetired, got %v", err)
	}
}

func TestStream_ReplaceHeadAndTail(t *testing.T) {
	s := New(ints(1, 2)...)
	head, err := s.Replace(s.Head(), NewInt(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Head() != head {
		t.Errorf("head was not updated")
	}
	tail, err := s.Replace(1, NewInt(20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Next(tail) != None {
		t.Errorf("tail must not have a successor")
	}
	s.Append(NewInt(30))
	if !reflect.DeepEqual(s.Tokens(), ints(10, 20, 30)) {
		t.Errorf("unexpected tokens: %v", s.Tokens())
	}
}

func TestStream_FindNext(t *testing.T) {
	s := New(NewInt(1), Keyword{Value: Syscall}, NewInt(2), Keyword{Value: End})
	isEnd := func(t Token) bool {
		kw, ok := t.(Keyword)
		return ok && kw.Value == End
	}

	h, ok := s.FindNext(s.Head(), isEnd)
	if !ok || h != 3 {
		t.Errorf("expected handle 3, got %d (found=%v)", h, ok)
	}

	h, ok = s.FindNext(3, isEnd)
	if !ok || h != 3 {
		t.Errorf("scan must include the starting node")
	}

	if _, ok := s.FindNext(s.Head(), func(t Token) bool { return t.Kind() == KindProcedure }); ok {
		t.Errorf("expected no match")
	}
	if _, ok := s.FindNext(None, isEnd); ok {
		t.Errorf("expected no match from None")
	}
}
