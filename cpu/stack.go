package cpu

const (
	STACK_LIMIT = 16 // Maximum call depth
)

// Stack holds return addresses of the active subroutine calls.
type Stack struct {
	Data []uint16
}

func (s *Stack) Push(value uint16) (err error) {
	if s.Full() {
		err = ErrStackOverflow
		return
	}
	s.Data = append(s.Data, value)
	return
}

func (s *Stack) Pop() (value uint16, err error) {
	value, ok := s.Peek()
	if !ok {
		err = ErrStackUnderflow
		return
	}
	s.Data = s.Data[:len(s.Data)-1]
	return
}

func (s *Stack) Empty() bool {
	return len(s.Data) == 0
}

func (s *Stack) Full() bool {
	return len(s.Data) == STACK_LIMIT
}

// Depth is the number of saved return addresses.
func (s *Stack) Depth() int {
	return len(s.Data)
}

func (s *Stack) Peek() (value uint16, ok bool) {
	if s.Empty() {
		return
	}

	return s.Data[len(s.Data)-1], true
}

func (s *Stack) Reset() {
	if len(s.Data) > 0 {
		s.Data = s.Data[:0]
	}
}
