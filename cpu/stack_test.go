package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStack_Push(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	assert.True(s.Empty())
	assert.False(s.Full())

	err := s.Push(0x234)
	assert.NoError(err)
	assert.False(s.Empty())
	assert.Equal(1, len(s.Data))
	assert.Equal(uint16(0x234), s.Data[0])
}

func TestStack_Pop(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	s.Push(0x234)
	s.Push(0xabc)

	val, err := s.Pop()
	assert.NoError(err)
	assert.Equal(uint16(0xabc), val)
	assert.Equal(1, len(s.Data))

	val, err = s.Pop()
	assert.NoError(err)
	assert.Equal(uint16(0x234), val)
	assert.Equal(0, len(s.Data))
}

func TestStack_Pop_Empty(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	val, err := s.Pop()
	assert.ErrorIs(err, ErrStackUnderflow)
	assert.Equal(uint16(0), val)
}

func TestStack_Peek(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	_, ok := s.Peek()
	assert.False(ok)

	s.Push(0x300)
	s.Push(0x400)
	val, ok := s.Peek()
	assert.True(ok)
	assert.Equal(uint16(0x400), val)
	assert.Equal(2, s.Depth())
}

func TestStack_Full(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	for n := range STACK_LIMIT {
		assert.NoError(s.Push(uint16(n)))
	}
	assert.True(s.Full())

	err := s.Push(0xfff)
	assert.ErrorIs(err, ErrStackOverflow)
	assert.Equal(STACK_LIMIT, s.Depth())

	val, ok := s.Peek()
	assert.True(ok)
	assert.Equal(uint16(STACK_LIMIT-1), val)
}

func TestStack_Reset(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	s.Reset()
	assert.True(s.Empty())

	s.Push(0x200)
	s.Push(0x202)
	s.Reset()
	assert.True(s.Empty())
	assert.Equal(0, s.Depth())
}
