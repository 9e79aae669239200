package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		word uint16
		op   CodeOp
		text string
	}){
		{0x00e0, OP_CLS, "cls"},
		{0x00ee, OP_RET, "ret"},
		{0x1234, OP_JP, "jp 0x234"},
		{0x2456, OP_CALL, "call 0x456"},
		{0x3a12, OP_SE_IMM, "se va, 0x12"},
		{0x4b34, OP_SNE_IMM, "sne vb, 0x34"},
		{0x5120, OP_SE_REG, "se v1, v2"},
		{0x6105, OP_LD_IMM, "ld v1, 0x05"},
		{0x7fff, OP_ADD_IMM, "add vf, 0xff"},
		{0x8120, OP_LD_REG, "ld v1, v2"},
		{0x8121, OP_OR, "or v1, v2"},
		{0x8122, OP_AND, "and v1, v2"},
		{0x8123, OP_XOR, "xor v1, v2"},
		{0x8124, OP_ADD_REG, "add v1, v2"},
		{0x8125, OP_SUB, "sub v1, v2"},
		{0x8126, OP_SHR, "shr v1, v2"},
		{0x8127, OP_SUBN, "subn v1, v2"},
		{0x812e, OP_SHL, "shl v1, v2"},
		{0x9120, OP_SNE_REG, "sne v1, v2"},
		{0xa300, OP_LD_I, "ld i, 0x300"},
		{0xb300, OP_JP_V0, "jp v0, 0x300"},
		{0xc30f, OP_RND, "rnd v3, 0x0f"},
		{0xd015, OP_DRW, "drw v0, v1, 5"},
		{0xe49e, OP_SKP, "skp v4"},
		{0xe4a1, OP_SKNP, "sknp v4"},
		{0xf507, OP_LD_VX_DT, "ld v5, dt"},
		{0xf50a, OP_LD_VX_K, "ld v5, k"},
		{0xf515, OP_LD_DT, "ld dt, v5"},
		{0xf518, OP_LD_ST, "ld st, v5"},
		{0xf51e, OP_ADD_I, "add i, v5"},
		{0xf529, OP_LD_F, "ld f, v5"},
		{0xf533, OP_LD_B, "ld b, v5"},
		{0xf355, OP_LD_MEM, "ld [i], v3"},
		{0xf365, OP_LD_REGS, "ld v3, [i]"},
	}

	for _, entry := range table {
		code, err := Decode(entry.word)
		assert.NoError(err, "0x%04x", entry.word)
		assert.Equal(entry.op, code.Op, "0x%04x", entry.word)
		assert.Equal(entry.word, code.Word)
		assert.Equal(entry.text, code.String())
	}
}

func TestDecodeFields(t *testing.T) {
	assert := assert.New(t)

	code, err := Decode(0xd3a7)
	assert.NoError(err)
	assert.Equal(uint8(0x3), code.X())
	assert.Equal(uint8(0xa), code.Y())
	assert.Equal(uint8(0x7), code.N())
	assert.Equal(uint8(0xa7), code.NN())
	assert.Equal(uint16(0x3a7), code.NNN())
}

func TestDecodeUnknown(t *testing.T) {
	assert := assert.New(t)

	for _, word := range []uint16{0x0000, 0x00e1, 0x5001, 0x800d, 0x900f, 0xe09f, 0xf000, 0xf0ff} {
		code, err := Decode(word)
		assert.ErrorIs(err, ErrUnknownOpcode)
		assert.ErrorIs(err, ErrOpcode(word))
		assert.Equal(word, code.Word)
		assert.Nil(code.Op.Args())
	}

	code, _ := Decode(0xffff)
	assert.Equal("dw 0xffff", code.String())
}

func TestDecodeTotal(t *testing.T) {
	assert := assert.New(t)

	// Every word either decodes, or is reported as unknown.
	known := 0
	for word := range 0x10000 {
		code, err := Decode(uint16(word))
		if err != nil {
			assert.ErrorIs(err, ErrUnknownOpcode)
			continue
		}
		known++
		again, err := code.Op.Encode()
		if len(code.Op.Args()) == 0 {
			assert.NoError(err)
			assert.Equal(code, again)
		}
	}

	assert.Less(known, 0x10000)
}

func TestEncode(t *testing.T) {
	assert := assert.New(t)

	code, err := OP_DRW.Encode(3, 4, 5)
	assert.NoError(err)
	assert.Equal(Code{Op: OP_DRW, Word: 0xd345}, code)

	code, err = OP_LD_I.Encode(0x123)
	assert.NoError(err)
	assert.Equal(uint16(0xa123), code.Word)

	code, err = OP_LD_MEM.Encode(0xa)
	assert.NoError(err)
	assert.Equal(uint16(0xfa55), code.Word)

	assert.Equal(Code{Op: OP_CLS, Word: 0x00e0}, OP_CLS.MustEncode())

	_, err = OP_LD_IMM.Encode(1, 0x100)
	assert.ErrorIs(err, ErrValueRange)

	_, err = OP_LD_IMM.Encode(0x10, 0)
	assert.ErrorIs(err, ErrValueRange)

	_, err = OP_JP.Encode(0x1000)
	assert.ErrorIs(err, ErrValueRange)

	_, err = OP_LD_IMM.Encode(1)
	assert.ErrorIs(err, ErrOperandCount)

	_, err = OP_CLS.Encode(1)
	assert.ErrorIs(err, ErrOperandCount)

	_, err = CodeOp(99).Encode()
	assert.ErrorIs(err, ErrOpcodeInvalid)

	assert.Panics(func() { OP_RET.MustEncode(1) })
}

func TestEncodeDecode(t *testing.T) {
	assert := assert.New(t)

	for n := range len(codeForms) {
		op := CodeOp(n)
		values := []uint16{}
		for _, arg := range op.Args() {
			if _, ok := arg.Literal(); ok {
				continue
			}
			values = append(values, arg.Limit()&0x0a5)
		}

		code, err := op.Encode(values...)
		assert.NoError(err, op.String())

		decoded, err := Decode(code.Word)
		assert.NoError(err, op.String())
		assert.Equal(code, decoded)
	}
}

func TestCodeOpString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("drw", OP_DRW.String())
	assert.Equal("ld", OP_LD_REGS.String())
	assert.Equal("CodeOp(99)", CodeOp(99).String())
}
