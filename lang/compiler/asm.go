package compiler

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// MagicBytes opens every serialized Somiré bytecode file, as in
// original_source/src/chunk.hpp, which hard-codes the trailing byte as the
// literal 1 rather than deriving it from the format Version.
var MagicBytes = [8]byte{'S', 'o', 'm', 'i', 'r', '&', 0, 1}

// WriteTo serializes p in the on-disk format described by the language's
// bytecode file format: the magic bytes, a u16 constant count followed by
// that many tagged constants, then for each function (Functions[0] first,
// the program's entry point) its name, parameter/local counts, upvalue
// descriptors and finally a u16 code length followed by that many bytes of
// raw bytecode. original_source's own chunk.cpp writes a single function's
// bytecode as one untagged blob with no such header; Somiré programs may
// contain several function prototypes (one per nested function literal) and
// the VM needs their parameter/local counts and upvalue descriptors to run a
// closure loaded from disk, so each one here carries that header explicitly.
func (p *Program) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64

	nw, err := bw.Write(MagicBytes[:])
	n += int64(nw)
	if err != nil {
		return n, err
	}

	if err := writeU16(bw, &n, len(p.Constants)); err != nil {
		return n, err
	}
	for _, k := range p.Constants {
		if err := writeConstant(bw, &n, k); err != nil {
			return n, err
		}
	}

	if err := writeU16(bw, &n, len(p.Functions)); err != nil {
		return n, err
	}
	for _, fn := range p.Functions {
		if err := writeString(bw, &n, fn.Name); err != nil {
			return n, err
		}
		if err := writeU16(bw, &n, fn.NumParams); err != nil {
			return n, err
		}
		if err := writeU16(bw, &n, fn.NumLocals); err != nil {
			return n, err
		}
		if err := writeU16(bw, &n, len(fn.Upvalues)); err != nil {
			return n, err
		}
		for _, uv := range fn.Upvalues {
			if err := writeI16(bw, &n, uv.Index); err != nil {
				return n, err
			}
			if err := writeString(bw, &n, uv.Name); err != nil {
				return n, err
			}
		}
		if err := writeU16(bw, &n, len(fn.Code)); err != nil {
			return n, err
		}
		nw, err := bw.Write(fn.Code)
		n += int64(nw)
		if err != nil {
			return n, err
		}
	}

	return n, bw.Flush()
}

func writeI16(w *bufio.Writer, n *int64, v int) error {
	return writeU16(w, n, int(uint16(int16(v))))
}

func writeString(w *bufio.Writer, n *int64, s string) error {
	if err := writeU16(w, n, len(s)); err != nil {
		return err
	}
	nw, err := w.Write([]byte(s))
	*n += int64(nw)
	return err
}

func writeU16(w *bufio.Writer, n *int64, v int) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], uint16(v))
	nw, err := w.Write(buf[:])
	*n += int64(nw)
	return err
}

func writeConstant(w *bufio.Writer, n *int64, k Constant) error {
	tag := byte(k.Kind)
	nw, err := w.Write([]byte{tag})
	*n += int64(nw)
	if err != nil {
		return err
	}
	switch k.Kind {
	case KNil:
		return nil
	case KBool:
		b := byte(0)
		if k.Bool {
			b = 1
		}
		nw, err := w.Write([]byte{b})
		*n += int64(nw)
		return err
	case KInt:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(k.Int))
		nw, err := w.Write(buf[:])
		*n += int64(nw)
		return err
	case KReal:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(k.Real))
		nw, err := w.Write(buf[:])
		*n += int64(nw)
		return err
	case KStr:
		if err := writeU16(w, n, len(k.Str)); err != nil {
			return err
		}
		nw, err := w.Write([]byte(k.Str))
		*n += int64(nw)
		return err
	default:
		return fmt.Errorf("compiler: cannot serialize constant kind %d", k.Kind)
	}
}

// ReadProgram deserializes a program previously written by Program.WriteTo.
func ReadProgram(r io.Reader) (*Program, error) {
	br := bufio.NewReader(r)

	var magic [8]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, fmt.Errorf("compiler: reading magic bytes: %w", err)
	}
	if magic != MagicBytes {
		return nil, fmt.Errorf("compiler: bad magic bytes %x, expected %x", magic, MagicBytes)
	}

	nConsts, err := readU16(br)
	if err != nil {
		return nil, err
	}
	prog := &Program{Constants: make([]Constant, nConsts)}
	for i := range prog.Constants {
		k, err := readConstant(br)
		if err != nil {
			return nil, fmt.Errorf("compiler: constant %d: %w", i, err)
		}
		prog.Constants[i] = k
	}

	nFuncs, err := readU16(br)
	if err != nil {
		return nil, err
	}
	prog.Functions = make([]*Funcode, nFuncs)
	for i := range prog.Functions {
		fn := &Funcode{Prog: prog}

		name, err := readString(br)
		if err != nil {
			return nil, fmt.Errorf("compiler: function %d name: %w", i, err)
		}
		fn.Name = name

		if fn.NumParams, err = readU16(br); err != nil {
			return nil, fmt.Errorf("compiler: function %d params: %w", i, err)
		}
		if fn.NumLocals, err = readU16(br); err != nil {
			return nil, fmt.Errorf("compiler: function %d locals: %w", i, err)
		}

		nUpvalues, err := readU16(br)
		if err != nil {
			return nil, fmt.Errorf("compiler: function %d upvalue count: %w", i, err)
		}
		fn.Upvalues = make([]UpvalueDesc, nUpvalues)
		for j := range fn.Upvalues {
			idx, err := readI16(br)
			if err != nil {
				return nil, fmt.Errorf("compiler: function %d upvalue %d index: %w", i, j, err)
			}
			uvName, err := readString(br)
			if err != nil {
				return nil, fmt.Errorf("compiler: function %d upvalue %d name: %w", i, j, err)
			}
			fn.Upvalues[j] = UpvalueDesc{Index: idx, Name: uvName}
		}

		codeLen, err := readU16(br)
		if err != nil {
			return nil, fmt.Errorf("compiler: function %d code length: %w", i, err)
		}
		code := make([]byte, codeLen)
		if _, err := io.ReadFull(br, code); err != nil {
			return nil, fmt.Errorf("compiler: function %d code: %w", i, err)
		}
		fn.Code = code

		prog.Functions[i] = fn
	}

	return prog, nil
}

func readI16(r *bufio.Reader) (int, error) {
	n, err := readU16(r)
	if err != nil {
		return 0, err
	}
	return int(int16(uint16(n))), nil
}

func readString(r *bufio.Reader) (string, error) {
	n, err := readU16(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func readU16(r *bufio.Reader) (int, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int(binary.LittleEndian.Uint16(buf[:])), nil
}

func readConstant(r *bufio.Reader) (Constant, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return Constant{}, err
	}
	switch ConstantKind(tag) {
	case KNil:
		return Constant{Kind: KNil}, nil
	case KBool:
		b, err := r.ReadByte()
		if err != nil {
			return Constant{}, err
		}
		return Constant{Kind: KBool, Bool: b != 0}, nil
	case KInt:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return Constant{}, err
		}
		return Constant{Kind: KInt, Int: int64(binary.LittleEndian.Uint64(buf[:]))}, nil
	case KReal:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return Constant{}, err
		}
		return Constant{Kind: KReal, Real: math.Float64frombits(binary.LittleEndian.Uint64(buf[:]))}, nil
	case KStr:
		n, err := readU16(r)
		if err != nil {
			return Constant{}, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return Constant{}, err
		}
		return Constant{Kind: KStr, Str: string(buf)}, nil
	default:
		return Constant{}, fmt.Errorf("compiler: bad constant tag %d", tag)
	}
}

// Disassemble writes a human-readable listing of p to w: its constant pool
// followed by each function's code, one instruction per line, mirroring
// original_source/src/chunk.cpp's Chunk::list().
func (p *Program) Disassemble(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "constants:")
	for i, k := range p.Constants {
		fmt.Fprintf(bw, "  %4d  %s\n", i, k)
	}
	for fi, fn := range p.Functions {
		fmt.Fprintf(bw, "function %d %q (params=%d locals=%d upvalues=%d):\n",
			fi, fn.Name, fn.NumParams, fn.NumLocals, len(fn.Upvalues))
		if err := disassembleCode(bw, fn.Code); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func disassembleCode(w io.Writer, code []byte) error {
	pc := 0
	for pc < len(code) {
		op := Opcode(code[pc])
		width := operandWidth(op)
		if pc+1+width > len(code) {
			return fmt.Errorf("compiler: truncated instruction at pc=%d", pc)
		}
		switch {
		case op == MAKE_FUNC:
			proto := binary.LittleEndian.Uint16(code[pc+1:])
			argc := binary.LittleEndian.Uint16(code[pc+3:])
			upvc := binary.LittleEndian.Uint16(code[pc+5:])
			fmt.Fprintf(w, "  %4d  %-12s proto=%d argc=%d upvalues=%d\n", pc, op, proto, argc, upvc)
			pc += 7
			for i := 0; i < int(upvc); i++ {
				idx := int16(binary.LittleEndian.Uint16(code[pc:]))
				fmt.Fprintf(w, "  %4d    upvalue[%d] = %d\n", pc, i, idx)
				pc += 2
			}
		case width == 0:
			fmt.Fprintf(w, "  %4d  %s\n", pc, op)
			pc += 1
		case op == SET_LOCAL || op == LOCAL || op == JUMP_IF_NOT || op == JUMP:
			arg := int16(binary.LittleEndian.Uint16(code[pc+1:]))
			fmt.Fprintf(w, "  %4d  %-12s %d\n", pc, op, arg)
			pc += 1 + width
		default:
			arg := binary.LittleEndian.Uint16(code[pc+1:])
			fmt.Fprintf(w, "  %4d  %-12s %d\n", pc, op, arg)
			pc += 1 + width
		}
	}
	return nil
}
