package compiler

import "testing"

func TestEncodeShortIsOneByte(t *testing.T) {
	b := EncodeShort(PUSH)
	if b != byte(PUSH) {
		t.Fatalf("expected short encoding to just be the opcode, got %#x", b)
	}
}

func TestEncodeLongRoundTrip(t *testing.T) {
	tests := []struct {
		op      Opcode
		operand uint32
	}{
		{GET, 0},
		{SET, 1},
		{CNST, 0x0FFFFFFF},
		{CNSH, 0xF},
	}
	for _, tt := range tests {
		buf := EncodeLong(tt.op, tt.operand)
		gotOp, gotOperand, length := DecodeAt(buf[:], 0)
		if length != 4 {
			t.Errorf("%v: expected long-form length 4, got %d", tt.op, length)
		}
		if gotOp != tt.op {
			t.Errorf("%v: decoded opcode %v", tt.op, gotOp)
		}
		if gotOperand != tt.operand {
			t.Errorf("%v: decoded operand %#x, want %#x", tt.op, gotOperand, tt.operand)
		}
	}
}

func TestSignExtend28(t *testing.T) {
	if got := SignExtend28(0); got != 0 {
		t.Errorf("SignExtend28(0) = %d, want 0", got)
	}
	if got := SignExtend28(0x0FFFFFFF); got != -1 {
		t.Errorf("SignExtend28(all-ones) = %d, want -1", got)
	}
	if got := SignExtend28(1); got != 1 {
		t.Errorf("SignExtend28(1) = %d, want 1", got)
	}
}

func TestSplitImmediateSmallPositive(t *testing.T) {
	low, _, needHigh := splitImmediate(42)
	if needHigh {
		t.Errorf("small positive constant should not need a CNSH")
	}
	if SignExtend28(low) != 42 {
		t.Errorf("low bits round-trip to %d, want 42", SignExtend28(low))
	}
}

func TestSplitImmediateSmallNegative(t *testing.T) {
	low, _, needHigh := splitImmediate(-1)
	if needHigh {
		t.Errorf("-1's sign-extended low bits already cover the upper nibble, should not need a CNSH")
	}
	if SignExtend28(low) != -1 {
		t.Errorf("low bits round-trip to %d, want -1", SignExtend28(low))
	}
}

func TestSplitImmediateLargeNegativeNeedsHigh(t *testing.T) {
	n := int32(-(1 << 28))
	low, high, needHigh := splitImmediate(n)
	if !needHigh {
		t.Fatalf("value outside the 28-bit signed range must need a CNSH")
	}
	reconstructed := SignExtend28(low) | int32(high<<upperShift)
	if reconstructed != n {
		t.Errorf("CNST|CNSH reconstruction = %d, want %d", reconstructed, n)
	}
}

func TestDecodeAtShortForm(t *testing.T) {
	code := []byte{EncodeShort(RET)}
	op, operand, length := DecodeAt(code, 0)
	if op != RET || operand != 0 || length != 1 {
		t.Errorf("got op=%v operand=%d length=%d", op, operand, length)
	}
}
