// internal/fieldbus/modbus/client_test.go
package modbus

import "testing"

func TestUnpackBits(t *testing.T) {
	// 0b10000001, 0b00000001 → bits 0,7,8 set
	got := unpackBits([]byte{0x81, 0x01}, 9)
	want := []bool{true, false, false, false, false, false, false, true, true}
	if len(got) != len(want) {
		t.Fatalf("len=%d", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bit %d = %t want %t", i, got[i], want[i])
		}
	}
}

func TestUnpackBits_ShortPayloadPadsFalse(t *testing.T) {
	got := unpackBits([]byte{0xFF}, 12)
	for i := 8; i < 12; i++ {
		if got[i] {
			t.Fatalf("bit %d set beyond payload", i)
		}
	}
}

func TestUnpackRegisters_BigEndian(t *testing.T) {
	got := unpackRegisters([]byte{0xBE, 0xEF, 0x00, 0x2A})
	if len(got) != 2 || got[0] != 0xBEEF || got[1] != 42 {
		t.Fatalf("got=%v", got)
	}
}

func TestNew_RequiresEndpoint(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("empty endpoint accepted")
	}
}
