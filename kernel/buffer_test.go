package kernel

import "testing"

func TestNewBufferStartsEmpty(t *testing.T) {
	b := NewBuffer(3, 2, 4)

	if got := b.Slots(); got != 24 {
		t.Fatalf("Slots() = %d, want 24", got)
	}
	if got := b.Count(); got != 0 {
		t.Errorf("Count() = %d, want 0", got)
	}
	for i := 0; i < b.Slots(); i++ {
		if Decode(b.Raw(), i).Valid() {
			t.Fatalf("slot %d not sentinel after NewBuffer", i)
		}
	}
}

func TestCellStartLayout(t *testing.T) {
	b := NewBuffer(4, 3, 5)

	tests := []struct {
		cx, cy int
		want   int
	}{
		{0, 0, 0},
		{1, 0, 5},
		{3, 0, 15},
		{0, 1, 20},
		{2, 2, 50},
	}

	for _, tt := range tests {
		if got := b.CellStart(tt.cx, tt.cy); got != tt.want {
			t.Errorf("CellStart(%d, %d) = %d, want %d", tt.cx, tt.cy, got, tt.want)
		}
	}
}

func TestLoadStoreBounds(t *testing.T) {
	b := NewBuffer(2, 2, 2)

	if _, err := b.Load(-1); err == nil {
		t.Error("Load(-1) should fail")
	}
	if _, err := b.Load(b.Slots()); err == nil {
		t.Error("Load(Slots()) should fail")
	}
	if err := b.Store(b.Slots(), Kernel{}); err == nil {
		t.Error("Store out of range should fail")
	}
	if err := b.StorePhase(-1, 0); err == nil {
		t.Error("StorePhase(-1) should fail")
	}

	k := Kernel{X: 0.5, Y: 0.5, Frequency: 2}
	if err := b.Store(3, k); err != nil {
		t.Fatalf("Store(3) failed: %v", err)
	}
	got, err := b.Load(3)
	if err != nil {
		t.Fatalf("Load(3) failed: %v", err)
	}
	if got != k {
		t.Errorf("Load(3) = %+v, want %+v", got, k)
	}
	if b.Count() != 1 {
		t.Errorf("Count() = %d, want 1", b.Count())
	}
}

func TestReset(t *testing.T) {
	b := NewBuffer(2, 1, 2)
	if err := b.Store(0, Kernel{X: 0.5, Y: 0.5}); err != nil {
		t.Fatal(err)
	}

	b.Reset()
	if b.Count() != 0 {
		t.Errorf("Count() after Reset = %d, want 0", b.Count())
	}
}
