package mathx

import "testing"

func TestFloorDivAndMod(t *testing.T) {
	cases := []struct {
		a, b, q, m int
	}{
		{17, 16, 1, 1},
		{16, 16, 1, 0},
		{0, 16, 0, 0},
		{-1, 16, -1, 15},
		{-16, 16, -1, 0},
		{-17, 16, -2, 15},
	}
	for _, c := range cases {
		if got := FloorDiv(c.a, c.b); got != c.q {
			t.Fatalf("FloorDiv(%d,%d)=%d want %d", c.a, c.b, got, c.q)
		}
		if got := Mod(c.a, c.b); got != c.m {
			t.Fatalf("Mod(%d,%d)=%d want %d", c.a, c.b, got, c.m)
		}
	}
}

func TestChunkCoord(t *testing.T) {
	if got := ChunkCoord(-1); got != -1 {
		t.Fatalf("ChunkCoord(-1)=%d", got)
	}
	if got := ChunkOrigin(ChunkCoord(37)); got != 32 {
		t.Fatalf("ChunkOrigin(ChunkCoord(37))=%d", got)
	}
	if got := Mod64(-1, 24000); got != 23999 {
		t.Fatalf("Mod64(-1,24000)=%d", got)
	}
}

func TestHash2Stable(t *testing.T) {
	if Hash2(7, 3, -4) != Hash2(7, 3, -4) {
		t.Fatalf("hash not stable")
	}
	if Hash2(7, 3, -4) == Hash2(8, 3, -4) {
		t.Fatalf("hash ignores seed")
	}
}
