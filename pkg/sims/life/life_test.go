package life

import (
	"context"
	"slices"
	"testing"

	"toroid/internal/core"
	pcore "toroid/pkg/core"
)

func TestBlinkerOscillation(t *testing.T) {
	life := New(5, 5)
	w, _ := life.Size()
	set := func(x, y int) { life.Cells()[y*w+x] = 1 }
	set(2, 1)
	set(2, 2)
	set(2, 3)

	life.Step()
	cells := life.Cells()

	expects := map[[2]int]bool{
		{1, 2}: true,
		{2, 2}: true,
		{3, 2}: true,
	}

	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			idx := y*w + x
			alive := cells[idx] == 1
			_, shouldBeAlive := expects[[2]int{x, y}]
			if shouldBeAlive != alive {
				t.Fatalf("cell (%d,%d) alive=%v, expected %v", x, y, alive, shouldBeAlive)
			}
		}
	}

	life.Step()
	cells = life.Cells()

	expects = map[[2]int]bool{
		{2, 1}: true,
		{2, 2}: true,
		{2, 3}: true,
	}

	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			idx := y*w + x
			alive := cells[idx] == 1
			_, shouldBeAlive := expects[[2]int{x, y}]
			if shouldBeAlive != alive {
				t.Fatalf("after second step cell (%d,%d) alive=%v, expected %v", x, y, alive, shouldBeAlive)
			}
		}
	}
}

func TestStepDoesNotMutateInput(t *testing.T) {
	src := core.Patterns()["glider"](6, 6)
	before := slices.Clone(src.Cells())
	next := Step(src)
	if !slices.Equal(before, src.Cells()) {
		t.Fatal("Step mutated its input")
	}
	if next.Equal(src) {
		t.Fatal("glider should move after one step")
	}
}

func TestEmptyLatticeIsAbsorbing(t *testing.T) {
	l := pcore.NewLattice(6, 6)
	for i := 0; i < 3; i++ {
		l = Step(l)
		if l.Population() != 0 {
			t.Fatalf("step %d produced %d alive cells", i, l.Population())
		}
	}
}

func TestBlockIsStillLife(t *testing.T) {
	block := core.Patterns()["block"](6, 6)
	if next := Step(block); !next.Equal(block) {
		t.Fatalf("block changed:\n%v\n%v", block.Rows(), next.Rows())
	}
}

func TestWrapAroundNeighbours(t *testing.T) {
	// A blinker straddling the left/right edge must still oscillate.
	l := pcore.NewLattice(6, 6)
	l.Set(5, 2, 1)
	l.Set(0, 2, 1)
	l.Set(1, 2, 1)
	next := Step(l)
	want := pcore.NewLattice(6, 6)
	want.Set(0, 1, 1)
	want.Set(0, 2, 1)
	want.Set(0, 3, 1)
	if !next.Equal(want) {
		t.Fatalf("got %v, want %v", next.Rows(), want.Rows())
	}
}

func TestStepBatchMatchesScalar(t *testing.T) {
	const runs = 700
	rng := pcore.NewRNG(3)
	src := make([]uint8, 0, runs*36)
	var lattices []*pcore.Lattice
	for i := 0; i < runs; i++ {
		l := rng.RandomLattice(6, 6, 0.4)
		lattices = append(lattices, l)
		src = append(src, l.Cells()...)
	}
	dst := make([]uint8, len(src))
	if err := StepBatch(context.Background(), dst, src, 6, 6, 4); err != nil {
		t.Fatalf("StepBatch: %v", err)
	}
	for i, l := range lattices {
		want := Step(l).Cells()
		if got := dst[i*36 : (i+1)*36]; !slices.Equal(got, want) {
			t.Fatalf("run %d differs from scalar kernel", i)
		}
	}
}

func TestStepBatchRejectsShapeMismatch(t *testing.T) {
	if err := StepBatch(context.Background(), make([]uint8, 10), make([]uint8, 10), 6, 6, 1); err == nil {
		t.Fatal("expected error for buffer not divisible by lattice size")
	}
}

func TestStepBatchHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	buf := make([]uint8, 36*minChunk*2)
	if err := StepBatch(ctx, make([]uint8, len(buf)), buf, 6, 6, 2); err == nil {
		t.Fatal("expected context error")
	}
}

func TestLifeMatchesStep(t *testing.T) {
	rng := pcore.NewRNG(11)
	start := rng.RandomLattice(6, 6, 0.5)
	lf := FromLattice(start)
	cur := start
	for i := 0; i < 10; i++ {
		lf.Step()
		cur = Step(cur)
		if !lf.Lattice().Equal(cur) {
			t.Fatalf("step %d diverged", i)
		}
	}
}
