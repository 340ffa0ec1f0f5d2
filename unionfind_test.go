package fuzzydbscan

import "testing"

func TestNewUnionFind(t *testing.T) {
	uf := NewUnionFind(5)

	for i := 0; i < 5; i++ {
		if root := uf.Find(i); root != i {
			t.Errorf("Find(%d) = %d, want %d", i, root, i)
		}
		if s := uf.setSize(i); s != 1 {
			t.Errorf("setSize(%d) = %d, want 1", i, s)
		}
	}
}

func TestNewUnionFind_Empty(t *testing.T) {
	uf := NewUnionFind(0)
	if len(uf.parent) != 0 {
		t.Errorf("expected no elements, got %d", len(uf.parent))
	}
}

func TestUnionFind_UnionTwoElements(t *testing.T) {
	uf := NewUnionFind(5)
	root := uf.Union(1, 3)

	if uf.Find(1) != uf.Find(3) {
		t.Error("after Union(1,3), Find(1) != Find(3)")
	}
	if root != uf.Find(1) {
		t.Errorf("Union returned %d, but Find(1) = %d", root, uf.Find(1))
	}
	if uf.setSize(3) != 2 {
		t.Errorf("size of root = %d, want 2", uf.setSize(3))
	}
}

func TestUnionFind_UnionIdempotent(t *testing.T) {
	uf := NewUnionFind(3)
	uf.Union(0, 1)
	uf.Union(1, 0)
	uf.Union(0, 0)
	if uf.setSize(0) != 2 {
		t.Errorf("repeated unions changed size to %d, want 2", uf.setSize(0))
	}
}

func TestUnionFind_MultipleUnions(t *testing.T) {
	uf := NewUnionFind(6)

	uf.Union(0, 1)
	uf.Union(1, 2)
	uf.Union(3, 4)
	uf.Union(4, 5)

	if uf.Find(0) != uf.Find(2) {
		t.Error("0 and 2 should be in same set")
	}
	if uf.Find(3) != uf.Find(5) {
		t.Error("3 and 5 should be in same set")
	}
	if uf.Find(0) == uf.Find(3) {
		t.Error("0 and 3 should be in different sets")
	}

	uf.Union(2, 4)

	root := uf.Find(0)
	for i := 1; i < 6; i++ {
		if uf.Find(i) != root {
			t.Errorf("after full union, Find(%d) != Find(0)", i)
		}
	}
	if uf.setSize(0) != 6 {
		t.Errorf("size of root = %d, want 6", uf.setSize(0))
	}
}

func TestUnionFind_PathCompression(t *testing.T) {
	uf := NewUnionFind(5)

	// Build a chain by hand so compression has work to do: 4→3→2→1→0.
	for i := 1; i < 5; i++ {
		uf.parent[i] = i - 1
	}
	uf.size[0] = 5

	root := uf.Find(4)
	if root != 0 {
		t.Fatalf("Find(4) = %d, want 0", root)
	}
	for i := 1; i < 5; i++ {
		if uf.parent[i] != 0 {
			t.Errorf("after Find(4), parent[%d] = %d, want 0", i, uf.parent[i])
		}
	}
}

func TestUnionFind_UnionBySize(t *testing.T) {
	uf := NewUnionFind(4)

	uf.Union(0, 1)
	uf.Union(0, 2)
	bigRoot := uf.Find(0)

	uf.Union(3, 0)
	if newRoot := uf.Find(3); newRoot != bigRoot {
		t.Errorf("expected union-by-size: small tree attaches to big root %d, got root %d", bigRoot, newRoot)
	}
}
