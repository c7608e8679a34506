package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/streetblock/pkg/cache"
	"github.com/matzehuels/streetblock/pkg/city/generate"
	cityio "github.com/matzehuels/streetblock/pkg/io"
)

func testCity(t *testing.T, id string, seed uint64) *cityio.City {
	t.Helper()
	g, err := generate.New(generate.NewParams(seed))
	if err != nil {
		t.Fatalf("generate.New() error: %v", err)
	}
	g.RunToFixedPoint(3)
	c := cityio.FromGenerator(g, 0)
	c.ID = id
	c.Seed = seed
	return &c
}

// testStore runs the behavior every backend shares.
func testStore(t *testing.T, s Store) {
	ctx := context.Background()

	if _, err := s.Load(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(missing) error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrNotFound", err)
	}

	b := testCity(t, "b-run", 2)
	a := testCity(t, "a-run", 1)
	for _, c := range []*cityio.City{b, a} {
		if err := s.Save(ctx, c); err != nil {
			t.Fatalf("Save(%s) error: %v", c.ID, err)
		}
	}

	got, err := s.Load(ctx, "a-run")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if diff := cmp.Diff(a, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	want := []Summary{Summarize(a), Summarize(b)}
	if diff := cmp.Diff(want, list); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}

	a.Generation = 99
	if err := s.Save(ctx, a); err != nil {
		t.Fatalf("Save(replace) error: %v", err)
	}
	if got, _ := s.Load(ctx, "a-run"); got.Generation != 99 {
		t.Errorf("replaced Generation = %d, want 99", got.Generation)
	}

	if err := s.Delete(ctx, "a-run"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := s.Load(ctx, "a-run"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after Delete error = %v, want ErrNotFound", err)
	}

	if err := s.Save(ctx, &cityio.City{}); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Save(no id) error = %v, want ErrInvalidID", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	testStore(t, s)
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	c := testCity(t, "run", 1)
	if err := s.Save(ctx, c); err != nil {
		t.Fatal(err)
	}
	c.Points[0].Pos.X = -1

	got, err := s.Load(ctx, "run")
	if err != nil {
		t.Fatal(err)
	}
	if got.Points[0].Pos.X == -1 {
		t.Error("stored snapshot aliases the saved slices")
	}
	got.Cells[0].Area = -1
	again, _ := s.Load(ctx, "run")
	if again.Cells[0].Area == -1 {
		t.Error("loaded snapshot aliases the stored slices")
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "cities"))
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestFileStoreSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(context.Background(), testCity(t, "run", 3)); err != nil {
		t.Fatal(err)
	}

	list, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(list) != 1 || list[0].ID != "run" {
		t.Errorf("List() = %+v, want only run", list)
	}
}

func TestFileStoreDefaultDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	dir, err := DefaultDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/data", "streetblock", "cities"); dir != want {
		t.Errorf("DefaultDir() = %s, want %s", dir, want)
	}
}

func TestCheckID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"5f0c9d2e-2b0a-4c1e-9f4e-0d1a2b3c4d5e", true},
		{"run-1", true},
		{"", false},
		{".", false},
		{"..", false},
		{"a/b", false},
		{"../escape", false},
	}
	for _, tt := range tests {
		err := checkID(tt.id)
		if (err == nil) != tt.want {
			t.Errorf("checkID(%q) error = %v, want ok=%v", tt.id, err, tt.want)
		}
		if err != nil && !errors.Is(err, ErrInvalidID) {
			t.Errorf("checkID(%q) error = %v, want ErrInvalidID", tt.id, err)
		}
	}
}

func TestDatabaseName(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"mongodb://localhost:27017/cities_test", "cities_test"},
		{"mongodb://localhost:27017", DefaultDatabase},
		{"mongodb://localhost:27017/", DefaultDatabase},
		{"not a uri", DefaultDatabase},
	}
	for _, tt := range tests {
		if got := databaseName(tt.uri); got != tt.want {
			t.Errorf("databaseName(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
	plain := errors.New("duplicate key")
	if err := classify(plain); cache.IsRetryable(err) {
		t.Error("plain errors should not be retryable")
	}
	if err := classify(context.DeadlineExceeded); !cache.IsRetryable(err) {
		t.Error("timeouts should be retryable")
	}
}
