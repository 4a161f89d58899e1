package embedded

import (
	"errors"
	"testing"
	"testing/fstest"
)

func initTestFS(t *testing.T) {
	t.Helper()
	assets := fstest.MapFS{
		"assets/images/chair.png": {Data: []byte("png")},
	}
	data := fstest.MapFS{
		"data/scenes/showroom.yaml": {Data: []byte("name: showroom\n")},
		"data/scenes/empty.yaml":    {Data: []byte("")},
		"data/notes.txt":            {Data: []byte("x")},
	}
	Init(assets, data)
	t.Cleanup(Reset)
}

func TestNotInitialized(t *testing.T) {
	Reset()

	if IsInitialized() {
		t.Error("IsInitialized() should be false before Init()")
	}
	if _, err := Open("assets/x.png"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Open error = %v, want ErrNotInitialized", err)
	}
	if _, err := ReadFile("data/x.yaml"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("ReadFile error = %v, want ErrNotInitialized", err)
	}
	if _, err := Glob("data/*.yaml"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Glob error = %v, want ErrNotInitialized", err)
	}
}

func TestReadFile(t *testing.T) {
	initTestFS(t)

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{"数据文件", "data/scenes/showroom.yaml", "name: showroom\n", false},
		{"资源文件", "assets/images/chair.png", "png", false},
		{"点斜杠前缀", "./data/notes.txt", "x", false},
		{"不存在", "data/scenes/missing.yaml", "", true},
		{"未知前缀", "scenes/showroom.yaml", "", true},
		{"前缀错位", "assets/scenes/showroom.yaml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadFile(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadFile(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if string(got) != tt.want {
				t.Errorf("ReadFile(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	initTestFS(t)

	f, err := Open("assets/images/chair.png")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.Size() != 3 {
		t.Errorf("Stat = %v, %v", info, err)
	}
}

func TestGlob(t *testing.T) {
	initTestFS(t)

	matches, err := Glob("data/scenes/*.yaml")
	if err != nil {
		t.Fatalf("Glob error: %v", err)
	}
	if len(matches) != 2 || matches[0] != "data/scenes/empty.yaml" || matches[1] != "data/scenes/showroom.yaml" {
		t.Errorf("Glob = %v", matches)
	}
}
