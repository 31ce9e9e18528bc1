package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// goldenTest compiles a .c file and compares its assembly to a .s file.
func goldenTest(t *testing.T, name string) {
	t.Helper()

	srcPath := filepath.Join("..", "..", "testdata", name+".c")
	expectedPath := filepath.Join("..", "..", "testdata", name+".s")

	source, err := os.ReadFile(srcPath)
	if err != nil {
		t.Fatalf("failed to read %s: %v", srcPath, err)
	}

	expected, err := os.ReadFile(expectedPath)
	if err != nil {
		t.Fatalf("failed to read %s: %v", expectedPath, err)
	}

	c, err := New(Options{})
	if err != nil {
		t.Fatal(err)
	}
	res, err := c.Compile(string(source), srcPath)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	expectedStr := strings.TrimRight(string(expected), "\n")
	gotStr := strings.TrimRight(res.Asm, "\n")

	if gotStr != expectedStr {
		expectedLines := strings.Split(expectedStr, "\n")
		gotLines := strings.Split(gotStr, "\n")

		t.Errorf("output mismatch for %s", name)
		maxLines := len(expectedLines)
		if len(gotLines) > maxLines {
			maxLines = len(gotLines)
		}
		for i := 0; i < maxLines; i++ {
			var exp, g string
			if i < len(expectedLines) {
				exp = expectedLines[i]
			} else {
				exp = "<missing>"
			}
			if i < len(gotLines) {
				g = gotLines[i]
			} else {
				g = "<missing>"
			}
			prefix := "  "
			if exp != g {
				prefix = "! "
			}
			t.Logf("%sline %d: expected=%q got=%q", prefix, i+1, exp, g)
		}
	}
}

func TestGoldenDecls(t *testing.T) {
	goldenTest(t, "decls")
}

func TestGoldenIfElse(t *testing.T) {
	goldenTest(t, "ifelse")
}
