package cfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ffmerge/ffmerge"
)

func writeCfg(Te *testing.T, content string) string {
	Te.Helper()
	p := filepath.Join(Te.TempDir(), "merge.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		Te.Fatal(err)
	}
	return p
}

func TestDefault(Te *testing.T) {
	c := Default()
	if err := c.Check(); err != nil {
		Te.Fatal(err)
	}
	if c.Layout != ffmerge.QUBEKit || c.DDEC != 6 || c.Output != "combined.xml" {
		Te.Errorf("unexpected defaults %+v", c)
	}
	c.Optimise[0] = "I"
	if ffmerge.DefaultOptimise[0] != "F" {
		Te.Error("Default shares its optimise slice with the package")
	}
}

func TestNew(Te *testing.T) {
	p := writeCfg(Te, `
root: runs
layout: numbered
ddec: 3
output: fit.xml
optimise: [Cl, I, X]
`)
	c, err := New(p)
	if err != nil {
		Te.Fatal(err)
	}
	if c.Root != filepath.Join(filepath.Dir(p), "runs") {
		Te.Errorf("root not relative to the file: %s", c.Root)
	}
	o := c.Options()
	if o.Layout != ffmerge.Numbered || o.DDEC != 3 || o.Output != "fit.xml" || len(o.Optimise) != 3 {
		Te.Errorf("unexpected options %+v", o)
	}
}

func TestNewEmpty(Te *testing.T) {
	c, err := New(writeCfg(Te, ""))
	if err != nil {
		Te.Fatal(err)
	}
	if c.Layout != ffmerge.QUBEKit || len(c.Optimise) != 4 {
		Te.Errorf("empty file should give the defaults, got %+v", c)
	}
}

func TestCheck(Te *testing.T) {
	for name, content := range map[string]string{
		"layout":   "layout: flat\n",
		"ddec":     "ddec: 5\n",
		"optimise": "optimise: [Xe]\n",
		"unknown":  "molecules: 3\n",
	} {
		if _, err := New(writeCfg(Te, content)); err == nil {
			Te.Errorf("%s: bad configuration accepted", name)
		}
	}
}
