// Package cfg reads the configuration of a merge.
package cfg

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ffmerge/ffmerge"

	"gopkg.in/yaml.v3"
)

// Cfg is a structure containing the parameters specified in the
// configuration file. It can be instanced through New, through Default or
// by "hand". If it is instanced by hand, please use the Check method.
type Cfg struct {
	// Root is the directory containing the molecule directories
	Root string `yaml:"root"`

	// Layout is the naming of the molecule directories, qubekit or numbered
	Layout ffmerge.Layout `yaml:"layout"`

	// FragmentDir overrides the subdirectory holding the force field of
	// each molecule
	FragmentDir string `yaml:"fragmentDir"`

	// ChargesDir overrides the subdirectory holding the Chargemol output
	ChargesDir string `yaml:"chargesDir"`

	// DDEC is the version of the DDEC charges, 3 or 6
	DDEC int `yaml:"ddec"`

	// Output is the combined force field file
	Output string `yaml:"output"`

	// Optimise are the categories to fit: element symbols or X for polar hydrogens
	Optimise []string `yaml:"optimise"`
}

// Default returns the configuration used when no file is given: a QUBEKit
// run in the current directory with DDEC6 charges.
func Default() *Cfg {
	d := ffmerge.DefaultDiscovery()
	return &Cfg{
		Root:     ".",
		Layout:   d.Layout,
		DDEC:     d.DDEC,
		Output:   ffmerge.DefaultOutput,
		Optimise: append([]string(nil), ffmerge.DefaultOptimise...),
	}
}

// New opens and decodes the specified configuration file. The file must be
// a YAML file. Fields absent from the file keep their Default value. The
// Check method is called automatically. A relative root is taken relative
// to the directory of the file.
func New(path string) (*Cfg, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c := Default()
	dec := yaml.NewDecoder(bufio.NewReader(f))
	dec.KnownFields(true)
	err = dec.Decode(c)
	if err != nil && !errors.Is(err, io.EOF) { //an empty file means defaults
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if !filepath.IsAbs(c.Root) {
		c.Root = filepath.Join(filepath.Dir(path), c.Root)
	}

	err = c.Check()
	if err != nil {
		return nil, fmt.Errorf("Check: %w", err)
	}

	return c, nil
}

// Check checks if Cfg is correct. It returns an error if a field doesn't
// meet the requirements.
func (c *Cfg) Check() error {
	if c.Root == "" {
		return fmt.Errorf("root cannot be empty")
	}

	if c.Layout != ffmerge.QUBEKit && c.Layout != ffmerge.Numbered {
		return fmt.Errorf("unsupported layout %q", c.Layout)
	}

	if c.DDEC != 3 && c.DDEC != 6 {
		return fmt.Errorf("ddec must be 3 or 6, not %d", c.DDEC)
	}

	if c.Output == "" {
		return fmt.Errorf("output cannot be empty")
	}

	if len(c.Optimise) == 0 {
		return fmt.Errorf("at least one category must be optimised")
	}

	_, err := ffmerge.Categories(c.Optimise)
	return err
}

// Options returns the merge options given by c.
func (c *Cfg) Options() ffmerge.Options {
	return ffmerge.Options{
		Discovery: ffmerge.Discovery{
			Layout:      c.Layout,
			FragmentDir: c.FragmentDir,
			ChargesDir:  c.ChargesDir,
			DDEC:        c.DDEC,
		},
		Output:   c.Output,
		Optimise: c.Optimise,
	}
}
