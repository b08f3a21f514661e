package ffmerge

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/ffmerge/ffmerge/ffxml"
)

// DefaultOutput is the name of the combined force field.
const DefaultOutput = "combined.xml"

// RemoveStale deletes the output of a previous run, if any.
func RemoveStale(output string) error {
	err := os.Remove(output)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// WriteFile writes C to output. The document goes to a temporary file in
// the same directory, which is renamed to output once completely written,
// so output is never left half written.
func WriteFile(C *ffxml.Combined, output string) (err error) {
	dir, base := filepath.Split(output)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()
	if _, err = C.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	//CreateTemp gives 0600, the merged file is meant to be shared
	if err = f.Chmod(0o644); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, output)
}

// Options configures a complete run.
type Options struct {
	Discovery
	Output   string   //DefaultOutput if empty
	Optimise []string //DefaultOptimise if empty
	Logger   *log.Logger
}

// Run merges the molecules found in fsys and writes the result to
// opts.Output. Any previous output is removed first. On error nothing is
// written.
func Run(fsys fs.FS, opts Options) (*Report, error) {
	output := opts.Output
	if output == "" {
		output = DefaultOutput
	}
	if err := RemoveStale(output); err != nil {
		return nil, classify(err, "", output, "Run")
	}
	M, err := NewMerger(opts.Optimise, opts.Logger)
	if err != nil {
		return nil, err
	}
	mols, err := Discover(fsys, opts.Discovery)
	if err != nil {
		return nil, err
	}
	if opts.Logger != nil {
		opts.Logger.Printf("[discover] [status=ok] %d molecule(s)\n", len(mols))
	}
	inputs, err := Load(fsys, mols, opts.Discovery.withDefaults().DDEC, opts.Logger)
	if err != nil {
		return nil, err
	}
	C, R, err := M.Merge(inputs)
	if err != nil {
		return nil, err
	}
	if err := WriteFile(C, output); err != nil {
		return nil, classify(err, "", output, "Run")
	}
	if opts.Logger != nil {
		opts.Logger.Printf("[writer  ] [status=ok] %s\n", output)
	}
	return R, nil
}
