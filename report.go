package ffmerge

import (
	"log"

	"gonum.org/v1/gonum/stat"
)

// CategoryStats summarizes the fitted atoms of one category.
type CategoryStats struct {
	Name  string
	Atoms int
	// Mean and standard deviation of the DDEC volume over the free atom volume.
	// The deviation is NaN for a single atom.
	RatioMean, RatioStd float64
	// Mean sigma (nm) and epsilon (kJ/mol) given by the fitting expressions
	// at the starting radius of the category.
	Sigma, Epsilon float64
}

// Report is a summary of a merge.
type Report struct {
	Molecules  int
	Atoms      int //total atom types, which is also the final offset
	PolarH     int
	Categories []CategoryStats //in declaration order, only categories with atoms

	order   []Category
	samples map[string]*samples
}

type samples struct {
	ratio, sigma, epsilon []float64
}

func newReport(cats []Category) *Report {
	return &Report{order: cats, samples: make(map[string]*samples, len(cats))}
}

func (R *Report) add(C Category, vol float64, free FreeParams) {
	s, ok := R.samples[C.Name]
	if !ok {
		s = new(samples)
		R.samples[C.Name] = s
	}
	s.ratio = append(s.ratio, vol/free.VFree)
	s.sigma = append(s.sigma, Sigma(vol, free, C.RFree))
	s.epsilon = append(s.epsilon, Epsilon(vol, free, C.RFree))
}

func (R *Report) finish() {
	R.Categories = R.Categories[:0]
	for _, c := range R.order {
		s, ok := R.samples[c.Name]
		if !ok {
			continue
		}
		mean, std := stat.MeanStdDev(s.ratio, nil)
		R.Categories = append(R.Categories, CategoryStats{
			Name:      c.Name,
			Atoms:     len(s.ratio),
			RatioMean: mean,
			RatioStd:  std,
			Sigma:     stat.Mean(s.sigma, nil),
			Epsilon:   stat.Mean(s.epsilon, nil),
		})
	}
}

// Log writes the report to logger.
func (R *Report) Log(logger *log.Logger) {
	if logger == nil {
		return
	}
	logger.Printf("[report  ] %d molecule(s), %d atom type(s), %d polar hydrogen(s)\n", R.Molecules, R.Atoms, R.PolarH)
	for _, c := range R.Categories {
		logger.Printf("[report  ] %-2s %4d atom(s) V/Vfree %.3f +/- %.3f sigma %.4f nm epsilon %.4f kJ/mol\n",
			c.Name, c.Atoms, c.RatioMean, c.RatioStd, c.Sigma, c.Epsilon)
	}
}
