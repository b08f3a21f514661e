package ffmerge

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/ffmerge/ffmerge/ddec"
)

// testMolecule describes a molecule of the test trees. Types are
// QUBE_0000, QUBE_0001... A type with an empty element is a virtual site,
// named v-site<n>.
type testMolecule struct {
	dir      string
	name     string
	elements []string
	bonds    [][2]int
	symbols  []string //DDEC symbols, one per real atom
	volumes  []float64
}

func (m testMolecule) typeName(i int) string {
	if m.elements[i] == "" {
		return fmt.Sprintf("v-site%d", i)
	}
	return ID{Prefix: qubePrefix, N: i, Width: fixedWidth}.String()
}

func (m testMolecule) fragment() string {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" ?>\n<ForceField>\n<AtomTypes>\n")
	for i, el := range m.elements {
		if el == "" {
			fmt.Fprintf(&b, "<Type class=\"X%d\" mass=\"0\" name=\"%s\"/>\n", i, m.typeName(i))
			continue
		}
		fmt.Fprintf(&b, "<Type class=\"%s\" element=\"%s\" mass=\"1.008\" name=\"%s\"/>\n", m.typeName(i), el, m.typeName(i))
	}
	b.WriteString("</AtomTypes>\n<Residues>\n<Residue name=\"MOL\">\n")
	for i := range m.elements {
		fmt.Fprintf(&b, "<Atom name=\"A%d\" type=\"%s\"/>\n", i, m.typeName(i))
	}
	for _, v := range m.bonds {
		fmt.Fprintf(&b, "<Bond from=\"%d\" to=\"%d\"/>\n", v[0], v[1])
	}
	for i, el := range m.elements {
		if el == "" {
			fmt.Fprintf(&b, "<VirtualSite atom1=\"0\" atom2=\"1\" atom3=\"2\" index=\"%d\" p1=\"0.05\" p2=\"0.0\" p3=\"0.0\" type=\"localCoords\"/>\n", i)
		}
	}
	b.WriteString("</Residue>\n</Residues>\n<HarmonicBondForce>\n")
	for _, v := range m.bonds {
		fmt.Fprintf(&b, "<Bond class1=\"%s\" class2=\"%s\" k=\"300000.0\" length=\"0.1\"/>\n", m.typeName(v[0]), m.typeName(v[1]))
	}
	b.WriteString("</HarmonicBondForce>\n<HarmonicAngleForce>\n")
	if len(m.bonds) > 1 {
		fmt.Fprintf(&b, "<Angle angle=\"1.9\" class1=\"%s\" class2=\"%s\" class3=\"%s\" k=\"400.0\"/>\n", m.typeName(0), m.typeName(1), m.typeName(2))
	}
	b.WriteString("</HarmonicAngleForce>\n<PeriodicTorsionForce>\n")
	if len(m.bonds) > 0 {
		f, t := m.typeName(m.bonds[0][0]), m.typeName(m.bonds[0][1])
		fmt.Fprintf(&b, "<Proper class1=\"%s\" class2=\"%s\" class3=\"%s\" class4=\"%s\" k1=\"1.0\" periodicity1=\"1\" phase1=\"0.0\"/>\n", f, t, f, t)
	}
	b.WriteString("</PeriodicTorsionForce>\n")
	b.WriteString("<NonbondedForce coulomb14scale=\"0.5\" lj14scale=\"0.5\">\n")
	for i := range m.elements {
		fmt.Fprintf(&b, "<Atom charge=\"0.1%d\" epsilon=\"0.2\" sigma=\"0.3\" type=\"%s\"/>\n", i, m.typeName(i))
	}
	b.WriteString("</NonbondedForce>\n</ForceField>\n")
	return b.String()
}

func (m testMolecule) charges() (string, string) {
	var c, v strings.Builder
	n := len(m.symbols)
	fmt.Fprintf(&c, "%5d\n title\n", n)
	fmt.Fprintf(&v, "%5d\n Rcubed moments\n", n)
	for i, s := range m.symbols {
		fmt.Fprintf(&c, " %s 0.0 0.0 %d.0 0.1\n", s, i)
		fmt.Fprintf(&v, " %s 0.0 0.0 %d.0 %s\n", s, i, pyFloat(m.volumes[i]))
	}
	c.WriteString("\n The following XYZ coordinates are in angstroms.\n atom number, atomic symbol, ...\n")
	for i, s := range m.symbols {
		fmt.Fprintf(&c, " %d %s 0.0 0.0 %d.0 0.1 0 0 0 0 0 0 0 0 0 0 0 0\n", i+1, s, i)
	}
	return c.String(), v.String()
}

// qubekitTree returns a tree with the QUBEKit layout.
func qubekitTree(mols ...testMolecule) fstest.MapFS {
	fsys := fstest.MapFS{}
	for _, m := range mols {
		fsys[m.dir+"/11_finalise/"+m.name+".xml"] = &fstest.MapFile{Data: []byte(m.fragment())}
		c, v := m.charges()
		fsys[m.dir+"/08_lennard_jones/"+ddec.DDEC6Charges] = &fstest.MapFile{Data: []byte(c)}
		fsys[m.dir+"/08_lennard_jones/"+ddec.RCubed] = &fstest.MapFile{Data: []byte(v)}
	}
	return fsys
}

// hypochlorous acid, the hydrogen is polar.
var hocl = testMolecule{
	dir:      "QUBEKit_hocl_2021_06_01",
	name:     "hocl",
	elements: []string{"H", "O", "Cl"},
	bonds:    [][2]int{{0, 1}, {1, 2}},
	symbols:  []string{"H", "O", "Cl"},
	volumes:  []float64{2.5, 25.14, 70.5},
}

// hydrogen fluoride, the hydrogen is not.
var hyf = testMolecule{
	dir:      "QUBEKit_hyf_2021_06_01",
	name:     "hyf",
	elements: []string{"H", "F"},
	bonds:    [][2]int{{0, 1}},
	symbols:  []string{"H", "F"},
	volumes:  []float64{3.0, 17.0},
}

// water with an off-site charge.
var tip4 = testMolecule{
	dir:      "QUBEKit_water_2021_06_01",
	name:     "water",
	elements: []string{"O", "H", "H", ""},
	bonds:    [][2]int{{0, 1}, {0, 2}},
	symbols:  []string{"O", "H", "H"},
	volumes:  []float64{24.0, 2.0, 2.0},
}

func merge(Te *testing.T, optimise []string, mols ...testMolecule) (string, *Report) {
	Te.Helper()
	fsys := qubekitTree(mols...)
	found, err := Discover(fsys, DefaultDiscovery())
	if err != nil {
		Te.Fatal(err)
	}
	inputs, err := Load(fsys, found, 6, nil)
	if err != nil {
		Te.Fatal(err)
	}
	M, err := NewMerger(optimise, nil)
	if err != nil {
		Te.Fatal(err)
	}
	C, R, err := M.Merge(inputs)
	if err != nil {
		Te.Fatal(err)
	}
	b, err := C.Bytes()
	if err != nil {
		Te.Fatal(err)
	}
	return string(b), R
}

func contains(Te *testing.T, out string, want ...string) {
	Te.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			Te.Errorf("output lacks %q", w)
		}
	}
}

func TestMergeOffsets(Te *testing.T) {
	out, R := merge(Te, nil, hocl, hyf)
	if R.Molecules != 2 || R.Atoms != 5 {
		Te.Errorf("report %+v", R)
	}
	contains(Te, out,
		"<Residue name=\"hocl\">\n<Atom name=\"QUBE_0000\" type=\"QUBE_0000\"/>\n",
		"<Residue name=\"hyf\">\n<Atom name=\"QUBE_0003\" type=\"QUBE_0003\"/>\n<Atom name=\"QUBE_0004\" type=\"QUBE_0004\"/>\n<Bond from=\"0\" to=\"1\"/>\n</Residue>",
		`<Type class="QUBE_0004" element="F" mass="1.008" name="QUBE_0004"/>`,
		`<Bond class1="QUBE_0003" class2="QUBE_0004" length="0.1" k="300000.0"/>`,
		`<Angle class1="QUBE_0000" class2="QUBE_0001" class3="QUBE_0002" angle="1.9" k="400.0"/>`,
		`<Proper class1="QUBE_0000" class2="QUBE_0001" class3="QUBE_0000" class4="QUBE_0001" k1="1.0" periodicity1="1" phase1="0.0"/>`,
		`<Proper class1="QUBE_0003" class2="QUBE_0004" class3="QUBE_0003" class4="QUBE_0004" k1="1.0" periodicity1="1" phase1="0.0"/>`,
	)
	if strings.Count(out, "<Proper ") != 2 {
		Te.Errorf("expected 2 torsions:\n%s", out)
	}
	if strings.Count(out, "<Type ") != 5 {
		Te.Errorf("expected 5 atom types:\n%s", out)
	}
}

func TestMergeAnnotations(Te *testing.T) {
	out, R := merge(Te, nil, hocl, hyf)
	contains(Te, out,
		`<ForceBalance>`+"\n"+`<FElement ffree="1.58" bfree="9.5" vfree="18.2" parameterize="ffree"/>`+"\n"+
			`<ClElement clfree="1.88" bfree="94.6" vfree="65.1" parameterize="clfree"/>`+"\n"+
			`<BrElement brfree="1.96" bfree="162.0" vfree="95.7" parameterize="brfree"/>`+"\n"+
			`<SElement sfree="2.00" bfree="134.0" vfree="75.2" parameterize="sfree"/>`+"\n</ForceBalance>",
		`<Atom charge="0.12" sigma="0.3" epsilon="0.2" type="QUBE_0002" volume="70.5" bfree="94.6" vfree="65.1" parameter_eval="epsilon=(1.2207*(70.5/65.1)**0.48856)*94.6/(128*PARM['ClElement/clfree']**6)*57.65243631675715, sigma=2**(5/6)*(70.5/65.1)**(1/3)*PARM['ClElement/clfree']*0.1"/>`,
		`<Atom charge="0.11" sigma="0.3" epsilon="0.2" type="QUBE_0004" volume="17.0" bfree="9.5" vfree="18.2" parameter_eval=`,
		`<Atom charge="0.10" sigma="0.3" epsilon="0.2" type="QUBE_0000"/>`,
		`<Atom charge="0.11" sigma="0.3" epsilon="0.2" type="QUBE_0001"/>`,
		`<Atom charge="0.10" sigma="0.3" epsilon="0.2" type="QUBE_0003"/>`,
	)
	if n := strings.Count(out, "parameter_eval"); n != 2 {
		Te.Errorf("%d annotated atoms, want 2", n)
	}
	if R.PolarH != 1 {
		Te.Errorf("%d polar hydrogens, want 1", R.PolarH)
	}
	if len(R.Categories) != 2 || R.Categories[0].Name != "F" || R.Categories[1].Name != "Cl" {
		Te.Fatalf("report categories %+v", R.Categories)
	}
	if cl := R.Categories[1]; cl.Atoms != 1 || math.Abs(cl.RatioMean-70.5/65.1) > 1e-12 {
		Te.Errorf("Cl statistics %+v", cl)
	}
}

func TestMergePolarHydrogen(Te *testing.T) {
	out, _ := merge(Te, []string{"X", "H"}, hocl, hyf)
	contains(Te, out,
		`<HElement hfree="1.64" bfree="6.5" vfree="7.6" parameterize="hfree"/>`+"\n"+`<XElement hpolfree="1.00" bfree="6.5" vfree="7.6" parameterize="hpolfree"/>`,
		`type="QUBE_0000" volume="2.5" bfree="6.5" vfree="7.6" parameter_eval="epsilon=(1.2207*(2.5/7.6)**0.48856)*6.5/(128*PARM['XElement/hpolfree']**6)`,
		`type="QUBE_0003" volume="3.0" bfree="6.5" vfree="7.6" parameter_eval="epsilon=(1.2207*(3.0/7.6)**0.48856)*6.5/(128*PARM['HElement/hfree']**6)`,
	)
	if strings.Contains(out, "ClElement") {
		Te.Error("Cl is not optimised")
	}
}

func TestMergeVirtualSite(Te *testing.T) {
	//hyf is listed first, water starts at 2
	out, _ := merge(Te, []string{"O", "X"}, tip4, hyf)
	contains(Te, out,
		`<Type class="X5" mass="0" name="v-site0005"/>`,
		`<Atom name="X5" type="v-site0005"/>`,
		`<VirtualSite atom1="0" atom2="1" atom3="2" index="3" p1="0.05" p2="0.0" p3="0.0" type="localCoords" wo1="1.0" wo2="0.0" wo3="0.0" wx1="-1.0" wx2="1.0" wx3="0.0" wy1="-1.0" wy2="0.0" wy3="1.0"/>`,
		`<Atom charge="0.13" sigma="0.3" epsilon="0.2" type="v-site0005"/>`,
		`type="QUBE_0002" volume="24.0" bfree="15.6" vfree="22.1"`,
		`type="QUBE_0003" volume="2.0" bfree="6.5" vfree="7.6" parameter_eval="epsilon=(1.2207*(2.0/7.6)**0.48856)*6.5/(128*PARM['XElement/hpolfree']**6)`,
		`<Residue name="water">`+"\n"+`<Atom name="QUBE_0002" type="QUBE_0002"/>`,
	)
	if n := strings.Count(out, "parameter_eval"); n != 3 {
		Te.Errorf("%d annotated atoms, want 3", n)
	}
}

func TestMergeDeterministic(Te *testing.T) {
	a, _ := merge(Te, nil, hocl, hyf, tip4)
	b, _ := merge(Te, nil, hocl, hyf, tip4)
	if a != b {
		Te.Error("two merges of the same input differ")
	}
}

func TestMergeLookupErrors(Te *testing.T) {
	short := hyf
	short.symbols = []string{"H"}
	short.volumes = []float64{3.0}
	unknown := hyf
	unknown.symbols = []string{"H", "Xe"}
	for name, m := range map[string]testMolecule{"missing record": short, "unknown element": unknown} {
		fsys := qubekitTree(m)
		found, err := Discover(fsys, DefaultDiscovery())
		if err != nil {
			Te.Fatal(err)
		}
		inputs, err := Load(fsys, found, 6, nil)
		if err != nil {
			Te.Fatal(err)
		}
		M, _ := NewMerger(nil, nil)
		_, _, err = M.Merge(inputs)
		var E *Error
		if !errors.Is(err, Lookup) || !errors.As(err, &E) || E.Molecule() != "hyf" {
			Te.Errorf("%s: expected a Lookup error naming hyf, got %v", name, err)
		}
	}
}

func TestMergeLogs(Te *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	fsys := qubekitTree(hocl)
	found, _ := Discover(fsys, DefaultDiscovery())
	inputs, err := Load(fsys, found, 6, logger)
	if err != nil {
		Te.Fatal(err)
	}
	M, _ := NewMerger(nil, logger)
	_, R, err := M.Merge(inputs)
	if err != nil {
		Te.Fatal(err)
	}
	R.Log(logger)
	for _, want := range []string{
		"[load    ] [status=ok] hocl (3 types, 3 charges)",
		"[merge   ] [status=ok] hocl (3 atoms, offset 0, 1 polar H)",
		"[report  ] 1 molecule(s), 3 atom type(s), 1 polar hydrogen(s)",
		"[report  ] Cl    1 atom(s)",
	} {
		if !strings.Contains(buf.String(), want) {
			Te.Errorf("log lacks %q:\n%s", want, buf.String())
		}
	}
}
