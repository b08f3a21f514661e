package ffmerge

import (
	"fmt"
	"slices"

	"github.com/ffmerge/ffmerge/ffxml"
	"gonum.org/v1/gonum/graph/simple"
)

// elements bonded to a hydrogen that make it polar.
var polarPartners = []string{"O", "N", "S"}

// Topology is the bond graph of one molecule. Nodes are the local atom
// indexes, labelled with the element of the atom type at that index.
type Topology struct {
	g        *simple.UndirectedGraph
	elements []string
}

// NewTopology builds the bond graph of F. The local indexes used by the
// bonds must refer to atom types of F.
func NewTopology(F *ffxml.Fragment) (*Topology, error) {
	T := &Topology{g: simple.NewUndirectedGraph(), elements: make([]string, F.Len())}
	for i, v := range F.Types {
		T.elements[i] = v.Element
		T.g.AddNode(simple.Node(i))
	}
	for _, b := range F.Connectivity() {
		from, err1 := LocalIndex(b.From)
		to, err2 := LocalIndex(b.To)
		if err1 != nil || err2 != nil {
			return nil, newError(Format, "", "", fmt.Sprintf("bad bond %s-%s", b.From, b.To), nil)
		}
		if from == to {
			return nil, newError(Format, "", "", fmt.Sprintf("atom %d bonded to itself", from), nil)
		}
		if !T.has(from) || !T.has(to) {
			return nil, newError(Lookup, "", "", fmt.Sprintf("bond %d-%d refers to an atom that is not in the molecule", from, to), nil)
		}
		T.g.SetEdge(T.g.NewEdge(simple.Node(from), simple.Node(to)))
	}
	return T, nil
}

func (T *Topology) has(i int) bool {
	return i >= 0 && i < len(T.elements)
}

// Len returns the number of atoms.
func (T *Topology) Len() int {
	return len(T.elements)
}

// Element returns the element of atom i, and false if there is no such atom.
func (T *Topology) Element(i int) (string, bool) {
	if !T.has(i) {
		return "", false
	}
	return T.elements[i], true
}

// Neighbors returns the indexes of the atoms bonded to i, in increasing order.
func (T *Topology) Neighbors(i int) []int {
	if !T.has(i) {
		return nil
	}
	ret := make([]int, 0, 4)
	for nodes := T.g.From(int64(i)); nodes.Next(); {
		ret = append(ret, int(nodes.Node().ID()))
	}
	slices.Sort(ret)
	return ret
}

// PolarH returns true if atom i is a hydrogen bonded to O, N or S.
func (T *Topology) PolarH(i int) bool {
	if el, ok := T.Element(i); !ok || el != "H" {
		return false
	}
	for _, n := range T.Neighbors(i) {
		if slices.Contains(polarPartners, T.elements[n]) {
			return true
		}
	}
	return false
}
