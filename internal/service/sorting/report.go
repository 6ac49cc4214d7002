package sorting

import (
	"strconv"
	"strings"

	"github.com/panbanda/stepdown/internal/output"
	"github.com/panbanda/stepdown/pkg/ast"
	"github.com/panbanda/stepdown/pkg/callgraph"
	"github.com/panbanda/stepdown/pkg/signature"
	"github.com/panbanda/stepdown/pkg/sorter"
)

// MethodEntry is one method in computed order.
type MethodEntry struct {
	Rank      int    `json:"rank" yaml:"rank" toon:"rank"`
	Signature string `json:"signature" yaml:"signature" toon:"signature"`
	Line      int    `json:"line,omitempty" yaml:"line,omitempty" toon:"line"`
	Access    string `json:"access,omitempty" yaml:"access,omitempty" toon:"access"`
	Callees   int    `json:"callees" yaml:"callees" toon:"callees"`
	Callers   int    `json:"callers" yaml:"callers" toon:"callers"`
}

// OrderResult is the computed order of one file's top-level type.
type OrderResult struct {
	Path     string        `json:"path" yaml:"path" toon:"path"`
	Type     string        `json:"type" yaml:"type" toon:"type"`
	Methods  []MethodEntry `json:"methods" yaml:"methods" toon:"methods"`
	Clusters [][]string    `json:"clusters,omitempty" yaml:"clusters,omitempty" toon:"clusters"`
	Cycles   [][]string    `json:"cycles,omitempty" yaml:"cycles,omitempty" toon:"cycles"`
	Sorted   bool          `json:"sorted" yaml:"sorted" toon:"sorted"`
	Source   string        `json:"source,omitempty" yaml:"source,omitempty" toon:"source"`
}

// Order describes a plan. Only multi-member clusters are listed.
func Order(plan *sorter.Plan) (*OrderResult, error) {
	text, changed, err := Preview(plan)
	if err != nil {
		return nil, err
	}

	decls := make(map[signature.Signature]*ast.MethodDecl)
	for _, m := range plan.Type.Methods() {
		sig := signature.FromMethod(m)
		if _, dup := decls[sig]; !dup {
			decls[sig] = m
		}
	}

	res := &OrderResult{
		Path:   plan.Unit.Path,
		Type:   plan.Type.Name,
		Sorted: !changed,
		Cycles: stringify(callgraph.Cycles(plan.Graph.Nodes())),
	}
	if changed {
		res.Source = string(text)
	}
	for i, sig := range plan.Order {
		e := MethodEntry{Rank: i + 1, Signature: sig.String()}
		if m, ok := decls[sig]; ok {
			e.Line = m.Pos.Line
			e.Access = m.Modifiers.Access().String()
		}
		if n, ok := plan.Graph.Node(sig); ok {
			e.Callees = len(n.Callees())
			e.Callers = len(n.Callers())
		}
		res.Methods = append(res.Methods, e)
	}
	for _, cl := range plan.Clusters {
		if cl.Len() > 1 {
			res.Clusters = append(res.Clusters, stringify([][]signature.Signature{cl.Signatures()})[0])
		}
	}
	return res, nil
}

func stringify(groups [][]signature.Signature) [][]string {
	if len(groups) == 0 {
		return nil
	}
	out := make([][]string, len(groups))
	for i, g := range groups {
		out[i] = make([]string, len(g))
		for j, sig := range g {
			out[i][j] = sig.String()
		}
	}
	return out
}

// Report renders the order as tables. The sorted source is data only.
func (r *OrderResult) Report() *output.Report {
	rows := make([][]string, len(r.Methods))
	for i, m := range r.Methods {
		rows[i] = []string{
			strconv.Itoa(m.Rank),
			m.Signature,
			strconv.Itoa(m.Line),
			m.Access,
			strconv.Itoa(m.Callers),
			strconv.Itoa(m.Callees),
		}
	}

	status := "in stepdown order"
	if !r.Sorted {
		status = "out of order"
	}
	sections := []output.Renderable{
		output.NewTable("Method order", []string{"Rank", "Signature", "Line", "Access", "Callers", "Callees"}, rows,
			[]string{"", strconv.Itoa(len(r.Methods)) + " methods", "", "", "", status}, nil),
	}
	if len(r.Clusters) > 0 {
		sections = append(sections, groupTable("Clusters", r.Clusters))
	}
	if len(r.Cycles) > 0 {
		sections = append(sections, groupTable("Cycles", r.Cycles))
	}
	return &output.Report{Title: r.Type + " (" + r.Path + ")", Sections: sections, Data: r}
}

func groupTable(title string, groups [][]string) *output.Table {
	rows := make([][]string, len(groups))
	for i, g := range groups {
		rows[i] = []string{strconv.Itoa(i + 1), strings.Join(g, ", ")}
	}
	return output.NewTable(title, []string{"#", "Members"}, rows, nil, nil)
}

// Edge is one call from a method to another in the same type.
type Edge struct {
	From string `json:"from" yaml:"from" toon:"from"`
	To   string `json:"to" yaml:"to" toon:"to"`
}

// GraphResult is the call graph of one file's top-level type.
type GraphResult struct {
	Path   string     `json:"path" yaml:"path" toon:"path"`
	Type   string     `json:"type" yaml:"type" toon:"type"`
	Nodes  []string   `json:"nodes" yaml:"nodes" toon:"nodes"`
	Edges  []Edge     `json:"edges" yaml:"edges" toon:"edges"`
	Cycles [][]string `json:"cycles,omitempty" yaml:"cycles,omitempty" toon:"cycles"`
}

// Graph describes a plan's call graph in creation order.
func Graph(plan *sorter.Plan) *GraphResult {
	nodes := plan.Graph.Nodes()
	res := &GraphResult{
		Path:   plan.Unit.Path,
		Type:   plan.Type.Name,
		Cycles: stringify(callgraph.Cycles(nodes)),
	}
	for _, n := range nodes {
		res.Nodes = append(res.Nodes, n.Signature().String())
		for _, callee := range n.Callees() {
			res.Edges = append(res.Edges, Edge{From: n.Signature().String(), To: callee.Signature().String()})
		}
	}
	return res
}

// Report renders the edge list and any cycles.
func (r *GraphResult) Report() *output.Report {
	rows := make([][]string, len(r.Edges))
	for i, e := range r.Edges {
		rows[i] = []string{e.From, e.To}
	}
	sections := []output.Renderable{
		output.NewTable("Calls", []string{"Caller", "Callee"}, rows,
			[]string{strconv.Itoa(len(r.Nodes)) + " nodes", strconv.Itoa(len(r.Edges)) + " edges"}, nil),
	}
	if len(r.Cycles) > 0 {
		sections = append(sections, groupTable("Cycles", r.Cycles))
	}
	return &output.Report{Title: r.Type + " call graph", Sections: sections, Data: r}
}

// Mermaid renders the graph as a mermaid flowchart.
func (r *GraphResult) Mermaid() string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	ids := make(map[string]string, len(r.Nodes))
	for i, n := range r.Nodes {
		id := "n" + strconv.Itoa(i)
		ids[n] = id
		sb.WriteString("    " + id + "[\"" + sanitizeLabel(n) + "\"]\n")
	}
	for _, e := range r.Edges {
		sb.WriteString("    " + ids[e.From] + " --> " + ids[e.To] + "\n")
	}
	return sb.String()
}

func sanitizeLabel(s string) string {
	return strings.NewReplacer(`"`, "#quot;", "<", "#lt;", ">", "#gt;").Replace(s)
}
