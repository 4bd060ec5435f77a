package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"splice"
)

func newGraphCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "graph <manifest>",
		Short: "Show the resolved pipeline graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, resolution, err := ctx.loadPipeline(args[0])
			if err != nil {
				return err
			}
			chain, err := resolution.FilterChain()
			if err != nil {
				return err
			}

			views := buildGraphViews(resolution)
			if asJSON {
				return writeJSON(cmd, graphView{
					Name:        m.Name,
					Digest:      resolution.Digest().String(),
					Nodes:       views,
					FilterGraph: chain,
				})
			}

			out := cmd.OutOrStdout()
			if m.Name != "" {
				fmt.Fprintf(out, "Pipeline: %s\n", m.Name)
			}
			fmt.Fprintf(out, "Digest:   %s\n", resolution.Digest().Short())

			rows := make([][]string, 0, len(views))
			for i, view := range views {
				rows = append(rows, []string{
					strconv.Itoa(i),
					view.Kind,
					truncate(view.Node, 60),
					strings.Join(view.Inputs, " "),
					strings.Join(view.Labels, " "),
				})
			}
			table := renderTable(
				[]string{"#", "Kind", "Node", "Inputs", "Labels"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
			)
			fmt.Fprintln(out, table)

			if chain != "" {
				fmt.Fprintf(out, "Filter graph: %s\n", chain)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the resolved graph as JSON")
	return cmd
}

type graphView struct {
	Name        string          `json:"name,omitempty"`
	Digest      string          `json:"digest"`
	Nodes       []graphNodeView `json:"nodes"`
	FilterGraph string          `json:"filter_graph,omitempty"`
}

type graphNodeView struct {
	Kind   string   `json:"kind"`
	Node   string   `json:"node"`
	Inputs []string `json:"inputs,omitempty"`
	Labels []string `json:"labels,omitempty"`
	Fused  bool     `json:"fused,omitempty"`
}

// buildGraphViews flattens the resolution into display rows: one per
// node in topological order, with inputs rendered the way the compiled
// filter expression refers to them.
func buildGraphViews(r *splice.Resolution) []graphNodeView {
	labels := make(map[splice.Digest][]string)
	for _, n := range r.Order {
		for _, in := range n.Inputs() {
			label, ok := r.Label(in.Node(), in.Index())
			if !ok {
				continue
			}
			key := in.Node().Digest()
			if !containsString(labels[key], label) {
				labels[key] = append(labels[key], label)
			}
		}
	}

	views := make([]graphNodeView, 0, len(r.Order))
	for _, n := range r.Order {
		view := graphNodeView{
			Kind:  n.Kind().String(),
			Node:  n.String(),
			Fused: r.Fused(n),
		}
		for _, in := range n.Inputs() {
			view.Inputs = append(view.Inputs, inputRef(r, in))
		}
		for _, label := range labels[n.Digest()] {
			view.Labels = append(view.Labels, "["+label+"]")
		}
		views = append(views, view)
	}
	return views
}

func inputRef(r *splice.Resolution, in splice.Stream) string {
	parent := in.Node()
	switch parent.Kind() {
	case splice.KindSource:
		idx, ok := r.SourceIndex(parent)
		if !ok {
			return "?"
		}
		if in.Explicit() {
			return fmt.Sprintf("%d:%d", idx, in.Index())
		}
		return strconv.Itoa(idx)
	case splice.KindFilter:
		if label, ok := r.Label(parent, in.Index()); ok {
			return "[" + label + "]"
		}
		return "(fused)"
	default:
		if filename, ok := parent.Option("filename"); ok {
			return fmt.Sprint(filename)
		}
		return parent.Name()
	}
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
