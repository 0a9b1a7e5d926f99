/*
Copyright © 2024 Jonathan Taylor <jonrtaylor12@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

package cmd

import (
	"fmt"

	"github.com/jt05610/cpn"
	"github.com/jt05610/cpn/caser"
	"github.com/spf13/cobra"
)

// findNode looks a node up by id, then by the key its display name would have
// in a petrifile.
func findNode(net *cpn.Net, ref string) (cpn.Node, bool) {
	for _, id := range []string{ref, caser.Snake(ref)} {
		if p, ok := net.Place(id); ok {
			return p, true
		}
		if t, ok := net.Transition(id); ok {
			return t, true
		}
	}
	return nil, false
}

func newSubnetCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "subnet <node>",
		Short: "Print the neighbourhood of a place or transition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := o.load(cmd.Context())
			if err != nil {
				return err
			}
			node, ok := findNode(l.net, args[0])
			if !ok {
				return fmt.Errorf("no place or transition %q", args[0])
			}
			sub := l.net.Subnet(node)
			for _, a := range sub.Arcs() {
				fmt.Fprintln(cmd.OutOrStdout(), a)
			}
			return nil
		},
	}
}
