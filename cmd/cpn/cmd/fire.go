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

	"github.com/jt05610/cpn/sim"
	"github.com/spf13/cobra"
)

func newFireCmd(o *options) *cobra.Command {
	var effects bool
	fireCmd := &cobra.Command{
		Use:   "fire <transition>...",
		Short: "Fire transitions in order and print the resulting marking",
		Long: `Fire transitions in order, starting from the selected marking, and print the
resulting marking as a JSON document. Transitions are given by id or name.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := o.load(cmd.Context())
			if err != nil {
				return err
			}
			s := sim.New(l.net, l.marking, sim.WithLogger(o.logger))
			for _, id := range args {
				step, err := s.FireByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if effects {
					for _, e := range step.Effects {
						fmt.Fprintln(cmd.ErrOrStderr(), e)
					}
				}
			}
			return writeMarking(cmd.OutOrStdout(), s.Marking())
		},
	}
	fireCmd.Flags().BoolVarP(&effects, "effects", "e", false, "print the effects of each firing to stderr")
	return fireCmd
}
