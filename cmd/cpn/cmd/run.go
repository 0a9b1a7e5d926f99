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
	"errors"
	"fmt"

	"github.com/jt05610/cpn/sim"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCmd(o *options) *cobra.Command {
	var (
		maxSteps int
		cold     []string
	)
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Fire enabled transitions until none are left",
		Long: `Fire enabled transitions, first by name, until none are enabled or the step
limit is reached. Cold transitions are never fired. Each step is printed, then
the final marking as a JSON document.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := o.load(cmd.Context())
			if err != nil {
				return err
			}
			opts := []sim.Option{
				sim.WithLogger(o.logger),
				sim.WithHistoryLimit(o.env.HistoryLimit),
			}
			for _, id := range cold {
				t, ok := l.net.Transition(id)
				if !ok {
					return fmt.Errorf("%w: %s", sim.ErrUnknownTransition, id)
				}
				opts = append(opts, sim.WithCold(t))
			}
			s := sim.New(l.net, l.marking, opts...)
			steps, err := s.Run(cmd.Context(), maxSteps)
			for _, step := range steps {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d\t%s\n", step.Index, step.Transition)
			}
			if err != nil && !errors.Is(err, sim.ErrStepLimit) {
				return err
			}
			if err != nil {
				o.logger.Warn("Stopped at step limit", zap.Int("steps", maxSteps))
			}
			return writeMarking(cmd.OutOrStdout(), s.Marking())
		},
	}
	runCmd.Flags().IntVarP(&maxSteps, "max-steps", "n", 1000, "stop after this many firings, 0 for no limit")
	runCmd.Flags().StringSliceVar(&cold, "cold", nil, "ids of transitions that are never fired automatically")
	return runCmd
}
