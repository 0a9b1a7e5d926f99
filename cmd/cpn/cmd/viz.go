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
	"os"
	"path/filepath"
	"strings"

	"github.com/jt05610/cpn/graphviz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newVizCmd(o *options) *cobra.Command {
	var (
		output string
		format string
	)
	vizCmd := &cobra.Command{
		Use:   "viz",
		Short: "Create a graphviz figure from a petri net",
		Long: `Create a graphviz figure from a petri net. When a marking is selected, places
show their tokens and enabled transitions are highlighted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := o.load(cmd.Context())
			if err != nil {
				return err
			}
			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(output), ".")
			}
			f, err := graphviz.ParseFormat(format)
			if err != nil {
				return err
			}
			w := graphviz.New(&graphviz.Config{
				Name:    l.def.Name,
				Font:    graphviz.Font(o.env.Font),
				RankDir: graphviz.RankDir(o.env.RankDir),
				Format:  f,
			})
			out := cmd.OutOrStdout()
			if output != "" && output != "-" {
				if err := os.MkdirAll(filepath.Dir(output), os.ModePerm); err != nil {
					return err
				}
				df, err := os.Create(output)
				if err != nil {
					return err
				}
				defer func() {
					_ = df.Close()
				}()
				out = df
			}
			if o.marking == "" && o.markingFile == "" {
				err = w.Flush(out, l.net)
			} else {
				err = w.FlushMarked(out, l.net, l.marking)
			}
			if err != nil {
				return err
			}
			o.logger.Info("Wrote figure", zap.String("output", output), zap.String("format", string(f)))
			return nil
		},
	}
	vizCmd.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	vizCmd.Flags().StringVar(&format, "format", "", "output format (dot, svg, png, jpg), defaults to the output extension")
	return vizCmd
}
