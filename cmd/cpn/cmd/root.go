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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/jt05610/cpn"
	"github.com/jt05610/cpn/builder"
	"github.com/jt05610/cpn/env"
	"github.com/jt05610/cpn/petrifile"
	"github.com/jt05610/cpn/petrifile/v1/yaml"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type options struct {
	file        string
	searchDirs  []string
	marking     string
	markingFile string
	logLevel    string

	env    *env.Environment
	logger *zap.Logger
}

// loaded is a net read from a petrifile together with its starting marking.
type loaded struct {
	def     *petrifile.Definition
	net     *cpn.Net
	marking cpn.Marking
}

func (o *options) setup() error {
	e, err := env.Load()
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		lvl, err := zapcore.ParseLevel(o.logLevel)
		if err != nil {
			return err
		}
		e.LogLevel = lvl
	}
	if len(o.searchDirs) > 0 {
		dirs := make([]string, 0, len(o.searchDirs)+len(e.SearchDirs))
		dirs = append(dirs, o.searchDirs...)
		e.SearchDirs = append(dirs, e.SearchDirs...)
	}
	logger, err := e.Logger()
	if err != nil {
		return err
	}
	e.Log(logger)
	o.env = e
	o.logger = logger
	return nil
}

func (o *options) load(ctx context.Context) (*loaded, error) {
	if o.file == "" {
		return nil, fmt.Errorf("no petrifile given, use --file")
	}
	b := builder.NewBuilder(nil, o.env.SearchDirs...).WithService("yaml", &yaml.Service{})
	d, err := b.Build(ctx, o.file)
	if err != nil {
		return nil, err
	}
	net, err := d.Build()
	if err != nil {
		return nil, err
	}
	m, err := o.startMarking(d, net)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("Loaded net",
		zap.String("name", d.Name),
		zap.Int("places", len(net.Places())),
		zap.Int("transitions", len(net.Transitions())),
		zap.Int("tokens", m.Count()),
	)
	return &loaded{def: d, net: net, marking: m}, nil
}

func (o *options) startMarking(d *petrifile.Definition, net *cpn.Net) (cpn.Marking, error) {
	if o.markingFile != "" {
		f, err := os.Open(o.markingFile)
		if err != nil {
			return cpn.Marking{}, err
		}
		defer func() {
			_ = f.Close()
		}()
		var doc cpn.Document
		if err := json.NewDecoder(f).Decode(&doc); err != nil {
			return cpn.Marking{}, fmt.Errorf("%s: %w", o.markingFile, err)
		}
		return d.DecodeMarking(doc)
	}
	if o.marking == "" {
		return net.EmptyMarking(), nil
	}
	m, ok := net.ExampleMarkings()[o.marking]
	if !ok {
		names := make([]string, 0, len(net.ExampleMarkings()))
		for name := range net.ExampleMarkings() {
			names = append(names, name)
		}
		sort.Strings(names)
		return cpn.Marking{}, fmt.Errorf("no marking %q, have [%s]", o.marking, strings.Join(names, ", "))
	}
	return m, nil
}

func writeMarking(w io.Writer, m cpn.Marking) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(cpn.EncodeMarking(m))
}

func newRootCmd() *cobra.Command {
	o := &options{}
	rootCmd := &cobra.Command{
		Use:   "cpn",
		Short: "cpn inspects and simulates colored petri nets",
		Long: `cpn loads colored petri nets from petrifiles and lets you list enabled
transitions, fire them, run the net until it settles, and draw it with graphviz.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if o.logger != nil {
				_ = o.logger.Sync()
			}
		},
	}
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&o.file, "file", "f", "", "petrifile to load")
	flags.StringSliceVarP(&o.searchDirs, "search-dir", "I", nil, "directories searched for petrifiles and includes")
	flags.StringVarP(&o.marking, "marking", "m", "", "name of an example marking in the petrifile to start from")
	flags.StringVar(&o.markingFile, "marking-file", "", "JSON marking document to start from")
	flags.StringVar(&o.logLevel, "log-level", "", "log level, overrides "+env.LogLevelKey)

	rootCmd.AddCommand(
		newEnabledCmd(o),
		newFireCmd(o),
		newRunCmd(o),
		newSubnetCmd(o),
		newVizCmd(o),
		newMarkingCmd(o),
	)
	return rootCmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
