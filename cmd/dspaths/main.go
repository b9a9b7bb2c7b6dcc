// Command dspaths lists the datasets of an experiment and where their
// artifacts live.
//
// Usage:
//
//	dspaths [-c config.yaml] [-d filter] [-toolkit name] [-run name] [-mkdir]
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ha1tch/nmtlab/pkg/config"
	"github.com/ha1tch/nmtlab/pkg/dataset"
	"github.com/ha1tch/nmtlab/pkg/vocab"
)

var (
	configPath = flag.String("c", "", "experiment config (YAML); built-in default if empty")
	filter     = flag.String("d", "", "only datasets whose name contains this")
	toolkit    = flag.String("toolkit", "", "toolkit for model paths (default from config)")
	runName    = flag.String("run", "", "also list the model paths of this run")
	mkdir      = flag.Bool("mkdir", false, "create the dataset folders")
	quiet      = flag.Bool("q", false, "print dataset names only")
	help       = flag.Bool("h", false, "display this help")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if *help {
		usage()
		os.Exit(0)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fatal("%v", err)
		}
	}
	if *toolkit == "" {
		*toolkit = cfg.Report.Toolkit
	}

	dss, err := cfg.Grid().Expand()
	if err != nil {
		fatal("%v", err)
	}

	n := 0
	for _, ds := range dss {
		if *filter != "" && !strings.Contains(ds.String(), strings.ToLower(*filter)) {
			continue
		}
		n++
		if *quiet {
			fmt.Println(ds.String())
		} else {
			printPaths(os.Stdout, ds, *toolkit, *runName)
		}
		if *mkdir {
			if err := dataset.MakeDirs(ds); err != nil {
				fatal("%s: %v", ds, err)
			}
		}
	}

	if n == 0 {
		fatal("no dataset matches %q", *filter)
	}
	if *mkdir {
		fmt.Fprintf(os.Stderr, "dspaths: created folders for %d datasets\n", n)
	}
}

// printPaths writes the artifact paths of ds, one per line.
func printPaths(w io.Writer, ds *dataset.Dataset, toolkit, run string) {
	fmt.Fprintf(w, "%s\n", ds)
	line := func(label, path string) {
		fmt.Fprintf(w, "  %-12s %s\n", label, path)
	}

	line("path", ds.Path())
	line("raw", ds.RawPath(""))
	line("splits", ds.SplitPath(""))
	if ds.Subword().Pretok() {
		line("pretok", ds.PretokPath(""))
	}
	line("encoded", ds.EncodedPath(""))

	langs := ds.Langs()
	if ds.MergeVocabs() {
		langs = langs[:1]
	}
	for _, lang := range langs {
		if prefix, ok := ds.VocabFile(lang); ok {
			line("vocab "+ds.VocabLang(lang), prefix+vocab.VocabExt)
		}
	}
	line("data-bin", ds.ModelDataBin(toolkit, ""))
	line("plots", ds.PlotsPath())

	if run == "" {
		return
	}
	line("checkpoints", ds.ModelCheckpointsPath(toolkit, run, ""))
	line("logs", ds.ModelLogsPath(toolkit, run))
	line("eval", ds.ModelEvalPath(toolkit, run, ds.String()))
	line("scores", ds.ModelScoresPath(toolkit, run, ds.String(), 1))
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: dspaths [-c config.yaml] [-d filter] [-run name] [-mkdir] [-q]

List every dataset of an experiment grid with the paths of its artifacts.

Options:
  -c file      experiment config (YAML); built-in default if empty
  -d filter    only datasets whose name contains filter
  -toolkit t   toolkit for model paths (default from config)
  -run name    also list checkpoints, logs, eval and scores of run
  -mkdir       create raw, splits, encoded, vocab and plots folders
  -q           print dataset names only
  -h           display this help

Examples:
  dspaths -c europarl.yaml -q
  dspaths -c europarl.yaml -d es-en_100k -run transformer -mkdir
`)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "dspaths: "+format+"\n", args...)
	os.Exit(1)
}
