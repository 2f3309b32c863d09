// Package cli wires the command line to the benchmark orchestrator.
package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lequangloc/benchexec/internal/config"
	"github.com/lequangloc/benchexec/internal/core"
)

var version = "1.3-dev"

func newRootCmd(exitCode *int) *cobra.Command {
	var (
		runDefinitions []string
		taskSets       []string
		name           string
		outputPath     string
		timeLimit      int
		memoryLimit    int
		numOfThreads   int
		coreLimit      int
		maxLogfileSize int
		commit         bool
		commitMessage  string
		startTime      string
		debug          bool
	)

	root := &cobra.Command{
		Use:     "benchexec FILE [FILE...]",
		Short:   "Execute benchmarks for a given tool with a set of input files",
		Long: "Execute benchmarks for a given tool with a set of input files.\n" +
			"Benchmarks are defined in a definition file given as input.\n" +
			"Command-line parameters can additionally be read from a file " +
			"if a file name prefixed with '@' is given as argument.",
		Version:       version,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := &config.Config{
				Files:                  args,
				SelectedRunDefinitions: runDefinitions,
				SelectedTaskSets:       taskSets,
				Name:                   name,
				OutputPath:             config.NormalizeOutputPath(outputPath),
				TimeLimit:              timeLimit,
				MemoryLimit:            memoryLimit,
				CoreLimit:              coreLimit,
				NumOfThreads:           numOfThreads,
				MaxLogfileSize:         maxLogfileSize,
				Commit:                 commit,
				CommitMessage:          commitMessage,
				Debug:                  debug,
			}
			if startTime != "" {
				t, err := config.ParseStartTime(startTime)
				if err != nil {
					return err
				}
				cfg.StartTime = t
			}

			setupLogging(debug)

			b := core.New(cfg)
			installSignalHandlers(b)

			rc, err := b.Start()
			if b.Interrupted() && rc == 0 {
				rc = 1
			}
			*exitCode = rc
			return err
		},
	}

	root.Flags().StringArrayVarP(&runDefinitions, "rundefinition", "r", nil,
		"Run only the named run definition; can be given several times")
	root.Flags().StringArrayVarP(&taskSets, "tasks", "t", nil,
		"Run only the tasks from the named task set; can be given several times")
	root.Flags().StringVarP(&name, "name", "n", "",
		"Set the name of this benchmark execution")
	root.Flags().StringVarP(&outputPath, "outputpath", "o", config.DefaultOutputPath,
		"Output prefix for the generated results")
	root.Flags().IntVarP(&timeLimit, "timelimit", "T", 0,
		"Time limit in seconds for each run (-1 to disable)")
	root.Flags().IntVarP(&memoryLimit, "memorylimit", "M", 0,
		"Memory limit in MB (-1 to disable)")
	root.Flags().IntVarP(&numOfThreads, "numOfThreads", "N", 0,
		"Run n runs in parallel")
	root.Flags().IntVarP(&coreLimit, "limitCores", "c", 0,
		"Limit each run of the tool to N CPU cores (-1 to disable)")
	root.Flags().IntVar(&maxLogfileSize, "maxLogfileSize", config.DefaultMaxLogfileSize,
		"Shrink logfiles to the given size in MB if they get bigger (0 or -1 to disable)")
	root.Flags().BoolVar(&commit, "commit", false,
		"If the output path is a git repository without local changes, add and commit the result files")
	root.Flags().StringVar(&commitMessage, "message", "Results for benchmark run",
		"Commit message if --commit is used")
	root.Flags().StringVar(&startTime, "startTime", "",
		"Set the given date and time as the start time of the benchmark ('YYYY-MM-DD HH:MM')")
	root.Flags().BoolVarP(&debug, "debug", "d", false,
		"Enable debug output")

	return root
}

func setupLogging(debug bool) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

// installSignalHandlers makes SIGTERM harmless, so an external
// termination request cannot kill the process while result files are
// being written, and turns the first SIGINT into a cooperative stop.
func installSignalHandlers(b *core.BenchExec) {
	term := make(chan os.Signal, 1)
	signal.Notify(term, syscall.SIGTERM)
	go func() {
		for sig := range term {
			log.Warnf("Received signal %d, ignoring it", sig)
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		for range interrupt {
			b.Stop()
			fmt.Fprintln(os.Stderr, "\n\nScript was interrupted by user, some runs may not be done.")
		}
	}()
}

// Execute runs the CLI and returns the process exit code: the logical
// OR of the per-benchmark-file codes, or non-zero on abort.
func Execute() int {
	args, err := config.ExpandArgsFiles(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	exitCode := 0
	root := newRootCmd(&exitCode)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if exitCode == 0 {
			exitCode = 1
		}
	}
	return exitCode
}
