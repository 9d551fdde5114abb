// Command greetgen batch-generates personalized voicemail greeting prompts
// for a PBX from a CSV of names or a single first/last pair.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/book-expert/logger"

	"github.com/pbxkit/greetgen/internal/batch"
	"github.com/pbxkit/greetgen/internal/config"
	"github.com/pbxkit/greetgen/internal/core"
	"github.com/pbxkit/greetgen/internal/namesource"
	"github.com/pbxkit/greetgen/internal/output"
	"github.com/pbxkit/greetgen/internal/synth"
	"github.com/pbxkit/greetgen/internal/transcode"
)

// Flag names.
const (
	flagInput    = "input"
	flagFirst    = "first"
	flagLast     = "last"
	flagGreeting = "greeting"
	flagOutput   = "output"
	flagVoice    = "voice"
	flagConfig   = "config"
	flagVerbose  = "verbose"
)

// Flag descriptions.
const (
	flagInputDesc    = "CSV file with firstname,lastname columns (batch mode)"
	flagFirstDesc    = "First name for single-user mode"
	flagLastDesc     = "Last name for single-user mode"
	flagGreetingDesc = "Greeting template ({firstname} and {lastname} placeholders)"
	flagOutputDesc   = "Output directory for generated WAV files"
	flagVoiceDesc    = "Synthesis voice identifier"
	flagConfigDesc   = "Path to a TOML config file overriding the defaults"
	flagVerboseDesc  = "Enable verbose logging"
)

// Log file names.
const (
	logFileNameDefault = "greetgen.log"
	logFileNameVerbose = "greetgen-verbose.log"
)

// Messages.
const (
	msgSummary        = "\nCompleted: %d successful, %d failed\n"
	msgFailedEntry    = "  failed: %s %s: %v\n"
	msgPartialWarning = "Warning: %d of %d entries failed; see log for details\n"
)

// ErrAllEntriesFailed indicates a batch where every attempted entry failed.
var ErrAllEntriesFailed = errors.New("all entries failed")

// appFlags holds the parsed command-line flag values.
type appFlags struct {
	input    string
	first    string
	last     string
	greeting string
	output   string
	voice    string
	config   string
	verbose  bool
}

func main() {
	err := run()
	if err != nil {
		// The file logger may not be initialized yet; use the standard
		// log package.
		log.Fatalf("Error: %v", err)
	}
}

// run is the main application entry point, returning an error on failure.
func run() error {
	flags := parseFlags()

	options, optionsErr := resolveOptions(flags)
	if optionsErr != nil {
		return optionsErr
	}

	// Mode violations are fatal before any entry processing starts.
	validateErr := options.Validate()
	if validateErr != nil {
		flag.Usage()

		return validateErr
	}

	fileLog, logErr := setupLogger(flags.verbose)
	if logErr != nil {
		return logErr
	}

	defer func() {
		closeErr := fileLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing logger: %v\n", closeErr)
		}
	}()

	return generate(context.Background(), options, fileLog)
}

// parseFlags defines and parses command-line flags, returning them in a struct.
func parseFlags() appFlags {
	var flags appFlags

	flag.StringVar(&flags.input, flagInput, "", flagInputDesc)
	flag.StringVar(&flags.first, flagFirst, "", flagFirstDesc)
	flag.StringVar(&flags.last, flagLast, "", flagLastDesc)
	flag.StringVar(&flags.greeting, flagGreeting, "", flagGreetingDesc)
	flag.StringVar(&flags.output, flagOutput, "", flagOutputDesc)
	flag.StringVar(&flags.voice, flagVoice, "", flagVoiceDesc)
	flag.StringVar(&flags.config, flagConfig, "", flagConfigDesc)
	flag.BoolVar(&flags.verbose, flagVerbose, false, flagVerboseDesc)
	flag.Parse()

	return flags
}

// resolveOptions merges flags, the optional config file, and the built-in
// defaults into the final options struct.
func resolveOptions(flags appFlags) (config.Options, error) {
	var fileConfig *config.FileConfig

	if flags.config != "" {
		loaded, loadErr := config.LoadFile(flags.config)
		if loadErr != nil {
			return config.Options{}, loadErr
		}

		fileConfig = loaded
	}

	options := config.Resolve(config.Options{
		InputFile: flags.input,
		FirstName: flags.first,
		LastName:  flags.last,
		Template:  flags.greeting,
		OutputDir: flags.output,
		Voice:     flags.voice,
	}, fileConfig)

	return options, nil
}

// setupLogger creates the file logger the pipeline components share.
func setupLogger(verbose bool) (*logger.Logger, error) {
	logFileName := logFileNameDefault
	if verbose {
		logFileName = logFileNameVerbose
	}

	fileLog, err := logger.New(os.TempDir(), logFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return fileLog, nil
}

// generate enumerates the entries, builds the pipeline, and applies the exit
// policy to the run's summary.
func generate(ctx context.Context, options config.Options, fileLog *logger.Logger) error {
	// Entries are enumerated before the synthesis client exists so invalid
	// input never triggers a network call.
	entries, entriesErr := enumerateEntries(options, fileLog)
	if entriesErr != nil {
		return entriesErr
	}

	synthesizer, synthErr := synth.New(ctx, fileLog)
	if synthErr != nil {
		return synthErr
	}

	generator := batch.New(
		synthesizer,
		transcode.New(options.FFmpegPath, fileLog),
		output.New(fileLog),
		options,
		fileLog,
	)

	summary := generator.Run(ctx, entries)
	reportSummary(summary)

	return applyExitPolicy(options, summary)
}

// enumerateEntries produces the ordered entry sequence for the active mode.
func enumerateEntries(options config.Options, fileLog *logger.Logger) ([]core.NameEntry, error) {
	if options.BatchMode() {
		entries, err := namesource.FromCSV(options.InputFile, fileLog)
		if err != nil {
			return nil, err
		}

		if len(entries) == 0 {
			return nil, fmt.Errorf("%w: %s", core.ErrNoEntries, options.InputFile)
		}

		return entries, nil
	}

	entry, err := namesource.Single(options.FirstName, options.LastName)
	if err != nil {
		return nil, err
	}

	return []core.NameEntry{entry}, nil
}

// reportSummary prints the run outcome to stdout.
func reportSummary(summary batch.Summary) {
	for _, failure := range summary.Failed {
		fmt.Printf(msgFailedEntry,
			failure.Entry.FirstName, failure.Entry.LastName, failure.Err)
	}

	fmt.Printf(msgSummary, summary.Done, len(summary.Failed))
}

// applyExitPolicy maps the summary onto the process exit contract: batch mode
// fails only when nothing succeeded; single-user mode propagates the one
// entry's failure.
func applyExitPolicy(options config.Options, summary batch.Summary) error {
	if !options.BatchMode() {
		if len(summary.Failed) > 0 {
			return summary.Failed[0].Err
		}

		return nil
	}

	if summary.AllFailed() {
		return fmt.Errorf("%w (%d entries)", ErrAllEntriesFailed, len(summary.Failed))
	}

	if len(summary.Failed) > 0 {
		fmt.Printf(msgPartialWarning, len(summary.Failed), summary.Attempted())
	}

	return nil
}
