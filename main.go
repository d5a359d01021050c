package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/bulga138/renglon/config"
	"github.com/bulga138/renglon/reader"
	"github.com/bulga138/renglon/source"
	"github.com/bulga138/renglon/version"
)

var (
	initConfig bool
	rawOutput  bool
	prompt     string
)

var rootCmd = &cobra.Command{
	Use:     "renglon",
	Short:   "Read a single line from standard input",
	Long:    "renglon reads exactly one line from standard input and writes it to standard output, switching the terminal into raw mode for the duration of the read when stdin is interactive.",
	Version: version.GetFullVersion(),
	Args:    cobra.NoArgs,
	RunE:    run,
}

func init() {
	rootCmd.Flags().BoolVar(&initConfig, "init-config", false, "Create a default config file and exit.")
	rootCmd.Flags().BoolVar(&rawOutput, "raw", false, "Write the line as raw bytes instead of decoded text.")
	rootCmd.Flags().StringVar(&prompt, "prompt", "", "Prompt printed to stderr before reading.")
	rootCmd.SilenceUsage = true
}

func run(cmd *cobra.Command, _ []string) error {
	if initConfig {
		if err := config.SaveConfig(config.DefaultConfig()); err != nil {
			return errors.WithMessage(err, "saving config")
		}
		return nil
	}

	cfg := config.LoadConfig()

	if cfg.EnableLogger {
		f, err := os.OpenFile("renglon.log", os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return errors.WithMessage(err, "opening log file")
		}
		defer f.Close()
		log.SetOutput(f)
		log.Println("--- renglon started ---")
	} else {
		log.SetOutput(io.Discard)
	}

	if cmd.Flags().Changed("raw") {
		cfg.RawOutput = rawOutput
	}
	if cmd.Flags().Changed("prompt") {
		cfg.Prompt = prompt
	}

	src, err := source.NewFile(os.Stdin)
	if err != nil {
		return errors.WithMessage(err, "opening stdin")
	}
	src.SetTextMode(!cfg.RawOutput)

	fd := os.Stdin.Fd()
	interactive := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	if cfg.Prompt != "" && interactive {
		fmt.Fprint(os.Stderr, cfg.Prompt)
	}

	line, err := reader.Read(src)
	if err != nil {
		if errors.Is(err, reader.ErrCancelled) {
			log.Println("read cancelled by interrupt byte")
			os.Exit(130)
		}
		return errors.WithMessage(err, "reading line")
	}

	log.Printf("read %d code points", line.Len())
	if line.Text() {
		fmt.Println(line.String())
	} else {
		os.Stdout.Write(line.Bytes())
		os.Stdout.Write([]byte{'\n'})
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
