package cmd

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/howeyc/gopass"
	"golang.org/x/term"

	"github.com/heizence/securevault/internal/batch"
)

// Package-level scanner for test-mode stdin reading, shared across every
// stdin read so piped input isn't consumed twice by separate readers.
var (
	testStdinScanner *bufio.Scanner
	scannerOnce      sync.Once
)

const testModeEnv = "SECUREVAULT_TEST"

func readLine() (string, error) {
	scannerOnce.Do(func() {
		testStdinScanner = bufio.NewScanner(os.Stdin)
	})
	if !testStdinScanner.Scan() {
		if err := testStdinScanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", fmt.Errorf("no input provided")
	}
	return testStdinScanner.Text(), nil
}

// readLineInput reads one line of plain (unmasked) input from stdin.
func readLineInput() (string, error) {
	if os.Getenv(testModeEnv) == "1" {
		return readLine()
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads a passphrase from stdin, masked with asterisks when
// attached to a real terminal. In test mode (or when stdin is not a TTY)
// it falls back to a plain line read so scripted input still works.
func readPassword() ([]byte, error) {
	if os.Getenv(testModeEnv) == "1" {
		line, err := readLine()
		if err != nil {
			return nil, fmt.Errorf("failed to read passphrase: %w", err)
		}
		return []byte(line), nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read passphrase: %w", err)
		}
		return []byte(strings.TrimSpace(line)), nil
	}

	return gopass.GetPasswdMasked()
}

// promptYesNo asks a yes/no question with def as the default on an empty
// reply.
func promptYesNo(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Printf("%s [%s]: ", question, hint)
	line, err := readLineInput()
	if err != nil {
		return false, err
	}
	line = strings.ToLower(strings.TrimSpace(line))
	if line == "" {
		return def, nil
	}
	return line == "y" || line == "yes", nil
}

// watchBatch drains a batch operation's progress and error channels,
// printing colored status lines as it goes. It returns once both
// channels close, which happens after a terminal "done" event, a
// cancellation, or a per-file error. done is true only if a terminal
// "done" ProgressEvent was seen; its absence means the batch stopped
// early, either from cancellation or from a reported error.
func watchBatch(progress <-chan batch.ProgressEvent, errs <-chan batch.ErrorEvent) (done bool, failed *batch.ErrorEvent) {
	for progress != nil || errs != nil {
		select {
		case p, ok := <-progress:
			if !ok {
				progress = nil
				continue
			}
			printProgress(p)
			if p.Status == "done" {
				done = true
			}
		case e, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			printError(e)
			failed = &e
		}
	}
	return done, failed
}

func printProgress(p batch.ProgressEvent) {
	if p.Status == "done" {
		color.New(color.FgGreen, color.Bold).Printf("done: %d/%d files (100%%)\n", p.CurrentFileNumber, p.TotalFiles)
		return
	}
	color.New(color.FgCyan).Printf("[%d/%d] %.0f%%  %s\n", p.CurrentFileNumber, p.TotalFiles, p.TotalProgress*100, p.CurrentFilePath)
}

func printError(e batch.ErrorEvent) {
	color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "error: %s: %s\n", e.FilePath, e.Message)
}

// withCancelOnInterrupt wires Ctrl+C to engine.CancelOperation for the
// duration of fn, so a long-running batch can be stopped cooperatively
// from the terminal instead of killing the process outright.
func withCancelOnInterrupt(fn func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			engine.CancelOperation()
		case <-done:
		}
	}()
	fn()
	close(done)
}
