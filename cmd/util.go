// Copyright © 2018-2020 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/shenwei356/go-logging"
	"github.com/shenwei356/util/pathutil"
	"github.com/spf13/cobra"
)

var log = logging.MustGetLogger("sourgo")

// Options carries the persistent flags every subcommand shares.
type Options struct {
	NumCPUs int
	Verbose bool
}

func getOptions(cmd *cobra.Command) *Options {
	return &Options{
		NumCPUs: getFlagPositiveInt(cmd, "threads"),
		Verbose: getFlagBool(cmd, "verbose"),
	}
}

// exit codes per the CLI surface: 0 success, -1 user error, 1 internal error.
const (
	exitOK          = 0
	exitUserError   = -1
	exitInternalErr = 1
)

// checkError prints a one-line message and terminates with exitUserError,
// mirroring the teacher's checkError(err) used throughout unikmer/cmd.
func checkError(err error) {
	if err == nil {
		return
	}
	log.Error(err.Error())
	os.Exit(exitUserError)
}

// checkInternalError is checkError's counterpart for failures that are this
// program's own bug rather than bad user input (a broken invariant surfaced
// deep inside sketch/sbt/lca), exiting 1 instead of -1.
func checkInternalError(err error) {
	if err == nil {
		return
	}
	log.Error(err.Error())
	os.Exit(exitInternalErr)
}

func expandPath(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}

func checkFileOrStdin(files ...string) {
	for _, file := range files {
		if file == "-" {
			continue
		}
		ok, err := pathutil.Exists(expandPath(file))
		checkError(err)
		if !ok {
			checkError(fmt.Errorf("file does not exist: %s", file))
		}
	}
}

func getFlagString(cmd *cobra.Command, flag string) string {
	v, err := cmd.Flags().GetString(flag)
	checkError(err)
	return v
}

func getFlagBool(cmd *cobra.Command, flag string) bool {
	v, err := cmd.Flags().GetBool(flag)
	checkError(err)
	return v
}

func getFlagInt(cmd *cobra.Command, flag string) int {
	v, err := cmd.Flags().GetInt(flag)
	checkError(err)
	return v
}

func getFlagPositiveInt(cmd *cobra.Command, flag string) int {
	v := getFlagInt(cmd, flag)
	if v <= 0 {
		v = runtime.NumCPU()
	}
	return v
}

func getFlagUint64(cmd *cobra.Command, flag string) uint64 {
	v, err := cmd.Flags().GetUint64(flag)
	checkError(err)
	return v
}

func getFlagFloat64(cmd *cobra.Command, flag string) float64 {
	v, err := cmd.Flags().GetFloat64(flag)
	checkError(err)
	return v
}

func getFlagStringSlice(cmd *cobra.Command, flag string) []string {
	v, err := cmd.Flags().GetStringSlice(flag)
	checkError(err)
	return v
}

// getFileList returns args, defaulting to stdin ("-") when empty, the
// convention every teacher subcommand's positional-file handling follows.
func getFileList(args []string) []string {
	if len(args) == 0 {
		return []string{"-"}
	}
	return args
}

func parseMoltypeFlag(cmd *cobra.Command, flag string) string {
	return strings.ToLower(getFlagString(cmd, flag))
}
