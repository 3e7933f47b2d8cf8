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

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sourmash-bio/sourmash-sub002/hashutil"
	"github.com/sourmash-bio/sourmash-sub002/recordio"
	"github.com/sourmash-bio/sourmash-sub002/signature"
	"github.com/sourmash-bio/sourmash-sub002/sketch"
)

var sketchCmd = &cobra.Command{
	Use:   "sketch",
	Short: "build a MinHash sketch from FASTA/FASTQ input",
	Long: `sketch builds one Signature per invocation from one or more
sequence files, writing it as (optionally gzipped) signature JSON.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		runtime.GOMAXPROCS(opt.NumCPUs)

		files := getFileList(args)
		checkFileOrStdin(files...)

		k := getFlagPositiveInt(cmd, "ksize")
		scaled := getFlagUint64(cmd, "scaled")
		num := getFlagUint64(cmd, "num")
		seed := uint32(getFlagPositiveInt(cmd, "seed"))
		trackAbundance := getFlagBool(cmd, "track-abundance")
		force := getFlagBool(cmd, "force")
		inputIsProtein := getFlagBool(cmd, "input-is-protein")
		name := getFlagString(cmd, "name")
		output := getFlagString(cmd, "output")

		moltypeStr := parseMoltypeFlag(cmd, "moltype")
		moltype, ok := hashutil.ParseMoltype(moltypeStr)
		if !ok {
			checkError(fmt.Errorf("sketch: unknown moltype %q", moltypeStr))
		}

		if (num == 0) == (scaled == 0) {
			checkError(fmt.Errorf("sketch: exactly one of --num/--scaled must be given"))
		}

		sk, err := sketch.New(k, moltype, seed, num, scaled, trackAbundance)
		checkError(err)

		n, err := recordio.AddFiles(sk, files, inputIsProtein, force)
		checkError(err)
		log.Infof("hashed %s records from %d file(s) into %s hashes",
			humanize.Comma(int64(n)), len(files), humanize.Comma(int64(sk.Len())))

		if name == "" {
			name = files[0]
		}
		sig := signature.New(sk, name, files[0])

		out, err := outFile(output)
		checkError(err)
		defer out.Close()

		writeFn := signature.Write
		if !getFlagBool(cmd, "no-compress") {
			writeFn = signature.WriteGzip
		}
		checkError(writeFn(out, []*signature.Signature{sig}))
	},
}

func outFile(path string) (*os.File, error) {
	if path == "" || path == "-" {
		return os.Stdout, nil
	}
	return os.Create(path)
}

func init() {
	RootCmd.AddCommand(sketchCmd)

	sketchCmd.Flags().IntP("ksize", "k", 31, "k-mer size")
	sketchCmd.Flags().Uint64P("scaled", "s", 1000, "scaled sampling reciprocal (0 to use --num instead)")
	sketchCmd.Flags().Uint64P("num", "n", 0, "bounded bottom-k sketch size (0 to use --scaled instead)")
	sketchCmd.Flags().Int("seed", 42, "murmur3 seed")
	sketchCmd.Flags().String("moltype", "DNA", "molecule type: DNA|protein|dayhoff|hp")
	sketchCmd.Flags().Bool("track-abundance", false, "track k-mer abundances")
	sketchCmd.Flags().Bool("force", false, "skip windows with non-alphabet characters instead of failing")
	sketchCmd.Flags().Bool("input-is-protein", false, "input sequences are already amino acids; skip six-frame translation")
	sketchCmd.Flags().String("name", "", "signature name (defaults to the first input filename)")
	sketchCmd.Flags().StringP("output", "o", "-", "output path, or - for stdout")
	sketchCmd.Flags().BoolP("no-compress", "C", false, "do not gzip the output signature")
}
