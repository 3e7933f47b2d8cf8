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
	"os"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sourmash-bio/sourmash-sub002/sbt"
)

var errIndexArgs = errors.New("index requires OUTPUT plus one or more signature files")

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "build a Sequence Bloom Tree index from a collection of signatures",
	Long: `index reads one signature per input file, inserts each as a leaf of
a Sequence Bloom Tree (branching factor --branch-factor, default 2), and writes the tree's manifest to
OUTPUT.sbt.json with its per-node Bloom filters stored under OUTPUT.sbt.json.d/.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		runtime.GOMAXPROCS(opt.NumCPUs)

		if len(args) < 2 {
			checkError(errIndexArgs)
		}
		output := expandPath(args[0])
		files := args[1:]
		checkFileOrStdin(files...)

		bfSizeBits := getFlagUint64(cmd, "bf-size")
		nTables := getFlagInt(cmd, "n-tables")
		d := getFlagInt(cmd, "branch-factor")
		cacheSize := getFlagInt(cmd, "cache-size")

		storagePath := output + ".sbt.json.d"
		storage, err := sbt.NewFSStorage(storagePath, 1<<20)
		checkError(err)
		defer storage.Close()

		var tree *sbt.Tree
		n := 0
		for _, f := range files {
			sig, err := loadQuery(f)
			checkError(err)

			if tree == nil {
				tree = sbt.NewTree(d, sig.Sketch.K, sig.Sketch.Scaled, sig.Sketch.Moltype.String(),
					sbt.Factory{Ksize: sig.Sketch.K, BFSizeBits: bfSizeBits, NTables: nTables}, storage, cacheSize)
			}
			checkInternalError(tree.Add(sig))
			n++
		}
		if tree == nil {
			checkError(errIndexArgs)
		}

		log.Infof("inserted %s signatures into a branch-%d tree", humanize.Comma(int64(n)), d)

		data, err := tree.Save()
		checkInternalError(err)
		checkError(os.WriteFile(output+".sbt.json", data, 0o644))
	},
}

func init() {
	RootCmd.AddCommand(indexCmd)

	indexCmd.Flags().Uint64("bf-size", 1<<20, "bits per node Bloom filter")
	indexCmd.Flags().Int("n-tables", 4, "number of hash tables per node Bloom filter")
	indexCmd.Flags().Int("branch-factor", 2, "tree branching factor")
	indexCmd.Flags().Int("cache-size", 64, "number of internal nodes kept resident")
}
