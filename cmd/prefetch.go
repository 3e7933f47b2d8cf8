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
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sourmash-bio/sourmash-sub002/index"
)

var errPrefetchArgs = errors.New("prefetch requires exactly two arguments: QUERY INDEX")

var prefetchCmd = &cobra.Command{
	Use:   "prefetch",
	Short: "list every reference whose containment of a query clears a threshold",
	Long: `prefetch is gather's selection step without the greedy subtraction:
it reports every subject passing --threshold-bp, ranked by descending
score and without removing shared hashes between rounds, as a fast pre-filter ahead of a
full gather run.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		runtime.GOMAXPROCS(opt.NumCPUs)

		if len(args) != 2 {
			checkError(errPrefetchArgs)
		}
		query, err := loadQuery(args[0])
		checkError(err)
		ix, err := loadIndex(args[1])
		checkError(err)

		thresholdBP := getFlagUint64(cmd, "threshold-bp")

		results, err := ix.Prefetch(query.Sketch, thresholdBP)
		checkInternalError(err)
		index.SortResultsDescending(results)

		log.Infof("%s matches clear threshold_bp=%s", humanize.Comma(int64(len(results))), humanize.Comma(int64(thresholdBP)))

		output := getFlagString(cmd, "output")
		out, err := outFile(output)
		checkError(err)
		defer out.Close()
		checkError(writeResultsCSV(out, results))
	},
}

func init() {
	RootCmd.AddCommand(prefetchCmd)

	prefetchCmd.Flags().Uint64P("threshold-bp", "t", 50000, "minimum estimated overlap, in bp, to report a match")
	prefetchCmd.Flags().StringP("output", "o", "-", "output CSV path, or - for stdout")
}
