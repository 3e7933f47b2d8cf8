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
	"encoding/csv"
	"os"
	"runtime"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sourmash-bio/sourmash-sub002/index"
)

var errSearchArgs = errors.New("search requires exactly two arguments: QUERY INDEX")

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "search an index for signatures similar to a query",
	Long: `search loads a query signature and an index (zip, manifest, SBT, or
plain signature JSON) and reports the subjects meeting --threshold, ranked
by descending score and capped at --num-results.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		runtime.GOMAXPROCS(opt.NumCPUs)

		if len(args) != 2 {
			checkError(errSearchArgs)
		}
		query, err := loadQuery(args[0])
		checkError(err)
		ix, err := loadIndex(args[1])
		checkError(err)

		threshold := getFlagFloat64(cmd, "threshold")
		best := getFlagBool(cmd, "best-only")

		var search index.Search
		if getFlagBool(cmd, "containment") {
			search = &index.ContainmentSearch{MinScore: threshold, BestOnly: best}
		} else {
			search = &index.JaccardSearch{MinScore: threshold, BestOnly: best}
		}

		results, err := ix.Find(search, query.Sketch)
		checkInternalError(err)
		index.SortResultsDescending(results)

		n := getFlagInt(cmd, "num-results")
		if n > 0 && len(results) > n {
			results = results[:n]
		}

		log.Infof("%s matches above threshold %.4f", humanize.Comma(int64(len(results))), threshold)

		output := getFlagString(cmd, "output")
		out, err := outFile(output)
		checkError(err)
		defer out.Close()
		checkError(writeResultsCSV(out, results))
	},
}

// writeResultsCSV writes one row per result: score, name, md5, location.
// Shared with prefetch, whose output has the identical shape.
func writeResultsCSV(w *os.File, results []index.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"similarity", "name", "md5", "filename"}); err != nil {
		return err
	}
	for _, r := range results {
		rec := []string{
			strconv.FormatFloat(r.Score, 'f', 6, 64),
			r.Signature.Name,
			r.Signature.MD5(),
			r.Location,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func init() {
	RootCmd.AddCommand(searchCmd)

	searchCmd.Flags().Float64P("threshold", "t", 0.08, "minimum score to report")
	searchCmd.Flags().Bool("containment", false, "search by containment instead of Jaccard")
	searchCmd.Flags().Bool("best-only", false, "keep only the single best match")
	searchCmd.Flags().IntP("num-results", "n", 3, "maximum number of results to report (0 for unlimited)")
	searchCmd.Flags().StringP("output", "o", "-", "output CSV path, or - for stdout")
}
