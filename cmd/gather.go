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

	"github.com/sourmash-bio/sourmash-sub002/gather"
	"github.com/sourmash-bio/sourmash-sub002/index"
)

var errGatherArgs = errors.New("gather requires QUERY plus one or more index paths")

var gatherCmd = &cobra.Command{
	Use:   "gather",
	Short: "decompose a mixture query into a minimal covering set of references",
	Long: `gather greedily selects, at each round, the reference with the
largest remaining containment of the query, subtracts its hashes, and
repeats until nothing clears --threshold-bp.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		runtime.GOMAXPROCS(opt.NumCPUs)

		if len(args) < 2 {
			checkError(errGatherArgs)
		}
		query, err := loadQuery(args[0])
		checkError(err)

		var indexes []index.Index
		for _, p := range args[1:] {
			ix, err := loadIndex(p)
			checkError(err)
			indexes = append(indexes, ix)
		}

		thresholdBP := getFlagUint64(cmd, "threshold-bp")
		pfnThreshold := getFlagFloat64(cmd, "pfn-threshold")

		rows, err := gather.Gather(query.Sketch, indexes, thresholdBP, pfnThreshold)
		checkInternalError(err)

		log.Infof("found %s matches total", humanize.Comma(int64(len(rows))))

		output := getFlagString(cmd, "output")
		out, err := outFile(output)
		checkError(err)
		defer out.Close()
		checkError(writeGatherRowsCSV(out, rows))
	},
}

func writeGatherRowsCSV(w *os.File, rows []gather.Row) error {
	cw := csv.NewWriter(w)
	header := []string{
		"rank", "name", "md5", "filename",
		"intersect_bp", "f_orig_query", "f_match", "f_unique_to_query",
		"average_abund", "median_abund", "std_abund", "remaining_bp",
		"potential_false_negative", "size_may_be_inaccurate",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			strconv.Itoa(r.Rank),
			r.Signature.Name,
			r.Signature.MD5(),
			r.Location,
			strconv.FormatUint(r.IntersectBP, 10),
			strconv.FormatFloat(r.FOrigQuery, 'f', 6, 64),
			strconv.FormatFloat(r.FMatch, 'f', 6, 64),
			strconv.FormatFloat(r.FUniqueToQuery, 'f', 6, 64),
			strconv.FormatFloat(r.AverageAbund, 'f', 6, 64),
			strconv.FormatFloat(r.MedianAbund, 'f', 6, 64),
			strconv.FormatFloat(r.StdAbund, 'f', 6, 64),
			strconv.FormatUint(r.RemainingBP, 10),
			strconv.FormatBool(r.PotentialFalseNegative),
			strconv.FormatBool(r.SizeMayBeInaccurate),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func init() {
	RootCmd.AddCommand(gatherCmd)

	gatherCmd.Flags().Uint64P("threshold-bp", "t", 50000, "minimum estimated overlap, in bp, to report a match")
	gatherCmd.Flags().Float64("pfn-threshold", 0, "potential-false-negative probability cutoff (0 uses the package default)")
	gatherCmd.Flags().StringP("output", "o", "-", "output CSV path, or - for stdout")
}
