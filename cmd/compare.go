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

	"github.com/spf13/cobra"

	"github.com/sourmash-bio/sourmash-sub002/compare"
	"github.com/sourmash-bio/sourmash-sub002/signature"
	"github.com/sourmash-bio/sourmash-sub002/sketch"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "compute all-pairs similarity between signatures",
	Long: `compare loads every signature named on the command line and reports
the all-pairs Jaccard (or max containment, with --containment) similarity
matrix as CSV.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		runtime.GOMAXPROCS(opt.NumCPUs)

		files := getFileList(args)
		checkFileOrStdin(files...)

		var sigs []*signature.Signature
		for _, f := range files {
			sig, err := loadQuery(f)
			checkError(err)
			sigs = append(sigs, sig)
		}

		var metric compare.Metric
		if getFlagBool(cmd, "containment") {
			metric = maxContainmentMetric
		} else {
			metric = sketch.Jaccard
		}

		m, err := compare.AllPairs(sigs, metric, opt.NumCPUs)
		checkInternalError(err)

		output := getFlagString(cmd, "output")
		out, err := outFile(output)
		checkError(err)
		defer out.Close()
		checkError(writeMatrixCSV(out, m))
	},
}

func maxContainmentMetric(a, b *sketch.Sketch) (float64, error) {
	return sketch.MaxContainment(a, b)
}

func writeMatrixCSV(w *os.File, m *compare.Matrix) error {
	cw := csv.NewWriter(w)
	header := make([]string, len(m.Signatures)+1)
	header[0] = ""
	for i, s := range m.Signatures {
		header[i+1] = s.Name
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, row := range m.Values {
		rec := make([]string, len(row)+1)
		rec[0] = m.Signatures[i].Name
		for j, v := range row {
			rec[j+1] = strconv.FormatFloat(v, 'f', 6, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func init() {
	RootCmd.AddCommand(compareCmd)

	compareCmd.Flags().Bool("containment", false, "compare by max_containment instead of Jaccard similarity")
	compareCmd.Flags().StringP("output", "o", "-", "output CSV path, or - for stdout")
}
