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
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sourmash-bio/sourmash-sub002/index"
)

var errViewArgs = errors.New("view requires at least one index path")

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "inspect or convert an index (zip, manifest, SBT, or signature JSON)",
	Long: `view loads every path given as whichever supported index form it
is and reports a one-line summary per contained signature: name, md5,
ksize, moltype, and sketch size. With --to-zip, it instead writes every
loaded signature into a single new zip container.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		runtime.GOMAXPROCS(opt.NumCPUs)

		if len(args) == 0 {
			checkError(errViewArgs)
		}

		var located []index.Located
		for _, p := range args {
			ix, err := loadIndex(p)
			checkError(err)
			rows, err := ix.SignaturesWithLocation()
			checkInternalError(err)
			located = append(located, rows...)
		}

		if toZip := getFlagString(cmd, "to-zip"); toZip != "" {
			out, err := outFile(toZip)
			checkError(err)
			defer out.Close()
			checkError(index.WriteZip(out, located))
			log.Infof("wrote %s signatures to %s", humanize.Comma(int64(len(located))), toZip)
			return
		}

		for _, l := range located {
			sk := l.Signature.Sketch
			fmt.Printf("%s\t%s\t%s\tk=%d\t%s\thashes=%s\t%s\n",
				l.Signature.Name, l.Signature.MD5(), sk.Moltype.String(), sk.K,
				sizeLabel(sk.Num, sk.Scaled), humanize.Comma(int64(sk.Len())), l.Location)
		}
	},
}

func sizeLabel(num, scaled uint64) string {
	if scaled > 0 {
		return fmt.Sprintf("scaled=%d", scaled)
	}
	return fmt.Sprintf("num=%d", num)
}

func init() {
	RootCmd.AddCommand(viewCmd)

	viewCmd.Flags().String("to-zip", "", "write every loaded signature into a new zip container at this path instead of printing a summary")
}
