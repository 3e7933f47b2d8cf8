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
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sourmash-bio/sourmash-sub002/lca"
)

// lcaCmd groups the taxonomic-index subcommands the way `unikmer lca`
// groups its own family of lineage commands.
var lcaCmd = &cobra.Command{
	Use:   "lca",
	Short: "build and query LCA taxonomic reverse indexes",
}

var errLCAIndexArgs = errors.New("lca index requires TAXONOMY OUTPUT plus one or more signature files")

var lcaIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "build an LCA database from a taxonomy CSV and a set of signatures",
	Long: `lca index loads a lineage taxonomy CSV (identifiers plus the
superkingdom..strain rank columns), inserts every signature's hashes
under its identifier's lineage, and writes the resulting hash-to-lineage
database as (optionally gzipped) JSON.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		runtime.GOMAXPROCS(opt.NumCPUs)

		if len(args) < 3 {
			checkError(errLCAIndexArgs)
		}
		taxonomyPath := expandPath(args[0])
		output := expandPath(args[1])
		files := args[2:]
		checkFileOrStdin(files...)

		taxonomy, err := lca.LoadTaxonomy(taxonomyPath)
		checkError(err)

		scaled := getFlagUint64(cmd, "scaled")

		var db *lca.Database
		skipped, inserted := 0, 0
		for _, f := range files {
			sig, err := loadQuery(f)
			checkError(err)

			if db == nil {
				db = lca.NewDatabase(sig.Sketch.K, scaled, sig.Sketch.Moltype)
			}

			ident := identFromName(sig.Name)
			lineage, ok := taxonomy[ident]
			if !ok {
				log.Warningf("no taxonomy entry for identifier %q, skipping", ident)
				continue
			}

			dup, err := db.Insert(sig, ident, lineage)
			checkInternalError(err)
			if dup {
				log.Warningf("duplicate signature md5 for %q, skipping", ident)
				skipped++
				continue
			}
			inserted++
		}
		if db == nil {
			checkError(errLCAIndexArgs)
		}

		log.Infof("inserted %s signatures (%s duplicates skipped): %s",
			humanize.Comma(int64(inserted)), humanize.Comma(int64(skipped)), db.String())

		out, err := os.Create(output)
		checkError(err)
		defer out.Close()
		checkError(db.WriteJSON(out, !getFlagBool(cmd, "no-compress")))
	},
}

// identFromName takes the leading whitespace-delimited token of a
// signature's name as its taxonomy identifier, the convention the
// original command line tool's accession-style FASTA headers follow.
func identFromName(name string) string {
	if i := strings.IndexAny(name, " \t"); i >= 0 {
		return name[:i]
	}
	return name
}

var errLCAClassifyArgs = errors.New("lca classify requires DATABASE plus one or more query signature files")

var lcaClassifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "classify query signatures against an LCA database",
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		runtime.GOMAXPROCS(opt.NumCPUs)

		if len(args) < 2 {
			checkError(errLCAClassifyArgs)
		}
		db, err := loadLCADatabase(args[0])
		checkError(err)

		majority := getFlagBool(cmd, "majority")
		threshold := getFlagInt(cmd, "threshold")

		output := getFlagString(cmd, "output")
		out, err := outFile(output)
		checkError(err)
		defer out.Close()

		cw := csv.NewWriter(out)
		checkError(cw.Write([]string{"ID", "status", "lineage", "n_hashes", "votes"}))

		for _, f := range args[1:] {
			sig, err := loadQuery(f)
			checkError(err)
			cl, err := db.Classify(sig.Sketch, majority, threshold)
			checkInternalError(err)
			rec := []string{
				sig.Name,
				string(cl.Status),
				lineageString(cl.Lineage),
				strconv.Itoa(cl.NHashes),
				strconv.Itoa(cl.Votes),
			}
			checkError(cw.Write(rec))
		}
		cw.Flush()
		checkError(cw.Error())
	},
}

var errLCASummarizeArgs = errors.New("lca summarize requires DATABASE plus one or more query signature files")

var lcaSummarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "report every lineage prefix meeting a vote threshold for each query",
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		runtime.GOMAXPROCS(opt.NumCPUs)

		if len(args) < 2 {
			checkError(errLCASummarizeArgs)
		}
		db, err := loadLCADatabase(args[0])
		checkError(err)

		minVotes := getFlagInt(cmd, "min-votes")

		output := getFlagString(cmd, "output")
		out, err := outFile(output)
		checkError(err)
		defer out.Close()

		cw := csv.NewWriter(out)
		checkError(cw.Write([]string{"ID", "count", "lineage"}))

		for _, f := range args[1:] {
			sig, err := loadQuery(f)
			checkError(err)
			rows, err := db.Summarize(sig.Sketch, minVotes)
			checkInternalError(err)
			for _, r := range rows {
				rec := []string{sig.Name, strconv.Itoa(r.Count), lineageString(r.Lineage)}
				checkError(cw.Write(rec))
			}
		}
		cw.Flush()
		checkError(cw.Error())
	},
}

func loadLCADatabase(path string) (*lca.Database, error) {
	f, err := os.Open(expandPath(path))
	if err != nil {
		return nil, errors.Wrapf(err, "cmd: opening lca database %s", path)
	}
	defer f.Close()
	return lca.ReadJSON(f)
}

func lineageString(l lca.Lineage) string {
	names := make([]string, len(l))
	for i, rn := range l {
		names[i] = rn.Name
	}
	return strings.Join(names, ";")
}

func init() {
	RootCmd.AddCommand(lcaCmd)
	lcaCmd.AddCommand(lcaIndexCmd)
	lcaCmd.AddCommand(lcaClassifyCmd)
	lcaCmd.AddCommand(lcaSummarizeCmd)

	lcaIndexCmd.Flags().Uint64P("scaled", "s", 10000, "scaled sampling reciprocal the database is built at")
	lcaIndexCmd.Flags().BoolP("no-compress", "C", false, "do not gzip the output database")

	lcaClassifyCmd.Flags().Bool("majority", false, "classify by the single most-voted lineage instead of aggregating every lineage meeting --threshold")
	lcaClassifyCmd.Flags().Int("threshold", 5, "minimum hash count a lineage must clear to be considered")
	lcaClassifyCmd.Flags().StringP("output", "o", "-", "output CSV path, or - for stdout")

	lcaSummarizeCmd.Flags().Int("min-votes", 2, "minimum hash votes for a lineage prefix to be reported")
	lcaSummarizeCmd.Flags().StringP("output", "o", "-", "output CSV path, or - for stdout")
}
