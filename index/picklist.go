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

package index

import (
	"strings"

	"github.com/sourmash-bio/sourmash-sub002/manifest"
	"github.com/sourmash-bio/sourmash-sub002/signature"
)

// PicklistColumn names the row-identifying column a Picklist keys on.
type PicklistColumn string

// The five columns a picklist may key on.
const (
	ColumnMD5          PicklistColumn = "md5"
	ColumnMD5Prefix8   PicklistColumn = "md5prefix8"
	ColumnName         PicklistColumn = "name"
	ColumnIdent        PicklistColumn = "ident"
	ColumnIdentPrefix  PicklistColumn = "identprefix"
)

// Picklist is an include/exclude membership filter keyed by one column,
// conventionally populated from another tool's result CSV.
type Picklist struct {
	Column  PicklistColumn
	Exclude bool
	Values  map[string]struct{}
}

// NewPicklist builds a Picklist from a set of raw values.
func NewPicklist(col PicklistColumn, exclude bool, values []string) *Picklist {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return &Picklist{Column: col, Exclude: exclude, Values: set}
}

// keyOf extracts the picklist key for sig under this picklist's column.
func (p *Picklist) keyOf(sig *signature.Signature) string {
	switch p.Column {
	case ColumnMD5:
		return sig.MD5()
	case ColumnMD5Prefix8:
		return sig.MD5Short()
	case ColumnName:
		return sig.Name
	case ColumnIdent:
		return identOf(sig.Name)
	case ColumnIdentPrefix:
		ident := identOf(sig.Name)
		if i := strings.IndexByte(ident, '.'); i >= 0 {
			return ident[:i]
		}
		return ident
	}
	return ""
}

// identOf extracts the leading whitespace-delimited token of a signature
// name, the convention used for NCBI-style accession identifiers.
func identOf(name string) string {
	if i := strings.IndexByte(name, ' '); i >= 0 {
		return name[:i]
	}
	return name
}

// Matches reports whether sig passes this picklist's membership test.
func (p *Picklist) Matches(sig *signature.Signature) bool {
	if p == nil {
		return true
	}
	_, found := p.Values[p.keyOf(sig)]
	if p.Exclude {
		return !found
	}
	return found
}

// MatchesRow reports whether a manifest row passes this picklist's
// membership test, without requiring the referenced signature to be
// loaded — the mechanism a ManifestIndex (including one opened by OpenZip) uses to select
// before paying for any signature I/O.
func (p *Picklist) MatchesRow(r manifest.Row) bool {
	if p == nil {
		return true
	}
	_, found := p.Values[p.keyOfRow(r)]
	if p.Exclude {
		return !found
	}
	return found
}

func (p *Picklist) keyOfRow(r manifest.Row) string {
	switch p.Column {
	case ColumnMD5:
		return r.MD5
	case ColumnMD5Prefix8:
		return r.MD5Short
	case ColumnName:
		return r.Name
	case ColumnIdent:
		return identOf(r.Name)
	case ColumnIdentPrefix:
		ident := identOf(r.Name)
		if i := strings.IndexByte(ident, '.'); i >= 0 {
			return ident[:i]
		}
		return ident
	}
	return ""
}
