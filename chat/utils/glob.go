// Copyright (c) 2020 Shivaram Lingamneni <slingamn@cs.stanford.edu>
// released under the MIT license

package utils

import (
	"bytes"
	"regexp"
	"regexp/syntax"
	"strings"
)

// CompileGlob compiles a glob where * matches any run of characters and
// ? matches one character. Matching is case-insensitive, as origins are.
func CompileGlob(glob string) (result *regexp.Regexp, err error) {
	var buf bytes.Buffer
	buf.WriteString("(?i)^")
	for _, r := range glob {
		switch r {
		case '*':
			buf.WriteString("(.*)")
		case '?':
			buf.WriteString("(.)")
		case 0xFFFD:
			return nil, &syntax.Error{Code: syntax.ErrInvalidUTF8, Expr: glob}
		default:
			buf.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	buf.WriteByte('$')
	return regexp.Compile(buf.String())
}

// MatchesAny reports whether str matches one of the compiled globs.
func MatchesAny(globs []*regexp.Regexp, str string) bool {
	str = strings.TrimSpace(str)
	for _, re := range globs {
		if re.MatchString(str) {
			return true
		}
	}
	return false
}
