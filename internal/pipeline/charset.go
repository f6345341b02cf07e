package pipeline

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
)

// CommonHanzi returns up to limit characters from the GB2312 level-1
// block, in code order, one character per string. The block holds the
// most frequent simplified characters arranged by pinyin, so the first
// returned character is 啊.
//
// Level-1 codes span rows 0xB0-0xD7, cells 0xA1-0xFD. Pairs that do
// not decode to a character are skipped.
func CommonHanzi(limit int) []string {
	if limit <= 0 {
		return nil
	}

	dec := simplifiedchinese.GBK.NewDecoder()
	out := make([]string, 0, limit)
	for hi := 0xB0; hi <= 0xD7; hi++ {
		for lo := 0xA1; lo <= 0xFD; lo++ {
			b, err := dec.Bytes([]byte{byte(hi), byte(lo)})
			if err != nil {
				continue
			}
			r, _ := utf8.DecodeRune(b)
			if r == utf8.RuneError {
				continue
			}
			out = append(out, string(r))
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}
